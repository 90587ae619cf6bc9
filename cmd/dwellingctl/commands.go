package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"dwellingcore/internal/blob"
	"dwellingcore/internal/core"
	"dwellingcore/internal/export"
)

func (c *cli) statusCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Print the completion report",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.open(cmd.Context(), appOptions{})
			if err != nil {
				return err
			}
			defer a.Close()
			return render(c.stdout, format, a.svc.Report())
		},
	}
	cmd.Flags().StringVarP(&format, "format", "o", "text", "output format: text|json|yaml")
	return cmd
}

func render(w io.Writer, format string, report core.Report) error {
	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(report); err != nil {
			return err
		}
		return enc.Close()
	case "text", "":
		fmt.Fprintf(w, "overall: %s\n", report.Status)
		for _, page := range report.Pages {
			fmt.Fprintf(w, "%s: %s\n", page.Domain, page.Status)
			for _, section := range page.Sections {
				fmt.Fprintf(w, "  %-40s %-11s %d item(s)\n", section.Label, section.Status, len(section.Items))
			}
		}
		for _, id := range report.MVHRUnitsMissingDucts {
			fmt.Fprintf(w, "MVHR unit %s has no ductwork\n", id)
		}
		return nil
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

func (c *cli) exportCmd() *cobra.Command {
	var list bool
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the resolved document to the artifact store",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := c.open(ctx, appOptions{})
			if err != nil {
				return err
			}
			defer a.Close()
			artifacts, err := blob.Open(ctx, a.cfg.BlobOptions())
			if err != nil {
				return err
			}
			exporter := export.New(artifacts, a.cfg.Export.Session, export.WithPresign(a.cfg.Export.PresignExpiry))
			enc := json.NewEncoder(c.stdout)
			enc.SetIndent("", "  ")
			if list {
				infos, err := exporter.List(ctx)
				if err != nil {
					return err
				}
				return enc.Encode(infos)
			}
			res, err := exporter.Export(ctx, a.svc)
			if err != nil {
				return err
			}
			return enc.Encode(res)
		},
	}
	cmd.Flags().BoolVar(&list, "list", false, "list earlier exports instead of writing one")
	return cmd
}

func (c *cli) revalidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "revalidate",
		Short: "Repair dangling references and demote invalid complete items",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.open(cmd.Context(), appOptions{})
			if err != nil {
				return err
			}
			defer a.Close()
			res, err := a.svc.Revalidate(cmd.Context())
			if err != nil {
				return err
			}
			if len(res.Violations) == 0 {
				fmt.Fprintln(c.stdout, "document is consistent")
				return nil
			}
			for _, v := range res.Violations {
				fmt.Fprintf(c.stdout, "%s[%d]: %s\n", v.Section, v.Index, v.Message)
			}
			return nil
		},
	}
}

func (c *cli) resetCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Clear every section of the document",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return fmt.Errorf("reset discards all data; pass --yes to confirm")
			}
			a, err := c.open(cmd.Context(), appOptions{})
			if err != nil {
				return err
			}
			defer a.Close()
			if _, err := a.svc.Reset(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(c.stdout, "document cleared")
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm the reset")
	return cmd
}
