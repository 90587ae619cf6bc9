package core

import (
	"sort"

	"dwellingcore/pkg/domain"
)

// Report lists the derived status of every registered section, grouped by
// top-level domain.
type Report struct {
	Status                Status       `json:"status" yaml:"status"`
	Pages                 []PageReport `json:"pages" yaml:"pages"`
	MVHRUnitsMissingDucts []string     `json:"mvhr_units_without_ductwork,omitempty" yaml:"mvhr_units_without_ductwork,omitempty"`
}

// PageReport is the roll-up of one top-level domain.
type PageReport struct {
	Domain   string          `json:"domain" yaml:"domain"`
	Status   Status          `json:"status" yaml:"status"`
	Sections []SectionReport `json:"sections" yaml:"sections"`
}

// SectionReport summarizes one section.
type SectionReport struct {
	Path   SectionPath  `json:"path" yaml:"path"`
	Label  string       `json:"label" yaml:"label"`
	Status Status       `json:"status" yaml:"status"`
	Items  []ItemReport `json:"items,omitempty" yaml:"items,omitempty"`
}

// ItemReport summarizes one item.
type ItemReport struct {
	Index  int    `json:"index" yaml:"index"`
	ID     string `json:"id,omitempty" yaml:"id,omitempty"`
	Name   string `json:"name,omitempty" yaml:"name,omitempty"`
	Status Status `json:"status" yaml:"status"`
}

// BuildReport derives the status report for doc.
func BuildReport(doc Document, registry domain.SchemaRegistry) Report {
	schemas := registry.Schemas()
	sort.Slice(schemas, func(i, j int) bool { return schemas[i].Path < schemas[j].Path })

	byDomain := make(map[string]*PageReport)
	var order []string
	for _, schema := range schemas {
		domainName := schema.Path.Domain()
		page, ok := byDomain[domainName]
		if !ok {
			page = &PageReport{Domain: domainName}
			byDomain[domainName] = page
			order = append(order, domainName)
		}
		section := doc.Section(schema.Path)
		sr := SectionReport{
			Path:   schema.Path,
			Label:  schema.Label,
			Status: SectionStatusIn(doc, schema.Path),
		}
		for i, item := range section.Items {
			sr.Items = append(sr.Items, ItemReport{
				Index:  i,
				ID:     item.Data.ID(),
				Name:   item.Data.Name(),
				Status: ItemStatus(item),
			})
		}
		page.Sections = append(page.Sections, sr)
	}

	report := Report{MVHRUnitsMissingDucts: MVHRUnitsWithoutDuctwork(doc)}
	for _, name := range order {
		page := byDomain[name]
		page.Status = PageStatus(doc, registry, SectionPath(name))
		report.Pages = append(report.Pages, *page)
	}
	report.Status = PageStatus(doc, registry, "")
	return report
}
