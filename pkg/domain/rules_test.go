package domain_test

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"dwellingcore/pkg/domain"
)

type staticRule struct {
	name string
	res  domain.Result
	err  error
}

func (r staticRule) Name() string { return r.name }

func (r staticRule) Evaluate(context.Context, domain.RuleView, []domain.Change) (domain.Result, error) {
	return r.res, r.err
}

func TestRulesEngineMergesResults(t *testing.T) {
	engine := domain.NewRulesEngine()
	engine.Register(staticRule{name: "a", res: domain.Result{Violations: []domain.Violation{{Rule: "a", Severity: domain.SeverityWarn, Message: "first"}}}})
	engine.Register(staticRule{name: "b", res: domain.Result{Violations: []domain.Violation{{Rule: "b", Severity: domain.SeverityBlock, Message: "second", Field: "name"}}}})
	if got := engine.Rules(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Fatalf("unexpected rule order %v", got)
	}
	res, err := engine.Evaluate(context.Background(), nil, nil)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if !res.HasBlocking() || len(res.Violations) != 2 {
		t.Fatalf("unexpected result %+v", res)
	}
	if res.Summary() != "There is a problem: first; second" {
		t.Fatalf("unexpected summary %q", res.Summary())
	}
	if fe := res.FieldErrors(); len(fe) != 1 || fe["name"] != "second" {
		t.Fatalf("unexpected field errors %v", fe)
	}
}

func TestRulesEngineStopsOnError(t *testing.T) {
	boom := errors.New("boom")
	engine := domain.NewRulesEngine()
	engine.Register(staticRule{name: "fail", err: boom})
	if _, err := engine.Evaluate(context.Background(), nil, nil); !errors.Is(err, boom) {
		t.Fatalf("expected rule error, got %v", err)
	}
}

func TestEmptyResult(t *testing.T) {
	var res domain.Result
	res.Merge(domain.Result{})
	if res.HasBlocking() || res.Summary() != "" || len(res.FieldErrors()) != 0 {
		t.Fatalf("unexpected empty result %+v", res)
	}
	var err error = domain.RuleViolationError{Result: res}
	var rv domain.RuleViolationError
	if !errors.As(err, &rv) {
		t.Fatal("RuleViolationError should be matchable by value")
	}
}

func TestSchemaMissing(t *testing.T) {
	s := domain.EntitySchema{Required: []string{"name", "ratedPower", "positions", "flag"}}
	missing := s.Missing(domain.Fields{"name": "  ", "ratedPower": 0.0, "positions": []any{}, "flag": false})
	if !reflect.DeepEqual(missing, []string{"name", "positions"}) {
		t.Fatalf("unexpected missing fields %v", missing)
	}
}

func TestChangeSetSections(t *testing.T) {
	set := domain.ChangeSet{Changes: []domain.Change{
		{Section: domain.PathBoiler},
		{Section: domain.PathHotWaterCylinder, Cascade: true},
		{Section: domain.PathBoiler},
		{Action: domain.ActionReset},
	}}
	if got := set.Sections(); !reflect.DeepEqual(got, []domain.SectionPath{domain.PathBoiler, domain.PathHotWaterCylinder}) {
		t.Fatalf("unexpected sections %v", got)
	}
	err := &domain.IndexError{Section: domain.PathBoiler, Index: 3, Len: 1}
	if err.Error() != "heatingSystems/heatGeneration/boiler: index 3 out of range [0,1)" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}
