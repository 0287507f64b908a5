package rules

import (
	"testing"

	"github.com/linnemanlabs/beacon/internal/alert"
	"github.com/linnemanlabs/beacon/internal/source"
	"github.com/linnemanlabs/beacon/internal/source/memsource"
)

func TestVacancy(t *testing.T) {
	t.Parallel()

	dir := memsource.New()
	dir.PropertyRows = []source.Property{
		{ID: "pr1", Name: "Rosewood House", Status: source.PropertyStatusActive},
		{ID: "pr2", Name: "Mothballed Block", Status: "inactive"},
	}
	dir.DwellingRows = []source.Dwelling{
		{ID: "d1", PropertyID: "pr1", Name: "Unit 1", Status: source.DwellingStatusVacant},
		{ID: "d2", PropertyID: "pr1", Name: "Unit 2", Status: "occupied"},
		{ID: "d3", PropertyID: "pr2", Name: "Unit 3", Status: source.DwellingStatusVacant},
	}

	got := evaluate(t, Vacancy(), dir)
	if len(got) != 1 {
		t.Fatalf("got %d candidates, want 1", len(got))
	}
	c := got[0]
	if c.Severity != alert.SeverityInfo {
		t.Errorf("severity = %q, want info", c.Severity)
	}
	if c.Title != "Vacant Dwelling: Unit 1" {
		t.Errorf("title = %q", c.Title)
	}
	if c.Links.DwellingID != "d1" || c.Links.PropertyID != "pr1" {
		t.Errorf("links = %+v", c.Links)
	}
}

func TestVacancy_OrphanDwellingStillFlagged(t *testing.T) {
	t.Parallel()

	// A vacant dwelling whose property row is missing falls back to the
	// Unknown property name rather than being dropped.
	dir := memsource.New()
	dir.DwellingRows = []source.Dwelling{
		{ID: "d1", PropertyID: "ghost", Name: "Unit 1", Status: source.DwellingStatusVacant},
	}

	got := evaluate(t, Vacancy(), dir)
	if len(got) != 1 {
		t.Fatalf("got %d candidates, want 1", len(got))
	}
	if got[0].Message != "Dwelling Unit 1 at Unknown is vacant." {
		t.Errorf("message = %q", got[0].Message)
	}
}
