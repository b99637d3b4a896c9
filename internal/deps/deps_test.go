package deps_test

import (
	"testing"

	"clipforge/internal/deps"
	"clipforge/internal/testsupport"
)

func TestCheckBinariesFindsStubs(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries())

	statuses := deps.CheckBinaries(deps.Requirements(cfg))
	if len(statuses) != 2 {
		t.Fatalf("expected 2 statuses, got %d", len(statuses))
	}
	for _, status := range statuses {
		if !status.Available {
			t.Fatalf("%s should be available: %s", status.Name, status.Detail)
		}
	}
	if missing := deps.MissingRequired(statuses); len(missing) != 0 {
		t.Fatalf("unexpected missing deps: %v", missing)
	}
}

func TestCheckBinariesReportsMissing(t *testing.T) {
	statuses := deps.CheckBinaries([]deps.Requirement{
		{Name: "Ghost", Command: "definitely-not-a-real-binary-12345"},
		{Name: "Blank", Command: "  "},
	})
	for _, status := range statuses {
		if status.Available {
			t.Fatalf("%s should be missing", status.Name)
		}
		if status.Detail == "" {
			t.Fatalf("%s should carry a detail message", status.Name)
		}
	}
	missing := deps.MissingRequired(statuses)
	if len(missing) != 2 {
		t.Fatalf("expected 2 missing, got %v", missing)
	}
}
