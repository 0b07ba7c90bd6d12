package reports

import (
	"errors"
	"testing"
)

func validInput() CreateInput {
	return CreateInput{
		Title:         "SQL Injection in User Search Endpoint",
		Category:      "SQL Injection",
		Severity:      SeverityCritical,
		Description:   "The query parameter is not properly sanitized.",
		AffectedAsset: "https://example.com/api/users/search",
		ReproductionSteps: []string{
			"Navigate to /api/users/search",
			"Set query parameter to: ' OR 1=1--",
		},
		Impact:     "Attacker can extract entire database contents.",
		ReportedBy: "scanner-7",
	}
}

func TestStore_Create(t *testing.T) {
	store := NewStore()

	report, err := store.Create(validInput())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if report.ID == "" {
		t.Error("Create did not assign an ID")
	}
	if report.Status != StatusNew {
		t.Errorf("Status = %q, want %q", report.Status, StatusNew)
	}
	if report.CreatedAt.IsZero() || report.UpdatedAt.IsZero() {
		t.Error("timestamps not set")
	}
}

func TestStore_Create_Validation(t *testing.T) {
	store := NewStore()

	tests := []struct {
		name    string
		mutate  func(*CreateInput)
		wantErr error
	}{
		{"missing title", func(in *CreateInput) { in.Title = "" }, ErrMissingTitle},
		{"bad severity", func(in *CreateInput) { in.Severity = "catastrophic" }, ErrInvalidSeverity},
		{"empty severity", func(in *CreateInput) { in.Severity = "" }, ErrInvalidSeverity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)
			if _, err := store.Create(in); !errors.Is(err, tt.wantErr) {
				t.Errorf("Create error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestStore_GetNotFound(t *testing.T) {
	store := NewStore()

	if _, err := store.Get("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get error = %v, want %v", err, ErrNotFound)
	}
}

func TestStore_List_PaginationAndFilters(t *testing.T) {
	store := NewStore()

	severities := []Severity{SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow, SeverityHigh}
	for _, severity := range severities {
		in := validInput()
		in.Severity = severity
		if _, err := store.Create(in); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	page, total := store.List(1, 2, "", "")
	if total != 5 {
		t.Errorf("total = %d, want 5", total)
	}
	if len(page) != 2 {
		t.Errorf("page size = %d, want 2", len(page))
	}
	// Newest first.
	if page[0].Severity != SeverityHigh {
		t.Errorf("first listed severity = %q, want most recent (high)", page[0].Severity)
	}

	high, total := store.List(1, 10, SeverityHigh, "")
	if total != 2 || len(high) != 2 {
		t.Errorf("severity filter: total=%d len=%d, want 2/2", total, len(high))
	}

	empty, total := store.List(99, 10, "", "")
	if total != 5 || len(empty) != 0 {
		t.Errorf("out-of-range page: total=%d len=%d, want 5/0", total, len(empty))
	}
}

func TestStore_Assign(t *testing.T) {
	store := NewStore()
	report, _ := store.Create(validInput())

	assigned, err := store.Assign(report.ID, "analyst-3")
	if err != nil {
		t.Fatalf("Assign failed: %v", err)
	}
	if assigned.Assignee != "analyst-3" {
		t.Errorf("Assignee = %q", assigned.Assignee)
	}
	if assigned.Status != StatusTriaging {
		t.Errorf("Status = %q, want %q after first assignment", assigned.Status, StatusTriaging)
	}

	if _, err := store.Assign("missing", "x"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Assign error = %v, want %v", err, ErrNotFound)
	}
}

func TestStore_UpdateStatus(t *testing.T) {
	store := NewStore()
	report, _ := store.Create(validInput())

	updated, err := store.UpdateStatus(report.ID, StatusResolved)
	if err != nil {
		t.Fatalf("UpdateStatus failed: %v", err)
	}
	if updated.Status != StatusResolved {
		t.Errorf("Status = %q, want %q", updated.Status, StatusResolved)
	}

	if _, err := store.UpdateStatus(report.ID, "bogus"); !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("UpdateStatus error = %v, want %v", err, ErrInvalidStatus)
	}
}

func TestStore_Stats(t *testing.T) {
	store := NewStore()

	for _, severity := range []Severity{SeverityCritical, SeverityCritical, SeverityLow} {
		in := validInput()
		in.Severity = severity
		store.Create(in)
	}

	summary := store.Stats()
	if summary.Total != 3 {
		t.Errorf("Total = %d, want 3", summary.Total)
	}
	if summary.BySeverity[SeverityCritical] != 2 {
		t.Errorf("critical count = %d, want 2", summary.BySeverity[SeverityCritical])
	}
	if summary.ByStatus[StatusNew] != 3 {
		t.Errorf("new count = %d, want 3", summary.ByStatus[StatusNew])
	}
}

func TestStore_CloneIsolation(t *testing.T) {
	store := NewStore()
	report, _ := store.Create(validInput())

	report.Title = "mutated"
	report.ReproductionSteps[0] = "mutated"

	fresh, _ := store.Get(report.ID)
	if fresh.Title == "mutated" || fresh.ReproductionSteps[0] == "mutated" {
		t.Error("store state shared with caller copy")
	}
}
