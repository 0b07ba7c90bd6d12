// Package reports holds the authoritative vulnerability report store. It is
// a deliberately thin in-memory collaborator: the interesting behavior of
// this service lives in the caching layer in front of it.
package reports

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Severity classifies the impact of a reported vulnerability.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// Status tracks a report through triage.
type Status string

const (
	StatusNew       Status = "new"
	StatusTriaging  Status = "triaging"
	StatusAccepted  Status = "accepted"
	StatusDuplicate Status = "duplicate"
	StatusResolved  Status = "resolved"
)

var (
	ErrNotFound        = errors.New("reports: report not found")
	ErrInvalidSeverity = errors.New("reports: invalid severity")
	ErrInvalidStatus   = errors.New("reports: invalid status")
	ErrMissingTitle    = errors.New("reports: title is required")
)

// Report is one submitted vulnerability report.
type Report struct {
	ID                string    `json:"id"`
	Title             string    `json:"title"`
	Category          string    `json:"category"`
	Severity          Severity  `json:"severity"`
	Description       string    `json:"description"`
	AffectedAsset     string    `json:"affected_asset"`
	ReproductionSteps []string  `json:"reproduction_steps"`
	Impact            string    `json:"impact"`
	Status            Status    `json:"status"`
	Assignee          string    `json:"assignee,omitempty"`
	ReportedBy        string    `json:"reported_by,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// CreateInput carries the caller-supplied fields of a new report.
type CreateInput struct {
	Title             string   `json:"title"`
	Category          string   `json:"category"`
	Severity          Severity `json:"severity"`
	Description       string   `json:"description"`
	AffectedAsset     string   `json:"affected_asset"`
	ReproductionSteps []string `json:"reproduction_steps"`
	Impact            string   `json:"impact"`
	ReportedBy        string   `json:"reported_by"`
}

// Summary aggregates report counts for the stats endpoint.
type Summary struct {
	Total      int              `json:"total"`
	BySeverity map[Severity]int `json:"by_severity"`
	ByStatus   map[Status]int   `json:"by_status"`
}

func validSeverity(s Severity) bool {
	switch s {
	case SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow:
		return true
	}
	return false
}

func validStatus(s Status) bool {
	switch s {
	case StatusNew, StatusTriaging, StatusAccepted, StatusDuplicate, StatusResolved:
		return true
	}
	return false
}

// Store is an in-memory report collection safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	reports map[string]*Report
	order   []string // insertion order, newest listed first
}

// NewStore creates an empty report store.
func NewStore() *Store {
	return &Store{reports: make(map[string]*Report)}
}

// Create validates the input and stores a new report with status "new".
func (s *Store) Create(in CreateInput) (*Report, error) {
	if in.Title == "" {
		return nil, ErrMissingTitle
	}
	if !validSeverity(in.Severity) {
		return nil, ErrInvalidSeverity
	}

	now := time.Now().UTC()
	report := &Report{
		ID:                uuid.NewString(),
		Title:             in.Title,
		Category:          in.Category,
		Severity:          in.Severity,
		Description:       in.Description,
		AffectedAsset:     in.AffectedAsset,
		ReproductionSteps: in.ReproductionSteps,
		Impact:            in.Impact,
		Status:            StatusNew,
		ReportedBy:        in.ReportedBy,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	s.mu.Lock()
	s.reports[report.ID] = report
	s.order = append(s.order, report.ID)
	s.mu.Unlock()

	return report.clone(), nil
}

// Get returns the report with the given ID.
func (s *Store) Get(id string) (*Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	report, ok := s.reports[id]
	if !ok {
		return nil, ErrNotFound
	}
	return report.clone(), nil
}

// List returns one page of reports, newest first, optionally filtered by
// severity and status, plus the total count after filtering.
func (s *Store) List(page, limit int, severity Severity, status Status) ([]*Report, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]*Report, 0, len(s.order))
	for i := len(s.order) - 1; i >= 0; i-- {
		report := s.reports[s.order[i]]
		if severity != "" && report.Severity != severity {
			continue
		}
		if status != "" && report.Status != status {
			continue
		}
		matched = append(matched, report)
	}

	total := len(matched)
	start := (page - 1) * limit
	if start >= total {
		return []*Report{}, total
	}
	end := start + limit
	if end > total {
		end = total
	}

	out := make([]*Report, 0, end-start)
	for _, report := range matched[start:end] {
		out = append(out, report.clone())
	}
	return out, total
}

// Assign sets the report's assignee and moves a new report into triaging.
func (s *Store) Assign(id, assignee string) (*Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	report, ok := s.reports[id]
	if !ok {
		return nil, ErrNotFound
	}

	report.Assignee = assignee
	if report.Status == StatusNew {
		report.Status = StatusTriaging
	}
	report.UpdatedAt = time.Now().UTC()
	return report.clone(), nil
}

// UpdateStatus transitions the report to the given status.
func (s *Store) UpdateStatus(id string, status Status) (*Report, error) {
	if !validStatus(status) {
		return nil, ErrInvalidStatus
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	report, ok := s.reports[id]
	if !ok {
		return nil, ErrNotFound
	}

	report.Status = status
	report.UpdatedAt = time.Now().UTC()
	return report.clone(), nil
}

// Stats aggregates counts by severity and status.
func (s *Store) Stats() Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summary := Summary{
		Total:      len(s.reports),
		BySeverity: make(map[Severity]int),
		ByStatus:   make(map[Status]int),
	}
	for _, report := range s.reports {
		summary.BySeverity[report.Severity]++
		summary.ByStatus[report.Status]++
	}
	return summary
}

// clone copies a report so callers never share mutable state with the store.
func (r *Report) clone() *Report {
	out := *r
	if r.ReproductionSteps != nil {
		out.ReproductionSteps = append([]string(nil), r.ReproductionSteps...)
	}
	return &out
}
