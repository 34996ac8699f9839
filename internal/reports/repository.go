package reports

import (
	"context"
	"sort"
	"sync"
)

// Repository defines the interface for report storage.
type Repository interface {
	Insert(ctx context.Context, report *Report) error
	GetByID(ctx context.Context, id string) (*Report, error)
	ListNewestFirst(ctx context.Context) ([]*Report, error)
	UpdateStatus(ctx context.Context, id, status string) error
	AddFeedback(ctx context.Context, fb *Feedback) error
}

// InMemoryRepository is a Repository backed by process memory, used in
// tests and local development without Postgres.
type InMemoryRepository struct {
	mu       sync.RWMutex
	reports  map[string]*Report
	feedback map[string][]*Feedback
}

// NewInMemoryRepository creates an empty in-memory repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		reports:  make(map[string]*Report),
		feedback: make(map[string][]*Feedback),
	}
}

// Insert stores a new report.
func (r *InMemoryRepository) Insert(ctx context.Context, report *Report) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *report
	r.reports[report.ID] = &cp
	return nil
}

// GetByID retrieves a report by id.
func (r *InMemoryRepository) GetByID(ctx context.Context, id string) (*Report, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	report, ok := r.reports[id]
	if !ok {
		return nil, ErrReportNotFound
	}
	cp := *report
	return &cp, nil
}

// ListNewestFirst returns all reports ordered by timestamp descending.
func (r *InMemoryRepository) ListNewestFirst(ctx context.Context) ([]*Report, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Report, 0, len(r.reports))
	for _, report := range r.reports {
		cp := *report
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out, nil
}

// UpdateStatus sets the lifecycle status of a report.
func (r *InMemoryRepository) UpdateStatus(ctx context.Context, id, status string) error {
	if !ValidStatus(status) {
		return ErrInvalidStatus
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	report, ok := r.reports[id]
	if !ok {
		return ErrReportNotFound
	}
	report.Status = status
	return nil
}

// AddFeedback appends assessment feedback for a report.
func (r *InMemoryRepository) AddFeedback(ctx context.Context, fb *Feedback) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.reports[fb.ReportID]; !ok {
		return ErrReportNotFound
	}
	cp := *fb
	r.feedback[fb.ReportID] = append(r.feedback[fb.ReportID], &cp)
	return nil
}

// FeedbackFor returns appended feedback for a report (test helper surface).
func (r *InMemoryRepository) FeedbackFor(id string) []*Feedback {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*Feedback(nil), r.feedback[id]...)
}
