// Package reports owns the citizen report record and the submission
// orchestration that builds exactly one persisted record per request.
package reports

import (
	"strings"
	"time"

	"github.com/opencivic/infrawatch/internal/assessment"
)

// Lifecycle statuses for a report. A new record always starts as
// StatusReported; it advances only through the status-update endpoint.
const (
	StatusReported   = "Reported"
	StatusInProgress = "In Progress"
	StatusResolved   = "Resolved"
	StatusRejected   = "Rejected"
)

// ValidStatus reports whether s is a member of the status lifecycle.
func ValidStatus(s string) bool {
	switch s {
	case StatusReported, StatusInProgress, StatusResolved, StatusRejected:
		return true
	}
	return false
}

// Report is the persisted record for one submission. ImageURL is a proxy
// reference ("/image/{fileID}"), never raw bytes; nil when there was no
// image or the upload failed. RiskAssessment is nil exactly when no usable
// image accompanied the submission.
type Report struct {
	ID             string                     `json:"id"`
	Category       string                     `json:"category"`
	Description    string                     `json:"description"`
	Location       string                     `json:"location"`
	ImageURL       *string                    `json:"image"`
	RiskAssessment *assessment.RiskAssessment `json:"risk_assessment"`
	Status         string                     `json:"status"`
	Timestamp      time.Time                  `json:"timestamp"`
}

// SubmitRequest is the caller-supplied submission payload. Image is an
// optional data URI or raw base64 string.
type SubmitRequest struct {
	Category    string `json:"category"`
	Description string `json:"description"`
	Location    string `json:"location"`
	Image       string `json:"image,omitempty"`
}

// Validate checks required-field presence.
func (r *SubmitRequest) Validate() error {
	if strings.TrimSpace(r.Category) == "" {
		return ErrMissingCategory
	}
	if strings.TrimSpace(r.Description) == "" {
		return ErrMissingDescription
	}
	if strings.TrimSpace(r.Location) == "" {
		return ErrMissingLocation
	}
	return nil
}

// Feedback is an appended note about an assessment; no validation beyond
// required-field presence.
type Feedback struct {
	ID           string    `json:"id"`
	ReportID     string    `json:"report_id"`
	FeedbackType string    `json:"feedback_type"`
	Comment      string    `json:"comment"`
	CreatedAt    time.Time `json:"created_at"`
}

// Validate checks required-field presence.
func (f *Feedback) Validate() error {
	if strings.TrimSpace(f.ReportID) == "" {
		return ErrMissingReportID
	}
	if strings.TrimSpace(f.FeedbackType) == "" {
		return ErrMissingFeedbackType
	}
	return nil
}
