package reports

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/opencivic/infrawatch/internal/assessment"
	"github.com/opencivic/infrawatch/internal/imaging"
	"github.com/opencivic/infrawatch/internal/observability/metrics"
	"github.com/opencivic/infrawatch/pkg/logging"
)

// Assessor produces a risk assessment for a normalized image. It never
// fails; failure modes come back as fallback assessments.
type Assessor interface {
	Assess(ctx context.Context, imageJPEG []byte, category, description string) *assessment.RiskAssessment
}

// Uploader persists image bytes and returns an opaque file id.
type Uploader interface {
	Upload(ctx context.Context, data []byte, contentType string) (string, error)
	Enabled() bool
}

// Service orchestrates one submission: decode, assess, upload, persist.
// Each call is an independent unit of work with no shared mutable state;
// concurrent submissions need no coordination.
type Service struct {
	repo     Repository
	blobs    Uploader
	assessor Assessor
	logger   *logging.Logger
	metrics  *metrics.PipelineMetrics
}

// NewService creates the submission orchestrator.
func NewService(repo Repository, blobs Uploader, assessor Assessor, logger *logging.Logger, m *metrics.PipelineMetrics) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{repo: repo, blobs: blobs, assessor: assessor, logger: logger, metrics: m}
}

// Submit runs the pipeline for one report and persists exactly one record.
//
// Ordering is load-bearing: the assessment consumes the decoded bytes and
// runs before the blob upload, so an upload failure can never discard an
// already-computed assessment. Every per-step failure degrades that step's
// contribution to the record (nil image reference, fallback assessment);
// only a repository insert failure aborts the submission.
func (s *Service) Submit(ctx context.Context, req *SubmitRequest) (*Report, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	log := s.logger.With("category", req.Category)

	// Decode. Base64 validity and image decodability fail independently:
	// undecodable base64 means no bytes at all, while valid base64 holding
	// garbage pixels still yields bytes we can upload.
	var raw, normalized []byte
	if req.Image != "" {
		var err error
		raw, err = imaging.DecodePayload(req.Image)
		if err != nil {
			log.Warn("image payload undecodable, treating as no image", "error", err)
			raw = nil
		} else {
			normalized, err = imaging.Normalize(raw)
			if err != nil {
				log.Warn("image bytes not a supported image, skipping assessment", "error", err)
				normalized = nil
			}
		}
	}

	// Assess before upload.
	var ra *assessment.RiskAssessment
	if normalized != nil {
		if s.assessor != nil {
			ra = s.assessor.Assess(ctx, normalized, req.Category, req.Description)
		} else {
			ra = assessment.UnavailableFallback()
		}
	}

	// Upload the original decoded bytes.
	var imageURL *string
	if raw != nil && s.blobs != nil && s.blobs.Enabled() {
		fileID, err := s.blobs.Upload(ctx, raw, "image/jpeg")
		if err != nil {
			// The record is still persisted; only the image reference is lost.
			log.Error("image upload failed", "error", err)
			s.metrics.ObserveUpload("error")
		} else {
			url := "/image/" + fileID
			imageURL = &url
			s.metrics.ObserveUpload("ok")
		}
	}

	report := &Report{
		ID:             uuid.NewString(),
		Category:       req.Category,
		Description:    req.Description,
		Location:       req.Location,
		ImageURL:       imageURL,
		RiskAssessment: ra,
		Status:         StatusReported,
		Timestamp:      time.Now().UTC(),
	}

	if err := s.repo.Insert(ctx, report); err != nil {
		s.metrics.ObserveSubmission("failed")
		if errors.Is(err, ErrPersistenceUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrPersistenceUnavailable, err)
	}

	s.metrics.ObserveSubmission("persisted")
	log.Info("report persisted",
		"id", report.ID,
		"has_image", imageURL != nil,
		"assessed", ra != nil && !ra.IsFallback(),
	)
	return report, nil
}

// List returns all reports newest first.
func (s *Service) List(ctx context.Context) ([]*Report, error) {
	return s.repo.ListNewestFirst(ctx)
}

// UpdateStatus advances a report's lifecycle status.
func (s *Service) UpdateStatus(ctx context.Context, id, status string) error {
	if !ValidStatus(status) {
		return ErrInvalidStatus
	}
	return s.repo.UpdateStatus(ctx, id, status)
}

// AddFeedback appends assessment feedback to a report.
func (s *Service) AddFeedback(ctx context.Context, fb *Feedback) error {
	if err := fb.Validate(); err != nil {
		return err
	}
	if fb.ID == "" {
		fb.ID = uuid.NewString()
	}
	if fb.CreatedAt.IsZero() {
		fb.CreatedAt = time.Now().UTC()
	}
	return s.repo.AddFeedback(ctx, fb)
}
