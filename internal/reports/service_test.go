package reports

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opencivic/infrawatch/internal/assessment"
)

// fakeAssessor repairs a canned model response, exercising the real
// validator end to end.
type fakeAssessor struct {
	response string
	calls    int
	order    *[]string
}

func (f *fakeAssessor) Assess(ctx context.Context, imageJPEG []byte, category, description string) *assessment.RiskAssessment {
	f.calls++
	if f.order != nil {
		*f.order = append(*f.order, "assess")
	}
	return assessment.Repair(f.response)
}

type fakeUploader struct {
	fileID  string
	err     error
	enabled bool
	calls   int
	order   *[]string
}

func (f *fakeUploader) Upload(ctx context.Context, data []byte, contentType string) (string, error) {
	f.calls++
	if f.order != nil {
		*f.order = append(*f.order, "upload")
	}
	if f.err != nil {
		return "", f.err
	}
	return f.fileID, nil
}

func (f *fakeUploader) Enabled() bool { return f.enabled }

type failingRepo struct{}

func (failingRepo) Insert(ctx context.Context, report *Report) error {
	return errors.New("connection refused")
}
func (failingRepo) GetByID(ctx context.Context, id string) (*Report, error) {
	return nil, ErrReportNotFound
}
func (failingRepo) ListNewestFirst(ctx context.Context) ([]*Report, error) { return nil, nil }
func (failingRepo) UpdateStatus(ctx context.Context, id, status string) error {
	return ErrReportNotFound
}
func (failingRepo) AddFeedback(ctx context.Context, fb *Feedback) error { return ErrReportNotFound }

func imagePayload(t *testing.T) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.RGBA{R: 200, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func TestSubmitNoImage(t *testing.T) {
	repo := NewInMemoryRepository()
	svc := NewService(repo, &fakeUploader{enabled: true}, &fakeAssessor{}, nil, nil)

	report, err := svc.Submit(context.Background(), &SubmitRequest{
		Category:    "pothole",
		Description: "deep crack",
		Location:    "12.9,77.6",
	})
	require.NoError(t, err)
	assert.Nil(t, report.RiskAssessment)
	assert.Nil(t, report.ImageURL)
	assert.Equal(t, StatusReported, report.Status)
	assert.False(t, report.Timestamp.IsZero())

	stored, err := repo.GetByID(context.Background(), report.ID)
	require.NoError(t, err)
	assert.Equal(t, "pothole", stored.Category)
	assert.Equal(t, "deep crack", stored.Description)
	assert.Equal(t, "12.9,77.6", stored.Location)
}

func TestSubmitEndToEndClamping(t *testing.T) {
	repo := NewInMemoryRepository()
	assessor := &fakeAssessor{response: `{"risk_level":9,"urgency":"critical"}`}
	uploader := &fakeUploader{enabled: true, fileID: "file-123"}
	svc := NewService(repo, uploader, assessor, nil, nil)

	report, err := svc.Submit(context.Background(), &SubmitRequest{
		Category:    "pothole",
		Description: "deep crack",
		Location:    "12.9,77.6",
		Image:       imagePayload(t),
	})
	require.NoError(t, err)
	require.NotNil(t, report.RiskAssessment)
	assert.Equal(t, 5, report.RiskAssessment.RiskLevel)
	assert.Equal(t, "medium", report.RiskAssessment.Urgency)
	assert.Equal(t, []string{}, report.RiskAssessment.IdentifiedRisks)
	require.NotNil(t, report.ImageURL)
	assert.Equal(t, "/image/file-123", *report.ImageURL)

	stored, err := repo.GetByID(context.Background(), report.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, stored.RiskAssessment.RiskLevel)
}

func TestSubmitAssessmentRunsBeforeUpload(t *testing.T) {
	var order []string
	assessor := &fakeAssessor{response: `{"risk_level":3}`, order: &order}
	uploader := &fakeUploader{enabled: true, fileID: "f", order: &order}
	svc := NewService(NewInMemoryRepository(), uploader, assessor, nil, nil)

	_, err := svc.Submit(context.Background(), &SubmitRequest{
		Category: "bridge", Description: "rusted beam", Location: "x", Image: imagePayload(t),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"assess", "upload"}, order)
}

func TestSubmitUploadFailureKeepsAssessment(t *testing.T) {
	repo := NewInMemoryRepository()
	assessor := &fakeAssessor{response: `{"risk_level":4,"safety_risk":4,"urgency":"high","damage_type":"Sinkhole"}`}
	uploader := &fakeUploader{enabled: true, err: errors.New("bucket gone")}
	svc := NewService(repo, uploader, assessor, nil, nil)

	report, err := svc.Submit(context.Background(), &SubmitRequest{
		Category: "road", Description: "hole opened up", Location: "y", Image: imagePayload(t),
	})
	require.NoError(t, err)
	assert.Nil(t, report.ImageURL)
	require.NotNil(t, report.RiskAssessment)
	assert.Equal(t, 4, report.RiskAssessment.RiskLevel)
	assert.Equal(t, "Sinkhole", report.RiskAssessment.DamageType)
}

func TestSubmitInvalidBase64SkipsPipeline(t *testing.T) {
	assessor := &fakeAssessor{response: `{"risk_level":3}`}
	uploader := &fakeUploader{enabled: true, fileID: "f"}
	svc := NewService(NewInMemoryRepository(), uploader, assessor, nil, nil)

	report, err := svc.Submit(context.Background(), &SubmitRequest{
		Category: "road", Description: "d", Location: "l", Image: "@@@not base64@@@",
	})
	require.NoError(t, err)
	assert.Nil(t, report.RiskAssessment)
	assert.Nil(t, report.ImageURL)
	assert.Zero(t, assessor.calls)
	assert.Zero(t, uploader.calls)
}

func TestSubmitGarbagePixelsUploadsButSkipsAssessment(t *testing.T) {
	assessor := &fakeAssessor{response: `{"risk_level":3}`}
	uploader := &fakeUploader{enabled: true, fileID: "raw-1"}
	svc := NewService(NewInMemoryRepository(), uploader, assessor, nil, nil)

	payload := base64.StdEncoding.EncodeToString([]byte("not an image at all"))
	report, err := svc.Submit(context.Background(), &SubmitRequest{
		Category: "road", Description: "d", Location: "l", Image: payload,
	})
	require.NoError(t, err)
	assert.Nil(t, report.RiskAssessment)
	assert.Zero(t, assessor.calls)
	assert.Equal(t, 1, uploader.calls)
	require.NotNil(t, report.ImageURL)
	assert.Equal(t, "/image/raw-1", *report.ImageURL)
}

func TestSubmitPersistenceFailureAborts(t *testing.T) {
	svc := NewService(failingRepo{}, &fakeUploader{}, &fakeAssessor{}, nil, nil)

	_, err := svc.Submit(context.Background(), &SubmitRequest{
		Category: "road", Description: "d", Location: "l",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPersistenceUnavailable)
}

func TestSubmitValidation(t *testing.T) {
	svc := NewService(NewInMemoryRepository(), &fakeUploader{}, &fakeAssessor{}, nil, nil)

	tests := []struct {
		req  SubmitRequest
		want error
	}{
		{SubmitRequest{Description: "d", Location: "l"}, ErrMissingCategory},
		{SubmitRequest{Category: "c", Location: "l"}, ErrMissingDescription},
		{SubmitRequest{Category: "c", Description: "d"}, ErrMissingLocation},
	}
	for _, tt := range tests {
		_, err := svc.Submit(context.Background(), &tt.req)
		assert.ErrorIs(t, err, tt.want)
	}
}

func TestUpdateStatusLifecycle(t *testing.T) {
	repo := NewInMemoryRepository()
	svc := NewService(repo, &fakeUploader{}, &fakeAssessor{}, nil, nil)

	report, err := svc.Submit(context.Background(), &SubmitRequest{
		Category: "c", Description: "d", Location: "l",
	})
	require.NoError(t, err)

	require.NoError(t, svc.UpdateStatus(context.Background(), report.ID, StatusInProgress))
	stored, err := repo.GetByID(context.Background(), report.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusInProgress, stored.Status)

	assert.ErrorIs(t, svc.UpdateStatus(context.Background(), report.ID, "Bogus"), ErrInvalidStatus)
	assert.ErrorIs(t, svc.UpdateStatus(context.Background(), "missing", StatusResolved), ErrReportNotFound)
}

func TestAddFeedback(t *testing.T) {
	repo := NewInMemoryRepository()
	svc := NewService(repo, &fakeUploader{}, &fakeAssessor{}, nil, nil)

	report, err := svc.Submit(context.Background(), &SubmitRequest{
		Category: "c", Description: "d", Location: "l",
	})
	require.NoError(t, err)

	fb := &Feedback{ReportID: report.ID, FeedbackType: "incorrect_severity", Comment: "Looks worse in person"}
	require.NoError(t, svc.AddFeedback(context.Background(), fb))
	assert.NotEmpty(t, fb.ID)
	assert.False(t, fb.CreatedAt.IsZero())

	got := repo.FeedbackFor(report.ID)
	require.Len(t, got, 1)
	assert.Equal(t, "incorrect_severity", got[0].FeedbackType)

	assert.ErrorIs(t, svc.AddFeedback(context.Background(), &Feedback{ReportID: report.ID}), ErrMissingFeedbackType)
}

func TestListNewestFirst(t *testing.T) {
	repo := NewInMemoryRepository()
	svc := NewService(repo, &fakeUploader{}, &fakeAssessor{}, nil, nil)

	first, err := svc.Submit(context.Background(), &SubmitRequest{Category: "a", Description: "d", Location: "l"})
	require.NoError(t, err)
	second, err := svc.Submit(context.Background(), &SubmitRequest{Category: "b", Description: "d", Location: "l"})
	require.NoError(t, err)

	// Force distinct timestamps.
	r1, _ := repo.GetByID(context.Background(), first.ID)
	r2, _ := repo.GetByID(context.Background(), second.ID)
	require.NoError(t, repo.Insert(context.Background(), r1))
	r2.Timestamp = r1.Timestamp.Add(1)
	require.NoError(t, repo.Insert(context.Background(), r2))

	got, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, second.ID, got[0].ID)
	assert.Equal(t, first.ID, got[1].ID)
}
