package reports

import "errors"

var (
	// ErrMissingCategory is returned when the submission has no category.
	ErrMissingCategory = errors.New("category is required")

	// ErrMissingDescription is returned when the submission has no description.
	ErrMissingDescription = errors.New("description is required")

	// ErrMissingLocation is returned when the submission has no location.
	ErrMissingLocation = errors.New("location is required")

	// ErrReportNotFound is returned when no report exists for the given id.
	ErrReportNotFound = errors.New("report not found")

	// ErrInvalidStatus is returned for statuses outside the lifecycle set.
	ErrInvalidStatus = errors.New("invalid report status")

	// ErrMissingReportID is returned when feedback names no report.
	ErrMissingReportID = errors.New("report_id is required")

	// ErrMissingFeedbackType is returned when feedback has no type.
	ErrMissingFeedbackType = errors.New("feedback_type is required")

	// ErrPersistenceUnavailable is the one pipeline failure that aborts a
	// submission: the report store itself could not accept the record.
	ErrPersistenceUnavailable = errors.New("report store unavailable")
)
