package logging

// Standardized structured-log field names. Components must use these
// constants rather than ad hoc strings so downstream filtering works.
const (
	// FieldComponent identifies the subsystem emitting the record.
	FieldComponent = "component"
	// FieldEventType categorizes the event (e.g. "file_detected",
	// "resolution_rejected", "backfill_completed").
	FieldEventType = "event_type"
	// FieldErrorHint carries a operator-facing suggestion for recovery.
	FieldErrorHint = "error_hint"
	// FieldSessionID is the monitor session identifier.
	FieldSessionID = "session_id"
	// FieldUnit is the work-unit (mapsheet) identifier.
	FieldUnit = "unit"
	// FieldCategory is the submission category.
	FieldCategory = "category"
	// FieldFilename is the basename of the file being handled.
	FieldFilename = "filename"
	// FieldStrategy names the matching strategy that produced a result.
	FieldStrategy = "strategy"
	// FieldScore is a similarity or aggregate match score.
	FieldScore = "score"
	// FieldReason is a rejection or decision reason.
	FieldReason = "reason"
)
