package logging

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldModule is the standardized structured logging key for monitor module names.
	FieldModule = "module"
	// FieldEntry is the standardized structured logging key for filesystem entry paths.
	FieldEntry = "entry"
	// FieldTrigger is the standardized structured logging key for trigger identifiers.
	FieldTrigger = "trigger"
	// FieldRunID is the standardized structured logging key for daemon run identifiers.
	FieldRunID = "run_id"
	// FieldEventType classifies log lines for downstream filtering.
	FieldEventType = "event_type"
	// FieldErrorHint carries the operator-facing next step for a failure.
	FieldErrorHint = "error_hint"
	// FieldImpact is the standardized key for user-facing consequence of a warning.
	FieldImpact = "impact"
	// FieldAlert flags warnings or anomalies that should stand out in structured logs.
	FieldAlert = "alert"
)
