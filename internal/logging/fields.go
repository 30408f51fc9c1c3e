package logging

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldRunID is the standardized structured logging key for run identifiers.
	FieldRunID = "run_id"
	// FieldTrigger is the standardized structured logging key for run trigger sources.
	FieldTrigger = "trigger"
	// FieldRole is the standardized structured logging key for bucket roles.
	FieldRole = "role"
	// FieldKey is the standardized structured logging key for object keys.
	FieldKey = "key"
	// FieldErrorHint suggests a remediation for an error condition.
	FieldErrorHint = "error_hint"
)
