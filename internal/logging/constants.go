package logging

// Standard field names for structured log output.
const (
	FieldFile       = "file_path"
	FieldProvider   = "provider"
	FieldModel      = "model"
	FieldEndpoint   = "endpoint"
	FieldCategory   = "category"
	FieldConfidence = "confidence"
	FieldReason     = "reason"
	FieldOperation  = "operation"
	FieldStatus     = "status"
	FieldStatusCode = "status_code"
	FieldError      = "error"
	FieldDuration   = "duration_ms"
	FieldCount      = "count"
	FieldAttempt    = "attempt"
	FieldKey        = "key"
	FieldOutputFile = "output_file"
)
