package errors

// ErrorCode identifies a failure class in API responses.
type ErrorCode string

const (
	ErrorCode_HTTP_OK ErrorCode = "OK"

	// General
	ErrorCode_INTERNAL         ErrorCode = "INTERNAL"
	ErrorCode_INVALID_ARGUMENT ErrorCode = "INVALID_ARGUMENT"
	ErrorCode_INVALID_PAYLOAD  ErrorCode = "INVALID_PAYLOAD"
	ErrorCode_NOT_FOUND        ErrorCode = "NOT_FOUND"
	ErrorCode_CONFLICT         ErrorCode = "CONFLICT"
	ErrorCode_UNAUTHENTICATED  ErrorCode = "UNAUTHENTICATED"

	// Authentication
	ErrorCode_AUTH_INVALID_TOKEN ErrorCode = "AUTH_INVALID_TOKEN"
	ErrorCode_AUTH_TOKEN_EXPIRED ErrorCode = "AUTH_TOKEN_EXPIRED"

	// Workspace
	ErrorCode_WORKSPACE_TRANSCRIPT_MISSING  ErrorCode = "WORKSPACE_TRANSCRIPT_MISSING"
	ErrorCode_WORKSPACE_SCRIPT_UNPARSEABLE  ErrorCode = "WORKSPACE_SCRIPT_UNPARSEABLE"
	ErrorCode_WORKSPACE_NOTHING_TO_SYNTH    ErrorCode = "WORKSPACE_NOTHING_TO_SYNTHESIZE"
	ErrorCode_WORKSPACE_NOTHING_TO_EXPORT   ErrorCode = "WORKSPACE_NOTHING_TO_EXPORT"
	ErrorCode_WORKSPACE_OPERATION_IN_FLIGHT ErrorCode = "WORKSPACE_OPERATION_IN_FLIGHT"
	ErrorCode_WORKSPACE_SUPERSEDED          ErrorCode = "WORKSPACE_OPERATION_SUPERSEDED"

	// Integration
	ErrorCode_INTEGRATION_STORAGE_FAILED      ErrorCode = "INTEGRATION_STORAGE_FAILED"
	ErrorCode_INTEGRATION_EXTERNAL_API_FAILED ErrorCode = "INTEGRATION_EXTERNAL_API_FAILED"
)

func (c ErrorCode) String() string {
	if c == "" {
		return string(ErrorCode_INTERNAL)
	}
	return string(c)
}
