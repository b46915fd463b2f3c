package response

// Error codes carried next to the human readable message so clients can map
// failures without parsing text.
const (
	CodeUnauthenticated           = "Unauthenticated"
	CodeUserPending               = "UserPending"
	CodeUserSuspended             = "UserSuspended"
	CodeForbidden                 = "Forbidden"
	CodeStoreUnavailable          = "StoreUnavailable"
	CodeNoCredentialsEnrolled     = "NoCredentialsEnrolled"
	CodeChallengeExpiredOrMissing = "ChallengeExpiredOrMissing"
	CodeVerificationFailed        = "VerificationFailed"
	CodeCredentialNotFound        = "CredentialNotFound"
	CodeCounterRegressed          = "CounterRegressed"
	CodeSessionAlreadyOpen        = "SessionAlreadyOpen"
	CodeNoActiveSession           = "NoActiveSession"
	CodeOutsideWorkLocation       = "OutsideWorkLocation"
	CodeIdentityNotVerified       = "IdentityNotVerified"
	CodeInvalidRequest            = "InvalidRequest"
	CodeRateLimited               = "RateLimited"
	CodeInternal                  = "Internal"
)

type ErrorResponse struct {
	Error  string            `json:"error"`
	Code   string            `json:"code,omitempty"`
	Fields map[string]string `json:"fields,omitempty"`
}
