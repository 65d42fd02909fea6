package constants

import "time"

const (
	MaxTextLength    = 5000
	PreviewLength    = 50
	PreviewEllipsis  = "..."
	HistoryCapacity  = 10
	AutoDetectLang   = "auto"
	DefaultVoiceLang = "en"
)

const (
	DefaultRateLimitRequests = 5
	DefaultRateLimitWindow   = 60 * time.Second
)

const (
	RouteHome    = "/"
	RouteHistory = "/history"
	RouteSpeak   = "/speak/:lang/*text"
	RouteHealthz = "/healthz"

	SpeakPathPrefix = "/speak"
)

const (
	ErrorCodeRateLimited   = "rate_limited"
	ErrorCodeMissingField  = "missing_field"
	ErrorCodeInvalidInput  = "invalid_request"
	ErrorCodeEmptyText     = "empty_text"
	ErrorCodeTooLong       = "too_long"
	ErrorCodeProvider      = "provider_error"
	ErrorCodeSynthesis     = "synthesis_error"
	ErrorCodeInternal      = "internal_error"
	RateLimitMessage       = "Too many requests. Please slow down."
	NoTranslationAvailable = "no translation available"
)

type contextKey string

const (
	RequestIDKey contextKey = "request_id"
)
