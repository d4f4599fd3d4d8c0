package usecase

type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func IsDomainError(err error) bool {
	_, ok := err.(*DomainError)
	return ok
}

type TechnicalError struct {
	Code    string
	Message string
}

func (e *TechnicalError) Error() string {
	return e.Message
}

func IsTechnicalError(err error) bool {
	_, ok := err.(*TechnicalError)
	return ok
}

// Recoverable lookup failures. The webhook contract acknowledges these with
// HTTP 200 so Telegram does not retry-storm the endpoint.
var (
	ErrChannelNotFound      = &DomainError{Code: "channel_not_found", Message: "Channel not found"}
	ErrBotNotFound          = &DomainError{Code: "bot_not_found", Message: "Bot not found"}
	ErrLeadNotFound         = &DomainError{Code: "lead_not_found", Message: "Lead not found"}
	ErrChannelNoTelegramID  = &DomainError{Code: "channel_no_telegram_id", Message: "Channel does not have a Telegram ID"}
	ErrWelcomeNotConfigured = &DomainError{Code: "welcome_not_configured", Message: "Welcome message not enabled or not set"}
	ErrMissingParameters    = &DomainError{Code: "missing_parameters", Message: "Missing required parameters"}
	ErrInvalidAPIKey        = &DomainError{Code: "invalid_api_key", Message: "Invalid API key"}
	ErrTrackingDisabled     = &DomainError{Code: "tracking_disabled", Message: "Tracking is not enabled for this channel"}
)
