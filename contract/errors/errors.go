package errors

// Error codes for the service-state contracts. Keep stable; used across adapters, binder and store.
const (
	ErrCodeServiceNotFound     = "servicestate.service_not_found"
	ErrCodeInvalidRoute        = "servicestate.invalid_route"
	ErrCodeDuplicateName       = "servicestate.duplicate_name"
	ErrCodeConfigInvalid       = "servicestate.config_invalid"
	ErrCodePublishFailed       = "servicestate.publish_failed"
	ErrCodeSubscribeFailed     = "servicestate.subscribe_failed"
	ErrCodeSerializationFailed = "servicestate.serialization_failed"
)

// Code returns an error value that carries only a code string.
// It implements error by returning the code string in Error().
func Code(code string) error { return codedError(code) }

type codedError string

func (e codedError) Error() string { return string(e) }

var (
	ErrServiceNotFound     = Code(ErrCodeServiceNotFound)
	ErrInvalidRoute        = Code(ErrCodeInvalidRoute)
	ErrDuplicateName       = Code(ErrCodeDuplicateName)
	ErrConfigInvalid       = Code(ErrCodeConfigInvalid)
	ErrPublishFailed       = Code(ErrCodePublishFailed)
	ErrSubscribeFailed     = Code(ErrCodeSubscribeFailed)
	ErrSerializationFailed = Code(ErrCodeSerializationFailed)
)
