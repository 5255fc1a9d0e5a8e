package voice

import (
	"errors"
	"fmt"
)

// Kind classifies a pipeline failure.
type Kind string

const (
	KindPermissionDenied      Kind = "permission_denied"
	KindTooShort              Kind = "too_short"
	KindPayloadTooLarge       Kind = "payload_too_large"
	KindCorruptCapture        Kind = "corrupt_capture"
	KindTimeout               Kind = "timeout"
	KindMalformedResponse     Kind = "malformed_response"
	KindServiceError          Kind = "service_error"
	KindUnsupportedActionType Kind = "unsupported_action_type"
	KindUnresolvedTarget      Kind = "unresolved_target"
	KindEmptyCreateRequest    Kind = "empty_create_request"
	KindSynthesisFailure      Kind = "synthesis_failure"
	KindNotImplemented        Kind = "not_implemented"
	KindStorage               Kind = "storage"
	KindCancelled             Kind = "cancelled"
)

var userMessages = map[Kind]string{
	KindPermissionDenied:      "Microphone access is needed to record voice commands.",
	KindTooShort:              "Hold the button a little longer while you speak.",
	KindPayloadTooLarge:       "That recording is too long. Try a shorter command.",
	KindCorruptCapture:        "The recording didn't come through. Please try again.",
	KindTimeout:               "That took too long. Please try again.",
	KindMalformedResponse:     "Sorry, I couldn't make sense of that. Please try again.",
	KindServiceError:          "The voice assistant is unavailable right now.",
	KindUnsupportedActionType: "I heard you, but I can't do that yet.",
	KindUnresolvedTarget:      "I heard you, but couldn't find what you were referring to.",
	KindEmptyCreateRequest:    "I heard you, but didn't catch what to add.",
	KindSynthesisFailure:      "I couldn't prepare those items. You can try confirming again.",
	KindNotImplemented:        "I understood, but that action isn't available yet.",
	KindStorage:               "Your changes couldn't be saved.",
	KindCancelled:             "Cancelled.",
}

// UserMessage returns the default user-facing text for k.
func (k Kind) UserMessage() string {
	if msg, ok := userMessages[k]; ok {
		return msg
	}
	return "Something went wrong."
}

// IsCapture reports whether k is a permission or recording problem.
func (k Kind) IsCapture() bool {
	switch k {
	case KindPermissionDenied, KindTooShort, KindPayloadTooLarge, KindCorruptCapture:
		return true
	}
	return false
}

// IsAction reports whether k rejects the action while the transcription and
// message are still worth showing.
func (k Kind) IsAction() bool {
	switch k {
	case KindUnsupportedActionType, KindUnresolvedTarget, KindEmptyCreateRequest, KindNotImplemented:
		return true
	}
	return false
}

// Error is a typed pipeline failure. Message is safe to show to the user;
// Err is the internal cause and is only logged.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

// NewError returns an Error of kind k with the default user message.
func NewError(k Kind, cause error) *Error {
	return &Error{Kind: k, Message: k.UserMessage(), Err: cause}
}

// Errorf returns an Error of kind k whose cause is built from format.
func Errorf(k Kind, format string, args ...any) *Error {
	return NewError(k, fmt.Errorf(format, args...))
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error of the same kind, so errors.Is(err, ErrTimeout)
// works regardless of cause.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// Sentinels for errors.Is comparisons.
var (
	ErrPermissionDenied      = &Error{Kind: KindPermissionDenied}
	ErrTooShort              = &Error{Kind: KindTooShort}
	ErrPayloadTooLarge       = &Error{Kind: KindPayloadTooLarge}
	ErrCorruptCapture        = &Error{Kind: KindCorruptCapture}
	ErrTimeout               = &Error{Kind: KindTimeout}
	ErrMalformedResponse     = &Error{Kind: KindMalformedResponse}
	ErrServiceError          = &Error{Kind: KindServiceError}
	ErrUnsupportedActionType = &Error{Kind: KindUnsupportedActionType}
	ErrUnresolvedTarget      = &Error{Kind: KindUnresolvedTarget}
	ErrEmptyCreateRequest    = &Error{Kind: KindEmptyCreateRequest}
	ErrSynthesisFailure      = &Error{Kind: KindSynthesisFailure}
	ErrNotImplemented        = &Error{Kind: KindNotImplemented}
	ErrStorage               = &Error{Kind: KindStorage}
	ErrCancelled             = &Error{Kind: KindCancelled}
)

// AsError returns err as an *Error, wrapping unknown errors with fallback.
func AsError(err error, fallback Kind) *Error {
	if err == nil {
		return nil
	}
	var ve *Error
	if errors.As(err, &ve) {
		return ve
	}
	return NewError(fallback, err)
}

// KindOf returns the Kind carried by err, or "" when err is not an *Error.
func KindOf(err error) Kind {
	var ve *Error
	if errors.As(err, &ve) {
		return ve.Kind
	}
	return ""
}
