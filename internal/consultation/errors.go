package consultation

import (
	"errors"
	"fmt"

	"renovation_consult_server/internal/utils"
)

// ErrorKind is the closed set of ways a submission can fail.
type ErrorKind string

const (
	KindMissingCredential ErrorKind = "missing_credential"
	KindClientInit        ErrorKind = "client_init_failure"
	KindGeneration        ErrorKind = "generation_failure"
)

var ErrMissingCredential = errors.New("credential is required")

// Error is returned by Submit for every failure. Err carries the underlying cause.
type Error struct {
	Kind ErrorKind
	Err  error
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

// Message is the underlying cause, suitable for display.
func (e *Error) Message() string {
	if e.Err == nil {
		return string(e.Kind)
	}
	return e.Err.Error()
}

// Hint tells the user what to do next.
func (e *Error) Hint() string {
	switch e.Kind {
	case KindMissingCredential:
		return "⚠️ 請先貼上您的 Google API Key 才能運作喔！"
	case KindGeneration:
		if utils.IsTransient(e.Err) {
			return "建議：服務暫時忙碌或額度已用完，請稍後重新送出。"
		}
	}
	return "建議：請檢查您的 API Key 是否正確，或是重新送出表單。"
}

// KindOf returns the kind of a Submit error, or "" for other errors.
func KindOf(err error) ErrorKind {
	var cErr *Error
	if errors.As(err, &cErr) {
		return cErr.Kind
	}
	return ""
}
