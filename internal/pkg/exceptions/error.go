package exceptions

import (
	"clinicdesk-service/internal/pkg/constvars"
	"errors"
	"fmt"
	"runtime"
)

// Error taxonomy shared by every layer. Use errors.Is against these.
var (
	ErrKindValidation   = errors.New("validation error")
	ErrKindNotFound     = errors.New("not found")
	ErrKindUnauthorized = errors.New("unauthorized")
	ErrKindNetwork      = errors.New("network error")
	ErrKindServer       = errors.New("server error")
	ErrKindConflict     = errors.New("conflict")
	ErrKindCanceled     = errors.New("canceled")
)

var kinds = []error{
	ErrKindValidation,
	ErrKindNotFound,
	ErrKindUnauthorized,
	ErrKindNetwork,
	ErrKindServer,
	ErrKindConflict,
	ErrKindCanceled,
}

type CustomError struct {
	StatusCode    int        `json:"status_code"`
	Success       bool       `json:"success"`
	ClientMessage string     `json:"message"`
	DevMessage    string     `json:"dev_message,omitempty"`
	Locations     []Location `json:"locations,omitempty"`
	Kind          error      `json:"-"`
	Err           error      `json:"-"`
}

type Location struct {
	File         string `json:"file"`
	Line         int    `json:"line"`
	FunctionName string `json:"function_name"`
}

func (e *CustomError) Error() string {
	return e.DevMessage
}

func (e *CustomError) Unwrap() []error {
	unwrapped := make([]error, 0, 2)
	if e.Kind != nil {
		unwrapped = append(unwrapped, e.Kind)
	}
	if e.Err != nil {
		unwrapped = append(unwrapped, e.Err)
	}
	return unwrapped
}

// BuildNewCustomError wraps err with client/dev messages. The error kind is
// derived from statusCode; locations of an already wrapped CustomError are kept.
func BuildNewCustomError(err error, statusCode int, clientMessage, devMessage string) *CustomError {
	customErr := &CustomError{
		StatusCode:    statusCode,
		ClientMessage: clientMessage,
		DevMessage:    devMessage,
		Kind:          kindFromStatus(statusCode),
		Err:           err,
	}

	var wrapped *CustomError
	if errors.As(err, &wrapped) {
		customErr.Locations = append(customErr.Locations, wrapped.Locations...)
	}
	customErr.Locations = append(customErr.Locations, getLocation(3))

	if err != nil {
		customErr.DevMessage = fmt.Sprintf("%s: %s", devMessage, err.Error())
	}
	return customErr
}

// KindOf reports the taxonomy kind carried by err, or nil. The outermost
// CustomError decides when several are chained.
func KindOf(err error) error {
	var customErr *CustomError
	if errors.As(err, &customErr) && customErr.Kind != nil {
		return customErr.Kind
	}
	for _, kind := range kinds {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}

func kindFromStatus(statusCode int) error {
	switch statusCode {
	case constvars.StatusBadRequest, constvars.StatusUnprocessableEntity:
		return ErrKindValidation
	case constvars.StatusUnauthorized, constvars.StatusForbidden:
		return ErrKindUnauthorized
	case constvars.StatusNotFound:
		return ErrKindNotFound
	case constvars.StatusConflict:
		return ErrKindConflict
	case constvars.StatusGone:
		return ErrKindCanceled
	case constvars.StatusServiceUnavailable, constvars.StatusGatewayTimeout, constvars.StatusTooManyRequests:
		return ErrKindNetwork
	default:
		return ErrKindServer
	}
}

func getLocation(skip int) Location {
	pc, file, line, ok := runtime.Caller(skip)
	if !ok {
		return Location{
			File:         constvars.ErrFileLocationUnknown,
			Line:         0,
			FunctionName: constvars.ErrFunctionNameUnknown,
		}
	}
	function := runtime.FuncForPC(pc).Name()
	return Location{
		File:         file,
		Line:         line,
		FunctionName: function,
	}
}
