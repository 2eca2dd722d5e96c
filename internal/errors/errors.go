package errors

import (
	"errors"
	"fmt"
)

// Basic error check functions from standard library
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
)

// appError implements the Error interface
type appError struct {
	code    ErrorCode
	message string
	err     error
	data    any
}

func (e *appError) Error() string {
	message := e.message
	if message == "" {
		message = GetErrorMessage(e.code)
	}

	if e.data != nil {
		return fmt.Sprintf("%s: %v", message, e.data)
	}

	if e.err != nil {
		return fmt.Sprintf("%s: %v", message, e.err)
	}

	return message
}

func (e *appError) Code() ErrorCode {
	return e.code
}

func (e *appError) WithMessage(msg string) Error {
	return &appError{
		code:    e.code,
		message: msg,
		err:     e.err,
		data:    e.data,
	}
}

func (e *appError) WithData(data any) Error {
	return &appError{
		code:    e.code,
		message: e.message,
		err:     e.err,
		data:    data,
	}
}

func (e *appError) GetData() any {
	return e.data
}

func (e *appError) Unwrap() error {
	return e.err
}

// Is matches another coded error by code, so sentinel-style checks
// like errors.Is(err, factory.New(code)) work across wrapping.
func (e *appError) Is(target error) bool {
	var t *appError
	if !errors.As(target, &t) {
		return false
	}

	return t.code == e.code
}

type defaultFactory struct{}

func (*defaultFactory) New(code ErrorCode) Error {
	return &appError{
		code: code,
	}
}

func (*defaultFactory) Wrap(code ErrorCode, err error) Error {
	return &appError{
		code: code,
		err:  err,
	}
}

func (*defaultFactory) WithMessage(code ErrorCode, msg string) Error {
	return &appError{
		code:    code,
		message: msg,
	}
}

func (*defaultFactory) WithData(code ErrorCode, data any) Error {
	return &appError{
		code: code,
		data: data,
	}
}

// New creates a Factory instance for error creation
func New() Factory {
	return &defaultFactory{}
}

// HasCode reports whether err, or any error it wraps, carries the given code.
func HasCode(err error, code ErrorCode) bool {
	var e Error
	for err != nil {
		if errors.As(err, &e) {
			if e.Code() == code {
				return true
			}
			err = e.Unwrap()
			continue
		}
		return false
	}

	return false
}
