package errors

import (
	"errors"
	"fmt"
)

// Wrap wraps an error with additional context, creating a SignetError if the input is not already one
func Wrap(err error, errType ErrorType, code, message string) *SignetError {
	if err == nil {
		return nil
	}

	// Keep location and component of an inner SignetError.
	var se *SignetError
	if errors.As(err, &se) {
		return &SignetError{
			Type:        errType,
			Code:        code,
			Message:     message,
			Cause:       se,
			Context:     se.Context,
			Component:   se.Component,
			FilePath:    se.FilePath,
			Line:        se.Line,
			Column:      se.Column,
			Recoverable: se.Recoverable,
		}
	}

	return &SignetError{
		Type:        errType,
		Code:        code,
		Message:     message,
		Cause:       err,
		Recoverable: errType == ErrorTypeValidation || errType == ErrorTypeBuild || errType == ErrorTypeCompile,
	}
}

// WrapBuild wraps an error as a build error with component context
func WrapBuild(err error, code, message, component string) *SignetError {
	se := Wrap(err, ErrorTypeBuild, code, message)
	if se != nil {
		se.Component = component
	}
	return se
}

// WrapIO wraps an error as an I/O error
func WrapIO(err error, code, message string) *SignetError {
	se := Wrap(err, ErrorTypeIO, code, message)
	if se != nil {
		se.Recoverable = false
	}
	return se
}

// WrapConfig wraps an error as a configuration error
func WrapConfig(err error, code, message string) *SignetError {
	se := Wrap(err, ErrorTypeConfig, code, message)
	if se != nil {
		se.Recoverable = false
	}
	return se
}

// GetErrorContext extracts context information from a SignetError
func GetErrorContext(err error) map[string]interface{} {
	var se *SignetError
	if !errors.As(err, &se) {
		return map[string]interface{}{
			"message": err.Error(),
			"type":    "unknown",
		}
	}

	context := make(map[string]interface{}, len(se.Context)+6)
	for k, v := range se.Context {
		context[k] = v
	}
	if se.Component != "" {
		context["component"] = se.Component
	}
	if se.FilePath != "" {
		context["file"] = se.FilePath
		if se.Line > 0 {
			context["line"] = se.Line
		}
		if se.Column > 0 {
			context["column"] = se.Column
		}
	}
	context["type"] = string(se.Type)
	context["code"] = se.Code
	context["recoverable"] = se.Recoverable
	return context
}

// CombineErrors combines multiple errors into a single error with context
func CombineErrors(errs ...error) error {
	var nonNil []error
	for _, err := range errs {
		if err != nil {
			nonNil = append(nonNil, err)
		}
	}
	if len(nonNil) == 0 {
		return nil
	}
	if len(nonNil) == 1 {
		return nonNil[0]
	}

	messages := make([]string, 0, len(nonNil))
	for _, err := range nonNil {
		messages = append(messages, err.Error())
	}

	return &SignetError{
		Type:    ErrorTypeInternal,
		Code:    "ERR_MULTIPLE_ERRORS",
		Message: fmt.Sprintf("multiple errors occurred: %d errors", len(nonNil)),
		Context: map[string]interface{}{
			"error_count": len(nonNil),
			"errors":      messages,
		},
		Cause: errors.Join(nonNil...),
	}
}
