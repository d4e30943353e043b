package errors

import (
	"fmt"
	"html"
	"strings"
	"sync"
	"time"
)

// BuildError represents an error produced while building one template module.
type BuildError struct {
	Component string
	File      string
	Line      int
	Column    int
	Message   string
	Severity  ErrorSeverity
	Timestamp time.Time
}

// ErrorSeverity represents the severity of an error
type ErrorSeverity int

const (
	ErrorSeverityInfo ErrorSeverity = iota
	ErrorSeverityWarning
	ErrorSeverityError
	ErrorSeverityFatal
)

// String returns the string representation of the severity
func (s ErrorSeverity) String() string {
	switch s {
	case ErrorSeverityInfo:
		return "info"
	case ErrorSeverityWarning:
		return "warning"
	case ErrorSeverityError:
		return "error"
	case ErrorSeverityFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Error implements the error interface
func (be *BuildError) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s: %s", be.File, be.Line, be.Column, be.Severity, be.Message)
}

// FromError converts an error into a BuildError for the given file, keeping
// the location recorded on a SignetError.
func FromError(err error, component, file string) BuildError {
	be := BuildError{
		Component: component,
		File:      file,
		Message:   err.Error(),
		Severity:  ErrorSeverityError,
	}
	if ctx := GetErrorContext(err); ctx != nil {
		if line, ok := ctx["line"].(int); ok {
			be.Line = line
		}
		if column, ok := ctx["column"].(int); ok {
			be.Column = column
		}
	}
	return be
}

// ErrorCollector collects the build errors of the pages that currently fail.
type ErrorCollector struct {
	buildErrors []BuildError
	mutex       sync.RWMutex
}

// NewErrorCollector creates a new error collector
func NewErrorCollector() *ErrorCollector {
	return &ErrorCollector{
		buildErrors: make([]BuildError, 0),
	}
}

// Add adds a build error to the collector
func (ec *ErrorCollector) Add(err BuildError) {
	ec.mutex.Lock()
	defer ec.mutex.Unlock()
	err.Timestamp = time.Now()
	ec.buildErrors = append(ec.buildErrors, err)
}

// GetErrors returns a copy of all collected build errors
func (ec *ErrorCollector) GetErrors() []BuildError {
	ec.mutex.RLock()
	defer ec.mutex.RUnlock()
	result := make([]BuildError, len(ec.buildErrors))
	copy(result, ec.buildErrors)
	return result
}

// HasErrors returns true if there are any errors
func (ec *ErrorCollector) HasErrors() bool {
	ec.mutex.RLock()
	defer ec.mutex.RUnlock()
	return len(ec.buildErrors) > 0
}

// Clear clears all errors
func (ec *ErrorCollector) Clear() {
	ec.mutex.Lock()
	defer ec.mutex.Unlock()
	ec.buildErrors = ec.buildErrors[:0]
}

// ClearFile drops the build errors recorded for one file, used when the
// file is rebuilt.
func (ec *ErrorCollector) ClearFile(file string) {
	ec.mutex.Lock()
	defer ec.mutex.Unlock()
	kept := ec.buildErrors[:0]
	for _, err := range ec.buildErrors {
		if err.File != file {
			kept = append(kept, err)
		}
	}
	ec.buildErrors = kept
}

// GetErrorsByFile returns errors for a specific file
func (ec *ErrorCollector) GetErrorsByFile(file string) []BuildError {
	ec.mutex.RLock()
	defer ec.mutex.RUnlock()
	var fileErrors []BuildError
	for _, err := range ec.buildErrors {
		if err.File == file {
			fileErrors = append(fileErrors, err)
		}
	}
	return fileErrors
}

// ErrorOverlay generates HTML for the dev server's error overlay
func (ec *ErrorCollector) ErrorOverlay() string {
	errs := ec.GetErrors()
	if len(errs) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(`<div id="signet-error-overlay" style="position:fixed;inset:0;background:rgba(0,0,0,.85);color:#fff;font-family:Menlo,monospace;font-size:14px;z-index:9999;padding:20px;overflow:auto">`)
	b.WriteString(`<h2 style="margin:0 0 20px;color:#ff6b6b">Build Errors</h2>`)

	for _, err := range errs {
		color := "#ff6b6b"
		switch err.Severity {
		case ErrorSeverityWarning:
			color = "#feca57"
		case ErrorSeverityInfo:
			color = "#48dbfb"
		}
		fmt.Fprintf(&b,
			`<div style="background:#2d3748;padding:15px;margin-bottom:15px;border-left:4px solid %s">`+
				`<span style="color:%s;font-weight:bold">%s</span> <span style="color:#a0aec0">%s</span>`+
				`<pre style="white-space:pre-wrap">%s</pre><div style="color:#a0aec0">%s:%d:%d</div></div>`,
			color, color, err.Severity, err.Timestamp.Format("15:04:05"),
			html.EscapeString(err.Message), html.EscapeString(err.File), err.Line, err.Column)
	}

	b.WriteString(`</div>`)
	return b.String()
}
