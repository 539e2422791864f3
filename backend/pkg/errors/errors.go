package errors

import (
	"fmt"
	"time"
)

// ErrorType represents the category of error
type ErrorType string

const (
	// ErrorTypeGraph represents graph database errors
	ErrorTypeGraph ErrorType = "graph"
	// ErrorTypeAnalysis represents analyzer/LLM-related errors
	ErrorTypeAnalysis ErrorType = "analysis"
	// ErrorTypeConfig represents configuration errors
	ErrorTypeConfig ErrorType = "config"
	// ErrorTypeContext represents context cancellation/timeout errors
	ErrorTypeContext ErrorType = "context"
)

// BaseError is the base error type with common fields
type BaseError struct {
	Type      ErrorType
	Message   string
	Timestamp time.Time
	Err       error // Wrapped error
}

// Error implements the error interface
func (e *BaseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the wrapped error for error unwrapping
func (e *BaseError) Unwrap() error {
	return e.Err
}

// NewBaseError creates a new base error
func NewBaseError(errType ErrorType, message string, err error) *BaseError {
	return &BaseError{
		Type:      errType,
		Message:   message,
		Timestamp: time.Now(),
		Err:       err,
	}
}

// Graph Errors

// ErrGraphConnectionFailed is returned when the Neo4j connection fails
type ErrGraphConnectionFailed struct {
	*BaseError
	URI string
}

func NewGraphConnectionFailed(uri string, err error) *ErrGraphConnectionFailed {
	return &ErrGraphConnectionFailed{
		BaseError: NewBaseError(ErrorTypeGraph, fmt.Sprintf("failed to connect to Neo4j: %s", uri), err),
		URI:       uri,
	}
}

// ErrGraphQueryFailed is returned when a graph query fails
type ErrGraphQueryFailed struct {
	*BaseError
	Operation string
}

func NewGraphQueryFailed(operation string, err error) *ErrGraphQueryFailed {
	return &ErrGraphQueryFailed{
		BaseError: NewBaseError(ErrorTypeGraph, fmt.Sprintf("query failed: %s", operation), err),
		Operation: operation,
	}
}

// ErrGraphWriteFailed is returned when the per-analysis write transaction fails
type ErrGraphWriteFailed struct {
	*BaseError
	AnalysisID string
}

func NewGraphWriteFailed(analysisID string, err error) *ErrGraphWriteFailed {
	return &ErrGraphWriteFailed{
		BaseError:  NewBaseError(ErrorTypeGraph, fmt.Sprintf("analysis write failed: %s", analysisID), err),
		AnalysisID: analysisID,
	}
}

// ErrAnalysisNotFound is returned when an analysis is not found in the graph
type ErrAnalysisNotFound struct {
	*BaseError
	AnalysisID string
}

func NewAnalysisNotFound(analysisID string) *ErrAnalysisNotFound {
	return &ErrAnalysisNotFound{
		BaseError:  NewBaseError(ErrorTypeGraph, fmt.Sprintf("analysis not found: %s", analysisID), nil),
		AnalysisID: analysisID,
	}
}

// Analysis Errors

// ErrAnalyzerFailed is returned when the LLM analyzer fails
type ErrAnalyzerFailed struct {
	*BaseError
	Model    string
	Attempts int
}

func NewAnalyzerFailed(model string, attempts int, err error) *ErrAnalyzerFailed {
	return &ErrAnalyzerFailed{
		BaseError: NewBaseError(ErrorTypeAnalysis, fmt.Sprintf("analyzer failed after %d attempts", attempts), err),
		Model:     model,
		Attempts:  attempts,
	}
}

// ErrAnalyzerBadResponse is returned when the analyzer returns unparseable output
type ErrAnalyzerBadResponse struct {
	*BaseError
}

func NewAnalyzerBadResponse(err error) *ErrAnalyzerBadResponse {
	return &ErrAnalyzerBadResponse{
		BaseError: NewBaseError(ErrorTypeAnalysis, "analyzer returned unparseable response", err),
	}
}

// Config Errors

// ErrConfigMissingRequired is returned when a required config value is missing
type ErrConfigMissingRequired struct {
	*BaseError
	Field string
}

func NewConfigMissingRequired(field string) *ErrConfigMissingRequired {
	return &ErrConfigMissingRequired{
		BaseError: NewBaseError(ErrorTypeConfig, fmt.Sprintf("missing required config: %s", field), nil),
		Field:     field,
	}
}

// Context Errors

// ErrContextCancelled is returned when context is cancelled
type ErrContextCancelled struct {
	*BaseError
	Operation string
}

func NewContextCancelled(operation string, err error) *ErrContextCancelled {
	return &ErrContextCancelled{
		BaseError: NewBaseError(ErrorTypeContext, fmt.Sprintf("context cancelled: %s", operation), err),
		Operation: operation,
	}
}

// Helper functions

// IsErrorType checks if an error is of a specific type
func IsErrorType(err error, errType ErrorType) bool {
	if baseErr, ok := err.(*BaseError); ok {
		return baseErr.Type == errType
	}
	if wrapper, ok := err.(interface{ Unwrap() error }); ok {
		if inner := wrapper.Unwrap(); inner != nil {
			return IsErrorType(inner, errType)
		}
	}
	return false
}

// IsNotFound checks whether an error indicates a missing root entity
func IsNotFound(err error) bool {
	_, ok := err.(*ErrAnalysisNotFound)
	return ok
}
