package llm

import (
	"context"
	"errors"
	"strings"
)

// ErrRemoteGenerationFailed wraps every Path A failure: transport, HTTP,
// parse or validation.
var ErrRemoteGenerationFailed = errors.New("remote generation failed")

// ErrNoProviders is returned when no provider is configured or all were
// filtered out.
var ErrNoProviders = errors.New("no generation provider available")

type ErrorType string

const (
	ErrorQuota     ErrorType = "quota"
	ErrorRate      ErrorType = "rate"
	ErrorTransient ErrorType = "transient"
	ErrorPermanent ErrorType = "permanent"
	ErrorContext   ErrorType = "context"
)

// ClassifyError labels a provider failure for logs.
func ClassifyError(err error) ErrorType {
	if err == nil {
		return ""
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrorTransient
	}
	e := strings.ToLower(err.Error())
	switch {
	case strings.Contains(e, "quota"), strings.Contains(e, "credit"), strings.Contains(e, "free tier"):
		return ErrorQuota
	case strings.Contains(e, "rate"), strings.Contains(e, "429"):
		return ErrorRate
	case strings.Contains(e, "context length"), strings.Contains(e, "too long"), strings.Contains(e, "max_tokens"):
		return ErrorContext
	case strings.Contains(e, "timeout"), strings.Contains(e, "temporarily"), strings.Contains(e, "unavailable"),
		strings.Contains(e, "overloaded"), strings.Contains(e, "502"), strings.Contains(e, "503"), strings.Contains(e, "529"):
		return ErrorTransient
	default:
		return ErrorPermanent
	}
}
