package campus

import (
	"fmt"
	"strings"

	"campusassist-backend/lib/records"
)

// ConfigurationError reports a caller fault: a category outside the
// fixed vocabulary or a platform mapping that was never configured.
// It is always fatal to that call and never retried.
type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string {
	return "configuration error: " + e.Message
}

type PlatformFailure struct {
	Platform records.Platform
	Err      error
}

// AggregateError is raised only when every platform resolved for a
// category failed. A partial failure never produces it.
type AggregateError struct {
	Category Category
	Failures []PlatformFailure
}

func (e *AggregateError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "all platforms failed for category %q:", e.Category)
	for _, failure := range e.Failures {
		fmt.Fprintf(&sb, "\n\t%s: %v", failure.Platform, failure.Err)
	}
	return sb.String()
}

func (e *AggregateError) Unwrap() []error {
	errs := make([]error, len(e.Failures))
	for i, failure := range e.Failures {
		errs[i] = failure.Err
	}
	return errs
}
