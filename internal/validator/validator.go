package validator

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

// Severity represents the impact of a validation issue.
type Severity int

const (
	// SeverityError marks a file that cannot be loaded as intended.
	SeverityError Severity = iota
	// SeverityWarning marks a file that loads but is probably wrong.
	SeverityWarning
	// SeverityInfo is an advisory note.
	SeverityInfo
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInfo:
		return "info"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Issue is a single validation finding.
type Issue struct {
	Severity Severity `json:"severity"`
	// File is the corpus file the issue was found in.
	File string `json:"file,omitempty"`
	// Field is the frontmatter field at fault, if any.
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
	Value   any    `json:"value,omitempty"`
}

// Error implements the error interface.
func (i Issue) Error() string {
	var sb strings.Builder
	if i.File != "" {
		sb.WriteString(i.File)
		sb.WriteString(": ")
	}
	sb.WriteString(i.Severity.String())
	sb.WriteString(": ")
	if i.Field != "" {
		fmt.Fprintf(&sb, "%s: ", i.Field)
	}
	sb.WriteString(i.Message)
	if i.Value != nil {
		fmt.Fprintf(&sb, " (got %v)", i.Value)
	}
	return sb.String()
}

// Result aggregates validation issues.
type Result struct {
	Issues []Issue `json:"issues"`
	// Files counts the files examined.
	Files int `json:"files"`
}

// Add appends an issue.
func (r *Result) Add(sev Severity, file, field, message string, value any) {
	r.Issues = append(r.Issues, Issue{
		Severity: sev,
		File:     file,
		Field:    field,
		Message:  message,
		Value:    value,
	})
}

// AddError appends an error for file.
func (r *Result) AddError(file, field, message string, value any) {
	r.Add(SeverityError, file, field, message, value)
}

// AddWarning appends a warning for file.
func (r *Result) AddWarning(file, field, message string, value any) {
	r.Add(SeverityWarning, file, field, message, value)
}

// AddInfo appends an informational note for file.
func (r *Result) AddInfo(file, field, message string, value any) {
	r.Add(SeverityInfo, file, field, message, value)
}

// Merge appends other's issues and file count to r.
func (r *Result) Merge(other *Result) {
	if other == nil {
		return
	}
	r.Issues = append(r.Issues, other.Issues...)
	r.Files += other.Files
}

// Count returns the number of issues with severity sev.
func (r *Result) Count(sev Severity) int {
	if r == nil {
		return 0
	}
	n := 0
	for _, i := range r.Issues {
		if i.Severity == sev {
			n++
		}
	}
	return n
}

// HasErrors reports whether any issue is an error.
func (r *Result) HasErrors() bool {
	return r.Count(SeverityError) > 0
}

// Filter returns the issues with severity sev, in order.
func (r *Result) Filter(sev Severity) []Issue {
	if r == nil {
		return nil
	}
	var out []Issue
	for _, i := range r.Issues {
		if i.Severity == sev {
			out = append(out, i)
		}
	}
	return out
}

// Sort orders issues by file, then severity, then field. Issues that compare
// equal keep their insertion order.
func (r *Result) Sort() {
	slices.SortStableFunc(r.Issues, func(a, b Issue) int {
		return cmp.Or(
			cmp.Compare(a.File, b.File),
			cmp.Compare(a.Severity, b.Severity),
			cmp.Compare(a.Field, b.Field),
		)
	})
}
