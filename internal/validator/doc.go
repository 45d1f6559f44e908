// Package validator collects and reports problems found in skill corpora.
//
// A [Result] accumulates [Issue] values, each tagged with a [Severity] and
// the file it belongs to. A [Reporter] prints a result as colored text
// grouped by file, or as JSON.
package validator
