package validator

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/thoreinstein/skillctx/internal/errors"
)

// Format specifies the output format for validation reports.
type Format string

const (
	// FormatText produces human-readable text output.
	FormatText Format = "text"
	// FormatJSON produces machine-readable JSON output.
	FormatJSON Format = "json"
)

// ParseFormat validates a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatText, FormatJSON:
		return f, nil
	case "":
		return FormatText, nil
	default:
		return "", errors.Wrapf(errors.ErrInvalidInput, "unknown report format %q (want text or json)", s)
	}
}

const maxValueLen = 50

// Reporter formats and writes validation results.
type Reporter struct {
	out    io.Writer
	format Format
}

// NewReporter creates a new Reporter.
func NewReporter(out io.Writer, format Format) *Reporter {
	return &Reporter{out: out, format: format}
}

// Report writes result to the reporter's output. Issues are sorted first.
func (r *Reporter) Report(result *Result) error {
	if result == nil {
		return nil
	}
	result.Sort()

	if r.format == FormatJSON {
		enc := json.NewEncoder(r.out)
		enc.SetIndent("", "  ")
		return errors.Wrap(enc.Encode(result), "encoding JSON report")
	}
	r.reportText(result)
	return nil
}

func (r *Reporter) reportText(result *Result) {
	errs, warns, infos := result.Count(SeverityError), result.Count(SeverityWarning), result.Count(SeverityInfo)

	file := ""
	for _, i := range result.Issues {
		if i.File != file {
			if file != "" {
				fmt.Fprintln(r.out)
			}
			file = i.File
			fmt.Fprintln(r.out, color.New(color.Bold).Sprint(displayFile(file)))
		}
		r.printIssue(i)
	}
	if len(result.Issues) > 0 {
		fmt.Fprintln(r.out)
	}

	if errs == 0 {
		fmt.Fprintf(r.out, "%s %d file(s) checked", color.GreenString("✓"), result.Files)
	} else {
		fmt.Fprintf(r.out, "%s %d file(s) checked", color.RedString("✗"), result.Files)
	}
	var parts []string
	if errs > 0 {
		parts = append(parts, color.RedString("%d error(s)", errs))
	}
	if warns > 0 {
		parts = append(parts, color.YellowString("%d warning(s)", warns))
	}
	if infos > 0 {
		parts = append(parts, color.CyanString("%d note(s)", infos))
	}
	if len(parts) > 0 {
		fmt.Fprintf(r.out, ": %s", strings.Join(parts, ", "))
	}
	fmt.Fprintln(r.out)
}

func (r *Reporter) printIssue(i Issue) {
	var label string
	switch i.Severity {
	case SeverityError:
		label = color.RedString("error")
	case SeverityWarning:
		label = color.YellowString("warn ")
	default:
		label = color.CyanString("info ")
	}

	var sb strings.Builder
	sb.WriteString("  ")
	sb.WriteString(label)
	sb.WriteString(" ")
	if i.Field != "" {
		sb.WriteString(i.Field)
		sb.WriteString(": ")
	}
	sb.WriteString(i.Message)
	if i.Value != nil {
		v := fmt.Sprintf("%v", i.Value)
		if len(v) > maxValueLen {
			v = v[:maxValueLen-3] + "..."
		}
		sb.WriteString(color.New(color.FgHiBlack).Sprintf(" [%s]", v))
	}
	fmt.Fprintln(r.out, sb.String())
}

func displayFile(file string) string {
	if file == "" {
		return "(corpus)"
	}
	return file
}
