package validator

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/fatih/color"
)

func init() {
	color.NoColor = true
}

func TestReporter_Text(t *testing.T) {
	r := &Result{Files: 3}
	r.AddError("rules/b.md", "priority", "unknown tier", "URGENT")
	r.AddWarning("rules/a.md", "summary", "not shorter than body", nil)
	r.AddInfo("rules/a.md", "", "no code examples", nil)

	var buf bytes.Buffer
	if err := NewReporter(&buf, FormatText).Report(r); err != nil {
		t.Fatalf("Report() error = %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"rules/a.md\n  warn  summary: not shorter than body\n  info  no code examples\n",
		"rules/b.md\n  error priority: unknown tier [URGENT]\n",
		"✗ 3 file(s) checked: 1 error(s), 1 warning(s), 1 note(s)\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\ngot:\n%s", want, out)
		}
	}
	if strings.Index(out, "rules/a.md") > strings.Index(out, "rules/b.md") {
		t.Error("files should be reported in sorted order")
	}
}

func TestReporter_TextClean(t *testing.T) {
	var buf bytes.Buffer
	if err := NewReporter(&buf, FormatText).Report(&Result{Files: 4}); err != nil {
		t.Fatal(err)
	}
	if got, want := buf.String(), "✓ 4 file(s) checked\n"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestReporter_TruncatesLongValues(t *testing.T) {
	r := &Result{}
	r.AddError("a.md", "globs", "bad pattern", strings.Repeat("x", 80))

	var buf bytes.Buffer
	if err := NewReporter(&buf, FormatText).Report(r); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "["+strings.Repeat("x", maxValueLen-3)+"...]") {
		t.Errorf("long value not truncated:\n%s", buf.String())
	}
}

func TestReporter_JSON(t *testing.T) {
	r := &Result{Files: 1}
	r.AddError("a.md", "name", "is required", nil)

	var buf bytes.Buffer
	if err := NewReporter(&buf, FormatJSON).Report(r); err != nil {
		t.Fatalf("Report() error = %v", err)
	}

	var decoded struct {
		Files  int `json:"files"`
		Issues []struct {
			Severity string `json:"severity"`
			File     string `json:"file"`
			Field    string `json:"field"`
			Message  string `json:"message"`
		} `json:"issues"`
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
	}
	if decoded.Files != 1 || len(decoded.Issues) != 1 {
		t.Fatalf("decoded = %+v", decoded)
	}
	if decoded.Issues[0].Severity != "error" || decoded.Issues[0].Field != "name" {
		t.Errorf("issue = %+v", decoded.Issues[0])
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatText, false},
		{"text", FormatText, false},
		{"JSON", FormatJSON, false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
