// Package inject renders selection results into the text payload handed to
// an agent.
package inject

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/thoreinstein/skillctx/internal/errors"
	"github.com/thoreinstein/skillctx/internal/logging"
	"github.com/thoreinstein/skillctx/internal/skill"
)

// ErrDuplicateInclusion is matched by every *DuplicateInclusionError.
var ErrDuplicateInclusion = errors.New("duplicate inclusion")

// DuplicateInclusionError reports a document that appears twice in one
// selection result.
type DuplicateInclusionError struct {
	ID string
	// Index is the position of the repeated inclusion.
	Index int
}

func (e *DuplicateInclusionError) Error() string {
	return fmt.Sprintf("duplicate inclusion of %q at position %d", e.ID, e.Index)
}

// Unwrap lets errors.Is match ErrDuplicateInclusion.
func (e *DuplicateInclusionError) Unwrap() error {
	return ErrDuplicateInclusion
}

// Option configures an Assembler.
type Option func(*Assembler)

// WithHeadingLevel sets the markdown heading depth of block headers (1-6).
func WithHeadingLevel(level int) Option {
	return func(a *Assembler) {
		a.headingLevel = min(max(level, 1), 6)
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Assembler) {
		a.logger = logger
	}
}

// Assembler turns a SelectionResult into text. The zero value is not usable;
// construct one with New.
type Assembler struct {
	headingLevel int
	logger       *slog.Logger
}

// New creates an Assembler.
func New(opts ...Option) *Assembler {
	a := &Assembler{headingLevel: 2}
	for _, opt := range opts {
		opt(a)
	}
	a.logger = logging.OrDiscard(a.logger)
	return a
}

// Render emits one block per inclusion in result order. Each block opens with
// a header naming the title and tier, marked "(summary)" when the summary
// form was chosen. Blocks are separated by a blank line. An empty result
// renders to "".
func (a *Assembler) Render(result skill.SelectionResult) (string, error) {
	seen := make(map[string]struct{}, len(result.Inclusions))
	var b strings.Builder
	for i, inc := range result.Inclusions {
		id := inc.Document.ID
		if _, dup := seen[id]; dup {
			return "", &DuplicateInclusionError{ID: id, Index: i}
		}
		seen[id] = struct{}{}

		if i > 0 {
			b.WriteString("\n\n")
		}
		a.writeBlock(&b, inc)
	}
	a.logger.Debug("rendered injection payload",
		"blocks", len(result.Inclusions), "bytes", b.Len())
	return b.String(), nil
}

func (a *Assembler) writeBlock(b *strings.Builder, inc skill.Inclusion) {
	b.WriteString(a.Header(inc))
	text := strings.TrimSpace(inc.Text())
	if text != "" {
		b.WriteString("\n\n")
		b.WriteString(text)
	}
}

// Header returns the header line for inc.
func (a *Assembler) Header(inc skill.Inclusion) string {
	title := inc.Document.Title
	if title == "" {
		title = inc.Document.ID
	}
	h := fmt.Sprintf("%s %s [%s]", strings.Repeat("#", a.headingLevel), title, inc.Document.Tier)
	if inc.Form == skill.FormSummary {
		h += " (summary)"
	}
	return h
}
