package frontmatter

import (
	"bytes"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/skillctx/internal/errors"
)

// Sentinel errors.
var (
	// ErrMissingFrontmatter is returned by MustParse when the content does
	// not open with a "---" line.
	ErrMissingFrontmatter = errors.New("missing frontmatter")

	// ErrUnterminated is returned when the opening delimiter has no matching
	// closing delimiter.
	ErrUnterminated = errors.New("missing closing frontmatter delimiter")

	// ErrInvalidYAML wraps header decoding failures.
	ErrInvalidYAML = errors.New("invalid frontmatter yaml")
)

const delimiter = "---"

var bom = []byte("\xef\xbb\xbf")

// Split separates content into header and body. ok is false when content
// has no frontmatter, in which case body is the whole content.
func Split(content []byte) (header, body []byte, ok bool, err error) {
	content = bytes.TrimPrefix(content, bom)

	first, rest, _ := cutLine(content)
	if !isDelimiter(first) {
		return nil, content, false, nil
	}

	start := len(content) - len(rest)
	pos := start
	for pos < len(content) {
		line, next, _ := cutLine(content[pos:])
		if isDelimiter(line) {
			end := len(content) - len(next)
			return content[start:pos], content[end:], true, nil
		}
		pos = len(content) - len(next)
	}
	return nil, nil, false, ErrUnterminated
}

// Parse decodes the frontmatter of content into a T and returns the body.
// Content without frontmatter yields the zero T and the full content.
func Parse[T any](content []byte) (T, []byte, error) {
	return parse[T](content, false)
}

// MustParse is like Parse but fails with ErrMissingFrontmatter when content
// has no frontmatter.
func MustParse[T any](content []byte) (T, []byte, error) {
	return parse[T](content, true)
}

func parse[T any](content []byte, required bool) (T, []byte, error) {
	var matter T
	header, body, ok, err := Split(content)
	if err != nil {
		return matter, nil, err
	}
	if !ok {
		if required {
			return matter, nil, ErrMissingFrontmatter
		}
		return matter, body, nil
	}
	if len(bytes.TrimSpace(header)) > 0 {
		if err := yaml.Unmarshal(header, &matter); err != nil {
			return matter, nil, errors.Wrapf(ErrInvalidYAML, "%v", err)
		}
	}
	return matter, body, nil
}

// Format renders matter as a YAML frontmatter block followed by body.
func Format(matter any, body string) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(delimiter + "\n")

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(matter); err != nil {
		return nil, errors.Wrap(err, "encoding frontmatter")
	}
	if err := enc.Close(); err != nil {
		return nil, errors.Wrap(err, "encoding frontmatter")
	}

	buf.WriteString(delimiter + "\n")
	if body != "" {
		buf.WriteString("\n")
		buf.WriteString(body)
		if !strings.HasSuffix(body, "\n") {
			buf.WriteString("\n")
		}
	}
	return buf.Bytes(), nil
}

// cutLine returns the first line of b without its terminator and the
// remainder after the terminator.
func cutLine(b []byte) (line, rest []byte, found bool) {
	line, rest, found = bytes.Cut(b, []byte("\n"))
	return bytes.TrimSuffix(line, []byte("\r")), rest, found
}

func isDelimiter(line []byte) bool {
	return string(bytes.TrimRight(line, " \t")) == delimiter
}
