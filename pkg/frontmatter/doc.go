// Package frontmatter splits Markdown files into a YAML frontmatter header
// and a body, and decodes the header into a caller-supplied type.
//
// Frontmatter is delimited by lines containing only "---" at the start of the
// file and at the end of the header. LF and CRLF line endings are accepted,
// and a leading UTF-8 byte order mark is ignored.
//
//	type Meta struct {
//		Name string `yaml:"name"`
//	}
//
//	meta, body, err := frontmatter.MustParse[Meta](data)
//	if errors.Is(err, frontmatter.ErrMissingFrontmatter) {
//		// not a skill file
//	}
package frontmatter
