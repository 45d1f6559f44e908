// Package corpus discovers skill and rule files on disk and turns them into
// [skill.Document] values.
//
// Two layouts are recognized and may be mixed within one directory tree:
//
//	skills/<name>/SKILL.md    one document per directory
//	rules/<name>.md           one document per file
//
// Every file must open with YAML frontmatter. Files named README.md and
// files whose name starts with "_" are treated as corpus documentation and
// skipped, as are hidden directories.
package corpus
