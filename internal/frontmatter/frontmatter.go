// Package frontmatter splits YAML frontmatter from Markdown documents and
// extracts the fields the renderer consumes.
package frontmatter

import (
	"bytes"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// ErrMissingClosingDelimiter indicates the document started with a YAML
// frontmatter delimiter but never closed it.
var ErrMissingClosingDelimiter = errors.New("frontmatter opening delimiter found but closing delimiter is missing")

// Meta carries the frontmatter fields rendering consumes. Unknown fields
// are ignored rather than rejected.
type Meta struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
}

// Split separates `---` delimited YAML frontmatter from the Markdown body.
// Both LF and CRLF documents are handled. When the document does not start
// with a delimiter, had is false and body is the full input.
func Split(content []byte) (fm, body []byte, had bool, err error) {
	nl := detectNewline(content)
	open := []byte("---" + nl)
	if !bytes.HasPrefix(content, open) {
		return nil, content, false, nil
	}

	rest := content[len(open):]
	// Opening delimiter immediately followed by the closing one: empty
	// frontmatter.
	if bytes.HasPrefix(rest, open) {
		return nil, rest[len(open):], true, nil
	}

	closeSeq := []byte(nl + "---" + nl)
	if idx := bytes.Index(rest, closeSeq); idx >= 0 {
		return rest[:idx+len(nl)], rest[idx+len(closeSeq):], true, nil
	}
	// A closing delimiter at end of file without a trailing newline still
	// closes the block.
	closeEOF := []byte(nl + "---")
	if bytes.HasSuffix(rest, closeEOF) {
		return rest[:len(rest)-len(closeEOF)+len(nl)], nil, true, nil
	}
	return nil, nil, false, ErrMissingClosingDelimiter
}

// Parse splits content and unmarshals the frontmatter into Meta. The
// returned body has the frontmatter block removed.
func Parse(content []byte) (Meta, []byte, error) {
	raw, body, had, err := Split(content)
	if err != nil {
		return Meta{}, nil, err
	}
	if !had || len(raw) == 0 {
		return Meta{}, body, nil
	}

	var meta Meta
	if err := yaml.Unmarshal(raw, &meta); err != nil {
		return Meta{}, nil, fmt.Errorf("parse frontmatter: %w", err)
	}
	return meta, body, nil
}

func detectNewline(content []byte) string {
	for i := 0; i+1 < len(content); i++ {
		if content[i] == '\r' && content[i+1] == '\n' {
			return "\r\n"
		}
		if content[i] == '\n' {
			return "\n"
		}
	}
	return "\n"
}
