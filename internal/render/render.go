// Package render turns a single Markdown document into a complete
// enhanced HTML page, used for quick previews outside a full site run.
package render

import (
	"bytes"
	"html/template"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	ghtml "github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"golang.org/x/net/html"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"git.home.luguber.info/inful/docenhance/internal/enhance"
	"git.home.luguber.info/inful/docenhance/internal/foundation/errors"
	"git.home.luguber.info/inful/docenhance/internal/frontmatter"
)

// Options configures a Renderer.
type Options struct {
	// Title overrides the page title. When empty the title is taken from
	// the document's frontmatter, then its first heading, falling back to
	// the file name.
	Title string
	// Sanitize pushes the rendered body through an HTML sanitizer.
	// Intended for untrusted input; raw HTML blocks survive only when
	// this is off.
	Sanitize bool
	// SkipRawHTML drops raw HTML blocks from the output instead of
	// passing them through. Off by default since documentation sources
	// are trusted.
	SkipRawHTML bool
	// Enhance configures the enhancement passes applied to the page.
	Enhance enhance.Options
}

// Result is a rendered page.
type Result struct {
	HTML  []byte
	Title string
	Stats enhance.Stats
}

// Renderer converts Markdown to enhanced HTML pages. Safe for concurrent
// use.
type Renderer struct {
	md       goldmark.Markdown
	policy   *bluemonday.Policy
	enhancer *enhance.Enhancer
	opts     Options
}

var headingIDPattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9\-_:.]*$`)

// New creates a Renderer. GFM constructs (tables, strikethrough,
// autolinks) are enabled and headings get stable generated ids so anchor
// navigation works on the enhanced output.
func New(opts Options) *Renderer {
	gm := []goldmark.Option{
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
	}
	if !opts.SkipRawHTML {
		gm = append(gm, goldmark.WithRendererOptions(ghtml.WithUnsafe()))
	}
	r := &Renderer{
		md:       goldmark.New(gm...),
		enhancer: enhance.New(opts.Enhance),
		opts:     opts,
	}
	if opts.Sanitize {
		policy := bluemonday.UGCPolicy()
		// Keep generated heading ids so in-page anchors stay navigable.
		policy.AllowAttrs("id").Matching(headingIDPattern).
			OnElements("h1", "h2", "h3", "h4", "h5", "h6")
		r.policy = policy
	}
	return r
}

// RenderFile renders the Markdown file at path.
func (r *Renderer) RenderFile(path string) (*Result, error) {
	src, err := os.ReadFile(path) // #nosec G304 -- path is the user's explicit input file
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "read document").
			WithContext("path", path).
			Build()
	}
	return r.Render(filepath.Base(path), src)
}

// Render renders Markdown source into a full enhanced page. YAML
// frontmatter is stripped before rendering; the name is only used as a
// title fallback when neither frontmatter nor headings provide one.
func (r *Renderer) Render(name string, src []byte) (*Result, error) {
	meta, src, err := frontmatter.Parse(src)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryParse, "parse frontmatter").
			WithContext("name", name).
			Build()
	}

	root := r.md.Parser().Parse(text.NewReader(src))

	var body bytes.Buffer
	if err := r.md.Renderer().Render(&body, src, root); err != nil {
		return nil, errors.WrapError(err, errors.CategoryRender, "render markdown").
			WithContext("name", name).
			Build()
	}

	fragment := body.Bytes()
	if r.policy != nil {
		fragment = r.policy.SanitizeBytes(fragment)
	}

	title := r.opts.Title
	if title == "" {
		title = meta.Title
	}
	if title == "" {
		title = firstHeading(root, src)
	}
	if title == "" {
		title = titleFromName(name)
	}

	shell, err := composePage(title, meta.Description, fragment)
	if err != nil {
		return nil, err
	}

	doc, err := html.Parse(bytes.NewReader(shell))
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryParse, "parse rendered page").
			WithContext("name", name).
			Build()
	}
	page, err := r.enhancer.Apply(doc)
	if err != nil {
		return nil, err
	}

	var out bytes.Buffer
	if err := page.Render(&out); err != nil {
		return nil, errors.WrapError(err, errors.CategoryRender, "serialize enhanced page").
			WithContext("name", name).
			Build()
	}

	return &Result{HTML: out.Bytes(), Title: title, Stats: page.Stats()}, nil
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
{{if .Description}}<meta name="description" content="{{.Description}}">
{{end}}<title>{{.Title}}</title>
</head>
<body>
<main class="doc-content">
{{.Body}}
</main>
</body>
</html>
`))

func composePage(title, description string, body []byte) ([]byte, error) {
	var buf bytes.Buffer
	data := struct {
		Title       string
		Description string
		Body        template.HTML
	}{
		Title:       title,
		Description: description,
		Body:        template.HTML(body), // #nosec G203 -- body is our own goldmark (and optionally sanitizer) output
	}
	if err := pageTemplate.Execute(&buf, data); err != nil {
		return nil, errors.WrapError(err, errors.CategoryRender, "compose page shell").Build()
	}
	return buf.Bytes(), nil
}

// firstHeading returns the text of the document's first heading.
func firstHeading(root gmast.Node, src []byte) string {
	var title string
	_ = gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		if _, ok := n.(*gmast.Heading); !ok {
			return gmast.WalkContinue, nil
		}
		title = nodeText(n, src)
		return gmast.WalkStop, nil
	})
	return title
}

// nodeText collects the plain text of a node and its descendants.
func nodeText(n gmast.Node, src []byte) string {
	var sb strings.Builder
	_ = gmast.Walk(n, func(c gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *gmast.Text:
			sb.Write(t.Segment.Value(src))
		case *gmast.String:
			sb.Write(t.Value)
		}
		return gmast.WalkContinue, nil
	})
	return strings.TrimSpace(sb.String())
}

// titleFromName derives a human title from a file name:
// "getting-started.md" becomes "Getting Started".
func titleFromName(name string) string {
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	base = strings.NewReplacer("-", " ", "_", " ").Replace(base)
	base = strings.TrimSpace(base)
	if base == "" || base == "." {
		return "Document"
	}
	return cases.Title(language.English).String(base)
}
