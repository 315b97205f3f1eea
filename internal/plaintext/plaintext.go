// Package plaintext normalizes reasoning-service output into plain
// text. Drafted captions and replies frequently arrive with markdown
// formatting that social platforms render literally, so we render the
// markdown to HTML and extract the visible text.
package plaintext

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var md = goldmark.New()

// FromMarkdown converts markdown to plain text. Input without any
// markdown structure passes through with whitespace normalized.
func FromMarkdown(s string) string {
	var buf bytes.Buffer
	if err := md.Convert([]byte(s), &buf); err != nil {
		return collapse(s)
	}
	return FromHTML(buf.String())
}

// FromHTML extracts the visible text from an HTML fragment.
func FromHTML(raw string) string {
	doc, err := html.Parse(strings.NewReader(raw))
	if err != nil {
		return collapse(raw)
	}
	var b strings.Builder
	walk(doc, &b)
	return collapse(b.String())
}

var skipElements = map[atom.Atom]bool{
	atom.Script: true,
	atom.Style:  true,
	atom.Head:   true,
}

func walk(n *html.Node, b *strings.Builder) {
	if n.Type == html.ElementNode {
		if skipElements[n.DataAtom] {
			return
		}
		if isBlock(n.DataAtom) && b.Len() > 0 {
			b.WriteString("\n")
		}
	}
	if n.Type == html.TextNode {
		// Raw text, no per-node trimming: adjacent inline nodes must
		// not gain spaces before punctuation.
		b.WriteString(n.Data)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, b)
	}
	if n.Type == html.ElementNode && (n.DataAtom == atom.Br || n.DataAtom == atom.Li) {
		b.WriteString("\n")
	}
}

func isBlock(a atom.Atom) bool {
	switch a {
	case atom.P, atom.Div, atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6,
		atom.Blockquote, atom.Pre, atom.Ul, atom.Ol, atom.Hr:
		return true
	}
	return false
}

// collapse normalizes whitespace: runs of spaces within lines become
// one space, blank-line runs become one newline.
func collapse(s string) string {
	lines := strings.Split(s, "\n")
	var out []string
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			continue
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}
