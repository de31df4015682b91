package resolve

import (
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// PlainText reduces rich text to plain text: tags are removed, entities
// decoded and whitespace collapsed. Script and style bodies are dropped.
func PlainText(raw string) string {
	if !strings.ContainsAny(raw, "<&") {
		return strings.Join(strings.Fields(raw), " ")
	}
	tokenizer := html.NewTokenizer(strings.NewReader(raw))
	var b strings.Builder
	skip := 0
	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			if tokenizer.Err() != io.EOF {
				return strings.Join(strings.Fields(raw), " ")
			}
			return strings.Join(strings.Fields(b.String()), " ")
		case html.TextToken:
			if skip == 0 {
				b.Write(tokenizer.Text())
			}
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := tokenizer.TagName()
			tag := atom.Lookup(name)
			if tag == atom.Script || tag == atom.Style {
				skip++
				continue
			}
			if breaksText(tag) {
				b.WriteByte(' ')
			}
		case html.EndTagToken:
			name, _ := tokenizer.TagName()
			tag := atom.Lookup(name)
			if (tag == atom.Script || tag == atom.Style) && skip > 0 {
				skip--
				continue
			}
			if breaksText(tag) {
				b.WriteByte(' ')
			}
		}
	}
}

func breaksText(tag atom.Atom) bool {
	switch tag {
	case atom.Br, atom.P, atom.Div, atom.Li, atom.Ul, atom.Ol, atom.Tr, atom.Td, atom.Th,
		atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6, atom.Blockquote, atom.Hr:
		return true
	default:
		return false
	}
}
