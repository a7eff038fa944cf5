package core

import (
	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

type outline struct {
	headings int
	links    int
}

// scanMarkdown parses body as CommonMark and counts structural nodes.
// It is an analysis pass only; nothing is rendered.
func scanMarkdown(body string) outline {
	src := []byte(body)
	root := goldmark.New().Parser().Parse(text.NewReader(src))

	var o outline
	_ = gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		switch n.(type) {
		case *gmast.Heading:
			o.headings++
		case *gmast.Link, *gmast.AutoLink:
			o.links++
		}
		return gmast.WalkContinue, nil
	})
	return o
}
