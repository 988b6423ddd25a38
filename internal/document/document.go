// Package document lays out a markdown or plain-text file as screen lines
// and finds the links in it.
package document

import (
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

const tabWidth = 4

var linkStyle = lipgloss.NewStyle().Underline(true).Foreground(lipgloss.Color("39"))

// Anchor is one occurrence of a link URL on a line. Start and End are cell
// columns, End exclusive.
type Anchor struct {
	URL        string
	Line       int
	Start, End int

	byteStart, byteEnd int
}

type Document struct {
	Lines   []string
	Anchors []Anchor
}

// Parse collects link destinations, autolinks and bare URLs from src and
// locates every place their text appears in the source lines.
func Parse(src []byte) Document {
	s := strings.ReplaceAll(string(src), "\r\n", "\n")
	src = []byte(strings.ReplaceAll(s, "\t", strings.Repeat(" ", tabWidth)))
	lines := strings.Split(strings.TrimRight(string(src), "\n"), "\n")

	urls := extractURLs(src)
	// longest first so a URL that prefixes another does not claim its text
	sort.SliceStable(urls, func(i, j int) bool { return len(urls[i]) > len(urls[j]) })

	var anchors []Anchor
	taken := make([][][2]int, len(lines))
	for _, u := range urls {
		for li, line := range lines {
			from := 0
			for {
				idx := strings.Index(line[from:], u)
				if idx < 0 {
					break
				}
				bs := from + idx
				be := bs + len(u)
				from = be
				if overlaps(taken[li], bs, be) {
					continue
				}
				taken[li] = append(taken[li], [2]int{bs, be})
				start := ansi.StringWidth(line[:bs])
				anchors = append(anchors, Anchor{
					URL:       u,
					Line:      li,
					Start:     start,
					End:       start + ansi.StringWidth(u),
					byteStart: bs,
					byteEnd:   be,
				})
			}
		}
	}
	sort.Slice(anchors, func(i, j int) bool {
		if anchors[i].Line != anchors[j].Line {
			return anchors[i].Line < anchors[j].Line
		}
		return anchors[i].Start < anchors[j].Start
	})
	return Document{Lines: lines, Anchors: anchors}
}

func extractURLs(src []byte) []string {
	md := goldmark.New(goldmark.WithExtensions(extension.Linkify))
	root := md.Parser().Parse(text.NewReader(src))

	seen := make(map[string]bool)
	var urls []string
	add := func(u string) {
		if u == "" || seen[u] {
			return
		}
		seen[u] = true
		urls = append(urls, u)
	}
	ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n := n.(type) {
		case *ast.Link:
			add(string(n.Destination))
		case *ast.AutoLink:
			if n.AutoLinkType == ast.AutoLinkURL {
				add(string(n.URL(src)))
			}
		}
		return ast.WalkContinue, nil
	})
	return urls
}

func overlaps(spans [][2]int, start, end int) bool {
	for _, s := range spans {
		if start < s[1] && s[0] < end {
			return true
		}
	}
	return false
}

// AnchorAt returns the anchor covering cell column col of line.
func (d Document) AnchorAt(line, col int) (Anchor, bool) {
	for _, a := range d.Anchors {
		if a.Line == line && col >= a.Start && col < a.End {
			return a, true
		}
	}
	return Anchor{}, false
}

// Render returns the document with anchors styled, one screen line per
// source line.
func (d Document) Render() string {
	byLine := make(map[int][]Anchor)
	for _, a := range d.Anchors {
		byLine[a.Line] = append(byLine[a.Line], a)
	}

	var b strings.Builder
	for i, line := range d.Lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		pos := 0
		for _, a := range byLine[i] {
			b.WriteString(line[pos:a.byteStart])
			b.WriteString(linkStyle.Render(line[a.byteStart:a.byteEnd]))
			pos = a.byteEnd
		}
		b.WriteString(line[pos:])
	}
	return b.String()
}
