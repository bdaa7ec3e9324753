package script

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/johnquangdev/script-workspace/internal/domain/entities"
)

type sectionBuilder struct {
	title string
	lines []string
}

// ParseScriptMarkdown splits heading-delimited markdown into sections.
//
// Every line starting with one or more '#' followed by whitespace opens a new
// section titled by the rest of the line. Other non-blank lines are appended
// to the open section after one leading bullet marker and one leading
// "N." marker are removed. Lines before the first heading are dropped, as
// are sections whose title or body ends up empty. Input order is preserved.
func ParseScriptMarkdown(markdown string) []entities.ParsedSection {
	var builders []*sectionBuilder
	var current *sectionBuilder

	for _, raw := range strings.Split(markdown, "\n") {
		line := strings.TrimRightFunc(raw, isSpace)
		if line == "" {
			continue
		}

		if title, ok := headingTitle(line); ok {
			current = &sectionBuilder{title: title}
			builders = append(builders, current)
			continue
		}

		if current != nil {
			current.lines = append(current.lines, sanitizeLine(strings.TrimFunc(line, isSpace)))
		}
	}

	sections := make([]entities.ParsedSection, 0, len(builders))
	for _, b := range builders {
		body := strings.TrimFunc(strings.Join(b.lines, "\n"), isSpace)
		if b.title == "" || body == "" {
			continue
		}
		sections = append(sections, entities.ParsedSection{Title: b.title, Body: body})
	}
	return sections
}

// headingTitle reports whether line is a heading and returns its trimmed title.
func headingTitle(line string) (string, bool) {
	n := 0
	for n < len(line) && line[n] == '#' {
		n++
	}
	if n == 0 || n == len(line) {
		return "", false
	}
	r, _ := utf8.DecodeRuneInString(line[n:])
	if !isSpace(r) {
		return "", false
	}
	return strings.TrimFunc(line[n:], isSpace), true
}

// sanitizeLine strips at most one bullet marker and then at most one
// numbered-list marker from the start of line.
func sanitizeLine(line string) string {
	if strings.HasPrefix(line, "*") || strings.HasPrefix(line, "-") {
		line = strings.TrimLeftFunc(line[1:], isSpace)
	}

	digits := 0
	for digits < len(line) && line[digits] >= '0' && line[digits] <= '9' {
		digits++
	}
	if digits > 0 && digits < len(line) && line[digits] == '.' {
		line = strings.TrimLeftFunc(line[digits+1:], isSpace)
	}
	return line
}

// isSpace matches the whitespace set of markdown editors, which includes the
// byte order mark and the ideographic space used in Japanese text.
func isSpace(r rune) bool {
	return unicode.IsSpace(r) || r == '\uFEFF'
}
