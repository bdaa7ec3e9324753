package script

import (
	"fmt"
	"strings"

	"github.com/johnquangdev/script-workspace/internal/domain/entities"
	usecaseErrors "github.com/johnquangdev/script-workspace/internal/usecase/errors"
)

// ExportFileName is the suggested download name of the plain-text script.
const ExportFileName = "script.txt"

// RenderScriptText renders sections as a plain-text document. Each section
// becomes a "# 第N章 title" line followed by its trimmed body; sections are
// separated by a blank line.
func RenderScriptText(sections []entities.ParsedSection) (string, error) {
	if len(sections) == 0 {
		return "", usecaseErrors.ErrNothingToExport
	}

	chapters := make([]string, len(sections))
	for i, s := range sections {
		chapters[i] = fmt.Sprintf("# 第%d章 %s\n%s", i+1, s.Title, strings.TrimFunc(s.Body, isSpace))
	}
	return strings.Join(chapters, "\n\n"), nil
}

// FromScriptSections keeps only the text of workspace sections.
func FromScriptSections(sections []entities.ScriptSection) []entities.ParsedSection {
	out := make([]entities.ParsedSection, len(sections))
	for i, s := range sections {
		out[i] = entities.ParsedSection{Title: s.Title, Body: s.Body}
	}
	return out
}
