package entities

import (
	"fmt"

	"github.com/google/uuid"
)

// ParsedSection is one heading-delimited unit of a generated script.
// It has no identity; a fresh slice is produced on every parse.
type ParsedSection struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// ScriptSection is a workspace section with a stable surrogate id and its
// per-section synthesis state.
type ScriptSection struct {
	ID             string  `json:"id"`
	Title          string  `json:"title"`
	Body           string  `json:"body"`
	AudioURL       string  `json:"audioUrl,omitempty"`
	IsSynthesizing bool    `json:"isSynthesizing"`
	Error          *string `json:"error"`
}

// NewScriptSection creates an idle section from parser output.
// The id is never derived from content, so identical sections stay distinct.
func NewScriptSection(index int, parsed ParsedSection) ScriptSection {
	return ScriptSection{
		ID:    NewSectionID(index),
		Title: parsed.Title,
		Body:  parsed.Body,
	}
}

// NewSectionID returns a process-unique section id.
func NewSectionID(index int) string {
	return fmt.Sprintf("section-%d-%s", index, uuid.NewString())
}

// HasAudio reports whether the last synthesis of the section succeeded.
func (s ScriptSection) HasAudio() bool {
	return s.AudioURL != ""
}

// ErrorMessage returns the stored error text, or "" when there is none.
func (s ScriptSection) ErrorMessage() string {
	if s.Error == nil {
		return ""
	}
	return *s.Error
}

// Persistable returns a copy suitable for the snapshot: synthesis is a
// transient activity, so the flag is always cleared.
func (s ScriptSection) Persistable() ScriptSection {
	out := s
	out.IsSynthesizing = false
	if s.Error != nil {
		msg := *s.Error
		out.Error = &msg
	}
	return out
}
