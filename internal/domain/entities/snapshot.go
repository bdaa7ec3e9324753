package entities

import (
	"encoding/json"
	"strings"
)

// SnapshotKey is the single named key the workspace snapshot is stored under.
const SnapshotKey = "reskiling_ai_workspace_state"

// WorkspaceSnapshot is the persisted part of the workspace.
type WorkspaceSnapshot struct {
	Transcript           string          `json:"transcript"`
	TranscribedAudioURL  *string         `json:"transcribedAudioUrl,omitempty"`
	LastUploadedFileName *string         `json:"lastUploadedFileName"`
	Sections             []ScriptSection `json:"sections"`
	BatchZipURL          *string         `json:"batchZipUrl"`
}

// DefaultSnapshot returns the empty workspace.
func DefaultSnapshot() WorkspaceSnapshot {
	return WorkspaceSnapshot{
		Sections: []ScriptSection{},
	}
}

// Encode serializes the snapshot. Sections are written with isSynthesizing=false.
func (s WorkspaceSnapshot) Encode() ([]byte, error) {
	out := s
	out.Sections = make([]ScriptSection, len(s.Sections))
	for i, section := range s.Sections {
		out.Sections[i] = section.Persistable()
	}
	return json.Marshal(out)
}

// DecodeSnapshot reads a stored snapshot. It never fails: an absent or
// unparsable payload yields the default snapshot, and every field that has
// the wrong shape falls back to its own default without discarding the rest.
func DecodeSnapshot(raw []byte) WorkspaceSnapshot {
	snapshot := DefaultSnapshot()
	if len(strings.TrimSpace(string(raw))) == 0 {
		return snapshot
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return snapshot
	}

	if v, ok := decodeString(fields["transcript"]); ok {
		snapshot.Transcript = v
	}
	if v, ok := decodeString(fields["transcribedAudioUrl"]); ok {
		snapshot.TranscribedAudioURL = &v
	}
	if v, ok := decodeString(fields["lastUploadedFileName"]); ok {
		snapshot.LastUploadedFileName = &v
	}
	if v, ok := decodeString(fields["batchZipUrl"]); ok {
		snapshot.BatchZipURL = &v
	}
	snapshot.Sections = decodeSections(fields["sections"])

	return snapshot
}

func decodeSections(raw json.RawMessage) []ScriptSection {
	sections := []ScriptSection{}

	var items []json.RawMessage
	if len(raw) == 0 || json.Unmarshal(raw, &items) != nil {
		return sections
	}

	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(item, &fields); err != nil || fields == nil {
			continue
		}

		id, ok := decodeString(fields["id"])
		if !ok || id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		section := ScriptSection{ID: id}
		section.Title, _ = decodeString(fields["title"])
		section.Body, _ = decodeString(fields["body"])
		section.AudioURL, _ = decodeString(fields["audioUrl"])
		if msg, ok := decodeString(fields["error"]); ok {
			section.Error = &msg
		}
		sections = append(sections, section)
	}

	return sections
}

// decodeString accepts only a JSON string; null, numbers, objects and
// missing values report false.
func decodeString(raw json.RawMessage) (string, bool) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return "", false
	}
	var v string
	if err := json.Unmarshal(raw, &v); err != nil {
		return "", false
	}
	return v, true
}
