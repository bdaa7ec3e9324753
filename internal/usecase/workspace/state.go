package workspace

import (
	"math"
	"strings"
	"sync"

	"github.com/johnquangdev/script-workspace/internal/domain/entities"
	usecaseErrors "github.com/johnquangdev/script-workspace/internal/usecase/errors"
	"github.com/johnquangdev/script-workspace/internal/usecase/script"
)

type operation int

const (
	opUpload operation = iota + 1
	opGenerate
	opBatch
)

// SynthesisTicket identifies one issued synthesis attempt for a section.
type SynthesisTicket struct {
	SectionID string
	Attempt   uint64
	Text      string
}

// BatchTicket is an issued batch synthesis request.
type BatchTicket struct {
	Token uint64
	Texts []string
}

// PersistedState is the snapshot to write for a given snapshot revision.
// Deleted is set when the latest persisted change was a reset.
type PersistedState struct {
	Snapshot entities.WorkspaceSnapshot
	Revision uint64
	Deleted  bool
}

// State is the in-memory workspace. All methods are safe for concurrent use.
//
// Long operations are split into Begin and Complete steps. Begin hands out a
// token; Complete applies its result only while that token is still current,
// so a reset or a newer attempt silently discards late completions.
type State struct {
	mu sync.Mutex

	snapshot entities.WorkspaceSnapshot

	isTranscribing        bool
	transcribeError       *string
	uploadProgress        *float64
	transcribeStatusLabel *string
	isGenerating          bool
	generateError         *string
	isBatching            bool
	batchError            *string

	seq      uint64
	tokens   map[operation]uint64
	attempts map[string]uint64

	revision         uint64
	snapshotRevision uint64
	deleted          bool
}

// NewState hydrates a workspace from a stored snapshot.
func NewState(snapshot entities.WorkspaceSnapshot) *State {
	s := &State{
		tokens:   make(map[operation]uint64),
		attempts: make(map[string]uint64),
	}
	s.snapshot = cloneSnapshot(snapshot)
	for i := range s.snapshot.Sections {
		s.snapshot.Sections[i].IsSynthesizing = false
	}
	return s
}

// Restore replaces the workspace with a hydrated snapshot and drops all
// transient activity. The snapshot revision is left alone since the data
// already matches the store.
func (s *State) Restore(snapshot entities.WorkspaceSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot = cloneSnapshot(snapshot)
	for i := range s.snapshot.Sections {
		s.snapshot.Sections[i].IsSynthesizing = false
	}
	s.clearActivityLocked()
	s.revision++
}

// View returns a copy of everything a client can observe.
func (s *State) View() entities.WorkspaceView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

func (s *State) viewLocked() entities.WorkspaceView {
	return entities.WorkspaceView{
		WorkspaceSnapshot:     cloneSnapshot(s.snapshot),
		Revision:              s.revision,
		IsTranscribing:        s.isTranscribing,
		TranscribeError:       cloneString(s.transcribeError),
		UploadProgress:        cloneFloat(s.uploadProgress),
		TranscribeStatusLabel: cloneString(s.transcribeStatusLabel),
		IsGenerating:          s.isGenerating,
		GenerateError:         cloneString(s.generateError),
		IsBatching:            s.isBatching,
		BatchError:            cloneString(s.batchError),
	}
}

// Persisted returns the snapshot together with its snapshot revision.
func (s *State) Persisted() PersistedState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return PersistedState{
		Snapshot: cloneSnapshot(s.snapshot),
		Revision: s.snapshotRevision,
		Deleted:  s.deleted,
	}
}

// Sections returns a copy of the current section sequence.
func (s *State) Sections() []entities.ScriptSection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneSections(s.snapshot.Sections)
}

// ReplaceAll swaps the whole section sequence for freshly identified
// sections. Zero sections is rejected and leaves the sequence untouched.
func (s *State) ReplaceAll(parsed []entities.ParsedSection) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.replaceAllLocked(parsed); err != nil {
		return err
	}
	s.touch(true)
	return nil
}

func (s *State) replaceAllLocked(parsed []entities.ParsedSection) error {
	if len(parsed) == 0 {
		return usecaseErrors.ErrScriptUnparseable
	}
	sections := make([]entities.ScriptSection, len(parsed))
	for i, p := range parsed {
		sections[i] = entities.NewScriptSection(i, p)
	}
	s.snapshot.Sections = sections
	s.attempts = make(map[string]uint64)
	return nil
}

// BeginSynthesis marks the section as synthesizing and issues a new attempt.
// An unknown id reports false and changes nothing. text overrides the
// section body when it is not blank.
func (s *State) BeginSynthesis(id, text string) (SynthesisTicket, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return SynthesisTicket{}, false
	}

	section := &s.snapshot.Sections[i]
	section.IsSynthesizing = true
	section.Error = nil
	section.AudioURL = ""

	s.seq++
	s.attempts[id] = s.seq
	s.touch(true)

	if strings.TrimSpace(text) == "" {
		text = section.Body
	}
	return SynthesisTicket{SectionID: id, Attempt: s.seq, Text: strings.TrimSpace(text)}, true
}

// CompleteSynthesis stores the result of an attempt. It reports false when
// the section is gone or a newer attempt for it has been issued since.
func (s *State) CompleteSynthesis(id string, attempt uint64, audioURL string, err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 || s.attempts[id] != attempt {
		return false
	}

	section := &s.snapshot.Sections[i]
	section.IsSynthesizing = false
	if err != nil {
		section.AudioURL = ""
		section.Error = message(err)
	} else {
		section.AudioURL = audioURL
		section.Error = nil
	}
	s.touch(true)
	return true
}

// BeginUpload starts a transcription for fileName and clears everything
// derived from the previous transcript.
func (s *State) BeginUpload(fileName string) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.tokens[opUpload] != 0 {
		return 0, usecaseErrors.ErrAlreadyRunning
	}

	s.isTranscribing = true
	s.transcribeError = nil
	s.snapshot.LastUploadedFileName = &fileName
	s.generateError = nil
	s.snapshot.Sections = []entities.ScriptSection{}
	s.attempts = make(map[string]uint64)
	s.batchError = nil
	s.snapshot.BatchZipURL = nil
	zero := 0.0
	s.uploadProgress = &zero
	label := entities.StatusLabelTranscribing
	s.transcribeStatusLabel = &label

	token := s.issue(opUpload)
	s.touch(true)
	return token, nil
}

// ReportProgress records upload progress clamped to [0,100] and rounded.
// nil means indeterminate. Sections are never touched.
func (s *State) ReportProgress(token uint64, percent *float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.current(opUpload, token) {
		return false
	}
	s.uploadProgress = clampPercent(percent)
	s.touch(false)
	return true
}

// CompleteUpload stores the transcription outcome.
func (s *State) CompleteUpload(token uint64, transcript, audioURL string, err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.current(opUpload, token) {
		return false
	}
	delete(s.tokens, opUpload)

	s.isTranscribing = false
	s.uploadProgress = nil
	if err != nil {
		s.transcribeError = message(err)
		s.snapshot.Transcript = ""
		s.snapshot.TranscribedAudioURL = nil
		label := entities.StatusLabelError
		s.transcribeStatusLabel = &label
	} else {
		s.snapshot.Transcript = transcript
		s.snapshot.TranscribedAudioURL = &audioURL
		s.transcribeStatusLabel = nil
	}
	s.touch(true)
	return true
}

// BeginGenerate validates the transcript and starts script generation.
// It returns the transcript to use as the prompt.
func (s *State) BeginGenerate() (uint64, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.tokens[opGenerate] != 0 {
		return 0, "", usecaseErrors.ErrAlreadyRunning
	}
	if strings.TrimSpace(s.snapshot.Transcript) == "" {
		s.generateError = message(usecaseErrors.ErrTranscriptEmpty)
		s.touch(false)
		return 0, "", usecaseErrors.ErrTranscriptEmpty
	}

	s.isGenerating = true
	s.generateError = nil
	s.snapshot.BatchZipURL = nil
	s.batchError = nil

	token := s.issue(opGenerate)
	s.touch(true)
	return token, s.snapshot.Transcript, nil
}

// CompleteGenerate applies the parsed script, or stores the failure.
// applied is false when a reset or a newer generation superseded the token;
// err is the outcome of the remote call either way.
func (s *State) CompleteGenerate(token uint64, parsed []entities.ParsedSection, err error) (applied bool, _ error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err == nil && len(parsed) == 0 {
		err = usecaseErrors.ErrScriptUnparseable
	}
	if !s.current(opGenerate, token) {
		return false, err
	}
	delete(s.tokens, opGenerate)

	s.isGenerating = false
	if err == nil {
		err = s.replaceAllLocked(parsed)
	}
	if err != nil {
		s.generateError = message(err)
		s.touch(false)
		return true, err
	}
	s.touch(true)
	return true, nil
}

// BeginBatch collects the trimmed, non-empty section bodies. With none left
// it fails without issuing a request.
func (s *State) BeginBatch() (BatchTicket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.tokens[opBatch] != 0 {
		return BatchTicket{}, usecaseErrors.ErrAlreadyRunning
	}

	texts := make([]string, 0, len(s.snapshot.Sections))
	for _, section := range s.snapshot.Sections {
		if body := strings.TrimSpace(section.Body); body != "" {
			texts = append(texts, body)
		}
	}
	if len(texts) == 0 {
		s.batchError = message(usecaseErrors.ErrNothingToSynthesize)
		s.touch(false)
		return BatchTicket{}, usecaseErrors.ErrNothingToSynthesize
	}

	s.isBatching = true
	s.batchError = nil
	s.snapshot.BatchZipURL = nil

	token := s.issue(opBatch)
	s.touch(true)
	return BatchTicket{Token: token, Texts: texts}, nil
}

// CompleteBatch stores the archive URL or the failure.
func (s *State) CompleteBatch(token uint64, zipURL string, err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.current(opBatch, token) {
		return false
	}
	delete(s.tokens, opBatch)

	s.isBatching = false
	if err != nil {
		s.snapshot.BatchZipURL = nil
		s.batchError = message(err)
	} else {
		s.snapshot.BatchZipURL = &zipURL
		s.batchError = nil
	}
	s.touch(true)
	return true
}

// Export renders the current sections as plain text. A failure is stored
// as the batch error, next to the other download.
func (s *State) Export() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	text, err := script.RenderScriptText(script.FromScriptSections(s.snapshot.Sections))
	if err != nil {
		s.batchError = message(err)
		s.touch(false)
		return "", err
	}
	return text, nil
}

// Reset returns the workspace to its default. In-flight operations and
// synthesis attempts are invalidated.
func (s *State) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot = entities.DefaultSnapshot()
	s.clearActivityLocked()

	s.revision++
	s.snapshotRevision++
	s.deleted = true
}

func (s *State) clearActivityLocked() {
	s.isTranscribing = false
	s.transcribeError = nil
	s.uploadProgress = nil
	s.transcribeStatusLabel = nil
	s.isGenerating = false
	s.generateError = nil
	s.isBatching = false
	s.batchError = nil
	s.tokens = make(map[operation]uint64)
	s.attempts = make(map[string]uint64)
}

func (s *State) issue(op operation) uint64 {
	s.seq++
	s.tokens[op] = s.seq
	return s.seq
}

func (s *State) current(op operation, token uint64) bool {
	return token != 0 && s.tokens[op] == token
}

// touch records an observable change; persisted marks a snapshot change.
func (s *State) touch(persisted bool) {
	s.revision++
	if persisted {
		s.snapshotRevision++
		s.deleted = false
	}
}

func (s *State) indexOf(id string) int {
	for i := range s.snapshot.Sections {
		if s.snapshot.Sections[i].ID == id {
			return i
		}
	}
	return -1
}

func message(err error) *string {
	msg := usecaseErrors.UserMessage(err)
	return &msg
}

func clampPercent(percent *float64) *float64 {
	if percent == nil || math.IsNaN(*percent) {
		return nil
	}
	v := math.Round(math.Max(0, math.Min(100, *percent)))
	return &v
}

func cloneSnapshot(in entities.WorkspaceSnapshot) entities.WorkspaceSnapshot {
	out := in
	out.TranscribedAudioURL = cloneString(in.TranscribedAudioURL)
	out.LastUploadedFileName = cloneString(in.LastUploadedFileName)
	out.BatchZipURL = cloneString(in.BatchZipURL)
	out.Sections = cloneSections(in.Sections)
	return out
}

func cloneSections(in []entities.ScriptSection) []entities.ScriptSection {
	out := make([]entities.ScriptSection, len(in))
	for i, section := range in {
		out[i] = section
		out[i].Error = cloneString(section.Error)
	}
	return out
}

func cloneString(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneFloat(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
