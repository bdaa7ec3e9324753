package workspace

import (
	"context"

	"github.com/johnquangdev/script-workspace/internal/domain/entities"
	"github.com/johnquangdev/script-workspace/pkg/ai"
)

// Transcriber turns an uploaded media file into a transcript and an audio URL.
type Transcriber interface {
	Transcribe(ctx context.Context, media ai.Media, progress ai.ProgressFunc) (ai.TranscriptionResult, error)
}

// ScriptGenerator produces heading-delimited markdown from a prompt.
type ScriptGenerator interface {
	GenerateScript(ctx context.Context, prompt string) (string, error)
}

// SpeechSynthesizer converts one text to speech and returns the audio URL.
type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, text string) (string, error)
}

// BatchSynthesizer converts an ordered list of texts in one request and
// returns the URL of the resulting archive.
type BatchSynthesizer interface {
	SynthesizeBatch(ctx context.Context, texts []string) (string, error)
}

// Pipeline bundles every remote collaborator the workspace drives.
type Pipeline interface {
	Transcriber
	ScriptGenerator
	SpeechSynthesizer
	BatchSynthesizer
}

// Notifier receives the workspace view after every observable change.
type Notifier interface {
	Publish(view entities.WorkspaceView)
}

// NotifierFunc adapts a plain function to a Notifier.
type NotifierFunc func(view entities.WorkspaceView)

// Publish calls f(view).
func (f NotifierFunc) Publish(view entities.WorkspaceView) {
	f(view)
}
