// Package studio composes object storage, AssemblyAI and Groq into the
// transcription, generation and speech pipeline used when no remote speech
// backend is configured.
package studio

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	apperrors "github.com/johnquangdev/script-workspace/errors"
	"github.com/johnquangdev/script-workspace/pkg/ai"
)

// ObjectStore uploads objects and hands out URLs to read them.
type ObjectStore interface {
	UploadFile(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) error
	UploadBytes(ctx context.Context, objectName string, data []byte, contentType string) error
	GetFileURL(ctx context.Context, objectName string) (string, error)
}

// URLTranscriber transcribes media that is reachable over HTTP.
type URLTranscriber interface {
	TranscribeURL(ctx context.Context, audioURL string) (string, error)
}

// ScriptWriter turns a transcript into heading-delimited markdown.
type ScriptWriter interface {
	GenerateScript(ctx context.Context, transcript string) (string, error)
}

// SpeechEngine renders text to WAV audio.
type SpeechEngine interface {
	SynthesizeSpeech(ctx context.Context, text string) ([]byte, error)
}

// Pipeline implements the workspace collaborators on top of the native
// services.
type Pipeline struct {
	store       ObjectStore
	transcriber URLTranscriber
	writer      ScriptWriter
	speech      SpeechEngine
	concurrency int
	logger      *zap.Logger
}

// NewPipeline creates a pipeline. concurrency bounds the parallel speech
// requests of one batch.
func NewPipeline(store ObjectStore, transcriber URLTranscriber, writer ScriptWriter, speech SpeechEngine, concurrency int, logger *zap.Logger) *Pipeline {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Pipeline{
		store:       store,
		transcriber: transcriber,
		writer:      writer,
		speech:      speech,
		concurrency: concurrency,
		logger:      logger,
	}
}

// Transcribe uploads the media to object storage, reporting upload
// progress, then transcribes it from its URL. The URL is returned as the
// audio locator.
func (p *Pipeline) Transcribe(ctx context.Context, media ai.Media, progress ai.ProgressFunc) (ai.TranscriptionResult, error) {
	objectName := fmt.Sprintf("uploads/%s/%s", time.Now().UTC().Format("2006-01-02"), uuid.NewString()+path.Ext(media.Name))
	contentType := media.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	size := media.Size
	if size <= 0 {
		size = -1
	}
	reader := ai.NewProgressReader(media.Reader, media.Size, progress)
	if err := p.store.UploadFile(ctx, objectName, reader, size, contentType); err != nil {
		return ai.TranscriptionResult{}, apperrors.ErrStorageFailed("upload media", err)
	}
	progress.Report(100)

	audioURL, err := p.store.GetFileURL(ctx, objectName)
	if err != nil {
		return ai.TranscriptionResult{}, apperrors.ErrStorageFailed("presign media", err)
	}

	if p.logger != nil {
		p.logger.Info("media stored, transcribing", zap.String("object", objectName))
	}

	transcript, err := p.transcriber.TranscribeURL(ctx, audioURL)
	if err != nil {
		return ai.TranscriptionResult{}, err
	}
	return ai.TranscriptionResult{Transcript: transcript, AudioURL: audioURL}, nil
}

// GenerateScript forwards the prompt to the script writer.
func (p *Pipeline) GenerateScript(ctx context.Context, prompt string) (string, error) {
	return p.writer.GenerateScript(ctx, prompt)
}

// Synthesize renders one text and stores the audio.
func (p *Pipeline) Synthesize(ctx context.Context, text string) (string, error) {
	audio, err := p.speech.SynthesizeSpeech(ctx, text)
	if err != nil {
		return "", err
	}

	objectName := fmt.Sprintf("audio/%s.wav", uuid.NewString())
	if err := p.store.UploadBytes(ctx, objectName, audio, "audio/wav"); err != nil {
		return "", apperrors.ErrStorageFailed("upload audio", err)
	}
	audioURL, err := p.store.GetFileURL(ctx, objectName)
	if err != nil {
		return "", apperrors.ErrStorageFailed("presign audio", err)
	}
	return audioURL, nil
}

// SynthesizeBatch renders every text with bounded parallelism, packs the
// results into one zip archive in input order and stores it. Any failure
// fails the whole batch.
func (p *Pipeline) SynthesizeBatch(ctx context.Context, texts []string) (string, error) {
	if len(texts) == 0 {
		return "", &ai.APIError{Message: "No texts to synthesize."}
	}

	audio := make([][]byte, len(texts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)
	for i, text := range texts {
		g.Go(func() error {
			data, err := p.speech.SynthesizeSpeech(gctx, text)
			if err != nil {
				return err
			}
			audio[i] = data
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", err
	}

	archive, err := buildArchive(audio)
	if err != nil {
		return "", apperrors.ErrInternal(err)
	}

	objectName := fmt.Sprintf("batches/%s.zip", uuid.NewString())
	if err := p.store.UploadBytes(ctx, objectName, archive, "application/zip"); err != nil {
		return "", apperrors.ErrStorageFailed("upload archive", err)
	}
	zipURL, err := p.store.GetFileURL(ctx, objectName)
	if err != nil {
		return "", apperrors.ErrStorageFailed("presign archive", err)
	}

	if p.logger != nil {
		p.logger.Info("batch archive stored",
			zap.String("object", objectName),
			zap.Int("files", len(audio)),
			zap.Int("bytes", len(archive)),
		)
	}
	return zipURL, nil
}

// ArchiveEntryName names the i-th (zero based) file of a batch archive.
func ArchiveEntryName(i int) string {
	return fmt.Sprintf("section_%03d.wav", i+1)
}

func buildArchive(files [][]byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for i, data := range files {
		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:     ArchiveEntryName(i),
			Method:   zip.Store,
			Modified: time.Now(),
		})
		if err != nil {
			return nil, fmt.Errorf("create archive entry: %w", err)
		}
		if _, err := w.Write(data); err != nil {
			return nil, fmt.Errorf("write archive entry: %w", err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close archive: %w", err)
	}
	return buf.Bytes(), nil
}
