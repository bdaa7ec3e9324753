package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/johnquangdev/script-workspace/pkg/config"
)

// BackendClient talks to a speech backend exposing /transcribe, /generate,
// /tts and /batch_tts_to_zip.
type BackendClient struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

// TranscriptionResult is the outcome of a successful transcription
type TranscriptionResult struct {
	Transcript string
	AudioURL   string
}

// NewBackendClient creates a backend client from the pipeline config.
func NewBackendClient(cfg *config.PipelineConfig, logger *zap.Logger) *BackendClient {
	timeout := 10 * time.Minute
	base := "http://localhost:5000"
	if cfg != nil {
		if cfg.RequestTimeout > 0 {
			timeout = cfg.RequestTimeout
		}
		if cfg.BackendURL != "" {
			base = cfg.BackendURL
		}
	}
	return &BackendClient{
		baseURL: strings.TrimRight(base, "/"),
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// Transcribe streams the media as multipart field "file" and reports upload progress.
func (b *BackendClient) Transcribe(ctx context.Context, media Media, progress ProgressFunc) (TranscriptionResult, error) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, escapeQuotes(media.Name)))
		contentType := media.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		header.Set("Content-Type", contentType)

		part, err := mw.CreatePart(header)
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, NewProgressReader(media.Reader, media.Size, progress)); err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.CloseWithError(mw.Close())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+"/transcribe", pr)
	if err != nil {
		pr.Close()
		return TranscriptionResult{}, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var out struct {
		AudioURL   *string `json:"audio_url"`
		Transcript *string `json:"transcript"`
	}
	status, err := b.do(req, &out)
	// Unblock the writer goroutine when the server answered before reading everything.
	pr.Close()
	if err != nil {
		return TranscriptionResult{}, err
	}
	if out.AudioURL == nil || out.Transcript == nil {
		return TranscriptionResult{}, unexpectedResponse(status)
	}

	progress.Report(100)
	return TranscriptionResult{Transcript: *out.Transcript, AudioURL: *out.AudioURL}, nil
}

// GenerateScript sends the prompt to /generate and returns the markdown response.
func (b *BackendClient) GenerateScript(ctx context.Context, prompt string) (string, error) {
	var out struct {
		Response *string `json:"response"`
	}
	status, err := b.postJSON(ctx, "/generate", map[string]string{"prompt": prompt}, &out)
	if err != nil {
		return "", err
	}
	if out.Response == nil {
		return "", unexpectedResponse(status)
	}
	return *out.Response, nil
}

// Synthesize converts one text to speech and returns the audio URL.
func (b *BackendClient) Synthesize(ctx context.Context, text string) (string, error) {
	var out struct {
		AudioURL string `json:"audio_url"`
	}
	status, err := b.postJSON(ctx, "/tts", map[string]string{"text": text}, &out)
	if err != nil {
		return "", err
	}
	if out.AudioURL == "" {
		return "", unexpectedResponse(status)
	}
	return out.AudioURL, nil
}

// SynthesizeBatch converts all texts in one request and returns the archive URL.
func (b *BackendClient) SynthesizeBatch(ctx context.Context, texts []string) (string, error) {
	var out struct {
		ZipURL string `json:"zip_url"`
	}
	status, err := b.postJSON(ctx, "/batch_tts_to_zip", map[string][]string{"text_list": texts}, &out)
	if err != nil {
		return "", err
	}
	if out.ZipURL == "" {
		return "", unexpectedResponse(status)
	}
	return out.ZipURL, nil
}

func (b *BackendClient) postJSON(ctx context.Context, path string, payload interface{}, out interface{}) (int, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return 0, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	return b.do(req, out)
}

func (b *BackendClient) do(req *http.Request, out interface{}) (int, error) {
	started := time.Now()
	resp, err := b.client.Do(req)
	if err != nil {
		if b.logger != nil {
			b.logger.Warn("backend request failed",
				zap.String("path", req.URL.Path),
				zap.Error(err),
			)
		}
		return 0, transportError(err)
	}
	defer resp.Body.Close()

	if b.logger != nil {
		b.logger.Debug("backend response",
			zap.String("path", req.URL.Path),
			zap.Int("status", resp.StatusCode),
			zap.Duration("latency", time.Since(started)),
		)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp.StatusCode, errorFromResponse(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, unexpectedResponse(resp.StatusCode)
	}
	return resp.StatusCode, nil
}

func escapeQuotes(s string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s)
}
