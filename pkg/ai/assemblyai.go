package ai

import (
	"context"
	"os"

	aai "github.com/AssemblyAI/assemblyai-go-sdk"

	"github.com/johnquangdev/script-workspace/pkg/config"
)

// AssemblyAIClient transcribes media through the official AssemblyAI SDK
type AssemblyAIClient struct {
	client       *aai.Client
	languageCode string
}

// NewAssemblyAIClient creates an AssemblyAI client using the provided config.
// If cfg is nil, falls back to environment variables.
func NewAssemblyAIClient(cfg *config.AssemblyAIConfig) *AssemblyAIClient {
	var apiKey, language string
	if cfg != nil {
		apiKey = cfg.APIKey
		language = cfg.LanguageCode
	}
	if apiKey == "" {
		apiKey = os.Getenv("ASSEMBLYAI_API_KEY")
	}
	return &AssemblyAIClient{
		client:       aai.NewClient(apiKey),
		languageCode: language,
	}
}

// TranscribeURL transcribes audio reachable at audioURL and blocks until the
// transcript is completed or failed.
func (c *AssemblyAIClient) TranscribeURL(ctx context.Context, audioURL string) (string, error) {
	transcript, err := c.client.Transcripts.TranscribeFromURL(ctx, audioURL, c.params())
	if err != nil {
		if ctx.Err() != nil {
			return "", transportError(ctx.Err())
		}
		return "", &APIError{Message: "Transcription failed.", Err: err}
	}

	if transcript.Status == aai.TranscriptStatusError {
		msg := "Transcription failed."
		if transcript.Error != nil && *transcript.Error != "" {
			msg = *transcript.Error
		}
		return "", &APIError{Message: msg}
	}

	if transcript.Text == nil {
		return "", nil
	}
	return *transcript.Text, nil
}

func (c *AssemblyAIClient) params() *aai.TranscriptOptionalParams {
	if c.languageCode == "" {
		return &aai.TranscriptOptionalParams{
			LanguageDetection: aai.Bool(true),
		}
	}
	return &aai.TranscriptOptionalParams{
		LanguageCode: aai.TranscriptLanguageCode(c.languageCode),
	}
}
