package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/johnquangdev/script-workspace/pkg/config"
)

// ScriptSystemPrompt asks the model for heading-delimited markdown that the
// section parser can split.
const ScriptSystemPrompt = `You are a narration script writer. Rewrite the transcript you receive into a clear narration script.
Rules:
- Split the script into chapters. Start every chapter with a markdown heading line ("## Title").
- Under each heading write the narration as plain sentences. Bullet or numbered lists are allowed.
- Do not add any text before the first heading.
- Answer in the language of the transcript.`

// GroqClient is a minimal client for the Groq OpenAI-compatible API
type GroqClient struct {
	apiKey    string
	baseURL   string
	model     string
	ttsModel  string
	ttsVoice  string
	maxTokens int
	client    *http.Client
}

// NewGroqClient creates a Groq client using values from the provided config.
// Pass a nil config to fall back to environment variables.
func NewGroqClient(cfg *config.GroqConfig) *GroqClient {
	g := &GroqClient{
		baseURL:   "https://api.groq.com",
		model:     "llama-3.3-70b-versatile",
		ttsModel:  "playai-tts",
		ttsVoice:  "Fritz-PlayAI",
		maxTokens: 8000,
		client:    &http.Client{Timeout: 2 * time.Minute},
	}
	if cfg != nil {
		g.apiKey = cfg.APIKey
		if cfg.BaseURL != "" {
			g.baseURL = cfg.BaseURL
		}
		if cfg.Model != "" {
			g.model = cfg.Model
		}
		if cfg.TTSModel != "" {
			g.ttsModel = cfg.TTSModel
		}
		if cfg.TTSVoice != "" {
			g.ttsVoice = cfg.TTSVoice
		}
		if cfg.MaxTokens > 0 {
			g.maxTokens = cfg.MaxTokens
		}
	}
	if g.apiKey == "" {
		g.apiKey = os.Getenv("GROQ_API_KEY")
	}
	g.baseURL = strings.TrimRight(g.baseURL, "/")
	return g
}

// ChatMessage is one message of a chat completion
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the shape for chat completion requests
type ChatRequest struct {
	Model       string        `json:"model,omitempty"`
	Messages    []ChatMessage `json:"messages,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

// ChatResponse is a minimal response shape
type ChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// SpeechRequest is the body of /openai/v1/audio/speech
type SpeechRequest struct {
	Model          string `json:"model"`
	Voice          string `json:"voice"`
	Input          string `json:"input"`
	ResponseFormat string `json:"response_format"`
}

// GenerateScript sends the transcript to Groq and returns the markdown script
func (g *GroqClient) GenerateScript(ctx context.Context, transcript string) (string, error) {
	reqBody := ChatRequest{
		Model: g.model,
		Messages: []ChatMessage{
			{Role: "system", Content: ScriptSystemPrompt},
			{Role: "user", Content: transcript},
		},
		Temperature: 0.4,
		MaxTokens:   g.maxTokens,
	}

	resp, err := g.post(ctx, "/openai/v1/chat/completions", reqBody)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var cr ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return "", unexpectedResponse(resp.StatusCode)
	}
	if len(cr.Choices) == 0 {
		return "", &APIError{Message: "The model returned an empty response.", Status: resp.StatusCode}
	}
	return cr.Choices[0].Message.Content, nil
}

// SynthesizeSpeech renders text to WAV audio
func (g *GroqClient) SynthesizeSpeech(ctx context.Context, text string) ([]byte, error) {
	reqBody := SpeechRequest{
		Model:          g.ttsModel,
		Voice:          g.ttsVoice,
		Input:          text,
		ResponseFormat: "wav",
	}

	resp, err := g.post(ctx, "/openai/v1/audio/speech", reqBody)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transportError(err)
	}
	if len(audio) == 0 {
		return nil, unexpectedResponse(resp.StatusCode)
	}
	return audio, nil
}

// post returns the response only for 2xx statuses; the caller closes the body.
func (g *GroqClient) post(ctx context.Context, path string, payload interface{}) (*http.Response, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+path, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", g.apiKey))
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, transportError(err)
	}
	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		return nil, errorFromResponse(resp)
	}
	return resp, nil
}
