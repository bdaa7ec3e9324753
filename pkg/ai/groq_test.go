package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/johnquangdev/script-workspace/pkg/config"
)

func TestGroqGenerateScript(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/openai/v1/chat/completions" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Fatalf("unexpected auth header %q", got)
		}
		var req ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("invalid payload: %v", err)
		}
		if len(req.Messages) != 2 || req.Messages[1].Content != "the transcript" {
			t.Fatalf("unexpected messages %+v", req.Messages)
		}
		w.Write([]byte(`{"choices":[{"message":{"content":"## Intro\nhello"}}]}`))
	}))
	defer ts.Close()

	client := NewGroqClient(&config.GroqConfig{APIKey: "test-key", BaseURL: ts.URL})
	script, err := client.GenerateScript(context.Background(), "the transcript")
	if err != nil {
		t.Fatalf("GenerateScript failed: %v", err)
	}
	if script != "## Intro\nhello" {
		t.Fatalf("unexpected script %q", script)
	}
}

func TestGroqSynthesizeSpeech(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req SpeechRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("invalid payload: %v", err)
		}
		if req.Input != "read me" || req.ResponseFormat != "wav" {
			t.Fatalf("unexpected request %+v", req)
		}
		w.Header().Set("Content-Type", "audio/wav")
		w.Write([]byte("RIFF...."))
	}))
	defer ts.Close()

	client := NewGroqClient(&config.GroqConfig{APIKey: "k", BaseURL: ts.URL})
	audio, err := client.SynthesizeSpeech(context.Background(), "read me")
	if err != nil {
		t.Fatalf("SynthesizeSpeech failed: %v", err)
	}
	if string(audio) != "RIFF...." {
		t.Fatalf("unexpected audio %q", audio)
	}
}

func TestGroqErrorPayload(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"Invalid API Key","type":"invalid_request_error"}}`))
	}))
	defer ts.Close()

	client := NewGroqClient(&config.GroqConfig{APIKey: "bad", BaseURL: ts.URL})
	_, err := client.GenerateScript(context.Background(), "x")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError got %v", err)
	}
	if apiErr.Message != "Invalid API Key" || apiErr.Status != http.StatusUnauthorized {
		t.Fatalf("unexpected error %+v", apiErr)
	}
}
