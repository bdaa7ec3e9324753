package storage

import (
	"net/url"
	"testing"
)

func TestRewriteHost(t *testing.T) {
	presigned, err := url.Parse("http://minio:9000/bucket/audio/a.wav?X-Amz-Signature=abc")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	cases := []struct {
		public string
		want   string
	}{
		{"", "http://minio:9000/bucket/audio/a.wav?X-Amz-Signature=abc"},
		{"https://cdn.example.com", "https://cdn.example.com/bucket/audio/a.wav?X-Amz-Signature=abc"},
		{"https://example.com/storage/", "https://example.com/storage/bucket/audio/a.wav?X-Amz-Signature=abc"},
		{"not a url", "http://minio:9000/bucket/audio/a.wav?X-Amz-Signature=abc"},
	}
	for _, c := range cases {
		if got := rewriteHost(presigned, c.public); got != c.want {
			t.Fatalf("rewriteHost(%q) = %q, want %q", c.public, got, c.want)
		}
	}
}
