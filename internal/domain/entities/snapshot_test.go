package entities

import (
	"encoding/json"
	"reflect"
	"testing"
)

func strPtr(s string) *string { return &s }

func TestDecodeSnapshot(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want WorkspaceSnapshot
	}{
		{"empty", "", DefaultSnapshot()},
		{"whitespace", "  \n", DefaultSnapshot()},
		{"garbage", "{not json", DefaultSnapshot()},
		{"null root", "null", DefaultSnapshot()},
		{"array root", `[{"transcript":"t"}]`, DefaultSnapshot()},
		{"string root", `"transcript"`, DefaultSnapshot()},
		{
			name: "well formed",
			raw:  `{"transcript":"t","transcribedAudioUrl":"a.wav","lastUploadedFileName":"clip.mp4","sections":[{"id":"s1","title":"A","body":"b","audioUrl":"s1.wav","error":"boom"}],"batchZipUrl":"z.zip"}`,
			want: WorkspaceSnapshot{
				Transcript:           "t",
				TranscribedAudioURL:  strPtr("a.wav"),
				LastUploadedFileName: strPtr("clip.mp4"),
				Sections:             []ScriptSection{{ID: "s1", Title: "A", Body: "b", AudioURL: "s1.wav", Error: strPtr("boom")}},
				BatchZipURL:          strPtr("z.zip"),
			},
		},
		{
			name: "mistyped fields fall back one by one",
			raw:  `{"transcript":5,"transcribedAudioUrl":"a.wav","lastUploadedFileName":{"x":1},"sections":[{"id":"s1","title":7,"body":"b","isSynthesizing":true,"error":3},{"title":"noid"},{"id":"s1","title":"dup"}],"batchZipUrl":"z.zip"}`,
			want: WorkspaceSnapshot{
				TranscribedAudioURL: strPtr("a.wav"),
				Sections:            []ScriptSection{{ID: "s1", Body: "b"}},
				BatchZipURL:         strPtr("z.zip"),
			},
		},
		{
			name: "sections not a list",
			raw:  `{"transcript":"t","sections":{"id":"s1"}}`,
			want: WorkspaceSnapshot{Transcript: "t", Sections: []ScriptSection{}},
		},
		{
			name: "non object section entries skipped",
			raw:  `{"sections":[1,"s",null,{"id":""},{"id":"s2","body":"x"}]}`,
			want: WorkspaceSnapshot{Sections: []ScriptSection{{ID: "s2", Body: "x"}}},
		},
		{
			name: "null values keep defaults",
			raw:  `{"transcript":null,"transcribedAudioUrl":null,"lastUploadedFileName":null,"sections":null,"batchZipUrl":null}`,
			want: DefaultSnapshot(),
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := DecodeSnapshot([]byte(c.raw))
			if !reflect.DeepEqual(got, c.want) {
				t.Fatalf("expected %+v got %+v", c.want, got)
			}
		})
	}
}

func TestEncode_ClearsSynthesizingFlag(t *testing.T) {
	snapshot := WorkspaceSnapshot{
		Transcript: "t",
		Sections: []ScriptSection{
			{ID: "s1", Title: "A", Body: "b", IsSynthesizing: true},
			{ID: "s2", Title: "B", Body: "c", AudioURL: "s2.wav", Error: strPtr("boom")},
		},
	}

	payload, err := snapshot.Encode()
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if !snapshot.Sections[0].IsSynthesizing {
		t.Fatalf("Encode must not modify its receiver")
	}

	var stored struct {
		Sections []map[string]interface{} `json:"sections"`
	}
	if err := json.Unmarshal(payload, &stored); err != nil {
		t.Fatalf("invalid payload %s: %v", payload, err)
	}
	for _, s := range stored.Sections {
		if s["isSynthesizing"] != false {
			t.Fatalf("stored section %v is still synthesizing", s["id"])
		}
	}

	decoded := DecodeSnapshot(payload)
	snapshot.Sections[0].IsSynthesizing = false
	if !reflect.DeepEqual(decoded, snapshot) {
		t.Fatalf("round trip mismatch: expected %+v got %+v", snapshot, decoded)
	}
}
