package workspace

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/johnquangdev/script-workspace/internal/domain/entities"
	"github.com/johnquangdev/script-workspace/internal/domain/repositories"
	usecaseErrors "github.com/johnquangdev/script-workspace/internal/usecase/errors"
	"github.com/johnquangdev/script-workspace/pkg/ai"
)

type fakePipeline struct {
	mu sync.Mutex

	transcribe func(ctx context.Context, media ai.Media, progress ai.ProgressFunc) (ai.TranscriptionResult, error)
	generate   func(ctx context.Context, prompt string) (string, error)
	synthesize func(ctx context.Context, text string) (string, error)
	batch      func(ctx context.Context, texts []string) (string, error)

	prompts    []string
	synthCalls []string
	batchCalls [][]string
}

func (f *fakePipeline) Transcribe(ctx context.Context, media ai.Media, progress ai.ProgressFunc) (ai.TranscriptionResult, error) {
	return f.transcribe(ctx, media, progress)
}

func (f *fakePipeline) GenerateScript(ctx context.Context, prompt string) (string, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	f.mu.Unlock()
	return f.generate(ctx, prompt)
}

func (f *fakePipeline) Synthesize(ctx context.Context, text string) (string, error) {
	f.mu.Lock()
	f.synthCalls = append(f.synthCalls, text)
	f.mu.Unlock()
	return f.synthesize(ctx, text)
}

func (f *fakePipeline) SynthesizeBatch(ctx context.Context, texts []string) (string, error) {
	f.mu.Lock()
	f.batchCalls = append(f.batchCalls, texts)
	f.mu.Unlock()
	return f.batch(ctx, texts)
}

type fakeRepo struct {
	mu      sync.Mutex
	data    []byte
	loadErr error
	saves   int
	deletes int
}

func (r *fakeRepo) Load(ctx context.Context) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.loadErr != nil {
		return nil, r.loadErr
	}
	if r.data == nil {
		return nil, repositories.ErrSnapshotNotFound
	}
	return append([]byte(nil), r.data...), nil
}

func (r *fakeRepo) Save(ctx context.Context, payload []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data = append([]byte(nil), payload...)
	r.saves++
	return nil
}

func (r *fakeRepo) Delete(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data = nil
	r.deletes++
	return nil
}

func (r *fakeRepo) Close() error { return nil }

func (r *fakeRepo) stored(t *testing.T) entities.WorkspaceSnapshot {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.data == nil {
		t.Fatalf("expected a stored snapshot")
	}
	return entities.DecodeSnapshot(r.data)
}

type fakeNotifier struct {
	mu    sync.Mutex
	views []entities.WorkspaceView
}

func (n *fakeNotifier) Publish(view entities.WorkspaceView) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.views = append(n.views, view)
}

func (n *fakeNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.views)
}

func newTestService(t *testing.T, repo *fakeRepo, pipeline *fakePipeline) (*Service, *fakeNotifier) {
	t.Helper()
	notifier := &fakeNotifier{}
	svc := NewService(repo, pipeline, notifier, time.Second, nil)
	svc.Load(context.Background())
	return svc, notifier
}

func seededRepo(t *testing.T, snapshot entities.WorkspaceSnapshot) *fakeRepo {
	t.Helper()
	payload, err := snapshot.Encode()
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	return &fakeRepo{data: payload}
}

func TestLoad_Fallbacks(t *testing.T) {
	cases := []struct {
		name string
		repo *fakeRepo
	}{
		{"missing", &fakeRepo{}},
		{"read error", &fakeRepo{loadErr: errors.New("disk gone")}},
		{"malformed", &fakeRepo{data: []byte("{not json")}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			svc, _ := newTestService(t, c.repo, &fakePipeline{})
			view := svc.View(context.Background())
			if !reflect.DeepEqual(view.WorkspaceSnapshot, entities.DefaultSnapshot()) {
				t.Fatalf("expected default snapshot got %+v", view.WorkspaceSnapshot)
			}
		})
	}
}

func TestLoad_ClearsSynthesizingFlag(t *testing.T) {
	repo := &fakeRepo{data: []byte(`{"transcript":"hi","sections":[{"id":"s1","title":"A","body":"b","isSynthesizing":true}]}`)}
	svc, _ := newTestService(t, repo, &fakePipeline{})

	view := svc.View(context.Background())
	if view.Transcript != "hi" || len(view.Sections) != 1 {
		t.Fatalf("unexpected view %+v", view)
	}
	if view.Sections[0].IsSynthesizing {
		t.Fatalf("hydrated section must not be synthesizing")
	}
}

func TestUpload_Success(t *testing.T) {
	repo := seededRepo(t, entities.WorkspaceSnapshot{
		Sections: []entities.ScriptSection{{ID: "old", Title: "A", Body: "b"}},
	})
	var observed []*float64
	pipeline := &fakePipeline{
		transcribe: func(ctx context.Context, media ai.Media, progress ai.ProgressFunc) (ai.TranscriptionResult, error) {
			progress.Report(12.4)
			progress.Report(99.9)
			return ai.TranscriptionResult{Transcript: "hello world", AudioURL: "http://cdn/a.mp3"}, nil
		},
	}
	svc, notifier := newTestService(t, repo, pipeline)
	svc.notifier = NotifierFunc(func(view entities.WorkspaceView) {
		notifier.Publish(view)
		if view.IsTranscribing {
			observed = append(observed, view.UploadProgress)
		}
	})

	view, err := svc.Upload(context.Background(), ai.Media{Name: "talk.mp4", Size: 2048, Reader: strings.NewReader("data")})
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}
	if view.Transcript != "hello world" || view.TranscribedAudioURL == nil || *view.TranscribedAudioURL != "http://cdn/a.mp3" {
		t.Fatalf("unexpected view %+v", view)
	}
	if len(view.Sections) != 0 {
		t.Fatalf("upload must clear sections")
	}
	if view.TranscribeStatusLabel != nil || view.UploadProgress != nil || view.IsTranscribing {
		t.Fatalf("transient upload fields should be cleared: %+v", view)
	}

	wantProgress := []float64{0, 12, 100}
	if len(observed) != len(wantProgress) {
		t.Fatalf("expected %d in-flight views got %d", len(wantProgress), len(observed))
	}
	for i, want := range wantProgress {
		if observed[i] == nil || *observed[i] != want {
			t.Fatalf("progress %d: got %v want %v", i, observed[i], want)
		}
	}

	stored := repo.stored(t)
	if stored.Transcript != "hello world" || stored.LastUploadedFileName == nil || *stored.LastUploadedFileName != "talk.mp4" {
		t.Fatalf("unexpected stored snapshot %+v", stored)
	}
}

func TestUpload_Failure(t *testing.T) {
	repo := seededRepo(t, entities.WorkspaceSnapshot{Transcript: "old", Sections: []entities.ScriptSection{}})
	pipeline := &fakePipeline{
		transcribe: func(ctx context.Context, media ai.Media, progress ai.ProgressFunc) (ai.TranscriptionResult, error) {
			return ai.TranscriptionResult{}, &ai.APIError{Message: "unsupported format", Status: 415}
		},
	}
	svc, _ := newTestService(t, repo, pipeline)

	view, err := svc.Upload(context.Background(), ai.Media{Name: "notes.txt", Reader: strings.NewReader("x")})
	var apiErr *ai.APIError
	if !errors.As(err, &apiErr) || apiErr.Status != 415 {
		t.Fatalf("expected APIError got %v", err)
	}
	if view.Transcript != "" || view.TranscribeError == nil || *view.TranscribeError != "unsupported format" {
		t.Fatalf("unexpected view %+v", view)
	}
	if stored := repo.stored(t); stored.Transcript != "" {
		t.Fatalf("stored transcript should be cleared")
	}
}

func TestGenerate_EmptyTranscript(t *testing.T) {
	pipeline := &fakePipeline{}
	svc, _ := newTestService(t, &fakeRepo{}, pipeline)

	view, err := svc.Generate(context.Background())
	if !errors.Is(err, usecaseErrors.ErrTranscriptEmpty) {
		t.Fatalf("expected ErrTranscriptEmpty got %v", err)
	}
	if view.GenerateError == nil {
		t.Fatalf("expected generate error in view")
	}
	if len(pipeline.prompts) != 0 {
		t.Fatalf("generator must not be called")
	}
}

func TestGenerate_ReplacesSections(t *testing.T) {
	zip := "http://cdn/old.zip"
	repo := seededRepo(t, entities.WorkspaceSnapshot{
		Transcript:  "the transcript",
		Sections:    []entities.ScriptSection{{ID: "old", Title: "Old", Body: "old"}},
		BatchZipURL: &zip,
	})
	pipeline := &fakePipeline{
		generate: func(ctx context.Context, prompt string) (string, error) {
			return "# Intro\n- hello\n# Outro\n1. bye", nil
		},
	}
	svc, _ := newTestService(t, repo, pipeline)

	view, err := svc.Generate(context.Background())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if !reflect.DeepEqual(pipeline.prompts, []string{"the transcript"}) {
		t.Fatalf("unexpected prompts %v", pipeline.prompts)
	}
	if len(view.Sections) != 2 || view.Sections[0].Body != "hello" || view.Sections[1].Body != "bye" {
		t.Fatalf("unexpected sections %+v", view.Sections)
	}
	if view.BatchZipURL != nil {
		t.Fatalf("generate must clear the batch archive")
	}
	if stored := repo.stored(t); len(stored.Sections) != 2 {
		t.Fatalf("sections not persisted: %+v", stored)
	}
}

func TestGenerate_UnparseableKeepsSections(t *testing.T) {
	repo := seededRepo(t, entities.WorkspaceSnapshot{
		Transcript: "t",
		Sections:   []entities.ScriptSection{{ID: "keep", Title: "A", Body: "b"}},
	})
	pipeline := &fakePipeline{
		generate: func(ctx context.Context, prompt string) (string, error) {
			return "no headings at all", nil
		},
	}
	svc, _ := newTestService(t, repo, pipeline)

	view, err := svc.Generate(context.Background())
	if !errors.Is(err, usecaseErrors.ErrScriptUnparseable) {
		t.Fatalf("expected ErrScriptUnparseable got %v", err)
	}
	if len(view.Sections) != 1 || view.Sections[0].ID != "keep" {
		t.Fatalf("previous sections must be kept: %+v", view.Sections)
	}
	if view.GenerateError == nil || view.IsGenerating {
		t.Fatalf("unexpected generate state %+v", view)
	}
}

func TestGenerate_SupersededByReset(t *testing.T) {
	repo := seededRepo(t, entities.WorkspaceSnapshot{Transcript: "t"})
	var svc *Service
	pipeline := &fakePipeline{
		generate: func(ctx context.Context, prompt string) (string, error) {
			svc.Reset(ctx)
			return "# Intro\nhello", nil
		},
	}
	svc, _ = newTestService(t, repo, pipeline)

	view, err := svc.Generate(context.Background())
	if !errors.Is(err, usecaseErrors.ErrSuperseded) {
		t.Fatalf("expected ErrSuperseded got %v", err)
	}
	if len(view.Sections) != 0 || view.IsGenerating || view.GenerateError != nil {
		t.Fatalf("stale generation applied %+v", view)
	}
	if repo.data != nil {
		t.Fatalf("stale generation rewrote the deleted snapshot")
	}
}

func TestGenerate_SupersededFailureKeepsCause(t *testing.T) {
	repo := seededRepo(t, entities.WorkspaceSnapshot{Transcript: "t"})
	cause := &ai.APIError{Message: "model overloaded", Status: 503}
	var svc *Service
	pipeline := &fakePipeline{
		generate: func(ctx context.Context, prompt string) (string, error) {
			svc.Reset(ctx)
			return "", cause
		},
	}
	svc, _ = newTestService(t, repo, pipeline)

	view, err := svc.Generate(context.Background())
	if !errors.Is(err, cause) {
		t.Fatalf("expected the remote failure got %v", err)
	}
	if view.GenerateError != nil {
		t.Fatalf("stale failure must not be recorded: %v", *view.GenerateError)
	}
}

func TestBatchSynthesize_SupersededByReset(t *testing.T) {
	repo := seededRepo(t, entities.WorkspaceSnapshot{
		Sections: []entities.ScriptSection{{ID: "s1", Title: "A", Body: "b"}},
	})
	var svc *Service
	pipeline := &fakePipeline{
		batch: func(ctx context.Context, texts []string) (string, error) {
			svc.Reset(ctx)
			return "http://cdn/all.zip", nil
		},
	}
	svc, _ = newTestService(t, repo, pipeline)

	view, err := svc.BatchSynthesize(context.Background())
	if !errors.Is(err, usecaseErrors.ErrSuperseded) {
		t.Fatalf("expected ErrSuperseded got %v", err)
	}
	if view.BatchZipURL != nil || view.IsBatching {
		t.Fatalf("stale batch applied %+v", view)
	}
}

func TestSynthesizeSection(t *testing.T) {
	repo := seededRepo(t, entities.WorkspaceSnapshot{
		Sections: []entities.ScriptSection{
			{ID: "s1", Title: "A", Body: "first"},
			{ID: "s2", Title: "B", Body: "second"},
		},
	})
	pipeline := &fakePipeline{
		synthesize: func(ctx context.Context, text string) (string, error) {
			if text == "second" {
				return "", &ai.APIError{Message: "voice unavailable", Status: 503}
			}
			return "http://cdn/" + text + ".wav", nil
		},
	}
	svc, _ := newTestService(t, repo, pipeline)
	ctx := context.Background()

	started, err := svc.SynthesizeSection(ctx, "s1", "")
	if !started || err != nil {
		t.Fatalf("unexpected result started=%v err=%v", started, err)
	}
	started, err = svc.SynthesizeSection(ctx, "s2", "")
	if !started || err == nil {
		t.Fatalf("expected failure for s2")
	}

	sections := svc.View(ctx).Sections
	if sections[0].AudioURL != "http://cdn/first.wav" || sections[0].Error != nil {
		t.Fatalf("unexpected s1 %+v", sections[0])
	}
	if sections[1].HasAudio() || sections[1].ErrorMessage() != "voice unavailable" {
		t.Fatalf("unexpected s2 %+v", sections[1])
	}

	stored := repo.stored(t)
	if stored.Sections[0].AudioURL != "http://cdn/first.wav" || stored.Sections[1].ErrorMessage() != "voice unavailable" {
		t.Fatalf("unexpected stored sections %+v", stored.Sections)
	}
}

func TestSynthesizeSection_UnknownID(t *testing.T) {
	repo := seededRepo(t, entities.WorkspaceSnapshot{
		Sections: []entities.ScriptSection{{ID: "s1", Title: "A", Body: "first"}},
	})
	pipeline := &fakePipeline{}
	svc, notifier := newTestService(t, repo, pipeline)
	before := notifier.count()
	saves := repo.saves

	started, err := svc.SynthesizeSection(context.Background(), "nope", "")
	if started || err != nil {
		t.Fatalf("unknown id must be a silent no-op: started=%v err=%v", started, err)
	}
	if len(pipeline.synthCalls) != 0 || notifier.count() != before || repo.saves != saves {
		t.Fatalf("unknown id must not call, publish or persist")
	}
}

func TestStartSectionSynthesis_Background(t *testing.T) {
	repo := seededRepo(t, entities.WorkspaceSnapshot{
		Sections: []entities.ScriptSection{{ID: "s1", Title: "A", Body: "first"}},
	})
	release := make(chan struct{})
	pipeline := &fakePipeline{
		synthesize: func(ctx context.Context, text string) (string, error) {
			<-release
			return "http://cdn/bg.wav", nil
		},
	}
	svc, _ := newTestService(t, repo, pipeline)
	ctx, cancel := context.WithCancel(context.Background())

	if !svc.StartSectionSynthesis(ctx, "s1", "") {
		t.Fatalf("expected synthesis to start")
	}
	cancel()
	if !svc.View(context.Background()).Sections[0].IsSynthesizing {
		t.Fatalf("section should be synthesizing before the job finishes")
	}

	close(release)
	waitCtx, waitCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer waitCancel()
	if err := svc.Wait(waitCtx); err != nil {
		t.Fatalf("Wait failed: %v", err)
	}

	section := svc.View(context.Background()).Sections[0]
	if section.IsSynthesizing || section.AudioURL != "http://cdn/bg.wav" {
		t.Fatalf("unexpected section %+v", section)
	}
}

func TestBatchSynthesize(t *testing.T) {
	repo := seededRepo(t, entities.WorkspaceSnapshot{
		Sections: []entities.ScriptSection{
			{ID: "a", Title: "A", Body: ""},
			{ID: "b", Title: "B", Body: "  "},
			{ID: "c", Title: "C", Body: "text"},
		},
	})
	pipeline := &fakePipeline{
		batch: func(ctx context.Context, texts []string) (string, error) {
			return "http://cdn/all.zip", nil
		},
	}
	svc, _ := newTestService(t, repo, pipeline)

	view, err := svc.BatchSynthesize(context.Background())
	if err != nil {
		t.Fatalf("BatchSynthesize failed: %v", err)
	}
	if !reflect.DeepEqual(pipeline.batchCalls, [][]string{{"text"}}) {
		t.Fatalf("unexpected batch calls %v", pipeline.batchCalls)
	}
	if view.BatchZipURL == nil || *view.BatchZipURL != "http://cdn/all.zip" {
		t.Fatalf("unexpected zip %v", view.BatchZipURL)
	}
	if stored := repo.stored(t); stored.BatchZipURL == nil {
		t.Fatalf("archive url not persisted")
	}
}

func TestBatchSynthesize_NothingToSynthesize(t *testing.T) {
	repo := seededRepo(t, entities.WorkspaceSnapshot{
		Sections: []entities.ScriptSection{{ID: "a", Title: "A", Body: " "}},
	})
	pipeline := &fakePipeline{}
	svc, _ := newTestService(t, repo, pipeline)

	view, err := svc.BatchSynthesize(context.Background())
	if !errors.Is(err, usecaseErrors.ErrNothingToSynthesize) {
		t.Fatalf("expected ErrNothingToSynthesize got %v", err)
	}
	if len(pipeline.batchCalls) != 0 {
		t.Fatalf("collaborator must not be called")
	}
	if view.BatchError == nil {
		t.Fatalf("expected batch error")
	}
}

func TestReset_DeletesSnapshot(t *testing.T) {
	name := "talk.mp4"
	repo := seededRepo(t, entities.WorkspaceSnapshot{
		Transcript:           "t",
		LastUploadedFileName: &name,
		Sections:             []entities.ScriptSection{{ID: "a", Title: "A", Body: "b"}},
	})
	svc, _ := newTestService(t, repo, &fakePipeline{})

	view := svc.Reset(context.Background())
	if !reflect.DeepEqual(view.WorkspaceSnapshot, entities.DefaultSnapshot()) {
		t.Fatalf("expected default view got %+v", view.WorkspaceSnapshot)
	}
	if repo.deletes != 1 || repo.data != nil {
		t.Fatalf("snapshot should be deleted")
	}

	reloaded, _ := newTestService(t, repo, &fakePipeline{})
	if got := reloaded.View(context.Background()); !reflect.DeepEqual(got.WorkspaceSnapshot, entities.DefaultSnapshot()) {
		t.Fatalf("reload after reset should be default got %+v", got.WorkspaceSnapshot)
	}
}

func TestReset_DuringSynthesisNotResurrected(t *testing.T) {
	repo := seededRepo(t, entities.WorkspaceSnapshot{
		Sections: []entities.ScriptSection{{ID: "s1", Title: "A", Body: "first"}},
	})
	release := make(chan struct{})
	pipeline := &fakePipeline{
		synthesize: func(ctx context.Context, text string) (string, error) {
			<-release
			return "http://cdn/late.wav", nil
		},
	}
	svc, _ := newTestService(t, repo, pipeline)

	svc.StartSectionSynthesis(context.Background(), "s1", "")
	svc.Reset(context.Background())
	close(release)
	if err := svc.Wait(context.Background()); err != nil {
		t.Fatalf("Wait failed: %v", err)
	}

	if sections := svc.View(context.Background()).Sections; len(sections) != 0 {
		t.Fatalf("late completion resurrected a section: %+v", sections)
	}
	if repo.data != nil {
		t.Fatalf("late completion rewrote the deleted snapshot")
	}
}

func TestExport(t *testing.T) {
	repo := seededRepo(t, entities.WorkspaceSnapshot{
		Sections: []entities.ScriptSection{
			{ID: "a", Title: "Intro", Body: " hello "},
			{ID: "b", Title: "Outro", Body: "bye"},
		},
	})
	svc, _ := newTestService(t, repo, &fakePipeline{})

	text, err := svc.Export(context.Background())
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	want := "# 第1章 Intro\nhello\n\n# 第2章 Outro\nbye"
	if text != want {
		t.Fatalf("unexpected export %q", text)
	}

	empty, _ := newTestService(t, &fakeRepo{}, &fakePipeline{})
	if _, err := empty.Export(context.Background()); !errors.Is(err, usecaseErrors.ErrNothingToExport) {
		t.Fatalf("expected ErrNothingToExport got %v", err)
	}
}

func TestPersist_SkipsOlderRevision(t *testing.T) {
	repo := &fakeRepo{}
	svc, _ := newTestService(t, repo, &fakePipeline{})
	ctx := context.Background()

	svc.state.ReplaceAll([]entities.ParsedSection{{Title: "A", Body: "new"}})
	svc.persist(ctx)
	saves := repo.saves

	svc.persist(ctx)
	if repo.saves != saves {
		t.Fatalf("unchanged revision must not be rewritten")
	}
	if stored := repo.stored(t); len(stored.Sections) != 1 || stored.Sections[0].Body != "new" {
		t.Fatalf("unexpected stored snapshot %+v", stored)
	}
}
