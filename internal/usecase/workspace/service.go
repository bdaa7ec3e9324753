package workspace

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/johnquangdev/script-workspace/internal/domain/entities"
	"github.com/johnquangdev/script-workspace/internal/domain/repositories"
	usecaseErrors "github.com/johnquangdev/script-workspace/internal/usecase/errors"
	"github.com/johnquangdev/script-workspace/internal/usecase/script"
	"github.com/johnquangdev/script-workspace/pkg/ai"
	"github.com/johnquangdev/script-workspace/pkg/jobcontext"
)

const persistTimeout = 10 * time.Second

// Service drives the workspace: it runs the remote operations, applies
// their results to the State, persists the snapshot and notifies watchers.
type Service struct {
	state    *State
	repo     repositories.SnapshotRepository
	pipeline Pipeline
	notifier Notifier
	logger   *zap.Logger

	jobTimeout time.Duration
	jobs       sync.WaitGroup

	saveMu    sync.Mutex
	lastSaved uint64
}

// NewService constructs a workspace service starting from the default
// snapshot. Call Load to hydrate it from the repository.
func NewService(repo repositories.SnapshotRepository, pipeline Pipeline, notifier Notifier, jobTimeout time.Duration, logger *zap.Logger) *Service {
	return &Service{
		state:      NewState(entities.DefaultSnapshot()),
		repo:       repo,
		pipeline:   pipeline,
		notifier:   notifier,
		logger:     logger,
		jobTimeout: jobTimeout,
	}
}

// Load reads the stored snapshot once. Missing, unreadable or malformed
// data yields the default workspace; Load never fails.
func (s *Service) Load(ctx context.Context) entities.WorkspaceView {
	raw, err := s.repo.Load(ctx)
	switch {
	case errors.Is(err, repositories.ErrSnapshotNotFound):
		raw = nil
	case err != nil:
		if s.logger != nil {
			s.logger.Warn("failed to read workspace snapshot, starting empty", zap.Error(err))
		}
		raw = nil
	}

	snapshot := entities.DecodeSnapshot(raw)
	s.state.Restore(snapshot)

	if s.logger != nil {
		s.logger.Info("workspace loaded",
			zap.Int("sections", len(snapshot.Sections)),
			zap.Bool("has_transcript", snapshot.Transcript != ""),
		)
	}
	return s.state.View()
}

// View returns the current workspace view.
func (s *Service) View(ctx context.Context) entities.WorkspaceView {
	return s.state.View()
}

// Upload transcribes media and stores the transcript and audio URL.
func (s *Service) Upload(ctx context.Context, media ai.Media) (entities.WorkspaceView, error) {
	token, err := s.state.BeginUpload(media.Name)
	if err != nil {
		return s.state.View(), err
	}
	s.commit(ctx)

	if s.logger != nil {
		s.logger.Info("transcription started",
			zap.String("file_name", media.Name),
			zap.String("size", humanize.Bytes(uint64(max(media.Size, 0)))),
		)
	}

	progress := func(percent *float64) {
		if s.state.ReportProgress(token, percent) {
			s.publish()
		}
	}

	result, err := s.pipeline.Transcribe(ctx, media, progress)
	if !s.state.CompleteUpload(token, result.Transcript, result.AudioURL, err) {
		s.discarded("upload")
		return s.state.View(), superseded(err)
	}
	s.commit(ctx)

	if err != nil {
		if s.logger != nil {
			s.logger.Error("transcription failed", zap.String("file_name", media.Name), zap.Error(err))
		}
		return s.state.View(), err
	}
	if s.logger != nil {
		s.logger.Info("transcription completed",
			zap.String("file_name", media.Name),
			zap.Int("transcript_chars", len([]rune(result.Transcript))),
		)
	}
	return s.state.View(), nil
}

// Generate asks the script generator for a script based on the transcript
// and replaces all sections with the parsed result.
func (s *Service) Generate(ctx context.Context) (entities.WorkspaceView, error) {
	token, transcript, err := s.state.BeginGenerate()
	if err != nil {
		if !errors.Is(err, usecaseErrors.ErrAlreadyRunning) {
			s.commit(ctx)
		}
		return s.state.View(), err
	}
	s.commit(ctx)

	markdown, err := s.pipeline.GenerateScript(ctx, transcript)
	var parsed []entities.ParsedSection
	if err == nil {
		parsed = script.ParseScriptMarkdown(markdown)
	}

	applied, err := s.state.CompleteGenerate(token, parsed, err)
	if !applied {
		s.discarded("generate")
		return s.state.View(), superseded(err)
	}
	s.commit(ctx)

	if err != nil {
		if s.logger != nil {
			s.logger.Error("script generation failed", zap.Error(err))
		}
		return s.state.View(), err
	}
	if s.logger != nil {
		s.logger.Info("script generated", zap.Int("sections", len(parsed)))
	}
	return s.state.View(), nil
}

// SynthesizeSection synthesizes one section and waits for the result.
// started is false when no section has that id.
func (s *Service) SynthesizeSection(ctx context.Context, id, text string) (started bool, err error) {
	ticket, ok := s.state.BeginSynthesis(id, text)
	if !ok {
		s.unknownSection(id)
		return false, nil
	}
	s.commit(ctx)

	return true, s.runSynthesis(ctx, ticket)
}

// StartSectionSynthesis marks the section as synthesizing and completes the
// synthesis in a background job bounded by the job timeout.
func (s *Service) StartSectionSynthesis(ctx context.Context, id, text string) bool {
	ticket, ok := s.state.BeginSynthesis(id, text)
	if !ok {
		s.unknownSection(id)
		return false
	}
	s.commit(ctx)

	s.jobs.Add(1)
	go func() {
		defer s.jobs.Done()

		jobCtx, cancel := jobcontext.JobBegin(ctx, uuid.New(), "section_synthesis", s.jobTimeout)
		defer cancel()

		err := jobcontext.Run(jobCtx, func(jobCtx context.Context) error {
			return s.runSynthesis(jobCtx, ticket)
		})
		if err != nil && s.logger != nil {
			meta := jobcontext.GetJobMetadata(jobCtx)
			s.logger.Warn("section synthesis job failed",
				zap.String("job_id", meta.JobID.String()),
				zap.String("section_id", ticket.SectionID),
				zap.Duration("elapsed", time.Since(meta.StartTime)),
				zap.Error(err),
			)
		}
	}()
	return true
}

func (s *Service) runSynthesis(ctx context.Context, ticket SynthesisTicket) error {
	var (
		audioURL string
		err      error
	)
	if ticket.Text == "" {
		err = usecaseErrors.ErrNothingToSynthesize
	} else {
		audioURL, err = s.pipeline.Synthesize(ctx, ticket.Text)
	}

	if !s.state.CompleteSynthesis(ticket.SectionID, ticket.Attempt, audioURL, err) {
		s.discarded("section_synthesis", zap.String("section_id", ticket.SectionID))
		return err
	}
	s.commit(ctx)

	if s.logger != nil {
		if err != nil {
			s.logger.Error("section synthesis failed", zap.String("section_id", ticket.SectionID), zap.Error(err))
		} else {
			s.logger.Info("section synthesized", zap.String("section_id", ticket.SectionID))
		}
	}
	return err
}

// BatchSynthesize sends every non-empty section body in one request and
// stores the archive URL. Per-section results are not touched.
func (s *Service) BatchSynthesize(ctx context.Context) (entities.WorkspaceView, error) {
	ticket, err := s.state.BeginBatch()
	if err != nil {
		if !errors.Is(err, usecaseErrors.ErrAlreadyRunning) {
			s.commit(ctx)
		}
		return s.state.View(), err
	}
	s.commit(ctx)

	zipURL, err := s.pipeline.SynthesizeBatch(ctx, ticket.Texts)
	if !s.state.CompleteBatch(ticket.Token, zipURL, err) {
		s.discarded("batch_synthesis")
		return s.state.View(), superseded(err)
	}
	s.commit(ctx)

	if s.logger != nil {
		if err != nil {
			s.logger.Error("batch synthesis failed", zap.Int("texts", len(ticket.Texts)), zap.Error(err))
		} else {
			s.logger.Info("batch synthesized", zap.Int("texts", len(ticket.Texts)))
		}
	}
	return s.state.View(), err
}

// Export renders the sections as a plain-text script.
func (s *Service) Export(ctx context.Context) (string, error) {
	text, err := s.state.Export()
	if err != nil {
		s.publish()
		return "", err
	}
	return text, nil
}

// Reset clears the workspace and deletes the stored snapshot.
func (s *Service) Reset(ctx context.Context) entities.WorkspaceView {
	s.state.Reset()
	s.commit(ctx)
	if s.logger != nil {
		s.logger.Info("workspace reset")
	}
	return s.state.View()
}

// Wait blocks until background synthesis jobs finish or ctx is done.
func (s *Service) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.jobs.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for synthesis jobs: %w", ctx.Err())
	}
}

// commit publishes the view and persists the snapshot.
func (s *Service) commit(ctx context.Context) {
	s.publish()
	s.persist(ctx)
}

func (s *Service) publish() {
	if s.notifier != nil {
		s.notifier.Publish(s.state.View())
	}
}

// persist writes the latest snapshot. Writers capture the snapshot before
// taking saveMu, so a write older than the last saved revision is skipped.
func (s *Service) persist(ctx context.Context) {
	p := s.state.Persisted()

	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	if p.Revision <= s.lastSaved {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
	defer cancel()

	var err error
	if p.Deleted {
		err = s.repo.Delete(ctx)
	} else {
		var payload []byte
		payload, err = p.Snapshot.Encode()
		if err == nil {
			err = s.repo.Save(ctx, payload)
		}
	}
	if err != nil {
		if s.logger != nil {
			s.logger.Error("failed to persist workspace snapshot",
				zap.Uint64("revision", p.Revision),
				zap.Bool("delete", p.Deleted),
				zap.Error(err),
			)
		}
		return
	}
	s.lastSaved = p.Revision
}

func (s *Service) unknownSection(id string) {
	if s.logger != nil {
		s.logger.Debug("synthesis requested for unknown section", zap.String("section_id", id))
	}
}

// superseded reports a result that was dropped because the workspace moved
// on. Remote failures are returned as they are.
func superseded(err error) error {
	if err != nil {
		return err
	}
	return usecaseErrors.ErrSuperseded
}

func (s *Service) discarded(op string, fields ...zap.Field) {
	if s.logger != nil {
		s.logger.Debug("discarding stale completion", append(fields, zap.String("operation", op))...)
	}
}
