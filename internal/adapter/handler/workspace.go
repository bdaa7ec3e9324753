package handler

import (
	"fmt"
	"net/http"

	"github.com/dustin/go-humanize"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/script-workspace/errors"
	dto "github.com/johnquangdev/script-workspace/internal/adapter/dto/workspace"
	"github.com/johnquangdev/script-workspace/internal/adapter/presenter"
	"github.com/johnquangdev/script-workspace/internal/domain/entities"
	"github.com/johnquangdev/script-workspace/internal/usecase/script"
	"github.com/johnquangdev/script-workspace/internal/usecase/workspace"
	"github.com/johnquangdev/script-workspace/pkg/ai"
)

// EventStream serves the workspace event stream to one client
type EventStream interface {
	Serve(w http.ResponseWriter, r *http.Request, current entities.WorkspaceView) error
}

// Workspace handles the workspace endpoints
type Workspace struct {
	svc            *workspace.Service
	events         EventStream
	maxUploadBytes int64
	logger         *zap.Logger
}

// NewWorkspaceHandler creates a new workspace handler
func NewWorkspaceHandler(svc *workspace.Service, events EventStream, maxUploadBytes int64, logger *zap.Logger) *Workspace {
	return &Workspace{
		svc:            svc,
		events:         events,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// Get returns the current workspace
// @Summary      Get workspace
// @Description  Returns the persisted workspace together with in-flight activity and the last error of each operation
// @Tags         Workspace
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dto.WorkspaceResponse
// @Failure      401  {object}  map[string]interface{}  "Missing or invalid token"
// @Router       /workspace [get]
func (h *Workspace) Get(c echo.Context) error {
	view := h.svc.View(c.Request().Context())
	return HandleSuccess(h.logger, c, presenter.ToWorkspaceResponse(view))
}

// Reset clears the workspace
// @Summary      Reset workspace
// @Description  Clears transcript, sections and archive and deletes the stored snapshot. In-flight results are discarded.
// @Tags         Workspace
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dto.WorkspaceResponse
// @Router       /workspace [delete]
func (h *Workspace) Reset(c echo.Context) error {
	view := h.svc.Reset(c.Request().Context())
	return HandleSuccess(h.logger, c, presenter.ToWorkspaceResponse(view))
}

// Upload transcribes an uploaded media file
// @Summary      Upload and transcribe
// @Description  Uploads a video or audio file, transcribes it and stores the transcript. Existing sections and the batch archive are cleared.
// @Tags         Workspace
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        file  formData  file  true  "Media file"
// @Success      200   {object}  dto.WorkspaceResponse
// @Failure      400   {object}  map[string]interface{}  "Missing or oversized file"
// @Failure      409   {object}  map[string]interface{}  "Transcription already running or superseded by a reset"
// @Failure      502   {object}  map[string]interface{}  "Transcription failed"
// @Router       /workspace/upload [post]
func (h *Workspace) Upload(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("file is required"))
	}
	if h.maxUploadBytes > 0 && fh.Size > h.maxUploadBytes {
		return HandleError(h.logger, c, errors.ErrInvalidArgument(
			fmt.Sprintf("file is %s, the limit is %s", humanize.Bytes(uint64(fh.Size)), humanize.Bytes(uint64(h.maxUploadBytes))),
		))
	}

	f, err := fh.Open()
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInternal(err))
	}
	defer f.Close()

	media := ai.Media{
		Name:        fh.Filename,
		ContentType: fh.Header.Get(echo.HeaderContentType),
		Size:        fh.Size,
		Reader:      f,
	}
	view, err := h.svc.Upload(c.Request().Context(), media)
	if err != nil {
		return HandleError(h.logger, c, toAppError("upload", "transcription", err))
	}
	return HandleSuccess(h.logger, c, presenter.ToWorkspaceResponse(view))
}

// Generate creates a script from the transcript
// @Summary      Generate script
// @Description  Generates a heading-delimited script from the transcript and replaces all sections with freshly identified ones
// @Tags         Workspace
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dto.WorkspaceResponse
// @Failure      409  {object}  map[string]interface{}  "Generation already running or superseded by a reset"
// @Failure      422  {object}  map[string]interface{}  "No transcript or unparseable script"
// @Failure      502  {object}  map[string]interface{}  "Generator failed"
// @Router       /workspace/generate [post]
func (h *Workspace) Generate(c echo.Context) error {
	view, err := h.svc.Generate(c.Request().Context())
	if err != nil {
		return HandleError(h.logger, c, toAppError("generate", "script_generation", err))
	}
	return HandleSuccess(h.logger, c, presenter.ToWorkspaceResponse(view))
}

// SynthesizeSection synthesizes speech for one section
// @Summary      Synthesize section
// @Description  Marks the section as synthesizing and requests speech for it. An unknown id is ignored and reported as started=false.
// @Tags         Workspace
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                        true   "Section ID"
// @Param        request  body      dto.SynthesizeSectionRequest  false  "Override text and wait flag"
// @Success      200      {object}  dto.SynthesizeSectionResponse
// @Failure      400      {object}  map[string]interface{}  "Invalid payload"
// @Failure      502      {object}  map[string]interface{}  "Synthesis failed (wait=true only)"
// @Router       /workspace/sections/{id}/synthesize [post]
func (h *Workspace) SynthesizeSection(c echo.Context) error {
	var req dto.SynthesizeSectionRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument(err.Error()))
	}

	ctx := c.Request().Context()
	var started bool
	if req.Wait {
		var err error
		started, err = h.svc.SynthesizeSection(ctx, req.ID, req.Text)
		if err != nil {
			return HandleError(h.logger, c, toAppError("synthesize", "speech_synthesis", err))
		}
	} else {
		started = h.svc.StartSectionSynthesis(ctx, req.ID, req.Text)
	}

	resp := dto.SynthesizeSectionResponse{Started: started}
	if started {
		resp.Section = presenter.FindSection(h.svc.View(ctx), req.ID)
	}
	return HandleSuccess(h.logger, c, resp)
}

// BatchSynthesize synthesizes every non-empty section into one archive
// @Summary      Batch synthesize
// @Description  Sends every non-empty section body in one request and stores the resulting archive URL. Per-section results are not changed.
// @Tags         Workspace
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dto.WorkspaceResponse
// @Failure      409  {object}  map[string]interface{}  "Batch already running or superseded by a reset"
// @Failure      422  {object}  map[string]interface{}  "Nothing to synthesize"
// @Failure      502  {object}  map[string]interface{}  "Synthesis failed"
// @Router       /workspace/batch-synthesize [post]
func (h *Workspace) BatchSynthesize(c echo.Context) error {
	view, err := h.svc.BatchSynthesize(c.Request().Context())
	if err != nil {
		return HandleError(h.logger, c, toAppError("batch_synthesize", "speech_synthesis", err))
	}
	return HandleSuccess(h.logger, c, presenter.ToWorkspaceResponse(view))
}

// Export downloads the script as plain text
// @Summary      Export script
// @Description  Renders every section as "# 第N章 title" followed by its body, separated by blank lines
// @Tags         Workspace
// @Produce      plain
// @Security     BearerAuth
// @Success      200  {string}  string  "script.txt"
// @Failure      422  {object}  map[string]interface{}  "Nothing to export"
// @Router       /workspace/export [get]
func (h *Workspace) Export(c echo.Context) error {
	text, err := h.svc.Export(c.Request().Context())
	if err != nil {
		return HandleError(h.logger, c, toAppError("export", "", err))
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, script.ExportFileName))
	return c.Blob(http.StatusOK, echo.MIMETextPlainCharsetUTF8, []byte(text))
}

// Events streams workspace changes over a websocket
// @Summary      Workspace events
// @Description  Upgrades to a websocket. The current workspace is sent first, then every change as {"type":"workspace","data":{...}}.
// @Tags         Workspace
// @Security     BearerAuth
// @Param        access_token  query  string  false  "Bearer token for clients that cannot set headers"
// @Success      101
// @Router       /workspace/events [get]
func (h *Workspace) Events(c echo.Context) error {
	current := h.svc.View(c.Request().Context())
	if err := h.events.Serve(c.Response(), c.Request(), current); err != nil {
		// the upgrader already wrote the handshake failure
		if h.logger != nil {
			h.logger.Debug("event stream upgrade failed", zap.Error(err))
		}
	}
	return nil
}
