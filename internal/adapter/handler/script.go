package handler

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/script-workspace/errors"
	dto "github.com/johnquangdev/script-workspace/internal/adapter/dto/workspace"
	"github.com/johnquangdev/script-workspace/internal/adapter/presenter"
	"github.com/johnquangdev/script-workspace/internal/usecase/script"
)

// Script exposes the stateless script tools
type Script struct {
	logger *zap.Logger
}

// NewScriptHandler creates a new script handler
func NewScriptHandler(logger *zap.Logger) *Script {
	return &Script{logger: logger}
}

// Parse splits markdown into sections without touching the workspace
// @Summary      Parse script
// @Description  Splits heading-delimited markdown into titled sections. Lines before the first heading and empty sections are dropped.
// @Tags         Script
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      dto.ParseScriptRequest  true  "Markdown to parse"
// @Success      200      {object}  dto.ParseScriptResponse
// @Failure      400      {object}  map[string]interface{}  "Invalid payload"
// @Router       /script/parse [post]
func (h *Script) Parse(c echo.Context) error {
	var req dto.ParseScriptRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument(err.Error()))
	}

	parsed := script.ParseScriptMarkdown(req.Markdown)
	return HandleSuccess(h.logger, c, presenter.ToParseScriptResponse(parsed))
}
