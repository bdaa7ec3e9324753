package errors

import (
	"context"
	"errors"

	apperrors "github.com/johnquangdev/script-workspace/errors"
	"github.com/johnquangdev/script-workspace/pkg/ai"
)

// Validation errors
var (
	ErrTranscriptEmpty     = errors.New("transcript is empty")
	ErrScriptUnparseable   = errors.New("script could not be parsed")
	ErrNothingToSynthesize = errors.New("nothing to synthesize")
	ErrNothingToExport     = errors.New("nothing to export")
)

// ErrAlreadyRunning is returned when an upload, generation or batch is
// started while the previous one is still in flight.
var ErrAlreadyRunning = errors.New("operation already in progress")

// ErrSuperseded is returned when an operation finished after a reset or a
// newer run of the same operation, so its result was not applied.
var ErrSuperseded = errors.New("operation superseded")

// GenericMessage is shown for failures whose shape is not recognized.
const GenericMessage = "An unknown error occurred."

// TimeoutMessage is shown when a collaborator call ran out of time.
const TimeoutMessage = "The request timed out. Please try again."

var messages = []struct {
	err error
	msg string
}{
	{ErrTranscriptEmpty, "No transcript is available. Upload a video first."},
	{ErrScriptUnparseable, "Could not parse the generated script."},
	{ErrNothingToSynthesize, "There is no text to synthesize."},
	{ErrNothingToExport, "There is no script to download."},
	{ErrAlreadyRunning, "This operation is already running."},
	{ErrSuperseded, "The workspace changed before this operation finished."},
}

// UserMessage converts any failure into user-facing text. Remote failures
// keep their own message, validation failures map to fixed text and
// anything else collapses into GenericMessage.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var apiErr *ai.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}

	for _, m := range messages {
		if errors.Is(err, m.err) {
			return m.msg
		}
	}

	var appErr apperrors.AppError
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return TimeoutMessage
	}

	return GenericMessage
}
