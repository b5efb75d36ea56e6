package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/Mikele-Kochas/SmartNotebook/internal/middleware"
	"github.com/Mikele-Kochas/SmartNotebook/internal/model"
	"github.com/Mikele-Kochas/SmartNotebook/pkg/logger"
	"github.com/Mikele-Kochas/SmartNotebook/pkg/xerr"

	"github.com/gin-gonic/gin"
)

// NoteService is the subset of service.NoteService the handlers need.
type NoteService interface {
	Revise(ctx context.Context, req model.ReviseRequest) (string, error)
	Synthesize(ctx context.Context, req model.SynthesizeRequest) (string, error)
}

type NoteHandler struct {
	noteService NoteService
}

func NewNoteHandler(noteService NoteService) *NoteHandler {
	return &NoteHandler{
		noteService: noteService,
	}
}

// Revise handles POST /revise.
func (h *NoteHandler) Revise(c *gin.Context) {
	var req model.ReviseRequest
	if err := bindJSON(c, &req); err != nil {
		h.fail(c, "revise", "failed to revise note", err)
		return
	}

	revised, err := h.noteService.Revise(c.Request.Context(), req)
	if err != nil {
		h.fail(c, "revise", "failed to revise note", err)
		return
	}

	c.JSON(http.StatusOK, model.ReviseResponse{RevisedContent: revised})
}

// Synthesize handles POST /synthesize.
func (h *NoteHandler) Synthesize(c *gin.Context) {
	var req model.SynthesizeRequest
	if err := bindJSON(c, &req); err != nil {
		h.fail(c, "synthesize", "failed to synthesize notes", err)
		return
	}

	synthesized, err := h.noteService.Synthesize(c.Request.Context(), req)
	if err != nil {
		h.fail(c, "synthesize", "failed to synthesize notes", err)
		return
	}

	c.JSON(http.StatusOK, model.SynthesizeResponse{SynthesizedContent: synthesized})
}

// MethodNotAllowed answers requests whose path exists under another method.
func MethodNotAllowed(c *gin.Context) {
	err := xerr.Newf(xerr.MethodNotAllowed, "method %s not allowed", c.Request.Method)
	c.JSON(http.StatusMethodNotAllowed, model.ErrorResponse{
		Error: err.Message,
		Kind:  string(err.Kind),
	})
}

func bindJSON(c *gin.Context, obj interface{}) error {
	if c.ContentType() != gin.MIMEJSON {
		return xerr.New(xerr.MalformedRequest, "Content-Type must be application/json")
	}
	if err := c.ShouldBindJSON(obj); err != nil {
		return xerr.Wrap(xerr.MalformedRequest, "request body is not valid JSON", err)
	}
	return nil
}

func (h *NoteHandler) fail(c *gin.Context, operation, summary string, err error) {
	kind := xerr.KindOf(err)
	status := xerr.HTTPStatus(kind)

	message := err.Error()
	if e, ok := xerr.As(err); ok {
		message = e.Message
	}

	fields := logger.Fields{
		"request_id": middleware.GetRequestID(c),
		"operation":  operation,
		"kind":       kind,
	}
	_ = c.Error(err)

	if xerr.IsValidation(kind) {
		logger.WithFields(fields).Warnf("invalid request: %s", message)
		c.JSON(status, model.ErrorResponse{Error: message, Kind: string(kind)})
		return
	}

	// the provider's raw error stays in the logs
	if cause := errors.Unwrap(err); cause != nil {
		fields["cause"] = cause.Error()
	}
	logger.WithFields(fields).Errorf("%s: %s", summary, message)
	c.JSON(status, model.ErrorResponse{
		Error:   summary,
		Details: message,
		Kind:    string(kind),
	})
}
