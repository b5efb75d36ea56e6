// Package functions exposes the note operations as function-as-a-service
// HTTP triggers. Each trigger shares one service built on first use.
package functions

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"sync"

	"github.com/Mikele-Kochas/SmartNotebook/internal/config"
	"github.com/Mikele-Kochas/SmartNotebook/internal/handler"
	"github.com/Mikele-Kochas/SmartNotebook/internal/model"
	"github.com/Mikele-Kochas/SmartNotebook/internal/prompt"
	"github.com/Mikele-Kochas/SmartNotebook/internal/service"
	"github.com/Mikele-Kochas/SmartNotebook/pkg/logger"
	"github.com/Mikele-Kochas/SmartNotebook/pkg/xerr"

	"github.com/gin-gonic/gin"
)

var (
	initOnce sync.Once
	initErr  error

	reviseEngine     http.Handler
	synthesizeEngine http.Handler
)

// ReviseNote is the HTTP trigger for note revision.
func ReviseNote(w http.ResponseWriter, r *http.Request) {
	if !ensureInit(w) {
		return
	}
	reviseEngine.ServeHTTP(w, r)
}

// SynthesizeNotes is the HTTP trigger for note synthesis.
func SynthesizeNotes(w http.ResponseWriter, r *http.Request) {
	if !ensureInit(w) {
		return
	}
	synthesizeEngine.ServeHTTP(w, r)
}

func ensureInit(w http.ResponseWriter) bool {
	initOnce.Do(func() {
		initErr = setup(context.Background())
	})
	if initErr != nil {
		writeJSONError(w, initErr)
		return false
	}
	return true
}

func setup(ctx context.Context) error {
	gin.SetMode(gin.ReleaseMode)

	cfg, err := config.Load(os.Getenv("NOTES_CONFIG"))
	if err != nil {
		return xerr.Wrap(xerr.ConfigurationMissing, "failed to load configuration", err)
	}
	if err := logger.Init(cfg.Log.Level, "json"); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		logger.Errorf("function configuration invalid: %v", err)
		return err
	}

	chatModel, err := model.NewChatModel(ctx, cfg)
	if err != nil {
		return xerr.Wrap(xerr.ConfigurationMissing, "failed to create chat model", err)
	}
	builder, err := prompt.New(cfg.Prompt.Language)
	if err != nil {
		return xerr.Wrap(xerr.ConfigurationMissing, err.Error(), err)
	}
	generator, err := service.NewChainGenerator(ctx, chatModel, cfg.Model.Timeout)
	if err != nil {
		return err
	}

	install(service.NewNoteService(builder, generator))
	return nil
}

func install(noteService handler.NoteService) {
	h := handler.NewNoteHandler(noteService)
	reviseEngine = handler.NewFunctionEngine(h.Revise)
	synthesizeEngine = handler.NewFunctionEngine(h.Synthesize)
}

func writeJSONError(w http.ResponseWriter, err error) {
	kind := xerr.KindOf(err)
	message := err.Error()
	if e, ok := xerr.As(err); ok {
		message = e.Message
	}

	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusInternalServerError)
	_ = json.NewEncoder(w).Encode(model.ErrorResponse{
		Error:   "service is not configured",
		Details: message,
		Kind:    string(kind),
	})
}
