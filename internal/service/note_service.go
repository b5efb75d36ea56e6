package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Mikele-Kochas/SmartNotebook/internal/model"
	"github.com/Mikele-Kochas/SmartNotebook/internal/prompt"
	"github.com/Mikele-Kochas/SmartNotebook/pkg/logger"
	"github.com/Mikele-Kochas/SmartNotebook/pkg/xerr"
)

// MinSynthesisNotes is the smallest number of notes accepted for synthesis.
const MinSynthesisNotes = 2

// NoteService validates note requests, renders their prompt and dispatches
// it to the generator. Every transport (HTTP, FaaS, MCP) goes through it.
type NoteService struct {
	builder   *prompt.Builder
	generator Generator
}

func NewNoteService(builder *prompt.Builder, generator Generator) *NoteService {
	return &NoteService{
		builder:   builder,
		generator: generator,
	}
}

// Revise returns the revised text of a single note.
func (s *NoteService) Revise(ctx context.Context, req model.ReviseRequest) (string, error) {
	mode, instruction, err := validateRevise(req)
	if err != nil {
		return "", err
	}

	text, err := s.builder.Revision(req.Content, mode, instruction)
	if err != nil {
		return "", promptError(err)
	}

	logger.WithFields(logger.Fields{
		"operation":  "revise",
		"mode":       mode,
		"prompt_len": len(text),
	}).Info("dispatching generation")

	return s.generator.Generate(ctx, text)
}

// Synthesize returns one text combining all notes in the given order.
func (s *NoteService) Synthesize(ctx context.Context, req model.SynthesizeRequest) (string, error) {
	docs, mode, instruction, err := validateSynthesize(req)
	if err != nil {
		return "", err
	}

	text, err := s.builder.Synthesis(docs, mode, instruction)
	if err != nil {
		return "", promptError(err)
	}

	logger.WithFields(logger.Fields{
		"operation":  "synthesize",
		"mode":       mode,
		"notes":      len(docs),
		"prompt_len": len(text),
	}).Info("dispatching generation")

	return s.generator.Generate(ctx, text)
}

func validateRevise(req model.ReviseRequest) (prompt.RevisionMode, string, error) {
	if req.Content == "" {
		return "", "", xerr.Missing("content")
	}
	if req.Mode == "" {
		return "", "", xerr.Missing("mode")
	}

	mode := prompt.RevisionMode(req.Mode)
	if !mode.Valid() {
		return "", "", xerr.Newf(xerr.InvalidMode,
			"invalid mode %q, expected one of: light, deep, custom", req.Mode)
	}

	instruction := strings.TrimSpace(req.Prompt)
	if mode == prompt.RevisionCustom && instruction == "" {
		return "", "", xerr.New(xerr.MissingInstruction, "missing 'prompt' for custom mode")
	}
	return mode, instruction, nil
}

func validateSynthesize(req model.SynthesizeRequest) ([]prompt.Document, prompt.SynthesisMode, string, error) {
	if len(req.Notes) < MinSynthesisNotes {
		return nil, "", "", xerr.Newf(xerr.InsufficientDocuments,
			"synthesis requires at least %d notes, got %d", MinSynthesisNotes, len(req.Notes))
	}
	if req.Mode == "" {
		return nil, "", "", xerr.Missing("mode")
	}

	mode := prompt.SynthesisMode(req.Mode)
	if !mode.Valid() {
		return nil, "", "", xerr.Newf(xerr.InvalidMode,
			"invalid mode %q, expected one of: coherent_text, summary, custom", req.Mode)
	}

	instruction := strings.TrimSpace(req.Prompt)
	if mode == prompt.SynthesisCustom && instruction == "" {
		return nil, "", "", xerr.New(xerr.MissingInstruction, "missing 'prompt' for custom mode")
	}

	docs := make([]prompt.Document, 0, len(req.Notes))
	for i, n := range req.Notes {
		content, ok := n.Text()
		if !ok {
			return nil, "", "", &xerr.Error{
				Kind:    xerr.InvalidDocument,
				Message: fmt.Sprintf("note %d: 'content' must be a string", i+1),
				Field:   fmt.Sprintf("notes[%d].content", i),
			}
		}
		title, ok := n.TitleText()
		if !ok {
			return nil, "", "", &xerr.Error{
				Kind:    xerr.InvalidDocument,
				Message: fmt.Sprintf("note %d: 'title' must be a string", i+1),
				Field:   fmt.Sprintf("notes[%d].title", i),
			}
		}
		docs = append(docs, prompt.Document{Title: title, Content: content})
	}
	return docs, mode, instruction, nil
}

// Validation runs before rendering, so these only surface on a broken contract.
func promptError(err error) error {
	switch {
	case errors.Is(err, prompt.ErrInvalidMode):
		return xerr.Wrap(xerr.InvalidMode, err.Error(), err)
	case errors.Is(err, prompt.ErrMissingInstruction):
		return xerr.Wrap(xerr.MissingInstruction, err.Error(), err)
	}
	return xerr.Wrap(xerr.GenerationFailed, "failed to build prompt", err)
}
