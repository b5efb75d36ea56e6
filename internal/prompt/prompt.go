// Package prompt renders the prompts sent to the generative model for note
// revision and multi-note synthesis.
//
// Rendering is pure: the same input always yields byte-identical output.
// Callers are expected to validate requests first; the errors returned here
// guard the contract rather than drive normal control flow.
package prompt

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidMode        = errors.New("invalid mode")
	ErrMissingInstruction = errors.New("custom mode requires an instruction")
	ErrUnknownLanguage    = errors.New("unknown prompt language")
)

type RevisionMode string

const (
	RevisionLight  RevisionMode = "light"
	RevisionDeep   RevisionMode = "deep"
	RevisionCustom RevisionMode = "custom"
)

type SynthesisMode string

const (
	SynthesisCoherent SynthesisMode = "coherent_text"
	SynthesisSummary  SynthesisMode = "summary"
	SynthesisCustom   SynthesisMode = "custom"
)

// RevisionModes lists the accepted revision modes in display order.
var RevisionModes = []RevisionMode{RevisionLight, RevisionDeep, RevisionCustom}

// SynthesisModes lists the accepted synthesis modes in display order.
var SynthesisModes = []SynthesisMode{SynthesisCoherent, SynthesisSummary, SynthesisCustom}

func (m RevisionMode) Valid() bool {
	for _, v := range RevisionModes {
		if m == v {
			return true
		}
	}
	return false
}

func (m SynthesisMode) Valid() bool {
	for _, v := range SynthesisModes {
		if m == v {
			return true
		}
	}
	return false
}

// Document is one note taking part in a synthesis.
type Document struct {
	Title   string
	Content string
}

// Builder renders prompts from a fixed set of templates.
type Builder struct {
	t *Templates
}

// New returns a Builder for the given language ("en" or "pl").
func New(language string) (*Builder, error) {
	t, ok := templatesByLanguage[strings.ToLower(strings.TrimSpace(language))]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownLanguage, language)
	}
	return &Builder{t: t}, nil
}

// NewWithTemplates returns a Builder over custom templates.
func NewWithTemplates(t *Templates) *Builder {
	return &Builder{t: t}
}

// Revision renders the prompt for a single-note revision.
func (b *Builder) Revision(content string, mode RevisionMode, instruction string) (string, error) {
	tmpl, ok := b.t.Revision[mode]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidMode, mode)
	}
	if mode == RevisionCustom && strings.TrimSpace(instruction) == "" {
		return "", ErrMissingInstruction
	}
	return tmpl(instruction) + content, nil
}

// Synthesis renders the prompt combining several notes. Documents keep their
// input order.
func (b *Builder) Synthesis(docs []Document, mode SynthesisMode, instruction string) (string, error) {
	tmpl, ok := b.t.Synthesis[mode]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidMode, mode)
	}
	if mode == SynthesisCustom && strings.TrimSpace(instruction) == "" {
		return "", ErrMissingInstruction
	}
	return tmpl(instruction) + b.formatDocuments(docs), nil
}

func (b *Builder) formatDocuments(docs []Document) string {
	blocks := make([]string, len(docs))
	for i, d := range docs {
		var sb strings.Builder
		sb.WriteString(fmt.Sprintf(b.t.DocumentHeader, i+1))
		if strings.TrimSpace(d.Title) != "" {
			sb.WriteString(fmt.Sprintf(b.t.TitleLine, d.Title))
		}
		sb.WriteString(b.t.ContentLabel)
		sb.WriteString(d.Content)
		sb.WriteString("\n")
		blocks[i] = sb.String()
	}
	return strings.Join(blocks, "\n\n")
}

var defaultBuilder = &Builder{t: English}

// BuildRevisionPrompt renders a revision prompt with the English templates.
func BuildRevisionPrompt(content string, mode RevisionMode, instruction string) (string, error) {
	return defaultBuilder.Revision(content, mode, instruction)
}

// BuildSynthesisPrompt renders a synthesis prompt with the English templates.
func BuildSynthesisPrompt(docs []Document, mode SynthesisMode, instruction string) (string, error) {
	return defaultBuilder.Synthesis(docs, mode, instruction)
}
