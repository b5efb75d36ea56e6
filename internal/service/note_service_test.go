package service

import (
	"context"
	"strings"
	"testing"

	"github.com/Mikele-Kochas/SmartNotebook/internal/model"
	"github.com/Mikele-Kochas/SmartNotebook/internal/prompt"
	"github.com/Mikele-Kochas/SmartNotebook/pkg/xerr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGenerator struct {
	output  string
	err     error
	calls   int
	prompts []string
}

func (g *stubGenerator) Generate(_ context.Context, p string) (string, error) {
	g.calls++
	g.prompts = append(g.prompts, p)
	if g.err != nil {
		return "", g.err
	}
	return g.output, nil
}

func newTestService(t *testing.T, gen Generator) *NoteService {
	t.Helper()
	b, err := prompt.New("en")
	require.NoError(t, err)
	return NewNoteService(b, gen)
}

func TestRevise_Light(t *testing.T) {
	gen := &stubGenerator{output: "The cat sat."}
	svc := newTestService(t, gen)

	out, err := svc.Revise(context.Background(), model.ReviseRequest{Content: "Teh cat sat.", Mode: "light"})
	require.NoError(t, err)
	assert.Equal(t, "The cat sat.", out)

	require.Equal(t, 1, gen.calls)
	assert.True(t, strings.HasSuffix(gen.prompts[0], "Text:\nTeh cat sat."))

	expected, err := prompt.BuildRevisionPrompt("Teh cat sat.", prompt.RevisionLight, "")
	require.NoError(t, err)
	assert.Equal(t, expected, gen.prompts[0])
}

func TestRevise_CustomTrimsInstruction(t *testing.T) {
	gen := &stubGenerator{output: "ok"}
	svc := newTestService(t, gen)

	_, err := svc.Revise(context.Background(), model.ReviseRequest{
		Content: "note",
		Mode:    "custom",
		Prompt:  "  Translate to French  ",
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(gen.prompts[0], "Translate to French"))
}

func TestRevise_Validation(t *testing.T) {
	tests := []struct {
		name  string
		req   model.ReviseRequest
		kind  xerr.Kind
		field string
	}{
		{"missing content", model.ReviseRequest{Mode: "light"}, xerr.MissingField, "content"},
		{"missing mode", model.ReviseRequest{Content: "x"}, xerr.MissingField, "mode"},
		{"unknown mode", model.ReviseRequest{Content: "x", Mode: "aggressive"}, xerr.InvalidMode, ""},
		{"custom without prompt", model.ReviseRequest{Content: "x", Mode: "custom"}, xerr.MissingInstruction, ""},
		{"custom blank prompt", model.ReviseRequest{Content: "x", Mode: "custom", Prompt: " \t\n"}, xerr.MissingInstruction, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &stubGenerator{output: "unused"}
			svc := newTestService(t, gen)

			_, err := svc.Revise(context.Background(), tt.req)
			require.Error(t, err)

			e, ok := xerr.As(err)
			require.True(t, ok)
			assert.Equal(t, tt.kind, e.Kind)
			assert.Equal(t, tt.field, e.Field)
			assert.Equal(t, 0, gen.calls)
		})
	}
}

func TestSynthesize_SummaryKeepsOrder(t *testing.T) {
	gen := &stubGenerator{output: "- alpha\n- beta"}
	svc := newTestService(t, gen)

	out, err := svc.Synthesize(context.Background(), model.SynthesizeRequest{
		Mode: "summary",
		Notes: []model.NoteInput{
			model.NewNoteInput(1, "", "alpha"),
			model.NewNoteInput(2, "", "beta"),
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "- alpha\n- beta", out)

	require.Equal(t, 1, gen.calls)
	p := gen.prompts[0]
	first := strings.Index(p, "--- Document 1 ---\nContent:\nalpha\n")
	second := strings.Index(p, "--- Document 2 ---\nContent:\nbeta\n")
	assert.GreaterOrEqual(t, first, 0)
	assert.Greater(t, second, first)
	assert.NotContains(t, p, "Title:")
}

func TestSynthesize_TitlesRendered(t *testing.T) {
	gen := &stubGenerator{output: "ok"}
	svc := newTestService(t, gen)

	_, err := svc.Synthesize(context.Background(), model.SynthesizeRequest{
		Mode: "coherent_text",
		Notes: []model.NoteInput{
			model.NewNoteInput(1, "Groceries", "milk"),
			model.NewNoteInput(2, "   ", "eggs"),
		},
	})
	require.NoError(t, err)
	assert.Contains(t, gen.prompts[0], "--- Document 1 ---\nTitle: Groceries\nContent:\nmilk\n")
	assert.Contains(t, gen.prompts[0], "--- Document 2 ---\nContent:\neggs\n")
}

func TestSynthesize_InsufficientDocumentsCheckedFirst(t *testing.T) {
	for _, mode := range []string{"", "summary", "coherent_text", "custom", "bogus"} {
		t.Run("mode="+mode, func(t *testing.T) {
			gen := &stubGenerator{}
			svc := newTestService(t, gen)

			_, err := svc.Synthesize(context.Background(), model.SynthesizeRequest{
				Mode:  mode,
				Notes: []model.NoteInput{model.NewNoteInput(1, "", "only one")},
			})
			assert.Equal(t, xerr.InsufficientDocuments, xerr.KindOf(err))
			assert.Equal(t, 0, gen.calls)
		})
	}
}

func TestSynthesize_Validation(t *testing.T) {
	two := []model.NoteInput{model.NewNoteInput(1, "", "a"), model.NewNoteInput(2, "", "b")}

	tests := []struct {
		name string
		req  model.SynthesizeRequest
		kind xerr.Kind
	}{
		{"no notes", model.SynthesizeRequest{Mode: "summary"}, xerr.InsufficientDocuments},
		{"missing mode", model.SynthesizeRequest{Notes: two}, xerr.MissingField},
		{"unknown mode", model.SynthesizeRequest{Notes: two, Mode: "poem"}, xerr.InvalidMode},
		{"custom without prompt", model.SynthesizeRequest{Notes: two, Mode: "custom"}, xerr.MissingInstruction},
		{"non-string content", model.SynthesizeRequest{
			Mode:  "summary",
			Notes: []model.NoteInput{model.NewNoteInput(1, "", "a"), {Content: []byte(`42`)}},
		}, xerr.InvalidDocument},
		{"missing content", model.SynthesizeRequest{
			Mode:  "summary",
			Notes: []model.NoteInput{model.NewNoteInput(1, "", "a"), {Title: []byte(`"t"`)}},
		}, xerr.InvalidDocument},
		{"non-string title", model.SynthesizeRequest{
			Mode:  "summary",
			Notes: []model.NoteInput{model.NewNoteInput(1, "", "a"), {Title: []byte(`5`), Content: []byte(`"b"`)}},
		}, xerr.InvalidDocument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &stubGenerator{}
			svc := newTestService(t, gen)

			_, err := svc.Synthesize(context.Background(), tt.req)
			assert.Equal(t, tt.kind, xerr.KindOf(err))
			assert.True(t, xerr.IsValidation(xerr.KindOf(err)))
			assert.Equal(t, 0, gen.calls)
		})
	}
}

func TestSynthesize_CustomInstruction(t *testing.T) {
	gen := &stubGenerator{output: "ok"}
	svc := newTestService(t, gen)

	_, err := svc.Synthesize(context.Background(), model.SynthesizeRequest{
		Mode:   "custom",
		Prompt: "Make a table",
		Notes:  []model.NoteInput{model.NewNoteInput(1, "", "a"), model.NewNoteInput(2, "", "b")},
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(gen.prompts[0], "Make a table"))
}

func TestGeneratorErrorPassesThrough(t *testing.T) {
	gen := &stubGenerator{err: xerr.New(xerr.GenerationBlocked, "response blocked due to: SAFETY")}
	svc := newTestService(t, gen)

	_, err := svc.Revise(context.Background(), model.ReviseRequest{Content: "x", Mode: "deep"})
	require.Error(t, err)
	assert.Equal(t, xerr.GenerationBlocked, xerr.KindOf(err))
	assert.Contains(t, err.Error(), "SAFETY")
}
