package rag

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"paper-rag/internal/domain"
	"paper-rag/internal/vectorstore/memory"
)

type fakeEmbedder struct {
	vectors map[string][]float64
	err     error
}

func (f *fakeEmbedder) Name() string   { return "fake" }
func (f *fakeEmbedder) Dimension() int { return 2 }

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float64, error) {
	if f.err != nil {
		return nil, f.err
	}
	if v, ok := f.vectors[text]; ok {
		return v, nil
	}
	return []float64{1, 0}, nil
}

type fakeGenerator struct {
	prompts []string
	answer  string
	err     error
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	return f.answer, nil
}

func newTestIndex(t *testing.T) *memory.Store {
	t.Helper()
	s := memory.NewStore()
	require.NoError(t, s.Init("fake", 2))
	require.NoError(t, s.Upsert(
		[]domain.IndexedChunk{
			{SourceIdentifier: "a", Index: 0, Text: "transformers dominate"},
			{SourceIdentifier: "a", Index: 1, Text: "attention is enough"},
		},
		[][]float64{{1, 0}, {0.9, 0.1}},
	))
	return s
}

func TestAnswerNoIndex(t *testing.T) {
	gen := &fakeGenerator{answer: "should not be called"}
	r := NewResponder(&fakeEmbedder{}, gen, 10, zap.NewNop())

	answer, err := r.Answer(context.Background(), "anything?")
	require.NoError(t, err)
	assert.Equal(t, CannotAnswer, answer)
	assert.Empty(t, gen.prompts, "no generation without grounding context")
}

func TestAnswerEmptyIndex(t *testing.T) {
	s := memory.NewStore()
	require.NoError(t, s.Init("fake", 2))
	r := NewResponder(&fakeEmbedder{}, &fakeGenerator{answer: "x"}, 10, zap.NewNop())
	r.SetIndex(s)

	answer, err := r.Answer(context.Background(), "anything?")
	require.NoError(t, err)
	assert.Equal(t, CannotAnswer, answer)
}

func TestAnswerRendersPromptWithContext(t *testing.T) {
	gen := &fakeGenerator{answer: "They use attention."}
	r := NewResponder(&fakeEmbedder{}, gen, 10, zap.NewNop())
	r.SetIndex(newTestIndex(t))

	answer, err := r.Answer(context.Background(), "what do transformers use?")
	require.NoError(t, err)
	assert.Equal(t, "They use attention.", answer)

	require.Len(t, gen.prompts, 1)
	prompt := gen.prompts[0]
	assert.Contains(t, prompt, "transformers dominate\n\nattention is enough",
		"chunk texts joined by a blank line, retrieval order preserved")
	assert.Contains(t, prompt, "Question: what do transformers use?")
	assert.Contains(t, prompt, "Helpful Answer:")
	assert.NotContains(t, prompt, "%CONTEXT%")
	assert.NotContains(t, prompt, "%QUESTION%")
}

func TestAnswerDeterministic(t *testing.T) {
	gen := &fakeGenerator{answer: "same"}
	r := NewResponder(&fakeEmbedder{}, gen, 10, zap.NewNop())
	r.SetIndex(newTestIndex(t))

	_, err := r.Answer(context.Background(), "q")
	require.NoError(t, err)
	_, err = r.Answer(context.Background(), "q")
	require.NoError(t, err)
	require.Len(t, gen.prompts, 2)
	assert.Equal(t, gen.prompts[0], gen.prompts[1],
		"identical question against an unchanged index renders an identical prompt")
}

func TestAnswerEmbedFailure(t *testing.T) {
	r := NewResponder(&fakeEmbedder{err: errors.New("boom")}, &fakeGenerator{answer: "x"}, 10, zap.NewNop())
	r.SetIndex(newTestIndex(t))

	answer, err := r.Answer(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, CannotAnswer, answer)
}

func TestAnswerGenerateFailure(t *testing.T) {
	r := NewResponder(&fakeEmbedder{}, &fakeGenerator{err: errors.New("rate limited")}, 10, zap.NewNop())
	r.SetIndex(newTestIndex(t))

	answer, err := r.Answer(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, CannotAnswer, answer)
}

func TestSetIndexSwapsAtomically(t *testing.T) {
	gen := &fakeGenerator{answer: "ok"}
	r := NewResponder(&fakeEmbedder{}, gen, 10, zap.NewNop())
	r.SetIndex(newTestIndex(t))

	fresh := memory.NewStore()
	require.NoError(t, fresh.Init("fake", 2))
	require.NoError(t, fresh.Upsert(
		[]domain.IndexedChunk{{SourceIdentifier: "b", Index: 0, Text: "replacement corpus"}},
		[][]float64{{1, 0}},
	))
	r.SetIndex(fresh)

	_, err := r.Answer(context.Background(), "q")
	require.NoError(t, err)
	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], "replacement corpus")
	assert.False(t, strings.Contains(gen.prompts[0], "transformers dominate"))
}
