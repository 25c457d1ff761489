// Package rag answers natural-language questions from the vector index.
package rag

import (
	"context"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"

	"paper-rag/internal/domain"
)

// promptTemplate is the fixed instruction template. The model must answer
// only from the supplied context, list its sources, and admit not knowing
// instead of fabricating.
const promptTemplate = `You are an assistant for question-answering tasks regarding trending research (the context). Use the following pieces of context to answer the question at the end.
Provide sources as a list. If you don't know the answer, just say that you don't know, don't try to make up an answer.

%CONTEXT%

Question: %QUESTION%

Helpful Answer:`

// CannotAnswer is returned when retrieval yields nothing to ground an
// answer on, or when generation fails.
const CannotAnswer = "I don't know. There are no indexed papers that cover this question."

// Responder answers questions by retrieving the most similar indexed
// windows and conditioning the generative model on them. It holds the
// index behind an atomic handle: rebuilds produce a fresh store that is
// swapped in wholesale, so concurrent questions never observe a
// half-built index.
type Responder struct {
	index    atomic.Pointer[indexHandle]
	embedder domain.Embedder
	gen      domain.Generator
	topK     int
	logger   *zap.Logger
}

type indexHandle struct {
	store domain.VectorStore
}

// NewResponder creates a responder using the same embedder the index was
// built with.
func NewResponder(embedder domain.Embedder, gen domain.Generator, topK int, logger *zap.Logger) *Responder {
	if topK <= 0 {
		topK = 10
	}
	return &Responder{embedder: embedder, gen: gen, topK: topK, logger: logger}
}

// SetIndex atomically swaps the index the responder reads from.
func (r *Responder) SetIndex(store domain.VectorStore) {
	r.index.Store(&indexHandle{store: store})
}

// Answer embeds the question, retrieves the top-k chunks, renders the
// instruction template and invokes the generative model once. Failures
// and an empty index both produce the cannot-answer message rather than
// a raw error.
func (r *Responder) Answer(ctx context.Context, question string) (string, error) {
	h := r.index.Load()
	if h == nil || h.store.Count() == 0 {
		return CannotAnswer, nil
	}
	vec, err := r.embedder.Embed(ctx, question)
	if err != nil {
		r.logger.Error("question embedding failed", zap.Error(err))
		return CannotAnswer, nil
	}
	results, err := h.store.Search(vec, r.topK)
	if err != nil {
		r.logger.Error("retrieval failed", zap.Error(err))
		return CannotAnswer, nil
	}
	if len(results) == 0 {
		return CannotAnswer, nil
	}
	prompt := renderPrompt(formatContext(results), question)
	answer, err := r.gen.Generate(ctx, prompt)
	if err != nil {
		r.logger.Error("generation failed", zap.Error(err))
		return CannotAnswer, nil
	}
	return answer, nil
}

// formatContext concatenates retrieved chunk texts separated by a blank
// line, preserving retrieval order.
func formatContext(results []domain.SearchResult) string {
	texts := make([]string, len(results))
	for i, res := range results {
		texts[i] = res.Chunk.Text
	}
	return strings.Join(texts, "\n\n")
}

func renderPrompt(contextText, question string) string {
	out := strings.Replace(promptTemplate, "%CONTEXT%", contextText, 1)
	return strings.Replace(out, "%QUESTION%", question, 1)
}
