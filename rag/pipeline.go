package rag

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/alfredlabs/alfred/llm"
	"github.com/alfredlabs/alfred/memory"
)

// DefaultRetrieveTopK is the backend default for document retrieval; no
// stricter limit is enforced at the pipeline layer.
const DefaultRetrieveTopK = 4

// UngroundedFallback is returned when grading plus the web-search
// fallback leave no documents at all. The model is not called: with
// nothing to ground on, any generation would be fabricated.
const UngroundedFallback = "I could not find any relevant material to answer that question."

// Pipeline wires the retrieval stages together. Construct once and share;
// all state lives in the State passed through each call.
type Pipeline struct {
	llm      llm.Client
	index    memory.Index
	embedder memory.Embedder
	search   WebSearcher
	model    string
	topK     int
}

// Config configures a Pipeline.
type Config struct {
	LLM      llm.Client
	Index    memory.Index
	Embedder memory.Embedder
	Search   WebSearcher
	Model    string
	TopK     int
}

// New creates a Pipeline.
func New(cfg Config) *Pipeline {
	topK := cfg.TopK
	if topK <= 0 {
		topK = DefaultRetrieveTopK
	}
	return &Pipeline{
		llm:      cfg.LLM,
		index:    cfg.Index,
		embedder: cfg.Embedder,
		search:   cfg.Search,
		model:    cfg.Model,
		topK:     topK,
	}
}

// Run drives a question through the full pipeline and returns the final
// state.
func (p *Pipeline) Run(ctx context.Context, question string) (*State, error) {
	state := &State{Question: question}

	route, err := p.RouteQuestion(ctx, question)
	if err != nil {
		return nil, err
	}
	log.Printf("[RAG] Routed question to %s", route)

	switch route {
	case RouteEnd:
		return state, nil
	case RouteWebSearch:
		state.WebSearch = true
		p.WebSearch(ctx, state)
	case RouteVectorstore:
		if err := p.Retrieve(ctx, state); err != nil {
			return nil, err
		}
		if err := p.GradeDocuments(ctx, state); err != nil {
			return nil, err
		}
		if p.DecideToGenerate(state) == RouteWebSearch {
			p.WebSearch(ctx, state)
		}
	}

	if err := p.Generate(ctx, state); err != nil {
		return nil, err
	}
	if err := p.GradeGeneration(ctx, state); err != nil {
		return nil, err
	}
	return state, nil
}

// RouteQuestion classifies the question's data source. Unexpected
// classifier output routes to RouteEnd rather than failing.
func (p *Pipeline) RouteQuestion(ctx context.Context, question string) (Route, error) {
	resp, err := p.llm.Invoke(ctx, &llm.Request{
		Model:    p.model,
		System:   routerPrompt,
		Messages: llm.UserMessage(question),
	})
	if err != nil {
		return RouteEnd, fmt.Errorf("route question: %w", err)
	}

	switch strings.ToLower(strings.TrimSpace(resp.Content)) {
	case "websearch":
		return RouteWebSearch, nil
	case "vectorstore":
		return RouteVectorstore, nil
	default:
		log.Printf("[RAG] Unexpected routing label %q, ending pipeline", resp.Content)
		return RouteEnd, nil
	}
}

// Retrieve runs a similarity search over the ingested document index.
func (p *Pipeline) Retrieve(ctx context.Context, state *State) error {
	vector, err := p.embedder.Embed(ctx, state.Question)
	if err != nil {
		return fmt.Errorf("embed question: %w", err)
	}
	matches, err := p.index.Query(ctx, vector, nil, memory.NamespaceDocuments, p.topK)
	if err != nil {
		return fmt.Errorf("retrieve documents: %w", err)
	}

	for _, m := range matches {
		content, _ := m.Metadata[memory.PayloadKey].(string)
		source, _ := m.Metadata[memory.SourceKey].(string)
		state.Documents = append(state.Documents, Document{Content: content, Source: source})
	}
	log.Printf("[RAG] Retrieved %d documents", len(state.Documents))
	return nil
}

// GradeDocuments judges each document's relevance independently. A
// document graded "no" is dropped, and any single irrelevant document
// flips WebSearch on, regardless of how many others passed.
func (p *Pipeline) GradeDocuments(ctx context.Context, state *State) error {
	filtered := state.Documents[:0:0]
	for _, doc := range state.Documents {
		resp, err := p.llm.Invoke(ctx, &llm.Request{
			Model:    p.model,
			System:   retrievalGraderPrompt,
			Messages: llm.UserMessage(fmt.Sprintf("Question: %s\n\nDocument: %s", state.Question, doc.Content)),
		})
		if err != nil {
			return fmt.Errorf("grade document: %w", err)
		}
		if binaryScore(resp.Content) {
			log.Printf("[RAG] Grade: document relevant")
			filtered = append(filtered, doc)
		} else {
			log.Printf("[RAG] Grade: document not relevant")
			state.WebSearch = true
		}
	}
	state.Documents = filtered
	return nil
}

// DecideToGenerate picks the next stage after grading.
func (p *Pipeline) DecideToGenerate(state *State) Route {
	if state.WebSearch {
		return RouteWebSearch
	}
	return routeGenerate
}

const routeGenerate Route = "generate"

// WebSearch appends freshly searched external content to the document set
// (or initializes it). Search failures degrade to no added documents; a
// broken search provider must not abort the turn.
func (p *Pipeline) WebSearch(ctx context.Context, state *State) {
	if p.search == nil {
		log.Printf("[RAG] Web search requested but no searcher configured")
		return
	}
	results, err := p.search.Search(ctx, state.Question, 3)
	if err != nil {
		log.Printf("[RAG] Web search failed: %v", err)
		return
	}
	if len(results) == 0 {
		return
	}

	contents := make([]string, 0, len(results))
	sources := make([]string, 0, len(results))
	for _, r := range results {
		contents = append(contents, r.Content)
		if r.URL != "" {
			sources = append(sources, r.URL)
		}
	}
	state.Documents = append(state.Documents, Document{
		Content: strings.Join(contents, "\n"),
		Source:  strings.Join(sources, " "),
	})
	log.Printf("[RAG] Web search added %d results", len(results))
}

// Generate produces an answer grounded in the current document set. An
// empty document set yields UngroundedFallback without a model call.
func (p *Pipeline) Generate(ctx context.Context, state *State) error {
	if len(state.Documents) == 0 {
		state.Generation = UngroundedFallback
		return nil
	}

	var b strings.Builder
	for i, doc := range state.Documents {
		fmt.Fprintf(&b, "[%d] %s\n", i+1, doc.Content)
	}
	resp, err := p.llm.Invoke(ctx, &llm.Request{
		Model:    p.model,
		System:   generationPrompt,
		Messages: llm.UserMessage(fmt.Sprintf("Context:\n%s\nQuestion: %s", b.String(), state.Question)),
	})
	if err != nil {
		return fmt.Errorf("generate: %w", err)
	}
	state.Generation = resp.Content
	return nil
}

// GradeGeneration judges whether the generation is supported by the
// documents and whether it answers the question.
func (p *Pipeline) GradeGeneration(ctx context.Context, state *State) error {
	if len(state.Documents) == 0 {
		state.Grounded = false
		state.Useful = false
		return nil
	}

	var docs strings.Builder
	for _, doc := range state.Documents {
		docs.WriteString(doc.Content)
		docs.WriteByte('\n')
	}

	grounded, err := p.llm.Invoke(ctx, &llm.Request{
		Model:    p.model,
		System:   hallucinationGraderPrompt,
		Messages: llm.UserMessage(fmt.Sprintf("Documents:\n%s\nGeneration: %s", docs.String(), state.Generation)),
	})
	if err != nil {
		return fmt.Errorf("grade groundedness: %w", err)
	}
	state.Grounded = binaryScore(grounded.Content)

	useful, err := p.llm.Invoke(ctx, &llm.Request{
		Model:    p.model,
		System:   answerGraderPrompt,
		Messages: llm.UserMessage(fmt.Sprintf("Question: %s\n\nAnswer: %s", state.Question, state.Generation)),
	})
	if err != nil {
		return fmt.Errorf("grade usefulness: %w", err)
	}
	state.Useful = binaryScore(useful.Content)

	log.Printf("[RAG] Generation grade: grounded=%t useful=%t", state.Grounded, state.Useful)
	return nil
}

// binaryScore interprets a grader's yes/no verdict.
func binaryScore(content string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(content)), "yes")
}
