// Package rag implements the retrieval-augmented answer pipeline: route a
// question to a data source, retrieve and grade documents, fall back to
// web search, then produce a generation checked for groundedness.
//
// Every stage is a pure function of the state threaded through it; the
// pipeline keeps nothing between turns.
package rag

// Document is one retrieved piece of content.
type Document struct {
	Content string `json:"content"`
	Source  string `json:"source,omitempty"`
}

// State is the pipeline state for one question.
type State struct {
	Question  string
	Documents []Document

	// WebSearch is set when routing or grading decided external content
	// is needed.
	WebSearch bool

	// Generation is the produced answer, empty until Generate ran.
	Generation string

	// Grounded and Useful carry the generation grade.
	Grounded bool
	Useful   bool
}

// Route is the data-source decision for a question.
type Route string

const (
	// RouteWebSearch sends the question to external web search.
	RouteWebSearch Route = "websearch"

	// RouteVectorstore sends the question to the document index.
	RouteVectorstore Route = "vectorstore"

	// RouteEnd is the explicit sentinel for unexpected classifier
	// output; it terminates the pipeline instead of raising.
	RouteEnd Route = "end"
)
