package rag

// Stage prompts. Each grader is constrained to a one-word verdict so the
// binary parse stays trivial.

const routerPrompt = `You are an expert at routing a user question to a vectorstore or web search.
The vectorstore contains documents the user has previously uploaded and indexed
(PDFs, reports, spreadsheets, and similar reference material).
Use the vectorstore for questions about that uploaded material. Use web search
for questions about current events or anything outside the indexed documents.
Respond with exactly one word: "vectorstore" or "websearch".`

const retrievalGraderPrompt = `You are a grader assessing the relevance of a retrieved document to a user question.
If the document contains keywords or semantic meaning related to the question, grade it as relevant.
This is not a stringent test; the goal is only to filter out erroneous retrievals.
Respond with exactly one word: "yes" if the document is relevant, otherwise "no".`

const generationPrompt = `You are an assistant for question-answering tasks.
Use the retrieved context to answer the question. If the context does not
contain the answer, say you don't know. Keep the answer concise and quote
specific figures from the context where relevant.`

const hallucinationGraderPrompt = `You are a grader assessing whether an answer is grounded in a set of documents.
Respond with exactly one word: "yes" if the answer is supported by the documents, otherwise "no".`

const answerGraderPrompt = `You are a grader assessing whether an answer resolves a question.
Respond with exactly one word: "yes" if the answer is useful for the question, otherwise "no".`
