package rag

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/alfredlabs/alfred/memory"
)

// Chunking parameters for plain-text ingestion.
const (
	chunkSize    = 1000
	chunkOverlap = 200
)

// Ingestor loads documents from the docs directory, chunks them, and
// upserts their embeddings into the document index. Chunk IDs derive from
// the file name, so re-ingesting a file overwrites its previous chunks
// instead of duplicating them.
type Ingestor struct {
	index    memory.Index
	embedder memory.Embedder
	docsDir  string
}

// NewIngestor creates an Ingestor rooted at docsDir.
func NewIngestor(index memory.Index, embedder memory.Embedder, docsDir string) *Ingestor {
	return &Ingestor{index: index, embedder: embedder, docsDir: docsDir}
}

// IngestDir processes every supported file in the docs directory and
// returns a human-readable summary, including per-file errors. A single
// unreadable file does not abort the run.
func (in *Ingestor) IngestDir(ctx context.Context) (string, error) {
	entries, err := os.ReadDir(in.docsDir)
	if err != nil {
		return "", fmt.Errorf("read docs dir: %w", err)
	}

	var ingested []string
	var failures []string
	var skipped []string
	total := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if !supportedDoc(entry.Name()) {
			log.Printf("[RAG] Skipping unsupported file %s", entry.Name())
			skipped = append(skipped, entry.Name())
			continue
		}
		n, err := in.IngestFile(ctx, entry.Name())
		if err != nil {
			log.Printf("[RAG] Ingest failed for %s: %v", entry.Name(), err)
			failures = append(failures, fmt.Sprintf("%s: %v", entry.Name(), err))
			continue
		}
		ingested = append(ingested, entry.Name())
		total += n
	}

	summary := fmt.Sprintf("Ingested %d files (%d chunks): %s",
		len(ingested), total, strings.Join(ingested, ", "))
	if len(failures) > 0 {
		summary += fmt.Sprintf("; errors: %s", strings.Join(failures, "; "))
	}
	if len(skipped) > 0 {
		summary += fmt.Sprintf("; skipped unsupported: %s", strings.Join(skipped, ", "))
	}
	log.Printf("[RAG] %s", summary)
	return summary, nil
}

// IngestFile chunks, embeds, and indexes one file, returning the chunk
// count.
func (in *Ingestor) IngestFile(ctx context.Context, name string) (int, error) {
	path := filepath.Join(in.docsDir, filepath.Base(name))
	var chunks []string
	var err error

	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		chunks, err = csvChunks(path)
	case ".pdf":
		chunks, err = pdfChunks(path)
	case ".txt", ".md":
		chunks, err = textChunks(path)
	default:
		return 0, fmt.Errorf("unsupported file type: %s", name)
	}
	if err != nil {
		return 0, err
	}
	if len(chunks) == 0 {
		return 0, nil
	}

	vectors, err := in.embedder.EmbedBatch(ctx, chunks)
	if err != nil {
		return 0, fmt.Errorf("embed chunks: %w", err)
	}

	records := make([]memory.Record, len(chunks))
	for i, chunk := range chunks {
		records[i] = memory.Record{
			ID:     fmt.Sprintf("%s#%d", name, i),
			Vector: vectors[i],
			Metadata: memory.Metadata{
				memory.PayloadKey: chunk,
				memory.SourceKey:  name,
				memory.TypeKey:    "document",
			},
		}
	}
	if err := in.index.Upsert(ctx, records, memory.NamespaceDocuments); err != nil {
		return 0, fmt.Errorf("index chunks: %w", err)
	}
	return len(chunks), nil
}

func supportedDoc(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".txt", ".md", ".csv", ".pdf":
		return true
	}
	return false
}

// textChunks splits a text file into overlapping fixed-size chunks.
func textChunks(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return splitChunks(string(data)), nil
}

// pdfChunks extracts a PDF's plain text and chunks it like a text file.
func pdfChunks(path string) ([]string, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	content, err := reader.GetPlainText()
	if err != nil {
		return nil, fmt.Errorf("extract pdf text: %w", err)
	}
	var b strings.Builder
	if _, err := io.Copy(&b, content); err != nil {
		return nil, fmt.Errorf("read pdf text: %w", err)
	}
	return splitChunks(b.String()), nil
}

func splitChunks(text string) []string {
	var chunks []string
	for start := 0; start < len(text); start += chunkSize - chunkOverlap {
		end := start + chunkSize
		if end > len(text) {
			end = len(text)
		}
		chunk := strings.TrimSpace(text[start:end])
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
		if end == len(text) {
			break
		}
	}
	return chunks
}

// csvChunks renders each row against the header so a chunk stays
// self-describing.
func csvChunks(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(rows) < 2 {
		return nil, nil
	}

	header := rows[0]
	chunks := make([]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		var b strings.Builder
		for i, cell := range row {
			if i > 0 {
				b.WriteString("; ")
			}
			if i < len(header) {
				b.WriteString(header[i])
				b.WriteString(": ")
			}
			b.WriteString(cell)
		}
		chunks = append(chunks, b.String())
	}
	return chunks, nil
}
