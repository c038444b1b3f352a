package rag

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alfredlabs/alfred/memory"
	"github.com/alfredlabs/alfred/memory/embedder/mockembed"
	"github.com/alfredlabs/alfred/memory/store/chromemstore"
)

func writeDoc(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestIngestFileText(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "report.txt", strings.Repeat("alpha bravo charlie ", 120))

	store, err := chromemstore.New()
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	in := NewIngestor(store, mockembed.New(8), dir)

	n, err := in.IngestFile(context.Background(), "report.txt")
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if n < 2 {
		t.Fatalf("got %d chunks, want overlapping chunks for a long file", n)
	}

	// Re-ingesting must not duplicate chunks.
	again, err := in.IngestFile(context.Background(), "report.txt")
	if err != nil {
		t.Fatalf("re-ingest: %v", err)
	}
	if again != n {
		t.Errorf("re-ingest produced %d chunks, want %d", again, n)
	}
}

func TestIngestFileCSV(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "crew.csv", "name,role\nRivera,pilot\nChen,navigator\n")

	store, _ := chromemstore.New()
	in := NewIngestor(store, mockembed.New(8), dir)

	n, err := in.IngestFile(context.Background(), "crew.csv")
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if n != 2 {
		t.Fatalf("got %d chunks, want one per data row", n)
	}

	got, err := store.Fetch(context.Background(), []string{"crew.csv#0"}, memory.NamespaceDocuments)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	payload, _ := got["crew.csv#0"][memory.PayloadKey].(string)
	if !strings.Contains(payload, "name: Rivera") || !strings.Contains(payload, "role: pilot") {
		t.Errorf("chunk = %q, want header-prefixed cells", payload)
	}
}

// writePDF writes a single-page PDF containing text, with a correct
// cross-reference table.
func writePDF(t *testing.T, path, text string) {
	t.Helper()
	var buf bytes.Buffer
	offsets := make([]int, 6)
	obj := func(n int, body string) {
		offsets[n] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", n, body)
	}

	buf.WriteString("%PDF-1.4\n")
	content := fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", text)
	obj(1, "<< /Type /Catalog /Pages 2 0 R >>")
	obj(2, "<< /Type /Pages /Kids [3 0 R] /Count 1 >>")
	obj(3, "<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Contents 4 0 R /Resources << /Font << /F1 5 0 R >> >> >>")
	obj(4, fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content))
	obj(5, "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>")

	xref := buf.Len()
	buf.WriteString("xref\n0 6\n0000000000 65535 f \n")
	for i := 1; i <= 5; i++ {
		fmt.Fprintf(&buf, "%010d 00000 n \n", offsets[i])
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size 6 /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", xref)

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestIngestFilePDF(t *testing.T) {
	dir := t.TempDir()
	writePDF(t, filepath.Join(dir, "q3.pdf"), "Revenue rose twelve percent in the third quarter")

	store, _ := chromemstore.New()
	in := NewIngestor(store, mockembed.New(8), dir)

	n, err := in.IngestFile(context.Background(), "q3.pdf")
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if n != 1 {
		t.Fatalf("got %d chunks, want 1", n)
	}

	got, err := store.Fetch(context.Background(), []string{"q3.pdf#0"}, memory.NamespaceDocuments)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	payload, _ := got["q3.pdf#0"][memory.PayloadKey].(string)
	if !strings.Contains(payload, "Revenue rose twelve percent") {
		t.Errorf("chunk = %q, want extracted pdf text", payload)
	}
}

func TestIngestDirIndexesUploadedPDF(t *testing.T) {
	dir := t.TempDir()
	writePDF(t, filepath.Join(dir, "q3.pdf"), "Quarterly results attached")

	store, _ := chromemstore.New()
	in := NewIngestor(store, mockembed.New(8), dir)

	summary, err := in.IngestDir(context.Background())
	if err != nil {
		t.Fatalf("ingest dir: %v", err)
	}
	if !strings.Contains(summary, "q3.pdf") {
		t.Fatalf("summary = %q, want q3.pdf accounted for", summary)
	}
	if !strings.Contains(summary, "Ingested 1 files") {
		t.Errorf("summary = %q, want one ingested file", summary)
	}
}

func TestIngestDirReportsSkippedFiles(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "good.txt", "short but valid document")
	writeDoc(t, dir, "photo.png", "binary junk")

	store, _ := chromemstore.New()
	in := NewIngestor(store, mockembed.New(8), dir)

	summary, err := in.IngestDir(context.Background())
	if err != nil {
		t.Fatalf("ingest dir: %v", err)
	}
	if !strings.Contains(summary, "skipped unsupported: photo.png") {
		t.Errorf("summary = %q, want photo.png reported as skipped", summary)
	}
}

func TestIngestFileUnsupportedType(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "image.png", "not really an image")

	store, _ := chromemstore.New()
	in := NewIngestor(store, mockembed.New(8), dir)

	if _, err := in.IngestFile(context.Background(), "image.png"); err == nil {
		t.Fatal("expected error for unsupported file type")
	}
}

func TestIngestDirCollectsFailures(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "good.txt", "short but valid document")
	writeDoc(t, dir, "bad.csv", "a,b\n\"unterminated")

	store, _ := chromemstore.New()
	in := NewIngestor(store, mockembed.New(8), dir)

	summary, err := in.IngestDir(context.Background())
	if err != nil {
		t.Fatalf("ingest dir: %v", err)
	}
	if !strings.Contains(summary, "good.txt") {
		t.Errorf("summary = %q, want good.txt listed", summary)
	}
	if !strings.Contains(summary, "errors:") || !strings.Contains(summary, "bad.csv") {
		t.Errorf("summary = %q, want bad.csv failure listed", summary)
	}
}

func TestTextChunksOverlap(t *testing.T) {
	dir := t.TempDir()
	content := strings.Repeat("x", 1500)
	writeDoc(t, dir, "long.txt", content)

	chunks, err := textChunks(filepath.Join(dir, "long.txt"))
	if err != nil {
		t.Fatalf("chunks: %v", err)
	}
	if len(chunks) != 2 {
		t.Fatalf("got %d chunks, want 2", len(chunks))
	}
	if len(chunks[0]) != chunkSize {
		t.Errorf("first chunk len = %d, want %d", len(chunks[0]), chunkSize)
	}
	// The second chunk starts chunkSize-chunkOverlap in, covering the rest.
	if len(chunks[1]) != 1500-(chunkSize-chunkOverlap) {
		t.Errorf("second chunk len = %d", len(chunks[1]))
	}
}
