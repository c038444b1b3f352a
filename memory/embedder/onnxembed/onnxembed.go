//go:build onnx

// Package onnxembed implements memory.Embedder with a local ONNX model
// (all-MiniLM-L6-v2 or compatible). It keeps embedding fully offline at
// the cost of lower similarity quality than the hosted embedders.
package onnxembed

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strings"

	ort "github.com/yalue/onnxruntime_go"
)

const maxSequenceLen = 128

// Config configures the ONNX embedder.
type Config struct {
	// ModelPath is the path to the ONNX model file.
	ModelPath string

	// TokenizerPath is the path to the HuggingFace tokenizer.json.
	TokenizerPath string

	// LibraryPath is the onnxruntime shared library. Falls back to the
	// ONNXRUNTIME_LIB environment variable.
	LibraryPath string

	// Dimensions is the embedding size. Default: 384.
	Dimensions int
}

// Embedder runs a sentence-transformer model through ONNX Runtime.
type Embedder struct {
	session *ort.DynamicAdvancedSession
	vocab   *wordPieceVocab
	dims    int
}

// New loads the model and tokenizer.
func New(cfg Config) (*Embedder, error) {
	if cfg.ModelPath == "" {
		return nil, fmt.Errorf("ModelPath is required")
	}
	if cfg.Dimensions == 0 {
		cfg.Dimensions = 384
	}
	lib := cfg.LibraryPath
	if lib == "" {
		lib = os.Getenv("ONNXRUNTIME_LIB")
	}
	if lib != "" {
		ort.SetSharedLibraryPath(lib)
	}
	if err := ort.InitializeEnvironment(); err != nil {
		return nil, fmt.Errorf("initialize onnx runtime: %w", err)
	}

	vocab, err := loadVocab(cfg.TokenizerPath)
	if err != nil {
		return nil, fmt.Errorf("load tokenizer: %w", err)
	}

	session, err := ort.NewDynamicAdvancedSession(cfg.ModelPath,
		[]string{"input_ids", "attention_mask", "token_type_ids"},
		[]string{"last_hidden_state"},
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("create onnx session: %w", err)
	}

	return &Embedder{session: session, vocab: vocab, dims: cfg.Dimensions}, nil
}

func (e *Embedder) Embed(_ context.Context, text string) ([]float32, error) {
	ids := e.vocab.encode(text)
	if len(ids) > maxSequenceLen-2 {
		ids = ids[:maxSequenceLen-2]
	}

	inputIDs := make([]int64, maxSequenceLen)
	attention := make([]int64, maxSequenceLen)
	tokenTypes := make([]int64, maxSequenceLen)

	inputIDs[0] = clsToken
	attention[0] = 1
	for i, id := range ids {
		inputIDs[i+1] = id
		attention[i+1] = 1
	}
	inputIDs[len(ids)+1] = sepToken
	attention[len(ids)+1] = 1

	shape := ort.NewShape(1, maxSequenceLen)
	inputs := make([]ort.Value, 0, 3)
	for _, data := range [][]int64{inputIDs, attention, tokenTypes} {
		t, err := ort.NewTensor(shape, data)
		if err != nil {
			for _, in := range inputs {
				in.Destroy()
			}
			return nil, fmt.Errorf("create input tensor: %w", err)
		}
		inputs = append(inputs, t)
	}
	defer func() {
		for _, in := range inputs {
			in.Destroy()
		}
	}()

	outputs := []ort.Value{nil}
	if err := e.session.Run(inputs, outputs); err != nil {
		return nil, fmt.Errorf("onnx inference: %w", err)
	}
	defer outputs[0].Destroy()

	tensor, ok := outputs[0].(*ort.Tensor[float32])
	if !ok {
		return nil, fmt.Errorf("unexpected output tensor type")
	}
	return e.meanPool(tensor, attention)
}

func (e *Embedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := e.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (e *Embedder) Dimensions() int {
	return e.dims
}

// Close releases the ONNX session.
func (e *Embedder) Close() error {
	if e.session != nil {
		return e.session.Destroy()
	}
	return nil
}

// meanPool averages hidden states over attended positions and normalizes
// to a unit vector.
func (e *Embedder) meanPool(tensor *ort.Tensor[float32], attention []int64) ([]float32, error) {
	data := tensor.GetData()
	shape := tensor.GetShape()
	if len(shape) != 3 || shape[0] != 1 || shape[2] != int64(e.dims) {
		return nil, fmt.Errorf("unexpected output shape %v", shape)
	}
	seqLen := int(shape[1])

	vec := make([]float32, e.dims)
	var attended float32
	for i := 0; i < seqLen; i++ {
		if attention[i] == 0 {
			continue
		}
		attended++
		offset := i * e.dims
		for j := 0; j < e.dims; j++ {
			vec[j] += data[offset+j]
		}
	}
	if attended == 0 {
		return vec, nil
	}

	var norm float64
	for j := range vec {
		vec[j] /= attended
		norm += float64(vec[j]) * float64(vec[j])
	}
	if norm > 0 {
		scale := float32(1 / math.Sqrt(norm))
		for j := range vec {
			vec[j] *= scale
		}
	}
	return vec, nil
}

// BERT special token IDs.
const (
	unkToken int64 = 100
	clsToken int64 = 101
	sepToken int64 = 102
)

// wordPieceVocab is a minimal BERT WordPiece tokenizer: lowercase, strip
// edge punctuation, longest-prefix subword matching.
type wordPieceVocab struct {
	ids map[string]int
}

func loadVocab(path string) (*wordPieceVocab, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc struct {
		Model struct {
			Vocab map[string]int `json:"vocab"`
		} `json:"model"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return &wordPieceVocab{ids: doc.Model.Vocab}, nil
}

func (v *wordPieceVocab) encode(text string) []int64 {
	var out []int64
	for _, word := range strings.Fields(strings.ToLower(text)) {
		word = strings.Trim(word, ".,!?;:\"'")
		if word == "" {
			continue
		}
		if id, ok := v.ids[word]; ok {
			out = append(out, int64(id))
			continue
		}
		out = append(out, v.subwords(word)...)
	}
	return out
}

func (v *wordPieceVocab) subwords(word string) []int64 {
	var out []int64
	start := 0
	for start < len(word) {
		matched := false
		for end := len(word); end > start; end-- {
			piece := word[start:end]
			if start > 0 {
				piece = "##" + piece
			}
			if id, ok := v.ids[piece]; ok {
				out = append(out, int64(id))
				start = end
				matched = true
				break
			}
		}
		if !matched {
			out = append(out, unkToken)
			start++
		}
	}
	return out
}
