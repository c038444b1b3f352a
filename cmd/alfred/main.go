// Command alfred runs the agent server.
package main

import (
	"log"
	"net/http"
	"os"
	"path/filepath"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/joho/godotenv"

	"github.com/alfredlabs/alfred/engine"
	"github.com/alfredlabs/alfred/llm/anthropicllm"
	"github.com/alfredlabs/alfred/memory"
	"github.com/alfredlabs/alfred/memory/embedder/cached"
	"github.com/alfredlabs/alfred/memory/embedder/openaiembed"
	"github.com/alfredlabs/alfred/memory/store/chromemstore"
	"github.com/alfredlabs/alfred/rag"
	"github.com/alfredlabs/alfred/server"
	"github.com/alfredlabs/alfred/tools"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	addr := envOr("ALFRED_ADDR", ":8080")
	dataDir := envOr("ALFRED_DATA_DIR", "data")
	docsDir := filepath.Join(dataDir, "docs")

	store, err := chromemstore.NewPersistent(filepath.Join(dataDir, "chroma"))
	if err != nil {
		log.Fatalf("[MAIN] Open vector store: %v", err)
	}

	embedder, err := cached.New(openaiembed.New(openaiembed.Config{
		APIKey: os.Getenv("OPENAI_API_KEY"),
	}), 0)
	if err != nil {
		log.Fatalf("[MAIN] Build embedder: %v", err)
	}

	coreStore := memory.NewCoreStore(store, embedder.Dimensions())
	recall := memory.NewRecall(store, embedder)
	loader := memory.NewLoader(coreStore, recall, memory.DefaultRecallTopK)

	anthropicClient := anthropic.NewClient()
	llmClient := anthropicllm.New(&anthropicClient)

	var search rag.WebSearcher
	if key := os.Getenv("TAVILY_API_KEY"); key != "" {
		search = rag.NewTavilyClient(key)
	} else {
		log.Printf("[MAIN] TAVILY_API_KEY not set; web search disabled")
	}

	pipeline := rag.New(rag.Config{
		LLM:      llmClient,
		Index:    store,
		Embedder: embedder,
		Search:   search,
	})
	ingestor := rag.NewIngestor(store, embedder, docsDir)

	deps := tools.Deps{
		Core:     coreStore,
		Recall:   recall,
		Pipeline: pipeline,
		Ingestor: ingestor,
		Search:   search,
		Weather:  tools.NewWeatherClient(),
	}
	if key := os.Getenv("NEWSDATA_API_KEY"); key != "" {
		deps.News = tools.NewNewsClient(key)
	} else {
		log.Printf("[MAIN] NEWSDATA_API_KEY not set; news tool disabled")
	}

	registry := engine.NewRegistry()
	registry.MustRegister(tools.AlfredTools(deps)...)

	eng := engine.New(llmClient, registry, loader)
	srv := server.New(eng, docsDir)

	log.Printf("[MAIN] Listening on %s (data dir %s)", addr, dataDir)
	if err := http.ListenAndServe(addr, srv.Handler()); err != nil {
		log.Fatalf("[MAIN] Server stopped: %v", err)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
