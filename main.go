package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"NinesolChat/app/chat"
	"NinesolChat/app/clients"
	"NinesolChat/app/configs"
	"NinesolChat/app/models"
	"NinesolChat/app/rag"
	"NinesolChat/app/storage"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the configuration file")
	ingest := flag.Bool("ingest", false, "bootstrap the knowledge-base collection before serving")
	flag.Parse()

	cfg, err := configs.Load(*configPath)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}

	embedder := models.NewHFEndpointClient(models.HFOptions{
		BaseURL:  cfg.Embedding.BaseURL,
		RepoID:   cfg.Embedding.RepoID,
		APIToken: cfg.Secrets.HFAPIToken,
	})

	generator := models.NewGroqClient(models.GroqOptions{
		BaseURL:     cfg.Chatbot.BaseURL,
		APIKey:      cfg.Secrets.GroqAPIKey,
		Model:       cfg.Chatbot.Model,
		Temperature: cfg.Chatbot.Temperature,
		MaxTokens:   cfg.Chatbot.MaxTokens,
		MaxRetries:  cfg.Chatbot.MaxRetries,
	})

	retriever, err := rag.NewClient(embedder, rag.QdrantOptions{
		URL:        cfg.Secrets.QdrantURL,
		APIKey:     cfg.Secrets.QdrantAPIKey,
		Collection: cfg.Retrieval.Collection,
	})
	if err != nil {
		log.Fatalf("❌ Error connecting to vector store: %v", err)
	}
	defer retriever.Close()

	if *ingest {
		if err = retriever.IngestKnowledgeBase(context.Background(), rag.IngestOptions{
			Folder:    cfg.Ingest.Folder,
			ChunkSize: cfg.Ingest.ChunkSize,
			Overlap:   cfg.Ingest.Overlap,
		}); err != nil {
			log.Fatalf("❌ Error ingesting knowledge base: %v", err)
		}
	}

	store, err := storage.NewSQLiteStorage(cfg.Storage.Path)
	if err != nil {
		log.Fatalf("❌ Error opening chat storage: %v", err)
	}
	defer store.Close()

	factory := func(history rag.History) *rag.Chain {
		return rag.NewChain(retriever, generator, history, cfg.Retrieval.K, cfg.Retrieval.FetchK)
	}
	sessions := chat.NewManager(factory, store)

	registry := clients.NewRegistry()
	defer registry.CloseAll()

	started := 0
	for _, clientCfg := range cfg.Clients {
		if !clientCfg.Enabled {
			log.Printf("⏭️ Client %s is disabled, skipping", clientCfg.Type)
			continue
		}
		client, err := clients.CreateClient(clientCfg)
		if err != nil {
			log.Fatalf("❌ Error creating %s client: %v", clientCfg.Type, err)
		}
		if err = registry.Register(client, sessions); err != nil {
			log.Fatalf("❌ Error starting %s client: %v", clientCfg.Type, err)
		}
		log.Printf("✅ %s client started", clientCfg.Type)
		started++
	}
	if started == 0 {
		log.Fatal("❌ No chat clients enabled in config")
	}

	log.Println("🤖 Ninesol ChatBot is up. Ask me about Ninesol Technologies!")

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Println("👋 Shutting down")
}
