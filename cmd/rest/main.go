package main

import (
	"context"
	"errors"
	"log"
	"os"

	"ai-helpdesk-be/internal/bootstrap"
	"ai-helpdesk-be/internal/config"
	"ai-helpdesk-be/internal/model"
	"ai-helpdesk-be/internal/server"
	"ai-helpdesk-be/internal/tracer"
	"ai-helpdesk-be/pkg/database"
	"ai-helpdesk-be/pkg/retrieval/index"
)

func main() {
	// 0. Initialize Tracer
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	// 1. Load Configuration
	cfg := config.Load()

	// 2. Initialize Database
	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	if err := gormDB.AutoMigrate(
		&model.Customer{},
		&model.SupportSession{},
		&model.SupportMessage{},
		&model.Ticket{},
		&model.Agent{},
		&model.KnowledgeEmbedding{},
	); err != nil {
		log.Panicf("Unable to migrate schema: %v", err)
	}

	// 3. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(gormDB, cfg)

	// 4. Warm the retrieval index: snapshot first, then the embedding
	// store, and only rebuild from scratch when both come up empty.
	warmIndex(container)

	// 5. Start Background Services
	go func() {
		log.Println("Background: Starting Consumer Service...")
		if err := container.ConsumerService.Consume(context.Background()); err != nil {
			log.Printf("Background Consumer Error: %v", err)
		}
	}()

	// 6. Initialize Server
	srv := server.New(cfg, container)

	// 7. Run Server
	log.Fatal(srv.Run())
}

func warmIndex(container *bootstrap.Container) {
	ks := container.KnowledgeService

	err := ks.LoadSnapshot()
	if err == nil {
		log.Println("Index warmed from snapshot")
		return
	}
	// A missing snapshot just means a cold start. A corrupt one means
	// the operator must intervene; serving an empty index instead would
	// hide the damage.
	if errors.Is(err, index.ErrIndexCorrupt) {
		log.Fatalf("Index snapshot is corrupt, refusing to start: %v", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		log.Printf("[WARN] Failed to read index snapshot: %v", err)
	}

	if n, err := ks.HydrateFromStore(context.Background()); err == nil && n > 0 {
		log.Printf("Index warmed from embedding store (%d chunks)", n)
		return
	} else if err != nil {
		log.Printf("[WARN] Failed to hydrate index from embedding store: %v", err)
	}

	log.Println("No snapshot or stored embeddings, rebuilding index...")
	if err := ks.RebuildIndex(context.Background()); err != nil {
		log.Fatalf("Cold start with no usable index: %v", err)
	}
}
