package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"github.com/camden-git/personagen/config"
	"github.com/camden-git/personagen/database"
	"github.com/camden-git/personagen/handlers"
	"github.com/camden-git/personagen/llm"
	"github.com/camden-git/personagen/media"
	"github.com/camden-git/personagen/pipeline"
	"github.com/camden-git/personagen/repository"
	"github.com/camden-git/personagen/sdapi"
)

func main() {
	ingestFlag := flag.Bool("ingest", false, "parse the data directory JSON files into the database")
	promptsFlag := flag.Bool("generate-prompts", false, "generate prompts for profiles without prompts")
	imagesFlag := flag.Bool("generate-images", false, "generate images for profiles with prompts but no images")
	allFlag := flag.Bool("all", false, "run ingest, prompt and image stages sequentially")
	validateFlag := flag.Bool("validate", false, "validate configuration and endpoint reachability, then exit")
	serveFlag := flag.Bool("serve", false, "serve the read-only inspection API")
	flag.Parse()

	if !*ingestFlag && !*promptsFlag && !*imagesFlag && !*allFlag && !*validateFlag && !*serveFlag {
		fmt.Println("Please specify an action. Use -help for options.")
		flag.Usage()
		return
	}

	err := godotenv.Load()
	if err != nil {
		log.Printf("Info: No .env file found or error loading: %v", err)
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	if dbDir := filepath.Dir(cfg.DatabasePath); dbDir != "." {
		if err := os.MkdirAll(dbDir, 0755); err != nil {
			log.Fatalf("FATAL: Failed to create database directory %s: %v", dbDir, err)
		}
	}

	db, err := database.InitGormDB(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize database: %v", err)
	}
	if err := database.AutoMigrateModels(db); err != nil {
		log.Fatalf("FATAL: Failed to migrate database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("FATAL: Failed to get underlying sql.DB: %v", err)
	}
	defer sqlDB.Close()

	profileRepo := repository.NewProfileRepository(db)

	portraitStore, err := media.NewPortraitStore(cfg.OutputDirectory)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize portrait store: %v", err)
	}

	llmClient := llm.NewClient(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.Temperature, cfg.MaxTokens, cfg.RequestTimeout)
	sdClient := sdapi.NewClient(cfg)

	pipe := pipeline.New(cfg, profileRepo, llmClient, sdClient, portraitStore)
	ctx := context.Background()

	if *validateFlag {
		if err := pipe.Validate(ctx); err != nil {
			log.Printf("Configuration validation failed: %v", err)
			os.Exit(1)
		}
		fmt.Println("Configuration is valid!")
		return
	}

	// per-record failures are reported in summaries and never change the
	// exit status; only infrastructure failures are fatal
	switch {
	case *allFlag:
		summary, err := pipe.RunAll(ctx)
		if err != nil {
			log.Fatalf("FATAL: Pipeline run failed: %v", err)
		}
		printRunSummary(summary)
	case *ingestFlag:
		summary, err := pipe.Ingest(ctx)
		if err != nil {
			log.Fatalf("FATAL: Ingestion failed: %v", err)
		}
		fmt.Printf("Ingest complete: %d files processed, %d inserted, %d skipped, %d failed\n",
			summary.FilesProcessed, summary.Inserted, summary.Skipped, summary.Failed)
	case *promptsFlag:
		summary, err := pipe.GeneratePrompts(ctx)
		if err != nil {
			log.Fatalf("FATAL: Prompt stage failed: %v", err)
		}
		fmt.Printf("Prompt stage complete: %d/%d succeeded, %d failed\n",
			summary.Succeeded, summary.Pending, summary.Failed)
	case *imagesFlag:
		summary, err := pipe.GenerateImages(ctx)
		if err != nil {
			log.Fatalf("FATAL: Image stage failed: %v", err)
		}
		fmt.Printf("Image stage complete: %d/%d succeeded, %d failed\n",
			summary.Succeeded, summary.Pending, summary.Failed)
	}

	if *serveFlag {
		serveInspectionAPI(profileRepo, sqlDB)
	}
}

func printRunSummary(summary pipeline.RunSummary) {
	fmt.Printf("Pipeline run %s complete:\n", summary.RunID)
	fmt.Printf("  ingest:  %d files, %d inserted, %d skipped, %d failed\n",
		summary.Ingest.FilesProcessed, summary.Ingest.Inserted, summary.Ingest.Skipped, summary.Ingest.Failed)
	fmt.Printf("  prompts: %d/%d succeeded, %d failed\n",
		summary.Prompts.Succeeded, summary.Prompts.Pending, summary.Prompts.Failed)
	fmt.Printf("  images:  %d/%d succeeded, %d failed\n",
		summary.Images.Succeeded, summary.Images.Pending, summary.Images.Failed)
}

// serveInspectionAPI exposes the read-only record store views over HTTP
func serveInspectionAPI(repo repository.ProfileRepositoryInterface, sqlDB *sql.DB) {
	profileHandler := &handlers.ProfileHandler{Repo: repo, SQLDB: sqlDB}

	r := chi.NewRouter()

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	})

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(corsHandler.Handler)

	r.Route("/api", func(r chi.Router) {
		r.Get("/profiles", profileHandler.ListProfiles)
		r.Get("/profiles/{admin_id}", profileHandler.GetProfile)
		r.Get("/summary", profileHandler.GetSummary)
		r.Get("/categories", profileHandler.GetCategories)
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	serverAddr := ":" + port
	log.Printf("Inspection API listening on %s", serverAddr)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	log.Fatal(server.ListenAndServe())
}
