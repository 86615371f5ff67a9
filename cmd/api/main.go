package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	apiviewer "github.com/yanyanwinston/SECDataExtractor-v3-sub000/pkg/api/viewer"
	"github.com/yanyanwinston/SECDataExtractor-v3-sub000/pkg/core/store"
)

func main() {
	// Load environment variables
	godotenv.Load()

	// Database is optional for the API surface; processing works without it.
	if os.Getenv("DATABASE_URL") != "" {
		if err := store.InitDB(context.Background()); err != nil {
			fmt.Printf("[WARNING] Failed to initialize database: %v\n", err)
		} else {
			defer store.Close()
			fmt.Println("[STORE] Database connection pool initialized")
		}
	}

	http.HandleFunc("/api/viewer/process", apiviewer.HandleProcessFiling)
	http.HandleFunc("/api/viewer/ensemble", apiviewer.HandleEnsemble)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	fmt.Printf("Statement viewer API listening on :%s\n", port)
	if err := http.ListenAndServe(":"+port, nil); err != nil {
		fmt.Printf("Server failed: %v\n", err)
		os.Exit(1)
	}
}
