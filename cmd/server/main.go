package main

import (
	"log"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/wellfolio/qolportal/internal/api"
	"github.com/wellfolio/qolportal/internal/db"
	"github.com/wellfolio/qolportal/internal/middleware"
	"github.com/wellfolio/qolportal/internal/utils"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables only.")
	}

	dbPath := utils.SafeEnv("DATABASE_PATH", "./data/patientportal.sqlite")
	sqlDB, err := db.Open(dbPath)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer func() {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Printf("warning: failed to close database: %v", cerr)
		}
	}()

	if err := db.InitSchema(sqlDB); err != nil {
		log.Fatalf("init database: %v", err)
	}
	store, err := db.NewStore(sqlDB)
	if err != nil {
		log.Fatalf("init store: %v", err)
	}

	mux := http.NewServeMux()
	api.NewRouter(store).Register(mux)

	// Serve the questionnaire frontend when a static dir is configured.
	if staticDir := os.Getenv("STATIC_DIR"); staticDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(staticDir)))
	}

	handler := middleware.SecureHeaders(middleware.CORS(mux))

	addr := ":" + utils.SafeEnv("PORT", "3000")
	log.Printf("Quality-of-life portal listening on %s (db: %s)", addr, dbPath)
	if err := http.ListenAndServe(addr, handler); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
