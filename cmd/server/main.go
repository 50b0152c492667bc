/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the credit engine server. Handles
  configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags
  2. Initialize SQLite store
  3. Wire the billing engine and the two product services
  4. Configure HTTP router, start the daily balance recorder
  5. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port          HTTP server port (default: 8080)
  -db            SQLite database path (default: credit.db)
                 Use ":memory:" for in-memory database
  -customer-url  Base URL of the customer service (default:
                 http://localhost:8085)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Stop the balance recorder, close database connection
  4. Exit

EXAMPLES:
  # Run with file database
  ./server -db="./data/credit.db"

  # Run with in-memory database
  ./server -db=":memory:"

  # Run on different port
  ./server -port=3000

SEE ALSO:
  - api/server.go: Router configuration
  - api/handlers.go: HTTP handlers
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/warp/credit-engine/api"
	"github.com/warp/credit-engine/billing"
	"github.com/warp/credit-engine/card"
	"github.com/warp/credit-engine/customer"
	"github.com/warp/credit-engine/loan"
	"github.com/warp/credit-engine/store/sqlite"
)

func main() {
	// Flags
	port := flag.Int("port", 8080, "HTTP server port")
	dbPath := flag.String("db", "credit.db", "SQLite database path")
	customerURL := flag.String("customer-url", "http://localhost:8085", "Customer service base URL")
	flag.Parse()

	// Initialize store
	store, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	// Wire the engine and the product services
	engine := billing.NewEngine(store)
	customers := customer.NewClient(*customerURL)
	loans := loan.NewService(store, engine, customers)
	cards := card.NewService(store, engine, customers)

	handler := api.NewHandler(loans, cards, store)
	router := api.NewRouter(handler)

	// Daily balance history
	recorder := api.NewBalanceRecorder(store, store, store)
	recorder.Start()
	defer recorder.Stop()

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("🚀 Server starting on http://localhost:%d", *port)
		log.Printf("📊 API available at http://localhost:%d/api", *port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}
