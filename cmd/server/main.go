package main

import (
	"context"
	"log"
	"net/http"
	"os"

	webAdapter "franchise-backoffice/internal/adapters/web"
	"franchise-backoffice/internal/app"
	"franchise-backoffice/internal/core"
	"franchise-backoffice/internal/db"
	"franchise-backoffice/internal/store"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	ctx := context.Background()
	pool, err := db.NewPool(ctx, os.Getenv("DATABASE_URL"))
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer pool.Close()

	fiscalYears := store.NewFiscalYearStore(pool)
	transactions := store.NewBankTransactionStore(pool)
	rules := store.NewRuleStore(pool)
	reconciliations := store.NewReconciliationStore(pool)

	pipeline := core.NewInvoiceEntryPipeline(fiscalYears, core.NewSpanishVATValidator())
	svc := app.NewAppService(pipeline, transactions, rules, reconciliations)

	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = "8080"
	}

	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	handler := webAdapter.NewHandler(svc, allowedOrigins)

	log.Printf("server starting on :%s", port)
	if err := http.ListenAndServe(":"+port, handler); err != nil {
		log.Fatalf("server: %v", err)
	}
}
