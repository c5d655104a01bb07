package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Ndiapaly/NBM-Shop-Client/internal/config"
	"github.com/Ndiapaly/NBM-Shop-Client/internal/products"
	"github.com/Ndiapaly/NBM-Shop-Client/internal/storefront"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	store, err := storefront.New(cfg)
	if err != nil {
		log.Fatalf("Failed to build store: %v", err)
	}
	defer store.Close()
	log.Printf("Store ready, API at %s, session backend %q", cfg.API.BaseURL, cfg.Session.Backend)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	// Restore a persisted session, if any. A missing token is normal on
	// first run.
	if err := store.Auth.GetCurrentSession(ctx); err != nil {
		log.Printf("No active session: %v", err)
	} else {
		user := store.Snapshot().Auth.User
		log.Printf("Session restored for %s", user.Username)
	}

	// Print state updates as the catalog fetch settles
	updates, unsubscribe := store.Subscribe()
	defer unsubscribe()
	go func() {
		for range updates {
			state := store.Snapshot()
			log.Printf("State: %d products, page %d/%d, loading=%v",
				len(state.Products.Items), state.Products.CurrentPage,
				state.Products.TotalPages, state.Products.Loading)
		}
	}()

	if err := store.Products.FetchList(ctx, products.ListQuery{Page: 1, Limit: 12}); err != nil {
		log.Fatalf("Catalog fetch failed: %v", err)
	}

	for _, p := range store.Products.Visible(products.ViewOptions{SortBy: products.SortPriceAsc}) {
		fmt.Printf("%-28s %10s FCFA  [%s]\n", p.Name, p.Price.StringFixed(0), p.Category)
	}

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down...")
}
