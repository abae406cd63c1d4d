package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"

	"github.com/cloudonauts/storefront/internal/router"
	"github.com/cloudonauts/storefront/pkg/backend"
	"github.com/cloudonauts/storefront/pkg/cart"
	"github.com/cloudonauts/storefront/pkg/catalog"
	"github.com/cloudonauts/storefront/pkg/config"
	"github.com/cloudonauts/storefront/pkg/identity"
	"github.com/cloudonauts/storefront/pkg/session"
	"github.com/cloudonauts/storefront/pkg/storage"
)

func main() {

	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}
	cfg := config.Load()

	// With Redis configured, slots are shared across instances and
	// cross-instance sync rides on pub/sub. Without it, slots live in
	// process memory and the session is scoped to this instance alone.
	var slots storage.Store
	if cfg.RedisAddress != "" {
		redisSlots, err := storage.NewRedis(storage.NewClient(cfg.RedisAddress, cfg.RedisPassword))
		if err != nil {
			log.Fatalf("Failed to connect to redis: %v", err)
		}
		defer redisSlots.Close()
		slots = redisSlots
	} else {
		log.Printf("REDIS_ADDRESS not set; using in-process storage, cross-instance sync disabled")
		slots = storage.NewMemory()
	}

	api := backend.New(cfg.APIBaseURL)
	cartStore := cart.NewStore(slots)
	cache := catalog.New(slots, api)
	idp := identity.NewDevProvider()

	sessions := session.NewManager(slots, cartStore, api)
	sessions.Restore(context.Background())
	defer sessions.Close()

	r := router.New(cfg, slots, cartStore, cache, sessions, api, idp)

	log.Printf("Server is running on port %s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}
