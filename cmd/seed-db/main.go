// Command seed-db runs migrations and loads an initial catalog: users,
// commodities, discount codes and optionally an admin API key.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/xenking/bazaar-shop/internal/domain/auth"
	"github.com/xenking/bazaar-shop/internal/domain/commodity"
	"github.com/xenking/bazaar-shop/internal/domain/discount"
	"github.com/xenking/bazaar-shop/internal/domain/user"
	"github.com/xenking/bazaar-shop/internal/storage/postgres"
)

type seedFile struct {
	Users []struct {
		Username string `json:"username"`
		Credit   int64  `json:"credit"`
	} `json:"users"`
	Commodities []struct {
		ID         int64    `json:"id"`
		Name       string   `json:"name"`
		ProviderID int32    `json:"providerId"`
		Price      int64    `json:"price"`
		InStock    int64    `json:"inStock"`
		Categories []string `json:"categories"`
	} `json:"commodities"`
	Discounts []struct {
		Code   string `json:"code"`
		Amount int    `json:"amount"`
	} `json:"discounts"`
}

func main() {
	var (
		databaseURL  string
		seedPath     string
		apiKey       string
		apiKeyPepper string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&seedPath, "seed-file", "db/seed/catalog.json", "path to seed JSON file")
	flag.StringVar(&apiKey, "api-key", "", "admin API key to seed (or BAZAAR_SEED_API_KEY env)")
	flag.StringVar(&apiKeyPepper, "api-key-pepper", "", "HMAC pepper for API key hashing (or BAZAAR_API_KEY_PEPPER env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	if apiKey == "" {
		apiKey = os.Getenv("BAZAAR_SEED_API_KEY")
	}
	if apiKeyPepper == "" {
		apiKeyPepper = os.Getenv("BAZAAR_API_KEY_PEPPER")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, seedPath, apiKey, apiKeyPepper); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, seedPath, apiKey, pepper string) error {
	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	data, err := os.ReadFile(seedPath)
	if err != nil {
		return errors.Wrapf(err, "read seed file %s", seedPath)
	}

	var seed seedFile
	if err := json.Unmarshal(data, &seed); err != nil {
		return errors.Wrap(err, "parse seed file")
	}

	stores := postgres.NewCatalog(pool).Stores()

	for _, u := range seed.Users {
		err := stores.Users.Create(ctx, &user.User{Username: u.Username, Credit: u.Credit})
		if err != nil && !errors.Is(err, user.ErrAlreadyExists) {
			return errors.Wrapf(err, "seed user %s", u.Username)
		}
	}
	slog.Info("users seeded", slog.Int("count", len(seed.Users)))

	for _, c := range seed.Commodities {
		err := stores.Commodities.Create(ctx, &commodity.Commodity{
			ID:         c.ID,
			Name:       c.Name,
			ProviderID: c.ProviderID,
			Price:      c.Price,
			InStock:    c.InStock,
			Categories: c.Categories,
		})
		if err != nil {
			return errors.Wrapf(err, "seed commodity %d", c.ID)
		}
	}
	slog.Info("commodities seeded", slog.Int("count", len(seed.Commodities)))

	for _, d := range seed.Discounts {
		if err := stores.Discounts.Create(ctx, &discount.Discount{Code: d.Code, Amount: d.Amount}); err != nil {
			return errors.Wrapf(err, "seed discount %s", d.Code)
		}
	}
	slog.Info("discounts seeded", slog.Int("count", len(seed.Discounts)))

	if apiKey != "" {
		keys := postgres.NewAPIKeyStore(pool)
		err := keys.Upsert(ctx, &auth.APIKeyInfo{
			ID:      uuid.New().String(),
			KeyHash: auth.HashKey(apiKey, []byte(pepper)),
			Name:    "seed-admin",
			Scopes:  []string{"admin"},
		})
		if err != nil {
			return errors.Wrap(err, "seed api key")
		}
		slog.Info("admin api key seeded")
	}

	return nil
}
