// Command planseed seeds or repairs the subscription plan catalog. The seed is
// idempotent; re-running leaves exactly the four canonical tiers.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"stratplan/internal/adapter/repo"
	"stratplan/internal/domain"
)

func main() {
	var (
		databaseURLFlag string
		listFlag        bool
	)

	flag.StringVar(&databaseURLFlag, "database-url", "", "database URL (defaults to DATABASE_URL)")
	flag.BoolVar(&listFlag, "list", false, "print the catalog after seeding")
	flag.Parse()

	_ = godotenv.Load()

	dbURL := strings.TrimSpace(databaseURLFlag)
	if dbURL == "" {
		dbURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	}
	if dbURL == "" {
		exitWithError(errors.New("DATABASE_URL is required"))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		exitWithError(fmt.Errorf("failed to connect database: %w", err))
	}
	defer pool.Close()

	plans := repo.NewPlanRepository(pool)
	if err := plans.Seed(ctx, domain.CatalogTiers()); err != nil {
		exitWithError(fmt.Errorf("failed to seed plan catalog: %w", err))
	}
	fmt.Println("plan catalog seeded")

	if listFlag {
		tiers, err := plans.List(ctx)
		if err != nil {
			exitWithError(fmt.Errorf("failed to list plans: %w", err))
		}
		for _, tier := range tiers {
			fmt.Printf("%-14s projects=%d actions=%d details=%d\n",
				tier.Name, tier.MaxProjects, tier.MaxActions, tier.MaxDetails)
		}
	}
}

func exitWithError(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
