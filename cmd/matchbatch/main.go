package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/moai-app/moai-backend/internal/config"
	"github.com/moai-app/moai-backend/internal/domain"
	"github.com/moai-app/moai-backend/internal/infrastructure/container"
	"github.com/moai-app/moai-backend/internal/usecase/batch"
)

// matchbatch runs one weekly generation pass over every matchable user.
// It is meant to be invoked by cron; re-running it for the same week is
// harmless.
func main() {
	var (
		week    = flag.String("week", "", "batch week key (YYYY-MM-DD), defaults to today in UTC")
		timeout = flag.Duration("timeout", 30*time.Minute, "overall run deadline")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	app, err := container.NewContainer(cfg)
	if err != nil {
		fmt.Printf("Failed to initialize application: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		if err := app.Close(); err != nil {
			fmt.Printf("Error closing application: %v\n", err)
		}
	}()

	batchWeek := *week
	if batchWeek == "" {
		batchWeek = batch.BatchWeekKey(time.Now())
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	userIDs, err := app.ProfileRepo.ListMatchableUserIDs(ctx)
	if err != nil {
		fmt.Printf("Failed to list matchable users: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Batch %s: %d matchable users\n", batchWeek, len(userIDs))

	var created, skipped, failed, ineligible int
	for _, userID := range userIDs {
		result, err := app.BatchUseCase.GenerateWeeklyMatches(ctx, userID, batchWeek)
		if err != nil {
			// Users mid-onboarding are expected in the pool scan.
			if errors.Is(err, domain.ErrMissingPrerequisite) {
				ineligible++
				continue
			}
			fmt.Printf("Batch failed for user %s: %v\n", userID, err)
			failed++
			continue
		}
		created += len(result.Created)
		skipped += result.Skipped
		failed += len(result.Failed)
	}

	fmt.Printf("Batch %s done: created=%d skipped=%d failed=%d ineligible=%d\n",
		batchWeek, created, skipped, failed, ineligible)

	if failed > 0 {
		os.Exit(1)
	}
}
