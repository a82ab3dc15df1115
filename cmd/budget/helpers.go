package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/robertromore/budget-sub019/internal/config"
	"github.com/robertromore/budget-sub019/internal/model"
	"github.com/robertromore/budget-sub019/internal/service"
	"github.com/robertromore/budget-sub019/internal/storage"
)

// initStorage opens the configured database and applies migrations.
func initStorage(ctx context.Context) (service.Storage, error) {
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = config.DefaultDatabasePath
	}
	dbPath = config.ExpandPath(dbPath)

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// parsePatternTypes converts a comma-separated flag value into pattern
// types, rejecting unknown names.
func parsePatternTypes(value string) ([]model.PatternType, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}

	var types []model.PatternType
	for _, part := range strings.Split(value, ",") {
		pt, err := model.ParsePatternType(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		types = append(types, pt)
	}
	return types, nil
}

// truncateString shortens a string for table display.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
