package persistence

import (
	"context"
	"testing"

	"go.uber.org/zap"
)

func TestRunMigrationsWithoutPool(t *testing.T) {
	if err := RunMigrations(context.Background(), nil, zap.NewNop()); err != nil {
		t.Fatalf("nil pool should skip migrations, got %v", err)
	}
}
