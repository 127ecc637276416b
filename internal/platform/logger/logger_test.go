package logger_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rotekit/rote/internal/platform/logger"
)

func TestContextCarriesLogger(t *testing.T) {
	attached := slog.Default().With(slog.String("component", "test"))

	ctx := logger.WithLogger(context.Background(), attached)
	assert.Same(t, attached, logger.FromContext(ctx))
	assert.Same(t, attached, logger.FromContextOrDefault(ctx, nil))
}

func TestFromContextFallsBack(t *testing.T) {
	ctx := context.Background()

	assert.Same(t, slog.Default(), logger.FromContext(ctx))

	fallback := slog.Default().With(slog.String("component", "fallback"))
	assert.Same(t, fallback, logger.FromContextOrDefault(ctx, fallback))
	assert.Same(t, slog.Default(), logger.FromContextOrDefault(ctx, nil))
}
