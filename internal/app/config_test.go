package app

import (
	"testing"

	"github.com/podquote/podquote-backend/internal/platform/logger"
)

func TestLoadConfigSimilarityThreshold(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("QA_SIMILARITY_THRESHOLD", "0.42")
	cfg := LoadConfig(logger.NewNop())
	if cfg.SimilarityThreshold != 0.42 {
		t.Fatalf("SimilarityThreshold = %v, want 0.42", cfg.SimilarityThreshold)
	}
}

func TestLoadConfigSimilarityThresholdUnset(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("QA_SIMILARITY_THRESHOLD", "")
	cfg := LoadConfig(logger.NewNop())
	if cfg.SimilarityThreshold != 0 {
		t.Fatalf("SimilarityThreshold = %v, want 0 (per-style defaults)", cfg.SimilarityThreshold)
	}
}
