package model

import (
	"encoding/json"
	"errors"
	"os"
	"testing"

	"github.com/yungbote/intentbot-backend/internal/config"
	"github.com/yungbote/intentbot-backend/internal/ml"
	"github.com/yungbote/intentbot-backend/internal/nlp"
	pkgerrors "github.com/yungbote/intentbot-backend/internal/pkg/errors"
	"github.com/yungbote/intentbot-backend/internal/platform/logger"
)

func testModelConfig(t *testing.T) config.ModelConfig {
	t.Helper()
	return config.ModelConfig{
		Dir:           t.TempDir(),
		WeightsFile:   "weights.json",
		TokenizerFile: "tokenizer.json",
		EncoderFile:   "label_encoder.json",
	}
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	return log
}

func writeArtifacts(t *testing.T, cfg config.ModelConfig) {
	t.Helper()
	net := ml.NewNetwork(ml.Config{
		VocabSize:    3,
		EmbeddingDim: 4,
		LSTMUnits:    4,
		HiddenUnits:  4,
		NumClasses:   2,
		LearningRate: 0.01,
		BatchSize:    2,
		Seed:         42,
	})
	if err := net.SaveWeights(cfg.WeightsPath()); err != nil {
		t.Fatalf("SaveWeights: %v", err)
	}

	tok := nlp.FitTokenizer([]string{"hi there friend"})
	tokJSON, err := json.Marshal(tok)
	if err != nil {
		t.Fatalf("marshal tokenizer: %v", err)
	}
	if err := os.WriteFile(cfg.TokenizerPath(), tokJSON, 0o644); err != nil {
		t.Fatalf("write tokenizer: %v", err)
	}

	enc := nlp.FitLabelEncoder([]string{"greeting", "goodbye"})
	encJSON, err := json.Marshal(enc)
	if err != nil {
		t.Fatalf("marshal encoder: %v", err)
	}
	if err := os.WriteFile(cfg.EncoderPath(), encJSON, 0o644); err != nil {
		t.Fatalf("write encoder: %v", err)
	}
}

func TestActiveUnavailableWithoutArtifacts(t *testing.T) {
	reg := NewRegistry(testModelConfig(t), testLogger(t))
	if _, err := reg.Active(); !errors.Is(err, pkgerrors.ErrArtifactUnavailable) {
		t.Fatalf("want ErrArtifactUnavailable, got %v", err)
	}
	// Still unavailable on repeated use.
	if _, err := reg.Active(); !errors.Is(err, pkgerrors.ErrArtifactUnavailable) {
		t.Fatalf("want ErrArtifactUnavailable on second call, got %v", err)
	}
}

func TestActiveLazyLoadsArtifacts(t *testing.T) {
	cfg := testModelConfig(t)
	writeArtifacts(t, cfg)

	reg := NewRegistry(cfg, testLogger(t))
	snap, err := reg.Active()
	if err != nil {
		t.Fatalf("Active: %v", err)
	}
	if snap.Network == nil || snap.Tokenizer == nil || snap.Encoder == nil {
		t.Fatalf("snapshot should carry all three artifacts: %+v", snap)
	}
	if got := snap.Encoder.NumClasses(); got != 2 {
		t.Fatalf("NumClasses: want=2 got=%d", got)
	}
}

func TestReloadFailureEntersUnavailableState(t *testing.T) {
	cfg := testModelConfig(t)
	writeArtifacts(t, cfg)

	reg := NewRegistry(cfg, testLogger(t))
	if _, err := reg.Active(); err != nil {
		t.Fatalf("Active: %v", err)
	}

	// Corrupt one artifact: the registry must not keep serving the old
	// generation after a failed reload.
	if err := os.WriteFile(cfg.TokenizerPath(), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("corrupt tokenizer: %v", err)
	}
	if err := reg.Reload(); err == nil {
		t.Fatalf("Reload with corrupt artifact should fail")
	}
	if _, err := reg.Active(); !errors.Is(err, pkgerrors.ErrArtifactUnavailable) {
		t.Fatalf("want ErrArtifactUnavailable after failed reload, got %v", err)
	}
}

func TestReloadRejectsMixedGenerations(t *testing.T) {
	cfg := testModelConfig(t)
	writeArtifacts(t, cfg)

	// A tokenizer from a different run, with a vocabulary the stored
	// network was never trained on.
	tok := nlp.FitTokenizer([]string{"a much bigger corpus with many more words"})
	tokJSON, err := json.Marshal(tok)
	if err != nil {
		t.Fatalf("marshal tokenizer: %v", err)
	}
	if err := os.WriteFile(cfg.TokenizerPath(), tokJSON, 0o644); err != nil {
		t.Fatalf("write tokenizer: %v", err)
	}

	reg := NewRegistry(cfg, testLogger(t))
	if err := reg.Reload(); err == nil {
		t.Fatalf("Reload with mismatched vocabulary should fail")
	}
	if _, err := reg.Active(); !errors.Is(err, pkgerrors.ErrArtifactUnavailable) {
		t.Fatalf("want ErrArtifactUnavailable for mixed artifacts, got %v", err)
	}
}

func TestReloadRecoversAfterRepair(t *testing.T) {
	cfg := testModelConfig(t)
	reg := NewRegistry(cfg, testLogger(t))
	if err := reg.Reload(); err == nil {
		t.Fatalf("Reload without artifacts should fail")
	}

	writeArtifacts(t, cfg)
	if err := reg.Reload(); err != nil {
		t.Fatalf("Reload after writing artifacts: %v", err)
	}
	if _, err := reg.Active(); err != nil {
		t.Fatalf("Active after recovery: %v", err)
	}
}
