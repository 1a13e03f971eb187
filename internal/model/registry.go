package model

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/yungbote/intentbot-backend/internal/config"
	"github.com/yungbote/intentbot-backend/internal/ml"
	"github.com/yungbote/intentbot-backend/internal/nlp"
	pkgerrors "github.com/yungbote/intentbot-backend/internal/pkg/errors"
	"github.com/yungbote/intentbot-backend/internal/platform/logger"
)

// Snapshot is one immutable generation of the artifact triple. All
// three fields were written by the same training run; readers never see
// a mix of generations.
type Snapshot struct {
	Network   *ml.Network
	Tokenizer *nlp.Tokenizer
	Encoder   *nlp.LabelEncoder
}

// Registry holds the active snapshot behind a reader-writer lock.
// Inference takes the read lock and copies the snapshot pointer;
// Reload takes the write lock and swaps the whole triple at once.
type Registry struct {
	cfg config.ModelConfig
	log *logger.Logger

	mu      sync.RWMutex
	loaded  bool
	snap    *Snapshot
	loadErr error
}

func NewRegistry(cfg config.ModelConfig, baseLog *logger.Logger) *Registry {
	return &Registry{cfg: cfg, log: baseLog.With("component", "ModelRegistry")}
}

// Active returns the current snapshot, loading lazily on first use.
// When no usable artifacts exist it returns ErrArtifactUnavailable.
func (r *Registry) Active() (*Snapshot, error) {
	r.mu.RLock()
	if r.loaded {
		snap, loadErr := r.snap, r.loadErr
		r.mu.RUnlock()
		if snap == nil {
			return nil, fmt.Errorf("%w: %v", pkgerrors.ErrArtifactUnavailable, loadErr)
		}
		return snap, nil
	}
	r.mu.RUnlock()

	if err := r.Reload(); err != nil {
		return nil, fmt.Errorf("%w: %v", pkgerrors.ErrArtifactUnavailable, err)
	}

	r.mu.RLock()
	snap := r.snap
	r.mu.RUnlock()
	return snap, nil
}

// Reload discards the in-memory snapshot and loads all three artifacts
// from disk. On any failure the registry stays in an explicit
// unavailable state rather than keeping the previous generation.
func (r *Registry) Reload() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.loaded = true
	r.snap = nil
	r.loadErr = nil

	net, err := ml.LoadWeights(r.cfg.WeightsPath())
	if err != nil {
		r.loadErr = fmt.Errorf("load weights: %w", err)
		r.log.Warn("model reload failed", "error", r.loadErr)
		return r.loadErr
	}
	tok, err := loadTokenizer(r.cfg.TokenizerPath())
	if err != nil {
		r.loadErr = fmt.Errorf("load tokenizer: %w", err)
		r.log.Warn("model reload failed", "error", r.loadErr)
		return r.loadErr
	}
	enc, err := loadEncoder(r.cfg.EncoderPath())
	if err != nil {
		r.loadErr = fmt.Errorf("load label encoder: %w", err)
		r.log.Warn("model reload failed", "error", r.loadErr)
		return r.loadErr
	}

	// The three artifacts must come from the same run; a vocabulary or
	// class count that disagrees with the network dimensions means the
	// generations are mixed.
	if tok.VocabSize() != net.Cfg.VocabSize || enc.NumClasses() != net.Cfg.NumClasses {
		r.loadErr = fmt.Errorf("artifact mismatch: tokenizer vocab %d / encoder classes %d vs network %d/%d",
			tok.VocabSize(), enc.NumClasses(), net.Cfg.VocabSize, net.Cfg.NumClasses)
		r.log.Warn("model reload failed", "error", r.loadErr)
		return r.loadErr
	}

	r.snap = &Snapshot{Network: net, Tokenizer: tok, Encoder: enc}
	r.log.Info("model reloaded",
		"vocab_size", tok.VocabSize(),
		"num_classes", enc.NumClasses())
	return nil
}

func loadTokenizer(path string) (*nlp.Tokenizer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var tok nlp.Tokenizer
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, err
	}
	if len(tok.WordIndex) == 0 {
		return nil, fmt.Errorf("tokenizer at %s has an empty word index", path)
	}
	return &tok, nil
}

func loadEncoder(path string) (*nlp.LabelEncoder, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var enc nlp.LabelEncoder
	if err := json.Unmarshal(data, &enc); err != nil {
		return nil, err
	}
	if enc.NumClasses() == 0 {
		return nil, fmt.Errorf("label encoder at %s has no classes", path)
	}
	return &enc, nil
}
