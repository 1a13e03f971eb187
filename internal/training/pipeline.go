package training

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/intentbot-backend/internal/config"
	"github.com/yungbote/intentbot-backend/internal/domain"
	"github.com/yungbote/intentbot-backend/internal/ml"
	"github.com/yungbote/intentbot-backend/internal/model"
	"github.com/yungbote/intentbot-backend/internal/nlp"
	pkgerrors "github.com/yungbote/intentbot-backend/internal/pkg/errors"
	"github.com/yungbote/intentbot-backend/internal/platform/logger"
	"github.com/yungbote/intentbot-backend/internal/repos"
)

// Pipeline runs one full batch retrain: extract the corpus, fit the
// classifier, evaluate on the held-out test partition, stage the
// artifact triple, record the run, clear the feedback backlog, commit
// the artifacts, and reload the registry. A run that fails before the
// history transaction leaves artifacts, history, and pending flags
// exactly as they were; artifacts become visible only after the run
// is recorded.
type Pipeline struct {
	db       *gorm.DB
	intents  repos.IntentRepo
	chatLogs repos.ChatLogRepo
	runs     repos.TrainingRunRepo
	registry *model.Registry
	cfg      config.ModelConfig
	log      *logger.Logger
}

func NewPipeline(
	db *gorm.DB,
	intents repos.IntentRepo,
	chatLogs repos.ChatLogRepo,
	runs repos.TrainingRunRepo,
	registry *model.Registry,
	cfg config.ModelConfig,
	baseLog *logger.Logger,
) *Pipeline {
	return &Pipeline{
		db:       db,
		intents:  intents,
		chatLogs: chatLogs,
		runs:     runs,
		registry: registry,
		cfg:      cfg,
		log:      baseLog.With("component", "TrainingPipeline"),
	}
}

// Run executes one training run and returns the recorded TrainingRun.
// Training itself is a long blocking call with no mid-run cancellation.
func (p *Pipeline) Run(ctx context.Context, epochs int, splitRatio string) (*domain.TrainingRun, error) {
	testFrac, valFrac, err := splitFractions(splitRatio)
	if err != nil {
		return nil, err
	}

	texts, tags, err := p.corpus(ctx)
	if err != nil {
		return nil, err
	}
	if len(texts) == 0 {
		return nil, fmt.Errorf("%w: no training patterns available", pkgerrors.ErrInsufficientData)
	}

	normalized := make([]string, len(texts))
	for i, t := range texts {
		normalized[i] = nlp.Normalize(t)
	}

	encoder := nlp.FitLabelEncoder(tags)
	if encoder.NumClasses() < 2 {
		return nil, fmt.Errorf("%w: need at least 2 intents, have %d", pkgerrors.ErrInsufficientData, encoder.NumClasses())
	}
	y, err := encoder.Transform(tags)
	if err != nil {
		return nil, fmt.Errorf("encode labels: %w", err)
	}

	tokenizer := nlp.FitTokenizer(normalized)
	X := tokenizer.EncodeAll(normalized, p.cfg.MaxSequenceLength)

	trainIdx, valIdx, testIdx := stratifiedSplit(y, encoder.NumClasses(), testFrac, valFrac, p.cfg.Seed)
	Xtrain, ytrain := gather(X, trainIdx), gather(y, trainIdx)
	Xval, yval := gather(X, valIdx), gather(y, valIdx)
	Xtest, ytest := gather(X, testIdx), gather(y, testIdx)

	p.log.Info("training started",
		"epochs", epochs,
		"split_ratio", splitRatio,
		"total_samples", len(X),
		"train_samples", len(Xtrain),
		"val_samples", len(Xval),
		"test_samples", len(Xtest),
		"num_classes", encoder.NumClasses(),
		"vocab_size", tokenizer.VocabSize())

	net := ml.NewNetwork(ml.Config{
		VocabSize:        tokenizer.VocabSize(),
		EmbeddingDim:     p.cfg.EmbeddingDim,
		LSTMUnits:        p.cfg.LSTMUnits,
		HiddenUnits:      p.cfg.HiddenUnits,
		NumClasses:       encoder.NumClasses(),
		DropoutRecurrent: p.cfg.DropoutRecurrent,
		DropoutHidden:    p.cfg.DropoutHidden,
		LearningRate:     p.cfg.LearningRate,
		BatchSize:        p.cfg.BatchSize,
		Patience:         p.cfg.Patience,
		Seed:             p.cfg.Seed,
	})

	fit, err := net.Fit(Xtrain, ytrain, Xval, yval, epochs)
	if err != nil {
		return nil, fmt.Errorf("fit: %w", err)
	}

	testLoss, testAcc := net.Evaluate(Xtest, ytest)
	yPred := net.PredictClasses(Xtest)
	confusion := ml.ConfusionMatrix(ytest, yPred, encoder.NumClasses())
	report := ml.ClassificationReport(ytest, yPred, encoder.Classes)

	staged, err := p.stageArtifacts(net, tokenizer, encoder)
	if err != nil {
		return nil, fmt.Errorf("stage artifacts: %w", err)
	}
	defer discardStaged(staged)

	confusionJSON, err := json.Marshal(confusion)
	if err != nil {
		return nil, fmt.Errorf("marshal confusion matrix: %w", err)
	}
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return nil, fmt.Errorf("marshal classification report: %w", err)
	}
	classesJSON, err := json.Marshal(encoder.Classes)
	if err != nil {
		return nil, fmt.Errorf("marshal class names: %w", err)
	}

	run := &domain.TrainingRun{
		EpochsRequested: epochs,
		EpochsRun:       fit.EpochsRun,
		SplitRatio:      splitRatio,
		BatchSize:       p.cfg.BatchSize,

		TotalSamples: len(X),
		TrainSamples: len(Xtrain),
		ValSamples:   len(Xval),
		TestSamples:  len(Xtest),
		NumClasses:   encoder.NumClasses(),

		TrainAccuracy: fit.TrainAcc,
		TrainLoss:     fit.TrainLoss,
		ValAccuracy:   fit.ValAcc,
		ValLoss:       fit.ValLoss,
		TestAccuracy:  testAcc,
		TestLoss:      testLoss,

		ConfusionMatrix:      confusionJSON,
		ClassificationReport: reportJSON,
		ClassNames:           classesJSON,

		TrainedAt: time.Now().UTC(),
	}

	var cleared int64
	err = p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := p.runs.Create(ctx, tx, run); err != nil {
			return fmt.Errorf("record training run: %w", err)
		}
		n, err := p.chatLogs.ClearAllPending(ctx, tx)
		if err != nil {
			return fmt.Errorf("clear pending flags: %w", err)
		}
		cleared = n
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := commitStaged(staged); err != nil {
		return nil, fmt.Errorf("commit artifacts: %w", err)
	}

	if err := p.registry.Reload(); err != nil {
		return nil, fmt.Errorf("reload model registry: %w", err)
	}

	p.log.Info("training finished",
		"run_id", run.ID,
		"epochs_run", fit.EpochsRun,
		"test_accuracy", testAcc,
		"test_loss", testLoss,
		"pending_cleared", cleared)
	return run, nil
}

// corpus extracts every (pattern text, intent tag) pair.
func (p *Pipeline) corpus(ctx context.Context) (texts, tags []string, err error) {
	intents, err := p.intents.ListAll(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("load intents: %w", err)
	}
	for _, intent := range intents {
		for _, pat := range intent.Patterns {
			texts = append(texts, pat.PatternText)
			tags = append(tags, intent.Tag)
		}
	}
	return texts, tags, nil
}

// stagedArtifact is one serialized artifact waiting to be committed.
type stagedArtifact struct {
	tmp   string
	final string
}

// stageArtifacts serializes the triple to temp files next to their
// final paths. Nothing becomes visible until commitStaged renames all
// three, after the run is recorded, so a failure anywhere in between
// leaves the previous generation fully intact.
func (p *Pipeline) stageArtifacts(net *ml.Network, tok *nlp.Tokenizer, enc *nlp.LabelEncoder) ([]stagedArtifact, error) {
	weightsJSON, err := net.MarshalWeights()
	if err != nil {
		return nil, err
	}
	tokJSON, err := json.Marshal(tok)
	if err != nil {
		return nil, fmt.Errorf("marshal tokenizer: %w", err)
	}
	encJSON, err := json.Marshal(enc)
	if err != nil {
		return nil, fmt.Errorf("marshal label encoder: %w", err)
	}

	if err := os.MkdirAll(p.cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create artifact dir: %w", err)
	}

	// Weights first: if a commit stops partway, the dir can hold new
	// weights with the old vocabulary, never the reverse.
	files := []struct {
		path string
		data []byte
	}{
		{p.cfg.WeightsPath(), weightsJSON},
		{p.cfg.TokenizerPath(), tokJSON},
		{p.cfg.EncoderPath(), encJSON},
	}

	staged := make([]stagedArtifact, 0, len(files))
	for _, f := range files {
		tmp := f.path + ".tmp"
		if err := os.WriteFile(tmp, f.data, 0o644); err != nil {
			discardStaged(staged)
			return nil, fmt.Errorf("stage %s: %w", filepath.Base(f.path), err)
		}
		staged = append(staged, stagedArtifact{tmp: tmp, final: f.path})
	}
	return staged, nil
}

func commitStaged(staged []stagedArtifact) error {
	for _, s := range staged {
		if err := os.Rename(s.tmp, s.final); err != nil {
			return fmt.Errorf("commit %s: %w", filepath.Base(s.final), err)
		}
	}
	return nil
}

func discardStaged(staged []stagedArtifact) {
	for _, s := range staged {
		os.Remove(s.tmp)
	}
}
