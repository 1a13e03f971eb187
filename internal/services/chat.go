package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/intentbot-backend/internal/config"
	"github.com/yungbote/intentbot-backend/internal/domain"
	"github.com/yungbote/intentbot-backend/internal/model"
	"github.com/yungbote/intentbot-backend/internal/nlp"
	pkgerrors "github.com/yungbote/intentbot-backend/internal/pkg/errors"
	"github.com/yungbote/intentbot-backend/internal/platform/dbctx"
	"github.com/yungbote/intentbot-backend/internal/platform/logger"
	"github.com/yungbote/intentbot-backend/internal/repos"
)

// FallbackReply is returned whenever no intent can be matched or the
// model registry has no usable artifacts.
const FallbackReply = "Maaf, saya belum memahami pertanyaan tersebut."

// ClassifyResult is the outcome of one classification call. Intent is
// nil when the model is unavailable; the predicted tag is surfaced even
// when the reply falls back, so the feedback loop can use it.
type ClassifyResult struct {
	Reply      string   `json:"reply"`
	Intent     *string  `json:"intent"`
	Confidence *float64 `json:"confidence"`
}

type ChatService interface {
	Classify(dc dbctx.Context, message string) (*ClassifyResult, error)
	History(dc dbctx.Context, limit, offset int) ([]*domain.ChatLog, int64, error)
	ListPending(dc dbctx.Context) ([]*domain.ChatLog, error)
	Promote(dc dbctx.Context, logID, intentID uuid.UUID, patternText string) error
}

type chatService struct {
	db       *gorm.DB
	intents  repos.IntentRepo
	patterns repos.PatternRepo
	chatLogs repos.ChatLogRepo
	registry *model.Registry
	cfg      config.ModelConfig
	log      *logger.Logger
}

func NewChatService(
	db *gorm.DB,
	intents repos.IntentRepo,
	patterns repos.PatternRepo,
	chatLogs repos.ChatLogRepo,
	registry *model.Registry,
	cfg config.ModelConfig,
	baseLog *logger.Logger,
) ChatService {
	return &chatService{
		db:       db,
		intents:  intents,
		patterns: patterns,
		chatLogs: chatLogs,
		registry: registry,
		cfg:      cfg,
		log:      baseLog.With("service", "ChatService"),
	}
}

// Classify normalizes and classifies one message, picks the reply, and
// appends a ChatLog regardless of the match outcome. An unavailable
// registry degrades to the fallback reply instead of failing the call.
func (s *chatService) Classify(dc dbctx.Context, message string) (*ClassifyResult, error) {
	if strings.TrimSpace(message) == "" {
		return nil, fmt.Errorf("%w: message must not be empty", pkgerrors.ErrInvalidArgument)
	}

	result := &ClassifyResult{Reply: FallbackReply}

	snap, err := s.registry.Active()
	switch {
	case errors.Is(err, pkgerrors.ErrArtifactUnavailable):
		zero := 0.0
		result.Confidence = &zero
		s.log.Warn("classification degraded, no model loaded", "error", err)
	case err != nil:
		return nil, err
	default:
		tag, confidence := s.predict(snap, message)
		result.Intent = &tag
		result.Confidence = &confidence

		intent, err := s.intents.GetByTag(dc.Ctx, dc.Tx, tag)
		if err != nil && !errors.Is(err, pkgerrors.ErrNotFound) {
			return nil, err
		}
		if intent != nil && len(intent.Responses) > 0 {
			result.Reply = intent.Responses[0].ResponseText
		}
	}

	isNew, err := s.isNewData(dc, message)
	if err != nil {
		return nil, err
	}
	chatLog := &domain.ChatLog{
		UserMessage: message,
		BotResponse: result.Reply,
		IntentTag:   result.Intent,
		Confidence:  result.Confidence,
		IsNewData:   isNew,
	}
	if _, err := s.chatLogs.Create(dc.Ctx, dc.Tx, chatLog); err != nil {
		return nil, fmt.Errorf("append chat log: %w", err)
	}
	return result, nil
}

func (s *chatService) predict(snap *model.Snapshot, message string) (tag string, confidence float64) {
	ids := snap.Tokenizer.Encode(nlp.Normalize(message), s.cfg.MaxSequenceLength)
	probs := snap.Network.Predict(ids)
	best := 0
	for i, p := range probs {
		if p > probs[best] {
			best = i
		}
	}
	tag, _ = snap.Encoder.Inverse(best)
	return tag, probs[best]
}

// isNewData flags a message for review only when it matches neither a
// trained pattern nor an already-pending log, case-insensitively.
func (s *chatService) isNewData(dc dbctx.Context, message string) (bool, error) {
	known, err := s.patterns.ExistsTextFold(dc.Ctx, dc.Tx, message)
	if err != nil {
		return false, err
	}
	if known {
		return false, nil
	}
	pending, err := s.chatLogs.PendingTextExistsFold(dc.Ctx, dc.Tx, message)
	if err != nil {
		return false, err
	}
	return !pending, nil
}

func (s *chatService) History(dc dbctx.Context, limit, offset int) ([]*domain.ChatLog, int64, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.chatLogs.List(dc.Ctx, dc.Tx, limit, offset)
}

func (s *chatService) ListPending(dc dbctx.Context) ([]*domain.ChatLog, error) {
	return s.chatLogs.ListPending(dc.Ctx, dc.Tx)
}

// Promote appends patternText to the chosen intent and clears the log's
// pending flag as one transaction. If the pattern insert fails the flag
// stays set.
func (s *chatService) Promote(dc dbctx.Context, logID, intentID uuid.UUID, patternText string) error {
	text := strings.TrimSpace(patternText)
	if text == "" {
		return fmt.Errorf("%w: pattern text must not be empty", pkgerrors.ErrInvalidArgument)
	}

	run := func(tx *gorm.DB) error {
		if _, err := s.chatLogs.GetByID(dc.Ctx, tx, logID); err != nil {
			return fmt.Errorf("chat log %s: %w", logID, err)
		}
		if _, err := s.intents.GetByID(dc.Ctx, tx, intentID); err != nil {
			return fmt.Errorf("intent %s: %w", intentID, err)
		}
		if _, err := s.patterns.Create(dc.Ctx, tx, []*domain.Pattern{{IntentID: intentID, PatternText: text}}); err != nil {
			return err
		}
		if err := s.intents.Touch(dc.Ctx, tx, intentID); err != nil {
			return err
		}
		return s.chatLogs.SetNewData(dc.Ctx, tx, logID, false)
	}
	if dc.Tx != nil {
		return run(dc.Tx)
	}
	return s.db.WithContext(dc.Ctx).Transaction(run)
}
