package services

import (
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/intentbot-backend/internal/config"
	"github.com/yungbote/intentbot-backend/internal/domain"
	"github.com/yungbote/intentbot-backend/internal/model"
	pkgerrors "github.com/yungbote/intentbot-backend/internal/pkg/errors"
)

func emptyModelConfig(t *testing.T) config.ModelConfig {
	t.Helper()
	return config.ModelConfig{
		Dir:               t.TempDir(),
		WeightsFile:       "weights.json",
		TokenizerFile:     "tokenizer.json",
		EncoderFile:       "label_encoder.json",
		MaxSequenceLength: 10,
	}
}

// newChatService wires a chat service against an empty artifact dir, so
// the registry reports unavailable.
func newChatService(t *testing.T) (*testEnv, ChatService, DatasetService) {
	t.Helper()
	env := newTestEnv(t)
	cfg := emptyModelConfig(t)
	registry := model.NewRegistry(cfg, env.log)
	chat := NewChatService(env.db, env.intents, env.patterns, env.chatLogs, registry, cfg, env.log)
	dataset := NewDatasetService(env.db, env.intents, env.patterns, env.responses, env.log)
	return env, chat, dataset
}

func TestClassifyFallsBackWhenModelUnavailable(t *testing.T) {
	env, chat, _ := newChatService(t)

	result, err := chat.Classify(testDC(), "anything")
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if result.Reply != FallbackReply {
		t.Fatalf("reply: want fallback got %q", result.Reply)
	}
	if result.Intent != nil {
		t.Fatalf("intent should be nil, got %q", *result.Intent)
	}
	if result.Confidence == nil || *result.Confidence != 0 {
		t.Fatalf("confidence should be zero, got %v", result.Confidence)
	}

	// The turn is still logged.
	var logs []*domain.ChatLog
	if err := env.db.Find(&logs).Error; err != nil {
		t.Fatalf("load logs: %v", err)
	}
	if len(logs) != 1 {
		t.Fatalf("want 1 chat log, got %d", len(logs))
	}
	if logs[0].UserMessage != "anything" || logs[0].BotResponse != FallbackReply {
		t.Fatalf("unexpected log: %+v", logs[0])
	}
}

func TestClassifyEmptyMessage(t *testing.T) {
	env, chat, _ := newChatService(t)

	if _, err := chat.Classify(testDC(), "   "); !errors.Is(err, pkgerrors.ErrInvalidArgument) {
		t.Fatalf("want ErrInvalidArgument got %v", err)
	}
	var count int64
	if err := env.db.Model(&domain.ChatLog{}).Count(&count).Error; err != nil {
		t.Fatalf("count logs: %v", err)
	}
	if count != 0 {
		t.Fatalf("rejected message should not be logged, got %d logs", count)
	}
}

func TestClassifyKnownPatternNeverFlagged(t *testing.T) {
	_, chat, dataset := newChatService(t)

	if _, err := dataset.Create(testDC(), greetingInput()); err != nil {
		t.Fatalf("Create intent: %v", err)
	}

	// Case differs from the stored pattern "hello".
	if _, err := chat.Classify(testDC(), "HELLO"); err != nil {
		t.Fatalf("Classify: %v", err)
	}

	pending, err := chat.ListPending(testDC())
	if err != nil {
		t.Fatalf("ListPending: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("trained pattern must not queue as new data, got %d pending", len(pending))
	}
}

func TestClassifyDuplicateQueuesOnce(t *testing.T) {
	_, chat, _ := newChatService(t)

	if _, err := chat.Classify(testDC(), "how do I reset my password"); err != nil {
		t.Fatalf("first Classify: %v", err)
	}
	if _, err := chat.Classify(testDC(), "How do I reset my PASSWORD"); err != nil {
		t.Fatalf("second Classify: %v", err)
	}

	pending, err := chat.ListPending(testDC())
	if err != nil {
		t.Fatalf("ListPending: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("identical repeats must queue once, got %d pending", len(pending))
	}
	if pending[0].UserMessage != "how do I reset my password" {
		t.Fatalf("first writer should own the queue entry, got %q", pending[0].UserMessage)
	}
}

func TestPromote(t *testing.T) {
	env, chat, dataset := newChatService(t)

	intent, err := dataset.Create(testDC(), greetingInput())
	if err != nil {
		t.Fatalf("Create intent: %v", err)
	}
	if _, err := chat.Classify(testDC(), "yo yo yo"); err != nil {
		t.Fatalf("Classify: %v", err)
	}
	pending, err := chat.ListPending(testDC())
	if err != nil {
		t.Fatalf("ListPending: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("want 1 pending log, got %d", len(pending))
	}

	if err := chat.Promote(testDC(), pending[0].ID, intent.ID, "yo yo yo"); err != nil {
		t.Fatalf("Promote: %v", err)
	}

	updated, err := dataset.Get(testDC(), intent.ID)
	if err != nil {
		t.Fatalf("Get intent: %v", err)
	}
	found := false
	for _, p := range updated.Patterns {
		if p.PatternText == "yo yo yo" {
			found = true
		}
	}
	if !found {
		t.Fatalf("promoted pattern missing from intent")
	}

	var log domain.ChatLog
	if err := env.db.First(&log, "id = ?", pending[0].ID).Error; err != nil {
		t.Fatalf("load log: %v", err)
	}
	if log.IsNewData {
		t.Fatalf("promoted log should no longer be pending")
	}
}

func TestPromoteFailureKeepsFlag(t *testing.T) {
	env, chat, _ := newChatService(t)

	if _, err := chat.Classify(testDC(), "unresolved question"); err != nil {
		t.Fatalf("Classify: %v", err)
	}
	pending, err := chat.ListPending(testDC())
	if err != nil {
		t.Fatalf("ListPending: %v", err)
	}

	// Nonexistent intent: the pattern insert side must fail and the
	// flag must stay set.
	if err := chat.Promote(testDC(), pending[0].ID, uuid.New(), "unresolved question"); !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Fatalf("want ErrNotFound got %v", err)
	}

	var log domain.ChatLog
	if err := env.db.First(&log, "id = ?", pending[0].ID).Error; err != nil {
		t.Fatalf("load log: %v", err)
	}
	if !log.IsNewData {
		t.Fatalf("failed promote must leave the pending flag set")
	}
}

func TestPromoteEmptyPattern(t *testing.T) {
	_, chat, _ := newChatService(t)
	if err := chat.Promote(testDC(), uuid.New(), uuid.New(), "  "); !errors.Is(err, pkgerrors.ErrInvalidArgument) {
		t.Fatalf("want ErrInvalidArgument got %v", err)
	}
}
