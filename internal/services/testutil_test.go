package services

import (
	"context"
	"path/filepath"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/yungbote/intentbot-backend/internal/db"
	"github.com/yungbote/intentbot-backend/internal/platform/dbctx"
	"github.com/yungbote/intentbot-backend/internal/platform/logger"
	"github.com/yungbote/intentbot-backend/internal/repos"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrateAll(gdb); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return gdb
}

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	return log
}

type testEnv struct {
	db  *gorm.DB
	log *logger.Logger

	intents   repos.IntentRepo
	patterns  repos.PatternRepo
	responses repos.ResponseRepo
	chatLogs  repos.ChatLogRepo
	runs      repos.TrainingRunRepo
	users     repos.UserRepo
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gdb := newTestDB(t)
	log := newTestLogger(t)
	return &testEnv{
		db:  gdb,
		log: log,

		intents:   repos.NewIntentRepo(gdb, log),
		patterns:  repos.NewPatternRepo(gdb, log),
		responses: repos.NewResponseRepo(gdb, log),
		chatLogs:  repos.NewChatLogRepo(gdb, log),
		runs:      repos.NewTrainingRunRepo(gdb, log),
		users:     repos.NewUserRepo(gdb, log),
	}
}

func testDC() dbctx.Context {
	return dbctx.Context{Ctx: context.Background()}
}
