package services

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/yungbote/intentbot-backend/internal/domain"
	pkgerrors "github.com/yungbote/intentbot-backend/internal/pkg/errors"
	"github.com/yungbote/intentbot-backend/internal/platform/dbctx"
	"github.com/yungbote/intentbot-backend/internal/platform/logger"
	"github.com/yungbote/intentbot-backend/internal/repos"
	"github.com/yungbote/intentbot-backend/internal/training"
)

// DefaultSplitRatio is used when the caller does not pick one.
const DefaultSplitRatio = "70:30"

// TrainResult is the outcome of one training request. Failed runs carry
// a message and no metrics; the previous artifacts and history are left
// untouched.
type TrainResult struct {
	Success bool                `json:"success"`
	Message string              `json:"message"`
	Metrics *domain.TrainingRun `json:"metrics,omitempty"`
}

type TrainingService interface {
	Train(dc dbctx.Context, epochs int, splitRatio string) (*TrainResult, error)
	History(dc dbctx.Context) ([]*domain.TrainingRun, error)
	Get(dc dbctx.Context, id uuid.UUID) (*domain.TrainingRun, error)
	Delete(dc dbctx.Context, id uuid.UUID) error
}

type trainingService struct {
	pipeline *training.Pipeline
	runs     repos.TrainingRunRepo
	log      *logger.Logger
}

func NewTrainingService(pipeline *training.Pipeline, runs repos.TrainingRunRepo, baseLog *logger.Logger) TrainingService {
	return &trainingService{
		pipeline: pipeline,
		runs:     runs,
		log:      baseLog.With("service", "TrainingService"),
	}
}

// Train validates the request, then runs the pipeline. Pipeline errors
// and panics become failed results rather than propagating; validation
// errors are returned before any side effect.
func (s *trainingService) Train(dc dbctx.Context, epochs int, splitRatio string) (result *TrainResult, err error) {
	if epochs <= 0 {
		return nil, fmt.Errorf("%w: epochs must be positive, got %d", pkgerrors.ErrInvalidArgument, epochs)
	}
	if splitRatio == "" {
		splitRatio = DefaultSplitRatio
	}
	if splitRatio != "70:30" && splitRatio != "80:20" {
		return nil, fmt.Errorf("%w: split ratio %q (want 70:30 or 80:20)", pkgerrors.ErrInvalidArgument, splitRatio)
	}

	defer func() {
		if r := recover(); r != nil {
			s.log.Error("training panicked", "panic", r)
			result = &TrainResult{Success: false, Message: fmt.Sprintf("training failed: %v", r)}
			err = nil
		}
	}()

	run, runErr := s.pipeline.Run(dc.Ctx, epochs, splitRatio)
	if runErr != nil {
		s.log.Error("training failed", "error", runErr)
		return &TrainResult{Success: false, Message: fmt.Sprintf("training failed: %v", runErr)}, nil
	}

	msg := fmt.Sprintf("training finished: %d/%d epochs, test accuracy %.4f",
		run.EpochsRun, run.EpochsRequested, run.TestAccuracy)
	return &TrainResult{Success: true, Message: msg, Metrics: run}, nil
}

func (s *trainingService) History(dc dbctx.Context) ([]*domain.TrainingRun, error) {
	return s.runs.ListAll(dc.Ctx, dc.Tx)
}

func (s *trainingService) Get(dc dbctx.Context, id uuid.UUID) (*domain.TrainingRun, error) {
	return s.runs.GetByID(dc.Ctx, dc.Tx, id)
}

func (s *trainingService) Delete(dc dbctx.Context, id uuid.UUID) error {
	return s.runs.Delete(dc.Ctx, dc.Tx, id)
}
