package services

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/intentbot-backend/internal/domain"
	pkgerrors "github.com/yungbote/intentbot-backend/internal/pkg/errors"
	"github.com/yungbote/intentbot-backend/internal/platform/dbctx"
	"github.com/yungbote/intentbot-backend/internal/platform/logger"
	"github.com/yungbote/intentbot-backend/internal/repos"
)

// IntentInput is the payload for creating an intent. Create requires at
// least one pattern and one response.
type IntentInput struct {
	Tag       string   `json:"tag"`
	Patterns  []string `json:"patterns"`
	Responses []string `json:"responses"`
}

// IntentUpdate is a partial update. Nil fields are left untouched; a
// non-nil Patterns or Responses replaces the whole child set.
type IntentUpdate struct {
	Tag       *string   `json:"tag"`
	Patterns  *[]string `json:"patterns"`
	Responses *[]string `json:"responses"`
}

// ExchangeIntent and ExchangeDocument form the JSON dataset exchange
// shape used by import and export.
type ExchangeIntent struct {
	Tag       string   `json:"tag"`
	Patterns  []string `json:"patterns"`
	Responses []string `json:"responses"`
}

type ExchangeDocument struct {
	Intents []ExchangeIntent `json:"intents"`
}

type DatasetService interface {
	Create(dc dbctx.Context, input IntentInput) (*domain.Intent, error)
	Get(dc dbctx.Context, id uuid.UUID) (*domain.Intent, error)
	List(dc dbctx.Context) ([]*domain.Intent, error)
	Update(dc dbctx.Context, id uuid.UUID, update IntentUpdate) (*domain.Intent, error)
	Delete(dc dbctx.Context, id uuid.UUID) error
	AddPattern(dc dbctx.Context, intentID uuid.UUID, patternText string) (*domain.Pattern, error)
	Import(dc dbctx.Context, doc ExchangeDocument) (int, error)
	Export(dc dbctx.Context) (ExchangeDocument, error)
}

type datasetService struct {
	db        *gorm.DB
	intents   repos.IntentRepo
	patterns  repos.PatternRepo
	responses repos.ResponseRepo
	log       *logger.Logger
}

func NewDatasetService(
	db *gorm.DB,
	intents repos.IntentRepo,
	patterns repos.PatternRepo,
	responses repos.ResponseRepo,
	baseLog *logger.Logger,
) DatasetService {
	return &datasetService{
		db:        db,
		intents:   intents,
		patterns:  patterns,
		responses: responses,
		log:       baseLog.With("service", "DatasetService"),
	}
}

func (s *datasetService) Create(dc dbctx.Context, input IntentInput) (*domain.Intent, error) {
	tag := strings.TrimSpace(input.Tag)
	if tag == "" {
		return nil, fmt.Errorf("%w: tag must not be empty", pkgerrors.ErrInvalidArgument)
	}
	if len(input.Patterns) == 0 {
		return nil, fmt.Errorf("%w: at least one pattern is required", pkgerrors.ErrInvalidArgument)
	}
	if len(input.Responses) == 0 {
		return nil, fmt.Errorf("%w: at least one response is required", pkgerrors.ErrInvalidArgument)
	}

	var created *domain.Intent
	err := s.runInTx(dc, func(tx *gorm.DB) error {
		exists, err := s.intents.TagExists(dc.Ctx, tx, tag, nil)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("%w: %q", pkgerrors.ErrDuplicateTag, tag)
		}
		intent, err := s.intents.Create(dc.Ctx, tx, &domain.Intent{Tag: tag})
		if err != nil {
			return err
		}
		if err := s.insertChildren(dc, tx, intent.ID, input.Patterns, input.Responses); err != nil {
			return err
		}
		created = intent
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.intents.GetByID(dc.Ctx, dc.Tx, created.ID)
}

func (s *datasetService) Get(dc dbctx.Context, id uuid.UUID) (*domain.Intent, error) {
	return s.intents.GetByID(dc.Ctx, dc.Tx, id)
}

func (s *datasetService) List(dc dbctx.Context) ([]*domain.Intent, error) {
	return s.intents.ListAll(dc.Ctx, dc.Tx)
}

func (s *datasetService) Update(dc dbctx.Context, id uuid.UUID, update IntentUpdate) (*domain.Intent, error) {
	err := s.runInTx(dc, func(tx *gorm.DB) error {
		intent, err := s.intents.GetByID(dc.Ctx, tx, id)
		if err != nil {
			return err
		}

		if update.Tag != nil {
			tag := strings.TrimSpace(*update.Tag)
			if tag == "" {
				return fmt.Errorf("%w: tag must not be empty", pkgerrors.ErrInvalidArgument)
			}
			if tag != intent.Tag {
				exists, err := s.intents.TagExists(dc.Ctx, tx, tag, &id)
				if err != nil {
					return err
				}
				if exists {
					return fmt.Errorf("%w: %q", pkgerrors.ErrDuplicateTag, tag)
				}
				if err := s.intents.UpdateTag(dc.Ctx, tx, id, tag); err != nil {
					return err
				}
			}
		}

		if update.Patterns != nil {
			if len(*update.Patterns) == 0 {
				return fmt.Errorf("%w: at least one pattern is required", pkgerrors.ErrInvalidArgument)
			}
			if err := s.patterns.DeleteByIntentID(dc.Ctx, tx, id); err != nil {
				return err
			}
			if err := s.insertChildren(dc, tx, id, *update.Patterns, nil); err != nil {
				return err
			}
		}

		if update.Responses != nil {
			if len(*update.Responses) == 0 {
				return fmt.Errorf("%w: at least one response is required", pkgerrors.ErrInvalidArgument)
			}
			if err := s.responses.DeleteByIntentID(dc.Ctx, tx, id); err != nil {
				return err
			}
			if err := s.insertChildren(dc, tx, id, nil, *update.Responses); err != nil {
				return err
			}
		}

		return s.intents.Touch(dc.Ctx, tx, id)
	})
	if err != nil {
		return nil, err
	}
	return s.intents.GetByID(dc.Ctx, dc.Tx, id)
}

func (s *datasetService) Delete(dc dbctx.Context, id uuid.UUID) error {
	return s.runInTx(dc, func(tx *gorm.DB) error {
		if _, err := s.intents.GetByID(dc.Ctx, tx, id); err != nil {
			return err
		}
		if err := s.patterns.DeleteByIntentID(dc.Ctx, tx, id); err != nil {
			return err
		}
		if err := s.responses.DeleteByIntentID(dc.Ctx, tx, id); err != nil {
			return err
		}
		return s.intents.Delete(dc.Ctx, tx, id)
	})
}

func (s *datasetService) AddPattern(dc dbctx.Context, intentID uuid.UUID, patternText string) (*domain.Pattern, error) {
	text := strings.TrimSpace(patternText)
	if text == "" {
		return nil, fmt.Errorf("%w: pattern text must not be empty", pkgerrors.ErrInvalidArgument)
	}

	var created *domain.Pattern
	err := s.runInTx(dc, func(tx *gorm.DB) error {
		if _, err := s.intents.GetByID(dc.Ctx, tx, intentID); err != nil {
			return err
		}
		patterns, err := s.patterns.Create(dc.Ctx, tx, []*domain.Pattern{{IntentID: intentID, PatternText: text}})
		if err != nil {
			return err
		}
		created = patterns[0]
		return s.intents.Touch(dc.Ctx, tx, intentID)
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *datasetService) Import(dc dbctx.Context, doc ExchangeDocument) (int, error) {
	inserted := 0
	err := s.runInTx(dc, func(tx *gorm.DB) error {
		for _, item := range doc.Intents {
			tag := strings.TrimSpace(item.Tag)
			if tag == "" {
				return fmt.Errorf("%w: import document contains an empty tag", pkgerrors.ErrInvalidArgument)
			}
			exists, err := s.intents.TagExists(dc.Ctx, tx, tag, nil)
			if err != nil {
				return err
			}
			if exists {
				continue
			}
			intent, err := s.intents.Create(dc.Ctx, tx, &domain.Intent{Tag: tag})
			if err != nil {
				return err
			}
			if err := s.insertChildren(dc, tx, intent.ID, item.Patterns, item.Responses); err != nil {
				return err
			}
			inserted++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	s.log.Info("dataset import finished", "inserted", inserted, "offered", len(doc.Intents))
	return inserted, nil
}

func (s *datasetService) Export(dc dbctx.Context) (ExchangeDocument, error) {
	intents, err := s.intents.ListAll(dc.Ctx, dc.Tx)
	if err != nil {
		return ExchangeDocument{}, err
	}
	doc := ExchangeDocument{Intents: make([]ExchangeIntent, 0, len(intents))}
	for _, intent := range intents {
		item := ExchangeIntent{
			Tag:       intent.Tag,
			Patterns:  make([]string, 0, len(intent.Patterns)),
			Responses: make([]string, 0, len(intent.Responses)),
		}
		for _, p := range intent.Patterns {
			item.Patterns = append(item.Patterns, p.PatternText)
		}
		for _, r := range intent.Responses {
			item.Responses = append(item.Responses, r.ResponseText)
		}
		doc.Intents = append(doc.Intents, item)
	}
	return doc, nil
}

// insertChildren batch-inserts pattern and response rows for one intent.
func (s *datasetService) insertChildren(dc dbctx.Context, tx *gorm.DB, intentID uuid.UUID, patternTexts, responseTexts []string) error {
	if len(patternTexts) > 0 {
		patterns := make([]*domain.Pattern, 0, len(patternTexts))
		for _, t := range patternTexts {
			patterns = append(patterns, &domain.Pattern{IntentID: intentID, PatternText: t})
		}
		if _, err := s.patterns.Create(dc.Ctx, tx, patterns); err != nil {
			return err
		}
	}
	if len(responseTexts) > 0 {
		responses := make([]*domain.Response, 0, len(responseTexts))
		for _, t := range responseTexts {
			responses = append(responses, &domain.Response{IntentID: intentID, ResponseText: t})
		}
		if _, err := s.responses.Create(dc.Ctx, tx, responses); err != nil {
			return err
		}
	}
	return nil
}

// runInTx reuses a caller-supplied transaction when one is present.
func (s *datasetService) runInTx(dc dbctx.Context, fn func(tx *gorm.DB) error) error {
	if dc.Tx != nil {
		return fn(dc.Tx)
	}
	return s.db.WithContext(dc.Ctx).Transaction(fn)
}
