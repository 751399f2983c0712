package qa

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/podquote/podquote-backend/internal/domain/qa"
	"github.com/podquote/podquote-backend/internal/platform/dbctx"
	"github.com/podquote/podquote-backend/internal/platform/logger"
)

type AnswerRepo interface {
	Create(dbc dbctx.Context, a *qa.Answer) error
	ListByQueryID(dbc dbctx.Context, queryID uuid.UUID) ([]qa.Answer, error)
}

type answerRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAnswerRepo(db *gorm.DB, log *logger.Logger) AnswerRepo {
	return &answerRepo{db: db, log: log.With("repo", "qa.answer")}
}

func (r *answerRepo) Create(dbc dbctx.Context, a *qa.Answer) error {
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if err := txx.WithContext(dbc.Ctx).Create(a).Error; err != nil {
		r.log.Error("create answer failed", "query_id", a.QueryID, "error", err)
		return err
	}
	return nil
}

func (r *answerRepo) ListByQueryID(dbc dbctx.Context, queryID uuid.UUID) ([]qa.Answer, error) {
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out []qa.Answer
	if err := txx.WithContext(dbc.Ctx).
		Where("query_id = ?", queryID).
		Order("created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
