package qa

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/podquote/podquote-backend/internal/domain/qa"
	"github.com/podquote/podquote-backend/internal/platform/dbctx"
	"github.com/podquote/podquote-backend/internal/platform/logger"
)

type QueryRepo interface {
	Create(dbc dbctx.Context, q *qa.Query) error
	GetByID(dbc dbctx.Context, id uuid.UUID) (*qa.Query, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, fields map[string]any) error
	ListRecent(dbc dbctx.Context, limit int) ([]qa.Query, error)
}

type queryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewQueryRepo(db *gorm.DB, log *logger.Logger) QueryRepo {
	return &queryRepo{db: db, log: log.With("repo", "qa.query")}
}

func (r *queryRepo) Create(dbc dbctx.Context, q *qa.Query) error {
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	if err := txx.WithContext(dbc.Ctx).Create(q).Error; err != nil {
		r.log.Error("create query failed", "error", err)
		return err
	}
	return nil
}

func (r *queryRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*qa.Query, error) {
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out qa.Query
	if err := txx.WithContext(dbc.Ctx).First(&out, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *queryRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, fields map[string]any) error {
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	if err := txx.WithContext(dbc.Ctx).
		Model(&qa.Query{}).
		Where("id = ?", id).
		Updates(fields).Error; err != nil {
		r.log.Error("update query failed", "query_id", id, "error", err)
		return err
	}
	return nil
}

func (r *queryRepo) ListRecent(dbc dbctx.Context, limit int) ([]qa.Query, error) {
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	if limit <= 0 {
		limit = 50
	}
	var out []qa.Query
	if err := txx.WithContext(dbc.Ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
