package catalog

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/podquote/podquote-backend/internal/domain/catalog"
	"github.com/podquote/podquote-backend/internal/platform/dbctx"
	"github.com/podquote/podquote-backend/internal/platform/logger"
)

type RecordingRepo interface {
	GetByID(dbc dbctx.Context, id uuid.UUID) (*catalog.Recording, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) (map[uuid.UUID]catalog.Recording, error)
	List(dbc dbctx.Context, limit, offset int) ([]catalog.Recording, error)
}

type recordingRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRecordingRepo(db *gorm.DB, log *logger.Logger) RecordingRepo {
	return &recordingRepo{db: db, log: log.With("repo", "catalog.recording")}
}

func (r *recordingRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*catalog.Recording, error) {
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out catalog.Recording
	if err := txx.WithContext(dbc.Ctx).First(&out, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *recordingRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) (map[uuid.UUID]catalog.Recording, error) {
	out := make(map[uuid.UUID]catalog.Recording, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var rows []catalog.Recording
	if err := txx.WithContext(dbc.Ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.ID] = row
	}
	return out, nil
}

func (r *recordingRepo) List(dbc dbctx.Context, limit, offset int) ([]catalog.Recording, error) {
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	var out []catalog.Recording
	if err := txx.WithContext(dbc.Ctx).
		Order("published_at DESC NULLS LAST, created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
