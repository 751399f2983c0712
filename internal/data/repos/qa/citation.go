package qa

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/podquote/podquote-backend/internal/domain/qa"
	"github.com/podquote/podquote-backend/internal/platform/dbctx"
	"github.com/podquote/podquote-backend/internal/platform/logger"
)

type CitationRepo interface {
	CreateBatch(dbc dbctx.Context, rows []qa.Citation) error
	ListByAnswerIDs(dbc dbctx.Context, answerIDs []uuid.UUID) ([]qa.Citation, error)
	SetClipURL(dbc dbctx.Context, id uuid.UUID, clipURL string) error
}

type citationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCitationRepo(db *gorm.DB, log *logger.Logger) CitationRepo {
	return &citationRepo{db: db, log: log.With("repo", "qa.citation")}
}

func (r *citationRepo) CreateBatch(dbc dbctx.Context, rows []qa.Citation) error {
	if len(rows) == 0 {
		return nil
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	for i := range rows {
		if rows[i].ID == uuid.Nil {
			rows[i].ID = uuid.New()
		}
	}
	if err := txx.WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		r.log.Error("create citations failed", "answer_id", rows[0].AnswerID, "count", len(rows), "error", err)
		return err
	}
	return nil
}

func (r *citationRepo) ListByAnswerIDs(dbc dbctx.Context, answerIDs []uuid.UUID) ([]qa.Citation, error) {
	if len(answerIDs) == 0 {
		return nil, nil
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out []qa.Citation
	if err := txx.WithContext(dbc.Ctx).
		Where("answer_id IN ?", answerIDs).
		Order("answer_id, rank ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// SetClipURL is best-effort post-persistence enrichment. Callers treat a
// failure as non-fatal: the citation row stays valid with a null clip_url.
func (r *citationRepo) SetClipURL(dbc dbctx.Context, id uuid.UUID, clipURL string) error {
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	if err := txx.WithContext(dbc.Ctx).
		Model(&qa.Citation{}).
		Where("id = ?", id).
		Update("clip_url", clipURL).Error; err != nil {
		r.log.Warn("set clip url failed", "citation_id", id, "error", err)
		return err
	}
	return nil
}
