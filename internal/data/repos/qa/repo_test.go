package qa

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/podquote/podquote-backend/internal/data/repos/testutil"
	qatypes "github.com/podquote/podquote-backend/internal/domain/qa"
	"github.com/podquote/podquote-backend/internal/platform/dbctx"
	"github.com/podquote/podquote-backend/internal/platform/logger"
)

func TestQueryRepoLifecycle(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewQueryRepo(db, logger.NewNop())
	dbc := dbctx.Context{Ctx: context.Background()}

	q := qatypes.Query{Text: "what about growth?", Mode: qatypes.QueryModeGlobal, Status: qatypes.QueryStatusQueued}
	if err := repo.Create(dbc, &q); err != nil {
		t.Fatalf("create: %v", err)
	}
	if q.ID == uuid.Nil {
		t.Fatalf("create did not assign an id")
	}

	if err := repo.UpdateFields(dbc, q.ID, map[string]any{"status": qatypes.QueryStatusRunning}); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err := repo.GetByID(dbc, q.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != qatypes.QueryStatusRunning {
		t.Fatalf("status = %q, want running", got.Status)
	}
	if got.Text != q.Text {
		t.Fatalf("text roundtrip mismatch: %q", got.Text)
	}
}

func TestCitationRepoBatchAndClipURL(t *testing.T) {
	db := testutil.OpenTestDB(t)
	citations := NewCitationRepo(db, logger.NewNop())
	dbc := dbctx.Context{Ctx: context.Background()}

	query := testutil.SeedQuery(t, db, "q", qatypes.QueryModeGlobal, nil)
	answer := testutil.SeedAnswer(t, db, query.ID, "an answer")

	recID := uuid.New()
	rows := []qatypes.Citation{
		{AnswerID: answer.ID, ChunkID: uuid.New(), RecordingID: recID, StartSec: 10, EndSec: 20, Rank: 0, Quote: "first"},
		{AnswerID: answer.ID, ChunkID: uuid.New(), RecordingID: recID, StartSec: 30, EndSec: 40, Rank: 1, Quote: "second"},
	}
	if err := citations.CreateBatch(dbc, rows); err != nil {
		t.Fatalf("create batch: %v", err)
	}

	listed, err := citations.ListByAnswerIDs(dbc, []uuid.UUID{answer.ID})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(listed) != 2 {
		t.Fatalf("got %d citations, want 2", len(listed))
	}
	if listed[0].Rank != 0 || listed[1].Rank != 1 {
		t.Fatalf("citations not ordered by rank")
	}
	if listed[0].ClipURL != nil {
		t.Fatalf("fresh citation has a clip url")
	}

	if err := citations.SetClipURL(dbc, listed[0].ID, "https://clips.example.com/x.m4a"); err != nil {
		t.Fatalf("set clip url: %v", err)
	}
	listed, err = citations.ListByAnswerIDs(dbc, []uuid.UUID{answer.ID})
	if err != nil {
		t.Fatalf("relist: %v", err)
	}
	if listed[0].ClipURL == nil || *listed[0].ClipURL == "" {
		t.Fatalf("clip url not persisted")
	}
	if listed[1].ClipURL != nil {
		t.Fatalf("clip url leaked onto the wrong row")
	}
}

func TestCitationRepoEmptyInputs(t *testing.T) {
	db := testutil.OpenTestDB(t)
	citations := NewCitationRepo(db, logger.NewNop())
	dbc := dbctx.Context{Ctx: context.Background()}

	if err := citations.CreateBatch(dbc, nil); err != nil {
		t.Fatalf("empty batch: %v", err)
	}
	rows, err := citations.ListByAnswerIDs(dbc, nil)
	if err != nil || rows != nil {
		t.Fatalf("empty list: rows=%v err=%v", rows, err)
	}
}
