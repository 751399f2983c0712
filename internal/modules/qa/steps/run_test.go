package steps

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/podquote/podquote-backend/internal/data/repos"
	qarepos "github.com/podquote/podquote-backend/internal/data/repos/qa"
	"github.com/podquote/podquote-backend/internal/data/repos/testutil"
	qatypes "github.com/podquote/podquote-backend/internal/domain/qa"
	"github.com/podquote/podquote-backend/internal/platform/dbctx"
	"github.com/podquote/podquote-backend/internal/platform/logger"
)

type fakeGenerator struct {
	result map[string]any
	err    error
}

func (f *fakeGenerator) GenerateJSON(ctx context.Context, system, user, schemaName string, schema map[string]any) (map[string]any, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeClipper struct {
	failURL string
	calls   int
}

func (f *fakeClipper) RenderClip(ctx context.Context, mediaURL string, startSec, endSec float64) (string, error) {
	f.calls++
	if mediaURL == f.failURL {
		return "", errors.New("ffmpeg exited with status 1")
	}
	return "https://clips.example.com/" + uuid.NewString() + ".m4a", nil
}

func runTestDeps(t *testing.T, db *gorm.DB, searcher ChunkSearcher, gen Generator) RunDeps {
	t.Helper()
	log := logger.NewNop()
	return RunDeps{
		DB:        db,
		Log:       log,
		Embedder:  &fakeEmbedder{},
		Generator: gen,
		Searcher:  searcher,
		Queries:   qarepos.NewQueryRepo(db, log),
		Answers:   qarepos.NewAnswerRepo(db, log),
		Citations: qarepos.NewCitationRepo(db, log),
	}
}

func loadResult(t *testing.T, deps RunDeps, queryID uuid.UUID) (qatypes.Query, []qatypes.Answer, []qatypes.Citation) {
	t.Helper()
	dbc := dbctx.Context{Ctx: context.Background()}
	q, err := deps.Queries.GetByID(dbc, queryID)
	if err != nil {
		t.Fatalf("load query: %v", err)
	}
	answers, err := deps.Answers.ListByQueryID(dbc, queryID)
	if err != nil {
		t.Fatalf("load answers: %v", err)
	}
	ids := make([]uuid.UUID, 0, len(answers))
	for _, a := range answers {
		ids = append(ids, a.ID)
	}
	citations, err := deps.Citations.ListByAnswerIDs(dbc, ids)
	if err != nil {
		t.Fatalf("load citations: %v", err)
	}
	return *q, answers, citations
}

func searchHit(recID uuid.UUID, text, mediaURL string, start, end, sim float64) repos.ChunkHit {
	return repos.ChunkHit{
		ChunkID:        uuid.New(),
		RecordingID:    recID,
		StartSec:       start,
		EndSec:         end,
		Text:           text,
		Similarity:     sim,
		RecordingTitle: "Episode One",
		MediaURL:       mediaURL,
	}
}

func TestRunEmptyRetrievalPersistsFallbackAndSucceeds(t *testing.T) {
	db := testutil.OpenTestDB(t)
	query := testutil.SeedQuery(t, db, "anything about llamas?", qatypes.QueryModeGlobal, nil)

	deps := runTestDeps(t, db, &fakeSearcher{}, &fakeGenerator{})
	Run(context.Background(), deps, RunInput{QueryID: query.ID, Question: query.Text})

	q, answers, citations := loadResult(t, deps, query.ID)
	if q.Status != qatypes.QueryStatusSucceeded {
		t.Fatalf("status = %q, want succeeded", q.Status)
	}
	if len(answers) != 1 {
		t.Fatalf("got %d answers, want exactly 1 fallback", len(answers))
	}
	if answers[0].Text != FallbackNoMatchText {
		t.Fatalf("fallback text = %q", answers[0].Text)
	}
	if len(citations) != 0 {
		t.Fatalf("fallback answer has %d citations, want 0", len(citations))
	}
}

func TestRunProviderFailurePersistsStubAndFails(t *testing.T) {
	db := testutil.OpenTestDB(t)
	query := testutil.SeedQuery(t, db, "what did they say about pricing?", qatypes.QueryModeGlobal, nil)

	searcher := &fakeSearcher{hits: []repos.ChunkHit{
		searchHit(uuid.New(), "Pricing talk happened here. It was long.", "", 0, 60, 0.9),
	}}
	deps := runTestDeps(t, db, searcher, &fakeGenerator{err: errors.New("upstream 500")})
	Run(context.Background(), deps, RunInput{QueryID: query.ID, Question: query.Text})

	q, answers, _ := loadResult(t, deps, query.ID)
	if q.Status != qatypes.QueryStatusFailed {
		t.Fatalf("status = %q, want failed", q.Status)
	}
	if len(answers) != 1 || answers[0].Text != FallbackErrorText {
		t.Fatalf("expected single stub answer, got %+v", answers)
	}
}

func TestRunSchemaViolationIsProviderFailure(t *testing.T) {
	db := testutil.OpenTestDB(t)
	query := testutil.SeedQuery(t, db, "q", qatypes.QueryModeGlobal, nil)

	searcher := &fakeSearcher{hits: []repos.ChunkHit{
		searchHit(uuid.New(), "Some text here. More text.", "", 0, 60, 0.9),
	}}
	// Structurally valid JSON but an empty answers array violates the shape.
	deps := runTestDeps(t, db, searcher, &fakeGenerator{result: map[string]any{"answers": []any{}}})
	Run(context.Background(), deps, RunInput{QueryID: query.ID, Question: query.Text})

	q, answers, _ := loadResult(t, deps, query.ID)
	if q.Status != qatypes.QueryStatusFailed {
		t.Fatalf("status = %q, want failed", q.Status)
	}
	if len(answers) != 1 || answers[0].Text != FallbackErrorText {
		t.Fatalf("expected single stub answer, got %+v", answers)
	}
}

func TestRunPersistsAnswerWithContiguousRanks(t *testing.T) {
	db := testutil.OpenTestDB(t)
	query := testutil.SeedQuery(t, db, "what did the guest say about pricing?", qatypes.QueryModeGlobal, nil)

	recID := uuid.New()
	hits := []repos.ChunkHit{
		searchHit(recID, "We charge per seat today. That is simple.", "", 0, 60, 0.9),
		searchHit(recID, "Usage pricing confused buyers. We dropped it fast.", "", 60, 120, 0.8),
		searchHit(recID, "Discounts exist for annual contracts. Ask sales.", "", 120, 180, 0.7),
	}
	searcher := &fakeSearcher{hits: hits}

	// The second and third citations reference the same source; the
	// duplicate is dropped and ranks stay contiguous.
	gen := &fakeGenerator{result: map[string]any{
		"answers": []any{
			map[string]any{
				"text": "They charge per seat.",
				"citations": []any{
					map[string]any{"source_index": 1, "start_sec": 0, "end_sec": 60, "quote": "We charge per seat today.", "speaker_name": "Guest"},
					map[string]any{"source_index": 2, "start_sec": 60, "end_sec": 120, "quote": "Usage pricing confused buyers.", "speaker_name": "Guest"},
					map[string]any{"source_index": 2, "start_sec": 60, "end_sec": 120, "quote": "We dropped it fast.", "speaker_name": "Guest"},
				},
			},
		},
	}}

	deps := runTestDeps(t, db, searcher, gen)
	Run(context.Background(), deps, RunInput{QueryID: query.ID, Question: query.Text})

	q, answers, citations := loadResult(t, deps, query.ID)
	if q.Status != qatypes.QueryStatusSucceeded {
		t.Fatalf("status = %q, want succeeded", q.Status)
	}
	if len(answers) != 1 {
		t.Fatalf("got %d answers, want 1", len(answers))
	}
	if len(citations) != 2 {
		t.Fatalf("got %d citations, want 2 after dedupe", len(citations))
	}
	for i, c := range citations {
		if c.Rank != i {
			t.Fatalf("rank gap: citation %d has rank %d", i, c.Rank)
		}
		if c.RecordingID != recID {
			t.Fatalf("citation missing recording id")
		}
	}

	// Verbatim invariant over everything persisted.
	sourceByChunk := make(map[uuid.UUID]string)
	for _, h := range hits {
		sourceByChunk[h.ChunkID] = h.Text
	}
	for _, c := range citations {
		src := sourceByChunk[c.ChunkID]
		if !strings.Contains(normalizeQuote(src), normalizeQuote(c.Quote)) {
			t.Fatalf("citation quote %q not verbatim in source %q", c.Quote, src)
		}
	}
}

func TestRunClipFailureLeavesURLNull(t *testing.T) {
	db := testutil.OpenTestDB(t)
	query := testutil.SeedQuery(t, db, "q", qatypes.QueryModeGlobal, nil)

	recID := uuid.New()
	badURL := "https://cdn.example.com/broken.mp3"
	hits := []repos.ChunkHit{
		searchHit(recID, "First segment sentence here. Padding text.", "https://cdn.example.com/a.mp3", 0, 30, 0.9),
		searchHit(recID, "Second segment sentence here. Padding text.", badURL, 30, 60, 0.8),
		searchHit(recID, "Third segment sentence here. Padding text.", "https://cdn.example.com/c.mp3", 60, 90, 0.7),
	}
	searcher := &fakeSearcher{hits: hits}
	gen := &fakeGenerator{result: map[string]any{
		"answers": []any{
			map[string]any{
				"text": "All three segments.",
				"citations": []any{
					map[string]any{"source_index": 1, "start_sec": 0, "end_sec": 30, "quote": "First segment sentence here.", "speaker_name": ""},
					map[string]any{"source_index": 2, "start_sec": 30, "end_sec": 60, "quote": "Second segment sentence here.", "speaker_name": ""},
					map[string]any{"source_index": 3, "start_sec": 60, "end_sec": 90, "quote": "Third segment sentence here.", "speaker_name": ""},
				},
			},
		},
	}}

	clipper := &fakeClipper{failURL: badURL}
	deps := runTestDeps(t, db, searcher, gen)
	deps.Clips = clipper
	Run(context.Background(), deps, RunInput{QueryID: query.ID, Question: query.Text})

	q, _, citations := loadResult(t, deps, query.ID)
	if q.Status != qatypes.QueryStatusSucceeded {
		t.Fatalf("status = %q, want succeeded", q.Status)
	}
	if len(citations) != 3 {
		t.Fatalf("got %d citations, want 3", len(citations))
	}
	if clipper.calls != 3 {
		t.Fatalf("clipper called %d times, want 3", clipper.calls)
	}
	withClip := 0
	for _, c := range citations {
		if c.ClipURL != nil && *c.ClipURL != "" {
			withClip++
		}
	}
	if withClip != 2 {
		t.Fatalf("%d citations have clip urls, want 2", withClip)
	}
}
