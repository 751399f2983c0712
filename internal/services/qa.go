package services

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/podquote/podquote-backend/internal/data/repos"
	catalogtypes "github.com/podquote/podquote-backend/internal/domain/catalog"
	qatypes "github.com/podquote/podquote-backend/internal/domain/qa"
	"github.com/podquote/podquote-backend/internal/modules/qa/steps"
	"github.com/podquote/podquote-backend/internal/platform/catalog"
	"github.com/podquote/podquote-backend/internal/platform/dbctx"
	"github.com/podquote/podquote-backend/internal/platform/logger"
	mediaclip "github.com/podquote/podquote-backend/internal/platform/media"
)

var (
	ErrEmptyQuestion     = errors.New("question text is required")
	ErrInvalidMode       = errors.New("mode must be global or episode")
	ErrMissingRecording  = errors.New("episode mode requires recording_id")
	ErrRecordingNotFound = errors.New("recording not found")
)

type AskInput struct {
	Question    string
	Mode        string
	RecordingID *uuid.UUID
	Style       string
}

// CitationView is a persisted citation joined with its recording metadata
// for the polling read model.
type CitationView struct {
	qatypes.Citation
	RecordingTitle string `json:"recording_title,omitempty"`
	MediaURL       string `json:"media_url,omitempty"`
}

type AnswerView struct {
	qatypes.Answer
	Citations []CitationView `json:"citations"`
}

type QueryView struct {
	qatypes.Query
	Answers []AnswerView `json:"answers"`
}

type QAService interface {
	Ask(ctx context.Context, in AskInput) (*qatypes.Query, error)
	GetByID(ctx context.Context, id uuid.UUID) (*QueryView, error)
	ListRecent(ctx context.Context, limit int) ([]qatypes.Query, error)
}

type QADeps struct {
	DB  *gorm.DB
	Log *logger.Logger

	Scheduler TaskScheduler

	Embedder  steps.Embedder
	Generator steps.Generator

	Queries    repos.QueryRepo
	Answers    repos.AnswerRepo
	Citations  repos.CitationRepo
	Recordings repos.RecordingRepo
	Chunks     repos.TranscriptChunkRepo

	Clips   mediaclip.ClipRenderer
	Streams catalog.StreamResolver

	RetrieveLimit int
	MaxAnswers    int
	// SimilarityThreshold overrides the per-style retrieval defaults when
	// positive.
	SimilarityThreshold float64
	BoostTerms          []string
}

type qaService struct {
	deps QADeps
	log  *logger.Logger
}

func NewQAService(deps QADeps) QAService {
	return &qaService{deps: deps, log: deps.Log.With("service", "qa")}
}

// Ask persists a queued query, schedules the pipeline run and returns
// immediately. The caller polls GetByID for the result.
func (s *qaService) Ask(ctx context.Context, in AskInput) (*qatypes.Query, error) {
	question := strings.TrimSpace(in.Question)
	if question == "" {
		return nil, ErrEmptyQuestion
	}

	mode := strings.TrimSpace(in.Mode)
	if mode == "" {
		mode = qatypes.QueryModeGlobal
	}
	switch mode {
	case qatypes.QueryModeGlobal:
		in.RecordingID = nil
	case qatypes.QueryModeEpisode:
		if in.RecordingID == nil || *in.RecordingID == uuid.Nil {
			return nil, ErrMissingRecording
		}
		if _, err := s.deps.Recordings.GetByID(dbctx.Context{Ctx: ctx}, *in.RecordingID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrRecordingNotFound
			}
			return nil, err
		}
	default:
		return nil, ErrInvalidMode
	}

	style := in.Style
	if style != steps.StyleQuotes {
		style = steps.StyleCoached
	}

	q := qatypes.Query{
		ID:          uuid.New(),
		Text:        question,
		Mode:        mode,
		RecordingID: in.RecordingID,
		Status:      qatypes.QueryStatusQueued,
	}
	if err := s.deps.Queries.Create(dbctx.Context{Ctx: ctx}, &q); err != nil {
		return nil, err
	}

	runDeps := steps.RunDeps{
		DB:        s.deps.DB,
		Log:       s.log,
		Embedder:  s.deps.Embedder,
		Generator: s.deps.Generator,
		Searcher:  s.deps.Chunks,
		Queries:   s.deps.Queries,
		Answers:   s.deps.Answers,
		Citations: s.deps.Citations,
		Clips:     s.deps.Clips,
		Streams:   s.deps.Streams,
	}
	runIn := steps.RunInput{
		QueryID:     q.ID,
		Question:    q.Text,
		RecordingID: q.RecordingID,
		Style:       style,
		Limit:       s.deps.RetrieveLimit,
		Threshold:   s.deps.SimilarityThreshold,
		MaxAnswers:  s.deps.MaxAnswers,
		BoostTerms:  s.deps.BoostTerms,
	}
	s.deps.Scheduler.Submit(func(ctx context.Context) {
		steps.Run(ctx, runDeps, runIn)
	})

	return &q, nil
}

func (s *qaService) GetByID(ctx context.Context, id uuid.UUID) (*QueryView, error) {
	dbc := dbctx.Context{Ctx: ctx}

	q, err := s.deps.Queries.GetByID(dbc, id)
	if err != nil {
		return nil, err
	}
	answers, err := s.deps.Answers.ListByQueryID(dbc, id)
	if err != nil {
		return nil, err
	}

	answerIDs := make([]uuid.UUID, 0, len(answers))
	for _, a := range answers {
		answerIDs = append(answerIDs, a.ID)
	}
	citations, err := s.deps.Citations.ListByAnswerIDs(dbc, answerIDs)
	if err != nil {
		return nil, err
	}

	recordings := s.fetchRecordings(ctx, citations)

	byAnswer := make(map[uuid.UUID][]CitationView, len(answers))
	for _, c := range citations {
		view := CitationView{Citation: c}
		if rec, ok := recordings[c.RecordingID]; ok {
			view.RecordingTitle = rec.Title
			view.MediaURL = rec.MediaURL
		}
		byAnswer[c.AnswerID] = append(byAnswer[c.AnswerID], view)
	}

	out := &QueryView{Query: *q, Answers: make([]AnswerView, 0, len(answers))}
	for _, a := range answers {
		views := byAnswer[a.ID]
		if views == nil {
			views = []CitationView{}
		}
		out.Answers = append(out.Answers, AnswerView{Answer: a, Citations: views})
	}
	return out, nil
}

// fetchRecordings loads metadata concurrently per distinct recording and
// memoizes within the request. Lookup failures degrade to unenriched
// citations.
func (s *qaService) fetchRecordings(ctx context.Context, citations []qatypes.Citation) map[uuid.UUID]catalogtypes.Recording {
	distinct := make(map[uuid.UUID]bool)
	for _, c := range citations {
		if c.RecordingID != uuid.Nil {
			distinct[c.RecordingID] = true
		}
	}
	out := make(map[uuid.UUID]catalogtypes.Recording, len(distinct))
	if len(distinct) == 0 {
		return out
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for recID := range distinct {
		recID := recID
		g.Go(func() error {
			rec, err := s.deps.Recordings.GetByID(dbctx.Context{Ctx: gctx}, recID)
			if err != nil {
				s.log.Warn("recording metadata lookup failed", "recording_id", recID, "error", err)
				return nil
			}
			mu.Lock()
			out[recID] = *rec
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func (s *qaService) ListRecent(ctx context.Context, limit int) ([]qatypes.Query, error) {
	return s.deps.Queries.ListRecent(dbctx.Context{Ctx: ctx}, limit)
}
