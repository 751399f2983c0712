package steps

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	qarepos "github.com/podquote/podquote-backend/internal/data/repos/qa"
	qatypes "github.com/podquote/podquote-backend/internal/domain/qa"
	"github.com/podquote/podquote-backend/internal/platform/catalog"
	"github.com/podquote/podquote-backend/internal/platform/dbctx"
	"github.com/podquote/podquote-backend/internal/platform/logger"
	mediaclip "github.com/podquote/podquote-backend/internal/platform/media"
)

// Fixed fallback texts. Tests and clients match on these verbatim.
const (
	FallbackNoMatchText = "No direct quote found for this question in the available transcripts. Try rephrasing, or ask about a different topic."
	FallbackErrorText   = "Sorry, something went wrong while answering this question. Please try again in a moment."
)

const (
	DefaultThresholdCoached = 0.5
	DefaultThresholdQuotes  = 0.2
	DefaultRetrieveLimit    = 10
	DefaultMaxAnswers       = 3
	maxConcurrentClips      = 4
)

type RunDeps struct {
	DB  *gorm.DB
	Log *logger.Logger

	Embedder  Embedder
	Generator Generator
	Searcher  ChunkSearcher

	Queries   qarepos.QueryRepo
	Answers   qarepos.AnswerRepo
	Citations qarepos.CitationRepo

	// Optional. Nil disables clip rendering entirely.
	Clips   mediaclip.ClipRenderer
	Streams catalog.StreamResolver
}

type RunInput struct {
	QueryID     uuid.UUID
	Question    string
	RecordingID *uuid.UUID

	Style      string
	Limit      int
	Threshold  float64
	MaxAnswers int
	BoostTerms []string
}

type clipJob struct {
	citationID uuid.UUID
	mediaURL   string
	startSec   float64
	endSec     float64
}

// Run executes the whole pipeline for one query: retrieve, generate,
// verify, map, persist, then render clips. It is invoked as a deferred
// background task after the triggering request has already returned, so
// every failure past this point resolves into persisted rows rather than
// an error to a caller.
func Run(ctx context.Context, deps RunDeps, in RunInput) {
	log := deps.Log.With("query_id", in.QueryID, "style", in.Style)

	in = applyRunDefaults(in)
	setStatus(ctx, deps, log, in.QueryID, qatypes.QueryStatusRunning, nil)

	segments, trace, err := Retrieve(ctx, RetrieveDeps{Log: log, Embedder: deps.Embedder, Searcher: deps.Searcher}, RetrieveInput{
		Question:    in.Question,
		RecordingID: in.RecordingID,
		Limit:       in.Limit,
		Threshold:   in.Threshold,
	})
	if err != nil {
		log.Error("retrieval failed", "error", err)
		persistFallback(ctx, deps, log, in.QueryID, FallbackErrorText)
		setStatus(ctx, deps, log, in.QueryID, qatypes.QueryStatusFailed, trace)
		return
	}
	if len(segments) == 0 {
		log.Info("no segments cleared threshold", "threshold", in.Threshold)
		persistFallback(ctx, deps, log, in.QueryID, FallbackNoMatchText)
		setStatus(ctx, deps, log, in.QueryID, qatypes.QueryStatusSucceeded, trace)
		return
	}

	evidence, index := BuildEvidenceBlock(segments, segmentCharBudget(in.Style))
	candidates, err := Generate(ctx, GenerateDeps{Generator: deps.Generator}, GenerateInput{
		Style:      in.Style,
		Question:   in.Question,
		Evidence:   evidence,
		MaxAnswers: in.MaxAnswers,
	})
	if err != nil {
		log.Error("generation failed", "error", err)
		persistFallback(ctx, deps, log, in.QueryID, FallbackErrorText)
		setStatus(ctx, deps, log, in.QueryID, qatypes.QueryStatusFailed, trace)
		return
	}

	var jobs []clipJob
	persisted := 0
	repairedTotal := 0
	for _, cand := range candidates {
		mapped := MapCitations(log, MapCitationsInput{
			Style:      in.Style,
			Candidates: cand.Citations,
			Index:      index,
			Segments:   segments,
			BoostTerms: in.BoostTerms,
		})
		for _, mc := range mapped {
			if mc.Repaired {
				repairedTotal++
			}
		}

		text := renderAnswerText(in.Style, cand.Text, mapped)
		answerJobs, err := persistAnswer(ctx, deps, in.QueryID, text, mapped)
		if err != nil {
			log.Error("answer persistence failed", "error", err)
			continue
		}
		persisted++
		jobs = append(jobs, answerJobs...)
	}

	trace["answers"] = persisted
	trace["repaired_quotes"] = repairedTotal

	if persisted == 0 {
		persistFallback(ctx, deps, log, in.QueryID, FallbackErrorText)
		setStatus(ctx, deps, log, in.QueryID, qatypes.QueryStatusFailed, trace)
		return
	}
	setStatus(ctx, deps, log, in.QueryID, qatypes.QueryStatusSucceeded, trace)

	renderClips(ctx, deps, log, jobs)
}

func applyRunDefaults(in RunInput) RunInput {
	if in.Style == "" {
		in.Style = StyleCoached
	}
	if in.Limit <= 0 {
		in.Limit = DefaultRetrieveLimit
	}
	if in.Threshold <= 0 {
		if in.Style == StyleQuotes {
			in.Threshold = DefaultThresholdQuotes
		} else {
			in.Threshold = DefaultThresholdCoached
		}
	}
	if in.MaxAnswers <= 0 || in.MaxAnswers > 5 {
		in.MaxAnswers = DefaultMaxAnswers
	}
	return in
}

// persistAnswer writes one answer and its citations as a single unit. Ranks
// are contiguous from zero in generation order.
func persistAnswer(ctx context.Context, deps RunDeps, queryID uuid.UUID, text string, mapped []MappedCitation) ([]clipJob, error) {
	answer := qatypes.Answer{ID: uuid.New(), QueryID: queryID, Text: text}
	rows := make([]qatypes.Citation, 0, len(mapped))
	jobs := make([]clipJob, 0, len(mapped))
	for rank, mc := range mapped {
		row := qatypes.Citation{
			ID:          uuid.New(),
			AnswerID:    answer.ID,
			ChunkID:     mc.Segment.ChunkID,
			RecordingID: mc.Segment.RecordingID,
			StartSec:    mc.StartSec,
			EndSec:      mc.EndSec,
			Rank:        rank,
			Quote:       mc.Quote,
			SpeakerName: mc.SpeakerName,
		}
		rows = append(rows, row)
		if mc.Segment.MediaURL != "" {
			jobs = append(jobs, clipJob{
				citationID: row.ID,
				mediaURL:   mc.Segment.MediaURL,
				startSec:   mc.StartSec,
				endSec:     mc.EndSec,
			})
		}
	}

	err := deps.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		if err := deps.Answers.Create(dbc, &answer); err != nil {
			return err
		}
		return deps.Citations.CreateBatch(dbc, rows)
	})
	if err != nil {
		return nil, err
	}
	return jobs, nil
}

func persistFallback(ctx context.Context, deps RunDeps, log *logger.Logger, queryID uuid.UUID, text string) {
	answer := qatypes.Answer{ID: uuid.New(), QueryID: queryID, Text: text}
	if err := deps.Answers.Create(dbctx.Context{Ctx: ctx}, &answer); err != nil {
		log.Error("fallback answer persistence failed", "error", err)
	}
}

// setStatus is best-effort. Answer rows are the authoritative result;
// status is a convenience signal for polling clients, so a failed write is
// logged and swallowed.
func setStatus(ctx context.Context, deps RunDeps, log *logger.Logger, queryID uuid.UUID, status string, trace map[string]any) {
	fields := map[string]any{"status": status}
	if trace != nil {
		if blob, err := json.Marshal(trace); err == nil {
			fields["retrieval_trace"] = datatypes.JSON(blob)
		}
	}
	if err := deps.Queries.UpdateFields(dbctx.Context{Ctx: ctx}, queryID, fields); err != nil {
		log.Warn("status update failed", "status", status, "error", err)
	}
}

// renderClips runs after every citation row is durable. Each render is
// independent and failure leaves clip_url null; nothing here can affect
// answer persistence.
func renderClips(ctx context.Context, deps RunDeps, log *logger.Logger, jobs []clipJob) {
	if deps.Clips == nil || len(jobs) == 0 {
		return
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentClips)
	for _, job := range jobs {
		job := job
		g.Go(func() error {
			src := job.mediaURL
			if deps.Streams != nil {
				resolved, err := deps.Streams.ResolveStreamURL(gctx, src)
				if err != nil {
					log.Warn("stream url resolution failed", "citation_id", job.citationID, "error", err)
				} else if resolved != "" {
					src = resolved
				}
			}
			clipURL, err := deps.Clips.RenderClip(gctx, src, job.startSec, job.endSec)
			if err != nil {
				log.Warn("clip render failed", "citation_id", job.citationID, "error", err)
				return nil
			}
			if err := deps.Citations.SetClipURL(dbctx.Context{Ctx: gctx}, job.citationID, clipURL); err != nil {
				log.Warn("clip url update failed", "citation_id", job.citationID, "error", err)
			}
			return nil
		})
	}
	_ = g.Wait()
}

// renderAnswerText keeps the model's prose for the coached style but
// rebuilds quote-extraction answers from the repaired citations, so the
// rendered blockquotes always match what was persisted.
func renderAnswerText(style, modelText string, mapped []MappedCitation) string {
	if style != StyleQuotes {
		return strings.TrimSpace(modelText)
	}
	if len(mapped) == 0 {
		return strings.TrimSpace(modelText)
	}
	var b strings.Builder
	for i, mc := range mapped {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString("> \"")
		b.WriteString(strings.TrimSpace(mc.Quote))
		b.WriteString("\"")
		attribution := strings.TrimSpace(mc.SpeakerName)
		if title := strings.TrimSpace(mc.Segment.RecordingTitle); title != "" {
			if attribution != "" {
				attribution += ", "
			}
			attribution += title
		}
		if attribution != "" {
			b.WriteString("\n> — ")
			b.WriteString(attribution)
			b.WriteString(" [")
			b.WriteString(formatHMS(mc.StartSec))
			b.WriteString("]")
		}
	}
	return b.String()
}
