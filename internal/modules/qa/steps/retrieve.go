package steps

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/podquote/podquote-backend/internal/data/repos"
	"github.com/podquote/podquote-backend/internal/platform/dbctx"
	"github.com/podquote/podquote-backend/internal/platform/logger"
)

// RetrievedSegment is the in-memory projection of one chunk store row used
// during a single run. Never persisted.
type RetrievedSegment struct {
	ChunkID        uuid.UUID
	RecordingID    uuid.UUID
	StartSec       float64
	EndSec         float64
	Text           string
	SpeakerName    string
	Similarity     float64
	RecordingTitle string
	MediaURL       string
}

// Embedder and ChunkSearcher are the two provider boundaries retrieval
// touches. platform/openai.Client and repos.TranscriptChunkRepo satisfy
// them; tests substitute fakes.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

type ChunkSearcher interface {
	Search(dbc dbctx.Context, embedding []float32, recordingID *uuid.UUID, limit int, threshold float64) ([]repos.ChunkHit, error)
}

type RetrieveDeps struct {
	Log      *logger.Logger
	Embedder Embedder
	Searcher ChunkSearcher
}

type RetrieveInput struct {
	Question    string
	RecordingID *uuid.UUID
	Limit       int
	Threshold   float64
}

// Retrieve embeds the question once and runs a similarity search over the
// chunk store. An empty result is not an error; callers handle it
// explicitly. The trace map is persisted onto the query for debugging.
func Retrieve(ctx context.Context, deps RetrieveDeps, in RetrieveInput) ([]RetrievedSegment, map[string]any, error) {
	trace := map[string]any{
		"limit":     in.Limit,
		"threshold": in.Threshold,
	}
	if in.RecordingID != nil {
		trace["recording_id"] = in.RecordingID.String()
	}

	embs, err := deps.Embedder.Embed(ctx, []string{in.Question})
	if err != nil {
		return nil, trace, fmt.Errorf("embed question: %w", err)
	}
	if len(embs) != 1 || len(embs[0]) == 0 {
		return nil, trace, fmt.Errorf("embed question: empty embedding")
	}

	hits, err := deps.Searcher.Search(dbctx.Context{Ctx: ctx}, embs[0], in.RecordingID, in.Limit, in.Threshold)
	if err != nil {
		return nil, trace, fmt.Errorf("chunk search: %w", err)
	}

	seen := make(map[uuid.UUID]bool, len(hits))
	out := make([]RetrievedSegment, 0, len(hits))
	for _, h := range hits {
		if seen[h.ChunkID] {
			continue
		}
		seen[h.ChunkID] = true
		out = append(out, RetrievedSegment{
			ChunkID:        h.ChunkID,
			RecordingID:    h.RecordingID,
			StartSec:       h.StartSec,
			EndSec:         h.EndSec,
			Text:           h.Text,
			SpeakerName:    h.SpeakerName,
			Similarity:     h.Similarity,
			RecordingTitle: h.RecordingTitle,
			MediaURL:       h.MediaURL,
		})
	}

	trace["hits"] = len(out)
	if len(out) > 0 {
		trace["top_similarity"] = out[0].Similarity
	}
	return out, trace, nil
}
