// Package repos re-exports the per-domain repositories so wiring code can
// depend on a single import.
package repos

import (
	catalogrepos "github.com/podquote/podquote-backend/internal/data/repos/catalog"
	qarepos "github.com/podquote/podquote-backend/internal/data/repos/qa"
)

type (
	QueryRepo    = qarepos.QueryRepo
	AnswerRepo   = qarepos.AnswerRepo
	CitationRepo = qarepos.CitationRepo

	RecordingRepo       = catalogrepos.RecordingRepo
	TranscriptChunkRepo = catalogrepos.TranscriptChunkRepo

	ChunkHit = catalogrepos.ChunkHit
)

var (
	NewQueryRepo    = qarepos.NewQueryRepo
	NewAnswerRepo   = qarepos.NewAnswerRepo
	NewCitationRepo = qarepos.NewCitationRepo

	NewRecordingRepo       = catalogrepos.NewRecordingRepo
	NewTranscriptChunkRepo = catalogrepos.NewTranscriptChunkRepo
)
