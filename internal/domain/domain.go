package domain

import (
	"github.com/podquote/podquote-backend/internal/domain/catalog"
	"github.com/podquote/podquote-backend/internal/domain/qa"
)

const (
	QueryModeGlobal  = qa.QueryModeGlobal
	QueryModeEpisode = qa.QueryModeEpisode

	QueryStatusQueued    = qa.QueryStatusQueued
	QueryStatusRunning   = qa.QueryStatusRunning
	QueryStatusSucceeded = qa.QueryStatusSucceeded
	QueryStatusFailed    = qa.QueryStatusFailed
)

type (
	Query    = qa.Query
	Answer   = qa.Answer
	Citation = qa.Citation

	Recording       = catalog.Recording
	TranscriptChunk = catalog.TranscriptChunk
)
