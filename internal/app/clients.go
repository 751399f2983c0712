package app

import (
	"fmt"

	"github.com/redis/go-redis/v9"

	platformcatalog "github.com/podquote/podquote-backend/internal/platform/catalog"
	"github.com/podquote/podquote-backend/internal/platform/logger"
	mediaclip "github.com/podquote/podquote-backend/internal/platform/media"
	"github.com/podquote/podquote-backend/internal/platform/openai"
)

type Clients struct {
	OpenAI  openai.Client
	Redis   *redis.Client
	Clips   mediaclip.ClipRenderer
	Streams platformcatalog.StreamResolver
}

func wireClients(log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")

	oa, err := openai.NewClient(log)
	if err != nil {
		return Clients{}, fmt.Errorf("init openai client: %w", err)
	}
	out := Clients{OpenAI: oa}

	if cfg.RedisAddr != "" {
		out.Redis = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
	}

	if cfg.ClipsEnabled {
		clipper, err := mediaclip.NewClipper(log, mediaclip.Options{
			WorkDir:       cfg.ClipWorkDir,
			PublicBaseURL: cfg.ClipPublicBaseURL,
			FFmpegPath:    cfg.FFmpegPath,
		})
		if err != nil {
			log.Warn("clip renderer unavailable, clips disabled", "error", err)
		} else {
			out.Clips = clipper
			out.Streams = platformcatalog.NewResolver(log, out.Redis, platformcatalog.Options{
				BaseURL:  cfg.CatalogBaseURL,
				CacheTTL: cfg.CatalogCacheTTL,
			})
		}
	}

	return out, nil
}
