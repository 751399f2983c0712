package app

import (
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/podquote/podquote-backend/internal/platform/envutil"
	"github.com/podquote/podquote-backend/internal/platform/logger"
)

type Config struct {
	Port        string
	Environment string
	Version     string

	AllowOrigins []string

	// Pipeline knobs. Zero values fall back to the per-style defaults.
	RetrieveLimit       int
	MaxAnswers          int
	SimilarityThreshold float64
	BoostTerms          []string

	SchedulerTimeout time.Duration

	ClipsEnabled      bool
	ClipWorkDir       string
	ClipPublicBaseURL string
	FFmpegPath        string

	CatalogBaseURL  string
	CatalogCacheTTL time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// fileConfig is the optional YAML overlay pointed at by CONFIG_FILE.
// Only set fields override the environment.
type fileConfig struct {
	Port                string   `yaml:"port"`
	AllowOrigins        []string `yaml:"allow_origins"`
	RetrieveLimit       int      `yaml:"retrieve_limit"`
	MaxAnswers          int      `yaml:"max_answers"`
	SimilarityThreshold float64  `yaml:"similarity_threshold"`
	BoostTerms          []string `yaml:"boost_terms"`

	ClipWorkDir       string `yaml:"clip_work_dir"`
	ClipPublicBaseURL string `yaml:"clip_public_base_url"`
	FFmpegPath        string `yaml:"ffmpeg_path"`

	CatalogBaseURL string `yaml:"catalog_base_url"`
	RedisAddr      string `yaml:"redis_addr"`
}

func LoadConfig(log *logger.Logger) Config {
	cfg := Config{
		Port:        envutil.Str("PORT", "8080"),
		Environment: envutil.Str("ENVIRONMENT", "development"),
		Version:     envutil.Str("SERVICE_VERSION", "dev"),

		AllowOrigins: splitCSV(envutil.Str("CORS_ALLOW_ORIGINS", "")),

		RetrieveLimit:       envutil.Int("QA_RETRIEVE_LIMIT", 10),
		MaxAnswers:          envutil.Int("QA_MAX_ANSWERS", 3),
		SimilarityThreshold: envutil.Float("QA_SIMILARITY_THRESHOLD", 0),
		BoostTerms:          splitCSV(envutil.Str("QA_BOOST_TERMS", "")),

		SchedulerTimeout: time.Duration(envutil.Int("QA_RUN_TIMEOUT_SECONDS", 300)) * time.Second,

		ClipsEnabled:      envutil.Bool("CLIPS_ENABLED", false),
		ClipWorkDir:       envutil.Str("CLIP_WORK_DIR", "/tmp/podquote-clips"),
		ClipPublicBaseURL: envutil.Str("CLIP_PUBLIC_BASE_URL", ""),
		FFmpegPath:        envutil.Str("FFMPEG_PATH", "ffmpeg"),

		CatalogBaseURL:  envutil.Str("CATALOG_BASE_URL", ""),
		CatalogCacheTTL: time.Duration(envutil.Int("CATALOG_CACHE_TTL_SECONDS", 21600)) * time.Second,

		RedisAddr:     envutil.Str("REDIS_ADDR", ""),
		RedisPassword: envutil.Str("REDIS_PASSWORD", ""),
		RedisDB:       envutil.Int("REDIS_DB", 0),
	}

	path := strings.TrimSpace(os.Getenv("CONFIG_FILE"))
	if path == "" {
		return cfg
	}
	blob, err := os.ReadFile(path)
	if err != nil {
		log.Warn("config file unreadable, using environment only", "path", path, "error", err)
		return cfg
	}
	var fc fileConfig
	if err := yaml.Unmarshal(blob, &fc); err != nil {
		log.Warn("config file invalid, using environment only", "path", path, "error", err)
		return cfg
	}
	cfg.applyOverlay(fc)
	log.Info("config file overlay applied", "path", path)
	return cfg
}

func (c *Config) applyOverlay(fc fileConfig) {
	if fc.Port != "" {
		c.Port = fc.Port
	}
	if len(fc.AllowOrigins) > 0 {
		c.AllowOrigins = fc.AllowOrigins
	}
	if fc.RetrieveLimit > 0 {
		c.RetrieveLimit = fc.RetrieveLimit
	}
	if fc.MaxAnswers > 0 {
		c.MaxAnswers = fc.MaxAnswers
	}
	if fc.SimilarityThreshold > 0 {
		c.SimilarityThreshold = fc.SimilarityThreshold
	}
	if len(fc.BoostTerms) > 0 {
		c.BoostTerms = fc.BoostTerms
	}
	if fc.ClipWorkDir != "" {
		c.ClipWorkDir = fc.ClipWorkDir
	}
	if fc.ClipPublicBaseURL != "" {
		c.ClipPublicBaseURL = fc.ClipPublicBaseURL
	}
	if fc.FFmpegPath != "" {
		c.FFmpegPath = fc.FFmpegPath
	}
	if fc.CatalogBaseURL != "" {
		c.CatalogBaseURL = fc.CatalogBaseURL
	}
	if fc.RedisAddr != "" {
		c.RedisAddr = fc.RedisAddr
	}
}

func splitCSV(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
