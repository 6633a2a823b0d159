package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/local/docorchestrator/internal/analysis"
)

// LoggingConfig holds logging-related configuration.
type LoggingConfig struct {
	Level      string
	Pretty     bool
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// AxiomConfig holds Axiom logging configuration.
type AxiomConfig struct {
	Send          bool
	APIKey        string
	OrgID         string
	Dataset       string
	FlushInterval time.Duration
}

// AnalysisConfig overrides the complexity heuristic thresholds.
type AnalysisConfig struct {
	SamplePages             int
	ScannedTextChars        int
	LargeFileBytes          int
	MaxImagePixels          int
	HighResolutionPixels    int
	TableLineSegments       int
	CannyLow                float64
	CannyHigh               float64
	HoughVotes              int
	HoughMinLineLength      int
	HoughMaxLineGap         int
	LargeDocumentParagraphs int
	FullServiceScore        int
}

// Thresholds overlays the configured values on analysis.DefaultThresholds.
// Non-positive values keep the default.
func (c AnalysisConfig) Thresholds() analysis.Thresholds {
	t := analysis.DefaultThresholds()
	setInt := func(dst *int, v int) {
		if v > 0 {
			*dst = v
		}
	}
	setFloat := func(dst *float64, v float64) {
		if v > 0 {
			*dst = v
		}
	}
	setInt(&t.SamplePages, c.SamplePages)
	setInt(&t.ScannedTextChars, c.ScannedTextChars)
	setInt(&t.LargeFileBytes, c.LargeFileBytes)
	setInt(&t.MaxImagePixels, c.MaxImagePixels)
	setInt(&t.HighResolutionPixels, c.HighResolutionPixels)
	setInt(&t.TableLineSegments, c.TableLineSegments)
	setFloat(&t.CannyLow, c.CannyLow)
	setFloat(&t.CannyHigh, c.CannyHigh)
	setInt(&t.HoughVotes, c.HoughVotes)
	setInt(&t.HoughMinLineLength, c.HoughMinLineLength)
	setInt(&t.HoughMaxLineGap, c.HoughMaxLineGap)
	setInt(&t.LargeDocumentParagraphs, c.LargeDocumentParagraphs)
	setInt(&t.FullServiceScore, c.FullServiceScore)
	return t
}

// ServicesConfig locates the downstream processing tiers.
type ServicesConfig struct {
	CoreURL         string
	FullURL         string
	Timeout         time.Duration
	BreakerFailures int
	BreakerCooldown time.Duration
	BreakerHalfOpen int
	BreakerInterval time.Duration
}

// StorageConfig configures the S3 document bucket.
type StorageConfig struct {
	Bucket          string
	ResultsPrefix   string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	PresignTTL      time.Duration
}

// CacheConfig configures Redis-backed status tracking and result caching.
// An empty RedisURL disables both.
type CacheConfig struct {
	RedisURL  string
	ResultTTL time.Duration
	StatusTTL time.Duration
}

// ServerConfig configures the HTTP surface.
type ServerConfig struct {
	Port            string
	RunDoclingCore  bool
	MaxBodyBytes    int64
	CORSOrigins     []string
	ShutdownTimeout time.Duration
}

// ChunkingConfig configures the text chunker used by the local core service.
type ChunkingConfig struct {
	Size    int
	Overlap int
}

// Config is the top-level configuration.
type Config struct {
	Logging  LoggingConfig
	Axiom    AxiomConfig
	Analysis AnalysisConfig
	Services ServicesConfig
	Storage  StorageConfig
	Cache    CacheConfig
	Server   ServerConfig
	Chunking ChunkingConfig
}

// Load reads an optional .env file and then the environment. Variables
// already set in the environment win over the file.
func Load(files ...string) Config {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		_ = godotenv.Load(f)
	}
	return FromEnv()
}

// FromEnv loads configuration from environment with sensible defaults.
func FromEnv() Config {
	cfg := Config{}

	cfg.Logging = LoggingConfig{
		Level:      getEnv("LOG_LEVEL", "info"),
		Pretty:     parseBool(getEnv("LOG_PRETTY", devDefaultPretty())),
		File:       getEnv("LOG_FILE", "logs/docorchestrator.log"),
		MaxSizeMB:  parseInt(getEnv("LOG_MAX_SIZE_MB", "100"), 100),
		MaxBackups: parseInt(getEnv("LOG_MAX_BACKUPS", "10"), 10),
		MaxAgeDays: parseInt(getEnv("LOG_MAX_AGE_DAYS", "30"), 30),
		Compress:   parseBool(getEnv("LOG_COMPRESS", "true")),
	}

	baseDataset := getEnv("AXIOM_DATASET", "dev")
	cfg.Axiom = AxiomConfig{
		Send:          parseBool(getEnv("SEND_LOGS_TO_AXIOM", "0")),
		APIKey:        getEnv("AXIOM_API_KEY", ""),
		OrgID:         getEnv("AXIOM_ORG_ID", ""),
		Dataset:       baseDataset + "_docorchestrator",
		FlushInterval: parseDuration(getEnv("AXIOM_FLUSH_INTERVAL", "10s"), 10*time.Second),
	}

	cfg.Analysis = AnalysisConfig{
		SamplePages:             parseInt(getEnv("ANALYSIS_SAMPLE_PAGES", "3"), 3),
		ScannedTextChars:        parseInt(getEnv("ANALYSIS_SCANNED_TEXT_CHARS", "100"), 100),
		LargeFileBytes:          parseInt(getEnv("ANALYSIS_LARGE_FILE_BYTES", "5242880"), 5*1024*1024),
		MaxImagePixels:          parseInt(getEnv("ANALYSIS_MAX_IMAGE_PIXELS", "16000000"), 16_000_000),
		HighResolutionPixels:    parseInt(getEnv("ANALYSIS_HIGH_RES_PIXELS", "2000"), 2000),
		TableLineSegments:       parseInt(getEnv("ANALYSIS_TABLE_LINE_SEGMENTS", "20"), 20),
		CannyLow:                parseFloat(getEnv("ANALYSIS_CANNY_LOW", "50"), 50),
		CannyHigh:               parseFloat(getEnv("ANALYSIS_CANNY_HIGH", "150"), 150),
		HoughVotes:              parseInt(getEnv("ANALYSIS_HOUGH_VOTES", "100"), 100),
		HoughMinLineLength:      parseInt(getEnv("ANALYSIS_HOUGH_MIN_LINE_LENGTH", "100"), 100),
		HoughMaxLineGap:         parseInt(getEnv("ANALYSIS_HOUGH_MAX_LINE_GAP", "10"), 10),
		LargeDocumentParagraphs: parseInt(getEnv("ANALYSIS_LARGE_DOC_PARAGRAPHS", "50"), 50),
		FullServiceScore:        parseInt(getEnv("ANALYSIS_FULL_SERVICE_SCORE", "7"), 7),
	}

	// Each tier falls back to the other's URL, then to localhost.
	core := getEnv("DOCLING_CORE_SERVICE_URL", "")
	full := getEnv("DOCLING_FULL_SERVICE_URL", "")
	if core == "" {
		core = full
	}
	if full == "" {
		full = core
	}
	cfg.Services = ServicesConfig{
		CoreURL:         strings.TrimRight(orDefault(core, "http://localhost:8080"), "/"),
		FullURL:         strings.TrimRight(orDefault(full, "http://localhost:8080"), "/"),
		Timeout:         parseDuration(getEnv("ROUTER_TIMEOUT", "60s"), 60*time.Second),
		BreakerFailures: parseInt(getEnv("BREAKER_FAILURES", "5"), 5),
		BreakerCooldown: parseDuration(getEnv("BREAKER_COOLDOWN", "30s"), 30*time.Second),
		BreakerHalfOpen: parseInt(getEnv("BREAKER_HALF_OPEN_REQUESTS", "1"), 1),
		BreakerInterval: parseDuration(getEnv("BREAKER_INTERVAL", "60s"), 60*time.Second),
	}

	cfg.Storage = StorageConfig{
		Bucket:          getEnv("DOCUMENTS_BUCKET", ""),
		ResultsPrefix:   strings.Trim(getEnv("RESULTS_PREFIX", "results"), "/"),
		Region:          getEnv("AWS_REGION", "us-east-1"),
		Endpoint:        getEnv("S3_ENDPOINT", ""),
		AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
		SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
		PresignTTL:      parseDuration(getEnv("PRESIGN_TTL", "1h"), time.Hour),
	}

	cfg.Cache = CacheConfig{
		RedisURL:  getEnv("REDIS_URL", ""),
		ResultTTL: parseDuration(getEnv("RESULT_CACHE_TTL", "24h"), 24*time.Hour),
		StatusTTL: parseDuration(getEnv("STATUS_TTL", "168h"), 7*24*time.Hour),
	}

	cfg.Server = ServerConfig{
		Port:            getEnv("PORT", "8080"),
		RunDoclingCore:  parseBool(getEnv("RUN_DOCLING_CORE", "false")),
		MaxBodyBytes:    int64(parseInt(getEnv("MAX_BODY_MB", "64"), 64)) << 20,
		CORSOrigins:     parseList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		ShutdownTimeout: parseDuration(getEnv("SHUTDOWN_TIMEOUT", "10s"), 10*time.Second),
	}

	cfg.Chunking = ChunkingConfig{
		Size:    parseInt(getEnv("CHUNK_SIZE", "1000"), 1000),
		Overlap: parseInt(getEnv("CHUNK_OVERLAP", "200"), 200),
	}
	if cfg.Chunking.Overlap >= cfg.Chunking.Size {
		cfg.Chunking.Overlap = cfg.Chunking.Size / 5
	}

	return cfg
}

// Helpers
func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func parseInt(s string, def int) int {
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}

func parseFloat(s string, def float64) float64 {
	if s == "" {
		return def
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return def
}

func parseBool(s string) bool {
	v := strings.ToLower(strings.TrimSpace(s))
	return v == "1" || v == "true" || v == "yes" || v == "on"
}

func parseDuration(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	if d, err := time.ParseDuration(s); err == nil {
		return d
	}
	return def
}

func parseList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func devDefaultPretty() string {
	env := strings.ToLower(os.Getenv("ENVIRONMENT"))
	if env == "dev" || env == "development" || env == "local" {
		return "true"
	}
	return "false"
}
