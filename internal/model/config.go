package model

import "time"

// Config is the full runtime configuration, assembled from defaults, the
// config file, environment variables, and CLI flags (in rising priority).
type Config struct {
	LLM         LLMConfig         `yaml:"llm" json:"llm"`
	Chunking    ChunkingConfig    `yaml:"chunking" json:"chunking"`
	Scoring     ScoringConfig     `yaml:"scoring" json:"scoring"`
	Compare     CompareConfig     `yaml:"compare" json:"compare"`
	Coverage    CoverageConfig    `yaml:"coverage" json:"coverage"`
	Passes      PassConfig        `yaml:"passes" json:"passes"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" json:"concurrency"`
	Cache       CacheConfig       `yaml:"cache" json:"cache"`
	HTTP        HTTPConfig        `yaml:"http" json:"http"`
	Output      OutputConfig      `yaml:"output" json:"output"`
}

// LLMConfig configures the completion-service client.
type LLMConfig struct {
	Provider    string  `yaml:"provider" json:"provider"` // openai, anthropic, ollama
	Model       string  `yaml:"model" json:"model"`
	APIKey      string  `yaml:"api_key,omitempty" json:"api_key,omitempty"`
	BaseURL     string  `yaml:"base_url,omitempty" json:"base_url,omitempty"`
	Timeout     int     `yaml:"timeout" json:"timeout"` // seconds per call
	MaxTokens   int     `yaml:"max_tokens" json:"max_tokens"`
	Temperature float64 `yaml:"temperature" json:"temperature"`

	// Rate limiting across all completion calls
	RequestsPerSecond float64 `yaml:"requests_per_second" json:"requests_per_second"`
	Burst             int     `yaml:"burst" json:"burst"`

	// Proxy settings
	HTTPProxy  string `yaml:"http_proxy,omitempty" json:"http_proxy,omitempty"`
	HTTPSProxy string `yaml:"https_proxy,omitempty" json:"https_proxy,omitempty"`
	NoProxy    string `yaml:"no_proxy,omitempty" json:"no_proxy,omitempty"`
}

// ChunkingConfig controls document splitting.
type ChunkingConfig struct {
	MaxTokens int `yaml:"max_tokens" json:"max_tokens"` // Token budget per chunk
	Overlap   int `yaml:"overlap" json:"overlap"`       // Character overlap between adjacent chunks
}

// ScoringConfig holds the confidence formula constants.
type ScoringConfig struct {
	BaseFactor           float64 `yaml:"base_factor" json:"base_factor"`                     // Weight of pass agreement
	VerificationBonus    float64 `yaml:"verification_bonus" json:"verification_bonus"`       // Added when verified, not hallucinated
	HallucinationPenalty float64 `yaml:"hallucination_penalty" json:"hallucination_penalty"` // Subtracted when hallucinated
	ChunkAgreementCap    float64 `yaml:"chunk_agreement_cap" json:"chunk_agreement_cap"`     // Max chunk-agreement boost
}

// CompareConfig holds cross-pass comparison policy.
type CompareConfig struct {
	// ContentSimilarity is the word-overlap fraction above which two findings
	// with the same identity key count as materially identical. Below it they
	// become a content Conflict.
	ContentSimilarity float64 `yaml:"content_similarity" json:"content_similarity"`
}

// CoverageConfig holds taxonomy coverage policy.
type CoverageConfig struct {
	Threshold      float64 `yaml:"threshold" json:"threshold"`             // Percentage below which coverage fails
	TargetedSearch bool    `yaml:"targeted_search" json:"targeted_search"` // Search gaps against source text
}

// PassConfig bounds the number of analysis passes.
type PassConfig struct {
	Count int `yaml:"count" json:"count"`
	Min   int `yaml:"min" json:"min"`
	Max   int `yaml:"max" json:"max"`
}

// ConcurrencyConfig bounds parallel work.
type ConcurrencyConfig struct {
	ChunkWorkers int `yaml:"chunk_workers" json:"chunk_workers"` // Parallel chunk analyses within a pass
	BatchWorkers int `yaml:"batch_workers" json:"batch_workers"` // Parallel documents in batch mode
}

// CacheConfig controls completion-reply caching.
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" json:"enabled"`
	Dir       string        `yaml:"dir" json:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl" json:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" json:"disk_ttl"`
}

// HTTPConfig controls URL document fetching.
type HTTPConfig struct {
	Timeout       time.Duration `yaml:"timeout" json:"timeout"`
	UserAgent     string        `yaml:"user_agent" json:"user_agent"`
	MaxBodyBytes  int64         `yaml:"max_body_bytes" json:"max_body_bytes"`
	RespectRobots bool          `yaml:"respect_robots" json:"respect_robots"`
}

// OutputConfig controls report rendering.
type OutputConfig struct {
	Verbose       bool `yaml:"verbose" json:"verbose"`
	IncludeFooter bool `yaml:"include_footer" json:"include_footer"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider:          "",
			Timeout:           60,
			MaxTokens:         2000,
			Temperature:       0.2,
			RequestsPerSecond: 2,
			Burst:             5,
		},
		Chunking: ChunkingConfig{
			MaxTokens: 3000,
			Overlap:   200,
		},
		Scoring: ScoringConfig{
			BaseFactor:           0.9,
			VerificationBonus:    0.1,
			HallucinationPenalty: 0.5,
			ChunkAgreementCap:    0.05,
		},
		Compare: CompareConfig{
			ContentSimilarity: 0.5,
		},
		Coverage: CoverageConfig{
			Threshold:      50,
			TargetedSearch: true,
		},
		Passes: PassConfig{
			Count: 3,
			Min:   2,
			Max:   5,
		},
		Concurrency: ConcurrencyConfig{
			ChunkWorkers: 4,
			BatchWorkers: 2,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       defaultCacheDir(),
			MemoryTTL: 30 * time.Minute,
			DiskTTL:   24 * time.Hour,
		},
		HTTP: HTTPConfig{
			Timeout:       30 * time.Second,
			UserAgent:     "Veridoc/0.1 (+https://github.com/ppiankov/veridoc)",
			MaxBodyBytes:  2_000_000,
			RespectRobots: true,
		},
		Output: OutputConfig{
			IncludeFooter: true,
		},
	}
}
