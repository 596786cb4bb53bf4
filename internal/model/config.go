package model

import "time"

// Config is the full runtime configuration, assembled from defaults, the
// config file, REPURPOSE_* environment variables, and CLI flags.
type Config struct {
	Workspace   string            `yaml:"workspace" mapstructure:"workspace"` // Root dir for data/, index/, logs/
	Query       QueryConfig       `yaml:"query" mapstructure:"query"`
	HTTP        HTTPConfig        `yaml:"http" mapstructure:"http"`
	Mining      MiningConfig      `yaml:"mining" mapstructure:"mining"`
	Index       IndexConfig       `yaml:"index" mapstructure:"index"`
	LLM         LLMConfig         `yaml:"llm" mapstructure:"llm"`
	Validation  ValidationConfig  `yaml:"validation" mapstructure:"validation"`
	Pipeline    PipelineConfig    `yaml:"pipeline" mapstructure:"pipeline"`
	Cache       CacheConfig       `yaml:"cache" mapstructure:"cache"`
}

// QueryConfig holds the fallback search terms used when no free-text query
// is given on the command line.
type QueryConfig struct {
	DefaultTerms []string `yaml:"default_terms" mapstructure:"default_terms"`
}

// HTTPConfig holds shared HTTP client settings.
type HTTPConfig struct {
	Timeout   time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent string        `yaml:"user_agent" mapstructure:"user_agent"`
}

// MiningConfig configures the literature mining stage.
type MiningConfig struct {
	BaseURL        string  `yaml:"base_url" mapstructure:"base_url"`
	Email          string  `yaml:"email" mapstructure:"email"` // Sent to the API for polite-pool access
	MaxResults     int     `yaml:"max_results" mapstructure:"max_results"`
	RequestsPerSec float64 `yaml:"requests_per_sec" mapstructure:"requests_per_sec"`
}

// IndexConfig configures chunking and retrieval. Chunk geometry is a tunable
// constant of the index, not a per-call parameter.
type IndexConfig struct {
	ChunkSize    int `yaml:"chunk_size" mapstructure:"chunk_size"`       // Runes per chunk
	ChunkOverlap int `yaml:"chunk_overlap" mapstructure:"chunk_overlap"` // Overlapping runes between chunks
	TopK         int `yaml:"top_k" mapstructure:"top_k"`                 // Chunks retrieved per reasoning query
}

// LLMConfig configures the hypothesis generation provider.
type LLMConfig struct {
	Provider    string  `yaml:"provider" mapstructure:"provider"` // openai, ollama
	Model       string  `yaml:"model" mapstructure:"model"`
	APIKey      string  `yaml:"-" mapstructure:"-"` // From env only, never persisted
	BaseURL     string  `yaml:"base_url" mapstructure:"base_url"`
	Timeout     int     `yaml:"timeout" mapstructure:"timeout"` // Seconds
	Temperature float32 `yaml:"temperature" mapstructure:"temperature"`
	MaxTokens   int     `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// ValidationConfig configures the knowledge-base cross-check.
type ValidationConfig struct {
	BaseURL    string        `yaml:"base_url" mapstructure:"base_url"`
	OrganismID string        `yaml:"organism_id" mapstructure:"organism_id"`
	Timeout    time.Duration `yaml:"timeout" mapstructure:"timeout"`
	Workers    int           `yaml:"workers" mapstructure:"workers"`
}

// PipelineConfig configures the coordinator. When Commands is non-empty each
// entry is run as an external stage process instead of the in-process stages.
type PipelineConfig struct {
	StageTimeout time.Duration `yaml:"stage_timeout" mapstructure:"stage_timeout"`
	Commands     []string      `yaml:"commands" mapstructure:"commands"`
}

// CacheConfig configures response caching for the external API clients.
type CacheConfig struct {
	Enabled bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir     string        `yaml:"dir" mapstructure:"dir"`
	TTL     time.Duration `yaml:"ttl" mapstructure:"ttl"`
}

// DefaultConfig returns the built-in defaults. Chunk geometry, the stage
// timeout, and the scoring weights in internal/validate mirror the contract
// values and should not normally be changed.
func DefaultConfig() *Config {
	return &Config{
		Workspace: ".",
		Query: QueryConfig{
			DefaultTerms: []string{
				"drug repurposing AND gene interaction",
				"metformin AND AMPK",
				"aspirin AND COX2 AND cancer",
			},
		},
		HTTP: HTTPConfig{
			Timeout:   30 * time.Second,
			UserAgent: "repurpose/0.1 (+https://github.com/sameerk147/repurpose)",
		},
		Mining: MiningConfig{
			BaseURL:        "https://eutils.ncbi.nlm.nih.gov/entrez/eutils",
			MaxResults:     50,
			RequestsPerSec: 3, // NCBI allows 3 req/s without an API key
		},
		Index: IndexConfig{
			ChunkSize:    500,
			ChunkOverlap: 50,
			TopK:         10,
		},
		LLM: LLMConfig{
			Provider:    "openai",
			Model:       "gpt-4o-mini",
			Timeout:     60,
			Temperature: 0.7,
			MaxTokens:   2000,
		},
		Validation: ValidationConfig{
			BaseURL:    "https://rest.uniprot.org/uniprotkb/search",
			OrganismID: "9606",
			Timeout:    10 * time.Second,
			Workers:    8,
		},
		Pipeline: PipelineConfig{
			StageTimeout: 300 * time.Second,
		},
		Cache: CacheConfig{
			Enabled: true,
			Dir:     "",
			TTL:     24 * time.Hour,
		},
	}
}
