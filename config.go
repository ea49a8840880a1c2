package bm25s

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config describes how to build an index. It maps onto YAML such as:
//
//	bm25:
//	  k1: 1.2
//	  b: 0.75
//	strict: true
//	analyzer:
//	  min_token_length: 2
//	  stemming: true
//	  stopwords: true
//	batch:
//	  workers: 4
//
// Keys left out keep their DefaultConfig values.
type Config struct {
	BM25     BM25Parameters `yaml:"bm25"`
	Strict   bool           `yaml:"strict"` // Reject out of range BM25 parameters
	Analyzer AnalyzerConfig `yaml:"analyzer"`
	Batch    BatchConfig    `yaml:"batch"`
}

// BatchConfig holds AddBatch settings.
type BatchConfig struct {
	Workers int `yaml:"workers"` // 0 means GOMAXPROCS
}

// DefaultConfig returns the standard configuration.
func DefaultConfig() Config {
	return Config{
		BM25:     DefaultBM25Parameters(),
		Analyzer: DefaultAnalyzerConfig(),
	}
}

// ParseConfig decodes YAML on top of DefaultConfig.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// LoadConfig reads and parses the YAML file at path.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}
	return ParseConfig(data)
}

// NewIndexFromConfig builds an index from cfg. Options in opts are applied
// after the ones derived from cfg, so they take precedence.
func NewIndexFromConfig(cfg Config, opts ...Option) (*Index, error) {
	if cfg.Strict {
		if err := cfg.BM25.Validate(); err != nil {
			return nil, err
		}
	}

	all := []Option{
		WithTokenizer(NewAnalyzer(cfg.Analyzer)),
		WithBatchWorkers(cfg.Batch.Workers),
	}
	all = append(all, opts...)

	return NewIndex(cfg.BM25, all...), nil
}
