// Package config loads runtime settings for the clinical report analyzer.
package config

import (
	"fmt"
	"strings"
)

// Decoder names accepted by QAConfig.Decoder.
const (
	DecoderQuadratic = "quadratic"
	DecoderLinear    = "linear"
)

// LabelsConfig controls observation extraction.
type LabelsConfig struct {
	PhrasesDir string `koanf:"phrases_dir" yaml:"phrases_dir"`
	Cleanup    bool   `koanf:"cleanup" yaml:"cleanup"`
}

// QAConfig controls the span answering model.
type QAConfig struct {
	OrtLibrary     string   `koanf:"ort_library" yaml:"ort_library"`
	ModelPath      string   `koanf:"model_path" yaml:"model_path"`
	TokenizerPath  string   `koanf:"tokenizer_path" yaml:"tokenizer_path"`
	MaxSeqLen      int      `koanf:"max_seq_len" yaml:"max_seq_len"`
	InputNames     []string `koanf:"input_names" yaml:"input_names,omitempty"`
	OutputNames    []string `koanf:"output_names" yaml:"output_names,omitempty"`
	ClsToken       string   `koanf:"cls_token" yaml:"cls_token"`
	SepToken       string   `koanf:"sep_token" yaml:"sep_token"`
	UnkToken       string   `koanf:"unk_token" yaml:"unk_token"`
	Decoder        string   `koanf:"decoder" yaml:"decoder"`
	CollapseAtSign bool     `koanf:"collapse_at_sign" yaml:"collapse_at_sign"`
}

// BatchConfig controls CSV batch processing.
type BatchConfig struct {
	OutputDir    string `koanf:"output_dir" yaml:"output_dir"`
	Workers      int    `koanf:"workers" yaml:"workers"`
	ReportColumn string `koanf:"report_column" yaml:"report_column"`
	IDColumn     string `koanf:"id_column" yaml:"id_column,omitempty"`
}

// ServerConfig controls the HTTP API listener.
type ServerConfig struct {
	Host string `koanf:"host" yaml:"host"`
	Port int    `koanf:"port" yaml:"port"`
}

// LogConfig controls logger construction.
type LogConfig struct {
	Level  string `koanf:"level" yaml:"level"`
	Format string `koanf:"format" yaml:"format"`
}

// Config aggregates all runtime settings.
type Config struct {
	Labels LabelsConfig `koanf:"labels" yaml:"labels"`
	QA     QAConfig     `koanf:"qa" yaml:"qa"`
	Batch  BatchConfig  `koanf:"batch" yaml:"batch"`
	Server ServerConfig `koanf:"server" yaml:"server"`
	Log    LogConfig    `koanf:"log" yaml:"log"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Labels: LabelsConfig{
			PhrasesDir: "ClinicalReport/NegBio/negbio/chexpert/phrases/mention",
			Cleanup:    true,
		},
		QA: QAConfig{
			ModelPath:      "./models/bert-qa/model.onnx",
			TokenizerPath:  "./models/bert-qa/tokenizer.json",
			MaxSeqLen:      384,
			ClsToken:       "[CLS]",
			SepToken:       "[SEP]",
			UnkToken:       "[UNK]",
			Decoder:        DecoderQuadratic,
			CollapseAtSign: true,
		},
		Batch: BatchConfig{
			OutputDir:    ".",
			Workers:      4,
			ReportColumn: "Report Impression",
		},
		Server: ServerConfig{Host: "localhost", Port: 8080},
		Log:    LogConfig{Level: "info", Format: "console"},
	}
}

// ApplyDefaults populates zero values with the built-in defaults.
func (c *Config) ApplyDefaults() {
	d := Default()
	if c.Labels.PhrasesDir == "" {
		c.Labels.PhrasesDir = d.Labels.PhrasesDir
	}
	if c.QA.MaxSeqLen <= 0 {
		c.QA.MaxSeqLen = d.QA.MaxSeqLen
	}
	if c.QA.ClsToken == "" {
		c.QA.ClsToken = d.QA.ClsToken
	}
	if c.QA.SepToken == "" {
		c.QA.SepToken = d.QA.SepToken
	}
	if c.QA.UnkToken == "" {
		c.QA.UnkToken = d.QA.UnkToken
	}
	c.QA.Decoder = strings.ToLower(strings.TrimSpace(c.QA.Decoder))
	if c.QA.Decoder == "" {
		c.QA.Decoder = d.QA.Decoder
	}
	if c.Batch.OutputDir == "" {
		c.Batch.OutputDir = d.Batch.OutputDir
	}
	if c.Batch.Workers <= 0 {
		c.Batch.Workers = d.Batch.Workers
	}
	if strings.TrimSpace(c.Batch.ReportColumn) == "" {
		c.Batch.ReportColumn = d.Batch.ReportColumn
	}
	if c.Server.Host == "" {
		c.Server.Host = d.Server.Host
	}
	if c.Server.Port <= 0 {
		c.Server.Port = d.Server.Port
	}
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
	c.Log.Format = strings.ToLower(strings.TrimSpace(c.Log.Format))
	if c.Log.Format == "" {
		c.Log.Format = d.Log.Format
	}
}

// Validate rejects settings that cannot be applied.
func (c Config) Validate() error {
	switch c.QA.Decoder {
	case DecoderQuadratic, DecoderLinear:
	default:
		return fmt.Errorf("unknown qa decoder %q", c.QA.Decoder)
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}
	if c.Server.Port > 65535 {
		return fmt.Errorf("server port %d out of range", c.Server.Port)
	}
	return nil
}

// Addr returns host:port for the HTTP listener.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}
