package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v3"

	"github.com/rupor-github/gencfg"

	"scpview/common"
)

//go:embed config.yaml.tmpl
var ConfigTmpl []byte

type (
	TemplateFieldName string

	SourceConfig struct {
		Kind     common.SourceKind `yaml:"kind"`
		Location string            `yaml:"location" validate:"required"`
	}

	ImagesConfig struct {
		Prefix   string `yaml:"prefix" validate:"required"`
		Copy     bool   `yaml:"copy"`
		MaxWidth int    `yaml:"max_width" validate:"gte=0"`
	}

	PageConfig struct {
		TemplatePath          string       `yaml:"template_path" sanitize:"assure_file_access"`
		Extension             string       `yaml:"extension" validate:"required,startswith=."`
		OutputNameTemplate    string       `yaml:"output_name_template"`
		FileNameTransliterate bool         `yaml:"file_name_transliterate"`
		Transcripts           bool         `yaml:"transcripts"`
		Images                ImagesConfig `yaml:"images"`
	}

	Substitution struct {
		From string `yaml:"from" validate:"required"`
		To   string `yaml:"to"`
	}

	VoiceConfig struct {
		Language string `yaml:"language" validate:"required,bcp47_language_tag"`
		// when empty base language of Language is used
		FallbackPrefix string `yaml:"fallback_prefix"`
	}

	EngineConfig struct {
		Command        string   `yaml:"command" validate:"required"`
		Args           []string `yaml:"args"`
		VoiceFlag      string   `yaml:"voice_flag"`
		SplitSentences bool     `yaml:"split_sentences"`
	}

	NarrationConfig struct {
		Sentinel      string         `yaml:"sentinel" validate:"required"`
		PlayLabel     string         `yaml:"play_label" validate:"required"`
		StopLabel     string         `yaml:"stop_label" validate:"required"`
		Substitutions []Substitution `yaml:"substitutions" validate:"dive"`
		Voice         VoiceConfig    `yaml:"voice"`
		Engine        EngineConfig   `yaml:"engine"`
	}

	Config struct {
		Version   int             `yaml:"version" validate:"eq=1"`
		Source    SourceConfig    `yaml:"source"`
		Page      PageConfig      `yaml:"page"`
		Narration NarrationConfig `yaml:"narration"`
		Logging   LoggingConfig   `yaml:"logging"`
		Reporting ReporterConfig  `yaml:"reporting"`
	}
)

const (
	// NOTE: must match yaml field name above
	OutputNameTemplateFieldName TemplateFieldName = "output_name_template"
)

var requiredOptions = append([]func(*gencfg.ProcessingOptions){},
	gencfg.WithDoNotExpandField(string(OutputNameTemplateFieldName)),
)

func unmarshalConfig(data []byte, cfg *Config, process bool) (*Config, error) {
	// We want to use only fields we defined so we cannot use yaml.Unmarshal
	// directly here
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration data: %w", err)
	}
	if !process {
		return cfg, nil
	}
	if !cfg.Source.Kind.IsValid() {
		return nil, fmt.Errorf("unsupported record source kind: %d", cfg.Source.Kind)
	}
	if err := gencfg.Sanitize(cfg); err != nil {
		return nil, err
	}
	if err := gencfg.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfiguration reads the configuration from the file at the given path,
// superimposes its values on top of expanded configuration template to provide
// sane defaults and performs validation.
func LoadConfiguration(path string, options ...func(*gencfg.ProcessingOptions)) (*Config, error) {
	haveFile := len(path) > 0

	data, err := gencfg.Process(ConfigTmpl, append(requiredOptions, options...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	cfg, err := unmarshalConfig(data, &Config{}, !haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	if !haveFile {
		return cfg, nil
	}

	data, err = os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err = unmarshalConfig(data, cfg, haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration file: %w", err)
	}
	return cfg, nil
}

// Prepare generates configuration file from template and returns it as a byte
// slice.
func Prepare() ([]byte, error) {
	return gencfg.Process(ConfigTmpl, requiredOptions...)
}

func Dump(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(*cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config to yaml: %v", err)
	}
	return data, nil
}
