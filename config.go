package scribe

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Config is the declarative form of codec configuration, suitable for
// loading from a YAML or JSON document. The zero value configures a UTF-8
// decoder with root-level merge and a direct encoder.
type Config struct {
	// Charset is the declared source byte encoding name.
	// Validated against the IANA registry when the decoder is built.
	Charset string `yaml:"charset" json:"charset"`

	// Target is the field path under which decoded content is nested.
	// Empty means merge at the record root.
	Target string `yaml:"target" json:"target"`

	// CaptureOriginal preserves the raw decoded text at OriginalPath.
	CaptureOriginal bool `yaml:"capture_original" json:"capture_original"`

	// EncodeMapping is the declarative mapping template for encode output.
	// Nil means encode records directly.
	EncodeMapping map[string]any `yaml:"encode_mapping" json:"encode_mapping"`
}

// ParseConfig unmarshals a YAML configuration document.
// JSON documents parse too, being a YAML subset.
func ParseConfig(data []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("scribe: parse config: %w", err)
	}
	return cfg, nil
}

// DecoderOptions translates the config into decoder construction options.
func (c Config) DecoderOptions() []DecoderOption {
	var opts []DecoderOption
	if c.Charset != "" {
		opts = append(opts, WithDecoderCharset(c.Charset))
	}
	if c.Target != "" {
		opts = append(opts, WithDecoderTarget(c.Target))
	}
	if c.CaptureOriginal {
		opts = append(opts, WithDecoderOriginalCapture())
	}
	return opts
}

// EncoderOptions translates the config into encoder construction options.
func (c Config) EncoderOptions() []EncoderOption {
	var opts []EncoderOption
	if c.EncodeMapping != nil {
		opts = append(opts, WithEncoderMapping(c.EncodeMapping))
	}
	return opts
}
