package zodgen

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"gopkg.in/yaml.v3"

	"github.com/Gobd/zodgen/writer"
)

// Input formats.
const (
	FormatOpenAPI    = "openapi"
	FormatJSONSchema = "jsonschema"
)

// DefaultRootName names the root schema of a JSON Schema document.
const DefaultRootName = "Root"

// ValidationErrors maps config fields to their problems. It is
// [validation.Errors] and renders as JSON.
type ValidationErrors = validation.Errors

// Config describes one generation run.
type Config struct {
	// Input is the path of the source document.
	Input string `yaml:"input"`
	// Output is the path of the generated module. Empty derives it from
	// Input; "-" means standard output.
	Output string `yaml:"output"`
	// Format is FormatOpenAPI or FormatJSONSchema.
	Format string `yaml:"format"`
	// RootName names the root schema of a JSON Schema document.
	RootName string `yaml:"rootName"`
	// Workers bounds parallel component conversion. Zero converts serially.
	Workers int `yaml:"workers"`
	// ValidateInput checks an OpenAPI document against the standard before
	// converting it.
	ValidateInput bool `yaml:"validateInput"`
	// ExternalRefs allows references into other files, which are bundled
	// into the document's components.
	ExternalRefs bool `yaml:"externalRefs"`

	Writer writer.Options `yaml:"writer"`
}

// DefaultConfig returns the configuration used for fields a file leaves out.
func DefaultConfig() Config {
	return Config{
		Format:   FormatOpenAPI,
		RootName: DefaultRootName,
	}
}

// LoadConfig reads a YAML configuration file over [DefaultConfig] and
// validates it. Unknown keys are an error.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig is like [LoadConfig] for configuration already in memory.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration. The error is a [ValidationErrors].
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Input, validation.Required),
		validation.Field(&c.Format, validation.Required, oneOf(FormatOpenAPI, FormatJSONSchema)),
		validation.Field(&c.RootName, validation.When(c.Format == FormatJSONSchema, validation.Required, is.PrintableASCII)),
		validation.Field(&c.Workers, validation.Min(0)),
		validation.Field(&c.Writer),
	)
}

func oneOf(values ...string) validation.Rule {
	in := make([]any, len(values))
	for i, v := range values {
		in[i] = v
	}
	return validation.In(in...).Error("must be one of " + strings.Join(values, ", "))
}
