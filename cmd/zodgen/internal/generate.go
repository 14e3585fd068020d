package internal

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Gobd/zodgen"
)

type generateOptions struct {
	config           string
	output           string
	format           string
	rootName         string
	workers          int
	strict           bool
	implicitRequired bool
	endpoints        bool
	indent           int
	validate         bool
	externalRefs     bool
	dumpIR           string
	diagnostics      string
}

func (o *generateOptions) bind(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVarP(&o.config, "config", "c", "", "YAML configuration file")
	f.StringVar(&o.format, "format", zodgen.FormatOpenAPI, "Input format (openapi, jsonschema)")
	f.StringVar(&o.rootName, "root-name", zodgen.DefaultRootName, "Name of the root schema of a JSON Schema document")
	f.IntVar(&o.workers, "workers", 0, "Components converted in parallel (0 converts serially)")
	f.BoolVar(&o.strict, "strict", false, "Reject unknown keys on objects that do not declare additionalProperties")
	f.BoolVar(&o.implicitRequired, "implicit-required", false, "Treat properties of objects without a required list as required")
	f.BoolVar(&o.validate, "validate", false, "Validate the OpenAPI document before converting it")
	f.BoolVar(&o.externalRefs, "external-refs", false, "Allow references into other files")
	f.StringVar(&o.diagnostics, "diagnostics", "", "Write cycle diagnostics as JSON to this file (- for stdout)")
}

// resolve builds the run configuration: the config file or defaults, then
// the input argument, then every flag set on the command line.
func (o *generateOptions) resolve(cmd *cobra.Command, args []string) (zodgen.Config, error) {
	cfg := zodgen.DefaultConfig()
	if o.config != "" {
		var err error
		if cfg, err = zodgen.LoadConfig(o.config); err != nil {
			return zodgen.Config{}, err
		}
	}
	if len(args) > 0 {
		cfg.Input = args[0]
	}

	f := cmd.Flags()
	if f.Changed("output") {
		cfg.Output = o.output
	}
	if f.Changed("format") {
		cfg.Format = o.format
	}
	if f.Changed("root-name") {
		cfg.RootName = o.rootName
	}
	if f.Changed("workers") {
		cfg.Workers = o.workers
	}
	if f.Changed("strict") {
		cfg.Writer.StrictObjectsByDefault = o.strict
	}
	if f.Changed("implicit-required") {
		cfg.Writer.ImplicitRequiredProperties = o.implicitRequired
	}
	if f.Changed("endpoints") {
		cfg.Writer.Endpoints = o.endpoints
	}
	if f.Changed("indent") {
		cfg.Writer.Indent = o.indent
	}
	if f.Changed("validate") {
		cfg.ValidateInput = o.validate
	}
	if f.Changed("external-refs") {
		cfg.ExternalRefs = o.externalRefs
	}
	return cfg, nil
}

func newGenerateCmd() *cobra.Command {
	opts := &generateOptions{}

	cmd := &cobra.Command{
		Use:   "generate [input]",
		Short: "Generate a TypeScript module of zod schemas",
		Example: `  # Write petstore.ts next to the document
  zodgen generate petstore.yaml

  # Print to standard output with an endpoints table
  zodgen generate petstore.yaml -o - --endpoints

  # Compile a JSON Schema file
  zodgen generate order.json --format jsonschema --root-name Order

  # Use a configuration file, overriding its output
  zodgen generate -c zodgen.yaml -o src/api.ts`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, opts, args)
		},
	}

	opts.bind(cmd)
	f := cmd.Flags()
	f.StringVarP(&opts.output, "output", "o", "", "Output file (- for stdout, default derived from the input)")
	f.BoolVar(&opts.endpoints, "endpoints", false, "Emit an endpoints table for the document's operations")
	f.IntVar(&opts.indent, "indent", 0, "Spaces per indent level (0 uses the default)")
	f.StringVar(&opts.dumpIR, "dump-ir", "", "Write the intermediate representation as JSON to this file (- for stdout)")
	return cmd
}

func runGenerate(cmd *cobra.Command, opts *generateOptions, args []string) error {
	cfg, err := opts.resolve(cmd, args)
	if err != nil {
		return err
	}
	res, err := zodgen.Generate(cmd.Context(), cfg)
	if err != nil {
		return err
	}

	out := zodgen.OutputPath(cfg)
	if err := emit(cmd.OutOrStdout(), out, []byte(res.Code)); err != nil {
		return fmt.Errorf("write module: %w", err)
	}
	zap.S().Infow("generated module",
		"input", cfg.Input,
		"output", out,
		"components", res.Document.Components.Len(),
		"circular", len(res.Graph.Circular))

	if opts.dumpIR != "" {
		data, err := res.IR()
		if err != nil {
			return fmt.Errorf("encode ir: %w", err)
		}
		if err := emit(cmd.OutOrStdout(), opts.dumpIR, append(data, '\n')); err != nil {
			return fmt.Errorf("write ir: %w", err)
		}
	}
	return writeDiagnostics(cmd, opts.diagnostics, res)
}

func newCheckCmd() *cobra.Command {
	opts := &generateOptions{}

	cmd := &cobra.Command{
		Use:   "check [input]",
		Short: "Convert a document and report reference cycles without writing code",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.resolve(cmd, args)
			if err != nil {
				return err
			}
			res, err := zodgen.Generate(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			if opts.diagnostics != "" {
				return writeDiagnostics(cmd, opts.diagnostics, res)
			}
			_, err = io.WriteString(cmd.OutOrStdout(), res.Diagnostics.String())
			return err
		},
	}
	opts.bind(cmd)
	return cmd
}

func writeDiagnostics(cmd *cobra.Command, path string, res *zodgen.Result) error {
	if path == "" {
		return nil
	}
	data, err := res.Diagnostics.JSON()
	if err != nil {
		return fmt.Errorf("encode diagnostics: %w", err)
	}
	if err := emit(cmd.OutOrStdout(), path, append(data, '\n')); err != nil {
		return fmt.Errorf("write diagnostics: %w", err)
	}
	return nil
}

// emit writes data to path, or to stdout when path is "-".
func emit(stdout io.Writer, path string, data []byte) error {
	if path == "-" {
		_, err := stdout.Write(data)
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}
