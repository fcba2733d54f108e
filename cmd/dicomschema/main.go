package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/mrsinham/dicomschema/internal/dict"
	"github.com/mrsinham/dicomschema/internal/dicomgen"
	"github.com/mrsinham/dicomschema/internal/sandbox"
	"github.com/mrsinham/dicomschema/internal/schema"
	"github.com/mrsinham/dicomschema/internal/synthesis"
)

// version is set at build time via -ldflags
var version = "dev"

func main() {
	schemaPath := flag.String("schema", "", "Path to acquisition schema JSON (required)")
	configPath := flag.String("config", "", "Load run options from a YAML config file")
	saveConfig := flag.String("save-config", "", "Write the effective run options to a YAML config file and exit")
	validateOnly := flag.Bool("validate", false, "Validate the schema's structural invariants and exit")
	outputDir := flag.String("output", "", "Write test DICOM files to this directory")
	resolutions := flag.String("resolve", "", "Comma-separated conflict resolutions, e.g. 'EchoTime=schema,FlipAngle=my_check'")
	quiet := flag.Bool("quiet", false, "Suppress progress output")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("dicomschema %s\n", version)
		return
	}

	cfg := RunConfig{Schema: *schemaPath, Output: *outputDir, Quiet: *quiet}
	if *configPath != "" {
		loaded, err := LoadRunConfig(*configPath)
		if err != nil {
			fatal(err)
		}
		cfg = loaded
		// Explicit flags override the config file.
		if *schemaPath != "" {
			cfg.Schema = *schemaPath
		}
		if *outputDir != "" {
			cfg.Output = *outputDir
		}
	}
	if cfg.Resolutions == nil {
		cfg.Resolutions = map[string]string{}
	}
	for _, pair := range strings.Split(*resolutions, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		name, choice, ok := strings.Cut(pair, "=")
		if !ok {
			fatal(fmt.Errorf("invalid -resolve entry %q, expected FieldName=choice", pair))
		}
		cfg.Resolutions[strings.TrimSpace(name)] = strings.TrimSpace(choice)
	}

	if *saveConfig != "" {
		if err := SaveRunConfig(*saveConfig, cfg); err != nil {
			fatal(err)
		}
		fmt.Printf("Config written to %s\n", *saveConfig)
		return
	}

	if cfg.Schema == "" {
		fmt.Fprintln(os.Stderr, "Error: -schema is required")
		flag.Usage()
		os.Exit(1)
	}

	acq, err := schema.Load(cfg.Schema)
	if err != nil {
		fatal(err)
	}

	if err := acq.Validate(); err != nil {
		fatal(fmt.Errorf("schema validation: %w", err))
	}
	if *validateOnly {
		fmt.Printf("Schema %q is valid: %d acquisition fields, %d series fields, %d series\n",
			acq.ProtocolName, len(acq.AcquisitionFields), len(acq.SeriesFields), len(acq.Series))
		return
	}

	ctx := context.Background()
	engine := synthesis.NewEngine(dict.New())
	session := synthesis.NewSession(engine, sandbox.NewJSRunner(), acq)

	if err := session.Analyze(ctx); err != nil {
		fatal(fmt.Errorf("synthesis: %w", err))
	}

	if !cfg.Quiet {
		for _, w := range session.Warnings() {
			fmt.Fprintf(os.Stderr, "Warning: %s\n", w)
		}
		for _, c := range session.Conflicts() {
			fmt.Printf("Conflict: field %q schema value %v vs %v from %q\n",
				c.FieldName, c.ExistingValue, c.TestValue, c.ValidationName)
		}
	}

	for name, choice := range cfg.Resolutions {
		if err := session.ResolveConflict(name, choice); err != nil {
			fatal(err)
		}
	}

	rows := session.Rows()
	if !cfg.Quiet {
		fmt.Printf("Synthesized %d test rows for %q\n", len(rows), acq.ProtocolName)
	}

	if cfg.Output == "" {
		return
	}

	fields := append(append([]schema.Field{}, acq.AcquisitionFields...), acq.SeriesFields...)
	err = session.Generate(ctx, func(rows []synthesis.Row) error {
		_, genErr := dicomgen.GenerateTestDicoms(acq, rows, fields, dicomgen.Options{
			OutputDir: cfg.Output,
			Quiet:     cfg.Quiet,
		})
		return genErr
	})
	if err != nil {
		fatal(err)
	}
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
