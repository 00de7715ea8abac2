// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/term"

	"ticket-resolve/internal/config"
	"ticket-resolve/internal/correct"
	"ticket-resolve/internal/corrections"
	"ticket-resolve/internal/extract"
	"ticket-resolve/internal/formatters"
	_ "ticket-resolve/internal/formatters/csv"
	_ "ticket-resolve/internal/formatters/json"
	_ "ticket-resolve/internal/formatters/text"
	"ticket-resolve/internal/fuzzy"
	"ticket-resolve/internal/metadata"
	"ticket-resolve/internal/observability"
	"ticket-resolve/internal/pdfpage"
	"ticket-resolve/internal/resolve"
	"ticket-resolve/internal/validators/date"
	"ticket-resolve/internal/validators/money"
	"ticket-resolve/internal/validators/ticketnumber"
)

// overrideFlags collects repeated -set field=value flags.
type overrideFlags map[string]string

func (o overrideFlags) String() string {
	parts := make([]string, 0, len(o))
	for k, v := range o {
		parts = append(parts, k+"="+v)
	}
	sort.Strings(parts)
	return strings.Join(parts, ",")
}

func (o overrideFlags) Set(value string) error {
	field, val, ok := strings.Cut(value, "=")
	if !ok || field == "" {
		return fmt.Errorf("expected field=value, got %q", value)
	}
	o[field] = val
	return nil
}

func main() {
	inputFile := flag.String("file", "", "Path to the input file or directory (PDF, OCR JSON dump, or scanned image)")
	configFile := flag.String("config", "", "Path to configuration file (YAML)")
	outputFormat := flag.String("format", "", "Output format: text, json, csv (default: text)")
	outputFile := flag.String("output", "", "Path to output file (if not specified, output to stdout)")
	ledgerFile := flag.String("ledger", "", "Path to corrections ledger (default: per-user location)")
	verbose := flag.Bool("verbose", false, "Display alternatives and method detail for each field")
	debug := flag.Bool("debug", false, "Enable debug logging to show extraction and correction flow")
	noColor := flag.Bool("no-color", false, "Disable colored output")
	recursive := flag.Bool("recursive", false, "Recursively process directories")
	dryRun := flag.Bool("dry-run", false, "Apply corrections without persisting them to the ledger")
	interactive := flag.Bool("interactive", false, "Ask before applying each correction (requires a terminal)")
	listFormats := flag.Bool("list-formats", false, "List available output formats")
	overrides := overrideFlags{}
	flag.Var(overrides, "set", "Manual field override as field=value (repeatable)")
	flag.Parse()

	if *listFormats {
		names := formatters.List()
		sort.Strings(names)
		for _, name := range names {
			f, _ := formatters.Get(name)
			fmt.Printf("%-6s %s\n", name, f.Description())
		}
		return
	}

	cfgPath := *configFile
	if cfgPath == "" {
		cfgPath = config.FindConfigFile()
	}
	cfg := config.LoadConfigOrDefault(cfgPath)

	// Flags win over config defaults.
	format := *outputFormat
	if format == "" {
		format = cfg.Defaults.Format
	}
	isVerbose := *verbose || cfg.Defaults.Verbose
	isDebug := *debug || cfg.Defaults.Debug
	isNoColor := *noColor || cfg.Defaults.NoColor
	isRecursive := *recursive || cfg.Defaults.Recursive
	isDryRun := *dryRun || cfg.Defaults.DryRun
	isInteractive := *interactive || cfg.Defaults.Interactive

	level := observability.LevelOff
	if isDebug {
		level = observability.LevelDebug
	} else if isVerbose {
		level = observability.LevelMetrics
	}
	observer := observability.NewStandardObserver(level, os.Stderr)

	rules, err := cfg.Rules()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	dictionaries := loadDictionaries(cfg)

	ledger := *ledgerFile
	if ledger == "" {
		ledger = cfg.LedgerPath()
	}
	memory := corrections.NewMemory(ledger)
	if err := memory.Load(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}

	corrector := correct.NewCorrector(memory).
		WithValidator("ticket_number", ticketnumber.Validate).
		WithValidator("manifest_number", ticketnumber.Validate).
		WithValidator("amount", money.Validate).
		WithValidator("date", date.Validate).
		WithObserver(observer)
	corrector.SetDryRun(isDryRun)
	for field, dict := range dictionaries {
		corrector.WithDictionary(field, dict)
	}

	var approve correct.ApproveFunc
	if isInteractive {
		if !isTerminal(os.Stdin) {
			fmt.Fprintln(os.Stderr, "Warning: -interactive requires a terminal, approving automatically")
		} else {
			approve = promptApproval(bufio.NewReader(os.Stdin))
		}
	}

	inputPaths := flag.Args()
	if *inputFile != "" {
		inputPaths = append([]string{*inputFile}, inputPaths...)
	}
	if len(inputPaths) == 0 {
		fmt.Fprintln(os.Stderr, "Error: input file or directory is required (-file)")
		flag.Usage()
		os.Exit(1)
	}

	var files []string
	for _, path := range inputPaths {
		found, err := collectFiles(filepath.Clean(path), isRecursive)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error processing %s: %v\n", path, err)
			continue
		}
		files = append(files, found...)
	}
	if len(files) == 0 {
		fmt.Fprintln(os.Stderr, "Error: no processable files found")
		os.Exit(1)
	}

	pipeline := &pipeline{
		rules:     rules,
		defaults:  cfg.DefaultValues(),
		overrides: overrides,
		extractor: extract.NewExtractor(observer),
		metadata:  metadata.NewExtractor(dictionaries["vendor_name"]),
		corrector: corrector,
		approve:   approve,
		observer:  observer,
	}

	results := make([]formatters.DocumentResult, 0, len(files))
	failed := 0
	for _, file := range files {
		result := pipeline.process(file)
		if result.Error != "" {
			failed++
		}
		results = append(results, result)
	}

	output, err := formatters.Export(format, results, formatters.FormatterOptions{
		Verbose: isVerbose,
		NoColor: isNoColor || *outputFile != "",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *outputFile != "" {
		if err := os.WriteFile(*outputFile, []byte(output), 0600); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing output file: %v\n", err)
			os.Exit(1)
		}
	} else {
		fmt.Print(output)
	}

	if failed == len(files) {
		os.Exit(1)
	}
}

// pipeline holds the per-run processing components.
type pipeline struct {
	rules     []extract.FieldRule
	defaults  map[string]string
	overrides map[string]string
	extractor *extract.Extractor
	metadata  *metadata.Extractor
	corrector *correct.Corrector
	approve   correct.ApproveFunc
	observer  *observability.StandardObserver
}

// process runs one document end to end: page extraction, path and EXIF
// metadata, precedence resolution, then correction of the winning values.
func (p *pipeline) process(file string) formatters.DocumentResult {
	finish := p.observer.StartStep("main", "process", file)

	resolver := resolve.NewResolver()
	for field, value := range p.overrides {
		resolver.AddValue(field, value, resolve.SourceManual, 1.0, "manual", "", nil)
	}

	if isImage(file) {
		if c, ok := metadata.ExifDate(file); ok {
			resolver.AddCandidate(c)
		}
	} else {
		pages, err := pdfpage.Load(file)
		if err != nil {
			finish(false, err.Error())
			return formatters.DocumentResult{Document: file, Error: err.Error()}
		}
		for _, page := range pages {
			for _, c := range p.extractor.ExtractAll(page, p.rules, file) {
				resolver.AddCandidate(c)
			}
		}
	}

	for _, c := range p.metadata.FromPath(file) {
		resolver.AddCandidate(c)
	}
	for field, value := range p.defaults {
		resolver.AddValue(field, value, resolve.SourceDefault, 1.0, "config_default", "", nil)
	}

	resolved := resolver.ResolveAll()

	record := make(map[string]string, len(resolved))
	for field, r := range resolved {
		record[field] = r.Value
	}
	corrected := p.corrector.CorrectRecord(record, map[string]string{"document": file}, p.approve)

	fields := make([]resolve.ResolvedField, 0, len(resolved))
	for _, field := range resolver.FieldNames() {
		r, ok := resolved[field]
		if !ok {
			continue
		}
		if v, changed := corrected[field]; changed && v != r.Value {
			r.Value = v
		}
		fields = append(fields, r)
	}

	finish(true, fmt.Sprintf("%d fields", len(fields)))
	return formatters.DocumentResult{Document: file, Fields: fields}
}

// loadDictionaries reads the configured closed-vocabulary CSV files,
// warning and continuing when one cannot be read.
func loadDictionaries(cfg *config.Config) map[string]*fuzzy.Dictionary {
	out := make(map[string]*fuzzy.Dictionary)
	for field, path := range cfg.Dictionaries {
		dict, err := fuzzy.LoadDictionaryCSV(path, fuzzy.DefaultCutoff)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: dictionary for %s: %v\n", field, err)
			continue
		}
		out[field] = dict
	}
	return out
}

// promptApproval asks on stderr and reads the answer from the terminal.
func promptApproval(in *bufio.Reader) correct.ApproveFunc {
	return func(field, old, proposed string, meta map[string]string) bool {
		fmt.Fprintf(os.Stderr, "Correct %s %q -> %q [y/N]? ", field, old, proposed)
		line, err := in.ReadString('\n')
		if err != nil {
			return false
		}
		answer := strings.ToLower(strings.TrimSpace(line))
		return answer == "y" || answer == "yes"
	}
}

// collectFiles expands a path into the processable files under it.
func collectFiles(path string, recursive bool) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	var files []string
	if recursive {
		err = filepath.Walk(path, func(p string, fi os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if !fi.IsDir() && isProcessable(p) {
				files = append(files, p)
			}
			return nil
		})
		return files, err
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	for _, entry := range entries {
		if !entry.IsDir() && isProcessable(entry.Name()) {
			files = append(files, filepath.Join(path, entry.Name()))
		}
	}
	return files, nil
}

func isProcessable(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf", ".json", ".jpg", ".jpeg", ".png", ".tif", ".tiff":
		return true
	}
	return false
}

func isImage(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg", ".png", ".tif", ".tiff":
		return true
	}
	return false
}

// isTerminal checks if the file descriptor is a terminal
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
