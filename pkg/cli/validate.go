// Package cli implements the stix2validator command: it discovers input
// files, runs them through the validation engine in parallel, and renders
// the findings on the console.
package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/sourcegraph/conc/pool"

	"github.com/mdazam1942/cti-stix-validator/internal/locator"
	"github.com/mdazam1942/cti-stix-validator/pkg/console"
	"github.com/mdazam1942/cti-stix-validator/pkg/schemas"
	"github.com/mdazam1942/cti-stix-validator/pkg/validator"
)

// MaxConcurrentValidations caps the worker pool used for batch validation.
const MaxConcurrentValidations = 8

// Options configures a validation run.
type Options struct {
	Validator validator.Options

	// Recursive descends into subdirectories when an input path is a
	// directory.
	Recursive bool

	// Watch keeps the process alive and revalidates inputs as they change.
	Watch bool

	// Quiet suppresses per-file success lines and the summary table.
	Quiet bool

	// SchemaDir overrides the embedded schema set with a local directory.
	SchemaDir string
}

// fileResult is the outcome of validating one input file.
type fileResult struct {
	path    string
	src     []byte
	results *validator.Results
	err     error
}

func (fr *fileResult) valid() bool {
	return fr.err == nil && fr.results != nil && fr.results.Valid
}

// ValidatePaths validates every file reachable from the given paths and
// reports the findings. It returns true when every file validated cleanly;
// an error is returned only for problems with the run itself (no inputs,
// unreadable schema directory), not for invalid documents.
func ValidatePaths(paths []string, opts Options) (bool, error) {
	v, err := newValidator(opts)
	if err != nil {
		return false, err
	}

	files, err := discoverFiles(paths, opts.Recursive)
	if err != nil {
		return false, err
	}

	if opts.Watch {
		return watchAndValidate(v, paths, opts)
	}

	results := validateFiles(v, files, opts)
	for _, fr := range results {
		printFileResult(fr, opts)
	}
	if len(results) > 1 && !opts.Quiet {
		fmt.Println(console.RenderSummary(buildSummary(results)))
	}

	allValid := true
	for _, fr := range results {
		if !fr.valid() {
			allValid = false
		}
	}
	return allValid, nil
}

func newValidator(opts Options) (*validator.Validator, error) {
	schemaFS := schemas.FS()
	if opts.SchemaDir != "" {
		info, err := os.Stat(opts.SchemaDir)
		if err != nil {
			return nil, fmt.Errorf("schema directory: %w", err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("schema path %s is not a directory", opts.SchemaDir)
		}
		schemaFS = os.DirFS(opts.SchemaDir)
	}
	return validator.New(opts.Validator, schemaFS)
}

// discoverFiles expands the given paths into a sorted list of input files.
// Files are accepted as given; directories contribute their .json, .yaml and
// .yml entries, descending into subdirectories only when recursive is set.
func discoverFiles(paths []string, recursive bool) ([]string, error) {
	var files []string
	seen := make(map[string]struct{})

	add := func(path string) {
		if _, ok := seen[path]; ok {
			return
		}
		seen[path] = struct{}{}
		files = append(files, path)
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("input path: %w", err)
		}
		if !info.IsDir() {
			add(path)
			continue
		}
		err = filepath.WalkDir(path, func(entry string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if entry != path && !recursive {
					return filepath.SkipDir
				}
				return nil
			}
			if hasInputExt(entry) {
				add(entry)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walking %s: %w", path, err)
		}
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("%w in %s", validator.ErrNoFilesFound, strings.Join(paths, ", "))
	}
	sort.Strings(files)
	return files, nil
}

func hasInputExt(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json", ".yaml", ".yml":
		return true
	}
	return false
}

// validateFiles runs the files through the validator with bounded
// concurrency, showing a spinner for larger batches on a terminal.
func validateFiles(v *validator.Validator, files []string, opts Options) []*fileResult {
	var spin *console.Spinner
	if len(files) > 1 && !opts.Quiet {
		spin = console.NewSpinner(fmt.Sprintf("Validating %d files...", len(files)))
		spin.Start()
	}

	p := pool.NewWithResults[*fileResult]().WithMaxGoroutines(MaxConcurrentValidations)
	for _, file := range files {
		file := file
		p.Go(func() *fileResult {
			return validateFile(v, file)
		})
	}
	results := p.Wait()

	if spin != nil {
		spin.Stop()
	}

	// Pool results arrive in completion order; restore input order.
	sort.Slice(results, func(i, j int) bool { return results[i].path < results[j].path })
	return results
}

// validateFile reads, parses and validates a single input file.
func validateFile(v *validator.Validator, path string) *fileResult {
	fr := &fileResult{path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		fr.err = fmt.Errorf("reading %s: %w", path, err)
		return fr
	}
	fr.src = data

	doc, err := parseDocument(path, data)
	if err != nil {
		fr.err = fmt.Errorf("parsing %s: %w", path, err)
		return fr
	}

	fr.results = v.ValidateDocument(doc)
	return fr
}

// parseDocument decodes a JSON or YAML input into the generic document shape
// the validator expects. YAML documents are round-tripped through JSON so
// that maps and numbers come out identical to a native JSON decode.
func parseDocument(path string, data []byte) (any, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var raw any
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
		normalized, err := json.Marshal(raw)
		if err != nil {
			return nil, err
		}
		var doc any
		if err := json.Unmarshal(normalized, &doc); err != nil {
			return nil, err
		}
		return doc, nil
	default:
		var doc any
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
		return doc, nil
	}
}

// printFileResult renders the findings for one file: a success line when the
// file is clean, or one diagnostic per finding with the object's source
// position when it can be located.
func printFileResult(fr *fileResult, opts Options) {
	if fr.err != nil {
		fmt.Fprintln(os.Stderr, console.FormatDiagnostic(console.Diagnostic{
			Position: console.Position{File: fr.path},
			Severity: "error",
			Message:  fr.err.Error(),
		}))
		return
	}

	if fr.results.Fatal != nil {
		fmt.Fprintln(os.Stderr, console.FormatDiagnostic(console.Diagnostic{
			Position: console.Position{File: fr.path},
			Severity: "error",
			Message:  fr.results.Fatal.Message,
		}))
		return
	}

	for _, obj := range fr.results.Objects {
		for _, e := range obj.Errors {
			printFinding(fr, obj, e.Message, "error")
		}
		if !opts.Quiet {
			for _, w := range obj.Warnings {
				printFinding(fr, obj, w.Message, "warning")
			}
		}
	}

	if fr.results.Valid && !opts.Quiet {
		fmt.Println(console.FormatSuccessMessage(fmt.Sprintf("%s is valid", console.ToRelativePath(fr.path))))
	}
}

func printFinding(fr *fileResult, obj *validator.ObjectResult, message, severity string) {
	d := console.Diagnostic{
		Position: console.Position{File: fr.path},
		Severity: severity,
		Message:  message,
	}
	if pos, ok := locator.LocateKey(fr.src, obj.Path); ok {
		d.Position.Line = pos.Line
		d.Position.Column = pos.Column
		d.Context = contextLines(fr.src, pos.Line)
	}
	out := os.Stdout
	if severity == "error" {
		out = os.Stderr
	}
	fmt.Fprintln(out, console.FormatDiagnostic(d))
}

// contextLines returns the source line at lineNum with one line of context
// on each side.
func contextLines(src []byte, lineNum int) []string {
	lines := strings.Split(string(src), "\n")
	start := lineNum - 2
	if start < 0 {
		start = 0
	}
	end := lineNum + 1
	if end > len(lines) {
		end = len(lines)
	}
	if start >= end {
		return nil
	}
	return lines[start:end]
}

// buildSummary assembles the per-file tally table shown after a batch run.
func buildSummary(results []*fileResult) console.Summary {
	s := console.Summary{Headers: []string{"File", "Status", "Errors", "Warnings"}}

	totalErrors, totalWarnings, validCount := 0, 0, 0
	for _, fr := range results {
		status := "invalid"
		errorCount, warningCount := 1, 0
		if fr.err == nil {
			errorCount = fr.results.ErrorCount()
			warningCount = fr.results.WarningCount()
			if fr.results.Valid {
				status = "valid"
				validCount++
			}
		}
		totalErrors += errorCount
		totalWarnings += warningCount
		s.Rows = append(s.Rows, []string{
			console.ToRelativePath(fr.path),
			status,
			strconv.Itoa(errorCount),
			strconv.Itoa(warningCount),
		})
	}

	s.Footer = []string{
		fmt.Sprintf("%d/%d valid", validCount, len(results)),
		"",
		strconv.Itoa(totalErrors),
		strconv.Itoa(totalWarnings),
	}
	return s
}
