package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/fwojciec/serp"
)

var (
	okColor   = color.New(color.FgGreen)
	failColor = color.New(color.FgRed)
	headColor = color.New(color.FgCyan, color.Bold)
)

// Run executes the analyze command.
func (c *AnalyzeCmd) Run(deps *Dependencies) error {
	params := deps.Config.Params(c.Query)
	if c.Count != 0 {
		params.Count = c.Count
	}
	if c.Delay != 0 {
		params.Delay = c.Delay
	}
	dir := deps.Config.OutputDir
	if c.Output != "" {
		dir = c.Output
	}
	return analyzeAndExport(deps, params, dir, !c.NoSave)
}

// Run executes the prompt command. It asks for the query and result count
// on stdin and writes to the configured output directory.
func (c *PromptCmd) Run(deps *Dependencies) error {
	in := bufio.NewReader(deps.Stdin)

	fmt.Fprint(deps.Stdout, "Enter your search query: ")
	query, err := readLine(in)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", err)
		return err
	}

	params := deps.Config.Params(query)
	fmt.Fprintf(deps.Stdout, "Enter number of results to analyze (default %d): ", params.Count)
	answer, err := readLine(in)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", err)
		return err
	}
	if answer != "" {
		n, err := strconv.Atoi(answer)
		if err != nil {
			err := serp.Errorf(serp.EINVALID, "invalid number of results %q", answer)
			fmt.Fprintf(deps.Stderr, "error: %s\n", serp.ErrorMessage(err))
			return err
		}
		params.Count = n
	}

	return analyzeAndExport(deps, params, deps.Config.OutputDir, true)
}

// readLine returns the next trimmed line. A final line without a newline
// is accepted.
func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err == io.EOF && line != "" {
		err = nil
	}
	if err == io.EOF {
		return "", serp.Errorf(serp.EINVALID, "unexpected end of input")
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// analyzeAndExport runs the pipeline for params, writes the export files to
// dir and optionally saves the run to history.
func analyzeAndExport(deps *Dependencies, params serp.Params, dir string, save bool) error {
	if err := params.Validate(); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", serp.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "\nAnalyzing top %d results for: %s\n", params.Count, params.Query)

	p := newProgress(deps.Stdout, deps.Stderr)
	p.start("Searching...")
	run, err := deps.Analyzer.Analyze(deps.Ctx, params, p.found, p.report)
	p.stop()
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", serp.ErrorMessage(err))
		return err
	}

	artifacts, err := deps.NewExporter(dir).Export(deps.Ctx, run)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", serp.ErrorMessage(err))
		return err
	}

	printSummary(deps.Stdout, run)
	printArtifacts(deps.Stdout, artifacts)

	if save {
		if err := deps.Runs.CreateRun(deps.Ctx, run); err != nil {
			fmt.Fprintf(deps.Stderr, "warning: run not saved to history: %s\n", serp.ErrorMessage(err))
		} else {
			fmt.Fprintf(deps.Stdout, "Saved to history as %s\n", run.ID)
		}
	}
	return nil
}

func printSummary(w io.Writer, run *serp.Run) {
	s := run.Summary()
	headColor.Fprintf(w, "\nAnalyzed %d pages", s.Analyzed)
	if s.Failed > 0 {
		fmt.Fprintf(w, " (%d skipped)", s.Failed)
	}
	fmt.Fprintln(w)

	fmt.Fprint(w, "Average headings per page:")
	for _, l := range serp.HeadingLevels {
		fmt.Fprintf(w, "  %s %.1f", strings.ToUpper(l.String()), s.Average(l))
	}
	fmt.Fprintln(w)
}

var formatLabels = map[string]string{
	".json": "JSON",
	".xlsx": "Excel",
}

func printArtifacts(w io.Writer, artifacts []serp.Artifact) {
	fmt.Fprintln(w, "Results saved to:")
	for _, a := range artifacts {
		ext := strings.ToLower(filepath.Ext(a.Name))
		label := formatLabels[ext]
		if label == "" {
			label = strings.TrimPrefix(ext, ".")
		}
		fmt.Fprintf(w, "- %s: %s\n", label, a.Path)
	}
}

// progress prints one line per processed URL and keeps a spinner running
// on stderr between lines when stderr is a terminal.
type progress struct {
	out     io.Writer
	spinner *spinner.Spinner
}

func newProgress(stdout, stderr io.Writer) *progress {
	p := &progress{out: stdout}
	if f, ok := stderr.(*os.File); ok {
		p.spinner = spinner.New(spinner.CharSets[9], 100*time.Millisecond, spinner.WithWriter(f))
	}
	return p
}

func (p *progress) start(suffix string) {
	if p.spinner == nil {
		return
	}
	p.spinner.Suffix = " " + suffix
	p.spinner.Start()
}

func (p *progress) stop() {
	if p.spinner != nil {
		p.spinner.Stop()
	}
}

func (p *progress) found(urls []string) {
	p.stop()
	fmt.Fprintf(p.out, "Found %d URLs\n", len(urls))
	for i, u := range urls {
		fmt.Fprintf(p.out, "  %2d. %s\n", i+1, u)
	}
	if len(urls) > 0 {
		p.start(fmt.Sprintf("Analyzing result 1/%d", len(urls)))
	}
}

func (p *progress) report(e serp.Progress) {
	p.stop()
	if e.Err != nil {
		failColor.Fprintf(p.out, "✗ [%d/%d] %s: %v\n", e.Index, e.Total, e.URL, e.Err)
	} else {
		okColor.Fprintf(p.out, "✓ [%d/%d] %s\n", e.Index, e.Total, e.URL)
	}
	if e.Index < e.Total {
		p.start(fmt.Sprintf("Analyzing result %d/%d", e.Index+1, e.Total))
	}
}
