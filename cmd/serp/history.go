package main

import (
	"fmt"
	"strings"

	"github.com/fwojciec/serp"
)

// fingerprintLen is how much of a run fingerprint is printed.
const fingerprintLen = 8

// Run executes the history command.
func (c *HistoryCmd) Run(deps *Dependencies) error {
	filter := serp.RunFilter{Limit: c.Limit}
	if c.Query != "" {
		filter.Query = &c.Query
	}

	runs, err := deps.Runs.FindRuns(deps.Ctx, filter)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", serp.ErrorMessage(err))
		return err
	}

	if len(runs) == 0 {
		fmt.Fprintln(deps.Stdout, "No saved runs. Use 'serp analyze' to create one.")
		return nil
	}

	for _, r := range runs {
		fp := r.Fingerprint
		if len(fp) > fingerprintLen {
			fp = fp[:fingerprintLen]
		}
		fmt.Fprintf(deps.Stdout, "%s  %s  %3d pages  %s  %s\n",
			r.ID, r.StartedAt.Format("2006-01-02 15:04:05"), r.RecordCount, fp, r.Query)
	}
	return nil
}

// Run executes the show command.
func (c *ShowCmd) Run(deps *Dependencies) error {
	run, err := deps.Runs.FindRunByID(deps.Ctx, c.ID)
	if err != nil {
		if serp.ErrorCode(err) == serp.ENOTFOUND {
			fmt.Fprintf(deps.Stderr, "error: run %q not found. Use 'serp history' to see saved runs.\n", c.ID)
			return err
		}
		fmt.Fprintf(deps.Stderr, "error: %s\n", serp.ErrorMessage(err))
		return err
	}

	headColor.Fprintf(deps.Stdout, "%s\n", run.Query)
	fmt.Fprintf(deps.Stdout, "Started %s\n", run.StartedAt.Format("2006-01-02 15:04:05"))
	for _, rec := range run.Records {
		fmt.Fprintf(deps.Stdout, "\n#%d %s\n", rec.Rank, rec.URL)
		fmt.Fprintf(deps.Stdout, "   Title: %s\n", rec.Title)
		fmt.Fprintf(deps.Stdout, "   Meta description: %s\n", rec.MetaDescription)
		for _, l := range serp.HeadingLevels {
			for _, text := range rec.Level(l) {
				fmt.Fprintf(deps.Stdout, "   %s%s %s\n", strings.Repeat("  ", int(l)-1), strings.ToUpper(l.String()), text)
			}
		}
	}
	printSummary(deps.Stdout, run)
	return nil
}

// Run executes the export command.
func (c *ExportCmd) Run(deps *Dependencies) error {
	run, err := deps.Runs.FindRunByID(deps.Ctx, c.ID)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", serp.ErrorMessage(err))
		return err
	}

	dir := deps.Config.OutputDir
	if c.Output != "" {
		dir = c.Output
	}
	artifacts, err := deps.NewExporter(dir).Export(deps.Ctx, run)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", serp.ErrorMessage(err))
		return err
	}
	printArtifacts(deps.Stdout, artifacts)
	return nil
}

// Run executes the delete command.
func (c *DeleteCmd) Run(deps *Dependencies) error {
	if !c.Force {
		fmt.Fprintf(deps.Stderr, "error: use --force to confirm deletion\n")
		return serp.Errorf(serp.EINVALID, "use --force to confirm deletion")
	}

	if err := deps.Runs.DeleteRun(deps.Ctx, c.ID); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", serp.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Deleted run %s\n", c.ID)
	return nil
}
