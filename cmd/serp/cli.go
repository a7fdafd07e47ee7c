package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/fwojciec/serp"
	serphttp "github.com/fwojciec/serp/http"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx    context.Context
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	Config *serp.Config
	Logger *slog.Logger

	Analyzer serp.Analyzer
	Runs     serp.RunService
	Server   *serphttp.Server

	// NewExporter returns an exporter writing into dir.
	NewExporter func(dir string) serp.Exporter
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Config  string `help:"Path to YAML config file" env:"SERP_CONFIG" placeholder:"PATH"`
	Verbose bool   `short:"v" help:"Enable debug logging"`

	Analyze AnalyzeCmd `cmd:"" help:"Analyze heading structure of top search results"`
	Prompt  PromptCmd  `cmd:"" help:"Prompt for a query and analyze it"`
	Serve   ServeCmd   `cmd:"" help:"Start the web interface"`
	History HistoryCmd `cmd:"" help:"List saved analysis runs"`
	Show    ShowCmd    `cmd:"" help:"Show records of a saved run"`
	Export  ExportCmd  `cmd:"" help:"Export a saved run to JSON and Excel files"`
	Delete  DeleteCmd  `cmd:"" help:"Delete a saved run"`
}

// AnalyzeCmd is the "analyze" subcommand. Zero values use the configured
// defaults.
type AnalyzeCmd struct {
	Query  string        `arg:"" help:"Search query"`
	Count  int           `short:"n" help:"Number of results to analyze (1-20)"`
	Delay  time.Duration `short:"d" help:"Pause before each request (1s-5s)"`
	Output string        `short:"o" help:"Output directory" placeholder:"DIR"`
	NoSave bool          `help:"Do not save the run to history"`
}

// PromptCmd is the "prompt" subcommand.
type PromptCmd struct{}

// ServeCmd is the "serve" subcommand.
type ServeCmd struct {
	Addr string `help:"Listen address" placeholder:"HOST:PORT"`
}

// HistoryCmd is the "history" subcommand.
type HistoryCmd struct {
	Query string `short:"q" help:"Only show runs for this exact query"`
	Limit int    `short:"l" default:"20" help:"Maximum number of runs to list"`
}

// ShowCmd is the "show" subcommand.
type ShowCmd struct {
	ID string `arg:"" help:"Run ID"`
}

// ExportCmd is the "export" subcommand.
type ExportCmd struct {
	ID     string `arg:"" help:"Run ID"`
	Output string `short:"o" help:"Output directory" placeholder:"DIR"`
}

// DeleteCmd is the "delete" subcommand.
type DeleteCmd struct {
	ID    string `arg:"" help:"Run ID"`
	Force bool   `help:"Confirm deletion"`
}
