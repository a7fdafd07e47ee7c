package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	charmlog "github.com/charmbracelet/log"
	"github.com/fwojciec/serp"
	"github.com/fwojciec/serp/analyze"
	"github.com/fwojciec/serp/fs"
	"github.com/fwojciec/serp/goquery"
	serphttp "github.com/fwojciec/serp/http"
	serpslog "github.com/fwojciec/serp/slog"
	"github.com/fwojciec/serp/sqlite"
	"github.com/fwojciec/serp/xlsx"
	"github.com/fwojciec/serp/yaml"
)

// DefaultConfigPath is read when no config path is given. It may be absent.
const DefaultConfigPath = "serp.yaml"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		stop()
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Database path. Set before calling Run(). When empty, the config file's
	// db_path is used, then ~/.serp/serp.db.
	DBPath string

	// Stdin is read by the prompt command.
	Stdin io.Reader

	// SQLite database holding the run history.
	DB *sqlite.DB
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		DBPath: os.Getenv("SERP_DB"),
		Stdin:  os.Stdin,
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdin:  m.Stdin,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("serp"),
		kong.Description("Analyze the heading structure of top search results"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}),
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'serp --help' to see available commands")
	}

	cmd := args[0]
	if cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		fmt.Fprintf(stderr, "error: %s\n", err)
		return err
	}

	cfg, err := loadConfig(cli.Config)
	if err != nil {
		fmt.Fprintf(stderr, "error: %s\n", serp.ErrorMessage(err))
		return err
	}
	deps.Config = cfg

	level := charmlog.ErrorLevel
	if cli.Verbose {
		level = charmlog.DebugLevel
	}
	logger := slog.New(charmlog.NewWithOptions(stderr, charmlog.Options{
		Level:           level,
		ReportTimestamp: true,
	}))
	deps.Logger = logger

	dbPath := m.DBPath
	if dbPath == "" {
		dbPath = cfg.DBPath
	}
	if dbPath == "" {
		dbPath = defaultDBPath()
	}
	m.DB = sqlite.NewDB(dbPath)
	if err := m.DB.Open(); err != nil {
		fmt.Fprintf(stderr, "error: failed to open database at %q: %s\n", dbPath, err)
		fmt.Fprintf(stderr, "Hint: Set SERP_DB to use a different database path\n")
		return fmt.Errorf("failed to open database at %q: %w", dbPath, err)
	}
	defer m.Close()

	deps.Runs = serpslog.NewLoggingRunService(sqlite.NewRunService(m.DB), logger)
	deps.NewExporter = func(dir string) serp.Exporter {
		return serpslog.NewLoggingExporter(newFileExporter(dir), logger)
	}

	command := strings.Fields(kongCtx.Command())[0]
	switch command {
	case "analyze", "prompt", "serve":
		deps.Analyzer = newAnalyzer(cfg, logger)
	}

	if command == "serve" {
		s := serphttp.NewServer()
		s.Addr = cfg.Addr
		if cli.Serve.Addr != "" {
			s.Addr = cli.Serve.Addr
		}
		exporter := newFileExporter(cfg.OutputDir)
		s.Analyzer = deps.Analyzer
		s.Exporter = serpslog.NewLoggingExporter(exporter, logger)
		s.Artifacts = exporter
		s.Runs = deps.Runs
		s.Defaults = cfg.Params("")
		s.Logger = logger
		deps.Server = s
	}

	return kongCtx.Run(deps)
}

// newFileExporter returns the exporter writing JSON and Excel files to dir.
func newFileExporter(dir string) *fs.Exporter {
	return fs.NewExporter(dir, serp.JSONFormat{}, xlsx.Format{})
}

// newAnalyzer wires the search provider, fetcher and extractor selected
// by cfg.
func newAnalyzer(cfg *serp.Config, logger *slog.Logger) *analyze.Analyzer {
	client := &http.Client{Timeout: cfg.Timeout}

	var source serp.URLSource
	switch cfg.Search.Provider {
	case serp.ProviderSearXNG:
		s := serphttp.NewSearXNG(cfg.Search.SearXNGURL, client)
		s.UserAgent = cfg.UserAgent
		source = s
	default:
		s := serphttp.NewDuckDuckGo(client)
		s.UserAgent = cfg.UserAgent
		source = s
	}

	fetcher := serphttp.NewFetcher(
		serphttp.WithTimeout(cfg.Timeout),
		serphttp.WithUserAgent(cfg.UserAgent),
	)

	return &analyze.Analyzer{
		Source:    serpslog.NewLoggingURLSource(source, cfg.Search.Provider, logger),
		Fetcher:   serpslog.NewLoggingFetcher(fetcher, logger),
		Extractor: goquery.NewExtractor(),
		Logger:    logger,
	}
}

// loadConfig reads the config file at path. An empty path reads
// DefaultConfigPath if it exists and falls back to the built-in defaults.
func loadConfig(path string) (*serp.Config, error) {
	if path != "" {
		return yaml.LoadConfig(path)
	}
	cfg, err := yaml.LoadConfig(DefaultConfigPath)
	if serp.ErrorCode(err) == serp.ENOTFOUND {
		return serp.DefaultConfig(), nil
	}
	return cfg, err
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "serp.db"
	}
	dir := filepath.Join(home, ".serp")
	_ = os.MkdirAll(dir, 0755)
	return filepath.Join(dir, "serp.db")
}
