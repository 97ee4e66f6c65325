// Command typetheword parses provider markup, replays typing sessions and
// serves the WebSocket typing server.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kong"

	"github.com/joshuawootonn/type-the-word-sub001/core/cache"
	"github.com/joshuawootonn/type-the-word-sub001/core/canon"
	"github.com/joshuawootonn/type-the-word-sub001/core/cas"
	"github.com/joshuawootonn/type-the-word-sub001/core/errors"
	"github.com/joshuawootonn/type-the-word-sub001/core/parser"
	"github.com/joshuawootonn/type-the-word-sub001/core/passage"
	"github.com/joshuawootonn/type-the-word-sub001/core/sqlite"
	"github.com/joshuawootonn/type-the-word-sub001/core/typing"
	"github.com/joshuawootonn/type-the-word-sub001/internal/config"
	"github.com/joshuawootonn/type-the-word-sub001/internal/logging"
	"github.com/joshuawootonn/type-the-word-sub001/internal/passages"
	"github.com/joshuawootonn/type-the-word-sub001/internal/progress"
	"github.com/joshuawootonn/type-the-word-sub001/internal/server"
	"github.com/joshuawootonn/type-the-word-sub001/internal/session"
)

const version = "0.4.0"

// Globals are flags shared by every command.
type Globals struct {
	Config    string `name:"config" short:"c" help:"Configuration file (TOML)" type:"path" env:"TYPETHEWORD_CONFIG"`
	LogLevel  string `name:"log-level" help:"Override logging.level (debug, info, warn, error)"`
	LogFormat string `name:"log-format" help:"Override logging.format (json, text)"`

	out io.Writer `kong:"-"`
}

// CLI defines the command-line interface for typetheword.
type CLI struct {
	Globals

	Parse        ParseCmd        `cmd:"" help:"Parse a provider HTML file into a passage"`
	Replay       ReplayCmd       `cmd:"" help:"Replay keystrokes against a passage"`
	Serve        ServeCmd        `cmd:"" help:"Start the passage API and typing server"`
	Progress     ProgressCmd     `cmd:"" help:"Show typing progress for a chapter"`
	Translations TranslationsCmd `cmd:"" help:"List supported translations"`
	Version      VersionCmd      `cmd:"" help:"Print version information"`
}

// load reads the configuration, applies flag overrides and initializes
// logging.
func (g *Globals) load() (*config.Config, error) {
	cfg, err := config.Load(g.Config)
	if err != nil {
		return nil, err
	}
	if g.LogLevel != "" {
		cfg.Logging.Level = g.LogLevel
	}
	if g.LogFormat != "" {
		cfg.Logging.Format = g.LogFormat
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.InitLogging(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// openProgress opens the configured progress database, creating its
// directory.
func openProgress(ctx context.Context, cfg *config.Config) (*progress.SQLiteStore, error) {
	path := cfg.Progress.Database
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, errors.NewIO("create directory", filepath.Dir(path), err)
		}
	}
	return progress.OpenSQLite(ctx, path, canon.KJV())
}

// ParseCmd parses a markup file.
type ParseCmd struct {
	File        string `arg:"" help:"Provider HTML file" type:"existingfile"`
	Translation string `short:"t" required:"" help:"Translation id (e.g. esv, bsb, nlt)"`
	JSON        bool   `help:"Print the passage as JSON"`
}

func (c *ParseCmd) Run(g *Globals) error {
	if _, err := g.load(); err != nil {
		return err
	}
	p, err := parseFile(c.File, c.Translation)
	if err != nil {
		return err
	}

	if c.JSON {
		enc := json.NewEncoder(g.out)
		enc.SetIndent("", "  ")
		return enc.Encode(p)
	}

	ref := canon.KJV().FormatRef(p.Book, p.Chapter, 0, canon.FormatOptions{})
	fmt.Fprintf(g.out, "%s (%s): %d verses, %d headers\n\n", ref, p.Translation, len(typing.Verses(p)), len(p.Headers()))
	fmt.Fprint(g.out, p.Text())
	return nil
}

func parseFile(path, translation string) (*passage.Passage, error) {
	markup, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewIO("read", path, err)
	}
	p, err := parser.Parse(markup, translation)
	if err != nil {
		return nil, errors.Wrapf(err, "parse %s", filepath.Base(path))
	}
	return p, nil
}

// ReplayCmd replays a keystroke log or plain text through the controller.
type ReplayCmd struct {
	File        string `arg:"" help:"Provider HTML file" type:"existingfile"`
	Translation string `short:"t" required:"" help:"Translation id"`
	Log         string `help:"Keystroke log: JSON array of {\"type\",\"key\"} objects" type:"existingfile" xor:"input"`
	Text        string `help:"Type this text instead of a log" xor:"input"`
	Verse       int    `help:"Start at this verse"`
	Assignment  string `help:"Assignment id attached to completion events"`
	Record      bool   `help:"Save completion events to the progress database"`
}

func (c *ReplayCmd) Run(g *Globals) error {
	cfg, err := g.load()
	if err != nil {
		return err
	}
	p, err := parseFile(c.File, c.Translation)
	if err != nil {
		return err
	}

	var keys []typing.Keystroke
	switch {
	case c.Log != "":
		if keys, err = readLog(c.Log); err != nil {
			return err
		}
	case c.Text != "":
		keys = typing.Keystrokes(c.Text)
	default:
		return errors.NewValidation("input", "one of --log or --text is required")
	}

	ctx := context.Background()
	var sink typing.Sink
	var finish func() error
	if c.Record {
		store, err := openProgress(ctx, cfg)
		if err != nil {
			return err
		}
		d := progress.NewDispatcher(store, cfg.Progress.Buffer)
		sink = d
		finish = func() error {
			defer store.Close()
			return d.Close(ctx)
		}
	}

	ctrl := typing.NewController(p, typing.Config{Sink: sink, AssignmentID: c.Assignment})
	if c.Verse > 0 {
		if err := ctrl.Start(passage.VerseRef{Book: p.Book, Chapter: p.Chapter, Verse: c.Verse, Translation: p.Translation}); err != nil {
			return err
		}
	}

	var admitted, rejected int
	for _, k := range keys {
		res, err := ctrl.Keystroke(k)
		if err != nil {
			return err
		}
		admitted += res.Admitted
		rejected += res.Rejected
		for _, e := range res.Completed {
			fmt.Fprintf(g.out, "completed %s %d:%d\n", e.Book, e.Chapter, e.Verse)
		}
	}

	fmt.Fprintf(g.out, "admitted %d, rejected %d, state %s\n", admitted, rejected, ctrl.State())
	if v, ok := ctrl.Active(); ok {
		var typed strings.Builder
		for _, a := range ctrl.Position() {
			typed.WriteString(passage.Text(a))
		}
		fmt.Fprintf(g.out, "active %s: %q\n", v.Ref, typed.String())
	}

	if finish != nil {
		return finish()
	}
	return nil
}

// readLog reads a JSON keystroke log and validates every kind.
func readLog(path string) ([]typing.Keystroke, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewIO("read", path, err)
	}
	var keys []typing.Keystroke
	if err := json.Unmarshal(data, &keys); err != nil {
		pe := errors.NewParse("keystroke log", path, "invalid JSON")
		pe.Err = err
		return nil, pe
	}
	for i, k := range keys {
		if _, err := typing.ParseKind(string(k.Kind)); err != nil {
			return nil, errors.NewParse("keystroke log", path, fmt.Sprintf("entry %d: unknown kind %q", i, k.Kind))
		}
	}
	return keys, nil
}

// ServeCmd runs the HTTP and WebSocket server.
type ServeCmd struct {
	Addr     string `help:"Listen address (overrides server.addr)"`
	Passages string `help:"Passage markup directory (overrides passages.dir)" type:"path"`
}

func (c *ServeCmd) Run(g *Globals) error {
	cfg, err := g.load()
	if err != nil {
		return err
	}
	if c.Addr != "" {
		cfg.Server.Addr = c.Addr
	}
	if c.Passages != "" {
		cfg.Passages.Dir = c.Passages
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openProgress(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()
	dispatcher := progress.NewDispatcher(store, cfg.Progress.Buffer)

	opts := passages.Options{
		Cache: cache.NewPassageCache(cache.Config{MaxSize: cfg.Passages.CacheSize}),
	}
	if cfg.Passages.SnapshotDir != "" {
		if opts.Snapshots, err = cas.NewStore(cfg.Passages.SnapshotDir); err != nil {
			return err
		}
	}
	svc := passages.NewService(passages.DirSource{Root: cfg.Passages.Dir}, opts)

	srv := session.NewServer(svc, session.Config{
		AllowedOrigins:  cfg.Server.AllowedOrigins,
		PingInterval:    cfg.Server.PingInterval(),
		WriteTimeout:    cfg.Server.WriteTimeout(),
		MaxMessageBytes: cfg.Server.MaxMessageBytes,
		Sink:            dispatcher,
	})

	httpServer := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: cfg.Server.ReadTimeout(),
	}

	logging.ServerStartup("typing", "http", listenPort(cfg.Server.Addr),
		"addr", cfg.Server.Addr,
		"websocket_protocol", "ws",
		"passages_dir", server.AbsPath(cfg.Passages.Dir),
		"database", cfg.Progress.Database,
		"sqlite_driver", sqlite.DriverType(),
	)

	errc := make(chan error, 1)
	go func() { errc <- httpServer.ListenAndServe() }()

	select {
	case err := <-errc:
		dispatcher.Close(context.Background())
		return err
	case <-ctx.Done():
	}

	logging.Info("shutting down", "sessions", srv.Sessions())
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logging.Warn("http shutdown", "error", err)
	}
	if err := dispatcher.Close(shutdownCtx); err != nil {
		logging.Warn("progress dispatcher did not drain", "error", err)
	}
	stats := dispatcher.Stats()
	logging.Info("progress dispatcher closed", "saved", stats.Saved, "dropped", stats.Dropped, "failed", stats.Failed)
	return nil
}

// listenPort extracts the port from a listen address, or 0.
func listenPort(addr string) int {
	_, p, err := net.SplitHostPort(addr)
	if err != nil {
		return 0
	}
	n, _ := strconv.Atoi(p)
	return n
}

// ProgressCmd prints typed verses for a chapter.
type ProgressCmd struct {
	Book        string `short:"b" required:"" help:"Book (e.g. psalm, PSA)"`
	Chapter     int    `short:"n" required:"" help:"Chapter number"`
	Translation string `short:"t" required:"" help:"Translation id"`
	JSON        bool   `help:"Print progress as JSON"`
}

func (c *ProgressCmd) Run(g *Globals) error {
	cfg, err := g.load()
	if err != nil {
		return err
	}
	ctx := context.Background()
	store, err := openProgress(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	ch, err := store.ChapterProgress(ctx, c.Book, c.Chapter, strings.ToLower(c.Translation))
	if err != nil {
		return err
	}
	if c.JSON {
		return json.NewEncoder(g.out).Encode(ch)
	}

	ref := canon.KJV().FormatRef(ch.Book, ch.Chapter, 0, canon.FormatOptions{})
	fmt.Fprintf(g.out, "%s (%s): %d/%d verses typed (%d%%)\n", ref, ch.Translation, len(ch.Typed), ch.Total, ch.Percent())
	if rest := ch.Remaining(); len(rest) > 0 && len(rest) < ch.Total {
		parts := make([]string, len(rest))
		for i, v := range rest {
			parts[i] = strconv.Itoa(v)
		}
		fmt.Fprintf(g.out, "remaining: %s\n", strings.Join(parts, ", "))
	}
	return nil
}

// TranslationsCmd lists translations and their provider dialect.
type TranslationsCmd struct{}

func (c *TranslationsCmd) Run(g *Globals) error {
	for _, t := range parser.Translations() {
		p, err := parser.ForTranslation(t)
		if err != nil {
			return err
		}
		fmt.Fprintf(g.out, "%-6s %s\n", t, p.Dialect().Name)
	}
	return nil
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (c *VersionCmd) Run(g *Globals) error {
	info := sqlite.GetInfo()
	fmt.Fprintf(g.out, "typetheword version %s\n", version)
	fmt.Fprintf(g.out, "sqlite driver: %s (%s)\n", info.Package, info.DriverType)
	return nil
}

// run parses args and runs the selected command, writing output to out.
func run(args []string, out io.Writer, options ...kong.Option) error {
	var cli CLI
	options = append([]kong.Option{
		kong.Name("typetheword"),
		kong.Description("Type the word - Bible typing practice"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Writers(out, os.Stderr),
	}, options...)

	k, err := kong.New(&cli, options...)
	if err != nil {
		return err
	}
	ctx, err := k.Parse(args)
	if err != nil {
		return err
	}
	cli.Globals.out = out
	return ctx.Run(&cli.Globals)
}

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "typetheword: %v\n", err)
		os.Exit(1)
	}
}
