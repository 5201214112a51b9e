package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/sandeepkv93/taskline/internal/config"
	"github.com/sandeepkv93/taskline/internal/logging"
	"github.com/sandeepkv93/taskline/internal/model"
	"github.com/sandeepkv93/taskline/internal/storage"
	"github.com/sandeepkv93/taskline/internal/tasks"
	"github.com/sandeepkv93/taskline/internal/views"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// app holds everything a subcommand needs once configuration is resolved.
type app struct {
	ctx    context.Context
	cfg    config.Config
	loc    *time.Location
	logger *log.Logger
	docs   *storage.SQLiteDocuments
	store  *tasks.Store
	out    io.Writer

	logCloser io.Closer
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return config.Config{}, err
	}
	if flagDB != "" {
		cfg.DatabasePath = flagDB
	}
	if flagLogLevel != "" {
		cfg.LogLevel = flagLogLevel
	}
	return cfg, nil
}

// openApp loads configuration and the task store. Logs go to stderr, or to
// taskline.log next to the database when logFile is set so they stay off the
// TUI screen.
func openApp(ctx context.Context, logFile bool) (*app, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	dir := filepath.Dir(cfg.DatabasePath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	var logOut io.Writer = os.Stderr
	var logCloser io.Closer
	if logFile {
		f, err := os.OpenFile(filepath.Join(dir, "taskline.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		logOut, logCloser = f, f
	}
	logger := logging.New(logOut, cfg.LogLevel)

	docs, err := storage.OpenSQLite(cfg.DatabasePath)
	if err != nil {
		closeQuietly(logCloser)
		return nil, err
	}
	store := tasks.New(docs,
		tasks.WithLogger(logger),
		tasks.WithLocation(loc),
		tasks.WithDefaultDuration(cfg.DefaultDuration),
		tasks.WithDebounce(cfg.DebounceDelay),
	)
	if err := store.Load(ctx); err != nil {
		_ = docs.Close()
		closeQuietly(logCloser)
		return nil, err
	}
	logger.Debug("store loaded", "db", cfg.DatabasePath, "tasks", len(store.Tasks()))
	return &app{ctx: ctx, cfg: cfg, loc: loc, logger: logger, docs: docs, store: store, out: os.Stdout, logCloser: logCloser}, nil
}

// close flushes debounced writes before the database goes away.
func (a *app) close() error {
	flushErr := a.store.Close()
	closeErr := a.docs.Close()
	closeQuietly(a.logCloser)
	return errors.Join(flushErr, closeErr)
}

func closeQuietly(c io.Closer) {
	if c != nil {
		_ = c.Close()
	}
}

func (a *app) now() time.Time {
	return time.Now().In(a.loc)
}

func (a *app) today() time.Time {
	return model.StartOfDay(a.now())
}

// resolve finds a task by id, unique id prefix or, failing those, a unique
// case-insensitive title.
func (a *app) resolve(ref string) (model.Task, error) {
	t, err := a.store.Resolve(ref)
	if err == nil || !errors.Is(err, tasks.ErrNotFound) {
		return t, err
	}
	var matches []model.Task
	for _, candidate := range a.store.Tasks() {
		if strings.EqualFold(strings.TrimSpace(candidate.Title), strings.TrimSpace(ref)) {
			matches = append(matches, candidate)
		}
	}
	switch len(matches) {
	case 0:
		return model.Task{}, err
	case 1:
		return matches[0], nil
	default:
		return model.Task{}, fmt.Errorf("%w: %d tasks are titled %q", tasks.ErrAmbiguous, len(matches), ref)
	}
}

func (a *app) printDay(day time.Time) error {
	_, err := fmt.Fprintln(a.out, views.RenderTimeline(views.TimelineData{
		Day:      model.DayKey(day),
		Entries:  a.store.Day(day),
		ShowGaps: a.cfg.ShowGaps,
	}))
	return err
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// withApp opens the store for a subcommand and closes it afterwards, keeping
// the first error.
func withApp(fn func(a *app, args []string) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		a, err := openApp(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := a.close(); err == nil {
				err = cerr
			}
		}()
		a.out = cmd.OutOrStdout()
		return fn(a, args)
	}
}
