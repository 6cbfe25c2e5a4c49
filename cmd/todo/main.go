// Command todo is a terminal todo list with tags, priorities and search.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"

	"github.com/nhle/todolist/internal/app"
	"github.com/nhle/todolist/internal/logging"
	"github.com/nhle/todolist/internal/model"
	"github.com/nhle/todolist/internal/persist"
	"github.com/nhle/todolist/internal/store"
)

const version = "0.1.0"

// shutdownTimeout bounds the final flush of pending saves.
const shutdownTimeout = 5 * time.Second

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	configPath  string
	dataPath    string
	backend     string
	showVersion bool
}

func parseFlags(args []string) (options, error) {
	var opts options
	fs := flag.NewFlagSet("todo", flag.ContinueOnError)
	fs.StringVar(&opts.configPath, "config", model.DefaultConfigPath(), "path to the config file")
	fs.StringVar(&opts.dataPath, "data", "", "storage location (database file or directory)")
	fs.StringVar(&opts.backend, "backend", "", "storage backend: sqlite, file, keyring or memory")
	fs.BoolVar(&opts.showVersion, "version", false, "print version and exit")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if fs.NArg() > 0 {
		return opts, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	return opts, nil
}

// loadConfig reads the config file and applies command line overrides.
func loadConfig(opts options) (*model.AppConfig, error) {
	// A missing .env is normal.
	_ = godotenv.Load()

	cfg, err := model.LoadConfig(opts.configPath)
	if err != nil {
		return nil, err
	}

	if opts.backend != "" {
		cfg.Storage.Backend = opts.backend
		if opts.dataPath == "" && opts.backend != model.BackendSQLite {
			cfg.Storage.Path = model.DefaultDataDir()
		}
	}
	if opts.dataPath != "" {
		cfg.Storage.Path = opts.dataPath
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func run(ctx context.Context, args []string) error {
	opts, err := parseFlags(args)
	if err != nil {
		return err
	}
	if opts.showVersion {
		fmt.Printf("todo version %s\n", version)
		return nil
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	logger, closeLog, err := logging.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("setting up logging: %w", err)
	}
	defer func() {
		if err := closeLog(); err != nil {
			fmt.Fprintf(os.Stderr, "closing log: %v\n", err)
		}
	}()

	codec, err := persist.NewCodec(cfg.Storage.Codec)
	if err != nil {
		return err
	}

	slot, slotErr := openSlot(cfg.Storage, logger)
	defer func() {
		if err := slot.Close(); err != nil {
			logger.Error("closing storage", "err", err)
		}
	}()

	adapter := persist.NewAdapter(slot, codec, persist.Keys{
		Todos: cfg.Storage.TodosKey,
		Tags:  cfg.Storage.TagsKey,
	}, logger)

	s := store.New(adapter,
		store.WithLogger(logger),
		store.WithErrorExpiry(cfg.Behavior.ErrorExpiry()),
		store.WithSearchDebounce(cfg.Behavior.SearchDebounce()),
		store.WithSearchEnabled(cfg.Behavior.SearchEnabled),
	)
	s.Load(ctx)
	if slotErr != nil {
		s.ReportError(store.MsgStorageUnavailable)
	}

	logger.Info("starting", "version", version, "backend", cfg.Storage.Backend, "codec", codec.Name())

	appOpts := []app.Option{app.WithSettings(*cfg, opts.configPath)}
	if l, ok := slot.(persist.Lister); ok {
		appOpts = append(appOpts, app.WithSnapshotLister(l))
	}
	root := app.New(s, appOpts...)
	p := tea.NewProgram(root, tea.WithAltScreen(), tea.WithContext(ctx))
	_, runErr := p.Run()

	closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.Close(closeCtx); err != nil {
		logger.Error("flushing pending saves", "err", err)
	}

	if runErr != nil && !errors.Is(runErr, tea.ErrProgramKilled) {
		return fmt.Errorf("running program: %w", runErr)
	}
	return nil
}

// openSlot opens the configured backend, degrading to a session-only
// memory slot when it is unavailable. The open error is returned alongside
// the fallback so the caller can tell the user.
func openSlot(cfg model.StorageConfig, logger *log.Logger) (persist.Slot, error) {
	slot, err := persist.OpenSlot(cfg)
	if err == nil {
		return slot, nil
	}
	logger.Error("opening storage, falling back to memory", "backend", cfg.Backend, "path", cfg.Path, "err", err)
	return persist.NewMemorySlot(), err
}
