package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/trax/internal/shared"
	"github.com/desertthunder/trax/internal/store"
	"github.com/desertthunder/trax/internal/sync"
	"github.com/desertthunder/trax/internal/track"
	"github.com/desertthunder/trax/internal/trackers"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	registry   trackers.Registry
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer

	db     *sql.DB
	store  *store.Client
	engine *sync.Engine
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	Registry   trackers.Registry
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer

	// Store overrides database-backed storage; used by tests.
	Store store.Store
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Registry == nil {
		opts.Registry = trackers.NewRegistry(opts.Config.Credentials, opts.HTTPClient)
	}

	r := &Runner{
		config:     opts.Config,
		registry:   opts.Registry,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
	}

	if opts.Store != nil {
		r.store = store.NewClient(opts.Store)
		r.engine = sync.NewEngine(sync.EngineOpts{
			Store:    r.store,
			Registry: r.registry,
			Notify:   &cliNotifier{output: opts.Output},
			Logger:   r.logger,
		})
	}
	return r
}

// SetLogger swaps the runner and engine logger, e.g. when the TUI owns the terminal.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

// ensureEngine lazily opens the configured database and wires the engine.
func (r *Runner) ensureEngine() error {
	if r.engine != nil {
		return nil
	}

	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	r.db = db
	r.store = store.NewClient(store.NewSQLiteStore(db))
	r.engine = sync.NewEngine(sync.EngineOpts{
		Store:    r.store,
		Registry: r.registry,
		Notify:   &cliNotifier{output: r.output},
		Logger:   r.logger,
	})
	return nil
}

// Close releases the database connection if one was opened.
func (r *Runner) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, detectCommand, listCommand, searchCommand,
		linkCommand, unlinkCommand, syncCommand, statusCommand, migrateCommand,
		exportCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// parseTrackerArg validates the tracker positional/flag value.
func parseTrackerArg(value string) (track.Tracker, error) {
	tracker, ok := track.ParseTracker(value)
	if !ok {
		return "", fmt.Errorf("%w: unknown tracker %q (expected one of mal, anilist, shikimori, bangumi)", shared.ErrInvalidArgument, value)
	}
	return tracker, nil
}

// parseKindFlag validates the media kind flag value.
func parseKindFlag(value string) (track.MediaKind, error) {
	switch track.MediaKind(value) {
	case track.KindAnime, track.KindManga, track.KindManhwa, track.KindManhua, track.KindNovel:
		return track.MediaKind(value), nil
	}
	return "", fmt.Errorf("%w: unknown media kind %q", shared.ErrInvalidFlag, value)
}

// cliNotifier renders engine notifications onto the CLI output stream.
//
// Modals cannot block a one-shot CLI invocation, so proposals print as hints
// the user acts on with a followup command.
type cliNotifier struct {
	output io.Writer
}

var _ sync.Notifier = (*cliNotifier)(nil)

func (n *cliNotifier) Toast(title, message string, kind sync.ToastKind, duration time.Duration) {
	fmt.Fprintf(n.output, "[%s] %s: %s\n", kind, title, message)
}

func (n *cliNotifier) Modal(kind sync.ModalKind, data any) {
	switch d := data.(type) {
	case sync.ConfirmSyncData:
		fmt.Fprintf(n.output, "Progress %d buffered for %q. Run 'trax sync %s' to push it.\n", d.Progress, d.Item.Title, d.Item.Key)
	case sync.MigrationProposal:
		fmt.Fprintf(n.output, "%q looks like %q on another platform. Run 'trax migrate %s -p %s -t %q' to carry it over.\n",
			d.NewTitle, d.Candidate.Title, d.Candidate.Key, d.NewPlatform, d.NewTitle)
	case sync.LinkProposal:
		fmt.Fprintf(n.output, "New discovery %q. Run 'trax search' and 'trax link %s' to bind it to a tracker.\n", d.Item.Title, d.Item.Key)
	default:
		fmt.Fprintf(n.output, "[%s] action required\n", kind)
	}
}
