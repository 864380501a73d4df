package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"

	"github.com/example/playtestshot/internal/clipboard"
	"github.com/example/playtestshot/internal/comments"
	"github.com/example/playtestshot/internal/config"
	"github.com/example/playtestshot/internal/dialog"
	"github.com/example/playtestshot/internal/notify"
	"github.com/example/playtestshot/internal/source"
	"github.com/example/playtestshot/internal/theme"
)

var (
	version            = "dev"
	commit             = ""
	date               = ""
	configPathOverride = ""
)

type runnable interface{ Run() error }

type root struct {
	fs           *flag.FlagSet
	program      string
	notifier     *notify.Notifier
	config       *config.Config
	configPath   string
	submitAlerts bool
	copyAlerts   bool
	themeName    string
	activeTheme  *theme.Theme
}

func (r *root) Program() string {
	return r.program
}

func (r *root) FlagSet() *flag.FlagSet {
	return r.fs
}

func newRoot() *root {
	prefs := notify.LoadPreferences()
	loader := config.NewLoader(version, configPathOverride)
	cfg, err := loader.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to load config: %v\n", err)
		cfg = config.New()
	}

	r := &root{
		fs:       flag.NewFlagSet("playtestshot", flag.ExitOnError),
		program:  "playtestshot",
		notifier: notify.New(prefs),
		config:   cfg,
	}
	r.fs.StringVar(&r.configPath, "config", "", "path to an RC or YAML config file")
	r.fs.BoolVar(&r.submitAlerts, "notify-submit", cfg.Notify.Submit, "show a desktop notification after feedback is submitted")
	r.fs.BoolVar(&r.copyAlerts, "notify-copy", cfg.Notify.Copy, "show a desktop notification after copying to the clipboard")

	// Precedence: CLI > Env > Config > Default
	r.fs.StringVar(&r.themeName, "theme", "", "swatch set to use (default, a theme name or a .theme file)")
	r.fs.Usage = usageFunc(r)
	return r
}

func (r *root) Run(args []string) error {
	if err := r.fs.Parse(args); err != nil {
		return err
	}
	if r.fs.NArg() < 1 {
		return &UsageError{of: r}
	}
	if r.configPath != "" {
		if err := r.reloadConfig(); err != nil {
			return err
		}
	}
	if r.notifier != nil {
		r.notifier.Enable(notify.EventSubmit, r.submitAlerts)
		r.notifier.Enable(notify.EventCopy, r.copyAlerts)
	}

	themeName := r.themeName
	if themeName == "" {
		themeName = os.Getenv("PLAYTESTSHOT_THEME")
	}
	t, err := r.config.ActiveTheme(themeName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to load theme '%s': %v. using default.\n", themeName, err)
		t = theme.Default()
	}
	r.activeTheme = t

	cmdName := r.fs.Arg(0)
	subArgs := r.fs.Args()[1:]

	var cmd runnable
	switch cmdName {
	case "serve":
		cmd, err = parseServeCmd(subArgs, r)
	case "annotate":
		cmd, err = parseAnnotateCmd(subArgs, r)
	case "interactive":
		cmd, err = parseInteractiveCmd(subArgs, r)
	case "comments":
		cmd, err = parseCommentsCmd(subArgs, r)
	case "colors":
		cmd, err = parseColorsCmd(subArgs, r)
	case "config":
		cmd, err = parseConfigCmd(subArgs, r)
	case "version":
		cmd = &versionCmd{r: r}
	default:
		err = &UsageError{of: r}
	}
	if err != nil {
		return err
	}
	return cmd.Run()
}

func main() {
	r := newRoot()
	if err := r.Run(os.Args[1:]); err != nil {
		var uerr *UsageError
		if errors.As(err, &uerr) {
			fmt.Fprintln(os.Stderr, uerr.Error())
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// reloadConfig replaces the discovered config with -config, keeping any
// notification flags given explicitly.
func (r *root) reloadConfig() error {
	cfg, err := config.LoadFile(r.configPath)
	if err != nil {
		return err
	}
	r.config = cfg
	set := map[string]bool{}
	r.fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if !set["notify-submit"] {
		r.submitAlerts = cfg.Notify.Submit
	}
	if !set["notify-copy"] {
		r.copyAlerts = cfg.Notify.Copy
	}
	return nil
}

// openStore opens the comment store named by dsn: "memory" or a SQLite path.
func openStore(dsn string) (comments.Store, error) {
	if dsn == "" || dsn == config.MemoryStore {
		return comments.NewMemoryStore(), nil
	}
	store, err := comments.OpenSQLite(dsn)
	if err != nil {
		return nil, fmt.Errorf("open store %s: %w", dsn, err)
	}
	return store, nil
}

// service builds the host comment service with the configured side effects.
func (r *root) service(store comments.Store) *comments.Service {
	opts := []comments.ServiceOption{comments.WithNotifier(r.notifier)}
	if r.config.Clipboard.CopyOnSave {
		opts = append(opts, comments.WithCopier(func(png []byte) error {
			if err := clipboard.WritePNG(png); err != nil {
				return err
			}
			r.notifier.Copied("screenshot")
			return nil
		}))
	}
	return comments.NewService(store, opts...)
}

// resolver builds the image source resolver. allowFiles overrides the
// config for local commands.
func (r *root) resolver(allowFiles bool) *source.Resolver {
	opts := []source.Option{source.WithFiles(allowFiles)}
	if r.config.Clipboard.Source {
		opts = append(opts, source.WithClipboard(clipboard.ReadImage))
	}
	return source.New(opts...)
}

func (r *root) shellOptions(logger *slog.Logger) []dialog.Option {
	ed := r.config.Editor
	palette := r.activeTheme
	if palette == nil {
		palette = theme.Default()
	}
	return []dialog.Option{
		dialog.WithBounds(ed.MaxWidth, ed.MaxHeight),
		dialog.WithPalette(palette),
		dialog.WithEraser(ed.Eraser),
		dialog.WithLogger(logger),
	}
}

func closeWithLog(name string, c io.Closer) {
	if err := c.Close(); err != nil {
		log.Printf("%s: close: %v", name, err)
	}
}
