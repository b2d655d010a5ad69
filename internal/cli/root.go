package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"taskline/internal/format"
	"taskline/internal/logging"
	"taskline/internal/store"
	"taskline/internal/tui"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

type App struct {
	File       string
	Backend    string
	Format     string
	PrettyJSON bool
	LogLevel   string
	ConfigPath string

	// Resolved in PersistentPreRunE.
	cfg    store.Config
	logger *log.Logger
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "taskline",
		Short:        "Edit project tasks and render them as a timeline",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive TUI
  taskline

  # Open a specific tasks file (shortcut for: taskline --file plan.json)
  taskline plan.json

  # Serve the form + timeline in a browser
  taskline web --open

  # Scriptable commands
  taskline tasks list --format text
  taskline tasks upsert --name "Site Prep" --category NLC
  taskline chart --width 120
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return runTUI(cmd, app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return app.resolve(cmd)
	}

	cmd.PersistentFlags().StringVar(&app.File, "file", envOr("TASKLINE_FILE", ""), "Tasks file (default: ~/.taskline/tasks.json)")
	cmd.PersistentFlags().StringVar(&app.Backend, "backend", envOr("TASKLINE_BACKEND", ""), "Storage backend (json|sqlite|memory; default from file extension or config)")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("TASKLINE_FORMAT", ""), "Output format (json|edn|text)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON/EDN output")
	cmd.PersistentFlags().StringVar(&app.LogLevel, "log-level", envOr("TASKLINE_LOG_LEVEL", ""), "Log level (debug|info|warn|error)")
	cmd.PersistentFlags().StringVar(&app.ConfigPath, "config", "", "Config file (default: $TASKLINE_CONFIG_DIR/config.toml or ~/.taskline/config.toml)")

	cmd.AddCommand(newTasksCmd(app))
	cmd.AddCommand(newChartCmd(app))
	cmd.AddCommand(newPublishCmd(app))
	cmd.AddCommand(newWebCmd(app))
	cmd.AddCommand(newConfigCmd(app))
	cmd.AddCommand(newDocsCmd(app))

	return cmd
}

// resolve layers defaults < config file < env < flags. Env values arrive as flag
// defaults, so an empty field here means neither was given.
func (app *App) resolve(cmd *cobra.Command) error {
	cfg, err := store.LoadConfig(app.ConfigPath)
	if err != nil {
		return writeErr(cmd, err)
	}
	app.cfg = cfg

	if strings.TrimSpace(app.LogLevel) == "" {
		app.LogLevel = cfg.LogLevel
	}
	logger, err := logging.New(cmd.ErrOrStderr(), logging.Options{Level: app.LogLevel, Prefix: "taskline"})
	if err != nil {
		return writeErr(cmd, err)
	}
	app.logger = logger

	if strings.TrimSpace(app.Format) == "" {
		app.Format = cfg.Format
	}
	if app.Format, err = format.Normalize(app.Format); err != nil {
		return writeErr(cmd, err)
	}

	if strings.TrimSpace(app.File) == "" {
		app.File = cfg.File
	}
	if strings.TrimSpace(app.Backend) == "" {
		if kind, ok := store.KindForPath(app.File); ok {
			app.Backend = kind
		} else {
			app.Backend = cfg.Backend
		}
	}
	if app.Backend, err = store.NormalizeKind(app.Backend); err != nil {
		return writeErr(cmd, err)
	}
	return nil
}

func (app *App) title() string {
	return strings.TrimSpace(app.cfg.Title)
}

func loadStore(ctx context.Context, app *App) (*store.TaskStore, error) {
	b, err := store.Open(app.Backend, app.File)
	if err != nil {
		return nil, err
	}
	return store.Load(ctx, b, store.WithLogger(app.logger)), nil
}

func runTUI(cmd *cobra.Command, app *App) error {
	st, err := loadStore(cmd.Context(), app)
	if err != nil {
		return writeErr(cmd, err)
	}
	// Log lines would corrupt the alt screen.
	st.SetLogger(logging.Discard())
	return tui.Run(cmd.Context(), st, tui.Options{Title: app.title()})
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

// envelope is the output shape of every command: {"data": ..., "_hints": [...]}.
type envelope struct {
	Data  any      `json:"data"`
	Hints []string `json:"_hints,omitempty"`
}

func (e envelope) Text() string {
	var b strings.Builder
	if t, ok := e.Data.(format.Texter); ok {
		b.WriteString(strings.TrimRight(t.Text(), "\n"))
	} else {
		var buf strings.Builder
		_ = format.WriteJSON(&buf, e.Data, true)
		b.WriteString(strings.TrimRight(buf.String(), "\n"))
	}
	for _, h := range e.Hints {
		b.WriteString("\n# ")
		b.WriteString(h)
	}
	return b.String()
}

func writeOut(cmd *cobra.Command, app *App, data any, hints ...string) error {
	return format.Write(cmd.OutOrStdout(), envelope{Data: data, Hints: hints}, app.Format, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
