package cli

import (
	"fmt"
	"os"
	"strings"

	"taskline/internal/store"

	"github.com/spf13/cobra"
)

type configView struct {
	Path   string       `json:"path"`
	Exists bool         `json:"exists"`
	Config store.Config `json:"config"`
	// Effective values after env and flags.
	Effective effectiveView `json:"effective"`
}

type effectiveView struct {
	File     string `json:"file"`
	Backend  string `json:"backend"`
	Format   string `json:"format"`
	LogLevel string `json:"logLevel"`
}

func (v configView) Text() string {
	var b strings.Builder
	state := "missing"
	if v.Exists {
		state = "present"
	}
	fmt.Fprintf(&b, "config:    %s (%s)\n", v.Path, state)
	fmt.Fprintf(&b, "file:      %s\n", v.Effective.File)
	fmt.Fprintf(&b, "backend:   %s\n", v.Effective.Backend)
	fmt.Fprintf(&b, "format:    %s\n", v.Effective.Format)
	fmt.Fprintf(&b, "log level: %s\n", v.Effective.LogLevel)
	fmt.Fprintf(&b, "addr:      %s\n", v.Config.Addr)
	fmt.Fprintf(&b, "title:     %s", v.Config.Title)
	return b.String()
}

func (app *App) configPath() (string, error) {
	if p := strings.TrimSpace(app.ConfigPath); p != "" {
		return p, nil
	}
	return store.ConfigPath()
}

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or initialize the config file",
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show the config file and the effective settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := app.configPath()
			if err != nil {
				return writeErr(cmd, err)
			}
			_, statErr := os.Stat(path)

			file := app.File
			if strings.TrimSpace(file) == "" && app.Backend != store.BackendMemory {
				if file, err = store.DefaultTasksPath(app.Backend); err != nil {
					return writeErr(cmd, err)
				}
			}
			return writeOut(cmd, app, configView{
				Path:   path,
				Exists: statErr == nil,
				Config: app.cfg,
				Effective: effectiveView{
					File:     file,
					Backend:  app.Backend,
					Format:   app.Format,
					LogLevel: app.LogLevel,
				},
			})
		},
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with the default settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := app.configPath()
			if err != nil {
				return writeErr(cmd, err)
			}
			if _, err := os.Stat(path); err == nil && !force {
				return writeErr(cmd, fmt.Errorf("config exists (use --force): %s", path))
			}
			cfg := store.DefaultConfig()
			if strings.TrimSpace(app.File) != "" {
				cfg.File = app.File
			}
			cfg.Backend = app.Backend
			if err := store.SaveConfig(path, cfg); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"path": path, "config": cfg})
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")

	cmd.AddCommand(showCmd)
	cmd.AddCommand(initCmd)
	return cmd
}
