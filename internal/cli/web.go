package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"taskline/internal/web"

	"github.com/spf13/cobra"
)

func newWebCmd(app *App) *cobra.Command {
	var addr string
	var open bool

	cmd := &cobra.Command{
		Use:   "web",
		Short: "Serve the task form and timeline in the browser",
		Long: strings.TrimSpace(`
Serve the task form and the interactive timeline from a local HTTP server.

The page re-renders whenever tasks change, including edits made to the backing
file by other processes.
`),
		Example: strings.TrimSpace(`
taskline web
taskline web --addr :8080 --open
taskline --file plan.sqlite web
`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			listenAddr := strings.TrimSpace(addr)
			if listenAddr == "" {
				listenAddr = strings.TrimSpace(app.cfg.Addr)
			}
			if listenAddr == "" {
				return writeErr(cmd, errors.New("web: missing --addr"))
			}

			st, err := loadStore(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			srv, err := web.NewServer(web.ServerConfig{
				Store:  st,
				Title:  app.title(),
				Logger: app.logger,
			})
			if err != nil {
				return writeErr(cmd, err)
			}
			defer srv.Close()

			ln, err := net.Listen("tcp", listenAddr)
			if err != nil {
				return writeErr(cmd, err)
			}
			actualAddr := ln.Addr().String()
			url := "http://" + actualAddr + "/"

			opened := false
			openErr := ""
			if open {
				if err := openPath(url); err != nil {
					openErr = err.Error()
				} else {
					opened = true
				}
			}

			var hints []string
			if !opened {
				hints = append(hints, "open "+url)
			}
			_ = writeOut(cmd, app, map[string]any{
				"addr":      actualAddr,
				"url":       url,
				"store":     st.Describe(),
				"opened":    opened,
				"openError": openErr,
				"startedAt": time.Now().UTC().Format(time.RFC3339Nano),
			}, hints...)

			app.logger.Info("serving", "url", url, "store", st.Describe())
			if openErr != "" {
				app.logger.Warn("failed to open browser", "err", openErr)
			}

			hs := &http.Server{Handler: srv.Handler(), ReadHeaderTimeout: 10 * time.Second}
			go func() {
				<-cmd.Context().Done()
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = hs.Shutdown(ctx)
			}()
			if err := hs.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return writeErr(cmd, fmt.Errorf("web: %w", err))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Bind address (host:port or :port; default from config, 127.0.0.1:3336)")
	cmd.Flags().BoolVar(&open, "open", false, "Open the UI in your default browser")
	return cmd
}
