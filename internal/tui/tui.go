// Package tui is the interactive terminal UI: a task list, the timeline drawn with
// lipgloss, and the edit form.
package tui

import (
	"context"

	"taskline/internal/store"

	tea "github.com/charmbracelet/bubbletea"
)

type Options struct {
	Title string
}

func Run(ctx context.Context, st *store.TaskStore, opt Options) error {
	applyColorProfilePreference()
	applyThemePreference()
	m := newAppModel(ctx, st, opt.Title)
	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}
