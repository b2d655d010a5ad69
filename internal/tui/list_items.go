package tui

import (
	"strings"

	"taskline/internal/model"

	"github.com/charmbracelet/bubbles/list"
)

const newTaskLabel = "(new task)"

// taskItem is one entry of the task list. The zero value is the "(new task)" entry.
type taskItem struct {
	task  model.Task
	isNew bool
}

func (i taskItem) FilterValue() string {
	if i.isNew {
		return newTaskLabel
	}
	return i.task.Name + " " + i.task.Category
}

func (i taskItem) Title() string {
	if i.isNew {
		return newTaskLabel
	}
	return i.task.Name
}

func (i taskItem) Description() string {
	if i.isNew {
		return "create a task"
	}
	desc := i.task.Category + " · " + i.task.Start.String() + " → " + i.task.End.String()
	if users := strings.TrimSpace(i.task.UsersText()); users != "" {
		desc += " · " + users
	}
	return desc
}

func taskItems(tasks []model.Task) []list.Item {
	items := make([]list.Item, 0, len(tasks)+1)
	items = append(items, taskItem{isNew: true})
	for _, t := range tasks {
		items = append(items, taskItem{task: t})
	}
	return items
}

// indexOfTask returns the list index of name (0, the new-task entry, when absent).
func indexOfTask(items []list.Item, name string) int {
	for i, it := range items {
		ti, ok := it.(taskItem)
		if ok && !ti.isNew && ti.task.Name == name {
			return i
		}
	}
	return 0
}

func newList(title string, items []list.Item) list.Model {
	l := list.New(items, list.NewDefaultDelegate(), 0, 0)
	l.Title = title
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetShowPagination(false)
	l.SetFilteringEnabled(true)
	l.SetStatusBarItemName("task", "tasks")
	// esc cancels in this UI; only q quits from the list.
	l.KeyMap.Quit.SetKeys("q")

	cursorUpKeys := append([]string{}, l.KeyMap.CursorUp.Keys()...)
	l.KeyMap.CursorUp.SetKeys(append(cursorUpKeys, "ctrl+p")...)
	cursorDownKeys := append([]string{}, l.KeyMap.CursorDown.Keys()...)
	l.KeyMap.CursorDown.SetKeys(append(cursorDownKeys, "ctrl+n")...)
	return l
}
