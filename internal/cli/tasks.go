package cli

import (
	"errors"
	"fmt"
	"strings"

	"taskline/internal/form"
	"taskline/internal/timeline"

	"github.com/spf13/cobra"
)

func newTasksCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "List, show and edit tasks",
	}
	cmd.AddCommand(newTasksListCmd(app))
	cmd.AddCommand(newTasksShowCmd(app))
	cmd.AddCommand(newTasksUpsertCmd(app))
	cmd.AddCommand(newTasksRowsCmd(app))
	return cmd
}

func newTasksListCmd(app *App) *cobra.Command {
	var category string
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List tasks in store order",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := loadStore(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			out := taskListView{}
			for _, t := range st.Tasks() {
				if category != "" && !strings.EqualFold(t.Category, category) {
					continue
				}
				out = append(out, newTaskView(t))
			}
			var hints []string
			if st.Seeded() {
				hints = append(hints, "no saved tasks at "+st.Describe()+"; showing the example set")
			}
			return writeOut(cmd, app, out, hints...)
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "Only tasks in this category")
	return cmd
}

func newTasksShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <name>",
		Short: "Show one task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := loadStore(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			t, ok := st.Get(args[0])
			if !ok {
				return writeErr(cmd, errNotFound("task", args[0]))
			}
			return writeOut(cmd, app, newTaskView(t))
		},
	}
}

func newTasksUpsertCmd(app *App) *cobra.Command {
	var name, oldName, start, end, category, notes, users string

	cmd := &cobra.Command{
		Use:   "upsert",
		Short: "Create, update or rename a task",
		Long: strings.TrimSpace(`
Create, update or rename a task through the same validation as the form.

Fields that are not given keep their current value when the task (or --old-name)
exists, and take the form defaults otherwise. Passing --old-name with a different
--name renames the task; renaming onto an existing name overwrites that task.
`),
		Example: strings.TrimSpace(`
taskline tasks upsert --name "Inspection" --start 2024-08-01 --end 2024-08-15 --category QA --users "dan, erin"
taskline tasks upsert --name "Site Prep" --category NLC
taskline tasks upsert --old-name "Site Prep" --name "Site Preparation"
`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			name = strings.TrimSpace(name)
			if name == "" {
				return writeErr(cmd, errors.New("missing --name"))
			}
			st, err := loadStore(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}

			sess := form.NewSession()
			source := strings.TrimSpace(oldName)
			if source == "" {
				source = name
			}
			sess.Select(st, source)
			if oldName != "" && sess.Selected == "" {
				app.logger.Warn("--old-name not found; creating a new task", "oldName", oldName)
			}

			sess.Fields.Name = name
			flags := cmd.Flags()
			if flags.Changed("start") {
				sess.Fields.Start = start
			}
			if flags.Changed("end") {
				sess.Fields.End = end
			}
			if flags.Changed("category") {
				sess.Fields.Category = category
			}
			if flags.Changed("notes") {
				sess.Fields.Notes = notes
			}
			if flags.Changed("users") {
				sess.Fields.Users = users
			}

			res, err := sess.Submit(cmd.Context(), st)
			if err != nil {
				return writeErr(cmd, err)
			}
			if !res.Saved {
				_ = writeOut(cmd, app, newUpsertView(res))
				return writeErr(cmd, &form.ValidationError{Errors: res.Errors})
			}
			app.logger.Info("task saved", "name", res.Task.Name, "backend", st.Describe())
			return writeOut(cmd, app, newUpsertView(res), fmt.Sprintf("taskline tasks show %q", res.Task.Name))
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Task name")
	cmd.Flags().StringVar(&oldName, "old-name", "", "Existing task to rename/edit")
	cmd.Flags().StringVar(&start, "start", "", "Start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&end, "end", "", "End date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&category, "category", "", "Category")
	cmd.Flags().StringVar(&notes, "notes", "", "Notes (markdown)")
	cmd.Flags().StringVar(&users, "users", "", "Assigned users, comma-separated")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newTasksRowsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rows",
		Short: "Print the timeline rows (Task, Start, Finish, Resource, Notes, Users)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := loadStore(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, rowsView(timeline.Project(st.Tasks())))
		},
	}
}
