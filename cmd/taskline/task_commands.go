package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/sandeepkv93/taskline/internal/commands"
	"github.com/sandeepkv93/taskline/internal/model"
	"github.com/sandeepkv93/taskline/internal/tasks"
	"github.com/sandeepkv93/taskline/internal/timeline"
	"github.com/sandeepkv93/taskline/internal/views"
	"github.com/spf13/cobra"
)

var addCmd = &cobra.Command{
	Use:   "add <title>...",
	Short: "Add a task; without --at it takes the next free slot today",
	Args:  cobra.MinimumNArgs(1),
	RunE:  withApp(runAdd),
}

var (
	addAt       string
	addDuration string
	addPriority string
	addCategory string
	addEmoji    string
	addNotes    string
	addDue      string
	addFixed    bool
	addSubtasks []string
)

var dayCmd = &cobra.Command{
	Use:   "day [today|tomorrow|yesterday|yyyy-MM-dd]",
	Short: "Print a day's timeline",
	Args:  cobra.MaximumNArgs(1),
	RunE:  withApp(runDay),
}

var dayNoGaps bool

var editCmd = &cobra.Command{
	Use:   "edit <task>",
	Short: "Change a task's fields",
	Args:  cobra.ExactArgs(1),
	RunE:  withApp(runEdit),
}

var (
	editTitle    string
	editAt       string
	editEnd      string
	editDuration string
	editPriority string
	editCategory string
	editEmoji    string
	editDue      string
	editClearDue bool
	editFixed    bool
)

var moveCmd = &cobra.Command{
	Use:   "move <task> <when>",
	Short: "Move a task, pushing back the tasks it now overlaps",
	Args:  cobra.MinimumNArgs(2),
	RunE:  withApp(runMove),
}

var focusCmd = &cobra.Command{
	Use:   "focus <task>",
	Short: "Start a task now and make it the focused task",
	Args:  cobra.ExactArgs(1),
	RunE:  withApp(runFocus),
}

var unfocusCmd = &cobra.Command{
	Use:   "unfocus",
	Short: "Clear the focused task",
	Args:  cobra.NoArgs,
	RunE:  withApp(runUnfocus),
}

var doneCmd = &cobra.Command{
	Use:   "done <task>",
	Short: "Toggle a task's completion",
	Args:  cobra.ExactArgs(1),
	RunE:  withApp(runDone),
}

var rmCmd = &cobra.Command{
	Use:     "rm <task>",
	Aliases: []string{"delete"},
	Short:   "Delete a task with its reminders and canvas",
	Args:    cobra.ExactArgs(1),
	RunE:    withApp(runRm),
}

var showCmd = &cobra.Command{
	Use:   "show <task>",
	Short: "Show a task with its notes and subtasks",
	Args:  cobra.ExactArgs(1),
	RunE:  withApp(runShow),
}

var showStyle string

var notesCmd = &cobra.Command{
	Use:   "notes <task> [text]...",
	Short: "Print or replace a task's notes",
	Args:  cobra.MinimumNArgs(1),
	RunE:  withApp(runNotes),
}

var subtaskCmd = &cobra.Command{
	Use:   "subtask",
	Short: "Manage subtasks",
}

var subtaskAddCmd = &cobra.Command{
	Use:   "add <task> <title>...",
	Short: "Append a subtask",
	Args:  cobra.MinimumNArgs(2),
	RunE:  withApp(runSubtaskAdd),
}

var subtaskToggleCmd = &cobra.Command{
	Use:   "toggle <task> <subtask id or position>",
	Short: "Toggle a subtask and recompute progress",
	Args:  cobra.ExactArgs(2),
	RunE:  withApp(runSubtaskToggle),
}

var slotCmd = &cobra.Command{
	Use:   "slot [day]",
	Short: "Print the next free slot that fits a task",
	Args:  cobra.MaximumNArgs(1),
	RunE:  withApp(runSlot),
}

var slotDuration string

func init() {
	addCmd.Flags().StringVar(&addAt, "at", "", "start: HH:MM, \"yyyy-MM-dd HH:MM\" or RFC 3339")
	addCmd.Flags().StringVarP(&addDuration, "duration", "d", "", "duration, e.g. 30m or 90")
	addCmd.Flags().StringVarP(&addPriority, "priority", "p", "", "none, low, medium or high")
	addCmd.Flags().StringVarP(&addCategory, "category", "c", "", "work, passion or play")
	addCmd.Flags().StringVar(&addEmoji, "emoji", "", "emoji shown before the title")
	addCmd.Flags().StringVar(&addNotes, "notes", "", "notes")
	addCmd.Flags().StringVar(&addDue, "due", "", "due date and time")
	addCmd.Flags().BoolVar(&addFixed, "fixed", false, "never push this task when others move")
	addCmd.Flags().StringArrayVar(&addSubtasks, "subtask", nil, "subtask title (repeatable)")

	dayCmd.Flags().BoolVar(&dayNoGaps, "no-gaps", false, "hide gap entries")

	editCmd.Flags().StringVar(&editTitle, "title", "", "new title")
	editCmd.Flags().StringVar(&editAt, "at", "", "new start")
	editCmd.Flags().StringVar(&editEnd, "end", "", "new end; wins over --duration")
	editCmd.Flags().StringVarP(&editDuration, "duration", "d", "", "new duration")
	editCmd.Flags().StringVarP(&editPriority, "priority", "p", "", "new priority")
	editCmd.Flags().StringVarP(&editCategory, "category", "c", "", "new category")
	editCmd.Flags().StringVar(&editEmoji, "emoji", "", "new emoji")
	editCmd.Flags().StringVar(&editDue, "due", "", "new due date and time")
	editCmd.Flags().BoolVar(&editClearDue, "clear-due", false, "remove the due date")
	editCmd.Flags().BoolVar(&editFixed, "fixed", false, "pin or unpin the start time")

	showCmd.Flags().StringVar(&showStyle, "style", "", "glamour style (default detects the terminal)")

	slotCmd.Flags().StringVarP(&slotDuration, "duration", "d", "", "duration to fit (default from config)")

	subtaskCmd.AddCommand(subtaskAddCmd, subtaskToggleCmd)
	rootCmd.AddCommand(addCmd, dayCmd, editCmd, moveCmd, focusCmd, unfocusCmd, doneCmd, rmCmd, showCmd, notesCmd, subtaskCmd, slotCmd)
}

func (a *app) parseWhen(raw string) (time.Time, error) {
	return commands.ParseWhen(raw, a.now())
}

func (a *app) parseDay(args []string) (time.Time, error) {
	raw := ""
	if len(args) > 0 {
		raw = args[0]
	}
	return commands.ParseDay(raw, a.now())
}

func (a *app) printTask(verb string, t model.Task) {
	fmt.Fprintf(a.out, "%s %s %s %s %s\n", verb, shortID(t.ID), t.Title, t.TaskDate, views.Span(t))
}

func (a *app) printShifts(shifts []timeline.Shift) {
	for _, sh := range shifts {
		title := sh.TaskID
		if t, err := a.store.Get(sh.TaskID); err == nil {
			title = t.Title
		}
		fmt.Fprintf(a.out, "  pushed %s %s -> %s\n", title,
			sh.From.In(a.loc).Format(model.TimeKeyLayout),
			sh.StartTime.In(a.loc).Format(model.TimeKeyLayout))
	}
}

func runAdd(a *app, args []string) error {
	in := tasks.NewTask{
		Title:       strings.Join(args, " "),
		Notes:       addNotes,
		Emoji:       addEmoji,
		Priority:    model.Priority(addPriority),
		Category:    model.Category(addCategory),
		IsTimeFixed: addFixed,
		Subtasks:    addSubtasks,
	}
	if addAt != "" {
		start, err := a.parseWhen(addAt)
		if err != nil {
			return err
		}
		in.StartTime = start
	}
	if addDuration != "" {
		d, err := commands.ParseDuration(addDuration)
		if err != nil {
			return err
		}
		in.Duration = d
	}
	if addDue != "" {
		due, err := a.parseWhen(addDue)
		if err != nil {
			return err
		}
		in.DueDate = &due
	}
	created, err := a.store.Create(a.ctx, in)
	if err != nil {
		return err
	}
	a.printTask("added", created)
	if created.IsPartOfMultiDay {
		fmt.Fprintf(a.out, "  split across days as set %s\n", shortID(created.MultiDaySetID))
	}
	return nil
}

func runDay(a *app, args []string) error {
	day, err := a.parseDay(args)
	if err != nil {
		return err
	}
	if dayNoGaps {
		a.cfg.ShowGaps = false
	}
	return a.printDay(day)
}

func runEdit(a *app, args []string) error {
	t, err := a.resolve(args[0])
	if err != nil {
		return err
	}
	var p tasks.Patch
	flags := editCmd.Flags()
	if flags.Changed("title") {
		p.Title = &editTitle
	}
	if flags.Changed("emoji") {
		p.Emoji = &editEmoji
	}
	if flags.Changed("at") {
		start, err := a.parseWhen(editAt)
		if err != nil {
			return err
		}
		p.StartTime = &start
	}
	if flags.Changed("end") {
		end, err := a.parseWhen(editEnd)
		if err != nil {
			return err
		}
		p.EndTime = &end
	}
	if flags.Changed("duration") {
		d, err := commands.ParseDuration(editDuration)
		if err != nil {
			return err
		}
		p.Duration = &d
	}
	if flags.Changed("priority") {
		pr := model.Priority(editPriority)
		p.Priority = &pr
	}
	if flags.Changed("category") {
		c := model.Category(editCategory)
		p.Category = &c
	}
	if flags.Changed("due") {
		due, err := a.parseWhen(editDue)
		if err != nil {
			return err
		}
		p.DueDate = &due
	}
	p.ClearDueDate = editClearDue
	if flags.Changed("fixed") {
		p.IsTimeFixed = &editFixed
	}
	updated, err := a.store.Update(a.ctx, t.ID, p)
	if err != nil {
		return err
	}
	a.printTask("updated", updated)
	return nil
}

func runMove(a *app, args []string) error {
	t, err := a.resolve(args[0])
	if err != nil {
		return err
	}
	start, err := a.parseWhen(strings.Join(args[1:], " "))
	if err != nil {
		return err
	}
	moved, shifts, err := a.store.Move(a.ctx, t.ID, start)
	if err != nil {
		return err
	}
	a.printTask("moved", moved)
	a.printShifts(shifts)
	return nil
}

func runFocus(a *app, args []string) error {
	t, err := a.resolve(args[0])
	if err != nil {
		return err
	}
	focused, shifts, err := a.store.Focus(a.ctx, t.ID)
	if err != nil {
		return err
	}
	a.printTask("focused", focused)
	a.printShifts(shifts)
	return nil
}

func runUnfocus(a *app, _ []string) error {
	t, ok := a.store.Focused()
	if !ok {
		fmt.Fprintln(a.out, "no task in focus")
		return nil
	}
	if err := a.store.Unfocus(a.ctx); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "unfocused %s\n", t.Title)
	return nil
}

func runDone(a *app, args []string) error {
	t, err := a.resolve(args[0])
	if err != nil {
		return err
	}
	updated, err := a.store.ToggleComplete(a.ctx, t.ID)
	if err != nil {
		return err
	}
	if updated.Completed {
		fmt.Fprintf(a.out, "completed %s\n", updated.Title)
	} else {
		fmt.Fprintf(a.out, "reopened %s (%d%%)\n", updated.Title, updated.Progress)
	}
	return nil
}

func runRm(a *app, args []string) error {
	t, err := a.resolve(args[0])
	if err != nil {
		return err
	}
	if err := a.store.Delete(a.ctx, t.ID); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "deleted %s\n", t.Title)
	return nil
}

func runShow(a *app, args []string) error {
	t, err := a.resolve(args[0])
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, views.RenderTaskDetail(views.DetailData{Task: &t, Width: 80, Style: showStyle}))
	return nil
}

func runNotes(a *app, args []string) error {
	t, err := a.resolve(args[0])
	if err != nil {
		return err
	}
	if len(args) == 1 {
		if t.Notes != "" {
			fmt.Fprintln(a.out, t.Notes)
		}
		return nil
	}
	text := strings.Join(args[1:], " ")
	if err := a.store.SaveNotes(t.ID, text); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "saved notes for %s\n", t.Title)
	return nil
}

func runSubtaskAdd(a *app, args []string) error {
	t, err := a.resolve(args[0])
	if err != nil {
		return err
	}
	sub, err := a.store.AddSubtask(a.ctx, t.ID, strings.Join(args[1:], " "))
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "added subtask %d %s to %s\n", sub.Order+1, sub.Title, t.Title)
	return nil
}

func runSubtaskToggle(a *app, args []string) error {
	t, err := a.resolve(args[0])
	if err != nil {
		return err
	}
	updated, err := a.store.ToggleSubtask(a.ctx, t.ID, args[1])
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s progress %d%%\n", updated.Title, updated.Progress)
	return nil
}

func runSlot(a *app, args []string) error {
	day, err := a.parseDay(args)
	if err != nil {
		return err
	}
	d := a.cfg.DefaultDuration
	if slotDuration != "" {
		if d, err = commands.ParseDuration(slotDuration); err != nil {
			return err
		}
	}
	slot, ok := a.store.NextAvailableSlot(day, d)
	if !ok {
		fmt.Fprintf(a.out, "no free slot for %s on %s\n", views.HumanDuration(d), model.DayKey(day))
		return nil
	}
	fmt.Fprintf(a.out, "next slot: %s %s-%s\n", model.DayKey(slot),
		slot.Format(model.TimeKeyLayout), slot.Add(d).Format(model.TimeKeyLayout))
	return nil
}
