package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var remindCmd = &cobra.Command{
	Use:   "remind <task> <when>",
	Short: "Add a reminder for a task",
	Args:  cobra.MinimumNArgs(2),
	RunE:  withApp(runRemind),
}

var remindersCmd = &cobra.Command{
	Use:   "reminders",
	Short: "List or watch reminders",
}

var remindersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List reminders by trigger time",
	Args:  cobra.NoArgs,
	RunE:  withApp(runRemindersList),
}

var remindersRmCmd = &cobra.Command{
	Use:   "rm <reminder id>",
	Short: "Delete a reminder",
	Args:  cobra.ExactArgs(1),
	RunE:  withApp(runRemindersRm),
}

var remindersWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print reminders as they come due until interrupted",
	Args:  cobra.NoArgs,
	RunE:  withApp(runRemindersWatch),
}

var (
	watchOnce bool
	watchFor  time.Duration
)

func init() {
	remindersWatchCmd.Flags().BoolVar(&watchOnce, "once", false, "exit after the first reminder")
	remindersWatchCmd.Flags().DurationVar(&watchFor, "for", 0, "stop watching after this long (0 watches until interrupted)")

	remindersCmd.AddCommand(remindersListCmd, remindersRmCmd, remindersWatchCmd)
	rootCmd.AddCommand(remindCmd, remindersCmd)
}

const reminderLayout = "2006-01-02 15:04"

func runRemind(a *app, args []string) error {
	t, err := a.resolve(args[0])
	if err != nil {
		return err
	}
	when, err := a.parseWhen(strings.Join(args[1:], " "))
	if err != nil {
		return err
	}
	r, err := a.store.AddReminder(a.ctx, t.ID, when)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "reminder %s for %s at %s\n", shortID(r.ID), t.Title, r.TriggerTime.In(a.loc).Format(reminderLayout))
	return nil
}

func runRemindersList(a *app, _ []string) error {
	list := a.store.Reminders()
	if len(list) == 0 {
		fmt.Fprintln(a.out, "no reminders")
		return nil
	}
	for _, r := range list {
		state := "pending"
		switch {
		case r.LastFiredAt != nil:
			state = "fired"
		case !r.Enabled:
			state = "disabled"
		}
		fmt.Fprintf(a.out, "%s %s %s %s\n", shortID(r.ID), r.TriggerTime.In(a.loc).Format(reminderLayout), r.Title, state)
	}
	return nil
}

func runRemindersRm(a *app, args []string) error {
	ref := strings.TrimSpace(args[0])
	for _, r := range a.store.Reminders() {
		if r.ID == ref || (ref != "" && strings.HasPrefix(r.ID, ref)) {
			if err := a.store.DeleteReminder(a.ctx, r.ID); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "deleted reminder %s\n", shortID(r.ID))
			return nil
		}
	}
	return fmt.Errorf("reminder %q not found", ref)
}

func runRemindersWatch(a *app, _ []string) error {
	ctx, stop := signal.NotifyContext(a.ctx, os.Interrupt)
	defer stop()
	if watchFor > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, watchFor)
		defer cancel()
	}

	engine, err := a.startEngine()
	if err != nil {
		return err
	}
	defer engine.Stop()
	a.logger.Info("watching reminders", "pending", engine.Pending())

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-engine.C():
			if !ok {
				return nil
			}
			fmt.Fprintf(a.out, "reminder: %s (%s)\n", ev.Title, ev.TriggerAt.In(a.loc).Format(reminderLayout))
			if err := a.store.MarkReminderFired(a.ctx, ev.ReminderID, a.now()); err != nil {
				return err
			}
			if watchOnce {
				return nil
			}
		}
	}
}
