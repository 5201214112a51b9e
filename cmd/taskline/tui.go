package main

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandeepkv93/taskline/internal/scheduler"
	"github.com/sandeepkv93/taskline/internal/update"
)

// startEngine queues every pending reminder and starts the timer loop.
func (a *app) startEngine() (*scheduler.Engine, error) {
	engine := scheduler.NewEngine(a.cfg.SchedulerBuffer, scheduler.WithLogger(a.logger))
	for _, ev := range a.store.PendingReminderEvents() {
		if err := engine.Schedule(ev); err != nil {
			return nil, fmt.Errorf("schedule reminder %s: %w", ev.ReminderID, err)
		}
	}
	engine.Start()
	return engine, nil
}

func (a *app) runTUI() (err error) {
	defer func() {
		if cerr := a.close(); err == nil {
			err = cerr
		}
	}()

	engine, err := a.startEngine()
	if err != nil {
		return err
	}
	defer engine.Stop()

	m := update.NewModel(a.store, update.Options{
		Engine:   engine,
		Location: a.loc,
		ShowGaps: a.cfg.ShowGaps,
		Logger:   a.logger,
	})
	program := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(a.ctx))
	if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("tui: %w", err)
	}
	if dropped := engine.Dropped(); dropped > 0 {
		a.logger.Warn("reminders dropped while the screen was busy", "count", dropped)
	}
	return nil
}
