package main

import (
	"github.com/sandeepkv93/taskline/internal/export"
	"github.com/sandeepkv93/taskline/internal/model"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write tasks as JSON, YAML or iCalendar",
	Args:  cobra.NoArgs,
	RunE:  withApp(runExport),
}

var (
	exportFormat string
	exportDay    string
)

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "json", "json, yaml or ics")
	exportCmd.Flags().StringVar(&exportDay, "day", "", "only this day (default all tasks)")
	rootCmd.AddCommand(exportCmd)
}

func runExport(a *app, _ []string) error {
	f, err := export.ParseFormat(exportFormat)
	if err != nil {
		return err
	}
	var list []model.Task
	if exportDay != "" {
		day, err := a.parseDay([]string{exportDay})
		if err != nil {
			return err
		}
		list = a.store.Day(day)
	} else {
		list = a.store.Tasks()
	}
	return export.Write(a.out, f, list, a.now())
}
