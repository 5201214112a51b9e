package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var canvasCmd = &cobra.Command{
	Use:   "canvas <task>",
	Short: "Print a task's drawing scene, or store one with --set",
	Args:  cobra.ExactArgs(1),
	RunE:  withApp(runCanvas),
}

var canvasSet string

func init() {
	canvasCmd.Flags().StringVar(&canvasSet, "set", "", "file holding the scene to store")
	rootCmd.AddCommand(canvasCmd)
}

func runCanvas(a *app, args []string) error {
	t, err := a.resolve(args[0])
	if err != nil {
		return err
	}
	if canvasSet != "" {
		scene, err := os.ReadFile(canvasSet)
		if err != nil {
			return err
		}
		if err := a.store.SaveCanvas(t.ID, scene); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "saved canvas for %s (%d bytes)\n", t.Title, len(scene))
		return nil
	}
	scene, err := a.store.Canvas(a.ctx, t.ID)
	if err != nil {
		return err
	}
	if scene == nil {
		fmt.Fprintf(a.out, "%s has no canvas\n", t.Title)
		return nil
	}
	_, err = a.out.Write(scene)
	return err
}
