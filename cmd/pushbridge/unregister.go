package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

var unregisterCmd = &cobra.Command{
	Use:   "unregister",
	Short: "Invalidate the stored push token and clear it",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		rt, err := newRuntime()
		if err != nil {
			return err
		}
		defer rt.close()

		if err := rt.coord.Unregister(ctx); err != nil {
			return fmt.Errorf("unregister failed: %w", err)
		}
		fmt.Fprintln(os.Stderr, "Push token unregistered.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(unregisterCmd)
}
