package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	pushbridge "github.com/pushbridge-dev/pushbridge"
)

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Acquire a push token from FCM and persist it",
	RunE: func(cmd *cobra.Command, args []string) error {
		save, _ := cmd.Flags().GetBool("save")

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		rt, err := newRuntime()
		if err != nil {
			return err
		}
		defer rt.close()

		// This process is its own runtime bridge: report device readiness as
		// soon as the coordinator is listening for it.
		go func() {
			for !rt.bus.HasSubscriber(pushbridge.EventDeviceReady) {
				select {
				case <-ctx.Done():
					return
				case <-time.After(10 * time.Millisecond):
				}
			}
			rt.bus.Emit(pushbridge.EventDeviceReady, nil)
		}()

		fmt.Fprintln(os.Stderr, "Registering for push notifications...")
		tok, err := rt.coord.Register(ctx)
		if err != nil {
			return fmt.Errorf("push registration failed: %w", err)
		}
		fmt.Printf("Push token: %s\n", tok.Token)

		if save {
			saved, err := rt.coord.SaveToken(ctx, tok, pushbridge.SaveOptions{})
			if err != nil {
				return fmt.Errorf("saving token with the push service failed: %w", err)
			}
			fmt.Fprintf(os.Stderr, "Token saved with the push service (saved=%t).\n", saved.Saved)
		}

		return nil
	},
}

func init() {
	registerCmd.Flags().Bool("save", false, "Also save the token with the remote push service")
	rootCmd.AddCommand(registerCmd)
}
