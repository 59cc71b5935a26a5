package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	pushbridge "github.com/pushbridge-dev/pushbridge"
)

var saveCmd = &cobra.Command{
	Use:   "save-token",
	Short: "Save the stored push token with the remote push service",
	RunE: func(cmd *cobra.Command, args []string) error {
		ignoreUser, _ := cmd.Flags().GetBool("ignore-user")

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		cmd.SetContext(ctx)

		rt, err := newRuntime()
		if err != nil {
			return err
		}
		defer rt.close()

		tok := requireToken(cmd, rt)
		saved, err := rt.coord.SaveToken(ctx, tok, pushbridge.SaveOptions{IgnoreUser: ignoreUser})
		if err != nil {
			return fmt.Errorf("saving token with the push service failed: %w", err)
		}

		fmt.Printf("Token %s saved (saved=%t)\n", saved.Token, saved.Saved)
		return nil
	},
}

func init() {
	saveCmd.Flags().String("token", "", "Token to save (defaults to the stored token)")
	saveCmd.Flags().Bool("ignore-user", false, "Never attach a user id to the outgoing record")
	rootCmd.AddCommand(saveCmd)
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Print the stored push token",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime()
		if err != nil {
			return err
		}
		defer rt.close()

		tok := rt.coord.Token(context.Background())
		if tok.IsZero() {
			fmt.Fprintln(os.Stderr, "No push token stored.")
			return nil
		}
		fmt.Println(tok.Token)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tokenCmd)
}
