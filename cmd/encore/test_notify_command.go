package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"encore/internal/logging"
	"encore/internal/notify"
	"encore/internal/requests"
)

func newTestNotifyCommand(ctx *commandContext) *cobra.Command {
	var phone, email string

	cmd := &cobra.Command{
		Use:   "test-notify",
		Short: "Send a test notification through the configured gateways",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if strings.TrimSpace(phone) == "" && strings.TrimSpace(email) == "" {
				return errors.New("provide --phone and/or --email")
			}

			store, err := requests.Open(cfg)
			if err != nil {
				return fmt.Errorf("open request store: %w", err)
			}
			defer store.Close()

			dispatcher := notify.NewDispatcher(cfg, store, logging.NewNop())
			if !dispatcher.Enabled() {
				return errors.New("no notification channel enabled in configuration")
			}

			if err := dispatcher.Test(cmd.Context(), phone, email); err != nil {
				return fmt.Errorf("test notification: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Test notification sent")
			return nil
		},
	}

	cmd.Flags().StringVar(&phone, "phone", "", "Phone number to text")
	cmd.Flags().StringVar(&email, "email", "", "Email address to mail")
	return cmd
}
