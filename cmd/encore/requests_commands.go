package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"encore/internal/requests"
)

func newRequestsCommand(ctx *commandContext) *cobra.Command {
	requestsCmd := &cobra.Command{
		Use:   "requests",
		Short: "Inspect and manage crowd song requests",
	}

	requestsCmd.AddCommand(newRequestsListCommand(ctx))
	requestsCmd.AddCommand(newRequestsAddCommand(ctx))

	return requestsCmd
}

func newRequestsListCommand(ctx *commandContext) *cobra.Command {
	var statusFilter string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List song requests",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			var statuses []requests.Status
			if raw := strings.TrimSpace(statusFilter); raw != "" {
				for _, value := range strings.Split(raw, ",") {
					status, ok := requests.ParseStatus(value)
					if !ok {
						return fmt.Errorf("unknown status %q (known: %s)", value, statusNames())
					}
					statuses = append(statuses, status)
				}
			}

			store, err := requests.Open(cfg)
			if err != nil {
				return fmt.Errorf("open request store: %w", err)
			}
			defer store.Close()

			list, err := store.ListRequests(cmd.Context(), cfg.Performer.OrgID, statuses...)
			if err != nil {
				return err
			}
			if len(list) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No requests found")
				return nil
			}

			rows := make([][]string, 0, len(list))
			for _, req := range list {
				notified := ""
				if req.NotificationSent {
					notified = "yes"
				}
				playedAt := ""
				if req.PlayedAt != nil {
					playedAt = req.PlayedAt.Local().Format("15:04:05")
				}
				rows = append(rows, []string{
					shortID(req.ID),
					req.SongArtist,
					req.SongTitle,
					string(req.Status),
					notified,
					playedAt,
					req.CreatedAt.Local().Format("Jan 02 15:04"),
				})
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"ID", "Artist", "Title", "Status", "Notified", "Played", "Created"},
				rows,
				nil,
			))
			return nil
		},
	}

	cmd.Flags().StringVarP(&statusFilter, "status", "s", "", "Comma-separated status filter")
	return cmd
}

func newRequestsAddCommand(ctx *commandContext) *cobra.Command {
	var artist, title, name, phone, email string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a new song request",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			store, err := requests.Open(cfg)
			if err != nil {
				return fmt.Errorf("open request store: %w", err)
			}
			defer store.Close()

			req, err := store.CreateRequest(cmd.Context(), requests.NewRequest{
				OrgID:          cfg.Performer.OrgID,
				SongArtist:     artist,
				SongTitle:      title,
				RequesterName:  name,
				RequesterPhone: phone,
				RequesterEmail: email,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created request %s: %s - %s\n", shortID(req.ID), req.SongArtist, req.SongTitle)
			return nil
		},
	}

	cmd.Flags().StringVar(&artist, "artist", "", "Song artist")
	cmd.Flags().StringVar(&title, "title", "", "Song title")
	cmd.Flags().StringVar(&name, "name", "", "Requester name")
	cmd.Flags().StringVar(&phone, "phone", "", "Requester phone number for SMS notification")
	cmd.Flags().StringVar(&email, "email", "", "Requester email for email notification")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recently detected tracks",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			store, err := requests.Open(cfg)
			if err != nil {
				return fmt.Errorf("open request store: %w", err)
			}
			defer store.Close()

			plays, err := store.RecentPlays(cmd.Context(), cfg.Performer.OrgID, limit)
			if err != nil {
				return err
			}
			if len(plays) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No plays recorded")
				return nil
			}

			rows := make([][]string, 0, len(plays))
			for _, play := range plays {
				matched := ""
				if play.MatchedRequestID != "" {
					matched = shortID(play.MatchedRequestID)
				}
				rows = append(rows, []string{
					play.PlayedAt.Local().Format(time.Stamp),
					play.Artist,
					play.Title,
					play.Source,
					matched,
				})
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Played", "Artist", "Title", "Source", "Matched"},
				rows,
				nil,
			))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of plays to show")
	return cmd
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func statusNames() string {
	statuses := requests.AllStatuses()
	names := make([]string, len(statuses))
	for i, status := range statuses {
		names[i] = string(status)
	}
	return strings.Join(names, ", ")
}
