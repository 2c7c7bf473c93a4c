package cmd

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/yungbote/skillsprint-backend/internal/domain/generation"
)

var watchCmd = &cobra.Command{
	Use:   "watch [request_id]",
	Short: "Follow a generation request until it finishes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseRequestID(args[0])
		if err != nil {
			return err
		}
		client, err := newClientFromFlags()
		if err != nil {
			return err
		}
		return watchRequest(cmd, client, id)
	},
}

func watchRequest(cmd *cobra.Command, client *Client, id uuid.UUID) error {
	last, err := client.Watch(cmd.Context(), id, func(s generation.Snapshot) {
		cmd.Printf("%s %s %s\n", progressBar(s.Progress), colorizeStatus(s.Status), s.StatusMessage)
	})
	if err != nil {
		return err
	}
	if last.Status == generation.StatusFailed {
		msg := "generation failed"
		if last.ErrorMessage != nil {
			msg = *last.ErrorMessage
		}
		return fmt.Errorf("request %s failed: %s", id, msg)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
