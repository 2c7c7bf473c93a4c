package cmd

import (
	"github.com/spf13/cobra"
)

var cancelCmd = &cobra.Command{
	Use:   "cancel [request_id]",
	Short: "Cancel a pending or processing generation request",
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
		row, err := client.CancelRequest(cmd.Context(), id)
		if err != nil {
			return err
		}
		cmd.Printf("Request %s is now %s\n", row.ID, colorizeStatus(row.Status))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cancelCmd)
}
