package cmd

import (
	"github.com/spf13/cobra"

	"github.com/yungbote/skillsprint-backend/internal/domain/generation"
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a generation request and start it",
	Long:  `Create a pending course generation request for the token's user, then trigger generation. With --watch the command follows progress until the request finishes.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClientFromFlags()
		if err != nil {
			return err
		}
		courseReq := generation.CourseRequest{
			Topic:    flagString(cmd, "topic"),
			Audience: flagString(cmd, "audience"),
			Level:    flagString(cmd, "level"),
			Duration: flagString(cmd, "duration"),
			Goals:    flagString(cmd, "goals"),
		}

		ctx := cmd.Context()
		row, err := client.CreateRequest(ctx, courseReq)
		if err != nil {
			return err
		}
		if err := client.Trigger(ctx, row.ID, courseReq); err != nil {
			return err
		}
		cmd.Printf("Request %s created and started\n", row.ID)

		if watch, _ := cmd.Flags().GetBool("watch"); watch {
			return watchRequest(cmd, client, row.ID)
		}
		return nil
	},
}

func flagString(cmd *cobra.Command, name string) string {
	v, _ := cmd.Flags().GetString(name)
	return v
}

func init() {
	createCmd.Flags().String("topic", "", "course topic")
	createCmd.Flags().String("audience", "", "target audience")
	createCmd.Flags().String("level", "", "difficulty level")
	createCmd.Flags().String("duration", "", "course duration, e.g. \"4 weeks\"")
	createCmd.Flags().String("goals", "", "learning goals")
	createCmd.Flags().BoolP("watch", "w", false, "follow progress until the request finishes")
	_ = createCmd.MarkFlagRequired("topic")
	_ = createCmd.MarkFlagRequired("audience")
	_ = createCmd.MarkFlagRequired("level")
	_ = createCmd.MarkFlagRequired("duration")

	rootCmd.AddCommand(createCmd)
}
