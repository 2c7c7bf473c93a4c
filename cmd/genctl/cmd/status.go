package cmd

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/yungbote/skillsprint-backend/internal/domain/generation"
)

var statusCmd = &cobra.Command{
	Use:   "status [request_id]",
	Short: "Show a generation request",
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
		row, err := client.GetRequest(cmd.Context(), id)
		if err != nil {
			return err
		}
		printRequest(cmd, row)
		return nil
	},
}

func parseRequestID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid request id %q", s)
	}
	return id, nil
}

func printRequest(cmd *cobra.Command, row *generation.GenerationRequest) {
	cmd.Printf("%s %sGeneration Request%s\n", statusIcon(row.Status), colorBold, colorReset)
	cmd.Println("──────────────────────────────")
	cmd.Printf("%sID:%s          %s\n", colorDim, colorReset, row.ID)
	cmd.Printf("%sStatus:%s      %s\n", colorDim, colorReset, colorizeStatus(row.Status))
	cmd.Printf("%sProgress:%s    %s\n", colorDim, colorReset, progressBar(row.Progress))
	if row.StatusMessage != "" {
		cmd.Printf("%sMessage:%s     %s\n", colorDim, colorReset, row.StatusMessage)
	}
	if row.ErrorMessage != nil {
		cmd.Printf("%sError:%s       %s%s%s\n", colorDim, colorReset, colorRed, *row.ErrorMessage, colorReset)
	}
	cmd.Printf("%sContent:%s     %t\n", colorDim, colorReset, row.ContentGenerated)
	cmd.Printf("%sCreated:%s     %s\n", colorDim, colorReset, formatTime(row.CreatedAt))
	cmd.Printf("%sUpdated:%s     %s\n", colorDim, colorReset, formatTime(row.UpdatedAt))
}

const (
	colorReset  = "\033[0m"
	colorBold   = "\033[1m"
	colorDim    = "\033[2m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
)

func statusIcon(status generation.Status) string {
	switch status {
	case generation.StatusCompleted:
		return colorGreen + "✓" + colorReset
	case generation.StatusFailed:
		return colorRed + "✗" + colorReset
	case generation.StatusCancelled:
		return colorDim + "⊘" + colorReset
	case generation.StatusProcessing:
		return colorYellow + "⏳" + colorReset
	case generation.StatusPending:
		return colorCyan + "◯" + colorReset
	default:
		return "•"
	}
}

func colorizeStatus(status generation.Status) string {
	s := string(status)
	switch status {
	case generation.StatusCompleted:
		return statusIcon(status) + " " + colorGreen + s + colorReset
	case generation.StatusFailed:
		return statusIcon(status) + " " + colorRed + s + colorReset
	case generation.StatusProcessing:
		return statusIcon(status) + " " + colorYellow + s + colorReset
	case generation.StatusPending:
		return statusIcon(status) + " " + colorCyan + s + colorReset
	default:
		return s
	}
}

func progressBar(progress int) string {
	const width = 20
	if progress < 0 {
		progress = 0
	}
	if progress > 100 {
		progress = 100
	}
	filled := progress * width / 100
	bar := make([]rune, width)
	for i := range bar {
		if i < filled {
			bar[i] = '█'
		} else {
			bar[i] = '░'
		}
	}
	return fmt.Sprintf("%s %3d%%", string(bar), progress)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("Mon, 02 Jan 2006 15:04:05 MST")
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
