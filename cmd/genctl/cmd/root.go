package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/yungbote/skillsprint-backend/internal/platform/envutil"
)

const defaultURL = "http://localhost:8080"

var (
	apiURL   string
	apiToken string
)

var rootCmd = &cobra.Command{
	Use:   "genctl",
	Short: "genctl creates and follows SkillSprint course generation requests",
	Long: `genctl talks to the SkillSprint API on behalf of a signed-in user.

  Create a request and start generation:
    genctl create --topic "Go concurrency" --audience "backend devs" --level intermediate --duration "4 weeks"

  Inspect, cancel or follow a request:
    genctl status <request-id>
    genctl cancel <request-id>
    genctl watch <request-id>

Configuration:
  SKILLSPRINT_URL    API endpoint (default: http://localhost:8080)
  SKILLSPRINT_TOKEN  Supabase access token for the user`,
	SilenceUsage: true,
}

func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "url", envutil.String("SKILLSPRINT_URL", defaultURL), "SkillSprint API URL")
	rootCmd.PersistentFlags().StringVarP(&apiToken, "token", "t", envutil.String("SKILLSPRINT_TOKEN", ""), "access token")
}

func newClientFromFlags() (*Client, error) {
	if apiToken == "" {
		return nil, errMissingToken
	}
	return NewClient(apiURL, apiToken), nil
}
