package commands

import (
	"fmt"
	"os"

	"spot_market/internal/client"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	apiURL     string
	token      string
	jsonOutput bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "spotctl",
	Short: "spotctl - command line client for the spot_market API",
	Long: `spotctl drives a spot_market server from the command line.

It covers the full listing workflow: open a session, create and manage
spots, attach images, and post star reviews.

Session tokens come from "spotctl login" and are passed back via --token
or the SPOT_MARKET_TOKEN environment variable.`,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global flags, with environment fallbacks
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", envOr("SPOT_MARKET_API", "http://localhost:8080"), "Server base URL")
	rootCmd.PersistentFlags().StringVar(&token, "token", os.Getenv("SPOT_MARKET_TOKEN"), "Session token")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
}

// envOr returns the environment value or a default when unset.
func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// newClient builds an API client from the global flags.
func newClient() *client.Client {
	c := client.New(apiURL)
	c.Token = token
	return c
}
