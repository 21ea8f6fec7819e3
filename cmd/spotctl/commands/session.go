package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"spot_market/internal/client"

	"github.com/spf13/cobra"
)

var (
	// Login flags
	loginPassword string

	// Signup flags
	signupEmail     string
	signupPassword  string
	signupFirstName string
	signupLastName  string
)

// loginCmd opens a session and prints the token
var loginCmd = &cobra.Command{
	Use:   "login <username-or-email>",
	Short: "Open a session and print the token",
	Long: `Open a session with a username or email plus password.

The printed token goes into SPOT_MARKET_TOKEN or --token for the
commands that need one.

Examples:
  spotctl login demo@example.com --password hunter22
  export SPOT_MARKET_TOKEN=$(spotctl login demo --password hunter22)`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := newClient()
		res, err := c.Login(context.Background(), args[0], loginPassword)
		if err != nil {
			return err
		}
		if jsonOutput {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		}
		fmt.Println(res.Token)
		return nil
	},
}

// signupCmd registers a new account
var signupCmd = &cobra.Command{
	Use:   "signup <username>",
	Short: "Register a new account and print its session token",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := newClient()
		res, err := c.Signup(context.Background(), client.SignupParams{
			Username:  args[0],
			Email:     signupEmail,
			Password:  signupPassword,
			FirstName: signupFirstName,
			LastName:  signupLastName,
		})
		if err != nil {
			return err
		}
		if jsonOutput {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		}
		fmt.Println(res.Token)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(signupCmd)

	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "Account password (required)")
	_ = loginCmd.MarkFlagRequired("password")

	signupCmd.Flags().StringVar(&signupEmail, "email", "", "Email address (required)")
	signupCmd.Flags().StringVarP(&signupPassword, "password", "p", "", "Account password (required)")
	signupCmd.Flags().StringVar(&signupFirstName, "first-name", "", "First name (required)")
	signupCmd.Flags().StringVar(&signupLastName, "last-name", "", "Last name (required)")
	_ = signupCmd.MarkFlagRequired("email")
	_ = signupCmd.MarkFlagRequired("password")
	_ = signupCmd.MarkFlagRequired("first-name")
	_ = signupCmd.MarkFlagRequired("last-name")
}
