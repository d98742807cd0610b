package command

// auth.go handles authentication commands: login, logout, whoami.

import (
	"fmt"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"bookhub/cmd/cli/authentication"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authentication commands",
	Long:  `Authenticate with the bookstore API server. Supports login, logout and session inspection.`,
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Login to the bookstore backend",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		username, _ := cmd.Flags().GetString("username")
		password, _ := cmd.Flags().GetString("password")
		remember, _ := cmd.Flags().GetBool("remember")

		if password == "" {
			password, err = readPassword("Password: ")
			if err != nil {
				return fmt.Errorf("failed to read password: %w", err)
			}
		}

		token, err := a.client.Login(cmd.Context(), username, password)
		if err != nil {
			return fmt.Errorf("login failed: %w", err)
		}

		if err := a.ctrl.LoginSucceeded(token, remember); err != nil {
			return fmt.Errorf("failed to store token: %w", err)
		}

		fmt.Println("✓ Successfully logged in!")
		if !remember {
			fmt.Println("Session token stored until logout; use --remember to keep it in the keychain.")
		}
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Logout and clear the stored token",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		// Logout is purely local, there is no server call.
		a.ctrl.Logout()
		fmt.Println("✓ Successfully logged out.")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the current session",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if !a.ctrl.IsAuthenticated() {
			fmt.Println("Not logged in.")
			return nil
		}

		token, _ := a.store.Read()
		if name := authentication.DisplayName(token); name != "" {
			fmt.Printf("Logged in as %s\n", name)
		} else {
			fmt.Println("Logged in.")
		}
		return nil
	},
}

// readPassword reads a password from the terminal with masking.
func readPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		return "", err
	}
	fmt.Println()
	return strings.TrimSpace(string(bytePassword)), nil
}

func init() {
	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(logoutCmd)
	authCmd.AddCommand(whoamiCmd)

	loginCmd.Flags().StringP("username", "u", "", "Username for the account")
	loginCmd.Flags().StringP("password", "p", "", "Password (prompted when omitted)")
	loginCmd.Flags().BoolP("remember", "r", false, "Keep the token in the OS keychain across sessions")
	loginCmd.MarkFlagRequired("username")
}
