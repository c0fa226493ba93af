package commands

import (
	"fmt"
	"syscall"

	"github.com/dirscout/dirscout/pkg/config"
	"github.com/dirscout/dirscout/pkg/identity"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage registered users",
	Long: `Manage the append-only credential ledger.

Users normally self-register on first login; these commands let an
operator provision accounts and inspect the ledger out of band.`,
}

var userAddCmd = &cobra.Command{
	Use:   "add <username>",
	Short: "Register a new user",
	Args:  cobra.ExactArgs(1),
	RunE:  runUserAdd,
}

var userListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List registered users",
	Args:    cobra.NoArgs,
	RunE:    runUserList,
}

func init() {
	userCmd.AddCommand(userAddCmd)
	userCmd.AddCommand(userListCmd)
}

func openStore() (*identity.Store, error) {
	cfg, err := config.MustLoad(GetConfigFile())
	if err != nil {
		return nil, err
	}
	return identity.NewStore(cfg.Auth.UsersFile), nil
}

func runUserAdd(cmd *cobra.Command, args []string) error {
	username := args[0]

	store, err := openStore()
	if err != nil {
		return err
	}

	// The ledger resolves duplicates first-match-wins, so a second record
	// for the same name would be dead weight. Refuse it here.
	_, found, err := store.Lookup(username)
	if err != nil {
		return fmt.Errorf("failed to read ledger: %w", err)
	}
	if found {
		return fmt.Errorf("user %q already exists", username)
	}

	password, err := promptPassword("Password: ")
	if err != nil {
		return err
	}
	confirm, err := promptPassword("Confirm password: ")
	if err != nil {
		return err
	}
	if password != confirm {
		return fmt.Errorf("passwords do not match")
	}

	cred, err := identity.NewCredential(username, password)
	if err != nil {
		return fmt.Errorf("failed to create credential: %w", err)
	}
	if err := store.Append(cred); err != nil {
		return fmt.Errorf("failed to register user: %w", err)
	}

	fmt.Printf("User %q registered\n", username)
	return nil
}

func runUserList(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}

	creds, err := store.List()
	if err != nil {
		return fmt.Errorf("failed to read ledger: %w", err)
	}

	if len(creds) == 0 {
		fmt.Println("No registered users")
		return nil
	}

	fmt.Printf("%d registered user(s):\n", len(creds))
	for _, cred := range creds {
		fmt.Printf("  %s\n", cred.Username)
	}
	return nil
}

// promptPassword reads a password from the terminal without echo.
func promptPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	password, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(password), nil
}
