package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/Rifqialba/urilaga"
	"github.com/Rifqialba/urilaga/config"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage gallery users",
}

var userAddCmd = &cobra.Command{
	Use:   "add [flags] <username>",
	Short: "Add a user that can log in",
	Long: `Insert a row into the users table.

The password is read from a masked prompt unless --password is given.
With auth.password_scheme=bcrypt the stored value is a bcrypt hash.

Examples:
  # Prompt for the password
  urilaga user add Alba

  # Non-interactive
  urilaga user add --password s3cret Aca`,
	Args: cobra.ExactArgs(1),
	RunE: runUserAdd,
}

var userAddPassword string

func init() {
	userAddCmd.Flags().StringVarP(&userAddPassword, "password", "p", "", "password (prompted when omitted)")
	userCmd.AddCommand(userAddCmd)
	rootCmd.AddCommand(userCmd)
}

func runUserAdd(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	username := args[0]

	password := userAddPassword
	if password == "" {
		password, err = promptPassword()
		if err != nil {
			return handlePromptError(err)
		}
	}

	db, err := openDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	// Adding a user never touches objects.
	service, err := newGalleryService(cfg, db.GetRepo(), nil)
	if err != nil {
		return fmt.Errorf("create service: %w", err)
	}

	if err := service.AddUser(ctx, username, password); err != nil {
		if errors.Is(err, urilaga.ErrAlreadyExists) {
			return fmt.Errorf("user %q already exists", username)
		}
		return err
	}

	slog.Info("user added", "username", username, "scheme", cfg.Auth.PasswordScheme)
	return nil
}

func promptPassword() (string, error) {
	validate := func(input string) error {
		if input == "" {
			return errors.New("password cannot be empty")
		}
		return nil
	}

	passwordPrompt := promptui.Prompt{
		Label:    "Password",
		Mask:     '*',
		Validate: validate,
	}
	password, err := passwordPrompt.Run()
	if err != nil {
		return "", err
	}

	confirmPrompt := promptui.Prompt{
		Label: "Confirm password",
		Mask:  '*',
		Validate: func(input string) error {
			if input != password {
				return errors.New("passwords do not match")
			}
			return nil
		},
	}
	if _, err := confirmPrompt.Run(); err != nil {
		return "", err
	}

	return password, nil
}

// handlePromptError handles promptui errors.
func handlePromptError(err error) error {
	if errors.Is(err, promptui.ErrInterrupt) {
		fmt.Println("\nCancelled.")
		os.Exit(0)
	}
	if errors.Is(err, promptui.ErrAbort) {
		fmt.Println("Cancelled.")
		return nil
	}
	return err
}
