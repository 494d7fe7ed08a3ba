package main

import (
	"context"
	"errors"
	"os"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/Rifqialba/urilaga/clientcli"
)

var loginPassword string

var loginCmd = &cobra.Command{
	Use:   "login [username]",
	Short: "Check a username and password against the server",
	Long: `Check a username and password against the server.

The server keeps no session, so a successful login only confirms the
credentials. The password comes from --password, URILAGA_PASSWORD or a
masked prompt.

Examples:
  urilaga-cli login Alba
  URILAGA_PASSWORD=s3cret urilaga-cli login --username Alba`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLogin,
}

func init() {
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "password (env: URILAGA_PASSWORD)")
}

func runLogin(_ *cobra.Command, args []string) error {
	client, cfg, err := getClient()
	if err != nil {
		return err
	}

	name := cfg.Username
	if len(args) > 0 {
		name = args[0]
	}
	if name == "" {
		return handleError(os.Stderr, clientcli.ErrUsernameRequired)
	}

	password := loginPassword
	if password == "" {
		password = clientcli.PasswordFromEnv()
	}
	if password == "" {
		prompt := promptui.Prompt{
			Label: "Password for " + name,
			Mask:  '*',
			Validate: func(input string) error {
				if input == "" {
					return errors.New("password cannot be empty")
				}
				return nil
			},
		}
		password, err = prompt.Run()
		if err != nil {
			return reportCancel(err)
		}
	}

	if err := client.Login(context.Background(), name, password); err != nil {
		return handleError(os.Stderr, err)
	}

	return getFormatter().FormatLogin(os.Stdout, name)
}
