package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/Rifqialba/urilaga/clientcli"
)

const healthCheckTimeout = 5 * time.Second

var (
	addEndpoint   string
	addUsername   string
	addDefault    bool
	assumeYes     bool
	errCancelled  = errors.New("cancelled")
	configureHelp = `Profiles save the endpoint and username of a gallery server so other
commands can pick them with --profile or URILAGA_PROFILE. Passwords are
never written to the profile file.

Profiles are stored in ~/.urilaga/client.yaml unless --config or
URILAGA_CLIENT_CONFIG points elsewhere.`
)

var configureCmd = &cobra.Command{
	Use:   "configure",
	Short: "Manage gallery server profiles",
	Long:  configureHelp,
}

var configureListCmd = &cobra.Command{
	Use:   "list",
	Short: "List profiles (the default is marked with *)",
	RunE:  runConfigureList,
}

var configureAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add or replace a profile",
	Long: `Add or replace a profile.

Values not given as flags are prompted for. The server's /healthz is checked
before the profile is saved.`,
	Example: `  urilaga-cli configure add local
  urilaga-cli configure add prod --endpoint https://gallery.example --username Alba --default --yes`,
	Args: cobra.ExactArgs(1),
	RunE: runConfigureAdd,
}

var configureRemoveCmd = &cobra.Command{
	Use:     "remove <name>",
	Aliases: []string{"rm"},
	Short:   "Remove a profile",
	Args:    cobra.ExactArgs(1),
	RunE:    runConfigureRemove,
}

var configureSetDefaultCmd = &cobra.Command{
	Use:   "set-default <name>",
	Short: "Make a profile the default",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigureSetDefault,
}

var configureShowCmd = &cobra.Command{
	Use:   "show [name]",
	Short: "Show one profile (the default when no name is given)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runConfigureShow,
}

func init() {
	configureAddCmd.Flags().StringVar(&addEndpoint, "endpoint", "", "gallery server URL")
	configureAddCmd.Flags().StringVar(&addUsername, "username", "", "username for login and upload attribution")
	configureAddCmd.Flags().BoolVar(&addDefault, "default", false, "make this the default profile")
	configureCmd.PersistentFlags().BoolVarP(&assumeYes, "yes", "y", false, "answer yes to confirmations")

	configureCmd.AddCommand(configureListCmd, configureAddCmd, configureRemoveCmd, configureSetDefaultCmd, configureShowCmd)
}

// loadProfiles reads the profile file. A missing file yields an empty one
// when allowMissing is set.
func loadProfiles(allowMissing bool) (*clientcli.ConfigFile, error) {
	cfg, err := clientcli.LoadConfigFile(getConfigPath())
	switch {
	case err == nil:
		return cfg, nil
	case allowMissing && errors.Is(err, os.ErrNotExist):
		return &clientcli.ConfigFile{}, nil
	default:
		return nil, fmt.Errorf("load config: %w", err)
	}
}

func saveProfiles(cfg *clientcli.ConfigFile) error {
	if err := cfg.Save(getConfigPath()); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	return nil
}

// confirm asks a yes/no question. --yes answers it without prompting.
func confirm(label string) bool {
	if assumeYes {
		return true
	}
	_, err := (&promptui.Prompt{Label: label, IsConfirm: true}).Run()
	return err == nil
}

func runConfigureList(_ *cobra.Command, _ []string) error {
	cfg, err := loadProfiles(true)
	if err != nil {
		return err
	}

	if len(cfg.Profiles) == 0 {
		fmt.Println("No profiles configured. Run 'urilaga-cli configure add <name>' to create one.")
		return nil
	}

	def, err := cfg.GetDefaultProfile()
	if err != nil {
		return err
	}
	return getFormatter().FormatProfileList(os.Stdout, cfg.Profiles, def.Name)
}

func runConfigureAdd(cmd *cobra.Command, args []string) error {
	name := args[0]

	cfg, err := loadProfiles(true)
	if err != nil {
		return err
	}

	existing, _ := cfg.GetProfile(name)
	if existing != nil && !confirm(fmt.Sprintf("Profile '%s' exists. Replace it", name)) {
		return reportCancel(errCancelled)
	}

	profile, err := promptProfile(cmd, name, len(cfg.Profiles) == 0 || (existing != nil && existing.Default))
	if err != nil {
		return reportCancel(err)
	}

	fmt.Printf("Checking %s/healthz... ", profile.Endpoint)
	if healthErr := checkHealth(profile.Endpoint); healthErr != nil {
		fmt.Printf("failed: %v\n", healthErr)
		if !confirm("Save profile anyway") {
			return reportCancel(errCancelled)
		}
	} else {
		fmt.Println("ok")
	}

	if existing != nil {
		_ = cfg.RemoveProfile(name)
	}
	if err = cfg.AddProfile(profile); err != nil {
		return fmt.Errorf("add profile: %w", err)
	}
	if err = saveProfiles(cfg); err != nil {
		return err
	}

	if profile.Default {
		fmt.Printf("Profile '%s' saved as the default.\n", name)
	} else {
		fmt.Printf("Profile '%s' saved.\n", name)
	}
	return nil
}

// promptProfile fills a profile from flags, prompting for whatever was not
// given. forceDefault is set when the profile must become the default.
func promptProfile(cmd *cobra.Command, name string, forceDefault bool) (clientcli.Profile, error) {
	endpoint := addEndpoint
	if !cmd.Flags().Changed("endpoint") {
		var err error
		endpoint, err = (&promptui.Prompt{
			Label:   "Endpoint URL",
			Default: clientcli.DefaultEndpoint,
			Validate: func(in string) error {
				return (&clientcli.Config{Endpoint: in}).Validate()
			},
		}).Run()
		if err != nil {
			return clientcli.Profile{}, err
		}
	}
	endpoint = strings.TrimSuffix(endpoint, "/")
	if err := (&clientcli.Config{Endpoint: endpoint}).Validate(); err != nil {
		return clientcli.Profile{}, err
	}

	username := addUsername
	if !cmd.Flags().Changed("username") {
		var err error
		if username, err = (&promptui.Prompt{Label: "Username (optional)"}).Run(); err != nil {
			return clientcli.Profile{}, err
		}
	}

	isDefault := forceDefault || addDefault
	if !isDefault && !cmd.Flags().Changed("default") && !assumeYes {
		isDefault = confirm("Make this the default profile")
	}

	return clientcli.Profile{Name: name, Endpoint: endpoint, Username: username, Default: isDefault}, nil
}

func runConfigureRemove(_ *cobra.Command, args []string) error {
	name := args[0]

	cfg, err := loadProfiles(false)
	if err != nil {
		return err
	}
	if _, err = cfg.GetProfile(name); err != nil {
		return err
	}

	if !confirm(fmt.Sprintf("Remove profile '%s'", name)) {
		return reportCancel(errCancelled)
	}

	if err = cfg.RemoveProfile(name); err != nil {
		return fmt.Errorf("remove profile: %w", err)
	}
	if err = saveProfiles(cfg); err != nil {
		return err
	}

	fmt.Printf("Profile '%s' removed.\n", name)
	return nil
}

func runConfigureSetDefault(_ *cobra.Command, args []string) error {
	cfg, err := loadProfiles(false)
	if err != nil {
		return err
	}
	if err = cfg.SetDefault(args[0]); err != nil {
		return err
	}
	if err = saveProfiles(cfg); err != nil {
		return err
	}

	fmt.Printf("Default profile is now '%s'.\n", args[0])
	return nil
}

func runConfigureShow(_ *cobra.Command, args []string) error {
	cfg, err := loadProfiles(false)
	if err != nil {
		return err
	}

	var name string
	if len(args) > 0 {
		name = args[0]
	}

	p, err := cfg.GetProfile(name)
	if err != nil {
		return err
	}

	def, _ := cfg.GetDefaultProfile()
	return getFormatter().FormatProfileShow(os.Stdout, *p, def != nil && def.Name == p.Name)
}

func checkHealth(endpoint string) error {
	client, err := clientcli.New(&clientcli.Config{Endpoint: endpoint}, clientcli.WithTimeout(healthCheckTimeout))
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), healthCheckTimeout)
	defer cancel()
	return client.Health(ctx)
}

// reportCancel turns a declined confirmation or an aborted prompt into a
// clean exit. Ctrl-C exits the process; other errors pass through.
func reportCancel(err error) error {
	switch {
	case errors.Is(err, promptui.ErrInterrupt):
		fmt.Println("\nCancelled.")
		os.Exit(0)
	case errors.Is(err, errCancelled), errors.Is(err, promptui.ErrAbort):
		fmt.Println("Cancelled.")
		return nil
	}
	return err
}
