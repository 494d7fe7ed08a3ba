package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/Rifqialba/urilaga/clientcli"
)

var (
	version = "dev"

	cfgFile    string
	profile    string
	endpoint   string
	username   string
	jsonOutput bool
	quiet      bool
)

var rootCmd = &cobra.Command{
	Use:     "urilaga-cli",
	Version: version,
	Short:   "Client for a urilaga gallery server",
	Long: `urilaga-cli talks to a urilaga gallery server.

Settings are resolved in this order, later entries winning:
  1. the selected profile in ~/.urilaga/client.yaml
  2. URILAGA_ENDPOINT and URILAGA_USERNAME
  3. --endpoint and --username`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "client config file (default: ~/.urilaga/client.yaml, env: URILAGA_CLIENT_CONFIG)")
	rootCmd.PersistentFlags().StringVarP(&profile, "profile", "p", "", "profile name (env: URILAGA_PROFILE)")
	rootCmd.PersistentFlags().StringVarP(&endpoint, "endpoint", "e", "", "server URL (default: http://localhost:3000, env: URILAGA_ENDPOINT)")
	rootCmd.PersistentFlags().StringVarP(&username, "username", "u", "", "username for login (env: URILAGA_USERNAME)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress non-essential output")

	rootCmd.AddCommand(configureCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(downloadCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// getConfigPath returns the flag value, then URILAGA_CLIENT_CONFIG, then the default.
func getConfigPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	if p := clientcli.ConfigPathFromEnv(); p != "" {
		return p
	}
	return clientcli.DefaultConfigPath()
}

// buildConfig merges the selected profile, env vars and flags.
func buildConfig() (*clientcli.Config, error) {
	var configs []*clientcli.Config

	profileName := profile
	if profileName == "" {
		profileName = clientcli.ProfileFromEnv()
	}

	configPath := getConfigPath()
	if configPath != "" {
		file, err := clientcli.LoadConfigFile(configPath)
		switch {
		case err == nil:
			p, profileErr := file.GetProfile(profileName)
			if profileErr != nil && (profileName != "" || !errors.Is(profileErr, clientcli.ErrNoProfiles)) {
				return nil, profileErr
			}
			configs = append(configs, clientcli.ConfigFromProfile(p))
		case profileName != "":
			return nil, fmt.Errorf("profile %q requested: %w", profileName, err)
		case cfgFile != "":
			return nil, err
		}
	}

	configs = append(configs, clientcli.ConfigFromEnv(), &clientcli.Config{
		Endpoint: endpoint,
		Username: username,
	})

	return clientcli.MergeConfig(configs...), nil
}

func getFormatter() clientcli.Formatter {
	return clientcli.NewFormatter(jsonOutput, quiet)
}

func getClient() (*clientcli.Client, *clientcli.Config, error) {
	cfg, err := buildConfig()
	if err != nil {
		return nil, nil, err
	}

	client, err := clientcli.New(cfg)
	if err != nil {
		return nil, nil, err
	}
	return client, cfg, nil
}

// handleError prints err with the active formatter and returns it so the
// command exits non-zero.
func handleError(w io.Writer, err error) error {
	_ = getFormatter().FormatError(w, err)
	return err
}
