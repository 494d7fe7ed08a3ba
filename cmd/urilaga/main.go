package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/Rifqialba/urilaga/config"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Version: version,
	Use:     "urilaga",
	Short:   "Image gallery backend",
	Long: `Urilaga is a small image gallery backend: it checks logins, stores
uploaded images with signed read URLs and serves a paginated,
searchable catalog.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var files []string
		if configFile, _ := cmd.Flags().GetString("config"); configFile != "" {
			files = append(files, configFile)
		}

		cfg, err := config.Load(files, cmd.Flags())
		if err != nil {
			return err
		}

		setupLogging(cfg)
		cmd.SetContext(config.WithContext(cmd.Context(), cfg))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config.yaml)")
	rootCmd.PersistentFlags().String("db-type", "", "database type: sqlite, postgres (default: sqlite, env: URILAGA_DATABASE_TYPE)")
	rootCmd.PersistentFlags().String("db-dsn", "", "database connection string (default: urilaga.db, env: URILAGA_DATABASE_DSN)")
	rootCmd.PersistentFlags().String("storage-path", "", "upload directory of the filesystem backend (default: ./uploads, env: URILAGA_STORAGE_PATH)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error (env: URILAGA_LOG_LEVEL)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
