package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/Rifqialba/urilaga/clientcli"
)

var (
	downloadOutput string
	downloadStdout bool
)

var downloadCmd = &cobra.Command{
	Use:   "download <image-url> [local-path]",
	Short: "Download an image by its signed URL",
	Long: `Download an image using the image_url returned by upload or list.

Paths such as /files/1-sunset.png?... are resolved against the endpoint.

Examples:
  urilaga-cli download 'http://localhost:3000/files/1-sunset.png?X-Stowry-Signature=...'
  urilaga-cli download --stdout "$URL" > sunset.png`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runDownload,
}

func init() {
	downloadCmd.Flags().StringVarP(&downloadOutput, "output", "o", "", "output file path")
	downloadCmd.Flags().BoolVar(&downloadStdout, "stdout", false, "write to stdout")
}

func runDownload(_ *cobra.Command, args []string) error {
	localPath := ""
	if len(args) > 1 {
		localPath = args[1]
	}
	if downloadOutput != "" {
		localPath = downloadOutput
	}
	if downloadStdout {
		localPath = "-"
	}

	client, _, err := getClient()
	if err != nil {
		return err
	}

	result, reader, err := client.Download(context.Background(), clientcli.DownloadOptions{
		URL:       args[0],
		LocalPath: localPath,
	})
	if err != nil {
		return handleError(os.Stderr, err)
	}

	if reader != nil {
		defer func() { _ = reader.Close() }()
		if _, err := io.Copy(os.Stdout, reader); err != nil {
			return fmt.Errorf("write stdout: %w", err)
		}
	}

	return getFormatter().FormatDownload(os.Stderr, result)
}
