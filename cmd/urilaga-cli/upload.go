package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/Rifqialba/urilaga/clientcli"
)

var (
	uploadJudul       string
	uploadRating      string
	uploadTanggal     string
	uploadBy          string
	uploadContentType string
)

var uploadCmd = &cobra.Command{
	Use:   "upload [image]",
	Short: "Upload an image with its metadata",
	Long: `Upload an image and create its catalog row.

All four metadata fields are required. Omit the image to create a row
without a file. --by defaults to the configured username.

Examples:
  urilaga-cli upload ./sunset.png --judul Sunset --rating 5 --tanggal 2024-01-01 --by Alba
  urilaga-cli upload --judul "Draft" --rating 1 --tanggal 2024-03-03`,
	Args: cobra.MaximumNArgs(1),
	RunE: runUpload,
}

func init() {
	uploadCmd.Flags().StringVar(&uploadJudul, "judul", "", "image title")
	uploadCmd.Flags().StringVar(&uploadRating, "rating", "", "rating")
	uploadCmd.Flags().StringVar(&uploadTanggal, "tanggal", "", "date")
	uploadCmd.Flags().StringVar(&uploadBy, "by", "", "author (default: configured username)")
	uploadCmd.Flags().StringVarP(&uploadContentType, "content-type", "t", "", "override content-type")
}

func runUpload(_ *cobra.Command, args []string) error {
	client, cfg, err := getClient()
	if err != nil {
		return err
	}

	opts := clientcli.UploadOptions{
		ContentType: uploadContentType,
		Judul:       uploadJudul,
		Rating:      uploadRating,
		Tanggal:     uploadTanggal,
		By:          uploadBy,
	}
	if opts.By == "" {
		opts.By = cfg.Username
	}
	if len(args) > 0 {
		opts.LocalPath = args[0]
	}

	result, err := client.Upload(context.Background(), opts)
	if err != nil {
		return handleError(os.Stderr, err)
	}

	return getFormatter().FormatUpload(os.Stdout, result)
}
