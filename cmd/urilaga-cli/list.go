package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/Rifqialba/urilaga/clientcli"
)

var (
	listPage   int
	listLimit  int
	listFilter string
	listSearch string
	listAll    bool
)

var listCmd = &cobra.Command{
	Use:   "list [search]",
	Short: "List images",
	Long: `List images newest first.

--filter is a LIKE pattern on the author, used as given ("Al%").
The search term matches titles case-insensitively.

Examples:
  urilaga-cli list
  urilaga-cli list sunset
  urilaga-cli list --filter 'Al%' --limit 50
  urilaga-cli list --all --json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runList,
}

func init() {
	listCmd.Flags().IntVar(&listPage, "page", 1, "page number")
	listCmd.Flags().IntVarP(&listLimit, "limit", "l", clientcli.DefaultListLimit, "images per page (max: 1000)")
	listCmd.Flags().StringVar(&listFilter, "filter", "", "LIKE pattern matched against the author")
	listCmd.Flags().StringVar(&listSearch, "search", "", "substring matched against the title")
	listCmd.Flags().BoolVar(&listAll, "all", false, "fetch every page")
}

func runList(_ *cobra.Command, args []string) error {
	search := listSearch
	if len(args) > 0 {
		search = args[0]
	}

	client, _, err := getClient()
	if err != nil {
		return err
	}

	result, err := client.List(context.Background(), clientcli.ListOptions{
		Page:   listPage,
		Limit:  listLimit,
		Filter: listFilter,
		Search: search,
		All:    listAll,
	})
	if err != nil {
		return handleError(os.Stderr, err)
	}

	return getFormatter().FormatList(os.Stdout, result)
}
