package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var server string
	client := func() *apiClient { return newAPIClient(server, loadToken()) }

	root := &cobra.Command{
		Use:           "stockctl",
		Short:         "Command line client for the stockroom inventory API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&server, "server", apiURL(), "API base URL (env STOCKROOM_API)")

	root.AddCommand(
		newAuthCmd(client),
		newProductsCmd(client),
		newInventoriesCmd(client),
		newItemsCmd(client),
	)
	return root
}
