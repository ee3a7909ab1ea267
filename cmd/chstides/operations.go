package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/timgluz/chstides/iwls"
)

func newOperationsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "operations",
		Short: "List the IWLS operations known to invoke",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			endpoints := iwls.Endpoints()
			if a.output == outputJSON {
				return printJSON(cmd.OutOrStdout(), endpoints)
			}

			rows := make([][]string, 0, len(endpoints))
			for _, endpoint := range endpoints {
				rows = append(rows, []string{
					endpoint.Name,
					endpoint.Path,
					strings.Join(endpoint.QueryParams, ", "),
				})
			}
			return printTable(cmd.OutOrStdout(), "Operations", []string{"name", "path", "query"}, rows)
		},
	}
}
