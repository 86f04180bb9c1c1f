package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tanq16/wikigrab/internal/dumps"
	"github.com/tanq16/wikigrab/internal/output"
	"github.com/tanq16/wikigrab/internal/utils"
)

func newListCmd() *cobra.Command {
	var dataTypeName string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List available periods on the dump server",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			dataType, err := dumps.ParseDataType(dataTypeName)
			if err != nil {
				output.PrintError(err.Error())
				os.Exit(1)
			}
			ctx, stop := runContext()
			defer stop()

			lister := dumps.NewLister(utils.NewListingClient(httpConfig()))
			periods, err := lister.DiscoverPeriods(ctx, dataType)
			if err != nil {
				output.PrintError(fmt.Sprintf("Error fetching available periods: %v", err))
				os.Exit(1)
			}
			if len(periods) == 0 {
				output.PrintWarning("No periods found")
				return
			}
			output.PrintHeader(fmt.Sprintf("Available periods for %s (%d total):", dataType.Name, len(periods)))
			for i, period := range periods {
				output.PrintDetail(fmt.Sprintf("%3d. %s", i+1, period))
			}
		},
	}

	cmd.Flags().StringVarP(&dataTypeName, "type", "T", "pageviews", "Data type: pageviews (hourly) or ez (compressed daily)")
	return cmd
}
