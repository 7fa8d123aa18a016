package commands

import (
	"fmt"

	"outbound-custom/lib/outbound"
	"outbound-custom/lib/serviceutil"

	"github.com/spf13/cobra"
)

var varsFormat *string

func init() {
	varsFormat = varsCmd.Flags().StringP("format", "f", "json", fmt.Sprintf("One of: %s.", formatUsage()))
	rootCmd.AddCommand(varsCmd)
}

var varsCmd = &cobra.Command{
	Use:   "vars --format <format>",
	Short: "Lists the vars an integration recognizes and the properties of its events.",
	Run: func(cmd *cobra.Command, args []string) {
		integration, ok := outbound.Lookup(*varsFormat)
		if !ok {
			serviceutil.Fatal("unsupported format", fmt.Errorf("%q is not one of %s", *varsFormat, formatUsage()))
		}
		printVariables(integration.Name+" request", integration.RequestVariables)
		printVariables(integration.Name+" response", integration.ResponseVariables)
	},
}
