package commands

import (
	"fmt"

	"outbound-custom/lib/outbound"
	"outbound-custom/lib/serviceutil"

	"github.com/spf13/cobra"
)

var (
	requestFormat *string
	requestVars   *string
	requestJSON   *bool
)

func init() {
	requestFormat = requestCmd.Flags().StringP("format", "f", "json", "The request format: form, json, query or xml.")
	requestVars = requestCmd.Flags().String("vars", "", "A json5 or yaml file holding the vars.")
	requestJSON = requestCmd.Flags().Bool("json", false, "Print the request as JSON.")
	rootCmd.AddCommand(requestCmd)
}

var requestCmd = &cobra.Command{
	Use:   "request --format <format> --vars <path/to/vars.json5>",
	Short: "Prints the HTTP request an integration would send, without sending it.",
	Run: func(cmd *cobra.Command, args []string) {
		integration, ok := outbound.Integrations[*requestFormat]
		if !ok {
			serviceutil.Fatal("unsupported format", fmt.Errorf("%q has no request builder", *requestFormat))
		}
		vars := readVars(*requestVars)
		printRequest(integration.Request(vars), *requestJSON)
	},
}
