package commands

import (
	"outbound-custom/lib/outbound"
	"outbound-custom/lib/serviceutil"
	"outbound-custom/lib/validate"

	"github.com/spf13/cobra"
)

var (
	deliverFormat     *string
	deliverVars       *string
	deliverAllowLocal *bool
	deliverDump       *string
	deliverJSON       *bool
)

func init() {
	deliverFormat = deliverCmd.Flags().StringP("format", "f", "json", "The request format: form, json, query or xml.")
	deliverVars = deliverCmd.Flags().String("vars", "", "A json5 or yaml file holding the vars.")
	deliverAllowLocal = deliverCmd.Flags().Bool("allow-local", false, "Allow URLs pointing at local or private addresses.")
	deliverDump = deliverCmd.Flags().String("dump", "", "A directory to write every HTTP message to.")
	deliverJSON = deliverCmd.Flags().Bool("json", false, "Print the event as JSON.")
	rootCmd.AddCommand(deliverCmd)
}

var deliverCmd = &cobra.Command{
	Use:   "deliver --format <format> --vars <path/to/vars.json5> [--allow-local] [--dump <dir>]",
	Short: "Validates the vars, sends the request and prints the resulting event.",
	Run: func(cmd *cobra.Command, args []string) {
		vars := readVars(*deliverVars)

		client := outbound.NewClient(
			validate.Options{AllowLocal: *deliverAllowLocal},
			dumpOutput(*deliverDump),
		)
		defer client.Close()

		event, err := client.Deliver(cmd.Context(), *deliverFormat, vars)
		if err != nil {
			serviceutil.Fatal("delivery failed", err)
		}
		printEvent(event, *deliverJSON)
	},
}
