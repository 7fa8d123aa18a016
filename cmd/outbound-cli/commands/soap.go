package commands

import (
	"outbound-custom/lib/serviceutil"
	"outbound-custom/lib/soap"
	"outbound-custom/lib/validate"

	"github.com/spf13/cobra"
)

var (
	soapVars       *string
	soapAllowLocal *bool
	soapDump       *string
	soapJSON       *bool
)

func init() {
	soapVars = soapCmd.Flags().String("vars", "", "A json5 or yaml file holding the vars.")
	soapAllowLocal = soapCmd.Flags().Bool("allow-local", false, "Allow a WSDL URL pointing at a local or private address.")
	soapDump = soapCmd.Flags().String("dump", "", "A directory to write every HTTP message to.")
	soapJSON = soapCmd.Flags().Bool("json", false, "Print the event as JSON.")
	rootCmd.AddCommand(soapCmd)
}

var soapCmd = &cobra.Command{
	Use:   "soap --vars <path/to/vars.json5> [--dump <dir>]",
	Short: "Calls a SOAP function described by a WSDL and prints the resulting event.",
	Run: func(cmd *cobra.Command, args []string) {
		vars := readVars(*soapVars)
		err := validate.SOAP(vars, validate.Options{AllowLocal: *soapAllowLocal})
		if err != nil {
			serviceutil.Fatal("invalid vars", err)
		}

		client := soap.NewClient(dumpOutput(*soapDump))
		defer client.Close()

		select {
		case result := <-client.Invoke(cmd.Context(), vars):
			if result.Err != nil {
				serviceutil.Fatal("soap call failed", result.Err)
			}
			printEvent(result.Event, *soapJSON)
		case <-cmd.Context().Done():
			serviceutil.Fatal("interrupted", cmd.Context().Err())
		}
	},
}
