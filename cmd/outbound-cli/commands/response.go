package commands

import (
	"net/http"
	"os"

	"outbound-custom/lib/outcome"
	"outbound-custom/lib/serviceutil"

	"github.com/spf13/cobra"
)

var (
	responseVars        *string
	responseBody        *string
	responseContentType *string
	responseStatus      *int
	responseCookies     *[]string
	responseJSON        *bool
)

func init() {
	responseVars = responseCmd.Flags().String("vars", "", "A json5 or yaml file holding the vars.")
	responseBody = responseCmd.Flags().String("body", "", "A file holding the response body.")
	responseContentType = responseCmd.Flags().String("content-type", "text/plain", "The Content-Type of the response.")
	responseStatus = responseCmd.Flags().Int("status", http.StatusOK, "The HTTP status of the response.")
	responseCookies = responseCmd.Flags().StringArray("set-cookie", nil, "A Set-Cookie header of the response, may be repeated.")
	responseJSON = responseCmd.Flags().Bool("json", false, "Print the event as JSON.")
	rootCmd.AddCommand(responseCmd)
}

var responseCmd = &cobra.Command{
	Use:   "response --vars <path/to/vars.json5> --body <path/to/body>",
	Short: "Prints the event built from a saved response.",
	Run: func(cmd *cobra.Command, args []string) {
		vars := readVars(*responseVars)

		var body []byte
		if *responseBody != "" {
			var err error
			body, err = os.ReadFile(*responseBody)
			if err != nil {
				serviceutil.Fatal("failed to read body", err)
			}
		}

		header := http.Header{}
		header.Set("Content-Type", *responseContentType)
		for _, cookie := range *responseCookies {
			header.Add("Set-Cookie", cookie)
		}

		event := outcome.Build(outcome.OptionsFromVars(vars), outcome.Response{
			Status: *responseStatus,
			Header: header,
			Body:   body,
		})
		printEvent(event, *responseJSON)
	},
}
