package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"outbound-custom/lib/configutil"
	"outbound-custom/lib/mapped"
	"outbound-custom/lib/outbound"
	"outbound-custom/lib/request"
	"outbound-custom/lib/restyutil"
	"outbound-custom/lib/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
)

func readVars(path string) map[string]any {
	if path == "" {
		serviceutil.Fatal("missing vars file", fmt.Errorf("--vars is required"))
	}
	vars, err := configutil.ReadVars(path)
	if err != nil {
		serviceutil.Fatal("failed to read vars", err)
	}
	return vars
}

func dumpOutput(dir string) restyutil.InstrumentOutput {
	if dir == "" {
		return nil
	}
	output, err := restyutil.NewFilesystemOutput(dir)
	if err != nil {
		serviceutil.Fatal("failed to create dump directory", err)
	}
	return output
}

func printJSON(v any) {
	encoded, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		serviceutil.Fatal("failed to encode output", err)
	}
	fmt.Println(string(encoded))
}

func newTable() table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleRounded)
	return t
}

func printEvent(event map[string]any, asJSON bool) {
	if asJSON {
		printJSON(event)
		return
	}

	flat := mapped.Flatten(event)
	keys := make([]string, 0, len(flat))
	for k := range flat {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	t := newTable()
	t.AppendHeader(table.Row{"Property", "Value"})
	for _, k := range keys {
		t.AppendRow(table.Row{k, mapped.String(flat[k])})
	}
	t.Render()
}

func printRequest(req request.Request, asJSON bool) {
	if asJSON {
		printJSON(req)
		return
	}

	t := newTable()
	t.AppendRow(table.Row{"Method", req.Method})
	t.AppendRow(table.Row{"URL", req.URL})
	t.AppendRow(table.Row{"Follow all redirects", req.FollowAllRedirects})
	t.AppendSeparator()

	names := make([]string, 0, len(req.Headers))
	for name := range req.Headers {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		t.AppendRow(table.Row{name, req.Headers[name]})
	}
	t.Render()

	if req.Body != "" {
		fmt.Println(req.Body)
	}
}

func printVariables(title string, variables []outbound.Variable) {
	t := newTable()
	t.SetTitle(title)
	t.AppendHeader(table.Row{"Name", "Type", "Required", "Description"})
	for _, v := range variables {
		required := ""
		if v.Required {
			required = "yes"
		}
		t.AppendRow(table.Row{v.Name, v.Type, required, v.Description})
	}
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 4, WidthMax: 80},
	})
	t.Render()
}

func formatUsage() string {
	return strings.Join(outbound.Formats(), ", ")
}
