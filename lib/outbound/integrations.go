package outbound

import (
	"sort"

	"outbound-custom/lib/request"
	"outbound-custom/lib/validate"
)

// Integration bundles everything the host needs for one wire format.
// SOAP has no Request since its envelope depends on the fetched WSDL.
type Integration struct {
	Name              string
	Request           request.Builder
	Validate          func(vars map[string]any, opts validate.Options) error
	RequestVariables  []Variable
	ResponseVariables []Variable
}

var Integrations = map[string]Integration{
	"form": {
		Name:     "Form POST",
		Request:  request.Form,
		Validate: validate.Form,
		RequestVariables: requestVariables(
			Variable{Name: "url", Description: "Server URL", Type: "string", Required: true},
			Variable{Name: "encode_form_field_names", Description: "Whether form field names are URL-encoded (default: true)", Type: "boolean"},
			Variable{Name: "form_field.*", Description: "Form field name", Type: "wildcard"},
		),
		ResponseVariables: httpResponseVariables,
	},
	"json": {
		Name:     "JSON",
		Request:  request.JSON,
		Validate: validate.JSON,
		RequestVariables: requestVariables(
			Variable{Name: "url", Description: "Server URL", Type: "string", Required: true},
			Variable{Name: "method", Description: "HTTP method (POST, PUT, or DELETE)", Type: "string", Required: true},
			Variable{Name: "json_property.*", Description: "JSON property in dot notation", Type: "wildcard"},
			Variable{Name: "json_parameter", Description: "To stuff the JSON into a parameter and send as Form URL encoded, specify the parameter name", Type: "string"},
			Variable{Name: "extra_parameter.*", Description: "Extra parameters to include, only used when JSON Parameter is set", Type: "wildcard"},
			Variable{Name: "nested_extra_parameter.*", Description: "Extra parameters sent as JSON encoded values, only used when JSON Parameter is set", Type: "wildcard"},
			Variable{Name: "credential.username", Description: "Credential user name, sent with HTTP Basic Authentication", Type: "string"},
			Variable{Name: "credential.password", Description: "Credential password, sent with HTTP Basic Authentication", Type: "string"},
		),
		ResponseVariables: httpResponseVariables,
	},
	"query": {
		Name:     "GET Query",
		Request:  request.Query,
		Validate: validate.Query,
		RequestVariables: requestVariables(
			Variable{Name: "url", Description: "Server URL", Type: "string", Required: true},
			Variable{Name: "parameter.*", Description: "Parameter name", Type: "wildcard"},
		),
		ResponseVariables: httpResponseVariables,
	},
	"xml": {
		Name:     "XML",
		Request:  request.XML,
		Validate: validate.XML,
		RequestVariables: requestVariables(
			Variable{Name: "url", Description: "Server URL", Type: "string", Required: true},
			Variable{Name: "method", Description: "HTTP method (POST, PUT)", Type: "string"},
			Variable{Name: "xml_path.*", Description: "XML path in dot notation", Type: "wildcard"},
			Variable{Name: "xml_parameter", Description: "To stuff the XML into a parameter and send as Form URL encoded, specify the parameter name", Type: "string"},
			Variable{Name: "extra_parameter.*", Description: "Extra parameters to include, only used when XML Parameter is set", Type: "wildcard"},
		),
		ResponseVariables: httpResponseVariables,
	},
}

var SOAP = Integration{
	Name:              "SOAP",
	Validate:          validate.SOAP,
	RequestVariables:  soapRequestVariables,
	ResponseVariables: soapResponseVariables,
}

// Lookup returns the integration for a format, including "soap".
func Lookup(format string) (Integration, bool) {
	if format == "soap" {
		return SOAP, true
	}
	integration, ok := Integrations[format]
	return integration, ok
}

// Formats lists every format Lookup accepts, sorted.
func Formats() []string {
	formats := []string{"soap"}
	for name := range Integrations {
		formats = append(formats, name)
	}
	sort.Strings(formats)
	return formats
}
