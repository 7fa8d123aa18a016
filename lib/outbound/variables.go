package outbound

// Variable describes one recognized var for forms in the host platform.
type Variable struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Type        string `json:"type"`
	Required    bool   `json:"required"`
}

var responseSettings = []Variable{
	{Name: "outcome_search_term", Description: `The text to search for in the response. When found outcome will be "success". Regular expressions are allowed. Use Outcome on Match to search for "failure" instead.`, Type: "string"},
	{Name: "outcome_search_path", Description: "Narrow the search scope using dot-notation path (for JSON responses), XPath (for XML responses), or CSS selector (for HTML responses)", Type: "string"},
	{Name: "outcome_on_match", Description: `The outcome when the search term is found - "success", "failure" or "error" (default: success)`, Type: "string"},
	{Name: "reason_path", Description: "The dot-notation path (for JSON responses), XPath location (for XML responses), or regular expression with a single capture group, used to find the failure reason", Type: "string"},
	{Name: "price_path", Description: "The dot-notation path (for JSON responses), XPath location (for XML responses), or regular expression with a single capture group, used to find the lead price", Type: "string"},
	{Name: "fallback_price", Description: "The price to use if price_path finds no price in the response", Type: "number"},
	{Name: "reference_path", Description: "The dot-notation path (for JSON responses), XPath location (for XML responses), or regular expression with a single capture group, used to find the reference ID", Type: "string"},
	{Name: "default_reason", Description: "Failure reason when no reason can be found per the optional Reason Path setting", Type: "string"},
}

var sharedRequestVariables = append(append([]Variable{}, responseSettings...),
	Variable{Name: "header.*", Description: "HTTP header to send in the request", Type: "wildcard"},
	Variable{Name: "send_ascii", Description: "Set to true to ensure lead data is sent as ASCII for legacy recipients (default: false)", Type: "boolean"},
	Variable{Name: "capture.*", Description: "A named regular expression with a single capture group, used to capture values from plain text responses into the named property", Type: "wildcard"},
	Variable{Name: "response_content_type_override", Description: "Override the response's Content-Type header", Type: "string"},
	Variable{Name: "cookie_search_term", Description: "The text to search for to identify an HTTP cookie. Usually the cookie name is sufficient; regular expressions are allowed", Type: "string"},
	Variable{Name: "follow_redirects", Description: "If true, follow redirects even on methods other than GET (default: false)", Type: "boolean"},
	Variable{Name: "basic_username", Description: "HTTP Basic Authentication user name", Type: "string"},
	Variable{Name: "basic_password", Description: "HTTP Basic Authentication password", Type: "string"},
	Variable{Name: "timeout_seconds", Description: "Seconds to wait for a response (default: 10)", Type: "number"},
)

func requestVariables(own ...Variable) []Variable {
	return append(own, sharedRequestVariables...)
}

var httpResponseVariables = []Variable{
	{Name: "outcome", Type: "string", Description: "The outcome of the transaction (default is success)"},
	{Name: "reason", Type: "string", Description: "If the outcome was a failure, this is the reason"},
	{Name: "cookie", Type: "string", Description: "The full cookie header string captured via match with 'cookie_search_term'"},
	{Name: "price", Type: "number", Description: "The price of the lead"},
	{Name: "reference", Type: "string", Description: "The reference ID found with 'reference_path'"},
	{Name: "*", Type: "wildcard"},
}

var soapRequestVariables = append([]Variable{
	{Name: "url", Description: "WSDL URL", Type: "string", Required: true},
	{Name: "function", Description: "Name of the SOAP function to call", Type: "string", Required: true},
	{Name: "version", Description: "SOAP version to use: 1.1 or 1.2 (default: 1.1)", Type: "string"},
	{Name: "basic_username", Description: "HTTP Basic Authentication user name", Type: "string"},
	{Name: "basic_password", Description: "HTTP Basic Authentication password", Type: "string"},
	{Name: "bearer_token", Description: "HTTP Bearer Token", Type: "string"},
	{Name: "wss_username", Description: "WS Security user name", Type: "string"},
	{Name: "wss_password", Description: "WS Security password", Type: "string"},
	{Name: "wss_digest_password", Description: "Digest the WS Password (default: false)", Type: "boolean"},
	{Name: "arg.*", Description: "Named function argument", Type: "wildcard"},
	{Name: "soap_header.*", Description: "Custom SOAP header in the format root_name.header_name or root_name@xmlns", Type: "wildcard"},
	{Name: "send_ascii", Description: "Set to true to ensure lead data is sent as ASCII for legacy recipients (default: false)", Type: "boolean"},
	{Name: "root_namespace_prefix", Description: "namespace prefix for the body element", Type: "string"},
	{Name: "root_xmlns_attribute_name", Description: "xmlns namespace attribute name for the body element", Type: "string"},
	{Name: "root_xmlns_attribute_value", Description: "xmlns namespace attribute value for the body element", Type: "string"},
	{Name: "timeout_seconds", Description: "Seconds to wait for the WSDL and the call together (default: 10)", Type: "number"},
}, responseSettings...)

var soapResponseVariables = []Variable{
	{Name: "outcome", Type: "string", Description: "The outcome of the SOAP transaction (default is success)"},
	{Name: "reason", Type: "string", Description: "If the outcome was a failure, this is the reason"},
	{Name: "price", Type: "number", Description: "The price of the lead"},
	{Name: "*", Type: "wildcard"},
}
