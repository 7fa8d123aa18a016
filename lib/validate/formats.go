package validate

import (
	"outbound-custom/lib/mapped"
)

const parameterContentType = "x-www-form-urlencoded"

// Form validates the vars of a form POST.
func Form(vars map[string]any, opts Options) error {
	vars = mapped.Expand(vars)
	return first(
		func() error { return URL(vars, opts) },
		func() error { return Outcome(vars) },
		func() error { return Headers(vars, parameterContentType) },
	)
}

// JSON validates the vars of a JSON request.
func JSON(vars map[string]any, opts Options) error {
	vars = mapped.Expand(vars)
	base := "json"
	if mapped.Trimmed(vars["json_parameter"]) != "" {
		base = parameterContentType
	}
	return first(
		func() error { return URL(vars, opts) },
		func() error { return Method(vars, "POST", "PUT", "DELETE") },
		func() error { return Outcome(vars) },
		func() error { return Headers(vars, base) },
	)
}

// Query validates the vars of a GET query. A GET carries no body, so any
// Content-Type header is rejected.
func Query(vars map[string]any, opts Options) error {
	vars = mapped.Expand(vars)
	return first(
		func() error { return URL(vars, opts) },
		func() error { return Outcome(vars) },
		func() error { return Headers(vars, "") },
	)
}

// XML validates the vars of an XML request.
func XML(vars map[string]any, opts Options) error {
	vars = mapped.Expand(vars)
	base := "xml"
	if mapped.Trimmed(vars["xml_parameter"]) != "" {
		base = parameterContentType
	}
	return first(
		func() error { return URL(vars, opts) },
		func() error { return Method(vars, "POST", "PUT") },
		func() error { return Outcome(vars) },
		func() error { return Headers(vars, base) },
	)
}

// SOAP validates the vars of a SOAP call, url being the WSDL location.
func SOAP(vars map[string]any, opts Options) error {
	vars = mapped.Expand(vars)
	return first(
		func() error { return URL(vars, opts) },
		func() error { return Outcome(vars) },
		func() error { return Function(vars) },
		func() error { return SOAPVersion(vars) },
	)
}
