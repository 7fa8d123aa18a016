package request

import (
	"outbound-custom/lib/mapped"
)

// XML builds a request whose body is rendered from xml_path.*. The caller's
// Content-Type header replaces the text/xml default. With xml_parameter set
// the document is stuffed into that form field next to extra_parameter.*.
func XML(vars map[string]any) Request {
	vars = mapped.Expand(vars)

	body := RenderXML(XMLTree(vars["xml_path"], sendASCII(vars)))
	defaults := map[string]string{
		"Content-Type": ContentTypeXML,
		"Accept":       Accept,
	}

	if parameter := mapped.Trimmed(vars["xml_parameter"]); parameter != "" {
		body = Parameterize(parameter, body, vars["extra_parameter"], nil)
		defaults["Content-Type"] = ContentTypeParameters
	}
	defaults["Content-Length"] = contentLength(body)

	headers := Headers(defaults, vars)
	if parameter := mapped.Trimmed(vars["xml_parameter"]); parameter != "" {
		headers["Content-Type"] = ContentTypeParameters
	}

	return Request{
		URL:                mapped.Trimmed(vars["url"]),
		Method:             methodOr(vars, "POST"),
		Headers:            headers,
		Body:               body,
		FollowAllRedirects: mapped.Bool(vars["follow_redirects"], false),
	}
}
