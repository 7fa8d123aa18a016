package request

import (
	"strings"

	"outbound-custom/lib/mapped"
)

// Query builds a GET whose parameters come from parameter.*. Redirects
// are followed unless follow_redirects says otherwise.
func Query(vars map[string]any) Request {
	vars = mapped.Expand(vars)

	params := flattenedParams(formGroup(vars["parameter"]), sendASCII(vars))
	query := EncodeForm(params)

	url := mapped.Trimmed(vars["url"])
	if query != "" {
		separator := "?"
		if strings.Contains(url, "?") {
			separator = "&"
		}
		url += separator + query
	}

	headers := Headers(nil, vars)
	headers["Accept"] = Accept

	return Request{
		URL:                url,
		Method:             "GET",
		Headers:            headers,
		FollowAllRedirects: mapped.Bool(vars["follow_redirects"], true),
	}
}
