package request

import (
	"encoding/base64"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"outbound-custom/lib/mapped"

	"dario.cat/mergo"
)

// CallerHeaders turns the header.* group into plain header values. Lists
// are joined with ", ", nested objects are dropped along with blank values.
func CallerHeaders(header any) map[string]string {
	out := map[string]string{}
	m, ok := mapped.Map(header)
	if !ok {
		return out
	}
	normalized, ok := mapped.Normalize(m, mapped.NormalizeOptions{}).(map[string]any)
	if !ok {
		return out
	}

	for name, v := range normalized {
		var value string
		switch typed := v.(type) {
		case []any:
			parts := make([]string, len(typed))
			for i, part := range typed {
				parts[i] = mapped.String(part)
			}
			value = strings.Join(parts, ", ")
		case map[string]any:
		default:
			value = mapped.String(typed)
		}
		name = strings.TrimSpace(name)
		if name == "" || strings.TrimSpace(value) == "" {
			continue
		}
		out[http.CanonicalHeaderKey(name)] = value
	}
	return out
}

// BasicAuth encodes an Authorization header value.
func BasicAuth(username, password string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(username+":"+password))
}

// basicAuthFromVars reads basic_username and basic_password. Both must be
// present.
func basicAuthFromVars(vars map[string]any) (string, bool) {
	username := mapped.String(vars["basic_username"])
	password := mapped.String(vars["basic_password"])
	if username == "" || password == "" {
		return "", false
	}
	return BasicAuth(username, password), true
}

// Headers merges the computed defaults with the caller's header.* values.
// The caller wins on every conflict.
func Headers(defaults map[string]string, vars map[string]any) map[string]string {
	merged := make(map[string]string, len(defaults))
	for k, v := range defaults {
		merged[http.CanonicalHeaderKey(k)] = v
	}
	if _, ok := merged["Authorization"]; !ok {
		if auth, ok := basicAuthFromVars(vars); ok {
			merged["Authorization"] = auth
		}
	}

	err := mergo.Merge(&merged, CallerHeaders(vars["header"]), mergo.WithOverride)
	if err != nil {
		slog.Warn("failed to merge caller headers", "err", err)
	}
	return merged
}

func contentLength(body string) string {
	return strconv.Itoa(len(body))
}
