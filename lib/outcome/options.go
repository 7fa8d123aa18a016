package outcome

import (
	"strings"

	"outbound-custom/lib/mapped"
)

// Options configures how a response is turned into an event.
type Options struct {
	SearchTerm string
	SearchPath string
	// OnMatch is the outcome when the search term is found, empty means
	// unset (success).
	OnMatch       string
	ReasonPath    string
	PricePath     string
	ReferencePath string
	DefaultReason string
	// FallbackPrice is used when PricePath finds nothing.
	FallbackPrice *float64

	CookieSearchTerm    string
	ContentTypeOverride string
	// Capture maps event property names to regexes whose first group is
	// copied from unstructured responses.
	Capture map[string]string
}

// OptionsFromVars reads the response settings out of a flat or nested
// vars mapping.
func OptionsFromVars(vars map[string]any) Options {
	vars = mapped.Expand(vars)

	opts := Options{
		SearchTerm:          mapped.String(vars["outcome_search_term"]),
		SearchPath:          mapped.Trimmed(vars["outcome_search_path"]),
		OnMatch:             mapped.Trimmed(vars["outcome_on_match"]),
		ReasonPath:          mapped.Trimmed(vars["reason_path"]),
		PricePath:           mapped.Trimmed(vars["price_path"]),
		ReferencePath:       mapped.Trimmed(vars["reference_path"]),
		DefaultReason:       mapped.Trimmed(vars["default_reason"]),
		CookieSearchTerm:    mapped.String(vars["cookie_search_term"]),
		ContentTypeOverride: mapped.Trimmed(vars["response_content_type_override"]),
	}

	if price, ok := mapped.Float(vars["fallback_price"]); ok {
		opts.FallbackPrice = &price
	}

	if capture, ok := mapped.Map(vars["capture"]); ok {
		opts.Capture = make(map[string]string, len(capture))
		for name, expr := range mapped.Flatten(capture) {
			if s := mapped.String(expr); strings.TrimSpace(s) != "" {
				opts.Capture[name] = s
			}
		}
	}

	return opts
}

func (o Options) searchConfigured() bool {
	return o.SearchTerm != "" || o.OnMatch != ""
}

func (o Options) onMatch() Outcome {
	onMatch := Outcome(strings.ToLower(strings.TrimSpace(o.OnMatch)))
	if onMatch == "" {
		return Success
	}
	return onMatch
}
