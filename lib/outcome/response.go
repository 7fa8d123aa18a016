package outcome

import (
	"errors"
	"log/slog"
	"net/http"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"outbound-custom/lib/document"
	"outbound-custom/lib/textutil"
)

// Response is a fully buffered HTTP response.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// IsServerError reports whether status falls in a 500-599 block.
// Status 0 means unknown and is not an error.
func IsServerError(status int) bool {
	if status <= 0 {
		return false
	}
	return status%500 < 100
}

// Build turns an HTTP response into an event. Server errors short circuit
// to {outcome: error, reason: "Server error"}; every other response is
// parsed by content type and searched according to opts.
func Build(opts Options, res Response) Event {
	if IsServerError(res.Status) {
		return serverError()
	}

	contentType := opts.ContentTypeOverride
	if contentType == "" {
		contentType = res.Header.Get("Content-Type")
	}
	doc := document.Parse(res.Body, contentType)
	event := Extract(opts, doc)

	if opts.CookieSearchTerm != "" {
		cookie := FindCookie(opts.CookieSearchTerm, res.Header.Values("Set-Cookie"))
		if cookie != "" {
			event["cookie"] = cookie
		}
	}
	return event
}

// Extract builds an event from an already parsed document.
func Extract(opts Options, doc document.Document) Event {
	outcome := determineOutcome(opts, doc)
	price := extractPrice(opts, doc)
	reason := extractReason(opts, doc)
	reference := extractReference(opts, doc)

	event := Event{}
	if obj, ok := doc.Object(); ok {
		event = Event(obj)
	} else if len(opts.Capture) > 0 {
		event = capture(opts.Capture, doc.Text())
	}

	event["outcome"] = string(outcome)
	event["price"] = price
	if reason != "" {
		event["reason"] = reason
	}
	if reference != "" {
		event["reference"] = reference
	}
	return event
}

// resolve runs a selector and folds every failure into an empty result.
func resolve(doc document.Document, selector, purpose string) []document.Match {
	if selector == "" {
		return nil
	}
	matches, err := doc.Resolve(selector)
	if err != nil {
		if !errors.Is(err, document.ErrNotFound) {
			slog.Debug(
				"selector failed",
				"purpose", purpose,
				"selector", selector,
				"document", doc.Kind().String(),
				"err", err,
			)
		}
		return nil
	}
	return matches
}

func determineOutcome(opts Options, doc document.Document) Outcome {
	if !opts.searchConfigured() {
		return Success
	}
	onMatch := opts.onMatch()
	term := textutil.SearchRegex(opts.SearchTerm)

	var scope []string
	if opts.SearchPath != "" {
		for _, m := range resolve(doc, opts.SearchPath, "outcome_search_path") {
			scope = append(scope, m.Markup())
		}
	} else {
		scope = []string{doc.Raw()}
	}

	for _, entry := range scope {
		entry = textutil.NormalizeSearch(entry)
		if entry == "" {
			continue
		}
		if textutil.Matches(term, entry) {
			return onMatch
		}
	}
	return Inverse(onMatch)
}

func extractPrice(opts Options, doc document.Document) any {
	matches := resolve(doc, opts.PricePath, "price_path")
	if len(matches) > 0 {
		text := strings.TrimSpace(matches[0].Text())
		if text != "" {
			price, err := strconv.ParseFloat(text, 64)
			if err != nil {
				return text
			}
			return price
		}
	}
	if opts.FallbackPrice != nil {
		return *opts.FallbackPrice
	}
	return float64(0)
}

func extractReason(opts Options, doc document.Document) string {
	var reasons []string
	for _, m := range resolve(doc, opts.ReasonPath, "reason_path") {
		if text := strings.TrimSpace(m.Text()); text != "" {
			reasons = append(reasons, text)
		}
	}
	sort.Strings(reasons)

	reason := strings.Join(reasons, ", ")
	if reason == "" {
		reason = strings.TrimSpace(opts.DefaultReason)
	}
	return reason
}

func extractReference(opts Options, doc document.Document) string {
	matches := resolve(doc, opts.ReferencePath, "reference_path")
	if len(matches) == 0 {
		return ""
	}
	return strings.TrimSpace(matches[0].Text())
}

func capture(patterns map[string]string, text string) Event {
	event := Event{}
	for name, expr := range patterns {
		re, err := textutil.ParseRegex(strings.TrimSpace(expr))
		if err != nil {
			slog.Debug("skipping capture", "property", name, "err", err)
			continue
		}
		if value, ok := firstGroup(re, text); ok {
			event[name] = value
		}
	}
	return event
}

func firstGroup(re *regexp.Regexp, text string) (string, bool) {
	loc := re.FindStringSubmatchIndex(text)
	if len(loc) < 4 || loc[2] < 0 {
		return "", false
	}
	return text[loc[2]:loc[3]], true
}

// FindCookie returns the first Set-Cookie value, in sorted order, whose
// lowercased text matches term.
func FindCookie(term string, cookies []string) string {
	re := textutil.SearchRegex(term)
	sorted := append([]string(nil), cookies...)
	sort.Strings(sorted)
	for _, cookie := range sorted {
		if textutil.Matches(re, strings.ToLower(cookie)) {
			return cookie
		}
	}
	return ""
}
