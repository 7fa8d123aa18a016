package validate

import (
	"errors"
	"fmt"
	"net/netip"
	"net/url"
	"regexp"
	"strings"

	"outbound-custom/lib/mapped"
	"outbound-custom/lib/outcome"

	"github.com/go-playground/validator/v10"
)

// Options tunes checks that differ between production and local testing.
type Options struct {
	// AllowLocal accepts loopback, private and single label hosts.
	AllowLocal bool
}

var (
	ErrURLRequired      = errors.New("URL is required")
	ErrInvalidURL       = errors.New("URL must be valid")
	ErrPrivateURL       = errors.New("URL must be a public address")
	ErrInvalidOutcome   = errors.New("Outcome on match must be 'success', 'failure', or 'error'")
	ErrContentLength    = errors.New("Content-Length header is not allowed")
	ErrAccept           = errors.New("Accept header is not allowed")
	ErrContentType      = errors.New("Invalid Content-Type header value")
	ErrFunctionRequired = errors.New("Function is required")
	ErrInvalidFunction  = errors.New("Function must have valid name")
	ErrSOAPVersion      = errors.New("Must be valid SOAP version: 1.1 or 1.2")
)

var checker = newChecker()

func newChecker() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// registration only fails on an empty tag or nil func
	_ = v.RegisterValidation("web_url", validateWebURL)
	_ = v.RegisterValidation("public_host", validatePublicHost)
	return v
}

func validateWebURL(fl validator.FieldLevel) bool {
	u, err := url.Parse(fl.Field().String())
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return u.Hostname() != ""
}

var localSuffixes = []string{".localhost", ".local", ".internal"}

func validatePublicHost(fl validator.FieldLevel) bool {
	host := strings.ToLower(strings.TrimSuffix(fl.Field().String(), "."))
	if addr, err := netip.ParseAddr(host); err == nil {
		return !(addr.IsLoopback() ||
			addr.IsPrivate() ||
			addr.IsLinkLocalUnicast() ||
			addr.IsLinkLocalMulticast() ||
			addr.IsUnspecified())
	}
	if host == "localhost" || !strings.Contains(host, ".") {
		return false
	}
	for _, suffix := range localSuffixes {
		if strings.HasSuffix(host, suffix) {
			return false
		}
	}
	return true
}

// URL checks that url is an absolute http(s) address, and unless
// opts.AllowLocal is set, that its host is publicly reachable.
func URL(vars map[string]any, opts Options) error {
	raw, ok := vars["url"]
	if !ok || raw == nil {
		return ErrURLRequired
	}
	address := mapped.Trimmed(raw)
	if err := checker.Var(address, "required,url,web_url"); err != nil {
		return ErrInvalidURL
	}
	if opts.AllowLocal {
		return nil
	}

	u, _ := url.Parse(address)
	if err := checker.Var(u.Hostname(), "public_host"); err != nil {
		return ErrPrivateURL
	}
	return nil
}

// Method checks the optional method var against the allowed list.
func Method(vars map[string]any, allowed ...string) error {
	method := strings.ToUpper(mapped.Trimmed(vars["method"]))
	if method == "" {
		return nil
	}
	for _, m := range allowed {
		if m == method {
			return nil
		}
	}
	return fmt.Errorf("Unsupported HTTP method - use %s", strings.Join(allowed, ", "))
}

// Outcome checks outcome_on_match when it is set.
func Outcome(vars map[string]any) error {
	raw := mapped.Trimmed(vars["outcome_on_match"])
	if raw == "" {
		return nil
	}
	if !outcome.Outcome(strings.ToLower(raw)).Valid() {
		return ErrInvalidOutcome
	}
	return nil
}

// Headers rejects caller supplied Content-Length and Accept headers and a
// Content-Type that does not mention contentTypeBase. An empty base means
// no Content-Type is accepted at all.
func Headers(vars map[string]any, contentTypeBase string) error {
	header, ok := mapped.Map(vars["header"])
	if !ok {
		return nil
	}
	lowered := make(map[string]string, len(header))
	for k, v := range header {
		lowered[strings.ToLower(strings.TrimSpace(k))] = mapped.Trimmed(v)
	}

	if lowered["content-length"] != "" {
		return ErrContentLength
	}
	if lowered["accept"] != "" {
		return ErrAccept
	}

	contentType, present := lowered["content-type"]
	if !present {
		return nil
	}
	if contentTypeBase == "" {
		return ErrContentType
	}
	base := regexp.MustCompile("(?i)" + regexp.QuoteMeta(contentTypeBase))
	if !base.MatchString(contentType) {
		return ErrContentType
	}
	return nil
}

var functionName = regexp.MustCompile(`^[a-zA-Z0-9_.]+$`)

// Function checks the SOAP function var.
func Function(vars map[string]any) error {
	function := mapped.String(vars["function"])
	if function == "" {
		return ErrFunctionRequired
	}
	if !functionName.MatchString(function) {
		return ErrInvalidFunction
	}
	return nil
}

// SOAPVersion accepts an empty version, 1.1 or 1.2.
func SOAPVersion(vars map[string]any) error {
	switch mapped.Trimmed(vars["version"]) {
	case "", "1.1", "1.2":
		return nil
	}
	return ErrSOAPVersion
}

// first returns the first non-nil error.
func first(checks ...func() error) error {
	for _, check := range checks {
		if err := check(); err != nil {
			return err
		}
	}
	return nil
}
