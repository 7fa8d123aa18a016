package soap

import (
	"strings"
	"time"

	"outbound-custom/lib/mapped"
	"outbound-custom/lib/outcome"
)

type Version string

const (
	Version11 Version = "1.1"
	Version12 Version = "1.2"
)

const defaultTimeout = 10 * time.Second

// Config is the typed view of the vars for one SOAP call.
type Config struct {
	WSDL     string
	Function string
	Version  Version

	BasicUsername string
	BasicPassword string
	BearerToken   string
	WSSUsername   string
	WSSPassword   string
	WSSDigest     bool

	// Args are the normalized and compacted operation arguments.
	Args map[string]any
	// Headers are soap_header paths, rendered with the XML path convention.
	Headers any
	ASCII   bool

	RootNamespacePrefix string
	RootXmlnsName       string
	RootXmlnsValue      string

	Timeout  time.Duration
	Response outcome.Options
}

func ConfigFromVars(vars map[string]any) Config {
	vars = mapped.Expand(vars)

	cfg := Config{
		WSDL:                mapped.Trimmed(vars["url"]),
		Function:            mapped.Trimmed(vars["function"]),
		Version:             Version11,
		BasicUsername:       mapped.String(vars["basic_username"]),
		BasicPassword:       mapped.String(vars["basic_password"]),
		BearerToken:         mapped.Trimmed(vars["bearer_token"]),
		WSSUsername:         mapped.String(vars["wss_username"]),
		WSSPassword:         mapped.String(vars["wss_password"]),
		WSSDigest:           mapped.Bool(vars["wss_digest_password"], false),
		Headers:             vars["soap_header"],
		ASCII:               mapped.Bool(vars["send_ascii"], false),
		RootNamespacePrefix: mapped.Trimmed(vars["root_namespace_prefix"]),
		RootXmlnsName:       mapped.Trimmed(vars["root_xmlns_attribute_name"]),
		RootXmlnsValue:      mapped.Trimmed(vars["root_xmlns_attribute_value"]),
		Timeout:             defaultTimeout,
		Response:            outcome.OptionsFromVars(vars),
	}

	if mapped.Trimmed(vars["version"]) == string(Version12) {
		cfg.Version = Version12
	}
	if seconds, ok := mapped.Float(vars["timeout_seconds"]); ok && seconds > 0 {
		cfg.Timeout = time.Duration(seconds * float64(time.Second))
	}

	normalized := mapped.Normalize(vars["arg"], mapped.NormalizeOptions{ASCII: cfg.ASCII})
	if args, ok := normalized.(map[string]any); ok {
		cfg.Args = args
	} else {
		cfg.Args = map[string]any{}
	}

	return cfg
}

// operationName is the last segment of a dotted Service.Port.Operation
// function name.
func (c Config) operationName() string {
	segments := strings.Split(c.Function, ".")
	return segments[len(segments)-1]
}

func (c Config) hasRootXmlns() bool {
	return c.RootXmlnsName != "" && c.RootXmlnsValue != ""
}
