package envconfig

import (
	"os"
	"strconv"
	"strings"
)

var (
	// Set via COAX_HOST in the environment; the generation backend.
	Host string
	// Set via COAX_BIND in the environment; address for coax serve.
	Bind string
	// Set via COAX_MODEL in the environment; default model name.
	Model string
	// Set via COAX_DEBUG in the environment.
	Debug bool
	// Set via COAX_NOHISTORY in the environment; disables REPL history.
	NoHistory bool
	// Set via COAX_MAX_ROWS in the environment; default table row bound.
	MaxRows int
	// Set via COAX_STRING_MAX in the environment; generated string cap.
	StringMax int
)

type EnvVar struct {
	Name        string
	Value       any
	Description string
}

func AsMap() map[string]EnvVar {
	return map[string]EnvVar{
		"COAX_HOST":       {"COAX_HOST", Host, "Address of the generation backend (default 127.0.0.1:11434)"},
		"COAX_BIND":       {"COAX_BIND", Bind, "Bind address for the coax server (default 127.0.0.1:8421)"},
		"COAX_MODEL":      {"COAX_MODEL", Model, "Default model name (default phi3.5)"},
		"COAX_DEBUG":      {"COAX_DEBUG", Debug, "Show additional debug information (e.g. COAX_DEBUG=1)"},
		"COAX_NOHISTORY":  {"COAX_NOHISTORY", NoHistory, "Do not preserve assistant history"},
		"COAX_MAX_ROWS":   {"COAX_MAX_ROWS", MaxRows, "Default bound on generated table rows (default 3)"},
		"COAX_STRING_MAX": {"COAX_STRING_MAX", StringMax, "Length cap on generated strings (default 42)"},
	}
}

// Clean quotes and spaces from the value
func clean(key string) string {
	return strings.Trim(os.Getenv(key), "\"' ")
}

func init() {
	LoadConfig()
}

func LoadConfig() {
	// default values
	Host = "127.0.0.1:11434"
	Bind = "127.0.0.1:8421"
	Model = "phi3.5"
	Debug = false
	NoHistory = false
	MaxRows = 3
	StringMax = 42

	if host := clean("COAX_HOST"); host != "" {
		Host = host
	}
	if bind := clean("COAX_BIND"); bind != "" {
		Bind = bind
	}
	if model := clean("COAX_MODEL"); model != "" {
		Model = model
	}
	if debug := clean("COAX_DEBUG"); debug != "" {
		if d, err := strconv.ParseBool(debug); err == nil {
			Debug = d
		}
	}
	if nohistory := clean("COAX_NOHISTORY"); nohistory != "" {
		if n, err := strconv.ParseBool(nohistory); err == nil {
			NoHistory = n
		}
	}
	if rows := clean("COAX_MAX_ROWS"); rows != "" {
		if n, err := strconv.Atoi(rows); err == nil && n >= 0 {
			MaxRows = n
		}
	}
	if max := clean("COAX_STRING_MAX"); max != "" {
		if n, err := strconv.Atoi(max); err == nil && n > 0 {
			StringMax = n
		}
	}
}
