package stacktrim

import (
	"os"
	"strings"

	"github.com/magiconair/properties"
	"gopkg.in/yaml.v3"
)

// PruningEnabledKey is the configuration key consulted before every pruning
// call.
//
// The key name is historical and its polarity is inverted: the value "true"
// (exactly, case-sensitive) DISABLES pruning, and anything else, including a
// missing source or key, leaves pruning enabled. Deployments have relied on
// that behavior for years, so it is preserved as is; see the operators note
// in LoadProperties.
const PruningEnabledKey = "stacktrace.pruning.enabled"

// Source supplies configuration values by key. Implementations must be safe
// for concurrent use; lookups happen on every pruning call.
type Source interface {
	Lookup(key string) (value string, ok bool)
}

// MapSource is an in-memory Source, mostly useful in tests and for fixed
// settings.
type MapSource map[string]string

// Lookup implements the Source interface.
func (m MapSource) Lookup(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

// EnvSource resolves keys from environment variables. A key is translated by
// uppercasing it and replacing dots and dashes with underscores, so
// "stacktrace.pruning.enabled" becomes STACKTRACE_PRUNING_ENABLED, prefixed
// with Prefix and an underscore when Prefix is set.
type EnvSource struct {
	Prefix string
}

// Lookup implements the Source interface.
func (e EnvSource) Lookup(key string) (string, bool) {
	name := strings.ToUpper(strings.NewReplacer(".", "_", "-", "_").Replace(key))
	if e.Prefix != "" {
		name = e.Prefix + "_" + name
	}
	return os.LookupEnv(name)
}

// LoadProperties reads a Java-style .properties bundle and exposes it as a
// Source, so deployments migrating from a JVM logger keep their existing
// logging.properties file.
//
// Operators note: setting stacktrace.pruning.enabled=true in the bundle
// turns pruning OFF. The polarity is preserved from the original key, not
// fixed silently; new configuration should prefer a Profile, whose disabled
// flag reads the way it acts.
func LoadProperties(path string) (Source, error) {
	props, err := properties.LoadFile(path, properties.UTF8)
	if err != nil {
		return nil, &ConfigError{Path: path, Err: err}
	}
	return propertiesSource{props: props}, nil
}

type propertiesSource struct {
	props *properties.Properties
}

func (s propertiesSource) Lookup(key string) (string, bool) {
	return s.props.Get(key)
}

// Profile is a declarative pruner setup, loadable from YAML.
type Profile struct {
	// Keywords is the ordered allow-list; empty entries are dropped on load.
	Keywords []string `yaml:"keywords" json:"keywords"`
	// Disabled turns pruning off. Unlike the legacy properties key, this
	// flag means what it says.
	Disabled bool `yaml:"disabled,omitempty" json:"disabled,omitempty"`
}

// LoadProfile reads a YAML Profile from path.
func LoadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigError{Path: path, Err: err}
	}
	var pr Profile
	if err := yaml.Unmarshal(data, &pr); err != nil {
		return nil, &ConfigError{Path: path, Err: err}
	}
	kept := pr.Keywords[:0]
	for _, kw := range pr.Keywords {
		if strings.TrimSpace(kw) != "" {
			kept = append(kept, kw)
		}
	}
	pr.Keywords = kept
	return &pr, nil
}

// Options expands the profile into pruner options.
func (pr *Profile) Options() []Option {
	opts := []Option{WithKeywords(pr.Keywords...)}
	if pr.Disabled {
		opts = append(opts, WithSource(MapSource{PruningEnabledKey: "true"}))
	}
	return opts
}
