package toolhub

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"

	"github.com/toolhub-scripting/go-toolhub/src/bridge"
	httptransport "github.com/toolhub-scripting/go-toolhub/src/transports/http"
)

// DefaultBaseURL is the public Toolhub instance.
const DefaultBaseURL = "https://toolhub.wikimedia.org"

// VariableNotFound is returned when a requested variable isn't present.
type VariableNotFound struct {
	VariableName string
}

func (e *VariableNotFound) Error() string {
	return fmt.Sprintf(
		"Variable %q referenced in Toolhub configuration not found. "+
			"Please add it to the environment variables or to your configuration.",
		e.VariableName,
	)
}

// VariablesConfig is the interface for any variable-loading strategy.
type VariablesConfig interface {
	// Load returns all variables available from this provider.
	Load() (map[string]string, error)
	// Get returns a single variable value or an error if not present.
	Get(key string) (string, error)
}

// DotEnv implements VariablesConfig by loading a .env file.
type DotEnv struct {
	EnvFilePath string
}

func NewDotEnv(path string) *DotEnv {
	return &DotEnv{EnvFilePath: path}
}

// Load reads the .env file and returns a map of key→value.
func (d *DotEnv) Load() (map[string]string, error) {
	return godotenv.Read(d.EnvFilePath)
}

// Get loads the file and looks up a single key.
func (d *DotEnv) Get(key string) (string, error) {
	vars, err := d.Load()
	if err != nil {
		return "", err
	}
	if val, ok := vars[key]; ok {
		return val, nil
	}
	return "", &VariableNotFound{VariableName: key}
}

// AuthConfig selects one of the HTTP transport's auth schemes. String
// fields may reference variables as ${NAME} or $NAME.
type AuthConfig struct {
	Type     string `yaml:"type"` // api_key, basic or bearer
	APIKey   string `yaml:"api_key"`
	VarName  string `yaml:"var_name"`
	Location string `yaml:"location"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Token    string `yaml:"token"`
}

// Build returns the transport auth for a.
func (a *AuthConfig) Build() (httptransport.Auth, error) {
	if a == nil {
		return nil, nil
	}
	switch a.Type {
	case "api_key":
		return &httptransport.ApiKeyAuth{APIKey: a.APIKey, VarName: a.VarName, Location: a.Location}, nil
	case "basic":
		return &httptransport.BasicAuth{Username: a.Username, Password: a.Password}, nil
	case "bearer":
		return &httptransport.BearerAuth{Token: a.Token}, nil
	case "":
		return nil, nil
	}
	return nil, fmt.Errorf("unsupported auth type %q", a.Type)
}

type CacheConfig struct {
	// TTL <= 0 disables caching.
	TTL        time.Duration `yaml:"ttl"`
	MaxEntries int           `yaml:"max_entries"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // console or json
}

// ClientConfig holds everything needed to wire a Toolhub instance.
type ClientConfig struct {
	BaseURL       string            `yaml:"base_url"`
	Timeout       time.Duration     `yaml:"timeout"`
	UserAgent     string            `yaml:"user_agent"`
	Headers       map[string]string `yaml:"headers"`
	Auth          *AuthConfig       `yaml:"auth"`
	Cache         CacheConfig       `yaml:"cache"`
	Rebase        string            `yaml:"rebase"`
	ScriptTimeout time.Duration     `yaml:"script_timeout"`
	MaxOutput     int               `yaml:"max_output"`
	Logging       LoggingConfig     `yaml:"logging"`

	// Variables explicitly passed in (takes precedence)
	Variables map[string]string `yaml:"variables"`

	// A list of providers to load from (e.g. .env files)
	LoadVariablesFrom []VariablesConfig `yaml:"-"`
}

// NewClientConfig constructs a config with sensible defaults.
func NewClientConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL:       DefaultBaseURL,
		Timeout:       30 * time.Second,
		Headers:       make(map[string]string),
		Rebase:        bridge.RebaseShift.String(),
		ScriptTimeout: 5 * time.Second,
		Logging:       LoggingConfig{Level: "info", Format: "console"},
		Variables:     make(map[string]string),
	}
}

// LoadConfigFile reads a YAML config (or TOML, for a .toml path) on top of
// the defaults.
func LoadConfigFile(path string) (*ClientConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if data, err = tomlToYAML(data); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	cfg := NewClientConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.Variables == nil {
		cfg.Variables = make(map[string]string)
	}
	if cfg.Headers == nil {
		cfg.Headers = make(map[string]string)
	}
	return cfg, nil
}

// tomlToYAML re-encodes a TOML document so both formats share the yaml tags
// and duration handling of ClientConfig.
func tomlToYAML(data []byte) ([]byte, error) {
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	return yaml.Marshal(raw)
}

// GetVariable checks inline variables, then loaders, then the process
// environment.
func (c *ClientConfig) GetVariable(key string) (string, error) {
	if v, ok := c.Variables[key]; ok {
		return v, nil
	}
	for _, loader := range c.LoadVariablesFrom {
		if val, err := loader.Get(key); err == nil && val != "" {
			return val, nil
		}
	}
	if env := os.Getenv(key); env != "" {
		return env, nil
	}
	return "", &VariableNotFound{VariableName: key}
}

var varRefRe = regexp.MustCompile(`\${(\w+)}|\$(\w+)`)

// expand does ${VAR}/$VAR substitution, leaving unknown references intact.
func (c *ClientConfig) expand(s string) string {
	return varRefRe.ReplaceAllStringFunc(s, func(match string) string {
		g := varRefRe.FindStringSubmatch(match)
		name := g[1]
		if name == "" {
			name = g[2]
		}
		val, err := c.GetVariable(name)
		if err != nil {
			return match
		}
		return val
	})
}

// Resolve applies TOOLHUB_* variables, expands variable references in
// headers and auth, and validates the result.
func (c *ClientConfig) Resolve() error {
	if err := c.applyOverrides(); err != nil {
		return err
	}

	for k, v := range c.Headers {
		c.Headers[k] = c.expand(v)
	}
	if a := c.Auth; a != nil {
		a.APIKey = c.expand(a.APIKey)
		a.Username = c.expand(a.Username)
		a.Password = c.expand(a.Password)
		a.Token = c.expand(a.Token)
	}
	return c.Validate()
}

func (c *ClientConfig) applyOverrides() error {
	lookup := func(key string) (string, bool) {
		v, err := c.GetVariable(key)
		return v, err == nil
	}

	if v, ok := lookup("TOOLHUB_BASE_URL"); ok {
		c.BaseURL = v
	}
	if v, ok := lookup("TOOLHUB_USER_AGENT"); ok {
		c.UserAgent = v
	}
	if v, ok := lookup("TOOLHUB_REBASE"); ok {
		c.Rebase = v
	}
	if v, ok := lookup("TOOLHUB_LOG_LEVEL"); ok {
		c.Logging.Level = v
	}
	if v, ok := lookup("TOOLHUB_LOG_FORMAT"); ok {
		c.Logging.Format = v
	}
	if v, ok := lookup("TOOLHUB_API_TOKEN"); ok {
		c.Auth = &AuthConfig{Type: "bearer", Token: v}
	}

	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"TOOLHUB_TIMEOUT", &c.Timeout},
		{"TOOLHUB_CACHE_TTL", &c.Cache.TTL},
		{"TOOLHUB_SCRIPT_TIMEOUT", &c.ScriptTimeout},
	}
	for _, d := range durations {
		if v, ok := lookup(d.key); ok {
			parsed, err := parseDuration(v)
			if err != nil {
				return fmt.Errorf("%s: %w", d.key, err)
			}
			*d.dst = parsed
		}
	}

	ints := []struct {
		key string
		dst *int
	}{
		{"TOOLHUB_CACHE_MAX_ENTRIES", &c.Cache.MaxEntries},
		{"TOOLHUB_MAX_OUTPUT", &c.MaxOutput},
	}
	for _, n := range ints {
		if v, ok := lookup(n.key); ok {
			parsed, err := cast.ToIntE(strings.TrimSpace(v))
			if err != nil {
				return fmt.Errorf("%s: %w", n.key, err)
			}
			*n.dst = parsed
		}
	}
	return nil
}

// parseDuration accepts Go durations ("1m30s") and bare seconds ("90").
func parseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if secs, err := strconv.ParseFloat(s, 64); err == nil {
		return time.Duration(secs * float64(time.Second)), nil
	}
	return time.ParseDuration(s)
}

// Validate reports configuration that cannot be wired.
func (c *ClientConfig) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base URL %q: %w", c.BaseURL, err)
	}
	if u.Scheme == "file" {
		if u.Path == "" {
			return fmt.Errorf("invalid base URL %q: file URLs need a path", c.BaseURL)
		}
	} else if u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid base URL %q: scheme and host are required", c.BaseURL)
	}
	if _, err := bridge.ParseRebase(c.Rebase); err != nil {
		return err
	}
	if _, err := c.Auth.Build(); err != nil {
		return err
	}
	if c.Cache.MaxEntries < 0 {
		return fmt.Errorf("cache max_entries must not be negative")
	}
	return nil
}
