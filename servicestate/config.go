package servicestate

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/next-trace/scg-service-state/contract/action"
	serr "github.com/next-trace/scg-service-state/contract/errors"
)

// DefaultIDField is the record field events are matched on.
const DefaultIDField = "id"

// EnvIDField overrides Config.IDField when set.
const EnvIDField = "SERVICESTATE_ID_FIELD"

// Fields names every state key in exported state. Overrides let several bound
// services share one exported tree without key collisions.
type Fields struct {
	IsError       string `yaml:"isError"`
	IsLoading     string `yaml:"isLoading"`
	IsSaving      string `yaml:"isSaving"`
	IsFinished    string `yaml:"isFinished"`
	Data          string `yaml:"data"`
	QueryResult   string `yaml:"queryResult"`
	Store         string `yaml:"store"`
	FindPending   string `yaml:"findPending"`
	GetPending    string `yaml:"getPending"`
	CreatePending string `yaml:"createPending"`
	UpdatePending string `yaml:"updatePending"`
	PatchPending  string `yaml:"patchPending"`
	RemovePending string `yaml:"removePending"`
}

// DefaultFields are the canonical state key names.
var DefaultFields = Fields{
	IsError:       "isError",
	IsLoading:     "isLoading",
	IsSaving:      "isSaving",
	IsFinished:    "isFinished",
	Data:          "data",
	QueryResult:   "queryResult",
	Store:         "store",
	FindPending:   "findPending",
	GetPending:    "getPending",
	CreatePending: "createPending",
	UpdatePending: "updatePending",
	PatchPending:  "patchPending",
	RemovePending: "removePending",
}

// Config tunes a binding. The zero value selects every default.
type Config struct {
	Fields   Fields          `yaml:"fields"`
	Suffixes action.Suffixes `yaml:"suffixes"`
	IDField  string          `yaml:"idField"`

	Logger *slog.Logger `yaml:"-"`
}

func (f Fields) withDefaults() Fields {
	pick := func(v, def string) string {
		if v == "" {
			return def
		}

		return v
	}

	return Fields{
		IsError:       pick(f.IsError, DefaultFields.IsError),
		IsLoading:     pick(f.IsLoading, DefaultFields.IsLoading),
		IsSaving:      pick(f.IsSaving, DefaultFields.IsSaving),
		IsFinished:    pick(f.IsFinished, DefaultFields.IsFinished),
		Data:          pick(f.Data, DefaultFields.Data),
		QueryResult:   pick(f.QueryResult, DefaultFields.QueryResult),
		Store:         pick(f.Store, DefaultFields.Store),
		FindPending:   pick(f.FindPending, DefaultFields.FindPending),
		GetPending:    pick(f.GetPending, DefaultFields.GetPending),
		CreatePending: pick(f.CreatePending, DefaultFields.CreatePending),
		UpdatePending: pick(f.UpdatePending, DefaultFields.UpdatePending),
		PatchPending:  pick(f.PatchPending, DefaultFields.PatchPending),
		RemovePending: pick(f.RemovePending, DefaultFields.RemovePending),
	}
}

// pending returns the key of m's pending flag.
func (f Fields) pending(m Method) string {
	switch m {
	case MethodFind:
		return f.FindPending
	case MethodGet:
		return f.GetPending
	case MethodCreate:
		return f.CreatePending
	case MethodUpdate:
		return f.UpdatePending
	case MethodPatch:
		return f.PatchPending
	default:
		return f.RemovePending
	}
}

func (f Fields) all() []string {
	return []string{
		f.IsError, f.IsLoading, f.IsSaving, f.IsFinished, f.Data, f.QueryResult, f.Store,
		f.FindPending, f.GetPending, f.CreatePending, f.UpdatePending, f.PatchPending, f.RemovePending,
	}
}

// resolve fills defaults and validates the result.
func (c Config) resolve() (Config, error) {
	c.Fields = c.Fields.withDefaults()
	c.Suffixes = c.Suffixes.WithDefaults()

	if c.IDField == "" {
		c.IDField = DefaultIDField
	}

	if err := c.validate(); err != nil {
		return Config{}, err
	}

	return c, nil
}

func (c Config) validate() error {
	seen := make(map[string]struct{}, 13)
	for _, k := range c.Fields.all() {
		if _, dup := seen[k]; dup {
			return fmt.Errorf("field %q used twice: %w", k, serr.ErrConfigInvalid)
		}

		seen[k] = struct{}{}
	}

	s := c.Suffixes
	if s.Pending == s.Fulfilled || s.Pending == s.Rejected || s.Fulfilled == s.Rejected {
		return fmt.Errorf("lifecycle suffixes must differ: %w", serr.ErrConfigInvalid)
	}

	return nil
}

// ParseConfig decodes a YAML binder configuration and applies env overrides.
func ParseConfig(data []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", errors.Join(serr.ErrConfigInvalid, err))
	}

	ApplyEnvOverrides(&cfg)

	return cfg.resolve()
}

// LoadConfig reads a YAML binder configuration from path.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}

	return ParseConfig(data)
}

// ApplyEnvOverrides applies environment overrides to cfg.
func ApplyEnvOverrides(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv(EnvIDField)); v != "" {
		cfg.IDField = v
	}
}
