// Package settings implements the Settings Resolver (L1): each tunable
// is looked up mission -> user -> environment -> default, coerced to its
// declared type, with required values failing loudly.
package settings

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"maestro/internal/merrors"
)

// Kind is the declared type a setting coerces to.
type Kind int

const (
	KindString Kind = iota
	KindBool
	KindInt
	KindFloat
)

// Spec describes one resolvable parameter: its default, env spelling,
// user-settings path and optional mission-settings key.
type Spec struct {
	Name       string
	EnvVar     string
	UserPath   string // dotted path into the user-settings tree
	MissionKey string // key looked up in a mission's metadata map
	Default    any
	Kind       Kind
	Required   bool
}

// UserSettings is the narrow interface the resolver borrows to read a
// user's profile overrides; it never mutates it.
type UserSettings interface {
	Get(path string) (any, bool)
}

// MissionSettings is the narrow interface the resolver borrows to read a
// mission's own metadata overrides.
type MissionSettings interface {
	Get(key string) (any, bool)
}

// Resolver layers mission > user > environment > default for a fixed set
// of named Specs. It is read-only: specs are registered once at startup.
type Resolver struct {
	mu    sync.RWMutex
	specs map[string]Spec
	env   *viper.Viper
}

// New constructs a Resolver bound to the process environment. godotenv is
// used to load a local .env file the way the CLI entrypoint already does,
// before viper's AutomaticEnv binding takes over.
func New() *Resolver {
	_ = godotenv.Load()
	v := viper.New()
	v.AutomaticEnv()
	return &Resolver{specs: make(map[string]Spec), env: v}
}

// Register adds or replaces a Spec.
func (r *Resolver) Register(s Spec) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s.EnvVar != "" {
		r.env.BindEnv(s.EnvVar, s.EnvVar)
	}
	r.specs[s.Name] = s
}

// RegisterAll is a convenience wrapper for bulk registration.
func (r *Resolver) RegisterAll(specs []Spec) {
	for _, s := range specs {
		r.Register(s)
	}
}

// Get resolves name for an optional mission, returning the first hit
// found in mission -> user -> environment -> default order, coerced to
// the spec's declared Kind. Required values with no hit anywhere return
// merrors.ConfigurationRequired.
func (r *Resolver) Get(name string, mission MissionSettings, user UserSettings) (any, error) {
	r.mu.RLock()
	spec, ok := r.specs[name]
	r.mu.RUnlock()
	if !ok {
		return nil, merrors.New(merrors.ConfigurationRequired, fmt.Sprintf("unknown setting %q", name))
	}

	if mission != nil && spec.MissionKey != "" {
		if v, found := mission.Get(spec.MissionKey); found {
			return coerce(spec, v)
		}
	}
	if user != nil && spec.UserPath != "" {
		if v, found := user.Get(spec.UserPath); found {
			return coerce(spec, v)
		}
	}
	if spec.EnvVar != "" {
		if raw := r.env.GetString(spec.EnvVar); raw != "" {
			return coerce(spec, raw)
		}
	}
	if spec.Default != nil {
		return spec.Default, nil
	}
	if spec.Required {
		return nil, merrors.New(merrors.ConfigurationRequired,
			fmt.Sprintf("please configure your AI settings: %q has no value at any layer", name))
	}
	return nil, nil
}

// GetString, GetBool, GetInt, GetFloat are typed convenience wrappers
// over Get that coerce or return the zero value on a non-required miss.
func (r *Resolver) GetString(name string, mission MissionSettings, user UserSettings) (string, error) {
	v, err := r.Get(name, mission, user)
	if err != nil {
		return "", err
	}
	s, _ := v.(string)
	return s, nil
}

func (r *Resolver) GetBool(name string, mission MissionSettings, user UserSettings) (bool, error) {
	v, err := r.Get(name, mission, user)
	if err != nil {
		return false, err
	}
	b, _ := v.(bool)
	return b, nil
}

func (r *Resolver) GetInt(name string, mission MissionSettings, user UserSettings) (int, error) {
	v, err := r.Get(name, mission, user)
	if err != nil {
		return 0, err
	}
	i, _ := v.(int)
	return i, nil
}

func (r *Resolver) GetFloat(name string, mission MissionSettings, user UserSettings) (float64, error) {
	v, err := r.Get(name, mission, user)
	if err != nil {
		return 0, err
	}
	f, _ := v.(float64)
	return f, nil
}

// coerce applies the spec's declared Kind to a raw value. Bool accepts
// true|1|yes|on (case-insensitive); int/float parse strictly (a malformed
// string is an error, not a silent zero), per spec §4.1.
func coerce(spec Spec, v any) (any, error) {
	switch spec.Kind {
	case KindBool:
		switch t := v.(type) {
		case bool:
			return t, nil
		case string:
			switch strings.ToLower(strings.TrimSpace(t)) {
			case "true", "1", "yes", "on":
				return true, nil
			case "false", "0", "no", "off", "":
				return false, nil
			default:
				return nil, merrors.New(merrors.ConfigurationRequired,
					fmt.Sprintf("setting %q: cannot parse %q as bool", spec.Name, t))
			}
		default:
			return nil, merrors.New(merrors.ConfigurationRequired,
				fmt.Sprintf("setting %q: unsupported bool source type %T", spec.Name, v))
		}
	case KindInt:
		switch t := v.(type) {
		case int:
			return t, nil
		case string:
			i, err := strconv.Atoi(strings.TrimSpace(t))
			if err != nil {
				return nil, merrors.Wrap(merrors.ConfigurationRequired,
					fmt.Sprintf("setting %q: cannot parse %q as int", spec.Name, t), err)
			}
			return i, nil
		default:
			return nil, merrors.New(merrors.ConfigurationRequired,
				fmt.Sprintf("setting %q: unsupported int source type %T", spec.Name, v))
		}
	case KindFloat:
		switch t := v.(type) {
		case float64:
			return t, nil
		case string:
			f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
			if err != nil {
				return nil, merrors.Wrap(merrors.ConfigurationRequired,
					fmt.Sprintf("setting %q: cannot parse %q as float", spec.Name, t), err)
			}
			return f, nil
		default:
			return nil, merrors.New(merrors.ConfigurationRequired,
				fmt.Sprintf("setting %q: unsupported float source type %T", spec.Name, v))
		}
	default: // KindString
		if s, ok := v.(string); ok {
			return s, nil
		}
		return fmt.Sprintf("%v", v), nil
	}
}
