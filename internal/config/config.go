// Package config loads the chores configuration file.
//
// The file is YAML. It is validated against an embedded CUE schema
// (schema.cue) before any chore definition is built, so unknown keys,
// missing fields and malformed durations are reported with the path of
// the offending field. Every recurrence rule is then parsed and probed for
// a future firing; a configuration that fails any check must abort
// startup.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"gopkg.in/yaml.v3"

	"github.com/roach88/chores/internal/chore"
)

//go:embed schema.cue
var schemaCUE string

// DefaultPath is the configuration file used when none is given.
const DefaultPath = "chores.yaml"

// Config is a validated configuration.
type Config struct {
	// Database is the SQLite file path. Relative paths are resolved
	// against the directory of the configuration file by Load.
	Database string

	RecurrenceInterval time.Duration
	SweepInterval      time.Duration
	StoreTimeout       time.Duration

	// Chores are the definitions in file order, titles normalised.
	Chores []chore.Definition
}

// file mirrors #Config after defaults are applied.
type file struct {
	Database           string       `json:"database"`
	RecurrenceInterval string       `json:"recurrence_interval"`
	SweepInterval      string       `json:"sweep_interval"`
	StoreTimeout       string       `json:"store_timeout"`
	Chores             []choreEntry `json:"chores"`
}

type choreEntry struct {
	Title            string `json:"title"`
	Description      string `json:"description"`
	RecurrenceRule   string `json:"recurrence_rule"`
	OverdueOffset    string `json:"overdue_offset"`
	ExpirationOffset string `json:"expiration_offset,omitempty"`
}

// Load reads and validates the configuration at path. Rules are probed
// for a firing after now.
func Load(path string, now time.Time) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &chore.Error{
			Code:    chore.ErrCodeInvalidDefinition,
			Message: fmt.Sprintf("read config %s", path),
			Err:     err,
		}
	}

	cfg, err := Parse(data, now)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	if !filepath.IsAbs(cfg.Database) {
		cfg.Database = filepath.Join(filepath.Dir(path), cfg.Database)
	}
	return cfg, nil
}

// Parse validates YAML configuration data. Rules are probed for a firing
// after now.
//
// Schema violations and bad offsets yield chore.ErrInvalidDefinition, bad
// rules chore.ErrMalformedRule, rules that never fire
// chore.ErrUnsatisfiable. All chore-level failures are reported together,
// joined with errors.Join.
func Parse(data []byte, now time.Time) (*Config, error) {
	f, err := decode(data)
	if err != nil {
		return nil, err
	}

	cfg := &Config{Database: f.Database}
	intervals := []struct {
		field string
		text  string
		dst   *time.Duration
	}{
		{"recurrence_interval", f.RecurrenceInterval, &cfg.RecurrenceInterval},
		{"sweep_interval", f.SweepInterval, &cfg.SweepInterval},
		{"store_timeout", f.StoreTimeout, &cfg.StoreTimeout},
	}
	for _, iv := range intervals {
		d, err := parsePositive(iv.field, iv.text)
		if err != nil {
			return nil, err
		}
		*iv.dst = d
	}

	var errs []error
	seen := make(map[string]int, len(f.Chores))
	for i, entry := range f.Chores {
		def, err := buildDefinition(entry, now)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if first, dup := seen[def.Title]; dup {
			errs = append(errs, &chore.Error{
				Code:    chore.ErrCodeInvalidDefinition,
				Title:   def.Title,
				Field:   fmt.Sprintf("chores.%d.title", i),
				Message: fmt.Sprintf("duplicate title (first defined at chores.%d)", first),
			})
			continue
		}
		seen[def.Title] = i
		cfg.Chores = append(cfg.Chores, def)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	return cfg, nil
}

func buildDefinition(entry choreEntry, now time.Time) (chore.Definition, error) {
	overdue, err := time.ParseDuration(entry.OverdueOffset)
	if err != nil {
		return chore.Definition{}, durationError(entry.Title, "overdue_offset", err)
	}

	var expiration time.Duration
	if entry.ExpirationOffset != "" {
		expiration, err = time.ParseDuration(entry.ExpirationOffset)
		if err != nil {
			return chore.Definition{}, durationError(entry.Title, "expiration_offset", err)
		}
		if expiration == 0 {
			return chore.Definition{}, &chore.Error{
				Code:    chore.ErrCodeInvalidDefinition,
				Title:   chore.NormalizeTitle(entry.Title),
				Field:   "expiration_offset",
				Message: "expiration offset must be positive; omit it to expire at the next firing",
			}
		}
	}

	def, err := chore.NewDefinition(entry.Title, entry.Description, entry.RecurrenceRule, overdue, expiration)
	if err != nil {
		return chore.Definition{}, err
	}
	if err := def.Probe(now); err != nil {
		return chore.Definition{}, err
	}
	return def, nil
}

// decode unifies the YAML document with #Config and decodes the result
// with defaults applied.
func decode(data []byte) (file, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return file{}, &chore.Error{Code: chore.ErrCodeInvalidDefinition, Message: "invalid YAML", Err: err}
	}
	if raw == nil {
		raw = map[string]any{}
	}

	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return file{}, fmt.Errorf("compile config schema: %w", err)
	}

	v := schema.LookupPath(cue.ParsePath("#Config")).Unify(ctx.Encode(raw))
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return file{}, formatCUEError(err)
	}

	var f file
	if err := v.Decode(&f); err != nil {
		return file{}, formatCUEError(err)
	}
	return f, nil
}

// formatCUEError reports the first CUE error with the path of the field
// it concerns.
func formatCUEError(err error) error {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return &chore.Error{Code: chore.ErrCodeInvalidDefinition, Message: "schema validation failed", Err: err}
	}

	first := errs[0]
	format, args := first.Msg()
	return &chore.Error{
		Code:    chore.ErrCodeInvalidDefinition,
		Field:   strings.Join(cueerrors.Path(first), "."),
		Message: fmt.Sprintf(format, args...),
	}
}

func parsePositive(field, text string) (time.Duration, error) {
	d, err := time.ParseDuration(text)
	if err != nil {
		return 0, durationError("", field, err)
	}
	if d <= 0 {
		return 0, &chore.Error{
			Code:    chore.ErrCodeInvalidDefinition,
			Field:   field,
			Message: "must be positive",
		}
	}
	return d, nil
}

func durationError(title, field string, err error) error {
	return &chore.Error{
		Code:    chore.ErrCodeInvalidDefinition,
		Title:   chore.NormalizeTitle(title),
		Field:   field,
		Message: "invalid duration",
		Err:     err,
	}
}
