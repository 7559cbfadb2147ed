package profile

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"gopkg.in/yaml.v3"
)

//go:embed schema.cue
var schemaSource string

// Profile is the parameter set for one conformance run.
type Profile struct {
	// Trials is the number of random probes the display-coverage
	// scenario performs.
	Trials int `yaml:"trials" json:"trials"`

	// MinCatalog is the minimum number of movies a compliant catalog
	// must list.
	MinCatalog int `yaml:"min_catalog" json:"min_catalog"`

	// MinDisplayed is the minimum number of probes that must land on a
	// displayed movie/theater combination.
	MinDisplayed int `yaml:"min_displayed" json:"min_displayed"`

	// MaxAttempts bounds every random discovery loop.
	MaxAttempts int `yaml:"max_attempts" json:"max_attempts"`

	// RequiredTitles are the movie titles every catalog must contain.
	RequiredTitles []string `yaml:"required_titles" json:"required_titles"`
}

// Default returns the profile a run uses when no file overrides it.
func Default() Profile {
	return Profile{
		Trials:       1000,
		MinCatalog:   10000,
		MinDisplayed: 500,
		MaxAttempts:  1000,
		RequiredTitles: []string{
			"The Godfather",
			"A night at the opera",
			"Pulp Fiction",
			"Seven Samurai",
			"Terminator 2: Judgment Day",
			"AKIRA",
			"Bilal: A New Breed of Hero",
			"¡Bienvenido Mr. Marshall!",
			"Lucky Baskhar",
			"Fist of Fury",
		},
	}
}

// Parse decodes YAML over the defaults and validates the result. Keys
// the Profile struct does not know are errors; an empty document means
// pure defaults.
func Parse(data []byte) (Profile, error) {
	p := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil && !errors.Is(err, io.EOF) {
		return Profile{}, fmt.Errorf("parse profile: %w", err)
	}
	if err := p.Validate(); err != nil {
		return Profile{}, err
	}
	return p, nil
}

// Load reads and parses a profile file.
func Load(path string) (Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, fmt.Errorf("read profile: %w", err)
	}
	p, err := Parse(data)
	if err != nil {
		return Profile{}, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// Validate checks the profile against the embedded CUE schema. All
// violations are reported, not just the first.
func (p Profile) Validate() error {
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile profile schema: %w", err)
	}
	def := schema.LookupPath(cue.ParsePath("#Profile"))
	if err := def.Err(); err != nil {
		return fmt.Errorf("lookup profile schema: %w", err)
	}

	unified := def.Unify(ctx.Encode(p))
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return &SchemaError{Problems: problems(err)}
	}
	return nil
}

// SchemaError reports every schema violation found in a profile.
type SchemaError struct {
	Problems []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("invalid profile: %s", strings.Join(e.Problems, "; "))
}

// IsSchemaError reports whether err is a SchemaError.
func IsSchemaError(err error) bool {
	var se *SchemaError
	return errors.As(err, &se)
}

// problems flattens a CUE error list into one message per violation.
func problems(err error) []string {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return []string{err.Error()}
	}
	out := make([]string, 0, len(errs))
	for _, e := range errs {
		out = append(out, e.Error())
	}
	return out
}
