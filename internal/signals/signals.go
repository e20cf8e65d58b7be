// Package signals loads precomputed package signals from YAML.
//
// The install command uses a fixture instead of running the operations when
// --signals is given, so verdicts can be reproduced offline:
//
//	packages:
//	  insecure-package:
//	    vulnerability_issue_count: 1
//	    static_analysis_report:
//	      CONFIDENCE.HIGH_AND_SEVERITY.HIGH: 0
//
// Package names are matched after PyPI normalization.
package signals

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/roach88/shouldi/internal/catalog"
	"github.com/roach88/shouldi/internal/ir"
)

// Fixture maps package names to their signals.
type Fixture struct {
	packages map[string]ir.Signals
}

type fixtureFile struct {
	Packages map[string]map[string]any `yaml:"packages"`
}

// Load reads a fixture file.
func Load(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read signals: %w", err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Parse decodes fixture YAML. Unknown top-level keys and two names that
// normalize to the same package are errors.
func Parse(data []byte) (*Fixture, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var raw fixtureFile
	if err := dec.Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse signals: %w", err)
	}

	f := &Fixture{packages: make(map[string]ir.Signals, len(raw.Packages))}
	for name, sigs := range raw.Packages {
		key := catalog.NormalizePackage(name)
		if key == "" {
			return nil, fmt.Errorf("parse signals: empty package name")
		}
		if _, dup := f.packages[key]; dup {
			return nil, fmt.Errorf("parse signals: package %q listed more than once", key)
		}
		f.packages[key] = ir.Signals(sigs)
	}
	return f, nil
}

// For returns the signals recorded for pkg. The returned map is a shallow
// copy.
func (f *Fixture) For(pkg string) (ir.Signals, bool) {
	sigs, ok := f.packages[catalog.NormalizePackage(pkg)]
	if !ok {
		return nil, false
	}
	out := make(ir.Signals, len(sigs))
	for k, v := range sigs {
		out[k] = v
	}
	return out, true
}

// Packages returns the normalized package names in sorted order.
func (f *Fixture) Packages() []string {
	names := make([]string, 0, len(f.packages))
	for name := range f.packages {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
