package catalog

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

var separatorRuns = regexp.MustCompile(`[-_.]+`)

// NormalizePackage returns the PyPI canonical form of a project name: runs
// of "-", "_" and "." collapse to a single "-" and the result is case-folded.
func NormalizePackage(name string) string {
	folded := cases.Fold().String(norm.NFC.String(strings.TrimSpace(name)))
	return separatorRuns.ReplaceAllString(folded, "-")
}
