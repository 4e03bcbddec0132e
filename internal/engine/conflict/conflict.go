// Package conflict detects requested versions that an environment cannot accept.
package conflict

import (
	"slices"
	"strings"

	"go.trai.ch/conde/internal/core/domain"
)

// Check compares requested name to spec pairs against the linked name to
// version pairs of an environment. A requested package that is linked at a
// version outside its spec is a conflict; unlinked packages never conflict.
// An empty spec accepts whatever is linked, prereleases included. A spec
// that cannot be parsed is reported as a conflict. The result is sorted by
// package name.
func Check(linked, requested map[string]string) []domain.Conflict {
	var conflicts []domain.Conflict
	for name, spec := range requested {
		installed, ok := linked[name]
		if !ok || accepts(installed, spec) {
			continue
		}
		conflicts = append(conflicts, domain.Conflict{Package: name, Required: spec, Installed: installed})
	}

	slices.SortFunc(conflicts, func(a, b domain.Conflict) int { return strings.Compare(a.Package, b.Package) })
	return conflicts
}

// Satisfied returns the requested packages already linked at a version inside their spec.
func Satisfied(linked, requested map[string]string) map[string]string {
	out := map[string]string{}
	for name, spec := range requested {
		installed, ok := linked[name]
		if !ok {
			continue
		}
		if accepts(installed, spec) {
			out[name] = installed
		}
	}
	return out
}

func accepts(installed, spec string) bool {
	if spec == "" {
		return true
	}
	ok, err := domain.Satisfies(installed, spec)
	return err == nil && ok
}

// Error returns a *domain.ConflictError for env, or nil when there are no conflicts.
func Error(env string, conflicts []domain.Conflict) error {
	if len(conflicts) == 0 {
		return nil
	}
	return &domain.ConflictError{Environment: env, Conflicts: conflicts}
}
