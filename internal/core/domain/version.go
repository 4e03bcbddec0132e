package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"go.trai.ch/zerr"
	"golang.org/x/mod/semver"
)

var (
	exactVersionPattern = regexp.MustCompile(`^\d+\.\d+\.\d+(?:-[0-9A-Za-z.-]+)?(?:\+[0-9A-Za-z.-]+)?$`)
	partialPattern      = regexp.MustCompile(
		`^[v=]?(\d+|[xX*])(?:\.(\d+|[xX*]))?(?:\.(\d+|[xX*]))?(?:-([0-9A-Za-z.-]+))?(?:\+[0-9A-Za-z.-]+)?$`)
	operatorSpacePattern = regexp.MustCompile(`(<=|>=|<|>|=|~>|~|\^)\s+`)
	comparatorPattern    = regexp.MustCompile(`^(<=|>=|<|>|=|~>|~|\^)?(.*)$`)
)

// IsExactVersion reports whether v is a fully qualified semantic version (1.2.3, 1.2.3-beta.1).
func IsExactVersion(v string) bool {
	return exactVersionPattern.MatchString(v) && semver.IsValid("v"+v)
}

// CompareVersions orders two versions under semantic versioning precedence.
// Invalid versions sort before valid ones.
func CompareVersions(a, b string) int {
	return semver.Compare("v"+a, "v"+b)
}

// IsPrerelease reports whether v carries a prerelease tag.
func IsPrerelease(v string) bool {
	return semver.Prerelease("v"+v) != ""
}

type comparator struct {
	op  string
	ver string // canonical with a leading "v"
}

func (c comparator) test(v string) bool {
	cmp := semver.Compare(v, c.ver)
	switch c.op {
	case "<":
		return cmp < 0
	case "<=":
		return cmp <= 0
	case ">":
		return cmp > 0
	case ">=":
		return cmp >= 0
	default:
		return cmp == 0
	}
}

// Range is a parsed version spec: a union of comparator sets.
type Range struct {
	raw  string
	sets [][]comparator
}

// String returns the spec the range was parsed from.
func (r Range) String() string {
	return r.raw
}

// ParseRange parses a version spec.
//
// Supported forms: exact versions, partials and x-ranges (1, 1.2, 1.x, *),
// caret and tilde ranges, comparators (>=1.2.0 <2.0.0), hyphen ranges
// (1.2.3 - 2.0.0) and unions joined by "||". "", "*" and "latest" match any
// stable version.
func ParseRange(spec string) (Range, error) {
	raw := strings.TrimSpace(spec)
	r := Range{raw: raw}

	if raw == "" || raw == "latest" {
		r.sets = [][]comparator{{}}
		return r, nil
	}

	for _, part := range strings.Split(raw, "||") {
		set, err := parseComparatorSet(part)
		if err != nil {
			return Range{}, zerr.With(err, "spec", spec)
		}
		r.sets = append(r.sets, set)
	}
	return r, nil
}

// Satisfies reports whether version falls inside the range.
// A prerelease only matches a set that names a prerelease of the same major.minor.patch.
func (r Range) Satisfies(version string) bool {
	v := "v" + version
	if !semver.IsValid(v) {
		return false
	}
	for _, set := range r.sets {
		if setSatisfies(set, v) {
			return true
		}
	}
	return false
}

func setSatisfies(set []comparator, v string) bool {
	for _, c := range set {
		if !c.test(v) {
			return false
		}
	}
	if semver.Prerelease(v) == "" {
		return true
	}

	tuple := release(v)
	for _, c := range set {
		if semver.Prerelease(c.ver) != "" && release(c.ver) == tuple {
			return true
		}
	}
	return false
}

// release strips prerelease and build metadata from a canonical version.
func release(v string) string {
	c := semver.Canonical(v)
	if i := strings.IndexByte(c, '-'); i >= 0 {
		return c[:i]
	}
	return c
}

// MaxSatisfying returns the greatest version in versions that satisfies r.
func MaxSatisfying(versions []string, r Range) (string, bool) {
	best := ""
	for _, v := range versions {
		if !r.Satisfies(v) {
			continue
		}
		if best == "" || CompareVersions(v, best) > 0 {
			best = v
		}
	}
	return best, best != ""
}

// Satisfies parses spec and tests version against it.
func Satisfies(version, spec string) (bool, error) {
	r, err := ParseRange(spec)
	if err != nil {
		return false, err
	}
	return r.Satisfies(version), nil
}

func parseComparatorSet(part string) ([]comparator, error) {
	part = operatorSpacePattern.ReplaceAllString(strings.TrimSpace(part), "$1")
	fields := strings.Fields(part)

	if len(fields) == 3 && fields[1] == "-" {
		return hyphenRange(fields[0], fields[2])
	}

	set := []comparator{}
	for _, field := range fields {
		m := comparatorPattern.FindStringSubmatch(field)
		p, err := parsePartial(m[2])
		if err != nil {
			return nil, err
		}

		var cs []comparator
		switch m[1] {
		case "~", "~>":
			cs = tildeRange(p)
		case "^":
			cs = caretRange(p)
		default:
			cs = primitive(m[1], p)
		}
		set = append(set, cs...)
	}
	return set, nil
}

// partial is a version with up to three numeric parts given.
type partial struct {
	parts [3]int
	n     int
	pre   string
}

func parsePartial(s string) (partial, error) {
	m := partialPattern.FindStringSubmatch(s)
	if m == nil {
		return partial{}, zerr.With(zerr.Wrap(ErrInvalidRange, "malformed version"), "version", s)
	}

	var p partial
	for i := range 3 {
		g := m[i+1]
		if g == "" || g == "x" || g == "X" || g == "*" {
			break
		}
		n, err := strconv.Atoi(g)
		if err != nil {
			return partial{}, zerr.With(zerr.Wrap(ErrInvalidRange, "version part out of range"), "version", s)
		}
		p.parts[i] = n
		p.n++
	}
	if m[4] != "" {
		if p.n != 3 {
			return partial{}, zerr.With(zerr.Wrap(ErrInvalidRange, "prerelease requires a full version"), "version", s)
		}
		p.pre = m[4]
	}
	return p, nil
}

func canonical(major, minor, patch int, pre string) string {
	v := fmt.Sprintf("v%d.%d.%d", major, minor, patch)
	if pre != "" {
		v += "-" + pre
	}
	return v
}

func (p partial) lower() string {
	return canonical(p.parts[0], p.parts[1], p.parts[2], p.pre)
}

// next returns the smallest version above every version p names, as a "-0" bound.
func (p partial) next() string {
	switch p.n {
	case 1:
		return canonical(p.parts[0]+1, 0, 0, "0")
	case 2:
		return canonical(p.parts[0], p.parts[1]+1, 0, "0")
	default:
		return canonical(p.parts[0], p.parts[1], p.parts[2]+1, "0")
	}
}

func nothing() []comparator {
	return []comparator{{op: "<", ver: "v0.0.0-0"}}
}

func primitive(op string, p partial) []comparator {
	if p.n == 0 {
		if op == "<" || op == ">" {
			return nothing()
		}
		return nil
	}

	switch op {
	case ">":
		if p.n == 3 {
			return []comparator{{op: ">", ver: p.lower()}}
		}
		up := p.next()
		return []comparator{{op: ">=", ver: strings.TrimSuffix(up, "-0")}}
	case ">=":
		return []comparator{{op: ">=", ver: p.lower()}}
	case "<":
		if p.n == 3 {
			return []comparator{{op: "<", ver: p.lower()}}
		}
		return []comparator{{op: "<", ver: canonical(p.parts[0], p.parts[1], 0, "0")}}
	case "<=":
		if p.n == 3 {
			return []comparator{{op: "<=", ver: p.lower()}}
		}
		return []comparator{{op: "<", ver: p.next()}}
	default:
		if p.n == 3 {
			return []comparator{{op: "=", ver: p.lower()}}
		}
		return []comparator{{op: ">=", ver: p.lower()}, {op: "<", ver: p.next()}}
	}
}

func tildeRange(p partial) []comparator {
	switch p.n {
	case 0:
		return nil
	case 1:
		return []comparator{{op: ">=", ver: p.lower()}, {op: "<", ver: p.next()}}
	default:
		return []comparator{
			{op: ">=", ver: p.lower()},
			{op: "<", ver: canonical(p.parts[0], p.parts[1]+1, 0, "0")},
		}
	}
}

func caretRange(p partial) []comparator {
	major, minor, patch := p.parts[0], p.parts[1], p.parts[2]

	var upper string
	switch {
	case p.n == 0:
		return nil
	case p.n == 1 || major > 0:
		upper = canonical(major+1, 0, 0, "0")
	case p.n == 2 || minor > 0:
		upper = canonical(0, minor+1, 0, "0")
	default:
		upper = canonical(0, 0, patch+1, "0")
	}
	return []comparator{{op: ">=", ver: p.lower()}, {op: "<", ver: upper}}
}

func hyphenRange(from, to string) ([]comparator, error) {
	lo, err := parsePartial(from)
	if err != nil {
		return nil, err
	}
	hi, err := parsePartial(to)
	if err != nil {
		return nil, err
	}

	set := []comparator{}
	if lo.n > 0 {
		set = append(set, comparator{op: ">=", ver: lo.lower()})
	}
	switch hi.n {
	case 0:
	case 3:
		set = append(set, comparator{op: "<=", ver: hi.lower()})
	default:
		set = append(set, comparator{op: "<", ver: hi.next()})
	}
	return set, nil
}
