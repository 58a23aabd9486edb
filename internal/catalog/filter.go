// Package catalog implements the project discovery pipeline: a typed
// filter specification parsed from query parameters, rendered either as
// SQL predicates for the project repository or evaluated in memory over
// ProjectFacts. Filters AND across dimensions; comma-separated entries
// within a dimension OR together.
package catalog

import (
	"math"
	"strconv"
	"strings"
)

// Params carries the raw, still-unparsed filter values. Empty string
// means the dimension is unconstrained.
type Params struct {
	Search          string
	ProjectType     string
	ExperienceLevel string
	Budget          string
	Country         string
	Proposals       string
	ProjectLength   string
	ClientHistory   string
}

// daysPerMonth converts project_length months to days before comparing
// against a project's duration.
const daysPerMonth = 30.44

// noUpper marks a half-open range such as client_history "10+".
const noUpper = math.MaxInt32

type intRange struct {
	min, max int
}

func (r intRange) contains(n int) bool {
	return n >= r.min && n <= r.max
}

// rangeList is an active list dimension. A non-nil list with zero
// ranges (every entry malformed) matches nothing: an empty disjunction
// is false.
type rangeList struct {
	ranges []intRange
}

func (l *rangeList) contains(n int) bool {
	for _, r := range l.ranges {
		if r.contains(n) {
			return true
		}
	}
	return false
}

// Spec is the parsed filter specification, one optional field per
// dimension.
type Spec struct {
	search     string
	types      []string
	experience []string
	budget     *intRange
	budgetBad  bool
	country    string
	proposals  *rangeList
	length     *rangeList
	history    *rangeList
}

// ParseSpec parses raw parameters into a Spec. Parsing never fails:
// a malformed top-level budget range poisons the whole spec (Empty
// becomes true and no project matches), while malformed entries inside
// the comma-list dimensions are skipped individually.
func ParseSpec(p Params) Spec {
	s := Spec{
		search:  p.Search,
		country: p.Country,
	}
	if p.ProjectType != "" {
		s.types = strings.Split(p.ProjectType, ",")
	}
	if p.ExperienceLevel != "" {
		s.experience = strings.Split(p.ExperienceLevel, ",")
	}
	if p.Budget != "" {
		if r, ok := parseRange(p.Budget); ok {
			s.budget = &r
		} else {
			s.budgetBad = true
		}
	}
	if p.Proposals != "" {
		s.proposals = parseRangeList(p.Proposals, nil)
	}
	if p.ProjectLength != "" {
		s.length = parseRangeList(p.ProjectLength, monthsToDays)
	}
	if p.ClientHistory != "" {
		s.history = parseHistoryList(p.ClientHistory)
	}
	return s
}

// Empty reports whether the spec can never match anything. This is the
// deliberate fail-closed path for a malformed top-level budget range.
func (s *Spec) Empty() bool {
	return s.budgetBad
}

// parseRange parses "min-max" where both sides are unsigned integers.
func parseRange(v string) (intRange, bool) {
	lo, hi, ok := strings.Cut(v, "-")
	if !ok {
		return intRange{}, false
	}
	min, err1 := parseUint(lo)
	max, err2 := parseUint(hi)
	if err1 != nil || err2 != nil {
		return intRange{}, false
	}
	return intRange{min: min, max: max}, true
}

// parseUint rejects signs and empty strings so "-5-10" and "5--3" are
// malformed rather than negative ranges.
func parseUint(v string) (int, error) {
	n, err := strconv.ParseUint(v, 10, 31)
	return int(n), err
}

func monthsToDays(r intRange) intRange {
	return intRange{
		min: int(math.Round(float64(r.min) * daysPerMonth)),
		max: int(math.Round(float64(r.max) * daysPerMonth)),
	}
}

func parseRangeList(v string, transform func(intRange) intRange) *rangeList {
	l := &rangeList{}
	for _, entry := range strings.Split(v, ",") {
		r, ok := parseRange(entry)
		if !ok {
			continue
		}
		if transform != nil {
			r = transform(r)
		}
		l.ranges = append(l.ranges, r)
	}
	return l
}

// parseHistoryList accepts "10+" (at least ten completed projects),
// "min-max" ranges, and bare integers (exact match).
func parseHistoryList(v string) *rangeList {
	l := &rangeList{}
	for _, entry := range strings.Split(v, ",") {
		switch {
		case entry == "10+":
			l.ranges = append(l.ranges, intRange{min: 10, max: noUpper})
		case strings.Contains(entry, "-"):
			if r, ok := parseRange(entry); ok {
				l.ranges = append(l.ranges, r)
			}
		default:
			if n, err := parseUint(entry); err == nil {
				l.ranges = append(l.ranges, intRange{min: n, max: n})
			}
		}
	}
	return l
}
