package catalog

import (
	"fmt"
	"strings"
)

// Aggregate expressions used by the count-based dimensions. The rendered
// fragment assumes the query shape `FROM projects p JOIN users u ON
// u.id = p.owner_id` used by the project repository.
const (
	bidCountExpr       = `(SELECT count(*) FROM bids b WHERE b.project_id = p.id)`
	completedCountExpr = `(SELECT count(*) FROM projects q WHERE q.owner_id = p.owner_id AND q.status = 'completed')`
)

// SQL renders the spec as a WHERE predicate with positional placeholders
// starting after argOffset. An unconstrained spec renders as "true"; a
// poisoned one (malformed budget) as "false".
func (s *Spec) SQL(argOffset int) (string, []any) {
	if s.budgetBad {
		return "false", nil
	}

	var conds []string
	var args []any
	next := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", argOffset+len(args))
	}

	if s.search != "" {
		ph := next("%" + s.search + "%")
		conds = append(conds, fmt.Sprintf(
			"(p.title ILIKE %s OR array_to_string(p.skills_needed, ',') ILIKE %s)", ph, ph))
	}
	if len(s.types) > 0 {
		conds = append(conds, fmt.Sprintf("p.type = ANY(%s)", next(s.types)))
	}
	if len(s.experience) > 0 {
		conds = append(conds, fmt.Sprintf("p.experience_level = ANY(%s)", next(s.experience)))
	}
	if s.budget != nil {
		conds = append(conds, fmt.Sprintf("p.budget >= %s AND p.budget <= %s",
			next(s.budget.min), next(s.budget.max)))
	}
	if s.country != "" {
		conds = append(conds, fmt.Sprintf("u.country = %s", next(s.country)))
	}
	if s.proposals != nil {
		conds = append(conds, renderRanges(bidCountExpr, s.proposals, next))
	}
	if s.history != nil {
		conds = append(conds, renderRanges(completedCountExpr, s.history, next))
	}
	if s.length != nil {
		conds = append(conds, renderRanges("p.duration", s.length, next))
	}

	if len(conds) == 0 {
		return "true", nil
	}
	return strings.Join(conds, " AND "), args
}

// renderRanges ORs the ranges of a list dimension over expr. An active
// dimension with no valid ranges matches nothing.
func renderRanges(expr string, l *rangeList, next func(any) string) string {
	if len(l.ranges) == 0 {
		return "false"
	}
	parts := make([]string, 0, len(l.ranges))
	for _, r := range l.ranges {
		if r.max == noUpper {
			parts = append(parts, fmt.Sprintf("%s >= %s", expr, next(r.min)))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s BETWEEN %s AND %s", expr, next(r.min), next(r.max)))
	}
	return "(" + strings.Join(parts, " OR ") + ")"
}
