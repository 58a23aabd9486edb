package catalog

import (
	"strings"

	"github.com/Adham-Emam/Forge-Api/internal/models"
)

// ProjectFacts is a project together with the derived aggregates the
// count-based filters need: how many bids it has attracted and how many
// of its owner's projects are completed.
type ProjectFacts struct {
	Project        models.Project
	OwnerCountry   string
	BidCount       int
	OwnerCompleted int
}

// Match evaluates the spec in memory, mirroring the SQL rendering.
// Used by the match selector, which already holds candidate rows after
// the skill intersection, and by tests exercising the composition rule
// without a database.
func (s *Spec) Match(f *ProjectFacts) bool {
	if s.budgetBad {
		return false
	}
	if s.search != "" && !matchesSearch(&f.Project, s.search) {
		return false
	}
	if len(s.types) > 0 && !containsString(s.types, f.Project.Type) {
		return false
	}
	if len(s.experience) > 0 {
		if f.Project.ExperienceLevel == nil || !containsString(s.experience, *f.Project.ExperienceLevel) {
			return false
		}
	}
	if s.budget != nil && !s.budget.contains(f.Project.Budget) {
		return false
	}
	if s.country != "" && f.OwnerCountry != s.country {
		return false
	}
	if s.proposals != nil && !s.proposals.contains(f.BidCount) {
		return false
	}
	if s.history != nil && !s.history.contains(f.OwnerCompleted) {
		return false
	}
	if s.length != nil && !s.length.contains(f.Project.Duration) {
		return false
	}
	return true
}

// matchesSearch checks the term case-insensitively against the title
// and the serialized skills list.
func matchesSearch(p *models.Project, term string) bool {
	term = strings.ToLower(term)
	if strings.Contains(strings.ToLower(p.Title), term) {
		return true
	}
	return strings.Contains(strings.ToLower(strings.Join(p.SkillsNeeded, ",")), term)
}

func containsString(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}

// Matcher decides whether a project's required skills fit a user.
// The naive intersection is fine at catalog scale; an inverted-index
// strategy can replace it behind the same interface.
type Matcher interface {
	Matches(skillsNeeded, skills, interests []string) bool
}

// SkillIntersect matches when skills_needed shares at least one element
// with the user's skills or interests. Exact, case-sensitive membership.
type SkillIntersect struct{}

func (SkillIntersect) Matches(skillsNeeded, skills, interests []string) bool {
	for _, needed := range skillsNeeded {
		if containsString(skills, needed) || containsString(interests, needed) {
			return true
		}
	}
	return false
}
