package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adham-Emam/Forge-Api/internal/models"
)

func facts(p models.Project) *ProjectFacts {
	return &ProjectFacts{Project: p}
}

func TestParseSpec_MalformedBudgetPoisonsQuery(t *testing.T) {
	for _, bad := range []string{"abc", "100", "100-", "-100", "10--20", "a-b", "-5-10"} {
		spec := ParseSpec(Params{Budget: bad})
		assert.True(t, spec.Empty(), "budget %q should poison the spec", bad)
		assert.False(t, spec.Match(facts(models.Project{Budget: 1000})),
			"poisoned spec must match nothing (budget %q)", bad)
	}
}

func TestParseSpec_BudgetRange(t *testing.T) {
	spec := ParseSpec(Params{Budget: "1000-1500"})
	require.False(t, spec.Empty())

	assert.True(t, spec.Match(facts(models.Project{Budget: 1000})))
	assert.True(t, spec.Match(facts(models.Project{Budget: 1500})))
	assert.False(t, spec.Match(facts(models.Project{Budget: 999})))
	assert.False(t, spec.Match(facts(models.Project{Budget: 2000})))
}

func TestParseSpec_ProposalsSkipsMalformedEntries(t *testing.T) {
	// "abc" is dropped; only 5-10 is evaluated.
	spec := ParseSpec(Params{Proposals: "abc,5-10"})

	assert.True(t, spec.Match(&ProjectFacts{BidCount: 7}))
	assert.False(t, spec.Match(&ProjectFacts{BidCount: 3}))
	assert.False(t, spec.Match(&ProjectFacts{BidCount: 11}))
}

func TestParseSpec_AllEntriesMalformedMatchesNothing(t *testing.T) {
	// An active dimension whose every entry is malformed is an empty
	// disjunction, which is false, not "unconstrained".
	spec := ParseSpec(Params{Proposals: "abc,def"})
	assert.False(t, spec.Match(&ProjectFacts{BidCount: 0}))
	assert.False(t, spec.Match(&ProjectFacts{BidCount: 5}))
}

func TestParseSpec_ProjectLengthMonthsToDays(t *testing.T) {
	// 1-2 months converts to the day range [30, 61]:
	// round(1 × 30.44) = 30, round(2 × 30.44) = 61.
	spec := ParseSpec(Params{ProjectLength: "1-2"})

	assert.True(t, spec.Match(facts(models.Project{Duration: 30})))
	assert.True(t, spec.Match(facts(models.Project{Duration: 45})))
	assert.True(t, spec.Match(facts(models.Project{Duration: 61})))
	assert.False(t, spec.Match(facts(models.Project{Duration: 29})))
	assert.False(t, spec.Match(facts(models.Project{Duration: 70})))
}

func TestParseSpec_ClientHistory(t *testing.T) {
	tenPlus := ParseSpec(Params{ClientHistory: "10+"})
	assert.True(t, tenPlus.Match(&ProjectFacts{OwnerCompleted: 10}))
	assert.True(t, tenPlus.Match(&ProjectFacts{OwnerCompleted: 250}))
	assert.False(t, tenPlus.Match(&ProjectFacts{OwnerCompleted: 9}))

	exact := ParseSpec(Params{ClientHistory: "3"})
	assert.True(t, exact.Match(&ProjectFacts{OwnerCompleted: 3}))
	assert.False(t, exact.Match(&ProjectFacts{OwnerCompleted: 4}))

	mixed := ParseSpec(Params{ClientHistory: "0-2,10+"})
	assert.True(t, mixed.Match(&ProjectFacts{OwnerCompleted: 1}))
	assert.True(t, mixed.Match(&ProjectFacts{OwnerCompleted: 12}))
	assert.False(t, mixed.Match(&ProjectFacts{OwnerCompleted: 5}))
}

func TestMatch_Search(t *testing.T) {
	p := models.Project{
		Title:        "Backend API rewrite",
		SkillsNeeded: []string{"Go", "PostgreSQL"},
	}

	backend := ParseSpec(Params{Search: "backend"})
	assert.True(t, backend.Match(facts(p)))
	api := ParseSpec(Params{Search: "API"})
	assert.True(t, api.Match(facts(p)))
	postgres := ParseSpec(Params{Search: "postgres"})
	assert.True(t, postgres.Match(facts(p)), "skills list is searched too")
	python := ParseSpec(Params{Search: "python"})
	assert.False(t, python.Match(facts(p)))
}

func TestMatch_TypeAndExperienceSets(t *testing.T) {
	expert := models.ExperienceExpert
	p := models.Project{Type: models.ProjectTypeFreelancer, ExperienceLevel: &expert}

	freelancer := ParseSpec(Params{ProjectType: "freelancer"})
	assert.True(t, freelancer.Match(facts(p)))
	both := ParseSpec(Params{ProjectType: "exchange,freelancer"})
	assert.True(t, both.Match(facts(p)))
	exchange := ParseSpec(Params{ProjectType: "exchange"})
	assert.False(t, exchange.Match(facts(p)))

	midExpert := ParseSpec(Params{ExperienceLevel: "intermediate,expert"})
	assert.True(t, midExpert.Match(facts(p)))
	beginner := ParseSpec(Params{ExperienceLevel: "beginner"})
	assert.False(t, beginner.Match(facts(p)))

	// A project without a level never matches an experience constraint.
	noLevel := models.Project{Type: models.ProjectTypeFreelancer}
	expertOnly := ParseSpec(Params{ExperienceLevel: "expert"})
	assert.False(t, expertOnly.Match(facts(noLevel)))
}

func TestMatch_Country(t *testing.T) {
	spec := ParseSpec(Params{Country: "Egypt"})
	assert.True(t, spec.Match(&ProjectFacts{OwnerCountry: "Egypt"}))
	assert.False(t, spec.Match(&ProjectFacts{OwnerCountry: "Germany"}))
	assert.False(t, spec.Match(&ProjectFacts{}))
}

func TestMatch_DimensionsAnd(t *testing.T) {
	spec := ParseSpec(Params{
		Search:      "api",
		ProjectType: "freelancer",
		Budget:      "100-1000",
	})
	base := models.Project{
		Title:  "API work",
		Type:   models.ProjectTypeFreelancer,
		Budget: 500,
	}
	assert.True(t, spec.Match(facts(base)))

	wrongBudget := base
	wrongBudget.Budget = 50
	assert.False(t, spec.Match(facts(wrongBudget)), "one failing dimension fails the whole spec")
}

func TestSkillIntersect(t *testing.T) {
	m := SkillIntersect{}

	assert.True(t, m.Matches([]string{"Go", "Docker"}, []string{"Go"}, nil))
	assert.True(t, m.Matches([]string{"Rust"}, nil, []string{"Rust"}), "interests count")
	assert.False(t, m.Matches([]string{"Go"}, []string{"go"}, nil), "membership is case-sensitive")
	assert.False(t, m.Matches([]string{"Go"}, nil, nil))
	assert.False(t, m.Matches(nil, []string{"Go"}, nil), "no required skills means no overlap")
}
