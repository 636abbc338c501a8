package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlan_Empty(t *testing.T) {
	plan := Filter{}.Plan()
	assert.Empty(t, plan.Predicates)
	assert.Nil(t, plan.Limit)
	assert.True(t, plan.Matches(&Listing{}))
}

func TestPlan_FeaturedFalseIsAFilter(t *testing.T) {
	plan := Filter{IsFeatured: boolp(false)}.Plan()

	require.Len(t, plan.Predicates, 1)
	assert.Equal(t, Equals(FieldIsFeatured, false), plan.Predicates[0])
	assert.True(t, plan.Matches(&Listing{IsFeatured: false}))
	assert.False(t, plan.Matches(&Listing{IsFeatured: true}))
}

func TestPlan_Conjunction(t *testing.T) {
	limit := 5
	plan := Filter{IsFeatured: boolp(true), OwnerID: strp("u1"), Limit: &limit}.Plan()

	require.Len(t, plan.Predicates, 2)
	require.NotNil(t, plan.Limit)
	assert.Equal(t, 5, *plan.Limit)
	assert.True(t, plan.Matches(&Listing{IsFeatured: true, OwnerID: "u1"}))
	assert.False(t, plan.Matches(&Listing{IsFeatured: true, OwnerID: "u2"}))
	assert.False(t, plan.Matches(&Listing{IsFeatured: false, OwnerID: "u1"}))
}

func TestPlan_NegativeLimitClamped(t *testing.T) {
	limit := -4
	plan := Filter{Limit: &limit}.Plan()
	require.NotNil(t, plan.Limit)
	assert.Zero(t, *plan.Limit)
	assert.Equal(t, -4, limit)
}

func TestMatches_RejectsUnknownField(t *testing.T) {
	plan := QueryPlan{Predicates: []Predicate{{Field: Field(99), Value: true}}}
	assert.False(t, plan.Matches(&Listing{}))
	assert.Equal(t, "unknown", Field(99).String())
	assert.Equal(t, "ownerId", FieldOwnerID.String())
}
