package committer

import (
	"context"
	"testing"

	"cloud.google.com/go/spanner"
	"github.com/stretchr/testify/assert"
)

func TestCommitPlan_Add(t *testing.T) {
	plan := NewPlan()
	assert.True(t, plan.IsEmpty())

	plan.Add(spanner.Update("about_me", []string{"id", "bio"}, []interface{}{int64(1), "hi"}))
	plan.Add(nil)
	plan.AddMultiple([]*spanner.Mutation{
		spanner.Update("education", []string{"id", "degree"}, []interface{}{int64(2), "BSc"}),
		nil,
	})

	assert.False(t, plan.IsEmpty())
	assert.Equal(t, 2, plan.Count())
	assert.Len(t, plan.Mutations(), 2)
}

func TestCommitter_EmptyPlanIsNoop(t *testing.T) {
	c := NewCommitter(nil)

	assert.NoError(t, c.Apply(context.Background(), NewPlan()))
	assert.NoError(t, c.ApplyIfExists(context.Background(), "about_me", spanner.Key{int64(1)}, NewPlan()))
}
