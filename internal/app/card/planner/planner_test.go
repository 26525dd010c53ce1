package planner

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/light-bringer/cardsync-service/internal/app/card/domain"
	"github.com/light-bringer/cardsync-service/internal/app/card/registry"
)

func TestFlatten_TotalIsSumOfFields(t *testing.T) {
	tests := []struct {
		name   string
		counts []int
	}{
		{"empty", nil},
		{"one entity one field", []int{1}},
		{"mixed", []int{2, 1, 4}},
		{"many", []int{3, 3, 3, 3, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var entries []domain.DirtyEntry
			want := 0
			for i, n := range tt.counts {
				e := domain.DirtyEntry{
					EntityKey:  fmt.Sprintf("work_%d", i),
					EntityType: domain.CardWorkExperience,
					EntityID:   int64(i),
				}
				for j := 0; j < n; j++ {
					e.Set(fmt.Sprintf("f%d", j), "v")
				}
				entries = append(entries, e)
				want += n
			}

			plan := Flatten(entries)
			assert.Equal(t, want, plan.Total)
			assert.Len(t, plan.Operations(), want)
			assert.Len(t, plan.Groups, len(tt.counts))
		})
	}
}

func TestFlatten_OrderAndDeterminism(t *testing.T) {
	r := registry.New()
	r.Register("work_1", domain.CardWorkExperience, 1, []domain.FieldChange{{Name: "company_name", Value: "Acme"}}, "Acme")
	r.Register("education_5", domain.CardEducation, 5, []domain.FieldChange{{Name: "degree", Value: "BSc"}}, "MIT")
	r.Register("work_1", domain.CardWorkExperience, 1, []domain.FieldChange{{Name: "year", Value: "2024"}}, "")

	snap := r.Snapshot()
	first := Flatten(snap)
	second := Flatten(snap)
	assert.Equal(t, first, second)

	ops := first.Operations()
	require.Len(t, ops, 3)
	assert.Equal(t, "company_name", ops[0].FieldName)
	assert.Equal(t, "year", ops[1].FieldName)
	assert.Equal(t, int64(1), ops[1].EntityID)
	assert.Equal(t, "Acme", ops[1].Label)
	assert.Equal(t, "degree", ops[2].FieldName)
	assert.Equal(t, domain.CardEducation, ops[2].EntityType)

	assert.Equal(t, domain.FieldChange{Name: "year", Value: "2024"}, ops[1].Change())
}

func TestFlatten_RepeatedFieldCountsOnce(t *testing.T) {
	r := registry.New()
	r.Register("about_1", domain.CardAboutMe, 1, []domain.FieldChange{{Name: "bio", Value: "a"}}, "")
	r.Register("about_1", domain.CardAboutMe, 1, []domain.FieldChange{{Name: "bio", Value: "b"}}, "")

	plan := Flatten(r.Snapshot())
	require.Equal(t, 1, plan.Total)
	assert.Equal(t, "b", plan.Operations()[0].Value)
}

func TestFlatten_SkipsEntriesWithoutFields(t *testing.T) {
	plan := Flatten([]domain.DirtyEntry{{EntityKey: "work_1"}})
	assert.Zero(t, plan.Total)
	assert.Empty(t, plan.Groups)
	assert.Equal(t, "0 cards with 0 fields in total", plan.Summary)
}

func TestSummarize(t *testing.T) {
	assert.Equal(t, "1 card with 1 field in total", Summarize(1, 1))
	assert.Equal(t, "2 cards with 3 fields in total", Summarize(2, 3))
	assert.Equal(t, "1 card with 4 fields in total", Summarize(1, 4))
}
