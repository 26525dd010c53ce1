// Package planner turns a registry snapshot into single-field commit operations.
package planner

import (
	"fmt"

	"github.com/light-bringer/cardsync-service/internal/app/card/domain"
)

// Group is the run of operations for one entity.
type Group struct {
	EntityKey  string
	EntityType domain.CardType
	EntityID   int64
	Label      string
	Operations []domain.CommitOperation
}

// Plan is the ordered output of Flatten.
type Plan struct {
	Groups  []Group
	Total   int
	Summary string
}

// Operations returns every operation of the plan in execution order.
func (p Plan) Operations() []domain.CommitOperation {
	out := make([]domain.CommitOperation, 0, p.Total)
	for _, g := range p.Groups {
		out = append(out, g.Operations...)
	}
	return out
}

// Flatten emits one operation per field: entities in snapshot order, fields
// in their registered order. The same snapshot always yields the same plan.
func Flatten(entries []domain.DirtyEntry) Plan {
	plan := Plan{Groups: make([]Group, 0, len(entries))}

	for _, entry := range entries {
		if len(entry.Fields) == 0 {
			continue
		}
		g := Group{
			EntityKey:  entry.EntityKey,
			EntityType: entry.EntityType,
			EntityID:   entry.EntityID,
			Label:      entry.Label,
			Operations: make([]domain.CommitOperation, 0, len(entry.Fields)),
		}
		for _, f := range entry.Fields {
			g.Operations = append(g.Operations, domain.CommitOperation{
				EntityKey:  entry.EntityKey,
				EntityType: entry.EntityType,
				EntityID:   entry.EntityID,
				FieldName:  f.Name,
				Value:      f.Value,
				Label:      entry.Label,
			})
		}
		plan.Total += len(g.Operations)
		plan.Groups = append(plan.Groups, g)
	}

	plan.Summary = Summarize(len(plan.Groups), plan.Total)
	return plan
}

// Summarize renders e.g. "2 cards with 3 fields in total".
func Summarize(cards, fields int) string {
	return fmt.Sprintf("%d %s with %d %s in total",
		cards, plural(cards, "card", "cards"),
		fields, plural(fields, "field", "fields"))
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
