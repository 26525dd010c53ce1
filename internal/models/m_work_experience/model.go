package m_work_experience

import (
	"sort"

	"cloud.google.com/go/spanner"
)

// Model provides type-safe mutations for the work_experience table.
type Model struct{}

// NewModel creates a new Model instance.
func NewModel() *Model {
	return &Model{}
}

// InsertMut creates a mutation that inserts or replaces a work-experience row.
func (m *Model) InsertMut(data *Data) *spanner.Mutation {
	mut, _ := spanner.InsertOrUpdateStruct(TableName, data)
	return mut
}

// UpdateMut creates a mutation for updating specific columns of one row.
// updated_at is always set to the commit timestamp. Columns are emitted in
// sorted order so the mutation is deterministic.
func (m *Model) UpdateMut(id int64, updates map[string]interface{}) *spanner.Mutation {
	if len(updates) == 0 {
		return nil
	}

	names := make([]string, 0, len(updates))
	for col := range updates {
		if col == ID || col == UpdatedAt {
			continue
		}
		names = append(names, col)
	}
	sort.Strings(names)

	columns := make([]string, 0, len(names)+2)
	values := make([]interface{}, 0, len(names)+2)
	columns = append(columns, ID)
	values = append(values, id)
	for _, col := range names {
		columns = append(columns, col)
		values = append(values, updates[col])
	}
	columns = append(columns, UpdatedAt)
	values = append(values, spanner.CommitTimestamp)

	return spanner.Update(TableName, columns, values)
}

// DeleteMut creates a mutation for deleting a row.
func (m *Model) DeleteMut(id int64) *spanner.Mutation {
	return spanner.Delete(TableName, spanner.Key{id})
}
