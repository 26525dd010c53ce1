package m_work_experience

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestModel_UpdateMut(t *testing.T) {
	m := NewModel()

	assert.Nil(t, m.UpdateMut(1, nil))
	assert.Nil(t, m.UpdateMut(1, map[string]interface{}{}))
	assert.NotNil(t, m.UpdateMut(1, map[string]interface{}{CompanyName: "Acme", SortOrder: int64(2)}))
}

func TestReadColumns(t *testing.T) {
	cols := ReadColumns()
	assert.Equal(t, ID, cols[0])
	assert.Contains(t, cols, UpdatedAt)
	assert.Len(t, cols, 10)
}
