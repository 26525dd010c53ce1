package domain

// FieldChange is one pending field edit.
type FieldChange struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// DirtyEntry holds the locally edited, not yet persisted fields of one card.
// Fields keep the order in which each field name was first registered; a
// repeated edit overwrites the value in place.
type DirtyEntry struct {
	EntityKey  string        `json:"entityKey"`
	EntityType CardType      `json:"entityType"`
	EntityID   int64         `json:"entityId"`
	Fields     []FieldChange `json:"fields"`
	Label      string        `json:"label"`
}

// Set overwrites the value of an existing field or appends a new one.
func (e *DirtyEntry) Set(name, value string) {
	for i := range e.Fields {
		if e.Fields[i].Name == name {
			e.Fields[i].Value = value
			return
		}
	}
	e.Fields = append(e.Fields, FieldChange{Name: name, Value: value})
}

// Value returns the pending value of a field.
func (e *DirtyEntry) Value(name string) (string, bool) {
	for _, f := range e.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}

// Remove drops a field, keeping the order of the others.
func (e *DirtyEntry) Remove(name string) {
	for i, f := range e.Fields {
		if f.Name == name {
			e.Fields = append(e.Fields[:i], e.Fields[i+1:]...)
			return
		}
	}
}

// FieldMap returns the fields as a name to value map.
func (e DirtyEntry) FieldMap() map[string]string {
	m := make(map[string]string, len(e.Fields))
	for _, f := range e.Fields {
		m[f.Name] = f.Value
	}
	return m
}

// Clone returns a deep copy.
func (e DirtyEntry) Clone() DirtyEntry {
	c := e
	c.Fields = append([]FieldChange(nil), e.Fields...)
	return c
}
