package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypeTable_PutKeepsPosition(t *testing.T) {
	table := NewTypeTable()
	table.Put("A", NewPrimitive(TypeInt))
	table.Put("B", NewPrimitive(TypeString))
	table.Put("A", NewPrimitive(TypeBoolean))

	assert.Equal(t, []string{"A", "B"}, table.Names())
	got, ok := table.Get("A")
	require.True(t, ok)
	assert.Equal(t, TypeBoolean, got.Signature())
	assert.Equal(t, 2, table.Len())
}

func TestTypeTable_InsertBefore(t *testing.T) {
	tests := []struct {
		name     string
		anchor   string
		key      string
		expected []string
	}{
		{name: "before first", anchor: "A", key: "X", expected: []string{"X", "A", "B", "C"}},
		{name: "before middle", anchor: "B", key: "X", expected: []string{"A", "X", "B", "C"}},
		{name: "missing anchor appends", anchor: "Z", key: "X", expected: []string{"A", "B", "C", "X"}},
		{name: "existing key stays", anchor: "A", key: "C", expected: []string{"A", "B", "C"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := NewTypeTable()
			for _, n := range []string{"A", "B", "C"} {
				table.Put(n, NewPrimitive(TypeInt))
			}
			table.InsertBefore(tt.anchor, tt.key, NewPrimitive(TypeString))

			assert.Equal(t, tt.expected, table.Names())
			got, ok := table.Get(tt.key)
			require.True(t, ok)
			assert.Equal(t, TypeString, got.Signature())
		})
	}
}

func TestTypeTable_Rename(t *testing.T) {
	table := NewTypeTable()
	table.Put("User", &Record{Closed: true, Fields: []Field{{Name: "id", Type: NewPrimitive(TypeInt)}}})
	table.Put("Users", &Array{Elem: &Reference{Name: "User"}})
	table.Put("Root", &Record{Closed: true, Fields: []Field{{Name: "owner", Type: &Reference{Name: "User"}}}})

	require.NoError(t, table.Rename("User", "User2"))

	assert.Equal(t, []string{"User2", "Users", "Root"}, table.Names())
	assert.False(t, table.Has("User"))

	users, _ := table.Get("Users")
	assert.Equal(t, "User2[]", users.Signature())
	root, _ := table.Get("Root")
	assert.Equal(t, "record {|User2 owner;|}", root.Signature())

	assert.Error(t, table.Rename("Missing", "Other"))
	assert.Error(t, table.Rename("Users", "Root"))
}

func TestTypeTable_SortByDependencies(t *testing.T) {
	table := NewTypeTable()
	table.Put("Root", &Record{Fields: []Field{
		{Name: "a", Type: &Reference{Name: "A"}},
		{Name: "b", Type: &Reference{Name: "B"}},
	}, Closed: true})
	table.Put("B", NewPrimitive(TypeInt))
	table.Put("A", &Array{Elem: &Reference{Name: "B"}})
	table.Put("Other", NewPrimitive(TypeString))

	table.SortByDependencies()

	assert.Equal(t, []string{"B", "A", "Root", "Other"}, table.Names())

	// an already ordered table is left alone
	table.SortByDependencies()
	assert.Equal(t, []string{"B", "A", "Root", "Other"}, table.Names())
}
