package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyFilter(t *testing.T) {
	store := MustColumnStore(sampleRows())

	sel := Selection{
		Cities:        []string{"Yangon", "Naypyitaw"},
		CustomerTypes: []string{"Member"},
		Genders:       []string{"Female", "Male"},
	}
	view, err := ApplyFilter(store, sel)
	require.NoError(t, err)

	// Rows 0, 3, 5 are members in the selected cities.
	require.Equal(t, 3, view.Len())
	assert.Equal(t, []int{0, 3, 5}, []int{view.Index(0), view.Index(1), view.Index(2)})

	in := func(v string, set []string) bool {
		for _, s := range set {
			if s == v {
				return true
			}
		}
		return false
	}
	matched := make(map[int]bool)
	for i := 0; i < view.Len(); i++ {
		matched[view.Index(i)] = true
	}
	for i := 0; i < store.Len(); i++ {
		r := store.Row(i)
		want := in(r.City, sel.Cities) && in(r.CustomerType, sel.CustomerTypes) && in(r.Gender, sel.Genders)
		assert.Equalf(t, want, matched[i], "row %d (%+v)", i, r)
	}
}

func TestApplyFilterEmptySelection(t *testing.T) {
	store := MustColumnStore(sampleRows())
	all := SelectAll(store)

	tests := map[string]Selection{
		"no cities":         {CustomerTypes: all.CustomerTypes, Genders: all.Genders},
		"no customer types": {Cities: all.Cities, Genders: all.Genders},
		"no genders":        {Cities: all.Cities, CustomerTypes: all.CustomerTypes, Genders: []string{}},
	}
	for name, sel := range tests {
		t.Run(name, func(t *testing.T) {
			view, err := ApplyFilter(store, sel)
			assert.ErrorIs(t, err, ErrEmptySelection)
			assert.Nil(t, view)
		})
	}
}

func TestApplyFilterUnknownValueMatchesNothing(t *testing.T) {
	store := MustColumnStore(sampleRows())
	sel := SelectAll(store)
	sel.Cities = []string{"Bago"}

	view, err := ApplyFilter(store, sel)
	require.NoError(t, err)
	assert.Zero(t, view.Len())
	assert.Empty(t, view.Rows(0, 10))
}

func TestApplyFilterDoesNotMutateStore(t *testing.T) {
	store := MustColumnStore(sampleRows())
	before := store.Options()

	_, err := ApplyFilter(store, Selection{
		Cities:        []string{"Yangon"},
		CustomerTypes: []string{"Normal"},
		Genders:       []string{"Male"},
	})
	require.NoError(t, err)
	assert.Equal(t, before, store.Options())
	assert.Equal(t, 6, store.Len())
}

func TestViewRows(t *testing.T) {
	store := MustColumnStore(sampleRows())
	view, err := ApplyFilter(store, SelectAll(store))
	require.NoError(t, err)

	rows := view.Rows(4, 10)
	require.Len(t, rows, 2)
	assert.Equal(t, "Mandalay", rows[0].City)
	assert.Equal(t, 18, rows[1].Hour)

	assert.Len(t, view.Rows(0, 0), 6)
	assert.Empty(t, view.Rows(6, 1))
}

func TestSelectAllUsesFirstSeenOrder(t *testing.T) {
	store := MustColumnStore(sampleRows())
	sel := SelectAll(store)
	assert.Equal(t, []string{"Yangon", "Naypyitaw", "Mandalay"}, sel.Cities)
	assert.Equal(t, []string{"Member", "Normal"}, sel.CustomerTypes)
	assert.Equal(t, []string{"Female", "Male"}, sel.Genders)
}
