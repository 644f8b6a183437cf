package engine

import (
	"errors"

	"salesdash/internal/models"
)

// ErrEmptySelection is returned when a filter dimension has nothing selected.
// An empty dimension is treated as an invalid choice, not as "match nothing".
var ErrEmptySelection = errors.New("empty filter selection")

// Selection holds the selected values of the three filter dimensions.
type Selection struct {
	Cities        []string `json:"cities"`
	CustomerTypes []string `json:"customer_types"`
	Genders       []string `json:"genders"`
}

// SelectAll selects every value present in the store.
func SelectAll(cs *ColumnStore) Selection {
	opts := cs.Options()
	return Selection{
		Cities:        opts.Cities,
		CustomerTypes: opts.CustomerTypes,
		Genders:       opts.Genders,
	}
}

// Validate returns ErrEmptySelection when any dimension has nothing selected.
func (s Selection) Validate() error {
	if len(s.Cities) == 0 || len(s.CustomerTypes) == 0 || len(s.Genders) == 0 {
		return ErrEmptySelection
	}
	return nil
}

// Options converts the selection into its wire form.
func (s Selection) Options() models.FilterOptions {
	return models.FilterOptions{
		Cities:        s.Cities,
		CustomerTypes: s.CustomerTypes,
		Genders:       s.Genders,
	}
}

// View is a filtered subset of a ColumnStore: an ordered list of row indexes.
// It never copies row data.
type View struct {
	store   *ColumnStore
	indices []int
}

func (v *View) Len() int {
	return len(v.indices)
}

// Index returns the store row index of the i-th row of the view.
func (v *View) Index(i int) int {
	return v.indices[i]
}

// Rows materialises the rows in [offset, offset+limit).
func (v *View) Rows(offset, limit int) []models.Row {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(v.indices) {
		return []models.Row{}
	}
	end := offset + limit
	if limit <= 0 || end > len(v.indices) {
		end = len(v.indices)
	}
	rows := make([]models.Row, 0, end-offset)
	for _, idx := range v.indices[offset:end] {
		rows = append(rows, v.store.Row(idx))
	}
	return rows
}

// ApplyFilter returns the rows whose city, customer type and gender are each
// in the corresponding selected set. Dimensions are AND-combined; values within
// a dimension are OR-combined.
func ApplyFilter(cs *ColumnStore, sel Selection) (*View, error) {
	if err := sel.Validate(); err != nil {
		return nil, err
	}

	// Resolve membership once per dictionary ID instead of once per row.
	cities := membership(cs.CityDict, sel.Cities)
	types := membership(cs.CustomerTypeDict, sel.CustomerTypes)
	genders := membership(cs.GenderDict, sel.Genders)

	indices := make([]int, 0, cs.Len())
	for i := 0; i < cs.Len(); i++ {
		if cities[cs.CityIDs[i]] && types[cs.CustomerTypeIDs[i]] && genders[cs.GenderIDs[i]] {
			indices = append(indices, i)
		}
	}
	return &View{store: cs, indices: indices}, nil
}

func membership(dict []string, selected []string) []bool {
	set := make(map[string]struct{}, len(selected))
	for _, s := range selected {
		set[s] = struct{}{}
	}
	out := make([]bool, len(dict))
	for id, v := range dict {
		_, out[id] = set[v]
	}
	return out
}
