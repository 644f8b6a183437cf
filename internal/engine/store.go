package engine

import (
	"fmt"

	"salesdash/internal/models"
)

// ColumnStore holds the sales table in Struct-of-Arrays format.
// It is built once by the loader and never mutated afterwards.
type ColumnStore struct {
	// Data Columns (Flat Arrays)
	Totals  []float64
	Ratings []float64
	Times   []string
	Hours   []int8

	// Dictionary Encoded IDs (0..N)
	CityIDs         []int32
	CustomerTypeIDs []int32
	GenderIDs       []int32
	ProductLineIDs  []int32

	// Dictionaries (ID -> String), in first-seen order
	CityDict         []string
	CustomerTypeDict []string
	GenderDict       []string
	ProductLineDict  []string
}

// Len returns the number of rows.
func (cs *ColumnStore) Len() int {
	return len(cs.Totals)
}

// Row materialises row i.
func (cs *ColumnStore) Row(i int) models.Row {
	return models.Row{
		City:         cs.CityDict[cs.CityIDs[i]],
		CustomerType: cs.CustomerTypeDict[cs.CustomerTypeIDs[i]],
		Gender:       cs.GenderDict[cs.GenderIDs[i]],
		ProductLine:  cs.ProductLineDict[cs.ProductLineIDs[i]],
		Total:        cs.Totals[i],
		Rating:       cs.Ratings[i],
		Time:         cs.Times[i],
		Hour:         int(cs.Hours[i]),
	}
}

// Options returns the distinct values of the three filter dimensions.
// Callers get copies; the dictionaries stay private to the store.
func (cs *ColumnStore) Options() models.FilterOptions {
	return models.FilterOptions{
		Cities:        append([]string(nil), cs.CityDict...),
		CustomerTypes: append([]string(nil), cs.CustomerTypeDict...),
		Genders:       append([]string(nil), cs.GenderDict...),
	}
}

// dictionary assigns dense IDs to category values in first-seen order.
type dictionary struct {
	ids  map[string]int32
	list []string
}

func newDictionary() *dictionary {
	return &dictionary{ids: make(map[string]int32)}
}

func (d *dictionary) id(s string) int32 {
	if id, ok := d.ids[s]; ok {
		return id
	}
	id := int32(len(d.list))
	d.list = append(d.list, s)
	d.ids[s] = id
	return id
}

// builder appends rows into a fresh ColumnStore.
type builder struct {
	store *ColumnStore

	city, custType, gender, prodLine *dictionary
}

func newBuilder(capacity int) *builder {
	return &builder{
		store: &ColumnStore{
			Totals:          make([]float64, 0, capacity),
			Ratings:         make([]float64, 0, capacity),
			Times:           make([]string, 0, capacity),
			Hours:           make([]int8, 0, capacity),
			CityIDs:         make([]int32, 0, capacity),
			CustomerTypeIDs: make([]int32, 0, capacity),
			GenderIDs:       make([]int32, 0, capacity),
			ProductLineIDs:  make([]int32, 0, capacity),
		},
		city:     newDictionary(),
		custType: newDictionary(),
		gender:   newDictionary(),
		prodLine: newDictionary(),
	}
}

// add appends r. Hours outside 0..23 are rejected because the aggregator
// indexes a fixed 24-slot array by hour.
func (b *builder) add(r models.Row) error {
	if r.Hour < 0 || r.Hour > 23 {
		return fmt.Errorf("%w: hour %d out of range 0-23", ErrMalformedRow, r.Hour)
	}
	s := b.store
	s.Totals = append(s.Totals, r.Total)
	s.Ratings = append(s.Ratings, r.Rating)
	s.Times = append(s.Times, r.Time)
	s.Hours = append(s.Hours, int8(r.Hour))
	s.CityIDs = append(s.CityIDs, b.city.id(r.City))
	s.CustomerTypeIDs = append(s.CustomerTypeIDs, b.custType.id(r.CustomerType))
	s.GenderIDs = append(s.GenderIDs, b.gender.id(r.Gender))
	s.ProductLineIDs = append(s.ProductLineIDs, b.prodLine.id(r.ProductLine))
	return nil
}

func (b *builder) build() *ColumnStore {
	b.store.CityDict = b.city.list
	b.store.CustomerTypeDict = b.custType.list
	b.store.GenderDict = b.gender.list
	b.store.ProductLineDict = b.prodLine.list
	return b.store
}

// NewColumnStore builds a store from materialised rows. The store keeps no
// reference to rows.
func NewColumnStore(rows []models.Row) (*ColumnStore, error) {
	b := newBuilder(len(rows))
	for i, r := range rows {
		if err := b.add(r); err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
	}
	return b.build(), nil
}

// MustColumnStore is like NewColumnStore but panics on invalid rows.
// It simplifies fixtures whose rows are known to be valid.
func MustColumnStore(rows []models.Row) *ColumnStore {
	cs, err := NewColumnStore(rows)
	if err != nil {
		panic(err)
	}
	return cs
}
