package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salesdash/internal/models"
)

func TestAggregate(t *testing.T) {
	// Scenario:
	// Row 0: Yangon, Member, Female, Health, Total 100, Rating 7, 10h
	// Row 1: Yangon, Normal, Male,   Health, Total 50,  Rating 5, 10h
	store := MustColumnStore([]models.Row{
		{City: "Yangon", CustomerType: "Member", Gender: "Female", ProductLine: "Health", Total: 100, Rating: 7, Time: "10:00:00", Hour: 10},
		{City: "Yangon", CustomerType: "Normal", Gender: "Male", ProductLine: "Health", Total: 50, Rating: 5, Time: "10:30:00", Hour: 10},
	})

	view, err := ApplyFilter(store, Selection{
		Cities:        []string{"Yangon"},
		CustomerTypes: []string{"Member", "Normal"},
		Genders:       []string{"Female", "Male"},
	})
	require.NoError(t, err)
	require.Equal(t, 2, view.Len())

	res := Aggregate(view, AggregateOptions{})

	assert.Equal(t, []models.CategoryTotal{{ProductLine: "Health", Total: 150}}, res.ByProductLine)
	assert.Equal(t, []models.HourTotal{{Hour: 10, Total: 150}}, res.ByHour)
	assert.Equal(t, models.Summary{
		Count:         2,
		TotalSales:    150,
		MeanSale:      75,
		MeanRating:    6,
		RatingRounded: 6,
		Stars:         6,
	}, res.Summary)
}

func TestAggregateSortsAscendingByValue(t *testing.T) {
	store := MustColumnStore(sampleRows())
	view, err := ApplyFilter(store, SelectAll(store))
	require.NoError(t, err)

	res := Aggregate(view, AggregateOptions{HourOrder: HourOrderValue})

	lines := make([]string, 0, len(res.ByProductLine))
	for _, c := range res.ByProductLine {
		lines = append(lines, c.ProductLine)
	}
	assert.Equal(t, []string{"Home and lifestyle", "Sports and travel", "Electronic accessories", "Health and beauty"}, lines)

	hours := make([]int, 0, len(res.ByHour))
	for _, h := range res.ByHour {
		hours = append(hours, h.Hour)
	}
	assert.Equal(t, []int{20, 18, 10, 13}, hours)

	for i := 1; i < len(res.ByProductLine); i++ {
		assert.LessOrEqual(t, res.ByProductLine[i-1].Total, res.ByProductLine[i].Total)
	}
	for i := 1; i < len(res.ByHour); i++ {
		assert.LessOrEqual(t, res.ByHour[i-1].Total, res.ByHour[i].Total)
	}
}

func TestAggregateClockOrder(t *testing.T) {
	store := MustColumnStore(sampleRows())
	view, err := ApplyFilter(store, SelectAll(store))
	require.NoError(t, err)

	res := Aggregate(view, AggregateOptions{HourOrder: HourOrderClock})

	hours := make([]int, 0, len(res.ByHour))
	for _, h := range res.ByHour {
		hours = append(hours, h.Hour)
	}
	assert.Equal(t, []int{10, 13, 18, 20}, hours)
}

func TestAggregateGroupingsPartitionTotal(t *testing.T) {
	store := MustColumnStore(sampleRows())
	selections := []Selection{
		SelectAll(store),
		{Cities: []string{"Yangon"}, CustomerTypes: []string{"Member", "Normal"}, Genders: []string{"Male"}},
		{Cities: []string{"Naypyitaw", "Mandalay"}, CustomerTypes: []string{"Normal"}, Genders: []string{"Female", "Male"}},
	}
	for _, sel := range selections {
		view, err := ApplyFilter(store, sel)
		require.NoError(t, err)
		res := Aggregate(view, AggregateOptions{})

		var byLine, byHour float64
		for _, c := range res.ByProductLine {
			byLine += c.Total
		}
		for _, h := range res.ByHour {
			byHour += h.Total
		}
		assert.InDelta(t, res.Summary.TotalSales, byLine, 1e-9)
		assert.InDelta(t, res.Summary.TotalSales, byHour, 1e-9)
	}
}

func TestAggregateSummary(t *testing.T) {
	store := MustColumnStore(sampleRows())
	view, err := ApplyFilter(store, SelectAll(store))
	require.NoError(t, err)

	s := Aggregate(view, AggregateOptions{}).Summary
	assert.Equal(t, 6, s.Count)
	assert.InDelta(t, 2720.77, s.TotalSales, 1e-9)
	assert.InDelta(t, 2720.77/6, s.MeanSale, 1e-9)
	assert.InDelta(t, 43.9/6, s.MeanRating, 1e-9)
	assert.Equal(t, 7.3, s.RatingRounded)
	assert.Equal(t, 7, s.Stars)
}

func TestAggregateEmptyView(t *testing.T) {
	store := MustColumnStore(sampleRows())
	sel := SelectAll(store)
	sel.Cities = []string{"Bago"}

	view, err := ApplyFilter(store, sel)
	require.NoError(t, err)

	res := Aggregate(view, AggregateOptions{})
	assert.True(t, res.Summary.Empty())
	assert.Equal(t, models.Summary{}, res.Summary)
	assert.Empty(t, res.ByProductLine)
	assert.Empty(t, res.ByHour)
}

func TestAggregateTiesKeepKeyOrder(t *testing.T) {
	store := MustColumnStore([]models.Row{
		{City: "A", CustomerType: "Member", Gender: "Male", ProductLine: "Sports", Total: 10, Rating: 6, Hour: 15},
		{City: "A", CustomerType: "Member", Gender: "Male", ProductLine: "Food", Total: 10, Rating: 7, Hour: 9},
	})
	view, err := ApplyFilter(store, SelectAll(store))
	require.NoError(t, err)

	res := Aggregate(view, AggregateOptions{})
	assert.Equal(t, "Food", res.ByProductLine[0].ProductLine)
	assert.Equal(t, "Sports", res.ByProductLine[1].ProductLine)
	assert.Equal(t, 9, res.ByHour[0].Hour)
	assert.Equal(t, 15, res.ByHour[1].Hour)

	// 6.5 rounds half to even.
	assert.Equal(t, 6.5, res.Summary.RatingRounded)
	assert.Equal(t, 6, res.Summary.Stars)
}

func TestAggregateRatingRoundsLikeCard(t *testing.T) {
	// mean 6.25 has an exact binary form, so half to even gives 6.2
	store := MustColumnStore([]models.Row{
		{City: "A", CustomerType: "Member", Gender: "Male", ProductLine: "Food", Total: 10, Rating: 6.0, Hour: 9},
		{City: "A", CustomerType: "Member", Gender: "Male", ProductLine: "Food", Total: 20, Rating: 6.5, Hour: 9},
	})
	view, err := ApplyFilter(store, SelectAll(store))
	require.NoError(t, err)

	s := Aggregate(view, AggregateOptions{}).Summary
	assert.Equal(t, 6.25, s.MeanRating)
	assert.Equal(t, 6.2, s.RatingRounded)
	assert.Equal(t, 6, s.Stars)
}

func TestAggregateIsIdempotent(t *testing.T) {
	store := MustColumnStore(sampleRows())
	sel := Selection{Cities: []string{"Yangon", "Mandalay"}, CustomerTypes: []string{"Normal", "Member"}, Genders: []string{"Male"}}

	v1, err := ApplyFilter(store, sel)
	require.NoError(t, err)
	v2, err := ApplyFilter(store, sel)
	require.NoError(t, err)

	assert.Equal(t, Aggregate(v1, AggregateOptions{}), Aggregate(v2, AggregateOptions{}))
}

func TestParseHourOrder(t *testing.T) {
	o, err := ParseHourOrder("")
	require.NoError(t, err)
	assert.Equal(t, HourOrderValue, o)

	o, err = ParseHourOrder("hour")
	require.NoError(t, err)
	assert.Equal(t, HourOrderClock, o)

	_, err = ParseHourOrder("alphabetical")
	assert.Error(t, err)
}
