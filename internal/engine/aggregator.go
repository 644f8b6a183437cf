package engine

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"salesdash/internal/models"
)

// HourOrder controls how the by-hour grouping is ordered.
type HourOrder string

const (
	// HourOrderValue sorts hours ascending by summed total, like the product
	// line grouping. The hour axis is then not chronological.
	HourOrderValue HourOrder = "value"
	// HourOrderClock sorts hours 0..23.
	HourOrderClock HourOrder = "hour"
)

// ParseHourOrder maps a configuration value onto a HourOrder. Empty means value order.
func ParseHourOrder(s string) (HourOrder, error) {
	switch HourOrder(s) {
	case "", HourOrderValue:
		return HourOrderValue, nil
	case HourOrderClock:
		return HourOrderClock, nil
	default:
		return "", fmt.Errorf("unknown hour order %q (want %q or %q)", s, HourOrderValue, HourOrderClock)
	}
}

// AggregateOptions tunes how Aggregate orders its groupings.
type AggregateOptions struct {
	HourOrder HourOrder
}

// Aggregate groups the view by product line and by hour, summing Total, and
// computes the scalar summaries. It is a pure function of the view.
func Aggregate(v *View, opts AggregateOptions) models.AggregateResult {
	cs := v.store

	// 1. Accumulate (Array Indexing by dictionary ID / hour)
	numProds := len(cs.ProductLineDict)
	prodSum := make([]float64, numProds)
	prodSeen := make([]bool, numProds)
	var hourSum [24]float64
	var hourSeen [24]bool

	var total, ratings float64
	for _, idx := range v.indices {
		t := cs.Totals[idx]
		pid := cs.ProductLineIDs[idx]
		h := cs.Hours[idx]

		prodSum[pid] += t
		prodSeen[pid] = true
		hourSum[h] += t
		hourSeen[h] = true

		total += t
		ratings += cs.Ratings[idx]
	}

	// 2. Build groups in key order, so ties keep a deterministic order
	res := models.AggregateResult{
		ByProductLine: make([]models.CategoryTotal, 0, numProds),
		ByHour:        make([]models.HourTotal, 0, 24),
	}
	for pid, ok := range prodSeen {
		if ok {
			res.ByProductLine = append(res.ByProductLine, models.CategoryTotal{
				ProductLine: cs.ProductLineDict[pid], Total: prodSum[pid],
			})
		}
	}
	sort.SliceStable(res.ByProductLine, func(i, j int) bool {
		return res.ByProductLine[i].ProductLine < res.ByProductLine[j].ProductLine
	})

	for h, ok := range hourSeen {
		if ok {
			res.ByHour = append(res.ByHour, models.HourTotal{Hour: h, Total: hourSum[h]})
		}
	}

	// 3. Sort ascending by value
	sort.SliceStable(res.ByProductLine, func(i, j int) bool {
		return res.ByProductLine[i].Total < res.ByProductLine[j].Total
	})
	if opts.HourOrder != HourOrderClock {
		sort.SliceStable(res.ByHour, func(i, j int) bool { return res.ByHour[i].Total < res.ByHour[j].Total })
	}

	res.Summary = summarize(len(v.indices), total, ratings)
	return res
}

func summarize(count int, total, ratings float64) models.Summary {
	if count == 0 {
		return models.Summary{}
	}
	n := float64(count)
	mean := ratings / n
	stars := int(math.RoundToEven(mean))
	if stars < 0 {
		stars = 0
	}
	// RatingRounded must agree with the one-decimal card text, which rounds
	// the binary value half to even (6.25 is "6.2").
	rounded, _ := strconv.ParseFloat(strconv.FormatFloat(mean, 'f', 1, 64), 64)
	return models.Summary{
		Count:         count,
		TotalSales:    total,
		MeanSale:      total / n,
		MeanRating:    mean,
		RatingRounded: rounded,
		Stars:         stars,
	}
}
