package trucklog

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Derive fills Miles and MPG for logs in date order. prev is the last log
// before the range and may be nil. A reading lower than the previous one is
// treated as a replaced odometer and yields no derived miles.
func Derive(prev *Log, logs []Log) []Entry {
	sorted := append([]Log(nil), logs...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].LogDate.Before(sorted[j].LogDate) })

	lastOdometer := 0
	if prev != nil {
		lastOdometer = prev.Odometer
	}
	entries := make([]Entry, 0, len(sorted))
	for _, l := range sorted {
		e := Entry{Log: l, Miles: l.Mileage}
		if l.Mileage == 0 && l.Odometer > 0 && lastOdometer > 0 && l.Odometer > lastOdometer {
			e.Miles = l.Odometer - lastOdometer
			e.MilesDerived = true
		}
		if e.Miles > 0 && l.Gallons.IsPositive() {
			mpg := decimal.NewFromInt(int64(e.Miles)).DivRound(l.Gallons, 2)
			e.MPG = &mpg
		}
		if l.Odometer > 0 {
			lastOdometer = l.Odometer
		}
		entries = append(entries, e)
	}
	return entries
}

func Sum(entries []Entry) Totals {
	totals := Totals{Gallons: decimal.Zero, FuelCost: decimal.Zero}
	for _, e := range entries {
		totals.Miles += e.Miles
		totals.Gallons = totals.Gallons.Add(e.Gallons)
		totals.FuelCost = totals.FuelCost.Add(e.FuelCost)
	}
	return totals
}
