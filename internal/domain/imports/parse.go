package imports

import (
	"strconv"
	"strings"
	"time"

	"fieldpay/internal/domain/tickets"
	"fieldpay/internal/platform/tabular"
)

var aliasIndex = buildAliasIndex()

func buildAliasIndex() map[string]string {
	idx := map[string]string{}
	for column, aliases := range headerAliases {
		for _, alias := range aliases {
			idx[alias] = column
		}
	}
	return idx
}

// mapHeader returns column positions for a candidate header row. The first
// occurrence of a column wins.
func mapHeader(row []string) (map[string]int, bool) {
	columns := map[string]int{}
	for i, cell := range row {
		name := strings.Join(strings.Fields(tabular.NormalizeHeader(cell)), " ")
		name = strings.TrimSuffix(name, ":")
		column, ok := aliasIndex[name]
		if !ok {
			continue
		}
		if _, seen := columns[column]; !seen {
			columns[column] = i
		}
	}
	_, hasTicket := columns[colTicket]
	_, hasDate := columns[colDate]
	_, hasType := columns[colType]
	return columns, hasTicket && hasDate && hasType
}

func findHeader(rows [][]string) (int, map[string]int, bool) {
	limit := headerSearchRows
	if len(rows) < limit {
		limit = len(rows)
	}
	for i := 0; i < limit; i++ {
		if columns, ok := mapHeader(rows[i]); ok {
			return i, columns, true
		}
	}
	return -1, nil, false
}

// ParseDate accepts the common export layouts and Excel serial day numbers.
func ParseDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	if serial, err := strconv.ParseFloat(raw, 64); err == nil && serial > 20000 && serial < 80000 {
		base := time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)
		return base.AddDate(0, 0, int(serial)), true
	}
	return time.Time{}, false
}

func rawTicket(row []string, columns map[string]int) tickets.RawTicket {
	cell := func(column string) string {
		idx, ok := columns[column]
		if !ok {
			return ""
		}
		return tabular.Cell(row, idx)
	}
	return tickets.RawTicket{
		TicketNumber:   cell(colTicket),
		InstallType:    cell(colType),
		Spans:          cell(colSpans),
		ConduitFt:      cell(colConduit),
		JacksInstalled: cell(colJacks),
		CopperRemoved:  cell(colCopper),
		ExtraPerDiem:   cell(colExtraPD),
		CustomerName:   cell(colCustomer),
		Address:        cell(colAddress),
		Notes:          cell(colNotes),
	}
}
