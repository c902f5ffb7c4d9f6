package reconcile

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"fieldpay/internal/domain/pay"
)

const headerScanRows = 10

var (
	ticketPattern = regexp.MustCompile(`\b(?:[A-Za-z]{2,3})?\d{7,}\b`)
	amountPattern = regexp.MustCompile(`\$\s?-?\d[\d,]*(?:\.\d{1,2})?|-?\b\d{1,3}(?:,\d{3})+(?:\.\d{1,2})?\b|-?\b\d+\.\d{2}\b`)
)

// FromTable reads a scrub report laid out as rows. The ticket column is the
// first header mentioning "ticket" or "order"; the amount column is the first
// later header mentioning "amount", "pay" or "total". Rows without a ticket or
// a readable amount are skipped. A ticket listed more than once is summed.
func FromTable(rows [][]string) SourceResult {
	result := SourceResult{Amounts: map[string]decimal.Decimal{}}

	headerRow, ticketIdx, amountIdx := findHeader(rows)
	if headerRow < 0 {
		result.Skipped = countNonEmpty(rows)
		return result
	}

	for _, row := range rows[headerRow+1:] {
		if isBlankRow(row) {
			continue
		}
		ticket := cell(row, ticketIdx)
		amount, ok := pay.ParseAmount(cell(row, amountIdx))
		if ticket == "" || !ok {
			result.Skipped++
			continue
		}
		result.add(ticket, amount)
	}
	return result
}

// FromText reads pasted scrub text. Each line holding a ticket-like token and
// a currency formatted number is one entry, using the last amount on the line.
func FromText(text string) SourceResult {
	result := SourceResult{Amounts: map[string]decimal.Decimal{}}

	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		ticket, amount, ok := parseTextLine(line)
		if !ok {
			result.Skipped++
			continue
		}
		result.add(ticket, amount)
	}
	return result
}

func parseTextLine(line string) (string, decimal.Decimal, bool) {
	amountSpans := amountPattern.FindAllStringIndex(line, -1)
	if len(amountSpans) == 0 {
		return "", decimal.Zero, false
	}

	ticket := ""
	for _, span := range ticketPattern.FindAllStringIndex(line, -1) {
		if overlapsAny(span, amountSpans) {
			continue
		}
		ticket = line[span[0]:span[1]]
		break
	}
	if ticket == "" {
		return "", decimal.Zero, false
	}

	last := amountSpans[len(amountSpans)-1]
	amount, ok := pay.ParseAmount(line[last[0]:last[1]])
	if !ok {
		return "", decimal.Zero, false
	}
	return ticket, amount, true
}

func (r *SourceResult) add(ticket string, amount decimal.Decimal) {
	key := normalizeTicket(ticket)
	r.Amounts[key] = r.Amounts[key].Add(amount)
	r.Parsed++
}

func findHeader(rows [][]string) (int, int, int) {
	for i := 0; i < len(rows) && i < headerScanRows; i++ {
		ticketIdx := -1
		for j, raw := range rows[i] {
			header := strings.ToLower(strings.TrimSpace(raw))
			if ticketIdx < 0 {
				if strings.Contains(header, "ticket") || strings.Contains(header, "order") {
					ticketIdx = j
				}
				continue
			}
			if strings.Contains(header, "amount") || strings.Contains(header, "pay") || strings.Contains(header, "total") {
				return i, ticketIdx, j
			}
		}
	}
	return -1, -1, -1
}

func overlapsAny(span []int, others [][]int) bool {
	for _, other := range others {
		if span[0] < other[1] && other[0] < span[1] {
			return true
		}
	}
	return false
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func isBlankRow(row []string) bool {
	for _, value := range row {
		if strings.TrimSpace(value) != "" {
			return false
		}
	}
	return true
}

func countNonEmpty(rows [][]string) int {
	count := 0
	for _, row := range rows {
		if !isBlankRow(row) {
			count++
		}
	}
	return count
}
