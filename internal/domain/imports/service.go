package imports

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/google/uuid"

	"fieldpay/internal/domain/tickets"
	"fieldpay/internal/platform/tabular"
)

type TicketCreator interface {
	CreateBatch(ctx context.Context, list []tickets.Ticket) ([]tickets.Ticket, map[int]error, error)
}

type Service struct {
	store   StoreAPI
	tickets TicketCreator
}

func NewService(store StoreAPI, creator TicketCreator) *Service {
	return &Service{store: store, tickets: creator}
}

// Import reads an uploaded job sheet and stores every usable row as a ticket
// priced with the current rate card. Row problems are reported as issues and
// never abort the batch.
func (s *Service) Import(ctx context.Context, userID, filename string, data []byte) (Result, error) {
	checksum := tabular.Checksum(data)
	seen, err := s.store.HasImported(ctx, userID, checksum)
	if err != nil {
		return Result{}, fmt.Errorf("check previous imports: %w", err)
	}
	if seen {
		return Result{}, ErrDuplicateImport
	}

	rows, err := tabular.ReadRows(data, filename)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrUnreadableFile, err)
	}
	headerIdx, columns, ok := findHeader(rows)
	if !ok {
		return Result{}, ErrNoHeader
	}

	batch := Batch{
		ID:       uuid.NewString(),
		UserID:   userID,
		Filename: filepath.Base(filename),
		Checksum: checksum,
	}
	result := Result{Issues: []RowIssue{}, Tickets: []tickets.Ticket{}}

	var candidates []tickets.Ticket
	var lineOf []int
	fingerprints := map[string]int{}
	for i := headerIdx + 1; i < len(rows); i++ {
		row := rows[i]
		if tabular.IsBlank(row) {
			continue
		}
		line := i + 1
		batch.RowsTotal++

		raw := rawTicket(row, columns)
		hash := tabular.RowHash(row)
		if first, dup := fingerprints[hash]; dup {
			batch.Skipped++
			result.Issues = append(result.Issues, RowIssue{Row: line, Ticket: raw.TicketNumber, Reason: fmt.Sprintf("duplicate of row %d", first)})
			continue
		}
		fingerprints[hash] = line

		date, ok := ParseDate(tabular.Cell(row, columns[colDate]))
		if !ok {
			batch.Failed++
			result.Issues = append(result.Issues, RowIssue{Row: line, Ticket: raw.TicketNumber, Reason: "unreadable install date"})
			continue
		}
		raw.InstallDate = date
		candidates = append(candidates, raw.Normalize(userID, tickets.SourceImport))
		lineOf = append(lineOf, line)
	}
	if batch.RowsTotal == 0 {
		return Result{}, ErrNoRows
	}

	if len(candidates) > 0 {
		created, failed, err := s.tickets.CreateBatch(ctx, candidates)
		if err != nil {
			return Result{}, err
		}
		for i, cerr := range failed {
			reason := cerr.Error()
			if errors.Is(cerr, tickets.ErrDuplicateTicket) {
				batch.Skipped++
				reason = "already entered"
			} else {
				batch.Failed++
			}
			result.Issues = append(result.Issues, RowIssue{Row: lineOf[i], Ticket: candidates[i].TicketNumber, Reason: reason})
		}
		batch.Imported = len(created)
		result.Tickets = created
	}
	sortIssues(result.Issues)

	if err := s.store.Create(ctx, batch); err != nil {
		return Result{}, fmt.Errorf("record import batch: %w", err)
	}
	result.Batch = batch
	return result, nil
}

func (s *Service) List(ctx context.Context, userID string, limit, offset int) ([]Batch, error) {
	return s.store.List(ctx, userID, limit, offset)
}

func sortIssues(issues []RowIssue) {
	sort.SliceStable(issues, func(i, j int) bool { return issues[i].Row < issues[j].Row })
}
