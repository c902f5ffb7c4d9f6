package trucklog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

type memoryStore struct {
	logs map[string]Log
}

func newMemoryStore() *memoryStore {
	return &memoryStore{logs: map[string]Log{}}
}

func key(userID string, date time.Time) string {
	return userID + "|" + date.Format("2006-01-02")
}

func (m *memoryStore) Get(ctx context.Context, userID string, date time.Time) (Log, error) {
	l, ok := m.logs[key(userID, date)]
	if !ok {
		return Log{}, ErrLogNotFound
	}
	return l, nil
}

func (m *memoryStore) Upsert(ctx context.Context, l Log) (Log, error) {
	if existing, ok := m.logs[key(l.UserID, l.LogDate)]; ok && existing.Locked {
		return Log{}, ErrLogLocked
	}
	m.logs[key(l.UserID, l.LogDate)] = l
	return l, nil
}

func (m *memoryStore) Lock(ctx context.Context, userID string, date time.Time) error {
	l, ok := m.logs[key(userID, date)]
	if !ok {
		return ErrLogNotFound
	}
	l.Locked = true
	m.logs[key(userID, date)] = l
	return nil
}

func (m *memoryStore) ListRange(ctx context.Context, userID string, from, to time.Time) ([]Log, error) {
	var out []Log
	for _, l := range m.logs {
		if l.UserID == userID && !l.LogDate.Before(from) && !l.LogDate.After(to) {
			out = append(out, l)
		}
	}
	return out, nil
}

func (m *memoryStore) LastBefore(ctx context.Context, userID string, date time.Time) (Log, error) {
	var best Log
	found := false
	for _, l := range m.logs {
		if l.UserID != userID || !l.LogDate.Before(date) || l.Odometer == 0 {
			continue
		}
		if !found || l.LogDate.After(best.LogDate) {
			best, found = l, true
		}
	}
	if !found {
		return Log{}, ErrLogNotFound
	}
	return best, nil
}

var monday = time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)

func TestUpsertRejectsLockedDay(t *testing.T) {
	svc := NewService(newMemoryStore())
	ctx := context.Background()

	if _, err := svc.Upsert(ctx, Log{UserID: "u1", LogDate: monday.Add(7 * time.Hour), Odometer: 1000}); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}
	if err := svc.Lock(ctx, "u1", monday.Add(15*time.Hour)); err != nil {
		t.Fatalf("lock failed: %v", err)
	}
	if _, err := svc.Upsert(ctx, Log{UserID: "u1", LogDate: monday, Odometer: 1200}); !errors.Is(err, ErrLogLocked) {
		t.Fatalf("expected locked error, got %v", err)
	}
	if err := svc.Lock(ctx, "u1", monday.AddDate(0, 0, 1)); !errors.Is(err, ErrLogNotFound) {
		t.Fatalf("expected not found when locking a missing day, got %v", err)
	}
}

func TestUpsertValidates(t *testing.T) {
	svc := NewService(newMemoryStore())
	tests := []struct {
		name string
		log  Log
		want error
	}{
		{name: "missing date", log: Log{UserID: "u1"}, want: ErrMissingDate},
		{name: "negative odometer", log: Log{UserID: "u1", LogDate: monday, Odometer: -1}, want: ErrNegativeValue},
		{name: "negative fuel", log: Log{UserID: "u1", LogDate: monday, FuelCost: decimal.NewFromInt(-5)}, want: ErrNegativeValue},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Upsert(context.Background(), tc.log); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestListRangeDerivesMilesAcrossRangeStart(t *testing.T) {
	store := newMemoryStore()
	svc := NewService(store)
	ctx := context.Background()
	sunday := monday.AddDate(0, 0, -1)

	seed := []Log{
		{UserID: "u1", LogDate: sunday, Odometer: 10000},
		{UserID: "u1", LogDate: monday, Odometer: 10120, Gallons: decimal.NewFromInt(8)},
		{UserID: "u1", LogDate: monday.AddDate(0, 0, 1), Mileage: 45},
		{UserID: "u1", LogDate: monday.AddDate(0, 0, 2), Odometer: 10200},
	}
	for _, l := range seed {
		if _, err := svc.Upsert(ctx, l); err != nil {
			t.Fatalf("seed failed: %v", err)
		}
	}

	entries, err := svc.ListRange(ctx, "u1", monday, monday.AddDate(0, 0, 6))
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[0].Miles != 120 || !entries[0].MilesDerived {
		t.Fatalf("expected 120 derived miles from the prior sunday, got %+v", entries[0])
	}
	if entries[0].MPG == nil || !entries[0].MPG.Equal(decimal.NewFromInt(15)) {
		t.Fatalf("expected 15 mpg, got %v", entries[0].MPG)
	}
	if entries[1].Miles != 45 || entries[1].MilesDerived {
		t.Fatalf("expected entered mileage kept, got %+v", entries[1])
	}
	if entries[2].Miles != 80 {
		t.Fatalf("expected 80 miles since the last reading, got %+v", entries[2])
	}
	if totals := Sum(entries); totals.Miles != 245 || !totals.Gallons.Equal(decimal.NewFromInt(8)) {
		t.Fatalf("unexpected totals %+v", totals)
	}
}

func TestDeriveIgnoresOdometerRollback(t *testing.T) {
	entries := Derive(&Log{Odometer: 5000}, []Log{{LogDate: monday, Odometer: 100}})
	if entries[0].Miles != 0 || entries[0].MilesDerived || entries[0].MPG != nil {
		t.Fatalf("expected no derived miles after a replaced odometer, got %+v", entries[0])
	}
}

func TestDailyLogsCarryExtraPerDiem(t *testing.T) {
	logs := DailyLogs([]Entry{{Log: Log{LogDate: monday, ExtraPerDiem: true}}})
	if len(logs) != 1 || !logs[0].ExtraPerDiem || !logs[0].LogDate.Equal(monday) {
		t.Fatalf("unexpected pay logs %+v", logs)
	}
}
