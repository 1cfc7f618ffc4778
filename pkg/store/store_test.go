package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"gorm.io/gorm"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestAppendAssignsIncreasingIDs(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	var last int64
	for i := 0; i < 5; i++ {
		row := &Activity{
			EmployeeID: 1,
			EventType:  "affect",
			EventTime:  fmt.Sprintf("2026-08-30 09:00:0%d", i),
			Details:    "neutral",
		}
		if err := s.Append(ctx, row); err != nil {
			t.Fatalf("Append: %v", err)
		}
		if row.ID <= last {
			t.Fatalf("id %d not greater than previous %d", row.ID, last)
		}
		last = row.ID
	}
}

func TestConcurrentAppendsSameSubject(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	const n = 100
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs <- s.Append(ctx, &Activity{
				EmployeeID: 7,
				EventType:  "device_usage",
				EventTime:  "2026-08-30 10:00:00",
				Duration:   1,
			})
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	rows, err := s.RecentEvents(ctx, 7, 100)
	if err != nil {
		t.Fatalf("RecentEvents: %v", err)
	}
	if len(rows) != n {
		t.Fatalf("rows = %d, want %d", len(rows), n)
	}

	seen := make(map[int64]bool, n)
	prev := int64(1 << 62)
	for _, r := range rows {
		if seen[r.ID] {
			t.Fatalf("duplicate id %d", r.ID)
		}
		seen[r.ID] = true
		if r.ID >= prev {
			t.Fatalf("ids not strictly decreasing in newest-first order: %d after %d", r.ID, prev)
		}
		prev = r.ID
	}
}

func TestDailySummary(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	rows := []Activity{
		{EmployeeID: 1, EventType: "device_usage", EventTime: "2026-08-30 09:00:00", Duration: 30},
		{EmployeeID: 1, EventType: "device_usage", EventTime: "2026-08-30 14:30:00", Duration: 15},
		{EmployeeID: 1, EventType: "affect", EventTime: "2026-08-30 10:00:00", Duration: 0, Details: "happy"},
		// Different day and different employee must not leak in.
		{EmployeeID: 1, EventType: "device_usage", EventTime: "2026-08-29 09:00:00", Duration: 99},
		{EmployeeID: 2, EventType: "device_usage", EventTime: "2026-08-30 09:00:00", Duration: 50},
	}
	for i := range rows {
		if err := s.Append(ctx, &rows[i]); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	summary, err := s.DailySummary(ctx, 1, "2026-08-30")
	if err != nil {
		t.Fatalf("DailySummary: %v", err)
	}
	if got := summary["device_usage"]; got != 45.0 {
		t.Errorf("device_usage sum = %v, want 45.0", got)
	}
	if got, ok := summary["affect"]; ok && got != 0 {
		t.Errorf("affect sum = %v, want 0", got)
	}
	if _, ok := summary["presence_enter"]; ok {
		t.Error("types with no events must be absent, not zero-filled")
	}
}

func TestDailySummaryEmpty(t *testing.T) {
	s := openTestStore(t)

	summary, err := s.DailySummary(context.Background(), 1, "2026-08-30")
	if err != nil {
		t.Fatalf("DailySummary: %v", err)
	}
	if len(summary) != 0 {
		t.Errorf("summary = %v, want empty", summary)
	}
}

func TestRecentEventsOrderAndLimit(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for i := 0; i < 150; i++ {
		row := &Activity{
			EmployeeID: 1,
			EventType:  "affect",
			EventTime:  fmt.Sprintf("2026-08-30 09:%02d:%02d", i/60, i%60),
			Details:    "neutral",
		}
		if err := s.Append(ctx, row); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	rows, err := s.RecentEvents(ctx, 1, 0)
	if err != nil {
		t.Fatalf("RecentEvents: %v", err)
	}
	if len(rows) != 100 {
		t.Fatalf("rows = %d, want capped at 100", len(rows))
	}
	for i := 1; i < len(rows); i++ {
		if rows[i].EventTime > rows[i-1].EventTime {
			t.Fatalf("rows not newest first at index %d", i)
		}
	}
	if rows[0].EventTime != "2026-08-30 09:02:29" {
		t.Errorf("newest row = %q, want 2026-08-30 09:02:29", rows[0].EventTime)
	}
}

func TestEmployeeUpsertAndGet(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	emp := &Employee{ID: 1, Name: "Dana", Department: "Ops", Position: "Analyst"}
	if err := s.UpsertEmployee(ctx, emp); err != nil {
		t.Fatalf("UpsertEmployee: %v", err)
	}

	emp.Position = "Lead Analyst"
	if err := s.UpsertEmployee(ctx, emp); err != nil {
		t.Fatalf("UpsertEmployee update: %v", err)
	}

	got, err := s.GetEmployee(ctx, 1)
	if err != nil {
		t.Fatalf("GetEmployee: %v", err)
	}
	if got.Position != "Lead Analyst" {
		t.Errorf("position = %q, want updated value", got.Position)
	}

	if _, err := s.GetEmployee(ctx, 99); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("missing employee err = %v, want ErrRecordNotFound", err)
	}
}
