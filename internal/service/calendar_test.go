package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/ganghaofan/mealorder/internal/domain"
	"github.com/ganghaofan/mealorder/internal/enum"
	"github.com/ganghaofan/mealorder/internal/fault"
	"github.com/ganghaofan/mealorder/internal/service"
)

type mockCalendarAPI struct {
	meals  []domain.Meal
	orders []domain.Order

	gotStart time.Time
	gotEnd   time.Time
}

func (m *mockCalendarAPI) ListMeals(_ context.Context, start, end time.Time) ([]domain.Meal, error) {
	m.gotStart, m.gotEnd = start, end
	return m.meals, nil
}

func (m *mockCalendarAPI) ListMyOrders(_ context.Context, _ string) ([]domain.Order, error) {
	return m.orders, nil
}

// cellAt digs one slot cell out of the grid by date.
func cellAt(t *testing.T, weeks []service.Week, date string, dinner bool) service.DayCell {
	t.Helper()
	for _, w := range weeks {
		for _, d := range w.Days {
			if d.Date.Format(domain.DateLayout) == date {
				if dinner {
					return d.Dinner
				}
				return d.Lunch
			}
		}
	}
	t.Fatalf("date %s not in grid", date)
	return service.DayCell{}
}

func TestWeeksGridShape(t *testing.T) {
	api := &mockCalendarAPI{}
	svc := service.NewCalendarService(api, nil)

	// 2026-09-02 is a Wednesday.
	today := time.Date(2026, 9, 2, 15, 4, 0, 0, time.UTC)
	weeks, err := svc.Weeks(context.Background(), today, 1, 1)
	if err != nil {
		t.Fatalf("Weeks: %v", err)
	}
	if len(weeks) != 3 {
		t.Fatalf("weeks = %d, want 3", len(weeks))
	}
	if wd := weeks[0].Days[0].Date.Weekday(); wd != time.Sunday {
		t.Errorf("grid starts on %v, want Sunday", wd)
	}
	if got := api.gotStart.Format(domain.DateLayout); got != "2026-08-23" {
		t.Errorf("range start = %s, want 2026-08-23", got)
	}
	if got := api.gotEnd.Format(domain.DateLayout); got != "2026-09-12" {
		t.Errorf("range end = %s, want 2026-09-12", got)
	}

	var todayCount int
	for _, w := range weeks {
		for _, d := range w.Days {
			if d.IsToday {
				todayCount++
				if d.Date.Format(domain.DateLayout) != "2026-09-02" {
					t.Errorf("IsToday on %s", d.Date.Format(domain.DateLayout))
				}
			}
		}
	}
	if todayCount != 1 {
		t.Errorf("IsToday set on %d days, want 1", todayCount)
	}
}

func TestWeeksCellStatuses(t *testing.T) {
	api := &mockCalendarAPI{
		meals: []domain.Meal{
			{ID: 1, Date: "2026-09-02", Slot: enum.SlotLunch, BasePrice: 1800, Status: enum.MealStatusPublished},
			{ID: 2, Date: "2026-09-02", Slot: enum.SlotDinner, BasePrice: 2000, Status: enum.MealStatusLocked},
			{ID: 3, Date: "2026-09-03", Slot: enum.SlotLunch, BasePrice: 1500, Status: enum.MealStatusCanceled},
			{ID: 4, Date: "2026-09-03", Slot: enum.SlotDinner, BasePrice: 2200, Status: enum.MealStatusPublished},
			{ID: 5, Date: "2026-09-04", Slot: enum.SlotLunch, BasePrice: 1600, Status: enum.MealStatusCompleted},
		},
		orders: []domain.Order{
			{ID: 90, MealID: 4, Status: enum.OrderStatusPlaced},
			{ID: 91, MealID: 5, Status: enum.OrderStatusCanceled},
		},
	}
	svc := service.NewCalendarService(api, nil)
	today := time.Date(2026, 9, 2, 0, 0, 0, 0, time.UTC)

	weeks, err := svc.Weeks(context.Background(), today, 0, 1)
	if err != nil {
		t.Fatalf("Weeks: %v", err)
	}

	cases := []struct {
		date   string
		dinner bool
		want   string
	}{
		{"2026-09-02", false, enum.CellAvailable},
		{"2026-09-02", true, enum.CellLocked},
		{"2026-09-03", false, enum.CellUnpublished}, // canceled renders unpublished
		{"2026-09-03", true, enum.CellOrdered},      // live order wins
		{"2026-09-04", false, enum.CellLocked},      // canceled order does not mark it
		{"2026-09-05", false, enum.CellUnpublished}, // no meal at all
	}
	for _, tc := range cases {
		if got := cellAt(t, weeks, tc.date, tc.dinner).Status; got != tc.want {
			t.Errorf("%s dinner=%v status = %q, want %q", tc.date, tc.dinner, got, tc.want)
		}
	}

	if cell := cellAt(t, weeks, "2026-09-02", false); cell.Price != 1800 || cell.MealID != 1 {
		t.Errorf("available cell = %+v", cell)
	}
}

func TestWeeksDuplicateMealRejected(t *testing.T) {
	api := &mockCalendarAPI{
		meals: []domain.Meal{
			{ID: 1, Date: "2026-09-02", Slot: enum.SlotLunch, Status: enum.MealStatusPublished},
			{ID: 2, Date: "2026-09-02", Slot: enum.SlotLunch, Status: enum.MealStatusPublished},
		},
	}
	svc := service.NewCalendarService(api, nil)
	today := time.Date(2026, 9, 2, 0, 0, 0, 0, time.UTC)

	_, err := svc.Weeks(context.Background(), today, 0, 0)
	if !fault.IsKind(err, fault.Upstream) {
		t.Fatalf("Weeks err = %v, want Upstream", err)
	}
}
