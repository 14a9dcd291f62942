package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/ganghaofan/mealorder/internal/domain"
	"github.com/ganghaofan/mealorder/internal/enum"
	"github.com/ganghaofan/mealorder/internal/fault"
	"github.com/ganghaofan/mealorder/internal/money"
)

// CalendarAPI is the slice of the API client the calendar needs.
type CalendarAPI interface {
	ListMeals(ctx context.Context, start, end time.Time) ([]domain.Meal, error)
	ListMyOrders(ctx context.Context, status string) ([]domain.Order, error)
}

// CalendarService assembles the rolling week grid users scroll through.
type CalendarService struct {
	api CalendarAPI
	log *zap.Logger
}

// NewCalendarService creates a CalendarService. logger may be nil.
func NewCalendarService(api CalendarAPI, logger *zap.Logger) *CalendarService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CalendarService{api: api, log: logger}
}

// DayCell is one slot (lunch or dinner) on one day.
type DayCell struct {
	Status string // enum.Cell*
	MealID int64
	Price  money.Minor
}

// Day is one calendar day with both slots.
type Day struct {
	Date    time.Time
	IsToday bool
	Lunch   DayCell
	Dinner  DayCell
}

// Week is a Sunday-first row of seven days.
type Week struct {
	Days [7]Day
}

// Weeks builds the grid covering weeksBefore full weeks before today's
// week through weeksAfter after it. A canceled meal renders exactly like
// an unpublished slot; a meal the user holds a live order on renders as
// ordered regardless of lock state.
func (s *CalendarService) Weeks(ctx context.Context, today time.Time, weeksBefore, weeksAfter int) ([]Week, error) {
	today = time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, today.Location())
	start := weekStart(today).AddDate(0, 0, -7*weeksBefore)
	end := start.AddDate(0, 0, 7*(weeksBefore+weeksAfter+1)-1)

	meals, err := s.api.ListMeals(ctx, start, end)
	if err != nil {
		return nil, err
	}
	orders, err := s.api.ListMyOrders(ctx, "")
	if err != nil {
		return nil, err
	}

	byKey := make(map[string]domain.Meal, len(meals))
	for _, m := range meals {
		key := m.Date + "/" + m.Slot
		if _, dup := byKey[key]; dup {
			return nil, fault.Newf(fault.Upstream, "duplicate meal for %s", key)
		}
		byKey[key] = m
	}
	ordered := make(map[int64]bool, len(orders))
	for _, o := range orders {
		if o.Status == enum.OrderStatusPlaced || o.Status == enum.OrderStatusConfirmed {
			ordered[o.MealID] = true
		}
	}

	weeks := make([]Week, 0, weeksBefore+weeksAfter+1)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 7) {
		var w Week
		for i := 0; i < 7; i++ {
			day := d.AddDate(0, 0, i)
			date := day.Format(domain.DateLayout)
			w.Days[i] = Day{
				Date:    day,
				IsToday: day.Equal(today),
				Lunch:   cellFor(byKey[date+"/"+enum.SlotLunch], ordered),
				Dinner:  cellFor(byKey[date+"/"+enum.SlotDinner], ordered),
			}
		}
		weeks = append(weeks, w)
	}

	s.log.Debug("calendar assembled",
		zap.Time("start", start),
		zap.Time("end", end),
		zap.Int("meals", len(meals)))
	return weeks, nil
}

// cellFor maps one meal (zero value when the slot is empty) to its cell.
func cellFor(m domain.Meal, ordered map[int64]bool) DayCell {
	if m.ID == 0 || m.Status == enum.MealStatusCanceled || m.Status == enum.MealStatusUnpublished {
		return DayCell{Status: enum.CellUnpublished}
	}
	cell := DayCell{MealID: m.ID, Price: m.BasePrice}
	switch {
	case ordered[m.ID]:
		cell.Status = enum.CellOrdered
	case m.Status == enum.MealStatusLocked || m.Status == enum.MealStatusCompleted:
		cell.Status = enum.CellLocked
	default:
		cell.Status = enum.CellAvailable
	}
	return cell
}

// weekStart rewinds to the Sunday of t's week.
func weekStart(t time.Time) time.Time {
	return t.AddDate(0, 0, -int(t.Weekday()))
}
