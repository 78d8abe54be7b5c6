package services

import (
	"context"
	"math"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"github.com/yeremiapane/digital-menu/models"
	"gorm.io/gorm"
)

const (
	weeklyRevenueWeeks   = 4
	monthlyRevenueMonths = 12
)

var hundred = decimal.NewFromInt(100)

// Overview compares the last 30 days with the 30 days before them.
type Overview struct {
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
	TotalOrders   int64           `json:"total_orders"`
	AvgOrderValue decimal.Decimal `json:"avg_order_value"`
	ActiveTables  int64           `json:"active_tables"`
	RevenueGrowth decimal.Decimal `json:"revenue_growth"`
	OrdersGrowth  decimal.Decimal `json:"orders_growth"`
}

type WeeklyRevenue struct {
	Week      string          `json:"week"`
	Year      int             `json:"year"`
	StartDate string          `json:"start_date"`
	Revenue   decimal.Decimal `json:"revenue"`
}

type MonthlyRevenue struct {
	Month   string          `json:"month"`
	Year    int             `json:"year"`
	Revenue decimal.Decimal `json:"revenue"`
}

type CategoryRevenue struct {
	CategoryID uint            `gorm:"column:category_id" json:"category_id"`
	Name       string          `gorm:"column:name" json:"name"`
	Revenue    decimal.Decimal `gorm:"column:revenue" json:"revenue"`
}

type YearOverYear struct {
	CurrentYearRevenue  decimal.Decimal `json:"current_year_revenue"`
	PreviousYearRevenue decimal.Decimal `json:"previous_year_revenue"`
	GrowthPercentage    decimal.Decimal `json:"growth_percentage"`
}

type HourlyOrders struct {
	Hour    int             `json:"hour"`
	Count   int64           `json:"count"`
	Revenue decimal.Decimal `json:"revenue"`
}

func (s *StatisticsService) Overview(ctx context.Context) (*Overview, error) {
	db := s.db.WithContext(ctx)
	windowStart := dayStart(s.now()).AddDate(0, 0, -reportWindowDays)
	prevStart := windowStart.AddDate(0, 0, -reportWindowDays)

	var (
		out        Overview
		prevOrders int64
		err        error
	)
	if out.TotalRevenue, err = revenueBetween(db, windowStart, time.Time{}); err != nil {
		return nil, err
	}
	prevRevenue, err := revenueBetween(db, prevStart, windowStart)
	if err != nil {
		return nil, err
	}
	if out.TotalOrders, err = fulfilledOrdersBetween(db, windowStart, time.Time{}); err != nil {
		return nil, err
	}
	if prevOrders, err = fulfilledOrdersBetween(db, prevStart, windowStart); err != nil {
		return nil, err
	}
	if err := db.Model(&models.Order{}).
		Where("status IN ?", []string{models.OrderStatusPending, models.OrderStatusPreparing, models.OrderStatusServed}).
		Distinct("table_id").
		Count(&out.ActiveTables).Error; err != nil {
		return nil, err
	}

	if out.TotalOrders > 0 {
		out.AvgOrderValue = out.TotalRevenue.Div(decimal.NewFromInt(out.TotalOrders)).Round(2)
	}
	out.RevenueGrowth = growth(out.TotalRevenue, prevRevenue, false)
	out.OrdersGrowth = growth(decimal.NewFromInt(out.TotalOrders), decimal.NewFromInt(prevOrders), false)
	return &out, nil
}

// WeeklyRevenue returns the current ISO week and the three before it, oldest
// first.
func (s *StatisticsService) WeeklyRevenue(ctx context.Context) ([]WeeklyRevenue, error) {
	today := dayStart(s.now())
	// Monday of the current week
	monday := today.AddDate(0, 0, -((int(today.Weekday()) + 6) % 7))
	from := monday.AddDate(0, 0, -7*(weeklyRevenueWeeks-1))

	orders, err := paidOrdersBetween(s.db.WithContext(ctx), from, time.Time{})
	if err != nil {
		return nil, err
	}

	weeks := make([]WeeklyRevenue, weeklyRevenueWeeks)
	for i := range weeks {
		start := from.AddDate(0, 0, 7*i)
		year, week := start.ISOWeek()
		weeks[i] = WeeklyRevenue{
			Week:      "Week " + strconv.Itoa(week),
			Year:      year,
			StartDate: start.Format("2006-01-02"),
			Revenue:   decimal.Zero,
		}
	}
	for _, o := range orders {
		days := int(math.Round(dayStart(o.CreatedAt.In(today.Location())).Sub(from).Hours() / 24))
		i := days / 7
		if i >= 0 && i < weeklyRevenueWeeks {
			weeks[i].Revenue = weeks[i].Revenue.Add(o.TotalAmount)
		}
	}
	return weeks, nil
}

// MonthlyRevenue returns the current month and the eleven before it, oldest
// first.
func (s *StatisticsService) MonthlyRevenue(ctx context.Context) ([]MonthlyRevenue, error) {
	now := s.now()
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -(monthlyRevenueMonths - 1), 0)

	orders, err := paidOrdersBetween(s.db.WithContext(ctx), from, time.Time{})
	if err != nil {
		return nil, err
	}

	months := make([]MonthlyRevenue, monthlyRevenueMonths)
	for i := range months {
		m := from.AddDate(0, i, 0)
		months[i] = MonthlyRevenue{Month: m.Month().String(), Year: m.Year(), Revenue: decimal.Zero}
	}
	for _, o := range orders {
		t := o.CreatedAt.In(now.Location())
		i := (t.Year()-from.Year())*12 + int(t.Month()) - int(from.Month())
		if i >= 0 && i < monthlyRevenueMonths {
			months[i].Revenue = months[i].Revenue.Add(o.TotalAmount)
		}
	}
	return months, nil
}

// RevenueByCategory sums item revenue of completed, paid orders over the last
// 30 days, highest first.
func (s *StatisticsService) RevenueByCategory(ctx context.Context) ([]CategoryRevenue, error) {
	windowStart := dayStart(s.now()).AddDate(0, 0, -reportWindowDays)

	var rows []CategoryRevenue
	err := s.db.WithContext(ctx).Raw(`
SELECT c.id AS category_id, c.name AS name, COALESCE(SUM(oi.quantity * oi.price), 0) AS revenue
FROM order_items oi
JOIN orders o ON o.id = oi.order_id
JOIN menu_items mi ON mi.id = oi.menu_item_id
JOIN categories c ON c.id = mi.category_id
WHERE o.created_at >= ? AND o.status = ? AND o.payment_status = ?
GROUP BY c.id, c.name
ORDER BY revenue DESC, c.id ASC`, windowStart, models.OrderStatusComplete, models.PaymentStatusPaid).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []CategoryRevenue{}
	}
	return rows, nil
}

// YearOverYear compares this year so far with the whole previous year. With
// no previous revenue any current revenue counts as 100% growth.
func (s *StatisticsService) YearOverYear(ctx context.Context) (*YearOverYear, error) {
	db := s.db.WithContext(ctx)
	now := s.now()
	yearStart := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())

	current, err := revenueBetween(db, yearStart, time.Time{})
	if err != nil {
		return nil, err
	}
	previous, err := revenueBetween(db, yearStart.AddDate(-1, 0, 0), yearStart)
	if err != nil {
		return nil, err
	}
	return &YearOverYear{
		CurrentYearRevenue:  current,
		PreviousYearRevenue: previous,
		GrowthPercentage:    growth(current, previous, true),
	}, nil
}

// HourlyDistribution counts every order of the last 30 days by the hour it
// was placed. All 24 hours are present.
func (s *StatisticsService) HourlyDistribution(ctx context.Context) ([]HourlyOrders, error) {
	now := s.now()
	windowStart := dayStart(now).AddDate(0, 0, -reportWindowDays)

	var orders []orderAmount
	if err := s.db.WithContext(ctx).Model(&models.Order{}).
		Select("total_amount, created_at").
		Where("created_at >= ?", windowStart).
		Scan(&orders).Error; err != nil {
		return nil, err
	}

	hours := make([]HourlyOrders, 24)
	for h := range hours {
		hours[h] = HourlyOrders{Hour: h, Revenue: decimal.Zero}
	}
	for _, o := range orders {
		h := o.CreatedAt.In(now.Location()).Hour()
		hours[h].Count++
		hours[h].Revenue = hours[h].Revenue.Add(o.TotalAmount)
	}
	return hours, nil
}

func revenueBetween(db *gorm.DB, from, to time.Time) (decimal.Decimal, error) {
	orders, err := paidOrdersBetween(db, from, to)
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, o := range orders {
		total = total.Add(o.TotalAmount)
	}
	return total, nil
}

// fulfilledOrdersBetween counts served or completed orders created in [from, to).
func fulfilledOrdersBetween(db *gorm.DB, from, to time.Time) (int64, error) {
	q := db.Model(&models.Order{}).
		Where("status IN ? AND created_at >= ?", []string{models.OrderStatusServed, models.OrderStatusComplete}, from)
	if !to.IsZero() {
		q = q.Where("created_at < ?", to)
	}
	var n int64
	err := q.Count(&n).Error
	return n, err
}

// growth is the percentage change from previous to current, rounded to two
// places. A zero previous value gives 0, or 100 when newIsFull is set and
// current is positive.
func growth(current, previous decimal.Decimal, newIsFull bool) decimal.Decimal {
	if previous.IsPositive() {
		return current.Sub(previous).Div(previous).Mul(hundred).Round(2)
	}
	if newIsFull && current.IsPositive() {
		return hundred
	}
	return decimal.Zero
}

func dayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
