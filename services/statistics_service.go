package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/yeremiapane/digital-menu/models"
	"github.com/yeremiapane/digital-menu/utils"
	"gorm.io/gorm"
)

const (
	dashboardCacheKey = "stats:dashboard"
	topItemsLimit     = 5
	reportWindowDays  = 30
	dailyRevenueDays  = 7
)

type DailyRevenue struct {
	Date    string          `json:"date"`
	Revenue decimal.Decimal `json:"revenue"`
}

type TopItem struct {
	MenuItemID   uint            `gorm:"column:menu_item_id" json:"menu_item_id"`
	Name         string          `gorm:"column:name" json:"name"`
	CategoryName string          `gorm:"column:category_name" json:"category_name"`
	Quantity     int64           `gorm:"column:quantity" json:"quantity"`
	Revenue      decimal.Decimal `gorm:"column:revenue" json:"revenue"`
}

type PaymentMethodStat struct {
	Method string          `gorm:"column:method" json:"method"`
	Count  int64           `gorm:"column:count" json:"count"`
	Total  decimal.Decimal `gorm:"column:total" json:"total"`
}

type DashboardStats struct {
	TodayRevenue       decimal.Decimal     `json:"today_revenue"`
	MonthRevenue       decimal.Decimal     `json:"month_revenue"`
	YearRevenue        decimal.Decimal     `json:"year_revenue"`
	TodayOrders        int64               `json:"today_orders"`
	ActiveTables       int64               `json:"active_tables"`
	DailyRevenue       []DailyRevenue      `json:"daily_revenue"`
	TopItems           []TopItem           `json:"top_items"`
	StatusDistribution map[string]int64    `json:"status_distribution"`
	PaymentMethods     []PaymentMethodStat `json:"payment_methods"`
	GeneratedAt        time.Time           `json:"generated_at"`
}

// StatisticsService builds the admin dashboard. Results are cached for the
// cache TTL; Invalidate drops them after writes that change revenue.
type StatisticsService struct {
	db    *gorm.DB
	cache Cache
	now   func() time.Time
}

func NewStatisticsService(db *gorm.DB, cache Cache) *StatisticsService {
	if cache == nil {
		cache = NoopCache{}
	}
	return &StatisticsService{db: db, cache: cache, now: time.Now}
}

func (s *StatisticsService) Dashboard(ctx context.Context) (*DashboardStats, error) {
	var cached DashboardStats
	hit, err := s.cache.Get(ctx, dashboardCacheKey, &cached)
	if err != nil {
		utils.ErrorLogger.Printf("Failed to read dashboard cache: %v", err)
	} else if hit {
		return &cached, nil
	}

	stats, err := s.buildDashboard(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, dashboardCacheKey, stats); err != nil {
		utils.ErrorLogger.Printf("Failed to write dashboard cache: %v", err)
	}
	return stats, nil
}

// Invalidate drops the cached dashboard.
func (s *StatisticsService) Invalidate(ctx context.Context) {
	if err := s.cache.Delete(ctx, dashboardCacheKey); err != nil {
		utils.ErrorLogger.Printf("Failed to invalidate dashboard cache: %v", err)
	}
}

func (s *StatisticsService) buildDashboard(ctx context.Context) (*DashboardStats, error) {
	db := s.db.WithContext(ctx)
	now := s.now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	startOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	startOfYear := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
	windowStart := startOfDay.AddDate(0, 0, -reportWindowDays)

	stats := &DashboardStats{
		StatusDistribution: make(map[string]int64),
		GeneratedAt:        now,
	}

	var err error
	if stats.TodayRevenue, err = revenueSince(db, startOfDay); err != nil {
		return nil, err
	}
	if stats.MonthRevenue, err = revenueSince(db, startOfMonth); err != nil {
		return nil, err
	}
	if stats.YearRevenue, err = revenueSince(db, startOfYear); err != nil {
		return nil, err
	}

	if err := db.Model(&models.Order{}).
		Where("status IN ? AND created_at >= ?", []string{models.OrderStatusServed, models.OrderStatusComplete}, startOfDay).
		Count(&stats.TodayOrders).Error; err != nil {
		return nil, err
	}

	if err := db.Model(&models.Order{}).
		Where("status IN ?", []string{models.OrderStatusPending, models.OrderStatusPreparing, models.OrderStatusServed}).
		Distinct("table_id").
		Count(&stats.ActiveTables).Error; err != nil {
		return nil, err
	}

	if stats.DailyRevenue, err = dailyRevenue(db, startOfDay); err != nil {
		return nil, err
	}

	if err := db.Raw(`
SELECT mi.id AS menu_item_id, mi.name AS name, COALESCE(c.name, '') AS category_name,
	SUM(oi.quantity) AS quantity, COALESCE(SUM(oi.quantity * oi.price), 0) AS revenue
FROM order_items oi
JOIN orders o ON o.id = oi.order_id
JOIN menu_items mi ON mi.id = oi.menu_item_id
LEFT JOIN categories c ON c.id = mi.category_id
WHERE o.created_at >= ? AND o.status <> ?
GROUP BY mi.id, mi.name, c.name
ORDER BY quantity DESC, mi.id ASC
LIMIT ?`, windowStart, models.OrderStatusCancelled, topItemsLimit).
		Scan(&stats.TopItems).Error; err != nil {
		return nil, err
	}

	var statusRows []struct {
		Status string
		Count  int64
	}
	if err := db.Model(&models.Order{}).
		Select("status, COUNT(*) AS count").
		Where("created_at >= ?", windowStart).
		Group("status").
		Scan(&statusRows).Error; err != nil {
		return nil, err
	}
	for _, r := range statusRows {
		stats.StatusDistribution[r.Status] = r.Count
	}

	if err := db.Model(&models.Order{}).
		Select("payment_method AS method, COUNT(*) AS count, COALESCE(SUM(total_amount), 0) AS total").
		Where("payment_status = ? AND created_at >= ?", models.PaymentStatusPaid, windowStart).
		Group("payment_method").
		Order("method ASC").
		Scan(&stats.PaymentMethods).Error; err != nil {
		return nil, err
	}

	if stats.TopItems == nil {
		stats.TopItems = []TopItem{}
	}
	if stats.PaymentMethods == nil {
		stats.PaymentMethods = []PaymentMethodStat{}
	}
	return stats, nil
}

// revenueSince sums completed, paid orders created at or after since.
func revenueSince(db *gorm.DB, since time.Time) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := db.Model(&models.Order{}).
		Where("status = ? AND payment_status = ? AND created_at >= ?",
			models.OrderStatusComplete, models.PaymentStatusPaid, since).
		Select("COALESCE(SUM(total_amount), 0)").
		Row().Scan(&total)
	return total, err
}

// dailyRevenue returns one entry per day for the last week, oldest first,
// including days without revenue.
func dailyRevenue(db *gorm.DB, startOfDay time.Time) ([]DailyRevenue, error) {
	from := startOfDay.AddDate(0, 0, -(dailyRevenueDays - 1))

	orders, err := paidOrdersBetween(db, from, time.Time{})
	if err != nil {
		return nil, err
	}

	byDay := make(map[string]decimal.Decimal, dailyRevenueDays)
	for _, o := range orders {
		day := o.CreatedAt.In(startOfDay.Location()).Format("2006-01-02")
		byDay[day] = byDay[day].Add(o.TotalAmount)
	}

	days := make([]DailyRevenue, 0, dailyRevenueDays)
	for i := 0; i < dailyRevenueDays; i++ {
		day := from.AddDate(0, 0, i).Format("2006-01-02")
		days = append(days, DailyRevenue{Date: day, Revenue: byDay[day]})
	}
	return days, nil
}

type orderAmount struct {
	TotalAmount decimal.Decimal
	CreatedAt   time.Time
}

// paidOrdersBetween loads completed, paid orders created in [from, to). A zero
// to leaves the range open.
func paidOrdersBetween(db *gorm.DB, from, to time.Time) ([]orderAmount, error) {
	q := db.Model(&models.Order{}).
		Select("total_amount, created_at").
		Where("status = ? AND payment_status = ? AND created_at >= ?",
			models.OrderStatusComplete, models.PaymentStatusPaid, from)
	if !to.IsZero() {
		q = q.Where("created_at < ?", to)
	}
	var orders []orderAmount
	err := q.Scan(&orders).Error
	return orders, err
}
