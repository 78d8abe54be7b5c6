package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/digital-menu/services"
	"github.com/yeremiapane/digital-menu/utils"
)

type StatisticsController struct {
	Stats *services.StatisticsService
}

func NewStatisticsController(stats *services.StatisticsService) *StatisticsController {
	return &StatisticsController{Stats: stats}
}

// GetDashboardStats -> revenue, activity and popularity figures for admins
func (sc *StatisticsController) GetDashboardStats(c *gin.Context) {
	stats, err := sc.Stats.Dashboard(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Dashboard statistics", gin.H{"stats": stats})
}

// GetOverview -> last 30 days against the 30 before
func (sc *StatisticsController) GetOverview(c *gin.Context) {
	overview, err := sc.Stats.Overview(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Overview statistics", gin.H{"overview": overview})
}

func (sc *StatisticsController) GetWeeklyRevenue(c *gin.Context) {
	weeks, err := sc.Stats.WeeklyRevenue(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Weekly revenue", gin.H{"weekly_revenue": weeks})
}

func (sc *StatisticsController) GetMonthlyRevenue(c *gin.Context) {
	months, err := sc.Stats.MonthlyRevenue(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Monthly revenue", gin.H{"monthly_revenue": months})
}

func (sc *StatisticsController) GetRevenueByCategory(c *gin.Context) {
	categories, err := sc.Stats.RevenueByCategory(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Revenue by category", gin.H{"categories": categories})
}

func (sc *StatisticsController) GetYearOverYear(c *gin.Context) {
	yoy, err := sc.Stats.YearOverYear(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Year over year growth", gin.H{"year_over_year": yoy})
}

func (sc *StatisticsController) GetHourlyDistribution(c *gin.Context) {
	hours, err := sc.Stats.HourlyDistribution(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Hourly order distribution", gin.H{"hours": hours})
}
