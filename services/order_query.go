package services

import (
	"math"
	"strings"

	"github.com/kendall-kelly/luxetrack-api/models"
	"github.com/shopspring/decimal"
)

// FilterAll means "no constraint" for the status and brand filters
const FilterAll = "All"

const chartSize = 7

// OrderFilter narrows the order list. Empty Status or Brand behaves like FilterAll.
type OrderFilter struct {
	SearchTerm string
	Status     string
	Brand      string
}

// Filter returns the orders matching every predicate, in their original order.
// SearchTerm matches id and customer name case-insensitively and phone as a plain substring.
func Filter(orders []models.Order, f OrderFilter) []models.Order {
	term := strings.ToLower(f.SearchTerm)

	result := make([]models.Order, 0, len(orders))
	for _, order := range orders {
		matchesSearch := strings.Contains(strings.ToLower(order.ID), term) ||
			strings.Contains(strings.ToLower(order.CustomerName), term) ||
			strings.Contains(order.Phone, f.SearchTerm)

		matchesStatus := isAll(f.Status) || string(order.Status) == f.Status
		matchesBrand := isAll(f.Brand) || order.Brand == f.Brand

		if matchesSearch && matchesStatus && matchesBrand {
			result = append(result, order)
		}
	}
	return result
}

func isAll(v string) bool {
	return v == "" || v == FilterAll
}

// Stats sums revenue and profit and counts total and pending orders.
// Sums are exact decimals, converted to float once at the end.
func Stats(orders []models.Order) models.DashboardStats {
	var stats models.DashboardStats
	revenue, profit := decimal.Zero, decimal.Zero
	for _, order := range orders {
		revenue = revenue.Add(decimal.NewFromFloat(order.TotalAmount))
		profit = profit.Add(decimal.NewFromFloat(order.Profit))
		if order.Status == models.StatusPending {
			stats.PendingOrders++
		}
	}
	stats.TotalRevenue = revenue.InexactFloat64()
	stats.TotalProfit = profit.InexactFloat64()
	stats.TotalOrders = len(orders)
	return stats
}

// Brands lists the distinct brands in first-seen order
func Brands(orders []models.Order) []string {
	seen := make(map[string]struct{})
	brands := []string{}
	for _, order := range orders {
		if _, ok := seen[order.Brand]; ok {
			continue
		}
		seen[order.Brand] = struct{}{}
		brands = append(brands, order.Brand)
	}
	return brands
}

// BuildDashboard assembles the stats, the revenue chart over the last seven
// orders of the sequence, and the share of orders per channel
func BuildDashboard(orders []models.Order) models.Dashboard {
	start := max(len(orders)-chartSize, 0)
	chart := make([]models.ChartPoint, 0, chartSize)
	for _, order := range orders[start:] {
		chart = append(chart, models.ChartPoint{
			Name:    order.ID,
			Revenue: order.TotalAmount,
			Profit:  order.Profit,
		})
	}

	counts := make(map[models.SalesChannel]int, len(models.Channels))
	for _, order := range orders {
		counts[order.Channel]++
	}

	shares := make([]models.ChannelShare, 0, len(models.Channels))
	for _, channel := range models.Channels {
		share := models.ChannelShare{Channel: channel, Count: counts[channel]}
		if len(orders) > 0 {
			share.Percentage = int(math.Round(float64(share.Count) / float64(len(orders)) * 100))
		}
		shares = append(shares, share)
	}

	return models.Dashboard{
		Stats:        Stats(orders),
		RevenueChart: chart,
		ChannelShare: shares,
	}
}
