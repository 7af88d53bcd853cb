package models

// DashboardStats is the aggregate projection of the ledger. It is never stored.
type DashboardStats struct {
	TotalRevenue  float64 `json:"totalRevenue"`
	TotalProfit   float64 `json:"totalProfit"`
	TotalOrders   int     `json:"totalOrders"`
	PendingOrders int     `json:"pendingOrders"`
}

// ChartPoint is one bar of the revenue/profit chart
type ChartPoint struct {
	Name    string  `json:"name"`
	Revenue float64 `json:"revenue"`
	Profit  float64 `json:"profit"`
}

// ChannelShare is the portion of orders that came through one channel
type ChannelShare struct {
	Channel    SalesChannel `json:"channel"`
	Count      int          `json:"count"`
	Percentage int          `json:"percentage"`
}

// Dashboard is everything the dashboard view renders
type Dashboard struct {
	Stats        DashboardStats `json:"stats"`
	RevenueChart []ChartPoint   `json:"revenueChart"`
	ChannelShare []ChannelShare `json:"channelShare"`
}
