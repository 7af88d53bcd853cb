package services

import "github.com/kendall-kelly/luxetrack-api/models"

// SeedOrders returns the sample dataset used when no snapshot has been stored yet.
// The figures are fixtures and are stored exactly as listed.
func SeedOrders() []models.Order {
	return []models.Order{
		{
			ID:           "#DH1210",
			OrderDate:    "2024-03-10",
			ShipDate:     "2024-03-12",
			Status:       models.StatusCompleted,
			Channel:      models.ChannelFacebook,
			Brand:        "Gentle Monster",
			ProductName:  "Lilit 01 Glasses",
			UnitPrice:    5500000,
			Quantity:     1,
			Discount:     200000,
			ShippingFee:  35000,
			TotalAmount:  5335000,
			Deposit:      500000,
			CODAmount:    4835000,
			CostPrice:    3800000,
			Profit:       1335000,
			CustomerName: "Nguyen Van A",
			Phone:        "0901234567",
			Address:      "123 Le Loi",
			City:         "Ho Chi Minh",
			Region:       models.RegionSouth,
			Carrier:      "GHTK",
			TrackingCode: "GHTK123456789",
		},
		{
			ID:           "#DH1211",
			OrderDate:    "2024-03-11",
			ShipDate:     "2024-03-13",
			Status:       models.StatusShipping,
			Channel:      models.ChannelInstagram,
			Brand:        "Dior",
			ProductName:  "Lady Dior Mini Black",
			UnitPrice:    125000000,
			Quantity:     1,
			Discount:     5000000,
			ShippingFee:  150000,
			TotalAmount:  120150000,
			Deposit:      20000000,
			CODAmount:    100150000,
			CostPrice:    95000000,
			Profit:       20150000,
			CustomerName: "Tran Thi B",
			Phone:        "0912345678",
			Address:      "456 Phan Chau Trinh",
			City:         "Da Nang",
			Region:       models.RegionSouth,
			Carrier:      "Viettel Post",
			TrackingCode: "VT77889900",
		},
		{
			ID:           "#DH1212",
			OrderDate:    "2024-03-12",
			ShipDate:     "",
			Status:       models.StatusPending,
			Channel:      models.ChannelZalo,
			Brand:        "Vivienne Westwood",
			ProductName:  "Mini Bas Relief Pendant",
			UnitPrice:    4200000,
			Quantity:     2,
			Discount:     0,
			ShippingFee:  30000,
			TotalAmount:  8430000,
			Deposit:      1000000,
			CODAmount:    7430000,
			CostPrice:    2800000,
			Profit:       2830000,
			CustomerName: "Le Hoang C",
			Phone:        "0987654321",
			Address:      "789 Hoang Hoa Tham",
			City:         "Hanoi",
			Region:       models.RegionNorth,
			Carrier:      "",
			TrackingCode: "",
		},
	}
}
