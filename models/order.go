package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// OrderStatus is the fulfilment state of an order. Any status may be set to any other.
type OrderStatus string

const (
	StatusPending   OrderStatus = "Pending"
	StatusShipping  OrderStatus = "Shipping"
	StatusCompleted OrderStatus = "Completed"
	StatusReturned  OrderStatus = "Returned"
)

// SalesChannel is the platform an order came in through
type SalesChannel string

const (
	ChannelFacebook  SalesChannel = "Facebook"
	ChannelInstagram SalesChannel = "Instagram"
	ChannelZalo      SalesChannel = "Zalo"
	ChannelWebsite   SalesChannel = "Website"
)

// Channels lists every sales channel in display order
var Channels = []SalesChannel{ChannelFacebook, ChannelInstagram, ChannelZalo, ChannelWebsite}

// Region is the delivery region
type Region string

const (
	RegionNorth Region = "North"
	RegionSouth Region = "South"
)

// DateLayout is the calendar date format used for orderDate and shipDate
const DateLayout = "2006-01-02"

// Order represents a single luxury sale with customer, product, pricing and logistics data.
// JSON field names match the persisted luxetrack_orders snapshot.
type Order struct {
	ID           string       `json:"id" validate:"required"`
	OrderDate    string       `json:"orderDate" validate:"omitempty,datetime=2006-01-02"`
	ShipDate     string       `json:"shipDate" validate:"omitempty,datetime=2006-01-02"`
	Status       OrderStatus  `json:"status" validate:"oneof=Pending Shipping Completed Returned"`
	Channel      SalesChannel `json:"channel" validate:"oneof=Facebook Instagram Zalo Website"`
	Brand        string       `json:"brand"`
	ProductName  string       `json:"productName"`
	UnitPrice    float64      `json:"unitPrice"`
	Quantity     float64      `json:"quantity"`
	Discount     float64      `json:"discount"`
	ShippingFee  float64      `json:"shippingFee"`
	TotalAmount  float64      `json:"totalAmount"` // derived
	Deposit      float64      `json:"deposit"`
	CODAmount    float64      `json:"codAmount"` // derived
	CostPrice    float64      `json:"costPrice"`
	Profit       float64      `json:"profit"` // derived
	CustomerName string       `json:"customerName"`
	Phone        string       `json:"phone"`
	Address      string       `json:"address"`
	City         string       `json:"city"`
	Region       Region       `json:"region" validate:"oneof=North South"`
	Carrier      string       `json:"carrier"`
	TrackingCode string       `json:"trackingCode"`
}

// OrderInput is the caller-supplied body for creating or replacing an order.
// It has no id and no derived fields; any derived values a client sends are ignored.
type OrderInput struct {
	OrderDate    string       `json:"orderDate" binding:"omitempty,datetime=2006-01-02"`
	ShipDate     string       `json:"shipDate" binding:"omitempty,datetime=2006-01-02"`
	Status       OrderStatus  `json:"status" binding:"omitempty,oneof=Pending Shipping Completed Returned"`
	Channel      SalesChannel `json:"channel" binding:"omitempty,oneof=Facebook Instagram Zalo Website"`
	Brand        string       `json:"brand"`
	ProductName  string       `json:"productName"`
	UnitPrice    Amount       `json:"unitPrice" binding:"gte=0"`
	Quantity     Amount       `json:"quantity" binding:"gte=0"`
	Discount     Amount       `json:"discount" binding:"gte=0"`
	ShippingFee  Amount       `json:"shippingFee" binding:"gte=0"`
	Deposit      Amount       `json:"deposit" binding:"gte=0"`
	CostPrice    Amount       `json:"costPrice" binding:"gte=0"`
	CustomerName string       `json:"customerName"`
	Phone        string       `json:"phone"`
	Address      string       `json:"address"`
	City         string       `json:"city"`
	Region       Region       `json:"region" binding:"omitempty,oneof=North South"`
	Carrier      string       `json:"carrier"`
	TrackingCode string       `json:"trackingCode"`
}

// Financials returns the six derivation inputs carried by the request
func (in OrderInput) Financials() FinancialInputs {
	return FinancialInputs{
		UnitPrice:   float64(in.UnitPrice),
		Quantity:    float64(in.Quantity),
		Discount:    float64(in.Discount),
		ShippingFee: float64(in.ShippingFee),
		Deposit:     float64(in.Deposit),
		CostPrice:   float64(in.CostPrice),
	}
}

// BuildOrder turns an input into an order with the given id.
// Empty enum and date fields get their defaults and the derived fields are computed.
func BuildOrder(id string, in OrderInput, now time.Time) Order {
	order := Order{
		ID:           id,
		OrderDate:    in.OrderDate,
		ShipDate:     in.ShipDate,
		Status:       in.Status,
		Channel:      in.Channel,
		Brand:        in.Brand,
		ProductName:  in.ProductName,
		CustomerName: in.CustomerName,
		Phone:        in.Phone,
		Address:      in.Address,
		City:         in.City,
		Region:       in.Region,
		Carrier:      in.Carrier,
		TrackingCode: in.TrackingCode,
	}

	if order.OrderDate == "" {
		order.OrderDate = now.UTC().Format(DateLayout)
	}
	if order.Status == "" {
		order.Status = StatusPending
	}
	if order.Channel == "" {
		order.Channel = ChannelFacebook
	}
	if order.Region == "" {
		order.Region = RegionSouth
	}

	order.SetFinancials(in.Financials())
	return order
}

// FinancialInputs returns the six fields that drive derivation
func (o Order) FinancialInputs() FinancialInputs {
	return FinancialInputs{
		UnitPrice:   o.UnitPrice,
		Quantity:    o.Quantity,
		Discount:    o.Discount,
		ShippingFee: o.ShippingFee,
		Deposit:     o.Deposit,
		CostPrice:   o.CostPrice,
	}
}

// SetFinancials stores the inputs and recomputes totalAmount, codAmount and profit from them
func (o *Order) SetFinancials(in FinancialInputs) {
	in = in.Sanitized()
	o.UnitPrice = in.UnitPrice
	o.Quantity = in.Quantity
	o.Discount = in.Discount
	o.ShippingFee = in.ShippingFee
	o.Deposit = in.Deposit
	o.CostPrice = in.CostPrice

	derived := Derive(in)
	o.TotalAmount = derived.TotalAmount
	o.CODAmount = derived.CODAmount
	o.Profit = derived.Profit
}

// UnmarshalJSON reads a stored order. The priced fields go through Amount because
// orders saved from the web form carry them as strings ("5000000").
func (o *Order) UnmarshalJSON(data []byte) error {
	type plainOrder Order
	aux := struct {
		*plainOrder
		UnitPrice   Amount `json:"unitPrice"`
		Quantity    Amount `json:"quantity"`
		Discount    Amount `json:"discount"`
		ShippingFee Amount `json:"shippingFee"`
		TotalAmount Amount `json:"totalAmount"`
		Deposit     Amount `json:"deposit"`
		CODAmount   Amount `json:"codAmount"`
		CostPrice   Amount `json:"costPrice"`
		Profit      Amount `json:"profit"`
	}{plainOrder: (*plainOrder)(o)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	o.UnitPrice = float64(aux.UnitPrice)
	o.Quantity = float64(aux.Quantity)
	o.Discount = float64(aux.Discount)
	o.ShippingFee = float64(aux.ShippingFee)
	o.TotalAmount = float64(aux.TotalAmount)
	o.Deposit = float64(aux.Deposit)
	o.CODAmount = float64(aux.CODAmount)
	o.CostPrice = float64(aux.CostPrice)
	o.Profit = float64(aux.Profit)
	return nil
}

var orderValidator = validator.New()

// Validate checks the enum and date fields of a stored order
func (o Order) Validate() error {
	if err := orderValidator.Struct(o); err != nil {
		return fmt.Errorf("order %q: %w", o.ID, err)
	}
	return nil
}
