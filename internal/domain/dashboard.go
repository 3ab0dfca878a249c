package domain

type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderProcessing OrderStatus = "processing"
	OrderCompleted  OrderStatus = "completed"
	OrderCancelled  OrderStatus = "cancelled"
)

type Order struct {
	ID         string      `json:"id"`
	Customer   string      `json:"customer"`
	Status     OrderStatus `json:"status"`
	StatusText string      `json:"statusText"`
	Date       string      `json:"date"`
}

// OrderFilter narrows the order list. Empty fields match everything; Status "all"
// is treated as empty.
type OrderFilter struct {
	Status string
	Query  string
	From   string
	To     string
}

type ChartType string

const (
	ChartLine     ChartType = "line"
	ChartBar      ChartType = "bar"
	ChartDoughnut ChartType = "doughnut"
	ChartPie      ChartType = "pie"
)

// Chart is a ready-to-feed config for the client-side charting library.
type Chart struct {
	ID      string       `json:"id"`
	Type    ChartType    `json:"type"`
	Data    ChartData    `json:"data"`
	Options ChartOptions `json:"options"`
}

type ChartData struct {
	Labels   []string       `json:"labels"`
	Datasets []ChartDataset `json:"datasets"`
}

type ChartDataset struct {
	Label       string `json:"label,omitempty"`
	Data        []int  `json:"data"`
	BorderColor string `json:"borderColor,omitempty"`

	// BackgroundColor is a single color or one color per data point.
	BackgroundColor any     `json:"backgroundColor,omitempty"`
	Tension         float64 `json:"tension,omitempty"`
}

type ChartOptions struct {
	Responsive          bool `json:"responsive"`
	MaintainAspectRatio bool `json:"maintainAspectRatio"`
}
