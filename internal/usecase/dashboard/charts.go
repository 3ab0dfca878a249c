package dashboard

import "storefront/internal/domain"

var defaultChartOptions = domain.ChartOptions{Responsive: true, MaintainAspectRatio: false}

var months = []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun"}

// Charts returns the report charts in the shape the client chart library takes.
// A fresh copy is built on every call.
func Charts() []domain.Chart {
	return []domain.Chart{
		{
			ID:   "salesChart",
			Type: domain.ChartLine,
			Data: domain.ChartData{
				Labels: append([]string(nil), months...),
				Datasets: []domain.ChartDataset{{
					Label:           "Penjualan",
					Data:            []int{12, 19, 3, 5, 2, 3},
					BorderColor:     "#4f46e5",
					BackgroundColor: "rgba(79, 70, 229, 0.1)",
					Tension:         0.4,
				}},
			},
			Options: defaultChartOptions,
		},
		{
			ID:   "newCustomersChart",
			Type: domain.ChartBar,
			Data: domain.ChartData{
				Labels: append([]string(nil), months...),
				Datasets: []domain.ChartDataset{{
					Label:           "Pelanggan Baru",
					Data:            []int{5, 8, 3, 7, 4, 6},
					BackgroundColor: "#10b981",
				}},
			},
			Options: defaultChartOptions,
		},
		{
			ID:   "inventoryTurnoverChart",
			Type: domain.ChartDoughnut,
			Data: domain.ChartData{
				Labels: []string{"Antibiotik", "Vitamin", "Anti Coccidia", "Antiparasi"},
				Datasets: []domain.ChartDataset{{
					Data:            []int{30, 25, 25, 20},
					BackgroundColor: []string{"#ef4444", "#3b82f6", "#10b981", "#f59e0b"},
				}},
			},
			Options: defaultChartOptions,
		},
		{
			ID:   "paymentMethodChart",
			Type: domain.ChartPie,
			Data: domain.ChartData{
				Labels: []string{"Cash", "Transfer", "E-Wallet"},
				Datasets: []domain.ChartDataset{{
					Data:            []int{40, 35, 25},
					BackgroundColor: []string{"#8b5cf6", "#06b6d4", "#84cc16"},
				}},
			},
			Options: defaultChartOptions,
		},
	}
}

// Summary is the dashboard landing payload.
type Summary struct {
	TotalOrders int            `json:"totalOrders"`
	ByStatus    map[string]int `json:"byStatus"`
	Recent      []domain.Order `json:"recent"`
}

func (o *Orders) Summary() Summary {
	s := Summary{
		TotalOrders: len(o.orders),
		ByStatus:    make(map[string]int, len(statusText)),
		Recent:      append([]domain.Order(nil), o.orders...),
	}
	for _, ord := range o.orders {
		s.ByStatus[string(ord.Status)]++
	}
	return s
}
