package domain

type PageID string

const (
	PageDashboard PageID = "dashboard"
	PageOrders    PageID = "orders"
	PageMenu      PageID = "menu"
	PageReports   PageID = "reports"
	PageSettings  PageID = "settings"
	PageProfile   PageID = "profile"
)

// Pages lists every navigable page in sidebar order.
var Pages = []PageID{
	PageDashboard,
	PageOrders,
	PageMenu,
	PageReports,
	PageSettings,
	PageProfile,
}

const DefaultPage = PageDashboard

// PageState is returned after every navigation.
type PageState struct {
	Current PageID          `json:"current"`
	Visible map[PageID]bool `json:"visible"`
	Visits  int             `json:"visits"`
	Data    any             `json:"data,omitempty"`
}
