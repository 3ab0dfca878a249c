package dashboard

import (
	"fmt"
	"html/template"
	"io"
	"strings"
	"time"

	"storefront/internal/domain"
)

const dateLayout = "2006-01-02"

var statusText = map[domain.OrderStatus]string{
	domain.OrderPending:    "Pending",
	domain.OrderProcessing: "Processing",
	domain.OrderCompleted:  "Completed",
	domain.OrderCancelled:  "Cancelled",
}

// StatusText returns the display label of a status, or the raw status when unknown.
func StatusText(s domain.OrderStatus) string {
	if t, ok := statusText[s]; ok {
		return t
	}
	return string(s)
}

var sampleOrders = []domain.Order{
	{ID: "#001", Customer: "Ananda Fairus", Status: domain.OrderCompleted, Date: "2024-01-15"},
	{ID: "#002", Customer: "Rafif Dzaki", Status: domain.OrderProcessing, Date: "2024-01-14"},
	{ID: "#003", Customer: "Fahri Wijaya", Status: domain.OrderPending, Date: "2024-01-13"},
}

var orderListTmpl = template.Must(template.New("orders").Parse(`{{range .}}
<div class="order-card" data-status="{{.Status}}">
  <div class="order-header">
    <span class="order-number">{{.ID}}</span>
    <span class="order-status {{.Status}}">{{.StatusText}}</span>
  </div>
  <div class="order-details">
    <p><strong>Customer:</strong> {{.Customer}}</p>
    <p><strong>Date:</strong> {{.Date}}</p>
  </div>
</div>
{{- end}}
`))

// Orders serves the static order list shown on the orders page.
type Orders struct {
	orders []domain.Order
}

func NewOrders() *Orders {
	orders := make([]domain.Order, len(sampleOrders))
	for i, o := range sampleOrders {
		o.StatusText = StatusText(o.Status)
		orders[i] = o
	}
	return &Orders{orders: orders}
}

// List returns the orders matching every non-empty filter field. Status "all"
// matches any status; Query is a case-insensitive substring over the visible
// text of an order; From and To bound the date inclusively.
func (o *Orders) List(f domain.OrderFilter) ([]domain.Order, error) {
	status := strings.ToLower(strings.TrimSpace(f.Status))
	if status == "all" {
		status = ""
	}
	if status != "" {
		if _, ok := statusText[domain.OrderStatus(status)]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, f.Status)
		}
	}

	from, err := parseDate(f.From)
	if err != nil {
		return nil, err
	}
	to, err := parseDate(f.To)
	if err != nil {
		return nil, err
	}

	query := strings.ToLower(strings.TrimSpace(f.Query))

	out := make([]domain.Order, 0, len(o.orders))
	for _, ord := range o.orders {
		if status != "" && string(ord.Status) != status {
			continue
		}
		if query != "" && !strings.Contains(searchText(ord), query) {
			continue
		}
		if !from.IsZero() || !to.IsZero() {
			d, err := time.Parse(dateLayout, ord.Date)
			if err != nil {
				continue
			}
			if !from.IsZero() && d.Before(from) {
				continue
			}
			if !to.IsZero() && d.After(to) {
				continue
			}
		}
		out = append(out, ord)
	}
	return out, nil
}

// RenderList writes the order cards as an HTML fragment.
func (o *Orders) RenderList(w io.Writer, orders []domain.Order) error {
	return orderListTmpl.Execute(w, orders)
}

func searchText(o domain.Order) string {
	return strings.ToLower(strings.Join([]string{o.ID, o.StatusText, "Customer: " + o.Customer, "Date: " + o.Date}, " "))
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}
