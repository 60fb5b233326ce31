package order

import (
	"bytes"
	"context"
	"encoding/csv"
	"html/template"
	"sort"
	"strconv"

	"github.com/meatline/meatline/internal/dto"
	repo "github.com/meatline/meatline/internal/repository/order"
	"github.com/meatline/meatline/pkg/errorbank"
)

var csvHeader = []string{
	"order_number", "customer", "customer_code", "delivery_date", "status",
	"product", "category", "quantity", "unit", "weight", "item_notes",
}

// ExportCSV renders the orders matching the filter as CSV, one row per item
// line. Orders without items still get a single summary row. The output
// starts with a UTF-8 BOM so spreadsheet tools pick up non-ASCII names.
func (s *Service) ExportCSV(ctx context.Context, filter repo.ListFilter) ([]byte, error) {
	orders, err := s.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.WriteString("\uFEFF")
	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeader); err != nil {
		return nil, errorbank.Internal("failed to write csv", errorbank.WithCause(err))
	}

	for _, order := range orders {
		resp := ToResponse(order)
		base := []string{
			resp.Number,
			customerField(resp, func(c *dto.CustomerResponse) string { return c.Name }),
			customerField(resp, func(c *dto.CustomerResponse) string { return c.Code }),
			resp.DeliveryDate.Format("2006-01-02"),
			resp.Status,
		}
		if len(resp.Items) == 0 {
			if err := w.Write(append(base, "", "", "", "", "", "")); err != nil {
				return nil, errorbank.Internal("failed to write csv", errorbank.WithCause(err))
			}
			continue
		}
		for _, item := range resp.Items {
			row := append(append([]string{}, base...),
				item.ProductName,
				item.Category,
				strconv.FormatFloat(item.Quantity, 'f', -1, 64),
				item.Unit,
				item.Weight,
				item.Notes,
			)
			if err := w.Write(row); err != nil {
				return nil, errorbank.Internal("failed to write csv", errorbank.WithCause(err))
			}
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, errorbank.Internal("failed to write csv", errorbank.WithCause(err))
	}
	return buf.Bytes(), nil
}

// printCategory is one product-category section of the print document.
type printCategory struct {
	Name  string
	Items []dto.OrderItemResponse
}

// printDocument is the template context for a printable order sheet.
type printDocument struct {
	Order      dto.OrderResponse
	Categories []printCategory
}

var printTemplate = template.Must(template.New("order-print").Parse(`<!DOCTYPE html>
<html dir="rtl">
<head>
<meta charset="utf-8">
<title>{{.Order.Number}}</title>
<style>
body { font-family: sans-serif; margin: 2em; }
h1 { border-bottom: 2px solid #333; padding-bottom: 0.3em; }
h2 { background: #eee; padding: 0.2em 0.5em; }
table { width: 100%; border-collapse: collapse; margin-bottom: 1.5em; }
th, td { border: 1px solid #999; padding: 0.3em 0.6em; text-align: right; }
.meta p { margin: 0.2em 0; }
@media print { .no-print { display: none; } }
</style>
</head>
<body>
<h1>{{.Order.Number}}</h1>
<div class="meta">
{{with .Order.Customer}}
<p><strong>{{.Name}}</strong>{{if .Code}} ({{.Code}}){{end}}</p>
{{if .Phone}}<p>{{.Phone}}</p>{{end}}
{{if .Address}}<p>{{.Address}}</p>{{end}}
{{end}}
<p>Delivery: {{.Order.DeliveryDate.Format "02/01/2006"}}</p>
<p>Status: {{.Order.Status}}</p>
{{if .Order.Notes}}<p>Notes: {{.Order.Notes}}</p>{{end}}
</div>
{{range .Categories}}
<h2>{{.Name}}</h2>
<table>
<tr><th>Product</th><th>Quantity</th><th>Unit</th><th>Weight</th><th>Notes</th></tr>
{{range .Items}}
<tr><td>{{.ProductName}}</td><td>{{.Quantity}}</td><td>{{.Unit}}</td><td>{{.Weight}}</td><td>{{.Notes}}</td></tr>
{{end}}
</table>
{{end}}
</body>
</html>
`))

// RenderPrintDocument produces the printable HTML sheet for one order, with
// item lines grouped by product category the way warehouse pickers work
// through the cold room.
func (s *Service) RenderPrintDocument(ctx context.Context, id int64) ([]byte, error) {
	order, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := ToResponse(order)
	grouped := make(map[string][]dto.OrderItemResponse)
	for _, item := range resp.Items {
		category := item.Category
		if category == "" {
			category = "other"
		}
		grouped[category] = append(grouped[category], item)
	}

	names := make([]string, 0, len(grouped))
	for name := range grouped {
		names = append(names, name)
	}
	sort.Strings(names)

	doc := printDocument{Order: resp}
	for _, name := range names {
		doc.Categories = append(doc.Categories, printCategory{Name: name, Items: grouped[name]})
	}

	var buf bytes.Buffer
	if err := printTemplate.Execute(&buf, doc); err != nil {
		return nil, errorbank.Internal("failed to render print document", errorbank.WithCause(err))
	}
	return buf.Bytes(), nil
}

func customerField(resp dto.OrderResponse, pick func(*dto.CustomerResponse) string) string {
	if resp.Customer == nil {
		return ""
	}
	return pick(resp.Customer)
}
