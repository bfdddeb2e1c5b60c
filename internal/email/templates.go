package email

import (
	"fmt"
	"html/template"
	"strings"
)

// OrderItem represents an item in an order for email purposes
type OrderItem struct {
	ProductID string
	Name      string
	Quantity  int
	UnitPrice int
}

func (i OrderItem) DisplayName() string {
	if i.Name == "" {
		return i.ProductID
	}
	return i.Name
}

func (i OrderItem) Subtotal() int {
	return i.UnitPrice * i.Quantity
}

var funcs = template.FuncMap{"money": FormatMoney}

var confirmationTmpl = template.Must(template.New("confirmation").Funcs(funcs).Parse(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: -apple-system, 'Segoe UI', Roboto, sans-serif; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
	<h1 style="font-size: 22px;">Thanks for your order, {{.CustomerName}}</h1>
	<p>Order number <strong style="font-family: monospace;">{{.OrderID}}</strong></p>
	<table style="width: 100%; border-collapse: collapse; margin: 20px 0;">
		<thead>
			<tr style="background: #f8f9fa;">
				<th style="padding: 8px; text-align: left;">Item</th>
				<th style="padding: 8px; text-align: center;">Qty</th>
				<th style="padding: 8px; text-align: right;">Unit price</th>
				<th style="padding: 8px; text-align: right;">Subtotal</th>
			</tr>
		</thead>
		<tbody>
		{{- range .Items}}
			<tr>
				<td style="padding: 8px; border-bottom: 1px solid #eee;">{{.DisplayName}}</td>
				<td style="padding: 8px; border-bottom: 1px solid #eee; text-align: center;">{{.Quantity}}</td>
				<td style="padding: 8px; border-bottom: 1px solid #eee; text-align: right;">{{money .UnitPrice}}</td>
				<td style="padding: 8px; border-bottom: 1px solid #eee; text-align: right;">{{money .Subtotal}}</td>
			</tr>
		{{- end}}
		</tbody>
	</table>
	<p style="text-align: right; font-size: 18px;">Total <strong>{{money .Total}}</strong></p>
	<p style="font-size: 12px; color: #999;">This is an automated message.</p>
</body>
</html>`))

var statusTmpl = template.Must(template.New("status").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: -apple-system, 'Segoe UI', Roboto, sans-serif; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
	<h1 style="font-size: 22px;">Your order is now {{.Status}}</h1>
	<p>Hi {{.CustomerName}}, order <strong style="font-family: monospace;">{{.OrderID}}</strong> changed from {{.From}} to {{.Status}}.</p>
	<p style="font-size: 12px; color: #999;">This is an automated message.</p>
</body>
</html>`))

type confirmationData struct {
	CustomerName string
	OrderID      string
	Items        []OrderItem
	Total        int
}

type statusData struct {
	CustomerName string
	OrderID      string
	From         string
	Status       string
}

// BuildOrderConfirmationBody renders the HTML and plain text bodies of an
// order confirmation
func BuildOrderConfirmationBody(customerName, orderID string, total int, items []OrderItem) (string, string, error) {
	var html strings.Builder
	data := confirmationData{CustomerName: customerName, OrderID: orderID, Items: items, Total: total}
	if err := confirmationTmpl.Execute(&html, data); err != nil {
		return "", "", err
	}

	var text strings.Builder
	fmt.Fprintf(&text, "Thanks for your order, %s.\n\nOrder number: %s\n\n", customerName, orderID)
	for _, item := range items {
		fmt.Fprintf(&text, "%d x %s @ %s = %s\n", item.Quantity, item.DisplayName(), FormatMoney(item.UnitPrice), FormatMoney(item.Subtotal()))
	}
	fmt.Fprintf(&text, "\nTotal: %s\n", FormatMoney(total))
	return html.String(), text.String(), nil
}

// BuildStatusUpdateBody renders the HTML and plain text bodies of a status
// change notice
func BuildStatusUpdateBody(customerName, orderID, from, status string) (string, string, error) {
	var html strings.Builder
	data := statusData{CustomerName: customerName, OrderID: orderID, From: from, Status: status}
	if err := statusTmpl.Execute(&html, data); err != nil {
		return "", "", err
	}
	text := fmt.Sprintf("Hi %s,\n\nOrder %s changed from %s to %s.\n", customerName, orderID, from, status)
	return html.String(), text, nil
}

// FormatMoney renders an amount in minor units as 1,234.56
func FormatMoney(minor int) string {
	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}
	return fmt.Sprintf("%s%s.%02d", sign, groupThousands(minor/100), minor%100)
}

func groupThousands(n int) string {
	str := fmt.Sprintf("%d", n)
	if len(str) <= 3 {
		return str
	}

	var result strings.Builder
	remainder := len(str) % 3
	if remainder > 0 {
		result.WriteString(str[:remainder])
	}
	for i := remainder; i < len(str); i += 3 {
		if result.Len() > 0 {
			result.WriteString(",")
		}
		result.WriteString(str[i : i+3])
	}
	return result.String()
}
