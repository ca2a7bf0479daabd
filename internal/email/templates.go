package email

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ReceiptLine is one product row of a receipt
type ReceiptLine struct {
	Name          string
	Kg            decimal.Decimal
	PricePerKg    decimal.Decimal
	TransportCost decimal.Decimal
}

// Receipt is the content of a payment confirmation mail
type Receipt struct {
	TransactionID string
	Method        string // display name
	CardLast4     string
	Lines         []ReceiptLine
	Total         decimal.Decimal
	PaidAt        time.Time
}

// BuildReceiptBody builds the HTML body for the payment receipt email
func BuildReceiptBody(r Receipt) string {
	var itemsHTML strings.Builder
	for _, line := range r.Lines {
		subtotal := line.PricePerKg.Mul(line.Kg)
		fmt.Fprintf(&itemsHTML,
			`<tr>
				<td style="padding: 12px; border-bottom: 1px solid #eee;">%s</td>
				<td style="padding: 12px; border-bottom: 1px solid #eee; text-align: center;">%s kg</td>
				<td style="padding: 12px; border-bottom: 1px solid #eee; text-align: right;">%s</td>
				<td style="padding: 12px; border-bottom: 1px solid #eee; text-align: right;">%s</td>
				<td style="padding: 12px; border-bottom: 1px solid #eee; text-align: right;">%s</td>
			</tr>`,
			html.EscapeString(line.Name),
			line.Kg.String(),
			formatMoney(line.PricePerKg),
			formatMoney(line.TransportCost),
			formatMoney(subtotal.Add(line.TransportCost)),
		)
	}

	method := r.Method
	if r.CardLast4 != "" {
		method = fmt.Sprintf("%s terminada en %s", method, r.CardLast4)
	}

	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
	<div style="background: linear-gradient(135deg, #16a34a 0%%, #65a30d 100%%); padding: 30px; border-radius: 10px 10px 0 0;">
		<h1 style="color: white; margin: 0; font-size: 24px;">¡Pago realizado exitosamente!</h1>
	</div>

	<div style="background: #fff; padding: 30px; border: 1px solid #eee; border-top: none; border-radius: 0 0 10px 10px;">
		<p style="margin-top: 0;">Gracias por comprar en AgroConnect. Tu pedido fue confirmado.</p>

		<div style="background: #f8f9fa; padding: 15px; border-radius: 5px; margin: 20px 0;">
			<p style="margin: 0; font-size: 14px; color: #666;">ID de transacción</p>
			<p style="margin: 5px 0 0 0; font-size: 18px; font-weight: bold; font-family: monospace;">%s</p>
			<p style="margin: 10px 0 0 0; font-size: 14px; color: #666;">Método de pago: %s</p>
			<p style="margin: 5px 0 0 0; font-size: 14px; color: #666;">Fecha: %s</p>
		</div>

		<h2 style="font-size: 18px; border-bottom: 2px solid #16a34a; padding-bottom: 10px;">Detalle del pedido</h2>

		<table style="width: 100%%; border-collapse: collapse; margin: 20px 0;">
			<thead>
				<tr style="background: #f8f9fa;">
					<th style="padding: 12px; text-align: left; font-weight: 600;">Producto</th>
					<th style="padding: 12px; text-align: center; font-weight: 600;">Cantidad</th>
					<th style="padding: 12px; text-align: right; font-weight: 600;">Precio/kg</th>
					<th style="padding: 12px; text-align: right; font-weight: 600;">Transporte</th>
					<th style="padding: 12px; text-align: right; font-weight: 600;">Subtotal</th>
				</tr>
			</thead>
			<tbody>
				%s
			</tbody>
		</table>

		<div style="text-align: right; padding: 20px; background: #f8f9fa; border-radius: 5px;">
			<span style="font-size: 14px; color: #666;">Total pagado</span>
			<span style="font-size: 24px; font-weight: bold; color: #16a34a; margin-left: 10px;">%s</span>
		</div>

		<hr style="border: none; border-top: 1px solid #eee; margin: 30px 0;">

		<p style="font-size: 12px; color: #999; margin-bottom: 0;">
			Este correo se envía automáticamente. Si tienes dudas, contacta a nuestro equipo de soporte.
		</p>
	</div>
</body>
</html>`,
		html.EscapeString(r.TransactionID),
		html.EscapeString(method),
		r.PaidAt.Format("02/01/2006 15:04"),
		itemsHTML.String(),
		formatMoney(r.Total),
	)
}

// formatMoney renders an amount as dollars with two decimals and comma
// thousands separators
func formatMoney(d decimal.Decimal) string {
	str := d.Abs().StringFixed(2)
	whole, frac, _ := strings.Cut(str, ".")

	var result strings.Builder
	if d.IsNegative() {
		result.WriteString("-")
	}
	result.WriteString("$")

	remainder := len(whole) % 3
	if remainder > 0 {
		result.WriteString(whole[:remainder])
		if len(whole) > remainder {
			result.WriteString(",")
		}
	}
	for i := remainder; i < len(whole); i += 3 {
		result.WriteString(whole[i : i+3])
		if i+3 < len(whole) {
			result.WriteString(",")
		}
	}

	result.WriteString(".")
	result.WriteString(frac)
	return result.String()
}
