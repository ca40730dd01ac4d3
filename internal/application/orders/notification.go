package orders

import (
	"fmt"
	"strings"
)

// notificationInput datos para armar el correo de nueva orden al proveedor.
type notificationInput struct {
	OrderID      string
	SupplierName string
	Lines        []notificationLine
	ConfirmURL   string
	RejectURL    string
}

// notificationLine línea producto+cantidad del detalle.
type notificationLine struct {
	ProductName string
	Quantity    int
}

// buildNotification arma asunto, cuerpo HTML y cuerpo de texto plano del
// correo de notificación con los links de confirmación y rechazo.
func buildNotification(in notificationInput) (subject, html, text string) {
	subject = fmt.Sprintf("Nueva orden de compra #%s", in.OrderID)

	var items strings.Builder
	for _, l := range in.Lines {
		fmt.Fprintf(&items, "<li>%s — Cantidad: %d</li>\n", l.ProductName, l.Quantity)
	}

	html = fmt.Sprintf(`
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2>Nueva orden #%s</h2>
  <p>Hola %s,</p>
  <p>Recibiste una nueva orden de compra con %d artículo(s).</p>

  <h3>Detalle de la orden:</h3>
  <ul>
%s  </ul>

  <div style="margin: 30px 0;">
    <a href="%s"
       style="display:inline-block;padding:12px 24px;margin:10px 5px;background-color:#22c55e;color:white;text-decoration:none;border-radius:6px;font-weight:bold;">
       Confirmar la orden
    </a>
    <a href="%s"
       style="display:inline-block;padding:12px 24px;margin:10px 5px;background-color:#ef4444;color:white;text-decoration:none;border-radius:6px;font-weight:bold;">
       Rechazar la orden
    </a>
  </div>

  <p style="color: #666; font-size: 12px;">
    Este link es válido durante 24 horas.
  </p>
</div>`, in.OrderID, in.SupplierName, len(in.Lines), items.String(), in.ConfirmURL, in.RejectURL)

	var textLines strings.Builder
	for _, l := range in.Lines {
		fmt.Fprintf(&textLines, "  - %s — Cantidad: %d\n", l.ProductName, l.Quantity)
	}
	text = fmt.Sprintf(`Nueva orden #%s

Hola %s,

Recibiste una nueva orden de compra con %d artículo(s):
%s
Para confirmar: %s
Para rechazar: %s

Este link es válido durante 24 horas.
`, in.OrderID, in.SupplierName, len(in.Lines), textLines.String(), in.ConfirmURL, in.RejectURL)

	return subject, html, text
}
