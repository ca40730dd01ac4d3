package requests

import "fmt"

// buildLowStockAlert arma el correo de alerta cuando el stock de un producto
// queda en o por debajo de su umbral tras un retiro.
func buildLowStockAlert(productName string, quantity, alertLevel int) (subject, html, text string) {
	subject = fmt.Sprintf("Alerta de stock bajo: %s", productName)

	html = fmt.Sprintf(`
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2>Alerta de stock bajo</h2>
  <p><strong>Atención:</strong> el stock del siguiente producto está bajo.</p>
  <div style="background-color:#fef3c7;padding:15px;border-radius:5px;margin:20px 0;">
    <p><strong>Producto:</strong> %s</p>
    <p><strong>Stock actual:</strong> %d unidades</p>
    <p><strong>Umbral de alerta:</strong> %d unidades</p>
  </div>
  <p>Considere generar una orden de reabastecimiento.</p>
  <p style="color: #666; font-size: 12px;">
    Notificación automática del sistema de gestión de stock.
  </p>
</div>`, productName, quantity, alertLevel)

	text = fmt.Sprintf(`Alerta de stock bajo: %s

Stock actual: %d unidades
Umbral de alerta: %d unidades

Considere generar una orden de reabastecimiento.
`, productName, quantity, alertLevel)

	return subject, html, text
}
