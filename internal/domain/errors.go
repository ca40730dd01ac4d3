package domain

import "errors"

// Errores de dominio (sin dependencias externas).
// La capa HTTP los mapea de forma determinista a códigos de estado.
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrConflict           = errors.New("conflicto con el estado actual")
	ErrInsufficientStock  = errors.New("stock insuficiente")

	// Jerarquía de categorías
	ErrCycleDetected = errors.New("la operación crearía una jerarquía circular")
	ErrHasDependents = errors.New("la categoría tiene subcategorías o productos asociados")

	// Ciclo de vida de solicitudes internas
	ErrNotEditable      = errors.New("solo las solicitudes pendientes pueden modificarse")
	ErrAlreadyProcessed = errors.New("la solicitud ya fue procesada")

	// Links de confirmación de órdenes
	ErrTokenInvalid  = errors.New("token de confirmación inválido")
	ErrTokenExpired  = errors.New("el link de confirmación expiró")
	ErrTokenMismatch = errors.New("el token no corresponde a esta orden")
	ErrTokenUsed     = errors.New("el link de confirmación ya fue utilizado")

	ErrInvalidStatus = errors.New("estado inválido")
)
