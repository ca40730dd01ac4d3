package orders

import (
	"errors"

	"github.com/tu-usuario/almacen-api/internal/domain"
	"github.com/tu-usuario/almacen-api/pkg/linktoken"
)

// ConfirmTokenService emite y verifica los tokens de un solo uso que viajan en
// los links de confirmación/rechazo enviados al proveedor.
//
// El token solo transporta el ID de la orden a la que está ligado: no es un
// token de sesión y no otorga ninguna autoridad más allá de confirmar o
// rechazar esa orden. Su neutralización definitiva es el flag token_used de la
// orden (check-and-set en el store), no su propia expiración.
type ConfirmTokenService struct {
	signer *linktoken.Signer
}

// NewConfirmTokenService construye el servicio sobre un firmador ya configurado
// (secreto propio de órdenes, validez de 24h por defecto).
func NewConfirmTokenService(signer *linktoken.Signer) *ConfirmTokenService {
	return &ConfirmTokenService{signer: signer}
}

// Mint emite un token ligado a orderID.
func (s *ConfirmTokenService) Mint(orderID string) (string, error) {
	return s.signer.Sign(orderID)
}

// Verify valida firma, expiración y ligadura del token contra orderID.
// Un token válido pero acuñado para otra orden es ErrTokenMismatch: la firma
// correcta no lo salva.
func (s *ConfirmTokenService) Verify(token, orderID string) error {
	subject, err := s.signer.Verify(token)
	if err != nil {
		if errors.Is(err, linktoken.ErrExpired) {
			return domain.ErrTokenExpired
		}
		return domain.ErrTokenInvalid
	}
	if subject != orderID {
		return domain.ErrTokenMismatch
	}
	return nil
}
