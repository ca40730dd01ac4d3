package linktoken

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Errores de verificación. El caller decide cómo mapearlos a su dominio.
var (
	ErrExpired = errors.New("linktoken: token expirado")
	ErrInvalid = errors.New("linktoken: token inválido")
)

// Signer firma y verifica tokens de un solo propósito con expiración (HS256).
// A diferencia de los JWT de sesión, estos tokens solo transportan el ID del
// recurso al que están ligados; no otorgan ninguna otra autoridad.
type Signer struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

// New construye el firmador. El secret no puede estar vacío. El ttl se toma tal
// cual; un ttl negativo produce tokens ya vencidos (útil en tests).
func New(secret, issuer string, ttl time.Duration) (*Signer, error) {
	if secret == "" {
		return nil, fmt.Errorf("linktoken: secret vacío")
	}
	return &Signer{secret: []byte(secret), issuer: issuer, ttl: ttl}, nil
}

// Sign emite un token ligado a subject (el ID del recurso) con la validez configurada.
func (s *Signer) Sign(subject string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Issuer:    s.issuer,
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify valida firma y expiración y devuelve el subject del token.
// Retorna ErrExpired si venció y ErrInvalid para cualquier otro fallo.
func (s *Signer) Verify(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("método de firma inesperado: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrExpired
		}
		return "", ErrInvalid
	}
	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return "", ErrInvalid
	}
	return claims.Subject, nil
}
