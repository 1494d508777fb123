package middlewarectx

import "github.com/magabrotheeeer/visionlab-auth/internal/lib/jwt"

// TokenVerifier проверяет подпись и срок действия токена сессии.
type TokenVerifier interface {
	ParseToken(tokenStr string) (*jwt.CustomClaims, error)
}

// GateMetrics считает решения проверки токена.
type GateMetrics interface {
	ObserveGate(result string)
}

// Результаты проверки токена для метрик.
const (
	GateOK        = "ok"
	GateMissing   = "missing"
	GateInvalid   = "invalid"
	GateForbidden = "forbidden"
)

type noopGateMetrics struct{}

func (noopGateMetrics) ObserveGate(string) {}
