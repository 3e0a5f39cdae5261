package app

import (
	"fmt"
	"strings"

	"realtime_chat_service/internal/chat/domain"
	"realtime_chat_service/pkg/logger"
	"realtime_chat_service/pkg/token"

	"go.uber.org/zap"
)

// ConnectionGate admits a connection or request only with a verified credential
type ConnectionGate struct {
	parse func(raw string) (*token.Claims, error)
}

// NewConnectionGate create a ConnectionGate backed by the JWT parser
func NewConnectionGate() *ConnectionGate {
	return &ConnectionGate{parse: token.ParseJWT}
}

// Admit returns the member id named by the credential
func (g *ConnectionGate) Admit(rawCredential string) (string, error) {
	if strings.TrimSpace(rawCredential) == "" {
		return "", fmt.Errorf("%w: missing credential", domain.ErrAuth)
	}

	claims, err := g.parse(rawCredential)
	if err != nil {
		logger.Log.Warn("credential rejected", zap.Error(err))
		return "", fmt.Errorf("%w: %v", domain.ErrAuth, err)
	}
	return claims.MemberID, nil
}
