package service

import (
	"github.com/clerk/clerk-sdk-go/v2"
	"github.com/deppfellow/learnhub/internal/config"
	"github.com/deppfellow/learnhub/internal/server"
)

// AuthService owns the auth provider setup. Token verification itself happens in
// the auth middleware; this service only prepares the Clerk SDK for it.
type AuthService struct {
	server *server.Server
}

// NewAuthService configures the Clerk SDK with the secret key when Clerk
// is the active provider.
func NewAuthService(s *server.Server) *AuthService {
	if s.Config.Auth.Provider == config.AuthProviderClerk {
		clerk.SetKey(s.Config.Auth.SecretKey)
	}
	return &AuthService{
		server: s,
	}
}

// Provider returns the configured auth provider.
func (a *AuthService) Provider() string {
	return a.server.Config.Auth.Provider
}
