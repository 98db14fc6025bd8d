package service

import (
	"github.com/clerk/clerk-sdk-go/v2"

	"github.com/deppfellow/storefront/internal/config"
)

// AuthService configures the Clerk SDK that authenticates staff on the
// admin routes. Customers use AccountService instead.
type AuthService struct {
	adminRole string
}

func NewAuthService(cfg config.AuthConfig) *AuthService {
	clerk.SetKey(cfg.SecretKey)
	return &AuthService{
		adminRole: cfg.AdminRole,
	}
}

// AdminRole is the Clerk organization role required on admin routes.
func (s *AuthService) AdminRole() string {
	return s.adminRole
}
