package auth

import (
	"context"
	"crypto/subtle"
	"fmt"

	common_models "laundry-pos/internal/common/models"
	"laundry-pos/internal/config"
	"laundry-pos/internal/features/audit"
	"laundry-pos/pkg/utils"
)

type AuthService interface {
	Login(ctx context.Context, username, password string) (string, error)
}

type AuthServiceImpl struct {
	Config       *config.Config
	AuditService audit.AuditService
}

func NewAuthService(cfg *config.Config, auditService audit.AuditService) AuthService {
	return &AuthServiceImpl{
		Config:       cfg,
		AuditService: auditService,
	}
}

func (s *AuthServiceImpl) Login(ctx context.Context, username, password string) (string, error) {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.Config.AdminUser)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(s.Config.AdminPassword)) == 1
	if !userOK || !passOK {
		return "", fmt.Errorf("invalid credentials")
	}

	token, err := utils.GenerateToken(username, []string{"admin"})
	if err != nil {
		return "", err
	}

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionLogin, "auth", username, nil)

	return token, nil
}
