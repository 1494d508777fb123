package register

import (
	"context"

	"github.com/magabrotheeeer/visionlab-auth/internal/models"
)

// Service описывает бизнес-логику регистрации.
type Service interface {
	Register(ctx context.Context, email, password string, role models.Role) (models.PublicUser, error)
}
