package login

import (
	"context"

	"github.com/magabrotheeeer/visionlab-auth/internal/models"
)

// Service описывает бизнес-логику входа.
type Service interface {
	Login(ctx context.Context, email, password string) (string, models.Role, error)
}
