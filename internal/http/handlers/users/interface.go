// Package users содержит обработчики чтения публичных профилей.
package users

import (
	"context"

	"github.com/magabrotheeeer/visionlab-auth/internal/models"
)

// Service описывает чтение профиля по email.
type Service interface {
	GetUser(ctx context.Context, email string) (models.PublicUser, error)
}
