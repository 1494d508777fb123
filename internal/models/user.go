// Package models содержит доменную модель учётной записи VisionLab:
// пользователя, его роль и публичную проекцию, которую можно отдавать клиенту.
// Структуры используются в бизнес‑логике и при работе с хранилищем.
package models

import "time"

// Role — роль пользователя, определяющая доступные ему разделы платформы.
type Role string

const (
	// RoleMentor — наставник (преподаватель).
	RoleMentor Role = "mentor"
	// RoleStudent — ученик.
	RoleStudent Role = "student"
)

// Valid сообщает, является ли роль одной из известных.
func (r Role) Valid() bool {
	switch r {
	case RoleMentor, RoleStudent:
		return true
	default:
		return false
	}
}

func (r Role) String() string {
	return string(r)
}

// User представляет зарегистрированного пользователя системы.
//
// Email — естественный ключ, уникален и чувствителен к регистру.
// Пароль в открытом виде никогда не хранится, только bcrypt‑хэш.
type User struct {
	ID           string    `bson:"_id"`           // Уникальный идентификатор пользователя
	Email        string    `bson:"email"`         // Электронная почта (уникальная)
	PasswordHash string    `bson:"password_hash"` // Хэш пароля пользователя
	Role         Role      `bson:"role"`          // Роль пользователя, mentor или student
	CreatedAt    time.Time `bson:"created_at"`    // Дата регистрации
}

// PublicUser — безопасная для выдачи клиенту проекция пользователя, без хэша пароля.
type PublicUser struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// Public возвращает публичную проекцию пользователя.
func (u User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}
