// Package storage описывает общие ошибки хранилищ учётных записей.
// Конкретные реализации находятся в подпакетах postgresql и mongodb.
package storage

import "errors"

var (
	// ErrUserExists возвращается при попытке сохранить пользователя с уже занятым email.
	ErrUserExists = errors.New("user already exists")
	// ErrUserNotFound возвращается, если пользователь с указанным email не найден.
	ErrUserNotFound = errors.New("user not found")
)
