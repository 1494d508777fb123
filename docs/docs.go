// Package docs содержит swagger-спецификацию API, которую отдаёт /docs.
// Спецификация ведётся вместе с аннотациями обработчиков.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/healthz": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Проверка состояния",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "503": {"description": "Хранилище или кэш недоступны", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        },
        "/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "Вход пользователя",
                "parameters": [
                    {
                        "description": "Учетные данные пользователя",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/login.Request"}
                    }
                ],
                "responses": {
                    "200": {"description": "Успешный вход", "schema": {"$ref": "#/definitions/response.Response"}},
                    "400": {"description": "Неверный пароль или некорректный JSON", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "404": {"description": "Учётная запись не найдена", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "422": {"description": "Ошибка валидации", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "429": {"description": "Слишком много неудачных попыток", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "500": {"description": "Внутренняя ошибка сервера", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        },
        "/me": {
            "get": {
                "security": [{"ApiKeyAuth": []}],
                "produces": ["application/json"],
                "tags": ["Users"],
                "summary": "Профиль текущего пользователя",
                "responses": {
                    "200": {"description": "Профиль", "schema": {"$ref": "#/definitions/response.Response"}},
                    "401": {"description": "Токен недействителен или просрочен", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "403": {"description": "Токен не передан", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "404": {"description": "Пользователь не найден", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        },
        "/register": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "Регистрация пользователя",
                "parameters": [
                    {
                        "description": "Данные пользователя",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/register.Request"}
                    }
                ],
                "responses": {
                    "201": {"description": "Пользователь зарегистрирован", "schema": {"$ref": "#/definitions/response.Response"}},
                    "400": {"description": "Email уже занят или некорректный JSON", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "422": {"description": "Ошибка валидации", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "500": {"description": "Внутренняя ошибка сервера", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        },
        "/user-role": {
            "get": {
                "security": [{"ApiKeyAuth": []}],
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "Роль владельца токена",
                "responses": {
                    "200": {"description": "Роль пользователя", "schema": {"$ref": "#/definitions/response.Response"}},
                    "401": {"description": "Токен недействителен или просрочен", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "403": {"description": "Токен не передан", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        },
        "/user/{email}": {
            "get": {
                "security": [{"ApiKeyAuth": []}],
                "description": "Доступно только наставникам.",
                "produces": ["application/json"],
                "tags": ["Users"],
                "summary": "Профиль пользователя по email",
                "parameters": [
                    {"type": "string", "description": "Email пользователя", "name": "email", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "Профиль", "schema": {"$ref": "#/definitions/response.Response"}},
                    "400": {"description": "Некорректно экранированный email", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "401": {"description": "Токен недействителен или просрочен", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "403": {"description": "Токен не передан или роль не mentor", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "404": {"description": "Пользователь не найден", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "login.Request": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string", "maxLength": 254, "example": "student@visionlab.io"},
                "password": {"type": "string", "maxLength": 72, "example": "secret"}
            }
        },
        "models.PublicUser": {
            "type": "object",
            "properties": {
                "created_at": {"type": "string"},
                "email": {"type": "string"},
                "id": {"type": "string"},
                "role": {"type": "string", "enum": ["mentor", "student"]}
            }
        },
        "register.Request": {
            "type": "object",
            "required": ["email", "password", "role"],
            "properties": {
                "email": {"type": "string", "maxLength": 254, "example": "mentor@visionlab.io"},
                "password": {"type": "string", "maxLength": 72, "example": "secret"},
                "role": {"type": "string", "enum": ["mentor", "student"], "example": "mentor"}
            }
        },
        "response.ErrorResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string", "example": "Unauthorized"}
            }
        },
        "response.Response": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "role": {"type": "string", "enum": ["mentor", "student"]},
                "token": {"type": "string"},
                "user": {"$ref": "#/definitions/models.PublicUser"}
            }
        }
    },
    "securityDefinitions": {
        "ApiKeyAuth": {
            "description": "Токен сессии как есть или в виде \"Bearer <token>\".",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:3001",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "VisionLab Auth API",
	Description:      "Регистрация, вход и проверка ролей пользователей VisionLab.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
