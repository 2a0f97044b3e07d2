// Package docs registers the OpenAPI description served under /swagger/.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/health": {
            "get": {
                "description": "Reports database and cache reachability.",
                "produces": ["application/json"],
                "tags": ["System"],
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.healthResponse"}}
                }
            }
        },
        "/users": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Users"],
                "summary": "List users",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/model.User"}}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/api.messageResponse"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Admin only. Username and email must be unique.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Users"],
                "summary": "Create a user",
                "parameters": [
                    {"description": "New user", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/model.CreateUserRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/model.User"}, "headers": {"Location": {"type": "string", "description": "/api/users/{id}"}}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.messageResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/api.messageResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/api.messageResponse"}}
                }
            }
        },
        "/users/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Users"],
                "summary": "Get a user",
                "parameters": [{"type": "integer", "description": "User ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.User"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.messageResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/api.messageResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/api.messageResponse"}}
                }
            },
            "put": {
                "security": [{"BearerAuth": []}],
                "description": "Admin only. Replaces email, names and role; the password changes only when given.",
                "consumes": ["application/json"],
                "tags": ["Users"],
                "summary": "Update a user",
                "parameters": [
                    {"type": "integer", "description": "User ID", "name": "id", "in": "path", "required": true},
                    {"description": "Changes", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/model.UpdateUserRequest"}}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.messageResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/api.messageResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/api.messageResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/api.messageResponse"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["Users"],
                "summary": "Delete a user",
                "parameters": [{"type": "integer", "description": "User ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "204": {"description": "No Content"},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/api.messageResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/api.messageResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/api.messageResponse"}}
                }
            }
        },
        "/weather/cities": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Weather"],
                "summary": "Supported cities",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"type": "string"}}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/api.messageResponse"}}
                }
            }
        },
        "/weather/{city}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Served from the cache when possible. Any city name is accepted.",
                "produces": ["application/json"],
                "tags": ["Weather"],
                "summary": "Current weather for a city",
                "parameters": [{"type": "string", "description": "City name", "name": "city", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.Weather"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/api.messageResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/api.messageResponse"}}
                }
            }
        }
    },
    "definitions": {
        "api.healthResponse": {
            "type": "object",
            "properties": {
                "cache": {"type": "string"},
                "database": {"type": "string"},
                "status": {"type": "string"}
            }
        },
        "api.messageResponse": {
            "type": "object",
            "properties": {"message": {"type": "string"}}
        },
        "model.CreateUserRequest": {
            "type": "object",
            "required": ["email", "password", "username"],
            "properties": {
                "email": {"type": "string", "maxLength": 100},
                "firstName": {"type": "string", "maxLength": 50},
                "lastName": {"type": "string", "maxLength": 50},
                "password": {"type": "string", "minLength": 6},
                "role": {"type": "string", "enum": ["Admin", "User"]},
                "username": {"type": "string", "maxLength": 50, "minLength": 3}
            }
        },
        "model.UpdateUserRequest": {
            "type": "object",
            "required": ["email", "role"],
            "properties": {
                "email": {"type": "string", "maxLength": 100},
                "firstName": {"type": "string", "maxLength": 50},
                "lastName": {"type": "string", "maxLength": 50},
                "password": {"type": "string", "minLength": 6},
                "role": {"type": "string", "enum": ["Admin", "User"]}
            }
        },
        "model.User": {
            "type": "object",
            "properties": {
                "createdAt": {"type": "string"},
                "email": {"type": "string"},
                "firstName": {"type": "string"},
                "id": {"type": "integer"},
                "lastName": {"type": "string"},
                "role": {"type": "string", "enum": ["Admin", "User"]},
                "updatedAt": {"type": "string"},
                "username": {"type": "string"}
            }
        },
        "model.Weather": {
            "type": "object",
            "properties": {
                "city": {"type": "string"},
                "country": {"type": "string"},
                "description": {"type": "string"},
                "feelsLike": {"type": "number"},
                "humidity": {"type": "integer"},
                "pressure": {"type": "integer"},
                "temperature": {"type": "number"},
                "visibility": {"type": "number"},
                "windSpeed": {"type": "number"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Enter your JWT token with the ` + "`" + `Bearer ` + "`" + ` prefix, e.g. \"Bearer eyJhbGci...\"",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "User Management API",
	Description:      "User management with JWT-protected CRUD and a cached weather lookup.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
