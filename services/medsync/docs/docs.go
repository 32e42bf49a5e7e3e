// Package docs registers the OpenAPI description of the JSON endpoints
// with swag so gin-swagger can serve it.
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
        "/healthz": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/health.Report"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/health.Report"}}
                }
            }
        },
        "/api/me": {
            "get": {
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Current user",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "allOf": [
                                {"$ref": "#/definitions/dto.Response"},
                                {"type": "object", "properties": {"data": {"$ref": "#/definitions/me.UserInfoResponse"}}}
                            ]
                        }
                    },
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/dto.Response"}}
                }
            }
        },
        "/admin/users/action": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["admin"],
                "summary": "Apply an account action",
                "parameters": [
                    {"type": "string", "description": "CSRF token", "name": "X-CSRF-Token", "in": "header", "required": true},
                    {"description": "Action", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/admin.ActionRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.Response"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.Response"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/dto.Response"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/dto.Response"}}
                }
            }
        }
    },
    "definitions": {
        "admin.ActionRequest": {
            "type": "object",
            "required": ["action", "user_id"],
            "properties": {
                "action": {"type": "string", "enum": ["activate", "deactivate"], "example": "deactivate"},
                "user_id": {"type": "integer", "example": 7}
            }
        },
        "dto.Response": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean", "example": true},
                "message": {"type": "string", "example": "User activated."},
                "code": {"type": "integer", "example": 0},
                "data": {}
            }
        },
        "health.Report": {
            "type": "object",
            "properties": {
                "healthy": {"type": "boolean", "example": true},
                "checks": {"type": "object", "additionalProperties": {"type": "string"}}
            }
        },
        "me.UserInfoResponse": {
            "type": "object",
            "properties": {
                "user_id": {"type": "integer", "example": 1},
                "display_user_id": {"type": "string", "example": "U0001"},
                "username": {"type": "string", "example": "alice"},
                "name": {"type": "string", "example": "Alice Liddell"},
                "role": {"type": "string", "example": "user"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "MedSync API",
	Description:      "JSON endpoints of the MedSync patient portal.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
