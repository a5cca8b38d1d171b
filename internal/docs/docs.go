// Package docs registra el documento Swagger que sirve /swagger/*.
// Se regenera con `swag init -g cmd/api/main.go -o internal/docs`.
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
        "/reports": {
            "get": {
                "produces": ["application/json"],
                "tags": ["reports"],
                "summary": "Listar animales reportados",
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "consumes": ["multipart/form-data", "application/json"],
                "produces": ["application/json"],
                "tags": ["reports"],
                "summary": "Reportar un animal",
                "parameters": [
                    {"type": "string", "name": "animal_type", "in": "formData", "required": true, "enum": ["dog", "cat", "bird", "other"]},
                    {"type": "string", "name": "condition", "in": "formData", "required": true, "enum": ["injured", "aggressive", "stray", "accident"]},
                    {"type": "string", "name": "location", "in": "formData", "required": true},
                    {"type": "string", "name": "gmaps_link", "in": "formData"},
                    {"type": "string", "name": "description", "in": "formData"},
                    {"type": "string", "name": "contact_name", "in": "formData"},
                    {"type": "string", "name": "contact_phone", "in": "formData"},
                    {"type": "file", "name": "photo", "in": "formData", "description": "JPG, PNG o WEBP, menos de 5MB"}
                ],
                "responses": {
                    "201": {"description": "Created"},
                    "400": {"description": "validación"},
                    "502": {"description": "photo upload failed"}
                }
            }
        },
        "/reports/adoptable": {
            "get": {
                "produces": ["application/json"],
                "tags": ["reports"],
                "summary": "Catálogo de adopción (resueltos, no agresivos)",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/reports/{reportID}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["reports"],
                "summary": "Obtener un reporte",
                "parameters": [{"type": "string", "name": "reportID", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "not found"}}
            }
        },
        "/adoptions": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["adoptions"],
                "summary": "Solicitar una adopción",
                "responses": {"201": {"description": "Created"}, "400": {"description": "validación"}}
            }
        },
        "/donations": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["donations"],
                "summary": "Registrar un compromiso de donación",
                "responses": {"201": {"description": "Created"}, "400": {"description": "validación"}}
            }
        },
        "/hospitals": {
            "get": {
                "produces": ["application/json"],
                "tags": ["hospitals"],
                "summary": "Directorio de hospitales",
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["hospitals"],
                "summary": "Registrar un hospital veterinario",
                "responses": {"201": {"description": "Created"}, "400": {"description": "validación"}}
            }
        },
        "/contact": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["contact"],
                "summary": "Enviar un mensaje",
                "responses": {"202": {"description": "Accepted"}, "400": {"description": "validación"}}
            }
        },
        "/tracking": {
            "get": {
                "produces": ["application/json"],
                "tags": ["tracking"],
                "summary": "Posiciones GPS actuales",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/tracking/stream": {
            "get": {
                "produces": ["text/event-stream"],
                "tags": ["tracking"],
                "summary": "Stream de posiciones (Server-Sent Events)",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/admin/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["admin"],
                "summary": "Login del dashboard",
                "responses": {
                    "200": {"description": "OK"},
                    "401": {"description": "access denied"},
                    "429": {"description": "too many failed attempts"}
                }
            }
        },
        "/admin/logout": {
            "post": {
                "tags": ["admin"],
                "summary": "Logout del dashboard",
                "responses": {"204": {"description": "No Content"}}
            }
        },
        "/admin/overview": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["admin"],
                "summary": "Vista general del dashboard",
                "responses": {
                    "200": {"description": "OK"},
                    "401": {"description": "unauthorized"},
                    "500": {"description": "failed to load dashboard data"}
                }
            }
        },
        "/admin/{kind}/{id}/status": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["admin"],
                "summary": "Cambiar el estado de una solicitud",
                "parameters": [
                    {"type": "string", "name": "kind", "in": "path", "required": true, "enum": ["reports", "adoptions", "donations", "hospitals"]},
                    {"type": "string", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "not found"},
                    "409": {"description": "invalid status transition"}
                }
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Animal Rescue API",
	Description:      "Reportes de animales, adopciones, donaciones, hospitales y tracking GPS.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
