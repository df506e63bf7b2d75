package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Kazumi Communication Gateway",
        "description": "Session-terminating gateway in front of the school communication service",
        "version": "0.1.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Authentication", "description": "Gateway session lifecycle"},
        {"name": "Threads", "description": "Conversation selection and synchronized message threads"},
        {"name": "Directory", "description": "Schools, classes and rosters"},
        {"name": "Calendar", "description": "Shared school calendar"},
        {"name": "Activities", "description": "Educational content entries"},
        {"name": "Notifications", "description": "User notification feed"},
        {"name": "Students", "description": "Student records and education plans"},
        {"name": "Reports", "description": "Managerial aggregate reports"},
        {"name": "Exports", "description": "Transcript and report exports"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Sign in",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SignInRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/auth/register": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Create account",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RegisterRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Email already registered"}
                }
            }
        },
        "/auth/logout": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Sign out",
                "responses": {
                    "204": {"description": "Signed out"}
                }
            }
        },
        "/auth/session": {
            "get": {
                "tags": ["Authentication"],
                "summary": "Current session",
                "responses": {
                    "200": {"description": "Resolved", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "202": {"description": "Still resolving"}
                }
            }
        },
        "/threads": {
            "get": {
                "tags": ["Threads"],
                "summary": "Current thread",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/threads/refresh": {
            "post": {
                "tags": ["Threads"],
                "summary": "Run one synchronization pass",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "A pass is already running"}
                }
            }
        },
        "/threads/stream": {
            "get": {
                "tags": ["Threads"],
                "summary": "Thread event stream (SSE)",
                "produces": ["text/event-stream"],
                "responses": {
                    "200": {"description": "Event stream"}
                }
            }
        },
        "/threads/selection": {
            "get": {
                "tags": ["Threads"],
                "summary": "Current selection",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/threads/selection/school": {
            "post": {
                "tags": ["Threads"],
                "summary": "Select school",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/threads/selection/class": {
            "post": {
                "tags": ["Threads"],
                "summary": "Select class",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/threads/selection/contact": {
            "post": {
                "tags": ["Threads"],
                "summary": "Select contact",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/threads/messages": {
            "post": {
                "tags": ["Threads"],
                "summary": "Send message to the active contact",
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Empty body or no active contact"}
                }
            }
        },
        "/threads/messages/{id}/read": {
            "post": {
                "tags": ["Threads"],
                "summary": "Confirm read receipt",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schools": {
            "get": {
                "tags": ["Directory"],
                "summary": "List schools",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schools/{id}/classes": {
            "get": {
                "tags": ["Directory"],
                "summary": "List classes of a school",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/events": {
            "get": {
                "tags": ["Calendar"],
                "summary": "List calendar events",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/reports/engagement": {
            "get": {
                "tags": ["Reports"],
                "summary": "Engagement report",
                "parameters": [
                    {"name": "dias", "in": "query", "type": "integer"},
                    {"name": "escola_id", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/exports/thread": {
            "post": {
                "tags": ["Exports"],
                "summary": "Export thread transcript",
                "responses": {
                    "202": {"description": "Scheduled", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/exports/download/{token}": {
            "get": {
                "tags": ["Exports"],
                "summary": "Download a finished export",
                "parameters": [
                    {"name": "token", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "File"},
                    "410": {"description": "Link expired"}
                }
            }
        }
    },
    "definitions": {
        "SignInRequest": {
            "type": "object",
            "required": ["email", "senha"],
            "properties": {
                "email": {"type": "string"},
                "senha": {"type": "string"}
            }
        },
        "RegisterRequest": {
            "type": "object",
            "required": ["email", "senha", "confirmar_senha", "nome_completo", "tipo_usuario"],
            "properties": {
                "email": {"type": "string"},
                "senha": {"type": "string"},
                "confirmar_senha": {"type": "string"},
                "nome_completo": {"type": "string"},
                "tipo_usuario": {"type": "string"},
                "telefone": {"type": "string"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
