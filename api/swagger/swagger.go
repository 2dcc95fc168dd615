package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "BureauPlan API",
        "description": "AI assisted shift scheduling for multi-bureau newsrooms",
        "version": "0.1.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "tags": [
        {"name": "Auth", "description": "Authentication"},
        {"name": "Schedules", "description": "Schedule generation and persistence"},
        {"name": "Shifts", "description": "Saved shifts"},
        {"name": "Roster", "description": "Employees and bureaus"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Exchange credentials for an access token",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "Token issued", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedules/generate": {
            "post": {
                "tags": ["Schedules"],
                "summary": "Generate a shift schedule proposal",
                "description": "Runs the model pipeline. Without persist the result is stored as a preview that must be saved explicitly.",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/GenerateScheduleRequest"}}
                ],
                "responses": {
                    "200": {"description": "Generated schedule", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid request", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "Unknown bureau or employee", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "502": {"description": "Generation failed", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedules/{previewId}/save": {
            "post": {
                "tags": ["Schedules"],
                "summary": "Persist a previewed schedule",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "previewId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "201": {"description": "Schedule saved", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Preview not found or expired", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedules/{previewId}/export": {
            "get": {
                "tags": ["Schedules"],
                "summary": "Download a previewed schedule as CSV or PDF",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "previewId", "in": "path", "required": true, "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "Rendered document"},
                    "404": {"description": "Preview not found or expired", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedules/failures": {
            "get": {
                "tags": ["Schedules"],
                "summary": "Recent rejected model responses",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Failure records", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/shifts": {
            "get": {
                "tags": ["Shifts"],
                "summary": "List saved shifts",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "bureau", "in": "query", "type": "string"},
                    {"name": "start", "in": "query", "type": "string"},
                    {"name": "end", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "Shift listing", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/employees": {
            "get": {
                "tags": ["Roster"],
                "summary": "List employee planning profiles",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "bureau", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Employee profiles", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/bureaus": {
            "get": {
                "tags": ["Roster"],
                "summary": "List active bureaus",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Bureaus", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "GenerateScheduleRequest": {
            "type": "object",
            "required": ["start_date", "end_date", "bureau"],
            "properties": {
                "start_date": {"type": "string", "example": "2026-09-07"},
                "end_date": {"type": "string", "example": "2026-09-13"},
                "granularity": {"type": "string", "enum": ["week", "month", "quarter"]},
                "bureau": {"type": "string", "example": "both"},
                "holidays": {"type": "array", "items": {"type": "string"}},
                "preserve_existing": {"type": "boolean"},
                "persist": {"type": "boolean"},
                "max_tokens": {"type": "integer"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
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
                "pagination": {"$ref": "#/definitions/Pagination"},
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
