package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Notice Suspension API",
        "description": "Temporary and permanent suspension, revival and auto-revival of parking notices.",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Suspensions", "description": "Apply and revive TS/PS holds"},
        {"name": "Auto Revival", "description": "Payment and expiry driven revival"},
        {"name": "Notices", "description": "Suspension history per notice"},
        {"name": "Operations", "description": "Health, readiness and metrics"}
    ],
    "paths": {
        "/health": {
            "get": {
                "tags": ["Operations"],
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "tags": ["Operations"],
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"},
                    "503": {"description": "A dependency is unavailable"}
                }
            }
        },
        "/metrics": {
            "get": {
                "tags": ["Operations"],
                "summary": "Prometheus metrics",
                "produces": ["text/plain"],
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/api/v1/auth/token": {
            "post": {
                "tags": ["Operations"],
                "summary": "Issue a development token",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/TokenRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/suspension-codes": {
            "get": {
                "tags": ["Suspensions"],
                "summary": "List suspension codes available to a source",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "type", "in": "query", "type": "string", "enum": ["TS", "PS"]},
                    {"name": "source", "in": "query", "type": "string", "enum": ["OCMS", "PLUS", "BACKEND"]}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/staff/suspensions/apply": {
            "post": {
                "tags": ["Suspensions"],
                "summary": "Apply a suspension from the staff portal",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ApplySuspensionRequest"}}
                ],
                "responses": {
                    "200": {"description": "Per-notice results", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/staff/suspensions/revive": {
            "post": {
                "tags": ["Suspensions"],
                "summary": "Revive suspensions from the staff portal",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ReviveSuspensionRequest"}}
                ],
                "responses": {
                    "200": {"description": "Per-notice results", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/plus/suspensions/apply": {
            "post": {
                "tags": ["Suspensions"],
                "summary": "Apply or check a suspension from PLUS",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "checking", "in": "query", "type": "boolean"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ApplySuspensionRequest"}}
                ],
                "responses": {
                    "200": {"description": "Per-notice results", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/plus/suspensions/revive": {
            "post": {
                "tags": ["Suspensions"],
                "summary": "Revive suspensions from PLUS",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ReviveSuspensionRequest"}}
                ],
                "responses": {
                    "200": {"description": "Per-notice results", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/internal/suspensions/apply": {
            "post": {
                "tags": ["Suspensions"],
                "summary": "Apply a suspension from a backend process",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ApplySuspensionRequest"}}
                ],
                "responses": {
                    "200": {"description": "Per-notice results", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/internal/payments/{noticeNo}": {
            "post": {
                "tags": ["Auto Revival"],
                "summary": "Queue revival of every active hold after payment",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "noticeNo", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "503": {"description": "Worker not running", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/internal/auto-revival/expired": {
            "post": {
                "tags": ["Auto Revival"],
                "summary": "Revive temporary suspensions past their due date",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/notices/{noticeNo}/suspensions": {
            "get": {
                "tags": ["Notices"],
                "summary": "List suspension history of a notice",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "noticeNo", "in": "path", "required": true, "type": "string"},
                    {"name": "type", "in": "query", "type": "string", "enum": ["TS", "PS"]},
                    {"name": "active", "in": "query", "type": "boolean"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "page_size", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/notices/{noticeNo}/suspensions/export": {
            "get": {
                "tags": ["Notices"],
                "summary": "Export suspension history as CSV or PDF",
                "security": [{"BearerAuth": []}],
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "noticeNo", "in": "path", "required": true, "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "File"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "TokenRequest": {
            "type": "object",
            "properties": {
                "user_id": {"type": "string"},
                "role": {"type": "string", "enum": ["OCMS_STAFF", "PLUS", "SYSTEM", "ADMIN"]}
            },
            "required": ["user_id", "role"]
        },
        "ApplySuspensionRequest": {
            "type": "object",
            "properties": {
                "noticeNo": {"type": "array", "items": {"type": "string"}},
                "suspensionType": {"type": "string", "enum": ["TS", "PS"]},
                "reasonOfSuspension": {"type": "string"},
                "daysToRevive": {"type": "integer"},
                "suspensionRemarks": {"type": "string"},
                "officerAuthorisingSuspension": {"type": "string"},
                "caseNo": {"type": "string"}
            },
            "required": ["noticeNo", "suspensionType", "reasonOfSuspension", "officerAuthorisingSuspension"]
        },
        "ReviveSuspensionRequest": {
            "type": "object",
            "properties": {
                "noticeNo": {"type": "array", "items": {"type": "string"}},
                "suspensionType": {"type": "string", "enum": ["TS", "PS"]},
                "revivalReason": {"type": "string"},
                "revivalRemarks": {"type": "string"},
                "officerAuthorisingRevival": {"type": "string"}
            },
            "required": ["noticeNo", "suspensionType", "revivalReason", "officerAuthorisingRevival"]
        },
        "SuspensionResult": {
            "type": "object",
            "properties": {
                "noticeNo": {"type": "string"},
                "srNo": {"type": "integer"},
                "appCode": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "BatchResult": {
            "type": "object",
            "properties": {
                "totalProcessed": {"type": "integer"},
                "successCount": {"type": "integer"},
                "errorCount": {"type": "integer"},
                "results": {"type": "array", "items": {"$ref": "#/definitions/SuspensionResult"}}
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
