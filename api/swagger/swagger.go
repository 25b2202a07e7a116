package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "SGT API",
        "description": "Training session, attendance and invite management",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Classes", "description": "Class session lifecycle"},
        {"name": "Attendance", "description": "Roster management"},
        {"name": "Invites", "description": "Self check-in invite links"},
        {"name": "Check-in", "description": "Public self check-in"},
        {"name": "Instructors", "description": "Instructor directory"},
        {"name": "Trainings", "description": "Portfolio training catalog"}
    ],
    "paths": {
        "/classes": {
            "get": {
                "tags": ["Classes"],
                "summary": "List open classes",
                "parameters": [
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "types", "in": "query", "type": "string"},
                    {"name": "units", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Classes"],
                "summary": "Schedule a class",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateClassRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/classes/{id}": {
            "get": {
                "tags": ["Classes"],
                "summary": "Get class detail",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Classes"],
                "summary": "Update a class",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateClassRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Classes"],
                "summary": "Delete a class",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/classes/{id}/finish": {
            "post": {
                "tags": ["Classes"],
                "summary": "Finish a class",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Already finalized"}
                }
            }
        },
        "/classes/{id}/cancel": {
            "post": {
                "tags": ["Classes"],
                "summary": "Cancel a class",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Already finalized"}
                }
            }
        },
        "/classes/{id}/export": {
            "get": {
                "tags": ["Classes"],
                "summary": "Export the attendance sheet",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/classes/{id}/attendees": {
            "get": {
                "tags": ["Attendance"],
                "summary": "List class attendees",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Attendance"],
                "summary": "Check an attendee into a class",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RegisterAttendanceRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Duplicate registration or finalized class"}
                }
            }
        },
        "/classes/{id}/attendees/{registration}": {
            "delete": {
                "tags": ["Attendance"],
                "summary": "Remove an attendee",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "registration", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/classes/{id}/attendees/{registration}/early-leave": {
            "post": {
                "tags": ["Attendance"],
                "summary": "Record an early departure",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "registration", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/classes/{id}/invite": {
            "post": {
                "tags": ["Invites"],
                "summary": "Generate a self check-in invite link",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "schema": {"$ref": "#/definitions/GenerateInviteRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/checkin/{classId}/{token}": {
            "get": {
                "tags": ["Check-in"],
                "summary": "Validate an invite token",
                "parameters": [
                    {"name": "classId", "in": "path", "required": true, "type": "string"},
                    {"name": "token", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Check-in"],
                "summary": "Check in through an invite link",
                "parameters": [
                    {"name": "classId", "in": "path", "required": true, "type": "string"},
                    {"name": "token", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RegisterAttendanceRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Invalid or expired invite"}
                }
            }
        }
    },
    "definitions": {
        "ClassDetail": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "type": {"type": "string", "enum": ["PORTFOLIO", "EXTERNAL", "DDS", "OTHERS"]},
                "type_label": {"type": "string"},
                "name": {"type": "string"},
                "code": {"type": "string"},
                "duration": {"type": "string"},
                "unit": {"type": "string"},
                "instructor_id": {"type": "string"},
                "date_start": {"type": "string"},
                "date_end": {"type": "string"},
                "presents_count": {"type": "integer"},
                "status": {"type": "string", "enum": ["scheduled", "completed", "cancelled"]},
                "attendees": {"type": "array", "items": {"$ref": "#/definitions/Attendee"}}
            }
        },
        "Attendee": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "class_id": {"type": "string"},
                "registration": {"type": "string"},
                "name": {"type": "string"},
                "unit": {"type": "string"},
                "checked_in_at": {"type": "string"},
                "left_early_at": {"type": "string"}
            }
        },
        "CreateClassRequest": {
            "type": "object",
            "properties": {
                "type": {"type": "string", "enum": ["PORTFOLIO", "EXTERNAL", "DDS", "OTHERS"]},
                "training_id": {"type": "string"},
                "name": {"type": "string"},
                "duration": {"type": "string"},
                "provider": {"type": "string"},
                "content": {"type": "string"},
                "classification": {"type": "string"},
                "objective": {"type": "string"},
                "unit": {"type": "string"},
                "instructor_id": {"type": "string"},
                "date_start": {"type": "string"}
            },
            "required": ["type", "unit", "instructor_id", "date_start"]
        },
        "UpdateClassRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "duration": {"type": "string"},
                "provider": {"type": "string"},
                "content": {"type": "string"},
                "classification": {"type": "string"},
                "objective": {"type": "string"},
                "unit": {"type": "string"},
                "instructor_id": {"type": "string"},
                "date_start": {"type": "string"}
            }
        },
        "RegisterAttendanceRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "registration": {"type": "string"},
                "unit": {"type": "string"}
            },
            "required": ["name", "registration", "unit"]
        },
        "GenerateInviteRequest": {
            "type": "object",
            "properties": {
                "expires_in_minutes": {"type": "integer"}
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
