package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Timetable API",
        "description": "Automatic lesson placement and timetable management",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Planner", "description": "Automatic lesson placement"},
        {"name": "Lessons", "description": "Timetable reads and manual edits"},
        {"name": "Availability", "description": "Free resources and teacher timelines"},
        {"name": "Classes", "description": "Class groups and instruction weeks"},
        {"name": "Exports", "description": "Weekly timetable exports"}
    ],
    "paths": {
        "/planning/generate": {
            "post": {
                "tags": ["Planner"],
                "summary": "Fill one school week for a class group",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/GeneratePlanningRequest"}}
                ],
                "responses": {
                    "200": {"description": "Planning result", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/planning/generate-range": {
            "post": {
                "tags": ["Planner"],
                "summary": "Queue commit-mode planning for a range of weeks",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/GenerateRangeRequest"}}
                ],
                "responses": {
                    "202": {"description": "Job queued", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/planning/proposals/accept": {
            "post": {
                "tags": ["Planner"],
                "summary": "Commit a previously proposed planning",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AcceptProposalRequest"}}
                ],
                "responses": {
                    "200": {"description": "Planning result", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "412": {"description": "Unknown or expired proposal"}
                }
            }
        },
        "/planning/candidates/validate": {
            "post": {
                "tags": ["Planner"],
                "summary": "Validate externally produced lesson candidates",
                "responses": {
                    "200": {"description": "Verdicts", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/lessons": {
            "get": {
                "tags": ["Lessons"],
                "summary": "List lessons",
                "parameters": [
                    {"name": "classId", "in": "query", "type": "string"},
                    {"name": "teacherId", "in": "query", "type": "string"},
                    {"name": "from", "in": "query", "type": "string"},
                    {"name": "to", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "pageSize", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "Lessons", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/lessons/{id}": {
            "delete": {
                "tags": ["Lessons"],
                "summary": "Delete a lesson",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "Deleted"},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/availability/free": {
            "get": {
                "tags": ["Availability"],
                "summary": "List free teachers and classrooms for a window",
                "parameters": [
                    {"name": "date", "in": "query", "required": true, "type": "string"},
                    {"name": "startTime", "in": "query", "required": true, "type": "string"},
                    {"name": "endTime", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Free resources", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/teachers/{id}/availabilities": {
            "get": {
                "tags": ["Availability"],
                "summary": "List a teacher's declared availability windows",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Timeline", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/teachers/availabilities": {
            "post": {
                "tags": ["Availability"],
                "summary": "Declare an availability window for a teacher",
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/classes": {
            "get": {
                "tags": ["Classes"],
                "summary": "List class groups",
                "responses": {
                    "200": {"description": "Class groups", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/classes/{id}/weeks": {
            "get": {
                "tags": ["Classes"],
                "summary": "Get a class group's instruction weeks",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Weeks", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Classes"],
                "summary": "Replace a class group's instruction weeks",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Weeks", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/classes/availabilities/generate": {
            "post": {
                "tags": ["Classes"],
                "summary": "Assign instruction weeks to every class group on a rotating cycle",
                "responses": {
                    "200": {"description": "Assignments", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/exports/planning": {
            "get": {
                "tags": ["Exports"],
                "summary": "Export one class group's week as CSV or PDF",
                "parameters": [
                    {"name": "classId", "in": "query", "required": true, "type": "string"},
                    {"name": "week", "in": "query", "required": true, "type": "integer"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "Export file"}
                }
            }
        }
    },
    "definitions": {
        "GeneratePlanningRequest": {
            "type": "object",
            "required": ["classId", "week"],
            "properties": {
                "classId": {"type": "string"},
                "week": {"type": "integer", "minimum": 1, "maximum": 52},
                "mode": {"type": "string", "enum": ["commit", "propose"]}
            }
        },
        "GenerateRangeRequest": {
            "type": "object",
            "required": ["classId", "fromWeek", "toWeek"],
            "properties": {
                "classId": {"type": "string"},
                "fromWeek": {"type": "integer"},
                "toWeek": {"type": "integer"}
            }
        },
        "AcceptProposalRequest": {
            "type": "object",
            "required": ["proposalId"],
            "properties": {
                "proposalId": {"type": "string"}
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
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
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
