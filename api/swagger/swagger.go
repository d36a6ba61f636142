package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Course Schedule API",
        "description": "Conflict checking, alternative suggestions and makeup planning for training-center classes",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Schedule", "description": "Availability checks and alternative suggestions"},
        {"name": "Resources", "description": "Room and lecturer catalogue"},
        {"name": "Course Classes", "description": "Class creation and weekly schedule"},
        {"name": "Sessions", "description": "Session lifecycle and makeup planning"},
        {"name": "Ops", "description": "Health, readiness and metrics"}
    ],
    "paths": {
        "/health": {
            "get": {"tags": ["Ops"], "summary": "Liveness probe", "responses": {"200": {"description": "OK"}}}
        },
        "/ready": {
            "get": {"tags": ["Ops"], "summary": "Readiness probe", "responses": {"200": {"description": "Ready"}, "503": {"description": "Degraded"}}}
        },
        "/metrics": {
            "get": {"tags": ["Ops"], "summary": "Prometheus metrics", "produces": ["text/plain"], "responses": {"200": {"description": "OK"}}}
        },
        "/schedules/check-and-suggest": {
            "post": {
                "tags": ["Schedule"],
                "summary": "Check a proposed schedule and suggest alternatives",
                "security": [{"BearerAuth": []}],
                "parameters": [{"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/ScheduleCheckRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ScheduleCheckResult"}},
                    "400": {"description": "Invalid payload or pattern", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown course or preferred resource", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "Start date not in pattern", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "429": {"description": "Rate limited", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/rooms/available": {
            "post": {
                "tags": ["Schedule"],
                "summary": "List rooms free for every generated session",
                "security": [{"BearerAuth": []}],
                "parameters": [{"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/ScheduleCheckRequest"}}],
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/Room"}}}}
            }
        },
        "/lecturers/available": {
            "post": {
                "tags": ["Schedule"],
                "summary": "List lecturers free for every generated session",
                "security": [{"BearerAuth": []}],
                "parameters": [{"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/ScheduleCheckRequest"}}],
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/Lecturer"}}}}
            }
        },
        "/rooms": {
            "get": {
                "tags": ["Resources"],
                "summary": "List active rooms",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/Room"}}}}
            }
        },
        "/lecturers": {
            "get": {
                "tags": ["Resources"],
                "summary": "List active lecturers",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/Lecturer"}}}}
            }
        },
        "/courseclasses": {
            "post": {
                "tags": ["Course Classes"],
                "summary": "Create a class and generate its sessions",
                "security": [{"BearerAuth": []}],
                "parameters": [{"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/CreateCourseClassRequest"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/CourseClassResult"}},
                    "409": {"description": "Resource conflict on commit", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/courseclasses/schedule-by-week": {
            "get": {
                "tags": ["Course Classes"],
                "summary": "Weekly schedule grid",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"in": "query", "name": "date", "type": "string", "description": "Any day of the week, defaults to today"},
                    {"in": "query", "name": "roomId", "type": "string"},
                    {"in": "query", "name": "lecturerId", "type": "string"},
                    {"in": "query", "name": "courseId", "type": "string"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/WeekSchedule"}}}
            }
        },
        "/courseclasses/schedule-by-week/export": {
            "get": {
                "tags": ["Course Classes"],
                "summary": "Export the weekly schedule",
                "security": [{"BearerAuth": []}],
                "produces": ["text/csv", "application/pdf", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"],
                "parameters": [
                    {"in": "query", "name": "date", "type": "string"},
                    {"in": "query", "name": "format", "type": "string", "enum": ["csv", "pdf", "xlsx"]}
                ],
                "responses": {"200": {"description": "File"}}
            }
        },
        "/courseclasses/{id}": {
            "get": {
                "tags": ["Course Classes"],
                "summary": "Get a class",
                "security": [{"BearerAuth": []}],
                "parameters": [{"in": "path", "name": "id", "type": "string", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/CourseClass"}}, "404": {"description": "Not found"}}
            }
        },
        "/courseclasses/{id}/sessions": {
            "get": {
                "tags": ["Course Classes"],
                "summary": "List the sessions of a class",
                "security": [{"BearerAuth": []}],
                "parameters": [{"in": "path", "name": "id", "type": "string", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/Session"}}}}
            }
        },
        "/courseclasses/{id}/sessions/{sessionId}/cancel": {
            "post": {
                "tags": ["Sessions"],
                "summary": "Cancel a session",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"in": "path", "name": "id", "type": "string", "required": true},
                    {"in": "path", "name": "sessionId", "type": "string", "required": true},
                    {"in": "body", "name": "payload", "schema": {"$ref": "#/definitions/SessionTransitionRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/Session"}}, "409": {"description": "Invalid state transition"}}
            }
        },
        "/courseclasses/{id}/sessions/{sessionId}/complete": {
            "post": {
                "tags": ["Sessions"],
                "summary": "Mark a session completed",
                "description": "Lecturers may only complete sessions they teach",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"in": "path", "name": "id", "type": "string", "required": true},
                    {"in": "path", "name": "sessionId", "type": "string", "required": true},
                    {"in": "body", "name": "payload", "schema": {"$ref": "#/definitions/SessionTransitionRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/Session"}}, "403": {"description": "Not the session's lecturer"}, "409": {"description": "Invalid state transition"}}
            }
        },
        "/courseclasses/{id}/sessions/{sessionId}/makeup-suggestions": {
            "get": {
                "tags": ["Sessions"],
                "summary": "Suggest makeup dates for a canceled session",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"in": "path", "name": "id", "type": "string", "required": true},
                    {"in": "path", "name": "sessionId", "type": "string", "required": true},
                    {"in": "query", "name": "horizonDays", "type": "integer"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/MakeupSuggestions"}}}
            }
        },
        "/courseclasses/{id}/sessions/{sessionId}/makeup": {
            "post": {
                "tags": ["Sessions"],
                "summary": "Schedule a makeup session",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"in": "path", "name": "id", "type": "string", "required": true},
                    {"in": "path", "name": "sessionId", "type": "string", "required": true},
                    {"in": "body", "name": "payload", "schema": {"$ref": "#/definitions/CommitMakeupRequest"}}
                ],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/MakeupResult"}}, "409": {"description": "Conflict"}}
            }
        }
    },
    "definitions": {
        "ScheduleCheckRequest": {
            "type": "object",
            "required": ["startDate", "startTime"],
            "properties": {
                "courseId": {"type": "string"},
                "startDate": {"type": "string", "example": "2024-03-04"},
                "startTime": {"type": "string", "example": "18:00"},
                "durationMinutes": {"type": "integer", "example": 120},
                "schedulePattern": {"type": "string", "example": "2-4"},
                "preferredRoomId": {"type": "string"},
                "preferredLecturerId": {"type": "string"}
            }
        },
        "ConflictRecord": {
            "type": "object",
            "properties": {
                "resource_type": {"type": "string", "enum": ["ROOM", "LECTURER"]},
                "resource_id": {"type": "string"},
                "resource_name": {"type": "string"},
                "session_id": {"type": "string"},
                "class_id": {"type": "string"},
                "class_name": {"type": "string"},
                "course_name": {"type": "string"},
                "conflict_date": {"type": "string"},
                "existing_window": {"$ref": "#/definitions/Window"},
                "overlap_window": {"$ref": "#/definitions/Window"},
                "description": {"type": "string"}
            }
        },
        "Window": {
            "type": "object",
            "properties": {"start": {"type": "string"}, "end": {"type": "string"}}
        },
        "InitialCheck": {
            "type": "object",
            "properties": {
                "availableRoomCount": {"type": "integer"},
                "availableLecturerCount": {"type": "integer"},
                "roomConflicts": {"type": "array", "items": {"$ref": "#/definitions/ConflictRecord"}},
                "lecturerConflicts": {"type": "array", "items": {"$ref": "#/definitions/ConflictRecord"}}
            }
        },
        "ScheduleAlternative": {
            "type": "object",
            "properties": {
                "type": {"type": "string", "enum": ["ALTERNATIVE_ROOM", "ALTERNATIVE_TIME", "ALTERNATIVE_START_DATE"]},
                "reason": {"type": "string"},
                "priority": {"type": "integer"},
                "startDate": {"type": "string"},
                "startTime": {"type": "string"},
                "endTime": {"type": "string"},
                "schedulePattern": {"type": "string"},
                "suggestedRoomId": {"type": "string"},
                "suggestedLecturerId": {"type": "string"},
                "availableRooms": {"type": "array", "items": {"$ref": "#/definitions/Room"}},
                "availableLecturers": {"type": "array", "items": {"$ref": "#/definitions/Lecturer"}}
            }
        },
        "ScheduleCheckResult": {
            "type": "object",
            "properties": {
                "status": {"type": "string", "enum": ["AVAILABLE", "CONFLICT"]},
                "message": {"type": "string"},
                "horizonWeeks": {"type": "integer"},
                "sessionCount": {"type": "integer"},
                "initialCheck": {"$ref": "#/definitions/InitialCheck"},
                "availableRooms": {"type": "array", "items": {"$ref": "#/definitions/Room"}},
                "availableLecturers": {"type": "array", "items": {"$ref": "#/definitions/Lecturer"}},
                "alternatives": {"type": "array", "items": {"$ref": "#/definitions/ScheduleAlternative"}}
            }
        },
        "Room": {
            "type": "object",
            "properties": {"id": {"type": "string"}, "name": {"type": "string"}, "capacity": {"type": "integer"}, "active": {"type": "boolean"}}
        },
        "Lecturer": {
            "type": "object",
            "properties": {"id": {"type": "string"}, "full_name": {"type": "string"}, "email": {"type": "string"}, "active": {"type": "boolean"}}
        },
        "CreateCourseClassRequest": {
            "type": "object",
            "required": ["name", "courseId", "roomId", "lecturerId", "startDate", "startTime"],
            "properties": {
                "name": {"type": "string"},
                "courseId": {"type": "string"},
                "roomId": {"type": "string"},
                "lecturerId": {"type": "string"},
                "schedulePattern": {"type": "string"},
                "startDate": {"type": "string"},
                "startTime": {"type": "string"},
                "durationMinutes": {"type": "integer"},
                "totalSessions": {"type": "integer"}
            }
        },
        "CourseClass": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "course_id": {"type": "string"},
                "course_name": {"type": "string"},
                "room_id": {"type": "string"},
                "room_name": {"type": "string"},
                "lecturer_id": {"type": "string"},
                "lecturer_name": {"type": "string"},
                "schedule_pattern": {"type": "string"},
                "start_date": {"type": "string"},
                "start_time": {"type": "string"},
                "duration_minutes": {"type": "integer"},
                "total_sessions": {"type": "integer"}
            }
        },
        "CourseClassResult": {
            "type": "object",
            "properties": {
                "class": {"$ref": "#/definitions/CourseClass"},
                "sessions": {"type": "array", "items": {"$ref": "#/definitions/Session"}}
            }
        },
        "Session": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "class_id": {"type": "string"},
                "session_date": {"type": "string"},
                "start_time": {"type": "string"},
                "end_time": {"type": "string"},
                "room_id": {"type": "string"},
                "lecturer_id": {"type": "string"},
                "status": {"type": "string", "enum": ["NotCompleted", "Completed", "Canceled"]},
                "note": {"type": "string"},
                "makeup_of_session_id": {"type": "string"}
            }
        },
        "SessionTransitionRequest": {
            "type": "object",
            "properties": {"note": {"type": "string"}}
        },
        "MakeupSuggestions": {
            "type": "object",
            "properties": {
                "classId": {"type": "string"},
                "sessionId": {"type": "string"},
                "horizonDays": {"type": "integer"},
                "dates": {"type": "array", "items": {"type": "string"}}
            }
        },
        "CommitMakeupRequest": {
            "type": "object",
            "properties": {
                "date": {"type": "string", "description": "Defaults to the first suggestion"},
                "roomId": {"type": "string"},
                "lecturerId": {"type": "string"},
                "note": {"type": "string"}
            }
        },
        "MakeupResult": {
            "type": "object",
            "properties": {
                "original": {"$ref": "#/definitions/Session"},
                "makeup": {"$ref": "#/definitions/Session"}
            }
        },
        "WeekSchedule": {
            "type": "object",
            "properties": {
                "weekStart": {"type": "string"},
                "weekEnd": {"type": "string"},
                "total": {"type": "integer"},
                "days": {"type": "array", "items": {"type": "object"}}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"},
                "details": {"type": "object"}
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
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
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
