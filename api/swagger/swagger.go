package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Student Management API",
        "description": "Class scheduling, attendance and sick-leave management",
        "version": "1.0.0"
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
        {"name": "Users", "description": "User provisioning"},
        {"name": "Classes", "description": "Classes and their weekly schedule"},
        {"name": "Enrollments", "description": "Student to class links"},
        {"name": "Attendance", "description": "Rosters and sick-leave appeals"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Authenticate with username and password",
                "responses": {
                    "200": {"description": "Access token issued"},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/auth/me": {
            "get": {
                "tags": ["Auth"],
                "summary": "Current principal",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/auth/password": {
            "put": {
                "tags": ["Auth"],
                "summary": "Change the authenticated user's password",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "204": {"description": "Password changed"},
                    "400": {"description": "Validation failed"},
                    "401": {"description": "Current password incorrect"}
                }
            }
        },
        "/users": {
            "get": {
                "tags": ["Users"],
                "summary": "List users",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "tags": ["Users"],
                "summary": "Provision a user",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "201": {"description": "Created"},
                    "409": {"description": "Username taken"}
                }
            }
        },
        "/users/{id}": {
            "get": {
                "tags": ["Users"],
                "summary": "Fetch one user",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK"}}
            },
            "delete": {
                "tags": ["Users"],
                "summary": "Delete a user",
                "security": [{"BearerAuth": []}],
                "responses": {"204": {"description": "Deleted"}}
            }
        },
        "/classes": {
            "get": {
                "tags": ["Classes"],
                "summary": "List classes",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "tags": ["Classes"],
                "summary": "Create a class and generate its semester",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "201": {"description": "Created"},
                    "409": {"description": "Teacher schedule conflict"}
                }
            }
        },
        "/classes/{id}": {
            "get": {
                "tags": ["Classes"],
                "summary": "Fetch one class",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK"}}
            },
            "delete": {
                "tags": ["Classes"],
                "summary": "Delete a class with lectures, enrollments and attendance",
                "security": [{"BearerAuth": []}],
                "responses": {"204": {"description": "Deleted"}}
            }
        },
        "/classes/{id}/teacher": {
            "put": {
                "tags": ["Classes"],
                "summary": "Reassign the class teacher",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "204": {"description": "Reassigned"},
                    "409": {"description": "Teacher schedule conflict"}
                }
            }
        },
        "/classes/{id}/lectures": {
            "get": {
                "tags": ["Classes"],
                "summary": "List the class schedule",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/classes/{id}/lectures/past": {
            "get": {
                "tags": ["Attendance"],
                "summary": "Lectures available for attendance taking",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/classes/{id}/students": {
            "get": {
                "tags": ["Classes"],
                "summary": "Students enrolled in the class",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/classes/{id}/absence-report": {
            "get": {
                "tags": ["Classes"],
                "summary": "Download the class absence report (csv or pdf)",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "Report document"}}
            }
        },
        "/classes/{id}/students/{studentId}/absences": {
            "get": {
                "tags": ["Attendance"],
                "summary": "One student's absence summary for the class",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/enrollments": {
            "post": {
                "tags": ["Enrollments"],
                "summary": "Enroll a student in a class",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "201": {"description": "Created"},
                    "409": {"description": "Already enrolled"}
                }
            }
        },
        "/enrollments/{studentId}/{classId}": {
            "delete": {
                "tags": ["Enrollments"],
                "summary": "Remove a student from a class",
                "security": [{"BearerAuth": []}],
                "responses": {"204": {"description": "Deleted"}}
            }
        },
        "/students/{id}/classes": {
            "get": {
                "tags": ["Enrollments"],
                "summary": "Classes a student is enrolled in",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/students/{id}/absences": {
            "get": {
                "tags": ["Attendance"],
                "summary": "A student's absence overview",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/lectures/{id}/roster": {
            "get": {
                "tags": ["Attendance"],
                "summary": "Fetch a lecture's attendance sheet",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK"}}
            },
            "put": {
                "tags": ["Attendance"],
                "summary": "Save a lecture's attendance sheet",
                "security": [{"BearerAuth": []}],
                "responses": {"204": {"description": "Saved"}}
            }
        },
        "/lectures/{id}/sick-leave": {
            "get": {
                "tags": ["Attendance"],
                "summary": "List sick-leave appeals for the lecture",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "tags": ["Attendance"],
                "summary": "Attach sick-leave evidence to a recorded absence",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Submitted"},
                    "404": {"description": "No recorded absence"}
                }
            }
        },
        "/attendance/{id}/review": {
            "put": {
                "tags": ["Attendance"],
                "summary": "Accept or reject a sick-leave appeal",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Reviewed"},
                    "400": {"description": "Rejection requires a comment"}
                }
            }
        },
        "/attendance/{id}/file-url": {
            "get": {
                "tags": ["Attendance"],
                "summary": "Issue a signed download URL for the appeal attachment",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK"}}
            }
        }
    },
    "definitions": {
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
