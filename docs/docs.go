// Package docs registers the OpenAPI description served at /swagger/.
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
        "/api/status": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Status"
                ],
                "summary": "Model gateway status",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/api.StatusResponse"
                        }
                    }
                }
            }
        },
        "/api/interview": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Interview"
                ],
                "summary": "Get the current interview",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/api.SessionView"
                        }
                    },
                    "500": {
                        "description": "Internal Server Error",
                        "schema": {
                            "$ref": "#/definitions/api.ErrorResponse"
                        }
                    }
                },
                "description": "Returns the interview session bound to the session cookie, creating it on first use."
            }
        },
        "/api/interview/options": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Interview"
                ],
                "summary": "Profile options",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/api.OptionsResponse"
                        }
                    }
                }
            }
        },
        "/api/interview/start": {
            "post": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Interview"
                ],
                "summary": "Start the interview",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/api.SessionView"
                        }
                    },
                    "400": {
                        "description": "incomplete profile",
                        "schema": {
                            "$ref": "#/definitions/api.ErrorResponse"
                        }
                    },
                    "409": {
                        "description": "interview already finished",
                        "schema": {
                            "$ref": "#/definitions/api.ErrorResponse"
                        }
                    },
                    "502": {
                        "description": "model call failed",
                        "schema": {
                            "$ref": "#/definitions/api.ErrorResponse"
                        }
                    },
                    "503": {
                        "description": "model not configured",
                        "schema": {
                            "$ref": "#/definitions/api.ErrorResponse"
                        }
                    }
                },
                "description": "Snapshots the profile and generates question 1. While an interview is running without a pending question it regenerates the question; otherwise it is a no-op.",
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "description": "Candidate profile",
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/api.StartRequest"
                        }
                    }
                ]
            }
        },
        "/api/interview/answer": {
            "post": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Interview"
                ],
                "summary": "Answer the current question",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/api.SessionView"
                        }
                    },
                    "400": {
                        "description": "empty answer",
                        "schema": {
                            "$ref": "#/definitions/api.ErrorResponse"
                        }
                    },
                    "409": {
                        "description": "no question pending",
                        "schema": {
                            "$ref": "#/definitions/api.ErrorResponse"
                        }
                    },
                    "502": {
                        "description": "next question could not be generated; the answer was saved",
                        "schema": {
                            "$ref": "#/definitions/api.ErrorResponse"
                        }
                    }
                },
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "description": "Answer",
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/api.AnswerRequest"
                        }
                    }
                ]
            }
        },
        "/api/interview/skip": {
            "post": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Interview"
                ],
                "summary": "Skip the current question",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/api.SessionView"
                        }
                    },
                    "409": {
                        "description": "no question pending",
                        "schema": {
                            "$ref": "#/definitions/api.ErrorResponse"
                        }
                    },
                    "502": {
                        "description": "Bad Gateway",
                        "schema": {
                            "$ref": "#/definitions/api.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/api/interview/report": {
            "post": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Interview"
                ],
                "summary": "Generate the final report",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/api.SessionView"
                        }
                    },
                    "409": {
                        "description": "interview not finished",
                        "schema": {
                            "$ref": "#/definitions/api.ErrorResponse"
                        }
                    },
                    "502": {
                        "description": "summary failed; retry allowed",
                        "schema": {
                            "$ref": "#/definitions/api.ErrorResponse"
                        }
                    },
                    "503": {
                        "description": "Service Unavailable",
                        "schema": {
                            "$ref": "#/definitions/api.ErrorResponse"
                        }
                    }
                },
                "description": "Evaluates every answered question, then writes the overall summary and recommendation."
            }
        },
        "/api/interview/reset": {
            "post": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Interview"
                ],
                "summary": "Reset the interview",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/api.SessionView"
                        }
                    }
                }
            }
        },
        "/api/interview/export": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Interview"
                ],
                "summary": "Export the interview",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/api.ExportData"
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/api.ErrorResponse"
                        }
                    }
                },
                "description": "Profile, records, score table, report and the plain-text transcript as a JSON attachment."
            }
        },
        "/api/interview/extract-skills": {
            "post": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Interview"
                ],
                "summary": "Extract skills from a resume",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/api.SkillsResponse"
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/api.ErrorResponse"
                        }
                    },
                    "413": {
                        "description": "Request Entity Too Large",
                        "schema": {
                            "$ref": "#/definitions/api.ErrorResponse"
                        }
                    },
                    "502": {
                        "description": "Bad Gateway",
                        "schema": {
                            "$ref": "#/definitions/api.ErrorResponse"
                        }
                    },
                    "503": {
                        "description": "Service Unavailable",
                        "schema": {
                            "$ref": "#/definitions/api.ErrorResponse"
                        }
                    }
                },
                "consumes": [
                    "multipart/form-data"
                ],
                "parameters": [
                    {
                        "type": "file",
                        "description": "Resume (.txt, .pdf or .docx)",
                        "name": "resume",
                        "in": "formData",
                        "required": true
                    }
                ]
            }
        }
    },
    "definitions": {
        "api.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {
                    "type": "string"
                },
                "kind": {
                    "type": "string"
                },
                "session": {
                    "$ref": "#/definitions/api.SessionView"
                }
            }
        },
        "api.StatusResponse": {
            "type": "object",
            "properties": {
                "gateway": {
                    "type": "string"
                },
                "configured": {
                    "type": "boolean"
                },
                "problem": {
                    "type": "string"
                }
            }
        },
        "api.ProfileView": {
            "type": "object",
            "properties": {
                "name": {
                    "type": "string"
                },
                "role": {
                    "type": "string"
                },
                "experience": {
                    "type": "string"
                },
                "skills": {
                    "type": "string"
                },
                "interview_type": {
                    "type": "string"
                }
            }
        },
        "api.RecordView": {
            "type": "object",
            "properties": {
                "question_no": {
                    "type": "integer"
                },
                "question": {
                    "type": "string"
                },
                "answer": {
                    "type": "string"
                },
                "evaluation": {
                    "type": "string"
                },
                "score": {
                    "type": "integer"
                },
                "status": {
                    "type": "string"
                }
            }
        },
        "api.SessionView": {
            "type": "object",
            "properties": {
                "session_id": {
                    "type": "string"
                },
                "state": {
                    "type": "string"
                },
                "profile": {
                    "$ref": "#/definitions/api.ProfileView"
                },
                "target_question_count": {
                    "type": "integer"
                },
                "current_question_no": {
                    "type": "integer"
                },
                "current_question": {
                    "type": "string"
                },
                "progress": {
                    "type": "string"
                },
                "records": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/api.RecordView"
                    }
                },
                "can_generate_report": {
                    "type": "boolean"
                },
                "scores": {
                    "$ref": "#/definitions/scoring.Report"
                },
                "report": {
                    "type": "string"
                }
            }
        },
        "api.StartRequest": {
            "type": "object",
            "properties": {
                "name": {
                    "type": "string"
                },
                "role": {
                    "type": "string"
                },
                "experience": {
                    "type": "string"
                },
                "skills": {
                    "type": "string"
                },
                "interview_type": {
                    "type": "string"
                },
                "num_questions": {
                    "type": "integer"
                }
            }
        },
        "api.AnswerRequest": {
            "type": "object",
            "properties": {
                "answer": {
                    "type": "string"
                }
            }
        },
        "api.SkillsResponse": {
            "type": "object",
            "properties": {
                "skills": {
                    "type": "string"
                }
            }
        },
        "api.OptionsResponse": {
            "type": "object",
            "properties": {
                "experience_levels": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                },
                "interview_types": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                },
                "min_questions": {
                    "type": "integer"
                },
                "max_questions": {
                    "type": "integer"
                },
                "default_questions": {
                    "type": "integer"
                }
            }
        },
        "api.ExportData": {
            "type": "object",
            "properties": {
                "version": {
                    "type": "string"
                },
                "exported_at": {
                    "type": "string"
                },
                "session_id": {
                    "type": "string"
                },
                "state": {
                    "type": "string"
                },
                "profile": {
                    "$ref": "#/definitions/api.ProfileView"
                },
                "target_question_count": {
                    "type": "integer"
                },
                "records": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/api.RecordView"
                    }
                },
                "scores": {
                    "$ref": "#/definitions/scoring.Report"
                },
                "report": {
                    "type": "string"
                },
                "transcript": {
                    "type": "string"
                }
            }
        },
        "scoring.Row": {
            "type": "object",
            "properties": {
                "question_no": {
                    "type": "integer"
                },
                "score": {
                    "type": "integer"
                },
                "answered": {
                    "type": "string"
                }
            }
        },
        "scoring.Report": {
            "type": "object",
            "properties": {
                "rows": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/scoring.Row"
                    }
                },
                "average": {
                    "type": "number"
                },
                "valid": {
                    "type": "integer"
                }
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Interview Coach API",
	Description:      "Mock interviews with AI-generated questions, per-answer evaluation and a hiring recommendation.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
