// Package docs is written by hand in the shape that swag ("swag init") generates.
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
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["system"],
                "summary": "Health check",
                "description": "Reports that the admin API is reachable",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/adminapi.HealthResponse"
                        }
                    }
                }
            }
        },
        "/status": {
            "get": {
                "produces": ["application/json"],
                "tags": ["system"],
                "summary": "Daemon status",
                "description": "Returns the current registry summary, certificate cache occupancy, DNS query counters, and host stats",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/adminapi.StatusResponse"
                        }
                    }
                }
            }
        }
    },
    "definitions": {
        "adminapi.HealthResponse": {
            "type": "object",
            "properties": {
                "status": {
                    "type": "string"
                }
            }
        },
        "adminapi.StatusResponse": {
            "type": "object",
            "properties": {
                "node_id": {
                    "type": "string"
                },
                "start_time": {
                    "type": "string"
                },
                "uptime": {
                    "type": "string"
                }
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger metadata, registered with the swag
// runtime at init so gin-swagger can serve it under /swagger/*any.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:7653",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Roxy Admin API",
	Description:      "Read-only status and observability surface for the roxyd daemon.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
