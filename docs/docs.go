// Package docs registers the OpenAPI description served under /swagger.
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
        "/v1/tracking": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["tracking"],
                "summary": "Current walk feed state",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/stream.StateView"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/v1/tracking/start": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Requests location permission if needed. A no-op while already recording.",
                "produces": ["application/json"],
                "tags": ["tracking"],
                "summary": "Start recording a walk",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/stream.StateView"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/v1/tracking/stop": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "The feed keeps its distance and photos.",
                "produces": ["application/json"],
                "tags": ["tracking"],
                "summary": "Stop recording",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/stream.StateView"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/v1/tracking/stream": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "The current state is sent first, then every change.",
                "tags": ["tracking"],
                "summary": "Websocket of state changes",
                "responses": {
                    "101": {"description": "Switching Protocols"}
                }
            }
        },
        "/v1/locations": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["locations"],
                "summary": "Ingest a single location fix",
                "parameters": [
                    {"description": "Location fix", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.locationFixRequest"}}
                ],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/handler.acceptedResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/v1/locations/batch": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["locations"],
                "summary": "Ingest a batch of location fixes",
                "parameters": [
                    {"description": "Fixes, oldest first", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.locationBatchRequest"}}
                ],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/handler.acceptedResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/v1/locations/errors": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "permission_denied ends the running session; other kinds are logged.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["locations"],
                "summary": "Report a location error",
                "parameters": [
                    {"description": "Error report", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.locationErrorRequest"}}
                ],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/handler.acceptedResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/v1/authorization": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["locations"],
                "summary": "Current location authorization",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.authorizationResponse"}}
                }
            },
            "put": {
                "security": [{"BearerAuth": []}],
                "description": "Accepts not_determined, authorized, authorized_always, authorized_when_in_use, denied or restricted.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["locations"],
                "summary": "Set location authorization",
                "parameters": [
                    {"description": "Authorization status", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.authorizationRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.authorizationResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "domain.CaptionedImage": {
            "type": "object",
            "properties": {
                "caption": {"type": "string"},
                "id": {"type": "string"},
                "url": {"type": "string"}
            }
        },
        "stream.StateView": {
            "type": "object",
            "properties": {
                "distance": {"type": "string"},
                "headline": {"type": "string"},
                "images": {"type": "array", "items": {"$ref": "#/definitions/domain.CaptionedImage"}},
                "is_recording": {"type": "boolean"},
                "kind": {"type": "string", "enum": ["empty", "no_location_access", "timeline"]},
                "recording_available": {"type": "boolean"}
            }
        },
        "handler.errorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"}
            }
        },
        "handler.acceptedResponse": {
            "type": "object",
            "properties": {
                "count": {"type": "integer"},
                "message": {"type": "string"},
                "updating": {"type": "boolean"}
            }
        },
        "handler.locationFixRequest": {
            "type": "object",
            "required": ["latitude", "longitude"],
            "properties": {
                "latitude": {"type": "number", "maximum": 90, "minimum": -90},
                "longitude": {"type": "number", "maximum": 180, "minimum": -180},
                "timestamp": {"type": "string", "format": "date-time"}
            }
        },
        "handler.locationBatchRequest": {
            "type": "object",
            "required": ["fixes"],
            "properties": {
                "fixes": {"type": "array", "maxItems": 100, "minItems": 1, "items": {"$ref": "#/definitions/handler.locationFixRequest"}}
            }
        },
        "handler.locationErrorRequest": {
            "type": "object",
            "required": ["kind"],
            "properties": {
                "kind": {"type": "string", "enum": ["permission_denied", "location_unknown", "other"]},
                "message": {"type": "string", "maxLength": 256}
            }
        },
        "handler.authorizationRequest": {
            "type": "object",
            "required": ["status"],
            "properties": {
                "status": {"type": "string"}
            }
        },
        "handler.authorizationResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by a space and the JWT.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Point2Image API",
	Description:      "Turns a walk into a feed of geotagged Flickr photos.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
