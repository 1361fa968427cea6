package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Cell Broadcast API",
        "description": "Receives decoded cell broadcasts, decides how each alert is presented and keeps the alert history.",
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
        {
            "name": "Broadcasts",
            "description": "Ingest and alert history"
        },
        {
            "name": "Alerts",
            "description": "Reminder of the active alert"
        },
        {
            "name": "Settings",
            "description": "User alert preferences"
        },
        {
            "name": "Channels",
            "description": "Custom channels and CDMA program data"
        },
        {
            "name": "Carrier",
            "description": "Carrier channel ranges"
        }
    ],
    "paths": {
        "/broadcasts": {
            "post": {
                "tags": [
                    "Broadcasts"
                ],
                "summary": "Ingest a decoded broadcast",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/IngestBroadcastRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Processed",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "200": {
                        "description": "Duplicate or filtered",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Invalid payload",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "503": {
                        "description": "Ingest queue unavailable",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            },
            "get": {
                "tags": [
                    "Broadcasts"
                ],
                "summary": "List alert history",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "slot",
                        "in": "query",
                        "type": "integer"
                    },
                    {
                        "name": "page",
                        "in": "query",
                        "type": "integer"
                    },
                    {
                        "name": "page_size",
                        "in": "query",
                        "type": "integer"
                    },
                    {
                        "name": "presidential_first",
                        "in": "query",
                        "type": "boolean"
                    },
                    {
                        "name": "include_deleted",
                        "in": "query",
                        "type": "boolean"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            },
            "delete": {
                "tags": [
                    "Broadcasts"
                ],
                "summary": "Delete all alerts",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "hard",
                        "in": "query",
                        "type": "boolean",
                        "description": "Remove rows instead of soft deleting"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/broadcasts/unread-count": {
            "get": {
                "tags": [
                    "Broadcasts"
                ],
                "summary": "Count unread alerts",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/broadcasts/read-by-time": {
            "post": {
                "tags": [
                    "Broadcasts"
                ],
                "summary": "Mark alerts read by delivery time",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/MarkReadByTimeRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/broadcasts/purge": {
            "post": {
                "tags": [
                    "Broadcasts"
                ],
                "summary": "Purge expired soft-deleted alerts",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/broadcasts/export": {
            "get": {
                "tags": [
                    "Broadcasts"
                ],
                "summary": "Export alert history",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "format",
                        "in": "query",
                        "type": "string",
                        "description": "csv, pdf or xlsx"
                    },
                    {
                        "name": "slot",
                        "in": "query",
                        "type": "integer"
                    },
                    {
                        "name": "include_deleted",
                        "in": "query",
                        "type": "boolean"
                    }
                ],
                "produces": [
                    "text/csv",
                    "application/pdf",
                    "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
                ],
                "responses": {
                    "200": {
                        "description": "File",
                        "schema": {
                            "type": "file"
                        }
                    }
                }
            }
        },
        "/broadcasts/{id}": {
            "get": {
                "tags": [
                    "Broadcasts"
                ],
                "summary": "Get one alert with its recomputed policy",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "integer"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "404": {
                        "description": "Not found",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            },
            "delete": {
                "tags": [
                    "Broadcasts"
                ],
                "summary": "Delete an alert",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "integer"
                    }
                ],
                "responses": {
                    "204": {
                        "description": "Deleted"
                    }
                }
            }
        },
        "/broadcasts/{id}/read": {
            "post": {
                "tags": [
                    "Broadcasts"
                ],
                "summary": "Mark an alert read",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "integer"
                    }
                ],
                "responses": {
                    "204": {
                        "description": "Marked"
                    }
                }
            }
        },
        "/alerts/reminder": {
            "get": {
                "tags": [
                    "Alerts"
                ],
                "summary": "Current reminder state",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/auth/token": {
            "post": {
                "tags": [
                    "Auth"
                ],
                "summary": "Issue an access token",
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/TokenRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/alerts/dismiss": {
            "post": {
                "tags": [
                    "Alerts"
                ],
                "summary": "Dismiss the alert dialog",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/DismissRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/settings": {
            "get": {
                "tags": [
                    "Settings"
                ],
                "summary": "List alert settings",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "slot",
                        "in": "query",
                        "type": "integer"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            },
            "put": {
                "tags": [
                    "Settings"
                ],
                "summary": "Update several alert settings",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/BulkUpdateSettingRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/settings/{name}": {
            "get": {
                "tags": [
                    "Settings"
                ],
                "summary": "Get one alert setting",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "name",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "slot",
                        "in": "query",
                        "type": "integer"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "404": {
                        "description": "Not found",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            },
            "put": {
                "tags": [
                    "Settings"
                ],
                "summary": "Update one alert setting",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "name",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/UpdateSettingRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/channels": {
            "get": {
                "tags": [
                    "Channels"
                ],
                "summary": "List custom channels",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "slot",
                        "in": "query",
                        "type": "integer"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            },
            "post": {
                "tags": [
                    "Channels"
                ],
                "summary": "Add a custom channel",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/CreateChannelRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "409": {
                        "description": "Conflict",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/channels/{id}": {
            "put": {
                "tags": [
                    "Channels"
                ],
                "summary": "Change a custom channel",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "integer"
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/UpdateChannelRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            },
            "delete": {
                "tags": [
                    "Channels"
                ],
                "summary": "Remove a custom channel",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "integer"
                    }
                ],
                "responses": {
                    "204": {
                        "description": "Deleted"
                    }
                }
            }
        },
        "/channels/cdma-program": {
            "post": {
                "tags": [
                    "Channels"
                ],
                "summary": "Apply CDMA service category program data",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/CdmaProgramRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/carrier/channel-ranges": {
            "get": {
                "tags": [
                    "Carrier"
                ],
                "summary": "Active carrier channel ranges",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            },
            "put": {
                "tags": [
                    "Carrier"
                ],
                "summary": "Replace carrier channel ranges",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/ChannelRangesRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        }
    },
    "definitions": {
        "Location": {
            "type": "object",
            "properties": {
                "plmn": {
                    "type": "string"
                },
                "lac": {
                    "type": "integer"
                },
                "cid": {
                    "type": "integer"
                }
            }
        },
        "EtwsInfo": {
            "type": "object",
            "properties": {
                "warning_type": {
                    "type": "integer"
                },
                "emergency_user_alert": {
                    "type": "boolean"
                },
                "popup": {
                    "type": "boolean"
                }
            }
        },
        "CmasInfo": {
            "type": "object",
            "properties": {
                "message_class": {
                    "type": "integer"
                },
                "category": {
                    "type": "integer"
                },
                "response_type": {
                    "type": "integer"
                },
                "severity": {
                    "type": "integer"
                },
                "urgency": {
                    "type": "integer"
                },
                "certainty": {
                    "type": "integer"
                }
            }
        },
        "IngestBroadcastRequest": {
            "type": "object",
            "properties": {
                "slot": {
                    "type": "integer"
                },
                "geographical_scope": {
                    "type": "integer"
                },
                "serial_number": {
                    "type": "integer"
                },
                "location": {
                    "$ref": "#/definitions/Location"
                },
                "service_category": {
                    "type": "integer"
                },
                "language": {
                    "type": "string"
                },
                "body": {
                    "type": "string"
                },
                "format": {
                    "type": "integer"
                },
                "priority": {
                    "type": "integer"
                },
                "etws": {
                    "$ref": "#/definitions/EtwsInfo"
                },
                "cmas": {
                    "$ref": "#/definitions/CmasInfo"
                },
                "received_at": {
                    "type": "string",
                    "format": "date-time"
                }
            },
            "required": [
                "body",
                "format"
            ]
        },
        "MarkReadByTimeRequest": {
            "type": "object",
            "properties": {
                "delivery_time": {
                    "type": "string",
                    "format": "date-time"
                }
            },
            "required": [
                "delivery_time"
            ]
        },
        "TokenRequest": {
            "type": "object",
            "required": [
                "client_id",
                "client_secret"
            ],
            "properties": {
                "client_id": {
                    "type": "string"
                },
                "client_secret": {
                    "type": "string"
                }
            }
        },
        "DismissRequest": {
            "type": "object",
            "properties": {
                "broadcast_id": {
                    "type": "integer"
                },
                "mark_read": {
                    "type": "boolean"
                }
            }
        },
        "UpdateSettingRequest": {
            "type": "object",
            "properties": {
                "name": {
                    "type": "string"
                },
                "slot": {
                    "type": "integer"
                },
                "value": {
                    "type": "string"
                }
            },
            "required": [
                "value"
            ]
        },
        "BulkUpdateSettingRequest": {
            "type": "object",
            "properties": {
                "items": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/UpdateSettingRequest"
                    }
                }
            },
            "required": [
                "items"
            ]
        },
        "CreateChannelRequest": {
            "type": "object",
            "properties": {
                "slot": {
                    "type": "integer"
                },
                "name": {
                    "type": "string"
                },
                "channel": {
                    "type": "integer"
                },
                "enabled": {
                    "type": "boolean"
                }
            },
            "required": [
                "name",
                "channel"
            ]
        },
        "UpdateChannelRequest": {
            "type": "object",
            "properties": {
                "name": {
                    "type": "string"
                },
                "channel": {
                    "type": "integer"
                },
                "enabled": {
                    "type": "boolean"
                }
            }
        },
        "CdmaProgramItem": {
            "type": "object",
            "properties": {
                "operation": {
                    "type": "string",
                    "enum": [
                        "add",
                        "delete",
                        "clear_all"
                    ]
                },
                "category": {
                    "type": "integer"
                }
            },
            "required": [
                "operation"
            ]
        },
        "CdmaProgramRequest": {
            "type": "object",
            "properties": {
                "slot": {
                    "type": "integer"
                },
                "items": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/CdmaProgramItem"
                    }
                }
            },
            "required": [
                "items"
            ]
        },
        "ChannelRangesRequest": {
            "type": "object",
            "properties": {
                "entries": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                }
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {
                    "type": "integer"
                },
                "page_size": {
                    "type": "integer"
                },
                "total_count": {
                    "type": "integer"
                }
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {
                    "type": "string"
                },
                "message": {
                    "type": "string"
                },
                "status": {
                    "type": "integer"
                }
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {
                    "type": "object"
                },
                "error": {
                    "$ref": "#/definitions/APIError"
                },
                "pagination": {
                    "$ref": "#/definitions/Pagination"
                },
                "meta": {
                    "type": "object"
                }
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
