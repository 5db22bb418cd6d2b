// Horus - HTTP Access Log Anomaly Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/horus

// Package docs registers the Horus OpenAPI document with swag. It follows
// the layout `swag init -g cmd/server/docs.go -o docs` emits; keep the paths
// in step with the handler annotations in internal/api.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
	"schemes": {{ marshal .Schemes }},
	"swagger": "2.0",
	"info": {
		"description": "{{escape .Description}}",
		"title": "{{.Title}}",
		"contact": {
			"name": "GitHub Repository",
			"url": "https://github.com/tomtom215/horus/issues"
		},
		"license": {
			"name": "AGPL-3.0-or-later",
			"url": "https://www.gnu.org/licenses/agpl-3.0.html"
		},
		"version": "{{.Version}}"
	},
	"host": "{{.Host}}",
	"basePath": "{{.BasePath}}",
	"paths": {
		"/health": {
			"get": {
				"description": "Database connectivity, circuit breaker state, ingest transport, analysis state, watermark and uptime.",
				"produces": [
					"application/json"
				],
				"tags": [
					"Core"
				],
				"summary": "Get system health status",
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"allOf": [
								{
									"$ref": "#/definitions/models.APIResponse"
								},
								{
									"type": "object",
									"properties": {
										"data": {
											"$ref": "#/definitions/models.HealthStatus"
										}
									}
								}
							]
						}
					}
				}
			}
		},
		"/health/live": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"Core"
				],
				"summary": "Liveness probe",
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/models.APIResponse"
						}
					}
				}
			}
		},
		"/health/ready": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"Core"
				],
				"summary": "Readiness probe",
				"responses": {
					"200": {
						"description": "Service is ready",
						"schema": {
							"$ref": "#/definitions/models.APIResponse"
						}
					},
					"503": {
						"description": "Service is not ready",
						"schema": {
							"$ref": "#/definitions/models.APIResponse"
						}
					}
				}
			}
		},
		"/log": {
			"get": {
				"description": "Events with from < timestamp < to, ascending by timestamp. Both bounds are optional RFC 3339 instants.",
				"produces": [
					"application/json"
				],
				"tags": [
					"Log"
				],
				"summary": "List access-log events",
				"parameters": [
					{
						"type": "string",
						"description": "Exclusive lower bound (RFC 3339)",
						"name": "from",
						"in": "query"
					},
					{
						"type": "string",
						"description": "Exclusive upper bound (RFC 3339)",
						"name": "to",
						"in": "query"
					},
					{
						"type": "integer",
						"description": "Maximum results (default 1000, max 10000)",
						"name": "limit",
						"in": "query"
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"allOf": [
								{
									"$ref": "#/definitions/models.APIResponse"
								},
								{
									"type": "object",
									"properties": {
										"data": {
											"type": "array",
											"items": {
												"$ref": "#/definitions/models.Event"
											}
										}
									}
								}
							]
						}
					},
					"400": {
						"description": "Malformed range",
						"schema": {
							"$ref": "#/definitions/models.APIResponse"
						}
					},
					"500": {
						"description": "Storage failure",
						"schema": {
							"$ref": "#/definitions/models.APIResponse"
						}
					},
					"503": {
						"description": "Storage circuit open",
						"schema": {
							"$ref": "#/definitions/models.APIResponse"
						}
					}
				}
			},
			"post": {
				"description": "Accepts a JSON array of events, a single JSON event, or text/plain combined-log lines. The batch is written ahead and stored asynchronously.",
				"consumes": [
					"application/json",
					"text/plain"
				],
				"produces": [
					"application/json"
				],
				"tags": [
					"Log"
				],
				"summary": "Ingest access-log events",
				"parameters": [
					{
						"description": "Events",
						"name": "events",
						"in": "body",
						"required": true,
						"schema": {
							"type": "array",
							"items": {
								"$ref": "#/definitions/models.Event"
							}
						}
					}
				],
				"responses": {
					"202": {
						"description": "Accepted",
						"schema": {
							"allOf": [
								{
									"$ref": "#/definitions/models.APIResponse"
								},
								{
									"type": "object",
									"properties": {
										"data": {
											"$ref": "#/definitions/models.IngestResult"
										}
									}
								}
							]
						}
					},
					"400": {
						"description": "Invalid event",
						"schema": {
							"$ref": "#/definitions/models.APIResponse"
						}
					},
					"413": {
						"description": "Body too large",
						"schema": {
							"$ref": "#/definitions/models.APIResponse"
						}
					},
					"503": {
						"description": "Ingest unavailable",
						"schema": {
							"$ref": "#/definitions/models.APIResponse"
						}
					}
				}
			}
		},
		"/log/anomalies": {
			"get": {
				"description": "Anomalies whose window lies strictly inside (from, to). Both bounds are optional.",
				"produces": [
					"application/json"
				],
				"tags": [
					"Anomalies"
				],
				"summary": "List anomalies",
				"parameters": [
					{
						"type": "string",
						"description": "Exclusive lower bound (RFC 3339)",
						"name": "from",
						"in": "query"
					},
					{
						"type": "string",
						"description": "Exclusive upper bound (RFC 3339)",
						"name": "to",
						"in": "query"
					},
					{
						"enum": [
							"Brute-force",
							"DDoS",
							"Bot"
						],
						"type": "string",
						"description": "Anomaly type",
						"name": "kind",
						"in": "query"
					},
					{
						"type": "integer",
						"description": "Maximum results (default 1000, max 10000)",
						"name": "limit",
						"in": "query"
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"allOf": [
								{
									"$ref": "#/definitions/models.APIResponse"
								},
								{
									"type": "object",
									"properties": {
										"data": {
											"type": "array",
											"items": {
												"$ref": "#/definitions/models.Anomaly"
											}
										}
									}
								}
							]
						}
					},
					"400": {
						"description": "Malformed range",
						"schema": {
							"$ref": "#/definitions/models.APIResponse"
						}
					},
					"500": {
						"description": "Storage failure",
						"schema": {
							"$ref": "#/definitions/models.APIResponse"
						}
					},
					"503": {
						"description": "Storage circuit open",
						"schema": {
							"$ref": "#/definitions/models.APIResponse"
						}
					}
				}
			},
			"post": {
				"description": "Runs the detectors over events with from < timestamp < to and stores new anomalies. With neither bound the pass starts at the watermark and advances it; any supplied bound leaves the watermark untouched.",
				"produces": [
					"application/json"
				],
				"tags": [
					"Anomalies"
				],
				"summary": "Run an analysis pass",
				"parameters": [
					{
						"type": "string",
						"description": "Exclusive lower bound (RFC 3339)",
						"name": "from",
						"in": "query"
					},
					{
						"type": "string",
						"description": "Exclusive upper bound (RFC 3339)",
						"name": "to",
						"in": "query"
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"allOf": [
								{
									"$ref": "#/definitions/models.APIResponse"
								},
								{
									"type": "object",
									"properties": {
										"data": {
											"$ref": "#/definitions/detection.PassResult"
										}
									}
								}
							]
						}
					},
					"400": {
						"description": "Malformed range",
						"schema": {
							"$ref": "#/definitions/models.APIResponse"
						}
					},
					"409": {
						"description": "Pass already running",
						"schema": {
							"$ref": "#/definitions/models.APIResponse"
						}
					},
					"500": {
						"description": "Storage failure",
						"schema": {
							"$ref": "#/definitions/models.APIResponse"
						}
					},
					"503": {
						"description": "Storage circuit open",
						"schema": {
							"$ref": "#/definitions/models.APIResponse"
						}
					}
				}
			},
			"delete": {
				"description": "Deletes anomalies whose window lies strictly inside (from, to). Without bounds every anomaly is deleted.",
				"produces": [
					"application/json"
				],
				"tags": [
					"Anomalies"
				],
				"summary": "Delete anomalies",
				"parameters": [
					{
						"type": "string",
						"description": "Exclusive lower bound (RFC 3339)",
						"name": "from",
						"in": "query"
					},
					{
						"type": "string",
						"description": "Exclusive upper bound (RFC 3339)",
						"name": "to",
						"in": "query"
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"allOf": [
								{
									"$ref": "#/definitions/models.APIResponse"
								},
								{
									"type": "object",
									"properties": {
										"data": {
											"$ref": "#/definitions/models.DeleteResult"
										}
									}
								}
							]
						}
					},
					"400": {
						"description": "Malformed range",
						"schema": {
							"$ref": "#/definitions/models.APIResponse"
						}
					},
					"500": {
						"description": "Storage failure",
						"schema": {
							"$ref": "#/definitions/models.APIResponse"
						}
					}
				}
			}
		},
		"/log/watermark": {
			"get": {
				"description": "Timestamp through which scheduled passes have analysed events. Before the first pass the Unix epoch is returned.",
				"produces": [
					"application/json"
				],
				"tags": [
					"Anomalies"
				],
				"summary": "Get the analysis watermark",
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"allOf": [
								{
									"$ref": "#/definitions/models.APIResponse"
								},
								{
									"type": "object",
									"properties": {
										"data": {
											"$ref": "#/definitions/models.Watermark"
										}
									}
								}
							]
						}
					},
					"500": {
						"description": "Storage failure",
						"schema": {
							"$ref": "#/definitions/models.APIResponse"
						}
					}
				}
			}
		}
	},
	"definitions": {
		"models.APIResponse": {
			"type": "object",
			"properties": {
				"data": {},
				"error": {
					"$ref": "#/definitions/models.APIError"
				},
				"metadata": {
					"$ref": "#/definitions/models.Metadata"
				},
				"status": {
					"type": "string"
				}
			}
		},
		"models.APIError": {
			"type": "object",
			"properties": {
				"code": {
					"type": "string"
				},
				"details": {
					"type": "object",
					"additionalProperties": true
				},
				"message": {
					"type": "string"
				}
			}
		},
		"models.Metadata": {
			"type": "object",
			"properties": {
				"count": {
					"type": "integer"
				},
				"query_time_ms": {
					"type": "integer"
				},
				"timestamp": {
					"type": "string"
				}
			}
		},
		"models.Event": {
			"type": "object",
			"required": [
				"endpoint",
				"method",
				"source_ip",
				"status_code",
				"timestamp"
			],
			"properties": {
				"id": {
					"type": "string"
				},
				"source_ip": {
					"type": "string"
				},
				"user": {
					"type": "string"
				},
				"timestamp": {
					"type": "string"
				},
				"method": {
					"type": "string"
				},
				"endpoint": {
					"type": "string",
					"maxLength": 2048
				},
				"protocol": {
					"type": "string",
					"maxLength": 10
				},
				"status_code": {
					"type": "integer",
					"maximum": 599,
					"minimum": 100
				},
				"bytes_sent": {
					"type": "integer",
					"minimum": 0
				},
				"referer": {
					"type": "string"
				},
				"user_agent": {
					"type": "string",
					"maxLength": 512
				},
				"request_length": {
					"type": "integer",
					"minimum": 0
				},
				"message": {
					"type": "string"
				}
			}
		},
		"models.Anomaly": {
			"type": "object",
			"properties": {
				"id": {
					"type": "string"
				},
				"timestamp_from": {
					"type": "string"
				},
				"timestamp_to": {
					"type": "string"
				},
				"endpoint": {
					"type": "string"
				},
				"number_of_hits": {
					"type": "integer"
				},
				"level": {
					"type": "string",
					"enum": [
						"Medium",
						"High"
					]
				},
				"anomaly_type": {
					"type": "string",
					"enum": [
						"Brute-force",
						"DDoS",
						"Bot"
					]
				},
				"body_bytes_sent": {
					"type": "integer"
				},
				"request_length": {
					"type": "integer"
				},
				"created_at": {
					"type": "string"
				}
			}
		},
		"models.Watermark": {
			"type": "object",
			"properties": {
				"key": {
					"type": "string"
				},
				"timestamp": {
					"type": "string"
				},
				"updated_at": {
					"type": "string"
				}
			}
		},
		"models.HealthStatus": {
			"type": "object",
			"properties": {
				"status": {
					"type": "string"
				},
				"version": {
					"type": "string"
				},
				"database_connected": {
					"type": "boolean"
				},
				"circuit_breaker": {
					"type": "string"
				},
				"ingest_transport": {
					"type": "string"
				},
				"analysis_running": {
					"type": "boolean"
				},
				"watermark": {
					"type": "string"
				},
				"uptime_seconds": {
					"type": "number"
				}
			}
		},
		"models.IngestResult": {
			"type": "object",
			"properties": {
				"accepted": {
					"type": "integer"
				}
			}
		},
		"models.DeleteResult": {
			"type": "object",
			"properties": {
				"deleted": {
					"type": "integer"
				}
			}
		},
		"detection.PassResult": {
			"type": "object",
			"properties": {
				"pass_id": {
					"type": "string"
				},
				"trigger": {
					"type": "string",
					"enum": [
						"scheduled",
						"on_demand"
					]
				},
				"from": {
					"type": "string"
				},
				"to": {
					"type": "string"
				},
				"events": {
					"type": "integer"
				},
				"sub_passes": {
					"type": "integer"
				},
				"anomalies": {
					"type": "array",
					"items": {
						"$ref": "#/definitions/models.Anomaly"
					}
				},
				"inserted": {
					"type": "integer"
				},
				"watermark": {
					"type": "string"
				},
				"duration_ns": {
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
	BasePath:         "/api/v1",
	Schemes:          []string{"http", "https"},
	Title:            "Horus API",
	Description:      "HTTP access-log ingestion and anomaly detection (brute force, DDoS, bots).",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
