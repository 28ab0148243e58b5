// Package docs holds the OpenAPI description served under /swagger.
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
                "tags": ["health"],
                "summary": "Liveness probe",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/tickers": {
            "get": {
                "description": "Stocks from the IBOV file, REITs from the IFIX file and their sorted union",
                "produces": ["application/json"],
                "tags": ["catalog"],
                "summary": "List tradeable symbols",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.TickersResponse"}}
                }
            }
        },
        "/prices": {
            "get": {
                "description": "Closing prices of the selected symbols over a date sub-range of the history window",
                "produces": ["application/json"],
                "tags": ["prices"],
                "summary": "Get closing prices",
                "parameters": [
                    {"type": "string", "description": "Comma separated symbols, e.g. PETR4.SA,VALE3", "name": "symbols", "in": "query", "required": true},
                    {"type": "string", "description": "Start date (YYYY-MM-DD)", "name": "start_date", "in": "query"},
                    {"type": "string", "description": "End date (YYYY-MM-DD)", "name": "end_date", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.PricesResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/portfolio/performance": {
            "post": {
                "description": "Buy-and-hold returns per asset and for the portfolio, equal, average or user weighted",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["portfolio"],
                "summary": "Compute portfolio performance",
                "parameters": [
                    {"description": "Selection, dates, strategy and weights", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.PerformanceRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.PerformanceResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/portfolio/performance/upload": {
            "post": {
                "description": "The weights file has a header line and symbol,weight rows in percent",
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["portfolio"],
                "summary": "Compute a user weighted portfolio from a CSV file",
                "parameters": [
                    {"type": "file", "description": "CSV with symbol and weight columns", "name": "weights", "in": "formData", "required": true},
                    {"type": "number", "description": "Total capital", "name": "capital", "in": "formData"},
                    {"type": "string", "description": "Start date (YYYY-MM-DD)", "name": "start_date", "in": "formData"},
                    {"type": "string", "description": "End date (YYYY-MM-DD)", "name": "end_date", "in": "formData"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.PerformanceResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/portfolio/chart": {
            "get": {
                "description": "PNG line chart of the closing prices of the selected symbols",
                "produces": ["image/png"],
                "tags": ["prices"],
                "summary": "Price chart",
                "parameters": [
                    {"type": "string", "description": "Comma separated symbols", "name": "symbols", "in": "query", "required": true},
                    {"type": "string", "description": "Start date (YYYY-MM-DD)", "name": "start_date", "in": "query"},
                    {"type": "string", "description": "End date (YYYY-MM-DD)", "name": "end_date", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "file"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "models.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "models.Warning": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "models.Observation": {
            "type": "object",
            "properties": {
                "date": {"type": "string"},
                "close": {"type": "number"}
            }
        },
        "models.TickersResponse": {
            "type": "object",
            "properties": {
                "stocks": {"type": "array", "items": {"type": "string"}},
                "reits": {"type": "array", "items": {"type": "string"}},
                "all": {"type": "array", "items": {"type": "string"}},
                "warnings": {"type": "array", "items": {"$ref": "#/definitions/models.Warning"}}
            }
        },
        "models.PricesResponse": {
            "type": "object",
            "properties": {
                "start_date": {"type": "string"},
                "end_date": {"type": "string"},
                "data_points": {"type": "integer"},
                "series": {"type": "object", "additionalProperties": {"type": "array", "items": {"$ref": "#/definitions/models.Observation"}}},
                "warnings": {"type": "array", "items": {"$ref": "#/definitions/models.Warning"}}
            }
        },
        "models.PerformanceRequest": {
            "type": "object",
            "properties": {
                "assets": {"type": "array", "items": {"type": "string"}},
                "start_date": {"type": "string", "example": "2024-01-02"},
                "end_date": {"type": "string", "example": "2025-06-30"},
                "strategy": {"type": "string", "enum": ["equal", "average", "weighted"]},
                "capital": {"type": "number"},
                "weights": {"type": "object", "additionalProperties": {"type": "number"}}
            }
        },
        "models.AssetResult": {
            "type": "object",
            "properties": {
                "symbol": {"type": "string"},
                "return_fraction": {"type": "number"},
                "weight": {"type": "number"},
                "allocated_capital": {"type": "number"},
                "final_value": {"type": "number"}
            }
        },
        "models.Aggregate": {
            "type": "object",
            "properties": {
                "initial_capital": {"type": "number"},
                "final_capital": {"type": "number"},
                "profit_loss": {"type": "number"},
                "return_fraction": {"type": "number"}
            }
        },
        "models.PortfolioResult": {
            "type": "object",
            "properties": {
                "strategy": {"type": "string"},
                "assets": {"type": "array", "items": {"$ref": "#/definitions/models.AssetResult"}},
                "excluded": {"type": "array", "items": {"type": "string"}},
                "aggregate": {"$ref": "#/definitions/models.Aggregate"}
            }
        },
        "models.AssetReport": {
            "type": "object",
            "properties": {
                "symbol": {"type": "string"},
                "return": {"type": "string"},
                "allocated": {"type": "string"},
                "final_value": {"type": "string"},
                "positive": {"type": "boolean"}
            }
        },
        "models.AggregateReport": {
            "type": "object",
            "properties": {
                "initial_capital": {"type": "string"},
                "final_capital": {"type": "string"},
                "profit_loss": {"type": "string"},
                "return": {"type": "string"},
                "positive": {"type": "boolean"}
            }
        },
        "models.PerformanceReport": {
            "type": "object",
            "properties": {
                "assets": {"type": "array", "items": {"$ref": "#/definitions/models.AssetReport"}},
                "aggregate": {"$ref": "#/definitions/models.AggregateReport"}
            }
        },
        "models.PerformanceResponse": {
            "type": "object",
            "properties": {
                "start_date": {"type": "string"},
                "end_date": {"type": "string"},
                "result": {"$ref": "#/definitions/models.PortfolioResult"},
                "display": {"$ref": "#/definitions/models.PerformanceReport"},
                "warnings": {"type": "array", "items": {"$ref": "#/definitions/models.Warning"}}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "B3 Portfolio Dashboard API",
	Description:      "Buy-and-hold performance of IBOV stocks and IFIX REITs.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
