// Package docs holds the OpenAPI document for the news aggregator API.
package docs

import "github.com/swaggo/swag"

// @title News Aggregator API
// @version 1.0
// @description Aggregates articles from multiple news providers and serves filtered, paginated and personalized reads

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1

func init() {
	swag.Register(swag.Name, &swag.Spec{
		InfoInstanceName: "swagger",
		SwaggerTemplate:  docTemplate,
	})
}

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "News Aggregator API",
        "description": "Aggregates articles from NewsAPI, the New York Times and the Guardian, normalizes them into one record format and serves filtered, paginated and per-user personalized reads.",
        "version": "1.0.0",
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        }
    },
    "host": "localhost:8080",
    "basePath": "/api/v1",
    "paths": {
        "/articles": {
            "get": {
                "summary": "List articles",
                "description": "Filtered, paginated article listing. All filters are optional and combine with AND semantics; keyword matches title or content.",
                "produces": ["application/json"],
                "parameters": [
                    {"name": "keyword", "in": "query", "type": "string", "description": "Case-insensitive substring match on title or content"},
                    {"name": "date_from", "in": "query", "type": "string", "description": "Inclusive lower bound on published_at (requires date_to)"},
                    {"name": "date_to", "in": "query", "type": "string", "description": "Inclusive upper bound on published_at (requires date_from)"},
                    {"name": "category", "in": "query", "type": "string", "description": "Exact category match"},
                    {"name": "source", "in": "query", "type": "string", "description": "Exact source match"},
                    {"name": "page", "in": "query", "type": "integer", "description": "1-based page number, 10 articles per page"}
                ],
                "responses": {
                    "200": {"description": "One page of articles with pagination metadata"},
                    "400": {"description": "Invalid filter parameters"}
                }
            }
        },
        "/articles/{id}": {
            "get": {
                "summary": "Get a single article",
                "produces": ["application/json"],
                "parameters": [
                    {"name": "id", "in": "path", "type": "integer", "required": true}
                ],
                "responses": {
                    "200": {"description": "The article"},
                    "404": {"description": "Unknown article id"}
                }
            }
        },
        "/preferences": {
            "get": {
                "summary": "List the caller's stored preferences",
                "produces": ["application/json"],
                "parameters": [
                    {"name": "X-User-ID", "in": "header", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "The caller's preference set"},
                    "401": {"description": "Missing user identity"}
                }
            },
            "post": {
                "summary": "Save one preference",
                "description": "Upserts a (type, value) pair for the caller and invalidates their cached preferences and feed.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"name": "X-User-ID", "in": "header", "type": "string", "required": true},
                    {"name": "body", "in": "body", "required": true, "schema": {
                        "type": "object",
                        "properties": {
                            "preference_type": {"type": "string", "enum": ["source", "category", "author"]},
                            "preference_value": {"type": "string"}
                        }
                    }}
                ],
                "responses": {
                    "200": {"description": "Preference saved"},
                    "400": {"description": "Invalid preference type or value"},
                    "401": {"description": "Missing user identity"}
                }
            }
        },
        "/feed": {
            "get": {
                "summary": "Personalized article feed",
                "description": "Articles matching any of the caller's stored preferences. A caller with no preferences gets the unfiltered listing.",
                "produces": ["application/json"],
                "parameters": [
                    {"name": "X-User-ID", "in": "header", "type": "string", "required": true},
                    {"name": "page", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "One page of personalized articles"},
                    "401": {"description": "Missing user identity"}
                }
            }
        },
        "/ingest": {
            "post": {
                "summary": "Run ingestion over all configured sources",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "Per-source fetched and upserted counts"}
                }
            }
        },
        "/ingest/status": {
            "get": {
                "summary": "Poller status and last ingestion results",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "Poller state, last run time and results"}
                }
            }
        }
    }
}`
