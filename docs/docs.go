// Package docs registers the OpenAPI document for the leaderboard API.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/users": {
            "post": {
                "tags": ["Users"],
                "summary": "Register or Fetch User",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/models.RegisterUserRequest"}}
                ],
                "responses": {
                    "200": {"description": "Existing user", "schema": {"$ref": "#/definitions/models.UserRecord"}},
                    "201": {"description": "Created user", "schema": {"$ref": "#/definitions/models.UserRecord"}},
                    "400": {"description": "Bad Request"},
                    "429": {"description": "Rate limited"}
                }
            }
        },
        "/users/{wallet}": {
            "get": {
                "tags": ["Users"],
                "summary": "Get User Profile",
                "produces": ["application/json"],
                "parameters": [
                    {"in": "path", "name": "wallet", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.UserRecord"}},
                    "404": {"description": "Not Found"}
                }
            }
        },
        "/users/{wallet}/profile": {
            "put": {
                "tags": ["Users"],
                "summary": "Update Profile",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"in": "path", "name": "wallet", "type": "string", "required": true},
                    {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/models.UpdateProfileRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.UserRecord"}},
                    "404": {"description": "Not Found"}
                }
            }
        },
        "/users/{wallet}/listing": {
            "put": {
                "tags": ["Users"],
                "summary": "Set Listing Flag",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"in": "path", "name": "wallet", "type": "string", "required": true},
                    {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/models.SetListingRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.SetListingResponse"}},
                    "404": {"description": "Not Found"}
                }
            }
        },
        "/leaderboard": {
            "get": {
                "tags": ["Leaderboard"],
                "summary": "Derived Leaderboard",
                "produces": ["application/json"],
                "parameters": [
                    {"in": "query", "name": "period", "type": "string", "enum": ["daily", "weekly", "monthly"]}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.LeaderboardResponse"}}
                }
            }
        },
        "/leaderboard/listed": {
            "get": {
                "tags": ["Leaderboard"],
                "summary": "Listed Users",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.UserRecord"}}}
                }
            }
        },
        "/system/install": {
            "post": {
                "security": [{"AdminToken": []}],
                "tags": ["System"],
                "summary": "Install Database Schema",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK"},
                    "401": {"description": "Unauthorized"}
                }
            }
        }
    },
    "definitions": {
        "models.RegisterUserRequest": {
            "type": "object",
            "required": ["walletAddress"],
            "properties": {"walletAddress": {"type": "string"}}
        },
        "models.UpdateProfileRequest": {
            "type": "object",
            "properties": {
                "nickname": {"type": "string", "maxLength": 32},
                "socials": {"type": "object", "additionalProperties": {"type": "string"}}
            }
        },
        "models.SetListingRequest": {
            "type": "object",
            "required": ["listed"],
            "properties": {"listed": {"type": "boolean"}}
        },
        "models.SetListingResponse": {
            "type": "object",
            "properties": {"success": {"type": "boolean"}}
        },
        "models.UserRecord": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "walletAddress": {"type": "string"},
                "nickname": {"type": "string"},
                "telegram": {"type": "string"},
                "discord": {"type": "string"},
                "twitter": {"type": "string"},
                "twitch": {"type": "string"},
                "kick": {"type": "string"},
                "listed": {"type": "boolean"},
                "createdAt": {"type": "string", "format": "date-time"}
            }
        },
        "models.Trader": {
            "type": "object",
            "properties": {
                "rank": {"type": "integer"},
                "name": {"type": "string"},
                "walletAddress": {"type": "string"},
                "pnl": {"type": "string"},
                "value": {"type": "string"},
                "greenTrades": {"type": "integer"},
                "redTrades": {"type": "integer"},
                "position": {"type": "string", "enum": ["center", "left", "right"]},
                "socials": {"type": "array", "items": {"type": "string"}}
            }
        },
        "models.LeaderboardResponse": {
            "type": "object",
            "properties": {
                "topTraders": {"type": "array", "items": {"$ref": "#/definitions/models.Trader"}},
                "rankedTraders": {"type": "array", "items": {"$ref": "#/definitions/models.Trader"}},
                "period": {"type": "string"},
                "generatedAt": {"type": "string", "format": "date-time"}
            }
        }
    },
    "securityDefinitions": {
        "AdminToken": {"type": "apiKey", "name": "X-Admin-Token", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "PnL Leaderboard API",
	Description:      "Wallet-keyed user records and the ranked trader leaderboard.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
