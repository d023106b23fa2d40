// Package docs registers the OpenAPI document served under /swagger.
// Regenerate with: swag init -g cmd/api/main.go
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
        "/groups": {
            "get": {"tags": ["groups"], "summary": "List groups", "produces": ["application/json"], "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["groups"], "summary": "Create a new group", "consumes": ["application/json"], "produces": ["application/json"], "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}}}
        },
        "/groups/{id}": {
            "get": {"tags": ["groups"], "summary": "Get group by ID", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}},
            "put": {"tags": ["groups"], "summary": "Update a group", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}},
            "delete": {"tags": ["groups"], "summary": "Delete a group", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}
        },
        "/groups/{id}/members": {
            "get": {"tags": ["groups"], "summary": "List group members", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["groups"], "summary": "Add member to group", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"201": {"description": "Created"}, "409": {"description": "Conflict"}}}
        },
        "/groups/{id}/members/{memberId}": {
            "delete": {"tags": ["groups"], "summary": "Remove member from group", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}, {"type": "string", "name": "memberId", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "409": {"description": "Conflict"}}}
        },
        "/expenses": {
            "post": {"tags": ["expenses"], "summary": "Create a new expense", "consumes": ["application/json"], "produces": ["application/json"], "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}}}
        },
        "/expenses/{id}": {
            "get": {"tags": ["expenses"], "summary": "Get expense by ID", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}},
            "put": {"tags": ["expenses"], "summary": "Correct an expense", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}},
            "delete": {"tags": ["expenses"], "summary": "Delete an expense", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}
        },
        "/expenses/group/{groupId}": {
            "get": {"tags": ["expenses"], "summary": "List expenses by group", "parameters": [{"type": "string", "name": "groupId", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}
        },
        "/settlements": {
            "post": {"tags": ["settlements"], "summary": "Record a settlement", "consumes": ["application/json"], "produces": ["application/json"], "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}}}
        },
        "/settlements/{id}": {
            "get": {"tags": ["settlements"], "summary": "Get settlement by ID", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}},
            "delete": {"tags": ["settlements"], "summary": "Delete a settlement", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}
        },
        "/settlements/group/{groupId}": {
            "get": {"tags": ["settlements"], "summary": "List settlements by group", "parameters": [{"type": "string", "name": "groupId", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}
        },
        "/balances/group/{groupId}": {
            "get": {"tags": ["balances"], "summary": "Get group balances", "parameters": [{"type": "string", "name": "groupId", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}
        },
        "/balances/group/{groupId}/debts": {
            "get": {"tags": ["balances"], "summary": "Get simplified debts", "parameters": [{"type": "string", "name": "groupId", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}
        },
        "/balances/group/{groupId}/members/{memberId}": {
            "get": {"tags": ["balances"], "summary": "Get a member's position", "parameters": [{"type": "string", "name": "groupId", "in": "path", "required": true}, {"type": "string", "name": "memberId", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}
        },
        "/notifications": {
            "get": {"tags": ["notifications"], "summary": "List notifications", "parameters": [{"type": "string", "name": "X-Member-ID", "in": "header", "required": true}], "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}}
        },
        "/notifications/unread-count": {
            "get": {"tags": ["notifications"], "summary": "Count unread notifications", "parameters": [{"type": "string", "name": "X-Member-ID", "in": "header", "required": true}], "responses": {"200": {"description": "OK"}}}
        },
        "/notifications/{id}/read": {
            "post": {"tags": ["notifications"], "summary": "Mark a notification as read", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}}}
        },
        "/notifications/read-all": {
            "post": {"tags": ["notifications"], "summary": "Mark all notifications as read", "responses": {"200": {"description": "OK"}}}
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Group Ledger API",
	Description:      "Shared expenses, settlements and simplified debts for groups.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
