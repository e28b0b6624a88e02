// Package api registers the OpenAPI document served at /swagger.
package api

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "API Support",
            "url": "https://github.com/localnerve/bootmgr",
            "email": "info@localnerve.com"
        },
        "license": {
            "name": "AGPL-3.0",
            "url": "https://www.gnu.org/licenses/agpl-3.0.html"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/hosts": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Hosts"],
                "summary": "List hosts",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/services.HostGroup"}}}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Hosts"],
                "summary": "Add hosts",
                "parameters": [
                    {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/services.CreateHostsInput"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/services.HostGroup"}}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/utils.ErrorResponseStruct"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/utils.ErrorResponseStruct"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/utils.ErrorResponseStruct"}},
                    "413": {"description": "Request Entity Too Large", "schema": {"$ref": "#/definitions/utils.ErrorResponseStruct"}}
                }
            }
        },
        "/hosts/{pattern}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Hosts"],
                "summary": "Get hosts",
                "parameters": [{"type": "string", "name": "pattern", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/services.HostGroup"}}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/utils.ErrorResponseStruct"}}
                }
            },
            "patch": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Hosts"],
                "summary": "Update hosts",
                "parameters": [
                    {"type": "string", "name": "pattern", "in": "path", "required": true},
                    {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/services.UpdateHostsInput"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/services.HostGroup"}}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/utils.ErrorResponseStruct"}}
                }
            },
            "delete": {
                "tags": ["Hosts"],
                "summary": "Delete hosts",
                "parameters": [{"type": "string", "name": "pattern", "in": "path", "required": true}],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/utils.ErrorResponseStruct"}}
                }
            }
        },
        "/profiles": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Profiles"],
                "summary": "List profiles",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/services.ProfileView"}}}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Profiles"],
                "summary": "Add a profile",
                "parameters": [
                    {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/services.CreateProfileInput"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/services.ProfileView"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/utils.ErrorResponseStruct"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/utils.ErrorResponseStruct"}}
                }
            }
        },
        "/profiles/{name}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Profiles"],
                "summary": "Get a profile",
                "parameters": [{"type": "string", "name": "name", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/services.ProfileView"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/utils.ErrorResponseStruct"}}
                }
            },
            "patch": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Profiles"],
                "summary": "Update a profile",
                "parameters": [
                    {"type": "string", "name": "name", "in": "path", "required": true},
                    {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/services.UpdateProfileInput"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/services.ProfileView"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/utils.ErrorResponseStruct"}}
                }
            },
            "delete": {
                "tags": ["Profiles"],
                "summary": "Delete a profile",
                "parameters": [{"type": "string", "name": "name", "in": "path", "required": true}],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/utils.ErrorResponseStruct"}}
                }
            }
        },
        "/resources": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Resources"],
                "summary": "List resources",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/services.ResourceView"}}}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Resources"],
                "summary": "Add a resource",
                "parameters": [
                    {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/services.CreateResourceInput"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/services.ResourceView"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/utils.ErrorResponseStruct"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/utils.ErrorResponseStruct"}}
                }
            }
        },
        "/resources/{name}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Resources"],
                "summary": "Get a resource",
                "parameters": [{"type": "string", "name": "name", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/services.ResourceView"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/utils.ErrorResponseStruct"}}
                }
            },
            "patch": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Resources"],
                "summary": "Update a resource",
                "parameters": [
                    {"type": "string", "name": "name", "in": "path", "required": true},
                    {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/services.UpdateResourceInput"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/services.ResourceView"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/utils.ErrorResponseStruct"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/utils.ErrorResponseStruct"}}
                }
            },
            "delete": {
                "tags": ["Resources"],
                "summary": "Delete a resource",
                "parameters": [{"type": "string", "name": "name", "in": "path", "required": true}],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/utils.ErrorResponseStruct"}}
                }
            }
        },
        "/resources/{name}/{host}": {
            "get": {
                "produces": ["text/plain"],
                "tags": ["Resources"],
                "summary": "Render a resource for a host",
                "parameters": [
                    {"type": "string", "name": "name", "in": "path", "required": true},
                    {"type": "string", "name": "host", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "Rendered template", "schema": {"type": "string"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/utils.ErrorResponseStruct"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/utils.ErrorResponseStruct"}}
                }
            }
        },
        "/aliases": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Aliases"],
                "summary": "List aliases",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/services.AliasView"}}}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Aliases"],
                "summary": "Add an alias",
                "parameters": [
                    {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/services.CreateAliasInput"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/services.AliasView"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/utils.ErrorResponseStruct"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/utils.ErrorResponseStruct"}}
                }
            }
        },
        "/aliases/{name}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Aliases"],
                "summary": "Get an alias",
                "parameters": [{"type": "string", "name": "name", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/services.AliasView"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/utils.ErrorResponseStruct"}}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Aliases"],
                "summary": "Override an alias for hosts",
                "parameters": [
                    {"type": "string", "name": "name", "in": "path", "required": true},
                    {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/services.SetOverrideInput"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/services.AliasView"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/utils.ErrorResponseStruct"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/utils.ErrorResponseStruct"}},
                    "413": {"description": "Request Entity Too Large", "schema": {"$ref": "#/definitions/utils.ErrorResponseStruct"}}
                }
            },
            "delete": {
                "tags": ["Aliases"],
                "summary": "Delete an alias",
                "parameters": [{"type": "string", "name": "name", "in": "path", "required": true}],
                "responses": {"204": {"description": "No Content"}}
            }
        },
        "/aliases/{name}/{pattern}": {
            "delete": {
                "tags": ["Aliases"],
                "summary": "Restore hosts to the alias default",
                "parameters": [
                    {"type": "string", "name": "name", "in": "path", "required": true},
                    {"type": "string", "name": "pattern", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/utils.ErrorResponseStruct"}}
                }
            }
        }
    },
    "definitions": {
        "services.AliasView": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "target": {"type": "string"},
                "overrides": {"type": "object", "additionalProperties": {"$ref": "#/definitions/services.OverrideView"}}
            }
        },
        "services.OverrideView": {
            "type": "object",
            "properties": {
                "target": {"type": "string"},
                "autodelete": {"type": "boolean"}
            }
        },
        "services.CreateAliasInput": {
            "type": "object",
            "required": ["name", "target"],
            "properties": {
                "name": {"type": "string"},
                "target": {"type": "string"}
            }
        },
        "services.SetOverrideInput": {
            "type": "object",
            "required": ["hosts", "target"],
            "properties": {
                "hosts": {"type": "string"},
                "target": {"type": "string"},
                "autodelete": {"type": "boolean"}
            }
        },
        "services.HostGroup": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "profiles": {"type": "array", "items": {"type": "string"}},
                "attributes": {"type": "object", "additionalProperties": {"type": "string"}}
            }
        },
        "services.CreateHostsInput": {
            "type": "object",
            "required": ["name"],
            "properties": {
                "name": {"type": "string"},
                "profiles": {"type": "array", "items": {"type": "string"}}
            }
        },
        "services.UpdateHostsInput": {
            "type": "object",
            "properties": {
                "profiles": {"type": "array", "items": {"type": "string"}}
            }
        },
        "services.ProfileView": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "attributes": {"type": "object", "additionalProperties": {"type": "string"}},
                "weight": {"type": "integer"}
            }
        },
        "services.CreateProfileInput": {
            "type": "object",
            "required": ["name"],
            "properties": {
                "name": {"type": "string"},
                "attributes": {"type": "object", "additionalProperties": {"type": "string"}},
                "weight": {"type": "integer"}
            }
        },
        "services.UpdateProfileInput": {
            "type": "object",
            "properties": {
                "attributes": {"type": "object", "additionalProperties": {"type": "string"}},
                "weight": {"type": "integer"}
            }
        },
        "services.ResourceView": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "template_uri": {"type": "string"}
            }
        },
        "services.CreateResourceInput": {
            "type": "object",
            "required": ["name", "template_uri"],
            "properties": {
                "name": {"type": "string"},
                "template_uri": {"type": "string"}
            }
        },
        "services.UpdateResourceInput": {
            "type": "object",
            "properties": {
                "template_uri": {"type": "string"}
            }
        },
        "utils.ErrorResponseStruct": {
            "type": "object",
            "properties": {
                "error": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1.0",
	Schemes:          []string{"http", "https"},
	Title:            "bootmgr API",
	Description:      "Network boot configuration manager: hosts, weighted profiles, resources and aliases with one-shot overrides",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
