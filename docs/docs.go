// Package docs swagger 文档，由 swag init -g cmd/server/main.go 生成后覆盖
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
                "tags": ["common"],
                "summary": "健康检查",
                "responses": {"200": {"description": "OK"}, "503": {"description": "Service Unavailable"}}
            }
        },
        "/products": {
            "get": {
                "tags": ["product"],
                "summary": "商品列表",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/orders": {
            "get": {
                "security": [{"Bearer": []}],
                "tags": ["order"],
                "summary": "我的订单",
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "security": [{"Bearer": []}],
                "tags": ["order"],
                "summary": "结算下单",
                "parameters": [
                    {"type": "string", "description": "防重复提交", "name": "Idempotency-Key", "in": "header"}
                ],
                "responses": {"201": {"description": "Created"}}
            }
        },
        "/orders/{id}/payment": {
            "get": {
                "security": [{"Bearer": []}],
                "tags": ["order"],
                "summary": "入金信息",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/admin/orders/{id}/result": {
            "post": {
                "security": [{"Bearer": []}],
                "consumes": ["multipart/form-data"],
                "tags": ["admin"],
                "summary": "上传结果文件",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true},
                    {"type": "file", "description": "PDF 或 ZIP，最大 30MB", "name": "file", "in": "formData", "required": true}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/jobs/cleanup-expired-files": {
            "post": {
                "tags": ["job"],
                "summary": "清理过期结果文件",
                "parameters": [
                    {"type": "string", "description": "共享密钥", "name": "X-Cron-Secret", "in": "header", "required": true}
                ],
                "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}
            }
        },
        "/reviews": {
            "get": {"tags": ["review"], "summary": "评价列表", "responses": {"200": {"description": "OK"}}}
        },
        "/qna": {
            "get": {"tags": ["qna"], "summary": "问答列表", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["qna"], "summary": "提问", "responses": {"201": {"description": "Created"}}}
        }
    },
    "securityDefinitions": {
        "Bearer": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Fortune Shop API",
	Description:      "운세 리포트 쇼핑몰 API",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
