// Package mcp holds the wire types for the Model Context Protocol subset this
// app speaks: JSON-RPC 2.0 envelopes plus the tool and resource shapes used by
// the calculator widgets.
package mcp

import "encoding/json"

const (
	JSONRPC_VERSION         = "2.0"
	LATEST_PROTOCOL_VERSION = "2024-11-05"
)

// Standard JSON-RPC 2.0 error codes.
const (
	PARSE_ERROR      = -32700
	INVALID_REQUEST  = -32600
	METHOD_NOT_FOUND = -32601
	INVALID_PARAMS   = -32602
	INTERNAL_ERROR   = -32603
)

// JSONRPCMessage is any message that can go over the wire: a response, an
// error, or nil for notifications that produce no reply.
type JSONRPCMessage interface{}

type JSONRPCRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

type JSONRPCNotification struct {
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

type JSONRPCError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

type JSONRPCResponse struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      interface{}   `json:"id,omitempty"`
	Result  interface{}   `json:"result,omitempty"`
	Error   *JSONRPCError `json:"error,omitempty"`
}

// MetaData carries protocol metadata in `_meta` fields. The widget descriptor
// block (output template, invocation text, CSP allow-list) travels here.
type MetaData map[string]interface{}

// Implementation describes the name and version of an MCP implementation.
type Implementation struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// ServerCapabilities represents capabilities this server advertises.
type ServerCapabilities struct {
	Resources *ResourceCapabilities `json:"resources,omitempty"`
	Tools     *ToolCapabilities     `json:"tools,omitempty"`
}

type ResourceCapabilities struct {
	Subscribe   bool `json:"subscribe"`
	ListChanged bool `json:"listChanged"`
}

type ToolCapabilities struct {
	ListChanged bool `json:"listChanged"`
}

type Tool struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	InputSchema ToolInputSchema `json:"inputSchema"`
	Meta        MetaData        `json:"_meta,omitempty"`
}

type ToolInputSchema struct {
	Type       string                 `json:"type"` // always "object"
	Properties map[string]interface{} `json:"properties,omitempty"`
	Required   []string               `json:"required,omitempty"`
}

type Resource struct {
	URI         string   `json:"uri"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	MimeType    string   `json:"mimeType,omitempty"`
	Meta        MetaData `json:"_meta,omitempty"`
}

type ResourceTemplate struct {
	URITemplate string   `json:"uriTemplate"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	MimeType    string   `json:"mimeType,omitempty"`
	Meta        MetaData `json:"_meta,omitempty"`
}

// ResourceContents can be TextResourceContents or BlobResourceContents.
type ResourceContents interface{}

type TextResourceContents struct {
	URI      string   `json:"uri"`
	MimeType string   `json:"mimeType,omitempty"`
	Text     string   `json:"text"`
	Meta     MetaData `json:"_meta,omitempty"`
}

type BlobResourceContents struct {
	URI      string `json:"uri"`
	MimeType string `json:"mimeType,omitempty"`
	Blob     []byte `json:"blob"`
}

// Content can be TextContent or EmbeddedResource.
type Content interface{}

type TextContent struct {
	Type string `json:"type"` // always "text"
	Text string `json:"text"`
}

type EmbeddedResource struct {
	Type     string           `json:"type"` // always "resource"
	Resource ResourceContents `json:"resource"`
}

// Requests.

type InitializeRequest struct {
	Params struct {
		ProtocolVersion string                 `json:"protocolVersion"`
		Capabilities    map[string]interface{} `json:"capabilities"`
		ClientInfo      Implementation         `json:"clientInfo"`
	} `json:"params"`
}

type PingRequest struct{}

type ListToolsRequest struct {
	Params struct {
		Cursor string `json:"cursor,omitempty"`
	} `json:"params,omitempty"`
}

type CallToolRequest struct {
	Params struct {
		Name      string                 `json:"name"`
		Arguments map[string]interface{} `json:"arguments,omitempty"`
	} `json:"params"`
}

type ListResourcesRequest struct {
	Params struct {
		Cursor string `json:"cursor,omitempty"`
	} `json:"params,omitempty"`
}

type ListResourceTemplatesRequest struct {
	Params struct {
		Cursor string `json:"cursor,omitempty"`
	} `json:"params,omitempty"`
}

type ReadResourceRequest struct {
	Params struct {
		URI string `json:"uri"`
	} `json:"params"`
}

// Results.

type EmptyResult struct{}

type InitializeResult struct {
	ProtocolVersion string             `json:"protocolVersion"`
	Capabilities    ServerCapabilities `json:"capabilities"`
	ServerInfo      Implementation     `json:"serverInfo"`
	Instructions    string             `json:"instructions,omitempty"`
}

type ListToolsResult struct {
	Tools      []Tool `json:"tools"`
	NextCursor string `json:"nextCursor,omitempty"`
}

type CallToolResult struct {
	Content           []Content   `json:"content"`
	StructuredContent interface{} `json:"structuredContent,omitempty"`
	IsError           bool        `json:"isError,omitempty"`
	Meta              MetaData    `json:"_meta,omitempty"`
}

type ListResourcesResult struct {
	Resources  []Resource `json:"resources"`
	NextCursor string     `json:"nextCursor,omitempty"`
}

type ListResourceTemplatesResult struct {
	ResourceTemplates []ResourceTemplate `json:"resourceTemplates"`
	NextCursor        string             `json:"nextCursor,omitempty"`
}

type ReadResourceResult struct {
	Contents []ResourceContents `json:"contents"`
}
