// Package server implements the MCP protocol server for the calculator app
// and the transports that carry it: SSE with per-session state, and stdio for
// local hosts. It also hosts the non-protocol HTTP surface (direct compute,
// static assets).
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/widgetforge/calcapp/calc"
	"github.com/widgetforge/calcapp/mcp"
)

// ToolHandlerFunc computes a tool call. Arguments have already been validated
// against the tool's input schema.
type ToolHandlerFunc func(ctx context.Context, arguments map[string]interface{}) (*mcp.CallToolResult, error)

// ResourceHandlerFunc produces the contents for a resource read.
type ResourceHandlerFunc func(ctx context.Context) ([]mcp.ResourceContents, error)

// NotificationHandlerFunc receives client notifications.
type NotificationHandlerFunc func(notification mcp.JSONRPCNotification)

type registeredTool struct {
	tool    mcp.Tool
	schema  *jsonschema.Schema
	handler ToolHandlerFunc
}

type registeredResource struct {
	resource mcp.Resource
	handler  ResourceHandlerFunc
}

// MCPServer dispatches MCP protocol messages against a statically registered
// tool and resource catalog. Registration happens at startup; after that the
// server is read-only and safe for concurrent requests.
type MCPServer struct {
	name    string
	version string

	tools     map[string]registeredTool
	toolOrder []string

	resources     map[string]registeredResource
	resourceOrder []string

	resourceTemplates []mcp.ResourceTemplate

	notifications []NotificationHandlerFunc
}

// NewMCPServer creates an empty protocol server with the given identity.
func NewMCPServer(name, version string) *MCPServer {
	return &MCPServer{
		name:      name,
		version:   version,
		tools:     make(map[string]registeredTool),
		resources: make(map[string]registeredResource),
	}
}

// AddTool registers a tool and its handler. The input schema is compiled here
// so every call is validated before the handler runs.
func (s *MCPServer) AddTool(tool mcp.Tool, handler ToolHandlerFunc) error {
	raw, err := json.Marshal(tool.InputSchema)
	if err != nil {
		return fmt.Errorf("marshal input schema for %s: %w", tool.Name, err)
	}
	schema, err := jsonschema.CompileString(tool.Name+".schema.json", string(raw))
	if err != nil {
		return fmt.Errorf("compile input schema for %s: %w", tool.Name, err)
	}

	if _, exists := s.tools[tool.Name]; !exists {
		s.toolOrder = append(s.toolOrder, tool.Name)
	}
	s.tools[tool.Name] = registeredTool{tool: tool, schema: schema, handler: handler}
	return nil
}

// AddResource registers a resource and its read handler.
func (s *MCPServer) AddResource(resource mcp.Resource, handler ResourceHandlerFunc) {
	if _, exists := s.resources[resource.URI]; !exists {
		s.resourceOrder = append(s.resourceOrder, resource.URI)
	}
	s.resources[resource.URI] = registeredResource{resource: resource, handler: handler}
}

// AddResourceTemplate registers a resource template for listing.
func (s *MCPServer) AddResourceTemplate(template mcp.ResourceTemplate) {
	s.resourceTemplates = append(s.resourceTemplates, template)
}

// AddNotificationHandler registers a handler for client notifications.
func (s *MCPServer) AddNotificationHandler(handler NotificationHandlerFunc) {
	s.notifications = append(s.notifications, handler)
}

// HandleMessage processes one raw JSON-RPC message and returns the reply, or
// nil for notifications.
func (s *MCPServer) HandleMessage(ctx context.Context, message json.RawMessage) mcp.JSONRPCMessage {
	var baseMessage struct {
		JSONRPC string      `json:"jsonrpc"`
		Method  string      `json:"method"`
		ID      interface{} `json:"id,omitempty"`
	}

	if err := json.Unmarshal(message, &baseMessage); err != nil {
		return createErrorResponse(nil, mcp.PARSE_ERROR, "Failed to parse message")
	}

	if baseMessage.JSONRPC != mcp.JSONRPC_VERSION {
		return createErrorResponse(baseMessage.ID, mcp.INVALID_REQUEST, "Invalid JSON-RPC version")
	}

	if baseMessage.ID == nil {
		var notification mcp.JSONRPCNotification
		if err := json.Unmarshal(message, &notification); err != nil {
			return createErrorResponse(nil, mcp.PARSE_ERROR, "Failed to parse notification")
		}
		for _, handler := range s.notifications {
			handler(notification)
		}
		return nil
	}

	switch baseMessage.Method {
	case "initialize":
		var request mcp.InitializeRequest
		if err := json.Unmarshal(message, &request); err != nil {
			return createErrorResponse(baseMessage.ID, mcp.INVALID_REQUEST, "Invalid initialize request")
		}
		return s.handleInitialize(baseMessage.ID, request)
	case "ping":
		return createResponse(baseMessage.ID, mcp.EmptyResult{})
	case "tools/list":
		return s.handleListTools(baseMessage.ID)
	case "tools/call":
		var request mcp.CallToolRequest
		if err := json.Unmarshal(message, &request); err != nil {
			return createErrorResponse(baseMessage.ID, mcp.INVALID_REQUEST, "Invalid call tool request")
		}
		return s.handleToolCall(ctx, baseMessage.ID, request)
	case "resources/list":
		return s.handleListResources(baseMessage.ID)
	case "resources/templates/list":
		return s.handleListResourceTemplates(baseMessage.ID)
	case "resources/read":
		var request mcp.ReadResourceRequest
		if err := json.Unmarshal(message, &request); err != nil {
			return createErrorResponse(baseMessage.ID, mcp.INVALID_REQUEST, "Invalid read resource request")
		}
		return s.handleReadResource(ctx, baseMessage.ID, request)
	default:
		return createErrorResponse(
			baseMessage.ID,
			mcp.METHOD_NOT_FOUND,
			fmt.Sprintf("Method %s not found", baseMessage.Method),
		)
	}
}

func (s *MCPServer) handleInitialize(id interface{}, _ mcp.InitializeRequest) mcp.JSONRPCMessage {
	result := mcp.InitializeResult{
		ProtocolVersion: mcp.LATEST_PROTOCOL_VERSION,
		Capabilities: mcp.ServerCapabilities{
			Resources: &mcp.ResourceCapabilities{},
			Tools:     &mcp.ToolCapabilities{},
		},
		ServerInfo: mcp.Implementation{
			Name:    s.name,
			Version: s.version,
		},
	}
	return createResponse(id, result)
}

func (s *MCPServer) handleListTools(id interface{}) mcp.JSONRPCMessage {
	tools := make([]mcp.Tool, 0, len(s.toolOrder))
	for _, name := range s.toolOrder {
		tools = append(tools, s.tools[name].tool)
	}
	return createResponse(id, mcp.ListToolsResult{Tools: tools})
}

func (s *MCPServer) handleToolCall(ctx context.Context, id interface{}, request mcp.CallToolRequest) mcp.JSONRPCMessage {
	rt, ok := s.tools[request.Params.Name]
	if !ok {
		return createErrorResponse(
			id,
			mcp.INVALID_PARAMS,
			fmt.Errorf("%w: %s", ErrToolNotFound, request.Params.Name).Error(),
		)
	}

	arguments := request.Params.Arguments
	if arguments == nil {
		arguments = map[string]interface{}{}
	}
	if err := rt.schema.Validate(toJSONValue(arguments)); err != nil {
		return createErrorResponse(
			id,
			mcp.INVALID_PARAMS,
			fmt.Errorf("%w for tool %s: %v", ErrInvalidArguments, request.Params.Name, err).Error(),
		)
	}

	result, err := rt.handler(ctx, arguments)
	if err != nil {
		return createErrorResponse(id, toolErrorCode(err), err.Error())
	}
	return createResponse(id, result)
}

// toolErrorCode maps a handler error to a JSON-RPC code. Domain errors the
// caller can fix are invalid params, everything else is internal.
func toolErrorCode(err error) int {
	switch {
	case errors.Is(err, calc.ErrDivideByZero),
		errors.Is(err, calc.ErrUnknownOperation),
		errors.Is(err, ErrInvalidArguments):
		return mcp.INVALID_PARAMS
	default:
		return mcp.INTERNAL_ERROR
	}
}

func (s *MCPServer) handleListResources(id interface{}) mcp.JSONRPCMessage {
	resources := make([]mcp.Resource, 0, len(s.resourceOrder))
	for _, uri := range s.resourceOrder {
		resources = append(resources, s.resources[uri].resource)
	}
	return createResponse(id, mcp.ListResourcesResult{Resources: resources})
}

func (s *MCPServer) handleListResourceTemplates(id interface{}) mcp.JSONRPCMessage {
	templates := make([]mcp.ResourceTemplate, 0, len(s.resourceTemplates))
	templates = append(templates, s.resourceTemplates...)
	return createResponse(id, mcp.ListResourceTemplatesResult{ResourceTemplates: templates})
}

func (s *MCPServer) handleReadResource(ctx context.Context, id interface{}, request mcp.ReadResourceRequest) mcp.JSONRPCMessage {
	rr, ok := s.resources[request.Params.URI]
	if !ok {
		return createErrorResponse(
			id,
			mcp.INVALID_PARAMS,
			fmt.Errorf("%w: %s", ErrResourceNotFound, request.Params.URI).Error(),
		)
	}

	contents, err := rr.handler(ctx)
	if err != nil {
		return createErrorResponse(id, mcp.INTERNAL_ERROR, err.Error())
	}
	return createResponse(id, mcp.ReadResourceResult{Contents: contents})
}

// toJSONValue normalizes arguments for schema validation, which only accepts
// the value shapes produced by encoding/json. Arguments decoded off the wire
// already have those shapes; in-process callers may not.
func toJSONValue(arguments map[string]interface{}) interface{} {
	raw, err := json.Marshal(arguments)
	if err != nil {
		return arguments
	}
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return arguments
	}
	return v
}

func createResponse(id interface{}, result interface{}) mcp.JSONRPCMessage {
	return mcp.NewJSONRPCResponse(id, result)
}

func createErrorResponse(id interface{}, code int, message string) mcp.JSONRPCMessage {
	return mcp.NewJSONRPCError(id, code, message)
}
