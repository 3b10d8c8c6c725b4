package mcp

// NewJSONRPCResponse creates a success response with the given id and result.
func NewJSONRPCResponse(id interface{}, result interface{}) JSONRPCResponse {
	return JSONRPCResponse{
		JSONRPC: JSONRPC_VERSION,
		ID:      id,
		Result:  result,
	}
}

// NewJSONRPCError creates an error response with the given id, code, and
// message.
func NewJSONRPCError(id interface{}, code int, message string) JSONRPCResponse {
	return JSONRPCResponse{
		JSONRPC: JSONRPC_VERSION,
		ID:      id,
		Error: &JSONRPCError{
			Code:    code,
			Message: message,
		},
	}
}

// NewTextContent creates a new TextContent.
func NewTextContent(text string) TextContent {
	return TextContent{
		Type: "text",
		Text: text,
	}
}

// NewResource creates a new Resource.
func NewResource(uri, name, description, mimeType string) Resource {
	return Resource{
		URI:         uri,
		Name:        name,
		Description: description,
		MimeType:    mimeType,
	}
}

// AsTextContent attempts to cast the given content to TextContent.
func AsTextContent(content interface{}) (*TextContent, bool) {
	tc, ok := content.(TextContent)
	if !ok {
		return nil, false
	}
	return &tc, true
}

// AsTextResourceContents attempts to cast the given contents to
// TextResourceContents.
func AsTextResourceContents(content interface{}) (*TextResourceContents, bool) {
	trc, ok := content.(TextResourceContents)
	if !ok {
		return nil, false
	}
	return &trc, true
}
