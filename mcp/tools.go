package mcp

// ToolOption is a function that configures a Tool.
type ToolOption func(*Tool)

// PropertyOption is a function that configures a property in a Tool's input
// schema.
type PropertyOption func(map[string]interface{})

// NewTool creates a new Tool with the given name and options.
func NewTool(name string, opts ...ToolOption) Tool {
	tool := Tool{
		Name: name,
		InputSchema: ToolInputSchema{
			Type:       "object",
			Properties: make(map[string]interface{}),
		},
	}

	for _, opt := range opts {
		opt(&tool)
	}

	return tool
}

// WithDescription adds a description to the Tool.
func WithDescription(description string) ToolOption {
	return func(t *Tool) {
		t.Description = description
	}
}

// WithMeta attaches descriptor metadata to the Tool's `_meta` field.
func WithMeta(meta MetaData) ToolOption {
	return func(t *Tool) {
		t.Meta = meta
	}
}

// Description adds a description to a property.
func Description(desc string) PropertyOption {
	return func(schema map[string]interface{}) {
		schema["description"] = desc
	}
}

// Required marks a property as required.
func Required() PropertyOption {
	return func(schema map[string]interface{}) {
		schema["required"] = true
	}
}

// Enum specifies the allowed values for a string property.
func Enum(values ...string) PropertyOption {
	return func(schema map[string]interface{}) {
		schema["enum"] = values
	}
}

// DefaultString sets the default value for a string property.
func DefaultString(value string) PropertyOption {
	return func(schema map[string]interface{}) {
		schema["default"] = value
	}
}

// WithNumber adds a number property to the tool schema.
func WithNumber(name string, opts ...PropertyOption) ToolOption {
	return func(t *Tool) {
		t.addProperty(name, "number", opts)
	}
}

// WithString adds a string property to the tool schema.
func WithString(name string, opts ...PropertyOption) ToolOption {
	return func(t *Tool) {
		t.addProperty(name, "string", opts)
	}
}

func (t *Tool) addProperty(name, typ string, opts []PropertyOption) {
	schema := map[string]interface{}{
		"type": typ,
	}

	for _, opt := range opts {
		opt(schema)
	}

	// "required" belongs on the object schema, not the property.
	if required, ok := schema["required"].(bool); ok && required {
		delete(schema, "required")
		t.InputSchema.Required = append(t.InputSchema.Required, name)
	}

	t.InputSchema.Properties[name] = schema
}
