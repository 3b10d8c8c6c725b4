package widget

import (
	"context"
	"fmt"

	"github.com/widgetforge/calcapp/calc"
	"github.com/widgetforge/calcapp/mcp"
)

// Catalog derives the MCP tool, resource, and resource-template views from the
// registry. All three views for a widget carry the same descriptor metadata.
type Catalog struct {
	reg *Registry
}

// NewCatalog creates a catalog over the given registry.
func NewCatalog(reg *Registry) *Catalog {
	return &Catalog{reg: reg}
}

// Meta builds the descriptor metadata block attached to every view of the
// widget: output template, invocation status text, widget accessibility, and
// the CSP domain allow-list.
func (c *Catalog) Meta(w *Widget) mcp.MetaData {
	return mcp.MetaData{
		"openai/outputTemplate":          w.TemplateURI,
		"openai/toolInvocation/invoking": w.Invoking,
		"openai/toolInvocation/invoked":  w.Invoked,
		"openai/widgetAccessible":        true,
		"openai/widgetCSP": map[string]interface{}{
			"connect_domains":  []string{},
			"resource_domains": []string{"https://" + c.reg.Domain()},
		},
	}
}

// Tool builds the tool descriptor for a widget.
func (c *Catalog) Tool(w *Widget) mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription(w.Description),
		mcp.WithNumber("a", mcp.Required(), mcp.Description("First operand")),
		mcp.WithNumber("b", mcp.Required(), mcp.Description("Second operand")),
	}

	if w.SelectsOp {
		ops := calc.Operations()
		names := make([]string, len(ops))
		for i, op := range ops {
			names[i] = string(op)
		}
		opts = append(opts, mcp.WithString("operation",
			mcp.Required(),
			mcp.Enum(names...),
			mcp.Description("Arithmetic operation to perform")))
	}

	opts = append(opts, mcp.WithMeta(c.Meta(w)))
	return mcp.NewTool(w.ID, opts...)
}

// Resource builds the resource view of a widget.
func (c *Catalog) Resource(w *Widget) mcp.Resource {
	return mcp.Resource{
		URI:         w.TemplateURI,
		Name:        w.Title,
		Description: w.ResponseText,
		MimeType:    MimeType,
		Meta:        c.Meta(w),
	}
}

// ResourceTemplate builds the resource-template view of a widget.
func (c *Catalog) ResourceTemplate(w *Widget) mcp.ResourceTemplate {
	return mcp.ResourceTemplate{
		URITemplate: w.TemplateURI,
		Name:        w.Title,
		Description: w.ResponseText,
		MimeType:    MimeType,
		Meta:        c.Meta(w),
	}
}

// Handler returns the tool handler for a widget. Argument shapes are enforced
// by the input schema before the handler runs; the checks here only guard the
// type assertions.
func (c *Catalog) Handler(w *Widget) func(ctx context.Context, args map[string]interface{}) (*mcp.CallToolResult, error) {
	return func(_ context.Context, args map[string]interface{}) (*mcp.CallToolResult, error) {
		a, ok := args["a"].(float64)
		if !ok {
			return nil, fmt.Errorf("parameter %q must be a number", "a")
		}
		b, ok := args["b"].(float64)
		if !ok {
			return nil, fmt.Errorf("parameter %q must be a number", "b")
		}

		op := w.Op
		if w.SelectsOp {
			name, _ := args["operation"].(string)
			var err error
			if op, err = calc.ParseOperation(name); err != nil {
				return nil, err
			}
		}

		result, err := op.Apply(a, b)
		if err != nil {
			return nil, err
		}

		structured := map[string]interface{}{
			"a":      a,
			"b":      b,
			"result": result,
		}
		if w.SelectsOp {
			structured["operation"] = string(op)
		}

		return &mcp.CallToolResult{
			Content:           []mcp.Content{mcp.NewTextContent(op.Summary(a, b, result))},
			StructuredContent: structured,
			Meta:              c.Meta(w),
		}, nil
	}
}

// ResourceHandler returns the read handler for a widget resource. The HTML
// payload is re-read on every call.
func (c *Catalog) ResourceHandler(w *Widget) func(ctx context.Context) ([]mcp.ResourceContents, error) {
	return func(_ context.Context) ([]mcp.ResourceContents, error) {
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      w.TemplateURI,
				MimeType: MimeType,
				Text:     c.reg.HTML(w),
				Meta:     c.Meta(w),
			},
		}, nil
	}
}
