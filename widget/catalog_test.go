package widget

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/widgetforge/calcapp/calc"
	"github.com/widgetforge/calcapp/mcp"
)

func newTestCatalog(t *testing.T) (*Registry, *Catalog) {
	t.Helper()
	reg := NewRegistry(t.TempDir(), "widgets.example.com")
	return reg, NewCatalog(reg)
}

func TestMetaIdenticalAcrossViews(t *testing.T) {
	reg, catalog := newTestCatalog(t)

	for _, w := range reg.All() {
		meta := catalog.Meta(w)
		assert.Equal(t, meta, catalog.Tool(w).Meta, "tool meta for %s", w.ID)
		assert.Equal(t, meta, catalog.Resource(w).Meta, "resource meta for %s", w.ID)
		assert.Equal(t, meta, catalog.ResourceTemplate(w).Meta, "template meta for %s", w.ID)
	}
}

func TestMetaContents(t *testing.T) {
	reg, catalog := newTestCatalog(t)
	w, ok := reg.ByID("divide")
	require.True(t, ok)

	meta := catalog.Meta(w)
	assert.Equal(t, "ui://widget/divide.html", meta["openai/outputTemplate"])
	assert.Equal(t, "Dividing the numbers", meta["openai/toolInvocation/invoking"])
	assert.Equal(t, "Divided the numbers", meta["openai/toolInvocation/invoked"])
	assert.Equal(t, true, meta["openai/widgetAccessible"])

	csp, ok := meta["openai/widgetCSP"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, []string{"https://widgets.example.com"}, csp["resource_domains"])
	assert.Empty(t, csp["connect_domains"])
}

func TestToolSchemas(t *testing.T) {
	reg, catalog := newTestCatalog(t)

	for _, w := range reg.All() {
		tool := catalog.Tool(w)
		assert.Equal(t, w.ID, tool.Name)
		if w.SelectsOp {
			assert.ElementsMatch(t, []string{"a", "b", "operation"}, tool.InputSchema.Required)
			op := tool.InputSchema.Properties["operation"].(map[string]interface{})
			assert.Equal(t, []string{"add", "subtract", "multiply", "divide"}, op["enum"])
		} else {
			assert.ElementsMatch(t, []string{"a", "b"}, tool.InputSchema.Required)
			assert.NotContains(t, tool.InputSchema.Properties, "operation")
		}
	}
}

func TestHandlerFixedOperations(t *testing.T) {
	reg, catalog := newTestCatalog(t)

	tests := []struct {
		id      string
		a, b    float64
		want    float64
		summary string
	}{
		{"add", 2, 3, 5, "The sum of 2 and 3 is 5."},
		{"subtract", 10, 4, 6, "The difference of 10 and 4 is 6."},
		{"multiply", 6, 7, 42, "The product of 6 and 7 is 42."},
		{"divide", 10, 4, 2.5, "The quotient of 10 and 4 is 2.5."},
	}

	for _, tc := range tests {
		t.Run(tc.id, func(t *testing.T) {
			w, ok := reg.ByID(tc.id)
			require.True(t, ok)

			result, err := catalog.Handler(w)(context.Background(), map[string]interface{}{
				"a": tc.a, "b": tc.b,
			})
			require.NoError(t, err)

			text, ok := mcp.AsTextContent(result.Content[0])
			require.True(t, ok)
			assert.Equal(t, tc.summary, text.Text)

			assert.Equal(t, map[string]interface{}{
				"a": tc.a, "b": tc.b, "result": tc.want,
			}, result.StructuredContent)
			assert.Equal(t, catalog.Meta(w), result.Meta)
		})
	}
}

func TestHandlerSuperCalculator(t *testing.T) {
	reg, catalog := newTestCatalog(t)
	w, ok := reg.ByID("super-calculator")
	require.True(t, ok)
	handler := catalog.Handler(w)

	result, err := handler(context.Background(), map[string]interface{}{
		"a": float64(10), "b": float64(4), "operation": "divide",
	})
	require.NoError(t, err)

	text, ok := mcp.AsTextContent(result.Content[0])
	require.True(t, ok)
	assert.Contains(t, text.Text, "quotient of 10 and 4")

	assert.Equal(t, map[string]interface{}{
		"a":         float64(10),
		"b":         float64(4),
		"operation": "divide",
		"result":    2.5,
	}, result.StructuredContent)

	_, err = handler(context.Background(), map[string]interface{}{
		"a": float64(1), "b": float64(2), "operation": "power",
	})
	assert.ErrorIs(t, err, calc.ErrUnknownOperation)
}

func TestHandlerDivideByZero(t *testing.T) {
	reg, catalog := newTestCatalog(t)

	for _, id := range []string{"divide", "super-calculator"} {
		w, ok := reg.ByID(id)
		require.True(t, ok)

		args := map[string]interface{}{"a": float64(10), "b": float64(0)}
		if w.SelectsOp {
			args["operation"] = "divide"
		}
		_, err := catalog.Handler(w)(context.Background(), args)
		assert.ErrorIs(t, err, calc.ErrDivideByZero, "widget %s", id)
	}
}

func TestResourceViews(t *testing.T) {
	reg, catalog := newTestCatalog(t)

	for _, w := range reg.All() {
		res := catalog.Resource(w)
		assert.Equal(t, w.TemplateURI, res.URI)
		assert.Equal(t, MimeType, res.MimeType)

		tmpl := catalog.ResourceTemplate(w)
		assert.Equal(t, w.TemplateURI, tmpl.URITemplate)
		assert.Equal(t, MimeType, tmpl.MimeType)

		contents, err := catalog.ResourceHandler(w)(context.Background())
		require.NoError(t, err)
		require.Len(t, contents, 1)

		trc, ok := mcp.AsTextResourceContents(contents[0])
		require.True(t, ok)
		assert.Equal(t, MimeType, trc.MimeType)
		assert.NotEmpty(t, trc.Text)
		assert.Equal(t, catalog.Meta(w), trc.Meta)
	}
}
