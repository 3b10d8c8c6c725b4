package server

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/widgetforge/calcapp/calc"
)

func TestParseCalculation(t *testing.T) {
	_, err := parseCalculation(map[string]interface{}{"a": "ten", "b": float64(4)})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = parseCalculation(map[string]interface{}{"a": float64(1), "b": float64(2), "operation": float64(3)})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = parseCalculation(map[string]interface{}{"a": float64(1), "b": float64(2), "operation": "power"})
	assert.ErrorIs(t, err, calc.ErrUnknownOperation)

	c, err := parseCalculation(map[string]interface{}{"a": float64(10), "b": float64(4), "operation": "divide"})
	require.NoError(t, err)
	assert.Equal(t, calculation{op: calc.OpDivide, a: 10, b: 4}, c)
}

func postCalculate(t *testing.T, serverURL, body string) (*http.Response, map[string]interface{}) {
	t.Helper()

	resp, err := http.Post(serverURL+"/calculate", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	var decoded map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp, decoded
}

func TestCalculate(t *testing.T) {
	_, testServer := NewTestServer(widgetServerFactory(t))
	defer testServer.Close()

	tests := []struct {
		name string
		body string
		want float64
	}{
		{"default add", `{"a":2,"b":3}`, 5},
		{"explicit add", `{"a":2,"b":3,"operation":"add"}`, 5},
		{"subtract", `{"a":10,"b":4,"operation":"subtract"}`, 6},
		{"multiply", `{"a":6,"b":7,"operation":"multiply"}`, 42},
		{"divide", `{"a":10,"b":4,"operation":"divide"}`, 2.5},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp, decoded := postCalculate(t, testServer.URL, tc.body)
			assert.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Equal(t, tc.want, decoded["result"])
		})
	}
}

func TestCalculateErrors(t *testing.T) {
	_, testServer := NewTestServer(widgetServerFactory(t))
	defer testServer.Close()

	tests := []struct {
		name      string
		body      string
		wantError string
	}{
		{"string operand", `{"a":"x","b":2}`, "Invalid inputs"},
		{"missing operand", `{"a":1}`, "Invalid inputs"},
		{"boolean operand", `{"a":true,"b":2}`, "Invalid inputs"},
		{"non-string operation", `{"a":1,"b":2,"operation":3}`, "Invalid inputs"},
		{"unknown operation", `{"a":1,"b":2,"operation":"power"}`, "Unknown operation"},
		{"malformed json", `{"a":`, "Invalid JSON body"},
		{"divide by zero", `{"a":10,"b":0,"operation":"divide"}`, "Cannot divide by zero"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp, decoded := postCalculate(t, testServer.URL, tc.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, tc.wantError, decoded["error"])
		})
	}
}
