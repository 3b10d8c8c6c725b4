package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/widgetforge/calcapp/calc"
)

// calculation is a validated /calculate request body.
type calculation struct {
	op   calc.Operation
	a, b float64
}

func parseCalculation(body map[string]interface{}) (calculation, error) {
	a, aok := body["a"].(float64)
	b, bok := body["b"].(float64)
	if !aok || !bok {
		return calculation{}, fmt.Errorf("%w: a and b must be numbers", ErrInvalidInput)
	}

	op := calc.OpAdd
	if raw, present := body["operation"]; present {
		name, ok := raw.(string)
		if !ok {
			return calculation{}, fmt.Errorf("%w: operation must be a string", ErrInvalidInput)
		}
		var err error
		if op, err = calc.ParseOperation(name); err != nil {
			return calculation{}, err
		}
	}
	return calculation{op: op, a: a, b: b}, nil
}

// handleCalculate is the non-protocol convenience endpoint: compute directly
// from a JSON body, bypassing MCP. It goes through the same calc dispatch as
// the tools, so divide-by-zero behaves identically on both paths.
func (s *SSEServer) handleCalculate(w http.ResponseWriter, r *http.Request) {
	var body map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid JSON body"})
		return
	}

	c, err := parseCalculation(body)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid inputs"})
		case errors.Is(err, calc.ErrUnknownOperation):
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Unknown operation"})
		default:
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		return
	}

	result, err := c.op.Apply(c.a, c.b)
	if err != nil {
		if errors.Is(err, calc.ErrDivideByZero) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Cannot divide by zero"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]float64{"result": result})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
