package statement

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

func nullable(schema map[string]any) map[string]any {
	return map[string]any{"anyOf": []any{schema, map[string]any{"type": "null"}}}
}

var (
	isoDateProp    = map[string]any{"type": "string", "format": "date"}
	decimalProp    = map[string]any{"type": "number"}
	confidenceProp = map[string]any{"type": "string", "enum": []any{"High", "Medium", "Low"}}
)

// resultSchema is the contract for a serialized extraction result.
var resultSchema = map[string]any{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type":    "object",
	"required": []any{
		"source_id",
		"card_last4", "card_last4_confidence",
		"statement_date", "statement_date_confidence",
		"billing_period", "billing_period_confidence",
		"due_date",
		"total_balance", "total_balance_confidence",
		"minimum_payment_due",
		"transactions",
	},
	"properties": map[string]any{
		"source_id":                 map[string]any{"type": "string"},
		"card_last4":                nullable(map[string]any{"type": "string", "pattern": `^[0-9]{4}$`}),
		"card_last4_confidence":     confidenceProp,
		"statement_date":            nullable(isoDateProp),
		"statement_date_confidence": confidenceProp,
		"billing_period": nullable(map[string]any{
			"type":    "string",
			"pattern": `^[0-9]{4}-[0-9]{2}-[0-9]{2} to [0-9]{4}-[0-9]{2}-[0-9]{2}$`,
		}),
		"billing_period_confidence": confidenceProp,
		"due_date":                  nullable(isoDateProp),
		"total_balance":             nullable(decimalProp),
		"total_balance_confidence":  confidenceProp,
		"minimum_payment_due":       nullable(decimalProp),
		"transactions": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type":                 "object",
				"required":             []any{"date", "description", "amount"},
				"additionalProperties": false,
				"properties": map[string]any{
					"date":        nullable(isoDateProp),
					"description": map[string]any{"type": "string"},
					"amount":      decimalProp,
				},
			},
		},
	},
	"additionalProperties": false,
}

var compileResultSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	b, err := json.Marshal(resultSchema)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true
	if err := compiler.AddResource("result.json", bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	return compiler.Compile("result.json")
})

// ValidateResultJSON checks serialized result bytes against the result contract.
func ValidateResultJSON(data []byte) error {
	schema, err := compileResultSchema()
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("result does not match schema: %w", err)
	}
	return nil
}
