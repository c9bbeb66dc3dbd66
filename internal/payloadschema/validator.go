package payloadschema

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed history_item.schema.json
var historyItemSchemaJSON string

// HistoryRecord is one server-recorded past translation.
type HistoryRecord struct {
	ID             int64  `json:"id"`
	SourceText     string `json:"source_text"`
	TranslatedText string `json:"translated_text"`
	SourceLang     string `json:"source_lang,omitempty"`
	TargetLang     string `json:"target_lang"`
	CreatedAt      string `json:"created_at"`
}

var (
	compileOnce       sync.Once
	compiledSchema    *jsonschema.Schema
	compiledSchemaErr error
)

// ValidateHistoryPayload checks a raw history response against the embedded
// schema and decodes it. The whole payload is rejected when any record is
// malformed; the store never holds a partially valid collection.
func ValidateHistoryPayload(payload json.RawMessage) ([]HistoryRecord, error) {
	value, err := decodeStrictJSON(payload)
	if err != nil {
		return nil, fmt.Errorf("decode payload JSON: %w", err)
	}

	schema, err := loadSchema()
	if err != nil {
		return nil, fmt.Errorf("load schema: %w", err)
	}

	if err := schema.Validate(value); err != nil {
		return nil, fmt.Errorf("schema validation failed: %w", err)
	}

	normalized, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("normalize payload JSON: %w", err)
	}

	var records []HistoryRecord
	if err := json.Unmarshal(normalized, &records); err != nil {
		return nil, fmt.Errorf("unmarshal payload: %w", err)
	}

	if err := validateSemantics(records); err != nil {
		return nil, err
	}

	return records, nil
}

func loadSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020

		if err := compiler.AddResource("history_item.schema.json", strings.NewReader(historyItemSchemaJSON)); err != nil {
			compiledSchemaErr = fmt.Errorf("add schema resource: %w", err)
			return
		}

		schema, err := compiler.Compile("history_item.schema.json")
		if err != nil {
			compiledSchemaErr = fmt.Errorf("compile schema: %w", err)
			return
		}

		compiledSchema = schema
	})

	if compiledSchemaErr != nil {
		return nil, compiledSchemaErr
	}
	if compiledSchema == nil {
		return nil, fmt.Errorf("schema not initialized")
	}
	return compiledSchema, nil
}

func decodeStrictJSON(raw []byte) (any, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("payload is empty")
	}

	decoder := json.NewDecoder(bytes.NewReader(trimmed))
	decoder.UseNumber()

	var value any
	if err := decoder.Decode(&value); err != nil {
		return nil, err
	}

	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return nil, fmt.Errorf("payload contains trailing content")
	}

	return value, nil
}

func validateSemantics(records []HistoryRecord) error {
	seen := make(map[int64]struct{}, len(records))
	for i, record := range records {
		if record.ID <= 0 {
			return fmt.Errorf("records[%d]: id must be positive", i)
		}
		if _, dup := seen[record.ID]; dup {
			return fmt.Errorf("records[%d]: duplicate id %d", i, record.ID)
		}
		seen[record.ID] = struct{}{}

		if strings.TrimSpace(record.TargetLang) == "" {
			return fmt.Errorf("records[%d]: target_lang must not be empty", i)
		}
	}
	return nil
}
