package contract

import (
	_ "embed"
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schema/resume_record.json
var recordSchemaJSON string

var recordSchema = mustCompileSchema(recordSchemaJSON)

func mustCompileSchema(src string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		panic(fmt.Sprintf("contract: compile record schema: %v", err))
	}
	return schema
}

// SchemaJSON returns the JSON Schema used to validate model output.
func SchemaJSON() string {
	return recordSchemaJSON
}

// validateShape checks a decoded document against the record schema.
func validateShape(doc any) ([]FieldError, error) {
	result, err := recordSchema.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return nil, err
	}
	if result.Valid() {
		return nil, nil
	}
	fields := make([]FieldError, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		fields = append(fields, FieldError{Field: field, Message: desc.Description()})
	}
	return fields, nil
}
