package queue

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed checkout_finalized.schema.json
var checkoutFinalizedSchemaJSON string

var checkoutFinalizedSchema = compileCheckoutSchema()

func compileCheckoutSchema() *jsonschema.Schema {
	c := jsonschema.NewCompiler()
	c.AssertFormat = true
	const url = "https://kiddeo.ru/schemas/checkout.finalized.json"
	if err := c.AddResource(url, bytes.NewReader([]byte(checkoutFinalizedSchemaJSON))); err != nil {
		panic(fmt.Sprintf("checkout schema: %v", err))
	}
	return c.MustCompile(url)
}

// ValidateCheckoutFinalized checks a raw message body against the
// checkout.finalized contract.
func ValidateCheckoutFinalized(body []byte) error {
	var doc any
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	if err := checkoutFinalizedSchema.Validate(doc); err != nil {
		return fmt.Errorf("schema: %w", err)
	}
	return nil
}
