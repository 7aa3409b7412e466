package web

import (
	"net/http"

	"franchise-backoffice/internal/core"

	"github.com/invopop/jsonschema"
)

// invoiceSchema publishes the JSON Schema for the normalized invoice payload.
// The upstream OCR normalizer constrains its structured output against this
// schema, so the contract lives here next to the validators that consume it.
func (h *Handler) invoiceSchema(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, normalizedInvoiceSchema())
}

func normalizedInvoiceSchema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v core.NormalizedInvoice
	return reflector.Reflect(v)
}
