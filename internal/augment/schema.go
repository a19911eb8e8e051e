package augment

import (
	"encoding/json"

	"github.com/xeipuuv/gojsonschema"

	"github.com/storecheckhq/storecheck/internal/types"
)

// augmentPayload is one augmentation object returned by the model.
// rule_id is optional: the matcher falls back to positional index when the
// model omits it.
type augmentPayload struct {
	RuleID           string                  `json:"rule_id,omitempty"`
	PinpointLocation *types.PinpointLocation `json:"pinpoint_location,omitempty"`
	SuggestedFix     *types.SuggestedFix     `json:"suggested_fix,omitempty"`
}

// empty reports whether the payload carries no augmentation at all.
func (p *augmentPayload) empty() bool {
	return p.PinpointLocation == nil && p.SuggestedFix == nil
}

// payloadSchema guards the shape of model output before it is merged onto
// an issue; a decoded object that fails the schema counts as undecodable.
const payloadSchema = `{
  "type": "object",
  "properties": {
    "rule_id": {"type": "string"},
    "pinpoint_location": {
      "type": "object",
      "properties": {
        "file_path": {"type": "string"},
        "line_numbers": {"type": "array", "items": {"type": "integer"}}
      },
      "required": ["file_path"]
    },
    "suggested_fix": {
      "type": "object",
      "properties": {
        "explanation": {"type": "string"},
        "code_snippet": {"type": "string"}
      },
      "required": ["explanation"]
    }
  }
}`

var payloadSchemaLoader = gojsonschema.NewStringLoader(payloadSchema)

// parsePayload schema-checks one raw augmentation object and decodes it.
// Returns nil when the object fails the schema or is not an object at all.
func parsePayload(raw json.RawMessage) *augmentPayload {
	result, err := gojsonschema.Validate(payloadSchemaLoader, gojsonschema.NewBytesLoader(raw))
	if err != nil || !result.Valid() {
		return nil
	}

	var p augmentPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil
	}
	return &p
}
