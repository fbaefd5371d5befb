package layout

import (
	"encoding/json"
	"os"
	"reflect"

	"github.com/invopop/jsonschema"
	"go.uber.org/zap"
)

// Document is the optional layout configuration read at build time.
// Missing fields mean "use the defaults".
type Document struct {
	Groups    map[string][]string `json:"groups,omitempty" jsonschema:"description=Logical group name (P1_Action ... P2_System) to ordered button identifiers"`
	Adjacency map[string][]string `json:"adjacency,omitempty" jsonschema:"description=Button identifier to extra neighbour identifiers; unioned with the defaults"`
}

// LoadDocument reads a layout document. Any failure yields an empty Document.
func LoadDocument(path string) Document {
	if path == "" {
		return Document{}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.With(zap.String("path", path), zap.Error(err)).Debug("Could not read layout config - using defaults")
		}
		return Document{}
	}

	return ParseDocument(data)
}

// ParseDocument decodes a layout document. Entries that are not lists are
// dropped one by one and non-string identifiers are skipped, so a bad entry
// keeps the rest of the document. Data that is not a JSON object yields an
// empty Document.
func ParseDocument(data []byte) Document {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		logger.With(zap.Error(err)).Debug("Malformed layout config - using defaults")
		return Document{}
	}
	return Document{
		Groups:    decodeLists(top, "groups"),
		Adjacency: decodeLists(top, "adjacency"),
	}
}

// decodeLists reads field as an object of identifier lists.
func decodeLists(top map[string]json.RawMessage, field string) map[string][]string {
	value, ok := top[field]
	if !ok {
		return nil
	}
	var entries map[string]json.RawMessage
	if err := json.Unmarshal(value, &entries); err != nil {
		logger.With(zap.String("field", field), zap.Error(err)).Debug("Ignoring malformed layout field")
		return nil
	}
	if len(entries) == 0 {
		return nil
	}

	out := make(map[string][]string, len(entries))
	for key, raw := range entries {
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			logger.With(zap.String("field", field), zap.String("key", key)).Debug("Ignoring layout entry that is not a list")
			continue
		}
		names := make([]string, 0, len(items))
		for _, item := range items {
			var name string
			if json.Unmarshal(item, &name) == nil {
				names = append(names, name)
			}
		}
		out[key] = names
	}
	return out
}

// Schema describes the layout document as JSON Schema.
func Schema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{DoNotReference: true}
	schema := reflector.ReflectFromType(reflect.TypeOf(Document{}))
	schema.Title = "Arcade Button Layout"
	schema.Description = "Overrides for button groups and adjacency used by lighting effects."
	return schema
}
