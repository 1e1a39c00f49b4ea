// Package schemas embeds the JSON Schema documents shipped with the binary.
package schemas

import _ "embed"

// ConfigSchemaJSON is the JSON Schema for .statllm.yaml files.
//
//go:embed config.schema.json
var ConfigSchemaJSON string
