// Package docs ships the OpenAPI description of the HTTP surface.
package docs

import _ "embed"

//go:embed swagger.json
var SwaggerJSON []byte
