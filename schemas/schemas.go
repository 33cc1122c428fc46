// Package schemas embeds the OpenAPI document describing the skein HTTP API.
package schemas

import _ "embed"

// OpenAPISpec is the raw OpenAPI 3.0 document validated against inbound
// requests by the server's validation middleware.
//
//go:embed openapi.yaml
var OpenAPISpec []byte
