// Package sources implements one adapter per SDMX provider. Each adapter
// holds its endpoint layout and parameter schema, builds provider-specific
// requests, and hands payloads to the shared normalization pipeline. Adapters
// are immutable after construction and safe for concurrent use.
package sources

import (
	"context"

	"github.com/leourb/sdmx-query-tool/internal/normalize"
	"github.com/leourb/sdmx-query-tool/internal/schema"
	"github.com/leourb/sdmx-query-tool/internal/tabular"
)

// Identifiers of the bundled providers.
const (
	SourceECB   = "ECB"
	SourceINSEE = "INSEE"
	SourceOECD  = "OECD"
	SourceIMF   = "IMF"
)

// Request describes one provider-specific HTTP request.
type Request struct {
	URL     string
	Headers map[string]string
}

// Payload is the raw document returned by a provider for one retrieval call.
// It lives only for the duration of that call.
type Payload struct {
	ContentType string
	Body        []byte
}

// Adapter is the capability set every provider supplies: a parameter schema,
// deterministic request construction, retrieval through the HTTP transport,
// and payload parsing via the shared normalizer.
type Adapter interface {
	// ID returns the source identifier.
	ID() string

	// Schema returns the provider's parameter schema.
	Schema() *schema.Schema

	// BuildRequest validates the parameters against the schema and builds
	// the request for the given resource kind. Validation failures surface
	// before any network access.
	BuildRequest(kind normalize.Kind, resourceID string, params map[string]string) (*Request, error)

	// Fetch retrieves the raw payload. Transport failures and non-success
	// statuses propagate as httpclient.RetrievalError.
	Fetch(ctx context.Context, req *Request) (*Payload, error)

	// Parse converts the raw payload into a canonical table.
	Parse(payload *Payload, kind normalize.Kind) (*tabular.Table, error)
}

// BuiltinSources lists the bundled provider identifiers in registration
// order.
func BuiltinSources() []string {
	return []string{SourceECB, SourceINSEE, SourceOECD, SourceIMF}
}
