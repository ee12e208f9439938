// Package query is the public entry point of the module. A Client fans
// requests out to the registered SDMX sources and returns every result as a
// canonical table: dimension columns first, attribute columns next, the
// observation value last.
package query

import (
	"context"

	"github.com/leourb/sdmx-query-tool/internal/config"
	"github.com/leourb/sdmx-query-tool/internal/httpclient"
	"github.com/leourb/sdmx-query-tool/internal/normalize"
	"github.com/leourb/sdmx-query-tool/internal/registry"
	"github.com/leourb/sdmx-query-tool/internal/schema"
	"github.com/leourb/sdmx-query-tool/internal/tabular"
)

// Option configures a Client.
type Option func(*options)

type options struct {
	client   httpclient.Client
	registry *registry.Registry
	config   *config.Config
}

// WithHTTPClient replaces the default HTTP transport. Useful for tests and
// for callers that need custom timeouts or retry behavior.
func WithHTTPClient(client httpclient.Client) Option {
	return func(o *options) {
		o.client = client
	}
}

// WithRegistry replaces the default source registry entirely.
func WithRegistry(r *registry.Registry) Option {
	return func(o *options) {
		o.registry = r
	}
}

// WithConfig registers user-defined sources on top of the built-in ones.
func WithConfig(cfg *config.Config) Option {
	return func(o *options) {
		o.config = cfg
	}
}

// Client queries SDMX sources through a shared registry. It is safe for
// concurrent use.
type Client struct {
	registry *registry.Registry
}

// New creates a query client with every built-in source registered.
func New(opts ...Option) *Client {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.client == nil {
		o.client = httpclient.NewDefaultClient()
	}
	if o.registry == nil {
		o.registry = registry.Default(o.client)
	}
	if o.config != nil {
		o.registry.AddConfigured(o.config, o.client)
	}
	return &Client{registry: o.registry}
}

// Sources returns the registered source identifiers in registration order.
func (c *Client) Sources() []string {
	return c.registry.List()
}

// AvailableParameters returns the parameters a source accepts on data
// queries, in the order the source declares them.
func (c *Client) AvailableParameters(source string) ([]schema.Param, error) {
	adapter, err := c.registry.Resolve(source)
	if err != nil {
		return nil, err
	}
	return adapter.Schema().Params(), nil
}

// RetrieveData fetches observations for one dataflow of one source.
// Parameters are validated before any network access; the resulting table
// carries one row per observation.
func (c *Client) RetrieveData(ctx context.Context, source, dataflowID string, params map[string]string) (*tabular.Table, error) {
	return c.retrieve(ctx, source, normalize.KindData, dataflowID, params)
}

// ListDataflows fetches the catalog of dataflows a source publishes.
func (c *Client) ListDataflows(ctx context.Context, source string) (*tabular.Table, error) {
	return c.retrieve(ctx, source, normalize.KindDataflow, "", nil)
}

// ListCodes fetches one code list of a source.
func (c *Client) ListCodes(ctx context.Context, source, codelistID string) (*tabular.Table, error) {
	return c.retrieve(ctx, source, normalize.KindCodelist, codelistID, nil)
}

// ListCodesForDataflow fetches every code list referenced by a dataflow's
// data structure, one row per code across all of them.
func (c *Client) ListCodesForDataflow(ctx context.Context, source, dataflowID string) (*tabular.Table, error) {
	return c.retrieve(ctx, source, normalize.KindDataflowCodes, dataflowID, nil)
}

func (c *Client) retrieve(ctx context.Context, source string, kind normalize.Kind, resourceID string, params map[string]string) (*tabular.Table, error) {
	adapter, err := c.registry.Resolve(source)
	if err != nil {
		return nil, err
	}
	req, err := adapter.BuildRequest(kind, resourceID, params)
	if err != nil {
		return nil, err
	}
	payload, err := adapter.Fetch(ctx, req)
	if err != nil {
		return nil, err
	}
	return adapter.Parse(payload, kind)
}
