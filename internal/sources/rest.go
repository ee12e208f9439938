package sources

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/leourb/sdmx-query-tool/internal/httpclient"
	"github.com/leourb/sdmx-query-tool/internal/logger"
	"github.com/leourb/sdmx-query-tool/internal/normalize"
	"github.com/leourb/sdmx-query-tool/internal/schema"
	"github.com/leourb/sdmx-query-tool/internal/tabular"
)

// restAdapter is the shared implementation behind every provider: URL
// templates per resource kind, accept headers, a parameter schema, and an
// optional post-parse hook for provider-specific table shaping.
type restAdapter struct {
	id     string
	schema *schema.Schema
	client httpclient.Client

	// dataTemplate, codelistTemplate and datastructureTemplate carry one %s
	// for the resource id; dataflowURL is complete as-is.
	dataTemplate          string
	dataflowURL           string
	codelistTemplate      string
	datastructureTemplate string

	accept map[normalize.Kind]string
	post   func(t *tabular.Table, kind normalize.Kind)
}

var _ Adapter = (*restAdapter)(nil)

func (a *restAdapter) ID() string {
	return a.id
}

func (a *restAdapter) Schema() *schema.Schema {
	return a.schema
}

// BuildRequest validates parameters and assembles the request URL. Query
// parameters are appended in schema declaration order so the same inputs
// always produce the same URL.
func (a *restAdapter) BuildRequest(kind normalize.Kind, resourceID string, params map[string]string) (*Request, error) {
	// Schema validation applies to data queries only; structure queries take
	// no parameters at all, required or otherwise.
	if kind == normalize.KindData {
		if err := a.schema.Validate(params); err != nil {
			return nil, err
		}
	} else if len(params) > 0 {
		return nil, fmt.Errorf("parameters are not supported for %s queries", kind)
	}

	var base string
	switch kind {
	case normalize.KindData:
		if resourceID == "" {
			return nil, fmt.Errorf("resource identifier is required for data queries")
		}
		base = fmt.Sprintf(a.dataTemplate, url.PathEscape(resourceID))
	case normalize.KindDataflow:
		if a.dataflowURL == "" {
			return nil, fmt.Errorf("source %s does not support dataflow listing", a.id)
		}
		base = a.dataflowURL
	case normalize.KindCodelist:
		if a.codelistTemplate == "" {
			return nil, fmt.Errorf("source %s does not support code-list queries", a.id)
		}
		if resourceID == "" {
			return nil, fmt.Errorf("resource identifier is required for code-list queries")
		}
		base = fmt.Sprintf(a.codelistTemplate, url.PathEscape(resourceID))
	case normalize.KindDataflowCodes:
		if a.datastructureTemplate == "" {
			return nil, fmt.Errorf("source %s does not support per-dataflow code-list queries", a.id)
		}
		if resourceID == "" {
			return nil, fmt.Errorf("resource identifier is required for per-dataflow code-list queries")
		}
		base = fmt.Sprintf(a.datastructureTemplate, url.PathEscape(resourceID))
	default:
		return nil, fmt.Errorf("unsupported resource kind: %s", kind)
	}

	requestURL := base
	if query := a.buildQuery(params); query != "" {
		requestURL = base + "?" + query
	}

	req := &Request{URL: requestURL}
	if accept, ok := a.accept[kind]; ok {
		req.Headers = map[string]string{"Accept": accept}
	}
	return req, nil
}

// buildQuery renders the query string in schema declaration order using the
// provider's query keys.
func (a *restAdapter) buildQuery(params map[string]string) string {
	var parts []string
	for _, p := range a.schema.Params() {
		value, ok := params[p.Name]
		if !ok {
			continue
		}
		parts = append(parts, p.Query+"="+url.QueryEscape(value))
	}
	return strings.Join(parts, "&")
}

func (a *restAdapter) Fetch(ctx context.Context, req *Request) (*Payload, error) {
	logger.Debugf("source %s: fetching %s", a.id, req.URL)
	resp, err := a.client.Get(ctx, req.URL, req.Headers)
	if err != nil {
		return nil, err
	}
	return &Payload{ContentType: resp.ContentType, Body: resp.Body}, nil
}

func (a *restAdapter) Parse(payload *Payload, kind normalize.Kind) (*tabular.Table, error) {
	table, err := normalize.Normalize(payload.ContentType, payload.Body, kind)
	if err != nil {
		return nil, err
	}
	if a.post != nil {
		a.post(table, kind)
	}
	return table, nil
}
