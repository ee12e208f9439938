package sources

import (
	"strings"

	"github.com/leourb/sdmx-query-tool/internal/config"
	"github.com/leourb/sdmx-query-tool/internal/httpclient"
	"github.com/leourb/sdmx-query-tool/internal/normalize"
	"github.com/leourb/sdmx-query-tool/internal/schema"
)

// NewConfigured builds an adapter from a user-supplied source definition. The
// configuration must already be validated; schema construction errors (bad
// patterns, duplicate parameter names) are still reported here.
func NewConfigured(cfg config.SourceConfig, client httpclient.Client) (Adapter, error) {
	params := make([]schema.Param, 0, len(cfg.Parameters))
	for _, p := range cfg.Parameters {
		params = append(params, schema.Param{
			Name:        p.Name,
			Query:       p.Query,
			Required:    p.Required,
			Allowed:     p.Allowed,
			Pattern:     p.Pattern,
			Description: p.Description,
		})
	}
	s, err := schema.New(params...)
	if err != nil {
		return nil, err
	}

	accept := make(map[normalize.Kind]string, len(cfg.Accept))
	for kind, header := range cfg.Accept {
		accept[normalize.Kind(kind)] = header
	}

	return &restAdapter{
		id:                    cfg.ID,
		schema:                s,
		client:                client,
		dataTemplate:          expandTemplate(cfg.Data),
		dataflowURL:           cfg.Dataflows,
		codelistTemplate:      expandTemplate(cfg.Codelist),
		datastructureTemplate: expandTemplate(cfg.Datastructure),
		accept:                accept,
	}, nil
}

// expandTemplate converts the configuration placeholder into the printf verb
// restAdapter substitutes resource identifiers into.
func expandTemplate(template string) string {
	if template == "" {
		return ""
	}
	escaped := strings.ReplaceAll(template, "%", "%%")
	return strings.ReplaceAll(escaped, config.ResourcePlaceholder, "%s")
}
