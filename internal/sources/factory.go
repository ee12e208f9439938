package sources

import (
	"fmt"

	"github.com/leourb/sdmx-query-tool/internal/httpclient"
)

// NewAdapter creates the adapter for a built-in source identifier.
func NewAdapter(sourceID string, client httpclient.Client) (Adapter, error) {
	switch sourceID {
	case SourceECB:
		return NewECB(client)
	case SourceINSEE:
		return NewINSEE(client)
	case SourceOECD:
		return NewOECD(client)
	case SourceIMF:
		return NewIMF(client)
	default:
		return nil, fmt.Errorf("unsupported source: %s", sourceID)
	}
}
