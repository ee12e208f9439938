package sources

import (
	"github.com/leourb/sdmx-query-tool/internal/httpclient"
	"github.com/leourb/sdmx-query-tool/internal/normalize"
	"github.com/leourb/sdmx-query-tool/internal/schema"
)

const imfBase = "https://sdmxcentral.imf.org/ws/public/sdmxapi/rest"

// NewIMF creates the adapter for IMF SDMX Central. Data is negotiated as
// SDMX-JSON; structure queries fall back to SDMX-ML structure messages.
func NewIMF(client httpclient.Client) (Adapter, error) {
	s, err := schema.New(
		schema.Param{Name: "start_period", Query: "startPeriod",
			Description: "first period to include, e.g. 2020 or 2020-01"},
		schema.Param{Name: "end_period", Query: "endPeriod",
			Description: "last period to include"},
		schema.Param{Name: "last_n_observations", Query: "lastNObservations", Pattern: positiveInt,
			Description: "return only the most recent n observations per series"},
		schema.Param{Name: "first_n_observations", Query: "firstNObservations", Pattern: positiveInt,
			Description: "return only the oldest n observations per series"},
	)
	if err != nil {
		return nil, err
	}

	return &restAdapter{
		id:               SourceIMF,
		schema:           s,
		client:           client,
		dataTemplate:          imfBase + "/data/%s",
		dataflowURL:           imfBase + "/dataflow/IMF",
		codelistTemplate:      imfBase + "/codelist/IMF/%s",
		datastructureTemplate: imfBase + "/datastructure/IMF/%s?references=children",
		accept: map[normalize.Kind]string{
			normalize.KindData:          "application/vnd.sdmx.data+json;version=1.0.0",
			normalize.KindDataflow:      "application/vnd.sdmx.structure+xml;version=2.1",
			normalize.KindCodelist:      "application/vnd.sdmx.structure+xml;version=2.1",
			normalize.KindDataflowCodes: "application/vnd.sdmx.structure+xml;version=2.1",
		},
	}, nil
}
