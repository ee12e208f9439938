package sources

import (
	"github.com/leourb/sdmx-query-tool/internal/httpclient"
	"github.com/leourb/sdmx-query-tool/internal/normalize"
	"github.com/leourb/sdmx-query-tool/internal/schema"
)

const inseeBase = "https://bdm.insee.fr/series/sdmx"

// NewINSEE creates the adapter for the INSEE macroeconomic database (BDM).
// INSEE serves structure-specific SDMX-ML 2.1 data messages where series and
// observations carry their values as XML attributes.
func NewINSEE(client httpclient.Client) (Adapter, error) {
	s, err := schema.New(
		schema.Param{Name: "start_period", Query: "startPeriod",
			Description: "first period to include, e.g. 2020 or 2020-01"},
		schema.Param{Name: "end_period", Query: "endPeriod",
			Description: "last period to include"},
		schema.Param{Name: "last_n_observations", Query: "lastNObservations", Pattern: positiveInt,
			Description: "return only the most recent n observations per series"},
		schema.Param{Name: "first_n_observations", Query: "firstNObservations", Pattern: positiveInt,
			Description: "return only the oldest n observations per series"},
		schema.Param{Name: "detail", Allowed: []string{"full", "dataonly", "serieskeysonly", "nodata"},
			Description: "amount of information to return"},
		schema.Param{Name: "updated_after", Query: "updatedAfter",
			Description: "only results updated after this ISO 8601 timestamp"},
		schema.Param{Name: "include_history", Query: "includeHistory", Allowed: []string{"true", "false"},
			Description: "include previous versions of the data"},
	)
	if err != nil {
		return nil, err
	}

	return &restAdapter{
		id:               SourceINSEE,
		schema:           s,
		client:           client,
		dataTemplate:          inseeBase + "/data/%s",
		dataflowURL:           inseeBase + "/dataflow/FR1/all",
		codelistTemplate:      inseeBase + "/codelist/FR1/%s",
		datastructureTemplate: inseeBase + "/datastructure/FR1/%s?references=children",
		accept: map[normalize.Kind]string{
			normalize.KindData:          "application/vnd.sdmx.structurespecificdata+xml;version=2.1",
			normalize.KindDataflow:      "application/vnd.sdmx.structure+xml;version=2.1",
			normalize.KindCodelist:      "application/vnd.sdmx.structure+xml;version=2.1",
			normalize.KindDataflowCodes: "application/vnd.sdmx.structure+xml;version=2.1",
		},
	}, nil
}
