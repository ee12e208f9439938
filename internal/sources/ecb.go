package sources

import (
	"github.com/leourb/sdmx-query-tool/internal/httpclient"
	"github.com/leourb/sdmx-query-tool/internal/normalize"
	"github.com/leourb/sdmx-query-tool/internal/period"
	"github.com/leourb/sdmx-query-tool/internal/schema"
	"github.com/leourb/sdmx-query-tool/internal/tabular"
)

const ecbBase = "https://sdw-wsrest.ecb.europa.eu/service"

// positiveInt constrains counting parameters such as lastNObservations.
const positiveInt = `^[1-9][0-9]*$`

// NewECB creates the adapter for the ECB Statistical Data Warehouse. The SDW
// serves generic SDMX-ML 2.1 data messages; the accepted parameters follow
// https://sdw-wsrest.ecb.europa.eu/help/.
func NewECB(client httpclient.Client) (Adapter, error) {
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
		id:               SourceECB,
		schema:           s,
		client:           client,
		dataTemplate:          ecbBase + "/data/%s",
		dataflowURL:           ecbBase + "/dataflow/ECB",
		codelistTemplate:      ecbBase + "/codelist/ECB/%s",
		datastructureTemplate: ecbBase + "/datastructure/ECB/%s?references=children",
		accept: map[normalize.Kind]string{
			normalize.KindData:          "application/vnd.sdmx.genericdata+xml;version=2.1",
			normalize.KindDataflow:      "application/vnd.sdmx.structure+xml;version=2.1",
			normalize.KindCodelist:      "application/vnd.sdmx.structure+xml;version=2.1",
			normalize.KindDataflowCodes: "application/vnd.sdmx.structure+xml;version=2.1",
		},
		post: ecbObsDates,
	}, nil
}

// ecbObsDates appends an OBS_DATE column resolving each reporting period
// (annual, semester, quarter, month, week) to its calendar date.
func ecbObsDates(t *tabular.Table, kind normalize.Kind) {
	if kind != normalize.KindData || !t.HasColumn("TIME_PERIOD") {
		return
	}
	t.AddDerivedBefore(normalize.ValueColumn, "OBS_DATE", func(row tabular.Row) string {
		tp, ok := row["TIME_PERIOD"]
		if !ok {
			return tabular.Absent
		}
		date, err := period.Parse(tp)
		if err != nil {
			return tabular.Absent
		}
		return date.Format("2006-01-02")
	})
}
