package query

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/leourb/sdmx-query-tool/internal/config"
	"github.com/leourb/sdmx-query-tool/internal/httpclient"
	"github.com/leourb/sdmx-query-tool/internal/httpclient/mocks"
	"github.com/leourb/sdmx-query-tool/internal/normalize"
	"github.com/leourb/sdmx-query-tool/internal/registry"
	"github.com/leourb/sdmx-query-tool/internal/schema"
	"github.com/leourb/sdmx-query-tool/internal/sources"
)

// yieldCurveDocument builds a generic data message with three series of two
// observations each, mimicking an ECB yield curve extract.
func yieldCurveDocument() string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>
<message:GenericData xmlns:message="http://www.sdmx.org/resources/sdmxml/schemas/v2_1/message"
    xmlns:generic="http://www.sdmx.org/resources/sdmxml/schemas/v2_1/data/generic">
  <message:DataSet>`)
	for i, maturity := range []string{"SR_1Y", "SR_5Y", "SR_10Y"} {
		fmt.Fprintf(&b, `
    <generic:Series>
      <generic:SeriesKey>
        <generic:Value id="FREQ" value="B"/>
        <generic:Value id="DATA_TYPE_FM" value="%s"/>
      </generic:SeriesKey>
      <generic:Attributes>
        <generic:Value id="UNIT" value="PC"/>
      </generic:Attributes>
      <generic:Obs>
        <generic:ObsDimension value="2021-06-01"/>
        <generic:ObsValue value="%d.10"/>
      </generic:Obs>
      <generic:Obs>
        <generic:ObsDimension value="2021-06-02"/>
        <generic:ObsValue value="%d.20"/>
      </generic:Obs>
    </generic:Series>`, maturity, i, i)
	}
	b.WriteString(`
  </message:DataSet>
</message:GenericData>`)
	return b.String()
}

func TestSources(t *testing.T) {
	t.Parallel()

	c := New(WithHTTPClient(nil))
	assert.Equal(t, sources.BuiltinSources(), c.Sources())
}

func TestAvailableParameters(t *testing.T) {
	t.Parallel()

	c := New(WithHTTPClient(nil))

	params, err := c.AvailableParameters("ECB")
	require.NoError(t, err)
	require.NotEmpty(t, params)
	assert.Equal(t, "start_period", params[0].Name)

	var unavailable *registry.SourceUnavailableError
	_, err = c.AvailableParameters("NOPE")
	assert.ErrorAs(t, err, &unavailable)
}

func TestRetrieveData(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	client := mocks.NewMockClient(ctrl)
	client.EXPECT().
		Get(gomock.Any(),
			"https://sdw-wsrest.ecb.europa.eu/service/data/YC?startPeriod=2021-06-01",
			gomock.Any()).
		Return(&httpclient.Response{
			StatusCode:  200,
			ContentType: "application/vnd.sdmx.genericdata+xml;version=2.1",
			Body:        []byte(yieldCurveDocument()),
		}, nil)

	c := New(WithHTTPClient(client))
	table, err := c.RetrieveData(context.Background(), "ECB", "YC",
		map[string]string{"start_period": "2021-06-01"})
	require.NoError(t, err)

	// Three series of two observations each: one row per observation.
	require.Equal(t, 6, table.Len())
	assert.Equal(t,
		[]string{"FREQ", "DATA_TYPE_FM", "TIME_PERIOD", "UNIT", "OBS_DATE", "value"},
		table.Columns())

	first := table.Row(0)
	assert.Equal(t, "SR_1Y", first["DATA_TYPE_FM"])
	assert.Equal(t, "PC", first["UNIT"])
	assert.Equal(t, "0.10", first["value"])
}

func TestRetrieveDataValidationBeforeNetwork(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	// No expectations: a rejected parameter must not produce a request.
	client := mocks.NewMockClient(ctrl)

	c := New(WithHTTPClient(client))
	_, err := c.RetrieveData(context.Background(), "ECB", "YC",
		map[string]string{"fequency": "B"})

	var unknown *schema.UnknownParameterError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "fequency", unknown.Name)
}

func TestRetrieveDataUnknownSource(t *testing.T) {
	t.Parallel()

	c := New(WithHTTPClient(nil))
	var unavailable *registry.SourceUnavailableError
	_, err := c.RetrieveData(context.Background(), "BCE", "YC", nil)
	require.ErrorAs(t, err, &unavailable)
	assert.Equal(t, "BCE", unavailable.ID)
}

func TestRetrieveDataTransportError(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	client := mocks.NewMockClient(ctrl)
	client.EXPECT().
		Get(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, &httpclient.RetrievalError{
			URL:        "https://sdw-wsrest.ecb.europa.eu/service/data/YC",
			StatusCode: 503,
			Status:     "503 Service Unavailable",
		})

	c := New(WithHTTPClient(client))
	_, err := c.RetrieveData(context.Background(), "ECB", "YC", nil)

	var retrieval *httpclient.RetrievalError
	require.ErrorAs(t, err, &retrieval)
	assert.Equal(t, 503, retrieval.StatusCode)
}

func TestListDataflows(t *testing.T) {
	t.Parallel()

	document := `<?xml version="1.0" encoding="UTF-8"?>
<message:Structure xmlns:message="http://www.sdmx.org/resources/sdmxml/schemas/v2_1/message"
    xmlns:structure="http://www.sdmx.org/resources/sdmxml/schemas/v2_1/structure">
  <message:Structures>
    <structure:Dataflows>
      <structure:Dataflow id="EXR" agencyID="ECB" version="1.0">
        <Name xml:lang="en">Exchange Rates</Name>
      </structure:Dataflow>
      <structure:Dataflow id="YC" agencyID="ECB" version="1.0">
        <Name xml:lang="en">Yield Curves</Name>
      </structure:Dataflow>
    </structure:Dataflows>
  </message:Structures>
</message:Structure>`

	ctrl := gomock.NewController(t)
	client := mocks.NewMockClient(ctrl)
	client.EXPECT().
		Get(gomock.Any(), "https://sdw-wsrest.ecb.europa.eu/service/dataflow/ECB", gomock.Any()).
		Return(&httpclient.Response{
			StatusCode:  200,
			ContentType: "application/vnd.sdmx.structure+xml;version=2.1",
			Body:        []byte(document),
		}, nil)

	c := New(WithHTTPClient(client))
	table, err := c.ListDataflows(context.Background(), "ECB")
	require.NoError(t, err)
	require.Equal(t, 2, table.Len())
	assert.Equal(t, "EXR", table.Row(0)[normalize.ColDataflow])
	assert.Equal(t, "Yield Curves", table.Row(1)[normalize.ColName])
}

func TestListCodes(t *testing.T) {
	t.Parallel()

	document := `<?xml version="1.0" encoding="UTF-8"?>
<message:Structure xmlns:message="http://www.sdmx.org/resources/sdmxml/schemas/v2_1/message"
    xmlns:structure="http://www.sdmx.org/resources/sdmxml/schemas/v2_1/structure">
  <message:Structures>
    <structure:Codelists>
      <structure:Codelist id="CL_FREQ" agencyID="ECB">
        <Name xml:lang="en">Frequency code list</Name>
        <structure:Code id="A"><Name xml:lang="en">Annual</Name></structure:Code>
        <structure:Code id="M"><Name xml:lang="en">Monthly</Name></structure:Code>
      </structure:Codelist>
    </structure:Codelists>
  </message:Structures>
</message:Structure>`

	ctrl := gomock.NewController(t)
	client := mocks.NewMockClient(ctrl)
	client.EXPECT().
		Get(gomock.Any(), "https://sdw-wsrest.ecb.europa.eu/service/codelist/ECB/CL_FREQ", gomock.Any()).
		Return(&httpclient.Response{
			StatusCode:  200,
			ContentType: "application/vnd.sdmx.structure+xml;version=2.1",
			Body:        []byte(document),
		}, nil)

	c := New(WithHTTPClient(client))
	table, err := c.ListCodes(context.Background(), "ECB", "CL_FREQ")
	require.NoError(t, err)
	require.Equal(t, 2, table.Len())
	assert.Equal(t, "A", table.Row(0)[normalize.ColCode])
	assert.Equal(t, "Monthly", table.Row(1)[normalize.ColDescription])
}

func TestListCodesForDataflow(t *testing.T) {
	t.Parallel()

	// A datastructure query with child references returns the definition
	// plus every code list it uses; the codes are what the caller wants.
	document := `<?xml version="1.0" encoding="UTF-8"?>
<message:Structure xmlns:message="http://www.sdmx.org/resources/sdmxml/schemas/v2_1/message"
    xmlns:structure="http://www.sdmx.org/resources/sdmxml/schemas/v2_1/structure">
  <message:Structures>
    <structure:DataStructures>
      <structure:DataStructure id="ECB_EXR1" agencyID="ECB"/>
    </structure:DataStructures>
    <structure:Codelists>
      <structure:Codelist id="CL_FREQ" agencyID="ECB">
        <Name xml:lang="en">Frequency code list</Name>
        <structure:Code id="D"><Name xml:lang="en">Daily</Name></structure:Code>
      </structure:Codelist>
      <structure:Codelist id="CL_CURRENCY" agencyID="ECB">
        <Name xml:lang="en">Currency code list</Name>
        <structure:Code id="USD"><Name xml:lang="en">US dollar</Name></structure:Code>
        <structure:Code id="JPY"><Name xml:lang="en">Japanese yen</Name></structure:Code>
      </structure:Codelist>
    </structure:Codelists>
  </message:Structures>
</message:Structure>`

	ctrl := gomock.NewController(t)
	client := mocks.NewMockClient(ctrl)
	client.EXPECT().
		Get(gomock.Any(),
			"https://sdw-wsrest.ecb.europa.eu/service/datastructure/ECB/ECB_EXR1?references=children",
			gomock.Any()).
		Return(&httpclient.Response{
			StatusCode:  200,
			ContentType: "application/vnd.sdmx.structure+xml;version=2.1",
			Body:        []byte(document),
		}, nil)

	c := New(WithHTTPClient(client))
	table, err := c.ListCodesForDataflow(context.Background(), "ECB", "ECB_EXR1")
	require.NoError(t, err)
	require.Equal(t, 3, table.Len())

	assert.Equal(t, "CL_FREQ", table.Row(0)[normalize.ColCodelist])
	assert.Equal(t, "D", table.Row(0)[normalize.ColCode])
	assert.Equal(t, "CL_CURRENCY", table.Row(1)[normalize.ColCodelist])
	assert.Equal(t, "US dollar", table.Row(1)[normalize.ColDescription])
	assert.Equal(t, "JPY", table.Row(2)[normalize.ColCode])
}

func TestWithConfig(t *testing.T) {
	t.Parallel()

	c := New(
		WithHTTPClient(nil),
		WithConfig(&config.Config{Sources: []config.SourceConfig{
			{ID: "ESTAT", Data: "https://example.org/data/{resource}"},
		}}),
	)
	assert.Equal(t, append(sources.BuiltinSources(), "ESTAT"), c.Sources())

	params, err := c.AvailableParameters("ESTAT")
	require.NoError(t, err)
	assert.Empty(t, params)
}

func TestRetrieveDataEmptySeries(t *testing.T) {
	t.Parallel()

	document := `<?xml version="1.0" encoding="UTF-8"?>
<message:GenericData xmlns:message="http://www.sdmx.org/resources/sdmxml/schemas/v2_1/message"
    xmlns:generic="http://www.sdmx.org/resources/sdmxml/schemas/v2_1/data/generic">
  <message:DataSet>
    <generic:Series>
      <generic:SeriesKey>
        <generic:Value id="FREQ" value="M"/>
      </generic:SeriesKey>
    </generic:Series>
  </message:DataSet>
</message:GenericData>`

	ctrl := gomock.NewController(t)
	client := mocks.NewMockClient(ctrl)
	client.EXPECT().
		Get(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(&httpclient.Response{
			StatusCode:  200,
			ContentType: "application/vnd.sdmx.genericdata+xml;version=2.1",
			Body:        []byte(document),
		}, nil)

	c := New(WithHTTPClient(client))
	table, err := c.RetrieveData(context.Background(), "ECB", "EXR", nil)
	require.NoError(t, err)
	assert.Equal(t, 0, table.Len())

	// The value column renders even with no rows.
	assert.Contains(t, table.Columns(), normalize.ValueColumn)
}
