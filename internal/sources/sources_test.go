package sources

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/leourb/sdmx-query-tool/internal/config"
	"github.com/leourb/sdmx-query-tool/internal/httpclient"
	"github.com/leourb/sdmx-query-tool/internal/httpclient/mocks"
	"github.com/leourb/sdmx-query-tool/internal/normalize"
	"github.com/leourb/sdmx-query-tool/internal/schema"
)

func TestNewAdapter(t *testing.T) {
	t.Parallel()

	t.Run("creates every built-in source", func(t *testing.T) {
		t.Parallel()
		for _, id := range BuiltinSources() {
			adapter, err := NewAdapter(id, nil)
			require.NoError(t, err, "source %s", id)
			assert.Equal(t, id, adapter.ID())
			assert.NotNil(t, adapter.Schema())
		}
	})

	t.Run("rejects unknown source", func(t *testing.T) {
		t.Parallel()
		_, err := NewAdapter("BUNDESBANK", nil)
		assert.ErrorContains(t, err, "unsupported source: BUNDESBANK")
	})
}

func TestBuildRequest(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		source     string
		kind       normalize.Kind
		resourceID string
		params     map[string]string
		wantURL    string
		wantAccept string
	}{
		{
			name:       "ECB data with parameters in declaration order",
			source:     SourceECB,
			kind:       normalize.KindData,
			resourceID: "EXR",
			params: map[string]string{
				"end_period":   "2021-12",
				"start_period": "2020-01",
				"detail":       "dataonly",
			},
			wantURL:    "https://sdw-wsrest.ecb.europa.eu/service/data/EXR?startPeriod=2020-01&endPeriod=2021-12&detail=dataonly",
			wantAccept: "application/vnd.sdmx.genericdata+xml;version=2.1",
		},
		{
			name:       "ECB dataflow listing",
			source:     SourceECB,
			kind:       normalize.KindDataflow,
			wantURL:    "https://sdw-wsrest.ecb.europa.eu/service/dataflow/ECB",
			wantAccept: "application/vnd.sdmx.structure+xml;version=2.1",
		},
		{
			name:       "INSEE code list",
			source:     SourceINSEE,
			kind:       normalize.KindCodelist,
			resourceID: "CL_PERIODICITE",
			wantURL:    "https://bdm.insee.fr/series/sdmx/codelist/FR1/CL_PERIODICITE",
			wantAccept: "application/vnd.sdmx.structure+xml;version=2.1",
		},
		{
			name:       "ECB code lists for a dataflow via its data structure",
			source:     SourceECB,
			kind:       normalize.KindDataflowCodes,
			resourceID: "ECB_EXR1",
			wantURL:    "https://sdw-wsrest.ecb.europa.eu/service/datastructure/ECB/ECB_EXR1?references=children",
			wantAccept: "application/vnd.sdmx.structure+xml;version=2.1",
		},
		{
			name:       "OECD resolves dataflow codes through GetDataStructure",
			source:     SourceOECD,
			kind:       normalize.KindDataflowCodes,
			resourceID: "QNA",
			wantURL:    "https://stats.oecd.org/restsdmx/sdmx.ashx/GetDataStructure/QNA",
		},
		{
			name:       "OECD data with legacy time parameters",
			source:     SourceOECD,
			kind:       normalize.KindData,
			resourceID: "QNA",
			params:     map[string]string{"start_time": "2019-Q1", "end_time": "2020-Q4"},
			wantURL:    "https://stats.oecd.org/restsdmx/sdmx.ashx/GetData/QNA/all/all?startTime=2019-Q1&endTime=2020-Q4",
		},
		{
			name:       "IMF data negotiates SDMX-JSON",
			source:     SourceIMF,
			kind:       normalize.KindData,
			resourceID: "IFS",
			wantURL:    "https://sdmxcentral.imf.org/ws/public/sdmxapi/rest/data/IFS",
			wantAccept: "application/vnd.sdmx.data+json;version=1.0.0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			adapter, err := NewAdapter(tt.source, nil)
			require.NoError(t, err)

			req, err := adapter.BuildRequest(tt.kind, tt.resourceID, tt.params)
			require.NoError(t, err)
			assert.Equal(t, tt.wantURL, req.URL)
			if tt.wantAccept == "" {
				assert.Empty(t, req.Headers)
			} else {
				assert.Equal(t, tt.wantAccept, req.Headers["Accept"])
			}
		})
	}
}

func TestBuildRequestErrors(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	// No expectations: validation failures must never reach the transport.
	client := mocks.NewMockClient(ctrl)

	adapter, err := NewECB(client)
	require.NoError(t, err)

	t.Run("unknown parameter", func(t *testing.T) {
		_, err := adapter.BuildRequest(normalize.KindData, "EXR", map[string]string{"frequency": "M"})
		var unknown *schema.UnknownParameterError
		require.ErrorAs(t, err, &unknown)
		assert.Equal(t, "frequency", unknown.Name)
	})

	t.Run("invalid value", func(t *testing.T) {
		_, err := adapter.BuildRequest(normalize.KindData, "EXR", map[string]string{"detail": "verbose"})
		var invalid *schema.InvalidValueError
		require.ErrorAs(t, err, &invalid)
		assert.Equal(t, "detail", invalid.Name)
	})

	t.Run("missing resource identifier", func(t *testing.T) {
		_, err := adapter.BuildRequest(normalize.KindData, "", nil)
		assert.ErrorContains(t, err, "resource identifier is required")
	})

	t.Run("parameters rejected on structure queries", func(t *testing.T) {
		_, err := adapter.BuildRequest(normalize.KindDataflow, "", map[string]string{"detail": "full"})
		assert.ErrorContains(t, err, "parameters are not supported")
	})
}

func TestFetchAndParse(t *testing.T) {
	t.Parallel()

	document := `<?xml version="1.0" encoding="UTF-8"?>
<message:GenericData xmlns:message="http://www.sdmx.org/resources/sdmxml/schemas/v2_1/message"
    xmlns:generic="http://www.sdmx.org/resources/sdmxml/schemas/v2_1/data/generic">
  <message:DataSet>
    <generic:Series>
      <generic:SeriesKey>
        <generic:Value id="FREQ" value="M"/>
      </generic:SeriesKey>
      <generic:Obs>
        <generic:ObsDimension value="2020-01"/>
        <generic:ObsValue value="1.5"/>
      </generic:Obs>
    </generic:Series>
  </message:DataSet>
</message:GenericData>`

	ctrl := gomock.NewController(t)
	client := mocks.NewMockClient(ctrl)
	client.EXPECT().
		Get(gomock.Any(), "https://sdw-wsrest.ecb.europa.eu/service/data/EXR", gomock.Any()).
		Return(&httpclient.Response{
			StatusCode:  200,
			ContentType: "application/vnd.sdmx.genericdata+xml;version=2.1",
			Body:        []byte(document),
		}, nil)

	adapter, err := NewECB(client)
	require.NoError(t, err)

	req, err := adapter.BuildRequest(normalize.KindData, "EXR", nil)
	require.NoError(t, err)

	payload, err := adapter.Fetch(context.Background(), req)
	require.NoError(t, err)

	table, err := adapter.Parse(payload, normalize.KindData)
	require.NoError(t, err)
	require.Equal(t, 1, table.Len())

	// The post-parse hook resolves reporting periods to calendar dates and
	// keeps the value column last.
	assert.Equal(t, []string{"FREQ", "TIME_PERIOD", "OBS_DATE", "value"}, table.Columns())
	row := table.Row(0)
	assert.Equal(t, "2020-01-31", row["OBS_DATE"])
	assert.Equal(t, "1.5", row["value"])
}

func TestNewConfigured(t *testing.T) {
	t.Parallel()

	cfg := config.SourceConfig{
		ID:        "ESTAT",
		Data:      "https://ec.europa.eu/eurostat/sdmx/2.1/data/{resource}",
		Dataflows: "https://ec.europa.eu/eurostat/sdmx/2.1/dataflow/ESTAT/all",
		Codelist:  "https://ec.europa.eu/eurostat/sdmx/2.1/codelist/ESTAT/{resource}",
		Accept: map[string]string{
			"data": "application/vnd.sdmx.genericdata+xml;version=2.1",
		},
		Parameters: []config.ParameterConfig{
			{Name: "start_period", Query: "startPeriod"},
			{Name: "end_period", Query: "endPeriod"},
		},
	}

	adapter, err := NewConfigured(cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, "ESTAT", adapter.ID())

	req, err := adapter.BuildRequest(normalize.KindData, "nama_10_gdp", map[string]string{"start_period": "2015"})
	require.NoError(t, err)
	assert.Equal(t,
		"https://ec.europa.eu/eurostat/sdmx/2.1/data/nama_10_gdp?startPeriod=2015",
		req.URL)
	assert.Equal(t, "application/vnd.sdmx.genericdata+xml;version=2.1", req.Headers["Accept"])

	req, err = adapter.BuildRequest(normalize.KindCodelist, "GEO", nil)
	require.NoError(t, err)
	assert.Equal(t, "https://ec.europa.eu/eurostat/sdmx/2.1/codelist/ESTAT/GEO", req.URL)
	assert.Empty(t, req.Headers)

	t.Run("invalid pattern rejected", func(t *testing.T) {
		t.Parallel()
		_, err := NewConfigured(config.SourceConfig{
			ID:         "BROKEN",
			Data:       "https://example.org/data/{resource}",
			Parameters: []config.ParameterConfig{{Name: "n", Pattern: "["}},
		}, nil)
		assert.Error(t, err)
	})

	t.Run("required parameter does not block structure queries", func(t *testing.T) {
		t.Parallel()
		adapter, err := NewConfigured(config.SourceConfig{
			ID:        "STRICT",
			Data:      "https://example.org/data/{resource}",
			Dataflows: "https://example.org/dataflow/all",
			Parameters: []config.ParameterConfig{
				{Name: "api_key", Required: true},
			},
		}, nil)
		require.NoError(t, err)

		// Dataflow listing takes no parameters, required or otherwise.
		req, err := adapter.BuildRequest(normalize.KindDataflow, "", nil)
		require.NoError(t, err)
		assert.Equal(t, "https://example.org/dataflow/all", req.URL)

		// Data queries still enforce the requirement.
		_, err = adapter.BuildRequest(normalize.KindData, "FLOW", nil)
		var missing *schema.MissingRequiredParameterError
		require.ErrorAs(t, err, &missing)
		assert.Equal(t, "api_key", missing.Name)
	})

	t.Run("unsupported kinds report the source", func(t *testing.T) {
		t.Parallel()
		minimal, err := NewConfigured(config.SourceConfig{
			ID:   "MIN",
			Data: "https://example.org/data/{resource}",
		}, nil)
		require.NoError(t, err)

		_, err = minimal.BuildRequest(normalize.KindDataflow, "", nil)
		assert.ErrorContains(t, err, "MIN does not support dataflow listing")

		_, err = minimal.BuildRequest(normalize.KindCodelist, "CL_FREQ", nil)
		assert.ErrorContains(t, err, "MIN does not support code-list queries")

		_, err = minimal.BuildRequest(normalize.KindDataflowCodes, "FLOW", nil)
		assert.ErrorContains(t, err, "MIN does not support per-dataflow code-list queries")
	})
}
