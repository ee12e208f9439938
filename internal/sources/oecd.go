package sources

import (
	"github.com/leourb/sdmx-query-tool/internal/httpclient"
	"github.com/leourb/sdmx-query-tool/internal/schema"
)

const oecdBase = "https://stats.oecd.org/restsdmx/sdmx.ashx"

// NewOECD creates the adapter for OECD.Stat. The service still speaks the
// SDMX-ML 2.0 dialect: compact data messages and KeyFamily-based dataflow
// listings, with no content negotiation.
func NewOECD(client httpclient.Client) (Adapter, error) {
	s, err := schema.New(
		schema.Param{Name: "start_time", Query: "startTime",
			Description: "first period to include, e.g. 2020 or 2020-Q1"},
		schema.Param{Name: "end_time", Query: "endTime",
			Description: "last period to include"},
	)
	if err != nil {
		return nil, err
	}

	return &restAdapter{
		id:           SourceOECD,
		schema:       s,
		client:       client,
		dataTemplate: oecdBase + "/GetData/%s/all/all",
		dataflowURL:  oecdBase + "/GetKeyFamilies/all",
		// GetDataStructure returns the full definition including its code
		// lists, so it serves both code-list query forms.
		codelistTemplate:      oecdBase + "/GetDataStructure/%s",
		datastructureTemplate: oecdBase + "/GetDataStructure/%s",
	}, nil
}
