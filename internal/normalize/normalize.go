// Package normalize converts provider-specific SDMX payloads into canonical
// tables. One algorithm serves every source: identify the dialect, walk the
// series or structure tree, and emit one row per observation or per
// structural entry. Column order is dimensions first as declared by the
// document, then attributes in first-seen order, then the value column.
package normalize

import (
	"github.com/leourb/sdmx-query-tool/internal/tabular"
)

// Kind names the resource a payload was retrieved for.
type Kind string

// Resource kinds handled by the normalizer.
const (
	KindData     Kind = "data"
	KindDataflow Kind = "dataflow"
	KindCodelist Kind = "codelist"
	// KindDataflowCodes retrieves every code list referenced by a dataflow's
	// data structure; the response is still a structure message carrying
	// code lists.
	KindDataflowCodes Kind = "dataflow-codes"
)

// ValueColumn is the canonical name of the observation value column. It is
// always the last column of a data table.
const ValueColumn = "value"

// Normalize converts a raw payload into a canonical table. The dialect is
// identified from the content type and document shape; a payload matching no
// recognized dialect fails with UnrecognizedFormatError. A series without
// observations contributes zero rows and does not fail the parse.
func Normalize(contentType string, body []byte, kind Kind) (*tabular.Table, error) {
	dialect, err := Detect(contentType, body)
	if err != nil {
		return nil, err
	}

	switch dialect {
	case DialectJSON:
		return normalizeJSONData(contentType, body)
	case DialectGenericData:
		root, err := parseXML(body)
		if err != nil {
			return nil, &UnrecognizedFormatError{ContentType: contentType, Detail: err.Error()}
		}
		return normalizeGenericData(root), nil
	case DialectStructureSpecificData:
		root, err := parseXML(body)
		if err != nil {
			return nil, &UnrecognizedFormatError{ContentType: contentType, Detail: err.Error()}
		}
		return normalizeStructureSpecificData(root), nil
	case DialectStructure:
		root, err := parseXML(body)
		if err != nil {
			return nil, &UnrecognizedFormatError{ContentType: contentType, Detail: err.Error()}
		}
		return normalizeStructure(contentType, root, kind)
	default:
		return nil, &UnrecognizedFormatError{ContentType: contentType}
	}
}

// builder accumulates data rows while tracking column discovery order:
// dimensions as declared by the document's structure, then attributes as
// first seen, then the value column.
type builder struct {
	dims     []string
	dimSeen  map[string]struct{}
	attrs    []string
	attrSeen map[string]struct{}
	rows     []tabular.Row
}

func newBuilder() *builder {
	return &builder{
		dimSeen:  make(map[string]struct{}),
		attrSeen: make(map[string]struct{}),
	}
}

func (b *builder) dim(name string) {
	if _, ok := b.dimSeen[name]; ok {
		return
	}
	b.dimSeen[name] = struct{}{}
	b.dims = append(b.dims, name)
}

func (b *builder) attr(name string) {
	if _, ok := b.attrSeen[name]; ok {
		return
	}
	// A name already registered as a dimension stays a dimension.
	if _, ok := b.dimSeen[name]; ok {
		return
	}
	b.attrSeen[name] = struct{}{}
	b.attrs = append(b.attrs, name)
}

func (b *builder) add(row tabular.Row) {
	b.rows = append(b.rows, row)
}

func (b *builder) table() *tabular.Table {
	columns := make([]string, 0, len(b.dims)+len(b.attrs)+1)
	columns = append(columns, b.dims...)
	columns = append(columns, b.attrs...)
	columns = append(columns, ValueColumn)
	t := tabular.New(columns...)
	for _, row := range b.rows {
		t.AddRow(row)
	}
	return t
}
