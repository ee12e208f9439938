package normalize

import (
	"strings"

	"github.com/leourb/sdmx-query-tool/internal/tabular"
	"github.com/leourb/sdmx-query-tool/internal/versions"
)

// Canonical columns for dataflow listings.
const (
	ColDataflow    = "DATAFLOW"
	ColAgency      = "AGENCY"
	ColVersion     = "VERSION"
	ColName        = "NAME"
	ColStructure   = "STRUCTURE"
	ColSeriesCount = "SERIES_COUNT"
)

// Canonical columns for code-list listings.
const (
	ColCodelist     = "CODELIST"
	ColCodelistName = "CODELIST_NAME"
	ColCode         = "CODE"
	ColParent       = "PARENT"
	ColDescription  = "DESCRIPTION"
)

// normalizeStructure converts an SDMX-ML structure message into the metadata
// table matching the requested resource kind.
func normalizeStructure(contentType string, root *Node, kind Kind) (*tabular.Table, error) {
	switch kind {
	case KindDataflow:
		return dataflowTable(root), nil
	case KindCodelist, KindDataflowCodes:
		return codelistTable(root), nil
	default:
		return nil, &UnrecognizedFormatError{
			ContentType: contentType,
			Detail:      "structure message where a data message was expected",
		}
	}
}

// dataflowTable emits one row per dataflow definition. SDMX-ML 2.1 declares
// them as Dataflow elements, 2.0 as KeyFamily elements; both appear in the
// wild and carry the same logical entry. Providers that publish several
// versions of a flow are collapsed to the newest one.
func dataflowTable(root *Node) *tabular.Table {
	t := tabular.New(ColDataflow, ColAgency, ColVersion, ColName, ColStructure)

	var order []string
	latest := make(map[string]tabular.Row)
	record := func(row tabular.Row) {
		key := row[ColAgency] + "/" + row[ColDataflow]
		existing, ok := latest[key]
		if !ok {
			order = append(order, key)
			latest[key] = row
			return
		}
		if versions.IsNewer(row[ColVersion], existing[ColVersion]) {
			latest[key] = row
		}
	}

	for _, flow := range root.Descendants("Dataflow") {
		row := tabular.Row{
			ColDataflow: flow.Attr("id"),
			ColAgency:   flow.Attr("agencyID"),
		}
		if v := flow.Attr("version"); v != "" {
			row[ColVersion] = v
		}
		if name := flow.localizedText("Name"); name != "" {
			row[ColName] = name
		}
		if structure := flow.Child("Structure"); structure != nil {
			if ref := structure.Child("Ref"); ref != nil {
				row[ColStructure] = ref.Attr("id")
			}
		}
		if count := annotationCount(flow); count != "" {
			row[ColSeriesCount] = count
		}
		record(row)
	}

	for _, family := range root.Descendants("KeyFamily") {
		row := tabular.Row{
			ColDataflow: family.Attr("id"),
			ColAgency:   family.Attr("agencyID"),
		}
		if v := family.Attr("version"); v != "" {
			row[ColVersion] = v
		}
		if name := family.localizedText("Name"); name != "" {
			row[ColName] = name
		}
		record(row)
	}

	for _, key := range order {
		t.AddRow(latest[key])
	}

	return t
}

// annotationCount extracts the series count some providers (INSEE) attach to
// each dataflow as an annotation, e.g. "Nombre de séries : 123". The text
// after the colon is the count; annotation-less flows return "".
func annotationCount(flow *Node) string {
	annotations := flow.Child("Annotations")
	if annotations == nil {
		return ""
	}
	for _, annotation := range annotations.ChildrenNamed("Annotation") {
		text := annotation.localizedText("AnnotationText")
		if text == "" {
			continue
		}
		if i := strings.LastIndex(text, ":"); i >= 0 {
			text = text[i+1:]
		}
		return strings.TrimSpace(text)
	}
	return ""
}

// codelistTable emits one row per code across every code list in the
// document. SDMX-ML 2.1 uses Codelist/Code with id attributes and Name
// children; 2.0 uses CodeList/Code with value attributes and Description
// children.
func codelistTable(root *Node) *tabular.Table {
	t := tabular.New(ColCodelist, ColCodelistName, ColCode, ColParent, ColDescription)

	for _, list := range root.Descendants("Codelist") {
		listID := list.Attr("id")
		listName := list.localizedText("Name")
		for _, code := range list.ChildrenNamed("Code") {
			row := tabular.Row{
				ColCodelist:     listID,
				ColCodelistName: listName,
				ColCode:         code.Attr("id"),
			}
			if parent := code.Child("Parent"); parent != nil {
				if ref := parent.Child("Ref"); ref != nil {
					row[ColParent] = ref.Attr("id")
				}
			}
			if desc := code.localizedText("Name"); desc != "" {
				row[ColDescription] = desc
			}
			t.AddRow(row)
		}
	}

	for _, list := range root.Descendants("CodeList") {
		listID := list.Attr("id")
		listName := list.localizedText("Name")
		for _, code := range list.ChildrenNamed("Code") {
			row := tabular.Row{
				ColCodelist:     listID,
				ColCodelistName: listName,
				ColCode:         code.Attr("value"),
			}
			if parent := code.Attr("parentCode"); parent != "" {
				row[ColParent] = parent
			}
			if desc := code.localizedText("Description"); desc != "" {
				row[ColDescription] = desc
			}
			t.AddRow(row)
		}
	}

	return t
}
