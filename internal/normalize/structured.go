package normalize

import (
	"github.com/leourb/sdmx-query-tool/internal/tabular"
)

const xsiNamespace = "http://www.w3.org/2001/XMLSchema-instance"

// Observation-level attribute names that play a fixed structural role in
// structure-specific and compact data messages.
const (
	obsValueAttr  = "OBS_VALUE"
	obsTimeAttr21 = "TIME_PERIOD"
	obsTimeAttr20 = "TIME"
)

// elementAttrs returns an element's data-bearing attributes in document
// order, dropping namespace declarations and schema-instance plumbing.
func elementAttrs(n *Node) []kv {
	var out []kv
	for _, a := range n.Attrs {
		if a.Name.Space == "xmlns" || a.Name.Local == "xmlns" || a.Name.Space == xsiNamespace {
			continue
		}
		out = append(out, kv{key: a.Name.Local, value: a.Value})
	}
	return out
}

// datasetAttrs returns the DataSet-level metadata attributes (action,
// validFromDate and friends) that revision queries depend on, dropping the
// structural references.
func datasetAttrs(dataSet *Node) []kv {
	var out []kv
	for _, a := range elementAttrs(dataSet) {
		if a.key == "structureRef" || a.key == "dataScope" {
			continue
		}
		out = append(out, a)
	}
	return out
}

// groupApplies reports whether a group's attributes are consistent with a
// series: every group attribute whose name also appears on the series must
// carry the same value, and at least one must overlap. The non-overlapping
// remainder is the group's attribute contribution.
func groupApplies(group []kv, seriesAttrs map[string]string) (extras []kv, ok bool) {
	overlap := false
	for _, g := range group {
		if v, present := seriesAttrs[g.key]; present {
			if v != g.value {
				return nil, false
			}
			overlap = true
			continue
		}
		extras = append(extras, g)
	}
	return extras, overlap
}

// normalizeStructureSpecificData walks SDMX-ML data messages that encode
// dimensions as XML attributes (2.1 structure-specific, 2.0 compact). Without
// the data structure definition the series-level attributes cannot be split
// into dimensions and attributes, so all of them are treated as dimensions,
// matching how such payloads identify their series.
func normalizeStructureSpecificData(root *Node) *tabular.Table {
	b := newBuilder()

	for _, dataSet := range root.ChildrenNamed("DataSet") {
		dsAttrs := datasetAttrs(dataSet)

		var groups [][]kv
		for _, g := range dataSet.ChildrenNamed("Group") {
			groups = append(groups, elementAttrs(g))
		}

		for _, series := range dataSet.ChildrenNamed("Series") {
			dims := elementAttrs(series)
			dimMap := make(map[string]string, len(dims))
			for _, d := range dims {
				b.dim(d.key)
				dimMap[d.key] = d.value
			}

			var groupAttrs []kv
			for _, g := range groups {
				if extras, ok := groupApplies(g, dimMap); ok {
					groupAttrs = append(groupAttrs, extras...)
				}
			}

			for _, obs := range series.ChildrenNamed("Obs") {
				row := make(tabular.Row, len(dims)+4)
				for _, a := range dsAttrs {
					b.attr(a.key)
					row[a.key] = a.value
				}
				for _, a := range groupAttrs {
					b.attr(a.key)
					row[a.key] = a.value
				}
				for _, d := range dims {
					row[d.key] = d.value
				}

				for _, a := range elementAttrs(obs) {
					switch a.key {
					case obsValueAttr:
						row[ValueColumn] = a.value
					case obsTimeAttr21, obsTimeAttr20:
						b.dim(a.key)
						row[a.key] = a.value
					default:
						if _, isDim := b.dimSeen[a.key]; isDim {
							continue
						}
						b.attr(a.key)
						row[a.key] = a.value
					}
				}

				b.add(row)
			}
		}
	}

	return b.table()
}
