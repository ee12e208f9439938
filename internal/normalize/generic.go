package normalize

import (
	"github.com/leourb/sdmx-query-tool/internal/tabular"
)

// defaultObsDimension is assumed when an observation dimension carries no id,
// which is how most providers emit generic data.
const defaultObsDimension = "TIME_PERIOD"

type kv struct {
	key   string
	value string
}

// keyValues extracts the (id, value) pairs of a generic key or attribute
// container, e.g. SeriesKey/Value or Attributes/Value, in document order.
func keyValues(parent *Node, container string) []kv {
	c := parent.Child(container)
	if c == nil {
		return nil
	}
	var out []kv
	for _, v := range c.ChildrenNamed("Value") {
		out = append(out, kv{key: v.Attr("id"), value: v.Attr("value")})
	}
	return out
}

type genericGroup struct {
	key   []kv
	attrs []kv
}

// matchesSeries reports whether every group key value is present with the
// same value in the series key, i.e. the group covers this series.
func (g *genericGroup) matchesSeries(dims map[string]string) bool {
	for _, k := range g.key {
		if dims[k.key] != k.value {
			return false
		}
	}
	return true
}

// normalizeGenericData walks an SDMX-ML 2.1 generic data message. Each series
// contributes one row per observation: the series key dimensions, the
// observation dimension, the value, and attributes merged with observation
// level overriding series level overriding group level overriding DataSet
// level. DataSet metadata (action, validFromDate) distinguishes revisions
// when a query asks for history.
func normalizeGenericData(root *Node) *tabular.Table {
	b := newBuilder()

	for _, dataSet := range root.ChildrenNamed("DataSet") {
		dsAttrs := datasetAttrs(dataSet)

		var groups []genericGroup
		for _, g := range dataSet.ChildrenNamed("Group") {
			groups = append(groups, genericGroup{
				key:   keyValues(g, "GroupKey"),
				attrs: keyValues(g, "Attributes"),
			})
		}

		for _, series := range dataSet.ChildrenNamed("Series") {
			dims := keyValues(series, "SeriesKey")
			dimMap := make(map[string]string, len(dims))
			for _, d := range dims {
				b.dim(d.key)
				dimMap[d.key] = d.value
			}

			var seriesAttrs []kv
			for i := range groups {
				if groups[i].matchesSeries(dimMap) {
					seriesAttrs = append(seriesAttrs, groups[i].attrs...)
				}
			}
			seriesAttrs = append(seriesAttrs, keyValues(series, "Attributes")...)

			for _, obs := range series.ChildrenNamed("Obs") {
				row := make(tabular.Row, len(dims)+len(seriesAttrs)+2)
				for _, a := range dsAttrs {
					b.attr(a.key)
					row[a.key] = a.value
				}
				for _, a := range seriesAttrs {
					b.attr(a.key)
					row[a.key] = a.value
				}
				for _, d := range dims {
					row[d.key] = d.value
				}

				obsDim := defaultObsDimension
				if d := obs.Child("ObsDimension"); d != nil {
					if id := d.Attr("id"); id != "" {
						obsDim = id
					}
					b.dim(obsDim)
					row[obsDim] = d.Attr("value")
				}
				if v := obs.Child("ObsValue"); v != nil {
					row[ValueColumn] = v.Attr("value")
				}
				for _, a := range keyValues(obs, "Attributes") {
					if _, isDim := b.dimSeen[a.key]; isDim {
						continue
					}
					b.attr(a.key)
					row[a.key] = a.value
				}

				b.add(row)
			}
		}
	}

	return b.table()
}
