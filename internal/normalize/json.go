package normalize

import (
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/leourb/sdmx-query-tool/internal/tabular"
)

// jsonComponent is one dimension or attribute declared in an SDMX-JSON
// structure block: an id plus the value list that series and observation
// indexes point into.
type jsonComponent struct {
	id     string
	values []string
}

func jsonComponents(result gjson.Result) []jsonComponent {
	var out []jsonComponent
	for _, c := range result.Array() {
		comp := jsonComponent{id: c.Get("id").String()}
		for _, v := range c.Get("values").Array() {
			comp.values = append(comp.values, v.Get("id").String())
		}
		out = append(out, comp)
	}
	return out
}

func (c *jsonComponent) value(i int) (string, bool) {
	if i < 0 || i >= len(c.values) {
		return "", false
	}
	return c.values[i], true
}

// resolveKey maps a colon-separated index vector ("0:2:1") onto the given
// components, writing one cell per resolvable part. Unparsable or
// out-of-range parts leave their cell absent.
func resolveKey(key string, components []jsonComponent, row tabular.Row) {
	for i, part := range strings.Split(key, ":") {
		if i >= len(components) {
			break
		}
		idx, err := strconv.Atoi(part)
		if err != nil {
			continue
		}
		if v, ok := components[i].value(idx); ok {
			row[components[i].id] = v
		}
	}
}

// normalizeJSONData walks an SDMX-JSON data message. Series keys and
// observation entries are index vectors into the structure block's dimension
// and attribute value lists; each observation resolves to one row.
func normalizeJSONData(contentType string, body []byte) (*tabular.Table, error) {
	root := gjson.ParseBytes(body)
	msg := root
	// Newer messages nest the payload under a data envelope.
	if d := root.Get("data"); d.Exists() {
		msg = d
	}

	structure := msg.Get("structure")
	dataSets := msg.Get("dataSets")
	if !structure.Exists() || !dataSets.Exists() {
		return nil, &UnrecognizedFormatError{
			ContentType: contentType,
			Detail:      "JSON document is not an SDMX-JSON data message",
		}
	}

	seriesDims := jsonComponents(structure.Get("dimensions.series"))
	obsDims := jsonComponents(structure.Get("dimensions.observation"))
	seriesAttrs := jsonComponents(structure.Get("attributes.series"))
	obsAttrs := jsonComponents(structure.Get("attributes.observation"))

	b := newBuilder()
	for _, d := range seriesDims {
		b.dim(d.id)
	}
	for _, d := range obsDims {
		b.dim(d.id)
	}

	for _, dataSet := range dataSets.Array() {
		dataSet.Get("series").ForEach(func(key, series gjson.Result) bool {
			dims := make(tabular.Row, len(seriesDims))
			resolveKey(key.String(), seriesDims, dims)

			attrs := make(tabular.Row)
			for i, a := range series.Get("attributes").Array() {
				if i >= len(seriesAttrs) || a.Type == gjson.Null {
					continue
				}
				if v, ok := seriesAttrs[i].value(int(a.Int())); ok {
					b.attr(seriesAttrs[i].id)
					attrs[seriesAttrs[i].id] = v
				}
			}

			series.Get("observations").ForEach(func(obsKey, obs gjson.Result) bool {
				row := make(tabular.Row, len(dims)+len(attrs)+2)
				for k, v := range attrs {
					row[k] = v
				}
				for k, v := range dims {
					row[k] = v
				}

				resolveKey(obsKey.String(), obsDims, row)

				entries := obs.Array()
				if len(entries) > 0 && entries[0].Type != gjson.Null {
					row[ValueColumn] = entries[0].String()
				}
				for i, a := range entries[1:] {
					if i >= len(obsAttrs) || a.Type == gjson.Null {
						continue
					}
					if v, ok := obsAttrs[i].value(int(a.Int())); ok {
						b.attr(obsAttrs[i].id)
						row[obsAttrs[i].id] = v
					}
				}

				b.add(row)
				return true
			})
			return true
		})
	}

	return b.table(), nil
}
