package normalize

import (
	"bytes"
	"fmt"
	"strings"
)

// Dialect identifies the structural family of an SDMX payload.
type Dialect int

// Recognized payload dialects.
const (
	DialectUnknown Dialect = iota
	// DialectGenericData is an SDMX-ML 2.1 generic data message.
	DialectGenericData
	// DialectStructureSpecificData covers SDMX-ML data messages that encode
	// dimensions as XML attributes: 2.1 structure-specific and 2.0 compact.
	DialectStructureSpecificData
	// DialectStructure is an SDMX-ML structure message (dataflows, code
	// lists, data structure definitions), either 2.0 or 2.1.
	DialectStructure
	// DialectJSON is an SDMX-JSON data message.
	DialectJSON
)

// String returns the dialect name.
func (d Dialect) String() string {
	switch d {
	case DialectGenericData:
		return "sdmx-ml-generic"
	case DialectStructureSpecificData:
		return "sdmx-ml-structure-specific"
	case DialectStructure:
		return "sdmx-ml-structure"
	case DialectJSON:
		return "sdmx-json"
	default:
		return "unknown"
	}
}

// UnrecognizedFormatError reports a payload whose dialect could not be
// identified from its content type or document shape.
type UnrecognizedFormatError struct {
	ContentType string
	Detail      string
}

// Error returns the error message.
func (e *UnrecognizedFormatError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("unrecognized payload format (content type %q): %s", e.ContentType, e.Detail)
	}
	return fmt.Sprintf("unrecognized payload format (content type %q)", e.ContentType)
}

// Detect identifies a payload's dialect from its content type and document
// shape. The content type settles JSON versus XML; the root element settles
// the XML message family.
func Detect(contentType string, body []byte) (Dialect, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return DialectUnknown, &UnrecognizedFormatError{ContentType: contentType, Detail: "empty payload"}
	}

	if strings.Contains(contentType, "json") || trimmed[0] == '{' {
		return DialectJSON, nil
	}
	if trimmed[0] != '<' {
		return DialectUnknown, &UnrecognizedFormatError{ContentType: contentType, Detail: "payload is neither XML nor JSON"}
	}

	root, err := parseXML(trimmed)
	if err != nil {
		return DialectUnknown, &UnrecognizedFormatError{ContentType: contentType, Detail: err.Error()}
	}
	return detectXMLDialect(contentType, root)
}

func detectXMLDialect(contentType string, root *Node) (Dialect, error) {
	switch root.Local() {
	case "GenericData":
		return DialectGenericData, nil
	case "StructureSpecificData", "CompactData", "MessageGroup":
		return DialectStructureSpecificData, nil
	case "Structure", "RegistryInterface":
		return DialectStructure, nil
	default:
		return DialectUnknown, &UnrecognizedFormatError{
			ContentType: contentType,
			Detail:      fmt.Sprintf("unexpected root element %s", root.Local()),
		}
	}
}
