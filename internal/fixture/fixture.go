// Package fixture builds PREMIS nodes and records against the V3 schema for
// use in tests.
package fixture

import (
	"testing"

	"github.com/birkland/premis"
	"github.com/birkland/premis/schema"
)

// Must fails the test on error
func Must(tb testing.TB, err error) {
	tb.Helper()
	if err != nil {
		tb.Fatalf("%+v", err)
	}
}

// Node builds a valid node of the given kind from alternating field names and
// values.  Values may be strings, which become leaves, or any premis.Value.
// A repeated name adds to a repeatable field.
func Node(tb testing.TB, kind string, fields ...interface{}) *premis.Node {
	tb.Helper()
	if len(fields)%2 != 0 {
		tb.Fatalf("odd number of field arguments for %s", kind)
	}

	n, err := premis.Build(schema.V3, kind, func(n *premis.Node) error {
		for i := 0; i < len(fields); i += 2 {
			name := fields[i].(string)
			var v premis.Value
			switch t := fields[i+1].(type) {
			case string:
				v = premis.Leaf(t)
			case premis.Value:
				v = t
			default:
				tb.Fatalf("unsupported value %T for %s.%s", t, kind, name)
			}

			f, _ := n.Schema().Field(name)
			if f != nil && f.Repeatable() {
				if err := n.Add(name, v); err != nil {
					return err
				}
				continue
			}
			if err := n.Set(name, v); err != nil {
				return err
			}
		}
		return nil
	})
	Must(tb, err)
	return n
}

// Identifier builds a (type, value) identifier node, e.g. objectIdentifier
func Identifier(tb testing.TB, kind, typ, value string) *premis.Node {
	tb.Helper()
	return Node(tb, kind, kind+"Type", typ, kind+"Value", value)
}

// Format builds a format node with a designation
func Format(tb testing.TB, name, version string) *premis.Node {
	tb.Helper()
	return Node(tb, "format",
		"formatDesignation", Node(tb, "formatDesignation", "formatName", name, "formatVersion", version))
}

// FileObject builds a file object with the given identifier (type, value)
// pairs and a single characteristics child holding one format.
func FileObject(tb testing.TB, ids ...[2]string) *premis.Node {
	tb.Helper()
	fields := []interface{}{"objectCategory", schema.CategoryFile}
	for _, id := range ids {
		fields = append(fields, "objectIdentifier", Identifier(tb, "objectIdentifier", id[0], id[1]))
	}
	fields = append(fields, "objectCharacteristics",
		Node(tb, "objectCharacteristics", "format", Format(tb, "PDF", "1.7")))
	return Node(tb, "object", fields...)
}

// Extension builds a subtree nested three levels deep, whose innermost level
// holds two values under a single key.
func Extension(tb testing.TB) *premis.Extension {
	tb.Helper()

	inner := premis.NewExtension("mix:BasicImageCharacteristics")
	Must(tb, inner.Add("mix:imageWidth", premis.Leaf("1024")))
	Must(tb, inner.Add("mix:note", premis.Leaf("first")))
	Must(tb, inner.Add("mix:note", premis.Leaf("second")))

	middle := premis.NewExtension("mix:BasicImageInformation")
	Must(tb, middle.Set("mix:BasicImageCharacteristics", inner))

	outer := premis.NewExtension("mix:mix")
	Must(tb, outer.Set("mix:BasicImageInformation", middle))
	Must(tb, outer.Set("mix:version", premis.Leaf("2.0")))

	root := premis.NewExtension("objectCharacteristicsExtension")
	Must(tb, root.Set("mix:mix", outer))
	return root
}

// Record builds a record with two objects, an event, an agent and a rights
// statement, exercising nested, repeatable and extension fields.
func Record(tb testing.TB) *premis.Record {
	tb.Helper()
	r := premis.NewRecord()

	Must(tb, r.AddObject(FileObject(tb, [2]string{"type1", "value1"}, [2]string{"type2", "value2"})))

	chars := Node(tb, "objectCharacteristics",
		"compositionLevel", "0",
		"fixity", Node(tb, "fixity", "messageDigestAlgorithm", "SHA-256", "messageDigest", "abc123"),
		"size", "2048",
		"format", Node(tb, "format",
			"formatRegistry", Node(tb, "formatRegistry",
				"formatRegistryName", "PRONOM", "formatRegistryKey", "fmt/353"),
			"formatNote", "tiff",
			"formatNote", "uncompressed"),
		"objectCharacteristicsExtension", Extension(tb))
	Must(tb, r.AddObject(Node(tb, "object",
		"objectCategory", schema.CategoryFile,
		"objectIdentifier", Identifier(tb, "objectIdentifier", "local", "image-1"),
		"preservationLevel", Node(tb, "preservationLevel", "preservationLevelValue", "full"),
		"objectCharacteristics", chars,
		"originalName", "image.tif",
		"linkingEventIdentifier", Identifier(tb, "linkingEventIdentifier", "local", "event-1"))))

	Must(tb, r.AddEvent(Node(tb, "event",
		"eventIdentifier", Identifier(tb, "eventIdentifier", "local", "event-1"),
		"eventType", "ingestion",
		"eventDateTime", "2019-04-01T12:00:00Z",
		"eventOutcomeInformation", Node(tb, "eventOutcomeInformation", "eventOutcome", "success"),
		"linkingAgentIdentifier", Node(tb, "linkingAgentIdentifier",
			"linkingAgentIdentifierType", "local",
			"linkingAgentIdentifierValue", "agent-1",
			"linkingAgentRole", "executing program"),
		"linkingObjectIdentifier", Identifier(tb, "linkingObjectIdentifier", "local", "image-1"))))

	Must(tb, r.AddAgent(Node(tb, "agent",
		"agentIdentifier", Identifier(tb, "agentIdentifier", "local", "agent-1"),
		"agentName", "ingest-tool",
		"agentType", "software",
		"agentVersion", "1.2")))

	Must(tb, r.AddRights(Node(tb, "rights",
		"rightsStatement", Node(tb, "rightsStatement",
			"rightsStatementIdentifier", Identifier(tb, "rightsStatementIdentifier", "local", "rights-1"),
			"rightsBasis", "copyright",
			"copyrightInformation", Node(tb, "copyrightInformation",
				"copyrightStatus", "copyrighted",
				"copyrightJurisdiction", "us",
				"copyrightApplicableDates", Node(tb, "startAndEndDate", "startDate", "2019-01-01")),
			"rightsGranted", Node(tb, "rightsGranted", "act", "disseminate", "restriction", "none")))))

	return r
}
