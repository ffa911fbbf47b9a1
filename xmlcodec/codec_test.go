package xmlcodec_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/birkland/premis"
	"github.com/birkland/premis/internal/fixture"
	"github.com/birkland/premis/schema"
	"github.com/birkland/premis/xmlcodec"
	"github.com/go-test/deep"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

func newCodec(t *testing.T, cfg xmlcodec.Config) *xmlcodec.Codec {
	t.Helper()
	if cfg.Schema == nil {
		cfg.Schema = schema.V3
	}
	c, err := xmlcodec.New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestNewNoSchema(t *testing.T) {
	if _, err := xmlcodec.New(xmlcodec.Config{}); err == nil {
		t.Errorf("missing schema should have thrown an error")
	}
}

func TestEncodeSchemaOrder(t *testing.T) {
	n, err := premis.Build(schema.V3, "formatDesignation", func(n *premis.Node) error {
		if err := n.Set("formatVersion", premis.Leaf("1.7")); err != nil {
			return err
		}
		return n.Set("formatName", premis.Leaf("PDF"))
	})
	fixture.Must(t, err)

	expected := &xmlcodec.Element{
		Name: "formatDesignation",
		Children: []*xmlcodec.Element{
			{Name: "formatName", Text: "PDF"},
			{Name: "formatVersion", Text: "1.7"},
		},
	}

	if diffs := deep.Equal(newCodec(t, xmlcodec.Config{}).Encode(n), expected); diffs != nil {
		t.Error(diffs)
	}
}

func TestEncodeRepeatableSiblings(t *testing.T) {
	obj := fixture.FileObject(t, [2]string{"type1", "value1"}, [2]string{"type2", "value2"})
	el := newCodec(t, xmlcodec.Config{}).Encode(obj)

	var names []string
	for _, c := range el.Children {
		names = append(names, c.Name)
	}
	expected := []string{"objectIdentifier", "objectIdentifier", "objectCharacteristics"}
	if diffs := deep.Equal(names, expected); diffs != nil {
		t.Error(diffs)
	}

	if category, _ := el.Attribute("xsi:type"); category != schema.CategoryFile {
		t.Errorf("category should be an attribute, got %q", category)
	}
}

// Scenario A: an object with two identifiers and a format survives a trip
// through XML text.
func TestObjectRoundTrip(t *testing.T) {
	c := newCodec(t, xmlcodec.Config{Namespace: xmlcodec.Namespace})

	r := premis.NewRecord()
	fixture.Must(t, r.AddObject(fixture.FileObject(t, [2]string{"type1", "value1"}, [2]string{"type2", "value2"})))

	var buf bytes.Buffer
	fixture.Must(t, c.EncodeRecord(r).Serialize(&buf))

	root, err := xmlcodec.Parse(&buf)
	if err != nil {
		t.Fatal(err)
	}

	decoded, err := c.DecodeRecord(root)
	if err != nil {
		t.Fatalf("%+v", err)
	}

	objects := decoded.Objects()
	if len(objects) != 1 {
		t.Fatalf("expected one object, got %d", len(objects))
	}
	obj := objects[0]

	if obj.Text("objectCategory") != schema.CategoryFile {
		t.Errorf("expected category file, got %q", obj.Text("objectCategory"))
	}

	ids := map[string]string{}
	for _, id := range obj.Children("objectIdentifier") {
		ids[id.Text("objectIdentifierType")] = id.Text("objectIdentifierValue")
	}
	if diffs := deep.Equal(ids, map[string]string{"type1": "value1", "type2": "value2"}); diffs != nil {
		t.Error(diffs)
	}

	format := obj.Children("objectCharacteristics")[0].Children("format")[0]
	if format.Child("formatDesignation").Text("formatName") != "PDF" {
		t.Errorf("format was not decoded")
	}

	if !decoded.Equal(r) {
		t.Errorf("decoded record differs from the original")
	}
}

// Scenario B: a file object without characteristics is malformed
func TestDecodeMissingRequired(t *testing.T) {
	doc := `<?xml version="1.0" encoding="UTF-8"?>
<premis xmlns="http://www.loc.gov/premis/v3" xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance" version="3.0">
  <object xsi:type="file">
    <objectIdentifier>
      <objectIdentifierType>local</objectIdentifierType>
      <objectIdentifierValue>1</objectIdentifierValue>
    </objectIdentifier>
  </object>
</premis>`

	root, err := xmlcodec.Parse(strings.NewReader(doc))
	if err != nil {
		t.Fatal(err)
	}

	c := newCodec(t, xmlcodec.Config{})
	r, err := c.DecodeRecord(root)
	if r != nil {
		t.Errorf("no record should be returned")
	}
	if !errors.Is(err, premis.ErrMalformed) || !errors.Is(err, premis.ErrCardinality) {
		t.Fatalf("expected a malformed document cardinality error, got %v", err)
	}

	var de *premis.DecodeError
	if !errors.As(err, &de) || de.Path != "/premis/object[0]" {
		t.Errorf("expected the error at /premis/object[0], got %v", err)
	}

	n, err := c.Decode(root.Children[0], "object")
	if n != nil || !errors.Is(err, premis.ErrCardinality) {
		t.Errorf("expected a cardinality error decoding the object alone, got %v", err)
	}
}

func TestDecodeMalformed(t *testing.T) {
	cases := []struct {
		name  string
		doc   string
		cause error
	}{
		{"duplicate singular", `<formatDesignation>
			<formatName>PDF</formatName><formatName>TIFF</formatName>
		</formatDesignation>`, premis.ErrCardinality},
		{"children in text field", `<formatDesignation>
			<formatName><b>PDF</b></formatName>
		</formatDesignation>`, premis.ErrSchemaViolation},
		{"text in container", `<formatDesignation>PDF</formatDesignation>`, premis.ErrSchemaViolation},
		{"missing required", `<formatDesignation><formatVersion>1</formatVersion></formatDesignation>`,
			premis.ErrCardinality},
	}

	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			root, err := xmlcodec.Parse(strings.NewReader(c.doc))
			if err != nil {
				t.Fatal(err)
			}
			_, err = newCodec(t, xmlcodec.Config{}).Decode(root, "formatDesignation")
			if !errors.Is(err, premis.ErrMalformed) {
				t.Errorf("expected a malformed document, got %v", err)
			}
			if !errors.Is(err, c.cause) {
				t.Errorf("expected cause %v, got %v", c.cause, err)
			}
		})
	}
}

func TestDecodeInapplicable(t *testing.T) {
	doc := `<object xsi:type="bitstream">
  <objectIdentifier>
    <objectIdentifierType>local</objectIdentifierType>
    <objectIdentifierValue>1</objectIdentifierValue>
  </objectIdentifier>
  <preservationLevel><preservationLevelValue>full</preservationLevelValue></preservationLevel>
</object>`

	root, err := xmlcodec.Parse(strings.NewReader(doc))
	if err != nil {
		t.Fatal(err)
	}
	_, err = newCodec(t, xmlcodec.Config{}).Decode(root, "object")
	if !errors.Is(err, premis.ErrMalformed) || !errors.Is(err, premis.ErrInapplicable) {
		t.Errorf("expected an inapplicable field error, got %v", err)
	}
}

func TestRecordRoundTrip(t *testing.T) {
	for name, cfg := range map[string]xmlcodec.Config{
		"default":    {},
		"qualified":  {Namer: xmlcodec.Qualified("premis"), Namespace: xmlcodec.Namespace},
		"sequential": {Sequential: true},
	} {
		cfg := cfg
		t.Run(name, func(t *testing.T) {
			c := newCodec(t, cfg)
			r := fixture.Record(t)

			var buf bytes.Buffer
			fixture.Must(t, c.EncodeRecord(r).Serialize(&buf))

			root, err := xmlcodec.Parse(&buf)
			if err != nil {
				t.Fatal(err)
			}
			decoded, err := c.DecodeRecord(root)
			if err != nil {
				t.Fatalf("%+v", err)
			}
			if !decoded.Equal(r) {
				t.Errorf("record did not survive the round trip")
			}
		})
	}
}

func TestExtensionRoundTrip(t *testing.T) {
	c := newCodec(t, xmlcodec.Config{Namer: xmlcodec.Qualified("premis")})

	chars := fixture.Node(t, "objectCharacteristics",
		"format", fixture.Format(t, "TIFF", "6.0"),
		"objectCharacteristicsExtension", fixture.Extension(t))

	el := c.Encode(chars)
	ext := el.Children[len(el.Children)-1]
	if ext.Name != "premis:objectCharacteristicsExtension" {
		t.Errorf("extension point should be named by the schema, got %s", ext.Name)
	}
	if ext.Children[0].Name != "mix:mix" {
		t.Errorf("extension keys should be written as is, got %s", ext.Children[0].Name)
	}

	var buf bytes.Buffer
	fixture.Must(t, el.Serialize(&buf))
	if !strings.Contains(buf.String(), "<mix:note>second</mix:note>") {
		t.Errorf("serialized extension is missing a note:\n%s", buf.String())
	}

	root, err := xmlcodec.Parse(&buf)
	if err != nil {
		t.Fatal(err)
	}
	decoded, err := c.Decode(root, "objectCharacteristics")
	if err != nil {
		t.Fatalf("%+v", err)
	}
	if !decoded.Equal(chars) {
		t.Errorf("extension did not survive the round trip")
	}

	inner := decoded.Get("objectCharacteristicsExtension").(premis.List)[0].(*premis.Extension).
		Sub("mix:mix").Sub("mix:BasicImageInformation").Sub("mix:BasicImageCharacteristics")
	notes := inner.Get("mix:note")
	if diffs := deep.Equal(notes, []premis.ExtValue{premis.Leaf("first"), premis.Leaf("second")}); diffs != nil {
		t.Error(diffs)
	}
}

func TestOneOfKinds(t *testing.T) {
	table := schema.MustNew(
		schema.Kind{Name: "holder", Fields: []schema.Field{
			schema.Nested("either", schema.OptionalMany, "alpha", "beta"),
		}},
		schema.Kind{Name: "alpha", Fields: []schema.Field{schema.Text("a", schema.RequiredOne)}},
		schema.Kind{Name: "beta", Fields: []schema.Field{schema.Text("b", schema.RequiredOne)}},
	)

	build := func(kind, field, value string) *premis.Node {
		n, err := premis.Build(table, kind, func(n *premis.Node) error {
			return n.Set(field, premis.Leaf(value))
		})
		fixture.Must(t, err)
		return n
	}

	holder, err := premis.Build(table, "holder", func(n *premis.Node) error {
		if err := n.Add("either", build("alpha", "a", "1")); err != nil {
			return err
		}
		return n.Add("either", build("beta", "b", "2"))
	})
	fixture.Must(t, err)

	c := newCodec(t, xmlcodec.Config{Schema: table})
	decoded, err := c.Decode(c.Encode(holder), "holder")
	if err != nil {
		t.Fatalf("%+v", err)
	}

	var kinds []string
	for _, child := range decoded.Children("either") {
		kinds = append(kinds, child.Kind())
	}
	if diffs := deep.Equal(kinds, []string{"alpha", "beta"}); diffs != nil {
		t.Error(diffs)
	}
	if !decoded.Equal(holder) {
		t.Errorf("one-of field did not survive the round trip")
	}
}

func TestOverrideRoundTrip(t *testing.T) {
	c := newCodec(t, xmlcodec.Config{Namer: xmlcodec.Qualified("premis"), Namespace: xmlcodec.Namespace})

	obj := fixture.FileObject(t, [2]string{"local", "1"})
	fixture.Must(t, obj.SetOverride("vendorNote", premis.Leaf("blue")))
	fixture.Must(t, obj.SetOverride("vendorTags", premis.Strings("a", "b")))
	fixture.Must(t, obj.SetOverride("vendorData", fixture.Extension(t)))

	r := premis.NewRecord()
	fixture.Must(t, r.AddObject(obj))

	el := c.Encode(obj)
	var names []string
	for _, child := range el.Children[len(el.Children)-4:] {
		names = append(names, child.Name)
	}
	expected := []string{"premis:vendorNote", "premis:vendorTags", "premis:vendorTags", "premis:vendorData"}
	if diffs := deep.Equal(names, expected); diffs != nil {
		t.Errorf("overrides should be encoded last, in order: %v", diffs)
	}

	var buf bytes.Buffer
	fixture.Must(t, c.EncodeRecord(r).Serialize(&buf))
	root, err := xmlcodec.Parse(&buf)
	if err != nil {
		t.Fatal(err)
	}
	decoded, err := c.DecodeRecord(root)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	if !decoded.Equal(r) {
		t.Errorf("overrides did not survive the round trip")
	}

	got := decoded.Objects()[0]
	if diffs := deep.Equal(got.Fields()[len(got.Fields())-3:], []string{"vendorNote", "vendorTags", "vendorData"}); diffs != nil {
		t.Errorf("overrides should be decoded in document order: %v", diffs)
	}
	if _, ok := got.Get("vendorData").(*premis.Extension); !ok {
		t.Errorf("element with children should decode as an extension, got %T", got.Get("vendorData"))
	}
}

func TestDecodeRecordLogging(t *testing.T) {
	doc := `<premis>
  <object xsi:type="file">
    <objectIdentifier>
      <objectIdentifierType>local</objectIdentifierType>
      <objectIdentifierValue>1</objectIdentifierValue>
    </objectIdentifier>
    <objectCharacteristics>
      <format><formatDesignation><formatName>PDF</formatName></formatDesignation></format>
    </objectCharacteristics>
    <junk/>
  </object>
  <agent>
    <agentIdentifier>
      <agentIdentifierType>local</agentIdentifierType>
      <agentIdentifierValue>agent-1</agentIdentifierValue>
    </agentIdentifier>
    <junk/>
  </agent>
  <comment>not an entity</comment>
</premis>`

	root, err := xmlcodec.Parse(strings.NewReader(doc))
	if err != nil {
		t.Fatal(err)
	}

	var logs bytes.Buffer
	logger := zerolog.New(&logs).Level(zerolog.DebugLevel)
	c := newCodec(t, xmlcodec.Config{Logger: &logger})

	for i := 0; i < 10; i++ {
		r, err := c.DecodeRecord(root)
		if err != nil {
			t.Fatalf("%+v", err)
		}
		if !r.Objects()[0].Has("junk") || !r.Agents()[0].Has("junk") {
			t.Errorf("undeclared elements should be kept as overrides")
		}
	}

	for _, expected := range []string{
		`"path":"/premis/object[0]"`,
		`"path":"/premis/agent[0]"`,
		"decoded undeclared element as override",
		"skipping non-entity element",
		"decoded record",
	} {
		if !strings.Contains(logs.String(), expected) {
			t.Errorf("log is missing %s:\n%s", expected, logs.String())
		}
	}
}

func TestDecodeEmptyExtension(t *testing.T) {
	doc := `<objectCharacteristics>
  <format><formatDesignation><formatName>PDF</formatName></formatDesignation></format>
  <objectCharacteristicsExtension/>
</objectCharacteristics>`

	root, err := xmlcodec.Parse(strings.NewReader(doc))
	if err != nil {
		t.Fatal(err)
	}
	_, err = newCodec(t, xmlcodec.Config{}).Decode(root, "objectCharacteristics")
	if !errors.Is(err, premis.ErrMalformed) || !errors.Is(err, premis.ErrCardinality) {
		t.Errorf("empty extension should be malformed, got %v", err)
	}
}

func TestDecodeDeterministic(t *testing.T) {
	doc := `<premis:premis xmlns:premis="http://www.loc.gov/premis/v3">
  <premis:agent><premis:agentName>nobody</premis:agentName></premis:agent>
  <premis:event><premis:eventType>ingestion</premis:eventType></premis:event>
</premis:premis>`

	root, err := xmlcodec.Parse(strings.NewReader(doc))
	if err != nil {
		t.Fatal(err)
	}

	c := newCodec(t, xmlcodec.Config{})
	_, first := c.DecodeRecord(root)
	if first == nil {
		t.Fatalf("expected an error")
	}
	for i := 0; i < 20; i++ {
		if _, err := c.DecodeRecord(root); err == nil || err.Error() != first.Error() {
			t.Fatalf("decode is not deterministic: %v vs %v", err, first)
		}
	}
	if !strings.Contains(first.Error(), "/premis/event[0]") {
		t.Errorf("expected the event error to win, got %v", first)
	}
}

func TestDecodeWrongRoot(t *testing.T) {
	_, err := newCodec(t, xmlcodec.Config{}).DecodeRecord(&xmlcodec.Element{Name: "mets"})
	if !errors.Is(err, premis.ErrMalformed) {
		t.Errorf("expected a malformed document, got %v", err)
	}
}
