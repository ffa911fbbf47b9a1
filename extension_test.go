package premis_test

import (
	"testing"

	"github.com/birkland/premis"
	"github.com/birkland/premis/internal/fixture"
	"github.com/go-test/deep"
	"github.com/pkg/errors"
)

func TestExtensionSetAdd(t *testing.T) {
	e := premis.NewExtension("vendor")
	fixture.Must(t, e.Set("a", premis.Leaf("1")))
	fixture.Must(t, e.Set("a", premis.Leaf("2")))
	fixture.Must(t, e.Add("b", premis.Leaf("x")))
	fixture.Must(t, e.Add("b", premis.Leaf("y")))

	if diffs := deep.Equal(e.Keys(), []string{"a", "b"}); diffs != nil {
		t.Error(diffs)
	}
	if diffs := deep.Equal(e.Get("a"), []premis.ExtValue{premis.Leaf("2")}); diffs != nil {
		t.Errorf("set should overwrite: %v", diffs)
	}
	if diffs := deep.Equal(e.Get("b"), []premis.ExtValue{premis.Leaf("x"), premis.Leaf("y")}); diffs != nil {
		t.Errorf("add should append: %v", diffs)
	}
	if e.Get("missing") != nil {
		t.Errorf("missing key should have no values")
	}
}

func TestExtensionNesting(t *testing.T) {
	e := fixture.Extension(t)

	inner := e.Sub("mix:mix").Sub("mix:BasicImageInformation").Sub("mix:BasicImageCharacteristics")
	if inner == nil {
		t.Fatalf("could not navigate three levels deep")
	}
	if inner.Text("mix:imageWidth") != "1024" {
		t.Errorf("wrong width %s", inner.Text("mix:imageWidth"))
	}
	if len(inner.Get("mix:note")) != 2 {
		t.Errorf("expected two notes")
	}
}

func TestExtensionErrors(t *testing.T) {
	e := premis.NewExtension("vendor")
	if err := e.Set("", premis.Leaf("x")); err == nil {
		t.Errorf("empty key should have thrown an error")
	}
	if err := e.Add("k", nil); err == nil {
		t.Errorf("nil value should have thrown an error")
	}

	if err := e.Add("empty", premis.NewExtension("empty")); !errors.Is(err, premis.ErrCardinality) {
		t.Errorf("empty subtree should have been refused, got %v", err)
	}

	child := premis.NewExtension("child")
	fixture.Must(t, child.Add("k", premis.Leaf("v")))
	fixture.Must(t, e.Add("child", child))
	if err := child.Add("loop", e); !errors.Is(err, premis.ErrShared) {
		t.Errorf("cycle should have been refused, got %v", err)
	}

	other := premis.NewExtension("other")
	if err := other.Add("child", child); !errors.Is(err, premis.ErrShared) {
		t.Errorf("second parent should have been refused, got %v", err)
	}
}

func TestExtensionInNode(t *testing.T) {
	ext := fixture.Extension(t)
	n := fixture.Node(t, "creatingApplication", "creatingApplicationExtension", ext)

	got, ok := n.Get("creatingApplicationExtension").(premis.List)
	if !ok || len(got) != 1 || got[0] != premis.Value(ext) {
		t.Errorf("extension was not stored as a single element list")
	}
}

func TestExtensionSetSameValue(t *testing.T) {
	e := premis.NewExtension("vendor")
	sub := premis.NewExtension("sub")
	fixture.Must(t, sub.Add("k", premis.Leaf("v")))

	fixture.Must(t, e.Set("sub", sub))
	if err := e.Set("sub", sub); err != nil {
		t.Fatalf("setting the stored value again should succeed, got %v", err)
	}
	if diffs := deep.Equal(e.Get("sub"), []premis.ExtValue{sub}); diffs != nil {
		t.Error(diffs)
	}

	// A failed set keeps the previous value owned
	loop := premis.NewExtension("loop")
	fixture.Must(t, loop.Add("parent", e))
	if err := e.Set("sub", loop); !errors.Is(err, premis.ErrShared) {
		t.Fatalf("cycle should have been refused, got %v", err)
	}
	if err := premis.NewExtension("other").Add("sub", sub); !errors.Is(err, premis.ErrShared) {
		t.Errorf("previous value should still be owned, got %v", err)
	}
}
