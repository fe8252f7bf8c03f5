package realm

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"realm-map/internal/naming"
)

func collectionOf(props ...map[string]any) *Collection {
	c := &Collection{Type: "FeatureCollection"}
	for _, p := range props {
		c.Features = append(c.Features, Feature{
			Type:       "Feature",
			Properties: p,
			Geometry:   json.RawMessage(`{"type":"Point","coordinates":[0,0]}`),
		})
	}
	return c
}

func TestEnrichKnownName(t *testing.T) {
	out := Enrich(collectionOf(map[string]any{"ADMIN": "India"}), naming.Builtin())
	require.Equal(t, 1, out.Len())
	assert.Equal(t, "India", out.Features[0].ModernName())
	assert.Equal(t, "Bharata Khanda", out.Features[0].AlternateName())
}

func TestEnrichUnmappedName(t *testing.T) {
	out := Enrich(collectionOf(map[string]any{"ADMIN": "Atlantis"}), naming.Builtin())
	f := out.Features[0]
	assert.Equal(t, "Atlantis", f.ModernName())
	assert.Equal(t, "Atlantis", f.AlternateName())
}

func TestEnrichMissingNames(t *testing.T) {
	in := collectionOf(
		map[string]any{},
		map[string]any{"NAME_LONG": nil, "ADMIN": "", "SOVEREIGNT": "  "},
		map[string]any{"ADMIN": 42},
		nil,
	)
	out := Enrich(in, naming.Builtin())
	require.Equal(t, in.Len(), out.Len())
	for _, f := range out.Features {
		assert.Equal(t, UnknownRealm, f.ModernName())
		assert.Equal(t, UnknownRealm, f.AlternateName())
	}
}

func TestEnrichPriorityOrder(t *testing.T) {
	tbl := naming.MustBuild([]naming.Entry{{Modern: "Long", Alternate: "L"}, {Modern: "Admin", Alternate: "A"}})
	out := Enrich(collectionOf(
		map[string]any{"NAME_LONG": "Long", "ADMIN": "Admin", "SOVEREIGNT": "Sov"},
		map[string]any{"ADMIN": "Admin", "SOVEREIGNT": "Sov"},
		map[string]any{"SOVEREIGNT": "Sov"},
	), tbl)
	assert.Equal(t, "Long", out.Features[0].ModernName())
	assert.Equal(t, "L", out.Features[0].AlternateName())
	assert.Equal(t, "Admin", out.Features[1].ModernName())
	assert.Equal(t, "A", out.Features[1].AlternateName())
	assert.Equal(t, "Sov", out.Features[2].ModernName())
	assert.Equal(t, "Sov", out.Features[2].AlternateName())
}

func TestEnrichIdentityMapping(t *testing.T) {
	tbl := naming.MustBuild([]naming.Entry{{Modern: "Egypt", Alternate: "Egypt"}})
	out := Enrich(collectionOf(map[string]any{"ADMIN": "Egypt"}), tbl)
	assert.Equal(t, out.Features[0].ModernName(), out.Features[0].AlternateName())
}

func TestEnrichDoesNotMutateInput(t *testing.T) {
	nested := map[string]any{"code": "IN"}
	in := collectionOf(map[string]any{"ADMIN": "India", "meta": nested, "tags": []any{"a"}})
	geom := append(json.RawMessage(nil), in.Features[0].Geometry...)

	out := Enrich(in, naming.Builtin())

	_, has := in.Features[0].Properties[PropModernName]
	assert.False(t, has, "input must not gain derived fields")

	out.Features[0].Properties["meta"].(map[string]any)["code"] = "XX"
	out.Features[0].Properties["tags"].([]any)[0] = "z"
	out.Features[0].Geometry[0] = '['
	assert.Equal(t, "IN", nested["code"])
	assert.Equal(t, "a", in.Features[0].Properties["tags"].([]any)[0])
	assert.Equal(t, geom, in.Features[0].Geometry)
}

func TestEnrichPreservesOrderAndProperties(t *testing.T) {
	in := collectionOf(
		map[string]any{"ADMIN": "Nepal", "POP_EST": 3.0e7},
		map[string]any{"ADMIN": "Atlantis"},
		map[string]any{"ADMIN": "India"},
	)
	out := Enrich(in, naming.Builtin())
	require.Equal(t, 3, out.Len())
	assert.Equal(t, "Nepal", out.Features[0].ModernName())
	assert.Equal(t, 3.0e7, out.Features[0].Properties["POP_EST"])
	assert.Equal(t, "Atlantis", out.Features[1].ModernName())
	assert.Equal(t, "India", out.Features[2].ModernName())
}

func TestEnrichIdempotent(t *testing.T) {
	in := collectionOf(map[string]any{"ADMIN": "India"}, map[string]any{"ADMIN": "Atlantis"}, map[string]any{})
	once := Enrich(in, naming.Builtin())
	twice := Enrich(once, naming.Builtin())
	for i := range once.Features {
		assert.Equal(t, once.Features[i].ModernName(), twice.Features[i].ModernName())
		assert.Equal(t, once.Features[i].AlternateName(), twice.Features[i].AlternateName())
	}
}

func TestEnrichNilInput(t *testing.T) {
	out := Enrich(nil, naming.Builtin())
	require.NotNil(t, out)
	assert.Zero(t, out.Len())
}

func TestSummarize(t *testing.T) {
	out := Enrich(collectionOf(
		map[string]any{"ADMIN": "India"},
		map[string]any{"ADMIN": "Atlantis"},
		map[string]any{},
	), naming.Builtin())
	s := Summarize(out, naming.Builtin())
	assert.Equal(t, Stats{Total: 3, Mapped: 1, Unmapped: 2, Unknown: 1}, s)

	assert.Equal(t, Stats{Total: 3, Mapped: 0, Unmapped: 3, Unknown: 1}, Summarize(out, nil))
	assert.Equal(t, Stats{}, Summarize(nil, naming.Builtin()))
}

func TestSummarizeIdentityMapping(t *testing.T) {
	table := naming.MustBuild([]naming.Entry{
		{Modern: "Egypt", Alternate: "Egypt"},
		{Modern: "India", Alternate: "Bharata Khanda"},
	})
	out := Enrich(collectionOf(
		map[string]any{"ADMIN": "Egypt"},
		map[string]any{"ADMIN": "India"},
		map[string]any{"ADMIN": "Atlantis"},
	), table)
	require.Equal(t, "Egypt", out.Features[0].AlternateName())
	assert.Equal(t, Stats{Total: 3, Mapped: 2, Unmapped: 1}, Summarize(out, table))
}

func TestDecode(t *testing.T) {
	c, err := Decode(strings.NewReader(`{"type":"FeatureCollection","features":[
		{"type":"Feature","properties":{"ADMIN":"India"},"geometry":{"type":"Polygon","coordinates":[]}},
		{"geometry":null}
	]}`))
	require.NoError(t, err)
	require.Equal(t, 2, c.Len())
	assert.Equal(t, "India", c.Features[0].Properties["ADMIN"])
	assert.Equal(t, "Feature", c.Features[1].Type)
	assert.NotNil(t, c.Features[1].Properties)
}

func TestDecodeMalformed(t *testing.T) {
	cases := []string{
		`not json`,
		`{"type":"Feature","features":[]}`,
		`{"type":"FeatureCollection"}`,
		`{"type":"FeatureCollection","features":{}}`,
		`{"type":"FeatureCollection","features":[1]}`,
	}
	for _, body := range cases {
		_, err := Decode(strings.NewReader(body))
		assert.ErrorIs(t, err, ErrMalformed, body)
	}
}
