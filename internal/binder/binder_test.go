package binder

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"realm-map/internal/realm"
)

type fakeLayer struct {
	styles  []Style
	tooltip string
	enter   func()
	leave   func()
}

func (l *fakeLayer) SetStyle(s Style)        { l.styles = append(l.styles, s) }
func (l *fakeLayer) BindTooltip(text string) { l.tooltip = text }
func (l *fakeLayer) OnHover(enter, leave func()) {
	l.enter, l.leave = enter, leave
}
func (l *fakeLayer) current() Style { return l.styles[len(l.styles)-1] }

type fakeSurface struct {
	layers []*fakeLayer
	err    error
}

func (s *fakeSurface) AddRegions(c *realm.Collection, style StyleFunc, onEach FeatureFunc) error {
	if s.err != nil {
		return s.err
	}
	for _, f := range c.Features {
		l := &fakeLayer{}
		l.SetStyle(style(f))
		s.layers = append(s.layers, l)
		onEach(f, l)
	}
	return nil
}

func feature(modern, alt string) realm.Feature {
	return realm.Feature{Type: "Feature", Properties: map[string]any{
		realm.PropModernName:    modern,
		realm.PropAlternateName: alt,
	}}
}

func TestTooltipText(t *testing.T) {
	assert.Equal(t, "Bharata Khanda\nModern: India", TooltipText(feature("India", "Bharata Khanda")))
	assert.Equal(t, "Atlantis", TooltipText(feature("Atlantis", "Atlantis")))
	assert.Equal(t, "Unknown Realm", TooltipText(feature("Unknown Realm", "Unknown Realm")))
}

func TestHoverSymmetric(t *testing.T) {
	l := &fakeLayer{}
	b := Bind(feature("India", "Bharata Khanda"), l)
	assert.Equal(t, DefaultStyle, l.current())
	assert.Equal(t, "Bharata Khanda\nModern: India", l.tooltip)

	l.enter()
	assert.Equal(t, HighlightStyle, l.current())
	assert.True(t, b.Hovered())
	l.leave()
	assert.Equal(t, DefaultStyle, l.current())
	assert.False(t, b.Hovered())
}

func TestHoverIdempotent(t *testing.T) {
	l := &fakeLayer{}
	Bind(feature("Nepal", "Nepala"), l)
	for i := 0; i < 5; i++ {
		l.enter()
		l.enter()
		assert.Equal(t, HighlightStyle, l.current())
		l.leave()
		l.leave()
		assert.Equal(t, DefaultStyle, l.current())
	}
}

func TestHighlightEmphasizes(t *testing.T) {
	assert.Greater(t, HighlightStyle.Weight, DefaultStyle.Weight)
	assert.Greater(t, HighlightStyle.FillOpacity, DefaultStyle.FillOpacity)
}

func TestStyleDataIndependent(t *testing.T) {
	assert.Equal(t, StyleFor(feature("India", "Bharata Khanda")), StyleFor(feature("Atlantis", "Atlantis")))
}

func TestMount(t *testing.T) {
	s := &fakeSurface{}
	c := &realm.Collection{Features: []realm.Feature{feature("India", "Bharata Khanda"), feature("Atlantis", "Atlantis")}}
	bs, err := Mount(s, c)
	require.NoError(t, err)
	require.Len(t, bs, 2)
	assert.Equal(t, "India", bs[0].Feature().ModernName())
	assert.Equal(t, "Atlantis", s.layers[1].tooltip)

	bs[1].Enter()
	assert.Equal(t, HighlightStyle, s.layers[1].current())
	assert.Equal(t, DefaultStyle, s.layers[0].current())
}

func TestMountSurfaceError(t *testing.T) {
	want := errors.New("surface not mounted")
	_, err := Mount(&fakeSurface{err: want}, &realm.Collection{})
	assert.ErrorIs(t, err, want)
}
