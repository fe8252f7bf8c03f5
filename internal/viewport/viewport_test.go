package viewport

import (
	"errors"
	"net"
	"testing"

	"github.com/oschwald/geoip2-golang"
	"github.com/stretchr/testify/assert"
)

type fakeCity struct {
	rec *geoip2.City
	err error
}

func (f fakeCity) City(net.IP) (*geoip2.City, error) { return f.rec, f.err }

func TestFromEnvDefaults(t *testing.T) {
	p := FromEnv()
	assert.Equal(t, Defaults(), p)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("TILE_URL", "https://tiles.example/{z}/{x}/{y}.png")
	t.Setenv("MAP_CENTER_LAT", "30.5")
	t.Setenv("MAP_ZOOM", "12")
	t.Setenv("MAP_MAX_ZOOM", "6")
	p := FromEnv()
	assert.Equal(t, "https://tiles.example/{z}/{x}/{y}.png", p.TileURL)
	assert.Equal(t, 30.5, p.Center.Lat)
	assert.Equal(t, 6, p.MaxZoom)
	assert.Equal(t, 6, p.Zoom, "zoom clamped into bounds")
}

func TestFromEnvInvalidBounds(t *testing.T) {
	t.Setenv("MAP_MIN_ZOOM", "9")
	t.Setenv("MAP_MAX_ZOOM", "3")
	t.Setenv("MAP_CENTER_LON", "500")
	p := FromEnv()
	d := Defaults()
	assert.Equal(t, d.MinZoom, p.MinZoom)
	assert.Equal(t, d.MaxZoom, p.MaxZoom)
	assert.Equal(t, d.Center, p.Center)
}

func TestResolverWithoutDB(t *testing.T) {
	r := NewResolver(Defaults(), nil)
	assert.Equal(t, Defaults(), r.ForIP("8.8.8.8"))
}

func TestResolverGeoIP(t *testing.T) {
	rec := &geoip2.City{}
	rec.Location.Latitude = 48.85
	rec.Location.Longitude = 2.35
	r := NewResolver(Defaults(), fakeCity{rec: rec})

	p := r.ForIP("81.2.69.142")
	assert.Equal(t, Center{Lat: 48.85, Lon: 2.35}, p.Center)
	assert.Equal(t, "geoip", p.Source)
	assert.Equal(t, Defaults().Zoom, p.Zoom)

	assert.Equal(t, Defaults(), r.ForIP("not-an-ip"))
	assert.Equal(t, Defaults(), r.ForIP(""))
}

func TestResolverLookupError(t *testing.T) {
	r := NewResolver(Defaults(), fakeCity{err: errors.New("not found")})
	assert.Equal(t, Defaults(), r.ForIP("10.0.0.1"))
	r = NewResolver(Defaults(), fakeCity{rec: &geoip2.City{}})
	assert.Equal(t, Defaults(), r.ForIP("10.0.0.1"))
}
