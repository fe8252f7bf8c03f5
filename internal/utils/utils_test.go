package utils

import (
	"crypto/tls"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildPostgresDSNFromEnv(t *testing.T) {
	t.Setenv("PG_DSN", "")
	t.Setenv("PG_HOST", "db")
	t.Setenv("PG_USER", "realm")
	t.Setenv("PG_PASSWORD", "secret")
	assert.Equal(t, "postgres://realm:secret@db:5432/realmmap?sslmode=disable", BuildPostgresDSNFromEnv())

	t.Setenv("PG_DSN", "postgres://x@y/z")
	assert.Equal(t, "postgres://x@y/z", BuildPostgresDSNFromEnv())
	assert.True(t, PostgresEnabled())
}

func TestOpenRedisFromEnvDisabled(t *testing.T) {
	t.Setenv("REDIS_HOST", "")
	assert.Nil(t, OpenRedisFromEnv())
}

func TestOpenRedisFromEnv(t *testing.T) {
	t.Setenv("REDIS_HOST", "127.0.0.1")
	t.Setenv("REDIS_DB", "3")
	rc := OpenRedisFromEnv()
	defer rc.Close()
	assert.Equal(t, "127.0.0.1:6379", rc.Options().Addr)
	assert.Equal(t, 3, rc.Options().DB)
}

func TestEnsureSelfSignedCert(t *testing.T) {
	dir := t.TempDir()
	cert := dir + "/certs/server.crt"
	key := dir + "/certs/server.key"
	assert.NoError(t, EnsureSelfSignedCert(cert, key, "realm-map.local"))
	_, err := tls.LoadX509KeyPair(cert, key)
	assert.NoError(t, err)
	assert.NoError(t, EnsureSelfSignedCert(cert, key, "realm-map.local"))
}
