package session

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kazumi-edu/kazumi-comm-gateway/pkg/config"
)

func testCodec() *CookieCodec {
	return NewCookieCodec(config.SessionConfig{
		CookieName:   "kazumi_session",
		CookieSecret: "test-secret",
		TTL:          time.Hour,
	})
}

func TestCookieCodecRoundTrip(t *testing.T) {
	codec := testCodec()
	sid := codec.NewSessionID()

	signed, err := codec.Issue(sid)
	require.NoError(t, err)
	require.NotEmpty(t, signed)

	parsed, err := codec.Parse(signed)
	require.NoError(t, err)
	assert.Equal(t, sid, parsed)
}

func TestCookieCodecRejectsTampering(t *testing.T) {
	codec := testCodec()
	signed, err := codec.Issue(codec.NewSessionID())
	require.NoError(t, err)

	tampered := signed[:len(signed)-2] + "xx"
	_, err = codec.Parse(tampered)
	assert.Error(t, err)
}

func TestCookieCodecRejectsForeignSecret(t *testing.T) {
	codec := testCodec()
	other := NewCookieCodec(config.SessionConfig{CookieName: "kazumi_session", CookieSecret: "other-secret", TTL: time.Hour})

	signed, err := other.Issue(other.NewSessionID())
	require.NoError(t, err)

	_, err = codec.Parse(signed)
	assert.Error(t, err)
}

func TestCookieCodecRejectsGarbage(t *testing.T) {
	codec := testCodec()
	_, err := codec.Parse("not-a-token")
	assert.Error(t, err)
	_, err = codec.Parse(strings.Repeat("a.", 3))
	assert.Error(t, err)
}

func TestNewSessionIDsAreUnique(t *testing.T) {
	codec := testCodec()
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		sid := codec.NewSessionID()
		_, dup := seen[sid]
		require.False(t, dup)
		seen[sid] = struct{}{}
	}
}
