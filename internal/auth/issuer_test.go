package auth

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"petshop-api/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHMACKeyring_RejectsShortKey(t *testing.T) {
	t.Parallel()
	_, err := NewHMACKeyring([]byte("short"), testIdentity)
	assert.ErrorIs(t, err, ErrConfiguration)

	_, err = NewHMACKeyring([]byte(testSecret), "")
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestNewKeyring_FromConfig(t *testing.T) {
	t.Parallel()

	keys, err := NewKeyring(config.AuthConfig{Secret: testSecret, Issuer: testIdentity})
	require.NoError(t, err)
	assert.Equal(t, "HS256", keys.Algorithm())
	assert.Equal(t, testIdentity, keys.Identity())

	_, err = NewKeyring(config.AuthConfig{Issuer: testIdentity})
	assert.ErrorIs(t, err, ErrConfiguration)

	_, err = NewKeyring(config.AuthConfig{Secret: testSecret, Issuer: testIdentity, Algorithm: "ES256"})
	assert.ErrorIs(t, err, ErrConfiguration)

	_, err = NewKeyring(config.AuthConfig{Issuer: testIdentity, Algorithm: config.AlgorithmRS256})
	assert.ErrorIs(t, err, ErrConfiguration)

	bad := filepath.Join(t.TempDir(), "key.pem")
	require.NoError(t, os.WriteFile(bad, []byte("not a pem"), 0o600))
	_, err = NewKeyring(config.AuthConfig{Issuer: testIdentity, Algorithm: config.AlgorithmRS256, PrivateKeyFile: bad})
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestNewIssuer_ValidatesTimings(t *testing.T) {
	t.Parallel()
	keys, err := NewHMACKeyring([]byte(testSecret), testIdentity)
	require.NoError(t, err)

	_, err = NewIssuer(nil, time.Hour, 0)
	assert.ErrorIs(t, err, ErrConfiguration)
	_, err = NewIssuer(keys, 0, 0)
	assert.ErrorIs(t, err, ErrConfiguration)
	_, err = NewIssuer(keys, time.Minute, time.Minute)
	assert.ErrorIs(t, err, ErrConfiguration)
	_, err = NewIssuer(keys, time.Hour, -time.Second)
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestIssue_RequiresUID(t *testing.T) {
	t.Parallel()
	iss, _ := newTestPair(t, testSecret)

	_, err := iss.Issue(t0, "")
	assert.Error(t, err)
}

func TestIssue_StableKeyAcrossCalls(t *testing.T) {
	t.Parallel()
	iss, ver := newTestPair(t, testSecret)

	// Tokens minted at different times all verify under the one configured key.
	for i := 0; i < 5; i++ {
		at := t0.Add(time.Duration(i) * time.Minute)
		tok, err := iss.Issue(at, "42")
		require.NoError(t, err)
		_, err = ver.Verify(tok, at.Add(2*time.Minute))
		require.NoError(t, err)
	}
}

func TestNewManager_SharesKeyring(t *testing.T) {
	t.Parallel()
	m, err := NewManager(config.AuthConfig{
		Secret:    testSecret,
		Issuer:    testIdentity,
		TTL:       15 * time.Minute,
		NotBefore: time.Minute,
	})
	require.NoError(t, err)
	assert.Equal(t, 15*time.Minute, m.TTL())

	tok, err := m.Issue(t0, "42")
	require.NoError(t, err)
	claims, err := m.Verify(tok, t0.Add(5*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, UID("42"), claims.UID)
}

func TestUID_JSON(t *testing.T) {
	t.Parallel()

	cases := map[UID]string{
		"42":  `42`,
		"-1":  `-1`,
		"007": `"007"`,
		"abc": `"abc"`,
		"":    `""`,
		"1e3": `"1e3"`,
		"42 ": `"42 "`,
	}
	for uid, want := range cases {
		b, err := uid.MarshalJSON()
		require.NoError(t, err)
		assert.Equal(t, want, string(b), "uid %q", uid)

		var back UID
		require.NoError(t, back.UnmarshalJSON(b))
		assert.Equal(t, uid, back)
	}

	var u UID
	assert.Error(t, u.UnmarshalJSON([]byte(`1.5`)))
	assert.Error(t, u.UnmarshalJSON([]byte(`true`)))
}
