package credentials

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestPlaintext(t *testing.T) {
	v := Plaintext{}
	stored, err := v.Seal("hunter2")
	require.NoError(t, err)
	assert.Equal(t, "hunter2", stored)

	assert.True(t, v.Verify(stored, "hunter2"))
	assert.False(t, v.Verify(stored, "Hunter2"))
	assert.False(t, v.Verify(stored, "hunter2 "))
	assert.False(t, v.Verify(stored, ""))
}

func TestBcrypt(t *testing.T) {
	v := Bcrypt{Cost: bcrypt.MinCost}
	stored, err := v.Seal("hunter2")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter2", stored)

	again, err := v.Seal("hunter2")
	require.NoError(t, err)
	assert.NotEqual(t, stored, again, "hashes are salted")

	assert.True(t, v.Verify(stored, "hunter2"))
	assert.False(t, v.Verify(stored, "hunter3"))
	assert.False(t, v.Verify("not-a-hash", "hunter2"))
}

func TestArgon2(t *testing.T) {
	v := Argon2{}
	stored, err := v.Seal("hunter2")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stored, "argon2id$"))

	again, err := v.Seal("hunter2")
	require.NoError(t, err)
	assert.NotEqual(t, stored, again)

	assert.True(t, v.Verify(stored, "hunter2"))
	assert.False(t, v.Verify(stored, "hunter3"))
	assert.False(t, v.Verify("hunter2", "hunter2"))
	assert.False(t, v.Verify("argon2id$zz$00", "hunter2"))
	assert.False(t, v.Verify("argon2id$00", "hunter2"))
}

func TestNew(t *testing.T) {
	v, err := New("")
	require.NoError(t, err)
	assert.IsType(t, Plaintext{}, v)

	v, err = New("bcrypt")
	require.NoError(t, err)
	assert.IsType(t, Bcrypt{}, v)

	v, err = New("argon2id")
	require.NoError(t, err)
	assert.IsType(t, Argon2{}, v)

	_, err = New("md5")
	require.Error(t, err)
}
