package password_test

import (
	"strings"
	"testing"

	"tablebook/shared/password"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	password.Cost = bcrypt.MinCost
}

func TestHash(t *testing.T) {
	hash, err := password.Hash("s3cretpass")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cretpass", hash)

	other, err := password.Hash("s3cretpass")
	require.NoError(t, err)
	assert.NotEqual(t, hash, other)

	_, err = password.Hash("")
	assert.ErrorIs(t, err, password.ErrEmptyPassword)

	_, err = password.Hash(strings.Repeat("x", 80))
	assert.Error(t, err)
}

func TestVerify(t *testing.T) {
	hash, err := password.Hash("s3cretpass")
	require.NoError(t, err)

	tests := []struct {
		name     string
		password string
		hash     string
		wantErr  error
	}{
		{name: "match", password: "s3cretpass", hash: hash},
		{name: "mismatch", password: "wrongpass", hash: hash, wantErr: password.ErrInvalidPassword},
		{name: "empty password", password: "", hash: hash, wantErr: password.ErrInvalidPassword},
		{name: "provider account without hash", password: "s3cretpass", hash: "", wantErr: password.ErrInvalidPassword},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := password.Verify(tt.password, tt.hash)
			if tt.wantErr == nil {
				assert.NoError(t, err)

				return
			}

			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	assert.Error(t, password.Verify("s3cretpass", "not-a-bcrypt-hash"))
}
