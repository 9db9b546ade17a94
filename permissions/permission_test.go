package permissions_test

import (
	"testing"

	"tablebook/permissions"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_EmbeddedFile(t *testing.T) {
	data := permissions.Get()
	require.NotNil(t, data)

	list := data.FindPermissions("/v1/bookings/", "GET")
	assert.Equal(t, []string{"admin"}, list.Permissions)
	assert.True(t, list.Allows("admin"))
	assert.False(t, list.Allows("user"))
	assert.False(t, list.Allows(""))
}

func TestFindPermissions(t *testing.T) {
	data, err := permissions.Parse([]byte(`{"endpoints":[
		{"path":"/v1/open","method":"GET","skip":true},
		{"path":"/v1/admin/","method":"post","permissions":["admin"]}
	]}`))
	require.NoError(t, err)

	tests := []struct {
		name   string
		path   string
		method string
		role   string
		want   bool
	}{
		{name: "skip entry", path: "/v1/open", method: "GET", role: "", want: true},
		{name: "role allowed", path: "/v1/admin", method: "POST", role: "admin", want: true},
		{name: "role denied", path: "/v1/admin", method: "POST", role: "user", want: false},
		{name: "no entry", path: "/v1/other", method: "GET", role: "", want: true},
		{name: "other method", path: "/v1/admin", method: "GET", role: "user", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, data.FindPermissions(tt.path, tt.method).Allows(tt.role))
		})
	}

	_, err = permissions.Parse([]byte("{"))
	assert.Error(t, err)
}
