package httpclient

import (
	"net"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateURL(t *testing.T) {
	client := NewSaferClient(5 * time.Second)

	cases := []struct {
		name    string
		rawURL  string
		wantErr bool
	}{
		{"public https", "https://api.nexar.com/graphql", false},
		{"public http", "http://example.com/", false},
		{"file scheme blocked", "file:///etc/passwd", true},
		{"localhost blocked", "http://localhost:8080/", true},
		{"loopback IP blocked", "http://127.0.0.1/", true},
		{"private IP blocked", "http://192.168.1.1/", true},
		{"userinfo blocked", "http://evil.com@localhost/", true},
		{"missing hostname", "https:///path", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			u, err := url.Parse(tc.rawURL)
			require.NoError(t, err)
			err = client.validateURL(u)
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestWrapClientAllowsLoopback(t *testing.T) {
	client := WrapClient(&http.Client{})
	u, err := url.Parse("http://127.0.0.1:9999/")
	require.NoError(t, err)
	assert.NoError(t, client.validateURL(u))
}

func TestIsPrivateIP(t *testing.T) {
	assert.True(t, isPrivateIP(net.ParseIP("10.0.0.1")))
	assert.True(t, isPrivateIP(net.ParseIP("172.16.0.1")))
	assert.True(t, isPrivateIP(net.ParseIP("::1")))
	assert.False(t, isPrivateIP(net.ParseIP("8.8.8.8")))
}
