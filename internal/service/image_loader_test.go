package service

import (
	"context"
	"encoding/base64"
	"image/color"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestLoader may reach loopback so it can download from httptest servers.
func newTestLoader() *ImageLoader {
	return NewImageLoader(NewImageProcessor(1024), 5*time.Second, 1<<20, "stylist-test/1.0", true)
}

func TestImageLoader_DataURI(t *testing.T) {
	pngData := createTestPNG(8, 8, color.White)
	uri := "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngData)

	img, err := newTestLoader().Load(context.Background(), uri)

	require.NoError(t, err)
	assert.Equal(t, "image/png", img.MIMEType)
	assert.Equal(t, pngData, img.Data)
}

func TestImageLoader_BadDataURIIsInvalidRequest(t *testing.T) {
	tests := []string{
		"data:image/png;base64",
		"data:image/png;base64,!!!not-base64!!!",
		"data:text/plain,hello",
	}

	for _, uri := range tests {
		_, err := newTestLoader().Load(context.Background(), uri)
		assert.ErrorIs(t, err, ErrInvalidRequest, uri)
	}
}

func TestImageLoader_Download(t *testing.T) {
	pngData := createTestPNG(16, 16, color.Black)
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "image/png")
		w.Write(pngData)
	}))
	defer server.Close()

	img, err := newTestLoader().Load(context.Background(), server.URL+"/jeans.png")

	require.NoError(t, err)
	assert.Equal(t, "image/png", img.MIMEType)
	assert.Equal(t, "stylist-test/1.0", gotUA)
}

func TestImageLoader_DownloadFailureIsUpstream(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	_, err := newTestLoader().Load(context.Background(), server.URL+"/missing.png")

	assert.ErrorIs(t, err, ErrUpstream)
}

func TestImageLoader_OversizedDownload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(make([]byte, 2048))
	}))
	defer server.Close()

	loader := NewImageLoader(NewImageProcessor(1024), 5*time.Second, 1024, "", true)
	_, err := loader.Load(context.Background(), server.URL+"/huge.png")

	assert.ErrorIs(t, err, ErrUpstream)
}

func TestImageLoader_RejectsNonPublicHosts(t *testing.T) {
	hits := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Write(createTestPNG(4, 4, color.White))
	}))
	defer server.Close()

	u, err := url.Parse(server.URL)
	require.NoError(t, err)

	refs := []string{
		server.URL + "/jeans.png",
		"http://localhost:" + u.Port() + "/jeans.png",
		"http://169.254.169.254/latest/meta-data/",
		"http://10.0.0.7/a.png",
		"http://[::1]:" + u.Port() + "/a.png",
	}

	loader := NewImageLoader(NewImageProcessor(1024), 2*time.Second, 1<<20, "", false)
	for _, ref := range refs {
		_, err := loader.Load(context.Background(), ref)
		assert.ErrorIs(t, err, ErrInvalidRequest, ref)
		assert.NotErrorIs(t, err, ErrUpstream, ref)
	}
	assert.Zero(t, hits, "no request may reach a loopback server")
}

func TestBlockedAddr(t *testing.T) {
	tests := []struct {
		addr    string
		blocked bool
	}{
		{"127.0.0.1", true},
		{"::1", true},
		{"10.1.2.3", true},
		{"172.16.0.1", true},
		{"192.168.1.10", true},
		{"169.254.169.254", true},
		{"fe80::1", true},
		{"fc00::1", true},
		{"0.0.0.0", true},
		{"224.0.0.1", true},
		{"::ffff:127.0.0.1", true},
		{"93.184.216.34", false},
		{"2606:4700::1111", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.blocked, blockedAddr(netip.MustParseAddr(tt.addr)), tt.addr)
	}
}
