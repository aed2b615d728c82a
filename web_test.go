/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Seednode/followme/game"
)

func TestRealIP(t *testing.T) {
	tests := []struct {
		remote string
		header map[string]string
		want   string
	}{
		{"192.0.2.1:1234", nil, "192.0.2.1:1234"},
		{"192.0.2.1:1234", map[string]string{"X-Real-IP": "198.51.100.7"}, "198.51.100.7:1234"},
		{"192.0.2.1:1234", map[string]string{"CF-Connecting-IP": "2001:db8::1"}, "[2001:db8::1]:1234"},
		{"192.0.2.1:1234", map[string]string{"X-Real-IP": "not an ip"}, "192.0.2.1:1234"},
	}

	for _, tt := range tests {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.RemoteAddr = tt.remote
		for k, v := range tt.header {
			r.Header.Set(k, v)
		}
		assert.Equal(t, tt.want, realIP(r))
	}
}

func TestHumanReadableSize(t *testing.T) {
	assert.Equal(t, "999 B", humanReadableSize(999))
	assert.Equal(t, "1.5 kB", humanReadableSize(1500))
	assert.Equal(t, "2.0 MB", humanReadableSize(2_000_000))
}

func TestPrefixedRoutes(t *testing.T) {
	cfg := validConfig()
	cfg.prefix = "/followme/"
	cfg.profile = true

	sm := newSessionManager(cfg, game.NewFileStore(afero.NewMemMapFs(), cfg.dataDir, nil))
	t.Cleanup(sm.Close)

	srv := httptest.NewServer(newRouter(cfg, make(chan error, 8), sm))
	t.Cleanup(srv.Close)

	tests := []struct {
		path   string
		status int
	}{
		{"/followme/", http.StatusOK},
		{"/followme/healthz", http.StatusOK},
		{"/followme/pprof/heap", http.StatusOK},
		{"/healthz", http.StatusNotFound},
	}

	for _, tt := range tests {
		resp, err := http.Get(srv.URL + tt.path)
		require.NoError(t, err)
		resp.Body.Close()

		assert.Equal(t, tt.status, resp.StatusCode, tt.path)
	}
}

func TestNewPageEscapes(t *testing.T) {
	page := newPage(&Config{prefix: "/x"}, "<b>", "a & b")

	assert.Contains(t, page, "<title>&lt;b&gt;</title>")
	assert.Contains(t, page, `<a href="/x/">a &amp; b</a>`)
	assert.True(t, strings.Contains(page, "/x/favicons/favicon.svg"))
}

func TestLogErrorsAfterShutdown(t *testing.T) {
	errs := make(chan error, 4)
	done := make(chan struct{})
	stopped := make(chan struct{})

	go func() {
		logErrors(validConfig(), errs, done)
		close(stopped)
	}()

	errs <- errors.New("before shutdown")
	assert.Eventually(t, func() bool { return len(errs) == 0 }, time.Second, time.Millisecond)

	close(done)
	<-stopped

	assert.NotPanics(t, func() { errs <- errors.New("late handler") })
	assert.Len(t, errs, 1)
}

func TestHomePageShareActions(t *testing.T) {
	cfg := validConfig()

	sm := newSessionManager(cfg, game.NewFileStore(afero.NewMemMapFs(), cfg.dataDir, nil))
	t.Cleanup(sm.Close)

	srv := httptest.NewServer(newRouter(cfg, make(chan error, 8), sm))
	t.Cleanup(srv.Close)

	resp, err := http.Get(srv.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	for _, id := range []string{"share-qr", "share-url", "share-copy", "share-native"} {
		assert.Contains(t, string(body), `id="`+id+`"`)
	}

	script, err := assets.ReadFile("assets/app.js")
	require.NoError(t, err)
	assert.Contains(t, string(script), "navigator.clipboard.writeText")
	assert.Contains(t, string(script), "navigator.share(")
}
