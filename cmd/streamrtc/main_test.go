package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/LingByte/LingStreamX/pkg/metrics"
	"github.com/LingByte/LingStreamX/pkg/webrtc/rtcmedia/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConnector struct {
	state session.State
}

func (f *fakeConnector) State() session.State { return f.state }
func (f *fakeConnector) SessionID() string    { return "sess-1" }
func (f *fakeConnector) Disconnect()          { f.state = session.StateIdle }

func TestRouter(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	m.Rewrite()
	sess := &fakeConnector{state: session.StateConnected}
	r := newRouter(reg, sess)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "lingstreamx_sdp_rewrites_total 1")

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"state":"connected","sessionId":"sess-1"}`, w.Body.String())

	sess.Disconnect()
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
