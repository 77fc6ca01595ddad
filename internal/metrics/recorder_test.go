package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	ferrors "git.home.luguber.info/inful/exportcfg/internal/foundation/errors"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutcomeOf(t *testing.T) {
	assert.Equal(t, OutcomeSuccess, OutcomeOf(nil))
	assert.Equal(t, OutcomeInvalidOption, OutcomeOf(ferrors.InvalidOption("adapter.fallback", "").Build()))
	assert.Equal(t, OutcomeUnknownCapability, OutcomeOf(ferrors.UnknownCapability("adapter", "x").Build()))
	assert.Equal(t, OutcomeError, OutcomeOf(errors.New("boom")))
}

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NoopRecorder{}
	r.ObserveResolve(time.Millisecond, OutcomeSuccess)
	r.IncReload(OutcomeError)
	r.SetConfigInfo("abc")
}

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)

	pr.ObserveResolve(200*time.Microsecond, OutcomeSuccess)
	pr.ObserveResolve(100*time.Microsecond, OutcomeSuccess)
	pr.ObserveResolve(100*time.Microsecond, OutcomeInvalidOption)
	pr.IncReload(OutcomeSuccess)

	assert.Equal(t, 2.0, testutil.ToFloat64(pr.resolutions.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(pr.resolutions.WithLabelValues("invalid_option")))
	assert.Equal(t, 1.0, testutil.ToFloat64(pr.reloads.WithLabelValues("success")))
	assert.Equal(t, 1, testutil.CollectAndCount(pr.resolveDuration))

	pr.SetConfigInfo("aaa")
	pr.SetConfigInfo("bbb")
	assert.Equal(t, 1, testutil.CollectAndCount(pr.configInfo))
	assert.Equal(t, 1.0, testutil.ToFloat64(pr.configInfo.WithLabelValues("bbb")))

	var nilRecorder *PrometheusRecorder
	nilRecorder.ObserveResolve(time.Millisecond, OutcomeSuccess)
	nilRecorder.IncReload(OutcomeSuccess)
	nilRecorder.SetConfigInfo("x")
}

func TestHTTPHandler(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.ObserveResolve(time.Millisecond, OutcomeSuccess)

	rec := httptest.NewRecorder()
	HTTPHandler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `exportcfg_resolutions_total{outcome="success"} 1`))
}
