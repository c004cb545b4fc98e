package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// 記録したメトリクスがテキスト形式で返ることを検証する。
func TestHandler_ServesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.SessionExchanged("created")
	c.RecordCatalogMutation("provider", "create")
	c.RecordHTTPRequest(http.StatusTooManyRequests, 10*time.Millisecond)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	Handler(reg).ServeHTTP(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	body, _ := io.ReadAll(resp.Body)
	for _, want := range []string{
		`tradinghub_session_exchanges_total{result="created"} 1`,
		`tradinghub_catalog_mutations_total{action="create",entity="provider"} 1`,
		`tradinghub_http_status_total{status_code="429"} 1`,
	} {
		if !strings.Contains(string(body), want) {
			t.Errorf("response should contain %q, got:\n%s", want, body)
		}
	}
}

// レジストリが空でも200を返すこと
func TestHandler_EmptyRegistry(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	Handler(prometheus.NewRegistry()).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
}
