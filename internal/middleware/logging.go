package middleware

import (
	"log/slog"
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/tradinghub/backend/internal/auth"
)

// statusRecorder はhttp.ResponseWriterをラップし、最初に書き込まれたステータスと本文サイズを記録する。
type statusRecorder struct {
	http.ResponseWriter
	statusCode int
	bytes      int
	written    bool
}

func (sr *statusRecorder) WriteHeader(code int) {
	if !sr.written {
		sr.statusCode = code
		sr.written = true
	}
	sr.ResponseWriter.WriteHeader(code)
}

func (sr *statusRecorder) Write(b []byte) (int, error) {
	if !sr.written {
		sr.statusCode = http.StatusOK
		sr.written = true
	}
	n, err := sr.ResponseWriter.Write(b)
	sr.bytes += n
	return n, err
}

// NewLoggingMiddleware はリクエストごとに1行のhttp_requestログを出力するミドルウェアを返す。
// IdentityMiddlewareの内側に置くと、認証結果（user_id、auth_outcome、auth_source）も出力する。
// 5xxはERROR、4xxはWARN、それ以外はINFOで出力する。
func NewLoggingMiddleware(logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(rec, r)

			attrs := []slog.Attr{
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", rec.statusCode),
				slog.Int("bytes", rec.bytes),
				slog.Float64("duration_ms", float64(time.Since(start).Microseconds())/1000),
				slog.String("remote_addr", r.RemoteAddr),
			}
			if reqID := chimw.GetReqID(r.Context()); reqID != "" {
				attrs = append(attrs, slog.String("request_id", reqID))
			}
			attrs = append(attrs, identityAttrs(r)...)

			logger.LogAttrs(r.Context(), levelForStatus(rec.statusCode), "http_request", attrs...)
		})
	}
}

// identityAttrs はコンテキストの認証結果をログ属性にする。
// 資格情報なしのリクエストでは何も出力しない。
func identityAttrs(r *http.Request) []slog.Attr {
	res, ok := auth.ResolutionFromContext(r.Context())
	if !ok || res.Outcome == auth.OutcomeNoCredentials {
		return nil
	}

	attrs := []slog.Attr{
		slog.String("auth_outcome", string(res.Outcome)),
		slog.String("auth_source", string(res.Source)),
	}
	if res.Authenticated() {
		attrs = append(attrs, slog.String("user_id", res.User.ID))
	}
	if res.Ambiguous {
		attrs = append(attrs, slog.Bool("auth_ambiguous", true))
	}
	return attrs
}

func levelForStatus(status int) slog.Level {
	switch {
	case status >= 500:
		return slog.LevelError
	case status >= 400:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}
