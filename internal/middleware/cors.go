package middleware

import (
	"net/http"
	"strings"
)

// NewCORSMiddleware はCookie付きクロスオリジンリクエストを許可するCORSミドルウェアを返す。
// allowedOriginsはカンマ区切りで複数指定できる。credentialsと共存させるため
// ワイルドカード(*)は使わず、許可リストにあるOriginをそのまま返す。
// Originヘッダーのないリクエストには先頭の許可オリジンを返す。
// OPTIONSプリフライトには204で応答し、後続のハンドラーは呼ばない。
func NewCORSMiddleware(allowedOrigins string) func(next http.Handler) http.Handler {
	allowed := parseOrigins(allowedOrigins)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Add("Vary", "Origin")

			if origin, ok := matchOrigin(allowed, r.Header.Get("Origin")); ok {
				h.Set("Access-Control-Allow-Origin", origin)
				h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
				h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
				h.Set("Access-Control-Allow-Credentials", "true")
				h.Set("Access-Control-Max-Age", "86400")
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func parseOrigins(s string) []string {
	var origins []string
	for _, o := range strings.Split(s, ",") {
		if o = strings.TrimRight(strings.TrimSpace(o), "/"); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

// matchOrigin はレスポンスに載せるAllow-Originを決める。
func matchOrigin(allowed []string, origin string) (string, bool) {
	if len(allowed) == 0 {
		return "", false
	}
	if origin == "" {
		return allowed[0], true
	}
	for _, a := range allowed {
		if strings.EqualFold(a, origin) {
			return origin, true
		}
	}
	return "", false
}
