package middleware

import (
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// NewClientIPMiddleware は信頼済みプロキシ経由のリクエストに限り、
// X-Forwarded-Forからクライアントアドレスを復元してRemoteAddrを書き換える。
// 直接の接続元が信頼済みでない場合、転送ヘッダーは無視する。
// trustedが空の場合は何もしない。
func NewClientIPMiddleware(trusted []netip.Prefix) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if len(trusted) == 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if ip, ok := forwardedClientIP(r, trusted); ok {
				r.RemoteAddr = ip.String()
			}
			next.ServeHTTP(w, r)
		})
	}
}

// forwardedClientIP はX-Forwarded-Forを右から辿り、最初の信頼済みでないアドレスを返す。
// 解釈できないエントリに当たった場合は、それより左を信用せずに打ち切る。
func forwardedClientIP(r *http.Request, trusted []netip.Prefix) (netip.Addr, bool) {
	peer, ok := remoteAddr(r.RemoteAddr)
	if !ok || !isTrustedAddr(peer, trusted) {
		return netip.Addr{}, false
	}

	hops := forwardedHops(r.Header.Values("X-Forwarded-For"))
	if len(hops) == 0 {
		return netip.Addr{}, false
	}

	var leftmost netip.Addr
	for i := len(hops) - 1; i >= 0; i-- {
		addr, err := netip.ParseAddr(hops[i])
		if err != nil {
			return netip.Addr{}, false
		}
		addr = addr.Unmap()
		if !isTrustedAddr(addr, trusted) {
			return addr, true
		}
		leftmost = addr
	}
	// 全ホップが信頼済みなら最も遠いものを使う
	return leftmost, true
}

func forwardedHops(values []string) []string {
	var hops []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				hops = append(hops, part)
			}
		}
	}
	return hops
}

func remoteAddr(raw string) (netip.Addr, bool) {
	host, _, err := net.SplitHostPort(raw)
	if err != nil {
		host = raw
	}
	addr, err := netip.ParseAddr(host)
	if err != nil {
		return netip.Addr{}, false
	}
	return addr.Unmap(), true
}

func isTrustedAddr(addr netip.Addr, trusted []netip.Prefix) bool {
	for _, p := range trusted {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}
