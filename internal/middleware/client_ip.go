package middleware

import (
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// ClientIP deja en RemoteAddr la IP del cliente. Los headers X-Forwarded-For
// y X-Real-IP solo se leen si la conexión viene de un proxy de trusted; sin
// proxies configurados RemoteAddr queda como lo dejó net/http.
// El lockout del login cuenta por esta IP, así que va antes que todo.
func ClientIP(trusted []netip.Prefix) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			peer, ok := remoteIP(r.RemoteAddr)
			if ok && isTrusted(peer, trusted) {
				if ip, ok := forwardedFor(r, trusted); ok {
					r.RemoteAddr = ip.String()
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// forwardedFor recorre X-Forwarded-For de derecha a izquierda y devuelve el
// primer salto que no es un proxy propio. Los saltos a la izquierda de ese
// los escribe el cliente y no se usan.
func forwardedFor(r *http.Request, trusted []netip.Prefix) (netip.Addr, bool) {
	hops := strings.Split(strings.Join(r.Header.Values("X-Forwarded-For"), ","), ",")
	for i := len(hops) - 1; i >= 0; i-- {
		ip, err := netip.ParseAddr(strings.TrimSpace(hops[i]))
		if err != nil {
			break
		}
		ip = ip.Unmap()
		if !isTrusted(ip, trusted) {
			return ip, true
		}
	}
	if ip, err := netip.ParseAddr(strings.TrimSpace(r.Header.Get("X-Real-IP"))); err == nil {
		return ip.Unmap(), true
	}
	return netip.Addr{}, false
}

func remoteIP(addr string) (netip.Addr, bool) {
	addr = strings.TrimSpace(addr)
	if host, _, err := net.SplitHostPort(addr); err == nil {
		addr = host
	}
	ip, err := netip.ParseAddr(addr)
	if err != nil {
		return netip.Addr{}, false
	}
	return ip.Unmap(), true
}

func isTrusted(ip netip.Addr, trusted []netip.Prefix) bool {
	for _, p := range trusted {
		if p.Contains(ip) {
			return true
		}
	}
	return false
}
