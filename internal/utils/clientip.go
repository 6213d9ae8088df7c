package utils

import (
	"net"
	"net/http"
	"strconv"
	"strings"
)

// ClientIP extracts the client address, preferring the first entry of a
// forwarded-for list, then a real-IP header, then the socket address. Absent
// headers never cause an error; the fallback is the literal "unknown".
func ClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first := strings.TrimSpace(strings.Split(forwarded, ",")[0])
		if first != "" {
			return first
		}
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return strings.TrimSpace(realIP)
	}
	if r.RemoteAddr != "" {
		if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
			return host
		}
		return r.RemoteAddr
	}
	return "unknown"
}

// FormatCoordinates renders a coordinate pair as "lat,lon" for audit storage.
func FormatCoordinates(latitude, longitude float64) string {
	return strconv.FormatFloat(latitude, 'f', -1, 64) + "," +
		strconv.FormatFloat(longitude, 'f', -1, 64)
}
