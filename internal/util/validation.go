package util

import (
	"net"
	"regexp"
	"strings"
)

var (
	sessionIDRegex = regexp.MustCompile(`^[a-zA-Z0-9:-]{1,64}$`)
	hostnameRegex  = regexp.MustCompile(`(?i)^([a-z\d](-*[a-z\d])*)(\.([a-z\d](-*[a-z\d])*))+$`)
	labelsRegex    = regexp.MustCompile(`^[^.]{1,63}(\.[^.]{1,63})*$`)
)

func IsValidSessionID(s string) bool {
	return sessionIDRegex.MatchString(s)
}

// IsValidHostname accepts dotted DNS names only, so single-label names like
// "localhost" are rejected.
func IsValidHostname(host string) bool {
	if len(host) > 253 {
		return false
	}
	return hostnameRegex.MatchString(host) && labelsRegex.MatchString(host)
}

// ParseIP parses an IPv4 or IPv6 literal, tolerating brackets around IPv6.
func ParseIP(host string) net.IP {
	return net.ParseIP(strings.TrimSuffix(strings.TrimPrefix(host, "["), "]"))
}

// IsPublicIP reports whether ip is routable on the public internet.
func IsPublicIP(ip net.IP) bool {
	return !(ip.IsPrivate() || ip.IsLoopback() || ip.IsUnspecified() ||
		ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() || ip.IsMulticast())
}
