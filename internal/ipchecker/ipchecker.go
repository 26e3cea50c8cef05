// Package ipchecker restricts operational endpoints such as /metrics to
// clients from a trusted subnet.
package ipchecker

import (
	"fmt"
	"net"
	"net/http"

	"go.uber.org/zap"

	"github.com/patric-chuzhbe/arrowflix/internal/logger"
)

// IPChecker validates client addresses against a trusted subnet.
type IPChecker struct {
	trustedSubnet *net.IPNet
}

// New creates an IPChecker for the CIDR trustedSubnet (e.g. "10.0.0.0/8").
// An empty trustedSubnet disables the restriction.
func New(trustedSubnet string) (*IPChecker, error) {
	if trustedSubnet == "" {
		return &IPChecker{}, nil
	}

	_, allowedNet, err := net.ParseCIDR(trustedSubnet)
	if err != nil {
		return nil, fmt.Errorf("in internal/ipchecker/ipchecker.go/New(): error while `net.ParseCIDR()` calling: %w", err)
	}

	return &IPChecker{trustedSubnet: allowedNet}, nil
}

// Check reports whether clientIP may pass. Every address passes when no
// subnet is configured.
func (checker *IPChecker) Check(clientIP net.IP) bool {
	if checker.trustedSubnet == nil {
		return true
	}

	return clientIP != nil && checker.trustedSubnet.Contains(clientIP)
}

// GetClientIP returns the peer address of the connection. Forwarding headers
// are ignored since any client can set them.
func (checker *IPChecker) GetClientIP(request *http.Request) (net.IP, error) {
	host, _, err := net.SplitHostPort(request.RemoteAddr)
	if err != nil {
		return nil, fmt.Errorf("in internal/ipchecker/ipchecker.go/GetClientIP(): error while `net.SplitHostPort()` calling: %w", err)
	}

	return net.ParseIP(host), nil
}

// Middleware answers 403 to clients outside the trusted subnet.
func (checker *IPChecker) Middleware(h http.Handler) http.Handler {
	return http.HandlerFunc(func(response http.ResponseWriter, request *http.Request) {
		clientIP, err := checker.GetClientIP(request)
		if err != nil {
			logger.Log.Debugln("Error calling the `checker.GetClientIP()`: ", zap.Error(err))
		}

		if !checker.Check(clientIP) {
			response.WriteHeader(http.StatusForbidden)
			return
		}

		h.ServeHTTP(response, request)
	})
}
