package mailbox

import (
	"context"
	"errors"
	"net"
	"strings"
	"syscall"
)

// ErrorClass is a coarse taxonomy for mailbox connection failures. It is
// advisory: operators get a remediation hint, but no retry or routing logic
// branches on the class.
type ErrorClass string

const (
	ErrClassTimeout      ErrorClass = "timeout"
	ErrClassRefused      ErrorClass = "connection_refused"
	ErrClassAuth         ErrorClass = "authentication"
	ErrClassHostNotFound ErrorClass = "host_not_found"
	ErrClassOther        ErrorClass = "other"
)

// Classify buckets a connection error and returns an operator-facing hint.
func Classify(err error) (ErrorClass, string) {
	if err == nil {
		return ErrClassOther, ""
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return ErrClassTimeout, "Connection timed out. Check the host, port and any firewall rules."
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrClassTimeout, "Connection timed out. Check the host, port and any firewall rules."
	}
	if errors.Is(err, syscall.ECONNREFUSED) {
		return ErrClassRefused, "Connection refused. Verify the server is running and the port is correct."
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return ErrClassHostNotFound, "Host not found. Verify the mail server hostname."
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "authentication") || strings.Contains(msg, "login") || strings.Contains(msg, "credentials") || strings.Contains(msg, "invalid password"):
		return ErrClassAuth, "Authentication failed. Verify the mailbox username and password."
	case strings.Contains(msg, "connection refused"):
		return ErrClassRefused, "Connection refused. Verify the server is running and the port is correct."
	case strings.Contains(msg, "no such host"):
		return ErrClassHostNotFound, "Host not found. Verify the mail server hostname."
	case strings.Contains(msg, "timeout") || strings.Contains(msg, "timed out"):
		return ErrClassTimeout, "Connection timed out. Check the host, port and any firewall rules."
	}
	return ErrClassOther, "Unexpected mailbox error. Check the server logs for details."
}
