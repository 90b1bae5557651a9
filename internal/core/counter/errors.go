package counter

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"net"
)

// FetchErrorKind separates unreachable endpoints from everything else.
type FetchErrorKind string

const (
	FetchNetwork FetchErrorKind = "network"
	FetchUnknown FetchErrorKind = "unknown"
)

// ErrMalformedPayload marks replies that could not be decoded.
var ErrMalformedPayload = errors.New("malformed counter payload")

// FetchError is returned for every failed fetch.
type FetchError struct {
	Kind       FetchErrorKind
	Endpoint   string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.Endpoint == "" {
		return fmt.Sprintf("counter fetch failed (%s): %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("counter fetch from %s failed (%s): %v", e.Endpoint, e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// IsNetwork reports whether err is a FetchError for an unreachable endpoint.
func IsNetwork(err error) bool {
	var fetchErr *FetchError
	return errors.As(err, &fetchErr) && fetchErr.Kind == FetchNetwork
}

// classify maps transport errors onto fetch kinds. Timeouts and cancellations
// are not connectivity failures.
func classify(err error) FetchErrorKind {
	if err == nil {
		return FetchUnknown
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return FetchUnknown
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return FetchUnknown
	}

	var (
		opErr      *net.OpError
		dnsErr     *net.DNSError
		certErr    *tls.CertificateVerificationError
		headerErr  tls.RecordHeaderError
		unknownCA  x509.UnknownAuthorityError
		hostErr    x509.HostnameError
		invalidErr x509.CertificateInvalidError
	)
	switch {
	case errors.As(err, &opErr), errors.As(err, &dnsErr):
		return FetchNetwork
	case errors.As(err, &certErr), errors.As(err, &headerErr):
		return FetchNetwork
	case errors.As(err, &unknownCA), errors.As(err, &hostErr), errors.As(err, &invalidErr):
		return FetchNetwork
	case errors.Is(err, io.ErrUnexpectedEOF), errors.Is(err, io.EOF):
		return FetchNetwork
	}

	return FetchUnknown
}
