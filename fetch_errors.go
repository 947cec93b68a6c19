// Copyright 2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package hostguard

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"net"
	"net/http"
)

// ErrorHeader is the header that is set on error responses with the error message.
const ErrorHeader = "X-Hostguard-Error"

var errBadURL = errors.New("bad url")

type errorHandler func(*http.Request, error) (int, string, string)

func errorHandlers() []errorHandler {
	return []errorHandler{
		handleBlockedError,
		handleNoHostError,
		handleBadURL,
		handleRedirectLimit,
		handleResolutionError,
		handleTimeout,
		handleNetError,
		handleTLSRecordHeader,
		handleTLSCertificateError,
	}
}

// errorStatus maps err to a status code, a message and a metrics label.
func errorStatus(req *http.Request, err error) (code int, msg, label string) {
	for _, h := range errorHandlers() {
		code, msg, label = h(req, err)
		if code != 0 {
			return
		}
	}
	return http.StatusInternalServerError, "An unexpected error occurred", "unexpected_error"
}

func writeErrorResponse(w http.ResponseWriter, code int, msg string, err error) {
	var body bytes.Buffer
	body.WriteString(msg)
	body.WriteString("\n")
	body.WriteString(err.Error())
	body.WriteString("\n")

	w.Header().Set(ErrorHeader, err.Error())
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(code)
	w.Write(body.Bytes()) //nolint:errcheck // best effort
}

func handleBlockedError(_ *http.Request, err error) (code int, msg, label string) {
	var blockedErr *BlockedError
	if errors.As(err, &blockedErr) {
		code = http.StatusForbidden
		msg = "Access to the host is denied"
		label = "blocked_" + blockedErr.reason.String()
	}

	return
}

func handleNoHostError(_ *http.Request, err error) (code int, msg, label string) {
	if errors.Is(err, ErrNoHost) {
		code = http.StatusBadRequest
		msg = "Request host could not be determined"
		label = "no_host"
	}

	return
}

func handleBadURL(_ *http.Request, err error) (code int, msg, label string) {
	if errors.Is(err, errBadURL) {
		code = http.StatusBadRequest
		msg = "Invalid url parameter"
		label = "bad_url"
	}

	return
}

func handleRedirectLimit(_ *http.Request, err error) (code int, msg, label string) {
	if errors.Is(err, ErrTooManyRedirects) {
		code = http.StatusBadGateway
		msg = "Too many redirects"
		label = "redirects"
	}

	return
}

func handleResolutionError(_ *http.Request, err error) (code int, msg, label string) {
	var resErr *ResolutionError
	if errors.As(err, &resErr) {
		code = http.StatusBadGateway
		msg = "Failed to resolve remote host"
		label = "resolution"
	}

	return
}

func handleTimeout(_ *http.Request, err error) (code int, msg, label string) {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		code = http.StatusGatewayTimeout
		msg = "Timed out connecting to remote host"
		label = "timeout"
	}

	return
}

func handleNetError(_ *http.Request, err error) (code int, msg, label string) {
	var netErr *net.OpError
	if errors.As(err, &netErr) {
		code = http.StatusBadGateway
		msg = "Failed to connect to remote host"
		label = "net_" + netErr.Op
	}

	return
}

func handleTLSRecordHeader(_ *http.Request, err error) (code int, msg, label string) {
	var headerErr *tls.RecordHeaderError
	if errors.As(err, &headerErr) {
		code = http.StatusBadGateway
		msg = "TLS handshake failed"
		label = "tls_record_header"
	}

	return
}

func handleTLSCertificateError(_ *http.Request, err error) (code int, msg, label string) {
	var certErr *tls.CertificateVerificationError
	if errors.As(err, &certErr) {
		code = http.StatusBadGateway
		msg = "TLS handshake failed"
		label = "tls_certificate"
	}

	return
}
