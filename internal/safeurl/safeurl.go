// Package safeurl checks provider server addresses before credentials are sent to them.
package safeurl

import (
	"errors"
	"net/url"
	"strings"
)

var (
	ErrScheme = errors.New("server URL must use http or https")
	ErrHost   = errors.New("server URL has no host")
	ErrExtra  = errors.New("server URL must not carry user info, a query or a fragment")
)

// ServerBase validates raw as a provider base URL and returns it with surrounding
// space and trailing slashes removed. A path prefix is allowed.
// Rejecting other schemes keeps file:// and similar out of the request path.
func ServerBase(raw string) (string, error) {
	s := strings.TrimRight(strings.TrimSpace(raw), "/")
	u, err := url.Parse(s)
	if err != nil {
		return "", err
	}
	switch {
	case u.Scheme != "http" && u.Scheme != "https":
		return "", ErrScheme
	case u.Host == "":
		return "", ErrHost
	case u.User != nil || u.RawQuery != "" || u.Fragment != "":
		return "", ErrExtra
	}
	return s, nil
}
