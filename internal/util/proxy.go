package util

import (
	"fmt"
	"net/http"
	"net/url"
)

// NewProxyFunc returns the proxy selector for the feed client.
// With no explicit proxies it defers to HTTP_PROXY / HTTPS_PROXY / NO_PROXY.
func NewProxyFunc(httpProxy, httpsProxy string) (func(*http.Request) (*url.URL, error), error) {
	if httpProxy == "" && httpsProxy == "" {
		return http.ProxyFromEnvironment, nil
	}

	var plain, secure *url.URL
	var err error
	if httpProxy != "" {
		if plain, err = url.Parse(httpProxy); err != nil {
			return nil, fmt.Errorf("parse http proxy: %w", err)
		}
	}
	if httpsProxy != "" {
		if secure, err = url.Parse(httpsProxy); err != nil {
			return nil, fmt.Errorf("parse https proxy: %w", err)
		}
	}

	return func(req *http.Request) (*url.URL, error) {
		if req.URL.Scheme == "https" && secure != nil {
			return secure, nil
		}
		if plain != nil {
			return plain, nil
		}
		return http.ProxyFromEnvironment(req)
	}, nil
}
