package main

import (
	"net/url"

	"github.com/samber/lo"
)

// originPatterns turns CORS origins into the host patterns websocket.Accept
// matches against.
func originPatterns(origins []string) []string {
	return lo.FilterMap(origins, func(origin string, _ int) (string, bool) {
		if origin == "*" {
			return "*", true
		}
		u, err := url.Parse(origin)
		if err != nil || u.Host == "" {
			return "", false
		}
		return u.Host, true
	})
}
