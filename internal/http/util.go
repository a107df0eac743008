package httpx

import (
	"net/url"
	"strconv"
	"strings"
)

// queryInt reads a positive integer query value, falling back to def when
// the value is missing, malformed or not positive.
func queryInt(q url.Values, key string, def int) int {
	v, err := strconv.Atoi(strings.TrimSpace(q.Get(key)))
	if err != nil || v < 1 {
		return def
	}
	return v
}
