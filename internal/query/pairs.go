// Copyright (c) 2026 Tabulaire. All rights reserved.

package query

import (
	"fmt"
	"net/url"
	"strings"
)

// Pair is one decoded query-string parameter. Wire order and duplicate keys
// are preserved, which [net/url.Values] cannot do; filter order must survive
// up to the compiled downstream request.
type Pair struct {
	Key   string
	Value string
	// HasValue distinguishes `col__count` (key presence) from `col__sort=`.
	HasValue bool
}

// ParsePairs scans a raw query string into ordered pairs, percent-decoding
// keys and values.
func ParsePairs(rawQuery string) ([]Pair, error) {
	if rawQuery == "" {
		return nil, nil
	}

	var pairs []Pair
	for _, segment := range strings.Split(rawQuery, "&") {
		if segment == "" {
			continue
		}

		rawKey, rawValue, hasValue := strings.Cut(segment, "=")
		key, err := url.QueryUnescape(rawKey)
		if err != nil {
			return nil, fmt.Errorf("malformed query parameter %q", segment)
		}
		value, err := url.QueryUnescape(rawValue)
		if err != nil {
			return nil, fmt.Errorf("malformed query parameter %q", segment)
		}

		pairs = append(pairs, Pair{Key: key, Value: value, HasValue: hasValue})
	}
	return pairs, nil
}
