// Copyright (c) 2026 Tabulaire. All rights reserved.

package tabular

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/taibuivan/tabulaire/pkg/pagination"
)

// Links is the navigation block of a paged response. Next and Prev are null
// at the corresponding edges of the result set.
type Links struct {
	Profile string  `json:"profile"`
	Swagger string  `json:"swagger"`
	Next    *string `json:"next"`
	Prev    *string `json:"prev"`
}

// buildLinks assembles the absolute navigation links of one data page.
func (s *Service) buildLinks(resourceID, rawQuery string, meta pagination.Meta, rowsOnPage int) Links {
	links := Links{
		Profile: s.resourceURL(resourceID, "profile"),
		Swagger: s.resourceURL(resourceID, "swagger"),
	}

	if meta.HasNext(rowsOnPage) {
		next := s.pageURL(resourceID, rawQuery, meta.Page+1, meta.PageSize)
		links.Next = &next
	}
	if meta.HasPrev() {
		prev := s.pageURL(resourceID, rawQuery, meta.Page-1, meta.PageSize)
		links.Prev = &prev
	}
	return links
}

func (s *Service) resourceURL(resourceID, tail string) string {
	base := strings.TrimRight(s.options.PublicBaseURL, "/")
	if tail == "" {
		return fmt.Sprintf("%s/api/resources/%s/", base, resourceID)
	}
	return fmt.Sprintf("%s/api/resources/%s/%s/", base, resourceID, tail)
}

// pageURL rebuilds the data URL for another page. Every original parameter
// except page and page_size passes through byte for byte; the two paging
// parameters are appended at the end.
func (s *Service) pageURL(resourceID, rawQuery string, page, pageSize int) string {
	var kept []string
	for _, segment := range strings.Split(rawQuery, "&") {
		if segment == "" {
			continue
		}
		rawKey, _, _ := strings.Cut(segment, "=")
		key, err := url.QueryUnescape(rawKey)
		if err != nil {
			key = rawKey
		}
		if key == "page" || key == "page_size" {
			continue
		}
		kept = append(kept, segment)
	}

	kept = append(kept, fmt.Sprintf("page=%d", page), fmt.Sprintf("page_size=%d", pageSize))
	return s.resourceURL(resourceID, "data") + "?" + strings.Join(kept, "&")
}
