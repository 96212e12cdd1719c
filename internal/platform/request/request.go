// Copyright (c) 2026 Tabulaire. All rights reserved.

/*
Package request provides utilities for extracting data from HTTP requests.

It abstracts away the underlying router's parameter extraction, ensuring
consistent access patterns across handlers.
*/
package requestutil

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

/*
ID retrieves a named URL parameter (UUID) from the request.
*/
func ID(request *http.Request, name string) string {
	return chi.URLParam(request, name)
}

/*
Param retrieves a named URL parameter from the request.
*/
func Param(request *http.Request, name string) string {
	return chi.URLParam(request, name)
}

/*
Format returns the requested alternate output format, such as "json" on the
swagger endpoint. Empty when the client did not ask for one.
*/
func Format(request *http.Request) string {
	return request.URL.Query().Get("format")
}
