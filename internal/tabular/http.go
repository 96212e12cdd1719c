// Copyright (c) 2026 Tabulaire. All rights reserved.

package tabular

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/tabulaire/internal/platform/constants"
	requestutil "github.com/taibuivan/tabulaire/internal/platform/request"
	"github.com/taibuivan/tabulaire/internal/platform/respond"
	"github.com/taibuivan/tabulaire/internal/resource"
	"github.com/taibuivan/tabulaire/internal/swagger"
)

// Handler exposes the data-query service over HTTP.
type Handler struct {
	service *Service
	swagger *swagger.Generator
}

// NewHandler builds the resource handler.
func NewHandler(service *Service, swaggerGenerator *swagger.Generator) *Handler {
	return &Handler{service: service, swagger: swaggerGenerator}
}

// RegisterRoutes mounts the resource endpoints.
func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Route("/resources/{resourceID}", func(router chi.Router) {
		router.Get("/", handler.getResource)
		router.Get("/profile", handler.getProfile)
		router.Get("/data", handler.getData)
		router.Get("/data/csv", handler.getDataCSV)
		router.Get("/data/json", handler.getDataJSON)
		router.Get("/swagger", handler.getSwagger)
	})
	router.Get("/aggregation-exceptions", handler.listAggregationExceptions)
}

// metaResponse is the resource metadata envelope with navigation links.
type metaResponse struct {
	*resource.Ref
	Links map[string]string `json:"links"`
}

func (handler *Handler) getResource(writer http.ResponseWriter, request *http.Request) {
	resourceID := requestutil.ID(request, "resourceID")

	ref, err := handler.service.Meta(request.Context(), resourceID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, metaResponse{
		Ref: ref,
		Links: map[string]string{
			"profile": handler.service.resourceURL(resourceID, "profile"),
			"data":    handler.service.resourceURL(resourceID, "data"),
			"swagger": handler.service.resourceURL(resourceID, "swagger"),
		},
	})
}

func (handler *Handler) getProfile(writer http.ResponseWriter, request *http.Request) {
	profile, err := handler.service.Profile(request.Context(), requestutil.ID(request, "resourceID"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	writer.Header().Set(constants.HeaderContentType, constants.ContentTypeJSON)
	writer.WriteHeader(http.StatusOK)
	_, _ = writer.Write(profile.Raw)
}

func (handler *Handler) getData(writer http.ResponseWriter, request *http.Request) {
	page, err := handler.service.Query(request.Context(),
		requestutil.ID(request, "resourceID"), request.URL.RawQuery)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, page)
}

func (handler *Handler) getDataCSV(writer http.ResponseWriter, request *http.Request) {
	export, err := handler.service.NewExport(request.Context(),
		requestutil.ID(request, "resourceID"), request.URL.RawQuery)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	writer.Header().Set(constants.HeaderContentType, constants.ContentTypeCSV)
	writer.Header().Set(constants.HeaderContentDisposition,
		fmt.Sprintf("attachment; filename=%q", export.Filename("csv")))
	writer.WriteHeader(http.StatusOK)

	if err := export.WriteCSV(request.Context(), writer); err != nil {
		// Headers are gone; log and drop the connection mid-stream.
		handler.service.logger.WarnContext(request.Context(), "csv_stream_aborted", "error", err)
	}
}

func (handler *Handler) getDataJSON(writer http.ResponseWriter, request *http.Request) {
	export, err := handler.service.NewExport(request.Context(),
		requestutil.ID(request, "resourceID"), request.URL.RawQuery)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	writer.Header().Set(constants.HeaderContentType, constants.ContentTypeJSON)
	writer.Header().Set(constants.HeaderContentDisposition,
		fmt.Sprintf("attachment; filename=%q", export.Filename("json")))
	writer.WriteHeader(http.StatusOK)

	if err := export.WriteJSON(request.Context(), writer); err != nil {
		handler.service.logger.WarnContext(request.Context(), "json_stream_aborted", "error", err)
	}
}

func (handler *Handler) getSwagger(writer http.ResponseWriter, request *http.Request) {
	resourceID := requestutil.ID(request, "resourceID")

	profile, err := handler.service.Profile(request.Context(), resourceID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	ref, err := handler.service.Meta(request.Context(), resourceID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	document, err := handler.swagger.Generate(ref, profile)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if requestutil.Format(request) == "json" {
		respond.OK(writer, document)
		return
	}

	payload, err := swagger.RenderYAML(document)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	writer.Header().Set(constants.HeaderContentType, constants.ContentTypeYAML)
	writer.WriteHeader(http.StatusOK)
	_, _ = writer.Write(payload)
}

func (handler *Handler) listAggregationExceptions(writer http.ResponseWriter, request *http.Request) {
	ids, err := handler.service.AggregationExceptions(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, ids)
}
