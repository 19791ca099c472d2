// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router tests verify the route table and the health endpoint.
package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"heritagepk/internal/handlers"
)

func testRouter() chi.Router {
	// Handler groups are never invoked by these tests, so empty
	// dependency sets are fine.
	admin := handlers.NewAdmin(nil, nil, nil, nil, nil, nil, nil, nil, nil, nil, nil, nil, nil)
	auth := handlers.NewAuth(nil, nil, nil)
	public := handlers.NewPublic(nil, nil, nil, nil, nil, nil, nil)
	api := handlers.NewAPI(nil, nil, nil, nil, nil, nil, nil, nil)
	return New(nil, admin, auth, public, api)
}

func TestRouteTable(t *testing.T) {
	r := testRouter()

	routes := []struct {
		method string
		path   string
	}{
		{"GET", "/"},
		{"GET", "/health"},
		{"GET", "/admin/login"},
		{"POST", "/admin/login"},
		{"POST", "/admin/logout"},
		{"GET", "/admin"},
		{"GET", "/admin/layouts/sections"},
		{"POST", "/admin/layouts/sections/some-id"},
		{"GET", "/admin/layouts/templates"},
		{"POST", "/admin/layouts/templates"},
		{"GET", "/admin/layouts/templates/some-id"},
		{"POST", "/admin/layouts/templates/some-id/delete"},
		{"GET", "/admin/home"},
		{"POST", "/admin/home"},
		{"GET", "/admin/categories"},
		{"POST", "/admin/categories"},
		{"POST", "/admin/categories/some-id/delete"},
		{"GET", "/admin/icons"},
		{"POST", "/admin/icons"},
		{"POST", "/admin/icons/mosque/delete"},
		{"GET", "/admin/media"},
		{"POST", "/admin/media"},
		{"POST", "/admin/media/some-id/delete"},
		{"GET", "/api/profile"},
		{"PUT", "/api/profile"},
		{"POST", "/api/profile/avatar"},
		{"GET", "/api/portfolio"},
		{"POST", "/api/portfolio"},
		{"POST", "/api/portfolio/reorder"},
		{"DELETE", "/api/portfolio/some-id"},
		{"GET", "/api/sites/some-id/reviews"},
		{"POST", "/api/sites/some-id/reviews"},
		{"POST", "/api/reviews/some-id/helpful"},
		{"GET", "/api/wishlist"},
		{"PUT", "/api/wishlist/some-id"},
		{"DELETE", "/api/wishlist/some-id"},
		{"GET", "/api/trips"},
		{"POST", "/api/trips"},
		{"GET", "/api/trips/some-id"},
		{"PUT", "/api/trips/some-id/stops"},
		{"DELETE", "/api/trips/some-id"},
		{"POST", "/api/citations/resolve"},
	}

	for _, rt := range routes {
		rctx := chi.NewRouteContext()
		if !r.Match(rctx, rt.method, rt.path) {
			t.Errorf("%s %s not routed", rt.method, rt.path)
		}
	}
}

func TestUnknownRouteDoesNotMatch(t *testing.T) {
	r := testRouter()

	rctx := chi.NewRouteContext()
	if r.Match(rctx, "GET", "/api/unknown") {
		t.Error("GET /api/unknown should not match")
	}
	if r.Match(rctx, "DELETE", "/admin/media") {
		t.Error("DELETE /admin/media should not match")
	}
}

func TestHealthHandler(t *testing.T) {
	public := handlers.NewPublic(nil, nil, nil, nil, nil, nil, nil)

	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/health", nil)
	public.Health(w, r)

	if w.Code != http.StatusOK {
		t.Errorf("status: got %d, want 200", w.Code)
	}
	if got := w.Body.String(); got != "ok" {
		t.Errorf("body: got %q, want %q", got, "ok")
	}
}
