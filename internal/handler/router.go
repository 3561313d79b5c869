package handler

import "net/http"

// Routes bundles the handlers mounted by NewRouter
type Routes struct {
	Auth        *AuthHandler
	Products    *ProductHandler
	Inventories *InventoryHandler
	Items       *ItemHandler
	Alerts      *AlertsHandler
	Health      *HealthHandler
	Metrics     http.Handler

	// LoginGuard wraps the public register and login endpoints, typically
	// with a tighter rate limit. Optional.
	LoginGuard func(http.Handler) http.Handler
}

// NewRouter registers every endpoint on a new ServeMux
func NewRouter(rt Routes) *http.ServeMux {
	mux := http.NewServeMux()

	guard := rt.LoginGuard
	if guard == nil {
		guard = func(h http.Handler) http.Handler { return h }
	}

	mux.Handle("POST /api/auth/register", guard(http.HandlerFunc(rt.Auth.Register)))
	mux.Handle("POST /api/auth/login", guard(http.HandlerFunc(rt.Auth.Login)))
	mux.HandleFunc("POST /api/auth/change-password", rt.Auth.ChangePassword)

	mux.HandleFunc("POST /api/products", rt.Products.Create)
	mux.HandleFunc("GET /api/products", rt.Products.List)
	mux.HandleFunc("GET /api/products/{id}", rt.Products.Get)
	mux.HandleFunc("PUT /api/products/{id}", rt.Products.Update)
	mux.HandleFunc("PATCH /api/products/{id}", rt.Products.Patch)
	mux.HandleFunc("DELETE /api/products/{id}", rt.Products.Delete)

	mux.HandleFunc("POST /api/inventories", rt.Inventories.Create)
	mux.HandleFunc("GET /api/inventories", rt.Inventories.List)
	mux.HandleFunc("GET /api/inventories/{id}", rt.Inventories.Get)
	mux.HandleFunc("GET /api/inventories/{id}/items", rt.Inventories.Items)
	mux.HandleFunc("PUT /api/inventories/{id}", rt.Inventories.Update)
	mux.HandleFunc("PATCH /api/inventories/{id}", rt.Inventories.Patch)
	mux.HandleFunc("DELETE /api/inventories/{id}", rt.Inventories.Delete)

	mux.HandleFunc("POST /api/items", rt.Items.Create)
	mux.HandleFunc("GET /api/items", rt.Items.List)
	mux.HandleFunc("GET /api/items/low-stock", rt.Items.LowStock)
	mux.HandleFunc("GET /api/items/{id}", rt.Items.Get)
	mux.HandleFunc("PUT /api/items/{id}", rt.Items.Update)
	mux.HandleFunc("PATCH /api/items/{id}", rt.Items.Patch)
	mux.HandleFunc("DELETE /api/items/{id}", rt.Items.Delete)
	mux.HandleFunc("POST /api/items/{id}/adjust", rt.Items.Adjust)

	if rt.Alerts != nil {
		mux.HandleFunc("GET /ws/alerts", rt.Alerts.Stream)
	}

	mux.HandleFunc("GET /healthz", rt.Health.Health)
	mux.HandleFunc("GET /readyz", rt.Health.Ready)
	if rt.Metrics != nil {
		mux.Handle("GET /metrics", rt.Metrics)
	}

	return mux
}
