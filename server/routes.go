package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) initRoutes() {
	// Public catalog routes
	s.RegisterRouteHandler("GET "+RouteFeaturedProducts, ChainMiddleware(s.FeaturedProductsHandler(), s.APIMiddleware(s.CompressionMiddleware)...))
	s.RegisterRouteHandler("GET "+RouteProductsByCategory, ChainMiddleware(s.ProductsByCategoryHandler(), s.APIMiddleware(s.CompressionMiddleware)...))

	// Signed in customers
	s.RegisterRouteHandler("GET "+RouteRecommendations, ChainMiddleware(s.RecommendationsHandler(), s.APIMiddleware(s.RequireAuth())...))

	// Admin routes
	s.RegisterRouteHandler("GET "+RouteProducts, ChainMiddleware(s.AllProductsHandler(), s.APIMiddleware(s.RequireAuth(), s.RequireAdmin(), s.CompressionMiddleware)...))
	s.RegisterRouteHandler("POST "+RouteProducts, ChainMiddleware(s.CreateProductHandler(), s.APIMiddleware(s.RequireAuth(), s.RequireAdmin())...))
	s.RegisterRouteHandler("PATCH "+RouteProduct, ChainMiddleware(s.ToggleFeaturedHandler(), s.APIMiddleware(s.RequireAuth(), s.RequireAdmin())...))
	s.RegisterRouteHandler("DELETE "+RouteProduct, ChainMiddleware(s.DeleteProductHandler(), s.APIMiddleware(s.RequireAuth(), s.RequireAdmin())...))

	s.RegisterRouteHandler("OPTIONS "+RoutePreflight, ChainMiddleware(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}, s.CorsMiddleware))

	s.RegisterRouteFunc("GET "+RouteHealth, s.HealthHandler())
	s.RegisterRouteHandler("GET "+RouteMetrics, promhttp.Handler())
}
