package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	// Product Routes
	RouteProducts           = "/products"
	RouteFeaturedProducts   = "/products/featured"
	RouteProductsByCategory = "/products/category/{category}"
	RouteRecommendations    = "/products/recommendations"
	RouteProduct            = "/products/{id}"

	// Operational Routes
	RouteHealth  = "/health"
	RouteMetrics = "/metrics"

	// Preflight requests for any path
	RoutePreflight = "/{path...}"
)
