package rest

const (
	// api
	RouteApiV1 = "/api/v1"

	RouteClients = RouteApiV1 + "/clientes"
	RouteClient  = RouteClients + "/:id"

	// ops
	RouteHealth  = RouteApiV1 + "/healthz"
	RouteMetrics = RouteApiV1 + "/metrics"
)
