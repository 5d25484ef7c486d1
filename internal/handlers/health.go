package handlers

import "net/http"

// HealthHandler serves the unauthenticated liveness endpoint.
type HealthHandler struct {
	serviceName    string
	serviceVersion string
}

func NewHealthHandler(serviceName, serviceVersion string) *HealthHandler {
	return &HealthHandler{
		serviceName:    serviceName,
		serviceVersion: serviceVersion,
	}
}

// HealthcheckResponse reports service availability.
type HealthcheckResponse struct {
	Status  string `json:"status"`
	Title   string `json:"title"`
	Version string `json:"version"`
	Message string `json:"message"`
}

// Healthcheck reports that the service is up.
func (h *HealthHandler) Healthcheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthcheckResponse{
		Status:  "OK",
		Title:   h.serviceName,
		Version: h.serviceVersion,
		Message: "service is available",
	})
}

// HealthcheckHead answers HEAD probes from uptime monitors.
func (h *HealthHandler) HealthcheckHead(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
