package handler

import (
	"net/http"
)

// HealthCheckHandler reports process liveness for deployment probes. It says
// nothing about exchange connectivity or the health of individual bots; those
// are visible through the /bots snapshot.
func HealthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}
