package handlers

import (
	"fmt"
	"net/http"
)

// Healthcheck answers liveness probes. The router only mounts it for GET.
func Healthcheck(w http.ResponseWriter, r *http.Request) {
	fmt.Fprintf(w, "Im alive!")
}
