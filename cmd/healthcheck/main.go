// Container healthcheck: exits 0 when the assistant's liveness endpoint
// answers. Kept dependency-free so the image stays small.
package main

import (
	"fmt"
	"net/http"
	"os"
	"time"
)

func main() {
	port := os.Getenv("WABOT_PORT")
	if port == "" {
		port = "8000"
	}
	endpoint := os.Getenv("WABOT_HEALTHCHECK_PATH")
	if endpoint == "" {
		endpoint = "/healthz"
	}

	client := &http.Client{Timeout: 8 * time.Second}
	resp, err := client.Get(fmt.Sprintf("http://localhost:%s%s", port, endpoint))
	if err != nil {
		fmt.Fprintf(os.Stderr, "healthcheck: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		fmt.Fprintf(os.Stderr, "healthcheck: status %d\n", resp.StatusCode)
		os.Exit(1)
	}
}
