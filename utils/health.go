package utils

import (
	"sync"
	"time"
)

// Health is the service health snapshot reported by the /service endpoint.
type Health struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Uptime  int64  `json:"uptime_seconds"`
}

var (
	healthMu      sync.RWMutex
	healthStatus  = "STARTING"
	healthMessage = "Service is starting"
	startedAt     = time.Now()
)

// SetHealthStatus updates the health status of the service.
func SetHealthStatus(status, message string) {
	healthMu.Lock()
	defer healthMu.Unlock()
	healthStatus = status
	healthMessage = message
}

// GetHealth returns the current health status of the service.
func GetHealth() Health {
	healthMu.RLock()
	defer healthMu.RUnlock()
	return Health{
		Status:  healthStatus,
		Message: healthMessage,
		Uptime:  int64(time.Since(startedAt).Seconds()),
	}
}
