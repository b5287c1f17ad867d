package messaging

// HealthStatus represents the health state of a broker connection.
type HealthStatus struct {
	Connected bool   `json:"connected"`
	Error     string `json:"error,omitempty"`
}

// CheckQueueHealth reports whether the queue connection is usable.
func CheckQueueHealth(q Queue) HealthStatus {
	if q == nil {
		return HealthStatus{Error: "queue client is nil"}
	}
	if !q.IsConnected() {
		return HealthStatus{Error: "not connected to message broker"}
	}
	return HealthStatus{Connected: true}
}
