// Package seeder generates realistic pipeline events for load and
// integration testing.
package seeder

import (
	"fmt"
	"math/rand"

	"github.com/brianvoe/gofakeit/v6"
)

var severities = []string{"critical", "high", "medium", "low"}

// GenerateEvent creates one random event of the given type. An empty
// eventType picks one of the supported types at random.
func GenerateEvent(eventType string) map[string]interface{} {
	if eventType == "" {
		types := []string{"security_alert", "performance_metric", "application_log"}
		eventType = types[rand.Intn(len(types))]
	}

	switch eventType {
	case "security_alert":
		return generateSecurityAlert()
	case "performance_metric":
		return generatePerformanceMetric()
	case "application_log":
		return generateApplicationLog()
	default:
		return generateApplicationLog()
	}
}

func generateSecurityAlert() map[string]interface{} {
	attacks := []string{"brute force attempt", "privilege escalation", "suspicious login", "port scan detected"}
	return map[string]interface{}{
		"event_type": "security_alert",
		"source":     gofakeit.AppName(),
		"severity":   severities[rand.Intn(len(severities))],
		"message":    attacks[rand.Intn(len(attacks))],
		"metadata": map[string]interface{}{
			"src_ip":   gofakeit.IPv4Address(),
			"username": gofakeit.Username(),
			"hostname": gofakeit.DomainName(),
		},
	}
}

func generatePerformanceMetric() map[string]interface{} {
	// Skew toward the interesting range so some events trip the CPU alert.
	cpu := rand.Float64() * 100
	if rand.Float32() < 0.2 {
		cpu = 90 + rand.Float64()*10
	}
	return map[string]interface{}{
		"event_type": "performance_metric",
		"source":     gofakeit.AppName(),
		"severity":   severities[rand.Intn(len(severities))],
		"metrics": map[string]interface{}{
			"cpu_usage":    cpu,
			"memory_usage": rand.Float64() * 100,
			"disk_io":      rand.Intn(10000),
		},
	}
}

func generateApplicationLog() map[string]interface{} {
	messages := []string{
		fmt.Sprintf("request completed in %dms", rand.Intn(500)),
		fmt.Sprintf("ERROR failed to reach %s", gofakeit.DomainName()),
		fmt.Sprintf("Exception in worker %d", rand.Intn(16)),
		"cache warmed",
		fmt.Sprintf("user %s signed in", gofakeit.Username()),
	}
	return map[string]interface{}{
		"event_type": "application_log",
		"source":     gofakeit.AppName(),
		"severity":   severities[rand.Intn(len(severities))],
		"message":    messages[rand.Intn(len(messages))],
	}
}
