package instance

import "os"

// GetID returns the process instance identifier used in logs and lock ownership.
// SALONPOS_INSTANCE_ID wins, then the hostname, then a fixed default.
func GetID() string {
	if id := os.Getenv("SALONPOS_INSTANCE_ID"); id != "" {
		return id
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "instance-0"
}
