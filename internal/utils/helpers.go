package utils

import "strings"

// ParseDeviceID extracts the device id from a "<prefix>/<id>/<leaf>" topic
func ParseDeviceID(topic string) string {
	parts := strings.Split(topic, "/")
	if len(parts) > 1 {
		return parts[len(parts)-2]
	}
	return ""
}
