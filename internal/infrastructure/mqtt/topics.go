package mqtt

import "fmt"

// Topic prefixes for gray-surface's corner of the broker.
// The bridge publishes under graysurface/ so estate-wide subscribers
// can watch all bridges with graysurface/#.
const (
	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = "graysurface/system"
)

// Topics provides builders for gray-surface MQTT topics.
// Using these helpers ensures consistent topic naming across the codebase.
//
//	topics := mqtt.Topics{}
//	statusTopic := topics.SystemStatus()
//	// Returns: "graysurface/system/status"
type Topics struct{}

// SystemStatus returns the system status topic.
// Carries online/offline announcements, including the LWT.
//
// Example: graysurface/system/status
func (Topics) SystemStatus() string {
	return fmt.Sprintf("%s/status", TopicPrefixSystem)
}

// SystemHealth returns the periodic health report topic.
//
// Example: graysurface/system/health
func (Topics) SystemHealth() string {
	return fmt.Sprintf("%s/health", TopicPrefixSystem)
}
