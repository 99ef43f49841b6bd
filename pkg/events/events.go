// Package events publishes learn and generate notifications so other
// automation components can react to new commands and fresh configuration.
package events

import (
	"context"
	"fmt"
	"time"
)

// TopicPrefix is the root of every remotehub topic.
const TopicPrefix = "remotehub"

// Topics builds remotehub MQTT topics.
type Topics struct{}

// Learn returns the topic for learn results of one device.
//
// Example: remotehub/learn/living_room_tv
func (Topics) Learn(deviceID string) string {
	return fmt.Sprintf("%s/learn/%s", TopicPrefix, deviceID)
}

// Generate returns the topic for configuration generation results.
func (Topics) Generate() string {
	return TopicPrefix + "/generate"
}

// Status returns the retained online/offline topic.
func (Topics) Status() string {
	return TopicPrefix + "/status"
}

// LearnEvent reports the outcome of a learn session.
type LearnEvent struct {
	SessionID    string    `json:"session_id,omitempty"`
	DeviceID     string    `json:"device_id"`
	Command      string    `json:"command"`
	Kind         string    `json:"kind"`
	Outcome      string    `json:"outcome"`
	FrequencyMHz float64   `json:"frequency_mhz,omitempty"`
	Polls        int       `json:"polls"`
	Error        string    `json:"error,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

// GenerateEvent reports a completed configuration generation.
type GenerateEvent struct {
	Devices      int       `json:"devices"`
	Skipped      int       `json:"skipped"`
	Helpers      int       `json:"helpers"`
	EntitiesPath string    `json:"entities_path"`
	HelpersPath  string    `json:"helpers_path"`
	Timestamp    time.Time `json:"timestamp"`
}

// Publisher delivers events. Implementations must be safe for concurrent use.
type Publisher interface {
	PublishLearn(ctx context.Context, ev LearnEvent) error
	PublishGenerate(ctx context.Context, ev GenerateEvent) error
	Close() error
}

// NullPublisher discards every event. It is used when no broker is configured.
type NullPublisher struct{}

func (NullPublisher) PublishLearn(context.Context, LearnEvent) error       { return nil }
func (NullPublisher) PublishGenerate(context.Context, GenerateEvent) error { return nil }
func (NullPublisher) Close() error                                         { return nil }
