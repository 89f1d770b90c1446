// Package events defines the push-event stream feeding the reconciliation
// engine, a typed in-process bus, and the transport sources that produce
// events from the monitoring backend.
package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/netobserve/topoview/pkg/model"
)

// Type identifies a push event.
type Type string

const (
	TypeStatusUpdate    Type = "status_update"
	TypeDeviceDeleted   Type = "device_deleted"
	TypeTopologyUpdated Type = "topology_updated"
)

// Event is a discrete push event from the monitoring backend.
type Event interface {
	Kind() Type
}

// StatusUpdate reports a device health change.
type StatusUpdate struct {
	ID             uint64             `json:"id"`
	Status         model.DeviceStatus `json:"status"`
	ResponseTimeMs *float64           `json:"responseTime,omitempty"`
	LastCheck      *time.Time         `json:"lastCheck,omitempty"`
}

// Kind implements Event.
func (StatusUpdate) Kind() Type { return TypeStatusUpdate }

// DeviceDeleted reports a device removal.
type DeviceDeleted struct {
	ID uint64 `json:"id"`
}

// Kind implements Event.
func (DeviceDeleted) Kind() Type { return TypeDeviceDeleted }

// TopologyUpdated signals that connections changed and a full snapshot
// refetch is needed.
type TopologyUpdated struct{}

// Kind implements Event.
func (TopologyUpdated) Kind() Type { return TypeTopologyUpdated }

// envelope is the wire framing used by both transports.
type envelope struct {
	Type    Type            `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Parse decodes one wire message into a typed event.
func Parse(data []byte) (Event, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode event envelope: %w", err)
	}
	switch env.Type {
	case TypeStatusUpdate:
		var ev StatusUpdate
		if err := json.Unmarshal(env.Payload, &ev); err != nil {
			return nil, fmt.Errorf("decode status_update: %w", err)
		}
		return ev, nil
	case TypeDeviceDeleted:
		var ev DeviceDeleted
		if err := json.Unmarshal(env.Payload, &ev); err != nil {
			return nil, fmt.Errorf("decode device_deleted: %w", err)
		}
		return ev, nil
	case TypeTopologyUpdated:
		return TopologyUpdated{}, nil
	default:
		return nil, fmt.Errorf("unknown event type %q", env.Type)
	}
}

// Marshal encodes a typed event into its wire framing.
func Marshal(ev Event) ([]byte, error) {
	env := envelope{Type: ev.Kind()}
	switch ev.Kind() {
	case TypeStatusUpdate, TypeDeviceDeleted:
		payload, err := json.Marshal(ev)
		if err != nil {
			return nil, err
		}
		env.Payload = payload
	}
	return json.Marshal(env)
}
