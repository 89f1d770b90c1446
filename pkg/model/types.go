package model

import (
	"time"
)

// DeviceStatus represents the last observed health of a device.
type DeviceStatus string

const (
	StatusUp      DeviceStatus = "up"
	StatusSlow    DeviceStatus = "slow"
	StatusDown    DeviceStatus = "down"
	StatusUnknown DeviceStatus = "unknown"
)

// LocationType buckets devices into the four top-level topology zones.
type LocationType string

const (
	LocationCloud     LocationType = "cloud"
	LocationInternet  LocationType = "internet"
	LocationRemote    LocationType = "remote"
	LocationOnPremise LocationType = "on-premise"
)

// Normalize maps an empty or unrecognized location type to the default zone.
func (lt LocationType) Normalize() LocationType {
	switch lt {
	case LocationCloud, LocationInternet, LocationRemote, LocationOnPremise:
		return lt
	default:
		return LocationOnPremise
	}
}

// ViewType distinguishes the parallel overlay graphs over the same device set.
type ViewType string

const (
	ViewStandard ViewType = "standard"
	ViewWireless ViewType = "wireless"
)

// Normalize maps an absent view type to the standard view.
func (v ViewType) Normalize() ViewType {
	if v == "" {
		return ViewStandard
	}
	return v
}

// LayoutMode selects how the engine assigns coordinates.
type LayoutMode string

const (
	// ModeZoned places devices on a deterministic zone grid; physics never runs.
	ModeZoned LayoutMode = "zoned"
	// ModeFree lets the force simulation spread devices out.
	ModeFree LayoutMode = "free"
)

// Device is the monitoring backend's record for one network device.
// The engine treats it as read-mostly; only reconciliation mutates it.
type Device struct {
	ID             uint64       `json:"id"`
	Name           string       `json:"name"`
	IPAddress      string       `json:"ipAddress"`
	DeviceType     string       `json:"deviceType"`
	Location       string       `json:"location,omitempty"`
	LocationType   LocationType `json:"locationType,omitempty"`
	Status         DeviceStatus `json:"status"`
	ResponseTimeMs *float64     `json:"responseTimeMs,omitempty"`
	LastCheck      *time.Time   `json:"lastCheck,omitempty"`
}

// Connection is one raw link between two devices in one view.
// Undirected for display purposes; DeviceID/ConnectedTo order carries no meaning.
type Connection struct {
	ID          uint64   `json:"id"`
	DeviceID    uint64   `json:"deviceId"`
	ConnectedTo uint64   `json:"connectedTo"`
	ViewType    ViewType `json:"viewType"`
}

// Position is a 2D coordinate in layout space.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// GraphNode is the render-facing projection of a Device.
// Fixed nodes must never have their position recomputed by the layout engine.
type GraphNode struct {
	ID        uint64    `json:"id"`
	Position  *Position `json:"position,omitempty"`
	Fixed     bool      `json:"fixed"`
	SizeTier  int       `json:"sizeTier"`
	Signature string    `json:"-"`
}

// CurveType selects which side a curved edge bows toward.
type CurveType string

const (
	CurveNone             CurveType = ""
	CurveClockwise        CurveType = "curvedCW"
	CurveCounterClockwise CurveType = "curvedCCW"
)

// Routing carries the curvature metadata the renderer uses to keep
// parallel edges visually distinct.
type Routing struct {
	CurveType CurveType `json:"curveType,omitempty"`
	Roundness float64   `json:"roundness,omitempty"`
}

// CanonicalEdge is one deduplicated connection per unordered device pair per view.
type CanonicalEdge struct {
	ID       string   `json:"id"`
	From     uint64   `json:"from"`
	To       uint64   `json:"to"`
	ViewType ViewType `json:"viewType"`
	Routing  Routing  `json:"routing"`
}

// Rect is an axis-aligned bounding box.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Intersects reports whether two rectangles overlap with positive area.
func (r Rect) Intersects(o Rect) bool {
	return r.X < o.X+o.Width && o.X < r.X+r.Width &&
		r.Y < o.Y+o.Height && o.Y < r.Y+r.Height
}

// Center returns the rectangle's midpoint.
func (r Rect) Center() Position {
	return Position{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// Contains reports whether p lies inside the rectangle shrunk by margin.
func (r Rect) Contains(p Position, margin float64) bool {
	return p.X >= r.X+margin && p.X <= r.X+r.Width-margin &&
		p.Y >= r.Y+margin && p.Y <= r.Y+r.Height-margin
}

// Zone is a top-level rectangular region grouping devices by location type.
type Zone struct {
	Key           LocationType `json:"key"`
	Bounds        Rect         `json:"bounds"`
	Label         string       `json:"label"`
	DeviceCount   int          `json:"deviceCount"`
	DevicesPerRow int          `json:"devicesPerRow"`
	SubZones      []SubZone    `json:"subZones,omitempty"`
}

// SubZone is a nested region inside the on-premise zone grouping devices
// by device type.
type SubZone struct {
	Key           string `json:"key"`
	Bounds        Rect   `json:"bounds"`
	Label         string `json:"label"`
	DeviceCount   int    `json:"deviceCount"`
	DevicesPerRow int    `json:"devicesPerRow"`
}

// Background holds the calibration of a user-supplied backdrop image.
type Background struct {
	ImageRef          string `json:"imageRef,omitempty"`
	ZoomPercent       int    `json:"zoomPercent"`
	OpacityPercent    int    `json:"opacityPercent"`
	BrightnessPercent int    `json:"brightnessPercent"`
}

// LayoutDocument is a user-authored, persisted layout. A full save supersedes
// any previous document wholesale; there are no merge semantics.
type LayoutDocument struct {
	NodePositions map[uint64]Position `json:"nodePositions"`
	Background    Background          `json:"background"`
}

// SubTopology is the persistence resource wrapping a LayoutDocument with
// its member devices and user-facing naming.
type SubTopology struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	DeviceIDs   []uint64       `json:"deviceIds"`
	Layout      LayoutDocument `json:"layout"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

// SizeTierFor maps a device type onto a render size tier. Core fabric gear
// renders a step larger than edge devices.
func SizeTierFor(deviceType string) int {
	switch deviceType {
	case "router", "firewall":
		return 2
	case "switch", "server":
		return 1
	default:
		return 0
	}
}

// ZoneLabel returns the display label for a top-level zone.
func ZoneLabel(lt LocationType) string {
	switch lt {
	case LocationCloud:
		return "Cloud"
	case LocationInternet:
		return "Internet"
	case LocationRemote:
		return "Remote Sites"
	default:
		return "On-Premise"
	}
}
