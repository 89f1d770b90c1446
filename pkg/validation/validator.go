// Package validation rejects malformed requests at the edge-creation and
// persistence boundaries, before they ever reach the graph model.
package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/netobserve/topoview/pkg/model"
)

var (
	// validate is a singleton validator instance
	validate *validator.Validate

	// Validation constants
	MaxNameLength        = 100
	MaxDescriptionLength = 500
	MaxSubTopologyNodes  = 500
)

func init() {
	validate = validator.New()
}

// ConnectionRequest is a request to create a connection between two devices.
type ConnectionRequest struct {
	DeviceID    uint64 `json:"deviceId" validate:"required,min=1"`
	ConnectedTo uint64 `json:"connectedTo" validate:"required,min=1"`
	ViewType    string `json:"viewType" validate:"required,oneof=standard wireless"`
}

// SubTopologyRequest is a request to create or replace a sub-topology.
type SubTopologyRequest struct {
	Name        string               `json:"name" validate:"required,min=1,max=100"`
	Description string               `json:"description" validate:"omitempty,max=500"`
	DeviceIDs   []uint64             `json:"deviceIds" validate:"required,min=1,max=500,dive,min=1"`
	Layout      model.LayoutDocument `json:"layout"`
}

// ValidateConnectionRequest rejects self-loops and, when a view filter is
// active, connections from the other view. Rejections are reported to the
// caller, never silently dropped.
func ValidateConnectionRequest(req *ConnectionRequest, activeFilter *model.ViewType) error {
	if req == nil {
		return errors.New("connection request cannot be nil")
	}
	if err := validate.Struct(req); err != nil {
		return formatValidationError(err)
	}
	if req.DeviceID == req.ConnectedTo {
		return model.NewError("ValidateConnection").Connection(req.DeviceID).Cause(model.ErrSelfLoop)
	}
	if activeFilter != nil && model.ViewType(req.ViewType) != *activeFilter {
		return model.NewError("ValidateConnection").
			Context(fmt.Sprintf("view %q filtered to %q", req.ViewType, *activeFilter)).
			Cause(model.ErrViewFiltered)
	}
	return nil
}

// ValidateConnection checks a raw connection from a backend snapshot.
// Invalid connections must never reach the graph model.
func ValidateConnection(c model.Connection) error {
	req := &ConnectionRequest{
		DeviceID:    c.DeviceID,
		ConnectedTo: c.ConnectedTo,
		ViewType:    string(c.ViewType.Normalize()),
	}
	return ValidateConnectionRequest(req, nil)
}

// ValidateSubTopologyRequest validates a sub-topology create/replace request.
func ValidateSubTopologyRequest(req *SubTopologyRequest) error {
	if req == nil {
		return errors.New("sub-topology request cannot be nil")
	}
	if err := validate.Struct(req); err != nil {
		return formatValidationError(err)
	}

	// Every stored position must belong to a member device.
	members := make(map[uint64]bool, len(req.DeviceIDs))
	for _, id := range req.DeviceIDs {
		members[id] = true
	}
	for id := range req.Layout.NodePositions {
		if !members[id] {
			return fmt.Errorf("Layout: position stored for device %d which is not a member", id)
		}
	}
	return nil
}

// formatValidationError turns validator's field errors into a readable
// single-line message.
func formatValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			parts = append(parts, fmt.Sprintf("%s is required", fe.Field()))
		case "min":
			parts = append(parts, fmt.Sprintf("%s below minimum %s", fe.Field(), fe.Param()))
		case "max":
			parts = append(parts, fmt.Sprintf("%s exceeds maximum %s", fe.Field(), fe.Param()))
		case "oneof":
			parts = append(parts, fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param()))
		default:
			parts = append(parts, fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag()))
		}
	}
	return errors.New(strings.Join(parts, "; "))
}
