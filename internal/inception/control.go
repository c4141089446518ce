package inception

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// DoorControlType is a door control command.
type DoorControlType int

// Door control commands.
const (
	DoorControlLock DoorControlType = iota
	DoorControlUnlock
	DoorControlOpen
	DoorControlTimedUnlock
	DoorControlLockout
	DoorControlReinstate
)

var doorControlNames = []string{"Lock", "Unlock", "Open", "TimedUnlock", "Lockout", "Reinstate"}

// String returns the wire name of the command.
func (t DoorControlType) String() string {
	if t < 0 || int(t) >= len(doorControlNames) {
		return fmt.Sprintf("DoorControlType(%d)", int(t))
	}
	return doorControlNames[t]
}

// MarshalJSON encodes the command by name.
func (t DoorControlType) MarshalJSON() ([]byte, error) {
	if t < 0 || int(t) >= len(doorControlNames) {
		return nil, fmt.Errorf("%w: door control %d", ErrInvalidControl, int(t))
	}
	return json.Marshal(doorControlNames[t])
}

// Input, output and area control commands.
const (
	InputControlIsolate   = "Isolate"
	InputControlDeisolate = "Deisolate"

	OutputControlOn  = "On"
	OutputControlOff = "Off"

	AreaControlArm      = "Arm"
	AreaControlArmStay  = "ArmStay"
	AreaControlArmSleep = "ArmSleep"
	AreaControlDisarm   = "Disarm"
)

// DoorControl is the activity body for a door.
type DoorControl struct {
	Type            string          `json:"Type"`
	DoorControlType DoorControlType `json:"DoorControlType"`
	TimeSecs        int             `json:"TimeSecs,omitempty"`
}

// InputControl is the activity body for an input.
type InputControl struct {
	Type             string `json:"Type"`
	InputControlType string `json:"InputControlType"`
}

// OutputControl is the activity body for an output.
type OutputControl struct {
	Type              string `json:"Type"`
	OutputControlType string `json:"OutputControlType"`
}

// AreaControl is the activity body for an area.
type AreaControl struct {
	Type            string `json:"Type"`
	AreaControlType string `json:"AreaControlType"`
}

func activityPath(kind EntityKind, id string) string {
	return "/control/" + string(kind) + "/" + url.PathEscape(id) + "/activity"
}

// ControlDoor sends a door command. timeSecs is only sent for a timed
// unlock, where it must be positive.
func (c *Client) ControlDoor(ctx context.Context, id string, t DoorControlType, timeSecs int) error {
	if t < DoorControlLock || t > DoorControlReinstate {
		return fmt.Errorf("%w: door control %d", ErrInvalidControl, int(t))
	}
	body := DoorControl{Type: "ControlDoor", DoorControlType: t}
	if t == DoorControlTimedUnlock {
		if timeSecs <= 0 {
			return fmt.Errorf("%w: timed unlock needs a positive duration", ErrInvalidControl)
		}
		body.TimeSecs = timeSecs
	}
	_, err := c.Request(ctx, http.MethodPost, activityPath(KindDoor, id), body, 0)
	return err
}

// ControlInput isolates or de-isolates an input.
func (c *Client) ControlInput(ctx context.Context, id, controlType string) error {
	if controlType != InputControlIsolate && controlType != InputControlDeisolate {
		return fmt.Errorf("%w: input control %q", ErrInvalidControl, controlType)
	}
	_, err := c.Request(ctx, http.MethodPost, activityPath(KindInput, id),
		InputControl{Type: "ControlInput", InputControlType: controlType}, 0)
	return err
}

// ControlOutput switches an output on or off.
func (c *Client) ControlOutput(ctx context.Context, id, controlType string) error {
	if controlType != OutputControlOn && controlType != OutputControlOff {
		return fmt.Errorf("%w: output control %q", ErrInvalidControl, controlType)
	}
	_, err := c.Request(ctx, http.MethodPost, activityPath(KindOutput, id),
		OutputControl{Type: "ControlOutput", OutputControlType: controlType}, 0)
	return err
}

// ControlArea arms or disarms an area.
func (c *Client) ControlArea(ctx context.Context, id, controlType string) error {
	switch controlType {
	case AreaControlArm, AreaControlArmStay, AreaControlArmSleep, AreaControlDisarm:
	default:
		return fmt.Errorf("%w: area control %q", ErrInvalidControl, controlType)
	}
	_, err := c.Request(ctx, http.MethodPost, activityPath(KindArea, id),
		AreaControl{Type: "ControlArea", AreaControlType: controlType}, 0)
	return err
}

// Actions lists the control actions accepted by Control for each kind.
var Actions = map[EntityKind][]string{
	KindDoor:   {"lock", "unlock", "open", "timed_unlock", "lockout", "reinstate"},
	KindInput:  {"isolate", "deisolate"},
	KindOutput: {"on", "off"},
	KindArea:   {"arm", "arm_stay", "arm_sleep", "disarm"},
}

// Control dispatches a snake_case action name to the matching kind
// control. timeSecs applies to timed_unlock only.
func (c *Client) Control(ctx context.Context, kind EntityKind, id, action string, timeSecs int) error {
	switch kind {
	case KindDoor:
		for i, name := range Actions[KindDoor] {
			if name == action {
				return c.ControlDoor(ctx, id, DoorControlType(i), timeSecs)
			}
		}
	case KindInput:
		switch action {
		case "isolate":
			return c.ControlInput(ctx, id, InputControlIsolate)
		case "deisolate":
			return c.ControlInput(ctx, id, InputControlDeisolate)
		}
	case KindOutput:
		switch action {
		case "on":
			return c.ControlOutput(ctx, id, OutputControlOn)
		case "off":
			return c.ControlOutput(ctx, id, OutputControlOff)
		}
	case KindArea:
		switch action {
		case "arm":
			return c.ControlArea(ctx, id, AreaControlArm)
		case "arm_stay":
			return c.ControlArea(ctx, id, AreaControlArmStay)
		case "arm_sleep":
			return c.ControlArea(ctx, id, AreaControlArmSleep)
		case "disarm":
			return c.ControlArea(ctx, id, AreaControlDisarm)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	return fmt.Errorf("%w: %s action %q", ErrInvalidControl, kind, action)
}
