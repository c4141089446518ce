package inception

import "strings"

// State is the constraint satisfied by every public-state bitflag type.
type State interface {
	~uint32

	// Flags returns the names of the set flags in bit order.
	Flags() []string

	// Descriptions returns the human-readable meaning of each set flag.
	Descriptions() []string
}

// flagInfo names one bit of a public-state set.
type flagInfo struct {
	bit         uint32
	name        string
	description string
}

func flagNames(value uint32, table []flagInfo) []string {
	names := make([]string, 0, len(table))
	for _, f := range table {
		if value&f.bit != 0 {
			names = append(names, f.name)
		}
	}
	return names
}

func flagDescriptions(value uint32, table []flagInfo) []string {
	descs := make([]string, 0, len(table))
	for _, f := range table {
		if value&f.bit != 0 {
			descs = append(descs, f.description)
		}
	}
	return descs
}

func flagString(value uint32, table []flagInfo) string {
	if value == 0 {
		return "NONE"
	}
	return strings.Join(flagNames(value, table), "|")
}

// DoorState is the public state of a door.
type DoorState uint32

// Door public-state flags.
const (
	DoorUnlocked          DoorState = 0x0001
	DoorOpen              DoorState = 0x0002
	DoorLockedOut         DoorState = 0x0004
	DoorForced            DoorState = 0x0008
	DoorHeldOpenWarning   DoorState = 0x0010
	DoorHeldOpenTooLong   DoorState = 0x0020
	DoorBreakglass        DoorState = 0x0040
	DoorReaderTamper      DoorState = 0x0080
	DoorLocked            DoorState = 0x0100
	DoorClosed            DoorState = 0x0200
	DoorHeldResponseMuted DoorState = 0x0400
	DoorBatteryLow        DoorState = 0x0800
	DoorLockOffline       DoorState = 0x1000
)

var doorFlags = []flagInfo{
	{uint32(DoorUnlocked), "UNLOCKED", "Door is unlocked"},
	{uint32(DoorOpen), "OPEN", "Door is open"},
	{uint32(DoorLockedOut), "LOCKED_OUT", "Door is locked out"},
	{uint32(DoorForced), "FORCED", "Door has been forced open"},
	{uint32(DoorHeldOpenWarning), "HELD_OPEN_WARNING", "Door has nearly been held open too long"},
	{uint32(DoorHeldOpenTooLong), "HELD_OPEN_TOO_LONG", "Door has been held open too long"},
	{uint32(DoorBreakglass), "BREAKGLASS", "Door's breakglass detector has been triggered"},
	{uint32(DoorReaderTamper), "READER_TAMPER", "A reader connected to the door has been tampered with"},
	{uint32(DoorLocked), "LOCKED", "Door is locked"},
	{uint32(DoorClosed), "CLOSED", "Door is closed"},
	{uint32(DoorHeldResponseMuted), "HELD_RESPONSE_MUTED", "Door's Held Open response has been muted by a user"},
	{uint32(DoorBatteryLow), "BATTERY_LOW", "Door Wireless Lock has Low Battery"},
	{uint32(DoorLockOffline), "LOCK_OFFLINE", "Door Wireless Lock Offline"},
}

// Has reports whether every bit of f is set.
func (s DoorState) Has(f DoorState) bool { return s&f == f && f != 0 }

// Flags returns the names of the set flags in bit order.
func (s DoorState) Flags() []string { return flagNames(uint32(s), doorFlags) }

// Descriptions returns the meaning of each set flag.
func (s DoorState) Descriptions() []string { return flagDescriptions(uint32(s), doorFlags) }

func (s DoorState) String() string { return flagString(uint32(s), doorFlags) }

// InputState is the public state of an input.
type InputState uint32

// Input public-state flags.
const (
	InputActive                  InputState = 0x001
	InputTamper                  InputState = 0x002
	InputIsolated                InputState = 0x004
	InputMask                    InputState = 0x008
	InputLowBattery              InputState = 0x010
	InputPollFailed              InputState = 0x020
	InputSealed                  InputState = 0x040
	InputWirelessDoorBatteryLow  InputState = 0x080
	InputWirelessDoorLockOffline InputState = 0x100
)

var inputFlags = []flagInfo{
	{uint32(InputActive), "ACTIVE", "Input is active/unsealed"},
	{uint32(InputTamper), "TAMPER", "Input has been tampered with"},
	{uint32(InputIsolated), "ISOLATED", "Input is temporarily or permanently isolated from the system (bypassed)"},
	{uint32(InputMask), "MASK", "Input is being masked/blocked"},
	{uint32(InputLowBattery), "LOW_BATTERY", "Input is reporting low battery (RF detector)"},
	{uint32(InputPollFailed), "POLL_FAILED", "Failed to poll the input (RF detector)"},
	{uint32(InputSealed), "SEALED", "Input is inactive/sealed"},
	{uint32(InputWirelessDoorBatteryLow), "WIRELESS_DOOR_BATTERY_LOW", "Input is reporting low battery (Wireless Door)"},
	{uint32(InputWirelessDoorLockOffline), "WIRELESS_DOOR_LOCK_OFFLINE", "Input is reporting lock offline (Wireless Door)"},
}

// Has reports whether every bit of f is set.
func (s InputState) Has(f InputState) bool { return s&f == f && f != 0 }

// Flags returns the names of the set flags in bit order.
func (s InputState) Flags() []string { return flagNames(uint32(s), inputFlags) }

// Descriptions returns the meaning of each set flag.
func (s InputState) Descriptions() []string { return flagDescriptions(uint32(s), inputFlags) }

func (s InputState) String() string { return flagString(uint32(s), inputFlags) }

// OutputState is the public state of an output.
type OutputState uint32

// Output public-state flags.
const (
	OutputOn  OutputState = 0x001
	OutputOff OutputState = 0x002
)

var outputFlags = []flagInfo{
	{uint32(OutputOn), "ON", "Output is active"},
	{uint32(OutputOff), "OFF", "Output is inactive"},
}

// Has reports whether every bit of f is set.
func (s OutputState) Has(f OutputState) bool { return s&f == f && f != 0 }

// Flags returns the names of the set flags in bit order.
func (s OutputState) Flags() []string { return flagNames(uint32(s), outputFlags) }

// Descriptions returns the meaning of each set flag.
func (s OutputState) Descriptions() []string { return flagDescriptions(uint32(s), outputFlags) }

func (s OutputState) String() string { return flagString(uint32(s), outputFlags) }

// AreaState is the public state of an area.
type AreaState uint32

// Area public-state flags.
const (
	AreaArmed                 AreaState = 0x0001
	AreaAlarm                 AreaState = 0x0002
	AreaEntryDelay            AreaState = 0x0004
	AreaExitDelay             AreaState = 0x0008
	AreaArmWarning            AreaState = 0x0010
	AreaDeferDisarmed         AreaState = 0x0020
	AreaDetectingActiveInputs AreaState = 0x0040
	AreaWalkTestActive        AreaState = 0x0080
	AreaAwayArm               AreaState = 0x0100
	AreaStayArm               AreaState = 0x0200
	AreaSleepArm              AreaState = 0x0400
	AreaDisarmed              AreaState = 0x0800
	AreaArmReady              AreaState = 0x1000
)

var areaFlags = []flagInfo{
	{uint32(AreaArmed), "ARMED", "Area is armed"},
	{uint32(AreaAlarm), "ALARM", "Area is in alarm"},
	{uint32(AreaEntryDelay), "ENTRY_DELAY", "Area is in entry delay"},
	{uint32(AreaExitDelay), "EXIT_DELAY", "Area is in exit delay"},
	{uint32(AreaArmWarning), "ARM_WARNING", "Area is in arm warning"},
	{uint32(AreaDeferDisarmed), "DEFER_DISARMED", "Area has been defer disarmed (temporarily disarmed)"},
	{uint32(AreaDetectingActiveInputs), "DETECTING_ACTIVE_INPUTS", "One or more inputs in this area are currently unsealed"},
	{uint32(AreaWalkTestActive), "WALK_TEST_ACTIVE", "A walk test is currently active for this area"},
	{uint32(AreaAwayArm), "AWAY_ARM", "Area is armed in Full mode"},
	{uint32(AreaStayArm), "STAY_ARM", "Area is armed in Perimeter mode"},
	{uint32(AreaSleepArm), "SLEEP_ARM", "Area is armed in Night mode"},
	{uint32(AreaDisarmed), "DISARMED", "Area is disarmed"},
	{uint32(AreaArmReady), "ARM_READY", "Area is ready to arm (i.e. no active inputs)"},
}

// Has reports whether every bit of f is set.
func (s AreaState) Has(f AreaState) bool { return s&f == f && f != 0 }

// Flags returns the names of the set flags in bit order.
func (s AreaState) Flags() []string { return flagNames(uint32(s), areaFlags) }

// Descriptions returns the meaning of each set flag.
func (s AreaState) Descriptions() []string { return flagDescriptions(uint32(s), areaFlags) }

func (s AreaState) String() string { return flagString(uint32(s), areaFlags) }

// InputType is the hardware class of an input.
type InputType int

// Input types.
const (
	InputTypeUnknown InputType = iota
	InputTypeDetector
	InputTypeSwitch
	InputTypeLogical
	InputTypeAnalog
	InputTypeRFDevice
	InputTypeWirelessDoorHealth
)

var inputTypeNames = [...]string{
	"unknown", "detector", "switch", "logical", "analog", "rf_device", "wireless_door_health",
}

func (t InputType) String() string {
	if t < 0 || int(t) >= len(inputTypeNames) {
		return "unknown"
	}
	return inputTypeNames[t]
}
