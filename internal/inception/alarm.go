package inception

// AlarmState is the alarm-panel condition derived from an area's public state.
type AlarmState string

// Alarm states.
const (
	AlarmNone       AlarmState = "none"
	AlarmDisarmed   AlarmState = "disarmed"
	AlarmArmedAway  AlarmState = "armed_away"
	AlarmArmedHome  AlarmState = "armed_home"
	AlarmArmedNight AlarmState = "armed_night"
	AlarmArming     AlarmState = "arming"
	AlarmPending    AlarmState = "pending"
	AlarmTriggered  AlarmState = "triggered"
)

// alarmPriority is tested in order and the first set flag wins. An armed
// area in alarm therefore reports armed_away, and ARMED takes precedence
// over the specific arm modes.
var alarmPriority = []struct {
	flag  AreaState
	state AlarmState
}{
	{AreaArmed, AlarmArmedAway},
	{AreaAlarm, AlarmTriggered},
	{AreaDisarmed, AlarmDisarmed},
	{AreaStayArm, AlarmArmedHome},
	{AreaAwayArm, AlarmArmedAway},
	{AreaSleepArm, AlarmArmedNight},
	{AreaArmWarning, AlarmArming},
	{AreaEntryDelay, AlarmPending},
	{AreaExitDelay, AlarmPending},
}

// AlarmState derives the alarm-panel condition. It returns AlarmNone when
// no mapped flag is set.
func (s AreaState) AlarmState() AlarmState {
	for _, p := range alarmPriority {
		if s&p.flag != 0 {
			return p.state
		}
	}
	return AlarmNone
}
