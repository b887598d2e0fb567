package motor

import "strconv"

// AxisParameter numbers for SAP/GAP/STAP/RSAP.
type AxisParameter byte

// Basic axis parameters.
const (
	TargetPosition          AxisParameter = 0
	ActualPosition          AxisParameter = 1
	TargetSpeed             AxisParameter = 2
	ActualSpeed             AxisParameter = 3
	MaxPositioningSpeed     AxisParameter = 4
	MaxAcceleration         AxisParameter = 5
	AbsMaxCurrent           AxisParameter = 6
	StandbyCurrent          AxisParameter = 7
	TargetPositionReached   AxisParameter = 8
	ReferenceSwitchStatus   AxisParameter = 9
	RightLimitSwitchStatus  AxisParameter = 10
	LeftLimitSwitchStatus   AxisParameter = 11
	RightLimitSwitchDisable AxisParameter = 12
	LeftLimitSwitchDisable  AxisParameter = 13
	StepratePrescaler       AxisParameter = 14
)

// Advanced axis parameters.
const (
	MinimumSpeed                 AxisParameter = 130
	ActualAcceleration           AxisParameter = 135
	AccelerationThreshold        AxisParameter = 136
	AccelerationDivisor          AxisParameter = 137
	RampMode                     AxisParameter = 138
	InterruptFlags               AxisParameter = 139
	MicrostepResolution          AxisParameter = 140
	RefSwitchTolerance           AxisParameter = 141
	SnapshotPosition             AxisParameter = 142
	MaxCurrentAtRest             AxisParameter = 143
	MaxCurrentAtLowAcceleration  AxisParameter = 144
	MaxCurrentAtHighAcceleration AxisParameter = 145
	AccelerationFactor           AxisParameter = 146
	RefSwitchDisableFlag         AxisParameter = 147
	LimitSwitchDisableFlag       AxisParameter = 148
	SoftStopFlag                 AxisParameter = 149
	PositionLatchFlag            AxisParameter = 151
	InterruptMask                AxisParameter = 152
	RampDivisor                  AxisParameter = 153
	PulseDivisor                 AxisParameter = 154
	ReferencingMode              AxisParameter = 193
	ReferencingSearchSpeed       AxisParameter = 194
	ReferencingSwitchSpeed       AxisParameter = 195
	Freewheeling                 AxisParameter = 204
	StallDetectionThreshold      AxisParameter = 205
	ActualLoadValue              AxisParameter = 206
	DriverErrorFlags             AxisParameter = 208
)

var axisParameterNames = map[AxisParameter]string{
	TargetPosition:               "target-position",
	ActualPosition:               "actual-position",
	TargetSpeed:                  "target-speed",
	ActualSpeed:                  "actual-speed",
	MaxPositioningSpeed:          "max-positioning-speed",
	MaxAcceleration:              "max-acceleration",
	AbsMaxCurrent:                "abs-max-current",
	StandbyCurrent:               "standby-current",
	TargetPositionReached:        "target-position-reached",
	ReferenceSwitchStatus:        "reference-switch-status",
	RightLimitSwitchStatus:       "right-limit-switch-status",
	LeftLimitSwitchStatus:        "left-limit-switch-status",
	RightLimitSwitchDisable:      "right-limit-switch-disable",
	LeftLimitSwitchDisable:       "left-limit-switch-disable",
	StepratePrescaler:            "steprate-prescaler",
	MinimumSpeed:                 "minimum-speed",
	ActualAcceleration:           "actual-acceleration",
	AccelerationThreshold:        "acceleration-threshold",
	AccelerationDivisor:          "acceleration-divisor",
	RampMode:                     "ramp-mode",
	InterruptFlags:               "interrupt-flags",
	MicrostepResolution:          "microstep-resolution",
	RefSwitchTolerance:           "ref-switch-tolerance",
	SnapshotPosition:             "snapshot-position",
	MaxCurrentAtRest:             "max-current-at-rest",
	MaxCurrentAtLowAcceleration:  "max-current-at-low-acceleration",
	MaxCurrentAtHighAcceleration: "max-current-at-high-acceleration",
	AccelerationFactor:           "acceleration-factor",
	RefSwitchDisableFlag:         "ref-switch-disable-flag",
	LimitSwitchDisableFlag:       "limit-switch-disable-flag",
	SoftStopFlag:                 "soft-stop-flag",
	PositionLatchFlag:            "position-latch-flag",
	InterruptMask:                "interrupt-mask",
	RampDivisor:                  "ramp-divisor",
	PulseDivisor:                 "pulse-divisor",
	ReferencingMode:              "referencing-mode",
	ReferencingSearchSpeed:       "referencing-search-speed",
	ReferencingSwitchSpeed:       "referencing-switch-speed",
	Freewheeling:                 "freewheeling",
	StallDetectionThreshold:      "stall-detection-threshold",
	ActualLoadValue:              "actual-load-value",
	DriverErrorFlags:             "driver-error-flags",
}

// String implements fmt.Stringer.
func (p AxisParameter) String() string {
	if name, ok := axisParameterNames[p]; ok {
		return name
	}
	return "axis-parameter-" + strconv.Itoa(int(p))
}

// AxisParameterByName looks up a parameter by its String form.
func AxisParameterByName(name string) (AxisParameter, bool) {
	for p, n := range axisParameterNames {
		if n == name {
			return p, true
		}
	}
	return 0, false
}
