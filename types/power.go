package types

// ------------------------
// Battery telemetry (ina219)
// ------------------------

// PowerValue is the retained bus payload published by the battery monitor.
type PowerValue struct {
	BusMilliV     int32  `json:"bus_mV"`
	ShuntMicroV   int32  `json:"shunt_uV"`
	CurrentMilliA int32  `json:"current_mA"`
	StampMs       uint32 `json:"stamp_ms"`
}
