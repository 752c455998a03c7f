package flightlog

import (
	"fmt"
	"strings"
)

// Canonical channel names referenced directly by the processors.
const (
	ChannelMotor1        = "blackbox.motor[0]"
	ChannelMotor2        = "blackbox.motor[1]"
	ChannelMotor3        = "blackbox.motor[2]"
	ChannelMotor4        = "blackbox.motor[3]"
	ChannelESC1Current   = "blackbox.esc_info.esc[0].current"
	ChannelESC1Voltage   = "blackbox.esc_info.esc[0].voltage"
	ChannelRoll          = "blackbox.attitude.roll"
	ChannelPitch         = "blackbox.attitude.pitch"
	ChannelFailsafe      = "blackbox.fs_act"
	ChannelError         = "blackbox.error"
	ChannelHDOP          = "blackbox.sensor_values.gps_data.hori_dop"
	ChannelSatellites    = "blackbox.sensor_values.gps_data.satellite_num"
	ChannelAltitude      = "blackbox.sensor_values.gps_data.altitude"
	ChannelLatitude      = "blackbox.sensor_values.gps_data.latitude"
	ChannelLongitude     = "blackbox.sensor_values.gps_data.longitude"
	ChannelArmed         = "blackbox.armed"
	ChannelVibrationX    = "blackbox.vibr_.x"
	ChannelVibrationY    = "blackbox.vibr_.y"
	ChannelVibrationZ    = "blackbox.vibr_.z"
	ChannelMagnetX       = "blackbox.sensor_values.magnet_x"
	ChannelMagnetY       = "blackbox.sensor_values.magnet_y"
	ChannelMagnetZ       = "blackbox.sensor_values.magnet_z"
	ChannelFlightMode    = "blackbox.receiver_panel.flight_mode"
	ChannelTime          = "time"
	ChannelUnixTime      = "unix_time"
	MagnetTotalKey       = "magnet_total"
	BaselineInitialAlt   = "initial_altitude"
)

const (
	radiansToDegrees     = 57.3
	stickHalfRange       = 0.55
	throttleCenterPWM    = 15000.0
	throttleHalfRangePWM = 4500.0
)

// Transform converts a raw channel value into display units.
// It is either Linear (stateless) or Baseline (needs a per-log reference value).
type Transform interface {
	isTransform()
}

// Linear is a stateless per-sample conversion.
type Linear func(v float64) float64

// Baseline subtracts a named reference value computed before the pass.
type Baseline struct {
	Name string
}

func (Linear) isTransform()   {}
func (Baseline) isTransform() {}

// Channel describes one canonical channel.
type Channel struct {
	Name      string
	Aliases   []string
	Label     string
	Unit      string
	Transform Transform
}

// Apply runs the channel transform. Baseline transforms whose reference is
// missing from baselines leave the value untouched.
func (c Channel) Apply(v float64, baselines map[string]float64) float64 {
	switch t := c.Transform.(type) {
	case Linear:
		return t(v)
	case Baseline:
		if ref, ok := baselines[t.Name]; ok {
			return v - ref
		}
	}
	return v
}

var (
	toDegrees Linear = func(v float64) float64 { return v * radiansToDegrees }
	stickPct  Linear = func(v float64) float64 { return v / stickHalfRange * 100 }
	throttle  Linear = func(v float64) float64 { return (v - throttleCenterPWM) / throttleHalfRangePWM * 100 }
)

func escAliases(idx int, field, short, upperShort string) []string {
	n := idx + 1
	return []string{
		fmt.Sprintf("blackbox.esc_info.esc[%d].%s", idx, field),
		fmt.Sprintf("esc%d_%s", n, field),
		fmt.Sprintf("esc%d_%s", n, short),
		fmt.Sprintf("ESC%d_%s", n, strings.ToUpper(field)),
		fmt.Sprintf("ESC%d_%s", n, upperShort),
		fmt.Sprintf("esc%d %s", n, strings.ReplaceAll(field, "_", " ")),
	}
}

func motorAliases(idx int) []string {
	n := idx + 1
	return []string{
		fmt.Sprintf("blackbox.motor[%d]", idx),
		fmt.Sprintf("motor_%d", n),
		fmt.Sprintf("motor%d", n),
		fmt.Sprintf("Motor%d", n),
		fmt.Sprintf("MOTOR%d", n),
		fmt.Sprintf("Motor %d", n),
	}
}

var channelTable = buildChannelTable()

var channelIndex = func() map[string]int {
	m := make(map[string]int, len(channelTable))
	for i, ch := range channelTable {
		m[ch.Name] = i
	}
	return m
}()

func buildChannelTable() []Channel {
	table := []Channel{
		{Name: ChannelTime, Aliases: []string{"time"}, Unit: "raw"},
		{Name: ChannelUnixTime, Aliases: []string{"unix_time"}, Unit: "raw"},
	}
	for i := 0; i < 4; i++ {
		table = append(table, Channel{
			Name:    fmt.Sprintf("blackbox.motor[%d]", i),
			Aliases: motorAliases(i),
			Label:   fmt.Sprintf("Motor %d", i+1),
			Unit:    "PWM",
		})
	}
	escFields := []struct {
		field, short, upperShort, label, unit string
	}{
		{"current", "curr", "CURR", "Current", "A"},
		{"step_time", "time", "TIME", "Step Time", ""},
		{"voltage", "volt", "VOLT", "Voltage", "V"},
		{"temperature", "temp", "TEMP", "Temperature", "°C"},
	}
	for _, f := range escFields {
		for i := 0; i < 4; i++ {
			table = append(table, Channel{
				Name:    fmt.Sprintf("blackbox.esc_info.esc[%d].%s", i, f.field),
				Aliases: escAliases(i, f.field, f.short, f.upperShort),
				Label:   fmt.Sprintf("ESC %d %s", i+1, f.label),
				Unit:    f.unit,
			})
		}
	}
	table = append(table,
		Channel{Name: ChannelFailsafe, Aliases: []string{"blackbox.fs_act", "fs_act", "FS", "FS_ACT", "Failsafe", "failsafe"}, Label: "Failsafe"},
		Channel{Name: ChannelError, Aliases: []string{"blackbox.error", "error", "ERR", "Error", "ERROR"}, Label: "Error Mask"},
		Channel{Name: "blackbox.rat_ctrl_cmd_.z", Aliases: []string{"blackbox.rat_ctrl_cmd_.z", "rat_ctrl_cmd_z", "rat_ctrl_z", "RateControlCmdZ"}, Label: "Rate Command Z", Unit: "°/s", Transform: toDegrees},
		Channel{Name: "blackbox.sensor_values.gyro_z", Aliases: []string{"blackbox.sensor_values.gyro_z", "gyro_z", "gyroZ", "GyroZ", "GYRO_Z"}, Label: "Gyro Z", Unit: "°/s", Transform: toDegrees},
		Channel{Name: "blackbox.sensor_values.gyro_x", Aliases: []string{"blackbox.sensor_values.gyro_x", "gyro_x", "gyroX", "GyroX", "GYRO_X"}, Label: "Gyro X", Unit: "°/s", Transform: toDegrees},
		Channel{Name: "blackbox.sensor_values.gyro_y", Aliases: []string{"blackbox.sensor_values.gyro_y", "gyro_y", "gyroY", "GyroY", "GYRO_Y"}, Label: "Gyro Y", Unit: "°/s", Transform: toDegrees},
		Channel{Name: "blackbox.feedback_ctrler_.vel_x", Aliases: []string{"blackbox.feedback_ctrler_.vel_x", "feedback_ctrler_vel_x", "velX_I", "feedback_vel_x"}, Label: "Feedback Velocity X", Unit: "m/s"},
		Channel{Name: "blackbox.feedback_ctrler_.vel_y", Aliases: []string{"blackbox.feedback_ctrler_.vel_y", "feedback_ctrler_vel_y", "velY_S"}, Label: "Feedback Velocity Y", Unit: "m/s"},
		Channel{Name: "blackbox.feedback_ctrler_.vel_z", Aliases: []string{"blackbox.feedback_ctrler_.vel_z", "feedback_ctrler_vel_z", "velZ_S"}, Label: "Feedback Velocity Z", Unit: "m/s"},
		Channel{Name: "blackbox.target_ctrler_.vel_x", Aliases: []string{"blackbox.target_ctrler_.vel_x", "target_ctrler_vel_x", "velX_S", "target_vel_x"}, Label: "Target Velocity X", Unit: "m/s"},
		Channel{Name: ChannelHDOP, Aliases: []string{"blackbox.sensor_values.gps_data.hori_dop", "hori_dop", "HDOP", "hDOP"}, Label: "Horizontal DOP"},
		Channel{Name: "blackbox.sensor_values.gps_data.vert_dop", Aliases: []string{"blackbox.sensor_values.gps_data.vert_dop", "vert_dop", "VDOP", "vDOP"}, Label: "Vertical DOP"},
		Channel{Name: ChannelSatellites, Aliases: []string{"blackbox.sensor_values.gps_data.satellite_num", "satellite_num", "sats", "numSat", "Sats"}, Label: "Satellites"},
		Channel{Name: ChannelArmed, Aliases: []string{"blackbox.armed", "is_armed", "isArmed", "ARMED", "armed", "is_arm", "blackbox.receiver_panel.is_armed"}, Label: "Armed"},
		Channel{Name: ChannelVibrationX, Aliases: []string{"blackbox.vibr_.x", "vibr_x", "vibration_x", "VibrX", "VibrationX", "VIBR_X"}, Label: "Vibration X", Unit: "m/s²"},
		Channel{Name: ChannelVibrationY, Aliases: []string{"blackbox.vibr_.y", "vibr_y", "vibration_y", "VibrY", "VibrationY", "VIBR_Y"}, Label: "Vibration Y", Unit: "m/s²"},
		Channel{Name: ChannelVibrationZ, Aliases: []string{"blackbox.vibr_.z", "vibr_z", "vibration_z", "VibrZ", "VibrationZ", "VIBR_Z"}, Label: "Vibration Z", Unit: "m/s²"},
		Channel{Name: "blackbox.sensor_values.accel_x", Aliases: []string{"blackbox.sensor_values.accel_x", "acc_x", "accel_x", "blackbox.ins_information.acc_x"}, Label: "Acceleration X", Unit: "m/s²"},
		Channel{Name: "blackbox.sensor_values.accel_y", Aliases: []string{"blackbox.sensor_values.accel_y", "acc_y", "accel_y", "blackbox.ins_information.acc_y"}, Label: "Acceleration Y", Unit: "m/s²"},
		Channel{Name: "blackbox.sensor_values.accel_z", Aliases: []string{"blackbox.sensor_values.accel_z", "acc_z", "accel_z", "blackbox.ins_information.acc_z"}, Label: "Acceleration Z", Unit: "m/s²"},
		Channel{Name: "blackbox.receiver_panel.ail_value", Aliases: []string{"blackbox.receiver_panel.ail_value", "ail_value", "AIL", "Aileron", "aileron"}, Label: "Aileron", Unit: "%", Transform: stickPct},
		Channel{Name: "blackbox.receiver_panel.ele_value", Aliases: []string{"blackbox.receiver_panel.ele_value", "ele_value", "ELE", "Elevator", "elevator"}, Label: "Elevator", Unit: "%", Transform: stickPct},
		Channel{Name: "blackbox.receiver_panel.rud_value", Aliases: []string{"blackbox.receiver_panel.rud_value", "rud_value", "RUD", "Rudder", "rudder"}, Label: "Rudder", Unit: "%", Transform: stickPct},
		Channel{Name: "blackbox.receiver_panel.thr_value", Aliases: []string{"blackbox.receiver_panel.thr_value", "thr_value", "THR", "Throttle", "throttle"}, Label: "Throttle", Unit: "%", Transform: throttle},
		Channel{Name: ChannelFlightMode, Aliases: []string{"blackbox.receiver_panel.flight_mode", "flight_mode", "FlightMode", "flightMode", "mode"}, Label: "Flight Mode"},
		Channel{Name: "blackbox.receiver_panel.velocity_x", Aliases: []string{"blackbox.receiver_panel.velocity_x", "x_velocity", "vel_x", "velocityX", "VelX", "vx", "blackbox.ins_information.gps_v_x"}, Label: "Velocity X", Unit: "m/s"},
		Channel{Name: "blackbox.receiver_panel.velocity_y", Aliases: []string{"blackbox.receiver_panel.velocity_y", "y_velocity", "vel_y", "velocityY", "VelY", "vy", "blackbox.ins_information.gps_v_y"}, Label: "Velocity Y", Unit: "m/s"},
		Channel{Name: "blackbox.receiver_panel.velocity_z", Aliases: []string{"blackbox.receiver_panel.velocity_z", "z_velocity", "vel_z", "velocityZ", "VelZ", "vz", "blackbox.ins_information.gps_v_z"}, Label: "Velocity Z", Unit: "m/s"},
		Channel{Name: ChannelLongitude, Aliases: []string{"blackbox.sensor_values.gps_data.longitude", "longitude", "lon", "lng", "Longitude"}, Label: "Longitude", Unit: "°"},
		Channel{Name: ChannelLatitude, Aliases: []string{"blackbox.sensor_values.gps_data.latitude", "latitude", "lat", "Latitude"}, Label: "Latitude", Unit: "°"},
		Channel{Name: ChannelAltitude, Aliases: []string{"blackbox.sensor_values.gps_data.altitude", "altitude", "alt", "Altitude"}, Label: "Relative Altitude", Unit: "m", Transform: Baseline{Name: BaselineInitialAlt}},
		Channel{Name: "blackbox.attitude.roll", Aliases: []string{"blackbox.attitude.roll", "roll", "att_x", "Roll", "ATT_X"}, Label: "Roll", Unit: "°", Transform: toDegrees},
		Channel{Name: "blackbox.attitude.pitch", Aliases: []string{"blackbox.attitude.pitch", "pitch", "att_y", "Pitch", "ATT_Y"}, Label: "Pitch", Unit: "°", Transform: toDegrees},
		Channel{Name: "blackbox.attitude.yaw", Aliases: []string{"blackbox.attitude.yaw", "yaw", "att_z", "Yaw", "ATT_Z"}, Label: "Yaw", Unit: "°", Transform: toDegrees},
		Channel{Name: "blackbox.sensor_values.vehicle_optical_flow.of_distance_m", Aliases: []string{"blackbox.sensor_values.vehicle_optical_flow.of_distance_m", "of_distance_m"}, Label: "Optical Flow Height", Unit: "m"},
		Channel{Name: ChannelMagnetX, Aliases: []string{"blackbox.sensor_values.magnet_x", "magnet_x", "MagX", "mag_x"}, Label: "Magnetometer X"},
		Channel{Name: ChannelMagnetY, Aliases: []string{"blackbox.sensor_values.magnet_y", "magnet_y", "MagY", "mag_y"}, Label: "Magnetometer Y"},
		Channel{Name: ChannelMagnetZ, Aliases: []string{"blackbox.sensor_values.magnet_z", "magnet_z", "MagZ", "mag_z"}, Label: "Magnetometer Z"},
	)
	return table
}

// Channels returns the canonical channel table in display order.
func Channels() []Channel {
	out := make([]Channel, len(channelTable))
	copy(out, channelTable)
	return out
}

// Lookup finds a canonical channel by name.
func Lookup(name string) (Channel, bool) {
	i, ok := channelIndex[name]
	if !ok {
		return Channel{}, false
	}
	return channelTable[i], true
}

// ChartChannels returns the channels emitted as chart series. Time columns
// and latitude/longitude are handled separately by the path builder.
func ChartChannels() []Channel {
	out := make([]Channel, 0, len(channelTable))
	for _, ch := range channelTable {
		switch ch.Name {
		case ChannelTime, ChannelUnixTime, ChannelLatitude, ChannelLongitude:
			continue
		}
		out = append(out, ch)
	}
	return out
}
