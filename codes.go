package flightlog

import "fmt"

// failsafeCodes describes flight-controller failsafe actions.
var failsafeCodes = map[int]string{
	0: "fs_none (all normal)",
	1: "fs_armed_dis (arming refused, self-check failed)",
	2: "fs_rtpl (precision return and land, vision/RTK assisted)",
	3: "fs_rtl (return to launch, link lost or commanded)",
	4: "fs_elz (land at emergency landing zone)",
	5: "fs_att (fall back to attitude mode, GPS lost)",
	6: "fs_land (land in place, battery critical)",
	7: "fs_emerg_stop (emergency motor stop, major fault)",
}

// errorCodes is keyed by error bit position + 1.
var errorCodes = map[int]string{
	0:  "err_system_ok (all systems normal)",
	1:  "err_commun_rc_receiver (RC link lost)",
	2:  "err_commun_tele_receiver (telemetry link fault)",
	3:  "err_sensor_accelerometer (accelerometer fault)",
	4:  "err_sensor_gyroscope (gyroscope fault)",
	5:  "err_sensor_barometer (barometer fault)",
	6:  "err_sensor_magnetometer (magnetometer fault)",
	7:  "err_sensor_gps (GPS fault)",
	8:  "err_dcm_m33 (attitude quaternion m33 fault)",
	9:  "err_propulsion_esc (ESC fault)",
	10: "err_propulsion_motor (motor fault)",
	11: "err_propulsion_propeller (propeller fault)",
	12: "err_power_battery_board (power board fault)",
	13: "err_power_battery (battery fault)",
	14: "err_flash (flash storage fault)",
	15: "err_queue (queue fault)",
	16: "err_processtime (loop time overrun)",
	17: "copter_armed_stage (abnormal armed stage)",
	18: "bump_prevent_broken (obstacle sensor fault, collision avoidance disabled)",
	19: "err_calib_accelerometer (accelerometer calibration fault)",
	20: "err_calib_magnetometer (magnetometer calibration fault)",
	21: "err_estimate_ins (inertial navigation estimate fault)",
	22: "err_calib_gyro (gyroscope calibration fault)",
	23: "rc_mode_switch (RC mode switch)",
	24: "buzzer_sound (buzzer fault)",
	25: "err_commun_beacon (beacon or optical flow fault)",
	26: "err_commun_lrf (rangefinder link rate fault)",
	27: "err_commun_transbd (auxiliary board heartbeat)",
	28: "err_commun_radar (mmWave radar fault)",
	29: "err_estimate_of (optical flow estimate fault)",
	30: "err_geofence (geofence violation)",
	31: "reserve_31 (-)",
	32: "err_invalid (error type limit)",
}

var flightModes = map[int]string{
	0:  "mode_stabilize (Attitude Mode)",
	1:  "mode_acro (Acrobatics)",
	2:  "mode_alt_hold (Altitude Hold Mode)",
	3:  "mode_auto (Auto Mode)",
	4:  "mode_guided (Guided Mode)",
	5:  "mode_loiter (Loiter Mode / GPS Mode)",
	6:  "mode_rtl (Return To Launch/Home Mode)",
	7:  "mode_circle (Circle Mode)",
	9:  "mode_land (Land Mode)",
	10: "mode_OF_loiter (Optical Flow Loiter Mode)",
	11: "mode_drift (Drift Mode)",
	13: "mode_sport (Sport Mode)",
	14: "mode_flip (Flip Mode)",
	15: "mode_autotune (Autotune Mode)",
	16: "mode_poshold (Position Hold Mode)",
	17: "mode_avoid (Avoidance Mode)",
	18: "mode_elz (emergencyLandingZone)",
	23: "mode_follow (Follow Me Mode)",
}

// ErrorDescription returns the description for a 1-based error id.
func ErrorDescription(id int) string {
	if d, ok := errorCodes[id]; ok {
		return d
	}
	return fmt.Sprintf("Unknown Error (Bit %d)", id-1)
}

// FailsafeDescription returns the description for a failsafe action code.
func FailsafeDescription(code float64) string {
	if code == float64(int(code)) {
		if d, ok := failsafeCodes[int(code)]; ok {
			return d
		}
	}
	return fmt.Sprintf("Unknown Failsafe %g", code)
}

// FlightModeDescription returns the description for a flight mode id.
func FlightModeDescription(mode float64) string {
	if mode == float64(int(mode)) {
		if d, ok := flightModes[int(mode)]; ok {
			return d
		}
	}
	return fmt.Sprintf("Unknown Mode %g", mode)
}
