package constants

import "os"

// GetCalibrationDir returns the directory holding the motor calibration JSON
// files (quadratic fit formulas + inflection PWM thresholds).
func GetCalibrationDir() string {
	path := os.Getenv("CALIBRATION_PATH")
	if path != "" {
		return path
	}
	return "./calibration"
}

// GetSessionDir returns the directory under which upload sessions create
// their temp dirs. Empty means the system temp dir.
func GetSessionDir() string {
	return os.Getenv("SESSION_PATH")
}

// GetCalibrationTable returns the DynamoDB table holding motor calibration
// rows, or "" when file-based calibration should be used.
func GetCalibrationTable() string {
	return os.Getenv("CALIBRATION_TABLE")
}

const FitFormulasFile = "quadratic_fit_formulas.json"
const PWMThresholdsFile = "inflection_pwm_values.json"

// MinNoteDuration is the shortest key press treated as a real note, in
// 0.1ms ticks (30ms).
const MinNoteDuration = 300

// DTWStrategyThreshold is the combined note count at which the time aligner
// switches from one global alignment to segmented alignment.
const DTWStrategyThreshold = 200
