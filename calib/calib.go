// Package calib decides whether a hammer velocity is strong enough to make
// a key sound. Each key's motor has a quadratic velocity-to-PWM fit and a
// PWM inflection threshold measured during calibration; a strike sounds
// when its computed PWM reaches the threshold within tolerance.
package calib

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"

	"github.com/pkg/errors"

	"github.com/XiaoShengSPiano/test-tools/constants"
)

// DefaultTolerance is the PWM error band treated as meeting the threshold.
const DefaultTolerance = 10.0

type coefficients struct {
	a, b, c float64 // pwm = a*v^2 + b*v + c
}

// Checker implements filter.ThresholdChecker from calibration data.
type Checker struct {
	coeffs     map[string]coefficients
	thresholds map[string]float64
	Tolerance  float64
}

// Meets reports whether velocity on keyID produces sound. Keys without
// calibration data are treated as non-sounding, matching the calibration
// tool's behavior for unknown motors.
func (c *Checker) Meets(keyID int, velocity int) bool {
	name := motorName(keyID)
	co, ok := c.coeffs[name]
	if !ok {
		return false
	}
	threshold, ok := c.thresholds[name]
	if !ok {
		return false
	}
	v := float64(velocity)
	pwm := co.a*v*v + co.b*v + co.c
	return pwm >= threshold-c.Tolerance
}

func motorName(keyID int) string {
	return fmt.Sprintf("motor_%d", keyID)
}

var equationNumbers = regexp.MustCompile(`[-+]?\d*\.\d+|\d+`)

// parseEquation extracts the quadratic, linear and constant coefficients
// from a fit-formula string such as "y = 0.0012x² + 0.3400x + 12.50".
// The superscript matters: an ASCII exponent like "x^2" would add a stray
// number to the match list.
func parseEquation(equation string) (coefficients, error) {
	nums := equationNumbers.FindAllString(equation, -1)
	if len(nums) < 3 {
		return coefficients{}, errors.Errorf("cannot parse fit equation %q", equation)
	}
	var vals [3]float64
	for i := 0; i < 3; i++ {
		v, err := strconv.ParseFloat(nums[i], 64)
		if err != nil {
			return coefficients{}, errors.Wrapf(err, "cannot parse fit equation %q", equation)
		}
		vals[i] = v
	}
	return coefficients{a: vals[0], b: vals[1], c: vals[2]}, nil
}

// New builds a Checker from equation strings and thresholds. Motors whose
// equation cannot be parsed are dropped (their keys then never sound).
func New(equations map[string]string, thresholds map[string]float64) *Checker {
	c := &Checker{
		coeffs:     make(map[string]coefficients),
		thresholds: thresholds,
		Tolerance:  DefaultTolerance,
	}
	for motor, eq := range equations {
		co, err := parseEquation(eq)
		if err != nil {
			fmt.Printf("Skipping calibration for %v because: %v\n", motor, err)
			continue
		}
		c.coeffs[motor] = co
	}
	return c
}

// LoadDir reads the two calibration JSON files (fit formulas and PWM
// thresholds) from dir.
func LoadDir(dir string) (*Checker, error) {
	var equations map[string]string
	if err := readJSON(filepath.Join(dir, constants.FitFormulasFile), &equations); err != nil {
		return nil, err
	}
	var thresholds map[string]float64
	if err := readJSON(filepath.Join(dir, constants.PWMThresholdsFile), &thresholds); err != nil {
		return nil, err
	}
	return New(equations, thresholds), nil
}

func readJSON(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "reading calibration file")
	}
	return errors.Wrapf(json.Unmarshal(data, out), "parsing %v", filepath.Base(path))
}
