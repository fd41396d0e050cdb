package param

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Duration is a span of time counted in picoseconds. Datasheet values such
// as 16.6ns or 13.333ns are whole numbers of picoseconds, so they are stored
// without rounding.
type Duration int64

// Units of Duration.
const (
	Picosecond  Duration = 1
	Nanosecond           = 1000 * Picosecond
	Microsecond          = 1000 * Nanosecond
	Millisecond          = 1000 * Microsecond
)

var durationUnits = map[string]int64{
	"ps": int64(Picosecond),
	"ns": int64(Nanosecond),
	"us": int64(Microsecond),
	"µs": int64(Microsecond),
	"ms": int64(Millisecond),
}

// ParseDuration parses literals like "16.6ns", "3.9us" or "416ps".
func ParseDuration(s string) (Duration, error) {
	v, err := parseQuantity(s, durationUnits)
	if err != nil {
		return 0, err
	}

	return Duration(v), nil
}

// Nanoseconds returns the duration as a floating-point number of nanoseconds.
func (d Duration) Nanoseconds() float64 {
	return float64(d) / float64(Nanosecond)
}

// Seconds returns the duration as a floating-point number of seconds.
func (d Duration) Seconds() float64 {
	return float64(d) / 1e12
}

func (d Duration) String() string {
	switch {
	case d == 0:
		return "0ns"
	case abs(int64(d)) >= int64(Microsecond) &&
		int64(d)%int64(Microsecond/10) == 0:
		return formatQuantity(int64(d), -6, "us")
	case abs(int64(d)) >= int64(Nanosecond) ||
		int64(d)%int64(Nanosecond/10) == 0:
		return formatQuantity(int64(d), -3, "ns")
	default:
		return formatQuantity(int64(d), 0, "ps")
	}
}

// MarshalYAML writes the duration as a literal with a unit.
func (d Duration) MarshalYAML() (interface{}, error) {
	return d.String(), nil
}

// UnmarshalYAML reads a duration literal with a unit.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	v, err := ParseDuration(value.Value)
	if err != nil {
		return err
	}

	*d = v

	return nil
}

// Bytes is a size in bytes.
type Bytes uint64

// ParseBytes parses literals like "1GiB", "512B" or "1024".
func ParseBytes(s string) (Bytes, error) {
	v, err := humanize.ParseBytes(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid size %q: %w", s, err)
	}

	return Bytes(v), nil
}

func (b Bytes) String() string {
	v := uint64(b)

	switch {
	case v == 0:
		return "0B"
	case v%humanize.TiByte == 0:
		return fmt.Sprintf("%dTiB", v/humanize.TiByte)
	case v%humanize.GiByte == 0:
		return fmt.Sprintf("%dGiB", v/humanize.GiByte)
	case v%humanize.MiByte == 0:
		return fmt.Sprintf("%dMiB", v/humanize.MiByte)
	case v%humanize.KiByte == 0:
		return fmt.Sprintf("%dKiB", v/humanize.KiByte)
	default:
		return fmt.Sprintf("%dB", v)
	}
}

// MarshalYAML writes the size with the largest binary unit that divides it.
func (b Bytes) MarshalYAML() (interface{}, error) {
	return b.String(), nil
}

// UnmarshalYAML reads a size literal.
func (b *Bytes) UnmarshalYAML(value *yaml.Node) error {
	v, err := ParseBytes(value.Value)
	if err != nil {
		return err
	}

	*b = v

	return nil
}

// Current is an electrical current in microamps.
type Current int64

// Units of Current.
const (
	Microamp Current = 1
	Milliamp         = 1000 * Microamp
	Amp              = 1000 * Milliamp
)

var currentUnits = map[string]int64{
	"uA": int64(Microamp),
	"µA": int64(Microamp),
	"mA": int64(Milliamp),
	"A":  int64(Amp),
}

// ParseCurrent parses literals like "103mA".
func ParseCurrent(s string) (Current, error) {
	v, err := parseQuantity(s, currentUnits)
	if err != nil {
		return 0, err
	}

	return Current(v), nil
}

// Milliamps returns the current as a floating-point number of milliamps.
func (c Current) Milliamps() float64 {
	return float64(c) / float64(Milliamp)
}

func (c Current) String() string {
	return formatQuantity(int64(c), -3, "mA")
}

// MarshalYAML writes the current in milliamps.
func (c Current) MarshalYAML() (interface{}, error) {
	return c.String(), nil
}

// UnmarshalYAML reads a current literal.
func (c *Current) UnmarshalYAML(value *yaml.Node) error {
	v, err := ParseCurrent(value.Value)
	if err != nil {
		return err
	}

	*c = v

	return nil
}

// Voltage is an electrical potential in millivolts.
type Voltage int64

// Units of Voltage.
const (
	Millivolt Voltage = 1
	Volt              = 1000 * Millivolt
)

var voltageUnits = map[string]int64{
	"mV": int64(Millivolt),
	"V":  int64(Volt),
}

// ParseVoltage parses literals like "1.1V" or "1100mV".
func ParseVoltage(s string) (Voltage, error) {
	v, err := parseQuantity(s, voltageUnits)
	if err != nil {
		return 0, err
	}

	return Voltage(v), nil
}

// Volts returns the voltage as a floating-point number of volts.
func (v Voltage) Volts() float64 {
	return float64(v) / float64(Volt)
}

func (v Voltage) String() string {
	return formatQuantity(int64(v), -3, "V")
}

// MarshalYAML writes the voltage in volts.
func (v Voltage) MarshalYAML() (interface{}, error) {
	return v.String(), nil
}

// UnmarshalYAML reads a voltage literal.
func (v *Voltage) UnmarshalYAML(value *yaml.Node) error {
	p, err := ParseVoltage(value.Value)
	if err != nil {
		return err
	}

	*v = p

	return nil
}

// parseQuantity splits s into a decimal number and a unit suffix and returns
// the number scaled to the base unit. The scaled value must be whole.
func parseQuantity(s string, units map[string]int64) (int64, error) {
	s = strings.TrimSpace(s)

	split := strings.IndexFunc(s, func(r rune) bool {
		return !strings.ContainsRune("0123456789.+-", r)
	})
	if split <= 0 {
		return 0, fmt.Errorf("invalid quantity %q: missing number or unit", s)
	}

	numPart := s[:split]
	unitPart := strings.TrimSpace(s[split:])

	scale, ok := units[unitPart]
	if !ok {
		return 0, fmt.Errorf("invalid quantity %q: unknown unit %q", s, unitPart)
	}

	num, err := decimal.NewFromString(numPart)
	if err != nil {
		return 0, fmt.Errorf("invalid quantity %q: %w", s, err)
	}

	scaled := num.Mul(decimal.NewFromInt(scale))
	if !scaled.IsInteger() {
		return 0, fmt.Errorf("invalid quantity %q: finer than the base unit", s)
	}

	return scaled.IntPart(), nil
}

// formatQuantity prints v*10^exp followed by unit, without trailing zeros.
func formatQuantity(v int64, exp int32, unit string) string {
	return decimal.New(v, exp).String() + unit
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}

	return v
}
