package param

import (
	"fmt"
)

// ConfigError reports a parameter that is missing or inconsistent with the
// rest of the table.
type ConfigError struct {
	Part   string
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Part == "" {
		return fmt.Sprintf("dram param %s: %s", e.Field, e.Reason)
	}

	return fmt.Sprintf("dram param %s.%s: %s", e.Part, e.Field, e.Reason)
}

func (s Spec) fail(field, format string, args ...interface{}) error {
	return &ConfigError{
		Part:   s.Name,
		Field:  field,
		Reason: fmt.Sprintf(format, args...),
	}
}

func (s Spec) validate() error {
	checks := []func() error{
		s.validateCounts,
		s.validateDurations,
		s.validateGeometry,
		s.validateClock,
		s.validateElectrical,
	}

	for _, check := range checks {
		if err := check(); err != nil {
			return err
		}
	}

	return nil
}

func (s Spec) validateCounts() error {
	counts := []struct {
		field string
		value int
	}{
		{"device_bus_width", s.DeviceBusWidth},
		{"burst_length", s.BurstLength},
		{"devices_per_rank", s.DevicesPerRank},
		{"ranks_per_channel", s.RanksPerChannel},
		{"bank_groups_per_rank", s.BankGroupsPerRank},
		{"banks_per_rank", s.BanksPerRank},
		{"read_buffer_size", s.ReadBufferSize},
		{"write_buffer_size", s.WriteBufferSize},
	}

	for _, c := range counts {
		if c.value <= 0 {
			return s.fail(c.field, "must be > 0, got %d", c.value)
		}
	}

	if s.ActivationLimit < 0 {
		return s.fail("activation_limit", "must be >= 0, got %d",
			s.ActivationLimit)
	}

	sizes := []struct {
		field string
		value Bytes
	}{
		{"device_size", s.DeviceSize},
		{"device_rowbuffer_size", s.DeviceRowBufferSize},
		{"channel_capacity", s.ChannelCapacity},
	}

	for _, c := range sizes {
		if c.value == 0 {
			return s.fail(c.field, "must be > 0")
		}
	}

	return nil
}

func (s Spec) durations() []struct {
	field    string
	value    Duration
	required bool
} {
	return []struct {
		field    string
		value    Duration
		required bool
	}{
		{"tCK", s.TCK, true},
		{"tBURST", s.TBURST, true},
		{"tCCD_L", s.TCCDL, false},
		{"tRCD", s.TRCD, true},
		{"tCL", s.TCL, true},
		{"tRP", s.TRP, true},
		{"tRAS", s.TRAS, true},
		{"tRRD", s.TRRD, false},
		{"tRRD_L", s.TRRDL, false},
		{"tXAW", s.TXAW, false},
		{"tRFC", s.TRFC, true},
		{"tWR", s.TWR, false},
		{"tWTR", s.TWTR, false},
		{"tRTP", s.TRTP, false},
		{"tRTW", s.TRTW, false},
		{"tCS", s.TCS, false},
		{"tREFI", s.TREFI, true},
		{"tXP", s.TXP, false},
		{"tXS", s.TXS, false},
	}
}

func (s Spec) validateDurations() error {
	for _, d := range s.durations() {
		if d.value < 0 {
			return s.fail(d.field, "must not be negative, got %s", d.value)
		}

		if d.required && d.value == 0 {
			return s.fail(d.field, "must be > 0")
		}
	}

	if s.ActivationLimit > 0 && s.TXAW == 0 {
		return s.fail("tXAW", "must be > 0 when activation_limit is %d",
			s.ActivationLimit)
	}

	if s.TREFI <= s.TRFC {
		return s.fail("tREFI", "%s must exceed tRFC %s", s.TREFI, s.TRFC)
	}

	if s.TREFI <= s.TRP {
		return s.fail("tREFI", "%s must exceed tRP %s", s.TREFI, s.TRP)
	}

	return nil
}

func (s Spec) validateGeometry() error {
	if s.BanksPerRank%s.BankGroupsPerRank != 0 {
		return s.fail("banks_per_rank",
			"%d is not a multiple of bank_groups_per_rank %d",
			s.BanksPerRank, s.BankGroupsPerRank)
	}

	rowBytesPerDevice := uint64(s.DeviceRowBufferSize) * uint64(s.BanksPerRank)
	if uint64(s.DeviceSize)%rowBytesPerDevice != 0 {
		return s.fail("device_size",
			"%s is not a whole number of rows of %s across %d banks",
			s.DeviceSize, s.DeviceRowBufferSize, s.BanksPerRank)
	}

	burstBytesPerDevice := uint64(s.DeviceBusWidth) * uint64(s.BurstLength) / 8
	if burstBytesPerDevice == 0 ||
		burstBytesPerDevice > uint64(s.DeviceRowBufferSize) {
		return s.fail("device_rowbuffer_size",
			"%s cannot hold a burst of %d bytes",
			s.DeviceRowBufferSize, burstBytesPerDevice)
	}

	if uint64(s.DeviceRowBufferSize)%burstBytesPerDevice != 0 {
		return s.fail("device_rowbuffer_size",
			"%s is not a whole number of %d-byte bursts",
			s.DeviceRowBufferSize, burstBytesPerDevice)
	}

	expected := uint64(s.DeviceSize) * uint64(s.DevicesPerRank) *
		uint64(s.RanksPerChannel)
	if uint64(s.ChannelCapacity) != expected {
		return s.fail("channel_capacity",
			"declared %s, but %s x %d devices x %d ranks is %s",
			s.ChannelCapacity, s.DeviceSize, s.DevicesPerRank,
			s.RanksPerChannel, Bytes(expected))
	}

	return nil
}

func (s Spec) validateClock() error {
	minBurst := Duration(s.BurstLength/2) * s.TCK
	if s.TBURST < minBurst {
		return s.fail("tBURST",
			"%s is shorter than %d beats at double data rate with tCK %s",
			s.TBURST, s.BurstLength, s.TCK)
	}

	if s.BankGroupsPerRank > 1 {
		if s.TCCDL < s.TBURST {
			return s.fail("tCCD_L", "%s is shorter than tBURST %s",
				s.TCCDL, s.TBURST)
		}

		if s.TRRDL < s.TRRD {
			return s.fail("tRRD_L", "%s is shorter than tRRD %s",
				s.TRRDL, s.TRRD)
		}
	}

	if s.TRAS < s.TRCD {
		return s.fail("tRAS", "%s is shorter than tRCD %s", s.TRAS, s.TRCD)
	}

	return nil
}

func (s Spec) validateElectrical() error {
	currents := []struct {
		field string
		value Current
	}{
		{"IDD0", s.IDD0}, {"IDD02", s.IDD02},
		{"IDD2N", s.IDD2N}, {"IDD3N", s.IDD3N}, {"IDD3N2", s.IDD3N2},
		{"IDD4W", s.IDD4W}, {"IDD4R", s.IDD4R}, {"IDD5", s.IDD5},
		{"IDD3P1", s.IDD3P1}, {"IDD2P1", s.IDD2P1}, {"IDD6", s.IDD6},
	}

	for _, c := range currents {
		if c.value < 0 {
			return s.fail(c.field, "must not be negative, got %s", c.value)
		}
	}

	if s.VDD <= 0 {
		return s.fail("VDD", "must be > 0")
	}

	if s.VDD2 < 0 {
		return s.fail("VDD2", "must not be negative, got %s", s.VDD2)
	}

	return nil
}
