package param

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
)

// DDR5_4800_16x4 returns a dual-rank DDR5-4800 channel built from 16 Gbit
// devices with 8-bit interfaces (Micron MT60B1G16, speed grade -48B). The
// channel holds 16 devices x 2 ranks x 1GiB = 32GiB.
func DDR5_4800_16x4() *Table { //nolint:revive,stylecheck
	return MustNew(DDR5_4800_16x4Spec())
}

// DDR5_4800_16x4Spec returns the literal values behind DDR5_4800_16x4.
func DDR5_4800_16x4Spec() Spec { //nolint:revive,stylecheck
	return Spec{
		Name: "DDR5_4800_16x4",

		DeviceSize:          humanize.GiByte,
		DeviceBusWidth:      8,
		BurstLength:         16,
		DeviceRowBufferSize: humanize.KiByte,
		DevicesPerRank:      16,
		RanksPerChannel:     2,
		BankGroupsPerRank:   8,
		BanksPerRank:        32,
		ChannelCapacity:     32 * humanize.GiByte,

		WriteBufferSize: 128,
		ReadBufferSize:  64,

		TCK:             416 * Picosecond,
		TBURST:          3333 * Picosecond,
		TCCDL:           5 * Nanosecond,
		TRCD:            16 * Nanosecond,
		TCL:             16600 * Picosecond,
		TRP:             16 * Nanosecond,
		TRAS:            32 * Nanosecond,
		TRRD:            3328 * Picosecond,
		TRRDL:           5 * Nanosecond,
		TXAW:            13333 * Picosecond,
		ActivationLimit: 4,
		TRFC:            295 * Nanosecond,
		TWR:             30 * Nanosecond,
		TWTR:            6250 * Picosecond,
		TRTP:            7500 * Picosecond,
		TRTW:            1 * Nanosecond,
		TCS:             832 * Picosecond,
		TREFI:           3900 * Nanosecond,
		TXP:             7500 * Picosecond,
		TXS:             295 * Nanosecond,

		IDD0:   103 * Milliamp,
		IDD02:  8 * Milliamp,
		IDD2N:  92 * Milliamp,
		IDD3N:  142 * Milliamp,
		IDD3N2: 7 * Milliamp,
		IDD4W:  349 * Milliamp,
		IDD4R:  377 * Milliamp,
		IDD5:   277 * Milliamp,
		IDD3P1: 140 * Milliamp,
		IDD2P1: 88 * Milliamp,
		IDD6:   102 * Milliamp,
		VDD:    1100 * Millivolt,
		VDD2:   1800 * Millivolt,
	}
}

// DDR4_2400_16x4 returns a dual-rank DDR4-2400 channel built from 4 Gbit x4
// devices (Micron MT40A1G4). The channel holds 32GiB.
func DDR4_2400_16x4() *Table { //nolint:revive,stylecheck
	return MustNew(DDR4_2400_16x4Spec())
}

// DDR4_2400_16x4Spec returns the literal values behind DDR4_2400_16x4.
func DDR4_2400_16x4Spec() Spec { //nolint:revive,stylecheck
	return Spec{
		Name: "DDR4_2400_16x4",

		DeviceSize:          humanize.GiByte,
		DeviceBusWidth:      4,
		BurstLength:         8,
		DeviceRowBufferSize: 512,
		DevicesPerRank:      16,
		RanksPerChannel:     2,
		BankGroupsPerRank:   4,
		BanksPerRank:        16,
		ChannelCapacity:     32 * humanize.GiByte,

		WriteBufferSize: 128,
		ReadBufferSize:  64,

		TCK:             833 * Picosecond,
		TBURST:          3332 * Picosecond,
		TCCDL:           5 * Nanosecond,
		TRCD:            14160 * Picosecond,
		TCL:             14160 * Picosecond,
		TRP:             14160 * Picosecond,
		TRAS:            32 * Nanosecond,
		TRRD:            3332 * Picosecond,
		TRRDL:           4900 * Picosecond,
		TXAW:            21 * Nanosecond,
		ActivationLimit: 4,
		TRFC:            350 * Nanosecond,
		TWR:             15 * Nanosecond,
		TWTR:            5 * Nanosecond,
		TRTP:            7500 * Picosecond,
		TRTW:            1666 * Picosecond,
		TCS:             1666 * Picosecond,
		TREFI:           7800 * Nanosecond,
		TXP:             6 * Nanosecond,
		TXS:             340 * Nanosecond,

		IDD0:   43 * Milliamp,
		IDD02:  3 * Milliamp,
		IDD2N:  34 * Milliamp,
		IDD3N:  38 * Milliamp,
		IDD3N2: 3 * Milliamp,
		IDD4W:  103 * Milliamp,
		IDD4R:  110 * Milliamp,
		IDD5:   250 * Milliamp,
		IDD3P1: 32 * Milliamp,
		IDD2P1: 25 * Milliamp,
		IDD6:   30 * Milliamp,
		VDD:    1200 * Millivolt,
		VDD2:   2500 * Millivolt,
	}
}

var presets = map[string]func() Spec{
	"DDR5_4800_16x4": DDR5_4800_16x4Spec,
	"DDR4_2400_16x4": DDR4_2400_16x4Spec,
}

// PresetNames lists the names accepted by Preset, sorted.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// PresetSpec returns the spec of a named preset. Names are matched without
// regard to case.
func PresetSpec(name string) (Spec, error) {
	for n, f := range presets {
		if strings.EqualFold(n, name) {
			return f(), nil
		}
	}

	return Spec{}, fmt.Errorf("unknown preset %q, available: %s",
		name, strings.Join(PresetNames(), ", "))
}

// Preset returns the table of a named preset.
func Preset(name string) (*Table, error) {
	s, err := PresetSpec(name)
	if err != nil {
		return nil, err
	}

	return New(s)
}
