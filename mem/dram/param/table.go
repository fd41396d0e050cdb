// Package param describes DRAM parts: geometry, timing, current draw and
// buffer sizing, as datasheets list them.
package param

import (
	"math"

	"github.com/sarchlab/ddrsim/sim"
)

// Spec lists the literal values of a DRAM part. A Spec is plain data. Turn it
// into a Table with New before handing it to a controller.
type Spec struct {
	Name string `yaml:"name"`

	DeviceSize          Bytes `yaml:"device_size"`
	DeviceBusWidth      int   `yaml:"device_bus_width"`
	BurstLength         int   `yaml:"burst_length"`
	DeviceRowBufferSize Bytes `yaml:"device_rowbuffer_size"`
	DevicesPerRank      int   `yaml:"devices_per_rank"`
	RanksPerChannel     int   `yaml:"ranks_per_channel"`
	BankGroupsPerRank   int   `yaml:"bank_groups_per_rank"`
	BanksPerRank        int   `yaml:"banks_per_rank"`
	ChannelCapacity     Bytes `yaml:"channel_capacity"`

	ReadBufferSize  int `yaml:"read_buffer_size"`
	WriteBufferSize int `yaml:"write_buffer_size"`

	TCK             Duration `yaml:"tCK"`
	TBURST          Duration `yaml:"tBURST"`
	TCCDL           Duration `yaml:"tCCD_L"`
	TRCD            Duration `yaml:"tRCD"`
	TCL             Duration `yaml:"tCL"`
	TRP             Duration `yaml:"tRP"`
	TRAS            Duration `yaml:"tRAS"`
	TRRD            Duration `yaml:"tRRD"`
	TRRDL           Duration `yaml:"tRRD_L"`
	TXAW            Duration `yaml:"tXAW"`
	ActivationLimit int      `yaml:"activation_limit"`
	TRFC            Duration `yaml:"tRFC"`
	TWR             Duration `yaml:"tWR"`
	TWTR            Duration `yaml:"tWTR"`
	TRTP            Duration `yaml:"tRTP"`
	TRTW            Duration `yaml:"tRTW"`
	TCS             Duration `yaml:"tCS"`
	TREFI           Duration `yaml:"tREFI"`
	TXP             Duration `yaml:"tXP"`
	TXS             Duration `yaml:"tXS"`

	IDD0   Current `yaml:"IDD0"`
	IDD02  Current `yaml:"IDD02"`
	IDD2N  Current `yaml:"IDD2N"`
	IDD3N  Current `yaml:"IDD3N"`
	IDD3N2 Current `yaml:"IDD3N2"`
	IDD4W  Current `yaml:"IDD4W"`
	IDD4R  Current `yaml:"IDD4R"`
	IDD5   Current `yaml:"IDD5"`
	IDD3P1 Current `yaml:"IDD3P1"`
	IDD2P1 Current `yaml:"IDD2P1"`
	IDD6   Current `yaml:"IDD6"`
	VDD    Voltage `yaml:"VDD"`
	VDD2   Voltage `yaml:"VDD2"`
}

// Table is a validated, read-only DRAM parameter set. It is safe to share a
// Table between goroutines.
type Table struct {
	s Spec
}

// New validates the spec and returns a Table holding a copy of it.
func New(s Spec) (*Table, error) {
	if err := s.validate(); err != nil {
		return nil, err
	}

	return &Table{s: s}, nil
}

// MustNew is like New but panics if the spec is invalid.
func MustNew(s Spec) *Table {
	t, err := New(s)
	if err != nil {
		panic(err)
	}

	return t
}

// Spec returns a copy of the values the table was built from.
func (t *Table) Spec() Spec { return t.s }

// Name returns the name of the part.
func (t *Table) Name() string { return t.s.Name }

// DeviceSize returns the capacity of one device.
func (t *Table) DeviceSize() Bytes { return t.s.DeviceSize }

// DeviceBusWidth returns the data bus width of one device in bits.
func (t *Table) DeviceBusWidth() int { return t.s.DeviceBusWidth }

// BurstLength returns the number of beats in a burst.
func (t *Table) BurstLength() int { return t.s.BurstLength }

// DeviceRowBufferSize returns the row buffer size of one device.
func (t *Table) DeviceRowBufferSize() Bytes { return t.s.DeviceRowBufferSize }

// DevicesPerRank returns the number of devices that form a rank.
func (t *Table) DevicesPerRank() int { return t.s.DevicesPerRank }

// RanksPerChannel returns the number of ranks on the channel.
func (t *Table) RanksPerChannel() int { return t.s.RanksPerChannel }

// BankGroupsPerRank returns the number of bank groups in a rank.
func (t *Table) BankGroupsPerRank() int { return t.s.BankGroupsPerRank }

// BanksPerRank returns the number of banks in a rank.
func (t *Table) BanksPerRank() int { return t.s.BanksPerRank }

// ChannelCapacity returns the declared capacity of the channel.
func (t *Table) ChannelCapacity() Bytes { return t.s.ChannelCapacity }

// ReadBufferSize returns the read queue capacity in bursts.
func (t *Table) ReadBufferSize() int { return t.s.ReadBufferSize }

// WriteBufferSize returns the write queue capacity in bursts.
func (t *Table) WriteBufferSize() int { return t.s.WriteBufferSize }

// TCK returns the clock period.
func (t *Table) TCK() Duration { return t.s.TCK }

// TBURST returns the time a burst occupies the data bus.
func (t *Table) TBURST() Duration { return t.s.TBURST }

// TCCDL returns the column-to-column delay within a bank group.
func (t *Table) TCCDL() Duration { return t.s.TCCDL }

// TRCD returns the activate-to-column delay.
func (t *Table) TRCD() Duration { return t.s.TRCD }

// TCL returns the read latency.
func (t *Table) TCL() Duration { return t.s.TCL }

// TRP returns the precharge time.
func (t *Table) TRP() Duration { return t.s.TRP }

// TRAS returns the minimum activate-to-precharge time.
func (t *Table) TRAS() Duration { return t.s.TRAS }

// TRRD returns the activate-to-activate delay across bank groups.
func (t *Table) TRRD() Duration { return t.s.TRRD }

// TRRDL returns the activate-to-activate delay within a bank group.
func (t *Table) TRRDL() Duration { return t.s.TRRDL }

// TXAW returns the window that limits the number of activates.
func (t *Table) TXAW() Duration { return t.s.TXAW }

// ActivationLimit returns the number of activates allowed in TXAW.
func (t *Table) ActivationLimit() int { return t.s.ActivationLimit }

// TRFC returns the refresh cycle time.
func (t *Table) TRFC() Duration { return t.s.TRFC }

// TWR returns the write recovery time.
func (t *Table) TWR() Duration { return t.s.TWR }

// TWTR returns the write-to-read turnaround time.
func (t *Table) TWTR() Duration { return t.s.TWTR }

// TRTP returns the read-to-precharge time.
func (t *Table) TRTP() Duration { return t.s.TRTP }

// TRTW returns the read-to-write turnaround time.
func (t *Table) TRTW() Duration { return t.s.TRTW }

// TCS returns the rank-to-rank switching time.
func (t *Table) TCS() Duration { return t.s.TCS }

// TREFI returns the refresh interval.
func (t *Table) TREFI() Duration { return t.s.TREFI }

// TXP returns the power-down exit time.
func (t *Table) TXP() Duration { return t.s.TXP }

// TXS returns the self-refresh exit time.
func (t *Table) TXS() Duration { return t.s.TXS }

// IDD0 returns the activate-precharge current on VDD.
func (t *Table) IDD0() Current { return t.s.IDD0 }

// IDD02 returns the activate-precharge current on VDD2.
func (t *Table) IDD02() Current { return t.s.IDD02 }

// IDD2N returns the precharge standby current.
func (t *Table) IDD2N() Current { return t.s.IDD2N }

// IDD3N returns the active standby current.
func (t *Table) IDD3N() Current { return t.s.IDD3N }

// IDD3N2 returns the active standby current on VDD2.
func (t *Table) IDD3N2() Current { return t.s.IDD3N2 }

// IDD4W returns the burst write current.
func (t *Table) IDD4W() Current { return t.s.IDD4W }

// IDD4R returns the burst read current.
func (t *Table) IDD4R() Current { return t.s.IDD4R }

// IDD5 returns the refresh current.
func (t *Table) IDD5() Current { return t.s.IDD5 }

// IDD3P1 returns the active power-down current.
func (t *Table) IDD3P1() Current { return t.s.IDD3P1 }

// IDD2P1 returns the precharge power-down current.
func (t *Table) IDD2P1() Current { return t.s.IDD2P1 }

// IDD6 returns the self-refresh current.
func (t *Table) IDD6() Current { return t.s.IDD6 }

// VDD returns the core supply voltage.
func (t *Table) VDD() Voltage { return t.s.VDD }

// VDD2 returns the second supply voltage.
func (t *Table) VDD2() Voltage { return t.s.VDD2 }

// TRC returns the minimum activate-to-activate time within a bank.
func (t *Table) TRC() Duration { return t.s.TRAS + t.s.TRP }

// BanksPerGroup returns the number of banks in each bank group.
func (t *Table) BanksPerGroup() int {
	return t.s.BanksPerRank / t.s.BankGroupsPerRank
}

// RowBufferSize returns the row buffer size of a rank, summed over its
// devices.
func (t *Table) RowBufferSize() Bytes {
	return t.s.DeviceRowBufferSize * Bytes(t.s.DevicesPerRank)
}

// RowsPerBank returns the number of rows in each bank.
func (t *Table) RowsPerBank() uint64 {
	return uint64(t.s.DeviceSize) /
		(uint64(t.s.DeviceRowBufferSize) * uint64(t.s.BanksPerRank))
}

// BurstSize returns the number of bytes a rank transfers in one burst.
func (t *Table) BurstSize() uint64 {
	return uint64(t.s.DevicesPerRank) * uint64(t.s.DeviceBusWidth) *
		uint64(t.s.BurstLength) / 8
}

// BurstsPerRow returns the number of bursts that fit in one row.
func (t *Table) BurstsPerRow() uint64 {
	return uint64(t.RowBufferSize()) / t.BurstSize()
}

// Cycles converts a duration to clock cycles, rounding up.
func (t *Table) Cycles(d Duration) int {
	if d <= 0 {
		return 0
	}

	return int((d + t.s.TCK - 1) / t.s.TCK)
}

// WholeCycles converts a duration to the number of clock cycles that fit in
// it, rounding down. Deadlines use it so that they never exceed the duration.
func (t *Table) WholeCycles(d Duration) int {
	if d <= 0 {
		return 0
	}

	return int(d / t.s.TCK)
}

// Freq returns the command clock frequency.
func (t *Table) Freq() sim.Freq {
	return sim.Freq(1e12 / float64(t.s.TCK))
}

// CycleDuration returns the time that n cycles take.
func (t *Table) CycleDuration(n uint64) Duration {
	if n > math.MaxInt64/uint64(t.s.TCK) {
		return Duration(math.MaxInt64)
	}

	return Duration(n) * t.s.TCK
}
