package serial

import (
	"bytes"
	"log/slog"

	"github.com/pocketgb/pocketgb/gb/addr"
	"github.com/pocketgb/pocketgb/gb/bit"
)

// LogSink is the serial device the spec calls for: every byte written to SB
// while a transfer starts is appended to a sink, so Blargg-style test ROMs
// that print their pass/fail line over the serial port become readable log
// lines instead of silently discarded bus traffic.
type LogSink struct {
	irqHandler     func()
	sb, sc         byte
	transferActive bool
	countdown      int
	logger         *slog.Logger

	immediate bool
	defaultRX byte

	line bytes.Buffer
}

type LogSinkOption func(*LogSink)

// WithFixedTiming makes the sink finish a transfer after the DMG's real
// ~4096-cycle-per-byte shift register delay instead of resolving it on the
// same bus write that started it.
func WithFixedTiming() LogSinkOption {
	return func(s *LogSink) { s.immediate = false }
}

// NewLogSink builds a LogSink. irq is called once per completed transfer and
// should be wired to request the Serial interrupt.
func NewLogSink(irq func(), opts ...LogSinkOption) *LogSink {
	s := &LogSink{
		irqHandler: irq,
		immediate:  true,
		defaultRX:  0xFF,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Reset()
	return s
}

func (s *LogSink) Write(address uint16, value byte) {
	switch address {
	case addr.SB:
		s.sb = value
	case addr.SC:
		s.sc = value
		s.maybeStartTransfer()
	default:
		panic("serial.LogSink: invalid write address")
	}
}

func (s *LogSink) Read(address uint16) byte {
	switch address {
	case addr.SB:
		return s.sb
	case addr.SC:
		return s.sc
	default:
		panic("serial.LogSink: invalid read address")
	}
}

// Tick advances a pending fixed-timing transfer; a no-op under the default
// immediate-completion mode.
func (s *LogSink) Tick(cycles int) {
	if s.immediate || !s.transferActive {
		return
	}
	s.countdown -= cycles
	if s.countdown <= 0 {
		s.completeTransfer()
		s.countdown = 0
	}
}

func (s *LogSink) Reset() {
	s.sb = 0x00
	s.sc = 0x00
	s.transferActive = false
	s.countdown = 0
	s.line.Reset()
}

// maybeStartTransfer checks SC for the start (bit 7) and internal-clock
// (bit 0) bits that together mean "begin sending SB". External-clock
// transfers (bit 0 clear) never complete on real hardware without a link
// partner, so they're left pending forever here too.
func (s *LogSink) maybeStartTransfer() {
	if s.transferActive {
		return
	}
	if !bit.IsSet(7, s.sc) || !bit.IsSet(0, s.sc) {
		return
	}

	s.bufferByte(s.sb)

	if s.immediate {
		s.completeTransfer()
		return
	}

	s.transferActive = true
	s.countdown = 4096
}

// bufferByte accumulates printable output and flushes a log line whenever
// the guest sends a line terminator, so multi-byte test-ROM messages read
// as one log entry instead of one per byte.
func (s *LogSink) bufferByte(b byte) {
	if b == 0 || b == '\n' || b == '\r' {
		if s.line.Len() > 0 {
			s.logger.Info("serial", "line", s.line.String())
			s.line.Reset()
		}
		return
	}
	s.line.WriteByte(b)
}

func (s *LogSink) completeTransfer() {
	s.sb = s.defaultRX
	s.sc = bit.Reset(7, s.sc)
	s.transferActive = false
	if s.irqHandler != nil {
		s.irqHandler()
	}
}
