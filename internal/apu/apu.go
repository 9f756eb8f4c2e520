// Package apu implements the NES Audio Processing Unit register surface.
//
// Sound synthesis is out of scope; the APU here decodes every register
// write into the state a game can observe through $4015 (length-counter
// activity, frame IRQ, DMC IRQ) and drives the frame-counter IRQ sequence,
// without generating samples.
package apu

// APU represents the NES Audio Processing Unit register file.
type APU struct {
	pulse1   pulseChannel
	pulse2   pulseChannel
	triangle lengthChannel
	noise    lengthChannel
	dmc      dmcChannel

	frameCounter   uint16
	frameMode      bool // false = 4-step, true = 5-step
	frameIRQEnable bool
	frameIRQFlag   bool

	channelEnable [5]bool // pulse1, pulse2, triangle, noise, dmc

	cycles uint64
}

// pulseChannel tracks only what $4015 status reporting needs: whether the
// channel has an active length counter.
type pulseChannel struct {
	lengthCounter uint8
	lengthHalt    bool
}

// lengthChannel is the same shape, reused for triangle and noise.
type lengthChannel struct {
	lengthCounter uint8
	lengthHalt    bool
}

// dmcChannel tracks the DMC sample-playback byte counter and IRQ flag.
type dmcChannel struct {
	irqEnable      bool
	loop           bool
	sampleAddress  uint16
	sampleLength   uint16
	bytesRemaining uint16
	irqFlag        bool
}

// New creates a new APU instance.
func New() *APU {
	return &APU{
		frameMode:      false,
		frameIRQEnable: true,
	}
}

// Reset resets the APU to its initial state.
func (apu *APU) Reset() {
	apu.pulse1 = pulseChannel{}
	apu.pulse2 = pulseChannel{}
	apu.triangle = lengthChannel{}
	apu.noise = lengthChannel{}
	apu.dmc = dmcChannel{}

	apu.frameCounter = 0
	apu.frameMode = false
	apu.frameIRQEnable = true
	apu.frameIRQFlag = false

	for i := range apu.channelEnable {
		apu.channelEnable[i] = false
	}

	apu.cycles = 0
}

// Step advances the frame-counter sequencer by one CPU cycle. No audio is
// synthesized; this exists only to clock length counters and the frame IRQ.
func (apu *APU) Step() {
	apu.cycles++
	apu.stepFrameCounter()
}

// stepFrameCounter clocks length counters on the standard 4-step/5-step
// schedule and raises the frame IRQ at the end of a 4-step sequence.
func (apu *APU) stepFrameCounter() {
	apu.frameCounter++

	if apu.frameMode {
		switch apu.frameCounter {
		case 14913, 37281:
			apu.clockLength()
		}
		if apu.frameCounter == 37281 {
			apu.frameCounter = 0
		}
	} else {
		switch apu.frameCounter {
		case 14913, 29829:
			apu.clockLength()
		case 29830:
			if apu.frameIRQEnable {
				apu.frameIRQFlag = true
			}
			apu.frameCounter = 0
		}
	}
}

func (apu *APU) clockLength() {
	clockOne := func(lengthCounter *uint8, halt bool) {
		if !halt && *lengthCounter > 0 {
			*lengthCounter--
		}
	}
	clockOne(&apu.pulse1.lengthCounter, apu.pulse1.lengthHalt)
	clockOne(&apu.pulse2.lengthCounter, apu.pulse2.lengthHalt)
	clockOne(&apu.triangle.lengthCounter, apu.triangle.lengthHalt)
	clockOne(&apu.noise.lengthCounter, apu.noise.lengthHalt)
}

// WriteRegister decodes a write to an APU register address ($4000-$4013,
// $4015, $4017).
func (apu *APU) WriteRegister(address uint16, value uint8) {
	switch address {
	case 0x4000:
		apu.pulse1.lengthHalt = value&0x20 != 0
	case 0x4003:
		apu.loadLength(&apu.pulse1.lengthCounter, value)
	case 0x4004:
		apu.pulse2.lengthHalt = value&0x20 != 0
	case 0x4007:
		apu.loadLength(&apu.pulse2.lengthCounter, value)
	case 0x4008:
		apu.triangle.lengthHalt = value&0x80 != 0
	case 0x400B:
		apu.loadLength(&apu.triangle.lengthCounter, value)
	case 0x400C:
		apu.noise.lengthHalt = value&0x20 != 0
	case 0x400F:
		apu.loadLength(&apu.noise.lengthCounter, value)
	case 0x4010:
		apu.dmc.irqEnable = value&0x80 != 0
		apu.dmc.loop = value&0x40 != 0
		if !apu.dmc.irqEnable {
			apu.dmc.irqFlag = false
		}
	case 0x4012:
		apu.dmc.sampleAddress = 0xC000 + uint16(value)*64
	case 0x4013:
		apu.dmc.sampleLength = uint16(value)*16 + 1
	case 0x4015:
		apu.writeChannelEnable(value)
	case 0x4017:
		apu.writeFrameCounter(value)
	}
}

// loadLength applies the 5-bit length-counter load table indexed by the
// top 5 bits of a $4003/$4007/$400B/$400F-style write, the standard way a
// length counter is armed on the real hardware.
func (apu *APU) loadLength(counter *uint8, value uint8) {
	*counter = lengthTable[value>>3]
}

func (apu *APU) writeChannelEnable(value uint8) {
	for i := 0; i < 5; i++ {
		apu.channelEnable[i] = value&(1<<i) != 0
	}
	if !apu.channelEnable[0] {
		apu.pulse1.lengthCounter = 0
	}
	if !apu.channelEnable[1] {
		apu.pulse2.lengthCounter = 0
	}
	if !apu.channelEnable[2] {
		apu.triangle.lengthCounter = 0
	}
	if !apu.channelEnable[3] {
		apu.noise.lengthCounter = 0
	}
	if apu.channelEnable[4] {
		if apu.dmc.bytesRemaining == 0 {
			apu.dmc.bytesRemaining = apu.dmc.sampleLength
		}
	} else {
		apu.dmc.bytesRemaining = 0
	}
	apu.dmc.irqFlag = false
}

func (apu *APU) writeFrameCounter(value uint8) {
	apu.frameMode = value&0x80 != 0
	apu.frameIRQEnable = value&0x40 == 0
	apu.frameCounter = 0
	if apu.frameMode {
		apu.clockLength()
	}
}

// GetSamples returns the current audio samples. Synthesis is out of scope,
// so this is always empty; it exists so callers that poll for output see a
// consistent, harmless result rather than a missing method.
func (apu *APU) GetSamples() []float32 {
	return nil
}

// SetSampleRate is a no-op; there is no sample generator to retarget.
func (apu *APU) SetSampleRate(rate int) {}

// GetSampleRate returns the nominal NES audio sample rate.
func (apu *APU) GetSampleRate() int {
	return 44100
}

// ReadStatus reads the APU status register ($4015).
func (apu *APU) ReadStatus() uint8 {
	status := uint8(0)

	if apu.pulse1.lengthCounter > 0 {
		status |= 0x01
	}
	if apu.pulse2.lengthCounter > 0 {
		status |= 0x02
	}
	if apu.triangle.lengthCounter > 0 {
		status |= 0x04
	}
	if apu.noise.lengthCounter > 0 {
		status |= 0x08
	}
	if apu.dmc.bytesRemaining > 0 {
		status |= 0x10
	}
	if apu.frameIRQFlag {
		status |= 0x40
	}
	if apu.dmc.irqFlag {
		status |= 0x80
	}

	apu.frameIRQFlag = false

	return status
}

// GetFrameIRQ reports whether the frame counter's IRQ flag is set.
func (apu *APU) GetFrameIRQ() bool {
	return apu.frameIRQFlag
}

// GetDMCIRQ reports whether the DMC channel's IRQ flag is set.
func (apu *APU) GetDMCIRQ() bool {
	return apu.dmc.irqFlag
}

// lengthTable is the standard NES length-counter load table, indexed by the
// top 5 bits of a channel's length-load register write.
var lengthTable = [32]uint8{
	10, 254, 20, 2, 40, 4, 80, 6,
	160, 8, 60, 10, 14, 12, 26, 14,
	12, 16, 24, 8, 48, 6, 96, 4,
	192, 2, 72, 16, 28, 32, 52, 2,
}
