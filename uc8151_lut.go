package badge

// uc8151LUT is a set of register waveforms. Every table holds up to seven groups of
// {level select, frames A, frames B, frames C, frames D, repeat}; VCOM has two trailing
// bytes.
type uc8151LUT struct {
	vcom, ww, bw, wb, bb []byte
}

const (
	uc8151LUTSize     = 42
	uc8151LUTVCOMSize = 44
)

// Level select patterns for a single group: 00 = VCOM, 01 = high, 10 = low.
const (
	uc8151LevelVCOM  = 0b0000_0000
	uc8151LevelWhite = 0b0101_0100 // high, high, high, VCOM
	uc8151LevelBlack = 0b1010_1000 // low, low, low, VCOM
	uc8151LevelFlash = 0b0110_0000 // high, low, VCOM, VCOM
)

// uc8151LUTs builds the waveforms for a speed profile. Faster profiles drive fewer frames
// per phase and skip the ghost clearing flash group.
func uc8151LUTs(speed SpeedProfile) uc8151LUT {
	var frames, flash byte
	switch speed {
	case SpeedMedium:
		frames, flash = 8, 4
	case SpeedFast:
		frames, flash = 4, 2
	default:
		frames, flash = 2, 0
	}

	build := func(size int, levels byte) []byte {
		lut := make([]byte, size)
		group := 0
		if flash > 0 {
			copy(lut[group*6:], []byte{uc8151LevelFlash, flash, flash, 0, 0, 1})
			group++
		}
		copy(lut[group*6:], []byte{levels, frames, frames, frames, 0, 1})
		return lut
	}

	return uc8151LUT{
		vcom: build(uc8151LUTVCOMSize, uc8151LevelVCOM),
		ww:   build(uc8151LUTSize, uc8151LevelWhite),
		bw:   build(uc8151LUTSize, uc8151LevelWhite),
		wb:   build(uc8151LUTSize, uc8151LevelBlack),
		bb:   build(uc8151LUTSize, uc8151LevelBlack),
	}
}
