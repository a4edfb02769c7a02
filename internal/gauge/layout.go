package gauge

import "image"

// Layout fixes every coordinate on the gauge face. Frames are square,
// Size pixels per edge, with the needle pivot at the center. Drum windows
// are laid out symmetrically around the vertical axis: the two altitude
// cells above the pivot, the four pressure cells below it.
type Layout struct {
	Size int

	// Dial artwork radii, from the pivot outwards
	NumeralRadius int // center of the 0..9 labels
	TickInner     int // minor tick start
	TickOuter     int // tick ring edge
	PlateRadius   int // face plate disk
	BezelInner    int // bezel ring
	BezelOuter    int

	// Drum windows. AltDrums shows ten-thousands and thousands of feet,
	// BaroDrums the four pressure digits, most significant first.
	AltCell   image.Point
	AltDrums  [2]image.Rectangle
	BaroCell  image.Point
	BaroDrums [4]image.Rectangle

	// Needle shape, relative to the pivot
	Pivot        image.Point
	NeedleLength int
	NeedleTail   int
	NeedleWidth  int
	HubRadius    int

	// Bug marker, riding the bezel pointing at the pivot
	BugOuter int
	BugInner int
	BugHalf  int

	// Pixel offsets into the digit strips, indexed by digit
	AltOffsets  [10]int
	BaroOffsets [10]int
}

// DefaultLayout is the 480x480 face the instrument ships with.
func DefaultLayout() Layout {
	l := Layout{
		Size:          480,
		NumeralRadius: 164,
		TickInner:     196,
		TickOuter:     210,
		PlateRadius:   222,
		BezelInner:    224,
		BezelOuter:    232,
		AltCell:       image.Pt(44, 60),
		BaroCell:      image.Pt(24, 32),
		Pivot:         image.Pt(240, 240),
		NeedleLength:  150,
		NeedleTail:    34,
		NeedleWidth:   12,
		HubRadius:     16,
		BugOuter:      228,
		BugInner:      206,
		BugHalf:       10,
	}

	l.AltDrums[0] = image.Rect(195, 116, 239, 176)
	l.AltDrums[1] = image.Rect(241, 116, 285, 176)

	l.BaroDrums[0] = image.Rect(189, 300, 213, 332)
	l.BaroDrums[1] = image.Rect(215, 300, 239, 332)
	l.BaroDrums[2] = image.Rect(241, 300, 265, 332)
	l.BaroDrums[3] = image.Rect(267, 300, 291, 332)

	for d := 0; d <= 9; d++ {
		l.AltOffsets[d] = d * l.AltCell.Y
		l.BaroOffsets[d] = d * l.BaroCell.Y
	}

	return l
}
