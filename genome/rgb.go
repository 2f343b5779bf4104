package genome

// ChannelMax is the largest value of a single colour channel.
const ChannelMax = 255

// rgbNorm is the largest possible summed channel difference between two colours.
const rgbNorm = 3 * ChannelMax

// RGB is a 3-channel 8-bit colour unit.
type RGB struct {
	R, G, B uint8
}

// Black is the zero colour.
var Black = RGB{}

// Random returns a uniformly random colour.
func (RGB) Random(rng Rand) RGB {
	return RGB{
		R: uint8(rng.Intn(256)),
		G: uint8(rng.Intn(256)),
		B: uint8(rng.Intn(256)),
	}
}

// Similarity returns (765 - Σ|aᵢ-bᵢ|) / 765.
func (c RGB) Similarity(other RGB) float32 {
	diff := absDiff(c.R, other.R) + absDiff(c.G, other.G) + absDiff(c.B, other.B)
	return float32(rgbNorm-diff) / rgbNorm
}

// IsDark reports whether every channel is below threshold.
func (c RGB) IsDark(threshold uint8) bool {
	return c.R < threshold && c.G < threshold && c.B < threshold
}

func absDiff(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}
