package zones

// Config holds the layout constants for the zone grid. All distances are in
// layout-space units shared with the renderer.
type Config struct {
	MinZoneWidth  float64 `yaml:"minZoneWidth"`
	MinZoneHeight float64 `yaml:"minZoneHeight"`

	// Per-device spacing inside cloud/internet/remote zones.
	SpacingX float64 `yaml:"spacingX"`
	SpacingY float64 `yaml:"spacingY"`

	Padding   float64 `yaml:"padding"`
	ZoneGap   float64 `yaml:"zoneGap"`
	LabelBand float64 `yaml:"labelBand"`

	// MaxPerRow caps row width in cloud/internet/remote zones;
	// the on-premise zone allows wider rows inside its sub-zones.
	MaxPerRow       int `yaml:"maxPerRow"`
	MaxPerRowOnPrem int `yaml:"maxPerRowOnPrem"`

	// Sub-zone grid inside the on-premise zone.
	SubZoneColumns int     `yaml:"subZoneColumns"`
	SubSpacingX    float64 `yaml:"subSpacingX"`
	SubSpacingY    float64 `yaml:"subSpacingY"`
	SubPadding     float64 `yaml:"subPadding"`
	SubLabelBand   float64 `yaml:"subLabelBand"`
	SubZoneGap     float64 `yaml:"subZoneGap"`

	// MaxRowSpacing caps vertical stretch when a zone is taller than its
	// content needs.
	MaxRowSpacing float64 `yaml:"maxRowSpacing"`
}

// DefaultConfig returns the tuned zone layout constants.
func DefaultConfig() Config {
	return Config{
		MinZoneWidth:    320,
		MinZoneHeight:   240,
		SpacingX:        110,
		SpacingY:        100,
		Padding:         30,
		ZoneGap:         80,
		LabelBand:       40,
		MaxPerRow:       5,
		MaxPerRowOnPrem: 8,
		SubZoneColumns:  3,
		SubSpacingX:     95,
		SubSpacingY:     85,
		SubPadding:      20,
		SubLabelBand:    30,
		SubZoneGap:      25,
		MaxRowSpacing:   140,
	}
}

func clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
