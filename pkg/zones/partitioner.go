// Package zones computes the deterministic, overlap-free zone grid used in
// zoned layout mode. Four top-level zones (cloud, internet, remote,
// on-premise) tile a 2x2 grid whose column widths and row heights are
// coupled for visual alignment; the on-premise zone nests one sub-zone per
// device type. Given the same device list, partitioning is a pure function,
// so layouts reproduce exactly across reloads.
package zones

import (
	"github.com/netobserve/topoview/pkg/model"
)

// Partitioner assigns zone geometry and per-device grid coordinates.
type Partitioner struct {
	cfg Config
}

// New creates a Partitioner with the given layout constants.
func New(cfg Config) *Partitioner {
	if cfg.SubZoneColumns <= 0 {
		cfg.SubZoneColumns = 3
	}
	return &Partitioner{cfg: cfg}
}

// Result is the output of one partitioning pass. Every listed device has a
// unique coordinate; all coordinates are authoritative (fixed) in zoned mode.
type Result struct {
	Zones     []model.Zone
	Positions map[uint64]model.Position
}

// zoneOrder fixes the 2x2 grid: cloud | internet on top,
// remote | on-premise below.
var zoneOrder = []model.LocationType{
	model.LocationCloud,
	model.LocationInternet,
	model.LocationRemote,
	model.LocationOnPremise,
}

// Partition computes the full zone grid for the given devices. Devices keep
// their relative insertion order inside each zone, which is what makes the
// pass deterministic.
func (p *Partitioner) Partition(devices []model.Device) *Result {
	groups := groupByLocation(devices)

	sized := make(map[model.LocationType]*zoneBuild, len(zoneOrder))
	for _, key := range zoneOrder {
		if key == model.LocationOnPremise {
			sized[key] = p.sizeOnPremise(groups[key])
		} else {
			sized[key] = p.sizeSimple(key, groups[key])
		}
	}

	p.placeGrid(sized)

	res := &Result{Positions: make(map[uint64]model.Position, len(devices))}
	for _, key := range zoneOrder {
		zb := sized[key]
		if key == model.LocationOnPremise {
			p.placeOnPremiseDevices(zb, res.Positions)
		} else {
			p.placeSimpleDevices(zb, res.Positions)
		}
		res.Zones = append(res.Zones, zb.zone)
	}
	return res
}

type zoneBuild struct {
	zone    model.Zone
	devices []model.Device
	rows    int

	// on-premise only
	subs       []subBuild
	colWidths  []float64
	rowHeights []float64
}

type subBuild struct {
	sub     model.SubZone
	devices []model.Device
	rows    int
	gridRow int
	gridCol int
}

func groupByLocation(devices []model.Device) map[model.LocationType][]model.Device {
	groups := make(map[model.LocationType][]model.Device, 4)
	for _, d := range devices {
		key := d.LocationType.Normalize()
		groups[key] = append(groups[key], d)
	}
	return groups
}

// sizeSimple computes row/column shape and the bounding box extent for a
// cloud, internet, or remote zone. Position is filled in by placeGrid.
func (p *Partitioner) sizeSimple(key model.LocationType, devices []model.Device) *zoneBuild {
	n := len(devices)
	perRow := clamp(n, 1, p.cfg.MaxPerRow)
	rows := 0
	if n > 0 {
		rows = ceilDiv(n, perRow)
	}

	width := maxf(p.cfg.MinZoneWidth, float64(perRow)*p.cfg.SpacingX+2*p.cfg.Padding)
	height := maxf(p.cfg.MinZoneHeight, float64(rows)*p.cfg.SpacingY+2*p.cfg.Padding+p.cfg.LabelBand)

	return &zoneBuild{
		zone: model.Zone{
			Key:           key,
			Label:         model.ZoneLabel(key),
			DeviceCount:   n,
			DevicesPerRow: perRow,
			Bounds:        model.Rect{Width: width, Height: height},
		},
		devices: devices,
		rows:    rows,
	}
}

// sizeOnPremise builds one sub-zone per device type and sizes the parent to
// fit the sub-zone grid plus its label band. Sub-zones tile a fixed-column
// grid; each grid column is as wide as its widest sub-zone and each grid row
// as tall as its tallest.
func (p *Partitioner) sizeOnPremise(devices []model.Device) *zoneBuild {
	typeOrder, byType := groupByDeviceType(devices)

	subs := make([]subBuild, 0, len(typeOrder))
	for i, dt := range typeOrder {
		group := byType[dt]
		n := len(group)
		perRow := clamp(n, 1, p.cfg.MaxPerRowOnPrem)
		rows := ceilDiv(n, perRow)

		width := float64(perRow)*p.cfg.SubSpacingX + 2*p.cfg.SubPadding
		height := float64(rows)*p.cfg.SubSpacingY + 2*p.cfg.SubPadding + p.cfg.SubLabelBand

		subs = append(subs, subBuild{
			sub: model.SubZone{
				Key:           dt,
				Label:         dt,
				DeviceCount:   n,
				DevicesPerRow: perRow,
				Bounds:        model.Rect{Width: width, Height: height},
			},
			devices: group,
			rows:    rows,
			gridRow: i / p.cfg.SubZoneColumns,
			gridCol: i % p.cfg.SubZoneColumns,
		})
	}

	gridRows := 0
	if len(subs) > 0 {
		gridRows = ceilDiv(len(subs), p.cfg.SubZoneColumns)
	}
	colWidths := make([]float64, p.cfg.SubZoneColumns)
	rowHeights := make([]float64, gridRows)
	for _, sb := range subs {
		colWidths[sb.gridCol] = maxf(colWidths[sb.gridCol], sb.sub.Bounds.Width)
		rowHeights[sb.gridRow] = maxf(rowHeights[sb.gridRow], sb.sub.Bounds.Height)
	}

	gridWidth, gridHeight := 0.0, 0.0
	usedCols := len(subs)
	if usedCols > p.cfg.SubZoneColumns {
		usedCols = p.cfg.SubZoneColumns
	}
	for c := 0; c < usedCols; c++ {
		gridWidth += colWidths[c]
	}
	if usedCols > 1 {
		gridWidth += float64(usedCols-1) * p.cfg.SubZoneGap
	}
	for r := 0; r < gridRows; r++ {
		gridHeight += rowHeights[r]
	}
	if gridRows > 1 {
		gridHeight += float64(gridRows-1) * p.cfg.SubZoneGap
	}

	width := maxf(p.cfg.MinZoneWidth, gridWidth+2*p.cfg.Padding)
	height := maxf(p.cfg.MinZoneHeight, gridHeight+2*p.cfg.Padding+p.cfg.LabelBand)

	zb := &zoneBuild{
		zone: model.Zone{
			Key:         model.LocationOnPremise,
			Label:       model.ZoneLabel(model.LocationOnPremise),
			DeviceCount: len(devices),
			Bounds:      model.Rect{Width: width, Height: height},
		},
		devices: devices,
		subs:    subs,
	}

	// Stash the stacked column/row extents for placement once the parent's
	// origin is known.
	zb.colWidths = colWidths
	zb.rowHeights = rowHeights
	return zb
}

// placeGrid couples the 2x2 grid columns and rows and centers the grid at
// the origin with a fixed gap, then centers each zone box inside its cell.
func (p *Partitioner) placeGrid(sized map[model.LocationType]*zoneBuild) {
	cloud := sized[model.LocationCloud]
	internet := sized[model.LocationInternet]
	remote := sized[model.LocationRemote]
	onprem := sized[model.LocationOnPremise]

	leftW := maxf(cloud.zone.Bounds.Width, remote.zone.Bounds.Width)
	rightW := maxf(internet.zone.Bounds.Width, onprem.zone.Bounds.Width)
	topH := maxf(cloud.zone.Bounds.Height, internet.zone.Bounds.Height)
	botH := maxf(remote.zone.Bounds.Height, onprem.zone.Bounds.Height)

	totalW := leftW + p.cfg.ZoneGap + rightW
	totalH := topH + p.cfg.ZoneGap + botH

	leftCX := -totalW/2 + leftW/2
	rightCX := totalW/2 - rightW/2
	topCY := -totalH/2 + topH/2
	botCY := totalH/2 - botH/2

	centerZone(&cloud.zone.Bounds, leftCX, topCY)
	centerZone(&internet.zone.Bounds, rightCX, topCY)
	centerZone(&remote.zone.Bounds, leftCX, botCY)
	centerZone(&onprem.zone.Bounds, rightCX, botCY)

	p.placeSubZones(onprem)
}

func centerZone(r *model.Rect, cx, cy float64) {
	r.X = cx - r.Width/2
	r.Y = cy - r.Height/2
}

// placeSubZones lays the sub-zone grid out inside the parent's interior,
// below the label band, left-aligned into the stacked columns and rows.
func (p *Partitioner) placeSubZones(zb *zoneBuild) {
	originX := zb.zone.Bounds.X + p.cfg.Padding
	originY := zb.zone.Bounds.Y + p.cfg.LabelBand + p.cfg.Padding

	for i := range zb.subs {
		sb := &zb.subs[i]
		x := originX
		for c := 0; c < sb.gridCol; c++ {
			x += zb.colWidths[c] + p.cfg.SubZoneGap
		}
		y := originY
		for r := 0; r < sb.gridRow; r++ {
			y += zb.rowHeights[r] + p.cfg.SubZoneGap
		}
		sb.sub.Bounds.X = x
		sb.sub.Bounds.Y = y
		zb.zone.SubZones = append(zb.zone.SubZones, sb.sub)
	}
}

// placeSimpleDevices centers each device in its row/column cell, evenly
// distributing columns across the interior width. Row spacing is capped so a
// zone with few rows but a tall coupled height does not stretch degenerately.
func (p *Partitioner) placeSimpleDevices(zb *zoneBuild, out map[uint64]model.Position) {
	if len(zb.devices) == 0 {
		return
	}
	b := zb.zone.Bounds
	interiorW := b.Width - 2*p.cfg.Padding
	interiorH := b.Height - 2*p.cfg.Padding - p.cfg.LabelBand

	colWidth := interiorW / float64(zb.zone.DevicesPerRow)
	rowSpacing := minf(interiorH/float64(zb.rows), p.cfg.MaxRowSpacing)

	for i, d := range zb.devices {
		row := i / zb.zone.DevicesPerRow
		col := i % zb.zone.DevicesPerRow
		out[d.ID] = model.Position{
			X: b.X + p.cfg.Padding + colWidth*(float64(col)+0.5),
			Y: b.Y + p.cfg.LabelBand + p.cfg.Padding + rowSpacing*(float64(row)+0.5),
		}
	}
}

// placeOnPremiseDevices positions devices inside their sub-zone cells using
// the sub-zone spacing constants.
func (p *Partitioner) placeOnPremiseDevices(zb *zoneBuild, out map[uint64]model.Position) {
	for si := range zb.subs {
		sb := &zb.subs[si]
		b := zb.zone.SubZones[si].Bounds
		interiorW := b.Width - 2*p.cfg.SubPadding
		interiorH := b.Height - 2*p.cfg.SubPadding - p.cfg.SubLabelBand

		colWidth := interiorW / float64(sb.sub.DevicesPerRow)
		rowSpacing := minf(interiorH/float64(sb.rows), p.cfg.MaxRowSpacing)

		for i, d := range sb.devices {
			row := i / sb.sub.DevicesPerRow
			col := i % sb.sub.DevicesPerRow
			out[d.ID] = model.Position{
				X: b.X + p.cfg.SubPadding + colWidth*(float64(col)+0.5),
				Y: b.Y + p.cfg.SubLabelBand + p.cfg.SubPadding + rowSpacing*(float64(row)+0.5),
			}
		}
	}
}

// ZoneFor returns the bounding box a device belongs to under the given
// partition, used for boundary correction when physics is active.
func (r *Result) ZoneFor(d *model.Device) (model.Rect, bool) {
	key := d.LocationType.Normalize()
	for _, z := range r.Zones {
		if z.Key != key {
			continue
		}
		if key == model.LocationOnPremise {
			for _, sz := range z.SubZones {
				if sz.Key == d.DeviceType {
					return sz.Bounds, true
				}
			}
		}
		return z.Bounds, true
	}
	return model.Rect{}, false
}

func groupByDeviceType(devices []model.Device) ([]string, map[string][]model.Device) {
	order := make([]string, 0)
	byType := make(map[string][]model.Device)
	for _, d := range devices {
		if _, ok := byType[d.DeviceType]; !ok {
			order = append(order, d.DeviceType)
		}
		byType[d.DeviceType] = append(byType[d.DeviceType], d)
	}
	return order, byType
}
