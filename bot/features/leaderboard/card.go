package leaderboard

import (
	"bytes"
	"fmt"
	"image/color"
	"time"

	"guildkeeper/bot/common"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	log "github.com/sirupsen/logrus"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomono"
)

// CardRow is one line of the leaderboard image
type CardRow struct {
	Rank   int
	Name   string
	Wallet int64
	Bank   int64
	Total  int64
	// Self marks the caller's own row
	Self bool
}

type column struct {
	header string
	x      float64
	rgb    [3]float64
}

// CardGenerator renders the richest users as a PNG table
type CardGenerator struct {
	width     int
	minHeight int
	padding   float64
	rowHeight float64
	columns   []column
	podium    [][4]float64
}

func NewCardGenerator() *CardGenerator {
	padding := 15.0
	return &CardGenerator{
		width:     400,
		minHeight: 200,
		padding:   padding,
		rowHeight: 26,
		columns: []column{
			{header: "#", x: padding, rgb: [3]float64{0.85, 0.85, 0.9}},
			{header: "User", x: padding + 25, rgb: [3]float64{1, 1, 1}},
			{header: "Wallet", x: padding + 165, rgb: [3]float64{0.85, 1, 0.85}},
			{header: "Bank", x: padding + 235, rgb: [3]float64{0.85, 0.85, 1}},
			{header: "Total", x: padding + 305, rgb: [3]float64{1, 0.95, 0.7}},
		},
		podium: [][4]float64{
			{1, 0.84, 0, 0.1},
			{0.8, 0.8, 0.8, 0.08},
			{0.8, 0.5, 0.2, 0.06},
		},
	}
}

// Height is the image height for a number of rows
func (g *CardGenerator) Height(rows int) int {
	height := 25 + 30 + int(float64(rows)*g.rowHeight) + 15
	if height < g.minHeight {
		return g.minHeight
	}
	return height
}

// Generate draws the table and returns it PNG encoded
func (g *CardGenerator) Generate(rows []CardRow) ([]byte, error) {
	start := time.Now()
	defer func() {
		log.WithFields(log.Fields{
			"duration_ms": time.Since(start).Milliseconds(),
			"row_count":   len(rows),
		}).Debug("Leaderboard image generated")
	}()

	height := g.Height(len(rows))
	dc := gg.NewContext(g.width, height)

	grad := gg.NewLinearGradient(0, 0, 0, float64(height))
	grad.AddColorStop(0, rgb(0.02, 0.02, 0.05))
	grad.AddColorStop(1, rgb(0.05, 0.07, 0.15))
	dc.SetFillStyle(grad)
	dc.DrawRectangle(0, 0, float64(g.width), float64(height))
	dc.Fill()

	face, err := loadFont(gomono.TTF, 11)
	if err != nil {
		return nil, fmt.Errorf("failed to load font: %w", err)
	}
	bold, err := loadFont(gobold.TTF, 9)
	if err != nil {
		return nil, fmt.Errorf("failed to load font: %w", err)
	}
	dc.SetFontFace(face)

	y := 25.0
	dc.SetRGBA(0.3, 0.3, 0.4, 0.4)
	dc.DrawRectangle(0, y-15, float64(g.width), 20)
	dc.Fill()
	dc.SetRGB(1, 1, 1)
	for _, col := range g.columns {
		drawSharpText(dc, col.header, col.x, y)
	}
	dc.SetRGBA(0.6, 0.6, 0.7, 0.7)
	dc.SetLineWidth(1)
	dc.DrawLine(0, y+8, float64(g.width), y+8)
	dc.Stroke()

	y += 30
	for i, row := range rows {
		switch {
		case i < len(g.podium):
			c := g.podium[i]
			dc.SetRGBA(c[0], c[1], c[2], c[3])
		case row.Self:
			dc.SetRGBA(0.4, 0.6, 1, 0.12)
		default:
			dc.SetRGBA(0.5, 0.5, 0.6, 0.02)
		}
		dc.DrawRectangle(0, y-15, float64(g.width), g.rowHeight)
		dc.Fill()

		if i < len(g.podium) {
			c := g.podium[i]
			dc.SetRGB(c[0], c[1], c[2])
			dc.DrawCircle(g.padding+3, y-4, 6)
			dc.Fill()
			dc.SetRGB(0, 0, 0)
			dc.SetFontFace(bold)
			dc.DrawStringAnchored(fmt.Sprintf("%d", row.Rank), g.padding+3, y-5, 0.5, 0.4)
			dc.SetFontFace(face)
		} else {
			c := g.columns[0].rgb
			dc.SetRGB(c[0], c[1], c[2])
			drawSharpText(dc, fmt.Sprintf("%d", row.Rank), g.columns[0].x, y)
		}

		cells := []string{
			common.Truncate(row.Name, 18),
			common.FormatShortNotation(row.Wallet),
			common.FormatShortNotation(row.Bank),
			common.FormatShortNotation(row.Total),
		}
		for j, text := range cells {
			col := g.columns[j+1]
			dc.SetRGB(col.rgb[0], col.rgb[1], col.rgb[2])
			drawSharpText(dc, text, col.x, y)
		}
		y += g.rowHeight
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode PNG: %w", err)
	}
	return buf.Bytes(), nil
}

// drawSharpText draws text over a faint shadow
func drawSharpText(dc *gg.Context, text string, x, y float64) {
	dc.Push()
	dc.SetRGBA(0, 0, 0, 0.5)
	dc.DrawString(text, x+0.5, y+0.5)
	dc.Pop()
	dc.DrawString(text, x, y)
}

func rgb(r, g, b float64) color.Color {
	return color.RGBA{R: uint8(r * 255), G: uint8(g * 255), B: uint8(b * 255), A: 255}
}

func loadFont(data []byte, size float64) (font.Face, error) {
	f, err := truetype.Parse(data)
	if err != nil {
		return nil, err
	}
	return truetype.NewFace(f, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	}), nil
}
