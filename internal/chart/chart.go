package chart

import (
	"fmt"
	"image/color"
	"log/slog"
	"math"
	"os"
	"path/filepath"

	"github.com/samber/lo"
	"golang.org/x/image/font/opentype"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/font"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	apperrors "pivotcli/internal/errors"
	"pivotcli/internal/table"
)

// Kind selects how a panel draws its columns.
type Kind string

const (
	Line       Kind = "line"
	Bar        Kind = "bar"
	GroupedBar Kind = "grouped_bar"
)

// Panel is one plot of a dashboard. Every column is a numeric series over
// the dashboard's label column.
type Panel struct {
	Kind    Kind
	Columns []string
	Title   string
	YLabel  string
}

// Dashboard is a grid of panels, two per row, sharing one label column.
type Dashboard struct {
	Title       string
	LabelColumn string
	Panels      []Panel
}

// Options control the rendered image.
type Options struct {
	// Width and Height are in pixels.
	Width, Height int
	// FontPath names a TrueType/OpenType font used for every label. CJK
	// labels need one; the built-in fonts only cover Latin text.
	FontPath string
	// MarginLabel rows are left out of every panel.
	MarginLabel string
	Logger      *slog.Logger
}

const dpi = 96

var lineColor = color.RGBA{R: 0x1f, G: 0x4e, B: 0xd8, A: 0xff}

// barColors follows the palette of the original sales dashboard.
var barColors = []color.Color{
	color.RGBA{R: 0xFF, G: 0x6B, B: 0x6B, A: 0xff},
	color.RGBA{R: 0x4E, G: 0xCD, B: 0xC4, A: 0xff},
	color.RGBA{R: 0x45, G: 0xB7, B: 0xD1, A: 0xff},
	color.RGBA{R: 0x96, G: 0xCE, B: 0xB4, A: 0xff},
	color.RGBA{R: 0xFF, G: 0x9F, B: 0x43, A: 0xff},
	color.RGBA{R: 0x5F, G: 0x27, B: 0xCD, A: 0xff},
}

// Render draws d from the rows of t and writes a PNG to path.
func Render(t *table.Table, d Dashboard, path string, opts Options) error {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if len(d.Panels) == 0 {
		return apperrors.NewValidationError("dashboard has no panels")
	}
	if d.LabelColumn == "" {
		return apperrors.NewValidationError("dashboard needs a label column")
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		return apperrors.NewValidationError(fmt.Sprintf("invalid chart size %dx%d", opts.Width, opts.Height))
	}
	needed := []string{d.LabelColumn}
	for _, p := range d.Panels {
		needed = append(needed, p.Columns...)
	}
	if err := t.Require(lo.Uniq(needed)...); err != nil {
		return err
	}

	labels, rows := dataRows(t, d.LabelColumn, opts.MarginLabel)
	if len(rows) == 0 {
		return apperrors.NewEmptyInputError("no rows to chart")
	}

	var typeface font.Typeface
	if opts.FontPath != "" {
		tf, err := loadFont(opts.FontPath)
		if err != nil {
			return err
		}
		typeface = tf
	}

	cols := 2
	if len(d.Panels) == 1 {
		cols = 1
	}
	grid := make([][]*plot.Plot, (len(d.Panels)+cols-1)/cols)
	for r := range grid {
		grid[r] = make([]*plot.Plot, cols)
	}
	for i, panel := range d.Panels {
		p, err := newPanelPlot(t, panel, d.LabelColumn, labels, rows)
		if err != nil {
			return err
		}
		if typeface != "" {
			applyTypeface(p, typeface)
		}
		grid[i/cols][i%cols] = p
	}

	img := vgimg.New(vg.Length(opts.Width)*vg.Inch/dpi, vg.Length(opts.Height)*vg.Inch/dpi)
	dc := draw.New(img)

	titleSpace := vg.Points(0)
	if d.Title != "" {
		titleSpace = vg.Points(36)
		titleFont := plot.DefaultFont
		if typeface != "" {
			titleFont = font.Font{Typeface: typeface}
		}
		dc.FillText(text.Style{
			Color:   color.Black,
			Font:    font.From(titleFont, vg.Points(18)),
			XAlign:  draw.XCenter,
			YAlign:  draw.YTop,
			Handler: plot.DefaultTextHandler,
		}, vg.Point{X: (dc.Min.X + dc.Max.X) / 2, Y: dc.Max.Y - vg.Points(8)}, d.Title)
	}

	tiles := draw.Tiles{
		Rows:      len(grid),
		Cols:      cols,
		PadX:      vg.Millimeter * 6,
		PadY:      vg.Millimeter * 6,
		PadTop:    vg.Millimeter*2 + titleSpace,
		PadBottom: vg.Millimeter * 2,
		PadLeft:   vg.Millimeter * 2,
		PadRight:  vg.Millimeter * 2,
	}
	canvases := plot.Align(grid, tiles, dc)
	for r := range grid {
		for c, p := range grid[r] {
			if p != nil {
				p.Draw(canvases[r][c])
			}
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return apperrors.NewStorageError("failed to create chart directory", err).WithContext("path", path)
	}
	f, err := os.Create(path)
	if err != nil {
		return apperrors.NewStorageError("failed to create chart file", err).WithContext("path", path)
	}
	defer f.Close()
	if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(f); err != nil {
		return apperrors.NewStorageError("failed to write chart", err).WithContext("path", path)
	}

	logger.Info("Rendered chart",
		slog.String("path", path),
		slog.Int("panels", len(d.Panels)),
		slog.Int("categories", len(labels)))
	return nil
}

// dataRows lists the rows to plot and their labels, leaving out margin rows.
func dataRows(t *table.Table, labelColumn, marginLabel string) ([]string, []int) {
	var labels []string
	var rows []int
	for i := 0; i < t.Len(); i++ {
		label := t.Value(i, labelColumn).String()
		if marginLabel != "" && label == marginLabel {
			continue
		}
		labels = append(labels, label)
		rows = append(rows, i)
	}
	return labels, rows
}

// series reads column over rows. Nulls are reported as invalid points.
func series(t *table.Table, column string, rows []int) ([]float64, []bool, error) {
	values := make([]float64, len(rows))
	valid := make([]bool, len(rows))
	for i, r := range rows {
		v := t.Value(r, column)
		if v.IsNull() {
			continue
		}
		f, ok := v.Float64()
		if !ok {
			return nil, nil, apperrors.NewTypeMismatchError(column, r, v.String(), "chart")
		}
		values[i], valid[i] = f, true
	}
	return values, valid, nil
}

func newPanelPlot(t *table.Table, panel Panel, labelColumn string, labels []string, rows []int) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = panel.Title
	p.Title.TextStyle.Font.Size = vg.Points(12)
	p.X.Label.Text = labelColumn
	p.Y.Label.Text = panel.YLabel
	p.NominalX(labels...)
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter
	p.Legend.Top = true

	switch panel.Kind {
	case Line:
		p.Add(plotter.NewGrid())
		for i, column := range panel.Columns {
			values, valid, err := series(t, column, rows)
			if err != nil {
				return nil, err
			}
			var pts plotter.XYs
			for x := range values {
				if valid[x] {
					pts = append(pts, plotter.XY{X: float64(x), Y: values[x]})
				}
			}
			if len(pts) == 0 {
				continue
			}
			line, points, err := plotter.NewLinePoints(pts)
			if err != nil {
				return nil, apperrors.NewValidationError(fmt.Sprintf("cannot plot %s: %v", column, err))
			}
			c := color.Color(lineColor)
			if i > 0 {
				c = plotutil.Color(i)
			}
			line.Color = c
			line.Width = vg.Points(2)
			points.Color = c
			p.Add(line, points)
			if len(panel.Columns) > 1 {
				p.Legend.Add(column, line, points)
			}
		}

	case Bar, GroupedBar:
		n := len(panel.Columns)
		width := vg.Points(math.Max(6, math.Min(30, 240/float64(len(rows)*n))))
		for i, column := range panel.Columns {
			values, _, err := series(t, column, rows)
			if err != nil {
				return nil, err
			}
			bars, err := plotter.NewBarChart(plotter.Values(values), width)
			if err != nil {
				return nil, apperrors.NewValidationError(fmt.Sprintf("cannot plot %s: %v", column, err))
			}
			bars.LineStyle.Width = vg.Length(0)
			bars.Color = barColors[i%len(barColors)]
			if n > 1 {
				bars.Offset = vg.Length(float64(i)-float64(n-1)/2) * width
				p.Legend.Add(column, bars)
			}
			p.Add(bars)
		}

	default:
		return nil, apperrors.NewValidationError(fmt.Sprintf("unknown panel kind %q", panel.Kind))
	}
	return p, nil
}

// loadFont registers the font file with the plot font cache.
func loadFont(path string) (font.Typeface, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", apperrors.NewFileNotFoundError(path)
		}
		return "", apperrors.NewStorageError("failed to read font", err).WithContext("path", path)
	}
	face, err := opentype.Parse(data)
	if err != nil {
		return "", apperrors.NewParsingError(fmt.Sprintf("invalid font %s", path), err)
	}
	typeface := font.Typeface(filepath.Base(path))
	font.DefaultCache.Add(font.Collection{{Font: font.Font{Typeface: typeface}, Face: face}})
	return typeface, nil
}

func applyTypeface(p *plot.Plot, tf font.Typeface) {
	set := func(f *font.Font) { *f = font.Font{Typeface: tf, Size: f.Size} }
	set(&p.Title.TextStyle.Font)
	set(&p.X.Label.TextStyle.Font)
	set(&p.Y.Label.TextStyle.Font)
	set(&p.X.Tick.Label.Font)
	set(&p.Y.Tick.Label.Font)
	set(&p.Legend.TextStyle.Font)
}
