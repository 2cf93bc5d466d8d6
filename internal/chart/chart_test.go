package chart

import (
	"errors"
	"image"
	_ "image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "pivotcli/internal/errors"
	"pivotcli/internal/table"
)

func summaryTable() *table.Table {
	return table.MustNew([]string{"line", "total_sum", "total_mean", "total_count", "total_max", "total_min"}).
		MustAppend(table.Text("Food"), table.Float(116.0), table.Float(29.0), table.Int(4), table.Float(55.25), table.Float(10.25)).
		MustAppend(table.Text("Sports"), table.Float(181.25), table.Float(60.42), table.Int(3), table.Float(70.0), table.Float(44.5)).
		MustAppend(table.Text("Travel"), table.Null(), table.Null(), table.Int(0), table.Null(), table.Null()).
		MustAppend(table.Text("All"), table.Float(297.25), table.Float(42.46), table.Int(7), table.Float(70.0), table.Float(10.25))
}

func testDashboard() Dashboard {
	return Dashboard{
		Title:       "Sales",
		LabelColumn: "line",
		Panels: []Panel{
			{Kind: Line, Columns: []string{"total_mean"}, Title: "Mean"},
			{Kind: Bar, Columns: []string{"total_sum"}, Title: "Sum"},
			{Kind: Bar, Columns: []string{"total_count"}, Title: "Count"},
			{Kind: GroupedBar, Columns: []string{"total_max", "total_min"}, Title: "Range", YLabel: "value"},
		},
	}
}

func TestRender(t *testing.T) {
	path := filepath.Join(t.TempDir(), "charts", "dashboard.png")
	err := Render(summaryTable(), testDashboard(), path, Options{Width: 800, Height: 600, MarginLabel: "All"})
	require.NoError(t, err)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	cfg, format, err := image.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.InDelta(t, 800, cfg.Width, 1)
	assert.InDelta(t, 600, cfg.Height, 1)
}

func TestRender_OddPanelCount(t *testing.T) {
	d := testDashboard()
	d.Panels = d.Panels[:3]
	d.Title = ""
	path := filepath.Join(t.TempDir(), "three.png")
	require.NoError(t, Render(summaryTable(), d, path, Options{Width: 600, Height: 600}))
	assert.FileExists(t, path)
}

func TestRender_Errors(t *testing.T) {
	text := table.MustNew([]string{"line", "total_sum"}).
		MustAppend(table.Text("Food"), table.Text("lots"))
	marginOnly := table.MustNew([]string{"line", "total_sum"}).
		MustAppend(table.Text("All"), table.Float(1))

	tests := []struct {
		name    string
		tbl     *table.Table
		d       Dashboard
		opts    Options
		wantErr error
	}{
		{
			name:    "no panels",
			tbl:     summaryTable(),
			d:       Dashboard{LabelColumn: "line"},
			wantErr: apperrors.ErrValidation,
		},
		{
			name:    "missing column",
			tbl:     summaryTable(),
			d:       Dashboard{LabelColumn: "line", Panels: []Panel{{Kind: Bar, Columns: []string{"profit"}}}},
			wantErr: apperrors.ErrSchema,
		},
		{
			name:    "text values",
			tbl:     text,
			d:       Dashboard{LabelColumn: "line", Panels: []Panel{{Kind: Bar, Columns: []string{"total_sum"}}}},
			wantErr: apperrors.ErrTypeMismatch,
		},
		{
			name:    "only margin rows",
			tbl:     marginOnly,
			d:       Dashboard{LabelColumn: "line", Panels: []Panel{{Kind: Bar, Columns: []string{"total_sum"}}}},
			opts:    Options{MarginLabel: "All"},
			wantErr: apperrors.ErrEmptyInput,
		},
		{
			name:    "unknown kind",
			tbl:     summaryTable(),
			d:       Dashboard{LabelColumn: "line", Panels: []Panel{{Kind: "pie", Columns: []string{"total_sum"}}}},
			wantErr: apperrors.ErrValidation,
		},
		{
			name:    "missing font",
			tbl:     summaryTable(),
			d:       testDashboard(),
			opts:    Options{FontPath: "/nonexistent/font.ttf"},
			wantErr: apperrors.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.opts.Width == 0 {
				tt.opts.Width, tt.opts.Height = 400, 300
			}
			err := Render(tt.tbl, tt.d, filepath.Join(t.TempDir(), "x.png"), tt.opts)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestRender_InvalidFont(t *testing.T) {
	fontPath := filepath.Join(t.TempDir(), "broken.ttf")
	require.NoError(t, os.WriteFile(fontPath, []byte("not a font"), 0644))
	err := Render(summaryTable(), testDashboard(), filepath.Join(t.TempDir(), "x.png"),
		Options{Width: 400, Height: 300, FontPath: fontPath})
	assert.True(t, errors.Is(err, apperrors.ErrParse), "got %v", err)
}
