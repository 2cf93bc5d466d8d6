package validation

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "pivotcli/internal/errors"
)

func TestFileValidator_ValidateInputFile(t *testing.T) {
	tests := []struct {
		name       string
		setupFunc  func(t *testing.T) string
		format     string
		wantFormat string
		wantErr    error
	}{
		{
			name: "csv by extension",
			setupFunc: func(t *testing.T) string {
				file := filepath.Join(t.TempDir(), "s1.csv")
				require.NoError(t, os.WriteFile(file, []byte("a\n1\n"), 0644))
				return file
			},
			wantFormat: FormatCSV,
		},
		{
			name: "xlsx by extension",
			setupFunc: func(t *testing.T) string {
				file := filepath.Join(t.TempDir(), "Sales.XLSX")
				require.NoError(t, os.WriteFile(file, []byte("test"), 0644))
				return file
			},
			wantFormat: FormatXLSX,
		},
		{
			name: "explicit format overrides extension",
			setupFunc: func(t *testing.T) string {
				file := filepath.Join(t.TempDir(), "export.dat")
				require.NoError(t, os.WriteFile(file, []byte("a\n"), 0644))
				return file
			},
			format:     "csv",
			wantFormat: FormatCSV,
		},
		{
			name: "missing file",
			setupFunc: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "absent.csv")
			},
			wantErr: apperrors.ErrNotFound,
		},
		{
			name: "directory",
			setupFunc: func(t *testing.T) string {
				return t.TempDir()
			},
			wantErr: apperrors.ErrValidation,
		},
		{
			name: "temporary excel file",
			setupFunc: func(t *testing.T) string {
				file := filepath.Join(t.TempDir(), "~$Sales.xlsx")
				require.NoError(t, os.WriteFile(file, []byte("test"), 0644))
				return file
			},
			wantErr: apperrors.ErrValidation,
		},
		{
			name: "unsupported extension",
			setupFunc: func(t *testing.T) string {
				file := filepath.Join(t.TempDir(), "report.pdf")
				require.NoError(t, os.WriteFile(file, []byte("test"), 0644))
				return file
			},
			wantErr: apperrors.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			validator := NewFileValidator(slog.Default())
			path := tt.setupFunc(t)

			format, err := validator.ValidateInputFile(path, tt.format)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantFormat, format)
		})
	}
}

func TestFileValidator_ValidateOutputDirectory(t *testing.T) {
	validator := NewFileValidator(nil)
	dir := filepath.Join(t.TempDir(), "reports", "nested")

	require.NoError(t, validator.ValidateOutputDirectory(dir))
	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	_, err = os.Stat(filepath.Join(dir, ".write_test"))
	assert.True(t, os.IsNotExist(err))
}

func TestFileValidator_ValidateOutputFile(t *testing.T) {
	validator := NewFileValidator(nil)
	base := t.TempDir()

	require.NoError(t, validator.ValidateOutputFile(filepath.Join(base, "out", "s2.csv")))
	assert.DirExists(t, filepath.Join(base, "out"))

	err := validator.ValidateOutputFile(base)
	assert.True(t, errors.Is(err, apperrors.ErrValidation))
}
