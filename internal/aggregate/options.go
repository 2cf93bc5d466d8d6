package aggregate

import (
	"log/slog"

	"pivotcli/internal/table"
)

// KeyOrder controls the order of groups in a result.
type KeyOrder int

const (
	// Sorted orders groups by key tuple: numbers numerically, text by code
	// point, nulls last.
	Sorted KeyOrder = iota
	// FirstSeen keeps the order in which key tuples first occur in the input.
	FirstSeen
)

// ParseKeyOrder maps "sorted" / "first_seen" to a KeyOrder.
func ParseKeyOrder(s string) (KeyOrder, bool) {
	switch s {
	case "", "sorted":
		return Sorted, true
	case "first_seen", "first-seen", "firstseen":
		return FirstSeen, true
	}
	return Sorted, false
}

const (
	DefaultMarginLabel = "All"
	DefaultPrecision   = 2
	DefaultSeparator   = "_"
)

// Option configures Aggregate and Pivot.
type Option func(*config)

type config struct {
	margins     bool
	marginLabel string
	fill        table.Value
	precision   int
	keyOrder    KeyOrder
	allowEmpty  bool
	separator   string
	logger      *slog.Logger
}

// WithMargins adds the "All" row (and, for pivots, the "All" column).
func WithMargins(enabled bool) Option {
	return func(c *config) { c.margins = enabled }
}

// WithMarginLabel overrides the label of margin rows and columns.
func WithMarginLabel(label string) Option {
	return func(c *config) {
		if label != "" {
			c.marginLabel = label
		}
	}
}

// WithFillValue sets the value written to cells that have nothing to reduce:
// pivot cells with no input rows, and mean/min/max over no values.
func WithFillValue(v table.Value) Option {
	return func(c *config) { c.fill = v }
}

// WithPrecision sets the decimal places sum and mean are rounded to.
// A negative precision disables rounding.
func WithPrecision(places int) Option {
	return func(c *config) { c.precision = places }
}

// WithKeyOrder selects sorted or first-seen group order.
func WithKeyOrder(order KeyOrder) Option {
	return func(c *config) { c.keyOrder = order }
}

// WithAllowEmpty makes an empty input produce an empty result instead of an
// EmptyInputError.
func WithAllowEmpty(allow bool) Option {
	return func(c *config) { c.allowEmpty = allow }
}

// WithSeparator sets the string joining value column, reducer and pivot key
// in output column names.
func WithSeparator(sep string) Option {
	return func(c *config) { c.separator = sep }
}

// WithLogger sets the logger used for debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func applyOptions(opts []Option) *config {
	cfg := &config{
		marginLabel: DefaultMarginLabel,
		fill:        table.Null(),
		precision:   DefaultPrecision,
		keyOrder:    Sorted,
		separator:   DefaultSeparator,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}
