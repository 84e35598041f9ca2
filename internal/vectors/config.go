// Package vectors provides named, sliceable state/input/parameter vectors
// backed by ordered field configurations.
package vectors

import (
	"fmt"
	"math"
)

// Field declares one named sub-block of a vector: its dimension, an optional
// default value, and optional lower/upper bounds. Nil attributes default to
// zeros (default) and +-Inf (bounds).
type Field struct {
	Name    string
	Dim     int
	Default []float64
	Lower   []float64
	Upper   []float64
}

// Config is an ordered concatenation of named fields. Field order is fixed at
// construction and never reordered; the total dimension is the sum of the
// field dimensions.
type Config struct {
	fields []Field
	starts map[string]int
	dim    int
}

// NewConfig validates the declared fields and precomputes offsets. A default
// or bound array whose length differs from the field dimension fails with
// ErrDimensionMismatch.
func NewConfig(fields ...Field) (*Config, error) {
	c := &Config{
		fields: fields,
		starts: make(map[string]int, len(fields)),
	}
	for _, f := range fields {
		if f.Dim <= 0 {
			return nil, fmt.Errorf("field %q: non-positive dimension %d: %w", f.Name, f.Dim, ErrDimensionMismatch)
		}
		if _, dup := c.starts[f.Name]; dup {
			return nil, fmt.Errorf("field %q declared twice: %w", f.Name, ErrDimensionMismatch)
		}
		for _, attr := range [][]float64{f.Default, f.Lower, f.Upper} {
			if attr != nil && len(attr) != f.Dim {
				return nil, fmt.Errorf("field %q: attribute length %d != dimension %d: %w",
					f.Name, len(attr), f.Dim, ErrDimensionMismatch)
			}
		}
		c.starts[f.Name] = c.dim
		c.dim += f.Dim
	}
	return c, nil
}

// MustConfig is NewConfig for statically known field sets.
func MustConfig(fields ...Field) *Config {
	c, err := NewConfig(fields...)
	if err != nil {
		panic(err)
	}
	return c
}

// Dim returns the total dimension.
func (c *Config) Dim() int { return c.dim }

// Fields returns the ordered field declarations.
func (c *Config) Fields() []Field { return c.fields }

// Has reports whether the configuration declares name.
func (c *Config) Has(name string) bool {
	_, ok := c.starts[name]
	return ok
}

// Start returns the offset of the first element of the named field.
func (c *Config) Start(name string) (int, error) {
	i, ok := c.starts[name]
	if !ok {
		return 0, fmt.Errorf("%q: %w", name, ErrUnknownField)
	}
	return i, nil
}

// Stop returns one past the offset of the last element of the named field.
func (c *Config) Stop(name string) (int, error) {
	start, err := c.Start(name)
	if err != nil {
		return 0, err
	}
	n, _ := c.Dims(name)
	return start + n, nil
}

// Dims returns the dimension of the named field.
func (c *Config) Dims(name string) (int, error) {
	if _, ok := c.starts[name]; !ok {
		return 0, fmt.Errorf("%q: %w", name, ErrUnknownField)
	}
	for _, f := range c.fields {
		if f.Name == name {
			return f.Dim, nil
		}
	}
	return 0, fmt.Errorf("%q: %w", name, ErrUnknownField)
}

// Sub slices the named field out of a full vector. The returned slice aliases v.
func (c *Config) Sub(name string, v []float64) ([]float64, error) {
	if len(v) != c.dim {
		return nil, fmt.Errorf("vector length %d != config dimension %d: %w", len(v), c.dim, ErrDimensionMismatch)
	}
	start, err := c.Start(name)
	if err != nil {
		return nil, err
	}
	stop, _ := c.Stop(name)
	return v[start:stop], nil
}

func (c *Config) gather(pick func(Field) []float64, fill float64) []float64 {
	out := make([]float64, 0, c.dim)
	for _, f := range c.fields {
		attr := pick(f)
		if attr == nil {
			for i := 0; i < f.Dim; i++ {
				out = append(out, fill)
			}
			continue
		}
		out = append(out, attr...)
	}
	return out
}

// Defaults assembles the concatenated default vector.
func (c *Config) Defaults() []float64 {
	return c.gather(func(f Field) []float64 { return f.Default }, 0)
}

// LowerBounds assembles the concatenated lower-bound vector (-Inf where unset).
func (c *Config) LowerBounds() []float64 {
	return c.gather(func(f Field) []float64 { return f.Lower }, math.Inf(-1))
}

// UpperBounds assembles the concatenated upper-bound vector (+Inf where unset).
func (c *Config) UpperBounds() []float64 {
	return c.gather(func(f Field) []float64 { return f.Upper }, math.Inf(1))
}
