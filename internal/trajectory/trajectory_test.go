package trajectory

import (
	"errors"
	"math"
	"testing"

	"github.com/r-mohan/quadnmpc/internal/vectors"
)

func TestTimeGrid(t *testing.T) {
	grid := TimeGrid(0.1, 4)
	want := []float64{0, 0.1, 0.2, 0.3}
	if len(grid) != len(want) {
		t.Fatalf("length %d, want %d", len(grid), len(want))
	}
	for i := range want {
		if math.Abs(grid[i]-want[i]) > 1e-12 {
			t.Errorf("grid[%d] = %v, want %v", i, grid[i], want[i])
		}
	}
}

func TestColumns(t *testing.T) {
	series := vectors.VectorList{{1, 2}, {3, 4}, {5, 6}}
	cols := Columns(series)
	if len(cols) != 2 {
		t.Fatalf("got %d columns, want 2", len(cols))
	}
	wantFirst := []float64{1, 3, 5}
	for i := range wantFirst {
		if cols[0][i] != wantFirst[i] {
			t.Errorf("col0[%d] = %v, want %v", i, cols[0][i], wantFirst[i])
		}
	}
}

func TestResampleLinearSeries(t *testing.T) {
	// A straight line must survive resampling exactly, through both the
	// Akima and the piecewise-linear paths.
	for _, n := range []int{3, 8} {
		grid := TimeGrid(0.5, n)
		series := make(vectors.VectorList, n)
		for k := range series {
			series[k] = []float64{2 * grid[k], -grid[k] + 1}
		}

		tOut, out, err := Resample(grid, series, 21)
		if err != nil {
			t.Fatal(err)
		}
		if len(tOut) != 21 || len(out) != 21 {
			t.Fatalf("n=%d: got %d samples, want 21", n, len(tOut))
		}
		if tOut[0] != grid[0] || math.Abs(tOut[20]-grid[n-1]) > 1e-12 {
			t.Errorf("n=%d: resampled span [%v, %v], want [%v, %v]",
				n, tOut[0], tOut[20], grid[0], grid[n-1])
		}
		for k, tk := range tOut {
			if math.Abs(out[k][0]-2*tk) > 1e-9 || math.Abs(out[k][1]-(-tk+1)) > 1e-9 {
				t.Fatalf("n=%d: sample %d = %v at t=%v", n, k, out[k], tk)
			}
		}
	}
}

func TestResampleValidation(t *testing.T) {
	grid := TimeGrid(0.1, 3)
	series := vectors.Zeros(2, 4)

	if _, _, err := Resample(grid, series, 10); !errors.Is(err, vectors.ErrDimensionMismatch) {
		t.Errorf("mismatched lengths: got %v", err)
	}
	if _, _, err := Resample(grid[:1], series[:1], 10); !errors.Is(err, vectors.ErrDimensionMismatch) {
		t.Errorf("too short: got %v", err)
	}
	if _, _, err := Resample(grid, series[:3], 1); !errors.Is(err, vectors.ErrDimensionMismatch) {
		t.Errorf("bad output count: got %v", err)
	}
}
