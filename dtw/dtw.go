package dtw

import (
	"errors"
	"math"
)

// ErrEmptySequence indicates one or both input sequences are empty.
var ErrEmptySequence = errors.New("dtw: input sequences must be non-empty")

// Options configures an alignment.
//
//   - Window: maximum deviation |i-j| allowed (Sakoe-Chiba band).
//     Zero or negative means unconstrained.
//   - SlopePenalty: extra cost for insertion/deletion steps, biasing the
//     path toward the diagonal.
type Options struct {
	Window       int
	SlopePenalty float64
}

// Align computes the dynamic time warping alignment between two ordered
// scalar sequences and returns the total distance together with the optimal
// warping path as (i, j) index pairs into a and b.
//
// The full (n+1)x(m+1) cost matrix is kept so the path can be recovered by
// backtracking; time and memory are O(n*m).
func Align(a, b []float64, opts *Options) (distance float64, path [][2]int, err error) {
	n, m := len(a), len(b)
	if n == 0 || m == 0 {
		return 0, nil, ErrEmptySequence
	}

	window := math.MaxInt32
	penalty := 0.0
	if opts != nil {
		if opts.Window > 0 {
			window = opts.Window
		}
		penalty = opts.SlopePenalty
	}

	inf := math.Inf(1)
	dp := make([][]float64, n+1)
	for i := range dp {
		dp[i] = make([]float64, m+1)
	}
	for i := 1; i <= n; i++ {
		dp[i][0] = inf
	}
	for j := 1; j <= m; j++ {
		dp[0][j] = inf
	}

	for i := 1; i <= n; i++ {
		for j := 1; j <= m; j++ {
			if window < math.MaxInt32 && intAbs(i-j) > window {
				dp[i][j] = inf
				continue
			}
			cost := math.Abs(a[i-1] - b[j-1])
			ins := dp[i-1][j] + penalty
			del := dp[i][j-1] + penalty
			match := dp[i-1][j-1]
			dp[i][j] = cost + min3(ins, del, match)
		}
	}
	distance = dp[n][m]

	// Backtrack from (n,m), preferring the predecessor with minimal cost.
	i, j := n, m
	for i > 0 || j > 0 {
		path = append(path, [2]int{i - 1, j - 1})
		switch {
		case i == 0:
			j--
		case j == 0:
			i--
		default:
			up := dp[i-1][j]
			left := dp[i][j-1]
			diag := dp[i-1][j-1]
			if diag <= up && diag <= left {
				i--
				j--
			} else if up <= left {
				i--
			} else {
				j--
			}
		}
	}
	for l, r := 0, len(path)-1; l < r; l, r = l+1, r-1 {
		path[l], path[r] = path[r], path[l]
	}

	return distance, path, nil
}

func intAbs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func min3(a, b, c float64) float64 {
	if a < b {
		if a < c {
			return a
		}
		return c
	}
	if b < c {
		return b
	}
	return c
}
