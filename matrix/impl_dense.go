// SPDX-License-Identifier: MIT

// Package matrix - Dense storage (row-major) & safe accessors.
//
// Purpose:
//   - Provide a cache-friendly row-major buffer with the explicit index formula i*cols + j.
//   - Guarantee safety at the public surface: At/Set return errors instead of panicking.
//   - Keep algorithmic determinism (fixed loop orders, no map iteration).
//   - Enforce a numeric policy (rejection of NaN/Inf) from a single source of truth.
//
// AI-Hints:
//   - Prefer fast-paths on *Dense in hot algebra (see impl_linear_algebra.go): operate on the flat data slice directly.
//   - Use Values/Column to move data across package boundaries; both return copies.
//
// Complexity quicksheet:
//   - NewDense: O(r*c) zero-init; At/Set: O(1); Clone: O(r*c); Column: O(r).

package matrix

import (
	"fmt"
	"math"
	"strings"
)

// DefaultValidateNaNInf toggles strict finite-value validation on construction and Set.
const DefaultValidateNaNInf = true

// ---------- error context tags ----------

const (
	ctxAt      = "At"          // method tag used in error wrappers
	ctxSet     = "Set"         // method tag used in error wrappers
	ctxColumn  = "Column"      // method tag used in error wrappers
	ctxFromRow = "NewFromRows" // ctor tag
	ctxFromCol = "NewFromColumns"
	ctxFromVal = "NewFromValues"
)

// ---------- Formatting literals  ----------
const (
	_fmtRowOpen  = "["
	_fmtRowClose = "]\n"
	_fmtSep      = ", "
)

// denseErrorf wraps an error with a uniform Dense context and callsite indices.
// Implementation:
//   - Stage 1: format "Dense.<method>(row,col): %w".
//
// Behavior highlights:
//   - Stable, human-friendly messages; preserves sentinel via %w.
//
// Complexity:
//   - Time O(1), Space O(1).
func denseErrorf(method string, row, col int, err error) error {
	return fmt.Errorf("Dense.%s(%d,%d): %w", method, row, col, err)
}

// Dense is a concrete row-major matrix.
//   - r,c hold dimensions (rows, cols).
//   - data is a flat buffer of length r*c in row-major order (offset = i*c + j).
//   - validateNaNInf enables NaN/Inf rejection in Set.
type Dense struct {
	r, c           int       // row and column counts (>0)
	data           []float64 // contiguous row-major storage (len == r*c)
	validateNaNInf bool      // numeric guard: reject NaN/Inf in Set when true
}

// Compile-time assertions for interface & fmt.Stringer conformance.
var (
	_ Matrix       = (*Dense)(nil)
	_ fmt.Stringer = (*Dense)(nil)
)

// NewDense creates an r×c zero matrix using row-major storage.
// Implementation:
//   - Stage 1: validate rows>0 && cols>0; else ErrInvalidDimensions.
//   - Stage 2: allocate zero-filled buffer and initialize policy.
//
// Errors:
//   - ErrInvalidDimensions (shape contract violation).
//
// Determinism:
//   - Always allocates the same layout for given (rows, cols).
//
// Complexity:
//   - Time O(r*c), Space O(r*c).
func NewDense(rows, cols int) (*Dense, error) {
	// Validate shape.
	if rows <= 0 || cols <= 0 {
		return nil, ErrInvalidDimensions
	}
	// Allocate a contiguous flat buffer; make() zero-fills it deterministically.
	buf := make([]float64, rows*cols)

	return &Dense{
		r:              rows,
		c:              cols,
		data:           buf,
		validateNaNInf: DefaultValidateNaNInf,
	}, nil
}

// NewFromRows builds a Dense from a rectangular [][]float64 (row slices).
// The input is copied; later mutation of rows does not affect the result.
//
// Errors:
//   - ErrInvalidDimensions (no rows or empty first row).
//   - ErrDimensionMismatch (ragged rows).
//   - ErrNaNInf (non-finite entry).
//
// Complexity:
//   - Time O(r*c), Space O(r*c).
func NewFromRows(rows [][]float64) (*Dense, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, matrixErrorf(ctxFromRow, ErrInvalidDimensions)
	}
	r, c := len(rows), len(rows[0])
	m, err := NewDense(r, c)
	if err != nil {
		return nil, matrixErrorf(ctxFromRow, err)
	}
	var i, j int
	var v float64
	for i = 0; i < r; i++ {
		if len(rows[i]) != c {
			return nil, matrixErrorf(ctxFromRow, ErrDimensionMismatch)
		}
		for j = 0; j < c; j++ {
			v = rows[i][j]
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, denseErrorf(ctxFromRow, i, j, ErrNaNInf)
			}
			m.data[i*c+j] = v
		}
	}

	return m, nil
}

// NewFromColumns builds a Dense whose j-th column is cols[j].
// Used by spectral code that assembles bases column by column.
//
// Errors:
//   - ErrInvalidDimensions (no columns or empty first column).
//   - ErrDimensionMismatch (columns of unequal length).
//   - ErrNaNInf (non-finite entry).
func NewFromColumns(cols [][]float64) (*Dense, error) {
	if len(cols) == 0 || len(cols[0]) == 0 {
		return nil, matrixErrorf(ctxFromCol, ErrInvalidDimensions)
	}
	r, c := len(cols[0]), len(cols)
	m, err := NewDense(r, c)
	if err != nil {
		return nil, matrixErrorf(ctxFromCol, err)
	}
	var i, j int
	for j = 0; j < c; j++ {
		if len(cols[j]) != r {
			return nil, matrixErrorf(ctxFromCol, ErrDimensionMismatch)
		}
		for i = 0; i < r; i++ {
			if math.IsNaN(cols[j][i]) || math.IsInf(cols[j][i], 0) {
				return nil, denseErrorf(ctxFromCol, i, j, ErrNaNInf)
			}
			m.data[i*c+j] = cols[j][i]
		}
	}

	return m, nil
}

// NewFromValues builds an r×c Dense from a row-major slice of length r*c.
// The slice is copied.
func NewFromValues(rows, cols int, vals []float64) (*Dense, error) {
	m, err := NewDense(rows, cols)
	if err != nil {
		return nil, matrixErrorf(ctxFromVal, err)
	}
	if len(vals) != rows*cols {
		return nil, matrixErrorf(ctxFromVal, ErrDimensionMismatch)
	}
	for idx, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, denseErrorf(ctxFromVal, idx/cols, idx%cols, ErrNaNInf)
		}
	}
	copy(m.data, vals)

	return m, nil
}

// Rows returns the row count. No side effects.
// Complexity: O(1).
func (m *Dense) Rows() int { return m.r }

// Cols returns the column count. No side effects.
// Complexity: O(1).
func (m *Dense) Cols() int { return m.c }

// Shape packs Rows() and Cols() into a single call for convenience.
// Complexity: O(1).
func (m *Dense) Shape() (rows, cols int) { return m.r, m.c }

// indexOf computes the row-major offset or returns ErrOutOfRange.
// Public methods (At/Set) wrap the sentinel with coordinates and method name.
// Complexity: O(1).
func (m *Dense) indexOf(method string, row, col int) (int, error) {
	if row < 0 || row >= m.r || col < 0 || col >= m.c {
		return 0, denseErrorf(method, row, col, ErrOutOfRange)
	}

	return row*m.c + col, nil
}

// At returns the element at (row, col).
// Errors: ErrOutOfRange (wrapped with coordinates).
// Complexity: O(1).
func (m *Dense) At(row, col int) (float64, error) {
	idx, err := m.indexOf(ctxAt, row, col)
	if err != nil {
		return 0, err
	}

	return m.data[idx], nil
}

// Set assigns v at (row, col).
// Errors:
//   - ErrOutOfRange for invalid coordinates.
//   - ErrNaNInf when the numeric guard is on and v is not finite.
//
// Complexity: O(1).
func (m *Dense) Set(row, col int, v float64) error {
	idx, err := m.indexOf(ctxSet, row, col)
	if err != nil {
		return err
	}
	if m.validateNaNInf && (math.IsNaN(v) || math.IsInf(v, 0)) {
		return denseErrorf(ctxSet, row, col, ErrNaNInf)
	}
	m.data[idx] = v

	return nil
}

// Clone returns a deep copy (same policy, independent storage).
// Complexity: Time O(r*c), Space O(r*c).
func (m *Dense) Clone() Matrix {
	return m.clone()
}

// clone is the typed variant of Clone used by kernels.
func (m *Dense) clone() *Dense {
	cp := make([]float64, len(m.data)) // allocate same length
	copy(cp, m.data)                   // deep copy

	return &Dense{
		r:              m.r,
		c:              m.c,
		data:           cp,
		validateNaNInf: m.validateNaNInf, // preserve guard policy
	}
}

// Column returns a copy of column j.
// Errors: ErrOutOfRange for invalid j.
// Complexity: O(r).
func (m *Dense) Column(j int) ([]float64, error) {
	if j < 0 || j >= m.c {
		return nil, denseErrorf(ctxColumn, 0, j, ErrOutOfRange)
	}
	out := make([]float64, m.r)
	for i := 0; i < m.r; i++ {
		out[i] = m.data[i*m.c+j]
	}

	return out, nil
}

// Values returns a row-major copy of the backing buffer.
// Complexity: O(r*c).
func (m *Dense) Values() []float64 {
	out := make([]float64, len(m.data))
	copy(out, m.data)

	return out
}

// String renders matrix rows as lines with comma-separated values.
// Not for hot paths; intended for logs and debugging.
// Complexity: Time O(r*c), Space O(r*c).
func (m *Dense) String() string {
	var b strings.Builder
	var i, j, base int
	for i = 0; i < m.r; i++ { // iterate rows deterministically
		b.WriteString(_fmtRowOpen) // open row
		base = i * m.c
		for j = 0; j < m.c; j++ { // iterate cols
			b.WriteString(fmt.Sprintf("%g", m.data[base+j]))
			if j+1 < m.c {
				b.WriteString(_fmtSep) // separate values with comma + space
			}
		}
		b.WriteString(_fmtRowClose) // close row
	}

	return b.String()
}

// toDense returns m itself when it already is *Dense, otherwise a Dense copy
// read through the interface. Kernels call it once so their inner loops can
// stay on flat slices.
// Complexity: O(1) for *Dense, O(r*c) otherwise.
func toDense(m Matrix) (*Dense, error) {
	if err := ValidateNotNil(m); err != nil {
		return nil, err
	}
	if d, ok := m.(*Dense); ok {
		return d, nil
	}
	out, err := NewDense(m.Rows(), m.Cols())
	if err != nil {
		return nil, err
	}
	var i, j int
	var v float64
	for i = 0; i < out.r; i++ {
		for j = 0; j < out.c; j++ {
			if v, err = m.At(i, j); err != nil {
				return nil, fmt.Errorf("At(%d,%d): %w", i, j, err)
			}
			out.data[i*out.c+j] = v
		}
	}

	return out, nil
}
