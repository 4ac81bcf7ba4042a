package model_selection

import (
	"gonum.org/v1/gonum/mat"

	mlerrors "github.com/j2slab/MLStudio/pkg/errors"
)

// BatchIterator yields contiguous mini-batches of (X, y) in row order. The
// batches are views into the underlying data, not copies, and the last batch
// of a pass may be smaller than the batch size.
type BatchIterator struct {
	x         *mat.Dense
	y         *mat.VecDense
	batchSize int
	pos       int
	n         int
}

// NewBatchIterator creates an iterator over (X, y). A batch size of zero or
// less yields the entire dataset as a single batch.
func NewBatchIterator(X *mat.Dense, y *mat.VecDense, batchSize int) (*BatchIterator, error) {
	n, _ := X.Dims()
	if n != y.Len() {
		return nil, mlerrors.NewDimensionError("NewBatchIterator", n, y.Len(), 0)
	}
	if batchSize <= 0 || batchSize > n {
		batchSize = n
	}
	return &BatchIterator{x: X, y: y, batchSize: batchSize, n: n}, nil
}

// Next returns the next batch. The third return value is false once the
// pass is exhausted.
func (it *BatchIterator) Next() (mat.Matrix, mat.Vector, bool) {
	if it.pos >= it.n {
		return nil, nil, false
	}
	end := it.pos + it.batchSize
	if end > it.n {
		end = it.n
	}
	_, cols := it.x.Dims()
	xb := it.x.Slice(it.pos, end, 0, cols)
	yb := it.y.SliceVec(it.pos, end)
	it.pos = end
	return xb, yb, true
}

// Reset restarts the iterator at the first batch.
func (it *BatchIterator) Reset() {
	it.pos = 0
}

// NumBatches reports how many batches one full pass yields.
func (it *BatchIterator) NumBatches() int {
	return (it.n + it.batchSize - 1) / it.batchSize
}

// BatchSize reports the effective batch size.
func (it *BatchIterator) BatchSize() int {
	return it.batchSize
}
