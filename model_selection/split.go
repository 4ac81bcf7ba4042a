// Package model_selection provides dataset splitting, shuffling and batching
// utilities used to prepare training and validation data.
package model_selection

import (
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/mat"

	mlerrors "github.com/j2slab/MLStudio/pkg/errors"
)

// SplitConfig holds the settings for TrainTestSplit.
type SplitConfig struct {
	TestSize float64
	Shuffle  bool
	Stratify bool
	Seed     int64
}

// SplitOption configures TrainTestSplit.
type SplitOption func(*SplitConfig)

// WithTestSize sets the proportion of rows assigned to the test partition.
func WithTestSize(size float64) SplitOption {
	return func(c *SplitConfig) {
		c.TestSize = size
	}
}

// WithShuffle enables shuffling of rows (or per-class indices when
// stratified) before the split.
func WithShuffle(shuffle bool) SplitOption {
	return func(c *SplitConfig) {
		c.Shuffle = shuffle
	}
}

// WithStratify preserves per-class proportions between the train and test
// partitions.
func WithStratify(stratify bool) SplitOption {
	return func(c *SplitConfig) {
		c.Stratify = stratify
	}
}

// WithSeed fixes the random source used for shuffling.
func WithSeed(seed int64) SplitOption {
	return func(c *SplitConfig) {
		c.Seed = seed
	}
}

// TrainTestSplit partitions (X, y) into train and test subsets.
//
// Without stratification the rows are optionally shuffled and then cut at
// index n - floor(n*testSize). With stratification each class contributes
// ceil(n_k*(1-testSize)) rows to the train partition and the remainder to
// the test partition, with classes concatenated in ascending label order.
func TrainTestSplit(X *mat.Dense, y *mat.VecDense, opts ...SplitOption) (XTrain, XTest *mat.Dense, yTrain, yTest *mat.VecDense, err error) {
	cfg := &SplitConfig{TestSize: 0.3, Seed: 42}
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.TestSize <= 0 || cfg.TestSize >= 1 {
		return nil, nil, nil, nil, mlerrors.NewHyperparameterError("test_size", "must be in the open interval (0, 1)", cfg.TestSize)
	}

	n, _ := X.Dims()
	if n != y.Len() {
		return nil, nil, nil, nil, mlerrors.NewDimensionError("TrainTestSplit", n, y.Len(), 0)
	}

	rng := rand.New(rand.NewSource(cfg.Seed))

	var trainIdx, testIdx []int
	if !cfg.Stratify {
		idx := make([]int, n)
		for i := range idx {
			idx[i] = i
		}
		if cfg.Shuffle {
			rng.Shuffle(n, func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })
		}
		cut := n - int(math.Floor(float64(n)*cfg.TestSize))
		trainIdx, testIdx = idx[:cut], idx[cut:]
	} else {
		byClass := make(map[float64][]int)
		for i := 0; i < n; i++ {
			label := y.AtVec(i)
			byClass[label] = append(byClass[label], i)
		}
		labels := make([]float64, 0, len(byClass))
		for label := range byClass {
			labels = append(labels, label)
		}
		sort.Float64s(labels)

		for _, label := range labels {
			idxK := byClass[label]
			if cfg.Shuffle {
				rng.Shuffle(len(idxK), func(i, j int) { idxK[i], idxK[j] = idxK[j], idxK[i] })
			}
			nTrain := int(math.Ceil(float64(len(idxK)) * (1 - cfg.TestSize)))
			trainIdx = append(trainIdx, idxK[:nTrain]...)
			testIdx = append(testIdx, idxK[nTrain:]...)
		}
	}

	if len(trainIdx) == 0 || len(testIdx) == 0 {
		return nil, nil, nil, nil, mlerrors.NewValueError("TrainTestSplit", "split produced an empty partition; use more samples or adjust test_size")
	}

	XTrain, yTrain = takeRows(X, y, trainIdx)
	XTest, yTest = takeRows(X, y, testIdx)
	return XTrain, XTest, yTrain, yTest, nil
}

// Shuffle returns copies of X and y with rows permuted by the seeded source.
func Shuffle(X *mat.Dense, y *mat.VecDense, seed int64) (*mat.Dense, *mat.VecDense, error) {
	n, _ := X.Dims()
	if n != y.Len() {
		return nil, nil, mlerrors.NewDimensionError("Shuffle", n, y.Len(), 0)
	}

	rng := rand.New(rand.NewSource(seed))
	idx := rng.Perm(n)
	Xs, ys := takeRows(X, y, idx)
	return Xs, ys, nil
}

// Sample draws a random sample of the given size from (X, y). When replace
// is false the sample is a subset without repeated rows, so size must not
// exceed the number of rows.
func Sample(X *mat.Dense, y *mat.VecDense, size int, replace bool, seed int64) (*mat.Dense, *mat.VecDense, error) {
	n, _ := X.Dims()
	if n != y.Len() {
		return nil, nil, mlerrors.NewDimensionError("Sample", n, y.Len(), 0)
	}
	if size <= 0 {
		return nil, nil, mlerrors.NewHyperparameterError("size", "must be positive", size)
	}

	rng := rand.New(rand.NewSource(seed))
	idx := make([]int, size)
	if replace {
		for i := range idx {
			idx[i] = rng.Intn(n)
		}
	} else {
		if size > n {
			return nil, nil, mlerrors.NewValueError("Sample", "sample size exceeds population when sampling without replacement")
		}
		idx = rng.Perm(n)[:size]
	}

	Xs, ys := takeRows(X, y, idx)
	return Xs, ys, nil
}

func takeRows(X *mat.Dense, y *mat.VecDense, idx []int) (*mat.Dense, *mat.VecDense) {
	_, cols := X.Dims()
	Xout := mat.NewDense(len(idx), cols, nil)
	yout := mat.NewVecDense(len(idx), nil)
	for i, src := range idx {
		Xout.SetRow(i, mat.Row(nil, src, X))
		yout.SetVec(i, y.AtVec(src))
	}
	return Xout, yout
}
