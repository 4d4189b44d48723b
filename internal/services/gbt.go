package services

import (
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/yathboss/revenue-vision/internal/models"
	"github.com/yathboss/revenue-vision/internal/utils"
)

// GBTConfig parameterizes the gradient-boosted tree ensemble. Identical
// config, seed and input rows produce an identical model.
type GBTConfig struct {
	Trees           int
	LearningRate    float64
	MaxDepth        int
	MinChildSamples int
	Subsample       float64
	Colsample       float64
	Seed            int64
}

// GBTRegressor is a gradient-boosted regression tree ensemble with a
// squared-error objective: each tree is fitted to the residuals of the
// ensemble so far and added with learning-rate shrinkage.
type GBTRegressor struct {
	cfg    GBTConfig
	base   float64
	trees  []*treeNode
	fitted bool
}

type treeNode struct {
	leaf      bool
	value     float64
	feature   int
	threshold float64
	left      *treeNode
	right     *treeNode
}

func NewGBTRegressor(cfg GBTConfig) *GBTRegressor {
	if cfg.MinChildSamples < 1 {
		cfg.MinChildSamples = 1
	}
	return &GBTRegressor{cfg: cfg}
}

// Fit trains the ensemble. It fails with a TrainingError on degenerate
// input; a fitted model is immutable afterwards.
func (g *GBTRegressor) Fit(rows [][]float64, targets []float64) error {
	if len(rows) != len(targets) {
		return utils.NewTrainingErrorf("row/target length mismatch: %d vs %d", len(rows), len(targets))
	}
	if len(rows) < 2 {
		return utils.NewTrainingErrorf("not enough training rows: %d", len(rows))
	}
	width := len(rows[0])
	if width == 0 {
		return utils.NewTrainingErrorf("empty feature rows")
	}
	for _, row := range rows {
		if len(row) != width {
			return utils.NewTrainingErrorf("ragged feature matrix")
		}
	}

	g.base = stat.Mean(targets, nil)
	g.trees = g.trees[:0]

	preds := make([]float64, len(targets))
	for i := range preds {
		preds[i] = g.base
	}

	rng := rand.New(rand.NewSource(g.cfg.Seed))
	residuals := make([]float64, len(targets))

	for t := 0; t < g.cfg.Trees; t++ {
		for i := range targets {
			residuals[i] = targets[i] - preds[i]
		}

		rowIdx := g.sampleIndices(rng, len(rows), g.cfg.Subsample)
		featIdx := g.sampleIndices(rng, width, g.cfg.Colsample)

		tree := g.buildNode(rows, residuals, rowIdx, featIdx, 0)
		g.trees = append(g.trees, tree)

		for i, row := range rows {
			preds[i] += g.cfg.LearningRate * predictTree(tree, row)
		}
	}

	g.fitted = true
	return nil
}

// Predict returns the point estimate for one feature row. No side effects.
func (g *GBTRegressor) Predict(row []float64) float64 {
	out := g.base
	for _, tree := range g.trees {
		out += g.cfg.LearningRate * predictTree(tree, row)
	}
	return out
}

// Fitted reports whether Fit has completed successfully.
func (g *GBTRegressor) Fitted() bool {
	return g.fitted
}

func predictTree(node *treeNode, row []float64) float64 {
	for !node.leaf {
		if row[node.feature] <= node.threshold {
			node = node.left
		} else {
			node = node.right
		}
	}
	return node.value
}

// sampleIndices draws a deterministic fraction of indices without
// replacement, sorted so downstream iteration order is stable.
func (g *GBTRegressor) sampleIndices(rng *rand.Rand, n int, fraction float64) []int {
	k := n
	if fraction > 0 && fraction < 1 {
		k = int(fraction * float64(n))
		if k < 1 {
			k = 1
		}
	}
	perm := rng.Perm(n)
	idx := append([]int(nil), perm[:k]...)
	sort.Ints(idx)
	return idx
}

func (g *GBTRegressor) buildNode(rows [][]float64, residuals []float64, idx, featIdx []int, depth int) *treeNode {
	if depth >= g.cfg.MaxDepth || len(idx) < 2*g.cfg.MinChildSamples {
		return &treeNode{leaf: true, value: meanAt(residuals, idx)}
	}

	feature, threshold, ok := g.bestSplit(rows, residuals, idx, featIdx)
	if !ok {
		return &treeNode{leaf: true, value: meanAt(residuals, idx)}
	}

	var leftIdx, rightIdx []int
	for _, i := range idx {
		if rows[i][feature] <= threshold {
			leftIdx = append(leftIdx, i)
		} else {
			rightIdx = append(rightIdx, i)
		}
	}

	return &treeNode{
		feature:   feature,
		threshold: threshold,
		left:      g.buildNode(rows, residuals, leftIdx, featIdx, depth+1),
		right:     g.buildNode(rows, residuals, rightIdx, featIdx, depth+1),
	}
}

// bestSplit maximizes the squared-error reduction over the candidate
// features. Ties resolve to the first candidate, keeping trees
// deterministic.
func (g *GBTRegressor) bestSplit(rows [][]float64, residuals []float64, idx, featIdx []int) (int, float64, bool) {
	type pair struct {
		value  float64
		target float64
		order  int
	}

	bestGain := 0.0
	bestFeature := -1
	bestThreshold := 0.0

	total := 0.0
	for _, i := range idx {
		total += residuals[i]
	}
	n := float64(len(idx))
	parentScore := total * total / n

	pairs := make([]pair, len(idx))
	for _, f := range featIdx {
		for k, i := range idx {
			pairs[k] = pair{value: rows[i][f], target: residuals[i], order: i}
		}
		sort.Slice(pairs, func(a, b int) bool {
			if pairs[a].value != pairs[b].value {
				return pairs[a].value < pairs[b].value
			}
			return pairs[a].order < pairs[b].order
		})

		leftSum := 0.0
		for k := 0; k < len(pairs)-1; k++ {
			leftSum += pairs[k].target
			if pairs[k+1].value == pairs[k].value {
				continue
			}
			leftN := float64(k + 1)
			rightN := n - leftN
			if int(leftN) < g.cfg.MinChildSamples || int(rightN) < g.cfg.MinChildSamples {
				continue
			}
			rightSum := total - leftSum
			gain := leftSum*leftSum/leftN + rightSum*rightSum/rightN - parentScore
			if gain > bestGain {
				bestGain = gain
				bestFeature = f
				bestThreshold = (pairs[k].value + pairs[k+1].value) / 2
			}
		}
	}

	if bestFeature < 0 {
		return 0, 0, false
	}
	return bestFeature, bestThreshold, true
}

func meanAt(values []float64, idx []int) float64 {
	if len(idx) == 0 {
		return 0
	}
	sum := 0.0
	for _, i := range idx {
		sum += values[i]
	}
	return sum / float64(len(idx))
}

// GBTConfigFrom maps the model section of the service configuration onto
// the regressor config.
func GBTConfigFrom(trees int, learningRate float64, maxDepth, minChildSamples int, subsample, colsample float64, seed int64) GBTConfig {
	return GBTConfig{
		Trees:           trees,
		LearningRate:    learningRate,
		MaxDepth:        maxDepth,
		MinChildSamples: minChildSamples,
		Subsample:       subsample,
		Colsample:       colsample,
		Seed:            seed,
	}
}

// ForecastModel pairs a fitted regressor with the feature layout it was
// trained on.
type ForecastModel struct {
	Regressor *GBTRegressor
	Columns   []string
	Freq      models.Frequency
}

// Predict returns one point estimate from one feature row.
func (m *ForecastModel) Predict(row []float64) float64 {
	return m.Regressor.Predict(row)
}
