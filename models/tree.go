package models

import "sort"

// regressionTree is a depth-limited CART regression tree with exact
// split search, used as the weak learner for gradient boosting.
type regressionTree struct {
	maxDepth int
	minLeaf  int

	root *treeNode
}

type treeNode struct {
	leaf      bool
	value     float64
	feature   int
	threshold float64
	left      *treeNode
	right     *treeNode
}

// fit grows the tree on the given row subset using only the given
// feature columns.
func (t *regressionTree) fit(x [][]float64, y []float64, rows, cols []int) {
	t.root = t.grow(x, y, rows, cols, 0)
}

func (t *regressionTree) grow(x [][]float64, y []float64, rows, cols []int, depth int) *treeNode {
	if depth >= t.maxDepth || len(rows) < 2*t.minLeaf {
		return &treeNode{leaf: true, value: meanAt(y, rows)}
	}

	bestGain := 0.0
	bestFeat := -1
	bestThreshold := 0.0

	var sum float64
	for _, r := range rows {
		sum += y[r]
	}
	n := float64(len(rows))
	parentScore := sum * sum / n

	order := make([]int, len(rows))
	for _, f := range cols {
		copy(order, rows)
		sort.Slice(order, func(i, j int) bool { return x[order[i]][f] < x[order[j]][f] })

		var leftSum float64
		for k := 0; k < len(order)-1; k++ {
			r := order[k]
			leftSum += y[r]
			nl := float64(k + 1)
			nr := n - nl
			if k+1 < t.minLeaf || len(order)-k-1 < t.minLeaf {
				continue
			}
			// cannot split between identical feature values
			if x[order[k]][f] == x[order[k+1]][f] {
				continue
			}
			rightSum := sum - leftSum
			gain := leftSum*leftSum/nl + rightSum*rightSum/nr - parentScore
			if gain > bestGain {
				bestGain = gain
				bestFeat = f
				bestThreshold = (x[order[k]][f] + x[order[k+1]][f]) / 2.0
			}
		}
	}

	if bestFeat < 0 {
		return &treeNode{leaf: true, value: meanAt(y, rows)}
	}

	var left, right []int
	for _, r := range rows {
		if x[r][bestFeat] <= bestThreshold {
			left = append(left, r)
		} else {
			right = append(right, r)
		}
	}

	return &treeNode{
		feature:   bestFeat,
		threshold: bestThreshold,
		left:      t.grow(x, y, left, cols, depth+1),
		right:     t.grow(x, y, right, cols, depth+1),
	}
}

func (t *regressionTree) predict(row []float64) float64 {
	node := t.root
	for !node.leaf {
		if row[node.feature] <= node.threshold {
			node = node.left
		} else {
			node = node.right
		}
	}
	return node.value
}

func meanAt(y []float64, rows []int) float64 {
	if len(rows) == 0 {
		return 0
	}
	var sum float64
	for _, r := range rows {
		sum += y[r]
	}
	return sum / float64(len(rows))
}
