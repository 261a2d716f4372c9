// internal/common/classifier/tree.go
package classifier

import (
	"context"
	"fmt"

	"churn-predictor/internal/models"
)

// TreeNode is one node of a flattened CART tree. Leaves have Left and
// Right set to -1 and carry the class in Value. Internal nodes send
// x[Feature] <= Threshold to Left.
type TreeNode struct {
	Feature   int     `json:"feature"`
	Threshold float64 `json:"threshold"`
	Left      int     `json:"left"`
	Right     int     `json:"right"`
	Value     int     `json:"value"`
}

func (n TreeNode) isLeaf() bool { return n.Left < 0 && n.Right < 0 }

// TreeEnsemble is a majority vote over decision trees. Ties go to no churn.
type TreeEnsemble struct {
	trees     [][]TreeNode
	nFeatures int
}

// NewTreeEnsemble checks every tree is well formed: child indices in range,
// no cycles, features below nFeatures and leaf values in {0,1}.
func NewTreeEnsemble(trees [][]TreeNode, nFeatures int) (*TreeEnsemble, error) {
	if len(trees) == 0 {
		return nil, fmt.Errorf("tree ensemble: no trees")
	}
	out := make([][]TreeNode, len(trees))
	for t, nodes := range trees {
		if err := checkTree(nodes, nFeatures); err != nil {
			return nil, fmt.Errorf("tree ensemble: tree %d: %w", t, err)
		}
		out[t] = append([]TreeNode(nil), nodes...)
	}
	return &TreeEnsemble{trees: out, nFeatures: nFeatures}, nil
}

func checkTree(nodes []TreeNode, nFeatures int) error {
	if len(nodes) == 0 {
		return fmt.Errorf("empty tree")
	}
	// Children must point forward; that rules out cycles and keeps
	// traversal bounded by len(nodes).
	for i, n := range nodes {
		if n.isLeaf() {
			if n.Value != 0 && n.Value != 1 {
				return fmt.Errorf("node %d: leaf value %d", i, n.Value)
			}
			continue
		}
		if n.Feature < 0 || n.Feature >= nFeatures {
			return fmt.Errorf("node %d: feature %d out of range", i, n.Feature)
		}
		if n.Left <= i || n.Left >= len(nodes) || n.Right <= i || n.Right >= len(nodes) {
			return fmt.Errorf("node %d: children %d/%d out of range", i, n.Left, n.Right)
		}
	}
	return nil
}

func (e *TreeEnsemble) Predict(_ context.Context, vector models.FeatureVector) (models.Label, error) {
	if err := checkWidth(vector, e.nFeatures); err != nil {
		return models.LabelNoChurn, err
	}
	votes := 0
	for _, nodes := range e.trees {
		votes += walk(nodes, vector)
	}
	if 2*votes > len(e.trees) {
		return models.LabelChurn, nil
	}
	return models.LabelNoChurn, nil
}

func walk(nodes []TreeNode, vector models.FeatureVector) int {
	i := 0
	for {
		n := nodes[i]
		if n.isLeaf() {
			return n.Value
		}
		if vector.At(n.Feature) <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
}
