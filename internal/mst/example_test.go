package mst_test

import (
	"fmt"

	"campusnet/internal/domain"
	"campusnet/internal/mst"
)

func ExampleCompute() {
	nodes := []domain.Node{{ID: "A"}, {ID: "B"}, {ID: "C"}, {ID: "D"}}
	edges := []domain.Edge{
		*domain.NewEdge("A", "B", 4),
		*domain.NewEdge("A", "C", 2),
		*domain.NewEdge("B", "C", 1),
		*domain.NewEdge("C", "D", 3),
		*domain.NewEdge("B", "D", 5),
	}

	res, err := mst.Compute(nodes, edges)
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	for _, e := range res.Tree {
		fmt.Printf("%s-%s(%d) ", e.Source, e.Target, e.Weight)
	}
	fmt.Println("total:", res.TotalCost)
	// Output: B-C(1) A-C(2) C-D(3) total: 6
}

func ExampleComputeWith() {
	nodes := []domain.Node{{ID: "A"}, {ID: "B"}, {ID: "C"}}
	edges := []domain.Edge{*domain.NewEdge("A", "B", 1)}

	_, err := mst.ComputeWith(nodes, edges, mst.WithRequireConnected())
	fmt.Println(err)
	// Output: mst: graph is disconnected
}
