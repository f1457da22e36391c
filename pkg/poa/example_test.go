package poa_test

import (
	"fmt"

	"github.com/matzehuels/poagraph/pkg/poa"
)

func ExampleEngine_Align() {
	params := poa.DefaultParams()
	params.Progressive = false

	e, err := poa.New(params, nil)
	if err != nil {
		panic(err)
	}
	res, err := e.Align([]string{"ACGTACGT", "ACCTACGT", "ACGACGT", "ACGTACGT"})
	if err != nil {
		panic(err)
	}
	for _, row := range res.MSA.Rows {
		fmt.Println(row)
	}
	cons, _ := res.Consensus.String()
	fmt.Println("consensus:", cons)
	// Output:
	// ACGTACGT
	// ACCTACGT
	// ACG-ACGT
	// ACGTACGT
	// consensus: ACGTACGT
}

func ExampleEngine_AddNodesEdges() {
	e, _ := poa.New(poa.DefaultParams(), nil)
	err := e.AddNodesEdges([]string{"ACG", "TT", "CC"}, []poa.ChainEdge{{From: 0, To: 1}, {From: 0, To: 2}})
	if err != nil {
		panic(err)
	}
	fmt.Println("nodes:", e.Graph().NodeCount())
	fmt.Println("edges:", e.Graph().EdgeCount())
	fmt.Println("valid:", e.Graph().Validate() == nil)
	// Output:
	// nodes: 7
	// edges: 9
	// valid: true
}
