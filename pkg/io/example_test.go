package io_test

import (
	"fmt"
	"os"
	"strings"

	"github.com/matzehuels/costgraph/pkg/estimate"
	"github.com/matzehuels/costgraph/pkg/graph"
	"github.com/matzehuels/costgraph/pkg/io"
)

func ExampleReadJSON() {
	doc := `{
	  "nodes": [{"id": "1"}, {"id": "4", "position": {"x": 0, "y": 150}}],
	  "edges": [{"source": "1", "target": "4"}, {"id": "e4-9", "source": "4", "target": "9"}]
	}`

	st, err := io.ReadJSON(strings.NewReader(doc))
	if err != nil {
		fmt.Println("Error:", err)
		return
	}

	s := graph.NewEmpty()
	st.Apply(s)

	for _, e := range s.Edges() {
		fmt.Println(e.ID, e.Kind)
	}
	for _, w := range st.Report.Warnings() {
		fmt.Println(w)
	}
	fmt.Println("Design-simple:", st.Rates.Rate(estimate.DesignSimple))
	fmt.Println("next id:", s.NextID())
	// Output:
	// e1-4 smoothstep
	// dropped edge e4-9 (4 -> 9) references unknown node "9"
	// Design-simple: 100
	// next id: 5
}

func ExampleWriteJSON() {
	s := graph.New()
	_, _ = s.AddChild("1")
	s.SetEdgeComment("e1-2", "x")

	rates := estimate.Rates{estimate.DesignSimple: 120}
	if err := io.WriteJSON(os.Stdout, graph.Snapshot{Edges: s.Edges()}, rates); err != nil {
		fmt.Println("Error:", err)
	}
	// Output:
	// {
	//   "nodes": [],
	//   "edges": [
	//     {
	//       "id": "e1-2",
	//       "source": "1",
	//       "target": "2",
	//       "type": "smoothstep",
	//       "data": {
	//         "comment": "x"
	//       },
	//       "label": "x"
	//     }
	//   ],
	//   "rates": {
	//     "Coding-complex": 350,
	//     "Coding-medium": 250,
	//     "Coding-simple": 150,
	//     "Design-complex": 300,
	//     "Design-medium": 200,
	//     "Design-simple": 120
	//   }
	// }
}
