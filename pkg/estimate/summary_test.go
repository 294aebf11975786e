package estimate

import (
	"testing"

	"github.com/matzehuels/costgraph/pkg/graph"
)

func node(id string, design, coding graph.Classification, uploading graph.Uploading) graph.Node {
	data := graph.DefaultNodeData(id)
	data.Design = design
	data.Coding = coding
	data.Uploading = uploading
	return graph.Node{ID: id, Kind: graph.NodeKind, Data: data}
}

func cls(t graph.WorkType, d graph.Difficulty) graph.Classification {
	return graph.Classification{Type: t, Difficulty: d}
}

func TestSummarizeSingleNode(t *testing.T) {
	nodes := []graph.Node{
		node("1", cls(graph.WorkNew, graph.Complex), cls(graph.WorkAdapt, graph.Simple), graph.UploadingNo),
	}

	tests := []struct {
		name   string
		filter graph.WorkType
		want   map[WorkKey]float64
		total  float64
	}{
		{"New", graph.WorkNew, map[WorkKey]float64{DesignComplex: 300}, 300},
		{"Adapt", graph.WorkAdapt, map[WorkKey]float64{CodingSimple: 150}, 150},
		{"Unfiltered", "", map[WorkKey]float64{DesignComplex: 300, CodingSimple: 150}, 450},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Summarize(nodes, DefaultRates(), tt.filter)
			if len(got.Rows) != len(Keys) {
				t.Fatalf("rows = %d, want %d", len(got.Rows), len(Keys))
			}
			for i, r := range got.Rows {
				if r.Key != Keys[i] {
					t.Errorf("row %d key = %s, want %s", i, r.Key, Keys[i])
				}
				if r.Sum != tt.want[r.Key] {
					t.Errorf("%s sum = %v, want %v", r.Key, r.Sum, tt.want[r.Key])
				}
				if r.Sum != r.Rate*float64(r.Quantity) {
					t.Errorf("%s sum %v != rate %v * quantity %d", r.Key, r.Sum, r.Rate, r.Quantity)
				}
			}
			if got.Total != tt.total {
				t.Errorf("total = %v, want %v", got.Total, tt.total)
			}
		})
	}
}

func TestSummarizePartition(t *testing.T) {
	nodes := []graph.Node{
		node("1", cls(graph.WorkNew, graph.Simple), cls(graph.WorkNew, graph.Simple), graph.UploadingNo),
		node("2", cls(graph.WorkAdapt, graph.Medium), cls(graph.WorkNew, graph.Complex), graph.UploadingYes),
		node("3", cls(graph.WorkAdapt, graph.Complex), cls(graph.WorkAdapt, graph.Medium), graph.UploadingNo),
		node("4", cls(graph.WorkNew, graph.Medium), cls(graph.WorkAdapt, graph.Simple), graph.UploadingYes),
	}
	rates := Rates{DesignSimple: 12.5, CodingComplex: 1000}

	all := Summarize(nodes, rates, "")
	n := Summarize(nodes, rates, graph.WorkNew)
	a := Summarize(nodes, rates, graph.WorkAdapt)

	for _, k := range Keys {
		if got, want := n.Row(k).Quantity+a.Row(k).Quantity, all.Row(k).Quantity; got != want {
			t.Errorf("%s: new %d + adapt %d != all %d", k, n.Row(k).Quantity, a.Row(k).Quantity, want)
		}
	}
	if n.Total+a.Total != all.Total {
		t.Errorf("totals: %v + %v != %v", n.Total, a.Total, all.Total)
	}
	if all.Row(DesignSimple).Rate != 12.5 {
		t.Errorf("custom rate not used: %v", all.Row(DesignSimple).Rate)
	}
	if all.Row(DesignMedium).Rate != 200 {
		t.Errorf("missing rate should default to 200, got %v", all.Row(DesignMedium).Rate)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	got := Summarize(nil, nil, "")
	if got.Total != 0 || len(got.Rows) != 6 {
		t.Errorf("empty summary = %+v", got)
	}
	for _, r := range got.Rows {
		if r.Rate != DefaultRate(r.Key) {
			t.Errorf("%s rate = %v, want default", r.Key, r.Rate)
		}
	}
}

func TestSummarizeSkipsUnknownDifficulty(t *testing.T) {
	nodes := []graph.Node{
		node("1", cls(graph.WorkNew, "huge"), cls(graph.WorkNew, graph.Simple), graph.UploadingNo),
	}
	got := Summarize(nodes, DefaultRates(), "")
	if got.Total != 150 {
		t.Errorf("total = %v, want 150", got.Total)
	}
}

func TestCompute(t *testing.T) {
	nodes := []graph.Node{
		node("1", cls(graph.WorkNew, graph.Complex), cls(graph.WorkAdapt, graph.Simple), graph.UploadingYes),
		node("2", cls(graph.WorkNew, graph.Simple), cls(graph.WorkNew, graph.Simple), graph.UploadingNo),
	}

	est := Compute(nodes, DefaultRates())

	if est.New.Total != 300+100+150 {
		t.Errorf("new total = %v", est.New.Total)
	}
	if est.Adapt.Total != 150 {
		t.Errorf("adapt total = %v", est.Adapt.Total)
	}
	if est.Uploading.Total != 450 {
		t.Errorf("uploading total = %v, want 450", est.Uploading.Total)
	}
	if q := est.Uploading.Row(DesignSimple).Quantity; q != 0 {
		t.Errorf("uploading counted non-uploading node: %d", q)
	}
}
