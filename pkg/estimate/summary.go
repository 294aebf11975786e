package estimate

import "github.com/matzehuels/costgraph/pkg/graph"

// Row is one line of a summary table.
type Row struct {
	Key      WorkKey `json:"key"`
	Rate     float64 `json:"rate"`
	Quantity int     `json:"quantity"`
	Sum      float64 `json:"sum"`
}

// Table is a summary: six rows in [Keys] order plus their total.
type Table struct {
	Rows  []Row   `json:"rows"`
	Total float64 `json:"total"`
}

// Row returns the row for k.
func (t Table) Row(k WorkKey) Row {
	for _, r := range t.Rows {
		if r.Key == k {
			return r
		}
	}
	return Row{Key: k}
}

// Estimate bundles the three views shown next to the diagram.
type Estimate struct {
	New       Table `json:"new"`
	Adapt     Table `json:"adapt"`
	Uploading Table `json:"uploading"`
}

// Summarize counts node classifications and prices them with rates.
//
// A node's design classification contributes one unit to
// "Design-<difficulty>" when filter is empty or equals the design type; its
// coding classification contributes to "Coding-<difficulty>" independently.
// Difficulties outside the known set are not counted.
func Summarize(nodes []graph.Node, rates Rates, filter graph.WorkType) Table {
	counts := make(map[WorkKey]int, len(Keys))
	for _, n := range nodes {
		count(counts, Design, n.Data.Design, filter)
		count(counts, Coding, n.Data.Coding, filter)
	}

	t := Table{Rows: make([]Row, 0, len(Keys))}
	for _, k := range Keys {
		rate := rates.Rate(k)
		q := counts[k]
		sum := rate * float64(q)
		t.Rows = append(t.Rows, Row{Key: k, Rate: rate, Quantity: q, Sum: sum})
		t.Total += sum
	}
	return t
}

func count(counts map[WorkKey]int, d Discipline, c graph.Classification, filter graph.WorkType) {
	if filter != "" && c.Type != filter {
		return
	}
	if !c.Difficulty.Valid() {
		return
	}
	counts[KeyFor(d, c.Difficulty)]++
}

// Compute derives all three views from the current nodes.
//
// New and Adapt are the type-filtered summaries. Uploading is the unfiltered
// summary restricted to nodes flagged uploading=yes.
func Compute(nodes []graph.Node, rates Rates) Estimate {
	var uploading []graph.Node
	for _, n := range nodes {
		if n.Data.Uploading == graph.UploadingYes {
			uploading = append(uploading, n)
		}
	}
	return Estimate{
		New:       Summarize(nodes, rates, graph.WorkNew),
		Adapt:     Summarize(nodes, rates, graph.WorkAdapt),
		Uploading: Summarize(uploading, rates, ""),
	}
}
