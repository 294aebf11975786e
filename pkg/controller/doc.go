// Package controller turns rendering-surface events and user commands into
// graph store mutations.
//
// A [Controller] owns one [graph.Store], the rate table, the current
// selection and at most one open edit dialog. Front-ends (the TUI, the HTTP
// bridge, CLI commands) drive it; none of them mutate the store directly.
//
// # Dialogs
//
// Double-clicking a node opens a dialog over a draft copy of its data.
// [Controller.SetField] validates each field as the user edits it and
// [Controller.Commit] writes the draft back. Every dialog gets a fresh session
// number so late results can tell whether "their" dialog is still open.
//
// # Images
//
// Image decoding is the only asynchronous work. The target is captured when
// the paste happens:
//
//	target, _ := c.CurrentImageTarget()
//	job := c.RequestImage(target, pasted)
//	res := <-job.Start()
//	applied, err := c.CompleteImage(res)
//
// If the dialog was closed or the node deleted in the meantime, the result
// is dropped.
package controller
