// Package estimate turns a work-item diagram into a priced summary.
//
// Every node carries two classifications, one for design work and one for
// coding work, each graded simple, medium or complex. [Summarize] counts
// them per rate key and multiplies by the [Rates] table:
//
//	key             rate  quantity  sum
//	Design-simple    100         3  300
//	...
//	Coding-complex   350         1  350
//
// Rows always come in [Keys] order, and a filter restricts counting to one
// work type (new or adapt) so that the two views partition the unfiltered
// summary. Rates missing from a table resolve to the built-in defaults.
//
// Summaries are derived fresh on every call; nothing here is cached.
package estimate
