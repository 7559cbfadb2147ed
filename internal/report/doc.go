// Package report renders run summaries: an aligned text table with ANSI
// badges for terminals, and a status/data JSON envelope for tooling. The
// JSON shape is frozen by an embedded schema; both renderings are frozen
// by golden files.
package report
