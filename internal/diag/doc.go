// Package diag defines the diagnostic model shared by the declaration
// loader, the layout engine and the driver.
//
// Producers emit through a Reporter, usually a BagReporter collecting into a
// per-file Bag. Rendering lives in internal/diagfmt.
//
// A Diagnostic has a Severity, a numeric Code with a stable string ID, a
// message, a primary source.Span and optional notes pointing at related
// spans. SevFatal marks errors after which the producer gave up on the
// declaration: a fatal enum diagnostic leaves the enum unevaluated.
package diag
