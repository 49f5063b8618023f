// Package diagnostics turns LSP textDocument/publishDiagnostics
// notifications into validation decorations.
//
// A Syncer owns one document's diagnostic decorations. Each Apply decodes the
// payload, converts the 0-based UTF-16 positions to 1-based rune positions
// and replaces the previous decorations in one delta:
//
//	syncer := diagnostics.NewSyncer(doc, diagnostics.WithURI("file:///main.go"))
//	if err := syncer.Apply(payload); err != nil {
//	    return err
//	}
//
// Errors and warnings use the store's validation classes, so queries that
// filter validation decorations hide them.
package diagnostics
