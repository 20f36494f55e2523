// Package trends defines the core types and collaborator interfaces shared by the
// session manager, extractor, orchestrator, stores, and HTTP surface.
package trends
