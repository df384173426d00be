package models

// Document is implemented by every persisted document type. Documents are
// stored whole (replace-on-write) under a unique string id, one table per
// document kind.
type Document interface {
	DocumentID() string
}
