// Package storage defines the data-directory abstraction: the JSON inputs,
// the strategy document and rejected artifacts all live under one root.
package storage

import "time"

// FileInfo describes one file under the data root.
type FileInfo struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Provider is the interface for data-directory operations. Paths are relative
// to the root.
type Provider interface {
	// List returns metadata for every file under dir whose name ends in ext
	// (all files when ext is empty).
	List(dir, ext string) ([]FileInfo, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Exists reports whether a regular file exists at path.
	Exists(path string) (bool, error)
	// Write atomically writes content to path.
	Write(path string, content []byte) error
	// SaveArtifact stores a rejected or diagnostic payload under
	// RejectedDir and returns its relative path.
	SaveArtifact(kind, ext string, content []byte) (string, error)
}
