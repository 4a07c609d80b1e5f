// Package writer dumps built scene tables to disk.
package writer

import "github.com/lunex-engine/rtscene/raytrace"

// The Writer interface is implemented by all scene writers.
type Writer interface {
	// Write scene tables
	Write(*raytrace.Snapshot) error
}

// Write scene tables to a zip archive.
func WriteSnapshot(snapshot *raytrace.Snapshot, filename string) error {
	writer := newZipSnapshotWriter(filename)
	return writer.Write(snapshot)
}
