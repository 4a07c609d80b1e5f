package writer

import (
	"archive/zip"
	"encoding/gob"
	"os"
	"time"

	"github.com/lunex-engine/rtscene/log"
	"github.com/lunex-engine/rtscene/raytrace"
	"github.com/pkg/errors"
)

const (
	dataFile = "scene.bin"
)

type zipSnapshotWriter struct {
	logger    log.Logger
	sceneFile string
}

// Create a new zip snapshot writer
func newZipSnapshotWriter(sceneFile string) *zipSnapshotWriter {
	return &zipSnapshotWriter{
		logger:    log.New("zip writer"),
		sceneFile: sceneFile,
	}
}

// Write scene tables to zip file.
func (w *zipSnapshotWriter) Write(snapshot *raytrace.Snapshot) (err error) {
	w.logger.Noticef("writing compressed scene dump to %s", w.sceneFile)
	start := time.Now()

	zipFile, err := os.Create(w.sceneFile)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := zipFile.Close(); err == nil {
			err = closeErr
		}
	}()

	zw := zip.NewWriter(zipFile)
	cw, err := zw.Create(dataFile)
	if err != nil {
		return errors.Wrap(err, "zip writer")
	}
	if err = gob.NewEncoder(cw).Encode(snapshot); err != nil {
		return errors.Wrap(err, "zip writer: could not encode scene tables")
	}
	if err = zw.Close(); err != nil {
		return errors.Wrap(err, "zip writer")
	}

	w.logger.Noticef("compressed scene dump in %d ms", time.Since(start).Nanoseconds()/1e6)
	return nil
}
