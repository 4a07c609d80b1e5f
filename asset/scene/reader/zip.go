package reader

import (
	"archive/zip"
	"bytes"
	"encoding/gob"
	"fmt"
	"io"
	"time"

	"github.com/lunex-engine/rtscene/asset"
	"github.com/lunex-engine/rtscene/log"
	"github.com/lunex-engine/rtscene/raytrace"
)

const (
	dataFile = "scene.bin"
)

type zipSnapshotReader struct {
	logger log.Logger
}

// Create a new zip snapshot reader
func newZipSnapshotReader() *zipSnapshotReader {
	return &zipSnapshotReader{
		logger: log.New("zip reader"),
	}
}

// Read scene tables from a zip file.
func (p *zipSnapshotReader) Read(sceneRes *asset.Resource) (*raytrace.Snapshot, error) {
	p.logger.Noticef(`reading scene dump from "%s"`, sceneRes.Path())
	start := time.Now()

	// zip package requires a reader implementing ReaderAt. To work around
	// this requirement we read the entire zip file into memory and create
	// a reader from the bytes package that implements ReaderAt
	data, err := io.ReadAll(sceneRes)
	if err != nil {
		return nil, err
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}

	var snapshot *raytrace.Snapshot
	for _, f := range zr.File {
		if f.Name != dataFile {
			p.logger.Warningf("unknown file %s in scene zip file; skipping", f.Name)
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		snapshot = &raytrace.Snapshot{}
		err = gob.NewDecoder(rc).Decode(snapshot)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("zipSnapshotReader: failed to load %s: %s", f.Name, err.Error())
		}
	}

	if snapshot == nil {
		return nil, fmt.Errorf("zipSnapshotReader: %s not found in %s", dataFile, sceneRes.Path())
	}

	p.logger.Noticef("loaded scene dump in %d ms", time.Since(start).Nanoseconds()/1e6)
	return snapshot, nil
}
