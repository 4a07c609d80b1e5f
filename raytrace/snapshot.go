package raytrace

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/lunex-engine/rtscene/gpu"
	"github.com/olekukonko/tablewriter"
)

// Snapshot holds a copy of the CPU-side scene tables.
type Snapshot struct {
	Triangles      []TriangleGPU
	Nodes          []BVHNodeGPU
	Materials      []MaterialGPU
	TextureHandles []uint64
	Lights         []LightGPU
}

// Stats returns a table with the entry count and size of each table.
func (s *Snapshot) Stats() string {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"Table", "Entries", "Size"})
	table.Append([]string{"Geometry", "---", fmtSize(s.Triangles, s.Nodes)})
	table.Append([]string{"  Triangles", fmt.Sprint(len(s.Triangles)), fmtSize(s.Triangles)})
	table.Append([]string{"  BVH nodes", fmt.Sprint(len(s.Nodes)), fmtSize(s.Nodes)})
	table.Append([]string{" ", " ", " "})
	table.Append([]string{"Materials", fmt.Sprint(len(s.Materials)), fmtSize(s.Materials)})
	table.Append([]string{"Textures", fmt.Sprint(len(s.TextureHandles)), fmtSize(s.TextureHandles)})
	table.Append([]string{"Lights", fmt.Sprint(len(s.Lights)), fmtSize(s.Lights)})
	table.SetFooter([]string{"Total", " ", strings.TrimLeft(fmtSize(s.Triangles, s.Nodes, s.Materials, s.TextureHandles, s.Lights), " ")})

	table.Render()
	return buf.String()
}

// Sum the total space used by a set of slices and return back a formatted
// value with the appropriate byte/kb/mb unit.
func fmtSize(items ...interface{}) string {
	var totalBytes float32
	for _, item := range items {
		_, size := gpu.SliceData(item)
		totalBytes += float32(size)
	}

	if totalBytes < 1e3 {
		return fmt.Sprintf("%3d bytes", int(totalBytes))
	} else if totalBytes < 1e6 {
		return fmt.Sprintf("%3.1f kb", totalBytes/1e3)
	}
	return fmt.Sprintf("%5.1f mb", totalBytes/1e6)
}
