package bvh

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"

	"go.uber.org/multierr"
)

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

// Write serializes the file. A file that was parsed keeps its original hierarchy text; otherwise
// the hierarchy is generated from Joints with tab indentation. Motion values are written with six
// decimals.
func (f *File) Write(w io.Writer) error {
	bw := bufio.NewWriter(w)
	if f.hierarchy != nil {
		for _, line := range f.hierarchy {
			bw.WriteString(line)
			bw.WriteByte('\n')
		}
	} else {
		f.writeHierarchy(bw)
	}

	bw.WriteString("MOTION\n")
	bw.WriteString("Frames: " + strconv.Itoa(len(f.Frames)) + "\n")
	bw.WriteString("Frame Time: " + formatFloat(f.FrameTime) + "\n")
	values := make([]string, f.channels)
	for _, row := range f.Frames {
		for i, v := range row {
			values[i] = formatFloat(v)
		}
		bw.WriteString(strings.Join(values[:len(row)], " "))
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// WriteFile writes the file to path, replacing anything already there.
func (f *File) WriteFile(path string) (err error) {
	//nolint:gosec
	fh, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Combine(err, fh.Close())
	}()
	return f.Write(fh)
}

func (f *File) writeHierarchy(bw *bufio.Writer) {
	children := make([][]int, len(f.Joints))
	for i, j := range f.Joints {
		if j.Parent >= 0 {
			children[j.Parent] = append(children[j.Parent], i)
		}
	}

	bw.WriteString("HIERARCHY\n")
	var writeJoint func(idx, depth int)
	writeJoint = func(idx, depth int) {
		j := f.Joints[idx]
		indent := strings.Repeat("\t", depth)
		keyword := "JOINT"
		if j.Parent < 0 {
			keyword = "ROOT"
		}
		bw.WriteString(indent + keyword + " " + j.Name + "\n")
		bw.WriteString(indent + "{\n")
		bw.WriteString(indent + "\tOFFSET " + formatVector(j.Offset.X, j.Offset.Y, j.Offset.Z) + "\n")
		names := make([]string, 0, len(j.Channels)+1)
		names = append(names, strconv.Itoa(len(j.Channels)))
		for _, ch := range j.Channels {
			names = append(names, ch.String())
		}
		bw.WriteString(indent + "\tCHANNELS " + strings.Join(names, " ") + "\n")
		for _, child := range children[idx] {
			writeJoint(child, depth+1)
		}
		if j.EndSite != nil {
			bw.WriteString(indent + "\tEnd Site\n")
			bw.WriteString(indent + "\t{\n")
			bw.WriteString(indent + "\t\tOFFSET " + formatVector(j.EndSite.X, j.EndSite.Y, j.EndSite.Z) + "\n")
			bw.WriteString(indent + "\t}\n")
		}
		bw.WriteString(indent + "}\n")
	}
	writeJoint(0, 0)
}

func formatVector(x, y, z float64) string {
	return formatFloat(x) + " " + formatFloat(y) + " " + formatFloat(z)
}
