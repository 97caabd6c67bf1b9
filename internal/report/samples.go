package report

import (
	"bytes"
	"fmt"
	"image/png"
	"path/filepath"

	"github.com/banshee-data/steering.dataset/internal/dataset"
	"github.com/banshee-data/steering.dataset/internal/fsutil"
)

// WriteSamples saves up to n frames of ds spread evenly across the dataset
// as dir/sample_NNNNN.png, named by example index. It returns the written
// paths. YUV frames are written as if they were BGR.
func WriteSamples(fsys fsutil.FileSystem, dir string, ds *dataset.Dataset, n int) ([]string, error) {
	if ds == nil || n <= 0 || ds.Len() == 0 {
		return nil, nil
	}
	if err := fsys.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create sample dir: %w", err)
	}

	idx := sampleIndices(ds.Len(), n)
	paths := make([]string, 0, len(idx))
	var buf bytes.Buffer
	for _, i := range idx {
		buf.Reset()
		if err := png.Encode(&buf, ds.Frames[i].ToImage()); err != nil {
			return paths, fmt.Errorf("encode sample %d: %w", i, err)
		}
		path := filepath.Join(dir, fmt.Sprintf("sample_%05d.png", i))
		if err := fsys.WriteFile(path, buf.Bytes(), 0644); err != nil {
			return paths, fmt.Errorf("write sample %d: %w", i, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// sampleIndices picks n evenly spaced indices in [0, total), always
// including 0.
func sampleIndices(total, n int) []int {
	if n >= total {
		out := make([]int, total)
		for i := range out {
			out[i] = i
		}
		return out
	}
	out := make([]int, n)
	for i := range out {
		out[i] = i * total / n
	}
	return out
}
