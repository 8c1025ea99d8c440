package hyperliquid

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
)

// maxFrameBytes bounds a single capture line; deep l2Book frames run long.
const maxFrameBytes = 4 << 20

// ReplayFile feeds a captured NDJSON file through the dispatcher in file
// order, as fast as the dispatcher can take it. Blank lines are skipped and
// malformed lines fall through the dispatcher's skip path; given identical
// input the resulting state is identical run to run.
func ReplayFile(path string, d *Dispatcher) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open capture %s: %w", path, err)
	}
	defer f.Close()
	return ReplayReader(f, d)
}

// ReplayReader is ReplayFile over any line stream.
func ReplayReader(r io.Reader, d *Dispatcher) (int, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxFrameBytes)

	frames := 0
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		d.DispatchRaw(line)
		frames++
	}
	if err := scanner.Err(); err != nil {
		return frames, fmt.Errorf("scan capture: %w", err)
	}
	return frames, nil
}
