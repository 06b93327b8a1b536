package drivercmd_test

import (
	"bytes"
	"context"
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/mna/mainer"
	"github.com/mna/sif/internal/drivercmd"
	"github.com/mna/sif/internal/filetest"
)

var testUpdateDriverTests = flag.Bool("test.update-driver-tests", false, "If set, replace expected driver test results with actual results.")

// TestRunScenarios runs each testdata/in/*.sif program end-to-end (parse,
// lower, optimize, analyze, run) and diffs its stdout/stderr against the
// golden files in testdata/out, echoing spec.md §8's scenarios the way the
// original's sifc_tests fixture suite did (SPEC_FULL.md's supplemented
// feature) and mirroring the teacher's own scanner_test.go use of
// internal/filetest.
func TestRunScenarios(t *testing.T) {
	ctx := context.Background()
	srcDir, resultDir := filepath.Join("testdata", "in"), filepath.Join("testdata", "out")

	for _, fi := range filetest.SourceFiles(t, srcDir, ".sif") {
		t.Run(fi.Name(), func(t *testing.T) {
			src, err := os.ReadFile(filepath.Join(srcDir, fi.Name()))
			if err != nil {
				t.Fatal(err)
			}

			var buf, ebuf bytes.Buffer
			stdio := mainer.Stdio{Stdout: &buf, Stderr: &ebuf}

			// error is ignored, we just want it printed to ebuf
			_ = drivercmd.Run(ctx, stdio, drivercmd.Options{}, src)
			filetest.DiffOutput(t, fi, buf.String(), resultDir, testUpdateDriverTests)
			filetest.DiffErrors(t, fi, ebuf.String(), resultDir, testUpdateDriverTests)
		})
	}
}
