package tests

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"

	"golang.org/x/sync/errgroup"
)

// download the 256 single-step test files (one per opcode) of the NES 6502
// into dest dir.
func download6502Tests(tb testing.TB, dest string) {
	const urlfmt = `https://raw.githubusercontent.com/SingleStepTests/65x02/main/nes6502/v1/%s.json`

	tempdir, err := os.MkdirTemp("", "6502.single.step.*")
	if err != nil {
		tb.Fatal(err)
	}

	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())

	for opcode := range 256 {
		opstr := fmt.Sprintf("%02x", opcode)
		url := fmt.Sprintf(urlfmt, opstr)

		g.Go(func() error {
			resp, err := http.Get(url)
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("%s: %s", url, resp.Status)
			}

			f, err := os.Create(filepath.Join(tempdir, opstr+".json"))
			if err != nil {
				return err
			}
			defer f.Close()

			if _, err := io.Copy(f, resp.Body); err != nil {
				return err
			}
			return f.Close()
		})
	}

	if err := g.Wait(); err != nil {
		os.RemoveAll(tempdir)
		tb.Fatalf("failed to download all files: %s", err)
	}

	if err := os.Rename(tempdir, dest); err != nil {
		tb.Fatal(err)
	}
}

var singleStepDir = sync.OnceValue(func() string {
	_, b, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(b), "6502.single.step")
})

// SingleStep6502Path returns the directory holding the 6502 single-step
// tests, <opcode>.json, downloading them on first use.
func SingleStep6502Path(tb testing.TB) string {
	dir := singleStepDir()
	if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		tb.Log("6502 single-step tests not found, downloading them...")
		download6502Tests(tb, dir)
		tb.Log("6502 single-step tests downloaded in", dir)
	}
	return dir
}
