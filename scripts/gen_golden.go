// Command gen_golden regenerates the .golden fixtures consumed by the
// root package's golden_test.go: for every testdata/*.tacit file it runs
// the tacit binary against that source and records stdout, running one
// fixture per goroutine so a wide fixture set regenerates quickly.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"golang.org/x/net/context"
	"golang.org/x/sync/errgroup"
)

func main() {
	dir := flag.String("dir", "testdata", "directory of .tacit fixtures")
	timeout := flag.Duration("timeout", 30*time.Second, "overall deadline for regenerating all fixtures")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if err := regenerate(ctx, *dir); err != nil {
		log.Fatal(err)
	}
}

func regenerate(ctx context.Context, dir string) error {
	matches, err := filepath.Glob(filepath.Join(dir, "*.tacit"))
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, src := range matches {
		src := src
		g.Go(func() error { return regenerateOne(ctx, src) })
	}
	return g.Wait()
}

func regenerateOne(ctx context.Context, src string) error {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, "go", "run", ".", "--no-interactive", src)
	cmd.Dir = filepath.Dir(filepath.Dir(src)) // module root, one level above testdata/
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s: %w: %s", src, err, stderr.String())
	}

	golden := src[:len(src)-len(filepath.Ext(src))] + ".golden"
	return os.WriteFile(golden, stdout.Bytes(), 0o644)
}
