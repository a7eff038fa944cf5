package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/aretw0/scribe"
	"github.com/aretw0/scribe/internal/config"
	"github.com/aretw0/scribe/pkg/content"
)

func main() {
	count := flag.Int("count", 500, "Number of source files to document")
	flaky := flag.Int("flaky", 0, "Fail the first N provider calls to exercise retries")
	keep := flag.Bool("keep", false, "Keep the benchmark workspace after running")
	flag.Parse()

	benchDir, err := os.MkdirTemp("", "scribe_bench_")
	if err != nil {
		panic(err)
	}
	defer func() {
		if !*keep {
			os.RemoveAll(benchDir)
		} else {
			fmt.Printf("Keeping bench dir: %s\n", benchDir)
		}
	}()

	srcDir := filepath.Join(benchDir, "src")
	if err := os.MkdirAll(srcDir, 0o755); err != nil {
		panic(err)
	}

	fmt.Printf("Writing %d source files in %s...\n", *count, srcDir)
	files := make([]string, 0, *count)
	for i := 0; i < *count; i++ {
		name := filepath.Join(srcDir, fmt.Sprintf("file_%d.go", i))
		body := fmt.Sprintf("package bench\n\n// F%d is generated.\nfunc F%d() int { return %d }\n", i, i, i)
		if err := os.WriteFile(name, []byte(body), 0o644); err != nil {
			panic(err)
		}
		files = append(files, name)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn}))
	mock := content.NewMock("bench")
	if *flaky > 0 {
		mock.FailTimes(*flaky, nil)
	}

	s, err := scribe.New(filepath.Join(benchDir, "docs"),
		scribe.WithBase(benchDir),
		scribe.WithLogger(logger),
		scribe.WithProvider(mock),
	)
	if err != nil {
		panic(err)
	}

	ctx := context.Background()
	tmpl := config.DefaultTemplate()

	fmt.Println("Run 1: fresh output...")
	fresh := run(ctx, s, tmpl, files, false)
	fmt.Println("Run 2: overwrite with backups...")
	backed := run(ctx, s, tmpl, files, true)

	fmt.Println("\n--- Results ---")
	fmt.Printf("Fresh:   %v (%.0f files/s)\n", fresh, float64(len(files))/fresh.Seconds())
	fmt.Printf("Backups: %v (%.0f files/s)\n", backed, float64(len(files))/backed.Seconds())
	fmt.Printf("Provider calls: %d\n", mock.Calls())
}

func run(ctx context.Context, s *scribe.Scribe, tmpl scribe.Template, files []string, backup bool) time.Duration {
	start := time.Now()
	for _, f := range files {
		if _, err := s.Generator.Generate(ctx, f, tmpl, nil, scribe.GenerateOptions{Backup: backup}); err != nil {
			panic(err)
		}
	}
	return time.Since(start)
}
