package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime/pprof"

	"github.com/mvander/riptide/internal/nnue"
	"github.com/mvander/riptide/internal/search"
	"github.com/mvander/riptide/internal/store"
	"github.com/mvander/riptide/internal/uci"
)

const defaultNet = "riptide.rptn"

var (
	hashMB     = flag.Int("hash", 64, "transposition table size in MiB")
	threads    = flag.Int("threads", 1, "search worker count")
	evalFile   = flag.String("eval", "", "path to the evaluation weights file")
	expPath    = flag.String("experience", "", "directory for the experience store")
	cpuprofile = flag.String("cpuprofile", "", "write cpu profile to file")
)

func main() {
	flag.Parse()

	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			log.Fatalf("could not create CPU profile: %v", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatalf("could not start CPU profile: %v", err)
		}
		defer pprof.StopCPUProfile()
		log.Printf("CPU profiling enabled, writing to %s", *cpuprofile)
	}

	// A missing or corrupt weights file is fatal. The engine would play
	// garbage on an untrained evaluation, so there is no fallback.
	net, err := loadNetwork(*evalFile)
	if err != nil {
		log.Fatalf("evaluation weights: %v", err)
	}

	eng := search.NewEngine(net, *hashMB, *threads)
	handler := uci.New(eng, os.Stdin, os.Stdout)

	if *expPath != "" {
		st, err := store.Open(*expPath)
		if err != nil {
			log.Printf("experience store disabled: %v", err)
		} else {
			handler.SetExperience(st)
		}
	}

	if err := handler.Run(); err != nil {
		log.Fatalf("protocol loop: %v", err)
	}
}

// loadNetwork loads the weights from the -eval path, or searches the
// usual spots for the default file name.
func loadNetwork(path string) (*nnue.Network, error) {
	if path != "" {
		return nnue.Load(path)
	}

	dirs := []string{"."}
	if exe, err := os.Executable(); err == nil {
		dirs = append(dirs, filepath.Dir(exe))
	}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, ".riptide"))
	}

	for _, dir := range dirs {
		p := filepath.Join(dir, defaultNet)
		if _, err := os.Stat(p); err == nil {
			return nnue.Load(p)
		}
	}
	return nil, fmt.Errorf("no %s found in %v; pass -eval", defaultNet, dirs)
}
