// riptide-bench runs the perft verification suite and a fixed-depth
// search benchmark, for quick sanity and speed checks outside the test
// harness.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/fatih/color"

	"github.com/mvander/riptide/internal/board"
	"github.com/mvander/riptide/internal/nnue"
	"github.com/mvander/riptide/internal/search"
)

var (
	evalFile = flag.String("eval", "", "weights file for the search benchmark (deterministic test net when empty)")
	depth    = flag.Int("depth", 10, "search benchmark depth")
	hashMB   = flag.Int("hash", 64, "transposition table size in MiB")
)

type perftCase struct {
	name  string
	fen   string
	depth int
	nodes int64
}

var perftSuite = []perftCase{
	{"startpos", board.StartFEN, 4, 197281},
	{"kiwipete", "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq -", 3, 97862},
	{"endgame", "8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - -", 4, 43238},
	{"promotions", "n1n5/PPPk4/8/8/8/8/4Kppp/5N1N b - - 0 1", 3, 9483},
	{"ep pin", "8/8/8/8/k2Pp2R/8/8/4K3 b - d3 0 1", 2, 94},
}

var benchFENs = []string{
	board.StartFEN,
	"r1bqkbnr/pppp1ppp/2n5/4p3/2B1P3/5N2/PPPP1PPP/RNBQK2R w KQkq - 4 4",
	"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq -",
	"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - -",
	"r2q1rk1/ppp2ppp/3bbn2/3p4/8/1P1P2P1/PBPN1PBP/R2Q1RK1 w - - 5 12",
}

func main() {
	flag.Parse()
	pass := color.New(color.FgGreen, color.Bold)
	fail := color.New(color.FgRed, color.Bold)
	head := color.New(color.FgCyan, color.Bold)

	head.Println("== perft suite ==")
	failed := false
	var totalNodes int64
	totalStart := time.Now()
	for _, tc := range perftSuite {
		b, err := board.ParseFEN(tc.fen)
		if err != nil {
			log.Fatalf("bad FEN %q: %v", tc.fen, err)
		}
		start := time.Now()
		got := board.Perft(b, tc.depth)
		elapsed := time.Since(start)
		totalNodes += got
		if got == tc.nodes {
			pass.Printf("  ok   ")
		} else {
			fail.Printf("  FAIL ")
			failed = true
		}
		fmt.Printf("%-12s perft(%d) = %-10d want %-10d %8v\n", tc.name, tc.depth, got, tc.nodes, elapsed.Round(time.Millisecond))
	}
	elapsed := time.Since(totalStart)
	fmt.Printf("  %d nodes in %v (%.1f Mnps)\n\n",
		totalNodes, elapsed.Round(time.Millisecond), float64(totalNodes)/elapsed.Seconds()/1e6)

	head.Println("== search benchmark ==")
	net := loadNet()
	eng := search.NewEngine(net, *hashMB, 1)

	var nodes int64
	searchStart := time.Now()
	for _, fen := range benchFENs {
		b, err := board.ParseFEN(fen)
		if err != nil {
			log.Fatalf("bad FEN %q: %v", fen, err)
		}
		eng.NewGame()
		res := eng.Search(b, nil, search.Limits{Depth: *depth})
		nodes += res.Nodes
		fmt.Printf("  %-70s depth %2d  %s  %8d nodes\n", fen, res.Depth, res.Move, res.Nodes)
	}
	searchElapsed := time.Since(searchStart)
	fmt.Printf("  %d nodes in %v (%.0f knps)\n",
		nodes, searchElapsed.Round(time.Millisecond), float64(nodes)/searchElapsed.Seconds()/1e3)

	if failed {
		fail.Println("perft FAILURES above")
		os.Exit(1)
	}
}

func loadNet() *nnue.Network {
	if *evalFile == "" {
		color.Yellow("  no -eval given, benchmarking with a deterministic test network")
		return nnue.InitRandom(1)
	}
	net, err := nnue.Load(*evalFile)
	if err != nil {
		log.Fatalf("evaluation weights: %v", err)
	}
	return net
}
