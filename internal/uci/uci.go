// Package uci speaks the UCI line protocol over any reader/writer pair.
// Malformed input gets an "info string" diagnostic and never crashes the
// process or corrupts engine state.
package uci

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/mvander/riptide/internal/board"
	"github.com/mvander/riptide/internal/nnue"
	"github.com/mvander/riptide/internal/search"
	"github.com/mvander/riptide/internal/store"
)

const (
	engineName   = "Riptide"
	engineAuthor = "the Riptide developers"
)

// Handler owns the protocol session: the current position, the game hash
// history and the search lifecycle.
type Handler struct {
	eng *search.Engine
	in  io.Reader

	mu  sync.Mutex // serializes writes from the reader loop and the search goroutine
	out io.Writer

	pos     *board.Board
	history []uint64

	searching bool
	done      chan struct{}

	exp *store.Store
}

// New wires a handler to an engine and an I/O pair. The binary passes
// stdin/stdout; tests pass buffers.
func New(eng *search.Engine, in io.Reader, out io.Writer) *Handler {
	h := &Handler{
		eng:     eng,
		in:      in,
		out:     out,
		pos:     board.NewBoard(),
		history: nil,
	}
	h.history = []uint64{h.pos.Hash}
	eng.OnInfo = h.sendInfo
	eng.OnDiag = func(msg string) { h.printf("info string %s", msg) }
	return h
}

// Run processes commands until EOF or quit.
func (h *Handler) Run() error {
	scanner := bufio.NewScanner(h.in)
	scanner.Buffer(make([]byte, 0, 1<<16), 1<<20)

	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		cmd, args := fields[0], fields[1:]

		switch cmd {
		case "uci":
			h.printf("id name %s", engineName)
			h.printf("id author %s", engineAuthor)
			h.printf("option name Hash type spin default 64 min 1 max 4096")
			h.printf("option name Threads type spin default 1 min 1 max 64")
			h.printf("option name EvalFile type string default <empty>")
			h.printf("option name Experience type string default <empty>")
			h.printf("uciok")
		case "isready":
			h.printf("readyok")
		case "ucinewgame":
			h.handleNewGame()
		case "setoption":
			h.handleSetOption(args)
		case "position":
			h.handlePosition(args)
		case "go":
			h.handleGo(args)
		case "stop":
			h.handleStop()
		case "d":
			h.printf("%s", h.pos)
		case "perft":
			h.handlePerft(args)
		case "quit":
			h.shutdown()
			return scanner.Err()
		default:
			h.printf("info string unknown command %q", cmd)
		}
	}
	h.shutdown()
	return scanner.Err()
}

func (h *Handler) printf(format string, args ...any) {
	h.mu.Lock()
	fmt.Fprintf(h.out, format+"\n", args...)
	h.mu.Unlock()
}

// searchRunning reports whether a search is still in flight, reaping a
// search that finished on its own.
func (h *Handler) searchRunning() bool {
	if !h.searching {
		return false
	}
	select {
	case <-h.done:
		h.searching = false
		return false
	default:
		return true
	}
}

func (h *Handler) handleNewGame() {
	if h.searchRunning() {
		h.printf("info string ucinewgame ignored while searching")
		return
	}
	h.eng.NewGame()
	h.pos = board.NewBoard()
	h.history = []uint64{h.pos.Hash}
}

// handlePosition builds the requested position on a scratch board and
// commits only when every move applies. A bad FEN or an illegal move
// leaves the current position exactly as it was.
func (h *Handler) handlePosition(args []string) {
	if h.searchRunning() {
		h.printf("info string position ignored while searching")
		return
	}
	if len(args) == 0 {
		h.printf("info string position: missing arguments")
		return
	}

	var b *board.Board
	var err error
	rest := args

	switch args[0] {
	case "startpos":
		b = board.NewBoard()
		rest = args[1:]
	case "fen":
		fenEnd := len(args)
		for i, a := range args {
			if a == "moves" {
				fenEnd = i
				break
			}
		}
		b, err = board.ParseFEN(strings.Join(args[1:fenEnd], " "))
		if err != nil {
			h.printf("info string position: %v", err)
			return
		}
		rest = args[fenEnd:]
	default:
		h.printf("info string position: expected startpos or fen, got %q", args[0])
		return
	}

	hist := []uint64{b.Hash}
	if len(rest) > 0 {
		if rest[0] != "moves" {
			h.printf("info string position: expected moves, got %q", rest[0])
			return
		}
		for _, coord := range rest[1:] {
			m := b.FindMove(coord)
			if m == board.NoMove {
				h.printf("info string position: illegal move %q, position unchanged", coord)
				return
			}
			b.MakeMove(m)
			hist = append(hist, b.Hash)
		}
	}

	h.pos = b
	h.history = hist
}

func (h *Handler) handleGo(args []string) {
	if h.searchRunning() {
		h.printf("info string go ignored, search already running")
		return
	}

	limits, err := parseGo(args)
	if err != nil {
		h.printf("info string go: %v", err)
		return
	}

	root := h.pos.Copy()
	history := make([]uint64, len(h.history))
	copy(history, h.history)

	h.searching = true
	h.done = make(chan struct{})
	go func() {
		defer close(h.done)
		res := h.eng.Search(root, history, limits)
		h.printf("bestmove %s", h.chooseBestMove(root, res.Move))
	}()
}

// chooseBestMove never emits an illegal move: a search cut off before any
// depth completed falls back to the first legal move, and a position with
// no legal moves reports the null move.
func (h *Handler) chooseBestMove(root *board.Board, m board.Move) string {
	var ml board.MoveList
	root.LegalMoves(&ml)
	if ml.Len() == 0 {
		return board.NoMove.String()
	}
	if m != board.NoMove && ml.Contains(m) {
		return m.String()
	}
	return ml.Get(0).String()
}

func (h *Handler) handleStop() {
	if !h.searchRunning() {
		h.printf("info string stop ignored, no search running")
		return
	}
	h.stopSearch()
}

// stopSearch re-asserts the stop until the search goroutine acknowledges.
// A stop arriving before the goroutine has entered the engine would
// otherwise be consumed by the search's own state reset and lost.
func (h *Handler) stopSearch() {
	for {
		h.eng.Stop()
		select {
		case <-h.done:
			h.searching = false
			return
		case <-time.After(time.Millisecond):
		}
	}
}

func (h *Handler) shutdown() {
	if h.searching {
		h.stopSearch()
	}
	if h.exp != nil {
		h.exp.Close()
		h.exp = nil
	}
}

func (h *Handler) handlePerft(args []string) {
	if len(args) != 1 {
		h.printf("info string perft: want a depth argument")
		return
	}
	depth, err := strconv.Atoi(args[0])
	if err != nil || depth < 1 || depth > 9 {
		h.printf("info string perft: bad depth %q", args[0])
		return
	}
	start := time.Now()
	nodes := board.Perft(h.pos.Copy(), depth)
	h.printf("info string perft(%d) = %d (%v)", depth, nodes, time.Since(start).Round(time.Millisecond))
}

func (h *Handler) handleSetOption(args []string) {
	name, value, err := parseSetOption(args)
	if err != nil {
		h.printf("info string setoption: %v", err)
		return
	}
	if h.searchRunning() {
		h.printf("info string setoption ignored while searching")
		return
	}

	switch strings.ToLower(name) {
	case "hash":
		mb, err := strconv.Atoi(value)
		if err != nil || mb < 1 || mb > 4096 {
			h.printf("info string setoption: bad Hash value %q", value)
			return
		}
		h.eng.SetHashSize(mb)
	case "threads":
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 || n > 64 {
			h.printf("info string setoption: bad Threads value %q", value)
			return
		}
		h.eng.SetThreads(n)
	case "evalfile":
		net, err := nnue.Load(value)
		if err != nil {
			h.printf("info string setoption: %v", err)
			return
		}
		h.eng.SetNetwork(net)
		h.printf("info string eval file %s loaded", value)
	case "experience":
		if h.exp != nil {
			h.exp.Close()
			h.exp = nil
			h.eng.SetExperience(nil)
		}
		if value == "" || value == "<empty>" {
			return
		}
		st, err := store.Open(value)
		if err != nil {
			h.printf("info string setoption: %v", err)
			return
		}
		h.exp = st
		h.eng.SetExperience(st)
		h.printf("info string experience store %s attached", value)
	default:
		h.printf("info string setoption: unknown option %q", name)
	}
}

// SetExperience attaches an already opened experience store, closed on
// shutdown. Used by the binary's -experience flag.
func (h *Handler) SetExperience(st *store.Store) {
	h.exp = st
	h.eng.SetExperience(st)
}

func parseSetOption(args []string) (name, value string, err error) {
	if len(args) < 2 || args[0] != "name" {
		return "", "", fmt.Errorf("want: setoption name <name> [value <value>]")
	}
	i := 1
	var nameParts []string
	for ; i < len(args) && args[i] != "value"; i++ {
		nameParts = append(nameParts, args[i])
	}
	var valueParts []string
	if i < len(args) {
		valueParts = args[i+1:]
	}
	return strings.Join(nameParts, " "), strings.Join(valueParts, " "), nil
}

func parseGo(args []string) (search.Limits, error) {
	var limits search.Limits
	ms := func(s string) (time.Duration, error) {
		n, err := strconv.Atoi(s)
		if err != nil {
			return 0, fmt.Errorf("bad duration %q", s)
		}
		return time.Duration(n) * time.Millisecond, nil
	}

	for i := 0; i < len(args); i++ {
		needArg := func() (string, error) {
			if i+1 >= len(args) {
				return "", fmt.Errorf("%s needs an argument", args[i])
			}
			i++
			return args[i], nil
		}
		var err error
		switch args[i] {
		case "infinite":
			limits.Infinite = true
		case "depth":
			var v string
			if v, err = needArg(); err == nil {
				limits.Depth, err = strconv.Atoi(v)
			}
		case "nodes":
			var v string
			if v, err = needArg(); err == nil {
				limits.Nodes, err = strconv.ParseInt(v, 10, 64)
			}
		case "movetime":
			var v string
			if v, err = needArg(); err == nil {
				limits.MoveTime, err = ms(v)
			}
		case "wtime":
			var v string
			if v, err = needArg(); err == nil {
				limits.WTime, err = ms(v)
			}
		case "btime":
			var v string
			if v, err = needArg(); err == nil {
				limits.BTime, err = ms(v)
			}
		case "winc":
			var v string
			if v, err = needArg(); err == nil {
				limits.WInc, err = ms(v)
			}
		case "binc":
			var v string
			if v, err = needArg(); err == nil {
				limits.BInc, err = ms(v)
			}
		case "movestogo":
			var v string
			if v, err = needArg(); err == nil {
				limits.MovesToGo, err = strconv.Atoi(v)
			}
		case "ponder", "searchmoves", "mate":
			// Recognized but unsupported; ignore so a GUI sending them
			// still gets a search.
		default:
			return limits, fmt.Errorf("unknown argument %q", args[i])
		}
		if err != nil {
			return limits, err
		}
	}
	return limits, nil
}

func (h *Handler) sendInfo(info search.Info) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "info depth %d", info.Depth)
	if info.MateIn != 0 {
		// Mate distance in full moves, negative when getting mated.
		moves := (info.MateIn + 1) / 2
		if info.MateIn < 0 {
			moves = (info.MateIn - 1) / 2
		}
		fmt.Fprintf(&sb, " score mate %d", moves)
	} else {
		fmt.Fprintf(&sb, " score cp %d", info.Score)
	}
	fmt.Fprintf(&sb, " nodes %d nps %d hashfull %d time %d",
		info.Nodes, info.NPS, info.HashFull, info.Time.Milliseconds())
	if len(info.PV) > 0 {
		sb.WriteString(" pv")
		for _, m := range info.PV {
			sb.WriteByte(' ')
			sb.WriteString(m.String())
		}
	}
	h.printf("%s", sb.String())
}
