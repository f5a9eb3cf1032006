package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/llxisdsh/parkinglot/lockbench"
)

var headerStyle = lipgloss.NewStyle().Bold(true)

type table struct {
	w      io.Writer
	styled bool
	wall   bool
}

func newTable(w io.Writer, styled, wall bool) *table {
	return &table{w: w, styled: styled, wall: wall}
}

func (t *table) header() {
	h := fmt.Sprintf("%-10s%12s%10s", "Threads", "Acq (kHz)", "Fairness")
	if t.wall {
		h += fmt.Sprintf("%12s", "Wall (ms)")
	}
	if t.styled {
		h = headerStyle.Render(h)
	}
	fmt.Fprintln(t.w, h)
}

func (t *table) row(threads int, res *lockbench.Result) {
	line := fmt.Sprintf("%-10d%12.0f%10.2f", threads, res.Rate/1000, res.Fairness())
	if t.wall {
		line += fmt.Sprintf("%12.1f", float64(res.Elapsed)/float64(time.Millisecond))
	}
	fmt.Fprintln(t.w, line)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
