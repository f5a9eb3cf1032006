package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/llxisdsh/parkinglot/internal/cli"
)

const (
	cmdName = "lockbench"

	shortDesc = "Measure lock throughput and fairness."
	longDesc  = `Measure the throughput and fairness of parkinglot locks.

For each thread count in [threads] (a single N or an inclusive MIN-MAX range,
1-10 by default) lockbench starts that many goroutines contending on a shared
set of locks and reports acquisitions per second and Jain's fairness index
over the per-goroutine iteration counts.
`
)

func main() {
	cmd := cli.NewRootCmd(cmdName, shortDesc, longDesc)

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, strings.TrimLeft(err.Error(), "\n"))
		os.Exit(1)
	}
}
