// Command vrpsolve is a thin CLI front-end over the core solver
// (spec.md §6): it reads a normalized JSON problem, runs the evolution
// loop, and writes back a normalized JSON solution. It deliberately
// does not parse Solomon/Lilim/TSPLIB/pragmatic text formats.
package main

import "os"

func main() {
	os.Exit(Execute())
}
