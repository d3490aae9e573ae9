// graph-info prints state and arc counts for a decode graph or a keyed
// archive of graphs.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/ieee0824/vtsdecode-go/graph"
	"github.com/ieee0824/vtsdecode-go/table"
)

func main() {
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: graph-info (graph|ark:graphs)")
		os.Exit(1)
	}
	spec := flag.Arg(0)

	kind, path := table.ClassifySpec(spec)
	if kind == table.SpecFile {
		g, err := graph.ReadFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		printInfo(path, g)
		return
	}

	r, err := table.OpenSequential[*graph.Graph](spec)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer r.Close()
	for r.Next() {
		printInfo(r.Key(), r.Value())
	}
	if err := r.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printInfo(name string, g *graph.Graph) {
	arcs, emitting, finals := 0, 0, 0
	for _, as := range g.Arcs {
		arcs += len(as)
		for _, a := range as {
			if a.ILabel != graph.Epsilon {
				emitting++
			}
		}
	}
	for s := int32(0); s < int32(g.NumStates()); s++ {
		if g.IsFinal(s) {
			finals++
		}
	}
	fmt.Printf("%s\tstates=%d arcs=%d emitting=%d final=%d start=%d\n",
		name, g.NumStates(), arcs, emitting, finals, g.Start)
}
