// Command wirecheck loads a schematic document, normalizes its wires and
// prints the straight wire paths, component mapping and nets it finds.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"schematic-editor/internal/component"
	"schematic-editor/internal/config"
	"schematic-editor/internal/editor"
	"schematic-editor/internal/project"
	"schematic-editor/internal/version"
	"schematic-editor/internal/wire"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	docPath := flag.String("doc", "", "Path to schematic document (JSON)")
	configPath := flag.String("config", "", "Path to config file (TOML)")
	partsPath := flag.String("parts", "", "Path to part library (JSON), default ~/.config/schematic-editor/parts.json")
	outPath := flag.String("out", "", "Write the normalized document here")
	seqIDs := flag.Bool("seq", false, "Use sequential wire IDs instead of UUIDs")
	verbose := flag.Bool("v", false, "Log engine diagnostics")
	watch := flag.Bool("watch", false, "Re-check whenever the document changes")
	debounce := flag.Duration("debounce", 200*time.Millisecond, "Quiet period before re-checking in -watch mode")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String("wirecheck"))
		return
	}
	if *docPath == "" {
		fmt.Println("Usage: wirecheck -doc <path> [-config config.toml] [-out normalized.json] [-seq] [-v] [-watch]")
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	parts, err := installParts(*partsPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load part library: %v\n", err)
		os.Exit(1)
	}

	opts := checkOptions{out: *outPath, seq: *seqIDs, verbose: *verbose, parts: parts}
	if err := check(*docPath, cfg, opts); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		if !*watch {
			os.Exit(1)
		}
	}
	if !*watch {
		return
	}

	w := project.NewWatcher(*docPath, *debounce)
	w.OnChange(func(path string) {
		fmt.Printf("\n%s changed, re-checking\n", path)
		if err := check(path, cfg, opts); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
		}
		// -out may point at the watched file.
		w.ResetBaseline()
	})
	if err := w.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to watch %s: %v\n", *docPath, err)
		os.Exit(1)
	}
	defer w.Stop()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
}

// installParts builds the part registry from the user library. Without an
// explicit path a missing default library is fine.
func installParts(path string) (*component.Registry, error) {
	reg := component.NewRegistry()
	if path == "" {
		p, err := component.DefaultLibraryPath()
		if err != nil {
			return reg, nil
		}
		path = p
	}
	lib, err := component.LoadLibrary(path)
	if err != nil {
		return nil, err
	}
	if len(lib.Parts) > 0 {
		log.Printf("parts: %d user-defined types from %s", len(lib.Parts), path)
	}
	if err := lib.Install(reg); err != nil {
		return nil, err
	}
	return reg, nil
}

type checkOptions struct {
	out     string
	seq     bool
	verbose bool
	parts   *component.Registry
}

// check runs one load, normalize and report pass over the document.
func check(docPath string, cfg *config.Config, opts checkOptions) error {
	doc, err := project.Load(docPath)
	if err != nil {
		return fmt.Errorf("failed to load document: %w", err)
	}
	fmt.Printf("Loaded %q: %d components, %d wires\n", doc.Name, len(doc.Components), len(doc.Wires))

	logger := log.New(io.Discard, "", 0)
	if opts.verbose {
		logger = log.Default()
	}
	var ids wire.IDGenerator = wire.UUIDGenerator{}
	if opts.seq {
		ids = wire.NewSequence("w")
	}
	m := editor.New(editor.WithConfig(cfg), editor.WithLogger(logger), editor.WithIDGenerator(ids), editor.WithParts(opts.parts))
	m.Load(doc.Components, doc.Wires)

	// Load only normalizes; merge collinear runs before reporting.
	wires := wire.UnifyInline(m.Wires(), component.AllPins(m.Components()), ids, cfg.Tolerance)
	m.Load(m.Components(), wires)
	nets := m.AssignNets()

	topo := m.Topology()
	fmt.Printf("\nWires after normalization: %d (total length %.1f)\n", len(m.Wires()), wire.TotalLength(m.Wires()))
	fmt.Printf("Graph: %d nodes, %d edges, %d bridges\n", len(topo.Nodes), len(topo.Edges), len(topo.Bridges()))

	fmt.Printf("\nStraight wire paths (%d):\n", len(topo.SWPs))
	fmt.Printf("%-8s %-4s %22s %22s %8s %-10s %s\n", "ID", "Axis", "Start", "End", "Length", "Color", "Components")
	fmt.Println(strings.Repeat("-", 96))
	for _, s := range topo.SWPs {
		fmt.Printf("%-8s %-4s %22s %22s %8.1f %-10s %s\n",
			s.ID, s.Axis, fmt.Sprintf("(%.1f, %.1f)", s.Start.X, s.Start.Y),
			fmt.Sprintf("(%.1f, %.1f)", s.End.X, s.End.Y), s.Length(), s.Color,
			strings.Join(topo.ComponentsOn(s.ID), ","))
	}

	var unmapped []string
	for _, c := range m.Components() {
		if c.IsTwoPin() && topo.SWPForComponent(c.ID) == nil {
			unmapped = append(unmapped, c.ID)
		}
	}
	if len(unmapped) > 0 {
		fmt.Printf("\nTwo-pin components off any straight path: %s\n", strings.Join(unmapped, ", "))
	}

	fmt.Printf("\nNets (%d):\n", len(nets))
	for _, n := range nets {
		pins := make([]string, len(n.Pins))
		for i, p := range n.Pins {
			pins[i] = p.String()
		}
		fmt.Printf("  %-10s %3d wires  pins: %s\n", n.Name, len(n.WireIDs), strings.Join(pins, " "))
	}

	if opts.out != "" {
		doc.Components = m.Components()
		doc.Wires = m.Wires()
		if err := doc.Save(opts.out); err != nil {
			return fmt.Errorf("failed to save document: %w", err)
		}
		fmt.Printf("\nWrote %s\n", opts.out)
	}
	return nil
}
