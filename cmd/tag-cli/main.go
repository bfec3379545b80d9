package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"strings"

	"github.com/cognicore/autotag/internal/logging"
	"github.com/cognicore/autotag/pkg/autotag/artifact"
	"github.com/cognicore/autotag/pkg/autotag/attr"
	"github.com/cognicore/autotag/pkg/autotag/filter"
	"github.com/cognicore/autotag/pkg/autotag/inference"
)

func main() {
	var (
		artifactPath = flag.String("artifact", "", "Model artifact path (required)")
		text         = flag.String("text", "", "One-shot text to tag (non-interactive mode)")
		filterMode   = flag.Bool("filter", false, "Print the search filter instead of the tags")
		info         = flag.Bool("info", false, "Print the artifact summary and exit")
		logLevel     = flag.String("log-level", "warn", "Log level")
	)
	flag.Parse()

	logging.Init(logging.Config{Level: *logLevel, Format: "console"})

	if *artifactPath == "" {
		log.Fatal("--artifact required")
	}

	a, svc, err := buildTagger(*artifactPath)
	if err != nil {
		log.Fatal(err)
	}

	if *info {
		printInfo(os.Stdout, a.Summary())
		return
	}

	// One-shot mode
	if flagSet("text") {
		if err := tagText(os.Stdout, svc, *text, *filterMode); err != nil {
			log.Fatal(err)
		}
		return
	}

	// Interactive mode
	fmt.Println("===========================================")
	fmt.Println("  Autotag CLI")
	fmt.Println("  Describe a place, get its attributes")
	fmt.Println("===========================================")
	fmt.Println()
	fmt.Println("Type a description (Ctrl+D to exit):")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if err := tagText(os.Stdout, svc, line, *filterMode); err != nil {
			fmt.Println("Error:", err)
		}
	}

	fmt.Println("\nGoodbye!")
}

// flagSet reports whether name was given on the command line, so that an
// explicit -text "" is tagged rather than starting interactive mode
func flagSet(name string) bool {
	found := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

func buildTagger(path string) (*artifact.Artifact, *inference.Service, error) {
	a, err := artifact.Load(path)
	if err != nil {
		return nil, nil, fmt.Errorf("load artifact: %w", err)
	}
	svc, err := inference.New(a)
	if err != nil {
		return nil, nil, err
	}
	return a, svc, nil
}

func tagText(w io.Writer, svc inference.Tagger, text string, filterMode bool) error {
	if filterMode {
		f, err := filter.NewBuilder(svc).Build(&text)
		if err != nil {
			return err
		}
		for _, term := range f.Terms() {
			fmt.Fprintf(w, "  %s = %q\n", term.Attribute, term.Value)
		}
		fmt.Fprintln(w)
		return nil
	}

	p, err := svc.Infer(text)
	if err != nil {
		return fmt.Errorf("infer: %w", err)
	}
	for _, name := range attr.All() {
		v, _ := p.Get(name)
		fmt.Fprintf(w, "  %-16s %s\n", name+":", v)
	}
	fmt.Fprintln(w)
	return nil
}

func printInfo(w io.Writer, s artifact.Summary) {
	fmt.Fprintf(w, "Artifact version: %d\n", s.Version)
	if !s.CreatedAt.IsZero() {
		fmt.Fprintf(w, "Created:          %s\n", s.CreatedAt.Format("2006-01-02"))
	}
	fmt.Fprintf(w, "Features:         %d\n", s.Features)
	fmt.Fprintln(w, "Labels:")

	names := make([]string, 0, len(s.Labels))
	for name := range s.Labels {
		names = append(names, string(name))
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %s: %s\n", name, strings.Join(s.Labels[attr.Name(name)], ", "))
	}
}
