//go:build !js

package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/docker/go-units"
	"github.com/fsnotify/fsnotify"
	"github.com/mattn/go-isatty"

	"github.com/jstepien/mlisp/pkg/compiler"
	"github.com/jstepien/mlisp/pkg/config"
	"github.com/jstepien/mlisp/pkg/utils"
)

var useColor bool

func main() {
	inPath := flag.String("in", "", "input source file path (- for stdin; may also be given as the first argument)")
	outPath := flag.String("o", "", "output assembly file path (default: input with .asm extension, - for stdout)")
	runtimePath := flag.String("runtime", "", "YAML runtime description (default: built in)")
	check := flag.Bool("check", false, "verify the generated listing before writing it")
	watch := flag.Bool("watch", false, "recompile whenever the input file changes")
	verbose := flag.Bool("v", false, "log pipeline stages to stderr")
	color := flag.String("color", "auto", "color diagnostics: auto, always or never")
	flag.Parse()

	switch *color {
	case "auto":
		fd := os.Stderr.Fd()
		useColor = isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
	case "always":
		useColor = true
	case "never":
		useColor = false
	default:
		fmt.Fprintf(os.Stderr, "invalid -color value %q\n", *color)
		os.Exit(2)
	}

	if *inPath == "" && flag.NArg() > 0 {
		*inPath = flag.Arg(0)
	}
	if *inPath == "" {
		fmt.Fprintln(os.Stderr, "nothing to do: provide -in <file> or - to read stdin")
		flag.Usage()
		os.Exit(2)
	}
	if *watch && *inPath == utils.Stdio {
		fmt.Fprintln(os.Stderr, "-watch needs an input file, not stdin")
		os.Exit(2)
	}

	rt := config.Default()
	if *runtimePath != "" {
		var err error
		rt, err = config.Load(*runtimePath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to load runtime description: %v\n", err)
			os.Exit(1)
		}
	}

	output := *outPath
	if output == "" {
		var err error
		output, err = utils.OutputPath(*inPath, ".asm")
		if err != nil {
			fmt.Fprintf(os.Stderr, "cannot derive output path from %q: %v\n", *inPath, err)
			os.Exit(1)
		}
	}

	opts := compiler.Options{Runtime: rt, Check: *check}
	if *verbose {
		opts.Logger = log.New(os.Stderr, "mlisp: ", 0)
	}

	err := build(*inPath, output, opts)
	if err != nil {
		report(err)
		if !*watch {
			os.Exit(1)
		}
	}
	if *watch {
		if err := watchAndBuild(*inPath, output, opts); err != nil {
			fmt.Fprintf(os.Stderr, "watch failed: %v\n", err)
			os.Exit(1)
		}
	}
}

// build compiles inPath and writes the assembly to output. The output file
// is left untouched when compilation fails.
func build(inPath, output string, opts compiler.Options) error {
	src, err := readSource(inPath)
	if err != nil {
		return fmt.Errorf("failed to read input %q: %w", inPath, err)
	}

	prog, err := compiler.Compile(strings.NewReader(src), opts)
	if err != nil {
		return compiler.WithSource(err, src)
	}

	if output == utils.Stdio {
		_, err = io.WriteString(os.Stdout, prog.Assembly)
		return err
	}
	if err := os.WriteFile(output, []byte(prog.Assembly), 0o644); err != nil {
		return fmt.Errorf("failed to write assembly file %q: %w", output, err)
	}
	if opts.Logger != nil {
		opts.Logger.Printf("wrote %s (%s)", output, units.HumanSize(float64(len(prog.Assembly))))
	}
	return nil
}

func readSource(path string) (string, error) {
	if path == utils.Stdio {
		data, err := io.ReadAll(os.Stdin)
		return string(data), err
	}
	data, err := os.ReadFile(path)
	return string(data), err
}

// watchAndBuild rebuilds on every change to inPath until the watcher fails.
func watchAndBuild(inPath, output string, opts compiler.Options) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(inPath); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "watching %s\n", inPath)

	for {
		select {
		case _, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			drainEvents(watcher.Events)
			if err := build(inPath, output, opts); err != nil {
				report(err)
			} else {
				fmt.Fprintf(os.Stderr, "rebuilt %s\n", output)
			}
			// Editors often replace the file, dropping the watch.
			_ = watcher.Add(inPath)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return err
		}
	}
}

// drainEvents swallows the burst of events a single save produces.
func drainEvents(events <-chan fsnotify.Event) {
	for {
		time.Sleep(10 * time.Millisecond)
		select {
		case <-events:
		default:
			return
		}
	}
}

// report prints a compile failure.
func report(err error) {
	prefix := "error:"
	if useColor {
		prefix = "\033[31merror:\033[0m"
	}
	fmt.Fprintln(os.Stderr, prefix, err)
}
