package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/chzyer/readline"

	"github.com/jstepien/mlisp/pkg/compiler"
	"github.com/jstepien/mlisp/pkg/config"
)

const (
	newPrompt    = "\033[32m>\033[0m "
	contPrompt   = "\033[32m.\033[0m "
	errorPrefix  = "\033[31merror:\033[0m"
	historyFile  = ".mlisp-history.tmp"
	helpText     = ":help  this text\n:defs   show the session's definitions\n:syms   show the global symbol table\n:reset  forget all definitions\n"
	commandStart = ":"
)

// session keeps the definitions entered so far. Every input is compiled
// together with them so later forms can call earlier functions.
type session struct {
	opts compiler.Options
	defs []string
}

// eval compiles input in the context of the session's definitions. An input
// made only of defuns is kept for later inputs.
func (s *session) eval(input string) (*compiler.Program, error) {
	defines, err := onlyDefinitions(input)
	if err != nil {
		return nil, err
	}
	src := strings.Join(append(s.defs[:len(s.defs):len(s.defs)], input), "\n")
	prog, err := compiler.Compile(strings.NewReader(src), s.opts)
	if err != nil {
		return nil, compiler.WithSource(err, src)
	}
	if defines {
		s.defs = append(s.defs, input)
	}
	return prog, nil
}

var errMixedInput = errors.New("enter definitions and expressions separately")

// onlyDefinitions reports whether every top-level form of src is a defun.
// Input mixing defuns with other forms is rejected. Input that does not
// parse is left for the compiler to report.
func onlyDefinitions(src string) (bool, error) {
	forms, err := compiler.ParseString(src)
	if err != nil || len(forms) == 0 {
		return false, nil
	}
	defuns := 0
	for _, f := range forms {
		if s, ok := f.(*compiler.Sexp); ok {
			if name, ok := s.Function(); ok && name == "defun" {
				defuns++
			}
		}
	}
	if defuns > 0 && defuns < len(forms) {
		return false, errMixedInput
	}
	return defuns > 0, nil
}

func (s *session) command(cmd string) {
	switch cmd {
	case ":help":
		fmt.Print(helpText)
	case ":defs":
		for _, d := range s.defs {
			fmt.Println(d)
		}
	case ":syms":
		prog, err := s.eval("")
		if err != nil {
			fmt.Println(errorPrefix, err)
			return
		}
		fmt.Print(prog.Symbols)
	case ":reset":
		s.defs = nil
	default:
		fmt.Printf("unknown command %s, try :help\n", cmd)
	}
}

func main() {
	runtimePath := flag.String("runtime", "", "YAML runtime description (default: built in)")
	flag.Parse()

	rt := config.Default()
	if *runtimePath != "" {
		var err error
		if rt, err = config.Load(*runtimePath); err != nil {
			log.Fatalf("Failed to load runtime description: %v", err)
		}
	}
	s := &session{opts: compiler.Options{Runtime: rt, Check: true}}

	l, err := readline.NewEx(&readline.Config{
		Prompt:            newPrompt,
		HistoryFile:       historyFile,
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	})
	if err != nil {
		log.Fatalf("Failed to start prompt: %v", err)
	}
	defer l.Close()
	l.CaptureExitSignal()

	pending := ""
	for {
		line, err := l.Readline()
		input := pending + line
		if errors.Is(err, readline.ErrInterrupt) {
			if len(input) == 0 {
				break
			}
			pending = ""
			l.SetPrompt(newPrompt)
			continue
		} else if errors.Is(err, io.EOF) {
			break
		} else if err != nil {
			log.Fatalf("Failed to read input: %v", err)
		}
		if strings.TrimSpace(input) == "" {
			continue
		}
		if pending == "" && strings.HasPrefix(strings.TrimSpace(line), commandStart) {
			s.command(strings.TrimSpace(line))
			continue
		}

		prog, err := s.eval(input)
		if compiler.IsIncomplete(err) {
			pending = input + "\n"
			l.SetPrompt(contPrompt)
			continue
		}
		pending = ""
		l.SetPrompt(newPrompt)
		if err != nil {
			fmt.Println(errorPrefix, err)
			continue
		}
		fmt.Print(prog.Assembly)
	}
}
