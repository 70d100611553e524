// Command tacit compiles and runs Tacit source files, then drives a simple
// line-oriented REPL unless --no-interactive is given.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/jhlagado/tacit/internal/logio"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("tacit", flag.ContinueOnError)
	noInteractive := fs.Bool("no-interactive", false, "exit after loading given files instead of starting a REPL")
	trace := fs.Bool("trace", false, "log each executed instruction to stderr (compilation is not traced)")
	dump := fs.Bool("dump", false, "print a dictionary/stack/code dump after running")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	var log logio.Logger
	log.SetOutput(nopWriteCloser{os.Stderr})

	vm, err := New(WithOutput(os.Stdout))
	if err != nil {
		log.Errorf("%v", err)
		return log.ExitCode()
	}
	if *trace {
		vm.logfn = log.Leveledf("TRACE")
	}

	for _, path := range fs.Args() {
		if err := loadFile(vm, path); err != nil {
			log.Errorf("%s: %v", path, err)
		}
	}

	if !*noInteractive {
		repl(vm, &log)
	}

	if *dump {
		vmDumper{vm: vm, out: os.Stdout}.dump()
	}
	return log.ExitCode()
}

func loadFile(vm *VM, path string) error {
	if !strings.Contains(path, ".") {
		path += ".tacit"
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := vm.Compile(string(src)); err != nil {
		return err
	}
	return vm.Run()
}

// repl implements the minimal interactive loop named in the spec's CLI
// surface: blank lines and lines starting with `\` are skipped, `load PATH`
// compiles and runs a file, `exit` quits.
func repl(vm *VM, log *logio.Logger) {
	sc := bufio.NewScanner(os.Stdin)
	for {
		fmt.Fprint(os.Stdout, "> ")
		if !sc.Scan() {
			return
		}
		line := strings.TrimSpace(sc.Text())
		switch {
		case line == "":
			continue
		case strings.HasPrefix(line, "\\"):
			continue
		case line == "exit":
			return
		case strings.HasPrefix(line, "load "):
			path := strings.TrimSpace(strings.TrimPrefix(line, "load "))
			if err := loadFile(vm, path); err != nil {
				log.Errorf("%v", err)
			}
			continue
		}
		if err := vm.Compile(line); err != nil {
			log.Errorf("%v", err)
			continue
		}
		if err := vm.Run(); err != nil {
			log.Errorf("%v", err)
		}
	}
}

type nopWriteCloser struct{ *os.File }

func (nopWriteCloser) Close() error { return nil }
