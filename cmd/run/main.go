package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/wippyai/lua-runtime/runtime"
)

func main() {
	var (
		script      = flag.String("script", "", "Start script: a file path or a module name")
		dirs        = flag.String("dir", "", "Script directories for package.path (comma-separated)")
		cdirs       = flag.String("cdir", "", "Native directories for package.cpath (comma-separated)")
		pkgs        = flag.String("pkg", "", "Packages to require before the start script (comma-separated)")
		expr        = flag.String("e", "", "Chunk of Lua code to execute")
		watch       = flag.Bool("watch", false, "Watch .lua sources and restart on change")
		tracebacks  = flag.Bool("tb", true, "Attach Lua tracebacks to runtime errors")
		interactive = flag.Bool("i", false, "Interactive REPL with TUI")
	)
	flag.Parse()

	if *script == "" && *expr == "" && !*interactive {
		fmt.Fprintln(os.Stderr, "Usage: run -script <file.lua> [-dir d1,d2] [-pkg p1,p2] [-watch]")
		fmt.Fprintln(os.Stderr, "       run -e '<lua code>' [-dir d1,d2]")
		fmt.Fprintln(os.Stderr, "       run -i [-script <file.lua>] [-dir d1,d2]  (interactive mode)")
		os.Exit(1)
	}

	opts := runOptions{
		script:     *script,
		dirs:       splitList(*dirs),
		cdirs:      splitList(*cdirs),
		pkgs:       splitList(*pkgs),
		expr:       *expr,
		watch:      *watch,
		tracebacks: *tracebacks,
	}

	if *interactive {
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			fmt.Fprintln(os.Stderr, "Error: interactive mode requires a terminal")
			os.Exit(1)
		}
		if err := runInteractive(opts); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type runOptions struct {
	script     string
	expr       string
	dirs       []string
	cdirs      []string
	pkgs       []string
	watch      bool
	tracebacks bool
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, v := range strings.Split(s, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// newContext builds a Context from the command-line options, applying
// directories and required packages before the start script runs.
func newContext(opts runOptions) (*runtime.Context, error) {
	ctx, err := runtime.New(runtime.Config{
		WatchChanges:     opts.watch,
		EnableTracebacks: opts.tracebacks,
	})
	if err != nil {
		return nil, fmt.Errorf("create context: %w", err)
	}

	for _, d := range opts.dirs {
		if err := ctx.AddScriptDir(d); err != nil {
			ctx.Close()
			return nil, fmt.Errorf("add script dir %s: %w", d, err)
		}
	}
	for _, d := range opts.cdirs {
		if err := ctx.AddNativeDir(d); err != nil {
			ctx.Close()
			return nil, fmt.Errorf("add native dir %s: %w", d, err)
		}
	}
	for _, p := range opts.pkgs {
		if err := ctx.RequirePackage(p); err != nil {
			ctx.Close()
			return nil, fmt.Errorf("require %s: %w", p, err)
		}
	}

	if opts.script != "" {
		if err := ctx.SetStartScript(opts.script); err != nil {
			ctx.Close()
			return nil, fmt.Errorf("start script: %w", err)
		}
	}
	return ctx, nil
}

func run(opts runOptions) error {
	ctx, err := newContext(opts)
	if err != nil {
		return err
	}
	defer ctx.Close()

	if opts.expr != "" {
		if err := ctx.DoString(opts.expr); err != nil {
			return err
		}
	}

	if opts.watch {
		fmt.Println("Watching for changes, press Ctrl+C to stop...")
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
	}
	return nil
}
