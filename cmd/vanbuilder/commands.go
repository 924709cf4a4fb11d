package main

import (
	"flag"
	"fmt"
	"io"
	"sort"

	"github.com/mattn/go-shellwords"
)

// Command is a console command with its own flags.
type Command struct {
	Name    string
	Usage   string
	FlagSet *flag.FlagSet
	Run     func(args []string) error
}

type Registry struct {
	cmds map[string]*Command
	out  io.Writer
}

func NewRegistry(out io.Writer) *Registry {
	return &Registry{cmds: make(map[string]*Command), out: out}
}

// Register adds a command. define may add flags to the command's FlagSet;
// run receives the positional arguments left after flag parsing.
func (r *Registry) Register(name, usage string, define func(fs *flag.FlagSet), run func(args []string) error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(r.out)
	if define != nil {
		define(fs)
	}
	r.cmds[name] = &Command{Name: name, Usage: usage, FlagSet: fs, Run: run}
}

// Parse splits a console line into words, honouring quotes.
func Parse(line string) ([]string, error) {
	return shellwords.Parse(line)
}

// Execute runs args[0] with the remaining words as its arguments.
func (r *Registry) Execute(args []string) error {
	if len(args) == 0 {
		return nil
	}
	cmd, ok := r.cmds[args[0]]
	if !ok {
		return fmt.Errorf("unknown command: %s", args[0])
	}
	// flags left over from the previous invocation must not leak into this one
	cmd.FlagSet.VisitAll(func(f *flag.Flag) {
		f.Value.Set(f.DefValue)
	})
	if err := cmd.FlagSet.Parse(args[1:]); err != nil {
		return err
	}
	return cmd.Run(cmd.FlagSet.Args())
}

func (r *Registry) Help() {
	names := make([]string, 0, len(r.cmds))
	for n := range r.cmds {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		fmt.Fprintf(r.out, "  %-10s %s\n", n, r.cmds[n].Usage)
	}
}
