package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joshuapare/heapkit/arena"
	"github.com/joshuapare/heapkit/internal/logger"
)

var (
	runCapacity  uint64
	runAlignment uint32
	runPages     bool
	runCheck     bool
	runDump      bool
)

func init() {
	cmd := newRunCmd()
	cmd.Flags().Uint64Var(&runCapacity, "capacity", 0, "Arena capacity in bytes (overrides the script)")
	cmd.Flags().Uint32Var(&runAlignment, "alignment", 0, "Alignment unit (overrides the script)")
	cmd.Flags().BoolVar(&runPages, "pages", false, "Back the arena with mapped pages")
	cmd.Flags().BoolVar(&runCheck, "check", false, "Verify every invariant after each step")
	cmd.Flags().BoolVar(&runDump, "dump", false, "Print the final block layout")
	rootCmd.AddCommand(cmd)
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <script.yaml>",
		Short: "Execute an allocation workload",
		Long: `The run command executes a YAML workload against a fresh arena and
prints the final allocator statistics.

Example:
  heapctl run workload.yaml
  heapctl run workload.yaml --capacity 65536 --check
  heapctl run workload.yaml --dump --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(args)
		},
	}
	return cmd
}

func runRun(args []string) error {
	path := args[0]
	printVerbose("Loading script: %s\n", path)

	script, err := loadScript(path)
	if err != nil {
		return err
	}

	opts, err := script.Arena.options()
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if runCapacity != 0 {
		opts = append(opts, arena.WithCapacity(runCapacity))
	}
	if runAlignment != 0 {
		opts = append(opts, arena.WithAlignment(runAlignment))
	}
	if runPages {
		opts = append(opts, arena.WithBacking(arena.BackingPages))
	}
	opts = append(opts, arena.WithLogger(logger.L))

	a, err := arena.New(opts...)
	if err != nil {
		return err
	}
	defer a.Close()

	r := newRunner(a, runCheck)
	runErr := r.exec(script.Steps, 0)

	rep := buildReport(path, a, r, runDump)
	if jsonOut {
		if err := printJSON(rep); err != nil {
			return err
		}
	} else if !quiet {
		printReport(rep, reportLanguage())
		if runErr != nil {
			printInfo("\nResult: FAILED at step %d\n", r.steps)
		} else {
			printInfo("\nResult: OK\n")
		}
	}

	if runErr != nil {
		logger.Error("run failed", "script", path, "step", r.steps, "err", runErr)
		return runErr
	}
	logger.Info("run complete", "script", path, "steps", r.steps, "ok", true)
	return nil
}

// runner executes script steps against one arena.
type runner struct {
	a       *arena.Arena
	check   bool
	handles map[string]arena.Ptr // Live blocks
	stale   map[string]arena.Ptr // Freed blocks, kept for double-free steps
	steps   int                  // Steps executed, repeats expanded
	failed  int                  // Steps that hit their expected error
}

func newRunner(a *arena.Arena, check bool) *runner {
	return &runner{
		a:       a,
		check:   check,
		handles: make(map[string]arena.Ptr),
		stale:   make(map[string]arena.Ptr),
	}
}

func (r *runner) exec(steps []Step, iter int) error {
	for _, st := range steps {
		if st.Op == opRepeat {
			for n := range st.Count {
				if err := r.exec(st.Steps, n); err != nil {
					return err
				}
			}
			continue
		}

		r.steps++
		name := handleName(st.Name, iter)
		logger.Debug("step", "n", r.steps, "op", st.Op, "name", name)
		err := r.step(st, name)
		if err = r.settle(st, err); err != nil {
			return fmt.Errorf("step %d (%s %s): %w", r.steps, st.Op, name, err)
		}
		if r.check {
			if err := r.a.Check(); err != nil {
				return fmt.Errorf("step %d (%s): invariant violated: %w", r.steps, st.Op, err)
			}
		}
	}
	return nil
}

// settle compares the step outcome with its expected error, if any.
func (r *runner) settle(st Step, err error) error {
	if st.Error == "" {
		return err
	}
	want := expectedErrors[st.Error]
	if err == nil {
		return fmt.Errorf("expected %s, step succeeded", st.Error)
	}
	if !errors.Is(err, want) {
		return fmt.Errorf("expected %s: %w", st.Error, err)
	}
	r.failed++
	logger.Warn("expected failure", "step", r.steps, "op", st.Op, "err", err)
	printVerbose("  expected failure: %v\n", err)
	return nil
}

func (r *runner) step(st Step, name string) error {
	switch st.Op {
	case opAlloc:
		p, err := r.a.Allocate(st.Size)
		if err != nil {
			return err
		}
		r.bind(name, p)
		printVerbose("  alloc %s %d -> 0x%X\n", name, st.Size, uint32(p))

	case opFree:
		p, err := r.lookup(name)
		if err != nil {
			return err
		}
		if err := r.a.Deallocate(p); err != nil {
			return err
		}
		delete(r.handles, name)
		r.stale[name] = p
		printVerbose("  free %s 0x%X\n", name, uint32(p))

	case opRealloc:
		p, err := r.lookup(name)
		if err != nil {
			return err
		}
		q, err := r.a.Reallocate(p, st.Size)
		if err != nil {
			return err
		}
		r.bind(name, q)
		printVerbose("  realloc %s %d 0x%X -> 0x%X\n", name, st.Size, uint32(p), uint32(q))

	case opFill, opCheck:
		return r.payload(st, name)

	case opVerify:
		return r.a.Check()

	case opExpect:
		return r.expect(st, name)

	case opReset:
		clear(r.handles)
		clear(r.stale)
		return r.a.Reset()
	}
	return nil
}

func (r *runner) bind(name string, p arena.Ptr) {
	r.handles[name] = p
	delete(r.stale, name)
}

func (r *runner) lookup(name string) (arena.Ptr, error) {
	if p, ok := r.handles[name]; ok {
		return p, nil
	}
	if p, ok := r.stale[name]; ok {
		return p, nil
	}
	return arena.NilPtr, fmt.Errorf("unknown handle %q", name)
}

// payload fills or checks the first len bytes (all of them when len is 0).
func (r *runner) payload(st Step, name string) error {
	p, err := r.lookup(name)
	if err != nil {
		return err
	}
	b, err := r.a.Bytes(p)
	if err != nil {
		return err
	}
	n := uint64(len(b))
	if st.Len != 0 {
		if st.Len > n {
			return fmt.Errorf("len %d exceeds block size %d", st.Len, n)
		}
		n = st.Len
	}
	val := byte(0)
	if st.Byte != nil {
		val = byte(*st.Byte)
	}

	if st.Op == opFill {
		for i := range n {
			b[i] = val
		}
		return nil
	}
	for i := range n {
		if b[i] != val {
			return fmt.Errorf("byte %d is 0x%02X, want 0x%02X", i, b[i], val)
		}
	}
	return nil
}

func (r *runner) expect(st Step, name string) error {
	s := r.a.Stats()
	if st.BytesFree != nil && *st.BytesFree != s.BytesFree {
		return fmt.Errorf("bytes_free is %d, want %d", s.BytesFree, *st.BytesFree)
	}
	if st.UsedBlocks != nil && *st.UsedBlocks != s.UsedBlocks {
		return fmt.Errorf("used_blocks is %d, want %d", s.UsedBlocks, *st.UsedBlocks)
	}
	if st.FreeBlocks != nil && *st.FreeBlocks != s.FreeBlocks {
		return fmt.Errorf("free_blocks is %d, want %d", s.FreeBlocks, *st.FreeBlocks)
	}
	if st.LargestFree != nil && *st.LargestFree != s.LargestFree {
		return fmt.Errorf("largest_free is %d, want %d", s.LargestFree, *st.LargestFree)
	}
	if st.BlockSize != nil {
		p, err := r.lookup(name)
		if err != nil {
			return err
		}
		size, err := r.a.SizeOf(p)
		if err != nil {
			return err
		}
		if size != *st.BlockSize {
			return fmt.Errorf("block_size of %s is %d, want %d", name, size, *st.BlockSize)
		}
	}
	return nil
}
