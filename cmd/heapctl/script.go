package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/joshuapare/heapkit/arena"
)

// Script is a workload file: optional arena settings plus a list of steps.
//
// Example:
//
//	arena:
//	  capacity: 2048
//	  alignment: 8
//	steps:
//	  - {op: alloc, name: a, size: 64}
//	  - {op: fill, name: a, byte: 0x41}
//	  - {op: realloc, name: a, size: 256}
//	  - {op: check, name: a, byte: 0x41, len: 64}
//	  - {op: free, name: a}
//	  - op: repeat
//	    count: 4
//	    steps:
//	      - {op: alloc, name: "blk{i}", size: 16}
//	  - {op: expect, used_blocks: 4}
type Script struct {
	Arena ArenaSpec `yaml:"arena"`
	Steps []Step    `yaml:"steps"`
}

// ArenaSpec mirrors arena.Config with YAML-friendly field types.
type ArenaSpec struct {
	Capacity     uint64 `yaml:"capacity"`
	Alignment    uint32 `yaml:"alignment"`
	Backing      string `yaml:"backing"`       // heap | pages
	PointerCheck string `yaml:"pointer_check"` // strict | header
	Scrub        *bool  `yaml:"scrub"`
}

// Step is one workload operation.
type Step struct {
	Op    string `yaml:"op"`
	Name  string `yaml:"name"`
	Size  uint64 `yaml:"size"`
	Byte  *int   `yaml:"byte"`
	Len   uint64 `yaml:"len"`
	Error string `yaml:"error"` // expected failure: out_of_memory | invalid_pointer | double_free
	Count int    `yaml:"count"`
	Steps []Step `yaml:"steps"`

	// expect
	BytesFree   *uint64 `yaml:"bytes_free"`
	UsedBlocks  *int    `yaml:"used_blocks"`
	FreeBlocks  *int    `yaml:"free_blocks"`
	LargestFree *uint32 `yaml:"largest_free"`
	BlockSize   *uint64 `yaml:"block_size"`
}

const (
	opAlloc   = "alloc"
	opFree    = "free"
	opRealloc = "realloc"
	opFill    = "fill"
	opCheck   = "check"
	opVerify  = "verify"
	opExpect  = "expect"
	opRepeat  = "repeat"
	opReset   = "reset"
)

var expectedErrors = map[string]error{
	"out_of_memory":   arena.ErrOutOfMemory,
	"invalid_pointer": arena.ErrInvalidPointer,
	"double_free":     arena.ErrDoubleFree,
}

// loadScript reads and validates a workload file.
func loadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read script: %w", err)
	}
	return parseScript(data)
}

func parseScript(data []byte) (*Script, error) {
	var s Script
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("script is empty")
		}
		return nil, fmt.Errorf("failed to parse script: %w", err)
	}
	if len(s.Steps) == 0 {
		return nil, errors.New("script has no steps")
	}
	if err := validateSteps(s.Steps, "steps"); err != nil {
		return nil, err
	}
	return &s, nil
}

func validateSteps(steps []Step, path string) error {
	for i, st := range steps {
		where := path + "[" + strconv.Itoa(i) + "]"
		switch st.Op {
		case opAlloc, opRealloc, opFill, opCheck, opFree:
			if st.Name == "" {
				return fmt.Errorf("%s: %s needs a name", where, st.Op)
			}
		case opVerify, opExpect, opReset:
		case opRepeat:
			if st.Count <= 0 {
				return fmt.Errorf("%s: repeat needs a positive count", where)
			}
			if len(st.Steps) == 0 {
				return fmt.Errorf("%s: repeat has no steps", where)
			}
			if err := validateSteps(st.Steps, where+".steps"); err != nil {
				return err
			}
		case "":
			return fmt.Errorf("%s: missing op", where)
		default:
			return fmt.Errorf("%s: unknown op %q", where, st.Op)
		}
		if st.Error != "" {
			if _, ok := expectedErrors[st.Error]; !ok {
				return fmt.Errorf("%s: unknown error kind %q", where, st.Error)
			}
		}
		if st.Byte != nil && (*st.Byte < 0 || *st.Byte > 0xFF) {
			return fmt.Errorf("%s: byte %d out of range", where, *st.Byte)
		}
	}
	return nil
}

// options converts the arena section into arena options.
func (s ArenaSpec) options() ([]arena.Option, error) {
	var opts []arena.Option
	if s.Capacity != 0 {
		opts = append(opts, arena.WithCapacity(s.Capacity))
	}
	if s.Alignment != 0 {
		opts = append(opts, arena.WithAlignment(s.Alignment))
	}
	switch s.Backing {
	case "", "heap":
	case "pages":
		opts = append(opts, arena.WithBacking(arena.BackingPages))
	default:
		return nil, fmt.Errorf("unknown backing %q", s.Backing)
	}
	switch s.PointerCheck {
	case "", "strict":
	case "header":
		opts = append(opts, arena.WithPointerCheck(arena.CheckHeader))
	default:
		return nil, fmt.Errorf("unknown pointer_check %q", s.PointerCheck)
	}
	if s.Scrub != nil {
		opts = append(opts, arena.WithScrub(*s.Scrub))
	}
	return opts, nil
}

// handleName expands the {i} placeholder used inside repeat blocks.
func handleName(name string, iter int) string {
	return strings.ReplaceAll(name, "{i}", strconv.Itoa(iter))
}
