package main

import (
	"os"
	"slices"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/joshuapare/heapkit/arena"
)

// Report is the outcome of one run.
type Report struct {
	Script           string      `json:"script"`
	Steps            int         `json:"steps"`
	ExpectedFailures int         `json:"expected_failures"`
	Stats            arena.Stats `json:"stats"`
	Fragmentation    float64     `json:"fragmentation"` // 1 - largest free / bytes free
	Blocks           []BlockRow  `json:"blocks,omitempty"`
}

// BlockRow is one line of the block dump.
type BlockRow struct {
	Offset  uint32   `json:"offset"`
	Ptr     uint32   `json:"ptr"`
	Size    uint32   `json:"size"`
	State   string   `json:"state"`
	Handles []string `json:"handles,omitempty"`
}

func buildReport(path string, a *arena.Arena, r *runner, dump bool) Report {
	s := a.Stats()
	rep := Report{
		Script:           path,
		Steps:            r.steps,
		ExpectedFailures: r.failed,
		Stats:            s,
	}
	if s.BytesFree > 0 {
		rep.Fragmentation = 1 - float64(s.LargestFree)/float64(s.BytesFree)
	}
	if dump {
		rep.Blocks = blockRows(a.Blocks(), r.handles)
	}
	return rep
}

func blockRows(blocks []arena.BlockInfo, handles map[string]arena.Ptr) []BlockRow {
	byPtr := make(map[arena.Ptr][]string)
	for name, p := range handles {
		byPtr[p] = append(byPtr[p], name)
	}

	rows := make([]BlockRow, 0, len(blocks))
	for _, b := range blocks {
		row := BlockRow{Offset: b.Offset, Ptr: uint32(b.Ptr), Size: b.Size}
		switch {
		case b.Sentinel:
			row.State = "sentinel"
		case b.Free:
			row.State = "free"
		default:
			row.State = "used"
			row.Handles = byPtr[b.Ptr]
			slices.Sort(row.Handles)
		}
		rows = append(rows, row)
	}
	return rows
}

func printReport(rep Report, tag language.Tag) {
	p := message.NewPrinter(tag)
	s := rep.Stats
	used := s.Capacity - uint64(s.HeaderSize)*uint64(s.UsedBlocks+s.FreeBlocks+1) - s.BytesFree

	p.Fprintf(os.Stdout, "Script: %s\n", rep.Script)
	p.Fprintf(os.Stdout, "Steps:  %d (%d expected failures)\n\n", rep.Steps, rep.ExpectedFailures)

	p.Fprintf(os.Stdout, "Arena\n")
	p.Fprintf(os.Stdout, "  Capacity:      %d bytes\n", s.Capacity)
	p.Fprintf(os.Stdout, "  Alignment:     %d\n", s.Alignment)
	p.Fprintf(os.Stdout, "  Header size:   %d\n", s.HeaderSize)
	p.Fprintf(os.Stdout, "  Used payload:  %d bytes in %d blocks\n", used, s.UsedBlocks)
	p.Fprintf(os.Stdout, "  Free payload:  %d bytes in %d blocks\n", s.BytesFree, s.FreeBlocks)
	p.Fprintf(os.Stdout, "  Largest free:  %d bytes\n", s.LargestFree)
	p.Fprintf(os.Stdout, "  Fragmentation: %.1f%%\n\n", rep.Fragmentation*100)

	p.Fprintf(os.Stdout, "Operations\n")
	p.Fprintf(os.Stdout, "  Allocations:   %d\n", s.Allocations)
	p.Fprintf(os.Stdout, "  Frees:         %d\n", s.Frees)
	p.Fprintf(os.Stdout, "  Reallocations: %d (%d shrink, %d grow, %d move)\n",
		s.Reallocations, s.ShrinksInPlace, s.GrowsInPlace, s.Moves)
	p.Fprintf(os.Stdout, "  Splits:        %d\n", s.Splits)
	p.Fprintf(os.Stdout, "  Merges:        %d\n", s.Merges)
	p.Fprintf(os.Stdout, "  Out of memory: %d\n", s.OutOfMemory)
	p.Fprintf(os.Stdout, "  Bad pointers:  %d\n", s.RejectedPointers)

	if len(rep.Blocks) == 0 {
		return
	}
	p.Fprintf(os.Stdout, "\nBlocks\n")
	p.Fprintf(os.Stdout, "  %-8s  %-8s  %10s  %-8s  %s\n", "OFFSET", "PTR", "SIZE", "STATE", "HANDLES")
	for _, b := range rep.Blocks {
		p.Fprintf(os.Stdout, "  0x%06X  0x%06X  %10d  %-8s  %s\n",
			b.Offset, b.Ptr, b.Size, b.State, strings.Join(b.Handles, ","))
	}
}
