// Package schedule builds the two-dimensional conference timetable
// out of time slots, rooms and talk assignments. The builder is a
// pure function over its inputs: it performs no I/O and never fails.
// Handlers serialize the resulting Grid directly as JSON; any other
// rendering layer can consume it the same way.
package schedule

import (
	"sort"

	"github.com/iliyamo/conference-session-scheduler/internal/model"
)

// SpanAttrs carries the layout attributes of a slot or cell. RowSpan
// and ColSpan mirror the HTML table attributes of a printed
// conference grid: a slot that encloses parallel sub-slots spans
// several rows, and a banner slot (e.g. "Coffee break") spans the
// remaining room columns.
type SpanAttrs struct {
	RowSpan int `json:"rowspan"`
	ColSpan int `json:"colspan"`
}

// Cell is one position of the grid: a time slot within a room
// column, together with the talks scheduled there. A cell normally
// holds zero or one talk; overlapping labeled rows may produce more.
type Cell struct {
	Slot  model.TimeSlot `json:"slot"`
	Talks []model.Talk   `json:"talks"`
	Attrs SpanAttrs      `json:"attrs"`
	Row   int            `json:"row"`
}

// Column groups the cells of one room within a block, ordered by
// slot start time.
type Column struct {
	Room  model.Room `json:"room"`
	Cells []Cell     `json:"cells"`
}

// Row describes one horizontal band of the grid. Each distinct start
// time within a block allocates a row; slots recurring at the same
// start time reuse the index. The slot stored here is the first one
// seen for the start time and carries the band's label when its
// TextBody is set.
type Row struct {
	Index int            `json:"index"`
	Slot  model.TimeSlot `json:"slot"`
	Attrs SpanAttrs      `json:"attrs"`
}

// Block is one section of the timetable, usually a day. It holds the
// rooms actually used by talks in the block, the ordered rows and
// the per-room columns.
type Block struct {
	Key     string       `json:"key"`
	Rooms   []model.Room `json:"rooms"`
	Rows    []Row        `json:"rows"`
	Columns []Column     `json:"columns"`
}

// Grid is the complete renderable schedule of one event. Talks that
// have no slot assignment are collected under Unscheduled.
type Grid struct {
	Blocks      []Block      `json:"blocks"`
	Unscheduled []model.Talk `json:"unscheduled"`
}

// Build constructs the schedule grid for one event. Inputs are the
// event's time slots, its rooms in priority order, the talk-to-slot
// assignments and the full talk list. Absent input data yields empty
// structures, never an error. Ties between slots break on the stable
// ordering (start time, end time, name).
func Build(slots []model.TimeSlot, rooms []model.Room, assignments []model.TalkSlot, talks []model.Talk) Grid {
	grid := Grid{Blocks: []Block{}, Unscheduled: []model.Talk{}}

	talkByID := make(map[uint64]model.Talk, len(talks))
	for _, t := range talks {
		talkByID[t.ID] = t
	}

	// talks grouped per (slot, room) cell, and the set of scheduled talks
	// used to derive the unscheduled list below.
	cellTalks := make(map[uint64]map[uint64][]model.Talk)
	scheduled := make(map[uint64]bool, len(assignments))
	for _, a := range assignments {
		t, ok := talkByID[a.TalkID]
		if !ok {
			continue
		}
		scheduled[a.TalkID] = true
		byRoom := cellTalks[a.TimeSlotID]
		if byRoom == nil {
			byRoom = make(map[uint64][]model.Talk)
			cellTalks[a.TimeSlotID] = byRoom
		}
		byRoom[a.RoomID] = append(byRoom[a.RoomID], t)
	}

	ordered := make([]model.TimeSlot, len(slots))
	copy(ordered, slots)
	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if a.Block != b.Block {
			return a.Block < b.Block
		}
		if !a.StartTime.Equal(b.StartTime) {
			return a.StartTime.Before(b.StartTime)
		}
		if !a.EndTime.Equal(b.EndTime) {
			return a.EndTime.Before(b.EndTime)
		}
		return a.Name < b.Name
	})

	// partition into blocks, preserving the sorted order
	var blockKeys []string
	blockSlots := make(map[string][]model.TimeSlot)
	for _, s := range ordered {
		if _, seen := blockSlots[s.Block]; !seen {
			blockKeys = append(blockKeys, s.Block)
		}
		blockSlots[s.Block] = append(blockSlots[s.Block], s)
	}

	for _, key := range blockKeys {
		grid.Blocks = append(grid.Blocks, buildBlock(key, blockSlots[key], rooms, cellTalks))
	}

	for _, t := range talks {
		if !scheduled[t.ID] {
			grid.Unscheduled = append(grid.Unscheduled, t)
		}
	}
	return grid
}

// buildBlock lays out a single block: it selects the rooms used by
// any talk in the block, computes the contains relation between the
// block's slots, derives span attributes and assigns row indices.
func buildBlock(key string, slots []model.TimeSlot, rooms []model.Room, cellTalks map[uint64]map[uint64][]model.Talk) Block {
	b := Block{Key: key, Rooms: []model.Room{}, Rows: []Row{}, Columns: []Column{}}

	// rooms actually used by a talk in this block, in priority order
	used := make(map[uint64]bool)
	for _, s := range slots {
		for roomID := range cellTalks[s.ID] {
			used[roomID] = true
		}
	}
	for _, r := range rooms {
		if used[r.ID] {
			b.Rooms = append(b.Rooms, r)
		}
	}

	// pairwise contains relation within the block
	contains := make([][]int, len(slots))
	for i := range slots {
		for j := range slots {
			if slots[i].Contains(&slots[j]) {
				contains[i] = append(contains[i], j)
			}
		}
	}

	attrs := make([]SpanAttrs, len(slots))
	for i := range slots {
		a := SpanAttrs{RowSpan: 1, ColSpan: 1}
		if n := len(contains[i]); n >= 1 {
			// the slot shares its row band with every slot it encloses
			a.RowSpan = n + 1
			if n == 1 && len(b.Rooms) > 1 {
				// banner row spanning the remaining room columns
				a.ColSpan = len(b.Rooms) - 1
			}
		}
		attrs[i] = a
	}

	// row allocation: first appearance of a start time opens a row,
	// repeats at the same start reuse its index
	rowIndex := make([]int, len(slots))
	rowByStart := make(map[int64]int)
	for i, s := range slots {
		start := s.StartTime.UnixNano()
		idx, ok := rowByStart[start]
		if !ok {
			idx = len(b.Rows)
			rowByStart[start] = idx
			b.Rows = append(b.Rows, Row{Index: idx, Slot: s, Attrs: attrs[i]})
		}
		rowIndex[i] = idx
	}

	for _, r := range b.Rooms {
		col := Column{Room: r, Cells: []Cell{}}
		for i, s := range slots {
			if s.TextBody != "" {
				// label slots render as rows, not as room cells
				continue
			}
			talks := cellTalks[s.ID][r.ID]
			if talks == nil {
				talks = []model.Talk{}
			}
			col.Cells = append(col.Cells, Cell{Slot: s, Talks: talks, Attrs: attrs[i], Row: rowIndex[i]})
		}
		b.Columns = append(b.Columns, col)
	}
	return b
}
