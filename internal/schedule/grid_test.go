package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/conference-session-scheduler/internal/model"
)

func at(hour, min int) time.Time {
	return time.Date(2026, 5, 1, hour, min, 0, 0, time.UTC)
}

func slot(id uint64, block, name string, start, end time.Time) model.TimeSlot {
	return model.TimeSlot{ID: id, EventID: 1, Name: name, Block: block, StartTime: start, EndTime: end}
}

func talk(id uint64, title string) model.Talk {
	track := uint64(1)
	return model.Talk{ID: id, EventID: 1, TrackID: &track, Title: title}
}

func TestBuildEmptyInputs(t *testing.T) {
	grid := Build(nil, nil, nil, nil)
	assert.NotNil(t, grid.Blocks)
	assert.Empty(t, grid.Blocks)
	assert.NotNil(t, grid.Unscheduled)
	assert.Empty(t, grid.Unscheduled)
}

func TestBuildPartitionsBlocks(t *testing.T) {
	rooms := []model.Room{{ID: 1, Name: "Main Hall", Priority: 0}}
	slots := []model.TimeSlot{
		slot(1, "day-1", "Session 1", at(10, 0), at(11, 0)),
		slot(2, "day-2", "Session 1", at(10, 0), at(11, 0)),
	}
	talks := []model.Talk{talk(1, "Opening"), talk(2, "Closing")}
	assignments := []model.TalkSlot{
		{ID: 1, TalkID: 1, RoomID: 1, TimeSlotID: 1},
		{ID: 2, TalkID: 2, RoomID: 1, TimeSlotID: 2},
	}

	grid := Build(slots, rooms, assignments, talks)
	require.Len(t, grid.Blocks, 2)
	assert.Equal(t, "day-1", grid.Blocks[0].Key)
	assert.Equal(t, "day-2", grid.Blocks[1].Key)
	require.Len(t, grid.Blocks[0].Columns, 1)
	require.Len(t, grid.Blocks[0].Columns[0].Cells, 1)
	require.Len(t, grid.Blocks[0].Columns[0].Cells[0].Talks, 1)
	assert.Equal(t, "Opening", grid.Blocks[0].Columns[0].Cells[0].Talks[0].Title)
}

func TestBuildBlockRoomsFollowPriority(t *testing.T) {
	rooms := []model.Room{
		{ID: 1, Name: "Main Hall", Priority: 0},
		{ID: 2, Name: "Workshop Room", Priority: 1},
		{ID: 3, Name: "Unused Room", Priority: 2},
	}
	slots := []model.TimeSlot{slot(1, "day-1", "Session 1", at(10, 0), at(11, 0))}
	talks := []model.Talk{talk(1, "A"), talk(2, "B")}
	assignments := []model.TalkSlot{
		{ID: 1, TalkID: 1, RoomID: 2, TimeSlotID: 1},
		{ID: 2, TalkID: 2, RoomID: 1, TimeSlotID: 1},
	}

	grid := Build(slots, rooms, assignments, talks)
	require.Len(t, grid.Blocks, 1)
	require.Len(t, grid.Blocks[0].Rooms, 2, "room without talks stays out of the block")
	assert.Equal(t, "Main Hall", grid.Blocks[0].Rooms[0].Name)
	assert.Equal(t, "Workshop Room", grid.Blocks[0].Rooms[1].Name)
}

func TestBuildContainedSlotSharesRowBand(t *testing.T) {
	rooms := []model.Room{
		{ID: 1, Name: "Main Hall", Priority: 0},
		{ID: 2, Name: "Workshop Room", Priority: 1},
	}
	// X (13:00-14:00) contains Y (13:15-13:45)
	slots := []model.TimeSlot{
		slot(1, "day-1", "X", at(13, 0), at(14, 0)),
		slot(2, "day-1", "Y", at(13, 15), at(13, 45)),
	}
	talks := []model.Talk{talk(1, "In X"), talk(2, "In Y")}
	assignments := []model.TalkSlot{
		{ID: 1, TalkID: 1, RoomID: 1, TimeSlotID: 1},
		{ID: 2, TalkID: 2, RoomID: 2, TimeSlotID: 2},
	}

	grid := Build(slots, rooms, assignments, talks)
	require.Len(t, grid.Blocks, 1)
	b := grid.Blocks[0]

	require.Len(t, b.Rows, 2)
	assert.Equal(t, 2, b.Rows[0].Attrs.RowSpan, "enclosing slot spans both rows")
	assert.Equal(t, 1, b.Rows[0].Attrs.ColSpan, "two rooms: banner spans rooms-1 columns")
	assert.Equal(t, 1, b.Rows[1].Attrs.RowSpan, "contained slot keeps a single row")
}

func TestBuildBannerColSpan(t *testing.T) {
	rooms := []model.Room{
		{ID: 1, Name: "Room A", Priority: 0},
		{ID: 2, Name: "Room B", Priority: 1},
		{ID: 3, Name: "Room C", Priority: 2},
	}
	slots := []model.TimeSlot{
		slot(1, "day-1", "Coffee break band", at(10, 0), at(11, 0)),
		slot(2, "day-1", "Lightning talks", at(10, 15), at(10, 45)),
	}
	talks := []model.Talk{talk(1, "A"), talk(2, "B"), talk(3, "C")}
	assignments := []model.TalkSlot{
		{ID: 1, TalkID: 1, RoomID: 1, TimeSlotID: 1},
		{ID: 2, TalkID: 2, RoomID: 2, TimeSlotID: 2},
		{ID: 3, TalkID: 3, RoomID: 3, TimeSlotID: 2},
	}

	grid := Build(slots, rooms, assignments, talks)
	require.Len(t, grid.Blocks, 1)
	b := grid.Blocks[0]
	require.Len(t, b.Rooms, 3)
	assert.Equal(t, 2, b.Rows[0].Attrs.RowSpan)
	assert.Equal(t, 2, b.Rows[0].Attrs.ColSpan, "banner spans all room columns minus one")
}

func TestBuildSameStartSharesRowIndex(t *testing.T) {
	rooms := []model.Room{
		{ID: 1, Name: "Room A", Priority: 0},
		{ID: 2, Name: "Room B", Priority: 1},
	}
	slots := []model.TimeSlot{
		slot(1, "day-1", "Track A slot", at(10, 0), at(11, 0)),
		slot(2, "day-1", "Track B slot", at(10, 0), at(11, 0)),
		slot(3, "day-1", "Late slot", at(11, 0), at(12, 0)),
	}
	talks := []model.Talk{talk(1, "A"), talk(2, "B"), talk(3, "C")}
	assignments := []model.TalkSlot{
		{ID: 1, TalkID: 1, RoomID: 1, TimeSlotID: 1},
		{ID: 2, TalkID: 2, RoomID: 2, TimeSlotID: 2},
		{ID: 3, TalkID: 3, RoomID: 1, TimeSlotID: 3},
	}

	grid := Build(slots, rooms, assignments, talks)
	require.Len(t, grid.Blocks, 1)
	b := grid.Blocks[0]
	require.Len(t, b.Rows, 2, "slots at the same start time share a row")

	// cells carry the row index they render into
	require.Len(t, b.Columns, 2)
	assert.Equal(t, 0, b.Columns[0].Cells[0].Row)
	assert.Equal(t, 0, b.Columns[1].Cells[0].Row)
	assert.Equal(t, 1, b.Columns[0].Cells[2].Row)
}

func TestBuildLabelSlotStaysOutOfColumns(t *testing.T) {
	rooms := []model.Room{{ID: 1, Name: "Main Hall", Priority: 0}}
	lunch := slot(2, "day-1", "Lunch", at(12, 0), at(13, 0))
	lunch.TextBody = "Lunch break"
	slots := []model.TimeSlot{
		slot(1, "day-1", "Morning", at(10, 0), at(11, 0)),
		lunch,
	}
	talks := []model.Talk{talk(1, "A")}
	assignments := []model.TalkSlot{{ID: 1, TalkID: 1, RoomID: 1, TimeSlotID: 1}}

	grid := Build(slots, rooms, assignments, talks)
	require.Len(t, grid.Blocks, 1)
	b := grid.Blocks[0]
	require.Len(t, b.Rows, 2, "label slot still owns a row")
	require.Len(t, b.Columns, 1)
	assert.Len(t, b.Columns[0].Cells, 1, "label slot produces no room cell")
}

func TestBuildCollectsUnscheduledTalks(t *testing.T) {
	rooms := []model.Room{{ID: 1, Name: "Main Hall", Priority: 0}}
	slots := []model.TimeSlot{slot(1, "day-1", "Session 1", at(10, 0), at(11, 0))}
	talks := []model.Talk{talk(1, "Scheduled"), talk(2, "Still pending")}
	assignments := []model.TalkSlot{{ID: 1, TalkID: 1, RoomID: 1, TimeSlotID: 1}}

	grid := Build(slots, rooms, assignments, talks)
	require.Len(t, grid.Unscheduled, 1)
	assert.Equal(t, "Still pending", grid.Unscheduled[0].Title)
}
