package ifo

import (
	"fmt"

	"github.com/bgrewell/dvd-kit/pkg/consts"
)

// Command is one raw 8-byte virtual machine instruction. Commands are carried for inspection only,
// the navigation engine never executes them.
type Command [consts.VM_COMMAND_SIZE]byte

func (c Command) String() string {
	return fmt.Sprintf("%02x%02x %02x%02x %02x%02x %02x%02x", c[0], c[1], c[2], c[3], c[4], c[5], c[6], c[7])
}

// Group returns the instruction group held in the top three bits.
func (c Command) Group() uint8 {
	return c[0] >> 5
}

// CommandTable is the PGC command table: pre commands run before the PGC, post commands after it and
// cell commands are referenced by index from cell playback entries.
type CommandTable struct {
	Pre  []Command
	Post []Command
	Cell []Command
}

// Len returns the total number of commands.
func (ct *CommandTable) Len() int {
	if ct == nil {
		return 0
	}
	return len(ct.Pre) + len(ct.Post) + len(ct.Cell)
}

func decodeCommandTable(r region, off uint64) (*CommandTable, error) {
	head, err := r.sub(off, consts.COMMAND_TABLE_HEADER_LEN)
	if err != nil {
		return nil, err
	}
	counts := []uint64{uint64(head.u16(0)), uint64(head.u16(2)), uint64(head.u16(4))}
	total := counts[0] + counts[1] + counts[2]
	size, err := arraySize(total, consts.VM_COMMAND_SIZE, r.op)
	if err != nil {
		return nil, err
	}
	body, err := r.sub(off+consts.COMMAND_TABLE_HEADER_LEN, size)
	if err != nil {
		return nil, err
	}

	lists := make([][]Command, 3)
	pos := 0
	for i, n := range counts {
		for j := uint64(0); j < n; j++ {
			var c Command
			copy(c[:], body.data[pos:pos+consts.VM_COMMAND_SIZE])
			lists[i] = append(lists[i], c)
			pos += consts.VM_COMMAND_SIZE
		}
	}
	return &CommandTable{Pre: lists[0], Post: lists[1], Cell: lists[2]}, nil
}
