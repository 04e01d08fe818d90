package tetris

import "fmt"

// Op is the kind of a Command.
type Op uint8

const (
	OpMoveLeft Op = iota + 1
	OpMoveRight
	OpRotateLeft
	OpRotateRight
	OpApplyGravity
	OpStore
	OpClearLines
	OpNextMino
	OpSendLines
	OpAddLines
	OpPreGameOfLife
	OpGameOfLife
)

var opNames = map[Op]string{
	OpMoveLeft:      "MoveLeft",
	OpMoveRight:     "MoveRight",
	OpRotateLeft:    "RotateLeft",
	OpRotateRight:   "RotateRight",
	OpApplyGravity:  "ApplyGravity",
	OpStore:         "Store",
	OpClearLines:    "ClearLines",
	OpNextMino:      "NextMino",
	OpSendLines:     "SendLines",
	OpAddLines:      "AddLines",
	OpPreGameOfLife: "PreGameOfLife",
	OpGameOfLife:    "GameOfLife",
}

func (o Op) String() string {
	if name, ok := opNames[o]; ok {
		return name
	}
	return fmt.Sprintf("Op(%d)", uint8(o))
}

// Valid reports whether o is a known command kind.
func (o Op) Valid() bool {
	_, ok := opNames[o]
	return ok
}

// Command is the only way unit state changes, and the unit of replication.
// Unit is the index of the target unit in its room.
type Command struct {
	Unit  int   `json:"unit"`
	Op    Op    `json:"op"`
	N     int32 `json:"n,omitempty"`     // ApplyGravity rows
	Count int   `json:"count,omitempty"` // SendLines / AddLines rows
	Gap   int   `json:"gap,omitempty"`   // AddLines open column
	Mino  *Mino `json:"mino,omitempty"`  // NextMino piece
}

func MoveLeftCmd(unit int) Command    { return Command{Unit: unit, Op: OpMoveLeft} }
func MoveRightCmd(unit int) Command   { return Command{Unit: unit, Op: OpMoveRight} }
func RotateLeftCmd(unit int) Command  { return Command{Unit: unit, Op: OpRotateLeft} }
func RotateRightCmd(unit int) Command { return Command{Unit: unit, Op: OpRotateRight} }
func StoreCmd(unit int) Command       { return Command{Unit: unit, Op: OpStore} }
func ClearLinesCmd(unit int) Command  { return Command{Unit: unit, Op: OpClearLines} }

// GravityCmd moves the falling piece down n rows, locking it if blocked.
func GravityCmd(unit int, n int32) Command {
	return Command{Unit: unit, Op: OpApplyGravity, N: n}
}

// NextMinoCmd hands unit an already positioned falling piece.
func NextMinoCmd(unit int, m Mino) Command {
	return Command{Unit: unit, Op: OpNextMino, Mino: &m}
}

// SendLinesCmd queues count garbage lines on unit.
func SendLinesCmd(unit, count int) Command {
	return Command{Unit: unit, Op: OpSendLines, Count: count}
}

// AddLinesCmd inserts count garbage rows into unit's well.
func AddLinesCmd(unit, count, gap int) Command {
	return Command{Unit: unit, Op: OpAddLines, Count: count, Gap: gap}
}

func PreGameOfLifeCmd(unit int) Command { return Command{Unit: unit, Op: OpPreGameOfLife} }
func GameOfLifeCmd(unit int) Command    { return Command{Unit: unit, Op: OpGameOfLife} }

func (c Command) String() string {
	switch c.Op {
	case OpApplyGravity:
		if c.N == HardDrop {
			return fmt.Sprintf("%d:ApplyGravity(drop)", c.Unit)
		}
		return fmt.Sprintf("%d:ApplyGravity(%d)", c.Unit, c.N)
	case OpNextMino:
		if c.Mino != nil {
			return fmt.Sprintf("%d:NextMino(%s)", c.Unit, c.Mino.Shape)
		}
	case OpSendLines:
		return fmt.Sprintf("%d:SendLines(%d)", c.Unit, c.Count)
	case OpAddLines:
		return fmt.Sprintf("%d:AddLines(%d, gap %d)", c.Unit, c.Count, c.Gap)
	}
	return fmt.Sprintf("%d:%s", c.Unit, c.Op)
}
