package netplay

import (
	"fmt"
	"math"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/vovakirdan/tui-tetris/internal/core"
	"github.com/vovakirdan/tui-tetris/internal/games/tetris"
	"github.com/vovakirdan/tui-tetris/internal/room"
)

// Field numbers of the envelope and its messages. The layout is protobuf
// wire format without generated code; unknown fields are skipped.
const (
	envUnit protowire.Number = 1
	envRoom protowire.Number = 2

	cmdUnit  protowire.Number = 1
	cmdOp    protowire.Number = 2
	cmdN     protowire.Number = 3
	cmdCount protowire.Number = 4
	cmdGap   protowire.Number = 5
	cmdMino  protowire.Number = 6

	minoShape    protowire.Number = 1
	minoOriginX  protowire.Number = 2
	minoOriginY  protowire.Number = 3
	minoRotation protowire.Number = 4
	minoBlocks   protowire.Number = 5
	minoColors   protowire.Number = 6

	roomOp     protowire.Number = 1
	roomInit   protowire.Number = 2
	roomPlayer protowire.Number = 3
	roomIndex  protowire.Number = 4
	roomMode   protowire.Number = 5

	initMode    protowire.Number = 1
	initPlayers protowire.Number = 2

	playerName protowire.Number = 1
)

// Encode serializes a message.
func Encode(m room.Message) ([]byte, error) {
	switch {
	case m.Unit != nil:
		body := appendCommand(nil, *m.Unit)
		return protowire.AppendBytes(protowire.AppendTag(nil, envUnit, protowire.BytesType), body), nil
	case m.Room != nil:
		body, err := appendRoomCommand(nil, *m.Room)
		if err != nil {
			return nil, err
		}
		return protowire.AppendBytes(protowire.AppendTag(nil, envRoom, protowire.BytesType), body), nil
	}
	return nil, fmt.Errorf("netplay: empty message")
}

func appendVarint(b []byte, num protowire.Number, v uint64) []byte {
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func appendSigned(b []byte, num protowire.Number, v int64) []byte {
	return appendVarint(b, num, protowire.EncodeZigZag(v))
}

func appendBytes(b []byte, num protowire.Number, v []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, v)
}

func appendString(b []byte, num protowire.Number, v string) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, v)
}

func appendCommand(b []byte, c tetris.Command) []byte {
	b = appendSigned(b, cmdUnit, int64(c.Unit))
	b = appendVarint(b, cmdOp, uint64(c.Op))
	if c.N != 0 {
		b = appendSigned(b, cmdN, int64(c.N))
	}
	if c.Count != 0 {
		b = appendSigned(b, cmdCount, int64(c.Count))
	}
	if c.Gap != 0 {
		b = appendSigned(b, cmdGap, int64(c.Gap))
	}
	if c.Mino != nil {
		b = appendBytes(b, cmdMino, appendMino(nil, *c.Mino))
	}
	return b
}

func appendMino(b []byte, m tetris.Mino) []byte {
	b = appendVarint(b, minoShape, uint64(m.Shape))
	b = protowire.AppendTag(b, minoOriginX, protowire.Fixed64Type)
	b = protowire.AppendFixed64(b, math.Float64bits(m.Origin.X))
	b = protowire.AppendTag(b, minoOriginY, protowire.Fixed64Type)
	b = protowire.AppendFixed64(b, math.Float64bits(m.Origin.Y))
	b = appendVarint(b, minoRotation, uint64(m.Rotation))

	var packed []byte
	for _, v := range m.Blocks {
		packed = protowire.AppendVarint(packed, protowire.EncodeZigZag(int64(v.X)))
		packed = protowire.AppendVarint(packed, protowire.EncodeZigZag(int64(v.Y)))
	}
	b = appendBytes(b, minoBlocks, packed)

	colors := make([]byte, len(m.Colors))
	for i, c := range m.Colors {
		colors[i] = byte(c)
	}
	return appendBytes(b, minoColors, colors)
}

func appendRoomCommand(b []byte, c room.RoomCommand) ([]byte, error) {
	b = appendVarint(b, roomOp, uint64(c.Op))
	switch c.Op {
	case room.RoomInit:
		if c.Init == nil {
			return nil, fmt.Errorf("netplay: Init without state")
		}
		var init []byte
		init = appendString(init, initMode, c.Init.Mode)
		for _, name := range c.Init.Players {
			init = appendString(init, initPlayers, name)
		}
		b = appendBytes(b, roomInit, init)
	case room.RoomAddPlayer:
		if c.Player == nil {
			return nil, fmt.Errorf("netplay: AddPlayer without player")
		}
		b = appendBytes(b, roomPlayer, appendString(nil, playerName, c.Player.Name))
	case room.RoomRemovePlayer:
		b = appendSigned(b, roomIndex, int64(c.Index))
	case room.RoomSelectMode:
		b = appendString(b, roomMode, c.Mode)
	case room.RoomStartGame:
	default:
		return nil, fmt.Errorf("netplay: %s is not sent to peers", c.Op)
	}
	return b, nil
}

// Decode parses a payload produced by Encode. Players always decode as
// network players.
func Decode(data []byte) (room.Message, error) {
	var msg room.Message
	err := walk(data, func(num protowire.Number, typ protowire.Type, v field) error {
		switch {
		case num == envUnit && typ == protowire.BytesType:
			c, err := decodeCommand(v.bytes)
			if err != nil {
				return err
			}
			msg = room.Message{Unit: &c}
		case num == envRoom && typ == protowire.BytesType:
			c, err := decodeRoomCommand(v.bytes)
			if err != nil {
				return err
			}
			msg = room.Message{Room: &c}
		}
		return nil
	})
	if err != nil {
		return room.Message{}, err
	}
	if msg.Unit == nil && msg.Room == nil {
		return room.Message{}, fmt.Errorf("%w: no command", ErrMalformed)
	}
	return msg, nil
}

type field struct {
	varint uint64
	bytes  []byte
}

// walk calls fn for every field of a message.
func walk(b []byte, fn func(protowire.Number, protowire.Type, field) error) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(n))
		}
		b = b[n:]

		var f field
		switch typ {
		case protowire.VarintType:
			f.varint, n = protowire.ConsumeVarint(b)
		case protowire.Fixed64Type:
			f.varint, n = protowire.ConsumeFixed64(b)
		case protowire.BytesType:
			f.bytes, n = protowire.ConsumeBytes(b)
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
		}
		if n < 0 {
			return fmt.Errorf("%w: field %d: %v", ErrMalformed, num, protowire.ParseError(n))
		}
		b = b[n:]
		if err := fn(num, typ, f); err != nil {
			return err
		}
	}
	return nil
}

func signed(v uint64) int64 {
	return protowire.DecodeZigZag(v)
}

func decodeCommand(b []byte) (tetris.Command, error) {
	var c tetris.Command
	err := walk(b, func(num protowire.Number, typ protowire.Type, f field) error {
		switch num {
		case cmdUnit:
			c.Unit = int(signed(f.varint))
		case cmdOp:
			c.Op = tetris.Op(f.varint)
		case cmdN:
			c.N = int32(signed(f.varint))
		case cmdCount:
			c.Count = int(signed(f.varint))
		case cmdGap:
			c.Gap = int(signed(f.varint))
		case cmdMino:
			m, err := decodeMino(f.bytes)
			if err != nil {
				return err
			}
			c.Mino = &m
		}
		return nil
	})
	if err != nil {
		return c, err
	}
	if !c.Op.Valid() || invalidFields(c) {
		return c, fmt.Errorf("%w: invalid command %s", ErrMalformed, c)
	}
	return c, nil
}

// invalidFields reports field values no sender produces.
func invalidFields(c tetris.Command) bool {
	return c.Unit < 0 || c.Count < 0 || c.N < 0
}

func decodeMino(b []byte) (tetris.Mino, error) {
	var m tetris.Mino
	var haveBlocks, haveColors bool
	err := walk(b, func(num protowire.Number, typ protowire.Type, f field) error {
		switch num {
		case minoShape:
			if f.varint >= uint64(len(tetris.Shapes)) {
				return fmt.Errorf("%w: shape %d", ErrMalformed, f.varint)
			}
			m.Shape = tetris.Shape(f.varint)
		case minoOriginX:
			m.Origin.X = math.Float64frombits(f.varint)
		case minoOriginY:
			m.Origin.Y = math.Float64frombits(f.varint)
		case minoRotation:
			m.Rotation = int(f.varint % 4)
		case minoBlocks:
			p := f.bytes
			for i := range m.Blocks {
				x, n := protowire.ConsumeVarint(p)
				if n < 0 {
					return fmt.Errorf("%w: blocks", ErrMalformed)
				}
				p = p[n:]
				y, n := protowire.ConsumeVarint(p)
				if n < 0 {
					return fmt.Errorf("%w: blocks", ErrMalformed)
				}
				p = p[n:]
				m.Blocks[i] = core.V(int(signed(x)), int(signed(y)))
			}
			haveBlocks = true
		case minoColors:
			if len(f.bytes) != len(m.Colors) {
				return fmt.Errorf("%w: %d colors", ErrMalformed, len(f.bytes))
			}
			for i, c := range f.bytes {
				if !core.Color(c).Valid() {
					return fmt.Errorf("%w: color %d", ErrMalformed, c)
				}
				m.Colors[i] = core.Color(c)
			}
			haveColors = true
		}
		return nil
	})
	if err == nil && (!haveBlocks || !haveColors) {
		err = fmt.Errorf("%w: incomplete piece", ErrMalformed)
	}
	if err == nil {
		err = checkPlacement(m)
	}
	return m, err
}

// maxCoord bounds every coordinate a dealt piece can have in any well this
// game builds.
const maxCoord = 64

func checkPlacement(m tetris.Mino) error {
	for _, v := range m.Blocks {
		if abs(v.X) > maxCoord || abs(v.Y) > maxCoord {
			return fmt.Errorf("%w: block %v out of range", ErrMalformed, v)
		}
	}
	for _, f := range []float64{m.Origin.X, m.Origin.Y} {
		if math.IsNaN(f) || math.Abs(f) > maxCoord {
			return fmt.Errorf("%w: pivot %v out of range", ErrMalformed, m.Origin)
		}
	}
	return nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func decodeRoomCommand(b []byte) (room.RoomCommand, error) {
	var c room.RoomCommand
	err := walk(b, func(num protowire.Number, typ protowire.Type, f field) error {
		switch num {
		case roomOp:
			c.Op = room.RoomOp(f.varint)
		case roomInit:
			var s room.InitState
			err := walk(f.bytes, func(num protowire.Number, _ protowire.Type, f field) error {
				switch num {
				case initMode:
					s.Mode = string(f.bytes)
				case initPlayers:
					s.Players = append(s.Players, string(f.bytes))
				}
				return nil
			})
			if err != nil {
				return err
			}
			c.Init = &s
		case roomPlayer:
			p := room.Player{Kind: room.NetworkPlayer{}}
			err := walk(f.bytes, func(num protowire.Number, _ protowire.Type, f field) error {
				if num == playerName {
					p.Name = string(f.bytes)
				}
				return nil
			})
			if err != nil {
				return err
			}
			c.Player = &p
		case roomIndex:
			c.Index = int(signed(f.varint))
		case roomMode:
			c.Mode = string(f.bytes)
		}
		return nil
	})
	if err != nil {
		return c, err
	}

	switch c.Op {
	case room.RoomInit:
		if c.Init == nil {
			return c, fmt.Errorf("%w: Init without state", ErrMalformed)
		}
	case room.RoomAddPlayer:
		if c.Player == nil {
			return c, fmt.Errorf("%w: AddPlayer without player", ErrMalformed)
		}
	case room.RoomStartGame, room.RoomRemovePlayer, room.RoomSelectMode:
	default:
		return c, fmt.Errorf("%w: room command %d", ErrMalformed, c.Op)
	}
	return c, nil
}
