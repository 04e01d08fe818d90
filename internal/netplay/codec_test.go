package netplay

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/vovakirdan/tui-tetris/internal/core"
	"github.com/vovakirdan/tui-tetris/internal/games/tetris"
	"github.com/vovakirdan/tui-tetris/internal/room"
)

func TestUnitCommandRoundTrip(t *testing.T) {
	m := tetris.NewMino(tetris.ShapeI)
	m.Center(10)
	m.RotR()
	m.Translate(core.V(-1, 3))

	cmds := []tetris.Command{
		tetris.MoveLeftCmd(0),
		tetris.RotateRightCmd(3),
		tetris.GravityCmd(1, 1),
		tetris.GravityCmd(1, tetris.HardDrop),
		tetris.StoreCmd(2),
		tetris.ClearLinesCmd(0),
		tetris.NextMinoCmd(1, m),
		tetris.SendLinesCmd(0, 4),
		tetris.AddLinesCmd(1, 1, 7),
		tetris.AddLinesCmd(1, 2, 0),
		tetris.PreGameOfLifeCmd(0),
		tetris.GameOfLifeCmd(0),
	}

	for _, cmd := range cmds {
		t.Run(cmd.String(), func(t *testing.T) {
			data, err := Encode(room.Message{Unit: &cmd})
			require.NoError(t, err)
			require.LessOrEqual(t, len(data), MaxPayload)

			got, err := Decode(data)
			require.NoError(t, err)
			require.NotNil(t, got.Unit)
			assert.Nil(t, got.Room)
			assert.Equal(t, cmd, *got.Unit)
		})
	}
}

func TestRoomCommandRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		cmd  room.RoomCommand
	}{
		{"init", room.InitCmd(room.InitState{Mode: "versus", Players: []string{"alice", "bob"}})},
		{"init empty", room.InitCmd(room.InitState{Mode: "marathon"})},
		{"start", room.StartGameCmd()},
		{"select mode", room.SelectModeCmd("sprint")},
		{"remove", room.RemovePlayerCmd(2)},
		{"add", room.AddPlayerCmd(room.Player{Name: "carol", Kind: room.NetworkPlayer{}})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := Encode(room.Message{Room: &tt.cmd})
			require.NoError(t, err)

			got, err := Decode(data)
			require.NoError(t, err)
			require.NotNil(t, got.Room)
			assert.Equal(t, tt.cmd, *got.Room)
		})
	}
}

func TestAddPlayerDecodesAsNetwork(t *testing.T) {
	cmd := room.AddPlayerCmd(room.Player{Name: "alice", Kind: room.LocalPlayer{Input: core.Keyboard(0)}})
	data, err := Encode(room.Message{Room: &cmd})
	require.NoError(t, err)

	got, err := Decode(data)
	require.NoError(t, err)
	require.NotNil(t, got.Room.Player)
	assert.Equal(t, "alice", got.Room.Player.Name)
	assert.Equal(t, room.NetworkPlayer{}, got.Room.Player.Kind)
}

func TestStartFromSaveIsNotEncoded(t *testing.T) {
	cmd := room.StartGameFromSaveCmd(&tetris.Unit{})
	_, err := Encode(room.Message{Room: &cmd})
	assert.Error(t, err)

	_, err = Encode(room.Message{})
	assert.Error(t, err)
}

func TestDecodeMalformed(t *testing.T) {
	valid := tetris.NextMinoCmd(0, tetris.NewMino(tetris.ShapeT))
	good, err := Encode(room.Message{Unit: &valid})
	require.NoError(t, err)

	unitMsg := func(body []byte) []byte {
		return appendBytes(nil, envUnit, body)
	}
	badShape := appendMino(nil, tetris.NewMino(tetris.ShapeO))
	badShape = appendVarint(badShape, minoShape, 9)

	farAway := tetris.NewMino(tetris.ShapeI)
	farAway.Translate(core.V(0, -100000))
	far := tetris.NextMinoCmd(0, farAway)
	farCmd, err := Encode(room.Message{Unit: &far})
	require.NoError(t, err)

	nanPivot := tetris.NewMino(tetris.ShapeT)
	nanPivot.Origin.X = math.NaN()
	nan := tetris.NextMinoCmd(0, nanPivot)
	nanCmd, err := Encode(room.Message{Unit: &nan})
	require.NoError(t, err)

	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"garbage", []byte{0xFF, 0xFF, 0xFF}},
		{"truncated", good[:len(good)-3]},
		{"unknown op", unitMsg(appendVarint(nil, cmdOp, 99))},
		{"negative unit", unitMsg(appendSigned(appendVarint(nil, cmdOp, uint64(tetris.OpStore)), cmdUnit, -1))},
		{"bad shape", unitMsg(appendBytes(appendVarint(nil, cmdOp, uint64(tetris.OpNextMino)), cmdMino, badShape))},
		{"piece far outside the well", farCmd},
		{"piece with NaN pivot", nanCmd},
		{"incomplete piece", unitMsg(appendBytes(appendVarint(nil, cmdOp, uint64(tetris.OpNextMino)), cmdMino, appendVarint(nil, minoShape, 1)))},
		{"unknown room op", appendBytes(nil, envRoom, appendVarint(nil, roomOp, 42))},
		{"init without state", appendBytes(nil, envRoom, appendVarint(nil, roomOp, uint64(room.RoomInit)))},
		{"save from peer", appendBytes(nil, envRoom, appendVarint(nil, roomOp, uint64(room.RoomStartGameFromSave)))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.data)
			if !errors.Is(err, ErrMalformed) {
				t.Errorf("Decode() error = %v, expected ErrMalformed", err)
			}
		})
	}
}

func TestDecodeSkipsUnknownFields(t *testing.T) {
	cmd := tetris.SendLinesCmd(1, 3)
	body := appendCommand(nil, cmd)
	body = appendString(body, 15, "from a newer build")
	body = protowire.AppendTag(body, 16, protowire.Fixed32Type)
	body = protowire.AppendFixed32(body, 7)

	got, err := Decode(appendBytes(nil, envUnit, body))
	require.NoError(t, err)
	assert.Equal(t, cmd, *got.Unit)
}
