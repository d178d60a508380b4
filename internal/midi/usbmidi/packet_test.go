package usbmidi

import (
	"testing"

	"github.com/leandrodaf/picoadk/sdk/contracts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePacket(t *testing.T) {
	p, err := ParsePacket([]byte{0x19, 0x90, 60, 100, 0xFF})
	require.NoError(t, err)
	assert.Equal(t, contracts.Packet{0x19, 0x90, 60, 100}, p)
	assert.Equal(t, uint8(1), p.Cable())
	assert.Equal(t, uint8(CINNoteOn), p.CIN())

	_, err = ParsePacket([]byte{0x09, 0x90})
	assert.ErrorIs(t, err, ErrShortPacket)
}

func TestMessageLength(t *testing.T) {
	tests := map[byte]int{
		0x40: 0,
		0x80: 3,
		0x9F: 3,
		0xB0: 3,
		0xC3: 2,
		0xD0: 2,
		0xE0: 3,
		0xF0: 0,
		0xF1: 2,
		0xF2: 3,
		0xF6: 1,
		0xF7: 0,
		0xF8: 1,
	}
	for status, want := range tests {
		assert.Equal(t, want, MessageLength(status), "status 0x%02X", status)
	}
}

func TestFromMessage(t *testing.T) {
	tests := []struct {
		name    string
		cable   uint8
		msg     []byte
		want    contracts.Packet
		wantErr error
	}{
		{"note on", 0, []byte{0x93, 60, 100}, contracts.Packet{0x09, 0x93, 60, 100}, nil},
		{"cable", 5, []byte{0xB0, 7, 1}, contracts.Packet{0x5B, 0xB0, 7, 1}, nil},
		{"program change", 0, []byte{0xC0, 4}, contracts.Packet{0x0C, 0xC0, 4, 0}, nil},
		{"clock", 0, []byte{0xF8}, contracts.Packet{0x0F, 0xF8, 0, 0}, nil},
		{"song position", 0, []byte{0xF2, 1, 2}, contracts.Packet{0x03, 0xF2, 1, 2}, nil},
		{"extra bytes ignored", 0, []byte{0x80, 60, 0, 99}, contracts.Packet{0x08, 0x80, 60, 0}, nil},
		{"cable out of range", 16, []byte{0x90, 60, 100}, contracts.Packet{}, ErrInvalidCable},
		{"empty", 0, nil, contracts.Packet{}, ErrNotStatus},
		{"running status", 0, []byte{60, 100}, contracts.Packet{}, ErrNotStatus},
		{"sysex", 0, []byte{0xF0, 1, 0xF7}, contracts.Packet{}, ErrUnsupported},
		{"truncated", 0, []byte{0x90, 60}, contracts.Packet{}, ErrShortPacket},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := FromMessage(tt.cable, tt.msg)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, p)
		})
	}
}

func TestSplitMessages(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want [][]byte
	}{
		{
			name: "back to back",
			data: []byte{0x90, 60, 100, 0x80, 60, 0, 0xB1, 1, 2},
			want: [][]byte{{0x90, 60, 100}, {0x80, 60, 0}, {0xB1, 1, 2}},
		},
		{
			name: "sysex skipped",
			data: []byte{0xF0, 0x7E, 0x01, 0xF7, 0x90, 1, 2},
			want: [][]byte{{0x90, 1, 2}},
		},
		{
			name: "stray data and end of exclusive",
			data: []byte{0x12, 0xF7, 0xC0, 3},
			want: [][]byte{{0xC0, 3}},
		},
		{
			name: "real-time byte inside a message",
			data: []byte{0x90, 0x3C, 0xF8, 0x64},
			want: [][]byte{{0xF8}, {0x90, 0x3C, 0x64}},
		},
		{
			name: "real-time bytes inside sysex",
			data: []byte{0xF0, 0x7E, 0xFA, 0x01, 0xF7, 0xC0, 3},
			want: [][]byte{{0xFA}, {0xC0, 3}},
		},
		{
			name: "message cut short by a new status",
			data: []byte{0x90, 60, 0xF8, 0x80, 60, 0},
			want: [][]byte{{0xF8}, {0x80, 60, 0}},
		},
		{
			name: "new status drops incomplete message",
			data: []byte{0x90, 60, 0xB0, 7, 100},
			want: [][]byte{{0xB0, 7, 100}},
		},
		{
			name: "system common",
			data: []byte{0xF6, 0xF2, 0x10, 0x20, 0x40},
			want: [][]byte{{0xF6}, {0xF2, 0x10, 0x20}},
		},
		{
			name: "truncated tail ignored",
			data: []byte{0x90, 60, 100, 0x90, 61},
			want: [][]byte{{0x90, 60, 100}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got [][]byte
			SplitMessages(tt.data, func(msg []byte) {
				got = append(got, append([]byte(nil), msg...))
			})
			assert.Equal(t, tt.want, got)
		})
	}
}
