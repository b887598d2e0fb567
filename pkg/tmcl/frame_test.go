package tmcl_test

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sius/emotion/pkg/tmcl"
)

func TestEncode(t *testing.T) {
	testCases := []struct {
		name   string
		cmd    tmcl.Command
		expect tmcl.Frame
	}{
		{
			"MVP ABS",
			tmcl.Command{Address: 1, Opcode: tmcl.OpMVP, Type: tmcl.MVPAbsolute, Motor: 1, Value: 50000},
			tmcl.Frame{0x01, 0x04, 0x00, 0x01, 0x00, 0x00, 0xc3, 0x50, 0x19},
		},
		{
			"negative value",
			tmcl.Command{Address: 1, Opcode: tmcl.OpMVP, Type: tmcl.MVPRelative, Value: -1},
			tmcl.Frame{0x01, 0x04, 0x01, 0x00, 0xff, 0xff, 0xff, 0xff, 0x02},
		},
		{
			"min value",
			tmcl.Command{Address: 1, Opcode: tmcl.OpROR, Value: math.MinInt32},
			tmcl.Frame{0x01, 0x01, 0x00, 0x00, 0x80, 0x00, 0x00, 0x00, 0x82},
		},
		{
			"checksum wraps",
			tmcl.Command{Address: 0xff, Opcode: 0xff, Type: 0xff, Motor: 0xff, Value: -1},
			tmcl.Frame{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xf8},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expect, tc.cmd.Frame())
			require.Equal(t, tc.expect, tmcl.Encode(tc.cmd.Address, tc.cmd.Opcode, tc.cmd.Type, tc.cmd.Motor, tc.cmd.Value))
			cmd, err := tmcl.DecodeCommand(tc.expect)
			require.NoError(t, err)
			require.Equal(t, tc.cmd, cmd)
		})
	}
}

func TestChecksum(t *testing.T) {
	require.Equal(t, byte(0), tmcl.Checksum(nil))
	require.Equal(t, byte(0x19), tmcl.Checksum([]byte{0x01, 0x04, 0x00, 0x01, 0x00, 0x00, 0xc3, 0x50}))
	require.Equal(t, byte(0x00), tmcl.Checksum([]byte{0x80, 0x80}))
}

func TestDecodeReply(t *testing.T) {
	f := tmcl.Frame{2, 1, 100, 6, 0xff, 0xff, 0xff, 0xfe}
	f.Seal()
	reply, err := tmcl.DecodeReply(f)
	require.NoError(t, err)
	require.Equal(t, byte(2), reply.Address)
	require.Equal(t, byte(1), reply.Module)
	require.Equal(t, tmcl.StatusOK, reply.Status)
	require.Equal(t, tmcl.OpGAP, reply.Opcode)
	require.Equal(t, int32(-2), reply.Value)
	require.Equal(t, f, reply.Raw)
	require.True(t, reply.OK())
	require.NoError(t, reply.Err())
}

func TestReplyStatus(t *testing.T) {
	for _, status := range []byte{0, tmcl.StatusWrongChecksum, tmcl.StatusInvalidValue, tmcl.StatusLoaded, 0xff} {
		reply, err := tmcl.DecodeReply(tmcl.Reply{Address: 2, Status: status, Opcode: tmcl.OpSAP}.Frame())
		require.NoError(t, err)
		require.Equal(t, status, reply.Status)
		require.False(t, reply.OK())
		statusErr, ok := reply.Err().(*tmcl.StatusError)
		require.True(t, ok)
		require.Equal(t, status, statusErr.Status)
		require.Equal(t, tmcl.OpSAP, statusErr.Opcode)
	}
}

func TestReplyRoundTrip(t *testing.T) {
	values := []int32{0, 1, -1, 50000, -50000, math.MaxInt32, math.MinInt32, 0x01020304}
	rnd := rand.New(rand.NewSource(1))
	for i := 0; i < 200; i++ {
		values = append(values, int32(rnd.Uint32()))
	}
	for _, value := range values {
		for _, address := range []byte{0, 1, 2, 0x7f, 0xff} {
			status := byte(rnd.Intn(256))
			in := tmcl.Reply{Address: address, Module: byte(rnd.Intn(256)), Status: status, Opcode: byte(rnd.Intn(256)), Value: value}
			out, err := tmcl.DecodeReply(in.Frame())
			require.NoError(t, err)
			require.Equal(t, address, out.Address)
			require.Equal(t, status, out.Status)
			require.Equal(t, value, out.Value)
		}
	}
}

// A single bit flip moves the 8-bit sum by a power of two, which is never
// 0 modulo 256, so every single flip in bytes 0..7 is caught. The known
// weak spots are multi-byte errors, see TestChecksumWeakSpots.
func TestChecksumSensitivity(t *testing.T) {
	valid := tmcl.Reply{Address: 2, Module: 1, Status: tmcl.StatusOK, Opcode: tmcl.OpGAP, Value: 123456}.Frame()
	for pos := 0; pos < tmcl.FrameSize-1; pos++ {
		for bit := uint(0); bit < 8; bit++ {
			f := valid
			f[pos] ^= 1 << bit
			_, err := tmcl.DecodeReply(f)
			require.Truef(t, errors.Is(err, tmcl.ErrChecksum), "byte %d bit %d not detected", pos, bit)
			require.Equal(t, tmcl.ResultChecksumError, tmcl.ResultOf(err))
		}
	}
}

func TestChecksumWeakSpots(t *testing.T) {
	valid := tmcl.Reply{Address: 2, Module: 1, Status: tmcl.StatusOK, Opcode: tmcl.OpGAP, Value: 0x00010203}.Frame()

	swapped := valid
	swapped[5], swapped[7] = swapped[7], swapped[5]
	require.NotEqual(t, valid, swapped)
	reply, err := tmcl.DecodeReply(swapped)
	require.NoError(t, err, "swapped bytes are not detected by an 8-bit sum")
	require.NotEqual(t, int32(0x00010203), reply.Value)

	cancelled := valid
	cancelled[4]++
	cancelled[6]--
	_, err = tmcl.DecodeReply(cancelled)
	require.NoError(t, err, "cancelling errors are not detected by an 8-bit sum")
}
