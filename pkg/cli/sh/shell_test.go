package sh

import (
	"bytes"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sius/emotion/pkg/channel/websocket"
	"github.com/sius/emotion/pkg/tmcl"
	"github.com/sius/emotion/pkg/tmcl/tmcltest"
)

func TestOpenRelay(t *testing.T) {
	module := tmcltest.NewModule(nil)
	server := httptest.NewServer(websocket.NewServer(tmcl.NewClient(module)))
	defer server.Close()

	conf := NewConfig()
	conf.Device = "ws" + strings.TrimPrefix(server.URL, "http")
	s := New(conf)
	s.Shell.SetOut(&bytes.Buffer{})

	conf.Address = 300
	err := s.Open("")
	require.Error(t, err)
	require.Contains(t, err.Error(), "address 300 out of range")
	require.Nil(t, s.Conn)

	conf.Address, conf.Motor = 44, 1
	require.NoError(t, s.Open(""))
	defer s.Close()
	require.NoError(t, s.Shell.Process("send", "mst"))
	cmds := module.Commands()
	require.Len(t, cmds, 1)
	require.Equal(t, byte(44), cmds[0].Address)
	require.Equal(t, byte(1), cmds[0].Motor)
	require.Equal(t, tmcl.OpMST, cmds[0].Opcode)
}
