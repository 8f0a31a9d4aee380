package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectOrders(t *testing.T) {
	all, err := selectOrders("all", time.Millisecond)
	require.NoError(t, err)
	assert.Len(t, all, 4)

	one, err := selectOrders("world-first-delay", 5*time.Millisecond)
	require.NoError(t, err)
	require.Len(t, one, 1)
	assert.True(t, one[0].worldFirst)
	assert.Equal(t, 5*time.Millisecond, one[0].delay)

	_, err = selectOrders("sideways", 0)
	assert.Error(t, err)
}

func TestRunOrder(t *testing.T) {
	orders, err := selectOrders("all", 20*time.Millisecond)
	require.NoError(t, err)

	for _, o := range orders {
		t.Run(o.name, func(t *testing.T) {
			var out bytes.Buffer
			err := runOrder(context.Background(), &out, o, config{capacity: 1, dump: true})
			require.NoError(t, err)
			assert.Contains(t, out.String(), "hello world")
			assert.Contains(t, out.String(), "talk")
		})
	}
}

func TestRootCommand(t *testing.T) {
	t.Run("runs a single order", func(t *testing.T) {
		var out bytes.Buffer
		cmd := newRootCmd()
		cmd.SetOut(&out)
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs([]string{"--order", "hello-first", "--log-level", "error"})
		require.NoError(t, cmd.Execute())
		assert.Contains(t, out.String(), "hello world")
	})

	t.Run("rejects bad input", func(t *testing.T) {
		tests := [][]string{
			{"--order", "sideways"},
			{"--capacity", "0"},
			{"--log-level", "chatty"},
		}
		for _, args := range tests {
			cmd := newRootCmd()
			cmd.SetOut(&bytes.Buffer{})
			cmd.SetErr(&bytes.Buffer{})
			cmd.SetArgs(args)
			assert.Error(t, cmd.Execute(), args)
		}
	})
}

func TestSnapshots(t *testing.T) {
	dir := t.TempDir()

	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--order", "world-first", "--log-level", "error", "--snapshot-dir", dir})
	require.NoError(t, cmd.Execute())

	path := filepath.Join(dir, "world-first.json")
	require.FileExists(t, path)

	var out bytes.Buffer
	cmd = newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"inspect", path})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "world")
	assert.Contains(t, out.String(), "talk")

	t.Run("rejects incomplete snapshots", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`[{"actor":"world","channel":"talk"}]`), 0o644))

		var out bytes.Buffer
		err := inspect(&out, bad)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "missing required field 'message_type'")
	})
}
