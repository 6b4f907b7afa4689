// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package tapbridge

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFileTapRecvDecodesHexLinesAndSkipsComments(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "in.txt")
	require.NoError(t, os.WriteFile(path, []byte("# comment\n\ndeadbeef\nc0ffee\n"), 0o644))

	tap, err := OpenFileTap(path, nil)
	require.NoError(t, err)
	defer tap.Close()

	frame, err := tap.Recv()
	require.NoError(t, err)
	require.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, frame)

	frame, err = tap.Recv()
	require.NoError(t, err)
	require.Equal(t, []byte{0xc0, 0xff, 0xee}, frame)

	_, err = tap.Recv()
	require.ErrorIs(t, err, io.EOF)
}

func TestFileTapRecvSkipsInvalidHexLines(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "in.txt")
	require.NoError(t, os.WriteFile(path, []byte("not-hex\ndeadbeef\n"), 0o644))

	tap, err := OpenFileTap(path, nil)
	require.NoError(t, err)
	defer tap.Close()

	frame, err := tap.Recv()
	require.NoError(t, err)
	require.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, frame)

	_, err = tap.Recv()
	require.ErrorIs(t, err, io.EOF)
}

func TestFileTapSendAppendsHexLinesToOutFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "in.txt")
	require.NoError(t, os.WriteFile(path, []byte(""), 0o644))

	tap, err := OpenFileTap(path, nil)
	require.NoError(t, err)

	require.NoError(t, tap.Send([]byte{0xaa, 0xbb}))
	require.NoError(t, tap.Send([]byte{0xcc}))
	require.NoError(t, tap.Close())

	out, err := os.ReadFile(path + "_out.txt")
	require.NoError(t, err)
	require.Equal(t, "aabb\ncc\n", string(out))
}

func TestFileTapOpenMissingFileReturnsError(t *testing.T) {
	_, err := OpenFileTap(filepath.Join(t.TempDir(), "missing.txt"), nil)
	require.Error(t, err)
}

func TestProcessFileAppendsOnlyNonNilResults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "in.txt")
	require.NoError(t, os.WriteFile(path, []byte("aa\nbb\ncc\n"), 0o644))

	tap, err := OpenFileTap(path, nil)
	require.NoError(t, err)

	err = ProcessFile(tap, func(frame []byte) []byte {
		if len(frame) > 0 && frame[0] == 0xbb {
			return nil
		}
		return frame
	})
	require.NoError(t, err)
	require.NoError(t, tap.Close())

	out, err := os.ReadFile(path + "_out.txt")
	require.NoError(t, err)
	require.Equal(t, "aa\ncc\n", string(out))
}
