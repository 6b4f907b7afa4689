// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package tapbridge

import (
	"bufio"
	"encoding/hex"
	"io"
	"os"
	"strings"

	"netfabric.dev/simulator/internal/logging"
	"netfabric.dev/simulator/internal/simerr"
)

// FileTap reads hex-encoded packets from an input file, one per non-empty
// non-comment line, and appends each processed frame, hex-encoded, to a
// sibling "<path>_out.txt" file (spec.md §4.8, §6 file formats).
type FileTap struct {
	path   string
	in     *bufio.Scanner
	inFile *os.File
	out    *os.File
	log    *logging.Logger
}

// OpenFileTap opens path for reading and creates/appends "<path>_out.txt"
// for writing.
func OpenFileTap(path string, log *logging.Logger) (*FileTap, error) {
	in, err := os.Open(path)
	if err != nil {
		return nil, simerr.Wrap(err, simerr.KindConfigMissingPacketFile, "failed to open packet file "+path)
	}
	out, err := os.OpenFile(path+"_out.txt", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		in.Close()
		return nil, simerr.Wrap(err, simerr.KindTapIO, "failed to open output file for "+path)
	}
	if log == nil {
		log = logging.Discard()
	}
	return &FileTap{path: path, in: bufio.NewScanner(in), inFile: in, out: out, log: log.With("tap", path)}, nil
}

// Recv returns the next decoded packet from the file, skipping blank and
// "#"-prefixed comment lines, and warn-and-skipping any line that fails
// to decode as hex. io.EOF is returned once every line has been consumed.
func (t *FileTap) Recv() ([]byte, error) {
	for t.in.Scan() {
		line := strings.TrimSpace(t.in.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		frame, err := hex.DecodeString(line)
		if err != nil {
			t.log.Warn("skipping invalid hex packet line", "error", err)
			continue
		}
		return frame, nil
	}
	if err := t.in.Err(); err != nil {
		return nil, simerr.Wrap(err, simerr.KindTapIO, "failed to read packet file "+t.path)
	}
	return nil, io.EOF
}

// Send appends frame to the output file, hex-encoded, one line per call.
func (t *FileTap) Send(frame []byte) error {
	line := hex.EncodeToString(frame) + "\n"
	if _, err := t.out.WriteString(line); err != nil {
		return simerr.Wrap(err, simerr.KindTapIO, "failed to append to output file for "+t.path)
	}
	return nil
}

// Close releases both the input and output file handles.
func (t *FileTap) Close() error {
	outErr := t.out.Close()
	inErr := t.inFile.Close()
	if outErr != nil {
		return simerr.Wrap(outErr, simerr.KindTapIO, "failed to close output file for "+t.path)
	}
	if inErr != nil {
		return simerr.Wrap(inErr, simerr.KindTapIO, "failed to close input file "+t.path)
	}
	return nil
}

// ProcessFile iterates every packet in the tap synchronously, passing it
// to process and appending whatever process returns (spec.md §4.8:
// "File-mode execution is eager and non-interactive").
func ProcessFile(t *FileTap, process func(frame []byte) []byte) error {
	for {
		frame, err := t.Recv()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		out := process(frame)
		if out == nil {
			continue
		}
		if err := t.Send(out); err != nil {
			return err
		}
	}
}
