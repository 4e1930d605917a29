package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSequence(t *testing.T) {
	dir := writeSequenceDir(t, validDoc)

	s, err := LoadSequence(dir)
	require.NoError(t, err)
	assert.Equal(t, "demo", s.Name)
	assert.Equal(t, uint64(8), s.Length)
	require.Len(t, s.Channels, 1)
	assert.Equal(t, "ao0", s.Channels[0].Name)
}

func TestLoadSequenceSplitAcrossFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "header.cue"), []byte(`
sequence: {
	name:        "split"
	sample_rate: 1000.0
	length:      4
}
`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "channels.cue"), []byte(`
channel: ao0: {
	kind:    "analog"
	default: 0.0
	records: [{start: 0, instr: {type: "const", args: {value: 1.0}}}]
}
`), 0o644))

	s, err := LoadSequence(dir)
	require.NoError(t, err)
	assert.Equal(t, "split", s.Name)
	require.Len(t, s.Channels, 1)
}

func TestLoadSequenceErrors(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(t *testing.T) string
		wantCode string
	}{
		{
			name:     "missing directory",
			setup:    func(t *testing.T) string { return filepath.Join(t.TempDir(), "nope") },
			wantCode: ErrCodeNotFound,
		},
		{
			name: "path is a file",
			setup: func(t *testing.T) string {
				path := filepath.Join(t.TempDir(), "seq.cue")
				require.NoError(t, os.WriteFile(path, []byte(validDoc), 0o644))
				return path
			},
			wantCode: ErrCodeNotFound,
		},
		{
			name:     "no CUE files",
			setup:    func(t *testing.T) string { return t.TempDir() },
			wantCode: ErrCodeNoFiles,
		},
		{
			name: "malformed CUE",
			setup: func(t *testing.T) string {
				return writeSequenceDir(t, `sequence: { name: `)
			},
			wantCode: ErrCodeLoadFailed,
		},
		{
			name: "missing sequence header",
			setup: func(t *testing.T) string {
				return writeSequenceDir(t, `channel: ao0: {kind: "analog", default: 0.0, records: []}`)
			},
			wantCode: ErrCodeDecodeError,
		},
		{
			name: "missing required instruction argument",
			setup: func(t *testing.T) string {
				return writeSequenceDir(t, `
sequence: {
	name:        "demo"
	sample_rate: 1000.0
	length:      8
}
channel: ao0: {
	kind:    "analog"
	default: 0.0
	records: [{start: 0, instr: {type: "sine", args: {amplitude: 2.0}}}]
}
`)
			},
			wantCode: "MISSING_ARGUMENT",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadSequence(tt.setup(t))
			require.Error(t, err)

			var loadErr *LoadError
			require.ErrorAs(t, err, &loadErr)
			assert.Equal(t, tt.wantCode, loadErr.Code)
		})
	}
}

func TestFindCUEFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.cue"), []byte("x: 1"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignore"), 0o644))
	sub := filepath.Join(dir, "sub")
	require.NoError(t, os.Mkdir(sub, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(sub, "b.cue"), []byte("y: 2"), 0o644))

	files, err := FindCUEFiles(dir)
	require.NoError(t, err)
	assert.Len(t, files, 2)
}
