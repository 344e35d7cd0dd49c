package cache

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanonone/trustsum/pkg/bigram"
)

func sampleGraph(t *testing.T) *bigram.Graph {
	t.Helper()
	b := bigram.NewBuilder()
	require.NoError(t, b.Add(strings.Fields("the cat sat on the mat and the cat sat again")))
	require.NoError(t, b.Add([]string{"lonely", "pair"}))
	g, err := b.Graph()
	require.NoError(t, err)
	return g
}

func TestFrame_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeFrame(&buf, []byte("payload")))
	assert.Equal(t, HeaderSize+len("payload"), buf.Len())

	got, err := readFrame(&buf)
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), got)
}

func TestFrame_Corruption(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeFrame(&buf, []byte("some payload")))
	frame := buf.Bytes()

	flipped := bytes.Clone(frame)
	flipped[len(flipped)-1] ^= 0xFF
	_, err := readFrame(bytes.NewReader(flipped))
	assert.ErrorIs(t, err, ErrChecksumMismatch)

	badMagic := bytes.Clone(frame)
	badMagic[0] = 0x00
	_, err = readFrame(bytes.NewReader(badMagic))
	assert.ErrorIs(t, err, ErrInvalidMagic)

	badVersion := bytes.Clone(frame)
	badVersion[1] = 0x7F
	_, err = readFrame(bytes.NewReader(badVersion))
	assert.ErrorIs(t, err, ErrUnsupportedVersion)

	_, err = readFrame(bytes.NewReader(frame[:len(frame)-3]))
	assert.ErrorIs(t, err, ErrIncompleteFrame)

	_, err = readFrame(bytes.NewReader(frame[:4]))
	assert.ErrorIs(t, err, ErrIncompleteFrame)
}

func TestCache_PutGet(t *testing.T) {
	c, err := Open(t.TempDir())
	require.NoError(t, err)
	g := sampleGraph(t)
	key := Key("opts", "text one")

	_, ok, err := c.Get(key)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Put(key, NewEntry(g)))
	entry, ok, err := c.Get(key)
	require.NoError(t, err)
	require.True(t, ok)

	restored, err := entry.Graph()
	require.NoError(t, err)
	assert.Equal(t, g.Labels(), restored.Labels())
	assert.Equal(t, g.Triples(), restored.Triples())

	require.NoError(t, c.Delete(key))
	require.NoError(t, c.Delete(key))
	_, ok, err = c.Get(key)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCache_CorruptEntryIsReported(t *testing.T) {
	c, err := Open(t.TempDir())
	require.NoError(t, err)
	key := Key("corrupt")
	require.NoError(t, c.Put(key, NewEntry(sampleGraph(t))))

	data, err := os.ReadFile(c.path(key))
	require.NoError(t, err)
	data[len(data)-1] ^= 0xFF
	require.NoError(t, os.WriteFile(c.path(key), data, 0o644))

	_, ok, err := c.Get(key)
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrChecksumMismatch)
}

func TestKey(t *testing.T) {
	assert.Equal(t, Key("a", "b"), Key("a", "b"))
	assert.NotEqual(t, Key("ab", "c"), Key("a", "bc"))
	assert.NotEqual(t, Key("a"), Key("a", ""))
	assert.Len(t, Key("x"), 64)
}

func TestEntry_MismatchedColumns(t *testing.T) {
	_, err := Entry{Sources: []string{"a b"}}.Graph()
	assert.Error(t, err)
}
