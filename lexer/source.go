package lexer

// SourceManager owns the registered source buffers and maps between opaque
// source locations and per-buffer byte offsets.
//
// Buffers are immutable once registered. Each buffer is stored with a
// trailing NUL sentinel so scanners may always read one byte past the last
// content byte; the sentinel is addressable but never a valid content byte.

import (
	"fmt"
	"os"
)

// BufferID identifies a buffer registered with a SourceManager.
type BufferID int

// InvalidBufferID is returned by lookups that fail to locate a buffer.
const InvalidBufferID BufferID = -1

// SourceLoc identifies a byte across all buffers of one SourceManager.
// The zero value is invalid.
type SourceLoc struct {
	global int
}

// IsValid reports whether the location points into a registered buffer.
func (l SourceLoc) IsValid() bool { return l.global > 0 }

// Advanced returns the location n bytes further into the same buffer.
func (l SourceLoc) Advanced(n int) SourceLoc {
	if !l.IsValid() {
		return SourceLoc{}
	}
	return SourceLoc{global: l.global + n}
}

type sourceBuffer struct {
	name string
	data []byte // content plus trailing NUL sentinel
	base int    // global offset of the first content byte
}

// SourceManager registers buffers and resolves locations.
type SourceManager struct {
	buffers []sourceBuffer
	next    int

	codeCompletionBuffer BufferID
	codeCompletionOffset int
}

// NewSourceManager creates an empty source manager.
func NewSourceManager() *SourceManager {
	return &SourceManager{
		next:                 1, // keep the zero SourceLoc invalid
		codeCompletionBuffer: InvalidBufferID,
	}
}

// AddBuffer registers a copy of contents under the given name and returns
// its buffer ID. The copy is NUL-terminated internally.
func (m *SourceManager) AddBuffer(name string, contents []byte) BufferID {
	data := make([]byte, len(contents)+1)
	copy(data, contents)
	id := BufferID(len(m.buffers))
	m.buffers = append(m.buffers, sourceBuffer{name: name, data: data, base: m.next})
	m.next += len(contents) + 1 // reserve a slot for the sentinel as well
	return id
}

// AddFile reads the file at path and registers it as a buffer.
func (m *SourceManager) AddFile(path string) (BufferID, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return InvalidBufferID, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return m.AddBuffer(path, contents), nil
}

// BufferData returns the buffer contents including the NUL sentinel.
func (m *SourceManager) BufferData(id BufferID) []byte {
	return m.buffers[id].data
}

// BufferName returns the name the buffer was registered under.
func (m *SourceManager) BufferName(id BufferID) string {
	return m.buffers[id].name
}

// BufferRange returns the location of the buffer's first byte and its
// content length, excluding the sentinel.
func (m *SourceManager) BufferRange(id BufferID) (SourceLoc, int) {
	b := m.buffers[id]
	return SourceLoc{global: b.base}, len(b.data) - 1
}

// OffsetOfLocation returns loc's byte offset within the given buffer.
func (m *SourceManager) OffsetOfLocation(loc SourceLoc, id BufferID) int {
	return loc.global - m.buffers[id].base
}

// BufferContainingLocation returns the buffer loc points into, or
// InvalidBufferID. The sentinel byte counts as part of its buffer so
// end-of-file locations resolve.
func (m *SourceManager) BufferContainingLocation(loc SourceLoc) BufferID {
	if !loc.IsValid() {
		return InvalidBufferID
	}
	for i, b := range m.buffers {
		if loc.global >= b.base && loc.global < b.base+len(b.data) {
			return BufferID(i)
		}
	}
	return InvalidBufferID
}

// LocationForOffset returns the location of the given offset in a buffer.
func (m *SourceManager) LocationForOffset(id BufferID, offset int) SourceLoc {
	return SourceLoc{global: m.buffers[id].base + offset}
}

// SetCodeCompletionPoint marks the in-place NUL at offset in the given
// buffer as a code-completion anchor.
func (m *SourceManager) SetCodeCompletionPoint(id BufferID, offset int) {
	m.codeCompletionBuffer = id
	m.codeCompletionOffset = offset
}

// CodeCompletionBuffer returns the buffer holding the completion anchor.
func (m *SourceManager) CodeCompletionBuffer() BufferID { return m.codeCompletionBuffer }

// CodeCompletionOffset returns the anchor offset within its buffer.
func (m *SourceManager) CodeCompletionOffset() int { return m.codeCompletionOffset }

// LineAndColumn computes the 1-indexed line and column of loc. Columns are
// measured in bytes. Used for error reporting; the hot path never calls it.
func (m *SourceManager) LineAndColumn(loc SourceLoc) (line, column int) {
	id := m.BufferContainingLocation(loc)
	if id == InvalidBufferID {
		return 0, 0
	}
	data := m.buffers[id].data
	offset := m.OffsetOfLocation(loc, id)
	line, column = 1, 1
	for i := 0; i < offset && i < len(data); i++ {
		if data[i] == '\n' {
			line++
			column = 1
		} else {
			column++
		}
	}
	return line, column
}
