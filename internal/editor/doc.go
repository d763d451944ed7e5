// Package editor implements the document model: a line-oriented rune
// buffer addressed by (line, column) points, and an undo history built
// on diff patches. Buffers normalize line endings to LF and always
// hold at least one line.
package editor
