// Package pgn splits multi-game PGN streams into per-game text so that a
// malformed game can be isolated and skipped without aborting the rest of
// the stream.
package pgn

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// maxLineBytes bounds a single PGN line; exports with embedded comments
// can produce very long movetext lines.
const maxLineBytes = 1024 * 1024

// Split reads a PGN stream and calls fn with the raw text of each game.
// Game boundaries are detected at [Event headers, matching how lichess and
// chess.com exports delimit games. If fn returns an error, Split stops and
// returns it.
func Split(r io.Reader, fn func(gameText string) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)

	var gameText strings.Builder
	sawMoves := false

	flush := func() error {
		if gameText.Len() == 0 {
			return nil
		}
		text := gameText.String()
		gameText.Reset()
		sawMoves = false
		if strings.TrimSpace(text) == "" {
			return nil
		}
		return fn(text)
	}

	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)

		switch {
		case strings.HasPrefix(trimmed, "[Event "):
			if err := flush(); err != nil {
				return err
			}
		case strings.HasPrefix(trimmed, "["):
			// A header block after movetext starts a new game even
			// without an [Event tag.
			if sawMoves {
				if err := flush(); err != nil {
					return err
				}
			}
		case trimmed != "":
			sawMoves = true
		}

		gameText.WriteString(line)
		gameText.WriteString("\n")
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading PGN: %w", err)
	}

	return flush()
}

// SplitAll collects every game's raw text. Prefer Split for large streams.
func SplitAll(r io.Reader) ([]string, error) {
	var games []string
	err := Split(r, func(text string) error {
		games = append(games, text)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return games, nil
}
