// Package chunker splits extracted text into overlapping chunks for
// embedding.
package chunker

import "strings"

// Config controls the chunking behaviour. Sizes are in characters (runes).
type Config struct {
	Size    int
	Overlap int
}

// Chunk is one slice of the source text. Positions are rune offsets into
// the source; Text is trimmed.
type Chunk struct {
	Text      string `json:"text"`
	StartPos  int    `json:"start_pos"`
	EndPos    int    `json:"end_pos"`
	ChunkSize int    `json:"chunk_size"`
	Index     int    `json:"chunk_index"`
}

// Chunker is stateless and safe for concurrent use.
type Chunker struct {
	cfg Config
}

// New returns a Chunker with the given configuration.
// Zero-value fields are replaced with sensible defaults.
func New(cfg Config) *Chunker {
	if cfg.Size <= 0 {
		cfg.Size = 1000
	}
	if cfg.Overlap < 0 || cfg.Overlap >= cfg.Size {
		cfg.Overlap = cfg.Size / 5
	}
	return &Chunker{cfg: cfg}
}

// Split cuts text into chunks of at most Size runes. A chunk prefers to end
// just after the last '.' past its midpoint, else at the last space past its
// midpoint. Consecutive chunks share Overlap runes. Blank chunks are dropped.
func (c *Chunker) Split(text string) []Chunk {
	runes := []rune(text)
	n := len(runes)
	size, half := c.cfg.Size, c.cfg.Size/2

	var chunks []Chunk
	for start := 0; start < n; {
		end := start + size
		if end < n {
			if p := lastIndex(runes, '.', start, end); p > start+half {
				end = p + 1
			} else if s := lastIndex(runes, ' ', start, end); s > start+half {
				end = s
			}
		} else {
			end = n
		}

		if t := strings.TrimSpace(string(runes[start:end])); t != "" {
			chunks = append(chunks, Chunk{
				Text:      t,
				StartPos:  start,
				EndPos:    end,
				ChunkSize: len([]rune(t)),
				Index:     len(chunks),
			})
		}

		if end >= n {
			break
		}
		next := end - c.cfg.Overlap
		if next <= start {
			next = end
		}
		start = next
	}
	return chunks
}

func lastIndex(runes []rune, r rune, from, to int) int {
	for i := to - 1; i >= from; i-- {
		if runes[i] == r {
			return i
		}
	}
	return -1
}
