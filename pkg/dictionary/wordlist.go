package dictionary

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
)

// ReadWordList feeds "word frequency" lines from r into b. Blank lines and
// lines starting with '#' are ignored; entries with a non-positive
// frequency are counted as skipped.
func ReadWordList(r io.Reader, b *Builder) (added, skipped int, err error) {
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 2 {
			return added, skipped, fmt.Errorf("word list line %d: expected \"word frequency\", got %q", lineNo, line)
		}
		freq, convErr := strconv.Atoi(fields[1])
		if convErr != nil {
			return added, skipped, fmt.Errorf("word list line %d: bad frequency %q: %w", lineNo, fields[1], convErr)
		}
		if freq <= 0 {
			skipped++
			continue
		}
		if err := b.Add(fields[0], freq); err != nil {
			return added, skipped, fmt.Errorf("word list line %d: %w", lineNo, err)
		}
		added++
	}
	if err := scanner.Err(); err != nil {
		return added, skipped, fmt.Errorf("failed to read word list: %w", err)
	}
	log.Debugf("Processed %d words (%d ignored)", added+skipped, skipped)
	return added, skipped, nil
}
