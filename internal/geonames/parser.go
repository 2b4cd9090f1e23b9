package geonames

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"georesolve/internal/logging"
)

const fieldCount = 19

// maxLineBytes bounds a single dump row. Alternate-name lists run long but
// stay well under a megabyte.
const maxLineBytes = 1 << 20

// Parser streams the place catalog dump in fixed-size chunks.
type Parser struct {
	path      string
	chunkSize int
	logger    *slog.Logger

	skipped int
}

// NewParser creates a parser for the dump at path. chunkSize rows are
// delivered per callback; values <= 0 fall back to 10000.
func NewParser(path string, chunkSize int, logger *slog.Logger) *Parser {
	if chunkSize <= 0 {
		chunkSize = 10000
	}
	return &Parser{
		path:      path,
		chunkSize: chunkSize,
		logger:    logging.NewComponentLogger(logger, "geonames"),
	}
}

// Skipped returns the number of malformed rows dropped during the last parse.
func (p *Parser) Skipped() int { return p.skipped }

// Chunks reads the dump and invokes fn once per chunk of parsed records.
// A non-nil error from fn stops the parse and is returned unchanged.
func (p *Parser) Chunks(fn func(records []Record) error) error {
	file, err := os.Open(p.path)
	if err != nil {
		return fmt.Errorf("open places file: %w", err)
	}
	defer file.Close()

	p.skipped = 0
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)

	chunk := make([]Record, 0, p.chunkSize)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		record, ok := p.parseLine(scanner.Text(), lineNo)
		if !ok {
			continue
		}
		chunk = append(chunk, record)
		if len(chunk) == p.chunkSize {
			if err := fn(chunk); err != nil {
				return err
			}
			chunk = chunk[:0]
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read places file: %w", err)
	}
	if len(chunk) > 0 {
		if err := fn(chunk); err != nil {
			return err
		}
	}

	if p.skipped > 0 {
		p.logger.Warn("skipped malformed rows", logging.Int("count", p.skipped))
	}
	return nil
}

// LookupIDs scans the dump for the given ids and returns the matching
// records. Used to recover original rows for candidates that never entered
// the hierarchy. Stops early once every id is found.
func (p *Parser) LookupIDs(ids map[int64]struct{}) (map[int64]Record, error) {
	found := make(map[int64]Record, len(ids))
	if len(ids) == 0 {
		return found, nil
	}

	err := p.Chunks(func(records []Record) error {
		for _, record := range records {
			if _, want := ids[record.GeonameID]; want {
				if _, dup := found[record.GeonameID]; !dup {
					found[record.GeonameID] = record
				}
			}
		}
		if len(found) == len(ids) {
			return errLookupDone
		}
		return nil
	})
	if err != nil && err != errLookupDone {
		return nil, err
	}
	return found, nil
}

var errLookupDone = fmt.Errorf("lookup complete")

func (p *Parser) parseLine(line string, lineNo int) (Record, bool) {
	if strings.TrimSpace(line) == "" {
		return Record{}, false
	}
	fields := strings.Split(line, "\t")
	if len(fields) < fieldCount {
		// Pad short rows; trailing columns are optional in practice.
		padded := make([]string, fieldCount)
		copy(padded, fields)
		fields = padded
	}

	id, err := strconv.ParseInt(strings.TrimSpace(fields[0]), 10, 64)
	if err != nil {
		p.skipped++
		p.logger.Debug("row without numeric id", logging.Int("line", lineNo))
		return Record{}, false
	}

	record := Record{
		GeonameID:        id,
		Name:             strings.TrimSpace(fields[1]),
		ASCIIName:        strings.TrimSpace(fields[2]),
		AlternateNames:   fields[3],
		Latitude:         parseFloat(fields[4]),
		Longitude:        parseFloat(fields[5]),
		FeatureClass:     strings.TrimSpace(fields[6]),
		FeatureCode:      strings.TrimSpace(fields[7]),
		CountryCode:      strings.ToUpper(strings.TrimSpace(fields[8])),
		CC2:              strings.TrimSpace(fields[9]),
		Admin1Code:       strings.TrimSpace(fields[10]),
		Admin2Code:       strings.TrimSpace(fields[11]),
		Admin3Code:       strings.TrimSpace(fields[12]),
		Admin4Code:       strings.TrimSpace(fields[13]),
		Population:       parseInt(fields[14]),
		Elevation:        parseInt(fields[15]),
		DEM:              parseInt(fields[16]),
		Timezone:         strings.TrimSpace(fields[17]),
		ModificationDate: strings.TrimSpace(fields[18]),
	}
	return record, true
}

func parseFloat(s string) float64 {
	value, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return value
}

func parseInt(s string) int64 {
	value, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0
	}
	return value
}
