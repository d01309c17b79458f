// Package catalog loads photo collections from the text catalog format.
//
// A catalog file declares its photo count on the first line, followed by one
// line per photo:
//
//	4
//	H 3 cat beach sun
//	V 2 selfie smile
//	V 2 garden selfie
//	H 2 garden cat
//
// Each photo line carries an orientation token (H for horizontal, V for
// vertical), an explicit tag count, and exactly that many tag tokens. The tag
// count is authoritative: lines with more or fewer tag tokens than declared
// are rejected rather than silently truncated or extended.
//
// Photos are assigned identities 0..N-1 in input order and are immutable once
// loaded.
package catalog

import (
	"bufio"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/WomainOK/slideseq/pkg/errors"
)

// Orientation describes how a photo can be placed in a slideshow.
type Orientation uint8

const (
	// Horizontal photos fill a slide on their own.
	Horizontal Orientation = iota

	// Vertical photos must be paired with exactly one other vertical photo.
	Vertical
)

// String returns the catalog file token for the orientation.
func (o Orientation) String() string {
	if o == Horizontal {
		return "H"
	}
	return "V"
}

// Photo is a single catalog entry. Photos are immutable after loading;
// Tags is sorted and free of duplicates.
type Photo struct {
	ID          int
	Orientation Orientation
	Tags        []string
}

// Horizontal reports whether the photo fills a slide on its own.
func (p Photo) Horizontal() bool { return p.Orientation == Horizontal }

// Load reads a catalog file from path.
func Load(path string) ([]Photo, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "catalog %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidCatalog, err, "open catalog %s", path)
	}
	defer f.Close()
	return Read(f)
}

// Read parses a catalog from r. It returns photos with identities 0..N-1 in
// input order, or an INVALID_CATALOG error naming the offending line.
func Read(r io.Reader) ([]Photo, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidCatalog, err, "read header")
		}
		return nil, errors.New(errors.ErrCodeInvalidCatalog, "empty catalog: missing photo count header")
	}
	header := strings.TrimSpace(sc.Text())
	count, err := strconv.Atoi(header)
	if err != nil || count < 0 {
		return nil, errors.New(errors.ErrCodeInvalidCatalog, "line 1: photo count must be a non-negative integer, got %q", header)
	}

	// The declared count is untrusted input; preallocation is clamped so an
	// absurd header fails with a parse error instead of an allocation panic.
	photos := make([]Photo, 0, min(count, 1024))
	for i := 0; i < count; i++ {
		if !sc.Scan() {
			if err := sc.Err(); err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidCatalog, err, "read line %d", i+2)
			}
			return nil, errors.New(errors.ErrCodeInvalidCatalog, "declared %d photos but file ends after %d", count, i)
		}
		p, err := parseLine(sc.Text(), i)
		if err != nil {
			return nil, err
		}
		photos = append(photos, p)
	}

	// Trailing blank lines are tolerated; any further content means the
	// declared count was wrong.
	for sc.Scan() {
		if strings.TrimSpace(sc.Text()) != "" {
			return nil, errors.New(errors.ErrCodeInvalidCatalog, "declared %d photos but found more lines", count)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidCatalog, err, "read catalog")
	}

	return photos, nil
}

// parseLine parses one photo record. id is the zero-based photo identity;
// the line number reported in errors accounts for the header line.
func parseLine(line string, id int) (Photo, error) {
	lineNo := id + 2
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return Photo{}, errors.New(errors.ErrCodeInvalidCatalog, "line %d: want orientation, tag count and tags, got %d fields", lineNo, len(fields))
	}

	var orient Orientation
	switch fields[0] {
	case "H":
		orient = Horizontal
	case "V":
		orient = Vertical
	default:
		return Photo{}, errors.New(errors.ErrCodeInvalidCatalog, "line %d: unknown orientation token %q (want H or V)", lineNo, fields[0])
	}

	tagCount, err := strconv.Atoi(fields[1])
	if err != nil || tagCount < 0 {
		return Photo{}, errors.New(errors.ErrCodeInvalidCatalog, "line %d: tag count must be a non-negative integer, got %q", lineNo, fields[1])
	}

	// The declared count is authoritative: the token count must match exactly.
	if got := len(fields) - 2; got != tagCount {
		return Photo{}, errors.New(errors.ErrCodeInvalidCatalog, "line %d: declared %d tags but found %d", lineNo, tagCount, got)
	}

	tags := slices.Clone(fields[2:])
	slices.Sort(tags)
	tags = slices.Compact(tags)

	return Photo{ID: id, Orientation: orient, Tags: tags}, nil
}

// Split partitions photos by orientation, preserving input order.
func Split(photos []Photo) (horizontal, vertical []Photo) {
	for _, p := range photos {
		if p.Horizontal() {
			horizontal = append(horizontal, p)
		} else {
			vertical = append(vertical, p)
		}
	}
	return horizontal, vertical
}
