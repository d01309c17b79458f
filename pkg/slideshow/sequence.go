package slideshow

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/WomainOK/slideseq/pkg/errors"
)

// ReadSequence parses a sequence file from r: a slide count header followed
// by one line per slide holding one or two photo ids. Slides are returned
// with unresolved tag sets; run [Validate] and then [Sequence.Resolve] before
// scoring.
func ReadSequence(r io.Reader) (Sequence, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidSequence, err, "read header")
		}
		return nil, errors.New(errors.ErrCodeInvalidSequence, "empty sequence file: missing slide count header")
	}
	header := strings.TrimSpace(sc.Text())
	count, err := strconv.Atoi(header)
	if err != nil || count < 0 {
		return nil, errors.New(errors.ErrCodeInvalidSequence, "line 1: slide count must be a non-negative integer, got %q", header)
	}

	// Clamped: the declared count is untrusted and must not size allocations.
	seq := make(Sequence, 0, min(count, 1024))
	for i := 0; i < count; i++ {
		if !sc.Scan() {
			if err := sc.Err(); err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidSequence, err, "read line %d", i+2)
			}
			return nil, errors.New(errors.ErrCodeInvalidSequence, "declared %d slides but file ends after %d", count, i)
		}
		fields := strings.Fields(sc.Text())
		if len(fields) != 1 && len(fields) != 2 {
			return nil, errors.New(errors.ErrCodeInvalidSequence, "line %d: a slide holds 1 or 2 photo ids, got %d fields", i+2, len(fields))
		}
		ids := make([]int, len(fields))
		for k, f := range fields {
			id, err := strconv.Atoi(f)
			if err != nil {
				return nil, errors.New(errors.ErrCodeInvalidSequence, "line %d: photo id must be an integer, got %q", i+2, f)
			}
			ids[k] = id
		}
		seq = append(seq, SlideFromIDs(ids...))
	}

	for sc.Scan() {
		if strings.TrimSpace(sc.Text()) != "" {
			return nil, errors.New(errors.ErrCodeInvalidSequence, "declared %d slides but found more lines", count)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidSequence, err, "read sequence")
	}

	return seq, nil
}

// LoadSequence reads a sequence file from path.
func LoadSequence(path string) (Sequence, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "sequence %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidSequence, err, "open sequence %s", path)
	}
	defer f.Close()
	return ReadSequence(f)
}

// Write renders the sequence in the text sequence-file format. Writing and
// reading back yields an identical ordered list of slides.
func (seq Sequence) Write(w io.Writer) error {
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintln(bw, len(seq)); err != nil {
		return err
	}
	for _, s := range seq {
		ids := s.IDs()
		if s.Single() {
			if _, err := fmt.Fprintln(bw, ids[0]); err != nil {
				return err
			}
		} else {
			if _, err := fmt.Fprintln(bw, ids[0], ids[1]); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}

// Save writes the sequence file to path.
func (seq Sequence) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "create %s", path)
	}
	defer f.Close()
	return seq.Write(f)
}
