package store

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// record is one non-blank line of a table file. When the line could not be
// decoded err is set and raw is kept so rewrites can carry it over unchanged.
type record[T any] struct {
	line  int
	raw   string
	value T
	err   error
}

func (r record[T]) ok() bool { return r.err == nil }

// table is a line-per-record file. key is nil for tables that are never
// deduplicated.
type table[T any] struct {
	name   string
	path   string
	logger *slog.Logger
	decode func(fields []string) (T, error)
	encode func(T) []string
	key    func(T) string
}

// scan reads every non-blank line. A missing file is an empty table.
func (t *table[T]) scan() ([]record[T], error) {
	f, err := os.Open(t.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", t.name, err)
	}
	defer f.Close()

	var recs []record[T]
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		raw := strings.TrimSuffix(sc.Text(), "\r")
		if strings.TrimSpace(raw) == "" {
			continue
		}
		v, err := t.decode(splitRow(raw))
		recs = append(recs, record[T]{line: lineNo, raw: raw, value: v, err: err})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", t.name, err)
	}
	return recs, nil
}

// load returns the decodable records. Malformed lines are logged and left
// out. Keyed tables resolve duplicate keys to the last version, kept at the
// position where the key first appeared.
func (t *table[T]) load() ([]record[T], error) {
	recs, err := t.scan()
	if err != nil {
		return nil, err
	}
	out := make([]record[T], 0, len(recs))
	index := make(map[string]int)
	for _, r := range recs {
		if !r.ok() {
			t.warn(r.line, r.err.Error())
			continue
		}
		if t.key == nil {
			out = append(out, r)
			continue
		}
		k := t.key(r.value)
		if i, seen := index[k]; seen {
			out[i] = record[T]{line: r.line, raw: r.raw, value: r.value}
			continue
		}
		index[k] = len(out)
		out = append(out, r)
	}
	return out, nil
}

func (t *table[T]) values() ([]T, error) {
	recs, err := t.load()
	if err != nil {
		return nil, err
	}
	out := make([]T, len(recs))
	for i, r := range recs {
		out[i] = r.value
	}
	return out, nil
}

func (t *table[T]) line(v T) string {
	return encodeRow(t.encode(v)...)
}

// append writes rows at the end of the file, creating it and its directory
// when needed.
func (t *table[T]) append(vs ...T) error {
	if len(vs) == 0 {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(t.path), 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	f, err := os.OpenFile(t.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", t.name, err)
	}
	w := bufio.NewWriter(f)
	for _, v := range vs {
		w.WriteString(t.line(v))
		w.WriteByte('\n')
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("append %s: %w", t.name, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("append %s: %w", t.name, err)
	}
	return nil
}

// replace drops every line whose key matches one of vs and appends the new
// versions. Lines that do not decode are kept as they are.
func (t *table[T]) replace(vs ...T) error {
	recs, err := t.scan()
	if err != nil {
		return err
	}
	drop := make(map[string]bool, len(vs))
	for _, v := range vs {
		drop[t.key(v)] = true
	}
	lines := make([]string, 0, len(recs)+len(vs))
	for _, r := range recs {
		if r.ok() && drop[t.key(r.value)] {
			continue
		}
		lines = append(lines, r.raw)
	}
	for _, v := range vs {
		lines = append(lines, t.line(v))
	}
	return t.rewrite(lines)
}

// rewrite replaces the whole file. The new content is written to a
// temporary file, synced and renamed over the table, so a crash leaves
// either the old or the new file.
func (t *table[T]) rewrite(lines []string) error {
	dir := filepath.Dir(t.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	tmp := t.path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("rewrite %s: %w", t.name, err)
	}
	w := bufio.NewWriter(f)
	for _, l := range lines {
		w.WriteString(l)
		w.WriteByte('\n')
	}
	if err := w.Flush(); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("rewrite %s: %w", t.name, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("sync %s: %w", t.name, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rewrite %s: %w", t.name, err)
	}
	if err := os.Rename(tmp, t.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename %s: %w", t.name, err)
	}
	return nil
}

func (t *table[T]) warn(line int, reason string) {
	t.logger.Warn("skipping row", "table", t.name, "line", line, "reason", reason)
}
