package labeler

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Dictionary maps categories to their ordered trigger phrases. It is
// immutable once built; accessors hand out copies.
type Dictionary struct {
	phrases map[Category][]string
}

// NewDictionary builds a dictionary from the given phrase lists. Every fixed
// category gets an entry even when absent from phrases.
func NewDictionary(phrases map[Category][]string) *Dictionary {
	d := &Dictionary{phrases: make(map[Category][]string, len(categories)+len(phrases))}
	for _, c := range categories {
		d.phrases[c] = []string{}
	}
	for c, list := range phrases {
		d.phrases[c] = cloneStrings(list)
	}
	return d
}

// Phrases returns the trigger phrases of c in file order. Unknown categories
// yield an empty slice.
func (d *Dictionary) Phrases(c Category) []string {
	if d == nil {
		return []string{}
	}
	list, ok := d.phrases[c]
	if !ok {
		return []string{}
	}
	return cloneStrings(list)
}

// Categories lists every category with an entry, fixed ones first in display
// order followed by extra categories sorted by name.
func (d *Dictionary) Categories() []Category {
	out := Categories()
	if d == nil {
		return out
	}
	var extra []Category
	for c := range d.phrases {
		if !IsKnown(c) {
			extra = append(extra, c)
		}
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i] < extra[j] })
	return append(out, extra...)
}

// Size returns the total number of trigger phrases.
func (d *Dictionary) Size() int {
	if d == nil {
		return 0
	}
	n := 0
	for _, list := range d.phrases {
		n += len(list)
	}
	return n
}

// LoadDictionary reads one phrase file per category from dir. A missing
// directory yields an empty dictionary.
func LoadDictionary(dir string) (*Dictionary, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return NewDictionary(nil), nil
		}
		return nil, fmt.Errorf("read phrase dir: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	phrases := make(map[Category][]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		cat := CategoryFromFilename(entry.Name())
		if cat == "" {
			continue
		}
		lines, err := readPhraseFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		phrases[cat] = append(phrases[cat], lines...)
	}
	return NewDictionary(phrases), nil
}

// CategoryFromFilename derives a category name from a phrase file name:
// the last four characters are dropped, underscores become spaces and every
// word is title-cased ("pleural_effusion.txt" -> "Pleural Effusion").
func CategoryFromFilename(name string) Category {
	if len(name) < 4 {
		return ""
	}
	base := strings.ReplaceAll(name[:len(name)-4], "_", " ")
	base = cases.Title(language.Und).String(base)
	if strings.TrimSpace(base) == "" {
		return ""
	}
	return Category(base)
}

func readPhraseFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open phrase file: %w", err)
	}
	defer f.Close()
	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 2*1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read phrase file %s: %w", filepath.Base(path), err)
	}
	return lines, nil
}

// DictionaryLoader memoizes the first successful LoadDictionary for a
// directory. Failed loads are retried on the next call.
type DictionaryLoader struct {
	dir string

	mu   sync.Mutex
	dict *Dictionary
}

// NewDictionaryLoader returns a loader for dir.
func NewDictionaryLoader(dir string) *DictionaryLoader {
	return &DictionaryLoader{dir: dir}
}

// Dir returns the phrase directory.
func (l *DictionaryLoader) Dir() string {
	return l.dir
}

// Load returns the cached dictionary, reading it from disk on first use.
func (l *DictionaryLoader) Load() (*Dictionary, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.dict != nil {
		return l.dict, nil
	}
	dict, err := LoadDictionary(l.dir)
	if err != nil {
		return nil, err
	}
	l.dict = dict
	return dict, nil
}

func cloneStrings(values []string) []string {
	out := make([]string, len(values))
	copy(out, values)
	return out
}
