package runs

import (
	"sort"

	"github.com/tsawler/respan/model"
)

// Entry is one distinct style of a palette.
type Entry struct {
	Key   model.StyleKey `json:"-"`
	Style model.Style    `json:"style"` // first style seen with this key
	Runs  int            `json:"runs"`
	Chars int            `json:"chars"`
}

// Palette counts the distinct styles of a page, keyed by model.StyleKey so
// sizes within the same tenth of a point share an entry.
type Palette struct {
	entries map[model.StyleKey]*Entry
	order   []model.StyleKey
}

// NewPalette returns an empty palette.
func NewPalette() *Palette {
	return &Palette{entries: make(map[model.StyleKey]*Entry)}
}

// Add records one run of text in style st.
func (p *Palette) Add(st model.Style, text string) {
	key := st.Key()
	e, ok := p.entries[key]
	if !ok {
		e = &Entry{Key: key, Style: st}
		p.entries[key] = e
		p.order = append(p.order, key)
	}
	e.Runs++
	e.Chars += len([]rune(text))
}

// Len returns the number of distinct styles.
func (p *Palette) Len() int {
	return len(p.order)
}

// Lookup returns the entry for a style.
func (p *Palette) Lookup(st model.Style) (Entry, bool) {
	e, ok := p.entries[st.Key()]
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

// Entries returns the styles ordered by character count, most used first.
// Ties keep first-seen order.
func (p *Palette) Entries() []Entry {
	out := make([]Entry, len(p.order))
	for i, k := range p.order {
		out[i] = *p.entries[k]
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Chars > out[j].Chars
	})
	return out
}

// Dominant returns the most used style, the body text style of most pages.
func (p *Palette) Dominant() (model.Style, bool) {
	entries := p.Entries()
	if len(entries) == 0 {
		return model.Style{}, false
	}
	return entries[0].Style, true
}
