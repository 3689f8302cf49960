// Package assets maps cards to image files, falling back to a drawn
// placeholder when an image is missing.
package assets

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/lox/blackjack/internal/deck"
)

// BackKey is the asset key for the card back
const BackKey = "BACK"

// Ext is the image file extension
const Ext = ".png"

// Key returns the asset key for a card ("A-S", "10-H")
func Key(c deck.Card) string {
	return c.Rank.String() + "-" + c.Suit.Code()
}

// Placeholder describes a card face that can be drawn without an image
type Placeholder struct {
	Label  string `json:"label"`
	Symbol string `json:"symbol"`
	Red    bool   `json:"red"`
	Back   bool   `json:"back,omitempty"`
}

// Asset is the resolved presentation for a card
type Asset struct {
	Key         string       `json:"key"`
	Path        string       `json:"path,omitempty"`
	Placeholder *Placeholder `json:"placeholder,omitempty"`
}

// PlaceholderFor builds the fallback face for a card
func PlaceholderFor(c deck.Card) Placeholder {
	return Placeholder{
		Label:  c.Rank.String(),
		Symbol: c.Suit.String(),
		Red:    c.IsRed(),
	}
}

// BackPlaceholder is the fallback card back
func BackPlaceholder() Placeholder {
	return Placeholder{Symbol: "▒", Back: true}
}

// Resolver looks up card images under a directory. A missing directory
// is not an error; every card resolves to a placeholder.
type Resolver struct {
	fsys    fs.FS
	prefix  string
	present map[string]bool
	logger  *log.Logger
}

// NewResolver scans dir for card images
func NewResolver(dir string, logger *log.Logger) *Resolver {
	if dir == "" {
		return NewResolverFS(nil, "", logger)
	}
	return NewResolverFS(os.DirFS(dir), dir, logger)
}

// NewResolverFS scans fsys for card images. prefix is joined to file names
// when reporting paths.
func NewResolverFS(fsys fs.FS, prefix string, logger *log.Logger) *Resolver {
	r := &Resolver{
		fsys:    fsys,
		prefix:  prefix,
		present: make(map[string]bool),
		logger:  logger.WithPrefix("assets"),
	}
	r.scan()
	return r
}

func (r *Resolver) scan() {
	if r.fsys == nil {
		return
	}
	for _, key := range append(allKeys(), BackKey) {
		if _, err := fs.Stat(r.fsys, key+Ext); err == nil {
			r.present[key] = true
		}
	}
	if missing := r.Missing(); len(missing) > 0 {
		r.logger.Warn("Card images missing, using placeholders", "dir", r.prefix, "missing", len(missing), "first", missing[0])
	}
}

// Resolve returns the image path for a card, or a placeholder
func (r *Resolver) Resolve(c deck.Card) Asset {
	key := Key(c)
	if r.present[key] {
		return Asset{Key: key, Path: filepath.Join(r.prefix, key+Ext)}
	}
	p := PlaceholderFor(c)
	return Asset{Key: key, Placeholder: &p}
}

// Back returns the asset for the card back
func (r *Resolver) Back() Asset {
	if r.present[BackKey] {
		return Asset{Key: BackKey, Path: filepath.Join(r.prefix, BackKey+Ext)}
	}
	p := BackPlaceholder()
	return Asset{Key: BackKey, Placeholder: &p}
}

// Missing returns the keys with no image, in deck build order
func (r *Resolver) Missing() []string {
	var out []string
	for _, key := range append(allKeys(), BackKey) {
		if !r.present[key] {
			out = append(out, key)
		}
	}
	return out
}

func allKeys() []string {
	cards := deck.NewDeck(nil).Cards()
	keys := make([]string, len(cards))
	for i, c := range cards {
		keys[i] = Key(c)
	}
	return keys
}
