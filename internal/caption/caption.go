// Package caption assembles post text within a byte ceiling and computes
// UTF-8 byte-offset spans for hashtags and mentions.
//
// Bluesky addresses rich-text annotations in bytes, not characters, so every
// span here is a byte range into the exact string handed to the publisher.
package caption

import (
	"strings"
)

// DefaultLimit is the Bluesky post ceiling in UTF-8 bytes.
const DefaultLimit = 300

const ellipsis = "…"

// Facet is one annotated span of the final text. Exactly one of Tag or DID
// is set: Tag is the hashtag value without the leading '#', DID identifies a
// mentioned account.
type Facet struct {
	ByteStart int
	ByteEnd   int
	Tag       string
	DID       string
}

type segKind int

const (
	segText segKind = iota
	segOptional
	segTag
	segMention
	segDetail
)

type segment struct {
	kind  segKind
	text  string // rendered verbatim
	value string // tag value or mention DID
}

// Builder accumulates ordered caption segments. When the assembled text
// exceeds the limit, segments are dropped in a fixed order: optional lines
// first, then tags/mentions from the end, then detail lines, and finally the
// remaining text is hard-truncated.
type Builder struct {
	limit int
	segs  []segment
}

// NewBuilder returns a Builder with the given byte limit; limit <= 0 uses
// DefaultLimit.
func NewBuilder(limit int) *Builder {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Builder{limit: limit}
}

// Text appends a segment that is never dropped before hard truncation.
func (b *Builder) Text(s string) *Builder {
	b.segs = append(b.segs, segment{kind: segText, text: s})
	return b
}

// Optional appends a segment dropped first when the caption runs long.
func (b *Builder) Optional(s string) *Builder {
	b.segs = append(b.segs, segment{kind: segOptional, text: s})
	return b
}

// Detail appends a segment dropped after tags but before hard truncation.
func (b *Builder) Detail(s string) *Builder {
	b.segs = append(b.segs, segment{kind: segDetail, text: s})
	return b
}

// Tag appends a hashtag. The leading '#' may be included or omitted; the
// rendered text always carries it and the facet value never does.
func (b *Builder) Tag(tag string) *Builder {
	value := strings.TrimPrefix(tag, "#")
	if value == "" {
		return b
	}
	b.segs = append(b.segs, segment{kind: segTag, text: "#" + value, value: value})
	return b
}

// Mention appends an @handle mention resolving to did.
func (b *Builder) Mention(handle, did string) *Builder {
	handle = strings.TrimPrefix(handle, "@")
	if handle == "" || did == "" {
		return b
	}
	b.segs = append(b.segs, segment{kind: segMention, text: "@" + handle, value: did})
	return b
}

func taggable(k segKind) bool { return k == segTag || k == segMention }

// render concatenates the segments, inserting a single space between
// adjacent tags/mentions, and records a facet for every taggable segment.
// The cursor only ever moves forward, so repeated tag text cannot produce
// overlapping or misordered spans.
func render(segs []segment) (string, []Facet) {
	var sb strings.Builder
	var facets []Facet
	prevTaggable := false
	for _, s := range segs {
		if taggable(s.kind) && prevTaggable {
			sb.WriteString(" ")
		}
		start := sb.Len()
		sb.WriteString(s.text)
		switch s.kind {
		case segTag:
			facets = append(facets, Facet{ByteStart: start, ByteEnd: sb.Len(), Tag: s.value})
		case segMention:
			facets = append(facets, Facet{ByteStart: start, ByteEnd: sb.Len(), DID: s.value})
		}
		prevTaggable = taggable(s.kind)
	}
	return sb.String(), facets
}

func dropLast(segs []segment, match func(segKind) bool) ([]segment, bool) {
	for i := len(segs) - 1; i >= 0; i-- {
		if match(segs[i].kind) {
			return append(segs[:i:i], segs[i+1:]...), true
		}
	}
	return segs, false
}

// Build assembles the final text and its facets. The returned text is always
// at most the builder's byte limit.
func (b *Builder) Build() (string, []Facet) {
	segs := b.segs

	text, facets := render(segs)
	for len(text) > b.limit {
		var dropped bool
		segs, dropped = dropLast(segs, func(k segKind) bool { return k == segOptional })
		if !dropped {
			break
		}
		text, facets = render(segs)
	}
	for len(text) > b.limit {
		var dropped bool
		segs, dropped = dropLast(segs, taggable)
		if !dropped {
			break
		}
		text, facets = render(segs)
	}
	for len(text) > b.limit {
		var dropped bool
		segs, dropped = dropLast(segs, func(k segKind) bool { return k == segDetail })
		if !dropped {
			break
		}
		text, facets = render(segs)
	}

	if len(text) > b.limit {
		text = truncateBytes(text, b.limit)
		// Any facet past the cut is no longer addressable.
		kept := facets[:0]
		for _, f := range facets {
			if f.ByteEnd <= len(text) {
				kept = append(kept, f)
			}
		}
		facets = kept
	}
	if len(facets) == 0 {
		facets = nil
	}
	return text, facets
}

// truncateBytes cuts s to at most limit bytes on a rune boundary, appending
// an ellipsis when there is room for one.
func truncateBytes(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	budget := limit
	if budget >= len(ellipsis) {
		budget -= len(ellipsis)
	}
	cut := 0
	for i := range s {
		if i > budget {
			break
		}
		cut = i
	}
	out := s[:cut]
	if len(out)+len(ellipsis) <= limit {
		out += ellipsis
	}
	return out
}
