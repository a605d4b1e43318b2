package model

import (
	"fmt"
	"strconv"
	"strings"
)

// Level is the depth of a container address.
type Level int

const (
	LevelBlock Level = iota + 2 // page:block
	LevelLine                   // page:block:line
	LevelSpan                   // page:block:line:span
)

// String returns a string representation of the level
func (l Level) String() string {
	switch l {
	case LevelBlock:
		return "block"
	case LevelLine:
		return "line"
	case LevelSpan:
		return "span"
	default:
		return "unknown"
	}
}

// Address is the hierarchical position of a container. Parts deeper than
// Level are ignored and kept at zero.
type Address struct {
	Page  int
	Block int
	Line  int
	Span  int
	Level Level
}

// BlockAddress returns the address of a whole block.
func BlockAddress(page, block int) Address {
	return Address{Page: page, Block: block, Level: LevelBlock}
}

// LineAddress returns the address of a whole line.
func LineAddress(page, block, line int) Address {
	return Address{Page: page, Block: block, Line: line, Level: LevelLine}
}

// SpanAddress returns the address of a single span.
func SpanAddress(page, block, line, span int) Address {
	return Address{Page: page, Block: block, Line: line, Span: span, Level: LevelSpan}
}

// ParseAddress parses a "page:block[:line[:span]]" id.
func ParseAddress(id string) (Address, error) {
	parts := strings.Split(strings.TrimSpace(id), ":")
	if len(parts) < 2 || len(parts) > 4 {
		return Address{}, fmt.Errorf("%w: %q has %d parts, want 2 to 4", ErrInvalidAddress, id, len(parts))
	}
	nums := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || n < 0 {
			return Address{}, fmt.Errorf("%w: %q part %d is not a non-negative integer", ErrInvalidAddress, id, i)
		}
		nums[i] = n
	}
	addr := Address{Page: nums[0], Block: nums[1], Level: Level(len(nums))}
	if len(nums) > 2 {
		addr.Line = nums[2]
	}
	if len(nums) > 3 {
		addr.Span = nums[3]
	}
	return addr, nil
}

// String formats the address as page:block[:line[:span]]. An address
// without a level names the whole page.
func (a Address) String() string {
	switch a.Level {
	case 0:
		return fmt.Sprintf("%d", a.Page)
	case LevelBlock:
		return fmt.Sprintf("%d:%d", a.Page, a.Block)
	case LevelLine:
		return fmt.Sprintf("%d:%d:%d", a.Page, a.Block, a.Line)
	default:
		return fmt.Sprintf("%d:%d:%d:%d", a.Page, a.Block, a.Line, a.Span)
	}
}

// Truncate returns the prefix of a at the given level.
func (a Address) Truncate(level Level) Address {
	if level >= a.Level {
		return a
	}
	out := Address{Page: a.Page, Block: a.Block, Level: level}
	if level >= LevelLine {
		out.Line = a.Line
	}
	return out
}

// HasPrefix reports whether prefix addresses a container that includes a.
func (a Address) HasPrefix(prefix Address) bool {
	if prefix.Level > a.Level {
		return false
	}
	return a.Truncate(prefix.Level) == prefix
}

// Less orders addresses by page, then block, line and span; an aggregate
// sorts before its own children.
func (a Address) Less(b Address) bool {
	if a.Page != b.Page {
		return a.Page < b.Page
	}
	if a.Block != b.Block {
		return a.Block < b.Block
	}
	if a.Line != b.Line {
		return a.Line < b.Line
	}
	if a.Span != b.Span {
		return a.Span < b.Span
	}
	return a.Level < b.Level
}

// MarshalText encodes the address as its id string.
func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText parses an id string.
func (a *Address) UnmarshalText(b []byte) error {
	addr, err := ParseAddress(string(b))
	if err != nil {
		return err
	}
	*a = addr
	return nil
}

// Container is an addressable region of page content: a span, or a line or
// block aggregate.
type Container struct {
	Address Address `json:"id"`
	Text    string  `json:"text"`
	Rect    Rect    `json:"rect"`
	Style   Style   `json:"style"`
}

// ID returns the address string of the container.
func (c Container) ID() string {
	return c.Address.String()
}

// Page returns the zero-based page index of the container.
func (c Container) Page() int {
	return c.Address.Page
}
