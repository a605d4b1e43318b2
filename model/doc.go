// Package model provides the value types shared by every respan package.
//
// # Geometry
//
// [Rect] is an axis-aligned rectangle in page space with a top-left origin.
// Two rects are close under a tolerance when each of the four coordinate
// deltas is within it:
//
//	a.Close(b, 5) // symmetric: b.Close(a, 5) gives the same answer
//
// # Style
//
// [Style] captures font, size, colour, bold and italic. A [StyleOverride]
// holds a partial style and is applied with [Compose]:
//
//	st := model.Compose(base, model.SizeOverride(9))
//
// Colours coming from engines are normalized through [NormalizeColor], which
// accepts float and byte tuples, single channels, packed 0xRRGGBB integers and
// hex strings, and fails with [ErrInvalidColorFormat] for anything else.
//
// # Containers
//
// A [Container] is an addressable unit of page content. Its [Address] is the
// hierarchical position page:block:line:span; shorter prefixes address whole
// lines or blocks:
//
//	addr, err := model.ParseAddress("0:2")   // block 2 on page 0
//	addr, err = model.ParseAddress("0:2:1:0") // a single span
//
// # Errors
//
// The error kinds shared by the selector and replacement packages are
// declared here as sentinels, e.g. [ErrNoMatch] and [ErrTextOverflow].
package model
