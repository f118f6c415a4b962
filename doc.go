// Copyright (c) 2022 Stephan Lukits. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package tiles is the layout engine of a terminal canvas compositor.
// It partitions the screen with a binary split tree whose leaves are
// the regions of registered components:
//
//	horizontal[percentage(30) max(100)]
//	├── single(files, rounded)
//	└── vertical[max(100) length(3)]
//	    ├── single(editor)
//	    └── single(status)
//
// A [Layout] is edited through [Path]s: a path is the sequence of
// [Direction]s leading from the root to a node.  A step is only valid
// against a split of the matching axis, i.e. Left and Right step into a
// [Horizontal] split while Up and Down step into a [Vertical] split.
// An edit along an invalid path is a no-op reporting false:
//
//	l := tiles.NewLayout(nil)
//	l.Add(nil, tiles.Left, c1, c2, tiles.Ref("files"), nil)
//	l.Add(tiles.Path{tiles.Right}, tiles.Down, c1, c2, tiles.Ref("status"), nil)
//	l.Remove(tiles.Path{tiles.Up}) // false: the root splits horizontally
//
// Split slots are sized by [Constraint]s which evaluate a region's
// extent along the split axis.  The first slot gets what its constraint
// evaluates to, the second slot is clamped to what remains.
//
// [Layout.Areas] computes the rectangle of every component for a given
// screen and draws the borders of bordered leaves through a [Drawer].
// Structural requests as they arrive from components are decoded by
// [ParseRequest].
package tiles
