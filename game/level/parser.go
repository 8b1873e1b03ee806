package level

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/deepbox/deepbox/game/engine"
)

// Parse reads the level text format into a definition.
//
// The format is line based. Outside of board grids, blank lines and
// lines starting with '#' are skipped. A `board <key> <W>x<H>` header
// is followed immediately by H raw terrain rows; entity lines after the
// rows place entities on the most recently declared board:
//
//	version 1
//	name Two Rooms
//
//	board root 7x5
//	#######
//	#....a#
//	#.....#
//	#..=..#
//	#######
//	player 1 1
//	block 3 1 a
//	box 2 3 b interior=cellar flip
//
//	board cellar 3x3
//	...
//	...
//	...
//	infinite 1 1 c target=root
//
// The first board is the root. Structural rules (sizes, placement,
// containment, clone sets) are enforced by the engine's definition
// validation, not here.
func Parse(data []byte) (*engine.Definition, error) {
	def := &engine.Definition{}
	lines := strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n")

	pendingRows := 0
	haveBoard := false

	for i, raw := range lines {
		ln := i + 1

		if pendingRows > 0 {
			row := strings.TrimRight(raw, " \t")
			if row == "" {
				return nil, fmt.Errorf("line %d: blank line inside a board grid", ln)
			}
			b := &def.Boards[len(def.Boards)-1]
			b.Rows = append(b.Rows, row)
			pendingRows--
			continue
		}

		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)

		switch fields[0] {
		case "version":
			if len(fields) != 2 || fields[1] != "1" {
				return nil, fmt.Errorf("line %d: unsupported version %q", ln, line)
			}

		case "name":
			if len(fields) < 2 {
				return nil, fmt.Errorf("line %d: name needs a value", ln)
			}
			def.Name = strings.Join(fields[1:], " ")

		case "board":
			if len(fields) != 3 {
				return nil, fmt.Errorf("line %d: want `board <key> <W>x<H>`", ln)
			}
			w, h, err := parseSize(fields[2])
			if err != nil {
				return nil, fmt.Errorf("line %d: %v", ln, err)
			}
			def.Boards = append(def.Boards, engine.BoardDef{
				Key:    fields[1],
				Width:  w,
				Height: h,
			})
			pendingRows = h
			haveBoard = true

		case "player", "block", "box", "infinite":
			if !haveBoard {
				return nil, fmt.Errorf("line %d: %s before any board", ln, fields[0])
			}
			ed, err := parseEntity(fields)
			if err != nil {
				return nil, fmt.Errorf("line %d: %v", ln, err)
			}
			ed.Board = def.Boards[len(def.Boards)-1].Key
			def.Entities = append(def.Entities, *ed)

		default:
			return nil, fmt.Errorf("line %d: unknown directive %q", ln, fields[0])
		}
	}

	if pendingRows > 0 {
		return nil, fmt.Errorf("unexpected end of file: board %q is missing %d rows",
			def.Boards[len(def.Boards)-1].Key, pendingRows)
	}
	return def, nil
}

// ParseFile parses one level file, wrapping errors with the path.
func ParseFile(path string) (*engine.Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read level file: %w", err)
	}
	def, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return def, nil
}

func parseSize(s string) (int, int, error) {
	parts := strings.SplitN(s, "x", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("bad size %q, want <W>x<H>", s)
	}
	w, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("bad width %q", parts[0])
	}
	h, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("bad height %q", parts[1])
	}
	return w, h, nil
}

func parseEntity(fields []string) (*engine.EntityDef, error) {
	kind := fields[0]
	ed := &engine.EntityDef{}

	var rest []string
	switch kind {
	case "player":
		ed.Kind = engine.KindPlayer
		if len(fields) < 3 {
			return nil, fmt.Errorf("want `player <x> <y>`")
		}
		rest = fields[3:]
	case "block":
		ed.Kind = engine.KindBlock
		if len(fields) < 4 {
			return nil, fmt.Errorf("want `block <x> <y> <color>`")
		}
		ed.Color = engine.Color(fields[3])
		rest = fields[4:]
	case "box":
		ed.Kind = engine.KindBox
		if len(fields) < 4 {
			return nil, fmt.Errorf("want `box <x> <y> <color> interior=<board>`")
		}
		ed.Color = engine.Color(fields[3])
		rest = fields[4:]
	case "infinite":
		ed.Kind = engine.KindInfiniteExit
		if len(fields) < 4 {
			return nil, fmt.Errorf("want `infinite <x> <y> <color> target=<board>`")
		}
		ed.Color = engine.Color(fields[3])
		rest = fields[4:]
	}

	x, err := strconv.Atoi(fields[1])
	if err != nil {
		return nil, fmt.Errorf("bad x %q", fields[1])
	}
	y, err := strconv.Atoi(fields[2])
	if err != nil {
		return nil, fmt.Errorf("bad y %q", fields[2])
	}
	ed.X, ed.Y = x, y

	for _, opt := range rest {
		switch {
		case opt == "flip":
			ed.Flipped = true
		case strings.HasPrefix(opt, "clone="):
			n, err := strconv.Atoi(strings.TrimPrefix(opt, "clone="))
			if err != nil || n <= 0 {
				return nil, fmt.Errorf("bad clone set %q", opt)
			}
			ed.CloneSet = n
		case strings.HasPrefix(opt, "interior="):
			ed.Interior = strings.TrimPrefix(opt, "interior=")
		case strings.HasPrefix(opt, "target="):
			ed.Target = strings.TrimPrefix(opt, "target=")
		default:
			return nil, fmt.Errorf("unknown option %q", opt)
		}
	}
	return ed, nil
}

// Format renders a definition back into the level text format. Entities
// are grouped under their boards, so parsing the output yields an
// equivalent definition.
func Format(def *engine.Definition) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "version 1\nname %s\n", def.Name)

	for _, bd := range def.Boards {
		fmt.Fprintf(&b, "\nboard %s %dx%d\n", bd.Key, bd.Width, bd.Height)
		for _, row := range bd.Rows {
			b.WriteString(row)
			b.WriteByte('\n')
		}
		for _, ed := range def.Entities {
			if ed.Board != bd.Key {
				continue
			}
			switch ed.Kind {
			case engine.KindPlayer:
				fmt.Fprintf(&b, "player %d %d", ed.X, ed.Y)
			case engine.KindBlock:
				fmt.Fprintf(&b, "block %d %d %s", ed.X, ed.Y, ed.Color)
			case engine.KindBox:
				fmt.Fprintf(&b, "box %d %d %s interior=%s", ed.X, ed.Y, ed.Color, ed.Interior)
			case engine.KindInfiniteExit:
				fmt.Fprintf(&b, "infinite %d %d %s target=%s", ed.X, ed.Y, ed.Color, ed.Target)
			}
			if ed.CloneSet != 0 {
				fmt.Fprintf(&b, " clone=%d", ed.CloneSet)
			}
			if ed.Flipped {
				b.WriteString(" flip")
			}
			b.WriteByte('\n')
		}
	}
	return []byte(b.String())
}
