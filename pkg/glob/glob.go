// Package glob implements globbing over an abstract filesystem. Patterns
// know two metacharacters: * matches any run of characters within one path
// element and ? matches exactly one.
package glob

import (
	"sort"

	"github.com/spf13/afero"
)

// Glob calls cb for every path matching the pattern, in lexical order per
// directory. If cb returns false, globbing stops and Glob returns false.
func Glob(fs afero.Fs, p string, cb func(string) bool) bool {
	return Parse(p).Glob(fs, cb)
}

// Glob calls cb for every path matching the Pattern.
func (p Pattern) Glob(fs afero.Fs, cb func(string) bool) bool {
	segs := p.Segments
	dir := ""
	if len(segs) > 0 {
		if _, ok := segs[0].(Slash); ok {
			segs = segs[1:]
			dir = "/"
		}
	}
	return glob(fs, segs, dir, cb)
}

// glob matches segs against entries under dir. dir is either empty or ends
// in a slash.
func glob(fs afero.Fs, segs []Segment, dir string, cb func(string) bool) bool {
	// Follow literal path elements directly. This is not an optimization:
	// "." and ".." never show up in directory listings, so they only work
	// as literal steps.
	for len(segs) > 1 && isLiteral(segs[0]) && isSlash(segs[1]) {
		elem := segs[0].(Literal).Data
		segs = segs[2:]
		dir += elem + "/"
		if info, err := fs.Stat(dir); err != nil || !info.IsDir() {
			return true
		}
	}

	if len(segs) == 0 {
		return cb(dir)
	} else if len(segs) == 1 && isLiteral(segs[0]) {
		path := dir + segs[0].(Literal).Data
		if _, err := fs.Stat(path); err == nil {
			return cb(path)
		}
		return true
	}

	names, err := readDirNames(fs, dir)
	if err != nil {
		return true
	}

	for i, seg := range segs {
		if !isSlash(seg) {
			continue
		}
		// segs = x/y: match directories with x, recurse into each with y.
		first, rest := segs[:i], segs[i+1:]
		for _, name := range names {
			if !matchElement(first, name) {
				continue
			}
			info, err := fs.Stat(dir + name)
			if err != nil || !info.IsDir() {
				continue
			}
			if !glob(fs, rest, dir+name+"/", cb) {
				return false
			}
		}
		return true
	}

	// No slash left: match the whole remainder against each entry.
	for _, name := range names {
		if matchElement(segs, name) {
			if !cb(dir + name) {
				return false
			}
		}
	}
	return true
}

// readDirNames lists dir, treating "" as ".". Names come back sorted so that
// matches are deterministic.
func readDirNames(fs afero.Fs, dir string) ([]string, error) {
	if dir == "" {
		dir = "."
	}
	infos, err := afero.ReadDir(fs, dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(infos))
	for i, info := range infos {
		names[i] = info.Name()
	}
	sort.Strings(names)
	return names, nil
}

// matchElement matches one path element against segments containing no
// Slash. Hidden files only match when the pattern names the leading dot
// literally.
func matchElement(segs []Segment, name string) bool {
	if len(segs) == 0 {
		return name == ""
	}
	if len(name) > 0 && name[0] == '.' && !startsWithDot(segs) {
		return false
	}
	return match(segs, []rune(name))
}

func startsWithDot(segs []Segment) bool {
	lit, ok := segs[0].(Literal)
	return ok && len(lit.Data) > 0 && lit.Data[0] == '.'
}

// match is a backtracking matcher. Star tries the shortest expansion first
// and extends on failure.
func match(segs []Segment, name []rune) bool {
	if len(segs) == 0 {
		return len(name) == 0
	}
	switch seg := segs[0].(type) {
	case Literal:
		lit := []rune(seg.Data)
		if len(name) < len(lit) {
			return false
		}
		for i, r := range lit {
			if name[i] != r {
				return false
			}
		}
		return match(segs[1:], name[len(lit):])
	case Question:
		if len(name) == 0 {
			return false
		}
		return match(segs[1:], name[1:])
	case Star:
		for i := 0; i <= len(name); i++ {
			if match(segs[1:], name[i:]) {
				return true
			}
		}
		return false
	}
	return false
}

func isLiteral(seg Segment) bool { _, ok := seg.(Literal); return ok }
func isSlash(seg Segment) bool   { _, ok := seg.(Slash); return ok }
