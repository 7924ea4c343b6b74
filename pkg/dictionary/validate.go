package dictionary

type pendingGroup struct {
	offset int
	depth  int
}

// validate walks every group reachable from the root once, checking that
// all entries decode inside the buffer. Child groups must start after the
// group that references them, which rules out cycles.
func (d *Dictionary) validate() (Stats, error) {
	size := d.src.Len()
	stats := Stats{Size: size}
	if size <= d.base {
		return stats, formatErr(d.base, "missing root node group")
	}

	seen := make(map[int]bool)
	queue := []pendingGroup{{offset: d.base}}
	for len(queue) > 0 {
		g := queue[0]
		queue = queue[1:]
		if seen[g.offset] {
			continue
		}
		seen[g.offset] = true
		stats.Groups++

		p := g.offset
		count := int(d.src.At(p))
		p++
		if count == 0 && g.offset != d.base {
			return stats, formatErr(g.offset, "empty node group")
		}

		prev := rune(-1)
		for i := 0; i < count; i++ {
			start := p
			r, next, err := d.checkChar(p)
			if err != nil {
				return stats, err
			}
			p = next
			if r <= prev {
				return stats, formatErr(start, "sibling %q not in ascending order", r)
			}
			prev = r

			if p >= size {
				return stats, formatErr(p, "truncated address")
			}
			flags := d.src.At(p)
			terminal := flags&flagTerminal != 0
			hasChild := flags&flagAddress != 0
			if hasChild {
				if p+2 >= size {
					return stats, formatErr(p, "truncated address")
				}
				addr := int(flags&(addressMask>>16))<<16 | int(d.src.At(p+1))<<8 | int(d.src.At(p+2))
				child := d.base + addr
				if child <= g.offset || child >= size {
					return stats, formatErr(p, "child address %d out of range", addr)
				}
				queue = append(queue, pendingGroup{offset: child, depth: g.depth + 1})
				p += 3
			} else {
				if flags&^flagTerminal != 0 {
					return stats, formatErr(p, "stray bits %#x in null address", flags)
				}
				p++
			}
			if terminal {
				if p >= size {
					return stats, formatErr(p, "truncated frequency")
				}
				p++
				stats.Words++
			} else if !hasChild {
				return stats, formatErr(start, "leaf %q has neither children nor frequency", r)
			}
			stats.Nodes++
			if g.depth+1 > stats.MaxDepth {
				stats.MaxDepth = g.depth + 1
			}
		}
	}
	return stats, nil
}

func (d *Dictionary) checkChar(p int) (rune, int, error) {
	size := d.src.Len()
	if p >= size {
		return 0, p, formatErr(p, "truncated character")
	}
	b := d.src.At(p)
	if b == wideCharMarker {
		if p+2 >= size {
			return 0, p, formatErr(p, "truncated wide character")
		}
		r := rune(d.src.At(p+1))<<8 | rune(d.src.At(p+2))
		if r == 0 {
			return 0, p, formatErr(p, "null wide character")
		}
		return r, p + 3, nil
	}
	r := d.cs.decode[b]
	if r < 0 {
		return 0, p, formatErr(p, "undefined character code %#x", b)
	}
	return r, p + 1, nil
}
