package smry

import (
	"fmt"
	"strings"
)

// defaultWGName is the well/group name of vectors which belong to no well or
// group.
const defaultWGName = ":+:+:+:+"

// node is one vector of the specification file.
type node struct {
	keyword string
	wgname string
	num int32
}

// keyString builds the key used to address a vector, e.g. "FOPT",
// "WOPR:PROD", "BPR:1,2,3" or "RWFT:1-2". An empty string is returned for
// vectors which can't be addressed, like well vectors with no well name.
func keyString(nd node, nx, ny int) string {
	kw := nd.keyword
	if kw == "" { return "" }

	switch kw[0] {
	case 'A':
		return fmt.Sprintf("%s:%d", kw, nd.num)
	case 'B':
		return fmt.Sprintf("%s:%s", kw, ijkString(nd.num, nx, ny))
	case 'C':
		if nd.num <= 0 { return "" }
		return fmt.Sprintf("%s:%s:%s", kw, nd.wgname, ijkString(nd.num, nx, ny))
	case 'G', 'W':
		if nd.wgname == defaultWGName || nd.wgname == "" { return "" }
		return fmt.Sprintf("%s:%s", kw, nd.wgname)
	case 'R':
		if len(kw) > 2 && kw[2] == 'F' {
			// Region-to-region flows pack both regions into one number.
			r1 := nd.num % (1 << 15)
			r2 := nd.num/(1 << 15) - 10
			return fmt.Sprintf("%s:%d-%d", kw, r1, r2)
		}
		return fmt.Sprintf("%s:%d", kw, nd.num)
	case 'S':
		switch kw {
		case "STEPTYPE", "SEPARATE", "SUMTHIN":
			return kw
		}
		return fmt.Sprintf("%s:%s:%d", kw, nd.wgname, nd.num)
	}
	return kw
}

// ijkString converts a 1-based global cell number into "i,j,k", also
// 1-based.
func ijkString(num int32, nx, ny int) string {
	if nx <= 0 || ny <= 0 { return fmt.Sprintf("%d", num) }
	g := int(num) - 1
	k := g/(nx*ny)
	rest := g % (nx*ny)
	return fmt.Sprintf("%d,%d,%d", rest % nx + 1, rest/nx + 1, k + 1)
}

// Match returns true if key matches pattern, where '?' matches exactly one
// character and '*' matches any number of characters, including none.
func Match(pattern, key string) bool {
	p, k := 0, 0
	star, mark := -1, 0
	for k < len(key) {
		switch {
		case p < len(pattern) && (pattern[p] == '?' || pattern[p] == key[k]):
			p++
			k++
		case p < len(pattern) && pattern[p] == '*':
			star, mark = p, k
			p++
		case star != -1:
			p = star + 1
			mark++
			k = mark
		default:
			return false
		}
	}
	for p < len(pattern) && pattern[p] == '*' { p++ }
	return p == len(pattern)
}

// trimPieces joins CHAR pieces and trims the result.
func trimPieces(pieces []string) string {
	return strings.TrimSpace(strings.Join(pieces, ""))
}
