package ascii

import "sort"

// Charsets holds the preset character ramps, from the darkest to the
// lightest glyph.
var Charsets = map[string]string{
	"simple":   " .:-=+*#%@",
	"detailed": " .'`^\",:;Il!i><~+_-?][}{1)(|/tfjrxnuvczXYUJCLQ0OZmwqpdbkhao*#MW&8%B@$",
	"blocks":   " ░▒▓█",
	"braille":  " ⠁⠃⠇⡇⡏⡟⡿⣿",
}

// edgeChars are the glyphs used on strong edges, by increasing
// edge magnitude.
var edgeChars = []rune(`/\|-+`)

// CharsetNames returns the sorted list of preset names.
func CharsetNames() []string {
	res := make([]string, 0, len(Charsets))
	for k := range Charsets {
		res = append(res, k)
	}
	sort.Strings(res)
	return res
}
