package tokenizer

// bytesToUnicode maps every byte to a printable rune so any byte sequence has
// a reversible string form. Printable Latin-1 bytes map to themselves; the
// rest are shifted above U+00FF in byte order.
func bytesToUnicode() ([256]string, map[rune]byte) {
	var printable [256]bool
	for b := '!'; b <= '~'; b++ {
		printable[b] = true
	}
	for b := '¡'; b <= '¬'; b++ {
		printable[b] = true
	}
	for b := '®'; b <= 'ÿ'; b++ {
		printable[b] = true
	}

	var enc [256]string
	dec := make(map[rune]byte, 256)
	n := 0
	for b := 0; b < 256; b++ {
		r := rune(b)
		if !printable[b] {
			r = rune(256 + n)
			n++
		}
		enc[b] = string(r)
		dec[r] = byte(b)
	}
	return enc, dec
}
