package tdlchar

// upcase maps an ASCII lowercase letter to its uppercase counterpart and
// leaves every other byte value untouched.
func upcase(b byte) byte {
	if b >= 'a' && b <= 'z' {
		return b - ('a' - 'A')
	}
	return b
}

// upcaseCopy writes the transformed bytes of src into dst, which must be at
// least len(src) long. Each byte is mapped independently, in order.
func upcaseCopy(dst, src []byte) {
	for i, b := range src {
		dst[i] = upcase(b)
	}
}
