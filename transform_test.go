package tdlchar

import "testing"

func TestUpcaseMapsExactlyLowercaseASCII(t *testing.T) {
	for b := 0; b < 256; b++ {
		in := byte(b)
		out := upcase(in)

		if in >= 'a' && in <= 'z' {
			want := in - 32
			if out != want {
				t.Errorf("upcase(%q) = %q, want %q", in, out, want)
			}
		} else if out != in {
			t.Errorf("upcase(0x%02x) = 0x%02x, want unchanged", in, out)
		}
	}
}

func TestUpcaseIsIdempotent(t *testing.T) {
	for b := 0; b < 256; b++ {
		once := upcase(byte(b))
		if twice := upcase(once); twice != once {
			t.Errorf("upcase not idempotent at 0x%02x: %q then %q", b, once, twice)
		}
	}
}

func TestUpcaseCopy(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", ""},
		{"abc", "ABC"},
		{"Hello Todd", "HELLO TODD"},
		{"ALREADY UPPER", "ALREADY UPPER"},
		{"mixed 123 !@#", "MIXED 123 !@#"},
		{"a\x00z\xff", "A\x00Z\xff"},
	}

	for _, test := range tests {
		dst := make([]byte, len(test.input))
		upcaseCopy(dst, []byte(test.input))
		if string(dst) != test.expected {
			t.Errorf("upcaseCopy(%q) = %q, want %q", test.input, dst, test.expected)
		}
	}
}
