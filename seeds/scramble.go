package seeds

// scrambleTable is a fixed involutory substitution over byte values. It is
// built from a deterministic shuffle of 0..255 whose elements are paired
// off, so every byte maps to its partner and back.
var scrambleTable [256]byte

func init() {
	var perm [256]byte
	for i := range perm {
		perm[i] = byte(i)
	}

	// xorshift with a fixed seed, the table must be identical on every
	// platform and in every process
	state := uint32(0x9E3779B9)
	next := func() uint32 {
		state ^= state << 13
		state ^= state >> 17
		state ^= state << 5
		return state
	}
	for i := 255; i > 0; i-- {
		j := int(next() % uint32(i+1))
		perm[i], perm[j] = perm[j], perm[i]
	}

	for i := 0; i < 256; i += 2 {
		a, b := perm[i], perm[i+1]
		scrambleTable[a] = b
		scrambleTable[b] = a
	}
}

// Scramble obfuscates data in place and returns it. The transform is an
// involution: applying it twice restores the original bytes. It is not
// keyed and is trivially reversible by anyone who reads this code - it only
// keeps seed material from showing up as recognizable structure in
// human-auditable stores.
func Scramble(data []byte) []byte {
	for i := range data {
		data[i] = scrambleTable[data[i]]
	}
	for i, j := 0, len(data)-1; i < j; i, j = i+1, j-1 {
		data[i], data[j] = data[j], data[i]
	}
	return data
}
