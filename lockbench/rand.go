package lockbench

// splitmix64 advances state and returns the next 64-bit output.
// See https://prng.di.unimi.it/splitmix64.c
func splitmix64(state *uint64) uint64 {
	*state += 0x9e3779b97f4a7c15
	z := *state
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

// bounded maps r uniformly onto [0, n) without a division.
// See https://lemire.me/blog/2016/06/27/a-fast-alternative-to-the-modulo-reduction/
func bounded(r uint32, n int) int {
	return int((uint64(r) * uint64(uint32(n))) >> 32)
}
