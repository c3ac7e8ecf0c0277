package vote

// Put inserts a boolean at position n.
func (v *Vote) Put(n int, b bool) {
	v.vec[n] = b
}

// Feature returns the number of true votes of class n.
func (v *Vote) Feature(n int) (o uint32) {
	if n < 0 || n >= v.classes {
		return 0
	}
	for _, b := range v.vec[n*v.bank : (n+1)*v.bank] {
		if b {
			o++
		}
	}
	return
}
