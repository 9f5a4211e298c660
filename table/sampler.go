package table

// Sampler keeps every Nth line of a file, starting with the first
type Sampler struct {
	interval int
}

func NewSampler(interval int) *Sampler {
	if interval < 1 {
		interval = 1
	}
	return &Sampler{interval: interval}
}

// Keep reports whether the line at the zero-based index should be parsed
func (s *Sampler) Keep(index int) bool {
	return s.interval <= 1 || index%s.interval == 0
}
