package dsp

// -----------------------------------------------------------------------------
// Second-order IIR sections in transposed direct form II. Coefficients are
// normalized so A0 == 1. State persists across blocks, so a section can
// filter a continuous stream block by block without boundary artifacts.
// -----------------------------------------------------------------------------

// Coefficients holds one normalized biquad transfer function.
type Coefficients struct {
	B0, B1, B2 float64
	A1, A2     float64
}

// -----------------------------------------------------------------------------

// Section is one stateful biquad filter stage.
type Section struct {
	coeffs Coefficients
	d0, d1 float64
}

// -----------------------------------------------------------------------------

func NewSection(coeffs Coefficients) *Section {
	return &Section{coeffs: coeffs}
}

// -----------------------------------------------------------------------------

// ProcessSample advances the filter by one sample.
func (s *Section) ProcessSample(x float64) float64 {
	c := &s.coeffs
	y := c.B0*x + s.d0
	s.d0 = c.B1*x - c.A1*y + s.d1
	s.d1 = c.B2*x - c.A2*y
	return y
}

// -----------------------------------------------------------------------------

// ProcessBlock filters buf in place.
func (s *Section) ProcessBlock(buf []float64) {
	for i, x := range buf {
		buf[i] = s.ProcessSample(x)
	}
}

// -----------------------------------------------------------------------------

// Reset clears the filter state.
func (s *Section) Reset() {
	s.d0 = 0
	s.d1 = 0
}

// -----------------------------------------------------------------------------
// Chain runs several sections in series, as produced by the Butterworth
// cascade designs.
// -----------------------------------------------------------------------------

type Chain struct {
	sections []*Section
}

// -----------------------------------------------------------------------------

func NewChain(coeffs []Coefficients) *Chain {
	sections := make([]*Section, len(coeffs))
	for i, c := range coeffs {
		sections[i] = NewSection(c)
	}
	return &Chain{sections: sections}
}

// -----------------------------------------------------------------------------

// ProcessBlock filters buf in place through every section in order.
func (ch *Chain) ProcessBlock(buf []float64) {
	for _, s := range ch.sections {
		s.ProcessBlock(buf)
	}
}

// -----------------------------------------------------------------------------

// Reset clears the state of every section.
func (ch *Chain) Reset() {
	for _, s := range ch.sections {
		s.Reset()
	}
}
