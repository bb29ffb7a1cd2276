package visualizer

import "math"

// fft computes an in-place iterative radix-2 transform of the complex signal
// (re, im). len(re) must be a power of two.
func fft(re, im []float64) {
	n := len(re)
	if n < 2 {
		return
	}

	// Bit-reversal permutation.
	for i, j := 1, 0; i < n; i++ {
		bit := n >> 1
		for ; j&bit != 0; bit >>= 1 {
			j ^= bit
		}
		j |= bit
		if i < j {
			re[i], re[j] = re[j], re[i]
			im[i], im[j] = im[j], im[i]
		}
	}

	for length := 2; length <= n; length <<= 1 {
		angle := -2 * math.Pi / float64(length)
		wRe, wIm := math.Cos(angle), math.Sin(angle)
		for start := 0; start < n; start += length {
			curRe, curIm := 1.0, 0.0
			for k := 0; k < length/2; k++ {
				evenRe, evenIm := re[start+k], im[start+k]
				oddRe := re[start+k+length/2]*curRe - im[start+k+length/2]*curIm
				oddIm := re[start+k+length/2]*curIm + im[start+k+length/2]*curRe

				re[start+k], im[start+k] = evenRe+oddRe, evenIm+oddIm
				re[start+k+length/2], im[start+k+length/2] = evenRe-oddRe, evenIm-oddIm

				curRe, curIm = curRe*wRe-curIm*wIm, curRe*wIm+curIm*wRe
			}
		}
	}
}

// spectrum returns normalized magnitudes of the first size/2 frequency bins
// of the sample window. Windows shorter than size are zero-padded.
func spectrum(samples []float64, size int) []float64 {
	re := make([]float64, size)
	im := make([]float64, size)
	copy(re, samples)

	fft(re, im)

	magnitudes := make([]float64, size/2)
	for i := range magnitudes {
		magnitudes[i] = math.Hypot(re[i], im[i]) / float64(size)
	}
	return magnitudes
}
