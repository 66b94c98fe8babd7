package binimg

// Erode shrinks foreground regions: a pixel survives only if every pixel
// under the kernelSize x kernelSize window is foreground. Pixels whose
// window extends past the mask edge are eroded away.
func Erode(b *Binary, kernelSize int) *Binary {
	if kernelSize <= 1 {
		return b.Clone()
	}
	out := New(b.W, b.H)
	half := kernelSize / 2
	for y := 0; y < b.H; y++ {
		for x := 0; x < b.W; x++ {
			all := true
			for ky := -half; ky <= half && all; ky++ {
				for kx := -half; kx <= half; kx++ {
					if !b.At(x+kx, y+ky) {
						all = false
						break
					}
				}
			}
			out.Pix[y*b.W+x] = all
		}
	}
	return out
}

// Dilate expands foreground regions: a pixel becomes foreground if any pixel
// under the kernelSize x kernelSize window is foreground.
func Dilate(b *Binary, kernelSize int) *Binary {
	if kernelSize <= 1 {
		return b.Clone()
	}
	out := New(b.W, b.H)
	half := kernelSize / 2
	for y := 0; y < b.H; y++ {
		for x := 0; x < b.W; x++ {
			any := false
			for ky := -half; ky <= half && !any; ky++ {
				for kx := -half; kx <= half; kx++ {
					if b.At(x+kx, y+ky) {
						any = true
						break
					}
				}
			}
			out.Pix[y*b.W+x] = any
		}
	}
	return out
}

// Open applies erosion followed by dilation, removing speckle noise while
// keeping the extents of surviving blobs roughly intact.
func Open(b *Binary, kernelSize int) *Binary {
	return Dilate(Erode(b, kernelSize), kernelSize)
}
