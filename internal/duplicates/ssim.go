package duplicates

import (
	"context"
	"image"
	"runtime"

	"golang.org/x/sync/errgroup"

	"vidcheck/internal/frames"
)

const (
	dataRange = 255.0
	c1        = (0.01 * dataRange) * (0.01 * dataRange)
	c2        = (0.03 * dataRange) * (0.03 * dataRange)
)

// SSIMDetector reports adjacent frames whose mean SSIM exceeds Threshold.
type SSIMDetector struct {
	Threshold float64
	Window    int
}

// NewSSIMDetector applies defaults for non-positive arguments.
func NewSSIMDetector(threshold float64, window int) SSIMDetector {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	if window <= 0 {
		window = DefaultWindow
	}
	return SSIMDetector{Threshold: threshold, Window: window}
}

// Detect scores every adjacent pair. Pairs are independent, so they are scored
// in parallel and reported in sequence order.
func (d SSIMDetector) Detect(ctx context.Context, seq frames.SampledSequence) (Report, error) {
	report := Report{TotalFrames: len(seq.Frames), Strategy: StrategySSIM, Threshold: d.Threshold, Pairs: []Pair{}}
	if len(seq.Frames) < 2 {
		return report, nil
	}

	gray := make([]*image.Gray, len(seq.Frames))
	for i, f := range seq.Frames {
		gray[i] = frames.Grayscale(f.Image)
	}

	scores := make([]float64, len(gray)-1)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := range scores {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			scores[i] = MeanSSIM(gray[i], gray[i+1], d.Window)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return report, err
	}

	for i, score := range scores {
		if score > d.Threshold {
			report.Pairs = append(report.Pairs, Pair{
				PositionA: seq.Frames[i].Position,
				PositionB: seq.Frames[i+1].Position,
				Score:     score,
			})
		}
	}
	return report, nil
}

// MeanSSIM computes the mean structural similarity of two grayscale images
// over every full window position, using a uniform window and sample
// covariance. Images of different size score 0. Windows larger than the
// image shrink to the largest odd size that fits.
func MeanSSIM(a, b *image.Gray, window int) float64 {
	w, h := a.Bounds().Dx(), a.Bounds().Dy()
	if w != b.Bounds().Dx() || h != b.Bounds().Dy() || w == 0 || h == 0 {
		return 0
	}
	if window > w {
		window = w
	}
	if window > h {
		window = h
	}
	if window%2 == 0 {
		window--
	}
	if window < 1 {
		window = 1
	}

	sa := newSums(a, b, w, h)
	np := float64(window * window)
	covNorm := 1.0
	if window > 1 {
		covNorm = np / (np - 1)
	}

	var total float64
	count := 0
	for y := 0; y+window <= h; y++ {
		for x := 0; x+window <= w; x++ {
			sx, sy, sxx, syy, sxy := sa.window(x, y, window)
			ux := sx / np
			uy := sy / np
			vx := covNorm * (sxx/np - ux*ux)
			vy := covNorm * (syy/np - uy*uy)
			vxy := covNorm * (sxy/np - ux*uy)

			num := (2*ux*uy + c1) * (2*vxy + c2)
			den := (ux*ux + uy*uy + c1) * (vx + vy + c2)
			total += num / den
			count++
		}
	}
	return total / float64(count)
}

// sums holds summed-area tables for x, y, x², y² and xy so every window
// statistic is an O(1) lookup. Values are exact in int64 for 8-bit input.
type sums struct {
	stride int
	x      []int64
	y      []int64
	xx     []int64
	yy     []int64
	xy     []int64
}

func newSums(a, b *image.Gray, w, h int) *sums {
	stride := w + 1
	size := stride * (h + 1)
	s := &sums{
		stride: stride,
		x:      make([]int64, size),
		y:      make([]int64, size),
		xx:     make([]int64, size),
		yy:     make([]int64, size),
		xy:     make([]int64, size),
	}
	ab, bb := a.Bounds(), b.Bounds()
	for j := 0; j < h; j++ {
		rowA := a.Pix[a.PixOffset(ab.Min.X, ab.Min.Y+j):]
		rowB := b.Pix[b.PixOffset(bb.Min.X, bb.Min.Y+j):]
		var rx, ry, rxx, ryy, rxy int64
		for i := 0; i < w; i++ {
			pa, pb := int64(rowA[i]), int64(rowB[i])
			rx += pa
			ry += pb
			rxx += pa * pa
			ryy += pb * pb
			rxy += pa * pb
			idx := (j+1)*stride + i + 1
			up := j*stride + i + 1
			s.x[idx] = s.x[up] + rx
			s.y[idx] = s.y[up] + ry
			s.xx[idx] = s.xx[up] + rxx
			s.yy[idx] = s.yy[up] + ryy
			s.xy[idx] = s.xy[up] + rxy
		}
	}
	return s
}

func (s *sums) window(x, y, size int) (sx, sy, sxx, syy, sxy float64) {
	tl := y*s.stride + x
	tr := y*s.stride + x + size
	bl := (y+size)*s.stride + x
	br := (y+size)*s.stride + x + size
	rect := func(t []int64) float64 {
		return float64(t[br] - t[tr] - t[bl] + t[tl])
	}
	return rect(s.x), rect(s.y), rect(s.xx), rect(s.yy), rect(s.xy)
}
