package frames

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os/exec"
	"strconv"
	"strings"

	"vidcheck/internal/media/ffprobe"
)

// ProbeFunc inspects a media file.
type ProbeFunc func(ctx context.Context, path string) (ffprobe.Result, error)

// StartFunc launches a process and returns its stdout and a wait function that
// reports the exit status.
type StartFunc func(ctx context.Context, name string, args ...string) (io.ReadCloser, func() error, error)

// FFmpegOpener decodes frames by piping raw video out of ffmpeg.
type FFmpegOpener struct {
	FFmpegBinary  string
	FFprobeBinary string

	probe ProbeFunc
	start StartFunc
}

// NewFFmpegOpener builds an opener using the given binaries.
func NewFFmpegOpener(ffmpegBinary, ffprobeBinary string) *FFmpegOpener {
	if strings.TrimSpace(ffmpegBinary) == "" {
		ffmpegBinary = "ffmpeg"
	}
	if strings.TrimSpace(ffprobeBinary) == "" {
		ffprobeBinary = "ffprobe"
	}
	return &FFmpegOpener{FFmpegBinary: ffmpegBinary, FFprobeBinary: ffprobeBinary}
}

// WithProbe overrides stream inspection (for testing).
func (o *FFmpegOpener) WithProbe(probe ProbeFunc) *FFmpegOpener {
	o.probe = probe
	return o
}

// WithStart overrides process launching (for testing).
func (o *FFmpegOpener) WithStart(start StartFunc) *FFmpegOpener {
	o.start = start
	return o
}

// Open probes the file for its geometry and starts an ffmpeg process that
// writes only the frames the hint asks for.
func (o *FFmpegOpener) Open(ctx context.Context, path string, hint Hint) (Decoder, error) {
	probe := o.probe
	if probe == nil {
		probe = func(ctx context.Context, path string) (ffprobe.Result, error) {
			return ffprobe.Inspect(ctx, o.FFprobeBinary, path)
		}
	}
	info, err := probe(ctx, path)
	if err != nil {
		return nil, err
	}
	stream, ok := info.VideoStream()
	if !ok {
		return nil, errors.New("no video stream")
	}
	if stream.Width <= 0 || stream.Height <= 0 {
		return nil, fmt.Errorf("invalid video geometry %dx%d", stream.Width, stream.Height)
	}

	width, height := scaledSize(stream.Width, stream.Height, hint.Width)
	channels := 3
	if hint.Gray {
		channels = 1
	}

	start := o.start
	if start == nil {
		start = startProcess
	}
	stdout, wait, err := start(ctx, o.FFmpegBinary, buildDecodeArgs(path, hint, width, height)...)
	if err != nil {
		return nil, fmt.Errorf("start ffmpeg: %w", err)
	}
	stride := hint.Stride
	if stride < 1 {
		stride = 1
	}
	return &rawDecoder{
		reader:   bufio.NewReaderSize(stdout, width*height*channels),
		closer:   stdout,
		wait:     wait,
		width:    width,
		height:   height,
		channels: channels,
		stride:   stride,
	}, nil
}

// scaledSize keeps the aspect ratio and rounds the height to an even value,
// which most encoders and ffmpeg's scaler expect.
func scaledSize(srcW, srcH, targetW int) (int, int) {
	if targetW <= 0 || targetW >= srcW {
		return srcW, srcH
	}
	h := (srcH*targetW + srcW/2) / srcW
	if h%2 == 1 {
		h++
	}
	if h < 2 {
		h = 2
	}
	return targetW, h
}

func buildDecodeArgs(path string, hint Hint, width, height int) []string {
	filters := make([]string, 0, 2)
	if hint.Stride > 1 {
		filters = append(filters, "select=not(mod(n\\,"+strconv.Itoa(hint.Stride)+"))")
	}
	filters = append(filters, "scale="+strconv.Itoa(width)+":"+strconv.Itoa(height))

	pixFmt := "rgb24"
	if hint.Gray {
		pixFmt = "gray"
	}
	args := []string{
		"-hide_banner",
		"-loglevel", "error",
		"-nostdin",
		"-noautorotate",
		"-i", path,
		"-an", "-sn", "-dn",
		"-vf", strings.Join(filters, ","),
		"-fps_mode", "passthrough",
	}
	if hint.Max > 0 {
		args = append(args, "-frames:v", strconv.Itoa(hint.Max))
	}
	return append(args, "-pix_fmt", pixFmt, "-f", "rawvideo", "-")
}

func startProcess(ctx context.Context, name string, args ...string) (io.ReadCloser, func() error, error) {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, nil, err
	}
	wait := func() error {
		if err := cmd.Wait(); err != nil {
			return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(stderr.String()))
		}
		return nil
	}
	return stdout, wait, nil
}

// rawDecoder reads fixed-size rawvideo frames. ffmpeg already applied the
// select filter, so output frame i sits at decoded position i*stride.
type rawDecoder struct {
	reader   *bufio.Reader
	closer   io.Closer
	wait     func() error
	width    int
	height   int
	channels int
	stride   int
	index    int
	done     bool
}

func (d *rawDecoder) Next() (Frame, error) {
	if d.done {
		return Frame{}, io.EOF
	}
	buf := make([]byte, d.width*d.height*d.channels)
	if _, err := io.ReadFull(d.reader, buf); err != nil {
		d.done = true
		if errors.Is(err, io.EOF) {
			if werr := d.finish(); werr != nil {
				return Frame{}, werr
			}
			return Frame{}, io.EOF
		}
		if errors.Is(err, io.ErrUnexpectedEOF) {
			if werr := d.finish(); werr != nil {
				return Frame{}, werr
			}
			return Frame{}, fmt.Errorf("truncated frame %d", d.index)
		}
		return Frame{}, err
	}

	frame := Frame{Position: d.index * d.stride, Image: d.toImage(buf)}
	d.index++
	return frame, nil
}

func (d *rawDecoder) toImage(buf []byte) image.Image {
	rect := image.Rect(0, 0, d.width, d.height)
	if d.channels == 1 {
		return &image.Gray{Pix: buf, Stride: d.width, Rect: rect}
	}
	img := image.NewRGBA(rect)
	for i, j := 0, 0; i < len(buf); i, j = i+3, j+4 {
		img.Pix[j] = buf[i]
		img.Pix[j+1] = buf[i+1]
		img.Pix[j+2] = buf[i+2]
		img.Pix[j+3] = 0xff
	}
	return img
}

func (d *rawDecoder) finish() error {
	if d.wait == nil {
		return nil
	}
	wait := d.wait
	d.wait = nil
	return wait()
}

// Close stops reading and reaps the ffmpeg process. Exit errors caused by an
// early close are expected and ignored.
func (d *rawDecoder) Close() error {
	d.done = true
	if d.wait == nil {
		return nil
	}
	_ = d.closer.Close()
	_ = d.finish()
	return nil
}
