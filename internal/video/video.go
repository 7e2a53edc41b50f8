package video

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"io"
	"os"
	"os/exec"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Params describes the output stream. Width and Height must match every
// frame handed to emit.
type Params struct {
	Width, Height int
	FPS           int
	// Bitrate in kbit/s.
	Bitrate int
	// Codec is an ffmpeg encoder name, see system.GetBestH264Encoder.
	Codec string
	// Quality overrides the bitrate with the encoder's own scale when > 0:
	// CRF for libx264, CQ for NVENC, Q*100 kbit/s for VideoToolbox.
	Quality int
}

// FrameFunc produces the frames of one clip, handing each to emit in order.
// emit copies the pixels before it returns, so frames may be reused.
type FrameFunc func(emit func(img *image.RGBA) error) error

type VideoEncoder interface {
	Encode(ctx context.Context, path string, params Params, frames FrameFunc) error
}

var ErrNoFrames = errors.New("video: no frames produced")

type FFmpegEncoder struct {
	// Binary defaults to "ffmpeg".
	Binary string
}

// Encode pipes raw RGBA frames into ffmpeg. The frame producer and ffmpeg
// run as an errgroup; whichever fails first cancels the other. On error the
// partial output is removed.
func (e *FFmpegEncoder) Encode(ctx context.Context, path string, params Params, frames FrameFunc) (err error) {
	defer func() {
		if err != nil {
			if rmErr := os.Remove(path); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
				log.Warn().Err(rmErr).Str("path", path).Msg("[!] could not remove partial video")
			}
		}
	}()

	bin := e.Binary
	if bin == "" {
		bin = "ffmpeg"
	}

	g, gctx := errgroup.WithContext(ctx)
	pr, pw := io.Pipe()

	var stderr bytes.Buffer
	cmd := exec.CommandContext(gctx, bin, buildFFmpegArgs(path, params)...)
	cmd.Stdin = pr
	cmd.Stderr = &stderr

	g.Go(func() error {
		n := 0
		werr := frames(func(img *image.RGBA) error {
			if b := img.Bounds(); b.Dx() != params.Width || b.Dy() != params.Height {
				return fmt.Errorf("frame %d is %dx%d, stream is %dx%d", n, b.Dx(), b.Dy(), params.Width, params.Height)
			}
			if err := writeRawRGBA(pw, img); err != nil {
				return fmt.Errorf("write frame %d: %w", n, err)
			}
			n++
			return nil
		})
		if werr == nil && n == 0 {
			werr = ErrNoFrames
		}
		pw.CloseWithError(werr)
		return werr
	})

	g.Go(func() error {
		rerr := cmd.Run()
		pr.CloseWithError(rerr)
		if rerr != nil {
			return fmt.Errorf("ffmpeg: %w, output: %s", rerr, tail(stderr.Bytes(), 512))
		}
		return nil
	})

	return g.Wait()
}

func buildFFmpegArgs(path string, p Params) []string {
	codec := p.Codec
	if codec == "" {
		codec = "libx264"
	}
	args := []string{
		"-y",
		"-hide_banner", "-loglevel", "error",
		"-f", "rawvideo",
		"-pixel_format", "rgba",
		"-video_size", fmt.Sprintf("%dx%d", p.Width, p.Height),
		"-framerate", fmt.Sprintf("%d", p.FPS),
		"-i", "-",
		"-an",
		"-pix_fmt", "yuv420p",
		"-c:v", codec,
	}

	if p.Quality <= 0 {
		args = append(args, "-b:v", fmt.Sprintf("%dk", p.Bitrate))
		if codec == "libx264" {
			args = append(args, "-preset", "medium")
		}
		return append(args, path)
	}

	switch codec {
	case "h264_videotoolbox":
		args = append(args, "-b:v", fmt.Sprintf("%dk", p.Quality*100))
	case "h264_nvenc":
		args = append(args, "-cq", fmt.Sprintf("%d", p.Quality))
	default: // libx264
		args = append(args, "-crf", fmt.Sprintf("%d", p.Quality), "-preset", "medium")
	}
	return append(args, path)
}

func writeRawRGBA(w io.Writer, img *image.RGBA) error {
	bounds := img.Bounds()
	if img.Stride != bounds.Dx()*4 || bounds.Min != (image.Point{}) {
		packed := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		draw.Draw(packed, packed.Bounds(), img, bounds.Min, draw.Src)
		img = packed
	}
	_, err := w.Write(img.Pix)
	return err
}

func tail(b []byte, n int) []byte {
	if len(b) > n {
		return b[len(b)-n:]
	}
	return b
}
