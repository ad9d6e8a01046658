package bgremover

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/menta2k/bg-remover/pkg/padder"
	"github.com/menta2k/bg-remover/pkg/pipeline"
	"github.com/menta2k/bg-remover/pkg/types"
	"github.com/menta2k/bg-remover/pkg/vectorizer"
)

// createTestImage creates an image with a grey background and a bright
// subject in the centre
func createTestImage(width, height int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if x > width/3 && x < 2*width/3 && y > height/3 && y < 2*height/3 {
				img.Set(x, y, color.RGBA{255, 255, 255, 255})
			} else {
				img.Set(x, y, color.RGBA{64, 64, 64, 255})
			}
		}
	}
	return img
}

type stubRemover struct {
	mu    sync.Mutex
	calls int
	last  vectorizer.Request
}

func (s *stubRemover) RemoveBackground(ctx context.Context, req vectorizer.Request) vectorizer.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.last = req
	return vectorizer.Result{Success: true, StatusCode: 200, Image: req.Image}
}

func TestNew(t *testing.T) {
	r := New()
	if r == nil {
		t.Fatal("New() returned nil")
	}
	if r.detector == nil || r.padder == nil || r.analyzer == nil {
		t.Error("local components should be initialized")
	}
	if r.remover != nil || r.pipeline != nil {
		t.Error("New() must not create a service client")
	}
}

func TestNewWithConfigMissingCredentials(t *testing.T) {
	_, err := NewWithConfig(Options{Credentials: vectorizer.Credentials{APIKey: "only-key"}})
	if !errors.Is(err, vectorizer.ErrMissingCredentials) {
		t.Errorf("Expected ErrMissingCredentials, got %v", err)
	}
}

func TestNewWithConfig(t *testing.T) {
	r, err := NewWithConfig(Options{
		Credentials: vectorizer.Credentials{APIKey: "k", APISecret: "s"},
		Pipeline:    pipeline.DefaultOptions(),
	})
	if err != nil {
		t.Fatalf("NewWithConfig failed: %v", err)
	}
	if r.pipeline == nil {
		t.Error("pipeline should be initialized")
	}
}

func TestDetectAndPad(t *testing.T) {
	r := New()
	img := createTestImage(90, 60)

	bg := r.DetectBackgroundColor(img)
	if bg != (types.Color{R: 64, G: 64, B: 64}) {
		t.Errorf("Expected #404040, got %s", bg.Hex())
	}

	det, err := r.Detect(img)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if det.Total != 36 {
		t.Errorf("Expected 36 samples, got %d", det.Total)
	}

	padded, err := r.PadToCanvas(img, bg, types.CanvasSpec{Width: 120, Height: 120})
	if err != nil {
		t.Fatalf("PadToCanvas failed: %v", err)
	}
	if padded.Bounds().Dx() != 120 || padded.Bounds().Dy() != 120 {
		t.Errorf("Unexpected canvas %v", padded.Bounds())
	}
	if types.FromColor(padded.At(0, 119)) != bg {
		t.Error("Expected fill colour below the image")
	}

	info := r.GetImageInfo(img, "")
	if info.Width != 90 || info.Mode != "RGBA" {
		t.Errorf("Unexpected info %+v", info)
	}
}

func TestRemoveBackground(t *testing.T) {
	stub := &stubRemover{}
	r, err := NewWithRemover(stub, Options{Pipeline: pipeline.DefaultOptions()})
	if err != nil {
		t.Fatal(err)
	}

	res := r.RemoveBackground(context.Background(), createTestImage(30, 30), "x.png")
	if !res.Success {
		t.Fatalf("Expected success, got %s", res.Message)
	}
	if stub.last.Background != (types.Color{R: 64, G: 64, B: 64}) {
		t.Errorf("Expected detected background in request, got %s", stub.last.Background.Hex())
	}
	if stub.last.OutputWidth != 4500 || stub.last.OutputHeight != 5400 {
		t.Errorf("Expected output size 4500x5400, got %dx%d", stub.last.OutputWidth, stub.last.OutputHeight)
	}

	res = New().RemoveBackground(context.Background(), createTestImage(4, 4), "x.png")
	if res.Success || !errors.Is(res.Err, vectorizer.ErrMissingCredentials) {
		t.Errorf("Expected missing credentials result, got %+v", res)
	}
}

func TestZeroPipelineOptionsUseDefaults(t *testing.T) {
	r, err := NewWithRemover(&stubRemover{}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if r.padder.Anchor() != padder.NearTop {
		t.Errorf("Expected NearTop anchor, got %+v", r.padder.Anchor())
	}
	if r.detector.SampleSize() != 3 {
		t.Errorf("Expected sample size 3, got %d", r.detector.SampleSize())
	}
}

func TestProcessDirectory(t *testing.T) {
	in := t.TempDir()
	for _, name := range []string{"one.png", "two.png"} {
		f, err := os.Create(filepath.Join(in, name))
		if err != nil {
			t.Fatal(err)
		}
		if err := png.Encode(f, createTestImage(20, 20)); err != nil {
			t.Fatal(err)
		}
		f.Close()
	}

	opts := pipeline.DefaultOptions()
	opts.OutputDir = t.TempDir()
	stub := &stubRemover{}
	r, err := NewWithRemover(stub, Options{Pipeline: opts, Concurrency: 2})
	if err != nil {
		t.Fatal(err)
	}

	summary, err := r.ProcessDirectory(context.Background(), in)
	if err != nil {
		t.Fatalf("ProcessDirectory failed: %v", err)
	}
	if summary.Successful != 2 || summary.Failed != 0 {
		t.Errorf("Unexpected summary %+v", summary)
	}
	if stub.calls != 2 {
		t.Errorf("Expected 2 uploads, got %d", stub.calls)
	}

	item, err := r.ProcessImageFile(context.Background(), filepath.Join(in, "one.png"))
	if err != nil || !item.Success {
		t.Errorf("ProcessImageFile failed: %v %s", err, item.Message)
	}

	if _, err := New().ProcessDirectory(context.Background(), in); !errors.Is(err, vectorizer.ErrMissingCredentials) {
		t.Errorf("Expected ErrMissingCredentials without a client, got %v", err)
	}
}

func TestGetVersion(t *testing.T) {
	if GetVersion() != Version {
		t.Errorf("Expected version %s, got %s", Version, GetVersion())
	}
}
