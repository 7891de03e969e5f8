package main

import (
	"context"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/dustin/go-humanize"
	"github.com/facebookincubator/go-belt"
	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/facebookincubator/go-belt/tool/logger/implementation/logrus"
	"github.com/spf13/pflag"
	"github.com/xaionaro-go/observability"

	"github.com/xaionaro-go/hwdecpipe"
	"github.com/xaionaro-go/hwdecpipe/accelerator"
	"github.com/xaionaro-go/hwdecpipe/device/fakedevice"
	"github.com/xaionaro-go/hwdecpipe/types"
)

type benchClient struct {
	Controller *hwdecpipe.Controller
	FlushedCh  chan struct{}
	Pictures   int
}

var _ hwdecpipe.Client = (*benchClient)(nil)

func (c *benchClient) PictureReady(ctx context.Context, picture types.Picture) {
	c.Pictures++
	c.Controller.ReusePictureBuffer(ctx, picture.BufferID)
}

func (c *benchClient) ProvidePictureBuffers(
	ctx context.Context,
	count int,
	format types.PixelFormat,
	size types.Size,
) {
	logger.Debugf(ctx, "allocating %d %s buffers of %s", count, format, size)
	buffers := make([]types.PictureBuffer, 0, count)
	for i := 0; i < count; i++ {
		buffers = append(buffers, types.PictureBuffer{
			ID:   int32(i),
			Size: size,
		})
	}
	c.Controller.AssignPictureBuffers(ctx, buffers)
}

func (c *benchClient) DismissPictureBuffer(ctx context.Context, pictureBufferID int32) {}

func (c *benchClient) NotifyError(ctx context.Context, err types.Error) {
	logger.Errorf(ctx, "pipeline error: %v", err)
	os.Exit(1)
}

func (c *benchClient) NotifyFlushDone(ctx context.Context) {
	close(c.FlushedCh)
}

func (c *benchClient) NotifyResetDone(ctx context.Context) {}

func main() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "syntax: %s [flags]\n", os.Args[0])
		pflag.PrintDefaults()
	}

	loggerLevel := logger.LevelWarning
	pflag.Var(&loggerLevel, "log-level", "Log level")
	frames := pflag.Int("frames", 300, "how many synthetic coded frames to push through the pipeline")
	frameSize := pflag.Int("frame-size", 64*1024, "coded frame payload size in bytes")
	netPprofAddr := pflag.String("net-pprof-listen-addr", "", "an address to listen for incoming net/pprof connections")
	pflag.Parse()

	l := logrus.Default().WithLevel(loggerLevel)
	ctx := logger.CtxWithLogger(context.Background(), l)
	logger.Default = func() logger.Logger {
		return l
	}
	defer belt.Flush(ctx)

	if *netPprofAddr != "" {
		observability.Go(ctx, func(ctx context.Context) { l.Error(http.ListenAndServe(*netPprofAddr, nil)) })
	}

	dev := fakedevice.New()
	dev.AutoComplete = true

	accel := &accelerator.Dummy{
		Request: accelerator.PictureSetRequest{
			Count: 8,
			Size:  types.Size{Width: 1920, Height: 1080},
		},
		VisibleRect: types.Rect{Width: 1920, Height: 1080},
	}

	client := &benchClient{
		FlushedCh: make(chan struct{}),
	}
	ctrl := hwdecpipe.New(ctx, hwdecpipe.Config{}, dev, accel, client)
	client.Controller = ctrl

	if err := ctrl.Initialize(ctx); err != nil {
		l.Fatal(err)
	}

	payload := make([]byte, *frameSize)
	startTS := time.Now()
	for i := 0; i < *frames; i++ {
		ctrl.Decode(ctx, types.BitstreamBuffer{
			ID:   int32(i),
			Data: payload,
		})
	}
	ctrl.Flush(ctx)

	select {
	case <-client.FlushedCh:
	case <-time.After(time.Minute):
		l.Fatal("the flush did not complete within a minute")
	}
	elapsed := time.Since(startTS)

	ctrl.Destroy(ctx)

	snapshot := ctrl.Stats.Convert()
	fmt.Printf("decoded %d frames (%s) in %s: %.1f fps\n",
		snapshot.FramesDecoded,
		humanize.IBytes(snapshot.BytesConsumed),
		elapsed,
		float64(snapshot.FramesDecoded)/elapsed.Seconds(),
	)
	fmt.Printf("%s", spew.Sdump(snapshot))
}
