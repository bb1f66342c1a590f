package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/LdDl/facemesh-go/cvbridge"
	"github.com/LdDl/facemesh-go/facemesh"
	"github.com/LdDl/facemesh-go/internal/config"
	"github.com/LdDl/facemesh-go/internal/log"
	"github.com/LdDl/facemesh-go/internal/metric"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"
)

const (
	escKey = 27
	// Smoothing factor of the displayed frame rate
	fpsAlpha = 0.1
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Can't load configuration: %v", err)
	}
	logger, err := log.NewLogger(log.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	if err != nil {
		logrus.Fatalf("Can't create logger: %v", err)
	}

	if err := run(cfg, logger); err != nil {
		logger.WithError(err).Fatal("Pipeline stopped")
	}
	logger.Info("Pipeline shut down gracefully")
}

func run(cfg config.Config, logger *logrus.Logger) error {
	anchors, err := loadAnchors(cfg.Anchors)
	if err != nil {
		return err
	}

	capture, err := openCapture(cfg)
	if err != nil {
		return err
	}
	defer capture.Close()

	detector, err := cvbridge.NewDetectorNet(cvbridge.DefaultDetectorOptions(cfg.DetectorModel), len(anchors))
	if err != nil {
		return err
	}
	defer detector.Close()
	mesh, err := cvbridge.NewMeshNet(cvbridge.DefaultMeshOptions(cfg.MeshModel))
	if err != nil {
		return err
	}
	defer mesh.Close()

	metrics, err := metric.NewMetric(prometheus.DefaultRegisterer, nil)
	if err != nil {
		return err
	}
	server := startMetricsServer(cfg.MetricsAddr, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info("Received shutdown signal")
		cancel()
	}()

	var window *gocv.Window
	if cfg.ShowWindow {
		window = gocv.NewWindow("facemesh")
		defer window.Close()
	}

	frame := gocv.NewMat()
	defer frame.Close()

	var tracker *facemesh.Tracker[gocv.Mat]
	fps := 0.0
	for ctx.Err() == nil {
		if ok := capture.Read(&frame); !ok || frame.Empty() {
			logger.Info("Video source is exhausted")
			break
		}

		size := facemesh.NewFrameSize(frame.Rows(), frame.Cols())
		if tracker == nil || tracker.Letterbox().Frame != size {
			controller, err := facemesh.NewController(cfg.Facemesh(), anchors, size)
			if err != nil {
				return err
			}
			controller.SetLogger(logger.WithField("component", "tracker"))
			controller.SetObserver(metrics)
			tracker = facemesh.NewTracker[gocv.Mat](controller, detector, mesh)
			logger.WithFields(logrus.Fields{
				"session": controller.SessionID().String(),
				"width":   size.Width,
				"height":  size.Height,
			}).Info("Session started")
		}

		st := time.Now()
		result, err := tracker.Process(ctx, frame)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			metrics.AddError(err)
			if facemesh.IsContractViolation(err) {
				return errors.Wrap(err, "Models do not match pipeline settings")
			}
			logger.WithError(err).Warn("Frame skipped")
			continue
		}
		elapsed := time.Since(st)
		metrics.AddProcessingTime(float64(elapsed.Microseconds()) / 1000.0)
		if elapsed > 0 {
			fps = fpsAlpha*(1.0/elapsed.Seconds()) + (1-fpsAlpha)*fps
		}

		if window != nil {
			cvbridge.DrawResult(&frame, result)
			cvbridge.DrawStatus(&frame, result, fps)
			window.IMShow(frame)
			if window.WaitKey(1) == escKey {
				break
			}
		}
	}

	if server != nil {
		if err := server.Shutdown(context.Background()); err != nil {
			logger.WithError(err).Warn("Can't shut down metrics server")
		}
	}
	return nil
}

func loadAnchors(path string) (facemesh.AnchorTable, error) {
	if path == "" {
		return facemesh.GenerateAnchors(facemesh.DefaultSSDAnchorOptions())
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "Can't open anchors file '%s'", path)
	}
	defer file.Close()
	return facemesh.ReadAnchorsJSON(file)
}

func openCapture(cfg config.Config) (*gocv.VideoCapture, error) {
	if idx, ok := cfg.CameraIndex(); ok {
		capture, err := gocv.VideoCaptureDevice(idx)
		if err != nil {
			return nil, errors.Wrapf(err, "Can't open camera %d", idx)
		}
		return capture, nil
	}
	capture, err := gocv.VideoCaptureFile(cfg.Camera)
	if err != nil {
		return nil, errors.Wrapf(err, "Can't open video '%s'", cfg.Camera)
	}
	return capture, nil
}

func startMetricsServer(addr string, logger *logrus.Logger) *http.Server {
	if addr == "" {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	server := &http.Server{
		Addr:    addr,
		Handler: mux,
	}
	go func() {
		logger.WithField("addr", server.Addr).Info("Starting metrics server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Error("Metrics server failed")
		}
	}()
	return server
}
