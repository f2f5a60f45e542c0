package main

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"flag"
	"fmt"
	"io"
	"math"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/signalsfoundry/cosmoview/core"
	"github.com/signalsfoundry/cosmoview/ephemeris"
	"github.com/signalsfoundry/cosmoview/internal/config"
	"github.com/signalsfoundry/cosmoview/internal/logging"
	"github.com/signalsfoundry/cosmoview/internal/observability"
	"github.com/signalsfoundry/cosmoview/kb"
	"github.com/signalsfoundry/cosmoview/model"
	"github.com/signalsfoundry/cosmoview/observer"
	"github.com/signalsfoundry/cosmoview/timectrl"
)

//go:embed solar_system.json
var builtinCatalog []byte

func main() {
	configPath := flag.String("config", "", "path to a JSON or YAML config file")
	catalogPath := flag.String("catalog", "", "path to a JSON body catalog (overrides catalog.path)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if *catalogPath != "" {
		cfg.Catalog.Path = *catalogPath
	}

	log := logging.New(cfg.Logging())
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rep, err := run(ctx, cfg, log, prometheus.DefaultRegisterer)
	if err != nil {
		log.Error(ctx, "simulation failed", logging.Err(err))
		os.Exit(1)
	}
	rep.print(os.Stdout)
}

// report summarises a run for the console and for tests.
type report struct {
	Frames           int
	ActionsCompleted int
	Center           string
	Target           string
	TargetDistance   float64
	SimTime          float64
	// SubObserver is the point on the center body below the camera; valid
	// only when HasSubObserver is set.
	SubObserver    model.PlanetographicCoord
	HasSubObserver bool
	TargetVisible  bool
}

func (r *report) print(w io.Writer) {
	fmt.Fprintf(w, "Simulation complete at %s: %d frames, %d camera actions finished.\n",
		model.TimeFromJ2000Seconds(r.SimTime).Format(time.RFC3339), r.Frames, r.ActionsCompleted)
	fmt.Fprintf(w, "Camera centered on %s, %.1f km from %s (visible=%v).\n",
		r.Center, r.TargetDistance, r.Target, r.TargetVisible)
	if r.HasSubObserver {
		fmt.Fprintf(w, "Sub-observer point: lat %.3f°, lon %.3f°, height %.1f km.\n",
			r.SubObserver.Latitude*180/math.Pi, r.SubObserver.Longitude*180/math.Pi, r.SubObserver.Height)
	}
}

func run(ctx context.Context, cfg *config.Config, log logging.Logger, reg prometheus.Registerer) (*report, error) {
	shutdown, err := observability.InitTracing(ctx, cfg.TracingSettings(), log)
	if err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}
	defer observability.ShutdownWithTimeout(context.Background(), shutdown, log)

	collector, err := observability.NewFrameCollector(reg)
	if err != nil {
		return nil, fmt.Errorf("init metrics: %w", err)
	}
	if cfg.Metrics.Addr != "" {
		srv := serveMetrics(cfg.Metrics.Addr, collector, log)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	entityOpts := []core.EntityOption{
		core.WithEntityLogger(log),
		core.WithEntityFailureRecorder(collector),
	}
	if cfg.Ephemeris.Path != "" {
		eph, err := ephemeris.Open(cfg.Ephemeris.Path, ephemeris.WithLogger(log))
		if err != nil {
			return nil, err
		}
		defer eph.Close()
		start, end := eph.Coverage()
		log.Info(ctx, "opened JPL ephemeris",
			logging.String("path", cfg.Ephemeris.Path),
			logging.Int("version", int(eph.Version())),
			logging.Float64("start_et", start),
			logging.Float64("end_et", end),
		)
		entityOpts = append(entityOpts,
			core.WithEphemerisTrajectories(eph.TrajectoryFor),
			core.WithFrameTransformer(eph.FrameService()),
		)
	} else {
		entityOpts = append(entityOpts, core.WithFrameTransformer(approximateFrames()))
	}

	catalog := kb.NewCatalog()
	unsubscribe := catalog.Subscribe(func(e kb.Event) {
		if e.Type != kb.EventBodyMoved {
			collector.SetCatalogBodies(catalog.Len())
		}
	})
	defer unsubscribe()
	if err := loadCatalog(ctx, catalog, cfg.Catalog.Path, log, entityOpts); err != nil {
		return nil, err
	}

	motion := core.NewMotionModel(core.WithPositionUpdater(catalog), core.WithMotionLogger(log))
	for _, body := range catalog.ListBodies() {
		if err := motion.AddEntity(body); err != nil {
			return nil, err
		}
	}

	start, err := cfg.StartSeconds(time.Now())
	if err != nil {
		return nil, err
	}
	mode := timectrl.Accelerated
	if strings.EqualFold(cfg.Sim.Mode, "realtime") {
		mode = timectrl.RealTime
	}
	clock := timectrl.NewTimeController(start, cfg.Sim.Tick, mode)
	clock.SetTimeScale(cfg.Sim.TimeScale)

	center := catalog.GetBody(cfg.Camera.Center)
	target := catalog.GetBody(cfg.Camera.Target)
	if center == nil {
		return nil, fmt.Errorf("camera center %q: %w", cfg.Camera.Center, kb.ErrBodyNotFound)
	}
	if target == nil {
		return nil, fmt.Errorf("camera target %q: %w", cfg.Camera.Target, kb.ErrBodyNotFound)
	}

	tracer := observability.Tracer()
	ctx, runSpan := tracer.Start(ctx, "simulation.run")
	runSpan.SetAttributes(
		attribute.Int("catalog.bodies", catalog.Len()),
		attribute.String("camera.center", center.Name()),
		attribute.String("camera.target", target.Name()),
	)
	defer runSpan.End()

	obs := observer.New(center)
	if err := snapToViewpoint(ctx, cfg.Camera, catalog, obs, start); err != nil {
		return nil, err
	}

	controller := observer.NewController(obs, observer.WithLogger(log), observer.WithActionRecorder(collector))
	action, err := newAction(cfg.Camera, obs, target, clock.Now())
	if err != nil {
		return nil, err
	}
	controller.Start(action)

	rep := &report{Target: target.Name()}
	clock.AddListener(func(f timectrl.FrameTime) {
		began := time.Now()
		_ = motion.UpdatePositions(f.Sim) // failures are logged per body
		if controller.Update(f.Real, f.Sim) {
			rep.ActionsCompleted++
			log.Info(ctx, "camera action finished",
				logging.String("action", cfg.Camera.Action),
				logging.String("center", bodyName(obs.Center())),
				logging.Float64("sim_time", f.Sim),
			)
		}
		rep.Frames++
		rep.SimTime = f.Sim
		collector.ObserveFrame(time.Since(began), f.Sim)
	})

	log.Info(ctx, "starting simulation",
		logging.String("duration", cfg.Sim.Duration.String()),
		logging.String("tick", cfg.Sim.Tick.String()),
		logging.Float64("time_scale", cfg.Sim.TimeScale),
		logging.String("start", model.TimeFromJ2000Seconds(start).Format(time.RFC3339)),
	)
	<-clock.Start(ctx, cfg.Sim.Duration)

	summarize(rep, obs, target, clock.Now().Sim)
	runSpan.SetAttributes(attribute.Int("frames", rep.Frames))
	return rep, nil
}

func loadCatalog(ctx context.Context, catalog *kb.Catalog, path string, log logging.Logger, opts []core.EntityOption) error {
	var r io.Reader = bytes.NewReader(builtinCatalog)
	source := "builtin"
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open catalog %q: %w", path, err)
		}
		defer f.Close()
		r, source = f, path
	}
	names, err := kb.LoadCatalog(catalog, r, opts...)
	if err != nil {
		return fmt.Errorf("load catalog %s: %w", source, err)
	}
	log.Info(ctx, "loaded body catalog",
		logging.String("source", source),
		logging.Int("count", len(names)),
		logging.String("bodies", strings.Join(names, ",")),
	)
	return nil
}

// approximateFrames stands in for an ephemeris when none is configured: the
// lunar principal-axis frame becomes the IAU mean rotation of the Moon.
func approximateFrames() *ephemeris.StaticFrameService {
	const deg = math.Pi / 180
	moon := core.NewUniformRotationModel(
		23.4608*deg,  // 90° - pole declination
		359.9949*deg, // pole right ascension + 90°
		13.17635815*deg/model.SecondsPerDay,
		38.3213*deg,
		0,
	)
	return ephemeris.NewStaticFrameService(map[string]core.Frame{
		ephemeris.FrameMoonPA: core.NewBodyFixedFrame(moon),
	})
}

func snapToViewpoint(ctx context.Context, cam config.CameraConfig, catalog *kb.Catalog, obs *observer.Observer, t float64) error {
	_, span := observability.Tracer().Start(ctx, "viewpoint.snap")
	defer span.End()

	up, err := parseUp(cam.Up)
	if err != nil {
		return err
	}
	vp := observer.NewViewpoint(obs.Center(), cam.Distance)
	vp.Name = "startup"
	if ref := catalog.GetBody(cam.Reference); ref != nil {
		vp.ReferenceBody = ref
	}
	vp.Azimuth = cam.Azimuth
	vp.Elevation = cam.Elevation
	vp.Up = up
	vp.PositionObserver(obs, t)

	span.SetAttributes(attribute.String("viewpoint.up", up.String()))
	return nil
}

func parseUp(s string) (observer.UpDirection, error) {
	for _, u := range []observer.UpDirection{
		observer.CenterNorth, observer.CenterSouth, observer.EclipticNorth, observer.EclipticSouth,
	} {
		if strings.EqualFold(s, u.String()) {
			return u, nil
		}
	}
	return 0, fmt.Errorf("camera.up %q is not one of CenterNorth, CenterSouth, EclipticNorth, EclipticSouth", s)
}

func newAction(cam config.CameraConfig, obs *observer.Observer, target observer.Body, now timectrl.FrameTime) (observer.Action, error) {
	duration := cam.GotoDuration.Seconds()
	switch strings.ToLower(cam.Action) {
	case "center":
		return observer.NewCenter(obs, target, duration, now.Real, now.Sim), nil
	case "goto":
		return observer.NewGoto(obs, target, duration, now.Real, now.Sim, cam.FinalDistance), nil
	case "orbitgoto", "orbit_goto":
		return observer.NewOrbitGoto(obs, target, duration, now.Real, now.Sim, cam.FinalDistance), nil
	default:
		return nil, errors.New("camera.action must be center, goto or orbitgoto")
	}
}

func bodyName(b observer.Body) string {
	if e, ok := b.(*core.Entity); ok && e != nil {
		return e.Name()
	}
	return "origin"
}

func summarize(rep *report, obs *observer.Observer, target *core.Entity, t float64) {
	eye := obs.AbsolutePosition(t)
	rep.Center = bodyName(obs.Center())
	rep.TargetDistance = r3.Norm(r3.Sub(target.Position(t), eye))
	rep.TargetVisible = true

	center, ok := obs.Center().(*core.Entity)
	if !ok || center.Shape().IsDegenerate() {
		return
	}
	// Body-fixed coordinates of the camera and the target.
	toBody := quat.Conj(center.Orientation(t))
	origin := center.Position(t)
	eyeFixed := core.Rotate(toBody, r3.Sub(eye, origin))
	targetFixed := core.Rotate(toBody, r3.Sub(target.Position(t), origin))

	rep.SubObserver = center.Shape().RectangularToPlanetographic(eyeFixed)
	rep.HasSubObserver = true
	if center != target {
		rep.TargetVisible = core.HasLineOfSight(eyeFixed, targetFixed, center.Shape())
	}
}

func serveMetrics(addr string, collector *observability.FrameCollector, log logging.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())

	srv := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Warn(context.Background(), "metrics server exited", logging.Err(err))
		}
	}()

	log.Info(context.Background(), "serving Prometheus metrics", logging.String("addr", addr))
	return srv
}
