// armctl control-loop host binary
//
// Copyright (C) 2026  Go Migration Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

// armctl is the host control process for a serial-link manipulator.
// It runs the task-space PID control loop over a simulated arm model,
// accepts task-space velocity commands on stdin, and serves telemetry
// (Prometheus metrics, JSON status, WebSocket stream) over HTTP.
//
// Usage:
//
//	armctl -config arm.yaml [options]
//
// Options:
//
//	-config string     Arm configuration file (required)
//	-telemetry string  Telemetry listen address (overrides config)
//	-loglevel string   Log level: debug, info, warn, error
//	-logformat string  Log format: text or json
//	-duration duration Stop after this long (default: run until signal)
//	-direct            Bypass the PID and map commands straight through
//	                   the pseudo-inverse (rad/s, world frame)
//
// Commands on stdin, one per line:
//
//	vx vy vz wx wy wz   set the task-space velocity command
//	hold                zero the command (controller holds pose)
//	quit                exit
//
// Examples:
//
//	# Hold the start pose until interrupted
//	armctl -config examples/arm6r.yaml
//
//	# Stream telemetry on port 9100
//	armctl -config examples/arm6r.yaml -telemetry :9100
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"armctl-go/pkg/arm"
	"armctl-go/pkg/config"
	"armctl-go/pkg/controller"
	"armctl-go/pkg/log"
	"armctl-go/pkg/metrics"
	"armctl-go/pkg/telemetry"
)

func main() {
	configFile := flag.String("config", "", "Arm configuration file (required)")
	telemetryAddr := flag.String("telemetry", "", "Telemetry listen address (overrides config)")
	logLevel := flag.String("loglevel", "", "Log level: debug, info, warn, error")
	logFormat := flag.String("logformat", "", "Log format: text or json")
	duration := flag.Duration("duration", 0, "Stop after this long (default: run until signal)")
	direct := flag.Bool("direct", false, "Bypass the PID: map commands straight through the pseudo-inverse (rad/s, world frame)")
	flag.Parse()

	if *configFile == "" {
		fmt.Fprintf(os.Stderr, "Error: -config is required\n")
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	logger := log.New("armctl")
	level := cfg.Log.Level
	if *logLevel != "" {
		level = *logLevel
	}
	logger.SetLevel(log.ParseLevel(level))
	format := cfg.Log.Format
	if *logFormat != "" {
		format = *logFormat
	}
	logger.SetFormat(log.ParseFormat(format))

	a, err := arm.NewFromConfig(cfg, logger.WithPrefix("arm"))
	if err != nil {
		logger.Error("unable to build arm", "err", err)
		os.Exit(1)
	}
	ctrl, err := controller.NewFromConfig(cfg.Controller, logger.WithPrefix("controller"))
	if err != nil {
		logger.Error("unable to build controller", "err", err)
		os.Exit(1)
	}

	am := metrics.NewArmMetrics()
	a.AttachMetrics(am)
	ctrl.AttachMetrics(am)

	dt := cfg.LoopDt()
	logger.Info("armctl host starting",
		"config", *configFile, "joints", a.NumJoints(), "dt", dt)
	logger.Debug("chain:\n" + a.Describe())

	host := &host{
		arm:     a,
		ctrl:    ctrl,
		direct:  *direct,
		metrics: am,
		logger:  logger,
		cmd:     make([]float64, 6),
		start:   time.Now(),
		quit:    make(chan struct{}),
	}
	host.publishSnapshot()

	// Telemetry server.
	addr := cfg.Telemetry.Addr
	if *telemetryAddr != "" {
		addr = *telemetryAddr
	}
	var ts *telemetry.Server
	if addr != "" {
		ts = telemetry.New(telemetry.Config{
			Addr:     addr,
			Snapshot: host.snapshot,
			Metrics:  am,
			Logger:   logger.WithPrefix("telemetry"),
		})
		go func() {
			if err := ts.Start(); err != nil {
				logger.Error("telemetry server failed", "err", err)
			}
		}()
	}

	// Command reader.
	go host.readCommands(os.Stdin)

	// Control loop until signal or deadline.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	var deadline <-chan time.Time
	if *duration > 0 {
		deadline = time.After(*duration)
	}

	ticker := time.NewTicker(time.Duration(dt * float64(time.Second)))
	defer ticker.Stop()

loop:
	for {
		select {
		case sig := <-sigCh:
			logger.Info("shutting down", "signal", sig.String())
			break loop
		case <-deadline:
			logger.Info("run duration elapsed")
			break loop
		case <-host.quit:
			break loop
		case <-ticker.C:
			host.cycle(dt)
		}
	}

	if ts != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := ts.Shutdown(ctx); err != nil {
			logger.Warn("telemetry shutdown failed", "err", err)
		}
	}
	logger.Info("armctl host stopped")
}

// host ties the arm, controller and command state together for the loop.
type host struct {
	arm     *arm.Arm
	ctrl    *controller.TaskSpacePID
	direct  bool
	metrics *metrics.ArmMetrics
	logger  *log.Logger
	start   time.Time

	mu   sync.Mutex
	cmd  []float64
	snap telemetry.Snapshot

	quitOnce sync.Once
	quit     chan struct{}
}

// cycle runs one control period: compute the joint velocity command, apply
// it to the simulated arm, and refresh telemetry.
func (h *host) cycle(dt float64) {
	done := h.metrics.LoopDuration.Timer(nil)
	defer done()

	h.mu.Lock()
	cmd := append([]float64(nil), h.cmd...)
	h.mu.Unlock()

	if h.direct {
		if err := h.arm.Step(cmd, dt); err != nil {
			h.logger.Warn("direct step degraded", "err", err)
		}
		h.publishSnapshot()
		return
	}

	qd, err := h.ctrl.Compute(h.arm, cmd, dt)
	if err != nil {
		h.logger.Warn("controller cycle degraded", "err", err)
	}

	// Simulated execution: the commanded joint velocities take effect
	// immediately and integrate over the period.
	if err := h.arm.SetJointVelocities(qd); err != nil {
		h.logger.Error("unable to apply joint velocities", "err", err)
		return
	}
	pos := h.arm.JointPositions()
	for i := range pos {
		pos[i] += qd[i] * dt
	}
	if err := h.arm.SetJointPositions(pos); err != nil {
		h.logger.Error("unable to apply joint positions", "err", err)
		return
	}

	h.publishSnapshot()
}

// publishSnapshot refreshes the telemetry snapshot and gauges from the
// current arm state.
func (h *host) publishSnapshot() {
	pose := h.arm.EndEffectorPose()
	positions := h.arm.JointPositions()
	velocities := h.arm.JointVelocities()
	ref := h.ctrl.Reference()

	for i := range positions {
		h.metrics.SetJointState(i, positions[i], velocities[i])
	}
	h.metrics.SetToolPosition(pose.Position.X, pose.Position.Y, pose.Position.Z)

	rot := make([]float64, 0, 9)
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			rot = append(rot, pose.Rotation.At(row, col))
		}
	}

	h.mu.Lock()
	h.snap = telemetry.Snapshot{
		Timestamp:         time.Since(h.start).Seconds(),
		Holding:           h.ctrl.Holding(),
		JointPositions:    positions,
		JointVelocities:   velocities,
		ToolPosition:      []float64{pose.Position.X, pose.Position.Y, pose.Position.Z},
		ToolRotation:      rot,
		ReferencePosition: []float64{ref.Position.X, ref.Position.Y, ref.Position.Z},
	}
	h.mu.Unlock()
}

// snapshot returns the latest telemetry snapshot.
func (h *host) snapshot() telemetry.Snapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.snap
}

// readCommands consumes stdin velocity commands until EOF or "quit".
func (h *host) readCommands(r *os.File) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		switch line {
		case "quit", "exit":
			h.quitOnce.Do(func() { close(h.quit) })
			return
		case "hold":
			h.setCommand(make([]float64, 6))
			continue
		}

		fields := strings.Fields(line)
		if len(fields) != 6 {
			h.logger.Warn("bad command, want 6 values", "line", line)
			continue
		}
		cmd := make([]float64, 6)
		ok := true
		for i, f := range fields {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				h.logger.Warn("bad command value", "value", f)
				ok = false
				break
			}
			cmd[i] = v
		}
		if ok {
			h.setCommand(cmd)
		}
	}
}

func (h *host) setCommand(cmd []float64) {
	h.mu.Lock()
	copy(h.cmd, cmd)
	h.mu.Unlock()
	h.logger.Info("command updated",
		"vx", cmd[0], "vy", cmd[1], "vz", cmd[2],
		"wx", cmd[3], "wy", cmd[4], "wz", cmd[5])
}
