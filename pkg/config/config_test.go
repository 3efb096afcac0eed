// Tests for the config package
//
// Copyright (C) 2026  Go Migration Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package config

import (
	"os"
	"path/filepath"
	"testing"

	"armctl-go/pkg/errors"
)

const validYAML = `
log:
  level: debug
  format: text

arm:
  damping: 0.0001
  rows:
    - {a: 0, alpha_deg: 0, d: 9, theta_deg: 0, type: revolute, joint: 0}
    - {a: 0, alpha_deg: -90, d: 0, theta_deg: 0, type: revolute, joint: 1}
    - {a: 34, alpha_deg: 0, d: 0, theta_deg: 0, type: revolute, joint: 2}
    - {a: 0, alpha_deg: 90, d: 32, theta_deg: 0, type: revolute, joint: 3}
    - {a: 0, alpha_deg: 90, d: 0, theta_deg: 0, type: revolute, joint: 4}
    - {a: 0, alpha_deg: -90, d: 15, theta_deg: 0, type: revolute, joint: 5}
    - {a: 0, alpha_deg: 90, d: 15, theta_deg: 0, type: fixed}
  joints:
    - {type: revolute, min_deg: -180, max_deg: 180}
    - {type: revolute, min_deg: -120, max_deg: 120}
    - {type: revolute, min_deg: -150, max_deg: 150}
    - {type: revolute}
    - {type: revolute}
    - {type: revolute}

ik:
  solver: spherical_wrist
  link_lengths: [9, 34, 32, 15, 15]

controller:
  kp: [1, 1, 1, 1, 1, 1]
  ki: [0.01, 0.01, 0.01, 0, 0, 0]
  kd: [0.1, 0.1, 0.1, 0, 0, 0]
  orthonorm_interval: 50
  velocity_epsilon: 0.0001
  angular_unit: deg
  angular_frame: world

loop:
  dt: 0.05

telemetry:
  addr: ":9100"
`

func TestParseValid(t *testing.T) {
	cfg, err := Parse([]byte(validYAML))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(cfg.Arm.Rows) != 7 {
		t.Errorf("expected 7 rows, got %d", len(cfg.Arm.Rows))
	}
	if len(cfg.Arm.Joints) != 6 {
		t.Errorf("expected 6 joints, got %d", len(cfg.Arm.Joints))
	}
	if cfg.Arm.Rows[2].A != 34 || cfg.Arm.Rows[3].D != 32 {
		t.Errorf("rows parsed wrong: %+v %+v", cfg.Arm.Rows[2], cfg.Arm.Rows[3])
	}
	if cfg.IK.Solver != "spherical_wrist" || len(cfg.IK.LinkLengths) != 5 {
		t.Errorf("ik parsed wrong: %+v", cfg.IK)
	}
	if cfg.LoopDt() != 0.05 {
		t.Errorf("expected dt 0.05, got %v", cfg.LoopDt())
	}
	if cfg.Telemetry.Addr != ":9100" {
		t.Errorf("telemetry addr parsed wrong: %q", cfg.Telemetry.Addr)
	}
	if cfg.Arm.Joints[0].MinDeg == nil || *cfg.Arm.Joints[0].MinDeg != -180 {
		t.Errorf("joint limits parsed wrong: %+v", cfg.Arm.Joints[0])
	}
}

func TestLoopDtDefault(t *testing.T) {
	cfg, err := Parse([]byte(`
arm:
  rows:
    - {a: 0, alpha_deg: 0, d: 1, theta_deg: 0, type: revolute, joint: 0}
  joints:
    - {type: revolute}
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.LoopDt() != DefaultLoopDt {
		t.Errorf("expected default dt, got %v", cfg.LoopDt())
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"no rows", `
arm:
  joints: [{type: revolute}]
`},
		{"no joints", `
arm:
  rows: [{a: 0, alpha_deg: 0, d: 1, theta_deg: 0, type: fixed}]
`},
		{"bad row type", `
arm:
  rows: [{a: 0, alpha_deg: 0, d: 1, theta_deg: 0, type: spherical, joint: 0}]
  joints: [{type: revolute}]
`},
		{"bad joint index", `
arm:
  rows: [{a: 0, alpha_deg: 0, d: 1, theta_deg: 0, type: revolute, joint: 4}]
  joints: [{type: revolute}]
`},
		{"half limits", `
arm:
  rows: [{a: 0, alpha_deg: 0, d: 1, theta_deg: 0, type: revolute, joint: 0}]
  joints: [{type: revolute, min_deg: -90}]
`},
		{"inverted limits", `
arm:
  rows: [{a: 0, alpha_deg: 0, d: 1, theta_deg: 0, type: revolute, joint: 0}]
  joints: [{type: revolute, min_deg: 90, max_deg: -90}]
`},
		{"solver without link lengths", `
arm:
  rows: [{a: 0, alpha_deg: 0, d: 1, theta_deg: 0, type: revolute, joint: 0}]
  joints: [{type: revolute}]
ik:
  solver: spherical_wrist
`},
		{"short gains", `
arm:
  rows: [{a: 0, alpha_deg: 0, d: 1, theta_deg: 0, type: revolute, joint: 0}]
  joints: [{type: revolute}]
controller:
  kp: [1, 2]
`},
		{"bad angular unit", `
arm:
  rows: [{a: 0, alpha_deg: 0, d: 1, theta_deg: 0, type: revolute, joint: 0}]
  joints: [{type: revolute}]
controller:
  angular_unit: grad
`},
		{"bad angular frame", `
arm:
  rows: [{a: 0, alpha_deg: 0, d: 1, theta_deg: 0, type: revolute, joint: 0}]
  joints: [{type: revolute}]
controller:
  angular_frame: base
`},
		{"negative dt", `
arm:
  rows: [{a: 0, alpha_deg: 0, d: 1, theta_deg: 0, type: revolute, joint: 0}]
  joints: [{type: revolute}]
loop:
  dt: -1
`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !errors.IsConfig(err) {
				t.Errorf("expected configuration error, got %v", err)
			}
		})
	}
}

func TestParseInvalidYAML(t *testing.T) {
	_, err := Parse([]byte("arm: [not: a: mapping"))
	if err == nil || !errors.IsConfig(err) {
		t.Errorf("expected configuration error, got %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "arm.yaml")
	if err := os.WriteFile(path, []byte(validYAML), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.Arm.Rows) != 7 {
		t.Errorf("expected 7 rows, got %d", len(cfg.Arm.Rows))
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
