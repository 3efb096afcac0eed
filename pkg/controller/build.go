// Controller construction from the YAML configuration
//
// Copyright (C) 2026  Go Migration Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package controller

import (
	"armctl-go/pkg/config"
	"armctl-go/pkg/log"
)

// NewFromConfig builds a controller from the host configuration. Omitted
// gain arrays fall back to the defaults.
func NewFromConfig(cc config.ControllerConfig, logger *log.Logger) (*TaskSpacePID, error) {
	cfg := DefaultConfig()
	copy(cfg.Kp[:], cc.Kp)
	copy(cfg.Ki[:], cc.Ki)
	copy(cfg.Kd[:], cc.Kd)
	if cc.OrthonormInterval > 0 {
		cfg.OrthonormInterval = cc.OrthonormInterval
	}
	if cc.VelocityEpsilon > 0 {
		cfg.VelocityEpsilon = cc.VelocityEpsilon
	}
	if cc.AngularUnit == "rad" {
		cfg.AngularUnit = Radians
	}
	if cc.AngularFrame == "tool" {
		cfg.AngularFrame = EndEffectorFrame
	}
	return New(cfg, logger)
}
