// Arm construction from the YAML configuration
//
// Copyright (C) 2026  Go Migration Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package arm

import (
	"fmt"

	"armctl-go/pkg/config"
	"armctl-go/pkg/errors"
	"armctl-go/pkg/ik"
	"armctl-go/pkg/joint"
	"armctl-go/pkg/kinematics"
	"armctl-go/pkg/log"
)

// NewFromConfig builds an arm from a validated host configuration.
func NewFromConfig(cfg *config.Config, logger *log.Logger) (*Arm, error) {
	rows := make([]kinematics.DHRow, len(cfg.Arm.Rows))
	for i, rc := range cfg.Arm.Rows {
		switch rc.Type {
		case "fixed":
			rows[i] = kinematics.NewFixedRow(rc.A, rc.AlphaDeg, rc.D, rc.ThetaDeg)
		case "revolute":
			rows[i] = kinematics.NewJointRow(rc.A, rc.AlphaDeg, rc.D, rc.ThetaDeg,
				kinematics.FrameRevolute, rc.Joint)
		case "prismatic":
			rows[i] = kinematics.NewJointRow(rc.A, rc.AlphaDeg, rc.D, rc.ThetaDeg,
				kinematics.FramePrismatic, rc.Joint)
		default:
			return nil, errors.ConfigParamError(fmt.Sprintf("arm.rows[%d].type", i),
				fmt.Sprintf("unknown type %q", rc.Type))
		}
	}

	joints := make([]joint.Joint, len(cfg.Arm.Joints))
	for i, jc := range cfg.Arm.Joints {
		switch {
		case jc.Type == "revolute" && jc.MinDeg != nil:
			joints[i] = joint.NewRevoluteDeg(*jc.MinDeg, *jc.MaxDeg)
		case jc.Type == "revolute":
			joints[i] = joint.New(joint.Revolute)
		case jc.MinDeg != nil:
			// Prismatic limits are length units despite the field name.
			joints[i] = joint.NewWithLimits(joint.Prismatic, *jc.MinDeg, *jc.MaxDeg)
		default:
			joints[i] = joint.New(joint.Prismatic)
		}
	}

	table, err := kinematics.NewDHTable(rows, len(joints))
	if err != nil {
		return nil, err
	}

	var solver ik.Solver
	if cfg.IK.Solver != "" {
		solver, err = ik.NewFromName(cfg.IK.Solver)
		if err != nil {
			return nil, err
		}
	}

	a, err := New(table, joints, solver, cfg.IK.LinkLengths, logger)
	if err != nil {
		return nil, err
	}
	if cfg.Arm.Damping > 0 {
		if err := a.SetDamping(cfg.Arm.Damping); err != nil {
			return nil, err
		}
	}
	return a, nil
}
