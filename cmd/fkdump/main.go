// fkdump kinematic chain inspection tool
//
// Copyright (C) 2026  Go Migration Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

// fkdump loads an arm configuration, applies joint angles, and prints the
// kinematic chain state: the DH table, every frame pose, the end-effector
// pose, and optionally a closed-form IK solution for a target pose.
//
// Usage:
//
//	fkdump -config arm.yaml [options]
//
// Options:
//
//	-config string  Arm configuration file (required)
//	-angles string  Comma-separated joint angles in degrees (default: zeros)
//	-rad            Interpret -angles as radians
//	-ik string      Solve IK for "x,y,z,yaw,pitch,roll" (angles degrees)
//
// Examples:
//
//	# Zero-configuration pose dump
//	fkdump -config examples/arm6r.yaml
//
//	# Poses at a joint configuration
//	fkdump -config examples/arm6r.yaml -angles 10,-20,30,0,15,0
//
//	# Closed-form IK for a target pose
//	fkdump -config examples/arm6r.yaml -ik 20,5,45,0,90,0
package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"armctl-go/pkg/arm"
	"armctl-go/pkg/config"
	"armctl-go/pkg/kinematics"
	"armctl-go/pkg/log"
)

func main() {
	configFile := flag.String("config", "", "Arm configuration file (required)")
	angles := flag.String("angles", "", "Comma-separated joint angles in degrees")
	rad := flag.Bool("rad", false, "Interpret -angles as radians")
	ikTarget := flag.String("ik", "", `Solve IK for "x,y,z,yaw,pitch,roll" (angles degrees)`)
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
	a, err := arm.NewFromConfig(cfg, log.Discard())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building arm: %v\n", err)
		os.Exit(1)
	}

	if *angles != "" {
		vals, err := parseFloats(*angles, a.NumJoints())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing -angles: %v\n", err)
			os.Exit(1)
		}
		if *rad {
			err = a.SetJointPositions(vals)
		} else {
			err = a.SetJointPositionsDeg(vals)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error applying angles: %v\n", err)
			os.Exit(1)
		}
	}

	fmt.Println(a.Describe())
	fmt.Println()

	for i, pose := range a.AllPoses() {
		fmt.Printf("frame %d: %s\n", i, formatPose(pose))
	}
	fmt.Printf("\nend effector: %s\n", formatPose(a.EndEffectorPose()))

	if *ikTarget != "" {
		vals, err := parseFloats(*ikTarget, 6)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing -ik: %v\n", err)
			os.Exit(1)
		}
		deg := math.Pi / 180
		solution, err := a.SolveIK(vals[0], vals[1], vals[2],
			vals[3]*deg, vals[4]*deg, vals[5]*deg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "IK failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("\nIK solution (deg):")
		for _, v := range solution {
			fmt.Printf(" %8.3f", v*180/math.Pi)
		}
		fmt.Println()
	}
}

func parseFloats(s string, want int) ([]float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) != want {
		return nil, fmt.Errorf("expected %d values, got %d", want, len(parts))
	}
	out := make([]float64, want)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("value %q: %w", p, err)
		}
		out[i] = v
	}
	return out, nil
}

func formatPose(p kinematics.Pose) string {
	return fmt.Sprintf("pos=(%8.3f, %8.3f, %8.3f)  x=(%6.3f,%6.3f,%6.3f) y=(%6.3f,%6.3f,%6.3f) z=(%6.3f,%6.3f,%6.3f)",
		p.Position.X, p.Position.Y, p.Position.Z,
		p.XAxis().X, p.XAxis().Y, p.XAxis().Z,
		p.YAxis().X, p.YAxis().Y, p.YAxis().Z,
		p.ZAxis().X, p.ZAxis().Y, p.ZAxis().Z)
}
