// Copyright 2025 Vulntor Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

// Package selftest runs the expectations shipped with each annotation
// against the embedded device fixtures.
package selftest

import (
	"fmt"
	"maps"
	"sort"

	"github.com/vulntor/annotator/pkg/annotation"
	"github.com/vulntor/annotator/pkg/device"
	"github.com/vulntor/annotator/pkg/metadata"
	"github.com/vulntor/annotator/pkg/record"
)

// Status is the outcome for one annotation.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFail    Status = "fail"
	StatusNoTests Status = "no tests"
)

// Result is the outcome of one annotation's expectations.
type Result struct {
	Annotation string
	Status     Status
	Errors     []string
}

// Report aggregates a self-test run.
type Report struct {
	Results []Result
	// Loaded and Declared count registrations; a declared unit whose rule set
	// did not load is not tested.
	Loaded   int
	Declared int
	Tested   int
	Passing  int
}

// Failed reports whether any expectation or registration failed.
func (r *Report) Failed() bool {
	return r.Passing < r.Tested || r.Loaded < r.Declared
}

// ExitCode is 1 when the run failed and 0 otherwise.
func (r *Report) ExitCode() int {
	if r.Failed() {
		return 1
	}
	return 0
}

// Options tunes a run.
type Options struct {
	// CrashOnFailure stops at the first failing annotation and returns its
	// error alongside the partial report.
	CrashOnFailure bool
}

// Run checks every active annotation of reg, in name order.
func Run(reg *annotation.Registry, devices *device.Catalog, opts Options) (*Report, error) {
	report := &Report{}
	for _, res := range reg.Results() {
		report.Declared++
		if res.OK() {
			report.Loaded++
		}
	}

	units := reg.Annotations()
	sort.SliceStable(units, func(i, j int) bool { return units[i].Name() < units[j].Name() })

	for _, a := range units {
		res := Result{Annotation: a.Name()}
		tester, ok := a.(annotation.Tester)
		if !ok || len(tester.Tests()) == 0 {
			res.Status = StatusNoTests
			report.Results = append(report.Results, res)
			continue
		}

		report.Tested++
		for _, exp := range tester.Tests() {
			res.Errors = append(res.Errors, check(a, exp, devices)...)
		}
		if len(res.Errors) == 0 {
			res.Status = StatusSuccess
			report.Passing++
		} else {
			res.Status = StatusFail
		}
		report.Results = append(report.Results, res)

		if res.Status == StatusFail && opts.CrashOnFailure {
			return report, fmt.Errorf("annotation %q failed: %s", a.Name(), res.Errors[0])
		}
	}
	return report, nil
}

func check(a annotation.Annotation, exp annotation.Expectation, devices *device.Catalog) []string {
	d, err := devices.Device(exp.Device)
	if err != nil {
		return []string{fmt.Sprintf("%s uses a non-existent device", exp.Device)}
	}
	f := a.Filter()
	rec, ok := d.Get(f.Port, f.Protocol, f.Subprotocol)
	if !ok {
		return []string{fmt.Sprintf("%s does not have any data defined for the protocol targeted by this annotation", exp.Device)}
	}
	delete(rec.Data, "metadata")

	out, err := safeApply(a, rec)
	if err != nil {
		return []string{fmt.Sprintf("%s crashed during execution: %v", exp.Device, err)}
	}
	if out == nil {
		out = metadata.New()
	}

	var errs []string
	if want := metadata.NewTags(exp.Tags...); !want.Equal(out.Tags) {
		errs = append(errs, mismatch(exp.Device, "tags", out.Tags.Sorted(), want.Sorted()))
	}
	if got := out.Local.ToDict(false); !sameFields(got, exp.Local) {
		errs = append(errs, mismatch(exp.Device, "local metadata", got, exp.Local))
	}
	if got := out.Global.ToDict(false); !sameFields(got, exp.Global) {
		errs = append(errs, mismatch(exp.Device, "global metadata", got, exp.Global))
	}
	return errs
}

func safeApply(a annotation.Annotation, rec *record.Record) (meta *metadata.Metadata, err error) {
	defer func() {
		if r := recover(); r != nil {
			meta, err = nil, fmt.Errorf("panic: %v", r)
		}
	}()
	return annotation.Apply(a, rec)
}

func sameFields(got, want map[string]string) bool {
	if len(got) == 0 && len(want) == 0 {
		return true
	}
	return maps.Equal(got, want)
}

func mismatch(name, what string, got, want any) string {
	return fmt.Sprintf("%s (%s):\n     %v (received)\n     %v (expected)", name, what, got, want)
}
