// Copyright 2025 Vulntor Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

// Package annotations is the built-in annotation catalog. Units are declared
// in precedence order: specific signatures first, generic heuristics last.
package annotations

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/vulntor/annotator/pkg/annotation"
	"github.com/vulntor/annotator/pkg/rules"
)

// Builtin returns fresh instances of the built-in annotations in
// declaration order. Rule testers come back unbound.
func Builtin() []annotation.Annotation {
	return []annotation.Annotation{
		NetgearSmartSwitch(),
		FortinetCertificate(),
		ApacheHTTPD(),
		Nginx(),
		HTTPServerHeader(),
		GenericHTTPServer(),
		SSHProducts(),
		FTPProducts(),
		TelnetDevices(),
	}
}

// Register adds every built-in annotation to reg. Rule testers are bound
// through cache; a rule set that fails to load disables only its unit.
func Register(ctx context.Context, reg *annotation.Registry, cache *rules.Cache) error {
	for _, a := range Builtin() {
		var err error
		if rt, ok := a.(*annotation.RuleTester); ok {
			err = reg.RegisterRuleTester(ctx, rt, cache)
		} else {
			err = reg.Register(a)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// NewRegistry builds a registry holding the built-in annotations.
func NewRegistry(ctx context.Context, logger zerolog.Logger, cache *rules.Cache) (*annotation.Registry, error) {
	reg := annotation.NewRegistry(logger)
	if err := Register(ctx, reg, cache); err != nil {
		return nil, err
	}
	return reg, nil
}
