// Copyright 2025 Vulntor Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package annotations

import (
	"regexp"
	"strings"

	"github.com/vulntor/annotator/pkg/annotation"
	"github.com/vulntor/annotator/pkg/catalog"
	"github.com/vulntor/annotator/pkg/metadata"
	"github.com/vulntor/annotator/pkg/protocols"
	"github.com/vulntor/annotator/pkg/record"
)

// FortiGate serial numbers start with FGT followed by the model.
var fortigateSerial = regexp.MustCompile(`^FGT(\d+[A-Z]?)`)

func hasOrganization(rec *record.Record, org string) bool {
	for _, o := range rec.SubjectField("organization") {
		if strings.EqualFold(strings.TrimSpace(o), org) {
			return true
		}
	}
	return false
}

// FortinetCertificate recognizes the factory certificate served by Fortinet
// appliances, whose common name is the device serial number.
func FortinetCertificate() annotation.Annotation {
	return &annotation.ProcessorFunc{
		Base: annotation.Base{
			ID:    "fortinet_certificate",
			Gates: annotation.Filter{Protocol: protocols.HTTPS, Subprotocol: protocols.HTTPSTLS},
			Cases: []annotation.Expectation{{
				Device: "fortigate_60d",
				Global: map[string]string{
					metadata.KeyManufacturer: catalog.ManufacturerFortinet,
					metadata.KeyProduct:      "FortiGate",
					metadata.KeyRevision:     "60D",
					metadata.KeyDeviceType:   catalog.DeviceFirewall,
				},
				Tags: []string{"embedded"},
			}},
		},
		Fn: func(rec *record.Record) (*metadata.Metadata, error) {
			if !rec.HasCertificate() || !hasOrganization(rec, "Fortinet") {
				return nil, nil
			}
			meta := metadata.New()
			meta.Global.Manufacturer = catalog.ManufacturerFortinet
			meta.Global.DeviceType = catalog.DeviceNetwork
			for _, cn := range rec.SubjectField("common_name") {
				if m := fortigateSerial.FindStringSubmatch(cn); m != nil {
					meta.Global.Product = "FortiGate"
					meta.Global.Revision = m[1]
					meta.Global.DeviceType = catalog.DeviceFirewall
					break
				}
			}
			meta.AddTag("embedded")
			return meta, nil
		},
	}
}
