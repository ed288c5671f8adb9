// Copyright 2025 Vulntor Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package annotations

import (
	"github.com/vulntor/annotator/pkg/annotation"
	"github.com/vulntor/annotator/pkg/catalog"
	"github.com/vulntor/annotator/pkg/metadata"
	"github.com/vulntor/annotator/pkg/protocols"
)

// HTTPServerHeader matches the Server header against the http_server_header
// rule set.
func HTTPServerHeader() *annotation.RuleTester {
	return annotation.NewRuleTester("http_server_header",
		annotation.Filter{Protocol: protocols.HTTP},
		"headers.server",
		annotation.Expectation{
			Device: "iis_server",
			Local: map[string]string{
				metadata.KeyManufacturer: catalog.ManufacturerMicrosoft,
				metadata.KeyProduct:      "IIS",
				metadata.KeyVersion:      "10.0",
			},
			Global: map[string]string{metadata.KeyOS: catalog.OSWindows},
		},
		annotation.Expectation{
			Device: "hikvision_camera",
			Global: map[string]string{
				metadata.KeyManufacturer: catalog.ManufacturerHikvision,
				metadata.KeyDeviceType:   catalog.DeviceCamera,
			},
			Tags: []string{"embedded"},
		},
	)
}

// SSHProducts matches SSH identification strings.
func SSHProducts() *annotation.RuleTester {
	return annotation.NewRuleTester("ssh_products",
		annotation.Filter{Protocol: protocols.SSH},
		annotation.DefaultField,
		annotation.Expectation{
			Device: "debian_server",
			Local: map[string]string{
				metadata.KeyManufacturer: catalog.ManufacturerOpenBSD,
				metadata.KeyProduct:      "OpenSSH",
				metadata.KeyVersion:      "7.4p1",
				metadata.KeyRevision:     "10+deb9u7",
			},
			Global: map[string]string{metadata.KeyOS: catalog.OSDebian},
		},
	)
}

// FTPProducts matches FTP greeting banners.
func FTPProducts() *annotation.RuleTester {
	return annotation.NewRuleTester("ftp_products",
		annotation.Filter{Protocol: protocols.FTP, Subprotocol: protocols.Banner},
		annotation.DefaultField,
		annotation.Expectation{
			Device: "mikrotik_router",
			Global: map[string]string{
				metadata.KeyManufacturer: catalog.ManufacturerMikroTik,
				metadata.KeyOS:           catalog.OSMikroTikRouterOS,
				metadata.KeyOSVersion:    "6.45.9",
				metadata.KeyDeviceType:   catalog.DeviceInfrastructureRouter,
			},
			Tags: []string{"embedded"},
		},
		annotation.Expectation{
			Device: "debian_server",
			Local: map[string]string{
				metadata.KeyManufacturer: catalog.ManufacturerProFTPD,
				metadata.KeyProduct:      "ProFTPD",
				metadata.KeyVersion:      "1.3.5b",
			},
		},
	)
}

// TelnetDevices matches telnet login banners.
func TelnetDevices() *annotation.RuleTester {
	return annotation.NewRuleTester("telnet_devices",
		annotation.Filter{Protocol: protocols.TELNET, Subprotocol: protocols.Banner},
		annotation.DefaultField,
		annotation.Expectation{
			Device: "mikrotik_router",
			Global: map[string]string{
				metadata.KeyManufacturer: catalog.ManufacturerMikroTik,
				metadata.KeyOS:           catalog.OSMikroTikRouterOS,
				metadata.KeyOSVersion:    "6.45.9",
				metadata.KeyDeviceType:   catalog.DeviceInfrastructureRouter,
			},
			Tags: []string{"embedded"},
		},
	)
}
