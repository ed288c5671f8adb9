// Copyright 2025 Vulntor Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package annotations

import (
	"strings"

	"github.com/vulntor/annotator/pkg/annotation"
	"github.com/vulntor/annotator/pkg/banner"
	"github.com/vulntor/annotator/pkg/catalog"
	"github.com/vulntor/annotator/pkg/metadata"
	"github.com/vulntor/annotator/pkg/protocols"
	"github.com/vulntor/annotator/pkg/record"
)

var httpGet = annotation.Filter{Protocol: protocols.HTTP, Subprotocol: protocols.HTTPGet}

const netgearSmartSwitchTitle = "NETGEAR Web Smart Switch"

// NetgearSmartSwitch recognizes the management page of NETGEAR smart switches.
func NetgearSmartSwitch() annotation.Annotation {
	return &annotation.ProcessorFunc{
		Base: annotation.Base{
			ID:    "netgear_smart_switch",
			Gates: httpGet,
			Cases: []annotation.Expectation{{
				Device: "netgear_gs108t",
				Global: map[string]string{
					metadata.KeyManufacturer: catalog.ManufacturerNetgear,
					metadata.KeyProduct:      "Smart Switch",
					metadata.KeyDeviceType:   catalog.DeviceSwitch,
				},
				Tags: []string{"embedded"},
			}},
		},
		Fn: func(rec *record.Record) (*metadata.Metadata, error) {
			if rec.Title() != netgearSmartSwitchTitle {
				return nil, nil
			}
			meta := metadata.New()
			meta.Global.Manufacturer = catalog.ManufacturerNetgear
			meta.Global.Product = "Smart Switch"
			meta.Global.DeviceType = catalog.DeviceSwitch
			meta.AddTag("embedded")
			return meta, nil
		},
	}
}

// serverProduct wraps the prefix-version heuristic for a Server header. The
// prefix must end at a '/', a space or the end of the header so that
// "Apache-Coyote/1.1" is not taken for Apache httpd.
func serverProduct(server, name, manufacturer string) *metadata.Metadata {
	if len(server) > len(name) {
		switch server[len(name)] {
		case '/', ' ':
		default:
			return nil
		}
	}
	meta, ok := banner.SimpleVersion(server, name)
	if !ok {
		return nil
	}
	meta.Local.Manufacturer = manufacturer
	meta.Local.Version, _, _ = strings.Cut(meta.Local.Version, " ")
	if parsed, ok := banner.Parse(server); ok {
		meta.Global.OS = parsed.Global.OS
	}
	return meta
}

// ApacheHTTPD identifies Apache httpd from the Server header.
func ApacheHTTPD() annotation.Annotation {
	return &annotation.ProcessorFunc{
		Base: annotation.Base{
			ID:    "apache_httpd",
			Gates: annotation.Filter{Protocol: protocols.HTTP},
			Cases: []annotation.Expectation{{
				Device: "apache_ubuntu",
				Local: map[string]string{
					metadata.KeyManufacturer: catalog.ManufacturerApache,
					metadata.KeyProduct:      "Apache",
					metadata.KeyVersion:      "2.4.29",
				},
				Global: map[string]string{metadata.KeyOS: catalog.OSUbuntu},
			}},
		},
		Fn: func(rec *record.Record) (*metadata.Metadata, error) {
			return serverProduct(rec.Header("Server"), "Apache", catalog.ManufacturerApache), nil
		},
	}
}

// Nginx identifies nginx from the Server header.
func Nginx() annotation.Annotation {
	return &annotation.ProcessorFunc{
		Base: annotation.Base{
			ID:    "nginx",
			Gates: annotation.Filter{Protocol: protocols.HTTP},
			Cases: []annotation.Expectation{{
				Device: "nginx_proxy",
				Local: map[string]string{
					metadata.KeyManufacturer: catalog.ManufacturerNginx,
					metadata.KeyProduct:      "nginx",
					metadata.KeyVersion:      "1.18.0",
				},
			}},
		},
		Fn: func(rec *record.Record) (*metadata.Metadata, error) {
			return serverProduct(rec.Header("Server"), "nginx", catalog.ManufacturerNginx), nil
		},
	}
}

// GenericHTTPServer falls back to the generic token heuristic on the Server
// header. It is declared after every specific HTTP annotation.
func GenericHTTPServer() annotation.Annotation {
	return &annotation.ProcessorFunc{
		Base: annotation.Base{
			ID:    "generic_http_server",
			Gates: annotation.Filter{Protocol: protocols.HTTP},
			Cases: []annotation.Expectation{
				{
					Device: "lighttpd_box",
					Local: map[string]string{
						metadata.KeyProduct: "lighttpd",
						metadata.KeyVersion: "1.4.35",
					},
				},
				{
					Device: "apache_ubuntu",
					Local: map[string]string{
						metadata.KeyProduct: "Apache",
						metadata.KeyVersion: "2.4.29",
					},
					Global: map[string]string{metadata.KeyOS: catalog.OSUbuntu},
				},
			},
		},
		Fn: func(rec *record.Record) (*metadata.Metadata, error) {
			server := rec.Header("Server")
			if server == "" {
				return nil, nil
			}
			meta, ok := banner.Parse(server)
			if !ok {
				return nil, nil
			}
			return meta, nil
		},
	}
}
