// Copyright 2025 Vulntor Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

// Package protocols defines the scan protocol and subprotocol identifiers
// used as annotation filters. Identifiers compare by Value, never by
// pointer, so values decoded from different sources are interchangeable.
package protocols

import (
	"fmt"
	"sort"
	"strings"
)

// Protocol identifies an application protocol. The zero value means "unset".
type Protocol struct {
	Value      int
	PrettyName string
}

// IsZero reports whether p is unset.
func (p Protocol) IsZero() bool { return p.Value == 0 }

// Is reports whether p and other carry the same Value.
func (p Protocol) Is(other Protocol) bool { return p.Value == other.Value }

func (p Protocol) String() string { return p.PrettyName }

// Subprotocol identifies the scan module run against a protocol (e.g. an
// HTTP GET, a TLS handshake, a raw banner read). The zero value means "unset".
type Subprotocol struct {
	Value      int
	PrettyName string
	// Parent is the Value of the protocol this subprotocol belongs to.
	// Zero means it is shared across protocols.
	Parent int
}

// IsZero reports whether s is unset.
func (s Subprotocol) IsZero() bool { return s.Value == 0 }

// Is reports whether s and other carry the same Value.
func (s Subprotocol) Is(other Subprotocol) bool { return s.Value == other.Value }

// BelongsTo reports whether s may be used together with p.
func (s Subprotocol) BelongsTo(p Protocol) bool { return s.Parent == 0 || s.Parent == p.Value }

func (s Subprotocol) String() string { return s.PrettyName }

// Known protocols.
var (
	HTTP   = Protocol{Value: 1, PrettyName: "http"}
	HTTPS  = Protocol{Value: 2, PrettyName: "https"}
	SSH    = Protocol{Value: 3, PrettyName: "ssh"}
	FTP    = Protocol{Value: 4, PrettyName: "ftp"}
	TELNET = Protocol{Value: 5, PrettyName: "telnet"}
	SMTP   = Protocol{Value: 6, PrettyName: "smtp"}
	POP3   = Protocol{Value: 7, PrettyName: "pop3"}
	IMAP   = Protocol{Value: 8, PrettyName: "imap"}
	MODBUS = Protocol{Value: 9, PrettyName: "modbus"}
	BACNET = Protocol{Value: 10, PrettyName: "bacnet"}
	S7     = Protocol{Value: 11, PrettyName: "s7"}
	DNP3   = Protocol{Value: 12, PrettyName: "dnp3"}
	FOX    = Protocol{Value: 13, PrettyName: "fox"}
	SNMP   = Protocol{Value: 14, PrettyName: "snmp"}
	RTSP   = Protocol{Value: 15, PrettyName: "rtsp"}
)

// Known subprotocols.
var (
	HTTPGet        = Subprotocol{Value: 1, PrettyName: "get", Parent: HTTP.Value}
	HTTPSTLS       = Subprotocol{Value: 2, PrettyName: "tls", Parent: HTTPS.Value}
	SSHV2          = Subprotocol{Value: 3, PrettyName: "v2", Parent: SSH.Value}
	Banner         = Subprotocol{Value: 4, PrettyName: "banner"}
	StartTLS       = Subprotocol{Value: 5, PrettyName: "starttls"}
	DeviceID       = Subprotocol{Value: 6, PrettyName: "device_id", Parent: MODBUS.Value}
	DeviceIDBacnet = Subprotocol{Value: 7, PrettyName: "device_id_bacnet", Parent: BACNET.Value}
	SZL            = Subprotocol{Value: 8, PrettyName: "szl", Parent: S7.Value}
	Status         = Subprotocol{Value: 9, PrettyName: "status", Parent: DNP3.Value}
	DeviceInfo     = Subprotocol{Value: 10, PrettyName: "device_info", Parent: FOX.Value}
	SysDescr       = Subprotocol{Value: 11, PrettyName: "sysdescr", Parent: SNMP.Value}
	Options        = Subprotocol{Value: 12, PrettyName: "options", Parent: RTSP.Value}
)

var (
	protocolsByName = index(
		[]Protocol{HTTP, HTTPS, SSH, FTP, TELNET, SMTP, POP3, IMAP, MODBUS, BACNET, S7, DNP3, FOX, SNMP, RTSP},
		func(p Protocol) string { return p.PrettyName },
	)
	subprotocolsByName = index(
		[]Subprotocol{HTTPGet, HTTPSTLS, SSHV2, Banner, StartTLS, DeviceID, DeviceIDBacnet, SZL, Status, DeviceInfo, SysDescr, Options},
		func(s Subprotocol) string { return s.PrettyName },
	)
)

func index[T any](items []T, key func(T) string) map[string]T {
	out := make(map[string]T, len(items))
	for _, item := range items {
		out[key(item)] = item
	}
	return out
}

// ProtocolFromName resolves a pretty name such as "http". Matching is
// case-insensitive. An empty name yields the zero Protocol.
func ProtocolFromName(name string) (Protocol, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return Protocol{}, nil
	}
	p, ok := protocolsByName[name]
	if !ok {
		return Protocol{}, fmt.Errorf("unknown protocol %q (registered: %s)", name, strings.Join(ProtocolNames(), ", "))
	}
	return p, nil
}

// SubprotocolFromName resolves a pretty name such as "get". An empty name
// yields the zero Subprotocol.
func SubprotocolFromName(name string) (Subprotocol, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return Subprotocol{}, nil
	}
	s, ok := subprotocolsByName[name]
	if !ok {
		return Subprotocol{}, fmt.Errorf("unknown subprotocol %q (registered: %s)", name, strings.Join(SubprotocolNames(), ", "))
	}
	return s, nil
}

// ProtocolNames lists registered protocol names, sorted.
func ProtocolNames() []string { return sortedKeys(protocolsByName) }

// SubprotocolNames lists registered subprotocol names, sorted.
func SubprotocolNames() []string { return sortedKeys(subprotocolsByName) }

func sortedKeys[T any](m map[string]T) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
