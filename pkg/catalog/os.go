// Copyright 2025 Vulntor Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package catalog

// Operating systems.
const (
	OSArch             = "Arch Linux"
	OSDebian           = "Debian"
	OSFedora           = "Fedora"
	OSGentoo           = "Gentoo"
	OSKali             = "Kali Linux"
	OSMandrive         = "Mandriva"
	OSRedHat           = "RedHat"
	OSCentOS           = "CentOS"
	OSSunOS            = "SunOS"
	OSSuse             = "openSUSE"
	OSUbuntu           = "Ubuntu"
	OSRaspbian         = "Raspbian"
	OSFreeBSD          = "FreeBSD"
	OSNetBSD           = "NetBSD"
	OSOpenBSD          = "OpenBSD"
	OSSlackware        = "Slackware"
	OSHPUX             = "HP-UX"
	OSVxWorks          = "VXWORKS"
	OSWindows          = "Windows"
	OSWindowsServer    = "Windows Server"
	OSUClinux          = "UClinux"
	OSTiMOS            = "TiMOS"
	OSQNX              = "QNX"
	OSCiscoIOS         = "Cisco IOS"
	OSMikroTikRouterOS = "MikroTik RouterOS"
	OSDopra            = "Dopra Linux OS"
)

// SCADA sectors.
const (
	ScadaWater      = "Waterpower"
	ScadaChemical   = "Chemical"
	ScadaWeather    = "Weather"
	ScadaElectric   = "Electric"
	ScadaGas        = "Gas"
	ScadaPetroleum  = "Petroleum"
	ScadaDisaster   = "Disaster"
	ScadaMetallurgy = "Metallurgy"
	ScadaTobacco    = "Tobacco"
	ScadaGPS        = "GPS"
	ScadaMedicine   = "Medicine"
)
