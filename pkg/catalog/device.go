// Copyright 2025 Vulntor Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package catalog

// Device types.
const (
	DeviceAccessControl        = "Access Control"
	DeviceAlarmSystem          = "Server"
	DeviceCableModem           = "ADSL"
	DeviceCamera               = "Camera"
	DeviceCFS                  = "CFS"
	DeviceCinema               = "cinema"
	DeviceDSLModem             = "ADSL"
	DeviceDVR                  = "DVR"
	DeviceEnvironmentMonitor   = "Server"
	DeviceFireAlarm            = "Server"
	DeviceFirewall             = "Firewall"
	DeviceGenericPrinter       = "Printer"
	DeviceHMI                  = "Controller"
	DeviceHVAC                 = "hvac"
	DeviceIndustrialControl    = "Controller"
	DeviceInfrastructureRouter = "Router"
	DeviceInkjetPrinter        = "Printer"
	DeviceIPMI                 = "IPMI"
	DeviceKVM                  = "KVM"
	DeviceLaserPrinter         = "Printer"
	DeviceLightController      = "Controller"
	DeviceModem                = "ADSL"
	DeviceMultifunctionPrinter = "Printer"
	DeviceNAS                  = "NAS"
	DeviceNetwork              = "Network Device"
	DeviceNetworkAnalyzer      = "Server"
	DevicePDU                  = "Industrial Controller"
	DevicePhaserPrinter        = "Printer"
	DevicePLC                  = "Industrial Controller"
	DevicePowerController      = "Industrial Controller"
	DevicePowerMonitor         = "Industrial Device"
	DevicePrintServer          = "Printer"
	DevicePrinter              = "Printer"
	DeviceRTU                  = "RTU"
	DeviceScadaController      = "Controller"
	DeviceScadaFrontend        = "Server"
	DeviceScadaGateway         = "Gateway"
	DeviceScadaProcessor       = "Server"
	DeviceScadaRouter          = "Router"
	DeviceScadaServer          = "Server"
	DeviceSDS                  = "SDS"
	DeviceServerManagement     = "IPMI"
	DeviceSign                 = "Sign"
	DeviceSOHORouter           = "Router"
	DeviceSolarPanel           = "Embedded"
	DeviceStorage              = "NAS"
	DeviceSwitch               = "Switch"
	DeviceTemperatureMonitor   = "Server"
	DeviceThermostat           = "IOT"
	DeviceTVBox                = "IOT"
	DeviceTVTuner              = "IOT"
	DeviceUPS                  = "Industrial Device"
	DeviceUSBHub               = "USB"
	DeviceVOIP                 = "VOIP"
	DeviceWaterFlowController  = "Industrial Device"
	DeviceWiFi                 = "Wireless Router"
	DeviceWirelessModem        = "Wireless Router"
)
