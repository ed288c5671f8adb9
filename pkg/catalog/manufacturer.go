// Copyright 2025 Vulntor Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

// Package catalog holds the static name tables referenced by annotations:
// manufacturers, device types, operating systems and SCADA sectors. Values
// are opaque strings; nothing in the engine validates fields against them.
package catalog

// Manufacturer names.
const (
	ManufacturerABBStotzKontakt     = "ABB-Stotz-Kontakt"
	ManufacturerACTL                = "ACTL"
	ManufacturerADTRAN              = "ADTRAN"
	ManufacturerAgranat             = "Agranat"
	ManufacturerAlcatel             = "Alcatel"
	ManufacturerAlerton             = "Alerton"
	ManufacturerAllegro             = "Allegro"
	ManufacturerAllworks            = "allworx"
	ManufacturerAmericanMegatrends  = "American-Megatrends-Inc."
	ManufacturerAnnke               = "Annke"
	ManufacturerApache              = "Apache"
	ManufacturerAPC                 = "APC"
	ManufacturerApple               = "Apple"
	ManufacturerAruba               = "Aruba-Networks"
	ManufacturerAsus                = "ASUS"
	ManufacturerAVM                 = "AVM"
	ManufacturerAvtech              = "AVTech"
	ManufacturerAxis                = "Axis"
	ManufacturerBelkin              = "Belkin"
	ManufacturerBigIP               = "BigIP"
	ManufacturerBomgar              = "Bomgar"
	ManufacturerBrother             = "Brother"
	ManufacturerCanon               = "Canon"
	ManufacturerCherokee            = "Cherokee"
	ManufacturerCisco               = "Cisco"
	ManufacturerClariion            = "Clariion"
	ManufacturerColasoft            = "Colasoft"
	ManufacturerComputec            = "Computec-OY"
	ManufacturerComtrol             = "Comtrol-Corporation"
	ManufacturerCrouzet             = "Crouzet"
	ManufacturerDahua               = "Dahua-Technology"
	ManufacturerDedicatedMicros     = "Dedicated-Micros"
	ManufacturerDell                = "Dell"
	ManufacturerDigi                = "Digi"
	ManufacturerDistech             = "Distech-Controls"
	ManufacturerDLink               = "DLink"
	ManufacturerDraytek             = "DrayTek"
	ManufacturerDreamBox            = "DreamBox"
	ManufacturerEcoNet              = "EcoNet"
	ManufacturerEcoSense            = "EcoSense"
	ManufacturerEdgewater           = "Edgewater-Networks"
	ManufacturerEIG                 = "Electro Industries GaugeTech"
	ManufacturerEIQ                 = "eIQ"
	ManufacturerEMC                 = "EMC"
	ManufacturerEmerson             = "Emerson"
	ManufacturerEntes               = "Entes"
	ManufacturerEntrolink           = "Entrolink"
	ManufacturerEpson               = "Epson"
	ManufacturerFacExp              = "FacExp"
	ManufacturerFibercom            = "Fiberhome-Telecom-Tech"
	ManufacturerFlexim              = "Flexim"
	ManufacturerFortinet            = "Fortinet"
	ManufacturerFullRate            = "FullRate"
	ManufacturerGE                  = "GE"
	ManufacturerGeoVision           = "Geovision"
	ManufacturerHanbanggaoke        = "hanbanggaoke"
	ManufacturerHikvision           = "Hikvision"
	ManufacturerHoneywell           = "Honeywell"
	ManufacturerHP                  = "Hewlett-Packard"
	ManufacturerHuawei              = "Huawei"
	ManufacturerIBM                 = "IBM"
	ManufacturerINTEG               = "INTEG"
	ManufacturerIntegra             = "Integra"
	ManufacturerIntelbras           = "Intelbras"
	ManufacturerIntercon            = "Intercon"
	ManufacturerIPTime              = "IPTime"
	ManufacturerIQeye               = "IQeye"
	ManufacturerIxsystem            = "Ixsystem"
	ManufacturerJungo               = "Jungo"
	ManufacturerKeda                = "keda"
	ManufacturerKonicaMinolta       = "Konica-Minolta"
	ManufacturerLABEL               = "LAB-EL"
	ManufacturerLacie               = "LaCie"
	ManufacturerLancom              = "Lancom-Systems"
	ManufacturerLantronix           = "Lantronix"
	ManufacturerLeightronix         = "Leightronix"
	ManufacturerLenovo              = "Lenovo"
	ManufacturerLexmark             = "Lexmark"
	ManufacturerLifesize            = "LifeSize"
	ManufacturerLinksys             = "Linksys"
	ManufacturerLutron              = "Lutron"
	ManufacturerMaygion             = "Maygion"
	ManufacturerMCGS                = "MCGS"
	ManufacturerMicrosoft           = "Microsoft"
	ManufacturerMikroTik            = "MikroTik"
	ManufacturerMotorola            = "Motorola"
	ManufacturerMultitech           = "Multitech"
	ManufacturerNationalInstruments = "National-Instruments"
	ManufacturerNetApp              = "Net-App"
	ManufacturerNetgear             = "NetGear"
	ManufacturerNetKlass            = "NetKlass"
	ManufacturerNetwave             = "Netwave"
	ManufacturerNexRev              = "NexRev"
	ManufacturerNginx               = "Nginx"
	ManufacturerNivus               = "Nivus"
	ManufacturerNovar               = "Novar"
	ManufacturerNRGSystems          = "nrg-systems"
	ManufacturerOpenBSD             = "OpenBSD"
	ManufacturerOpto22              = "Opto22"
	ManufacturerOsnexus             = "Osnexus"
	ManufacturerOverlandStorage     = "Overland-Storage"
	ManufacturerPanabit             = "Panabit"
	ManufacturerPanasonic           = "Panasonic"
	ManufacturerPanoLogic           = "Pano-Logic"
	ManufacturerPoLabs              = "PoLabs"
	ManufacturerPolycom             = "Polycom"
	ManufacturerQNAP                = "QNAP"
	ManufacturerProFTPD             = "ProFTPD"
	ManufacturerRaritan             = "Raritan"
	ManufacturerRealtek             = "Realtek"
	ManufacturerRicoh               = "Ricoh"
	ManufacturerRockwell            = "Rockwell"
	ManufacturerRoomWizard          = "RoomWizard"
	ManufacturerRouterBoard         = "routerboard"
	ManufacturerSangfor             = "Sangfor"
	ManufacturerSAP                 = "SAP"
	ManufacturerScannex             = "Scannex"
	ManufacturerSchneider           = "Schneider-Electric"
	ManufacturerSEElectronic        = "SE-Electronic"
	ManufacturerSeagate             = "Seagate"
	ManufacturerSensatronics        = "Sensatronics"
	ManufacturerSercomm             = "Sercomm"
	ManufacturerSharp               = "Sharp"
	ManufacturerSiemens             = "Siemens"
	ManufacturerSoftAtHome          = "SoftAtHome"
	ManufacturerSolarLog            = "Solar-Log"
	ManufacturerSomfy               = "Somfy"
	ManufacturerSonus               = "SONUS"
	ManufacturerSony                = "Sony"
	ManufacturerSpeedport           = "SpeedPort"
	ManufacturerSunMicrosystems     = "Sun-Microsystems"
	ManufacturerSupermicro          = "SuperMicroComputer"
	ManufacturerSupermicroComputer  = "SuperMicroComputer"
	ManufacturerSynchronic          = "Synchronic"
	ManufacturerSynology            = "Synology"
	ManufacturerTandbergData        = "Tandberg-Data"
	ManufacturerTechnicolor         = "Technicolor"
	ManufacturerTelemecanique       = "Telemecanique"
	ManufacturerTelrad              = "Telrad"
	ManufacturerThecus              = "Thecus"
	ManufacturerThinkSimple         = "Think-Simple"
	ManufacturerTiandy              = "Tiandy"
	ManufacturerTivo                = "TiVo"
	ManufacturerTPLink              = "TP-LINK"
	ManufacturerTrane               = "Trane"
	ManufacturerTrend               = "Trend"
	ManufacturerTrendChip           = "TrendChip"
	ManufacturerTridium             = "Tridium"
	ManufacturerUbiquiti            = "Ubiquiti-Networks"
	ManufacturerUniview             = "Uniview"
	ManufacturerVarnish             = "Varnish"
	ManufacturerVeris               = "Veris-Industries"
	ManufacturerVia                 = "Via"
	ManufacturerVirata              = "Virata"
	ManufacturerVodafone            = "VodaPhone"
	ManufacturerVStarcam            = "Vstarcam"
	ManufacturerVykon               = "Vykon"
	ManufacturerWattStopper         = "WattStopper"
	ManufacturerWD                  = "Western-Digital"
	ManufacturerWebEasy             = "Webeasy"
	ManufacturerWEG                 = "WEG"
	ManufacturerWesternDigital      = "Western-Digital"
	ManufacturerWindRiver           = "Wind-River"
	ManufacturerWurm                = "Wurm"
	ManufacturerXerox               = "Xerox"
	ManufacturerZTE                 = "ZTE"
	ManufacturerZyXEL               = "ZyXEL"
)
