package tmcl

import "strconv"

// Opcodes usable in direct mode.
const (
	// Motion
	OpROR byte = 1  // rotate right
	OpROL byte = 2  // rotate left
	OpMST byte = 3  // motor stop
	OpMVP byte = 4  // move to position
	OpRFS byte = 13 // reference search
	OpSCO byte = 30 // store coordinate
	OpGCO byte = 31 // get coordinate
	OpCCO byte = 32 // capture coordinate

	// Parameters
	OpSAP  byte = 5  // set axis parameter
	OpGAP  byte = 6  // get axis parameter
	OpSTAP byte = 7  // store axis parameter into EEPROM
	OpRSAP byte = 8  // restore axis parameter from EEPROM
	OpSGP  byte = 9  // set global parameter
	OpGGP  byte = 10 // get global parameter
	OpSTGP byte = 11 // store global parameter into EEPROM
	OpRSGP byte = 12 // restore global parameter from EEPROM

	// I/O ports
	OpSIO byte = 14 // set output
	OpGIO byte = 15 // get input
	OpSAC byte = 29 // access external SPI device

	// Control functions
	OpApplStop        byte = 128
	OpApplRun         byte = 129
	OpApplReset       byte = 131
	OpFirmwareVersion byte = 136
)

// Types of MVP.
const (
	MVPAbsolute   byte = 0
	MVPRelative   byte = 1
	MVPCoordinate byte = 2
)

// Types of RFS.
const (
	RFSStart  byte = 0
	RFSStop   byte = 1
	RFSStatus byte = 2
)

// Status codes.
const (
	StatusWrongChecksum       byte = 1
	StatusInvalidCommand      byte = 2
	StatusWrongType           byte = 3
	StatusInvalidValue        byte = 4
	StatusEEPROMLocked        byte = 5
	StatusCommandNotAvailable byte = 6
	StatusOK                  byte = 100
	StatusLoaded              byte = 101
)

var opcodeNames = map[byte]string{
	OpROR:             "ROR",
	OpROL:             "ROL",
	OpMST:             "MST",
	OpMVP:             "MVP",
	OpRFS:             "RFS",
	OpSCO:             "SCO",
	OpGCO:             "GCO",
	OpCCO:             "CCO",
	OpSAP:             "SAP",
	OpGAP:             "GAP",
	OpSTAP:            "STAP",
	OpRSAP:            "RSAP",
	OpSGP:             "SGP",
	OpGGP:             "GGP",
	OpSTGP:            "STGP",
	OpRSGP:            "RSGP",
	OpSIO:             "SIO",
	OpGIO:             "GIO",
	OpSAC:             "SAC",
	OpApplStop:        "APPL_STOP",
	OpApplRun:         "APPL_RUN",
	OpApplReset:       "APPL_RESET",
	OpFirmwareVersion: "VERSION",
}

var statusTexts = map[byte]string{
	StatusWrongChecksum:       "wrong checksum",
	StatusInvalidCommand:      "invalid command",
	StatusWrongType:           "wrong type",
	StatusInvalidValue:        "invalid value",
	StatusEEPROMLocked:        "configuration EEPROM locked",
	StatusCommandNotAvailable: "command not available",
	StatusOK:                  "ok",
	StatusLoaded:              "loaded into EEPROM",
}

// OpcodeName gets the mnemonic of an opcode, or the number if unknown.
func OpcodeName(op byte) string {
	if name, ok := opcodeNames[op]; ok {
		return name
	}
	return "OP" + strconv.Itoa(int(op))
}

// OpcodeByName looks up an opcode by its mnemonic.
func OpcodeByName(name string) (byte, bool) {
	for op, n := range opcodeNames {
		if n == name {
			return op, true
		}
	}
	return 0, false
}

// StatusText describes a status code.
func StatusText(status byte) string {
	if text, ok := statusTexts[status]; ok {
		return text
	}
	return "module error"
}
