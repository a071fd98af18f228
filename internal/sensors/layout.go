// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

// BitField describes a group of bits inside one byte.
type BitField struct {
	Bits        string `json:"bits"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Values      string `json:"values,omitempty"`
}

// FieldInfo describes one byte of a bus message.
type FieldInfo struct {
	Offset      int        `json:"offset"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Access      string     `json:"access"` // "R" or "W"
	BitFields   []BitField `json:"bit_fields,omitempty"`
}

// FrameLayout documents the sample frame returned by a read.
func FrameLayout() []FieldInfo {
	return []FieldInfo{
		{Offset: 0, Name: "Y_L", Description: "Y position, low byte", Access: "R",
			BitFields: []BitField{{Bits: "7:0", Name: "Y[7:0]", Description: "Low byte of the 10-bit Y position"}}},
		{Offset: 1, Name: "Y_H", Description: "Y position, high byte", Access: "R",
			BitFields: []BitField{{Bits: "1:0", Name: "Y[9:8]", Description: "High bits of the 10-bit Y position", Values: "0-1023 overall"}}},
		{Offset: 2, Name: "X_L", Description: "X position, low byte", Access: "R",
			BitFields: []BitField{{Bits: "7:0", Name: "X[7:0]", Description: "Low byte of the 10-bit X position"}}},
		{Offset: 3, Name: "X_H", Description: "X position, high byte", Access: "R",
			BitFields: []BitField{{Bits: "1:0", Name: "X[9:8]", Description: "High bits of the 10-bit X position", Values: "0-1023 overall"}}},
		{Offset: 4, Name: "BTN", Description: "Push button", Access: "R",
			BitFields: []BitField{{Bits: "7:0", Name: "BTN", Description: "Button state", Values: "0=Pressed, other=Released"}}},
	}
}

// LEDCommandLayout documents the 4-byte LED write.
func LEDCommandLayout() []FieldInfo {
	return []FieldInfo{
		{Offset: 0, Name: "INDEX", Description: "LED index", Access: "W",
			BitFields: []BitField{{Bits: "7:0", Name: "INDEX", Description: "Which LED", Values: "0=West, 1=South, 2=East, 3=North"}}},
		{Offset: 1, Name: "R", Description: "Red level", Access: "W"},
		{Offset: 2, Name: "G", Description: "Green level", Access: "W"},
		{Offset: 3, Name: "B", Description: "Blue level", Access: "W"},
	}
}
