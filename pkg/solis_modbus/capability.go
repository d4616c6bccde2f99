package solis_modbus

import (
	"fmt"
	"strings"
)

// Flag is a single capability bit. Every flag belongs to exactly one Group.
type Flag uint32

// Mask is a union of flags, possibly spanning several groups. It is used both for
// the capabilities of an identified inverter and for the requirement of a point.
type Mask uint32

// inverter flags, organized by group.
// Within a group the flags of a requirement are OR'ed, between groups they are AND'ed.
// A group without any flag in a requirement matches every inverter.
const (
	GEN  Flag = 0x0001 // base generation for MIC, PV, AC
	GEN2 Flag = 0x0002
	GEN3 Flag = 0x0004
	GEN4 Flag = 0x0008

	X1 Flag = 0x0100
	X3 Flag = 0x0200

	PV     Flag = 0x0400
	AC     Flag = 0x0800
	HYBRID Flag = 0x1000
	MIC    Flag = 0x2000

	EPS Flag = 0x8000

	DCB Flag = 0x10000 // dry contact box
)

// ALLDEFAULT is the requirement of a point that applies to every inverter.
const ALLDEFAULT Mask = 0

type Group uint8

const (
	GroupGeneration Group = iota
	GroupPhase
	GroupInverterClass
	GroupEPS
	GroupDCB
)

var groupFlags = [...][]Flag{
	GroupGeneration:    {GEN, GEN2, GEN3, GEN4},
	GroupPhase:         {X1, X3},
	GroupInverterClass: {PV, AC, HYBRID, MIC},
	GroupEPS:           {EPS},
	GroupDCB:           {DCB},
}

var groupNames = [...]string{
	GroupGeneration:    "generation",
	GroupPhase:         "phase",
	GroupInverterClass: "inverter_class",
	GroupEPS:           "eps",
	GroupDCB:           "dcb",
}

var flagNames = map[Flag]string{
	GEN:    "GEN",
	GEN2:   "GEN2",
	GEN3:   "GEN3",
	GEN4:   "GEN4",
	X1:     "X1",
	X3:     "X3",
	PV:     "PV",
	AC:     "AC",
	HYBRID: "HYBRID",
	MIC:    "MIC",
	EPS:    "EPS",
	DCB:    "DCB",
}

var groupMasks [len(groupFlags)]Mask

func init() {
	var seen Mask
	for g, flags := range groupFlags {
		for _, f := range flags {
			if seen&Mask(f) != 0 {
				panic(fmt.Sprintf("solis_modbus: flag 0x%x of group %s overlaps another group", uint32(f), groupNames[g]))
			}
			seen |= Mask(f)
			groupMasks[g] |= Mask(f)
		}
	}
}

// Groups returns all flag groups in evaluation order.
func Groups() []Group {
	return []Group{GroupGeneration, GroupPhase, GroupInverterClass, GroupEPS, GroupDCB}
}

func (g Group) Mask() Mask {
	return groupMasks[g]
}

func (g Group) Flags() []Flag {
	return groupFlags[g]
}

func (g Group) String() string {
	if int(g) < len(groupNames) {
		return groupNames[g]
	}
	return fmt.Sprintf("group(%d)", uint8(g))
}

func (f Flag) String() string {
	if name, ok := flagNames[f]; ok {
		return name
	}
	return fmt.Sprintf("0x%x", uint32(f))
}

// Of builds a mask from a list of flags.
func Of(flags ...Flag) Mask {
	var m Mask
	for _, f := range flags {
		m |= Mask(f)
	}
	return m
}

func (m Mask) With(flags ...Flag) Mask {
	return m | Of(flags...)
}

func (m Mask) Has(f Flag) bool {
	return m&Mask(f) != 0
}

// Flags lists the known flags set in the mask, grouped in evaluation order.
func (m Mask) Flags() []Flag {
	var flags []Flag
	for _, g := range Groups() {
		for _, f := range g.Flags() {
			if m.Has(f) {
				flags = append(flags, f)
			}
		}
	}
	return flags
}

// String renders the mask as "HYBRID|X1|EPS". Bits outside the known groups are
// appended in hex. An empty mask renders as "0".
func (m Mask) String() string {
	if m == 0 {
		return "0"
	}
	var parts []string
	var known Mask
	for _, f := range m.Flags() {
		parts = append(parts, f.String())
		known |= Mask(f)
	}
	if rest := m &^ known; rest != 0 {
		parts = append(parts, fmt.Sprintf("0x%x", uint32(rest)))
	}
	return strings.Join(parts, "|")
}

// GroupMatches reports whether the device satisfies the requirement on a single group.
// A requirement without flags in the group is a wildcard.
func GroupMatches(g Group, device Mask, requirement Mask) bool {
	gm := g.Mask()
	return device&requirement&gm != 0 || requirement&gm == 0
}

// Matches reports whether a point with the given requirement applies to the device.
// All groups must match and the serial number must not start with a blacklisted prefix.
func Matches(device Mask, requirement Mask, serial string, blacklist []string) bool {
	for _, g := range Groups() {
		if !GroupMatches(g, device, requirement) {
			return false
		}
	}
	return !Blacklisted(serial, blacklist)
}

func Blacklisted(serial string, blacklist []string) bool {
	for _, prefix := range blacklist {
		if strings.HasPrefix(serial, prefix) {
			return true
		}
	}
	return false
}
