package rcp

import "strings"

// The RCP has multiple interrupts, which are all routed to the same external
// interrupt line on the CPU.
type InterruptFlag uint32

const (
	SignalProcessor     InterruptFlag = 1 << iota // RSP breakpoint or software interrupt
	SerialInterface                               // SI DMA to/from PIF RAM finished
	AudioInterface                                // playback of audio buffer started
	VideoInterface                                // VBlank
	PeripheralInterface                           // PI bus DMA tranfer finished
	DisplayProcessor                              // RDP full sync (see FULL_SYNC command)

	InterruptFlagLast
)

var flagNames = [...]string{"SP", "SI", "AI", "VI", "PI", "DP"}

func (f InterruptFlag) String() string {
	if f == 0 {
		return "none"
	}
	var names []string
	for i, flag := 0, SignalProcessor; flag < InterruptFlagLast; i, flag = i+1, flag<<1 {
		if f&flag != 0 {
			names = append(names, flagNames[i])
		}
	}
	if f&^(InterruptFlagLast-1) != 0 {
		names = append(names, "?")
	}
	return strings.Join(names, "|")
}
