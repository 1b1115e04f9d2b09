package controller

import "strings"

type ButtonMask uint16

const (
	ButtonA ButtonMask = 1 << (15 - iota)
	ButtonB
	ButtonZ
	ButtonStart
	ButtonDUp
	ButtonDDown
	ButtonDLeft
	ButtonDRight
	ButtonReset // L+R+Start pressed simultaneously
	ButtonUnknown
	ButtonL
	ButtonR
	ButtonCUp
	ButtonCDown
	ButtonCLeft
	ButtonCRight
)

var buttonNames = [...]string{
	"A",
	"B",
	"Z",
	"Start",
	"↑",
	"↓",
	"←",
	"→",
	"Reset",
	"Unknown",
	"L",
	"R",
	"C↑",
	"C↓",
	"C←",
	"C→",
}

func (b ButtonMask) String() string {
	var sb strings.Builder
	for i, v := range buttonNames {
		if b&(1<<(15-i)) != 0 {
			if sb.Len() != 0 {
				sb.WriteString(" + ")
			}
			sb.WriteString(v)
		}
	}
	return sb.String()
}
