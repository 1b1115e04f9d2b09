package gfx

import (
	"github.com/clktmr/n64squares/rcp/gbi"
	"github.com/clktmr/n64squares/rcp/rdram"
)

// Setup references the static display lists that reset the geometry and
// rasterizer state at the start of every frame.
type Setup struct {
	RSP, RDP rdram.Addr
}

var (
	rspInit = []gbi.Command{
		gbi.ClearGeometryMode(gbi.AllGeometryModes),
		gbi.SetGeometryMode(gbi.ZBuffer | gbi.Shade | gbi.ShadingSmooth | gbi.CullBack),
		gbi.EndDisplayList(),
	}
	rdpInit = []gbi.Command{
		gbi.PipeSync(),
		gbi.SetCycleType(gbi.CycleTypeOne),
		gbi.EndDisplayList(),
	}
)

// InstallSetup copies the setup display lists to RDRAM.  They are never
// modified afterwards and can be shared by all tasks.
func InstallSetup(mem *rdram.RDRAM) (s Setup, err error) {
	if s.RSP, err = install(mem, rspInit); err != nil {
		return
	}
	s.RDP, err = install(mem, rdpInit)
	return
}

func install(mem *rdram.RDRAM, cmds []gbi.Command) (rdram.Addr, error) {
	addr, err := mem.Alloc(len(cmds)*gbi.CommandSize, rdram.CacheLineSize)
	if err != nil {
		return 0, err
	}
	return addr, gbi.StoreCommands(mem, addr, cmds)
}
