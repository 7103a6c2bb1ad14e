// Package system sizes the export pipeline to the host machine.
package system

import (
	"runtime"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// Encoding a frame holds roughly two copies of it in memory (the RGBA
// buffer plus the PNG encoder's working set).
const bytesPerPixelInFlight = 8

// maxEncodeWorkers bounds the pool regardless of core count; PNG
// encoding saturates memory bandwidth long before 16 cores help.
const maxEncodeWorkers = 8

// ExportWorkers picks the number of concurrent frame encoders for a
// surface of the given size, bounded by logical cores and available
// memory. It never returns less than 1.
func ExportWorkers(frameW, frameH int) int {
	workers := runtime.NumCPU()
	if n, err := cpu.Counts(true); err == nil && n > 0 {
		workers = n
	}
	if workers > maxEncodeWorkers {
		workers = maxEncodeWorkers
	}

	if vm, err := mem.VirtualMemory(); err == nil {
		perWorker := uint64(frameW) * uint64(frameH) * bytesPerPixelInFlight
		if perWorker > 0 {
			byMem := int(vm.Available / 4 / perWorker)
			if byMem < workers {
				workers = byMem
			}
		}
	}

	if workers < 1 {
		workers = 1
	}
	return workers
}
