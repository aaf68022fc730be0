package server

import (
	"net/http"
	"runtime"

	"github.com/labstack/echo/v4"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// SystemInfo describes the host the renderer runs on
type SystemInfo struct {
	CPUModel          string   `json:"cpuModel,omitempty"`
	CPUMhz            float64  `json:"cpuMhz,omitempty"`
	LogicalCores      int      `json:"logicalCores"`
	PhysicalCores     int      `json:"physicalCores"`
	TotalMemoryMB     uint64   `json:"totalMemoryMB,omitempty"`
	AvailableMemoryMB uint64   `json:"availableMemoryMB,omitempty"`
	RenderWorkers     int      `json:"renderWorkers"`
	GoVersion         string   `json:"goVersion"`
	Goroutines        int      `json:"goroutines"`
	Warnings          []string `json:"warnings,omitempty"`
}

// collectSystemInfo gathers host details. Probes that fail on this platform
// are reported as warnings instead of failing the whole report.
func collectSystemInfo() SystemInfo {
	info := SystemInfo{
		LogicalCores: runtime.NumCPU(),
		GoVersion:    runtime.Version(),
		Goroutines:   runtime.NumGoroutine(),
	}

	if cpuInfo, err := cpu.Info(); err != nil {
		info.Warnings = append(info.Warnings, "cpu info: "+err.Error())
	} else if len(cpuInfo) > 0 {
		info.CPUModel = cpuInfo[0].ModelName
		info.CPUMhz = cpuInfo[0].Mhz
	}

	if logical, err := cpu.Counts(true); err == nil && logical > 0 {
		info.LogicalCores = logical
	}
	info.PhysicalCores = physicalCores()

	if memInfo, err := mem.VirtualMemory(); err != nil {
		info.Warnings = append(info.Warnings, "memory info: "+err.Error())
	} else {
		info.TotalMemoryMB = memInfo.Total / (1024 * 1024)
		info.AvailableMemoryMB = memInfo.Available / (1024 * 1024)
	}

	return info
}

// physicalCores returns the physical core count, falling back to logical CPUs
func physicalCores() int {
	if n, err := cpu.Counts(false); err == nil && n > 0 {
		return n
	}
	return runtime.NumCPU()
}

// DefaultWorkers sizes the job pool: one single-threaded render per physical core
func DefaultWorkers() int {
	return physicalCores()
}

// handleSystem reports host details and the render pool size
func (s *Server) handleSystem(c echo.Context) error {
	info := collectSystemInfo()
	info.RenderWorkers = s.jobs.NumWorkers()
	return c.JSON(http.StatusOK, info)
}
